// Package recommend implements the recommendation pipeline.
//
// A request flows through four stages. Discovery (or title resolution through
// the generative client) produces an ordered list of candidate TMDB ids. The
// enrichment pool makes sure every candidate has a fresh bilingual row in the
// cache, fetching details, IMDb ratings and trailers for unknown titles and
// refreshing only the rating of stale ones. The reader re-reads those rows in
// candidate order and the rerank stage applies rating thresholds and the
// requested sort before cards are projected for the caller's locale.
//
// Upstream failures never escape the pipeline: a failed page or title is
// logged and skipped, so callers always receive the best partial result.
package recommend
