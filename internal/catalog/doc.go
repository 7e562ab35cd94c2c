// Package catalog wraps the TMDB endpoints used by the recommendation
// pipeline: discover, details (with external ids), title search, and videos.
//
// The client is stateless apart from a shared rate limiter so that the
// enrichment worker pool cannot exceed TMDB's request budget.
package catalog
