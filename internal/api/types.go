package api

import (
	"marquee/internal/media"
	"marquee/internal/store"
)

// QueryRequest is the body of the similar, title and describe endpoints.
type QueryRequest struct {
	Query string `json:"query"`
}

// StatusRequest is the body of the status endpoint.
type StatusRequest struct {
	Status string `json:"status"`
}

// RecommendResponse wraps a list of cards.
type RecommendResponse struct {
	Results []media.Card   `json:"results"`
	Count   int            `json:"count"`
	Filters *media.Filters `json:"filters,omitempty"`
}

// StatusResponse echoes a stored status change.
type StatusResponse struct {
	TMDBID    int64        `json:"tmdb_id"`
	MediaKind media.Kind   `json:"media_kind"`
	Status    media.Status `json:"status"`
}

// CacheStatsResponse reports cache contents.
type CacheStatsResponse struct {
	store.CacheStats
	FreshnessDays int `json:"freshness_days"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

func newRecommendResponse(cards []media.Card, filters *media.Filters) RecommendResponse {
	if cards == nil {
		cards = []media.Card{}
	}
	return RecommendResponse{Results: cards, Count: len(cards), Filters: filters}
}
