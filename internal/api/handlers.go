package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"marquee/internal/chat"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/recommend"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	var filters media.Filters
	if err := decodeBody(w, r, &filters); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cards, err := s.deps.Recommender.ByFilters(r.Context(), userIDFrom(r.Context()), kind, filters, requestLocale(r))
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecommendResponse(cards, &filters))
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, func(req queryCall) ([]media.Card, error) {
		return s.deps.Recommender.Similar(req.r.Context(), req.userID, req.kind, req.query, req.locale)
	})
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, func(req queryCall) ([]media.Card, error) {
		return s.deps.Recommender.ByTitle(req.r.Context(), req.kind, req.query, req.locale)
	})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	s.handleQuery(w, r, func(req queryCall) ([]media.Card, error) {
		return s.deps.Recommender.FromDescription(req.r.Context(), req.userID, req.kind, req.query, req.locale)
	})
}

type queryCall struct {
	r      *http.Request
	userID int64
	kind   media.Kind
	query  string
	locale string
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, run func(queryCall) ([]media.Card, error)) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	var body QueryRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cards, err := run(queryCall{
		r:      r,
		userID: userIDFrom(r.Context()),
		kind:   kind,
		query:  body.Query,
		locale: requestLocale(r),
	})
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecommendResponse(cards, nil))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MediaKind != "" {
		kind, err := media.ParseKind(string(req.MediaKind))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.MediaKind = kind
	}
	req.UserID = userIDFrom(r.Context())
	req.Locale = requestLocale(r)

	reply, err := s.deps.Chat.Chat(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, chat.ErrClassification):
		// The generic reply is the user-facing outcome; the cause was logged.
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, chat.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writePipelineError(w, r, err)
	}
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	var body StatusRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := media.ParseStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Store.SetStatus(r.Context(), userIDFrom(r.Context()), kind, id, status); err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{TMDBID: id, MediaKind: kind, Status: status})
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	status, err := media.ParseStatus(r.URL.Query().Get("status"))
	if err != nil || status == media.StatusNone {
		writeError(w, http.StatusBadRequest, "status must be seen, towatchlater or hidden")
		return
	}
	ids, err := s.deps.Store.ListByStatus(r.Context(), userIDFrom(r.Context()), kind, status)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	cards, err := s.deps.Recommender.Cards(r.Context(), kind, ids, requestLocale(r))
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecommendResponse(cards, nil))
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.CacheStats(r.Context(), time.Duration(s.freshnessDays)*24*time.Hour)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CacheStatsResponse{CacheStats: stats, FreshnessDays: s.freshnessDays})
}

func (s *Server) kindParam(w http.ResponseWriter, r *http.Request) (media.Kind, bool) {
	kind, err := media.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return kind, true
}

// writePipelineError maps validation errors to 400 and hides everything else
// behind a 500.
func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, recommend.ErrInvalidKind) || errors.Is(err, recommend.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logging.ErrorWithContext(r.Context(), s.logger, "request failed", "api_request_failed",
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
