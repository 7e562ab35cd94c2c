package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the standardized structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldSessionID identifies a chat session.
	FieldSessionID = "session_id"
	// FieldUserID identifies the caller on whose behalf work runs.
	FieldUserID = "user_id"
	// FieldMediaKind is "movie" or "tv".
	FieldMediaKind = "media_kind"
	// FieldTMDBID is the catalog identifier of a title.
	FieldTMDBID = "tmdb_id"
	// FieldEventType classifies a log line for alerting and filtering.
	FieldEventType = "event_type"
	// FieldErrorHint is a short operator-facing next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	sessionIDKey
	userIDKey
)

// WithRequestID returns a context carrying the request correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithSession tags the context with chat session and user identifiers.
func WithSession(ctx context.Context, sessionID string, userID int64) context.Context {
	if sessionID != "" {
		ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, id))
	}
	if sid, ok := ctx.Value(sessionIDKey).(string); ok && sid != "" {
		fields = append(fields, slog.String(FieldSessionID, sid))
	}
	if uid, ok := ctx.Value(userIDKey).(int64); ok {
		fields = append(fields, slog.Int64(FieldUserID, uid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
