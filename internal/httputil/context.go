package httputil

import (
	"context"
	"log/slog"
	"net/http"
)

type (
	userIDKey    struct{}
	requestIDKey struct{}
)

// WithUserID returns r with the authenticated user attached
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID))
}

// GetUserID returns the authenticated user, or "" before auth ran
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey{}).(string)
	return userID
}

// WithRequestID returns r tagged with a correlation id
func WithRequestID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
}

// GetRequestID returns the correlation id, or ""
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// RequestLogger scopes logger to the request's correlation id and user
func RequestLogger(r *http.Request, logger *slog.Logger) *slog.Logger {
	if id := GetRequestID(r); id != "" {
		logger = logger.With("correlation_id", id)
	}
	if user := GetUserID(r); user != "" {
		logger = logger.With("user_id", user)
	}
	return logger
}
