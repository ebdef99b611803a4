package ctxutil

import (
	"context"
)

type ctxKey string

const (
	tokenKey     ctxKey = "auth_token"
	subjectKey   ctxKey = "subject"
	requestIDKey ctxKey = "request_id"
)

// WithToken stores the caller's bearer token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromCtx extracts the bearer token from the context.
// Returns "" and false if the value is missing or empty.
func TokenFromCtx(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// WithSubject stores the token subject (user id as the backend knows it).
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}

// SubjectFromCtx extracts the token subject. Returns "" if absent.
func SubjectFromCtx(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
