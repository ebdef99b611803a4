package domain

// Backend service names.
const (
	ServiceGlossary     = "glossary"
	ServiceGamification = "gamification"
	ServiceUsers        = "users"
)

// ReplayRequest is the single HTTP request that replays one queue entry.
type ReplayRequest struct {
	Service     string
	Method      string
	Path        string
	Body        []byte
	ContentType string
	// IdempotencyKey is the queue entry id; servers may use it to drop repeats.
	IdempotencyKey string
}

// ReplayResponse is a successful backend answer.
type ReplayResponse struct {
	StatusCode int
	Body       []byte
}
