package domain

// VoteDirection is the direction of a vote on a term or comment.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (v VoteDirection) IsValid() bool {
	return v == VoteUp || v == VoteDown
}

// TermSubmission proposes a new glossary term.
type TermSubmission struct {
	Term       string   `json:"term"`
	Definition string   `json:"definition"`
	Language   string   `json:"language,omitempty"`
	Example    *string  `json:"example,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// TermVote is a vote on a term.
type TermVote struct {
	TermID    string        `json:"term_id"`
	Direction VoteDirection `json:"direction"`
}

// TermApproval approves a submitted term.
type TermApproval struct {
	TermID  string  `json:"term_id"`
	Comment *string `json:"comment,omitempty"`
}

// TermRejection rejects a submitted term.
type TermRejection struct {
	TermID string `json:"term_id"`
	Reason string `json:"reason"`
}

// TermDelete removes a term.
type TermDelete struct {
	TermID string `json:"term_id"`
}

// Comment is a new comment on a term, optionally replying to another comment.
type Comment struct {
	TermID   string  `json:"term_id"`
	ParentID *string `json:"parent_id,omitempty"`
	Text     string  `json:"text"`
}

// CommentVote is a vote on a comment.
type CommentVote struct {
	CommentID string        `json:"comment_id"`
	Direction VoteDirection `json:"direction"`
}

// CommentEdit replaces a comment's text.
type CommentEdit struct {
	CommentID string `json:"comment_id"`
	Text      string `json:"text"`
}

// CommentDelete removes a comment.
type CommentDelete struct {
	CommentID string `json:"comment_id"`
}

// XPAward records experience points earned for an action. The amount is
// decided by the caller.
type XPAward struct {
	Action        string     `json:"action"`
	Amount        int        `json:"amount"`
	ReferenceID   *string    `json:"reference_id,omitempty"`
	ReferenceKind EntityKind `json:"reference_kind,omitempty"`
}

// ProfilePictureUpload carries an image to upload as the user's avatar.
type ProfilePictureUpload struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}
