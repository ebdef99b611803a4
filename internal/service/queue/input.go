package queue

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/glossync/internal/domain"
)

const (
	maxClientIDLen   = 128
	maxTermLen       = 200
	maxDefinitionLen = 5000
	maxCommentLen    = 5000
	maxReasonLen     = 1000
	maxPictureBytes  = 5 << 20
)

var allowedPictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

func checkClientID(errs []domain.FieldError, id string) []domain.FieldError {
	if id != "" && (strings.TrimSpace(id) != id || len(id) > maxClientIDLen) {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "must be trimmed and at most 128 characters"})
	}
	return errs
}

func required(errs []domain.FieldError, field, value string) []domain.FieldError {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, domain.FieldError{Field: field, Message: "required"})
	}
	return errs
}

func maxLen(errs []domain.FieldError, field, value string, n int) []domain.FieldError {
	if utf8.RuneCountInString(value) > n {
		errs = append(errs, domain.FieldError{Field: field, Message: "too long"})
	}
	return errs
}

func result(errs []domain.FieldError) error {
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Terms
// ---------------------------------------------------------------------------

// TermSubmissionInput queues a new term. ClientID becomes the temporary id.
type TermSubmissionInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.TermSubmission
}

// Validate checks all fields and collects all errors.
func (i TermSubmissionInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "term", i.Term)
	errs = maxLen(errs, "term", i.Term, maxTermLen)
	errs = required(errs, "definition", i.Definition)
	errs = maxLen(errs, "definition", i.Definition, maxDefinitionLen)
	return result(errs)
}

// TermVoteInput queues a vote on a term.
type TermVoteInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.TermVote
}

// Validate checks all fields and collects all errors.
func (i TermVoteInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "term_id", i.TermID)
	if !i.Direction.IsValid() {
		errs = append(errs, domain.FieldError{Field: "direction", Message: "must be up or down"})
	}
	return result(errs)
}

// TermApprovalInput queues a moderator approval.
type TermApprovalInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.TermApproval
}

// Validate checks all fields and collects all errors.
func (i TermApprovalInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "term_id", i.TermID)
	if i.Comment != nil {
		errs = maxLen(errs, "comment", *i.Comment, maxReasonLen)
	}
	return result(errs)
}

// TermRejectionInput queues a moderator rejection.
type TermRejectionInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.TermRejection
}

// Validate checks all fields and collects all errors.
func (i TermRejectionInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "term_id", i.TermID)
	errs = required(errs, "reason", i.Reason)
	errs = maxLen(errs, "reason", i.Reason, maxReasonLen)
	return result(errs)
}

// TermDeleteInput queues a term deletion.
type TermDeleteInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.TermDelete
}

// Validate checks all fields and collects all errors.
func (i TermDeleteInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "term_id", i.TermID)
	return result(errs)
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

// CommentInput queues a new comment. ClientID becomes the temporary id.
type CommentInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.Comment
}

// Validate checks all fields and collects all errors.
func (i CommentInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "term_id", i.TermID)
	errs = required(errs, "text", i.Text)
	errs = maxLen(errs, "text", i.Text, maxCommentLen)
	if i.ParentID != nil && strings.TrimSpace(*i.ParentID) == "" {
		errs = append(errs, domain.FieldError{Field: "parent_id", Message: "must not be empty"})
	}
	return result(errs)
}

// CommentVoteInput queues a vote on a comment.
type CommentVoteInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.CommentVote
}

// Validate checks all fields and collects all errors.
func (i CommentVoteInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "comment_id", i.CommentID)
	if !i.Direction.IsValid() {
		errs = append(errs, domain.FieldError{Field: "direction", Message: "must be up or down"})
	}
	return result(errs)
}

// CommentEditInput queues a comment edit.
type CommentEditInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.CommentEdit
}

// Validate checks all fields and collects all errors.
func (i CommentEditInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "comment_id", i.CommentID)
	errs = required(errs, "text", i.Text)
	errs = maxLen(errs, "text", i.Text, maxCommentLen)
	return result(errs)
}

// CommentDeleteInput queues a comment deletion.
type CommentDeleteInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.CommentDelete
}

// Validate checks all fields and collects all errors.
func (i CommentDeleteInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "comment_id", i.CommentID)
	return result(errs)
}

// ---------------------------------------------------------------------------
// XP and profile
// ---------------------------------------------------------------------------

// XPAwardInput queues an experience-point award.
type XPAwardInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.XPAward
}

// Validate checks all fields and collects all errors.
func (i XPAwardInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "action", i.Action)
	if i.Amount <= 0 {
		errs = append(errs, domain.FieldError{Field: "amount", Message: "must be positive"})
	}
	if i.ReferenceID != nil {
		if strings.TrimSpace(*i.ReferenceID) == "" {
			errs = append(errs, domain.FieldError{Field: "reference_id", Message: "must not be empty"})
		}
		if i.ReferenceKind != domain.EntityTerm && i.ReferenceKind != domain.EntityComment {
			errs = append(errs, domain.FieldError{Field: "reference_kind", Message: "must be term or comment"})
		}
	}
	return result(errs)
}

// ProfilePictureInput queues a profile picture upload.
type ProfilePictureInput struct {
	ClientID string `json:"client_id,omitempty"`
	domain.ProfilePictureUpload
}

// Validate checks all fields and collects all errors.
func (i ProfilePictureInput) Validate() error {
	errs := checkClientID(nil, i.ClientID)
	errs = required(errs, "file_name", i.FileName)
	if !allowedPictureTypes[i.ContentType] {
		errs = append(errs, domain.FieldError{Field: "content_type", Message: "must be jpeg, png, webp or gif"})
	}
	if len(i.Data) == 0 {
		errs = append(errs, domain.FieldError{Field: "data", Message: "required"})
	}
	if len(i.Data) > maxPictureBytes {
		errs = append(errs, domain.FieldError{Field: "data", Message: "max 5 MiB"})
	}
	return result(errs)
}
