package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// QueueName identifies one pending-action queue.
type QueueName string

const (
	QueueTermSubmissions       QueueName = "pending-term-submissions"
	QueueTermVotes             QueueName = "pending-term-votes"
	QueueTermApprovals         QueueName = "pending-term-approvals"
	QueueTermRejections        QueueName = "pending-term-rejections"
	QueueComments              QueueName = "pending-comments"
	QueueCommentVotes          QueueName = "pending-comment-votes"
	QueueCommentEdits          QueueName = "pending-comment-edits"
	QueueCommentDeletes        QueueName = "pending-comment-deletes"
	QueueTermDeletes           QueueName = "pending-term-deletes"
	QueueXPAwards              QueueName = "pending-xp-awards"
	QueueProfilePictureUploads QueueName = "pending-profile-picture-uploads"
)

// ReplayOrder is the fixed cross-queue order. Queues that create entities come
// before queues whose entries reference them; deletes run after edits and votes.
var ReplayOrder = []QueueName{
	QueueTermSubmissions,
	QueueTermVotes,
	QueueTermApprovals,
	QueueTermRejections,
	QueueComments,
	QueueCommentVotes,
	QueueCommentEdits,
	QueueCommentDeletes,
	QueueTermDeletes,
	QueueXPAwards,
	QueueProfilePictureUploads,
}

func (q QueueName) String() string { return string(q) }

func (q QueueName) IsValid() bool {
	return slices.Contains(ReplayOrder, q)
}

// ParseQueueName accepts both the full store name and the short family name
// ("term-votes" for "pending-term-votes").
func ParseQueueName(s string) (QueueName, error) {
	q := QueueName(s)
	if q.IsValid() {
		return q, nil
	}
	q = QueueName("pending-" + s)
	if q.IsValid() {
		return q, nil
	}
	return "", fmt.Errorf("unknown queue %q: %w", s, ErrNotFound)
}

// OrderQueues filters ReplayOrder down to the given queues, keeping the fixed order.
func OrderQueues(queues ...QueueName) []QueueName {
	out := make([]QueueName, 0, len(queues))
	for _, q := range ReplayOrder {
		if slices.Contains(queues, q) {
			out = append(out, q)
		}
	}
	return out
}

// EntityKind names the kind of server entity a reference points at.
type EntityKind string

const (
	EntityTerm    EntityKind = "term"
	EntityComment EntityKind = "comment"
)

// DomainRef is a reference from a queued payload to another entity's identifier.
// Field is the JSON path of the identifier inside the payload.
type DomainRef struct {
	Field string     `json:"field"`
	Kind  EntityKind `json:"kind"`
	ID    string     `json:"id"`
}

// QueueEntry is one pending mutation. Entries are never edited in place:
// a retry re-inserts the same entry under its original sequence number.
type QueueEntry struct {
	Seq        int64           `json:"seq"`
	ID         string          `json:"id"`
	Queue      QueueName       `json:"queue"`
	Payload    json.RawMessage `json:"payload"`
	AuthToken  string          `json:"-"`
	Refs       []DomainRef     `json:"domain_refs,omitempty"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// DecodePayload unmarshals an entry's payload into T.
func DecodePayload[T any](e QueueEntry) (T, error) {
	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s payload: %w", e.Queue, e.ID, err)
	}
	return v, nil
}

// Pending pairs a drained entry with its decoded payload.
type Pending[T any] struct {
	Entry   QueueEntry
	Payload T
}
