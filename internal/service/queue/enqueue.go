package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/heartmarshall/glossync/internal/domain"
)

// Enqueue decodes a JSON body for q's family and queues it.
func (s *Service) Enqueue(ctx context.Context, q domain.QueueName, body []byte) (*domain.QueueEntry, error) {
	switch q {
	case domain.QueueTermSubmissions:
		return enqueueJSON(ctx, body, s.AddPendingTermSubmission)
	case domain.QueueTermVotes:
		return enqueueJSON(ctx, body, s.AddPendingTermVote)
	case domain.QueueTermApprovals:
		return enqueueJSON(ctx, body, s.AddPendingTermApproval)
	case domain.QueueTermRejections:
		return enqueueJSON(ctx, body, s.AddPendingTermRejection)
	case domain.QueueTermDeletes:
		return enqueueJSON(ctx, body, s.AddPendingTermDelete)
	case domain.QueueComments:
		return enqueueJSON(ctx, body, s.AddPendingComment)
	case domain.QueueCommentVotes:
		return enqueueJSON(ctx, body, s.AddPendingCommentVote)
	case domain.QueueCommentEdits:
		return enqueueJSON(ctx, body, s.AddPendingCommentEdit)
	case domain.QueueCommentDeletes:
		return enqueueJSON(ctx, body, s.AddPendingCommentDelete)
	case domain.QueueXPAwards:
		return enqueueJSON(ctx, body, s.AddPendingXPAward)
	case domain.QueueProfilePictureUploads:
		return enqueueJSON(ctx, body, s.AddPendingProfilePictureUpload)
	default:
		return nil, fmt.Errorf("enqueue: unknown queue %q: %w", q, domain.ErrNotFound)
	}
}

func enqueueJSON[T any](ctx context.Context, body []byte, add func(context.Context, T) (*domain.QueueEntry, error)) (*domain.QueueEntry, error) {
	var input T
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return nil, domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return add(ctx, input)
}
