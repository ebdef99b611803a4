package queue

import (
	"context"

	"github.com/heartmarshall/glossync/internal/domain"
)

// AddPendingComment queues a new comment and writes its optimistic row into
// the comments-by-term store under the temporary id.
func (s *Service) AddPendingComment(ctx context.Context, input CommentInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	refs := []domain.DomainRef{termRef(input.TermID)}
	if input.ParentID != nil {
		refs = append(refs, domain.DomainRef{Field: "parent_id", Kind: domain.EntityComment, ID: *input.ParentID})
	}

	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:     domain.QueueComments,
		clientID:  input.ClientID,
		payload:   input.Comment,
		refs:      refs,
		synthetic: syntheticRow(domain.StoreCommentsByTerm, nil),
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingComments drains the comment queue.
func (s *Service) GetAndClearPendingComments(ctx context.Context) ([]domain.Pending[domain.Comment], error) {
	return drain[domain.Comment](ctx, s, domain.QueueComments)
}

// AddPendingCommentVote queues a vote on a comment.
func (s *Service) AddPendingCommentVote(ctx context.Context, input CommentVoteInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueCommentVotes,
		clientID: input.ClientID,
		payload:  input.CommentVote,
		refs:     []domain.DomainRef{commentRef(input.CommentID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingCommentVotes drains the comment vote queue.
func (s *Service) GetAndClearPendingCommentVotes(ctx context.Context) ([]domain.Pending[domain.CommentVote], error) {
	return drain[domain.CommentVote](ctx, s, domain.QueueCommentVotes)
}

// AddPendingCommentEdit queues a comment edit.
func (s *Service) AddPendingCommentEdit(ctx context.Context, input CommentEditInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueCommentEdits,
		clientID: input.ClientID,
		payload:  input.CommentEdit,
		refs:     []domain.DomainRef{commentRef(input.CommentID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingCommentEdits drains the comment edit queue.
func (s *Service) GetAndClearPendingCommentEdits(ctx context.Context) ([]domain.Pending[domain.CommentEdit], error) {
	return drain[domain.CommentEdit](ctx, s, domain.QueueCommentEdits)
}

// AddPendingCommentDelete queues a comment deletion.
func (s *Service) AddPendingCommentDelete(ctx context.Context, input CommentDeleteInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueCommentDeletes,
		clientID: input.ClientID,
		payload:  input.CommentDelete,
		refs:     []domain.DomainRef{commentRef(input.CommentID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingCommentDeletes drains the comment delete queue.
func (s *Service) GetAndClearPendingCommentDeletes(ctx context.Context) ([]domain.Pending[domain.CommentDelete], error) {
	return drain[domain.CommentDelete](ctx, s, domain.QueueCommentDeletes)
}
