package queue

import (
	"context"

	"github.com/heartmarshall/glossync/internal/domain"
)

// AddPendingTermSubmission queues a new term and writes its optimistic row
// into the terms store under the temporary id.
func (s *Service) AddPendingTermSubmission(ctx context.Context, input TermSubmissionInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:     domain.QueueTermSubmissions,
		clientID:  input.ClientID,
		payload:   input.TermSubmission,
		synthetic: syntheticRow(domain.StoreTerms, map[string]any{"status": "pending"}),
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingTermSubmissions drains the term submission queue.
func (s *Service) GetAndClearPendingTermSubmissions(ctx context.Context) ([]domain.Pending[domain.TermSubmission], error) {
	return drain[domain.TermSubmission](ctx, s, domain.QueueTermSubmissions)
}

// AddPendingTermVote queues a vote on a term.
func (s *Service) AddPendingTermVote(ctx context.Context, input TermVoteInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueTermVotes,
		clientID: input.ClientID,
		payload:  input.TermVote,
		refs:     []domain.DomainRef{termRef(input.TermID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingTermVotes drains the term vote queue.
func (s *Service) GetAndClearPendingTermVotes(ctx context.Context) ([]domain.Pending[domain.TermVote], error) {
	return drain[domain.TermVote](ctx, s, domain.QueueTermVotes)
}

// AddPendingTermApproval queues a term approval.
func (s *Service) AddPendingTermApproval(ctx context.Context, input TermApprovalInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueTermApprovals,
		clientID: input.ClientID,
		payload:  input.TermApproval,
		refs:     []domain.DomainRef{termRef(input.TermID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingTermApprovals drains the term approval queue.
func (s *Service) GetAndClearPendingTermApprovals(ctx context.Context) ([]domain.Pending[domain.TermApproval], error) {
	return drain[domain.TermApproval](ctx, s, domain.QueueTermApprovals)
}

// AddPendingTermRejection queues a term rejection.
func (s *Service) AddPendingTermRejection(ctx context.Context, input TermRejectionInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueTermRejections,
		clientID: input.ClientID,
		payload:  input.TermRejection,
		refs:     []domain.DomainRef{termRef(input.TermID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingTermRejections drains the term rejection queue.
func (s *Service) GetAndClearPendingTermRejections(ctx context.Context) ([]domain.Pending[domain.TermRejection], error) {
	return drain[domain.TermRejection](ctx, s, domain.QueueTermRejections)
}

// AddPendingTermDelete queues a term deletion.
func (s *Service) AddPendingTermDelete(ctx context.Context, input TermDeleteInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueTermDeletes,
		clientID: input.ClientID,
		payload:  input.TermDelete,
		refs:     []domain.DomainRef{termRef(input.TermID)},
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingTermDeletes drains the term delete queue.
func (s *Service) GetAndClearPendingTermDeletes(ctx context.Context) ([]domain.Pending[domain.TermDelete], error) {
	return drain[domain.TermDelete](ctx, s, domain.QueueTermDeletes)
}
