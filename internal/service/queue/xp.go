package queue

import (
	"context"

	"github.com/heartmarshall/glossync/internal/domain"
)

// AddPendingXPAward queues an experience-point award. A reference to a term
// or comment is rewritten at replay if it was created offline.
func (s *Service) AddPendingXPAward(ctx context.Context, input XPAwardInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var refs []domain.DomainRef
	if input.ReferenceID != nil {
		refs = []domain.DomainRef{{Field: "reference_id", Kind: input.ReferenceKind, ID: *input.ReferenceID}}
	}

	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueXPAwards,
		clientID: input.ClientID,
		payload:  input.XPAward,
		refs:     refs,
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingXPAwards drains the xp award queue.
func (s *Service) GetAndClearPendingXPAwards(ctx context.Context) ([]domain.Pending[domain.XPAward], error) {
	return drain[domain.XPAward](ctx, s, domain.QueueXPAwards)
}

// AddPendingProfilePictureUpload queues a profile picture upload.
func (s *Service) AddPendingProfilePictureUpload(ctx context.Context, input ProfilePictureInput) (*domain.QueueEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	entry, err := s.enqueue(ctx, enqueueRequest{
		queue:    domain.QueueProfilePictureUploads,
		clientID: input.ClientID,
		payload:  input.ProfilePictureUpload,
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAndClearPendingProfilePictureUploads drains the profile picture queue.
func (s *Service) GetAndClearPendingProfilePictureUploads(ctx context.Context) ([]domain.Pending[domain.ProfilePictureUpload], error) {
	return drain[domain.ProfilePictureUpload](ctx, s, domain.QueueProfilePictureUploads)
}
