package queue

import "github.com/heartmarshall/glossync/internal/domain"

type family struct {
	tag       domain.WakeupTag
	service   string
	creates   domain.EntityKind
	synthetic domain.StoreName
}

var families = map[domain.QueueName]family{
	domain.QueueTermSubmissions: {
		tag: domain.TagTermActionsSync, service: domain.ServiceGlossary,
		creates: domain.EntityTerm, synthetic: domain.StoreTerms,
	},
	domain.QueueTermVotes:      {tag: domain.TagTermActionsSync, service: domain.ServiceGlossary},
	domain.QueueTermApprovals:  {tag: domain.TagTermActionsSync, service: domain.ServiceGlossary},
	domain.QueueTermRejections: {tag: domain.TagTermActionsSync, service: domain.ServiceGlossary},
	domain.QueueTermDeletes:    {tag: domain.TagTermActionsSync, service: domain.ServiceGlossary},
	domain.QueueComments: {
		tag: domain.TagCommentSync, service: domain.ServiceGlossary,
		creates: domain.EntityComment, synthetic: domain.StoreCommentsByTerm,
	},
	domain.QueueCommentVotes:          {tag: domain.TagCommentSync, service: domain.ServiceGlossary},
	domain.QueueCommentEdits:          {tag: domain.TagCommentSync, service: domain.ServiceGlossary},
	domain.QueueCommentDeletes:        {tag: domain.TagCommentSync, service: domain.ServiceGlossary},
	domain.QueueXPAwards:              {tag: domain.TagXPSync, service: domain.ServiceGamification},
	domain.QueueProfilePictureUploads: {tag: domain.TagProfilePictureSync, service: domain.ServiceUsers},
}

func tagFor(q domain.QueueName) domain.WakeupTag { return families[q].tag }

// Creates reports which entity kind a successful replay of q creates.
func (s *Service) Creates(q domain.QueueName) (domain.EntityKind, bool) {
	k := families[q].creates
	return k, k != ""
}

// SyntheticStore reports where q keeps its optimistic rows.
func (s *Service) SyntheticStore(q domain.QueueName) (domain.StoreName, bool) {
	st := families[q].synthetic
	return st, st != ""
}

// CreationQueues returns the queues whose entries create entities of kind.
func (s *Service) CreationQueues(kind domain.EntityKind) []domain.QueueName {
	return creationQueues(kind)
}

func creationQueues(kind domain.EntityKind) []domain.QueueName {
	var out []domain.QueueName
	for _, q := range domain.ReplayOrder {
		if kind != "" && families[q].creates == kind {
			out = append(out, q)
		}
	}
	return out
}

func termRef(id string) domain.DomainRef {
	return domain.DomainRef{Field: "term_id", Kind: domain.EntityTerm, ID: id}
}

func commentRef(id string) domain.DomainRef {
	return domain.DomainRef{Field: "comment_id", Kind: domain.EntityComment, ID: id}
}
