package orchestrator

import "github.com/heartmarshall/glossync/internal/domain"

// QueueResult counts what happened to one queue's entries in a run.
// Failed includes entries that were dead-lettered, dropped or restored for
// a later run.
type QueueResult struct {
	Replayed     int `json:"replayed"`
	Failed       int `json:"failed"`
	Deferred     int `json:"deferred"`
	DeadLettered int `json:"dead_lettered"`
	Dropped      int `json:"dropped"`
}

// Result summarizes a sync run. Synced is true when at least one entry was
// replayed.
type Result struct {
	Synced       bool                             `json:"synced"`
	Replayed     int                              `json:"replayed"`
	Failed       int                              `json:"failed"`
	Deferred     int                              `json:"deferred"`
	DeadLettered int                              `json:"dead_lettered"`
	Dropped      int                              `json:"dropped"`
	Queues       map[domain.QueueName]QueueResult `json:"queues,omitempty"`
}

func (r *Result) add(q domain.QueueName, qr QueueResult) {
	if qr == (QueueResult{}) {
		return
	}
	if r.Queues == nil {
		r.Queues = make(map[domain.QueueName]QueueResult)
	}
	r.Queues[q] = qr
	r.Replayed += qr.Replayed
	r.Failed += qr.Failed
	r.Deferred += qr.Deferred
	r.DeadLettered += qr.DeadLettered
	r.Dropped += qr.Dropped
	r.Synced = r.Replayed > 0
}

// replayedQueues lists queues with at least one replayed entry, in replay order.
func (r Result) replayedQueues() []domain.QueueName {
	var out []domain.QueueName
	for _, q := range domain.ReplayOrder {
		if r.Queues[q].Replayed > 0 {
			out = append(out, q)
		}
	}
	return out
}
