package domain

import "fmt"

// WakeupTag names a background wake-up registration.
type WakeupTag string

const (
	TagTermActionsSync    WakeupTag = "term-actions-sync"
	TagCommentSync        WakeupTag = "comment-sync"
	TagXPSync             WakeupTag = "xp-sync"
	TagProfilePictureSync WakeupTag = "profile-picture-sync"
)

var wakeupTags = map[WakeupTag]struct {
	message MessageType
	direct  []QueueName
}{
	TagTermActionsSync:    {MessageTermSyncRequest, []QueueName{QueueTermVotes}},
	TagCommentSync:        {MessageCommentSyncRequest, []QueueName{QueueCommentVotes}},
	TagXPSync:             {MessageXPSyncRequest, nil},
	TagProfilePictureSync: {MessageProfilePictureSyncRequest, nil},
}

func (t WakeupTag) String() string { return string(t) }

func (t WakeupTag) IsValid() bool {
	_, ok := wakeupTags[t]
	return ok
}

// Message returns the message type published when the tag fires.
func (t WakeupTag) Message() MessageType { return wakeupTags[t].message }

// DirectQueues returns the queues the background path replays for the tag
// without a client session.
func (t WakeupTag) DirectQueues() []QueueName { return wakeupTags[t].direct }

// ParseWakeupTag validates a tag name.
func ParseWakeupTag(s string) (WakeupTag, error) {
	t := WakeupTag(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown wake-up tag %q: %w", s, ErrNotFound)
	}
	return t, nil
}
