package domain

import "time"

// MessageType is the type of a message sent from the background path to
// attached client sessions.
type MessageType string

const (
	MessageTermSyncRequest           MessageType = "TERM_SYNC_REQUEST"
	MessageCommentSyncRequest        MessageType = "COMMENT_SYNC_REQUEST"
	MessageXPSyncRequest             MessageType = "XP_SYNC_REQUEST"
	MessageProfilePictureSyncRequest MessageType = "PROFILE_PICTURE_SYNC_REQUEST"
	MessageSyncCompleted             MessageType = "SYNC_COMPLETED"
)

// Message is a typed notification.
type Message struct {
	Type   MessageType `json:"type"`
	Tag    string      `json:"tag,omitempty"`
	Queues []QueueName `json:"queues,omitempty"`
	At     time.Time   `json:"at"`
}
