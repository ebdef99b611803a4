package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayOrder_CreationsBeforeDependents(t *testing.T) {
	t.Parallel()

	idx := make(map[QueueName]int, len(ReplayOrder))
	for i, q := range ReplayOrder {
		idx[q] = i
	}

	assert.Len(t, idx, 11)
	assert.Less(t, idx[QueueTermSubmissions], idx[QueueTermVotes])
	assert.Less(t, idx[QueueTermSubmissions], idx[QueueTermApprovals])
	assert.Less(t, idx[QueueTermSubmissions], idx[QueueComments])
	assert.Less(t, idx[QueueComments], idx[QueueCommentVotes])
	assert.Less(t, idx[QueueComments], idx[QueueCommentEdits])
	assert.Less(t, idx[QueueCommentEdits], idx[QueueCommentDeletes])
	assert.Less(t, idx[QueueComments], idx[QueueTermDeletes])
	assert.Less(t, idx[QueueTermSubmissions], idx[QueueXPAwards])
}

func TestParseQueueName(t *testing.T) {
	t.Parallel()

	q, err := ParseQueueName("pending-term-votes")
	require.NoError(t, err)
	assert.Equal(t, QueueTermVotes, q)

	q, err = ParseQueueName("comment-edits")
	require.NoError(t, err)
	assert.Equal(t, QueueCommentEdits, q)

	_, err = ParseQueueName("pending-nothing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOrderQueues_KeepsFixedOrder(t *testing.T) {
	t.Parallel()

	got := OrderQueues(QueueCommentVotes, QueueTermVotes, QueueProfilePictureUploads)
	assert.Equal(t, []QueueName{QueueTermVotes, QueueCommentVotes, QueueProfilePictureUploads}, got)
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	e := QueueEntry{ID: "v1", Queue: QueueTermVotes, Payload: json.RawMessage(`{"term_id":"tmp-42","direction":"up"}`)}

	v, err := DecodePayload[TermVote](e)
	require.NoError(t, err)
	assert.Equal(t, "tmp-42", v.TermID)
	assert.Equal(t, VoteUp, v.Direction)

	_, err = DecodePayload[TermVote](QueueEntry{Payload: json.RawMessage(`{`)})
	assert.Error(t, err)
}

func TestQueueEntry_TokenNotSerialized(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(QueueEntry{ID: "x", AuthToken: "secret", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestCachedEntity_Fresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	assert.True(t, CachedEntity{}.Fresh(now))
	assert.True(t, CachedEntity{ExpiresAt: &later}.Fresh(now))
	assert.False(t, CachedEntity{ExpiresAt: &earlier}.Fresh(now))
}

func TestStoreName_Indexes(t *testing.T) {
	t.Parallel()

	assert.True(t, StoreCommentsByTerm.HasIndex("term_id"))
	assert.False(t, StoreTerms.HasIndex("term_id"))

	_, err := ParseStoreName("pending-comments")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWakeupTag(t *testing.T) {
	t.Parallel()

	tag, err := ParseWakeupTag("comment-sync")
	require.NoError(t, err)
	assert.Equal(t, MessageCommentSyncRequest, tag.Message())
	assert.Equal(t, []QueueName{QueueCommentVotes}, tag.DirectQueues())

	assert.Empty(t, TagXPSync.DirectQueues())
	assert.Equal(t, MessageProfilePictureSyncRequest, TagProfilePictureSync.Message())

	_, err = ParseWakeupTag("periodic-sync")
	assert.ErrorIs(t, err, ErrNotFound)
}
