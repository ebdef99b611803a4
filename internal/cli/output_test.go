package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/glossync/internal/domain"
)

func TestPrinter_JSON(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	p := &Printer{Format: "json", Writer: buf}

	require.NoError(t, p.Print(map[string]int{"pending-term-votes": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got["pending-term-votes"])
}

func TestPrinter_YAMLUsesJSONFieldNames(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	p := &Printer{Format: "yaml", Writer: buf}

	entry := domain.QueueEntry{
		Seq:        4,
		ID:         "tmp-1",
		Queue:      domain.QueueTermVotes,
		Payload:    json.RawMessage(`{"term_id":"tmp-0","value":1}`),
		AuthToken:  "secret-token",
		EnqueuedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Print(entry))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "tmp-1", got["id"])
	assert.Equal(t, "pending-term-votes", got["queue"])
	assert.Equal(t, map[string]any{"term_id": "tmp-0", "value": 1}, got["payload"])
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestGetExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := WrapExitError(ExitFailure, "sync failed", domain.ErrAuthMissing)
	assert.ErrorIs(t, wrapped, domain.ErrAuthMissing)
	assert.Equal(t, "sync failed: "+domain.ErrAuthMissing.Error(), wrapped.Error())
}
