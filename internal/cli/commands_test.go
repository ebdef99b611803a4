package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
)

// writeConfig writes a config pointing at a fresh store and an unreachable
// backend. CONFIG_PATH is restored when the test ends.
func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv(config.PathEnv, "")

	dir := t.TempDir()
	content := "store:\n  path: " + filepath.Join(dir, "glossync.db") + "\n" +
		"backend:\n  base_url: http://127.0.0.1:1\n" +
		"log:\n  level: error\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, "version", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVersionCommand_YAML(t *testing.T) {
	out, err := execute(t, "version", "--format", "yaml")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev", got["version"])
	assert.Equal(t, "unknown", got["commit"])
	assert.Equal(t, runtime.Version(), got["go_version"])
}

func TestQueuesCommand_PrintsEveryQueue(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "queues", "--config", path)
	require.NoError(t, err)

	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Len(t, counts, len(domain.ReplayOrder))
	for _, q := range domain.ReplayOrder {
		assert.Zero(t, counts[string(q)], q)
	}
}

func TestSyncCommand_NoCredential(t *testing.T) {
	path := writeConfig(t)

	_, err := execute(t, "sync", "--config", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthMissing)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSyncCommand_InvalidQueue(t *testing.T) {
	path := writeConfig(t)

	_, err := execute(t, "sync", "--config", path, "--queue", "pending-nothing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDeadLettersList_Empty(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "dead-letters", "list", "--config", path, "--queue", string(domain.QueueComments))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestDeadLettersRequeue(t *testing.T) {
	path := writeConfig(t)

	t.Run("invalid id", func(t *testing.T) {
		_, err := execute(t, "dead-letters", "requeue", "abc", "--config", path)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := execute(t, "dead-letters", "requeue", "42", "--config", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

func TestPruneCommand(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "prune", "--config", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mappings":0,"responses":0}`, out)
}
