package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "registry")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRegistryPrintsDefaultWiring(t *testing.T) {
	out, err := execute(t, "registry")
	require.NoError(t, err)
	assert.Contains(t, out, "idea.created")
	assert.Contains(t, out, "enqueue_connection")
	assert.Contains(t, out, "all handlers resolved")
}

func TestRegistryJSONOutput(t *testing.T) {
	out, err := execute(t, "--format", "json", "registry")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRegistryAcceptsCUEOverride(t *testing.T) {
	path := writeFile(t, "registry.cue", `
synchronizations: {
	"idea.created": ["enqueue_connection"]
}
`)
	out, err := execute(t, "registry", "--registry", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 events")
}

func TestRegistryRejectsUnknownEvent(t *testing.T) {
	path := writeFile(t, "registry.cue", `
synchronizations: {
	"idea.exploded": ["enqueue_connection"]
}
`)
	_, err := execute(t, "registry", "--registry", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRegistryRejectsUnknownHandler(t *testing.T) {
	path := writeFile(t, "registry.cue", `
synchronizations: {
	"idea.created": ["summon_kraken"]
}
`)
	_, err := execute(t, "registry", "--registry", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "summon_kraken")
}

func TestQueuesShowsEmptyLanes(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml",
		"database: "+filepath.Join(t.TempDir(), "q.db")+"\n")

	out, err := execute(t, "--config", cfgPath, "queues")
	require.NoError(t, err)
	assert.Contains(t, out, "connection")
	assert.Contains(t, out, "nurture")
	assert.Contains(t, out, "surfacing")
	assert.Contains(t, out, "objective_review")
}

func TestQueuesJSONOutput(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml",
		"database: "+filepath.Join(t.TempDir(), "q.db")+"\n")

	out, err := execute(t, "--config", cfgPath, "--format", "json", "queues")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var statuses []QueueStatus
	require.NoError(t, json.Unmarshal(data, &statuses))
	assert.Len(t, statuses, 4)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
