package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckPassingScenario(t *testing.T) {
	out, err := execute(t, "check", filepath.Join("testdata", "counter.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "scenario:    counter")
	assert.Contains(t, out, "outcome:     exhausted")
	assert.Contains(t, out, "result:      PASS")
}

func TestCheckViolationScenarioPasses(t *testing.T) {
	// The scenario expects the violation, so the check passes.
	out, err := execute(t, "check", filepath.Join("testdata", "race.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "outcome:     violation")
	assert.Contains(t, out, "schedule:")
	assert.Contains(t, out, "checker/expect-raised")
	assert.Contains(t, out, "result:      PASS")
}

func TestCheckJSONFormat(t *testing.T) {
	out, err := execute(t, "--format", "json", "check", filepath.Join("testdata", "counter.yaml"))
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "counter", data["scenario"])
	assert.Equal(t, float64(3), data["states"])
}

func TestCheckFailedExpectations(t *testing.T) {
	out, err := execute(t, "check", filepath.Join("testdata", "badexpect.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "result:      FAIL")
	assert.Contains(t, out, "want 99")
}

func TestCheckMissingScenario(t *testing.T) {
	_, err := execute(t, "check", filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckGraphFlag(t *testing.T) {
	out, err := execute(t, "check", "--graph", filepath.Join("testdata", "counter.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "nodes: 3")
	assert.Contains(t, out, "bump/one")
}

func TestCheckJournalsRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "--format", "json", "check", "--db", db, filepath.Join("testdata", "race.yaml"))
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	runID, _ := data["run_id"].(string)
	require.NotEmpty(t, runID)

	listing, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, listing, runID)
	assert.Contains(t, listing, "race")

	trace, err := execute(t, "trace", "--db", db, runID)
	require.NoError(t, err)
	assert.Contains(t, trace, "outcome:  violation")
	assert.Contains(t, trace, "checker/expect-raised")
}

func TestTraceUnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "trace", "--db", db, "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate",
		filepath.Join("testdata", "counter.yaml"),
		filepath.Join("testdata", "race.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "2 scenario(s) valid")
}

func TestValidateRejectsMalformed(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
