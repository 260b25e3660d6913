package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return s
}

func TestSequentialScenarioPasses(t *testing.T) {
	s := loadFixture(t, "sequential.yaml")

	r, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.True(t, r.Pass(), "errors: %v", r.Errors)
	assert.Equal(t, "exhausted", r.Outcome)
	assert.Equal(t, 3, r.Stats.States)
}

func TestChoiceScenarioForks(t *testing.T) {
	s := loadFixture(t, "choice.yaml")

	r, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.True(t, r.Pass(), "errors: %v", r.Errors)
	assert.Equal(t, 7, r.Stats.States)
}

func TestViolationScenarioFindsCounterexample(t *testing.T) {
	s := loadFixture(t, "violation.yaml")

	r, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.True(t, r.Pass(), "errors: %v", r.Errors)
	assert.Equal(t, "violation", r.Outcome)
	require.NotNil(t, r.Violation)
	assert.Equal(t, "checker", r.Violation.Process)
	assert.NotEmpty(t, r.Violation.Schedule)
}

func TestCycleScenarioConverges(t *testing.T) {
	s := loadFixture(t, "cycle.yaml")

	r, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.True(t, r.Pass(), "errors: %v", r.Errors)
	assert.Equal(t, 3, r.Stats.States)
	assert.Equal(t, 1, r.Stats.Pruned)
}

func TestRunReportsFailedExpectations(t *testing.T) {
	s := loadFixture(t, "sequential.yaml")
	s.Expect.States = 99

	r, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.False(t, r.Pass())
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "want 99")
	assert.Contains(t, r.FormatText(), "result:      FAIL")
}

func TestRunRecordsGraphWhenEnabled(t *testing.T) {
	s := loadFixture(t, "sequential.yaml")
	s.Graph = true

	r, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Contains(t, r.GraphDump, "nodes: 3")
	assert.Contains(t, r.GraphDump, "t/set-b")
}
