package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLowersDeclarations(t *testing.T) {
	s := &Scenario{
		Name: "two",
		Objects: []ObjectDecl{
			{Name: "a", Fields: map[string]any{"x": 1}},
			{Name: "b", Fields: map[string]any{"y": nil}},
		},
		Processes: []ProcessDecl{
			{
				Name: "p", Target: "a", Loop: true,
				Steps: []StepDecl{
					{Name: "s", Ops: []OpDecl{{Set: &SetOp{Field: "x", Value: 2}}}},
				},
			},
		},
	}

	c, err := Compile(s)
	require.NoError(t, err)
	require.Len(t, c.Records, 2)
	require.Len(t, c.Processes, 1)
	assert.Equal(t, "p", c.Processes[0].Name())
}

func TestCompileRejectsDuplicateObject(t *testing.T) {
	s := &Scenario{
		Name: "dup",
		Objects: []ObjectDecl{
			{Name: "m", Fields: map[string]any{"x": 1}},
			{Name: "m", Fields: map[string]any{"x": 1}},
		},
	}
	_, err := Compile(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate object "m"`)
}

func TestCompileRejectsUnknownTarget(t *testing.T) {
	s := &Scenario{
		Name:    "bad-target",
		Objects: []ObjectDecl{{Name: "m", Fields: map[string]any{"x": 1}}},
		Processes: []ProcessDecl{
			{Name: "p", Target: "nope", Steps: []StepDecl{
				{Name: "s", Ops: []OpDecl{{Set: &SetOp{Field: "x", Value: 2}}}},
			}},
		},
	}
	_, err := Compile(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown object "nope"`)
}

func TestCompileRejectsFloatValue(t *testing.T) {
	s := &Scenario{
		Name:    "float",
		Objects: []ObjectDecl{{Name: "m", Fields: map[string]any{"x": 1.5}}},
	}
	_, err := Compile(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float values are not supported")
}

func TestCompileRejectsAmbiguousOp(t *testing.T) {
	s := &Scenario{
		Name:    "ambiguous",
		Objects: []ObjectDecl{{Name: "m", Fields: map[string]any{"x": 1}}},
		Processes: []ProcessDecl{
			{Name: "p", Target: "m", Steps: []StepDecl{
				{Name: "s", Ops: []OpDecl{{
					Set:      &SetOp{Field: "x", Value: 2},
					AssertEq: &AssertEqOp{Field: "x", Value: 2},
				}}},
			}},
		},
	}
	_, err := Compile(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of set, assert_eq, choose")
}
