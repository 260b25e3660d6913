package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statewalk/statewalk/internal/object"
	"github.com/statewalk/statewalk/internal/statetree"
)

func noop(ctx *Context, self *object.Record) error { return nil }

func TestFiniteProcessCursor(t *testing.T) {
	rec := object.NewRecord("m", "foo")
	p := NewProcess("p", rec,
		Step{Name: "one", Fn: noop},
		Step{Name: "two", Fn: noop},
	)

	require.True(t, p.Enabled(0))
	step, next, err := p.StepAt(0)
	require.NoError(t, err)
	assert.Equal(t, "one", step.Name)
	assert.Equal(t, 1, next)

	step, next, err = p.StepAt(1)
	require.NoError(t, err)
	assert.Equal(t, "two", step.Name)
	assert.Equal(t, 2, next)

	assert.False(t, p.Enabled(2), "finite process disables past its last step")
	_, _, err = p.StepAt(2)
	assert.Error(t, err)
}

func TestLoopProcessAlwaysEnabled(t *testing.T) {
	rec := object.NewRecord("m", "foo")
	p := NewLoop("gen", rec, Step{Name: "toggle", Fn: noop})

	for cursor := 0; cursor < 5; cursor++ {
		require.True(t, p.Enabled(cursor))
	}

	_, next, err := p.StepAt(0)
	require.NoError(t, err)
	assert.Equal(t, 0, next, "single-step loop wraps its cursor")
}

func TestEmptyProcessNeverEnabled(t *testing.T) {
	rec := object.NewRecord("m", "foo")
	assert.False(t, NewProcess("p", rec).Enabled(0))
	assert.False(t, NewLoop("p", rec).Enabled(0))
}

func TestContextReplaysResolutions(t *testing.T) {
	set := statetree.MustChoice(statetree.Int(1), statetree.Int(2))

	ctx := NewContext(nil)
	_, err := ctx.Choose(set)
	require.ErrorIs(t, err, ErrChoicePending)
	require.NotNil(t, ctx.Pending())
	assert.Equal(t, 2, ctx.Pending().Len())

	ctx = NewContext([]statetree.Value{statetree.Int(2)})
	v, err := ctx.Choose(set)
	require.NoError(t, err)
	assert.Equal(t, statetree.Int(2), v)
	assert.Nil(t, ctx.Pending())

	// A second, deeper choice in the same step goes pending again.
	_, err = ctx.Choose(set)
	require.ErrorIs(t, err, ErrChoicePending)
}

func TestViolationError(t *testing.T) {
	v := Violatedf("balance went negative: %d", -3)
	v.Process = "writer"
	v.Step = "debit"
	v.Schedule = []ScheduleEntry{
		{Process: "writer", Step: "debit", StateHash: "abc123"},
	}

	assert.Contains(t, v.Error(), "writer/debit")
	assert.Contains(t, v.Error(), "balance went negative")
	assert.Contains(t, v.FormatSchedule(), "writer/debit -> abc123")

	assert.True(t, IsViolation(v))
	assert.True(t, IsViolation(fmt.Errorf("wrapped: %w", v)))
	assert.False(t, IsViolation(fmt.Errorf("plain")))
}

func TestAssert(t *testing.T) {
	assert.NoError(t, Assert(true, "unused"))

	err := Assert(false, "foo is %q", "b")
	require.Error(t, err)
	assert.True(t, IsViolation(err))
	assert.Contains(t, err.Error(), `foo is "b"`)
}
