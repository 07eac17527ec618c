package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarunerror/openNova/pkg/exec"
)

// panickyRunner simulates an effector blowing up mid-plan.
type panickyRunner struct {
	fakeRunner
}

func (p *panickyRunner) Run(_ context.Context, command string, _ *exec.Opts) (exec.Result, error) {
	if command == "boom" {
		panic("effector crashed")
	}
	return exec.Result{ExitCode: 0}, nil
}

func newTestExecutor(runner exec.Runner) *PlanExecutor {
	var sim fakeSimulator
	d := NewDispatcher(&sim, runner, nil, nil)
	d.sleep = func(time.Duration) {}
	e := NewPlanExecutor(d, nil, nil)
	e.sleep = func(time.Duration) {}
	return e
}

func TestExecuteEmptyPlanRejected(t *testing.T) {
	e := newTestExecutor(&fakeRunner{})

	report := e.Execute(context.Background(), Plan{})
	assert.False(t, report.OverallSucceeded)
	assert.Equal(t, 0, report.TotalSteps)
	assert.Empty(t, report.StepOutcomes)
	assert.NotEmpty(t, report.ID)
}

func TestExecuteRunsEveryStepInOrder(t *testing.T) {
	runner := &fakeRunner{result: exec.Result{ExitCode: 0}}
	e := newTestExecutor(runner)

	plan := Plan{
		{Kind: KindShell, Value: "first"},
		{Kind: KindShell, Value: "second"},
		{Kind: KindShell, Value: "third"},
	}
	report := e.Execute(context.Background(), plan)

	assert.True(t, report.OverallSucceeded)
	assert.Equal(t, 3, report.TotalSteps)
	assert.Equal(t, 3, report.SuccessfulSteps)
	assert.Equal(t, []string{"first", "second", "third"}, runner.commands)
}

func TestExecuteContinuesPastFailures(t *testing.T) {
	runner := &fakeRunner{result: exec.Result{ExitCode: 1}}
	e := newTestExecutor(runner)

	plan := Plan{
		{Kind: KindShell, Value: "fails"},
		{Kind: KindOpen, Target: Target{Name: "chrome"}},
	}
	report := e.Execute(context.Background(), plan)

	require.Len(t, report.StepOutcomes, 2)
	assert.False(t, report.StepOutcomes[0].Succeeded)
	assert.True(t, report.StepOutcomes[1].Succeeded)
	assert.False(t, report.OverallSucceeded)
	assert.Equal(t, 1, report.SuccessfulSteps)
	assert.Equal(t, []string{"chrome"}, runner.opened, "later steps still run after a failure")
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	e := newTestExecutor(&panickyRunner{})

	plan := Plan{
		{Kind: KindShell, Value: "boom"},
		{Kind: KindShell, Value: "still runs"},
	}
	report := e.Execute(context.Background(), plan)

	require.Len(t, report.StepOutcomes, 2)
	assert.False(t, report.StepOutcomes[0].Succeeded)
	assert.Contains(t, report.StepOutcomes[0].Message, "panicked")
	assert.True(t, report.StepOutcomes[1].Succeeded)
}

func TestExecutePacesBetweenSteps(t *testing.T) {
	runner := &fakeRunner{result: exec.Result{ExitCode: 0}}
	var sim fakeSimulator
	d := NewDispatcher(&sim, runner, nil, nil)
	e := NewPlanExecutor(d, nil, nil)

	var pauses []time.Duration
	e.sleep = func(dur time.Duration) { pauses = append(pauses, dur) }
	e.SetStepDelay(250 * time.Millisecond)

	plan := Plan{
		{Kind: KindShell, Value: "a"},
		{Kind: KindShell, Value: "b"},
		{Kind: KindShell, Value: "c"},
	}
	e.Execute(context.Background(), plan)

	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, pauses,
		"pause between steps, not before the first")
}
