package actions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tarunerror/openNova/pkg/logx"
	"github.com/tarunerror/openNova/pkg/metrics"
)

// DefaultStepDelay is the pause observed between consecutive plan steps so
// the desktop can settle before the next input lands.
const DefaultStepDelay = 500 * time.Millisecond

// PlanExecutor runs whole plans through a dispatcher, one step at a time.
// A failed step never aborts the run; the plan always executes to the end.
type PlanExecutor struct {
	dispatcher *Dispatcher
	logger     *logx.Logger
	recorder   *metrics.Recorder
	stepDelay  time.Duration
	sleep      func(time.Duration)
}

// NewPlanExecutor builds an executor with the default step pacing.
// recorder may be nil when metrics are disabled.
func NewPlanExecutor(dispatcher *Dispatcher, logger *logx.Logger, recorder *metrics.Recorder) *PlanExecutor {
	if logger == nil {
		logger = logx.NewLogger("executor")
	}
	return &PlanExecutor{
		dispatcher: dispatcher,
		logger:     logger,
		recorder:   recorder,
		stepDelay:  DefaultStepDelay,
		sleep:      time.Sleep,
	}
}

// SetStepDelay overrides the inter-step pause. Zero disables pacing.
func (e *PlanExecutor) SetStepDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.stepDelay = d
}

// Execute runs every step of the plan in order and returns the aggregate
// report. An empty plan is rejected without touching the desktop.
func (e *PlanExecutor) Execute(ctx context.Context, plan Plan) ExecutionReport {
	report := ExecutionReport{
		ID:         uuid.New().String(),
		TotalSteps: len(plan),
	}

	if len(plan) == 0 {
		report.OverallSucceeded = false
		report.StepOutcomes = []StepOutcome{}
		e.logger.Warn("refusing to execute empty plan")
		return report
	}

	report.StepOutcomes = make([]StepOutcome, 0, len(plan))
	for i := range plan {
		if i > 0 && e.stepDelay > 0 {
			e.sleep(e.stepDelay)
		}

		started := time.Now()
		outcome := e.runStep(ctx, plan[i])
		duration := time.Since(started)

		e.recorder.ObserveStep(string(plan[i].Kind), outcome.Succeeded, duration)
		if outcome.Succeeded {
			report.SuccessfulSteps++
			e.logger.Info("step %d/%d %s: %s", i+1, len(plan), plan[i].Kind, outcome.Message)
		} else {
			e.logger.Warn("step %d/%d %s failed: %s", i+1, len(plan), plan[i].Kind, outcome.Message)
		}
		report.StepOutcomes = append(report.StepOutcomes, outcome)
	}

	report.OverallSucceeded = report.SuccessfulSteps == report.TotalSteps
	return report
}

// runStep dispatches one action, converting a panic in an effector into a
// failed outcome so the rest of the plan still runs.
func (e *PlanExecutor) runStep(ctx context.Context, a Action) (outcome StepOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("step panicked: %v", r)
			outcome = failure("step panicked: %v", r)
		}
	}()
	return e.dispatcher.Dispatch(ctx, a)
}
