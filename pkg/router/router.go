// Package router is the front door of the agent: it takes raw user commands
// and decides whether they are confirmations for a pending plan, locally
// handled skills, or work for the plan synthesizer and executor.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/tarunerror/openNova/pkg/actions"
	"github.com/tarunerror/openNova/pkg/logx"
	"github.com/tarunerror/openNova/pkg/memory"
	"github.com/tarunerror/openNova/pkg/metrics"
	"github.com/tarunerror/openNova/pkg/planner"
	"github.com/tarunerror/openNova/pkg/skills"
)

// Planner produces plans from commands. Satisfied by *planner.Synthesizer.
type Planner interface {
	Synthesize(ctx context.Context, command string) (actions.Plan, error)
	LastError() string
}

// Executor runs plans. Satisfied by *actions.PlanExecutor.
type Executor interface {
	Execute(ctx context.Context, plan actions.Plan) actions.ExecutionReport
}

// Router processes commands through the gate -> skills -> planner pipeline.
// Process is not safe for concurrent calls; commands arrive one at a time
// from the interactive loop.
type Router struct {
	gate     *ConfirmationGate
	registry *skills.Registry
	planner  Planner
	executor Executor
	danger   planner.DangerPolicy
	store    *memory.Store
	recorder *metrics.Recorder
	logger   *logx.Logger
}

// NewRouter wires the pipeline. registry, store, and recorder may be nil;
// the corresponding stages are skipped.
func NewRouter(
	gate *ConfirmationGate,
	registry *skills.Registry,
	pl Planner,
	ex Executor,
	danger planner.DangerPolicy,
	store *memory.Store,
	recorder *metrics.Recorder,
	logger *logx.Logger,
) *Router {
	if logger == nil {
		logger = logx.NewLogger("router")
	}
	if danger == nil {
		danger = planner.NewKeywordPolicy()
	}
	return &Router{
		gate:     gate,
		registry: registry,
		planner:  pl,
		executor: ex,
		danger:   danger,
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// Process handles one command end to end and returns the response to show
// the user.
func (r *Router) Process(ctx context.Context, command string) Response {
	command = strings.TrimSpace(command)
	if command == "" {
		return errorResponse("Give me a command to work with.")
	}

	if r.gate.Awaiting() {
		return r.processWhileAwaiting(ctx, command)
	}
	return r.processFresh(ctx, command)
}

// processWhileAwaiting handles input while a dangerous plan is pending.
// Anything that is not an explicit confirmation or cancellation keeps the
// plan parked and re-prompts; the user must decide before moving on.
func (r *Router) processWhileAwaiting(ctx context.Context, command string) Response {
	verdict, plan := r.gate.Offer(command)
	switch verdict {
	case VerdictApproved:
		r.logger.Info("pending plan approved, executing")
		return r.runPlan(ctx, command, plan)

	case VerdictCancelled:
		r.logger.Info("pending plan cancelled")
		r.logCommand(ctx, command, "confirmation")
		r.recorder.CountCommand("confirmation")
		return Response{Status: StatusSuccess, Message: "Okay, I won't do that."}

	case VerdictPending:
		remaining := r.gate.Remaining()
		r.recorder.CountCommand("confirmation")
		return Response{
			Status:                 StatusSuccess,
			Message:                fmt.Sprintf("Confirmation received. Say \"confirm\" %d more time(s) to proceed, or \"cancel\".", remaining),
			NeedsConfirmation:      true,
			RemainingConfirmations: remaining,
		}

	default:
		return Response{
			Status:                 StatusError,
			Message:                "A plan is awaiting confirmation. Say \"confirm\" to proceed or \"cancel\" to discard it.",
			NeedsConfirmation:      true,
			RemainingConfirmations: r.gate.Remaining(),
		}
	}
}

// processFresh routes a command with nothing pending: skills first, then
// plan synthesis.
func (r *Router) processFresh(ctx context.Context, command string) Response {
	if r.registry != nil {
		if s := r.registry.Match(command); s != nil {
			res := s.Execute(ctx, command)
			route := "skill:" + s.Name()
			r.logCommand(ctx, command, route)
			r.recorder.CountCommand(route)

			status := StatusSuccess
			if !res.Succeeded {
				status = StatusError
			}
			return Response{Status: status, Message: res.Response}
		}
	}

	plan, err := r.planner.Synthesize(ctx, command)
	if err != nil {
		r.recorder.CountSynthesisFailure()
		r.recorder.CountCommand("error")
		r.logCommand(ctx, command, "error")

		msg := r.planner.LastError()
		if msg == "" {
			msg = "I could not come up with a plan for that."
		}
		return errorResponse(msg)
	}

	if len(plan) == 0 {
		r.recorder.CountSynthesisFailure()
		r.recorder.CountCommand("error")
		r.logCommand(ctx, command, "error")
		return errorResponse("I could not come up with a plan for that.")
	}

	if r.danger.IsDangerous(plan) {
		if err := r.gate.Open(plan); err != nil {
			return errorResponse("Could not stage the plan for confirmation: " + err.Error())
		}
		remaining := r.gate.Remaining()
		r.logCommand(ctx, command, "gated")
		r.recorder.CountCommand("gated")
		return Response{
			Status:                 StatusSuccess,
			Message:                fmt.Sprintf("This plan looks destructive (%s). Say \"confirm\" %d time(s) to proceed, or \"cancel\".", describePlan(plan), remaining),
			Plan:                   plan,
			NeedsConfirmation:      true,
			RemainingConfirmations: remaining,
		}
	}

	return r.runPlan(ctx, command, plan)
}

// runPlan executes an approved or benign plan and shapes the report into a
// response.
func (r *Router) runPlan(ctx context.Context, command string, plan actions.Plan) Response {
	r.logCommand(ctx, command, "plan")
	r.recorder.CountCommand("plan")

	report := r.executor.Execute(ctx, plan)

	resp := Response{
		Plan:   plan,
		Result: &report,
	}
	switch {
	case report.OverallSucceeded:
		resp.Status = StatusSuccess
		resp.Message = fmt.Sprintf("Done. %d step(s) completed.", report.SuccessfulSteps)
	case report.SuccessfulSteps > 0:
		resp.Status = StatusPartial
		resp.Message = fmt.Sprintf("Partially done: %d of %d step(s) completed.", report.SuccessfulSteps, report.TotalSteps)
	default:
		resp.Status = StatusError
		resp.Message = "The plan failed; no step completed."
	}
	return resp
}

// logCommand records the command in persistent history when memory is on.
func (r *Router) logCommand(ctx context.Context, command, route string) {
	if r.store == nil {
		return
	}
	if err := r.store.LogCommand(ctx, command, route); err != nil {
		r.logger.Warn("could not log command: %v", err)
	}
}

// describePlan summarizes a plan for the confirmation prompt.
func describePlan(plan actions.Plan) string {
	parts := make([]string, 0, len(plan))
	for i := range plan {
		p := string(plan[i].Kind)
		if t := plan[i].Target.String(); t != "" {
			p += " " + t
		} else if plan[i].Value != "" {
			p += " " + string(plan[i].Value)
		}
		parts = append(parts, p)
	}
	const maxShown = 4
	if len(parts) > maxShown {
		parts = append(parts[:maxShown], fmt.Sprintf("and %d more", len(plan)-maxShown))
	}
	return strings.Join(parts, "; ")
}
