package router

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tarunerror/openNova/pkg/actions"
	"github.com/tarunerror/openNova/pkg/logx"
)

// GateState identifies the confirmation gate's state.
type GateState string

const (
	// StateIdle means no plan is awaiting confirmation.
	StateIdle GateState = "IDLE"
	// StateAwaiting means a dangerous plan is parked until the user confirms.
	StateAwaiting GateState = "AWAITING_CONFIRMATION"
)

// gateTransitions lists the legal state changes.
var gateTransitions = map[GateState][]GateState{
	StateIdle:     {StateAwaiting},
	StateAwaiting: {StateIdle, StateAwaiting},
}

// isValidGateTransition checks a state change against the transition table.
func isValidGateTransition(from, to GateState) bool {
	for _, next := range gateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// affirmativeTokens are the inputs that count as one confirmation.
var affirmativeTokens = map[string]bool{
	"confirm":         true,
	"confirm execute": true,
	"yes":             true,
	"y":               true,
	"proceed":         true,
	"continue":        true,
}

// cancelTokens are the inputs that discard the pending plan.
var cancelTokens = map[string]bool{
	"cancel": true,
	"stop":   true,
	"no":     true,
	"n":      true,
	"abort":  true,
}

// Verdict is the gate's ruling on one input while a plan is pending.
type Verdict int

const (
	// VerdictPending means the input counted but more confirmations remain.
	VerdictPending Verdict = iota
	// VerdictApproved means the plan collected enough confirmations.
	VerdictApproved
	// VerdictCancelled means the user discarded the pending plan.
	VerdictCancelled
	// VerdictUnrecognized means the input was neither confirmation nor
	// cancellation; the plan stays pending and the count is unchanged.
	VerdictUnrecognized
)

// ConfirmationGate parks dangerous plans until the user repeats an explicit
// confirmation the required number of times. Safe for concurrent use.
type ConfirmationGate struct {
	logger *logx.Logger

	mu        sync.Mutex
	state     GateState
	pending   actions.Plan
	required  int
	remaining int
}

// NewConfirmationGate creates an idle gate requiring the given number of
// confirmations per dangerous plan. Values below one are raised to one.
func NewConfirmationGate(required int, logger *logx.Logger) *ConfirmationGate {
	if required < 1 {
		required = 1
	}
	if logger == nil {
		logger = logx.NewLogger("gate")
	}
	return &ConfirmationGate{
		logger:   logger,
		state:    StateIdle,
		required: required,
	}
}

// State returns the current gate state.
func (g *ConfirmationGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Awaiting reports whether a plan is pending confirmation.
func (g *ConfirmationGate) Awaiting() bool {
	return g.State() == StateAwaiting
}

// Remaining returns how many confirmations are still needed.
func (g *ConfirmationGate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining
}

// Open parks a plan behind the gate. A plan already pending is replaced and
// the confirmation count restarts: the newest dangerous plan is the one the
// user is confirming.
func (g *ConfirmationGate) Open(plan actions.Plan) error {
	if len(plan) == 0 {
		return fmt.Errorf("cannot gate an empty plan")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !isValidGateTransition(g.state, StateAwaiting) {
		return fmt.Errorf("invalid gate transition %s -> %s", g.state, StateAwaiting)
	}
	if g.state == StateAwaiting {
		g.logger.Info("replacing pending plan; confirmation count restarts")
	}

	g.state = StateAwaiting
	g.pending = plan
	g.remaining = g.required
	return nil
}

// Offer feeds one user input to the gate. On VerdictApproved the pending
// plan is returned and the gate resets to idle; on VerdictCancelled the plan
// is discarded. Calling Offer on an idle gate is a programming error and
// returns VerdictUnrecognized.
func (g *ConfirmationGate) Offer(input string) (Verdict, actions.Plan) {
	token := strings.ToLower(strings.TrimSpace(input))

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateAwaiting {
		return VerdictUnrecognized, nil
	}

	switch {
	case cancelTokens[token]:
		g.reset()
		return VerdictCancelled, nil
	case affirmativeTokens[token]:
		g.remaining--
		if g.remaining > 0 {
			g.logger.Debug("confirmation accepted, %d remaining", g.remaining)
			return VerdictPending, nil
		}
		plan := g.pending
		g.reset()
		return VerdictApproved, plan
	default:
		return VerdictUnrecognized, nil
	}
}

// Reset discards any pending plan and returns the gate to idle.
func (g *ConfirmationGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

// reset must be called with the lock held.
func (g *ConfirmationGate) reset() {
	g.state = StateIdle
	g.pending = nil
	g.remaining = 0
}
