// Package actions defines the action plan model and executes plans against
// the operating system: typed action descriptors, the per-step dispatcher,
// and the plan executor that aggregates step outcomes.
package actions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tarunerror/openNova/pkg/vision"
)

// Kind identifies the operation an action performs.
type Kind string

// Action kind constants.
const (
	KindClick  Kind = "click"
	KindType   Kind = "type"
	KindKey    Kind = "key"
	KindShell  Kind = "shell"
	KindOpen   Kind = "open"
	KindWait   Kind = "wait"
	KindMove   Kind = "move"
	KindScroll Kind = "scroll"
)

// KnownKind reports whether k is a recognized action kind.
func KnownKind(k Kind) bool {
	switch k {
	case KindClick, KindType, KindKey, KindShell, KindOpen, KindWait, KindMove, KindScroll:
		return true
	default:
		return false
	}
}

// Target is an action target: either a named UI element or a coordinate
// pair. Planners emit either a JSON string or a two-element array.
type Target struct {
	Name  string
	Coord *vision.Point
}

// IsEmpty reports whether no target was provided.
func (t *Target) IsEmpty() bool {
	return t.Name == "" && t.Coord == nil
}

// String renders the target for messages and danger classification.
func (t Target) String() string {
	if t.Coord != nil {
		return fmt.Sprintf("(%d, %d)", t.Coord.X, t.Coord.Y)
	}
	return t.Name
}

// UnmarshalJSON accepts a string name or a [x, y] array.
func (t *Target) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		t.Name = name
		t.Coord = nil
		return nil
	}

	var coords []float64
	if err := json.Unmarshal(data, &coords); err == nil {
		if len(coords) < 2 {
			return fmt.Errorf("coordinate target needs two elements, got %d", len(coords))
		}
		t.Name = ""
		t.Coord = &vision.Point{X: int(coords[0]), Y: int(coords[1])}
		return nil
	}

	return fmt.Errorf("target must be a string or a coordinate pair")
}

// MarshalJSON renders the target back to the form it was parsed from.
func (t Target) MarshalJSON() ([]byte, error) {
	if t.Coord != nil {
		return json.Marshal([2]int{t.Coord.X, t.Coord.Y})
	}
	return json.Marshal(t.Name)
}

// Value is an action value that planners may emit as a JSON string or a
// number. It is stored canonically as a string.
type Value string

// UnmarshalJSON accepts a string or a number.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}

	return fmt.Errorf("value must be a string or a number")
}

// Float parses the value as a float, returning def on failure or absence.
func (v Value) Float(def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return def
	}
	return f
}

// Int parses the value as an integer, returning def on failure or absence.
// Planner output like "3.0" still parses as 3.
func (v Value) Int(def int) int {
	s := strings.TrimSpace(string(v))
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// Action is a single step of a plan. Actions are immutable once produced by
// the planner; identity is positional within the plan.
type Action struct {
	Kind      Kind   `json:"action"`
	Target    Target `json:"target,omitempty"`
	Value     Value  `json:"value,omitempty"`
	Direction string `json:"direction,omitempty"`
	Thought   string `json:"thought,omitempty"`
	Confirm   bool   `json:"confirm,omitempty"`
}

// CommandText returns the shell command or application for shell/open
// actions, preferring the target over the value.
func (a *Action) CommandText() string {
	if a.Target.Name != "" {
		return a.Target.Name
	}
	return string(a.Value)
}

// Render returns a lowercase textual rendering of the action, used by the
// danger classifier.
func (a *Action) Render() string {
	data, err := json.Marshal(a)
	if err != nil {
		return strings.ToLower(string(a.Kind) + " " + a.Target.String() + " " + string(a.Value))
	}
	return strings.ToLower(string(data))
}

// Plan is an ordered sequence of actions; insertion order is execution order.
type Plan []Action

// Validate checks that every action carries a recognized kind. An invalid
// plan must never reach the confirmation gate or the executor.
func (p Plan) Validate() error {
	for i := range p {
		if !KnownKind(p[i].Kind) {
			return fmt.Errorf("action %d has unrecognized kind %q", i, p[i].Kind)
		}
	}
	return nil
}

// StepOutcome records the result of executing one action. It is created once
// per dispatched action and never mutated afterward.
type StepOutcome struct {
	Succeeded bool           `json:"succeeded"`
	Message   string         `json:"message"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// ExecutionReport aggregates the step outcomes of one plan run.
type ExecutionReport struct {
	ID               string        `json:"id"`
	OverallSucceeded bool          `json:"overall_succeeded"`
	TotalSteps       int           `json:"total_steps"`
	SuccessfulSteps  int           `json:"successful_steps"`
	StepOutcomes     []StepOutcome `json:"step_outcomes"`
}

// failure builds a failed step outcome.
func failure(format string, args ...any) StepOutcome {
	return StepOutcome{
		Succeeded: false,
		Message:   fmt.Sprintf(format, args...),
	}
}

// success builds a successful step outcome.
func success(format string, args ...any) StepOutcome {
	return StepOutcome{
		Succeeded: true,
		Message:   fmt.Sprintf(format, args...),
	}
}
