// Package skills provides locally-handled commands that bypass plan
// synthesis: a skill recognizes a command shape and answers it directly
// without touching the language model or the desktop.
package skills

import (
	"context"

	"github.com/tarunerror/openNova/pkg/logx"
)

// Result is a skill's answer to a command.
type Result struct {
	// Handled reports whether the skill consumed the command. An unhandled
	// result sends the command onward to plan synthesis.
	Handled bool

	// Succeeded reports whether the handled command worked.
	Succeeded bool

	// Response is the user-facing answer.
	Response string

	// Data carries structured output for callers that want more than text.
	Data map[string]any
}

// Skill is a local command handler.
type Skill interface {
	// Name identifies the skill in manifests and logs.
	Name() string

	// Description is a one-line summary for help output.
	Description() string

	// CanHandle reports whether the skill recognizes the command. It must be
	// cheap; the registry probes every skill for every command.
	CanHandle(command string) bool

	// Execute handles the command. Called only after CanHandle returned true.
	Execute(ctx context.Context, command string) Result
}

// Registry holds the enabled skills in registration order. First match wins,
// so registration order is priority order.
type Registry struct {
	skills []Skill
	logger *logx.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logx.Logger) *Registry {
	if logger == nil {
		logger = logx.NewLogger("skills")
	}
	return &Registry{logger: logger}
}

// Register appends a skill. Duplicate names are allowed; the earlier
// registration shadows the later one.
func (r *Registry) Register(s Skill) {
	r.skills = append(r.skills, s)
	r.logger.Debug("registered skill %s", s.Name())
}

// Skills returns the registered skills in priority order.
func (r *Registry) Skills() []Skill {
	out := make([]Skill, len(r.skills))
	copy(out, r.skills)
	return out
}

// Match returns the first skill that recognizes the command, or nil.
func (r *Registry) Match(command string) Skill {
	for _, s := range r.skills {
		if s.CanHandle(command) {
			return s
		}
	}
	return nil
}

// Dispatch runs the command through the first matching skill. The returned
// result has Handled=false when no skill matched.
func (r *Registry) Dispatch(ctx context.Context, command string) Result {
	s := r.Match(command)
	if s == nil {
		return Result{Handled: false}
	}
	r.logger.Debug("skill %s handling %q", s.Name(), command)
	res := s.Execute(ctx, command)
	res.Handled = true
	return res
}
