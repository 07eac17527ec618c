// Package planner turns natural-language commands into executable action
// plans by prompting a language model and parsing its JSON response.
package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tarunerror/openNova/pkg/actions"
	"github.com/tarunerror/openNova/pkg/llm"
	"github.com/tarunerror/openNova/pkg/llm/llmerrors"
	"github.com/tarunerror/openNova/pkg/logx"
)

// systemPrompt instructs the model to respond with a JSON action plan.
// Every supported action kind is named so the model does not invent verbs.
const systemPrompt = `You are a desktop automation planner. Convert the user's command into a JSON array of action steps.

Respond with ONLY a JSON array (or an object with a "plan" key holding the array). No prose.

Each step is an object:
  {"action": "...", "target": "...", "value": "...", "direction": "...", "thought": "...", "confirm": false}

Supported actions:
  - "open":   launch an application. target = application name.
  - "click":  click a UI element. target = element name, or [x, y] coordinates.
  - "type":   type text at the current focus. value = the text.
  - "key":    press a key or chord. value = key name, e.g. "enter" or "ctrl+s".
  - "shell":  run a shell command. target or value = the command.
  - "wait":   pause. value = seconds (default 1).
  - "move":   move the pointer. target = element name or [x, y].
  - "scroll": scroll the active window. direction = "up" or "down", value = clicks (default 3).

Rules:
  - Keep plans short and literal. Do not add steps the user did not ask for.
  - "thought" is a one-line rationale for the step.
  - Set "confirm": true on any step that deletes, removes, formats, or otherwise destroys data.`

// maxPromptTokens caps the prompt sent to the model. Sized to the smallest
// context window among the default local models; a command that blows this
// budget is almost certainly pasted garbage, not an instruction.
const maxPromptTokens = 4 * llm.DefaultMaxTokens

// Synthesizer produces action plans from commands via an LLM client.
type Synthesizer struct {
	client llm.Client
	logger *logx.Logger

	mu       sync.Mutex
	lastErr  string
	tokCodec tokenizer.Codec
}

// NewSynthesizer creates a plan synthesizer backed by the given client.
func NewSynthesizer(client llm.Client, logger *logx.Logger) *Synthesizer {
	if logger == nil {
		logger = logx.NewLogger("planner")
	}
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		codec = nil
	}
	return &Synthesizer{
		client:   client,
		logger:   logger,
		tokCodec: codec,
	}
}

// Synthesize asks the model for a plan. A nil plan with nil error never
// occurs: failures return an empty plan and a non-nil error, and the failure
// reason is retained for LastError.
func (s *Synthesizer) Synthesize(ctx context.Context, command string) (actions.Plan, error) {
	promptTokens := s.countTokens(systemPrompt + command)
	if promptTokens > maxPromptTokens {
		s.setLastError(fmt.Sprintf(
			"that command is too long to plan (~%d tokens, limit %d). Try a shorter instruction.",
			promptTokens, maxPromptTokens))
		return nil, fmt.Errorf("plan synthesis: prompt of ~%d tokens exceeds the %d token budget",
			promptTokens, maxPromptTokens)
	}

	req := llm.NewCompletionRequest([]llm.CompletionMessage{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(command),
	})

	s.logger.Debug("synthesizing plan for %q (prompt ~%d tokens, model %s)",
		command, promptTokens, s.client.GetModelName())

	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		s.recordError(err)
		return nil, fmt.Errorf("plan synthesis: %w", err)
	}

	plan, err := ParsePlan(resp.Content)
	if err != nil {
		s.setLastError(fmt.Sprintf("model returned an unparseable plan: %v", err))
		return nil, fmt.Errorf("plan synthesis: %w", err)
	}

	if err := plan.Validate(); err != nil {
		s.setLastError(fmt.Sprintf("model returned an invalid plan: %v", err))
		return nil, fmt.Errorf("plan synthesis: %w", err)
	}

	s.setLastError("")
	return plan, nil
}

// LastError returns a human-readable description of the most recent
// synthesis failure, or "" after a success.
func (s *Synthesizer) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Synthesizer) setLastError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// recordError converts a provider error into operator guidance. A missing
// model gets a pull hint because that is by far the most common first-run
// failure with a local runtime.
func (s *Synthesizer) recordError(err error) {
	switch {
	case llmerrors.IsModelNotFound(err):
		s.setLastError(fmt.Sprintf(
			"model %q is not available. Install it first (e.g. `ollama pull llama3.2`) or pick another model in the config.",
			s.client.GetModelName()))
	case llmerrors.IsUnavailable(err):
		s.setLastError("the language model backend is unreachable. Is the server running?")
	default:
		s.setLastError(strings.TrimSpace(err.Error()))
	}
}

// countTokens estimates the token footprint of text for the prompt budget
// check. A missing codec degrades to the rough bytes/4 heuristic.
func (s *Synthesizer) countTokens(text string) int {
	if s.tokCodec != nil {
		if n, err := s.tokCodec.Count(text); err == nil {
			return n
		}
	}
	return len(text) / 4
}
