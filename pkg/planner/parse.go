package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tarunerror/openNova/pkg/actions"
)

// ParsePlan extracts an action plan from raw model output. Models wrap JSON
// in markdown fences and preambles more often than not, so the parser looks
// for the JSON payload rather than requiring a clean document. Accepted
// shapes: a bare array of steps, or an object with a "plan" array.
func ParsePlan(raw string) (actions.Plan, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON found in model output")
	}

	var plan actions.Plan
	if err := json.Unmarshal([]byte(payload), &plan); err == nil {
		return plan, nil
	}

	var wrapped struct {
		Plan actions.Plan `json:"plan"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && wrapped.Plan != nil {
		return wrapped.Plan, nil
	}

	return nil, fmt.Errorf("output is not a plan array or {\"plan\": [...]} object")
}

// extractJSON locates the JSON payload inside raw output, tolerating code
// fences and surrounding prose.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		// Skip an optional language tag on the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			first := strings.TrimSpace(rest[:nl])
			if first == "json" || first == "" {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	// Fall back to the outermost bracketed region.
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndexByte(s, ']')
	} else {
		end = strings.LastIndexByte(s, '}')
	}
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
