package planner

import (
	"strings"

	"github.com/tarunerror/openNova/pkg/actions"
)

// DangerPolicy decides whether a plan needs user confirmation before it may
// execute.
type DangerPolicy interface {
	// IsDangerous reports whether any step of the plan is destructive.
	IsDangerous(plan actions.Plan) bool
}

// defaultDangerKeywords are substrings whose presence anywhere in a step
// marks the plan as destructive. Matching is deliberately coarse: a false
// positive costs one confirmation round, a false negative costs user data.
var defaultDangerKeywords = []string{
	"delete",
	"remove",
	"format",
	"rm ",
	"del ",
	"registry",
	"regedit",
	"system32",
}

// KeywordPolicy flags plans by substring match against a keyword list, plus
// any step the planner itself marked with the confirm flag.
type KeywordPolicy struct {
	keywords []string
}

// NewKeywordPolicy builds the default keyword policy. Extra keywords extend
// the built-in list; they are matched case-insensitively.
func NewKeywordPolicy(extra ...string) *KeywordPolicy {
	kw := make([]string, 0, len(defaultDangerKeywords)+len(extra))
	kw = append(kw, defaultDangerKeywords...)
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	return &KeywordPolicy{keywords: kw}
}

// IsDangerous reports whether any step carries the confirm flag or renders
// to text containing a danger keyword. Adding steps to a plan can only make
// it more dangerous, never less.
func (p *KeywordPolicy) IsDangerous(plan actions.Plan) bool {
	for i := range plan {
		if plan[i].Confirm {
			return true
		}
		rendered := plan[i].Render()
		for _, kw := range p.keywords {
			if strings.Contains(rendered, kw) {
				return true
			}
		}
	}
	return false
}
