package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarunerror/openNova/pkg/actions"
	"github.com/tarunerror/openNova/pkg/llm"
	"github.com/tarunerror/openNova/pkg/llm/llmerrors"
)

func TestSynthesizeParsesPlan(t *testing.T) {
	mock := llm.NewMockClient([]llm.CompletionResponse{
		{Content: `[{"action":"open","target":"chrome","thought":"launch the browser"}]`},
	}, nil)
	s := NewSynthesizer(mock, nil)

	plan, err := s.Synthesize(context.Background(), "open chrome")
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, actions.KindOpen, plan[0].Kind)
	assert.Equal(t, "chrome", plan[0].Target.Name)
	assert.Empty(t, s.LastError())

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, llm.RoleSystem, reqs[0].Messages[0].Role)
	assert.Equal(t, "open chrome", reqs[0].Messages[1].Content)
}

func TestSynthesizeRejectsInvalidKind(t *testing.T) {
	mock := llm.NewMockClient([]llm.CompletionResponse{
		{Content: `[{"action":"levitate","target":"desk"}]`},
	}, nil)
	s := NewSynthesizer(mock, nil)

	_, err := s.Synthesize(context.Background(), "levitate my desk")
	require.Error(t, err)
	assert.Contains(t, s.LastError(), "invalid plan")
}

func TestSynthesizeModelNotFoundHint(t *testing.T) {
	mock := llm.NewMockClient(nil, []error{
		llmerrors.NewError(llmerrors.ErrorTypeModelNotFound, "model not found"),
	})
	s := NewSynthesizer(mock, nil)

	_, err := s.Synthesize(context.Background(), "open chrome")
	require.Error(t, err)
	assert.Contains(t, s.LastError(), "ollama pull")
}

func TestSynthesizeRejectsOversizedCommand(t *testing.T) {
	mock := llm.NewMockClient([]llm.CompletionResponse{
		{Content: `[{"action":"wait","value":1}]`},
	}, nil)
	s := NewSynthesizer(mock, nil)

	// Far beyond maxPromptTokens under both the codec and the bytes/4
	// fallback.
	huge := strings.Repeat("open chrome and ", 32*1024)
	_, err := s.Synthesize(context.Background(), huge)
	require.Error(t, err)
	assert.Contains(t, s.LastError(), "too long")
	assert.Empty(t, mock.Requests(), "an oversized prompt never reaches the provider")
}

func TestSynthesizeClearsLastErrorOnSuccess(t *testing.T) {
	mock := llm.NewMockClient([]llm.CompletionResponse{
		{Content: "no json here"},
		{Content: `[{"action":"wait","value":1}]`},
	}, nil)
	s := NewSynthesizer(mock, nil)

	_, err := s.Synthesize(context.Background(), "first")
	require.Error(t, err)
	assert.NotEmpty(t, s.LastError())

	_, err = s.Synthesize(context.Background(), "second")
	require.NoError(t, err)
	assert.Empty(t, s.LastError())
}

func TestParsePlanShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		len  int
	}{
		{"bare array", `[{"action":"open","target":"notepad"}]`, 1},
		{"plan object", `{"plan":[{"action":"open","target":"notepad"},{"action":"type","value":"hi"}]}`, 2},
		{"fenced json", "```json\n[{\"action\":\"open\",\"target\":\"notepad\"}]\n```", 1},
		{"fence without tag", "```\n[{\"action\":\"open\",\"target\":\"notepad\"}]\n```", 1},
		{"prose around array", "Here is your plan:\n[{\"action\":\"open\",\"target\":\"notepad\"}]\nHope it helps!", 1},
		{"empty array", `[]`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan(tc.raw)
			require.NoError(t, err)
			assert.Len(t, plan, tc.len)
		})
	}
}

func TestParsePlanRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "I cannot do that.", `{"notaplan": true}`} {
		_, err := ParsePlan(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestKeywordPolicyMatchesAnywhere(t *testing.T) {
	policy := NewKeywordPolicy()

	dangerous := []actions.Plan{
		{{Kind: actions.KindShell, Target: actions.Target{Name: "del C:\\Temp\\old.txt"}}},
		{{Kind: actions.KindShell, Value: "rm -rf ./build"}},
		{{Kind: actions.KindType, Value: "now DELETE everything"}},
		{{Kind: actions.KindOpen, Target: actions.Target{Name: "regedit"}}},
		{{Kind: actions.KindClick, Target: actions.Target{Name: "OK"}, Thought: "remove the old profile"}},
		{{Kind: actions.KindOpen, Target: actions.Target{Name: "notepad"}, Confirm: true}},
	}
	for i, plan := range dangerous {
		assert.True(t, policy.IsDangerous(plan), "plan %d should be dangerous", i)
	}

	benign := actions.Plan{
		{Kind: actions.KindOpen, Target: actions.Target{Name: "chrome"}},
		{Kind: actions.KindType, Value: "hello world"},
	}
	assert.False(t, policy.IsDangerous(benign))
}

func TestKeywordPolicyMonotone(t *testing.T) {
	policy := NewKeywordPolicy()

	base := actions.Plan{
		{Kind: actions.KindShell, Value: "rm -rf /tmp/cache"},
	}
	require.True(t, policy.IsDangerous(base))

	extended := append(actions.Plan{
		{Kind: actions.KindOpen, Target: actions.Target{Name: "chrome"}},
	}, base...)
	assert.True(t, policy.IsDangerous(extended), "adding benign steps never clears the danger flag")
}

func TestKeywordPolicyExtraKeywords(t *testing.T) {
	policy := NewKeywordPolicy("shutdown")
	plan := actions.Plan{{Kind: actions.KindShell, Value: "Shutdown /s /t 0"}}
	assert.True(t, policy.IsDangerous(plan))
}
