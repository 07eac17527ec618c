package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarunerror/openNova/pkg/actions"
	"github.com/tarunerror/openNova/pkg/llm"
	"github.com/tarunerror/openNova/pkg/planner"
)

// newPipeline wires a real synthesizer over a scripted model into the router.
func newPipeline(t *testing.T, modelOutput string) (*Router, *countingExecutor) {
	t.Helper()
	mock := llm.NewMockClient([]llm.CompletionResponse{{Content: modelOutput}}, nil)
	synth := planner.NewSynthesizer(mock, nil)
	ex := &countingExecutor{}
	gate := NewConfirmationGate(3, nil)
	r := NewRouter(gate, nil, synth, ex, planner.NewKeywordPolicy(), nil, nil, nil)
	return r, ex
}

func TestPipelineOpenChrome(t *testing.T) {
	r, ex := newPipeline(t, `[{"action":"open","target":"chrome","thought":"launch the browser"}]`)

	resp := r.Process(context.Background(), "open chrome")
	assert.Equal(t, StatusSuccess, resp.Status)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.OverallSucceeded)
	assert.Equal(t, 1, resp.Result.TotalSteps)
	assert.Equal(t, 1, resp.Result.SuccessfulSteps)
	require.Len(t, ex.executed, 1)
	assert.Equal(t, actions.KindOpen, ex.executed[0][0].Kind)
}

func TestPipelineDeleteIsGatedThenConfirmed(t *testing.T) {
	r, ex := newPipeline(t,
		"```json\n[{\"action\":\"shell\",\"target\":\"del /f /s /q C:\\\\Temp\",\"thought\":\"clear temp\"}]\n```")

	ctx := context.Background()
	resp := r.Process(ctx, "delete everything in my temp folder")
	assert.True(t, resp.NeedsConfirmation)
	assert.Equal(t, 3, resp.RemainingConfirmations)
	assert.Empty(t, ex.executed)

	_ = r.Process(ctx, "confirm")
	_ = r.Process(ctx, "confirm")
	resp = r.Process(ctx, "confirm")
	assert.Equal(t, StatusSuccess, resp.Status)
	require.NotNil(t, resp.Result)
	require.Len(t, ex.executed, 1)
}
