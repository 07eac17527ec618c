package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarunerror/openNova/pkg/llm/llmerrors"
)

func TestResolveAgainst_ExactMatch(t *testing.T) {
	got := resolveAgainst("llama3.2", []string{"mistral:latest", "llama3.2"})
	assert.Equal(t, "llama3.2", got)
}

func TestResolveAgainst_TagVariantOfBase(t *testing.T) {
	// Configured without a tag, an installed tagged variant of the same base wins.
	got := resolveAgainst("llama3.2", []string{"mistral:latest", "llama3.2:3b"})
	assert.Equal(t, "llama3.2:3b", got)

	// Configured with a tag that is missing, another tag of the same base wins.
	got = resolveAgainst("llama3.2:70b", []string{"llama3.2:3b", "phi3:latest"})
	assert.Equal(t, "llama3.2:3b", got)
}

func TestResolveAgainst_FallbackOrder(t *testing.T) {
	// No base match: the fallback preference order decides.
	got := resolveAgainst("gemma2", []string{"phi3:latest", "qwen2.5:7b"})
	assert.Equal(t, "qwen2.5:7b", got, "qwen2.5 precedes phi3 in the fallback order")
}

func TestResolveAgainst_FirstAvailableAsLastResort(t *testing.T) {
	got := resolveAgainst("gemma2", []string{"deepseek-r1:8b"})
	assert.Equal(t, "deepseek-r1:8b", got)
}

func TestResolveAgainst_EmptyListKeepsPreferred(t *testing.T) {
	got := resolveAgainst("llama3.2", nil)
	assert.Equal(t, "llama3.2", got)
}

func TestClassifyError(t *testing.T) {
	err := classifyError(assert.AnError)
	assert.Equal(t, llmerrors.ErrorTypeUnknown, llmerrors.TypeOf(err))

	err = classifyError(errString("dial tcp 127.0.0.1:11434: connection refused"))
	assert.True(t, llmerrors.IsUnavailable(err))

	err = classifyError(errString(`model "llama9" not found, try pulling it first`))
	assert.True(t, llmerrors.IsModelNotFound(err))
}

type errString string

func (e errString) Error() string { return string(e) }
