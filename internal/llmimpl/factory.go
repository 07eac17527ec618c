// Package llmimpl selects and constructs the concrete LLM client for the
// configured provider. Callers outside this package see only llm.Client.
package llmimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/tarunerror/openNova/internal/llmimpl/anthropic"
	"github.com/tarunerror/openNova/internal/llmimpl/google"
	"github.com/tarunerror/openNova/internal/llmimpl/ollama"
	"github.com/tarunerror/openNova/internal/llmimpl/openai"
	"github.com/tarunerror/openNova/pkg/config"
	"github.com/tarunerror/openNova/pkg/llm"
	"github.com/tarunerror/openNova/pkg/logx"
)

// resolveTimeout caps the local model check at startup so a hung Ollama
// server cannot stall the whole agent.
const resolveTimeout = 3 * time.Second

// NewClient creates an LLM client for the configured provider. API keys are
// resolved from the config file or the conventional environment variables.
// For Ollama the configured model is resolved against the locally installed
// model list; when the server is unreachable the configured model is kept and
// the first completion surfaces a classified error instead.
func NewClient(ctx context.Context, cfg *config.Config, logger *logx.Logger) (llm.Client, error) {
	model := cfg.LLM.Model
	if model == "" {
		model = cfg.DefaultModel()
	}

	apiKey, err := cfg.GetAPIKey()
	if err != nil {
		return nil, err
	}

	switch cfg.LLM.Provider {
	case config.ProviderOllama:
		client := ollama.NewClientWithModel(cfg.LLM.BaseURL, model)

		resolveCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
		defer cancel()
		resolved, resolveErr := client.ResolveModel(resolveCtx)
		switch {
		case resolveErr != nil:
			logger.Warn("could not query Ollama model list: %v", resolveErr)
		case resolved != model:
			logger.Warn("configured Ollama model %q not installed, using %q", model, resolved)
		}
		return client, nil

	case config.ProviderAnthropic:
		return anthropic.NewClientWithModel(apiKey, model), nil

	case config.ProviderOpenAI:
		return openai.NewClientWithModel(apiKey, model), nil

	case config.ProviderGoogle:
		return google.NewClientWithModel(apiKey, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.LLM.Provider)
	}
}
