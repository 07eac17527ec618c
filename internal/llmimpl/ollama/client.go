// Package ollama provides an Ollama client implementation of the llm.Client
// interface. Ollama is a local LLM runtime, so model availability is checked
// against the locally installed model list.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/tarunerror/openNova/pkg/llm"
	"github.com/tarunerror/openNova/pkg/llm/llmerrors"
)

// fallbackModels is the preference order used when the configured model is
// not installed locally. Matches commonly pulled general-purpose models.
var fallbackModels = []string{"llama3.2", "llama3.1", "qwen2.5", "phi3", "mistral", "llama3"}

// Client wraps the Ollama API client to implement the llm.Client interface.
type Client struct {
	client  *api.Client
	model   string
	hostURL string
}

// NewClientWithModel creates a new Ollama client for the given server URL and
// model. hostURL should be the Ollama server URL (e.g. "http://localhost:11434").
func NewClientWithModel(hostURL, model string) *Client {
	parsedURL, err := url.Parse(hostURL)
	if err != nil {
		parsedURL, _ = url.Parse("http://localhost:11434")
	}

	return &Client{
		client:  api.NewClient(parsedURL, http.DefaultClient),
		model:   model,
		hostURL: hostURL,
	}
}

// Complete implements the llm.Client interface.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	if err := in.Validate(); err != nil {
		return llm.CompletionResponse{}, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeBadPrompt, err, "invalid completion request")
	}

	messages := make([]api.Message, 0, len(in.Messages))
	for i := range in.Messages {
		msg := &in.Messages[i]
		messages = append(messages, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": in.Temperature,
			"num_predict": in.MaxTokens,
		},
	}

	var response api.ChatResponse
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return llm.CompletionResponse{}, classifyError(err)
	}

	if response.Message.Content == "" {
		return llm.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "received empty response from Ollama")
	}

	return llm.CompletionResponse{
		Content:    response.Message.Content,
		StopReason: stopReason(&response),
	}, nil
}

// GetModelName returns the model name for this client.
func (c *Client) GetModelName() string {
	return c.model
}

// ResolveModel checks the configured model against the locally installed
// model list and, when it is missing, falls back to the closest installed
// variant. The resolved name becomes this client's active model.
func (c *Client) ResolveModel(ctx context.Context) (string, error) {
	available, err := c.listLocalModels(ctx)
	if err != nil {
		// Server unreachable: keep the configured model, Complete will
		// surface a classified error on first use.
		return c.model, err
	}

	c.model = resolveAgainst(c.model, available)
	return c.model, nil
}

// listLocalModels queries the Ollama server for installed model names.
func (c *Client) listLocalModels(ctx context.Context) ([]string, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	seen := make(map[string]bool, len(resp.Models))
	names := make([]string, 0, len(resp.Models))
	for i := range resp.Models {
		name := resp.Models[i].Name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// resolveAgainst picks the best installed model for the preferred name.
// Preference order: exact match, tag variant of the preferred base, any
// variant of the same base, the fallback list, then the first installed model.
func resolveAgainst(preferred string, available []string) string {
	if len(available) == 0 {
		return preferred
	}

	for _, name := range available {
		if name == preferred {
			return preferred
		}
	}

	base := strings.SplitN(preferred, ":", 2)[0]
	for _, name := range available {
		if strings.SplitN(name, ":", 2)[0] == base {
			return name
		}
	}

	for _, candidate := range fallbackModels {
		for _, name := range available {
			if name == candidate || strings.SplitN(name, ":", 2)[0] == candidate {
				return name
			}
		}
	}

	return available[0]
}

// stopReason converts Ollama's done_reason to the neutral stop reason format.
func stopReason(resp *api.ChatResponse) string {
	if !resp.Done {
		return "incomplete"
	}
	switch resp.DoneReason {
	case "stop", "":
		return "end_turn"
	case "length":
		return "max_tokens"
	default:
		return resp.DoneReason
	}
}

// classifyError converts Ollama errors to classified llm errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnavailable, err, "Ollama server not reachable")
	case strings.Contains(errStr, "model") && strings.Contains(errStr, "not found"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeModelNotFound, err, fmt.Sprintf("Ollama model not found: %v", err))
	case strings.Contains(errStr, "context canceled"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "request canceled")
	case strings.Contains(errStr, "timeout"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "request timeout")
	default:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnknown, err, "Ollama API error")
	}
}
