// Package openrouter implements port.ChatClient against OpenAI-compatible
// chat-completions endpoints such as OpenRouter and OpenAI.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"docextract/internal/config"
	"docextract/internal/llm"
	"docextract/internal/port"
)

const (
	// ProviderOpenRouter is the registry name for OpenRouter.
	ProviderOpenRouter = "openrouter"
	// ProviderOpenAI is the registry name for the OpenAI API.
	ProviderOpenAI = "openai"

	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	openAIURL     = "https://api.openai.com/v1/chat/completions"

	defaultModel     = "meta-llama/llama-4-maverick"
	defaultMaxTokens = 1024
)

var labels = map[string]string{
	ProviderOpenRouter: "OpenRouter",
	ProviderOpenAI:     "OpenAI",
}

// Register adds the openrouter and openai providers to the llm registry.
func Register() {
	llm.RegisterProvider(ProviderOpenRouter, func(cfg *config.LLMProviderConfig) (port.ChatClient, error) {
		return NewClient(cfg)
	})
	llm.RegisterProvider(ProviderOpenAI, func(cfg *config.LLMProviderConfig) (port.ChatClient, error) {
		return NewClient(cfg)
	})
}

// Client calls a chat-completions endpoint.
type Client struct {
	provider  string
	label     string
	apiKey    string
	model     string
	endpoint  string
	referer   string
	title     string
	maxTokens int
	client    *http.Client
}

// NewClient creates a client from a provider config. The endpoint defaults
// to the provider's public API.
func NewClient(cfg *config.LLMProviderConfig) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		switch cfg.Provider {
		case ProviderOpenAI:
			endpoint = openAIURL
		case ProviderOpenRouter, "":
			endpoint = openRouterURL
		default:
			return nil, fmt.Errorf("no default endpoint for provider %s", cfg.Provider)
		}
	}
	return NewClientWithEndpoint(cfg, endpoint), nil
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint.
func NewClientWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Client {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenRouter
	}
	label, ok := labels[provider]
	if !ok {
		label = provider
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		provider:  provider,
		label:     label,
		apiKey:    cfg.APIKey,
		model:     model,
		endpoint:  endpoint,
		referer:   cfg.Referer,
		title:     cfg.Title,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

type contentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type apiRequest struct {
	Model     string       `json:"model"`
	Messages  []apiMessage `json:"messages"`
	MaxTokens int          `json:"max_tokens"`
}

// apiResponse models the chat-completions response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	bodyBytes, err := json.Marshal(apiRequest{
		Model:     c.model,
		Messages:  buildMessages(req.Messages),
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", c.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &llm.APIError{
			Provider:   c.label,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, respBody),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError(c.provider, apiErr, retryAfter)
		}
		return nil, apiErr
	}

	var out apiResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("empty response from API: no choices")
	}

	model := out.Model
	if model == "" {
		model = c.model
	}
	return &port.CompletionResponse{
		Content:  out.Choices[0].Message.Content,
		Model:    model,
		Provider: c.provider,
	}, nil
}

func buildMessages(msgs []port.ChatMessage) []apiMessage {
	out := make([]apiMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.ImageURL == "" {
			out = append(out, apiMessage{Role: m.Role, Content: m.Text})
			continue
		}
		out = append(out, apiMessage{
			Role: m.Role,
			Content: []contentBlock{
				{Type: "image_url", ImageURL: &imageURL{URL: m.ImageURL}},
				{Type: "text", Text: m.Text},
			},
		})
	}
	return out
}

// errorMessage prefers the provider's error.message and falls back to the
// HTTP status text.
func errorMessage(status int, body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return http.StatusText(status)
}
