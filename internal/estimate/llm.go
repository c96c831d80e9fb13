package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ChatCaller is the chat-completion capability the pipeline consumes: prompt
// in, free-text blob out. Implementations issue exactly one outbound request
// per call and enforce no timeout of their own beyond the transport's.
type ChatCaller interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultTemperature    = 0.2
	defaultMaxTokens      = 1500
)

// OpenAIConfig carries everything the caller needs. The key is injected here
// rather than read from ambient process state inside the caller.
type OpenAIConfig struct {
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// OpenAICaller speaks the chat-completions wire format over HTTP.
type OpenAICaller struct {
	cfg OpenAIConfig
}

func NewOpenAICaller(cfg OpenAIConfig) *OpenAICaller {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultOpenAIEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &OpenAICaller{cfg: cfg}
}

// NewOpenAICallerFromEnv reads OPENAI_API_KEY once at construction time.
func NewOpenAICallerFromEnv() (*OpenAICaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not configured")
	}
	return NewOpenAICaller(OpenAIConfig{APIKey: apiKey}), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAICaller) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", newEnvelopeError("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", newNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", newNetworkError(fmt.Errorf("chat completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", newEnvelopeError("decode response: %v", err)
	}
	if len(envelope.Choices) == 0 || strings.TrimSpace(envelope.Choices[0].Message.Content) == "" {
		return "", newEnvelopeError("response has no choices[0].message.content")
	}
	return envelope.Choices[0].Message.Content, nil
}

// AnthropicMessager is the slice of the Anthropic client the caller uses,
// split out so tests can stub it.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCaller is the alternate provider backend.
type AnthropicCaller struct {
	messages  AnthropicMessager
	maxTokens int64
}

func NewAnthropicCaller(messages AnthropicMessager) *AnthropicCaller {
	return &AnthropicCaller{messages: messages, maxTokens: 2000}
}

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicCaller(&c.Messages), nil
}

func (a *AnthropicCaller) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(defaultTemperature),
	})
	if err != nil {
		return "", newNetworkError(err)
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", newEnvelopeError("response has no text content")
	}
	return sb.String(), nil
}

// RelayCaller sends the prompt to an estimator relay server, which holds the
// provider credentials. The relay answers {"content": "<raw text>"}, so the
// two paths are interchangeable from the parser's point of view.
type RelayCaller struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewRelayCaller(baseURL string) *RelayCaller {
	return &RelayCaller{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (r *RelayCaller) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", newEnvelopeError("encode request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/api/estimate", bytes.NewReader(body))
	if err != nil {
		return "", newNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newNetworkError(fmt.Errorf("relay status %d", resp.StatusCode))
	}
	var envelope struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", newEnvelopeError("decode relay response: %v", err)
	}
	if strings.TrimSpace(envelope.Content) == "" {
		return "", newEnvelopeError("relay response has no content")
	}
	return envelope.Content, nil
}
