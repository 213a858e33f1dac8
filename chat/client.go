// Package chat sends the user's question to an OpenAI-compatible
// chat-completion endpoint.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// FailurePrefix starts every error string returned by Complete
const FailurePrefix = "Request failed: "

var (
	// ErrNoChoices is returned when the endpoint answers without a choice
	ErrNoChoices = errors.New("no choices in response")
	// ErrEmptyReply is returned when the first choice has no content
	ErrEmptyReply = errors.New("empty response")
)

// Options configures a Client. Empty values are passed through to the SDK,
// which then fails per request.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Persona string
	// Timeout bounds one request; 0 keeps the SDK's default HTTP client
	Timeout time.Duration
}

// Client asks one question at a time. Each request carries only the persona
// and the question; no history is kept.
type Client struct {
	api     *openai.Client
	model   string
	persona string
	baseURL string
}

// NewClient creates a client for an OpenAI-compatible endpoint
func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   strings.TrimSpace(opts.Model),
		persona: opts.Persona,
		baseURL: cfg.BaseURL,
	}
}

// Model returns the model ID sent with each request
func (c *Client) Model() string {
	return c.model
}

// Messages builds the fixed two-message exchange for a question
func (c *Client) Messages(question string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: c.persona},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}
}

// Ask sends question and returns the reply text
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	id := uuid.NewString()
	start := time.Now()
	log.Printf("chat: request %s to %s (model %q)", id, c.baseURL, c.model)
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: c.Messages(question),
	})
	if err != nil {
		log.Printf("chat: request %s failed after %s: %v", id, time.Since(start).Round(time.Millisecond), err)
		return "", c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		log.Printf("chat: request %s returned no choices", id)
		return "", ErrNoChoices
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		log.Printf("chat: request %s returned an empty reply", id)
		return "", ErrEmptyReply
	}
	log.Printf("chat: request %s answered in %s (%d bytes)", id, time.Since(start).Round(time.Millisecond), len(content))
	return content, nil
}

// Complete returns the reply, or a readable error string in its place.
// Callers display either one verbatim.
func (c *Client) Complete(ctx context.Context, question string) string {
	reply, err := c.Ask(ctx, question)
	if err != nil {
		return FailurePrefix + err.Error()
	}
	return reply
}

// wrapError provides more helpful error messages for common failures
func (c *Client) wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode != 0 {
			return fmt.Errorf("api error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return fmt.Errorf("api error: %s", apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("request error (status %d): %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request cancelled: %w", err)
	}

	errStr := err.Error()
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(errStr, "Client.Timeout") {
		return fmt.Errorf("connection timeout - server at %s is not responding", c.baseURL)
	}
	if strings.Contains(errStr, "connection refused") {
		return fmt.Errorf("connection refused - no server running at %s", c.baseURL)
	}
	if strings.Contains(errStr, "no such host") {
		return fmt.Errorf("unknown host - could not resolve %s", c.baseURL)
	}
	if strings.Contains(errStr, "certificate") {
		return fmt.Errorf("TLS/SSL error - certificate issue with %s", c.baseURL)
	}
	return err
}
