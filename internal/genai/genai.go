// Package genai provides the text-generation client used by the coach,
// backed by the OpenAI API.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ClientInterface defines the narrow generation seam the coach depends on.
// Tests substitute a mock returning canned strings.
type ClientInterface interface {
	// GeneratePrompt sends a single-prompt completion request and returns
	// the raw response text. All retry and validation logic lives in the
	// caller.
	GeneratePrompt(ctx context.Context, prompt string) (string, error)
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	client openai.Client
	model  openai.ChatModel
}

// NewClient initializes a GenAI client using the OPENAI_API_KEY
// environment variable.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return NewClientWithKey(apiKey), nil
}

// NewClientWithKey initializes a GenAI client with an explicit API key.
func NewClientWithKey(apiKey string) *Client {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}
}

// GeneratePrompt generates a response for the given prompt.
func (c *Client) GeneratePrompt(ctx context.Context, prompt string) (string, error) {
	slog.Debug("genai.GeneratePrompt: sending request", "promptLength", len(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		slog.Error("genai.GeneratePrompt: API call failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	content := resp.Choices[0].Message.Content
	slog.Debug("genai.GeneratePrompt: received response", "responseLength", len(content))
	return content, nil
}
