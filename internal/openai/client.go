package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/chatbot"

	openai "github.com/sashabaranov/go-openai"
)

const defaultTimeout = 120 * time.Second

// Client implements the chatbot completion capability over the
// OpenAI-compatible chat API. Credentials and model come from the request so
// one client serves every stored AI configuration.
type Client struct {
	// BaseURL overrides the API host when talking to a compatible gateway.
	BaseURL string
	// Timeout bounds a single completion call.
	Timeout time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: defaultTimeout,
	}
}

// Complete sends one chat completion request and returns the reply text and
// token usage.
func (c *Client) Complete(ctx context.Context, req chatbot.CompletionRequest) (*chatbot.CompletionResult, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("completion: missing api key")
	}

	cfg := openai.DefaultConfig(req.APIKey)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	client := openai.NewClientWithConfig(cfg)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleAssistant
		if turn.Role == "user" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("completion API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion API: empty choice list")
	}

	return &chatbot.CompletionResult{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
