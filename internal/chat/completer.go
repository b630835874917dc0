package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Message is one turn of a conversation sent to a Completer.
type Message struct {
	Role    string
	Content string
}

// Completer produces the assistant's next reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

const (
	DefaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter returns nil when apiKey is empty so callers can treat
// chat as unconfigured.
func NewOpenAICompleter(apiKey, model string, opts ...option.RequestOption) *OpenAICompleter {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(defaultTemperature),
		MaxTokens:   openai.Int(defaultMaxTokens),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		case RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
