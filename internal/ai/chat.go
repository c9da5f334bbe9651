// Package ai proxies chat requests to an OpenAI-compatible completion
// API. The base URL is configurable so the same client serves Gemini's
// compatibility endpoint.
package ai

import (
	"context"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// Message is one turn of prior conversation, role "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Chat struct {
	cli   oa.Client
	model string
	log   zerolog.Logger
}

func NewChat(apiKey, baseURL, model string, log zerolog.Logger) *Chat {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Chat{
		cli:   oa.NewClient(opts...),
		model: model,
		log:   log.With().Str("component", "ai").Logger(),
	}
}

// Send forwards message (with optional history) to the model and returns
// the reply text.
func (c *Chat) Send(ctx context.Context, message string, history []Message) (string, error) {
	msgs := make([]oa.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "user" {
			msgs = append(msgs, oa.UserMessage(m.Content))
		} else {
			msgs = append(msgs, oa.AssistantMessage(m.Content))
		}
	}
	msgs = append(msgs, oa.UserMessage(message))

	c.log.Debug().Int("history", len(history)).Msg("forwarding chat request")
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model:    oa.ChatModel(c.model),
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("chat API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from chat API")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
