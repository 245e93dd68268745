package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
)

// Client is the chat-completion backend for reply composition. Every
// failure mode wraps ErrCompletion so callers can fall back to canned
// replies without inspecting causes.
type Client struct {
	client      oai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	client := oai.NewClient(opts...)
	return &Client{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxCompletionToken,
		temperature: cfg.Temperature,
	}, nil
}

func (c *Client) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(req))
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", contractx.ErrCompletion)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: model returned empty reply", contractx.ErrCompletion)
	}

	log.Debug().
		Str("model", c.model).
		Int("messages", len(req.Messages)).
		Msg("completion produced")
	return reply, nil
}

func (c *Client) buildParams(req contractx.CompletionRequest) oai.ChatCompletionNewParams {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, oai.SystemMessage(system))
	}
	for _, m := range req.Messages {
		messages = append(messages, convertMessage(m))
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if c.temperature >= 0 {
		params.Temperature = param.NewOpt(float64(c.temperature))
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(c.maxTokens))
	}
	return params
}

func convertMessage(m contractx.Message) oai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case contractx.RoleAssistant:
		asst := oai.ChatCompletionAssistantMessageParam{}
		asst.Content.OfString = oai.String(m.Content)
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	case contractx.RoleSystem:
		return oai.SystemMessage(m.Content)
	}
	return oai.UserMessage(m.Content)
}
