package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIProvider implements Provider against the OpenAI chat completions
// API, grounded on the teacher's CallLLM (internal/llm/openai_client.go)
// but adapted from a free function taking raw (endpoint, apiKey, model) to
// a Provider value constructed once and reused across calls.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider builds an OpenAIProvider. baseURL may be empty to use
// the default OpenAI endpoint (useful for self-hosted/proxy gateways when
// set, exactly like the teacher's endpoint override).
func NewOpenAIProvider(apiKey, baseURL, defaultModel string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{client: openai.NewClient(opts...), model: defaultModel}
}

func (p *OpenAIProvider) Chat(ctx context.Context, msgs []Message, tools []ToolSchema, model string) (Message, error) {
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: toOpenAIMessages(msgs),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Message{}, err
	}
	if len(resp.Choices) == 0 {
		return Message{}, fmt.Errorf("openai: no choices returned")
	}
	return Message{Role: "assistant", Content: resp.Choices[0].Message.Content}, nil
}

func (p *OpenAIProvider) ChatStream(ctx context.Context, msgs []Message, tools []ToolSchema, model string, h StreamHandler) error {
	msg, err := p.Chat(ctx, msgs, tools, model)
	if err != nil {
		return err
	}
	if h != nil {
		h.OnDelta(msg.Content)
	}
	return nil
}

// Complete satisfies summarizer.LLM's narrow (ctx, model, prompt) surface
// without that package importing openai-go directly.
func (p *OpenAIProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	msg, err := p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, nil, model)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
