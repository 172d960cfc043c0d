package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultMaxTokens bounds non-streaming completions when the caller doesn't
// otherwise constrain output length (summarizer/reflection calls never do).
const defaultMaxTokens = 4096

// AnthropicProvider implements Provider against the Anthropic Messages API.
// Grounded in the same request/response shape as the teacher's OpenAI and
// Gemini providers (a single Chat entrypoint returning one Message), backed
// by the real anthropic-sdk-go client rather than hand-rolled HTTP.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider builds an AnthropicProvider. baseURL may be empty to
// use Anthropic's default endpoint.
func NewAnthropicProvider(apiKey, baseURL, defaultModel string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...), model: defaultModel}
}

func (p *AnthropicProvider) Chat(ctx context.Context, msgs []Message, tools []ToolSchema, model string) (Message, error) {
	if model == "" {
		model = p.model
	}

	var system string
	var anthMsgs []anthropic.MessageParam
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			if system != "" {
				system += "\n"
			}
			system += m.Content
		case "assistant":
			anthMsgs = append(anthMsgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			anthMsgs = append(anthMsgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(defaultMaxTokens),
		Messages:  anthMsgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Message{}, err
	}
	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return Message{}, fmt.Errorf("anthropic: no text content returned")
	}
	return Message{Role: "assistant", Content: out.String()}, nil
}

func (p *AnthropicProvider) ChatStream(ctx context.Context, msgs []Message, tools []ToolSchema, model string, h StreamHandler) error {
	msg, err := p.Chat(ctx, msgs, tools, model)
	if err != nil {
		return err
	}
	if h != nil {
		h.OnDelta(msg.Content)
	}
	return nil
}

// Complete satisfies summarizer.LLM's narrow (ctx, model, prompt) surface.
func (p *AnthropicProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	msg, err := p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, nil, model)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
