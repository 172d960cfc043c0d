package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider against Google's Gemini API using the
// genai SDK. Grounded on the teacher's HandleGemini proxy (same model,
// same single-turn generate-content call) but replacing the raw HTTP
// streaming proxy with the real client SDK the rest of the pack vendors.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider builds a GeminiProvider for apiKey. baseURL is accepted
// for symmetry with the other providers but the genai SDK does not expose a
// base URL override; it is ignored when set against the public API.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL, defaultModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client, model: defaultModel}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, msgs []Message, tools []ToolSchema, model string) (Message, error) {
	if model == "" {
		model = p.model
	}

	var system string
	var contents []*genai.Content
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			if system != "" {
				system += "\n"
			}
			system += m.Content
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return Message{}, err
	}
	text := resp.Text()
	if text == "" {
		return Message{}, fmt.Errorf("gemini: empty response")
	}
	return Message{Role: "assistant", Content: text}, nil
}

func (p *GeminiProvider) ChatStream(ctx context.Context, msgs []Message, tools []ToolSchema, model string, h StreamHandler) error {
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
func (p *GeminiProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	msg, err := p.Chat(ctx, []Message{{Role: "user", Content: prompt}}, nil, model)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
