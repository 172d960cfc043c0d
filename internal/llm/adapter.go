package llm

import "context"

// ReflectionCompleter adapts a Provider plus a fixed model into the narrow
// (ctx, prompt) -> (string, error) surface internal/reflection.LLM needs,
// so reflection never has to know which provider or model an agent chose.
type ReflectionCompleter struct {
	Provider Provider
	Model    string
}

func (r ReflectionCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := r.Provider.Chat(ctx, []Message{{Role: "user", Content: prompt}}, nil, r.Model)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// SummarizerCompleter adapts a Provider into internal/summarizer.LLM's
// (ctx, model, prompt) surface, letting the summarizer pick the model per
// call (complexity-driven) while reflection pins one model per agent.
type SummarizerCompleter struct {
	Provider Provider
}

func (s SummarizerCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	msg, err := s.Provider.Chat(ctx, []Message{{Role: "user", Content: prompt}}, nil, model)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
