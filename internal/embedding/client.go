// Package embedding provides the embed_async / semantic_search external
// collaborators spec §6 describes: an HTTP embedding client and a Qdrant
// vector index, both behind interfaces so internal/knowledgegraph and
// internal/contextwindow never import this package's dependencies
// directly. Both degrade gracefully — a missing or unreachable backend
// never turns into a fatal error for the caller.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cogmem/internal/observability"
)

// Embedder turns text into a vector. EmbedAsync is a no-op on missing
// inputs and reports no error to the caller when the downstream service
// is unreachable — it only logs the failure, matching spec §6's graceful
// degradation contract for embed_async.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedAsync(ctx context.Context, namespace, key, content string, meta map[string]string)
}

// HTTPConfig configures HTTPEmbedder, grounded on the teacher's
// internal/embedding/client.go EmbedText.
type HTTPConfig struct {
	BaseURL   string
	Path      string // default "/embeddings"
	Model     string
	APIKey    string
	APIHeader string // "Authorization" or a custom header name
	Timeout   time.Duration
}

// HTTPEmbedder calls a generic OpenAI-shaped embeddings endpoint.
type HTTPEmbedder struct {
	cfg HTTPConfig
}

func NewHTTPEmbedder(cfg HTTPConfig) *HTTPEmbedder {
	if cfg.Path == "" {
		cfg.Path = "/embeddings"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPEmbedder{cfg: cfg}
}

type embedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResp struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding: no base url configured")
	}

	body, err := json.Marshal(embedReq{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, e.cfg.BaseURL+e.cfg.Path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIHeader == "Authorization" || e.cfg.APIHeader == "" {
		if e.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
		}
	} else if e.cfg.APIKey != "" {
		req.Header.Set(e.cfg.APIHeader, e.cfg.APIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding: endpoint returned %s: %s", resp.Status, string(b))
	}

	var er embedResp
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(er.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d inputs", len(er.Data), len(texts))
	}
	out := make([][]float32, len(er.Data))
	for i := range er.Data {
		out[i] = er.Data[i].Embedding
	}
	return out, nil
}

// EmbedAsync fires the embed call in a goroutine and only logs failures,
// per spec §6's "no-op on missing inputs, succeeds even when the store is
// unreachable" contract.
func (e *HTTPEmbedder) EmbedAsync(ctx context.Context, namespace, key, content string, meta map[string]string) {
	if content == "" || key == "" {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
		defer cancel()
		if _, err := e.Embed(bgCtx, []string{content}); err != nil {
			observability.LoggerWithTrace(ctx).Debug().
				Err(err).Str("namespace", namespace).Str("key", key).
				Msg("embedding_async_failed")
		}
	}()
}
