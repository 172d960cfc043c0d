// Command cogmemd is the HTTP front door onto the memory engine: one
// process, one Registry, one Handle per agent_id, constructed the way the
// teacher's cmd/agentd/main.go wires a single agent.Engine behind an
// http.ServeMux.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"cogmem/internal/agentcore"
	"cogmem/internal/config"
	"cogmem/internal/knowledgegraph"
	"cogmem/internal/observability"
	"cogmem/internal/proposalqueue"
	"cogmem/internal/reflection"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("example.env")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger(cfg.LogPath, cfg.LogLevel)

	ctx := context.Background()
	deps, err := agentcore.BuildDeps(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dependencies")
	}

	registry := agentcore.NewRegistry(deps)
	handleCfg := agentcore.HandleConfigFromConfig(cfg)
	reflectionOpts := reflection.Options{IntervalMS: cfg.Reflection.IntervalMS, Threshold: cfg.Reflection.Threshold}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { fmt.Fprintln(w, "ok") })
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) { fmt.Fprintln(w, "ready") })

	mux.HandleFunc("/agents/{id}/thought", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		var req struct {
			Content string `json:"content"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		h.AddThought(req.Content)
		writeJSON(w, map[string]bool{"ok": true})
	}))

	mux.HandleFunc("/agents/{id}/recall", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		q := r.URL.Query().Get("q")
		nodes := h.Recall(q, knowledgegraph.RecallOptions{Limit: 20})
		writeJSON(w, nodes)
	}))

	mux.HandleFunc("/agents/{id}/propose", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		var req struct {
			Type       string  `json:"type"`
			Content    string  `json:"content"`
			Confidence float64 `json:"confidence"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		id, err := h.Propose(proposalqueue.CreateSpec{
			Type: proposalqueue.Type(req.Type), Content: req.Content, Confidence: req.Confidence,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"id": id})
	}))

	mux.HandleFunc("/agents/{id}/proposals/{pid}/accept", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		result, err := h.AcceptProposal(r.PathValue("pid"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, result)
	}))

	mux.HandleFunc("/agents/{id}/message", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		var req struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		var err error
		switch req.Role {
		case "assistant":
			err = h.AddAssistantResponse(req.Content)
		default:
			err = h.AddUserMessage(req.Content)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]bool{"ok": true})
	}))

	mux.HandleFunc("/agents/{id}/prompt", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		fmt.Fprint(w, h.PromptText())
	}))

	mux.HandleFunc("/agents/{id}/reflect", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		h := registry.InitForAgent(r.PathValue("id"), handleCfg)
		result, ran, err := h.MaybeReflect(r.Context(), reflectionOpts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"ran": ran, "result": result})
	}))

	go runMaintenanceLoop(ctx, registry)

	addr := ":8085"
	log.Info().Str("addr", addr).Msg("cogmemd listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// runMaintenanceLoop periodically decays/prunes/archives every initialized
// agent's knowledge graph, the background janitor spec §4.B's
// decay_and_archive describes running off the request path.
func runMaintenanceLoop(ctx context.Context, registry *agentcore.Registry) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		registry.MaintainAll(ctx, time.Now().UTC())
	}
}

func requireMethod(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
