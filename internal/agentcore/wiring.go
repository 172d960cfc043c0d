package agentcore

import (
	"context"
	"fmt"

	"cogmem/internal/archive"
	"cogmem/internal/config"
	"cogmem/internal/contextwindow"
	"cogmem/internal/embedding"
	"cogmem/internal/eventbus"
	cogmemllm "cogmem/internal/llm"
	"cogmem/internal/knowledgegraph"
	"cogmem/internal/observability"
	"cogmem/internal/reflection"
	"cogmem/internal/relationship"
	"cogmem/internal/summarizer"
	"cogmem/internal/tokenbudget"
	"cogmem/internal/workingmemory"
)

// BuildDeps constructs the process-wide external collaborators from cfg,
// mirroring the teacher's main.go wiring style (construct each client once
// at startup, hand the shared instance to every consumer) without forcing
// any external service to actually be reachable: every collaborator is
// optional and Deps degrades to in-memory-only behavior when its config
// section is unset (spec §1's graceful-degradation contract, extended to
// process startup itself).
func BuildDeps(ctx context.Context, cfg config.Config) (Deps, error) {
	deps := Deps{
		SummarizerPreference: preferenceFor(cfg.LLMClient.Provider),
	}

	provider, model, err := buildLLMProvider(ctx, cfg.LLMClient)
	if err != nil {
		return deps, fmt.Errorf("agentcore: build llm provider: %w", err)
	}
	deps.LLM = provider
	deps.ReflectionModel = model

	if cfg.Embedding.BaseURL != "" {
		deps.Embedder = embedding.NewHTTPEmbedder(embedding.HTTPConfig{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
			APIKey:  cfg.Embedding.APIKey,
		})
	}
	if cfg.Embedding.Qdrant.Host != "" {
		idx, err := embedding.NewQdrantIndex(ctx, cfg.Embedding.Qdrant.Host, cfg.Embedding.Qdrant.Port,
			cfg.Embedding.Qdrant.APIKey, cfg.Embedding.Qdrant.Collection, cfg.Embedding.Qdrant.VectorSize)
		if err != nil {
			return deps, fmt.Errorf("agentcore: build qdrant index: %w", err)
		}
		deps.Index = idx
	}

	bus, err := buildBus(cfg.EventBus)
	if err != nil {
		return deps, fmt.Errorf("agentcore: build event bus: %w", err)
	}
	deps.Bus = bus

	if cfg.Relationship.DSN != "" {
		store, err := relationship.NewPostgresStore(ctx, cfg.Relationship.DSN)
		if err != nil {
			return deps, fmt.Errorf("agentcore: build relationship store: %w", err)
		}
		if err := store.Init(ctx); err != nil {
			return deps, fmt.Errorf("agentcore: init relationship store: %w", err)
		}
		deps.Relationships = store
	}

	if cfg.Archive.Enabled {
		store, err := archive.NewS3Store(ctx, archive.Config{
			Endpoint:     cfg.Archive.Endpoint,
			Region:       cfg.Archive.Region,
			Bucket:       cfg.Archive.Bucket,
			Prefix:       cfg.Archive.Prefix,
			AccessKey:    cfg.Archive.AccessKey,
			SecretKey:    cfg.Archive.SecretKey,
			UsePathStyle: cfg.Archive.UsePathStyle,
		})
		if err != nil {
			return deps, fmt.Errorf("agentcore: build archive store: %w", err)
		}
		deps.Archive = store
	} else {
		deps.Archive = archive.NullStore{}
	}

	metrics, _, err := observability.InitMetrics()
	if err != nil {
		return deps, fmt.Errorf("agentcore: init metrics: %w", err)
	}
	deps.Metrics = metrics

	return deps, nil
}

func buildLLMProvider(ctx context.Context, cfg config.LLMClientConfig) (cogmemllm.Provider, string, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, "", nil
		}
		return cogmemllm.NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.Model), cfg.Anthropic.Model, nil
	case "google":
		if cfg.Google.APIKey == "" {
			return nil, "", nil
		}
		p, err := cogmemllm.NewGeminiProvider(ctx, cfg.Google.APIKey, cfg.Google.BaseURL, cfg.Google.Model)
		if err != nil {
			return nil, "", err
		}
		return p, cfg.Google.Model, nil
	case "openai", "":
		if cfg.OpenAI.APIKey == "" {
			return nil, "", nil
		}
		return cogmemllm.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), cfg.OpenAI.Model, nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func preferenceFor(provider string) summarizer.Preference {
	switch provider {
	case "anthropic":
		return summarizer.PreferAnthropic
	case "google":
		return summarizer.PreferGoogle
	default:
		return summarizer.PreferOpenAI
	}
}

func buildBus(cfg config.EventBusConfig) (eventbus.Bus, error) {
	if !cfg.Enabled {
		return eventbus.NewInMemoryBus(), nil
	}
	var interrupts *eventbus.RedisInterruptStore
	if cfg.RedisAddr != "" {
		store, err := eventbus.NewRedisInterruptStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		interrupts = store
	}
	return eventbus.NewKafkaBus(cfg.Brokers, cfg.Topic, interrupts), nil
}

// HandleConfigFromConfig translates the process-wide config.Config into the
// per-agent HandleConfig InitForAgent needs. It takes no per-agent
// overrides: every agent built from the result shares the process defaults.
func HandleConfigFromConfig(cfg config.Config) HandleConfig {
	// Settle the context window the budget specs below resolve against:
	// internal/llm's table plus any COGMEM_*_CONTEXT_TOKENS env override
	// wins over internal/tokenbudget's builtin defaults for the configured
	// model, snapshot-suffixed ids included.
	if model := cfg.ContextWindow.Model; model != "" {
		if size, ok := cogmemllm.ContextSize(model); ok {
			tokenbudget.RegisterModelContext(model, size)
		}
	}

	typeQuotas := make(map[knowledgegraph.NodeType]float64, len(cfg.KnowledgeGraph.TypeQuotas))
	for t, frac := range cfg.KnowledgeGraph.TypeQuotas {
		typeQuotas[knowledgegraph.NodeType(t)] = frac
	}
	graphTokens := config.ParseBudgetSpec(cfg.KnowledgeGraph.MaxTokensSpec)
	wmTokens := config.ParseBudgetSpec(cfg.WorkingMemory.MaxTokensSpec)
	ctxTokens := config.ParseBudgetSpec(cfg.ContextWindow.MaxTokensSpec)

	return HandleConfig{
		Graph: knowledgegraph.Config{
			DecayRate:       cfg.KnowledgeGraph.DecayRate,
			MaxNodesPerType: cfg.KnowledgeGraph.MaxNodesPerType,
			PruneThreshold:  cfg.KnowledgeGraph.PruneThreshold,
			MaxActive:       cfg.KnowledgeGraph.MaxActive,
			DedupThreshold:  cfg.KnowledgeGraph.DedupThreshold,
			MaxTokens:       &graphTokens,
			TypeQuotas:      typeQuotas,
		},
		WorkingMemory: workingmemory.Config{
			MaxThoughts: cfg.WorkingMemory.MaxThoughts,
			MaxTokens:   &wmTokens,
		},
		ContextWindow: contextwindow.Config{
			MultiLayer:            cfg.ContextWindow.MultiLayer,
			MaxTokens:             ctxTokens,
			Model:                 cfg.ContextWindow.Model,
			SummarizationEnabled:  cfg.ContextWindow.SummarizationEnabled,
			FactExtractionEnabled: cfg.ContextWindow.FactExtractionEnabled,
			SummaryThreshold:      cfg.ContextWindow.SummaryThreshold,
			Ratios: contextwindow.Ratios{
				DistantSummary: cfg.ContextWindow.RatioDistantSummary,
				RecentSummary:  cfg.ContextWindow.RatioRecentSummary,
				FullDetail:     cfg.ContextWindow.RatioFullDetail,
				Retrieved:      cfg.ContextWindow.RatioRetrieved,
			},
		},
		Reflection: reflection.Options{
			IntervalMS: cfg.Reflection.IntervalMS,
			Threshold:  cfg.Reflection.Threshold,
		},
	}
}
