package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// Load reads configuration from environment variables (optionally a .env
// file), then fills any gap with a YAML config file (CONFIG_PATH, default
// "config.yaml" if present), then fills whatever's left with hard defaults.
// Precedence is always env > YAML > default.
func Load() (Config, error) {
	// Use Overload so .env values override existing OS environment variables,
	// matching the teacher's precedence for local/dev overrides.
	_ = godotenv.Overload()

	cfg := Config{}
	applyEnv(&cfg)

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := mergeYAMLFile(&cfg, path); err != nil {
			return cfg, err
		}
	} else if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := mergeYAML(&cfg, data); err != nil {
			return cfg, err
		}
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogPath = strings.TrimSpace(os.Getenv("LOG_PATH"))
	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	cfg.LogPayloads = boolEnv("LOG_PAYLOADS", false)

	cfg.LLMClient.Provider = strings.TrimSpace(os.Getenv("LLM_PROVIDER"))
	cfg.LLMClient.OpenAI.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.LLMClient.OpenAI.Model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	cfg.LLMClient.OpenAI.BaseURL = firstNonEmpty(os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_API_BASE_URL"))
	cfg.LLMClient.Anthropic.APIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	cfg.LLMClient.Anthropic.Model = strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL"))
	cfg.LLMClient.Anthropic.BaseURL = strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL"))
	cfg.LLMClient.Google.APIKey = firstNonEmpty(os.Getenv("GOOGLE_LLM_API_KEY"), os.Getenv("GEMINI_API_KEY"))
	cfg.LLMClient.Google.Model = strings.TrimSpace(os.Getenv("GOOGLE_LLM_MODEL"))
	cfg.LLMClient.Google.BaseURL = strings.TrimSpace(os.Getenv("GOOGLE_LLM_BASE_URL"))

	cfg.Embedding.Provider = strings.TrimSpace(os.Getenv("EMBEDDING_PROVIDER"))
	cfg.Embedding.APIKey = strings.TrimSpace(os.Getenv("EMBEDDING_API_KEY"))
	cfg.Embedding.BaseURL = strings.TrimSpace(os.Getenv("EMBEDDING_BASE_URL"))
	cfg.Embedding.Model = strings.TrimSpace(os.Getenv("EMBEDDING_MODEL"))
	cfg.Embedding.Qdrant.Host = strings.TrimSpace(os.Getenv("QDRANT_HOST"))
	cfg.Embedding.Qdrant.Port = intEnv("QDRANT_PORT", 0)
	cfg.Embedding.Qdrant.APIKey = strings.TrimSpace(os.Getenv("QDRANT_API_KEY"))
	cfg.Embedding.Qdrant.Collection = strings.TrimSpace(os.Getenv("QDRANT_COLLECTION"))
	cfg.Embedding.Qdrant.VectorSize = intEnv("QDRANT_VECTOR_SIZE", 0)

	cfg.KnowledgeGraph.DecayRate = floatEnv("KG_DECAY_RATE", 0)
	cfg.KnowledgeGraph.MaxNodesPerType = intEnv("KG_MAX_NODES_PER_TYPE", 0)
	cfg.KnowledgeGraph.PruneThreshold = floatEnv("KG_PRUNE_THRESHOLD", 0)
	cfg.KnowledgeGraph.MaxActive = intEnv("KG_MAX_ACTIVE", 0)
	cfg.KnowledgeGraph.DedupThreshold = floatEnv("KG_DEDUP_THRESHOLD", 0)
	cfg.KnowledgeGraph.MaxTokensSpec = strings.TrimSpace(os.Getenv("KG_MAX_TOKENS"))

	cfg.ContextWindow.MultiLayer = boolEnv("CTX_MULTI_LAYER", false)
	cfg.ContextWindow.MaxTokensSpec = strings.TrimSpace(os.Getenv("CTX_MAX_TOKENS"))
	cfg.ContextWindow.Model = strings.TrimSpace(os.Getenv("CTX_MODEL"))
	cfg.ContextWindow.RatioFullDetail = floatEnv("CTX_RATIO_FULL_DETAIL", 0)
	cfg.ContextWindow.RatioRecentSummary = floatEnv("CTX_RATIO_RECENT_SUMMARY", 0)
	cfg.ContextWindow.RatioDistantSummary = floatEnv("CTX_RATIO_DISTANT_SUMMARY", 0)
	cfg.ContextWindow.RatioRetrieved = floatEnv("CTX_RATIO_RETRIEVED", 0)
	cfg.ContextWindow.SummarizationEnabled = boolEnv("CTX_SUMMARIZATION_ENABLED", false)
	cfg.ContextWindow.FactExtractionEnabled = boolEnv("CTX_FACT_EXTRACTION_ENABLED", false)
	cfg.ContextWindow.SummaryThreshold = floatEnv("CTX_SUMMARY_THRESHOLD", 0)

	cfg.WorkingMemory.MaxThoughts = intEnv("WM_MAX_THOUGHTS", 0)
	cfg.WorkingMemory.MaxTokensSpec = strings.TrimSpace(os.Getenv("WM_MAX_TOKENS"))

	cfg.Reflection.IntervalMS = int64Env("REFLECTION_INTERVAL_MS", 0)
	cfg.Reflection.Threshold = intEnv("REFLECTION_SIGNAL_THRESHOLD", 0)

	cfg.EventBus.Enabled = boolEnv("EVENTS_ENABLED", false)
	cfg.EventBus.Brokers = strings.TrimSpace(os.Getenv("EVENTS_BROKERS"))
	cfg.EventBus.Topic = strings.TrimSpace(os.Getenv("EVENTS_TOPIC"))
	cfg.EventBus.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.EventBus.RedisPassword = strings.TrimSpace(os.Getenv("REDIS_PASSWORD"))
	cfg.EventBus.RedisDB = intEnv("REDIS_DB", 0)

	cfg.Relationship.DSN = strings.TrimSpace(os.Getenv("RELATIONSHIP_DSN"))

	cfg.Archive.Enabled = boolEnv("ARCHIVE_ENABLED", false)
	cfg.Archive.Endpoint = strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
	cfg.Archive.Region = strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION"))
	cfg.Archive.Bucket = strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET"))
	cfg.Archive.Prefix = strings.TrimSpace(os.Getenv("ARCHIVE_S3_PREFIX"))
	cfg.Archive.AccessKey = strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY"))
	cfg.Archive.SecretKey = strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY"))
	cfg.Archive.UsePathStyle = boolEnv("ARCHIVE_S3_USE_PATH_STYLE", false)
}

// mergeYAMLFile reads path and merges it into cfg, leaving any field env
// already set untouched.
func mergeYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return mergeYAML(cfg, data)
}

func mergeYAML(cfg *Config, data []byte) error {
	var y Config
	if err := yaml.Unmarshal(data, &y); err != nil {
		return err
	}
	mergeString(&cfg.LogPath, y.LogPath)
	mergeString(&cfg.LogLevel, y.LogLevel)
	if !cfg.LogPayloads && y.LogPayloads {
		cfg.LogPayloads = true
	}

	mergeString(&cfg.LLMClient.Provider, y.LLMClient.Provider)
	mergeString(&cfg.LLMClient.OpenAI.APIKey, y.LLMClient.OpenAI.APIKey)
	mergeString(&cfg.LLMClient.OpenAI.Model, y.LLMClient.OpenAI.Model)
	mergeString(&cfg.LLMClient.OpenAI.BaseURL, y.LLMClient.OpenAI.BaseURL)
	mergeString(&cfg.LLMClient.Anthropic.APIKey, y.LLMClient.Anthropic.APIKey)
	mergeString(&cfg.LLMClient.Anthropic.Model, y.LLMClient.Anthropic.Model)
	mergeString(&cfg.LLMClient.Anthropic.BaseURL, y.LLMClient.Anthropic.BaseURL)
	mergeString(&cfg.LLMClient.Google.APIKey, y.LLMClient.Google.APIKey)
	mergeString(&cfg.LLMClient.Google.Model, y.LLMClient.Google.Model)
	mergeString(&cfg.LLMClient.Google.BaseURL, y.LLMClient.Google.BaseURL)

	mergeString(&cfg.Embedding.Provider, y.Embedding.Provider)
	mergeString(&cfg.Embedding.APIKey, y.Embedding.APIKey)
	mergeString(&cfg.Embedding.BaseURL, y.Embedding.BaseURL)
	mergeString(&cfg.Embedding.Model, y.Embedding.Model)
	mergeString(&cfg.Embedding.Qdrant.Host, y.Embedding.Qdrant.Host)
	mergeInt(&cfg.Embedding.Qdrant.Port, y.Embedding.Qdrant.Port)
	mergeString(&cfg.Embedding.Qdrant.APIKey, y.Embedding.Qdrant.APIKey)
	mergeString(&cfg.Embedding.Qdrant.Collection, y.Embedding.Qdrant.Collection)
	mergeInt(&cfg.Embedding.Qdrant.VectorSize, y.Embedding.Qdrant.VectorSize)

	mergeFloat(&cfg.KnowledgeGraph.DecayRate, y.KnowledgeGraph.DecayRate)
	mergeInt(&cfg.KnowledgeGraph.MaxNodesPerType, y.KnowledgeGraph.MaxNodesPerType)
	mergeFloat(&cfg.KnowledgeGraph.PruneThreshold, y.KnowledgeGraph.PruneThreshold)
	mergeInt(&cfg.KnowledgeGraph.MaxActive, y.KnowledgeGraph.MaxActive)
	mergeFloat(&cfg.KnowledgeGraph.DedupThreshold, y.KnowledgeGraph.DedupThreshold)
	mergeString(&cfg.KnowledgeGraph.MaxTokensSpec, y.KnowledgeGraph.MaxTokensSpec)
	if cfg.KnowledgeGraph.TypeQuotas == nil && len(y.KnowledgeGraph.TypeQuotas) > 0 {
		cfg.KnowledgeGraph.TypeQuotas = y.KnowledgeGraph.TypeQuotas
	}

	if !cfg.ContextWindow.MultiLayer && y.ContextWindow.MultiLayer {
		cfg.ContextWindow.MultiLayer = true
	}
	mergeString(&cfg.ContextWindow.MaxTokensSpec, y.ContextWindow.MaxTokensSpec)
	mergeString(&cfg.ContextWindow.Model, y.ContextWindow.Model)
	mergeFloat(&cfg.ContextWindow.RatioFullDetail, y.ContextWindow.RatioFullDetail)
	mergeFloat(&cfg.ContextWindow.RatioRecentSummary, y.ContextWindow.RatioRecentSummary)
	mergeFloat(&cfg.ContextWindow.RatioDistantSummary, y.ContextWindow.RatioDistantSummary)
	mergeFloat(&cfg.ContextWindow.RatioRetrieved, y.ContextWindow.RatioRetrieved)
	if !cfg.ContextWindow.SummarizationEnabled && y.ContextWindow.SummarizationEnabled {
		cfg.ContextWindow.SummarizationEnabled = true
	}
	if !cfg.ContextWindow.FactExtractionEnabled && y.ContextWindow.FactExtractionEnabled {
		cfg.ContextWindow.FactExtractionEnabled = true
	}
	mergeFloat(&cfg.ContextWindow.SummaryThreshold, y.ContextWindow.SummaryThreshold)

	mergeInt(&cfg.WorkingMemory.MaxThoughts, y.WorkingMemory.MaxThoughts)
	mergeString(&cfg.WorkingMemory.MaxTokensSpec, y.WorkingMemory.MaxTokensSpec)

	mergeInt64(&cfg.Reflection.IntervalMS, y.Reflection.IntervalMS)
	mergeInt(&cfg.Reflection.Threshold, y.Reflection.Threshold)

	if !cfg.EventBus.Enabled && y.EventBus.Enabled {
		cfg.EventBus.Enabled = true
	}
	mergeString(&cfg.EventBus.Brokers, y.EventBus.Brokers)
	mergeString(&cfg.EventBus.Topic, y.EventBus.Topic)
	mergeString(&cfg.EventBus.RedisAddr, y.EventBus.RedisAddr)
	mergeString(&cfg.EventBus.RedisPassword, y.EventBus.RedisPassword)
	mergeInt(&cfg.EventBus.RedisDB, y.EventBus.RedisDB)

	mergeString(&cfg.Relationship.DSN, y.Relationship.DSN)

	if !cfg.Archive.Enabled && y.Archive.Enabled {
		cfg.Archive.Enabled = true
	}
	mergeString(&cfg.Archive.Endpoint, y.Archive.Endpoint)
	mergeString(&cfg.Archive.Region, y.Archive.Region)
	mergeString(&cfg.Archive.Bucket, y.Archive.Bucket)
	mergeString(&cfg.Archive.Prefix, y.Archive.Prefix)
	mergeString(&cfg.Archive.AccessKey, y.Archive.AccessKey)
	mergeString(&cfg.Archive.SecretKey, y.Archive.SecretKey)
	if !cfg.Archive.UsePathStyle && y.Archive.UsePathStyle {
		cfg.Archive.UsePathStyle = true
	}
	return nil
}

// applyDefaults fills in hard defaults for anything still unset after env
// and YAML. Component-level defaults (decay rate, max active, ...) are also
// applied by each component's own New/withDefaults, so these only matter
// for values read by internal/agentcore before construction.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LLMClient.Provider == "" {
		cfg.LLMClient.Provider = "openai"
	}
	if cfg.Embedding.Qdrant.VectorSize == 0 {
		cfg.Embedding.Qdrant.VectorSize = 1536
	}
	if cfg.Embedding.Qdrant.Collection == "" {
		cfg.Embedding.Qdrant.Collection = "cogmem_nodes"
	}
	if cfg.KnowledgeGraph.MaxTokensSpec == "" {
		cfg.KnowledgeGraph.MaxTokensSpec = "percentage:0.3"
	}
	if cfg.ContextWindow.MaxTokensSpec == "" {
		cfg.ContextWindow.MaxTokensSpec = "percentage:0.5"
	}
	if cfg.WorkingMemory.MaxTokensSpec == "" {
		cfg.WorkingMemory.MaxTokensSpec = "fixed:4000"
	}
	if cfg.Reflection.IntervalMS == 0 {
		cfg.Reflection.IntervalMS = 30 * 60 * 1000
	}
	if cfg.Reflection.Threshold == 0 {
		cfg.Reflection.Threshold = 20
	}
	if cfg.EventBus.Topic == "" {
		cfg.EventBus.Topic = "cogmem.signals"
	}
}

func mergeString(dst *string, src string) {
	if *dst == "" && strings.TrimSpace(src) != "" {
		*dst = strings.TrimSpace(src)
	}
}

func mergeInt(dst *int, src int) {
	if *dst == 0 && src != 0 {
		*dst = src
	}
}

func mergeInt64(dst *int64, src int64) {
	if *dst == 0 && src != 0 {
		*dst = src
	}
}

func mergeFloat(dst *float64, src float64) {
	if *dst == 0 && src != 0 {
		*dst = src
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func boolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func int64Env(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return def
}

func floatEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return def
}
