// Package config loads process and per-agent configuration the way the
// teacher's internal/config/loader.go does: godotenv.Overload() followed by
// environment-variable reads, with an optional YAML sub-config filling any
// gaps env didn't set and hard defaults filling whatever's left. Precedence
// is always env > YAML > default, never the reverse.
package config

// Config is the process-wide configuration for a cogmem deployment: ambient
// concerns (logging) plus the default tuning for every per-agent memory
// component, expressed as the same budget-spec strings internal/tokenbudget
// resolves at runtime so a config file and a runtime call look identical.
type Config struct {
	LogPath     string
	LogLevel    string
	LogPayloads bool

	LLMClient   LLMClientConfig
	Embedding   EmbeddingConfig
	KnowledgeGraph KnowledgeGraphConfig
	ContextWindow  ContextWindowConfig
	WorkingMemory  WorkingMemoryConfig
	Reflection     ReflectionConfig
	EventBus       EventBusConfig
	Relationship   RelationshipConfig
	Archive        ArchiveConfig
}

// LLMClientConfig selects and configures the LLM providers internal/llm can
// construct. Provider picks the default used by Summarizer/Reflection when
// an agent does not override it; the per-provider blocks are all optional
// and only the ones with an APIKey set are usable.
type LLMClientConfig struct {
	Provider string // "openai" | "anthropic" | "google"

	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Google    GoogleConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GoogleConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// EmbeddingConfig configures the embedding HTTP client and its Qdrant index,
// both optional external collaborators per spec §6.
type EmbeddingConfig struct {
	Provider string // "openai" | "http"
	APIKey   string
	BaseURL  string
	Model    string

	Qdrant QdrantConfig
}

type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
	VectorSize int
}

// KnowledgeGraphConfig mirrors knowledgegraph.Config but as config-loadable
// primitives (budget specs are strings like "percentage:0.3" until parsed).
type KnowledgeGraphConfig struct {
	DecayRate       float64
	MaxNodesPerType int
	PruneThreshold  float64
	MaxActive       int
	DedupThreshold  float64
	MaxTokensSpec   string
	TypeQuotas      map[string]float64
}

type ContextWindowConfig struct {
	MultiLayer            bool
	MaxTokensSpec         string
	Model                 string
	RatioFullDetail       float64
	RatioRecentSummary    float64
	RatioDistantSummary   float64
	RatioRetrieved        float64
	SummarizationEnabled  bool
	FactExtractionEnabled bool
	SummaryThreshold      float64
}

type WorkingMemoryConfig struct {
	MaxThoughts   int
	MaxTokensSpec string
}

type ReflectionConfig struct {
	IntervalMS int64
	Threshold  int
}

// EventBusConfig backs internal/eventbus: Kafka for durable signal replay,
// Redis for the interrupt store, both optional (falls back to in-memory).
type EventBusConfig struct {
	Enabled bool
	Brokers string
	Topic   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// RelationshipConfig backs internal/relationship's pgx-based durable store.
type RelationshipConfig struct {
	DSN string
}

// ArchiveConfig backs internal/archive's S3-compatible cold store for
// archived (pruned, opted-in) knowledge nodes.
type ArchiveConfig struct {
	Enabled      bool
	Endpoint     string
	Region       string
	Bucket       string
	Prefix       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}
