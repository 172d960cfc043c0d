package contextwindow

import "cogmem/internal/tokenbudget"

// Preset names a packaged multi-layer configuration: a max_tokens budget
// spec, section ratios, and whether LLM summarization drives compression.
// Unknown names fall back to "balanced".
func Preset(name string) Config {
	switch name {
	case "compact":
		// Small fixed window for cost-sensitive agents; summarization is
		// off, so CompressIfNeeded never compresses this window.
		return Config{
			MultiLayer: true,
			MaxTokens:  tokenbudget.FixedSpec(8_000),
			Ratios:     Ratios{DistantSummary: 0.1, RecentSummary: 0.2, FullDetail: 0.6, Retrieved: 0.1},
		}
	case "deep":
		// Generous share of the model context with summarization on, for
		// agents whose conversations run long.
		return Config{
			MultiLayer:           true,
			MaxTokens:            tokenbudget.PercentageSpec(0.6),
			Ratios:               Ratios{DistantSummary: 0.2, RecentSummary: 0.3, FullDetail: 0.4, Retrieved: 0.1},
			SummarizationEnabled: true,
		}
	default: // "balanced"
		return Config{
			MultiLayer:           true,
			MaxTokens:            tokenbudget.MinMaxSpec(8_000, 64_000, 0.3),
			Ratios:               Ratios{DistantSummary: 0.15, RecentSummary: 0.25, FullDetail: 0.5, Retrieved: 0.1},
			SummarizationEnabled: true,
		}
	}
}
