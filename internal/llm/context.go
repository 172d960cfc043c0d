package llm

import (
	"os"
	"strconv"
	"strings"

	"cogmem/internal/tokenbudget"
)

// ContextSize returns an approximate context window (in tokens) for model,
// consulting env overrides first, then the known-model table (exact match,
// then prefix match so dated snapshot ids like "claude-opus-4-5-20251101"
// resolve to their family). The bool reports whether the value came from an
// override or a known mapping rather than being unknown.
//
// The values feed token budgeting only (internal/tokenbudget resolves
// percentage and min_max budget specs against them); they gate nothing on
// the provider side.
func ContextSize(model string) (int, bool) {
	if model == "" {
		return 0, false
	}
	if v, ok := contextOverride(model); ok {
		return v, true
	}
	if size, ok := providerContextWindows[model]; ok {
		return size, true
	}
	best, bestSize := "", 0
	for prefix, size := range providerContextWindows {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, bestSize = prefix, size
		}
	}
	if best != "" {
		return bestSize, true
	}
	if v, ok := contextOverride("*"); ok {
		return v, true
	}
	return 0, false
}

// providerContextWindows covers the model families the providers in this
// package can be constructed with. It seeds internal/tokenbudget's lookup
// table at init so budget resolution and provider selection never disagree
// about a model's window.
var providerContextWindows = map[string]int{
	"gpt-5":         400_000,
	"gpt-5-mini":    400_000,
	"gpt-5-nano":    400_000,
	"gpt-4.1":       1_047_576,
	"gpt-4o":        128_000,
	"gpt-4o-mini":   128_000,
	"gpt-4-turbo":   128_000,
	"gpt-4":         8_192,
	"gpt-3.5-turbo": 16_385,

	"claude-opus-4-5":   200_000,
	"claude-sonnet-4-5": 200_000,
	"claude-haiku-4-5":  200_000,
	"claude-3.5-sonnet": 200_000,

	"gemini-2.5-pro":   1_048_576,
	"gemini-2.5-flash": 1_048_576,
	"gemini-1.5-pro":   1_000_000,
	"gemini-1.5-flash": 1_000_000,
}

func init() {
	for model, size := range providerContextWindows {
		tokenbudget.RegisterModelContext(model, size)
	}
}

// contextOverride checks COGMEM_MODEL_<SANITIZED_NAME>_CONTEXT_TOKENS for a
// per-model override, then COGMEM_CONTEXT_WINDOW_TOKENS as a global
// catch-all for custom/self-hosted models. model "*" consults only the
// global override.
func contextOverride(model string) (int, bool) {
	if model != "*" {
		if n, ok := intFromEnv("COGMEM_MODEL_" + sanitizeModelForEnv(model) + "_CONTEXT_TOKENS"); ok {
			return n, true
		}
	}
	return intFromEnv("COGMEM_CONTEXT_WINDOW_TOKENS")
}

func sanitizeModelForEnv(model string) string {
	out := make([]rune, 0, len(model))
	for _, r := range strings.ToUpper(model) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

func intFromEnv(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
