package summarizer

// Preference names the caller's preferred provider family.
type Preference string

const (
	PreferOpenAI    Preference = "openai"
	PreferGoogle    Preference = "google"
	PreferAnthropic Preference = "anthropic"
)

// ModelChoiceOptions tunes RecommendModel.
type ModelChoiceOptions struct {
	Preference    Preference
	CostSensitive bool
}

// modelsByPreference maps (preference, tier) to a concrete model id. The
// mapping is implementation-defined; the only contractual guarantee is
// simple -> lightweight, highly_complex -> top-tier.
var modelsByPreference = map[Preference]map[Complexity]string{
	PreferOpenAI: {
		Simple: "gpt-5-nano", Moderate: "gpt-5-mini", Complex: "gpt-5-mini", HighlyComplex: "gpt-5",
	},
	PreferGoogle: {
		Simple: "gemini-2.5-flash", Moderate: "gemini-2.5-flash", Complex: "gemini-2.5-pro", HighlyComplex: "gemini-2.5-pro",
	},
	PreferAnthropic: {
		Simple: "claude-haiku-4-5", Moderate: "claude-haiku-4-5", Complex: "claude-sonnet-4-5", HighlyComplex: "claude-opus-4-5",
	},
}

var costSensitiveOverrides = map[Complexity]string{
	Simple: "gpt-5-nano", Moderate: "gpt-5-nano", Complex: "gpt-5-mini", HighlyComplex: "gpt-5-mini",
}

// RecommendModel picks a model id for complexity given opts.
func RecommendModel(complexity Complexity, opts ModelChoiceOptions) string {
	if opts.CostSensitive {
		if m, ok := costSensitiveOverrides[complexity]; ok {
			return m
		}
	}
	pref := opts.Preference
	if pref == "" {
		pref = PreferOpenAI
	}
	tiers, ok := modelsByPreference[pref]
	if !ok {
		tiers = modelsByPreference[PreferOpenAI]
	}
	if m, ok := tiers[complexity]; ok {
		return m
	}
	return tiers[Moderate]
}
