package config

import (
	"strconv"
	"strings"

	"cogmem/internal/tokenbudget"
)

// ParseBudgetSpec parses the compact string form configs and env vars use
// for a token budget spec into a tokenbudget.Spec:
//
//	"fixed:4000"
//	"percentage:0.3"
//	"min_max:500,4000,0.1"
//
// An empty or malformed spec resolves to the zero Spec, which
// tokenbudget.Resolve treats as 0 tokens — callers should fall back to a
// component default in that case.
func ParseBudgetSpec(s string) tokenbudget.Spec {
	s = strings.TrimSpace(s)
	if s == "" {
		return tokenbudget.Spec{}
	}
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return tokenbudget.Spec{}
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "fixed":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return tokenbudget.Spec{}
		}
		return tokenbudget.FixedSpec(n)
	case "percentage", "pct":
		p, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return tokenbudget.Spec{}
		}
		return tokenbudget.PercentageSpec(p)
	case "min_max", "minmax":
		parts := strings.Split(rest, ",")
		if len(parts) != 3 {
			return tokenbudget.Spec{}
		}
		lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		p, err3 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return tokenbudget.Spec{}
		}
		return tokenbudget.MinMaxSpec(lo, hi, p)
	default:
		return tokenbudget.Spec{}
	}
}
