package plans

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Plan is a canonical plan code. Raw plan identifiers arrive under many
// historical spellings; Canonicalize collapses them into this closed set.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

// aliasTable maps folded historical spellings to canonical codes. This is
// the single source of truth for plan name resolution; call sites must not
// pattern-match raw values themselves. Keys are stored pre-folded (lowercase,
// no diacritics, separators collapsed to single spaces).
var aliasTable = map[string]Plan{
	// lowest tier
	"free":           PlanFree,
	"gratis":         PlanFree,
	"gratuita":       PlanFree,
	"gratuito":       PlanFree,
	"anuncio gratis": PlanFree,
	"standard":       PlanFree,

	// mid tier
	"basic":       PlanBasic,
	"basica":      PlanBasic,
	"basico":      PlanBasic,
	"plan basica": PlanBasic,
	"plan basico": PlanBasic,
	"destacado":   PlanBasic,
	"destacada":   PlanBasic,

	// top tier
	"premium":      PlanPremium,
	"premium plus": PlanPremium,
	"plan premium": PlanPremium,
	"verificado":   PlanPremium,
	"verificada":   PlanPremium,
	"tienda":       PlanPremium,
	"top":          PlanPremium,
	"vip":          PlanPremium,
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases the input, strips diacritics and collapses separator
// characters, producing the lookup form used by the alias table.
func Fold(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Canonicalize resolves a raw plan identifier to its canonical code. The
// second return is false when no alias matches; consumers must then apply
// lowest-tier entitlements, never treat the miss as an error.
func Canonicalize(raw string) (Plan, bool) {
	p, ok := aliasTable[Fold(raw)]
	return p, ok
}

// CanonicalOrFree resolves a raw plan identifier, defaulting to the lowest
// tier on a miss.
func CanonicalOrFree(raw string) Plan {
	if p, ok := Canonicalize(raw); ok {
		return p
	}
	return PlanFree
}

// Aliases returns every known spelling for a canonical code, the canonical
// code itself included. Order is unspecified.
func Aliases(p Plan) []string {
	var out []string
	for alias, code := range aliasTable {
		if code == p {
			out = append(out, alias)
		}
	}
	return out
}

// IsCanonical reports whether code is already one of the canonical values.
func IsCanonical(code string) bool {
	switch Plan(code) {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	default:
		return false
	}
}

// Rank orders tiers for comparison; higher outranks lower.
func Rank(p Plan) int {
	switch p {
	case PlanPremium:
		return 2
	case PlanBasic:
		return 1
	default:
		return 0
	}
}
