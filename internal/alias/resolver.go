package alias

import (
	"context"
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultFuzzyThreshold is the minimum 0-100 similarity score an
// approximate alias match must reach. The boundary is inclusive.
const DefaultFuzzyThreshold = 80

var (
	nonAlnumPattern      = regexp.MustCompile(`[^a-z0-9]`)
	genericSuffixPattern = regexp.MustCompile(`(rat|trojan|malware|tool|group|apt)$`)
)

// Normalize reduces a surface form for exact alias comparison:
// lowercase, strip non-alphanumerics, then strip one trailing generic
// suffix ("EmotetTrojan" and "emotet" normalize identically).
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonAlnumPattern.ReplaceAllString(text, "")
	return genericSuffixPattern.ReplaceAllString(text, "")
}

// Resolution is a successful alias lookup.
type Resolution struct {
	Canonical    string   `json:"canonical"`
	Category     Category `json:"category"`
	MatchedAlias string   `json:"matched_alias"`
	Score        int      `json:"score,omitempty"` // fuzzy stage only
	Fuzzy        bool     `json:"fuzzy,omitempty"`
}

// EntityResolver resolves a span's surface text to a canonical entity.
// Implementations must be safe for repeated calls over one document.
type EntityResolver interface {
	Resolve(ctx context.Context, query string) (*Resolution, bool)
}

// Resolver resolves surface forms against an alias table: exact
// normalized matching first, token-order-insensitive fuzzy matching
// second. It holds no mutable state and never touches the table.
type Resolver struct {
	table     *Table
	threshold int
}

// NewResolver builds a resolver over table. A threshold outside 1-100
// falls back to DefaultFuzzyThreshold.
func NewResolver(table *Table, threshold int) *Resolver {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultFuzzyThreshold
	}
	return &Resolver{table: table, threshold: threshold}
}

// Resolve looks the query up. The exact stage walks entries in table
// order and returns on the first normalized alias equality, so results
// are deterministic and independent of prior calls. The fuzzy stage
// scores the lowercased query against every alias with a token-sort
// ratio and accepts the single best alias at or above the threshold.
func (r *Resolver) Resolve(_ context.Context, query string) (*Resolution, bool) {
	normQuery := Normalize(query)
	for _, canonical := range r.table.Names() {
		entry, _ := r.table.Get(canonical)
		for _, a := range entry.Aliases {
			if Normalize(a) == normQuery {
				return &Resolution{
					Canonical:    canonical,
					Category:     entry.Category,
					MatchedAlias: a,
				}, true
			}
		}
	}

	lowered := strings.ToLower(query)
	bestScore := -1
	var best *Resolution
	for _, canonical := range r.table.Names() {
		entry, _ := r.table.Get(canonical)
		for _, a := range entry.Aliases {
			score := fuzzy.TokenSortRatio(lowered, a)
			if score > bestScore {
				bestScore = score
				best = &Resolution{
					Canonical:    canonical,
					Category:     entry.Category,
					MatchedAlias: a,
					Score:        score,
					Fuzzy:        true,
				}
			}
		}
	}
	if best != nil && bestScore >= r.threshold {
		return best, true
	}
	return nil, false
}

// TargetLabels carries the configured entity types a resolved category
// maps to: tool to the first, malware to the second, and any other
// category (notably intrusion-set) to the third.
type TargetLabels struct {
	Tool         string `yaml:"tool"`
	Malware      string `yaml:"malware"`
	IntrusionSet string `yaml:"intrusion_set"`
}

// LabelFor resolves query and maps its category onto a target label,
// falling back to defaultLabel when nothing matches.
func LabelFor(ctx context.Context, r EntityResolver, query, defaultLabel string, targets TargetLabels) string {
	res, ok := r.Resolve(ctx, query)
	if !ok {
		return defaultLabel
	}
	switch res.Category {
	case CategoryTool:
		return targets.Tool
	case CategoryMalware:
		return targets.Malware
	default:
		return targets.IntrusionSet
	}
}
