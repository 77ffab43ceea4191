package findings

import "sort"

// Tier is the confidence tier of a finding.
type Tier string

const (
	// TierExact marks a match against caller-supplied reference data. It is
	// never escalated to the classifier and always wins a merge group.
	TierExact Tier = "exact"
	// TierHeuristic marks a pattern-based match that may be a false positive.
	TierHeuristic Tier = "heuristic"
)

// Label is the classification verdict attached by the ML fallback.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
)

// Strategy names used in finding provenance.
const (
	StrategyRegex = "regex"
	StrategyExact = "exact-match"
)

// Classification carries the ML label attached to an escalated finding.
type Classification struct {
	Label   Label   `json:"label"`
	Score   float64 `json:"score"`
	Backend string  `json:"backend"`
}

// Finding is a single detected occurrence of a sensitive-data reference at a
// specific source location. Created by one strategy, optionally labeled once
// by the classifier, read-only afterwards.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`

	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`

	MatchedText string `json:"matched_text"`
	Snippet     string `json:"snippet,omitempty"`

	Tier       Tier     `json:"tier"`
	Strategies []string `json:"strategies"`

	ML *Classification `json:"ml,omitempty"`
}

// Key identifies the merge group of a finding.
type Key struct {
	FilePath string
	Line     int
	Category string
}

// GroupKey returns the (file, location, category) identity used for dedup.
func (f Finding) GroupKey() Key {
	return Key{FilePath: f.FilePath, Line: f.Line, Category: f.Category}
}

// HasStrategy reports whether the named strategy contributed to this finding.
func (f Finding) HasStrategy(name string) bool {
	for _, s := range f.Strategies {
		if s == name {
			return true
		}
	}
	return false
}

// Summary aggregates counts over a canonical finding set.
type Summary struct {
	Total       int            `json:"total"`
	ByCategory  map[string]int `json:"by_category"`
	ByTier      map[string]int `json:"by_tier"`
	FilesScanned int           `json:"files_scanned"`
	FilesSkipped int           `json:"files_skipped"`
}

// CanonicalFindingSet is the deduplicated, precedence-resolved result of
// merging all strategies for one job. Immutable after creation; no two
// entries share the same (file, line, category) triple.
type CanonicalFindingSet struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// NewCanonicalFindingSet builds a set from already-deduplicated findings,
// sorting them into the canonical (file, line, category) order and computing
// the summary.
func NewCanonicalFindingSet(items []Finding) *CanonicalFindingSet {
	SortCanonical(items)

	summary := Summary{
		Total:      len(items),
		ByCategory: make(map[string]int),
		ByTier:     make(map[string]int),
	}
	for _, f := range items {
		summary.ByCategory[f.Category]++
		summary.ByTier[string(f.Tier)]++
	}

	return &CanonicalFindingSet{Findings: items, Summary: summary}
}

// SortCanonical orders findings by (file path, line, column, category, rule).
func SortCanonical(items []Finding) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.RuleID < b.RuleID
	})
}
