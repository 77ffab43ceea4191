// Package merge combines the raw findings emitted by all scan strategies into
// a single canonical set. Findings that refer to the same sensitive-data
// occurrence are collapsed into one entry, keeping the highest-confidence
// representative and the union of the strategies that reported it.
package merge

import (
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/internal/findings"
)

// Precedence ranks within a merge group, lower wins.
const (
	rankExact = iota
	rankMLPositive
	rankHeuristic
	rankMLNegative
)

// Merger resolves duplicate findings after every strategy branch has
// terminated. It carries the catalog so ties inside a group can be broken by
// rule declaration order.
type Merger struct {
	catalog *catalog.Catalog
	logger  hclog.Logger
}

// NewMerger creates a Merger over the given catalog.
func NewMerger(cat *catalog.Catalog, logger hclog.Logger) *Merger {
	return &Merger{catalog: cat, logger: logger}
}

// Merge deduplicates the combined strategy output into a canonical set.
// Findings are grouped by (file, line, category); within a group the winner
// is chosen by tier and classification label:
//
//  1. exact-tier findings
//  2. heuristic findings the classifier labeled positive
//  3. unlabeled heuristic findings
//
// Heuristic findings labeled negative never win; a group containing only
// negative findings is dropped entirely. The winner carries the union of the
// strategies of every finding in its group. Merge is pure and idempotent:
// merging its own output changes nothing.
func (m *Merger) Merge(items []findings.Finding) *findings.CanonicalFindingSet {
	groups := make(map[findings.Key][]findings.Finding)
	order := make([]findings.Key, 0)
	for _, f := range items {
		key := f.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	merged := make([]findings.Finding, 0, len(order))
	dropped := 0
	for _, key := range order {
		winner, ok := m.resolve(groups[key])
		if !ok {
			dropped++
			continue
		}
		merged = append(merged, winner)
	}

	m.logger.Debug("merge finished", "raw", len(items), "groups", len(order), "merged", len(merged), "discarded", dropped)
	return findings.NewCanonicalFindingSet(merged)
}

// resolve picks the representative of one merge group. The second return is
// false when every member was classified negative.
func (m *Merger) resolve(group []findings.Finding) (findings.Finding, bool) {
	best := -1
	for i, f := range group {
		if rank(f) == rankMLNegative {
			continue
		}
		if best == -1 || m.beats(f, group[best]) {
			best = i
		}
	}
	if best == -1 {
		return findings.Finding{}, false
	}

	winner := group[best]
	winner.Strategies = unionStrategies(group)
	return winner, true
}

// beats reports whether a should replace the current winner b. Equal ranks
// fall back to catalog declaration order; reference-data rules carry no
// catalog order and outrank every catalog rule.
func (m *Merger) beats(a, b findings.Finding) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	return m.catalog.Order(a.RuleID) < m.catalog.Order(b.RuleID)
}

func rank(f findings.Finding) int {
	if f.Tier == findings.TierExact {
		return rankExact
	}
	if f.ML != nil {
		if f.ML.Label == findings.LabelPositive {
			return rankMLPositive
		}
		return rankMLNegative
	}
	return rankHeuristic
}

// unionStrategies collects the distinct strategy names across a group,
// sorted for stable output.
func unionStrategies(group []findings.Finding) []string {
	seen := make(map[string]bool)
	union := make([]string, 0, 2)
	for _, f := range group {
		for _, s := range f.Strategies {
			if !seen[s] {
				seen[s] = true
				union = append(union, s)
			}
		}
	}
	sort.Strings(union)
	return union
}
