package scan

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
)

// RegexStrategy scans raw source text against the textual rules of the
// pattern catalog. All rules are evaluated at every location, so one line can
// carry findings of several categories.
type RegexStrategy struct {
	catalog *catalog.Catalog
	logger  hclog.Logger
}

// NewRegexStrategy creates a regex strategy over the given catalog.
func NewRegexStrategy(cat *catalog.Catalog, logger hclog.Logger) *RegexStrategy {
	return &RegexStrategy{catalog: cat, logger: logger}
}

// Name implements Strategy.
func (s *RegexStrategy) Name() string { return findings.StrategyRegex }

// Scan implements Strategy. Output ordering is deterministic: findings sorted
// by (file, line, column, category, rule).
func (s *RegexStrategy) Scan(ctx context.Context, sourceFiles []inputs.SourceFile) ([]findings.Finding, []string, error) {
	var (
		results  []findings.Finding
		warnings []string
	)

	for _, sourceFile := range sourceFiles {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		lines := strings.Split(sourceFile.Content, "\n")
		for lineIdx, line := range lines {
			for _, rule := range s.catalog.Rules() {
				matches := rule.Matcher.FindAllStringIndex(line, -1)
				for _, match := range matches {
					results = append(results, findings.Finding{
						RuleID:      rule.ID,
						Category:    rule.Category,
						Description: rule.Description,
						FilePath:    sourceFile.RelPath,
						Line:        lineIdx + 1,
						Column:      match[0] + 1,
						MatchedText: line[match[0]:match[1]],
						Snippet:     snippet(line),
						Tier:        rule.Tier,
						Strategies:  []string{findings.StrategyRegex},
					})
				}
			}
		}
	}

	findings.SortCanonical(results)
	s.logger.Debug("regex scan finished", "files", len(sourceFiles), "findings", len(results))
	return results, warnings, nil
}
