package scan

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
	"github.com/zengent/codelens/internal/reference"
)

// ExactStrategy performs case-normalized lookup of caller-supplied
// "table.field" reference keys against source identifiers. Every hit has the
// exact confidence tier. An empty reference set makes the strategy a no-op;
// absence of reference data is a valid configuration, not a failure.
type ExactStrategy struct {
	entries []compiledEntry
	logger  hclog.Logger
}

type compiledEntry struct {
	entry    reference.Entry
	category string
	patterns []*regexp.Regexp
}

// NewExactStrategy compiles the matching patterns for each reference entry.
// The catalog is consulted only to assign a category to each entry, so that
// exact and heuristic findings of the same field land in the same merge
// group.
func NewExactStrategy(entries []reference.Entry, cat *catalog.Catalog, logger hclog.Logger) (*ExactStrategy, error) {
	compiled := make([]compiledEntry, 0, len(entries))
	for _, entry := range entries {
		patterns, err := buildEntryPatterns(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to compile patterns for reference entry %q: %w", entry.Key(), err)
		}
		compiled = append(compiled, compiledEntry{
			entry:    entry,
			category: categorize(entry, cat),
			patterns: patterns,
		})
	}
	return &ExactStrategy{entries: compiled, logger: logger}, nil
}

// Name implements Strategy.
func (s *ExactStrategy) Name() string { return findings.StrategyExact }

// Scan implements Strategy. At most one finding is recorded per
// (file, line, entry); the first matching pattern wins for a line.
func (s *ExactStrategy) Scan(ctx context.Context, sourceFiles []inputs.SourceFile) ([]findings.Finding, []string, error) {
	if len(s.entries) == 0 {
		return nil, nil, nil
	}

	var results []findings.Finding

	for _, sourceFile := range sourceFiles {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		lines := strings.Split(sourceFile.Content, "\n")
		for lineIdx, line := range lines {
			for _, ce := range s.entries {
				for _, pattern := range ce.patterns {
					loc := pattern.FindStringIndex(line)
					if loc == nil {
						continue
					}
					results = append(results, findings.Finding{
						RuleID:      "REF:" + ce.entry.Key(),
						Category:    ce.category,
						Description: fmt.Sprintf("Reference field %s", ce.entry.Key()),
						FilePath:    sourceFile.RelPath,
						Line:        lineIdx + 1,
						Column:      loc[0] + 1,
						MatchedText: line[loc[0]:loc[1]],
						Snippet:     snippet(line),
						Tier:        findings.TierExact,
						Strategies:  []string{findings.StrategyExact},
					})
					break // one hit per line per entry
				}
			}
		}
	}

	findings.SortCanonical(results)
	s.logger.Debug("exact-match scan finished", "files", len(sourceFiles), "entries", len(s.entries), "findings", len(results))
	return results, nil, nil
}

// buildEntryPatterns produces the identifier shapes a table.field pair takes
// in source code: qualified references, SQL statements, column annotations,
// declarations, assignments, property access, and accessors.
func buildEntryPatterns(entry reference.Entry) ([]*regexp.Regexp, error) {
	table := regexp.QuoteMeta(entry.Table)
	field := regexp.QuoteMeta(entry.Field)
	accessor := regexp.QuoteMeta(exportedName(entry.Field))

	raw := []string{
		// qualified table.field, optionally quoted (SQL)
		fmt.Sprintf(`(?i)["']?\b%s["']?\.["']?%s\b["']?`, table, field),
		// SELECT field ... FROM table
		fmt.Sprintf(`(?i)SELECT\s+.*?\b%s\b.*?FROM\s+.*?\b%s\b`, field, table),
		// JPA column annotation
		fmt.Sprintf(`(?i)@Column\s*\(\s*name\s*=\s*["']%s["']`, field),
		// typed declaration: private String email;
		fmt.Sprintf(`(?i)\b(private|public|protected|var|let|const)\s+\w+\s+%s\b`, field),
		// assignment or mapping key
		fmt.Sprintf(`(?i)\b%s\s*[:=]`, field),
		// property access
		fmt.Sprintf(`(?i)\b(this|self)\.%s\b`, field),
		// accessors: getEmail / setEmail
		fmt.Sprintf(`\b(get|set)%s\b`, accessor),
	}

	patterns := make([]*regexp.Regexp, 0, len(raw))
	for _, expr := range raw {
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// categorize maps a reference entry onto a catalog category by probing the
// field name against the catalog matchers. Entries outside the catalog's
// vocabulary fall into the generic "reference" category.
func categorize(entry reference.Entry, cat *catalog.Catalog) string {
	if cat != nil {
		for _, rule := range cat.Rules() {
			if len(rule.Variants) == 0 {
				continue
			}
			if rule.Matcher.MatchString(entry.Field) {
				return rule.Category
			}
		}
	}
	return "reference"
}

// exportedName upper-cases the first letter for accessor matching.
func exportedName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
