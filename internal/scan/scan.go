// Package scan holds the detection strategies that run over a resolved
// source file set. Strategies are independent: each returns its own findings
// and warnings, and the orchestrator joins and merges their output.
package scan

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
)

// Strategy is a single detection pass over the project's source files.
// Implementations must be total: per-file problems become warnings, not
// errors. The only error a strategy returns is a cancelled context.
type Strategy interface {
	Name() string
	Scan(ctx context.Context, sourceFiles []inputs.SourceFile) ([]findings.Finding, []string, error)
}

const maxSnippetLen = 160

// snippet trims and truncates a matched source line for inclusion in reports.
// Truncation never splits a multi-byte rune.
func snippet(line string) string {
	s := strings.TrimSpace(line)
	if len(s) > maxSnippetLen {
		cut := maxSnippetLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
