package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zengent/codelens/internal/findings"
)

func (g *Generator) renderMarkdown(meta Meta, set *findings.CanonicalFindingSet) ([]byte, error) {
	byFile := make(map[string][]findings.Finding)
	var files []string
	for _, finding := range set.Findings {
		if _, seen := byFile[finding.FilePath]; !seen {
			files = append(files, finding.FilePath)
		}
		byFile[finding.FilePath] = append(byFile[finding.FilePath], finding)
	}
	sort.Strings(files)

	var output strings.Builder
	output.WriteString("# Demographic data scan report\n\n")
	output.WriteString(fmt.Sprintf("- Project: `%s`\n", meta.ProjectID))
	output.WriteString(fmt.Sprintf("- Source: `%s`\n", meta.Source))
	output.WriteString(fmt.Sprintf("- Generated: %s\n", meta.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	output.WriteString(fmt.Sprintf("- Findings: %d across %d files\n\n", set.Summary.Total, len(files)))

	if len(meta.Warnings) > 0 {
		output.WriteString("## Warnings\n\n")
		for _, warning := range meta.Warnings {
			output.WriteString(fmt.Sprintf("- %s\n", warning))
		}
		output.WriteString("\n")
	}

	if set.Summary.Total > 0 {
		output.WriteString("## Findings by category\n\n")
		for _, category := range sortedKeys(set.Summary.ByCategory) {
			output.WriteString(fmt.Sprintf("- %s: %d\n", category, set.Summary.ByCategory[category]))
		}
		output.WriteString("\n")
	}

	for _, filePath := range files {
		output.WriteString(fmt.Sprintf("#### Path: %v\n```\n", filePath))
		for _, finding := range byFile[filePath] {
			output.WriteString(fmt.Sprintf("    %s (%s tier) line %d: %s [%s]\n\n",
				finding.RuleID, finding.Tier, finding.Line, finding.MatchedText, finding.Category))
		}
		output.WriteString("```\n")
	}

	return []byte(output.String()), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
