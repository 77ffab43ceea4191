package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/zengent/codelens/internal/findings"
)

//go:embed templates/report.html
var htmlTemplate string

// add adds two integers and returns the result.
// helper function for html template
func add(a, b int) int {
	return a + b
}

// formatDateTime formats a timestamp for the report header.
// helper function for html template
func formatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// tierBadge maps a tier to the css class of its badge.
// helper function for html template
func tierBadge(tier findings.Tier) string {
	if tier == findings.TierExact {
		return "badge-exact"
	}
	return "badge-heuristic"
}

type htmlData struct {
	Meta       Meta
	Summary    findings.Summary
	Findings   []findings.Finding
	Categories []string
}

func (g *Generator) renderHTML(meta Meta, set *findings.CanonicalFindingSet) ([]byte, error) {
	tmpl, err := template.New("report.html").
		Funcs(template.FuncMap{
			"add":            add,
			"formatDateTime": formatDateTime,
			"tierBadge":      tierBadge,
		}).
		Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template: %w", err)
	}

	data := htmlData{
		Meta:       meta,
		Summary:    set.Summary,
		Findings:   set.Findings,
		Categories: sortedKeys(set.Summary.ByCategory),
	}

	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buffer.Bytes(), nil
}
