// Package report renders a canonical finding set into one of the supported
// output formats. Rendering is pure: the same finding set and metadata always
// produce byte-identical output, whatever order the findings were discovered
// in.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/errors"
)

// Format identifies a report output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatSARIF    Format = "sarif"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format in presentation order.
func Formats() []Format {
	return []Format{FormatHTML, FormatSARIF, FormatJSON, FormatMarkdown}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.NewUnsupportedFormatError(name)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Meta carries job-level context included in every report.
type Meta struct {
	ProjectID   string    `json:"project_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// jsonDocument is the envelope of the machine-readable JSON format.
type jsonDocument struct {
	Meta     Meta               `json:"meta"`
	Summary  findings.Summary   `json:"summary"`
	Findings []findings.Finding `json:"findings"`
}

// Generator renders finding sets. Safe for concurrent use.
type Generator struct {
	logger hclog.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(logger hclog.Logger) *Generator {
	return &Generator{logger: logger}
}

// Render produces the report in the requested format. An unrecognized format
// is rejected with an UnsupportedFormatError before any rendering happens.
// An empty finding set renders a valid empty report.
func (g *Generator) Render(format Format, meta Meta, set *findings.CanonicalFindingSet) ([]byte, error) {
	switch format {
	case FormatJSON:
		return g.renderJSON(meta, set)
	case FormatSARIF:
		return g.renderSARIF(meta, set)
	case FormatMarkdown:
		return g.renderMarkdown(meta, set)
	case FormatHTML:
		return g.renderHTML(meta, set)
	default:
		return nil, errors.NewUnsupportedFormatError(string(format))
	}
}

func (g *Generator) renderJSON(meta Meta, set *findings.CanonicalFindingSet) ([]byte, error) {
	document := jsonDocument{Meta: meta, Summary: set.Summary, Findings: set.Findings}
	if document.Findings == nil {
		document.Findings = []findings.Finding{}
	}

	content, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(content, '\n'), nil
}
