package report

import (
	"bytes"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/zengent/codelens/internal/findings"
)

const toolInformationURI = "https://github.com/zengent/codelens"

func (g *Generator) renderSARIF(meta Meta, set *findings.CanonicalFindingSet) ([]byte, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("codelens", toolInformationURI)
	for _, finding := range set.Findings {
		rule := run.AddRule(finding.RuleID).
			WithDescription(ruleDescription(finding)).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(finding.Tier),
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(finding.FilePath)).
				WithRegion(sarif.NewRegion().
					WithStartLine(finding.Line).
					WithStartColumn(finding.Column)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(resultMessage(finding))).
			WithLevel(toSarifLevel(finding.Tier)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	reportSarif.AddRun(run)

	var buffer bytes.Buffer
	if err := reportSarif.PrettyWrite(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return buffer.Bytes(), nil
}

func ruleDescription(f findings.Finding) string {
	if f.Description != "" {
		return f.Description
	}
	return fmt.Sprintf("Demographic data reference (%s)", f.Category)
}

func resultMessage(f findings.Finding) string {
	return fmt.Sprintf("%s: %q matched category %s", f.Tier, f.MatchedText, f.Category)
}

func toSarifLevel(tier findings.Tier) string {
	if tier == findings.TierExact {
		return "error"
	}
	return "warning"
}
