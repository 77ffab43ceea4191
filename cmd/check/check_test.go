package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zengent/codelens/internal/findings"
)

func gateFixture() *findings.CanonicalFindingSet {
	return findings.NewCanonicalFindingSet([]findings.Finding{
		{
			RuleID: "DEMO-002", Category: "ssn", FilePath: "schema.sql", Line: 2,
			MatchedText: "ssn_number", Tier: findings.TierHeuristic,
			Strategies: []string{findings.StrategyRegex},
		},
		{
			RuleID: "REF:customers.email", Category: "email", FilePath: "Customer.java", Line: 4,
			MatchedText: "email", Tier: findings.TierExact,
			Strategies: []string{findings.StrategyExact},
		},
	})
}

func TestGateAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		options RunOptionsCheck
		wantErr string
	}{
		{
			name:    "Budget exceeded",
			options: RunOptionsCheck{MaxFindings: 1},
			wantErr: "findings budget exceeded: 2 findings, 1 allowed",
		},
		{
			name:    "Budget holds",
			options: RunOptionsCheck{MaxFindings: 2},
			wantErr: "",
		},
		{
			name:    "Tier budget holds",
			options: RunOptionsCheck{MaxFindings: 1, Tier: "exact"},
			wantErr: "",
		},
		{
			name:    "Tier budget exceeded",
			options: RunOptionsCheck{MaxFindings: 0, Tier: "exact"},
			wantErr: "findings budget exceeded: 1 findings, 0 allowed",
		},
		{
			name:    "Forbidden category present",
			options: RunOptionsCheck{MaxFindings: 10, FailOnCategory: "ssn"},
			wantErr: `forbidden category "ssn" present: 1 findings`,
		},
		{
			name:    "Forbidden category absent",
			options: RunOptionsCheck{MaxFindings: 10, FailOnCategory: "passport"},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gateAnalysis(gateFixture(), &tt.options)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCheckArgs(t *testing.T) {
	analysisPath := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, os.WriteFile(analysisPath, []byte("{}"), 0o644))

	tests := []struct {
		name    string
		options RunOptionsCheck
		args    []string
		wantErr string
	}{
		{
			name:    "Valid",
			options: RunOptionsCheck{MaxFindings: 5, Tier: "exact", FailOnCategory: "ssn"},
			args:    []string{analysisPath},
			wantErr: "",
		},
		{
			name:    "No analysis file",
			options: RunOptionsCheck{},
			args:    []string{},
			wantErr: "exactly one analysis file must be specified",
		},
		{
			name:    "Missing analysis file",
			options: RunOptionsCheck{},
			args:    []string{"/no/such/analysis.json"},
			wantErr: "the analysis file is not readable: /no/such/analysis.json",
		},
		{
			name:    "Negative budget",
			options: RunOptionsCheck{MaxFindings: -1},
			args:    []string{analysisPath},
			wantErr: "the 'max-findings' flag must not be negative",
		},
		{
			name:    "Unknown tier",
			options: RunOptionsCheck{Tier: "fuzzy"},
			args:    []string{analysisPath},
			wantErr: "the 'tier' flag must be 'exact' or 'heuristic'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCheckArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
