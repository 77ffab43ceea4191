package orchestrator

import (
	"time"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
)

// Status is the lifecycle state of a scan project.
type Status string

const (
	// StatusProcessing covers everything between submission and a terminal
	// state: input resolution, scanning, classification, merge, rendering.
	StatusProcessing Status = "processing"
	// StatusCompleted means the analysis is persisted and reports can be
	// fetched. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed means the job gave up; FailureReason says why. Terminal.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Counts aggregates per-project scan statistics.
type Counts struct {
	FilesScanned int            `json:"files_scanned"`
	FilesSkipped int            `json:"files_skipped"`
	Findings     int            `json:"findings"`
	ByTier       map[string]int `json:"by_tier,omitempty"`
}

// Project is one submitted scan job. Mutated only through orchestrator
// transitions; readers get snapshots from the store.
type Project struct {
	ID     string        `json:"id"`
	Source inputs.Source `json:"source"`

	Status        Status   `json:"status"`
	FailureReason string   `json:"failure_reason,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`

	Counts       Counts                        `json:"counts"`
	Analysis     *findings.CanonicalFindingSet `json:"analysis,omitempty"`
	AnalysisPath string                        `json:"analysis_path,omitempty"`
	ReportPath   string                        `json:"report_path,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Clone returns a snapshot safe to hand to callers while the pipeline keeps
// mutating the original.
func (p *Project) Clone() *Project {
	clone := *p
	clone.Warnings = append([]string(nil), p.Warnings...)
	if p.Counts.ByTier != nil {
		clone.Counts.ByTier = make(map[string]int, len(p.Counts.ByTier))
		for k, v := range p.Counts.ByTier {
			clone.Counts.ByTier[k] = v
		}
	}
	return &clone
}
