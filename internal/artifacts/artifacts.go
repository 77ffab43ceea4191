// Package artifacts persists analysis results and rendered reports under the
// results folder, one directory per project.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/report"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/files"
)

// Store writes per-project artifacts to disk.
type Store struct {
	cfg    *config.Config
	logger hclog.Logger
}

// NewStore creates an artifact store rooted at the configured results folder.
func NewStore(cfg *config.Config, logger hclog.Logger) *Store {
	return &Store{cfg: cfg, logger: logger}
}

// ProjectDir returns the artifact directory for a project.
func (s *Store) ProjectDir(projectID string) string {
	return filepath.Join(config.GetResultsHome(s.cfg), projectID)
}

// analysisDocument is the on-disk shape of a persisted analysis.
type analysisDocument struct {
	Meta     report.Meta                   `json:"meta"`
	Analysis *findings.CanonicalFindingSet `json:"analysis"`
}

// SaveAnalysis writes the canonical finding set to
// <results>/<project>/analysis.json and returns the full path.
func (s *Store) SaveAnalysis(projectID string, meta report.Meta, set *findings.CanonicalFindingSet) (string, error) {
	dir := s.ProjectDir(projectID)
	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return "", fmt.Errorf("error creating artifacts folder: %w", err)
	}
	path := filepath.Join(dir, "analysis.json")

	content, err := json.MarshalIndent(analysisDocument{Meta: meta, Analysis: set}, "", "    ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the analysis data: %w", err)
	}
	if err := files.WriteFileAtomicish(path, content); err != nil {
		return path, fmt.Errorf("error writing analysis to file: %w", err)
	}

	s.logger.Info("analysis saved to file", "path", path)
	return path, nil
}

// LoadAnalysis reads a persisted analysis back from disk.
func (s *Store) LoadAnalysis(path string) (*findings.CanonicalFindingSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading analysis file: %w", err)
	}

	var document analysisDocument
	if err := json.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf("error parsing analysis file: %w", err)
	}
	return document.Analysis, nil
}

// SaveReport writes a rendered report to <results>/<project>/report.<ext>
// and returns the full path.
func (s *Store) SaveReport(projectID string, format report.Format, content []byte) (string, error) {
	dir := s.ProjectDir(projectID)
	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return "", fmt.Errorf("error creating artifacts folder: %w", err)
	}
	path := filepath.Join(dir, "report."+format.Extension())

	if err := files.WriteFileAtomicish(path, content); err != nil {
		return path, fmt.Errorf("error writing report to file: %w", err)
	}

	s.logger.Info("report saved to file", "path", path, "format", string(format))
	return path, nil
}
