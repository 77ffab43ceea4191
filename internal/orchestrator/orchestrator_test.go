package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
	"github.com/zengent/codelens/internal/report"
	"github.com/zengent/codelens/internal/scan"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/errors"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Codelens.ResultsFolder = t.TempDir()
	cfg.Codelens.ProjectsFolder = t.TempDir()
	cfg.Scan.AmbiguousCategories = config.DefaultAmbiguousCategories()
	disabled := false
	cfg.ML.Enabled = &disabled
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config) *Orchestrator {
	t.Helper()
	orch, err := New(cfg, NewMemoryStore(), hclog.NewNullLogger())
	require.NoError(t, err)
	return orch
}

func writeSourceTree(t *testing.T, fileContents map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range fileContents {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func submitAndWait(t *testing.T, orch *Orchestrator, request SubmitRequest) (string, *StatusResponse) {
	t.Helper()
	projectID, err := orch.Submit(context.Background(), request)
	require.NoError(t, err)
	require.NoError(t, orch.Wait(projectID))

	status, err := orch.Status(projectID)
	require.NoError(t, err)
	return projectID, status
}

func TestSubmitReturnsImmediately(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"schema.sql": "CREATE TABLE t (ssn_number VARCHAR(11));\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	projectID, err := orch.Submit(context.Background(), SubmitRequest{Source: inputs.DetectSource(dir, "")})
	require.NoError(t, err)
	require.NotEmpty(t, projectID)

	// status is queryable right away, whatever state the pipeline is in
	status, err := orch.Status(projectID)
	require.NoError(t, err)
	assert.Contains(t, []Status{StatusProcessing, StatusCompleted}, status.Status)

	require.NoError(t, orch.Wait(projectID))
}

func TestPipelineFindsHeuristicMatch(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"schema.sql": "CREATE TABLE employees (\n  ssn_number VARCHAR(11),\n  office VARCHAR(40)\n);\n",
	})
	orch := newTestOrchestrator(t, newTestConfig(t))

	_, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})

	require.Equal(t, StatusCompleted, status.Status)
	require.NotNil(t, status.Analysis)
	require.Len(t, status.Analysis.Findings, 1)

	got := status.Analysis.Findings[0]
	assert.Equal(t, "DEMO-002", got.RuleID)
	assert.Equal(t, "ssn", got.Category)
	assert.Equal(t, findings.TierHeuristic, got.Tier)
	assert.Equal(t, 2, got.Line)
	assert.Equal(t, 1, status.Counts.Findings)
}

func TestPipelineExactMatchWinsMerge(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		"Customer.java": "public class Customer {\n  private String email;\n}\n",
	})
	referencePath := filepath.Join(t.TempDir(), "fields.csv")
	require.NoError(t, os.WriteFile(referencePath, []byte("table_name,field_name\ncustomers,email\n"), 0o644))

	orch := newTestOrchestrator(t, newTestConfig(t))
	_, status := submitAndWait(t, orch, SubmitRequest{
		Source:        inputs.DetectSource(dir, ""),
		ReferencePath: referencePath,
	})

	require.Equal(t, StatusCompleted, status.Status)
	require.NotNil(t, status.Analysis)

	var exact *findings.Finding
	for i := range status.Analysis.Findings {
		if status.Analysis.Findings[i].RuleID == "REF:customers.email" {
			exact = &status.Analysis.Findings[i]
		}
	}
	require.NotNil(t, exact, "reference entry should survive the merge")
	assert.Equal(t, findings.TierExact, exact.Tier)
	assert.True(t, exact.HasStrategy(findings.StrategyExact))
	assert.True(t, exact.HasStrategy(findings.StrategyRegex), "regex hit on the same line should be folded in")
}

func TestPipelinePersistsArtifacts(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"model.py": "first_name = row[0]\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	projectID, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})
	require.Equal(t, StatusCompleted, status.Status)

	project, err := orch.store.Get(projectID)
	require.NoError(t, err)
	assert.FileExists(t, project.AnalysisPath)
	assert.FileExists(t, project.ReportPath)
}

func TestTimeoutFailsJob(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"a.go": "package a\n", "b.go": "package b\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	_, status := submitAndWait(t, orch, SubmitRequest{
		Source:  inputs.DetectSource(dir, ""),
		Timeout: time.Nanosecond,
	})

	assert.Equal(t, StatusFailed, status.Status)
	assert.Equal(t, "timeout", status.FailureReason)
	assert.Nil(t, status.Analysis, "partial findings must be discarded on timeout")
}

func TestTerminalStateIsStable(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"model.py": "first_name = row[0]\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	projectID, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})
	require.True(t, status.Status.Terminal())

	for i := 0; i < 3; i++ {
		again, err := orch.Status(projectID)
		require.NoError(t, err)
		assert.Equal(t, status.Status, again.Status)
		assert.Equal(t, status.Counts, again.Counts)
	}
}

func TestStatusUnknownProject(t *testing.T) {
	orch := newTestOrchestrator(t, newTestConfig(t))

	_, err := orch.Status("no-such-project")
	var notFound *errors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-such-project", notFound.ProjectID)
}

func TestFetchReport(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"schema.sql": "ssn_number VARCHAR(11)\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	projectID, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})
	require.Equal(t, StatusCompleted, status.Status)

	for _, format := range report.Formats() {
		content, err := orch.FetchReport(projectID, format)
		require.NoError(t, err, "format %s", format)
		assert.NotEmpty(t, content)
	}

	// identical requests render identical bytes
	first, err := orch.FetchReport(projectID, report.FormatJSON)
	require.NoError(t, err)
	second, err := orch.FetchReport(projectID, report.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchReportErrors(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"a.txt": "nothing here\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	_, err := orch.FetchReport("no-such-project", report.FormatJSON)
	var notFound *errors.NotFoundError
	require.ErrorAs(t, err, &notFound)

	projectID, status := submitAndWait(t, orch, SubmitRequest{
		Source:  inputs.DetectSource(dir, ""),
		Timeout: time.Nanosecond,
	})
	require.Equal(t, StatusFailed, status.Status)

	_, err = orch.FetchReport(projectID, report.FormatJSON)
	var notReady *errors.NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, string(StatusFailed), notReady.Status)

	_, err = orch.FetchReport(projectID, report.Format("pdf"))
	var unsupported *errors.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
}

func TestClassifierOutageDegradesNotFails(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{
		// "account" is in the default ambiguous set, so this finding is
		// escalated to the classifier
		"billing.py": "account_number = row[3]\n",
	})

	cfg := newTestConfig(t)
	enabled := true
	cfg.ML.Enabled = &enabled
	cfg.ML.Backend = "selfhosted"
	cfg.ML.SelfHosted.Host = "127.0.0.1:1"

	orch := newTestOrchestrator(t, cfg)
	_, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})

	require.Equal(t, StatusCompleted, status.Status)
	require.NotNil(t, status.Analysis)
	require.Len(t, status.Analysis.Findings, 1)
	assert.Equal(t, findings.TierHeuristic, status.Analysis.Findings[0].Tier)
	assert.Nil(t, status.Analysis.Findings[0].ML)
	assert.NotEmpty(t, status.Warnings, "degradation must surface as a warning")
}

func TestLocalClassifierLabelsAmbiguousFindings(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"model.py": "first_name = row[0]\n"})

	cfg := newTestConfig(t)
	enabled := true
	cfg.ML.Enabled = &enabled
	cfg.ML.Backend = "local"

	orch := newTestOrchestrator(t, cfg)
	_, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})

	require.Equal(t, StatusCompleted, status.Status)
	require.Len(t, status.Analysis.Findings, 1)

	got := status.Analysis.Findings[0]
	require.NotNil(t, got.ML, "name findings are ambiguous and must be labeled")
	assert.Equal(t, findings.LabelPositive, got.ML.Label)
	assert.Equal(t, "local", got.ML.Backend)
}

func TestScanChunkingMatchesSerial(t *testing.T) {
	orch := newTestOrchestrator(t, newTestConfig(t))
	strategy := scan.NewRegexStrategy(orch.Catalog(), hclog.NewNullLogger())

	sourceFiles := []inputs.SourceFile{
		{RelPath: "a.sql", Content: "ssn_number VARCHAR(11)\n"},
		{RelPath: "b.py", Content: "first_name = row[0]\nemail = row[1]\n"},
		{RelPath: "c.java", Content: "private String phoneNumber;\n"},
		{RelPath: "d.go", Content: "accountNumber := 0\n"},
		{RelPath: "e.txt", Content: "nothing here\n"},
	}

	serial, serialWarnings, err := scanChunked(context.Background(), strategy, sourceFiles, 1)
	require.NoError(t, err)
	chunked, chunkedWarnings, err := scanChunked(context.Background(), strategy, sourceFiles, 4)
	require.NoError(t, err)

	require.NotEmpty(t, serial)
	assert.Equal(t, serial, chunked)
	assert.Equal(t, serialWarnings, chunkedWarnings)
}

func TestPipelineHonorsConfiguredJobs(t *testing.T) {
	fileContents := map[string]string{
		"schema.sql": "ssn_number VARCHAR(11)\n",
		"model.py":   "first_name = row[0]\n",
		"user.java":  "private String email;\n",
		"notes.txt":  "nothing here\n",
	}

	serialCfg := newTestConfig(t)
	serialCfg.Scan.Jobs = 1
	_, serialStatus := submitAndWait(t, newTestOrchestrator(t, serialCfg),
		SubmitRequest{Source: inputs.DetectSource(writeSourceTree(t, fileContents), "")})

	chunkedCfg := newTestConfig(t)
	chunkedCfg.Scan.Jobs = 3
	_, chunkedStatus := submitAndWait(t, newTestOrchestrator(t, chunkedCfg),
		SubmitRequest{Source: inputs.DetectSource(writeSourceTree(t, fileContents), "")})

	require.Equal(t, StatusCompleted, serialStatus.Status)
	require.Equal(t, StatusCompleted, chunkedStatus.Status)
	assert.Equal(t, serialStatus.Analysis.Findings, chunkedStatus.Analysis.Findings)
	assert.Equal(t, serialStatus.Counts, chunkedStatus.Counts)
}

func TestDoneRegistryDrainsAfterTerminal(t *testing.T) {
	dir := writeSourceTree(t, map[string]string{"model.py": "first_name = row[0]\n"})
	orch := newTestOrchestrator(t, newTestConfig(t))

	projectID, status := submitAndWait(t, orch, SubmitRequest{Source: inputs.DetectSource(dir, "")})
	require.True(t, status.Status.Terminal())

	orch.mu.Lock()
	remaining := len(orch.done)
	orch.mu.Unlock()
	assert.Zero(t, remaining)

	// a late waiter falls back to the store and returns immediately
	require.NoError(t, orch.Wait(projectID))
}

func TestWaitUnknownProject(t *testing.T) {
	orch := newTestOrchestrator(t, newTestConfig(t))

	err := orch.Wait("no-such-project")
	var notFound *errors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore()
	project := &Project{ID: "p-1", Status: StatusProcessing, SubmittedAt: time.Now()}
	require.NoError(t, store.Create(project))

	snapshot, err := store.Get("p-1")
	require.NoError(t, err)
	snapshot.Status = StatusFailed

	fresh, err := store.Get("p-1")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, fresh.Status)

	assert.Error(t, store.Create(&Project{ID: "p-1"}))

	projects, err := store.List()
	require.NoError(t, err)
	require.Len(t, projects, 1)
}
