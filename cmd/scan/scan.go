package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zengent/codelens/internal/inputs"
	"github.com/zengent/codelens/internal/orchestrator"
	"github.com/zengent/codelens/internal/report"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/files"
	"github.com/zengent/codelens/pkg/shared/logger"
)

// statusPollInterval is how often the command polls a running scan.
const statusPollInterval = 2 * time.Second

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	Branch        string
	ReferencePath string
	Format        string
	OutputPath    string
	Timeout       time.Duration
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning a local folder
  codelens scan /path/to/my_project

  # Scanning a zip archive with a specific report format
  codelens scan --format sarif /path/to/sources.zip

  # Scanning a git repository branch
  codelens scan --branch develop https://github.com/org/repo

  # Scanning with reference field data from a spreadsheet
  codelens scan --reference /path/to/fields.xlsx /path/to/my_project

  # Scanning with a custom job timeout and output location
  codelens scan --timeout 15m --output /path/to/report.html --format html /path/to/my_project`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--branch/-b NAME] [--reference/-r PATH] [--format/-f OUTPUT_FORMAT] [--output/-o PATH] [--timeout DURATION] TARGET",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans a folder, archive or git repository for demographic data references",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}

	format, err := report.ParseFormat(resolveFormat(&scanOptions, AppConfig))
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(AppConfig, orchestrator.NewMemoryStore(), logger)
	if err != nil {
		return err
	}

	source := inputs.DetectSource(args[0], scanOptions.Branch)
	projectID, err := orch.Submit(context.Background(), orchestrator.SubmitRequest{
		Source:        source,
		ReferencePath: scanOptions.ReferencePath,
		Timeout:       scanOptions.Timeout,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Submitted project %s for %s\n", projectID, source.Describe())

	status, err := pollUntilTerminal(orch, projectID)
	if err != nil {
		return err
	}
	if status.Status == orchestrator.StatusFailed {
		return fmt.Errorf("scan failed: %s", status.FailureReason)
	}
	for _, warning := range status.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}
	fmt.Printf("Scan finished: %d findings in %d files (%d skipped)\n",
		status.Counts.Findings, status.Counts.FilesScanned, status.Counts.FilesSkipped)

	content, err := orch.FetchReport(projectID, format)
	if err != nil {
		return err
	}
	outputFile, _, err := files.DetermineFileFullPath(resolveOutput(&scanOptions), "report."+format.Extension())
	if err != nil {
		return err
	}
	if err := files.WriteFileAtomicish(outputFile, content); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("Report written to %s\n", outputFile)
	return nil
}

// pollUntilTerminal polls the orchestrator until the project settles,
// printing intermediate statuses.
func pollUntilTerminal(orch *orchestrator.Orchestrator, projectID string) (*orchestrator.StatusResponse, error) {
	for {
		status, err := orch.Status(projectID)
		if err != nil {
			return nil, err
		}
		if status.Status.Terminal() {
			return status, nil
		}

		fmt.Printf("Status: %s\n", status.Status)
		select {
		case <-time.After(statusPollInterval):
		case <-waitDone(orch, projectID):
		}
	}
}

// waitDone adapts Wait to a channel so polling can wake early on completion.
func waitDone(orch *orchestrator.Orchestrator, projectID string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = orch.Wait(projectID)
	}()
	return done
}

func resolveFormat(options *RunOptionsScan, cfg *config.Config) string {
	if options.Format != "" {
		return options.Format
	}
	return config.SetThen(cfg.Report.DefaultFormat, string(report.FormatJSON))
}

func resolveOutput(options *RunOptionsScan) string {
	if options.OutputPath != "" {
		return options.OutputPath
	}
	return "."
}

func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.Branch, "branch", "b", "", "branch to scan when the target is a git repository")
	ScanCmd.Flags().StringVarP(&scanOptions.ReferencePath, "reference", "r", "", "path to a reference field spreadsheet (xlsx or csv)")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "", "report format: html, sarif, json or markdown")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "output file or folder for the rendered report")
	ScanCmd.Flags().DurationVar(&scanOptions.Timeout, "timeout", 0, "per-job scan timeout (default from config)")
}
