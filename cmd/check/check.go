package check

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zengent/codelens/internal/artifacts"
	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/logger"
)

// RunOptionsCheck holds the arguments for the check command.
type RunOptionsCheck struct {
	MaxFindings    int
	Tier           string
	FailOnCategory string
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	checkOptions      RunOptionsCheck
	exampleCheckUsage = `  # Failing the build when a persisted analysis contains any finding
  codelens check /path/to/results/<project>/analysis.json

  # Allowing up to ten findings
  codelens check --max-findings 10 /path/to/analysis.json

  # Gating only on exact-tier findings
  codelens check --tier exact /path/to/analysis.json

  # Forbidding a single category regardless of the budget
  codelens check --max-findings 10 --fail-on-category ssn /path/to/analysis.json`
)

// CheckCmd represents the check command, a compliance gate for CI pipelines.
var CheckCmd = &cobra.Command{
	Use:                   "check [--max-findings N] [--tier exact|heuristic] [--fail-on-category CATEGORY] ANALYSIS_PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCheckUsage,
	Short:                 "Checks a persisted analysis against a findings budget",
	RunE:                  runCheckCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runCheckCommand executes the check command.
func runCheckCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-check")

	if err := validateCheckArgs(&checkOptions, args); err != nil {
		logger.Error("invalid check arguments", "error", err)
		return err
	}

	store := artifacts.NewStore(AppConfig, logger)
	analysis, err := store.LoadAnalysis(args[0])
	if err != nil {
		return err
	}

	if err := gateAnalysis(analysis, &checkOptions); err != nil {
		return err
	}

	fmt.Printf("Check passed: %d findings, %d allowed\n", countFindings(analysis, &checkOptions), checkOptions.MaxFindings)
	return nil
}

// gateAnalysis decides whether a persisted analysis passes the gate. The
// budget applies to the counted tier; a forbidden category trips the gate on
// its first finding.
func gateAnalysis(analysis *findings.CanonicalFindingSet, options *RunOptionsCheck) error {
	if options.FailOnCategory != "" {
		if n := analysis.Summary.ByCategory[options.FailOnCategory]; n > 0 {
			return fmt.Errorf("forbidden category %q present: %d findings", options.FailOnCategory, n)
		}
	}

	total := countFindings(analysis, options)
	if total > options.MaxFindings {
		return fmt.Errorf("findings budget exceeded: %d findings, %d allowed", total, options.MaxFindings)
	}
	return nil
}

func countFindings(analysis *findings.CanonicalFindingSet, options *RunOptionsCheck) int {
	if options.Tier != "" {
		return analysis.Summary.ByTier[options.Tier]
	}
	return analysis.Summary.Total
}

func init() {
	CheckCmd.Flags().IntVar(&checkOptions.MaxFindings, "max-findings", 0, "maximum number of findings allowed before the check fails")
	CheckCmd.Flags().StringVar(&checkOptions.Tier, "tier", "", "count only findings of the given tier")
	CheckCmd.Flags().StringVar(&checkOptions.FailOnCategory, "fail-on-category", "", "fail when any finding of the given category is present")
}
