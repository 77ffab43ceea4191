package check

import (
	"fmt"

	"github.com/zengent/codelens/pkg/shared/files"
)

// validateCheckArgs validates the arguments provided to the check command.
func validateCheckArgs(options *RunOptionsCheck, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one analysis file must be specified")
	}

	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("the analysis file is not readable: %v", args[0])
	}

	if options.MaxFindings < 0 {
		return fmt.Errorf("the 'max-findings' flag must not be negative")
	}

	switch options.Tier {
	case "", "exact", "heuristic":
	default:
		return fmt.Errorf("the 'tier' flag must be 'exact' or 'heuristic'")
	}

	return nil
}
