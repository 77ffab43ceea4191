package scan

import (
	"fmt"
	"os"

	"github.com/zengent/codelens/pkg/shared/files"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target must be specified")
	}

	target := args[0]
	if target == "" {
		return fmt.Errorf("the target must not be empty")
	}
	if !isRemoteTarget(target) {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return fmt.Errorf("the target path does not exist: %v", target)
		}
	}

	if options.ReferencePath != "" {
		if err := files.ValidatePath(options.ReferencePath); err != nil {
			return fmt.Errorf("the reference file is not readable: %v", options.ReferencePath)
		}
	}

	if options.Timeout < 0 {
		return fmt.Errorf("the 'timeout' flag must not be negative")
	}

	return nil
}

// isRemoteTarget reports whether the target is fetched rather than read from
// the local filesystem.
func isRemoteTarget(target string) bool {
	for _, prefix := range []string{"http://", "https://", "ssh://", "git@"} {
		if len(target) >= len(prefix) && target[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
