package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateScanArgs(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		options RunOptionsScan
		args    []string
		wantErr string
	}{
		{
			// valid: codelens scan /path/to/target
			name:    "Valid local target",
			options: RunOptionsScan{},
			args:    []string{tmpDir},
			wantErr: "",
		},
		{
			// valid: codelens scan https://github.com/org/repo
			name:    "Valid remote target",
			options: RunOptionsScan{},
			args:    []string{"https://github.com/org/repo"},
			wantErr: "",
		},
		{
			name:    "No target",
			options: RunOptionsScan{},
			args:    []string{},
			wantErr: "exactly one target must be specified",
		},
		{
			name:    "Too many targets",
			options: RunOptionsScan{},
			args:    []string{tmpDir, tmpDir},
			wantErr: "exactly one target must be specified",
		},
		{
			name:    "Missing local target",
			options: RunOptionsScan{},
			args:    []string{"/no/such/path"},
			wantErr: "the target path does not exist: /no/such/path",
		},
		{
			name:    "Missing reference file",
			options: RunOptionsScan{ReferencePath: "/no/such/fields.xlsx"},
			args:    []string{tmpDir},
			wantErr: "the reference file is not readable: /no/such/fields.xlsx",
		},
		{
			name:    "Reference path is a directory",
			options: RunOptionsScan{ReferencePath: tmpDir},
			args:    []string{tmpDir},
			wantErr: "the reference file is not readable: " + tmpDir,
		},
		{
			name:    "Negative timeout",
			options: RunOptionsScan{Timeout: -time.Second},
			args:    []string{tmpDir},
			wantErr: "the 'timeout' flag must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScanArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
