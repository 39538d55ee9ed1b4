package helpers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Mode selects how command results are printed
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// FormatFlag is the persistent flag selecting the output mode
const FormatFlag = "format"

// ParseMode accepts "text", "json" or "auto"
func ParseMode(s string) (Mode, error) {
	switch s {
	case string(ModeText):
		return ModeText, nil
	case string(ModeJSON):
		return ModeJSON, nil
	case "", "auto":
		if ShouldUseColor(os.Stdout) {
			return ModeText, nil
		}
		return ModeJSON, nil
	default:
		return "", NewUsageError("unknown output format %q", s)
	}
}

// DetectMode reads the --format flag, falling back to auto-detection
func DetectMode(cmd *cobra.Command) (Mode, error) {
	value, err := cmd.Flags().GetString(FormatFlag)
	if err != nil {
		value = "auto"
	}
	mode, err := ParseMode(value)
	if err != nil {
		return "", fmt.Errorf("failed to detect output mode: %w", err)
	}
	return mode, nil
}
