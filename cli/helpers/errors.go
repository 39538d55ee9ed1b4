package helpers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/compozy/unitgen/engine/combiner"
	"github.com/compozy/unitgen/engine/unitconfig"
	"github.com/compozy/unitgen/pkg/jsonio"
)

// Error codes reported by the CLI
const (
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeMissingTemplate = "MISSING_TEMPLATE"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeRemote          = "REMOTE_RESOLUTION"
	CodeUnknownProc     = "UNKNOWN_PROCEDURE"
	CodeIO              = "IO_ERROR"
	CodeCanceled        = "CANCELED"
	CodeTimeout         = "TIMEOUT"
	CodeUsage           = "USAGE"
	CodeInternal        = "INTERNAL"
)

// ErrUsage marks errors caused by wrong flags or arguments
var ErrUsage = errors.New("invalid usage")

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string
	Message   string
	Details   string
	Report    *unitconfig.Report
	Timestamp time.Time
	cause     error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.cause
}

// NewCliError creates a new CLI error
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// NewUsageError reports a wrong invocation
func NewUsageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Categorize maps a pipeline error onto a CliError. Nil stays nil.
func Categorize(err error) *CliError {
	if err == nil {
		return nil
	}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	var out *CliError
	var validation *unitconfig.ValidationError
	switch {
	case errors.As(err, &validation):
		out = NewCliError(CodeInvalidConfig, "Configuration is invalid")
		out.Report = validation.Report
	case errors.Is(err, unitconfig.ErrMissingTemplateFile):
		out = NewCliError(CodeMissingTemplate, "Unit config file is missing", err.Error())
	case errors.Is(err, jsonio.ErrInvalidJSON):
		out = NewCliError(CodeInvalidJSON, "Input is not valid JSON", err.Error())
	case errors.Is(err, unitconfig.ErrUnknownProcedure):
		out = NewCliError(CodeUnknownProc, "Unknown procedure in unit config", err.Error())
	case errors.Is(err, unitconfig.ErrRemoteResolution):
		out = NewCliError(CodeRemote, "Remote procedure failed", err.Error())
	case errors.Is(err, context.Canceled):
		out = NewCliError(CodeCanceled, "Operation was canceled")
	case errors.Is(err, context.DeadlineExceeded):
		out = NewCliError(CodeTimeout, "Operation timed out")
	case errors.Is(err, ErrUsage):
		out = NewCliError(CodeUsage, err.Error())
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		out = NewCliError(CodeIO, "File access failed", err.Error())
	default:
		var stageErr *combiner.StageError
		if errors.As(err, &stageErr) {
			out = NewCliError(CodeInternal, fmt.Sprintf("%s stage failed", stageErr.Stage), stageErr.Err.Error())
		} else {
			out = NewCliError(CodeInternal, err.Error())
		}
	}
	out.cause = err
	return out
}
