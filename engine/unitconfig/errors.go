package unitconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingTemplateFile is returned before validation when the unit config file does not exist
	ErrMissingTemplateFile = errors.New("unit config file not found")

	// ErrInvalidConfig wraps every aggregated validation failure
	ErrInvalidConfig = errors.New("invalid config")

	// ErrRemoteResolution represents a failed presigning call during review resolution
	ErrRemoteResolution = errors.New("remote resolution failed")

	// ErrUnknownProcedure marks a call-shaped token naming no known procedure
	ErrUnknownProcedure = errors.New("unknown procedure")
)

// MissingTemplateError names the template path that could not be found
type MissingTemplateError struct {
	Path string
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("create file '%s' with unit configuration", e.Path)
}

func (e *MissingTemplateError) Is(target error) bool {
	return target == ErrMissingTemplateFile
}

// UnsupportedAttributeError reports tokens found in an attribute that cannot hold them
type UnsupportedAttributeError struct {
	Attribute string
	Value     string
	Tokens    []string
	Supported []string
}

func (e *UnsupportedAttributeError) Error() string {
	quoted := make([]string, len(e.Tokens))
	for i, t := range e.Tokens {
		quoted[i] = "'" + t + "'"
	}
	return fmt.Sprintf(
		"You tried to set tokens %s in attribute '%s' with value '%s'. "+
			"You can use tokens only in following attributes: %s",
		strings.Join(quoted, ", "),
		e.Attribute,
		e.Value,
		strings.Join(e.Supported, ", "),
	)
}

// RemoteResolutionError wraps a presigning failure for one procedure token
type RemoteResolutionError struct {
	Token string
	Cause error
}

func (e *RemoteResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not resolve token '%s': %v", e.Token, e.Cause)
	}
	return fmt.Sprintf("could not resolve token '%s'", e.Token)
}

func (e *RemoteResolutionError) Is(target error) bool {
	return target == ErrRemoteResolution
}

func (e *RemoteResolutionError) Unwrap() error {
	return e.Cause
}

// UnknownProcedureError is returned for call-shaped tokens outside the known procedure set
type UnknownProcedureError struct {
	Name  string
	Token string
	Known []string
}

func (e *UnknownProcedureError) Error() string {
	return fmt.Sprintf(
		"token '%s' calls unknown procedure '%s' (known procedures: %s)",
		e.Token,
		e.Name,
		strings.Join(e.Known, ", "),
	)
}

func (e *UnknownProcedureError) Is(target error) bool {
	return target == ErrUnknownProcedure
}

// ValidationError carries the full aggregated report
type ValidationError struct {
	Report *Report
}

func (e *ValidationError) Error() string {
	if e.Report == nil {
		return ErrInvalidConfig.Error()
	}
	return e.Report.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}
