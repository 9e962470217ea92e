package periphery

import (
	"errors"
	"fmt"
)

// Code classifies every failure the wrapper can surface to a client.
type Code string

const (
	CodeInvalidPath          Code = "invalid_path"
	CodeToolNotFound         Code = "tool_not_found"
	CodeTimeout              Code = "timeout"
	CodeConfigurationMissing Code = "configuration_missing"
	CodeBuildFailed          Code = "build_failed"
	CodeParseError           Code = "parse_error"
	CodeInternal             Code = "internal"
)

// ToolError is a classified failure. It is recovered at the dispatcher
// boundary and folded into the result payload; it never reaches the
// transport as an unhandled fault.
type ToolError struct {
	Code     Code
	Summary  string
	Hint     string
	LogTail  []string
	ExitCode *int
}

func (e *ToolError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Summary, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Summary)
}

// Errorf builds a ToolError with a formatted summary.
func Errorf(code Code, format string, args ...any) *ToolError {
	return &ToolError{Code: code, Summary: fmt.Sprintf(format, args...)}
}

// AsToolError extracts a ToolError from err, classifying anything else as
// an internal fault so callers always get a structured payload.
func AsToolError(err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{Code: CodeInternal, Summary: err.Error()}
}

// Detail converts the error to its wire representation.
func (e *ToolError) Detail() *ErrorDetail {
	d := &ErrorDetail{
		Code:     e.Code,
		Summary:  e.Summary,
		LogTail:  e.LogTail,
		ExitCode: e.ExitCode,
	}
	if e.Hint != "" {
		d.Summary = e.Summary + " (" + e.Hint + ")"
	}
	return d
}
