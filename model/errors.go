package model

import (
	"fmt"
	"strings"
)

// ValidationError is returned for malformed attribute strings and invalid argument combinations.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ToolInvocationError is returned when an external tool cannot be found or exits non-zero.
type ToolInvocationError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolInvocationError) Error() string {
	cmd := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	msg := fmt.Sprintf("%s: %v", cmd, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// LookupError is returned when the attributes of a path are missing from a read result.
type LookupError struct {
	Path string
}

func (e *LookupError) Error() string {
	return "Cant get attributes for " + e.Path
}

// FormatError is returned for snapshot files that cannot be parsed.
type FormatError struct {
	File string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid snapshot %s: %v", e.File, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
