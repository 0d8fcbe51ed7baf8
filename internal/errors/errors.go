package errors

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Exit codes for skeld
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitProjectNotFound    = 2
	ExitConfigError        = 3
	ExitSandboxUnavailable = 4
	ExitLaunchFailed       = 5
	ExitSeccompFailed      = 6
	ExitLogfileFailed      = 7
)

// SkeldError is the base error type for skeld
type SkeldError struct {
	Code    int
	Message string
	Cause   error
}

func (e *SkeldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SkeldError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *SkeldError) ExitCode() int {
	return e.Code
}

// New creates a new SkeldError
func New(code int, message string) *SkeldError {
	return &SkeldError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SkeldError
func Wrap(code int, message string, cause error) *SkeldError {
	return &SkeldError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ProjectNotFound returns an error for an unknown project name
func ProjectNotFound(name string) *SkeldError {
	return New(ExitProjectNotFound, fmt.Sprintf("project not found: %s", name))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *SkeldError {
	return Wrap(ExitConfigError, message, cause)
}

// SandboxUnavailable returns an error for a missing or unexecutable bwrap.
// The cause and the install note are folded into the message, the note
// prints last.
func SandboxUnavailable(cause error) *SkeldError {
	message := fmt.Sprintf("failed to execute bwrap: %v", cause) +
		"\n  NOTE: This may be because Bubblewrap is not installed." +
		"\n        Install Bubblewrap (https://github.com/containers/bubblewrap)" +
		"\n        and make sure `bwrap` is available in `$PATH`."
	return New(ExitSandboxUnavailable, message)
}

// LaunchFailed returns an error for spawn or wait failures
func LaunchFailed(program string, cause error) *SkeldError {
	return Wrap(ExitLaunchFailed, fmt.Sprintf("failed to execute command `%s`", program), cause)
}

// SeccompFailed returns an error for terminal-guard installation failures
func SeccompFailed(cause error) *SkeldError {
	return Wrap(ExitSeccompFailed, "failed to install the terminal-injection filter", cause)
}

// LogfileFailed returns an error for detach logfile problems
func LogfileFailed(message string, cause error) *SkeldError {
	return Wrap(ExitLogfileFailed, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *SkeldError {
	return New(ExitGeneralError, message)
}

// Manpage returns the shell command that opens the skeld manpage at the
// given section, for use in error hints.
func Manpage(section string) string {
	if strings.ContainsFunc(section, unicode.IsSpace) {
		section = fmt.Sprintf("%q", section)
	}
	return fmt.Sprintf("man -P 'less -p %s$' skeld", section)
}

// ExitStatus returns an error carrying a forwarded child exit code.
// It prints nothing by itself: the child already reported its failure.
func ExitStatus(code int) *SkeldError {
	return New(code, "")
}

// IsExitStatus reports whether err only forwards a child exit code
func IsExitStatus(err error) bool {
	var skeldErr *SkeldError
	if errors.As(err, &skeldErr) {
		return skeldErr.Message == "" && skeldErr.Cause == nil
	}
	return false
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var skeldErr *SkeldError
	if errors.As(err, &skeldErr) {
		return skeldErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
