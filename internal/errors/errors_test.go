package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSkeldError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *SkeldError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     New(ExitGeneralError, "something went wrong"),
			wantMsg: "something went wrong",
		},
		{
			name:    "with cause",
			err:     Wrap(ExitGeneralError, "operation failed", fmt.Errorf("underlying error")),
			wantMsg: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSkeldError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ExitGeneralError, "wrapped", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Without cause
	errNoCause := New(ExitGeneralError, "no cause")
	if unwrapped := errNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestSkeldError_ExitCode(t *testing.T) {
	tests := []struct {
		code int
		name string
	}{
		{ExitSuccess, "success"},
		{ExitGeneralError, "general"},
		{ExitProjectNotFound, "project not found"},
		{ExitConfigError, "config error"},
		{ExitSandboxUnavailable, "sandbox unavailable"},
		{ExitLaunchFailed, "launch failed"},
		{ExitSeccompFailed, "seccomp failed"},
		{ExitLogfileFailed, "logfile failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "test")
			if got := err.ExitCode(); got != tt.code {
				t.Errorf("ExitCode() = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestProjectNotFound(t *testing.T) {
	err := ProjectNotFound("my-kernel")

	if err.Code != ExitProjectNotFound {
		t.Errorf("Code = %d, want %d", err.Code, ExitProjectNotFound)
	}

	if err.Message != "project not found: my-kernel" {
		t.Errorf("Message = %q, want %q", err.Message, "project not found: my-kernel")
	}
}

func TestConfigError(t *testing.T) {
	cause := fmt.Errorf("invalid toml")
	err := ConfigError("failed to parse config", cause)

	if err.Code != ExitConfigError {
		t.Errorf("Code = %d, want %d", err.Code, ExitConfigError)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestSandboxUnavailable(t *testing.T) {
	cause := fmt.Errorf("executable file not found in $PATH")
	err := SandboxUnavailable(cause)

	if err.Code != ExitSandboxUnavailable {
		t.Errorf("Code = %d, want %d", err.Code, ExitSandboxUnavailable)
	}

	if !strings.Contains(err.Message, "failed to execute bwrap: executable file not found in $PATH") {
		t.Errorf("Message should lead with the spawn failure, got %q", err.Message)
	}

	if !strings.Contains(err.Message, "Bubblewrap is not installed") {
		t.Errorf("Message should carry the install note, got %q", err.Message)
	}

	if !strings.HasSuffix(err.Message, "and make sure `bwrap` is available in `$PATH`.") {
		t.Errorf("Message should end with the PATH hint, got %q", err.Message)
	}
}

func TestLaunchFailed(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := LaunchFailed("nvim", cause)

	if err.Code != ExitLaunchFailed {
		t.Errorf("Code = %d, want %d", err.Code, ExitLaunchFailed)
	}

	if err.Message != "failed to execute command `nvim`" {
		t.Errorf("Message = %q, want %q", err.Message, "failed to execute command `nvim`")
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestLogfileFailed(t *testing.T) {
	cause := fmt.Errorf("read-only file system")
	err := LogfileFailed("failed to create logfile", cause)

	if err.Code != ExitLogfileFailed {
		t.Errorf("Code = %d, want %d", err.Code, ExitLogfileFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestManpage(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    string
	}{
		{"single word", "PROJECTS", "man -P 'less -p PROJECTS$' skeld"},
		{"with spaces", "PROJECT DATA FORMAT", `man -P 'less -p "PROJECT DATA FORMAT"$' skeld`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Manpage(tt.section); got != tt.want {
				t.Errorf("Manpage(%q) = %q, want %q", tt.section, got, tt.want)
			}
		})
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"zero", 0},
		{"one", 1},
		{"thirty-seven", 37},
		{"byte max", 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExitStatus(tt.code)
			if !IsExitStatus(err) {
				t.Error("IsExitStatus() = false, want true")
			}
			if got := GetExitCode(err); got != tt.code {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestIsExitStatus_Negative(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"plain error", fmt.Errorf("boom")},
		{"error with message", New(ExitGeneralError, "boom")},
		{"error with cause", Wrap(ExitLaunchFailed, "spawn failed", fmt.Errorf("not found"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsExitStatus(tt.err) {
				t.Error("IsExitStatus() = true, want false")
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "SkeldError",
			err:      ProjectNotFound("test"),
			wantCode: ExitProjectNotFound,
		},
		{
			name:     "wrapped SkeldError",
			err:      fmt.Errorf("outer: %w", ConfigError("bad config", nil)),
			wantCode: ExitConfigError,
		},
		{
			name:     "regular error",
			err:      fmt.Errorf("some error"),
			wantCode: ExitGeneralError,
		},
		{
			name:     "nil error",
			err:      nil,
			wantCode: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestIs(t *testing.T) {
	target := fmt.Errorf("target error")
	wrapped := fmt.Errorf("wrapped: %w", target)

	if !Is(wrapped, target) {
		t.Error("Is() should return true for wrapped error")
	}

	other := fmt.Errorf("other error")
	if Is(wrapped, other) {
		t.Error("Is() should return false for different error")
	}
}

func TestAs(t *testing.T) {
	skeldErr := ProjectNotFound("test")
	wrapped := fmt.Errorf("wrapped: %w", skeldErr)

	var target *SkeldError
	if !As(wrapped, &target) {
		t.Error("As() should return true for wrapped SkeldError")
	}

	if target.Code != ExitProjectNotFound {
		t.Errorf("target.Code = %d, want %d", target.Code, ExitProjectNotFound)
	}

	// Test with non-SkeldError
	regularErr := fmt.Errorf("regular error")
	if As(regularErr, &target) {
		t.Error("As() should return false for non-SkeldError")
	}
}

func TestErrorChaining(t *testing.T) {
	// Test that our errors work with standard error unwrapping
	root := fmt.Errorf("root cause")
	middle := Wrap(ExitConfigError, "config error", root)
	outer := fmt.Errorf("operation failed: %w", middle)

	// Should be able to find root cause
	if !errors.Is(outer, root) {
		t.Error("errors.Is should find root cause")
	}

	// Should be able to extract SkeldError
	var skeldErr *SkeldError
	if !errors.As(outer, &skeldErr) {
		t.Error("errors.As should find SkeldError")
	}

	if skeldErr.Code != ExitConfigError {
		t.Errorf("Code = %d, want %d", skeldErr.Code, ExitConfigError)
	}
}
