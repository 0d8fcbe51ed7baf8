// Package errors provides typed errors with exit codes for skeld.
//
// # Error Types
//
// SkeldError is the base error type that wraps an error with an exit code:
//
//	type SkeldError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
// Defined exit codes for different error categories:
//
//	ExitSuccess            = 0  // Success
//	ExitGeneralError       = 1  // General/unknown errors
//	ExitProjectNotFound    = 2  // Project does not exist
//	ExitConfigError        = 3  // Configuration error
//	ExitSandboxUnavailable = 4  // bwrap missing or not executable
//	ExitLaunchFailed       = 5  // Spawning or waiting on a command failed
//	ExitSeccompFailed      = 6  // Terminal-injection filter installation failed
//	ExitLogfileFailed      = 7  // Detach logfile allocation failed
//
// A detached-from or sandboxed child that exits on its own terms is not an
// error category: its code is forwarded verbatim through ExitStatus, which
// carries the code and nothing else. Use IsExitStatus to recognize these
// before printing, since the child already reported its failure.
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	errors.ProjectNotFound("mykernel")
//	errors.ConfigError("invalid colorscheme", err)
//	errors.SandboxUnavailable(err)
//	errors.LaunchFailed("nvim", err)
//
// # Extracting Exit Codes
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
