// Package logging provides logging utilities for skeld.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("assembled sandbox arguments", "count", len(args))
//	logging.Warn("skipping stale logfile", "path", path, "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Opening project %s...", name)
//	logging.UserSuccess("Project %s registered", name)
//	logging.UserWarning("Project directory %s does not exist", dir)
//	logging.UserError("Failed to open project: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
