// Package sandbox compiles filesystem whitelists into Bubblewrap
// invocations and runs commands inside or outside the resulting sandbox.
//
// # Permission Trees
//
// Whitelist declarations are collected in an FSTree, a tree keyed by path
// component. Each node may carry one entry (read-only, read-write,
// device, symlink or tmpfs) plus caller context used to identify the
// declaration in error messages. Insertion normalizes the tree: redundant
// declarations below a stronger ancestor are dropped, weaker descendants
// are pruned when an ancestor is promoted, and contradictory declarations
// are rejected. Symlink and tmpfs entries are leaf-exclusive, nothing may
// be whitelisted below them.
//
// # Argument Synthesis
//
// A Params value pairs a finished tree with an environment-variable
// whitelist and compiles both into the Bubblewrap argument list. The
// flattened tree keeps ancestors before descendants so that later bind
// mounts refine earlier ones, and /dev is mounted before the tree entries
// so device whitelists below /dev take effect.
//
// # Terminal Protection
//
// Foreground sandboxes share the controlling terminal with the invoking
// shell. Before spawning Bubblewrap, a seccomp filter is installed that
// traps the TIOCSTI and TIOCLINUX ioctls, the primitives a sandboxed
// process could use to type into the shell's input buffer. Detached runs
// skip the filter since they give up the terminal entirely.
//
// # Detaching
//
// A Command with Detach set is started in its own session with stdout and
// stderr redirected to a fresh logfile under the skeld state directory.
// Logfile names are allocated with exclusive creation so concurrent
// detachments never collide, and logfiles unused for a day are cleaned up
// on the next detach.
package sandbox
