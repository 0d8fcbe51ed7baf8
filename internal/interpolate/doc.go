// Package interpolate expands the placeholders allowed in configuration
// strings.
//
// # Syntax
//
// Three placeholder forms are recognized:
//
//   - `~` expands to the home directory.
//   - `$[NAME]` expands to the environment variable NAME. An unset variable
//     is an error unless a fallback is given as `$[NAME:fallback]`; the
//     fallback may itself contain placeholders and is only resolved when it
//     is needed.
//   - `$(VAR)` expands a built-in variable. CONFIG, CACHE, DATA and STATE
//     name the XDG base directories and take no fallback. FILE names the
//     file to open and is only valid in editor arguments; an argument whose
//     $(FILE) has neither a value nor a fallback is dropped entirely.
//
// Everything else is literal text, including a `$` on its own. Brackets
// must pair up: a stray `]` or `)` is rejected, as is a `$[` closed by `)`.
// Placeholders nest only through fallbacks, so the variable name itself may
// not contain another placeholder.
package interpolate
