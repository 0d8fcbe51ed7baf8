// Package config reads the skeld configuration files.
//
// # Configuration Files
//
// The package handles two TOML file kinds:
//
//   - the global configuration at <skeld-config>/config.toml, holding
//     the start screen settings, the command buttons and shared project
//     options below [project]
//   - project files below the projects/ and bookmarks/ subdirectories of
//     the skeld data directories
//
// # Project Options
//
// Project options accumulate across files. The global configuration's
// [project] table is parsed first, the opened project file on top of it.
// Both may pull in further files through `include`. A scalar option such
// as `editor` must resolve to exactly one definition: [project.defaults]
// entries yield to plain ones, [project.forced] entries override them,
// and two definitions at the same priority are rejected. Filesystem
// whitelist entries instead accumulate across all files into a single
// tree, which normalizes redundant and rejects contradictory entries.
//
// # Two-Stage Parsing
//
// Listing projects for the start screen parses only `name` and `keybind`
// of each file. The [project] table is decoded when a button is
// activated, through LoadProject.
package config
