// Package cmd implements the ptw CLI commands using Cobra.
//
// Available commands:
//   - ptw (root): Watch directories and re-run pytest on changes
//   - history: Show recorded test runs
//   - version: Show ptw version information
//
// Options not given on the command line are filled in from the
// [pytest-watch] section of the pytest config file before the watch
// session starts.
package cmd
