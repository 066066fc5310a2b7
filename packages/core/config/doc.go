// Package config merges options from the pytest config file into the
// ptw command-line arguments.
//
// It provides functionality for:
//   - Reading INI config files where bracketed array values
//     (key = [a, b, c]) are accepted alongside multi-line values
//   - Locating the config file pytest would use, via a dry
//     collect-only invocation
//   - Merging the [pytest-watch] section into an argument map without
//     overriding options supplied on the command line
package config
