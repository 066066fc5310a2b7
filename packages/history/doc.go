// Package history persists a log of watch-triggered test runs.
// It stores one row per run in a SQLite database, keyed by a session id,
// with a JSON metadata document that can be queried with gjson paths.
package history
