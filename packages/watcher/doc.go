// Package watcher detects filesystem changes that should trigger a test
// run. It watches directory trees recursively, filters events by file
// extension and ignore list, debounces rapid event bursts and rate
// limits how often runs may be triggered.
package watcher
