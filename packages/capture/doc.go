// Package capture provides scoped suppression of the process output streams.
//
// It supports silencing os.Stdout and os.Stderr for the duration of one
// call, with a restore function that puts the original streams back on
// every exit path. The config locator uses it to keep the dry pytest
// invocation quiet.
package capture
