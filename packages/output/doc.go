// Package output renders watch-session status lines to the console.
package output
