// Package runner executes the actual test runs a watch session
// triggers: spawning pytest, clearing the terminal, beeping on failure
// and running the user's lifecycle hook commands.
package runner
