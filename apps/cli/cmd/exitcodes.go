package cmd

// Exit codes for the ptw CLI
const (
	// ExitSuccess indicates a clean session end
	ExitSuccess = 0

	// ExitFailure indicates a session-level error
	ExitFailure = 1

	// ExitConfigError indicates config discovery or merging failed
	ExitConfigError = 3
)
