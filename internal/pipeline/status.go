package pipeline

// Exit statuses produced by the evaluator itself. Statuses of external
// programs are passed through unchanged.
const (
	StatusOK      = 0
	StatusFailure = 1

	// StatusExecFailed is reported when a program image cannot be loaded:
	// the verb was not found or is not executable.
	StatusExecFailed = 255

	// StatusFatal marks an unrecoverable condition: a malformed tree or a
	// failure to create a process. It is outside the 0-255 range of real
	// exit statuses.
	StatusFatal = -100
)
