// Package emoji provides symbol constants for CLI output.
// These symbols keep the stderr summaries of every command consistent.
package emoji

// Symbol constants for CLI output.
const (
	// Success marks a completed run or a persisted write.
	Success = "✓"

	// Error marks a failed run.
	Error = "✗"

	// Warning marks a non-fatal problem such as a skipped sheet or a defaulted cohort.
	Warning = "!"

	// Skipped marks a source sheet that contributed nothing.
	Skipped = "-"

	// Info marks informational lines such as the backup name.
	Info = "i"

	// Preview marks dry-run output where nothing was written.
	Preview = "~"
)
