// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle observers,
// OSCommandRunner is the os/exec backed default, and CommandMessageFormatter
// turns gh api invocations into readable progress messages.
package execshell
