// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

// DryRunFlagName exposes the shared dry-run flag name.
const DryRunFlagName = "dry-run"
