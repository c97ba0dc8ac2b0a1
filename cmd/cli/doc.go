// Package cli constructs the stale-branches command-line interface. It wires
// the Cobra command hierarchy, the layered configuration loader, the zap
// loggers and the reconcile command with its report exporter and console
// presentation.
package cli
