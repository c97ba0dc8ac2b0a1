// Package ui provides helpers for formatting human-readable console output.
//
// BranchPresenter colours the per-branch log lines of a reconciliation run by
// classification, and ConsoleCommandEventLogger turns gh invocations into
// short sentences so that console users see what is happening to their
// repository while structured logs keep the full command detail.
package ui
