// Package staleness reconciles stale-branch tracking issues against the branches of a repository.
//
// Engine walks branches sequentially, classifies each by the age of its last commit,
// and opens, updates or closes tracking issues while honouring an issue budget and
// stopping when API usage crosses the rate-limit guard. Issues whose branch no longer
// exists are closed after the walk. CommandBuilder exposes the run as a Cobra command.
package staleness
