package utils

import (
	"context"
	"strings"
)

type configurationFilePathKey struct{}

// CommandContextAccessor records command-scoped settings on a cobra execution context
// so subcommands can read what the root command resolved.
type CommandContextAccessor struct{}

// NewCommandContextAccessor returns a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file the root command loaded.
// A blank path leaves the context unchanged.
func (CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, configurationFilePathKey{}, trimmedPath)
}

// ConfigurationFilePath returns the recorded configuration file and whether one was loaded.
func (CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, available := executionContext.Value(configurationFilePathKey{}).(string)
	return configurationFilePath, available
}
