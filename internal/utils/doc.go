// Package utils exposes reusable helpers consumed by the CLI.
//
// ConfigurationLoader layers embedded defaults, configuration files and
// environment variables through Viper; LoggerFactory builds the zap loggers;
// FlushingWriter keeps report output visible as it is written.
package utils
