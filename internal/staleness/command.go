package staleness

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/dependencies"
	"github.com/temirov/stale-branches/internal/execshell"
	"github.com/temirov/stale-branches/internal/githubauth"
	"github.com/temirov/stale-branches/internal/githubcli"
	"github.com/temirov/stale-branches/internal/utils"
	"github.com/temirov/stale-branches/internal/utils/flags"
)

const (
	commandUseConstant                      = "reconcile"
	commandShortDescriptionConstant         = "Track stale branches with issues and delete abandoned ones"
	commandLongDescriptionConstant          = "reconcile walks every branch of a GitHub repository, opens tracking issues for branches without recent commits, keeps those issues current, closes them when a branch revives or disappears, and deletes branches that stayed stale past the deletion threshold."
	unexpectedArgumentsMessageConstant      = "reconcile does not accept positional arguments"
	exporterFactoryMissingMessageConstant   = "report exporter factory not configured"
	commandExecutionErrorTemplateConstant   = "stale branch reconciliation failed: %w"
	tokenResolutionErrorTemplateConstant    = "unable to resolve GitHub token: %w"
	reportExporterErrorTemplateConstant     = "unable to prepare report exporter: %w"
	reportExportErrorTemplateConstant       = "unable to export report: %w"
	gitHubClientErrorTemplateConstant       = "unable to construct GitHub client: %w"
	flagRepositoryNameConstant              = "repository"
	flagRepositoryDescriptionConstant       = "Repository to reconcile (owner/name); defaults to GITHUB_REPOSITORY"
	flagDaysBeforeStaleNameConstant         = "days-before-stale"
	flagDaysBeforeStaleDescriptionConstant  = "Days without commits before a branch is considered stale"
	flagDaysBeforeDeleteNameConstant        = "days-before-delete"
	flagDaysBeforeDeleteDescriptionConstant = "Days without commits before a stale branch is deleted"
	flagMaxIssuesNameConstant               = "max-issues"
	flagMaxIssuesDescriptionConstant        = "Maximum number of open tracking issues"
	flagLabelNameConstant                   = "label"
	flagLabelDescriptionConstant            = "Label applied to tracking issues"
	flagTagLastCommitterNameConstant        = "tag-last-committer"
	flagTagLastCommitterDescriptionConstant = "Mention the last committer in tracking issues"
	flagCommentUpdatesNameConstant          = "comment-updates"
	flagCommentUpdatesDescriptionConstant   = "Detail of comments added to existing tracking issues"
	flagCompareBranchesNameConstant         = "compare-branches"
	flagCompareBranchesDescriptionConstant  = "Branch used to check for unmerged commits before deletion; empty selects the default branch, off disables the check"
	flagDryRunDescriptionConstant           = "Log planned issue and branch changes without applying them"
	flagTokenSourceNameConstant             = "token-source"
	flagTokenSourceDescriptionConstant      = "GitHub token source (env:NAME or file:PATH); defaults to GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN"
	flagReportFormatNameConstant            = "report-format"
	flagReportFormatDescriptionConstant     = "Encoding of the run report"
	flagReportPathNameConstant              = "report-path"
	flagReportPathDescriptionConstant       = "File receiving the run report; standard output when empty"
	reportFormatCSVConstant                 = "csv"
	reportFormatJSONConstant                = "json"
	reportFormatYAMLConstant                = "yaml"
	partialReportExportedMessageConstant    = "Run stopped early; partial report exported"
	logFieldConfigurationFileConstant       = "configuration_file"
)

var (
	errUnexpectedArguments        = errors.New(unexpectedArgumentsMessageConstant)
	errExporterFactoryNotProvided = errors.New(exporterFactoryMissingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ExporterFactory builds the exporter for a report configuration. Unsupported formats must be rejected here.
type ExporterFactory func(configuration ReportConfiguration, output io.Writer) (ReportExporter, error)

// CommandEventsObserverFactory builds a console observer for shell command events.
type CommandEventsObserverFactory func(logger *zap.Logger) execshell.CommandEventObserver

// CommandBuilder assembles the reconcile cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() Configuration
	HumanReadableLoggingProvider func() bool
	HostClient                   HostClient
	GitHubExecutor               githubcli.GitHubCommandExecutor
	TokenResolver                githubauth.TokenResolver
	ExporterFactory              ExporterFactory
	Presenter                    BranchPresenter
	CommandEventsObserverFactory CommandEventsObserverFactory
	Clock                        Clock
	RunIdentifierProvider        func() string
}

// Build constructs the reconcile command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultConfiguration()
	commandFlags := command.Flags()
	commandFlags.String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	commandFlags.Int(flagDaysBeforeStaleNameConstant, defaults.DaysBeforeStale, flagDaysBeforeStaleDescriptionConstant)
	commandFlags.Int(flagDaysBeforeDeleteNameConstant, defaults.DaysBeforeDelete, flagDaysBeforeDeleteDescriptionConstant)
	commandFlags.Int(flagMaxIssuesNameConstant, defaults.MaxIssues, flagMaxIssuesDescriptionConstant)
	commandFlags.String(flagLabelNameConstant, defaults.StaleBranchLabel, flagLabelDescriptionConstant)
	flags.AddToggleFlag(commandFlags, nil, flagTagLastCommitterNameConstant, "", defaults.TagLastCommitter, flagTagLastCommitterDescriptionConstant)
	commandFlags.String(
		flagCommentUpdatesNameConstant,
		string(defaults.CommentUpdates),
		flags.FormatChoiceUsage(string(defaults.CommentUpdates), []string{string(CommentModeOff), string(CommentModeBrief), string(CommentModeFull)}, flagCommentUpdatesDescriptionConstant),
	)
	commandFlags.String(flagCompareBranchesNameConstant, "", flagCompareBranchesDescriptionConstant)
	flags.AddToggleFlag(commandFlags, nil, flags.DryRunFlagName, "", defaults.DryRun, flagDryRunDescriptionConstant)
	commandFlags.String(flagTokenSourceNameConstant, "", flagTokenSourceDescriptionConstant)
	commandFlags.String(
		flagReportFormatNameConstant,
		defaults.Report.Format,
		flags.FormatChoiceUsage(defaults.Report.Format, []string{reportFormatCSVConstant, reportFormatJSONConstant, reportFormatYAMLConstant}, flagReportFormatDescriptionConstant),
	)
	commandFlags.String(flagReportPathNameConstant, "", flagReportPathDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}
	if builder.ExporterFactory == nil {
		return errExporterFactoryNotProvided
	}

	configuration, configurationError := builder.parseConfiguration(command).Validate()
	if configurationError != nil {
		return configurationError
	}

	exporter, exporterError := builder.ExporterFactory(configuration.Report, command.OutOrStdout())
	if exporterError != nil {
		return fmt.Errorf(reportExporterErrorTemplateConstant, exporterError)
	}

	runIdentifier := builder.resolveRunIdentifier()
	logger := builder.resolveLogger()
	if configurationFilePath, available := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context()); available {
		logger = logger.With(zap.String(logFieldConfigurationFileConstant, configurationFilePath))
	}
	humanReadableLogging := builder.humanReadableLogging()

	hostClient, hostClientError := builder.resolveHostClient(command, configuration, logger, humanReadableLogging)
	if hostClientError != nil {
		return hostClientError
	}

	presenter := BranchPresenter(PlainBranchPresenter{})
	if humanReadableLogging && builder.Presenter != nil {
		presenter = builder.Presenter
	}

	engine, engineError := NewEngine(EngineDependencies{
		Logger:     logger,
		HostClient: hostClient,
		Presenter:  presenter,
		Clock:      builder.Clock,
	}, configuration)
	if engineError != nil {
		return engineError
	}

	report, runError := engine.Run(command.Context(), runIdentifier)
	if runError != nil && !stoppedEarly(runError) {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	if exportError := exporter.Export(report); exportError != nil {
		return fmt.Errorf(reportExportErrorTemplateConstant, exportError)
	}

	if runError != nil {
		logger.Warn(partialReportExportedMessageConstant, zap.Error(runError))
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

// stoppedEarly reports whether runError ended the run with a report that still reflects every action taken.
func stoppedEarly(runError error) bool {
	return errors.Is(runError, ErrRateLimitExceeded) || errors.Is(runError, ErrBranchListingFailed)
}

// parseConfiguration overlays explicitly set flags on the loaded configuration.
func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flagRepositoryNameConstant) {
		configuration.Repository, _ = commandFlags.GetString(flagRepositoryNameConstant)
	}
	if commandFlags.Changed(flagDaysBeforeStaleNameConstant) {
		configuration.DaysBeforeStale, _ = commandFlags.GetInt(flagDaysBeforeStaleNameConstant)
	}
	if commandFlags.Changed(flagDaysBeforeDeleteNameConstant) {
		configuration.DaysBeforeDelete, _ = commandFlags.GetInt(flagDaysBeforeDeleteNameConstant)
	}
	if commandFlags.Changed(flagMaxIssuesNameConstant) {
		configuration.MaxIssues, _ = commandFlags.GetInt(flagMaxIssuesNameConstant)
	}
	if commandFlags.Changed(flagLabelNameConstant) {
		configuration.StaleBranchLabel, _ = commandFlags.GetString(flagLabelNameConstant)
	}
	if commandFlags.Changed(flagTagLastCommitterNameConstant) {
		configuration.TagLastCommitter, _ = commandFlags.GetBool(flagTagLastCommitterNameConstant)
	}
	if commandFlags.Changed(flagCommentUpdatesNameConstant) {
		commentUpdatesValue, _ := commandFlags.GetString(flagCommentUpdatesNameConstant)
		configuration.CommentUpdates = CommentMode(commentUpdatesValue)
	}
	if commandFlags.Changed(flagCompareBranchesNameConstant) {
		configuration.CompareBranches, _ = commandFlags.GetString(flagCompareBranchesNameConstant)
	}
	if commandFlags.Changed(flags.DryRunFlagName) {
		configuration.DryRun, _ = commandFlags.GetBool(flags.DryRunFlagName)
	}
	if commandFlags.Changed(flagTokenSourceNameConstant) {
		configuration.TokenSource, _ = commandFlags.GetString(flagTokenSourceNameConstant)
	}
	if commandFlags.Changed(flagReportFormatNameConstant) {
		configuration.Report.Format, _ = commandFlags.GetString(flagReportFormatNameConstant)
	}
	if commandFlags.Changed(flagReportPathNameConstant) {
		configuration.Report.Path, _ = commandFlags.GetString(flagReportPathNameConstant)
	}

	return configuration
}

func (builder *CommandBuilder) resolveHostClient(command *cobra.Command, configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (HostClient, error) {
	if builder.HostClient != nil {
		return builder.HostClient, nil
	}

	environment, tokenError := githubauth.ResolveCommandEnvironment(command.Context(), dependencies.ResolveTokenResolver(builder.TokenResolver), configuration.TokenSource)
	if tokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, tokenError)
	}

	observers := []execshell.CommandEventObserver{}
	if humanReadableLogging && builder.CommandEventsObserverFactory != nil {
		observers = append(observers, builder.CommandEventsObserverFactory(logger))
	}

	executor, executorError := dependencies.ResolveGitHubExecutor(builder.GitHubExecutor, logger, environment, observers...)
	if executorError != nil {
		return nil, executorError
	}

	client, clientError := dependencies.ResolveGitHubClient(executor)
	if clientError != nil {
		return nil, fmt.Errorf(gitHubClientErrorTemplateConstant, clientError)
	}
	return client, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveRunIdentifier() string {
	if builder.RunIdentifierProvider != nil {
		if runIdentifier := strings.TrimSpace(builder.RunIdentifierProvider()); len(runIdentifier) > 0 {
			return runIdentifier
		}
	}
	return uuid.NewString()
}
