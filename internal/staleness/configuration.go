package staleness

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	defaultDaysBeforeStaleConstant      = 120
	defaultDaysBeforeDeleteConstant     = 180
	defaultMaxIssuesConstant            = 20
	defaultStaleBranchLabelConstant     = "stale branch 🗑️"
	defaultReportFormatConstant         = "csv"
	comparisonDisabledValueConstant     = "off"
	githubRepositoryEnvironmentConstant = "GITHUB_REPOSITORY"
	repositorySeparatorConstant         = "/"

	repositoryConfigurationKeyConstant       = "repository"
	daysBeforeStaleConfigurationKeyConstant  = "days_before_stale"
	daysBeforeDeleteConfigurationKeyConstant = "days_before_delete"
	maxIssuesConfigurationKeyConstant        = "max_issues"
	labelConfigurationKeyConstant            = "stale_branch_label"
	tagCommitterConfigurationKeyConstant     = "tag_last_committer"
	commentUpdatesConfigurationKeyConstant   = "comment_updates"
	compareBranchesConfigurationKeyConstant  = "compare_branches"
	dryRunConfigurationKeyConstant           = "dry_run"
	tokenSourceConfigurationKeyConstant      = "token_source"
	reportFormatConfigurationKeyConstant     = "report.format"
	reportPathConfigurationKeyConstant       = "report.path"
	configurationKeyTemplateConstant         = "%s.%s"

	repositoryRequiredMessageConstant      = "repository is required (owner/name)"
	repositoryFormatMessageConstant        = "repository must be formatted as owner/name"
	negativeThresholdMessageConstant       = "must not be negative"
	deleteBeforeStaleMessageConstant       = "must be greater than days_before_stale"
	labelRequiredMessageConstant           = "label is required"
	unknownCommentModeTemplateConstant     = "unsupported comment mode %q (expected off, brief or full)"
	validationErrorTemplateConstant        = "invalid %s: %s"
	commentModeDecodeErrorTemplateConstant = "unable to decode comment mode from %T"
)

// CommentMode controls how much detail update comments carry.
type CommentMode string

// Supported comment modes.
const (
	CommentModeOff   CommentMode = CommentMode("off")
	CommentModeBrief CommentMode = CommentMode("brief")
	CommentModeFull  CommentMode = CommentMode("full")
)

var commentModeAliases = map[string]CommentMode{
	"off":   CommentModeOff,
	"false": CommentModeOff,
	"brief": CommentModeBrief,
	"full":  CommentModeFull,
	"true":  CommentModeFull,
}

// ParseCommentMode interprets a comment mode, accepting the boolean spellings older configurations used.
func ParseCommentMode(value string) (CommentMode, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if len(normalizedValue) == 0 {
		return CommentModeFull, nil
	}
	mode, known := commentModeAliases[normalizedValue]
	if !known {
		return "", ValidationError{Field: commentUpdatesConfigurationKeyConstant, Message: fmt.Sprintf(unknownCommentModeTemplateConstant, value)}
	}
	return mode, nil
}

// CommentModeDecodeHook lets configuration files express comment_updates as a boolean or a string.
func CommentModeDecodeHook() mapstructure.DecodeHookFuncType {
	commentModeType := reflect.TypeOf(CommentMode(""))
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != commentModeType {
			return data, nil
		}
		switch typedData := data.(type) {
		case bool:
			if typedData {
				return CommentModeFull, nil
			}
			return CommentModeOff, nil
		case string:
			return ParseCommentMode(typedData)
		case CommentMode:
			return ParseCommentMode(string(typedData))
		default:
			return nil, fmt.Errorf(commentModeDecodeErrorTemplateConstant, data)
		}
	}
}

// ValidationError reports configuration that prevents a run from starting.
type ValidationError struct {
	Field   string
	Message string
}

// Error describes the invalid setting.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.Field, validationError.Message)
}

// ReportConfiguration selects the run report encoding and destination.
type ReportConfiguration struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// Configuration captures every setting of a reconciliation run.
type Configuration struct {
	Repository       string              `mapstructure:"repository"`
	DaysBeforeStale  int                 `mapstructure:"days_before_stale"`
	DaysBeforeDelete int                 `mapstructure:"days_before_delete"`
	MaxIssues        int                 `mapstructure:"max_issues"`
	StaleBranchLabel string              `mapstructure:"stale_branch_label"`
	TagLastCommitter bool                `mapstructure:"tag_last_committer"`
	CommentUpdates   CommentMode         `mapstructure:"comment_updates"`
	CompareBranches  string              `mapstructure:"compare_branches"`
	DryRun           bool                `mapstructure:"dry_run"`
	TokenSource      string              `mapstructure:"token_source"`
	Report           ReportConfiguration `mapstructure:"report"`
}

// DefaultConfiguration returns the baseline settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		DaysBeforeStale:  defaultDaysBeforeStaleConstant,
		DaysBeforeDelete: defaultDaysBeforeDeleteConstant,
		MaxIssues:        defaultMaxIssuesConstant,
		StaleBranchLabel: defaultStaleBranchLabelConstant,
		CommentUpdates:   CommentModeFull,
		Report:           ReportConfiguration{Format: defaultReportFormatConstant},
	}
}

// DefaultConfigurationValues exposes the defaults as flattened configuration keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	values := map[string]any{
		repositoryConfigurationKeyConstant:       defaults.Repository,
		daysBeforeStaleConfigurationKeyConstant:  defaults.DaysBeforeStale,
		daysBeforeDeleteConfigurationKeyConstant: defaults.DaysBeforeDelete,
		maxIssuesConfigurationKeyConstant:        defaults.MaxIssues,
		labelConfigurationKeyConstant:            defaults.StaleBranchLabel,
		tagCommitterConfigurationKeyConstant:     defaults.TagLastCommitter,
		commentUpdatesConfigurationKeyConstant:   string(defaults.CommentUpdates),
		compareBranchesConfigurationKeyConstant:  defaults.CompareBranches,
		dryRunConfigurationKeyConstant:           defaults.DryRun,
		tokenSourceConfigurationKeyConstant:      defaults.TokenSource,
		reportFormatConfigurationKeyConstant:     defaults.Report.Format,
		reportPathConfigurationKeyConstant:       defaults.Report.Path,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[fmt.Sprintf(configurationKeyTemplateConstant, trimmedPrefix, key)] = value
	}
	return prefixedValues
}

// ComparisonDisabled reports whether branch comparison was switched off.
func (configuration Configuration) ComparisonDisabled() bool {
	return strings.EqualFold(configuration.CompareBranches, comparisonDisabledValueConstant)
}

// sanitize trims whitespace and fills unset values from the environment and defaults.
func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	if len(sanitized.Repository) == 0 {
		sanitized.Repository = strings.TrimSpace(os.Getenv(githubRepositoryEnvironmentConstant))
	}
	sanitized.StaleBranchLabel = strings.TrimSpace(configuration.StaleBranchLabel)
	sanitized.CompareBranches = strings.TrimSpace(configuration.CompareBranches)
	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	sanitized.CommentUpdates = CommentMode(strings.ToLower(strings.TrimSpace(string(configuration.CommentUpdates))))
	if len(sanitized.CommentUpdates) == 0 {
		sanitized.CommentUpdates = CommentModeFull
	}
	sanitized.Report.Format = strings.ToLower(strings.TrimSpace(configuration.Report.Format))
	if len(sanitized.Report.Format) == 0 {
		sanitized.Report.Format = defaultReportFormatConstant
	}
	sanitized.Report.Path = strings.TrimSpace(configuration.Report.Path)
	return sanitized
}

// Validate sanitizes the configuration and rejects settings that would make a run unsafe.
func (configuration Configuration) Validate() (Configuration, error) {
	sanitized := configuration.sanitize()

	if len(sanitized.Repository) == 0 {
		return Configuration{}, ValidationError{Field: repositoryConfigurationKeyConstant, Message: repositoryRequiredMessageConstant}
	}
	repositoryParts := strings.Split(sanitized.Repository, repositorySeparatorConstant)
	if len(repositoryParts) != 2 || len(repositoryParts[0]) == 0 || len(repositoryParts[1]) == 0 {
		return Configuration{}, ValidationError{Field: repositoryConfigurationKeyConstant, Message: repositoryFormatMessageConstant}
	}
	if sanitized.DaysBeforeStale < 0 {
		return Configuration{}, ValidationError{Field: daysBeforeStaleConfigurationKeyConstant, Message: negativeThresholdMessageConstant}
	}
	if sanitized.DaysBeforeDelete < 0 {
		return Configuration{}, ValidationError{Field: daysBeforeDeleteConfigurationKeyConstant, Message: negativeThresholdMessageConstant}
	}
	if sanitized.DaysBeforeDelete <= sanitized.DaysBeforeStale {
		return Configuration{}, ValidationError{Field: daysBeforeDeleteConfigurationKeyConstant, Message: deleteBeforeStaleMessageConstant}
	}
	if sanitized.MaxIssues < 0 {
		return Configuration{}, ValidationError{Field: maxIssuesConfigurationKeyConstant, Message: negativeThresholdMessageConstant}
	}
	if len(sanitized.StaleBranchLabel) == 0 {
		return Configuration{}, ValidationError{Field: labelConfigurationKeyConstant, Message: labelRequiredMessageConstant}
	}
	commentMode, commentModeError := ParseCommentMode(string(sanitized.CommentUpdates))
	if commentModeError != nil {
		return Configuration{}, commentModeError
	}
	sanitized.CommentUpdates = commentMode

	return sanitized, nil
}
