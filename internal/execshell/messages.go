package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	operationFailureTemplateConstant        = "Failed to %s (exit code %d%s)"
	operationExecutionFailureTemplate       = "Unable to %s: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	abbreviatedCommitLengthConstant         = 7
)

const (
	githubAPISubcommandNameConstant      = "api"
	githubRepoSubcommandNameConstant     = "repo"
	githubRepoViewSubcommandNameConstant = "view"
	githubMethodFlagConstant             = "--method"
	githubMethodPostConstant             = "POST"
	githubMethodPatchConstant            = "PATCH"
	githubMethodDeleteConstant           = "DELETE"
	githubRateLimitEndpointConstant      = "rate_limit"
	githubRepositoriesPrefixConstant     = "repos/"
	githubBranchesSegmentConstant        = "branches"
	githubCommitsSegmentConstant         = "commits"
	githubCompareSegmentConstant         = "compare"
	githubIssuesSegmentConstant          = "issues"
	githubCommentsSegmentConstant        = "comments"
	githubReferenceHeadsPathConstant     = "git/refs/heads/"
	githubCompareSeparatorConstant       = "..."
	githubQuerySeparatorConstant         = "?"
)

// Each GitHub operation is phrased three ways: progressive for start, past for success,
// and infinitive for the failure templates.
type operationPhrases struct {
	progressive string
	past        string
	infinitive  string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// ShouldLogStartMessage reports whether a start notice is worth printing. Rate-limit
// probes run before every branch and announcing each one drowns the log.
func (formatter CommandMessageFormatter) ShouldLogStartMessage(command ShellCommand) bool {
	if command.Name != CommandGitHub {
		return true
	}
	arguments := command.Details.Arguments
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubAPISubcommandNameConstant {
		return true
	}
	return strings.TrimSpace(arguments[1]) != githubRateLimitEndpointConstant
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGitHub {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	phrases, described := formatter.describeGitHubCommand(command.Details.Arguments)
	if !described {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return phrases.progressive
	case messageStageSuccess:
		return phrases.past
	case messageStageFailure:
		return fmt.Sprintf(operationFailureTemplateConstant, phrases.infinitive, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(operationExecutionFailureTemplate, phrases.infinitive, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubCommand(arguments []string) (operationPhrases, bool) {
	if len(arguments) < 2 {
		return operationPhrases{}, false
	}

	primary := strings.TrimSpace(arguments[0])
	switch primary {
	case githubRepoSubcommandNameConstant:
		if len(arguments) < 3 || strings.TrimSpace(arguments[1]) != githubRepoViewSubcommandNameConstant {
			return operationPhrases{}, false
		}
		repository := formatter.ensureValue(arguments[2])
		return operationPhrases{
			progressive: fmt.Sprintf("Resolving metadata for %s", repository),
			past:        fmt.Sprintf("Resolved metadata for %s", repository),
			infinitive:  fmt.Sprintf("resolve metadata for %s", repository),
		}, true
	case githubAPISubcommandNameConstant:
		return formatter.describeGitHubAPICommand(arguments)
	default:
		return operationPhrases{}, false
	}
}

func (formatter CommandMessageFormatter) describeGitHubAPICommand(arguments []string) (operationPhrases, bool) {
	endpoint := strings.TrimSpace(arguments[1])
	method := strings.ToUpper(strings.TrimSpace(findFlagValue(arguments, githubMethodFlagConstant)))

	if endpoint == githubRateLimitEndpointConstant {
		return operationPhrases{
			progressive: "Checking GitHub API rate limit",
			past:        "Checked GitHub API rate limit",
			infinitive:  "check GitHub API rate limit",
		}, true
	}

	if !strings.HasPrefix(endpoint, githubRepositoriesPrefixConstant) {
		return operationPhrases{}, false
	}

	repository, remainder := formatter.splitRepositoryEndpoint(endpoint)
	remainder = strings.SplitN(remainder, githubQuerySeparatorConstant, 2)[0]
	segments := strings.Split(remainder, "/")

	switch {
	case strings.HasPrefix(remainder, githubReferenceHeadsPathConstant) && method == githubMethodDeleteConstant:
		branch := formatter.ensureValue(strings.TrimPrefix(remainder, githubReferenceHeadsPathConstant))
		return operationPhrases{
			progressive: fmt.Sprintf("Deleting branch %s from %s", branch, repository),
			past:        fmt.Sprintf("Deleted branch %s from %s", branch, repository),
			infinitive:  fmt.Sprintf("delete branch %s from %s", branch, repository),
		}, true
	case segments[0] == githubBranchesSegmentConstant:
		return operationPhrases{
			progressive: fmt.Sprintf("Listing branches for %s", repository),
			past:        fmt.Sprintf("Listed branches for %s", repository),
			infinitive:  fmt.Sprintf("list branches for %s", repository),
		}, true
	case segments[0] == githubCommitsSegmentConstant && len(segments) > 1:
		commit := formatter.abbreviateCommit(segments[1])
		return operationPhrases{
			progressive: fmt.Sprintf("Inspecting commit %s in %s", commit, repository),
			past:        fmt.Sprintf("Inspected commit %s in %s", commit, repository),
			infinitive:  fmt.Sprintf("inspect commit %s in %s", commit, repository),
		}, true
	case segments[0] == githubCompareSegmentConstant && len(segments) > 1:
		base, head := formatter.splitComparison(strings.TrimPrefix(remainder, githubCompareSegmentConstant+"/"))
		return operationPhrases{
			progressive: fmt.Sprintf("Comparing %s with %s in %s", head, base, repository),
			past:        fmt.Sprintf("Compared %s with %s in %s", head, base, repository),
			infinitive:  fmt.Sprintf("compare %s with %s in %s", head, base, repository),
		}, true
	case segments[0] == githubIssuesSegmentConstant:
		return formatter.describeIssueCommand(repository, segments, method)
	default:
		return operationPhrases{}, false
	}
}

func (formatter CommandMessageFormatter) describeIssueCommand(repository string, segments []string, method string) (operationPhrases, bool) {
	switch {
	case len(segments) == 1 && method == githubMethodPostConstant:
		return operationPhrases{
			progressive: fmt.Sprintf("Creating issue in %s", repository),
			past:        fmt.Sprintf("Created issue in %s", repository),
			infinitive:  fmt.Sprintf("create issue in %s", repository),
		}, true
	case len(segments) == 1:
		return operationPhrases{
			progressive: fmt.Sprintf("Listing issues for %s", repository),
			past:        fmt.Sprintf("Listed issues for %s", repository),
			infinitive:  fmt.Sprintf("list issues for %s", repository),
		}, true
	case len(segments) == 3 && segments[2] == githubCommentsSegmentConstant:
		issueNumber := formatter.ensureValue(segments[1])
		return operationPhrases{
			progressive: fmt.Sprintf("Commenting on issue #%s in %s", issueNumber, repository),
			past:        fmt.Sprintf("Commented on issue #%s in %s", issueNumber, repository),
			infinitive:  fmt.Sprintf("comment on issue #%s in %s", issueNumber, repository),
		}, true
	case len(segments) == 2 && method == githubMethodPatchConstant:
		issueNumber := formatter.ensureValue(segments[1])
		return operationPhrases{
			progressive: fmt.Sprintf("Closing issue #%s in %s", issueNumber, repository),
			past:        fmt.Sprintf("Closed issue #%s in %s", issueNumber, repository),
			infinitive:  fmt.Sprintf("close issue #%s in %s", issueNumber, repository),
		}, true
	default:
		return operationPhrases{}, false
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// splitRepositoryEndpoint separates "repos/owner/name/rest" into "owner/name" and "rest".
func (formatter CommandMessageFormatter) splitRepositoryEndpoint(endpoint string) (string, string) {
	trimmed := strings.TrimPrefix(endpoint, githubRepositoriesPrefixConstant)
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 2 {
		return formatter.ensureValue(trimmed), emptyStringConstant
	}
	repository := parts[0] + "/" + parts[1]
	if len(parts) == 2 {
		return repository, emptyStringConstant
	}
	return repository, parts[2]
}

func (formatter CommandMessageFormatter) splitComparison(basehead string) (string, string) {
	parts := strings.SplitN(basehead, githubCompareSeparatorConstant, 2)
	if len(parts) != 2 {
		return formatter.ensureValue(basehead), fallbackUnknownValueLabelConstant
	}
	return formatter.ensureValue(parts[0]), formatter.ensureValue(parts[1])
}

func (formatter CommandMessageFormatter) abbreviateCommit(commit string) string {
	trimmedCommit := strings.TrimSpace(commit)
	if len(trimmedCommit) > abbreviatedCommitLengthConstant {
		return trimmedCommit[:abbreviatedCommitLengthConstant]
	}
	return formatter.ensureValue(trimmedCommit)
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}
