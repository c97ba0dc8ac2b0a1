package staleness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/elapsed"
	"github.com/temirov/stale-branches/internal/githubcli"
)

const (
	hostClientMissingMessageConstant     = "GitHub host client not configured"
	rateLimitExceededMessageConstant     = "GitHub API usage exceeded the safety threshold"
	branchListingFailedMessageConstant   = "unable to list branches"
	branchListingErrorTemplateConstant   = "%w: %w"
	runCancelledErrorTemplateConstant    = "reconciliation cancelled: %w"
	comparisonReasonProtected            = "branch is protected"
	comparisonReasonBase                 = "branch is the comparison base"
	comparisonReasonDisabled             = "branch comparison disabled"
	comparisonReasonUnavailable          = "comparison unavailable"
	comparisonReasonBaseUnavailable      = "comparison base unavailable"
	comparisonReasonAheadTemplate        = "%d commits not in %s"
	comparisonReasonMerged               = "no commits outside %s"
	logFieldRunIdentifierConstant        = "run_id"
	logFieldRepositoryConstant           = "repository"
	logFieldBranchConstant               = "branch"
	logFieldAgeDaysConstant              = "age_days"
	logFieldClassificationConstant       = "classification"
	logFieldIssueNumberConstant          = "issue_number"
	logFieldIssueTitleConstant           = "issue_title"
	logFieldRateLimitUsedConstant        = "rate_limit_used_percent"
	logFieldBranchCountConstant          = "branch_count"
	logFieldIssueCountConstant           = "issue_count"
	logFieldAssessedCountConstant        = "assessed_branches"
	logFieldStaleCountConstant           = "stale_branches"
	logFieldDeletedCountConstant         = "deleted_branches"
	logFieldOrphanCountConstant          = "orphaned_issues"
	logFieldComparisonBaseConstant       = "comparison_base"
	logFieldReasonConstant               = "reason"
	logFieldDryRunConstant               = "dry_run"
	logFieldCommentModeConstant          = "comment_mode"
	logFieldIssueBudgetRemainingConstant = "issue_budget_remaining"
	logFieldIssueStateConstant           = "issue_state"

	runStartedMessageConstant             = "Reconciling stale branches"
	branchListFailedMessageConstant       = "Unable to list branches; run stopped before touching tracking issues"
	issueListFailedMessageConstant        = "Unable to list tracking issues; no new issues will be created"
	branchesLoadedMessageConstant         = "Branches loaded"
	issuesLoadedMessageConstant           = "Tracking issues loaded"
	rateLimitReadFailedMessageConstant    = "Unable to read the API rate limit; continuing"
	rateLimitBreakMessageConstant         = "Exiting to avoid rate limit violation"
	commitLookupFailedMessageConstant     = "Unable to read the last commit; branch skipped"
	comparisonBaseResolvedMessageConstant = "Comparison base resolved"
	comparisonBaseFailedMessageConstant   = "Unable to resolve the default branch"
	comparisonFailedMessageConstant       = "Unable to compare branch; keeping it"
	branchPreservedMessageConstant        = "Branch preserved despite age"
	issueCreatedMessageConstant           = "Created tracking issue"
	issueCreateFailedMessageConstant      = "Unable to create tracking issue"
	issueCreatePlannedMessageConstant     = "Would create tracking issue"
	issueBudgetExhaustedMessageConstant   = "Issue budget exhausted; tracking issue not created"
	issueCommentedMessageConstant         = "Updated tracking issue"
	issueCommentFailedMessageConstant     = "Unable to comment on tracking issue"
	issueCommentPlannedMessageConstant    = "Would comment on tracking issue"
	issueCommentSkippedMessageConstant    = "Comment updates disabled; tracking issue left unchanged"
	issueClosedMessageConstant            = "Closed tracking issue"
	issueCloseFailedMessageConstant       = "Unable to close tracking issue"
	issueClosePlannedMessageConstant      = "Would close tracking issue"
	branchActiveAgainMessageConstant      = "Branch is active again"
	branchDeletedMessageConstant          = "Deleted branch"
	branchDeleteFailedMessageConstant     = "Unable to delete branch; tracking issue left open"
	branchDeletePlannedMessageConstant    = "Would delete branch"
	branchAwaitingNoticeMessageConstant   = "Branch past the deletion threshold has no tracking issue yet; deletion deferred"
	orphanedIssuesMessageConstant         = "Closing orphaned tracking issues"
	totalAssessedMessageConstant          = "Assessment complete"
	totalDeletedMessageConstant           = "Deletion summary"
)

var (
	// ErrHostClientNotConfigured indicates the engine was constructed without a GitHub client.
	ErrHostClientNotConfigured = errors.New(hostClientMissingMessageConstant)
	// ErrRateLimitExceeded marks a run stopped at the rate-limit guard. The partial report is still returned.
	ErrRateLimitExceeded = errors.New(rateLimitExceededMessageConstant)
	// ErrBranchListingFailed marks a run that could not list branches. No tracking issue is touched.
	ErrBranchListingFailed = errors.New(branchListingFailedMessageConstant)
)

// EngineDependencies describes the collaborators of a reconciliation run.
type EngineDependencies struct {
	Logger     *zap.Logger
	HostClient HostClient
	Presenter  BranchPresenter
	Clock      Clock
}

// Engine reconciles tracking issues against the branches of one repository.
type Engine struct {
	logger        *zap.Logger
	client        HostClient
	presenter     BranchPresenter
	clock         Clock
	configuration Configuration
}

// comparisonBaseline is the branch deletions are checked against.
// The baseline branch itself is never deleted.
type comparisonBaseline struct {
	branch  string
	compare bool
}

// branchAssessment is what the engine learned about a branch before acting on it.
type branchAssessment struct {
	branch         githubcli.Branch
	ageDays        int
	classification Classification
	title          string
	matches        []TrackingIssue
	committerLogin string
}

// NewEngine validates configuration and constructs an Engine.
func NewEngine(dependencies EngineDependencies, configuration Configuration) (*Engine, error) {
	if dependencies.HostClient == nil {
		return nil, ErrHostClientNotConfigured
	}

	validatedConfiguration, validationError := configuration.Validate()
	if validationError != nil {
		return nil, validationError
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	presenter := dependencies.Presenter
	if presenter == nil {
		presenter = PlainBranchPresenter{}
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &Engine{
		logger:        logger,
		client:        dependencies.HostClient,
		presenter:     presenter,
		clock:         clock,
		configuration: validatedConfiguration,
	}, nil
}

// Run walks every branch once, then closes orphaned tracking issues.
// It returns ErrRateLimitExceeded alongside the partial report when the guard trips and
// ErrBranchListingFailed when branches cannot be listed.
func (engine *Engine) Run(executionContext context.Context, runIdentifier string) (Report, error) {
	configuration := engine.configuration
	report := newReport(runIdentifier, configuration)
	logger := engine.logger.With(
		zap.String(logFieldRunIdentifierConstant, runIdentifier),
		zap.String(logFieldRepositoryConstant, configuration.Repository),
	)
	logger.Info(
		runStartedMessageConstant,
		zap.Bool(logFieldDryRunConstant, configuration.DryRun),
		zap.String(logFieldCommentModeConstant, string(configuration.CommentUpdates)),
	)

	branches, branchListError := engine.loadBranches(executionContext, logger)
	if branchListError != nil {
		return report, fmt.Errorf(branchListingErrorTemplateConstant, ErrBranchListingFailed, branchListError)
	}
	report.TotalBranches = len(branches)

	openIssues, issueListError := engine.loadOpenIssues(executionContext, logger)
	workingSet := NewIssueWorkingSet(trackingIssuesFrom(openIssues))
	budget := NewIssueBudget(issueBudgetFromListing(configuration.MaxIssues, openIssues, issueListError, logger))
	baseline := engine.resolveComparisonBaseline(executionContext, logger)

	for _, branch := range branches {
		if contextError := executionContext.Err(); contextError != nil {
			return report, fmt.Errorf(runCancelledErrorTemplateConstant, contextError)
		}
		if engine.rateLimitExceeded(executionContext, logger) {
			report.RateLimitAborted = true
			return report, ErrRateLimitExceeded
		}

		branchLogger := logger.With(zap.String(logFieldBranchConstant, branch.Name))
		if engine.reconcileBranch(executionContext, branchLogger, branch, workingSet, budget, baseline, &report) {
			report.AssessedBranches++
		}
	}

	if workingSet.Len() > 0 {
		logger.Info(orphanedIssuesMessageConstant, zap.Int(logFieldOrphanCountConstant, workingSet.Len()))
		for _, orphan := range workingSet.Remaining() {
			if contextError := executionContext.Err(); contextError != nil {
				return report, fmt.Errorf(runCancelledErrorTemplateConstant, contextError)
			}
			if engine.rateLimitExceeded(executionContext, logger) {
				report.RateLimitAborted = true
				return report, ErrRateLimitExceeded
			}
			if engine.closeIssue(executionContext, logger, orphan).Closed {
				report.OrphanedIssuesClosed = append(report.OrphanedIssuesClosed, orphan.Number)
			}
		}
	}

	logger.Info(
		totalAssessedMessageConstant,
		zap.Int(logFieldAssessedCountConstant, report.AssessedBranches),
		zap.Int(logFieldBranchCountConstant, report.TotalBranches),
		zap.Int(logFieldStaleCountConstant, len(report.StaleBranches)),
	)
	logger.Info(totalDeletedMessageConstant, zap.Int(logFieldDeletedCountConstant, len(report.DeletedBranches)))

	return report, nil
}

// reconcileBranch applies the per-branch actions and reports whether the branch was assessed.
// Its matching issues leave the working set either way.
func (engine *Engine) reconcileBranch(executionContext context.Context, logger *zap.Logger, branch githubcli.Branch, workingSet *IssueWorkingSet, budget *IssueBudget, baseline comparisonBaseline, report *Report) bool {
	configuration := engine.configuration
	title := IssueTitle(branch.Name)
	defer workingSet.Remove(title)

	commit, commitError := engine.client.ResolveCommit(executionContext, configuration.Repository, branch.CommitSHA)
	if commitError != nil {
		logger.Error(commitLookupFailedMessageConstant, zap.Error(commitError))
		return false
	}

	assessment := branchAssessment{
		branch:         branch,
		ageDays:        elapsed.DaysSince(engine.clock.Now(), commit.CommitterDate),
		title:          title,
		matches:        workingSet.Match(title),
		committerLogin: UnknownCommitterLogin,
	}
	assessment.classification = Classify(assessment.ageDays, configuration.DaysBeforeStale, configuration.DaysBeforeDelete)
	if configuration.TagLastCommitter && len(commit.CommitterLogin) > 0 {
		assessment.committerLogin = commit.CommitterLogin
	}

	logger.Info(engine.presenter.FormatBranchHeader(branch.Name, assessment.classification))
	logger.Info(
		engine.presenter.FormatLastCommit(assessment.ageDays, assessment.classification),
		zap.Int(logFieldAgeDaysConstant, assessment.ageDays),
		zap.String(logFieldClassificationConstant, string(assessment.classification)),
	)

	comparison := BranchComparison{}
	if assessment.classification == ClassificationDeleteEligible {
		comparison = engine.assessComparison(executionContext, logger, branch, baseline)
	}

	if assessment.classification.IsStale() && len(assessment.matches) == 0 {
		engine.openTrackingIssue(executionContext, logger, assessment, budget, report)
	}

	if assessment.classification == ClassificationActive {
		for _, issue := range assessment.matches {
			logger.Info(branchActiveAgainMessageConstant, zap.Int(logFieldIssueNumberConstant, issue.Number))
			engine.closeIssue(executionContext, logger, issue)
		}
	}

	if assessment.classification.IsStale() && len(assessment.matches) > 0 {
		engine.updateTrackingIssues(executionContext, logger, assessment, report)
	}

	if assessment.classification == ClassificationDeleteEligible {
		switch {
		case comparison.Save:
			logger.Info(branchPreservedMessageConstant, zap.String(logFieldReasonConstant, comparison.Reason))
		case len(assessment.matches) == 0:
			logger.Info(branchAwaitingNoticeMessageConstant)
		default:
			engine.deleteBranch(executionContext, logger, assessment, report)
		}
	}

	return true
}

func (engine *Engine) openTrackingIssue(executionContext context.Context, logger *zap.Logger, assessment branchAssessment, budget *IssueBudget, report *Report) {
	if budget.Remaining() <= 0 {
		logger.Info(issueBudgetExhaustedMessageConstant)
		return
	}

	configuration := engine.configuration
	request := githubcli.IssueRequest{
		Title:  assessment.title,
		Body:   BuildIssueBody(engine.issueTextDetails(assessment)),
		Labels: []string{configuration.StaleBranchLabel},
	}

	if configuration.DryRun {
		budget.Consume()
		logger.Info(issueCreatePlannedMessageConstant, zap.String(logFieldIssueTitleConstant, request.Title), zap.Int(logFieldIssueBudgetRemainingConstant, budget.Remaining()))
		report.recordStale(assessment.branch.Name)
		return
	}

	issue, createError := engine.client.CreateIssue(executionContext, configuration.Repository, request)
	if createError != nil {
		logger.Error(issueCreateFailedMessageConstant, zap.String(logFieldIssueTitleConstant, request.Title), zap.Error(createError))
		return
	}

	budget.Consume()
	logger.Info(
		issueCreatedMessageConstant,
		zap.Int(logFieldIssueNumberConstant, issue.Number),
		zap.String(logFieldIssueTitleConstant, request.Title),
		zap.Int(logFieldIssueBudgetRemainingConstant, budget.Remaining()),
	)
	report.recordStale(assessment.branch.Name)
}

func (engine *Engine) updateTrackingIssues(executionContext context.Context, logger *zap.Logger, assessment branchAssessment, report *Report) {
	configuration := engine.configuration
	comment := BuildIssueComment(engine.issueTextDetails(assessment), configuration.CommentUpdates)
	if len(comment) == 0 {
		logger.Info(issueCommentSkippedMessageConstant)
		report.recordStale(assessment.branch.Name)
		return
	}

	for _, issue := range assessment.matches {
		issueLogger := logger.With(zap.Int(logFieldIssueNumberConstant, issue.Number))
		if configuration.DryRun {
			issueLogger.Info(issueCommentPlannedMessageConstant)
			report.recordStale(assessment.branch.Name)
			continue
		}
		if commentError := engine.client.CommentOnIssue(executionContext, configuration.Repository, issue.Number, comment); commentError != nil {
			issueLogger.Error(issueCommentFailedMessageConstant, zap.Error(commentError))
			continue
		}
		issueLogger.Info(issueCommentedMessageConstant)
		report.recordStale(assessment.branch.Name)
	}
}

// deleteBranch removes the branch and closes its tracking issues. A failed deletion leaves the issues open.
func (engine *Engine) deleteBranch(executionContext context.Context, logger *zap.Logger, assessment branchAssessment, report *Report) {
	configuration := engine.configuration
	if configuration.DryRun {
		logger.Info(branchDeletePlannedMessageConstant)
	} else {
		if deleteError := engine.client.DeleteBranch(executionContext, configuration.Repository, assessment.branch.Name); deleteError != nil {
			logger.Error(branchDeleteFailedMessageConstant, zap.Error(deleteError))
			return
		}
		logger.Info(branchDeletedMessageConstant)
	}

	for _, issue := range assessment.matches {
		engine.closeIssue(executionContext, logger, issue)
	}
	report.recordDeleted(assessment.branch.Name)
}

// closeIssue never fails the run; an unsuccessful close is reported as Closed == false.
func (engine *Engine) closeIssue(executionContext context.Context, logger *zap.Logger, issue TrackingIssue) CloseResult {
	issueLogger := logger.With(zap.Int(logFieldIssueNumberConstant, issue.Number), zap.String(logFieldIssueTitleConstant, issue.Title))
	if engine.configuration.DryRun {
		issueLogger.Info(issueClosePlannedMessageConstant)
		return CloseResult{Closed: true}
	}

	state, closeError := engine.client.CloseIssue(executionContext, engine.configuration.Repository, issue.Number)
	if closeError != nil {
		issueLogger.Error(issueCloseFailedMessageConstant, zap.Error(closeError))
		return CloseResult{}
	}
	if state != githubcli.IssueStateClosed {
		issueLogger.Warn(issueCloseFailedMessageConstant, zap.String(logFieldIssueStateConstant, string(state)))
		return CloseResult{}
	}

	issueLogger.Info(issueClosedMessageConstant)
	return CloseResult{Closed: true}
}

func (engine *Engine) assessComparison(executionContext context.Context, logger *zap.Logger, branch githubcli.Branch, baseline comparisonBaseline) BranchComparison {
	switch {
	case branch.Protected:
		return BranchComparison{Save: true, Reason: comparisonReasonProtected}
	case len(baseline.branch) > 0 && branch.Name == baseline.branch:
		return BranchComparison{Save: true, Reason: comparisonReasonBase}
	case !baseline.compare:
		return BranchComparison{Save: false, Reason: comparisonReasonDisabled}
	case len(baseline.branch) == 0:
		return BranchComparison{Save: true, Reason: comparisonReasonBaseUnavailable}
	}

	comparison, compareError := engine.client.CompareBranches(executionContext, engine.configuration.Repository, baseline.branch, branch.Name)
	if compareError != nil {
		logger.Warn(comparisonFailedMessageConstant, zap.String(logFieldComparisonBaseConstant, baseline.branch), zap.Error(compareError))
		return BranchComparison{Save: true, Reason: comparisonReasonUnavailable}
	}
	if comparison.HasUniqueCommits() {
		return BranchComparison{Save: true, Reason: fmt.Sprintf(comparisonReasonAheadTemplate, comparison.AheadBy, baseline.branch)}
	}
	return BranchComparison{Save: false, Reason: fmt.Sprintf(comparisonReasonMerged, baseline.branch)}
}

func (engine *Engine) resolveComparisonBaseline(executionContext context.Context, logger *zap.Logger) comparisonBaseline {
	configuration := engine.configuration
	if len(configuration.CompareBranches) > 0 && !configuration.ComparisonDisabled() {
		logger.Info(comparisonBaseResolvedMessageConstant, zap.String(logFieldComparisonBaseConstant, configuration.CompareBranches))
		return comparisonBaseline{branch: configuration.CompareBranches, compare: true}
	}

	baseline := comparisonBaseline{compare: !configuration.ComparisonDisabled()}
	metadata, metadataError := engine.client.ResolveRepoMetadata(executionContext, configuration.Repository)
	if metadataError != nil {
		logger.Warn(comparisonBaseFailedMessageConstant, zap.Error(metadataError))
		return baseline
	}
	baseline.branch = metadata.DefaultBranch
	logger.Info(comparisonBaseResolvedMessageConstant, zap.String(logFieldComparisonBaseConstant, baseline.branch))
	return baseline
}

func (engine *Engine) rateLimitExceeded(executionContext context.Context, logger *zap.Logger) bool {
	rateLimit, rateLimitError := engine.client.ResolveRateLimit(executionContext)
	if rateLimitError != nil {
		logger.Warn(rateLimitReadFailedMessageConstant, zap.Error(rateLimitError))
		return false
	}

	status := RateLimitStatus{Used: rateLimit.UsedPercentage()}
	if rateLimit.ExceedsPercentage(RateLimitThresholdPercentage) {
		logger.Error(rateLimitBreakMessageConstant, zap.Int(logFieldRateLimitUsedConstant, status.Used))
		return true
	}
	return false
}

func (engine *Engine) loadBranches(executionContext context.Context, logger *zap.Logger) ([]githubcli.Branch, error) {
	branches, listError := engine.client.ListBranches(executionContext, engine.configuration.Repository)
	if listError != nil {
		logger.Error(branchListFailedMessageConstant, zap.Error(listError))
		return nil, listError
	}
	logger.Info(branchesLoadedMessageConstant, zap.Int(logFieldBranchCountConstant, len(branches)))
	return branches, nil
}

// loadOpenIssues lists the labelled open issues once; the working set and the issue budget share the result.
func (engine *Engine) loadOpenIssues(executionContext context.Context, logger *zap.Logger) ([]githubcli.Issue, error) {
	issues, listError := engine.client.ListIssues(executionContext, engine.configuration.Repository, githubcli.IssueListOptions{
		Label: engine.configuration.StaleBranchLabel,
		State: githubcli.IssueStateOpen,
	})
	if listError != nil {
		logger.Error(issueListFailedMessageConstant, zap.Error(listError))
		return nil, listError
	}
	logger.Info(issuesLoadedMessageConstant, zap.Int(logFieldIssueCountConstant, len(issues)))
	return issues, nil
}

func trackingIssuesFrom(issues []githubcli.Issue) []TrackingIssue {
	trackingIssues := make([]TrackingIssue, 0, len(issues))
	for _, issue := range issues {
		trackingIssues = append(trackingIssues, TrackingIssue{Title: issue.Title, Number: issue.Number})
	}
	return trackingIssues
}

func (engine *Engine) issueTextDetails(assessment branchAssessment) IssueTextDetails {
	return IssueTextDetails{
		BranchName:       assessment.branch.Name,
		AgeDays:          assessment.ageDays,
		CommitterLogin:   assessment.committerLogin,
		TagLastCommitter: engine.configuration.TagLastCommitter,
		DaysBeforeDelete: engine.configuration.DaysBeforeDelete,
		Label:            engine.configuration.StaleBranchLabel,
	}
}
