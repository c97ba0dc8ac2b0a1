package githubcli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	labelFieldNameConstant                = "label"
	titleFieldNameConstant                = "title"
	issueNumberFieldNameConstant          = "issue_number"
	commentBodyFieldNameConstant          = "body"
	issuesResourcePathConstant            = "issues"
	issueListResourceTemplateConstant     = "issues?%s"
	issueResourceTemplateConstant         = "issues/%d"
	issueCommentsResourceTemplateConstant = "issues/%d/comments"
	issueListStateParameterConstant       = "state"
	issueListLabelsParameterConstant      = "labels"
	issueListPageSizeParameterConstant    = "per_page"
	issueListPageSizeValueConstant        = "100"
	listIssuesOperationNameConstant       = OperationName("ListIssues")
	createIssueOperationNameConstant      = OperationName("CreateIssue")
	commentOnIssueOperationNameConstant   = OperationName("CommentOnIssue")
	closeIssueOperationNameConstant       = OperationName("CloseIssue")
)

// IssueState describes acceptable GitHub issue states.
type IssueState string

// Issue state enumerations.
const (
	IssueStateOpen   IssueState = IssueState("open")
	IssueStateClosed IssueState = IssueState("closed")
)

// Issue represents the issue fields the tracker relies on.
type Issue struct {
	Number int
	Title  string
	State  IssueState
}

// IssueListOptions configures ListIssues queries.
type IssueListOptions struct {
	Label string
	State IssueState
}

// IssueRequest describes an issue to open.
type IssueRequest struct {
	Title  string
	Body   string
	Labels []string
}

// ListIssues enumerates issues carrying the label across all pages. Pull requests are excluded.
func (client *Client) ListIssues(executionContext context.Context, repository string, options IssueListOptions) ([]Issue, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return nil, validationError
	}
	if len(strings.TrimSpace(options.Label)) == 0 {
		return nil, InvalidInputError{FieldName: labelFieldNameConstant, Message: requiredValueMessageConstant}
	}

	state := options.State
	if len(state) == 0 {
		state = IssueStateOpen
	}

	query := url.Values{}
	query.Set(issueListStateParameterConstant, string(state))
	query.Set(issueListLabelsParameterConstant, options.Label)
	query.Set(issueListPageSizeParameterConstant, issueListPageSizeValueConstant)

	endpoint := repositoryEndpoint(repositoryIdentifier, fmt.Sprintf(issueListResourceTemplateConstant, query.Encode()))
	output, executionError := client.executeAPI(executionContext, listIssuesOperationNameConstant, endpoint, paginateFlagConstant)
	if executionError != nil {
		return nil, executionError
	}

	type issueResponse struct {
		Number      int              `json:"number"`
		Title       string           `json:"title"`
		State       string           `json:"state"`
		PullRequest *json.RawMessage `json:"pull_request"`
	}

	responses, decodingError := decodePaginatedArray[issueResponse](listIssuesOperationNameConstant, output)
	if decodingError != nil {
		return nil, decodingError
	}

	issues := make([]Issue, 0, len(responses))
	for _, response := range responses {
		if response.PullRequest != nil {
			continue
		}
		issues = append(issues, Issue{Number: response.Number, Title: response.Title, State: IssueState(response.State)})
	}
	return issues, nil
}

// CreateIssue opens a new issue and returns it as GitHub recorded it.
func (client *Client) CreateIssue(executionContext context.Context, repository string, request IssueRequest) (Issue, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return Issue{}, validationError
	}
	if len(strings.TrimSpace(request.Title)) == 0 {
		return Issue{}, InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Title  string   `json:"title"`
		Body   string   `json:"body"`
		Labels []string `json:"labels,omitempty"`
	}{Title: request.Title, Body: request.Body, Labels: request.Labels}

	output, executionError := client.executeAPIWithPayload(executionContext, createIssueOperationNameConstant, repositoryEndpoint(repositoryIdentifier, issuesResourcePathConstant), httpMethodPostConstant, payload)
	if executionError != nil {
		return Issue{}, executionError
	}

	return decodeIssue(createIssueOperationNameConstant, output)
}

// CommentOnIssue posts a comment on an existing issue.
func (client *Client) CommentOnIssue(executionContext context.Context, repository string, issueNumber int, body string) error {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return validationError
	}
	if issueNumber <= 0 {
		return InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if len(strings.TrimSpace(body)) == 0 {
		return InvalidInputError{FieldName: commentBodyFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Body string `json:"body"`
	}{Body: body}

	endpoint := repositoryEndpoint(repositoryIdentifier, fmt.Sprintf(issueCommentsResourceTemplateConstant, issueNumber))
	_, executionError := client.executeAPIWithPayload(executionContext, commentOnIssueOperationNameConstant, endpoint, httpMethodPostConstant, payload)
	return executionError
}

// CloseIssue closes an issue and returns the state GitHub reports afterwards.
func (client *Client) CloseIssue(executionContext context.Context, repository string, issueNumber int) (IssueState, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return "", validationError
	}
	if issueNumber <= 0 {
		return "", InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}

	payload := struct {
		State IssueState `json:"state"`
	}{State: IssueStateClosed}

	endpoint := repositoryEndpoint(repositoryIdentifier, fmt.Sprintf(issueResourceTemplateConstant, issueNumber))
	output, executionError := client.executeAPIWithPayload(executionContext, closeIssueOperationNameConstant, endpoint, httpMethodPatchConstant, payload)
	if executionError != nil {
		return "", executionError
	}

	issue, decodingError := decodeIssue(closeIssueOperationNameConstant, output)
	if decodingError != nil {
		return "", decodingError
	}
	return issue.State, nil
}

func decodeIssue(operation OperationName, output string) (Issue, error) {
	var response struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		State  string `json:"state"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return Issue{}, ResponseDecodingError{Operation: operation, Cause: decodingError}
	}
	return Issue{Number: response.Number, Title: response.Title, State: IssueState(response.State)}, nil
}
