package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/stale-branches/internal/staleness"
)

const (
	lastCommitTemplateConstant  = "Last commit was %d days ago"
	activeColorConstant         = lipgloss.Color("2")
	staleColorConstant          = lipgloss.Color("3")
	deleteEligibleColorConstant = lipgloss.Color("1")
)

// BranchPresenter colours branch log lines by classification: green for active,
// yellow for stale and red for branches old enough to delete.
type BranchPresenter struct {
	activeStyle         lipgloss.Style
	staleStyle          lipgloss.Style
	deleteEligibleStyle lipgloss.Style
}

// NewBranchPresenter builds a presenter with the terminal palette colours.
func NewBranchPresenter() BranchPresenter {
	return BranchPresenter{
		activeStyle:         lipgloss.NewStyle().Foreground(activeColorConstant),
		staleStyle:          lipgloss.NewStyle().Foreground(staleColorConstant),
		deleteEligibleStyle: lipgloss.NewStyle().Foreground(deleteEligibleColorConstant),
	}
}

// FormatBranchHeader implements staleness.BranchPresenter.
func (presenter BranchPresenter) FormatBranchHeader(branchName string, classification staleness.Classification) string {
	return presenter.styleFor(classification).Bold(true).Render(branchName)
}

// FormatLastCommit implements staleness.BranchPresenter.
func (presenter BranchPresenter) FormatLastCommit(ageDays int, classification staleness.Classification) string {
	return presenter.styleFor(classification).Render(fmt.Sprintf(lastCommitTemplateConstant, ageDays))
}

func (presenter BranchPresenter) styleFor(classification staleness.Classification) lipgloss.Style {
	switch classification {
	case staleness.ClassificationDeleteEligible:
		return presenter.deleteEligibleStyle
	case staleness.ClassificationStale:
		return presenter.staleStyle
	default:
		return presenter.activeStyle
	}
}
