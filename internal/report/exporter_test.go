package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/stale-branches/internal/report"
	"github.com/temirov/stale-branches/internal/staleness"
)

func sampleReport() staleness.Report {
	return staleness.Report{
		RunID:                "run-42",
		Repository:           "octo/widgets",
		StaleBranches:        []string{"feature/a", "feature/b"},
		DeletedBranches:      []string{"feature/c"},
		OrphanedIssuesClosed: []int{7},
		AssessedBranches:     4,
		TotalBranches:        4,
	}
}

func TestEncodeFormats(testInstance *testing.T) {
	testCases := []struct {
		name     string
		format   report.Format
		expected string
	}{
		{
			name:     "csv",
			format:   report.FormatCSV,
			expected: "s_no,stale_branch,deleted_branch\n1,feature/a,feature/c\n2,feature/b,\n",
		},
		{
			name:   "json",
			format: report.FormatJSON,
			expected: `{
  "run_id": "run-42",
  "repository": "octo/widgets",
  "dry_run": false,
  "stale_branches": [
    "feature/a",
    "feature/b"
  ],
  "deleted_branches": [
    "feature/c"
  ],
  "orphaned_issues_closed": [
    7
  ],
  "assessed_branches": 4,
  "total_branches": 4,
  "rate_limit_aborted": false
}
`,
		},
		{
			name:   "yaml",
			format: report.FormatYAML,
			expected: `run_id: run-42
repository: octo/widgets
dry_run: false
stale_branches:
  - feature/a
  - feature/b
deleted_branches:
  - feature/c
orphaned_issues_closed:
  - 7
assessed_branches: 4
total_branches: 4
rate_limit_aborted: false
`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var buffer bytes.Buffer
			require.NoError(subTest, report.Encode(&buffer, testCase.format, sampleReport()))
			require.Equal(subTest, testCase.expected, buffer.String())
		})
	}
}

func TestParseFormat(testInstance *testing.T) {
	format, parseError := report.ParseFormat(" YAML ")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, report.FormatYAML, format)

	format, parseError = report.ParseFormat("")
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, report.FormatCSV, format)

	_, parseError = report.ParseFormat("xml")
	var formatError report.UnsupportedFormatError
	require.ErrorAs(testInstance, parseError, &formatError)
	require.Equal(testInstance, "xml", formatError.Format)
}

func TestExporterWritesFileAndStepOutputs(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	reportPath := filepath.Join(temporaryDirectory, "report.json")
	stepOutputPath := filepath.Join(temporaryDirectory, "github_output")
	require.NoError(testInstance, os.WriteFile(stepOutputPath, []byte("previous=value\n"), 0o600))
	testInstance.Setenv(report.GitHubOutputEnvironmentVariable, stepOutputPath)

	var standardOutput bytes.Buffer
	exporter, exporterError := report.NewExporter(staleness.ReportConfiguration{Format: "json", Path: reportPath}, &standardOutput)
	require.NoError(testInstance, exporterError)

	require.NoError(testInstance, exporter.Export(sampleReport()))

	require.Empty(testInstance, standardOutput.String())
	reportContent, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(reportContent), `"run_id": "run-42"`)

	stepOutputContent, stepReadError := os.ReadFile(stepOutputPath)
	require.NoError(testInstance, stepReadError)
	require.Equal(testInstance, "previous=value\nstale-branches=[\"feature/a\",\"feature/b\"]\ndeleted-branches=[\"feature/c\"]\n", string(stepOutputContent))
}

func TestExporterWritesToOutputWithoutStepOutputs(testInstance *testing.T) {
	testInstance.Setenv(report.GitHubOutputEnvironmentVariable, "")

	var standardOutput bytes.Buffer
	exporter, exporterError := report.NewStalenessExporter(staleness.ReportConfiguration{}, &standardOutput)
	require.NoError(testInstance, exporterError)

	require.NoError(testInstance, exporter.Export(staleness.Report{}))
	require.Equal(testInstance, "s_no,stale_branch,deleted_branch\n", standardOutput.String())
}

func TestNewStalenessExporterRejectsUnknownFormat(testInstance *testing.T) {
	exporter, exporterError := report.NewStalenessExporter(staleness.ReportConfiguration{Format: "toml"}, nil)

	require.Nil(testInstance, exporter)
	require.ErrorAs(testInstance, exporterError, &report.UnsupportedFormatError{})
}
