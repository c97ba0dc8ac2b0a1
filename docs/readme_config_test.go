package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/stale-branches/internal/staleness"
	"github.com/temirov/stale-branches/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeConfiguration struct {
	Tools struct {
		StaleBranches staleness.Configuration `mapstructure:"stale_branches"`
	} `mapstructure:"tools"`
}

func readmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func TestReadmeConfigurationLoadsAndValidates(testInstance *testing.T) {
	snippet := readmeConfigurationSnippet(testInstance)

	var parsed map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippet), &parsed))
	require.Contains(testInstance, parsed, "tools")

	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(snippet), 0o600))

	loader := utils.NewConfigurationLoader("config", "yaml", "READMETEST", nil)
	loader.SetDecodeHooks(staleness.CommentModeDecodeHook())

	var configuration readmeConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, staleness.DefaultConfigurationValues("tools.stale_branches"), &configuration)
	require.NoError(testInstance, loadError)

	validated, validationError := configuration.Tools.StaleBranches.Validate()
	require.NoError(testInstance, validationError)
	require.Equal(testInstance, "octo/widgets", validated.Repository)
	require.Equal(testInstance, 90, validated.DaysBeforeStale)
	require.Equal(testInstance, 150, validated.DaysBeforeDelete)
	require.Equal(testInstance, staleness.CommentModeBrief, validated.CommentUpdates)
	require.Equal(testInstance, "json", validated.Report.Format)
}
