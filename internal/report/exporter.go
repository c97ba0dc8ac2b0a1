package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/stale-branches/internal/staleness"
	"github.com/temirov/stale-branches/internal/utils"
)

// Format identifies a report encoding.
type Format string

// Supported report formats.
const (
	FormatCSV  Format = Format("csv")
	FormatJSON Format = Format("json")
	FormatYAML Format = Format("yaml")
)

const (
	// GitHubOutputEnvironmentVariable names the file GitHub Actions reads step outputs from.
	GitHubOutputEnvironmentVariable = "GITHUB_OUTPUT"

	csvSerialNumberHeaderConstant       = "s_no"
	csvStaleBranchHeaderConstant        = "stale_branch"
	csvDeletedBranchHeaderConstant      = "deleted_branch"
	staleBranchesOutputNameConstant     = "stale-branches"
	deletedBranchesOutputNameConstant   = "deleted-branches"
	stepOutputTemplateConstant          = "%s=%s\n"
	indentWidthConstant                 = 2
	reportFilePermissionsConstant       = 0o644
	outputFileFlagsConstant             = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	unsupportedFormatTemplateConstant   = "unsupported report format %q (expected csv, json or yaml)"
	reportEncodingErrorTemplateConstant = "unable to encode %s report: %w"
	reportFileErrorTemplateConstant     = "unable to write report file %s: %w"
	stepOutputErrorTemplateConstant     = "unable to write GitHub Actions outputs: %w"
)

// UnsupportedFormatError reports a report format that has no encoder.
type UnsupportedFormatError struct {
	Format string
}

// Error describes the unsupported format.
func (formatError UnsupportedFormatError) Error() string {
	return fmt.Sprintf(unsupportedFormatTemplateConstant, formatError.Format)
}

// Exporter writes run reports in one format to standard output or a file and
// mirrors the branch lists into GitHub Actions step outputs when available.
type Exporter struct {
	format            Format
	path              string
	output            io.Writer
	environmentLookup func(string) (string, bool)
}

// NewExporter validates the report configuration. An empty path selects output.
func NewExporter(configuration staleness.ReportConfiguration, output io.Writer) (*Exporter, error) {
	format, formatError := ParseFormat(configuration.Format)
	if formatError != nil {
		return nil, formatError
	}
	if output == nil {
		output = os.Stdout
	}
	return &Exporter{
		format:            format,
		path:              strings.TrimSpace(configuration.Path),
		output:            output,
		environmentLookup: os.LookupEnv,
	}, nil
}

// NewStalenessExporter adapts NewExporter to staleness.ExporterFactory.
func NewStalenessExporter(configuration staleness.ReportConfiguration, output io.Writer) (staleness.ReportExporter, error) {
	exporter, exporterError := NewExporter(configuration, output)
	if exporterError != nil {
		return nil, exporterError
	}
	return exporter, nil
}

// ParseFormat normalises a format name. Empty selects CSV.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatYAML:
		return normalized, nil
	default:
		return "", UnsupportedFormatError{Format: value}
	}
}

// Export encodes the report and publishes the step outputs.
func (exporter *Exporter) Export(report staleness.Report) error {
	if writeError := exporter.writeReport(report); writeError != nil {
		return writeError
	}
	return exporter.writeStepOutputs(report)
}

func (exporter *Exporter) writeReport(report staleness.Report) error {
	if len(exporter.path) == 0 {
		return Encode(utils.NewFlushingWriter(exporter.output), exporter.format, report)
	}

	reportFile, openError := os.Create(exporter.path)
	if openError != nil {
		return fmt.Errorf(reportFileErrorTemplateConstant, exporter.path, openError)
	}
	defer reportFile.Close()

	bufferedWriter := bufio.NewWriter(reportFile)
	if encodeError := Encode(bufferedWriter, exporter.format, report); encodeError != nil {
		return encodeError
	}
	if flushError := bufferedWriter.Flush(); flushError != nil {
		return fmt.Errorf(reportFileErrorTemplateConstant, exporter.path, flushError)
	}
	return nil
}

// writeStepOutputs appends both branch lists as JSON arrays to the GITHUB_OUTPUT file.
func (exporter *Exporter) writeStepOutputs(report staleness.Report) error {
	outputPath, available := exporter.environmentLookup(GitHubOutputEnvironmentVariable)
	outputPath = strings.TrimSpace(outputPath)
	if !available || len(outputPath) == 0 {
		return nil
	}

	outputFile, openError := os.OpenFile(outputPath, outputFileFlagsConstant, reportFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(stepOutputErrorTemplateConstant, openError)
	}
	defer outputFile.Close()

	for _, output := range []struct {
		name     string
		branches []string
	}{
		{name: staleBranchesOutputNameConstant, branches: report.StaleBranches},
		{name: deletedBranchesOutputNameConstant, branches: report.DeletedBranches},
	} {
		encodedBranches, encodeError := json.Marshal(nonNilBranches(output.branches))
		if encodeError != nil {
			return fmt.Errorf(stepOutputErrorTemplateConstant, encodeError)
		}
		if _, writeError := fmt.Fprintf(outputFile, stepOutputTemplateConstant, output.name, encodedBranches); writeError != nil {
			return fmt.Errorf(stepOutputErrorTemplateConstant, writeError)
		}
	}
	return nil
}

// Encode writes report to writer in format.
func Encode(writer io.Writer, format Format, report staleness.Report) error {
	var encodeError error
	switch format {
	case FormatCSV:
		encodeError = encodeCSV(writer, report)
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", strings.Repeat(" ", indentWidthConstant))
		encodeError = encoder.Encode(report)
	case FormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(indentWidthConstant)
		encodeError = encoder.Encode(report)
		if encodeError == nil {
			encodeError = encoder.Close()
		}
	default:
		return UnsupportedFormatError{Format: string(format)}
	}
	if encodeError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, format, encodeError)
	}
	return nil
}

// encodeCSV pairs stale and deleted branches row by row; the shorter list leaves its column empty.
func encodeCSV(writer io.Writer, report staleness.Report) error {
	csvWriter := csv.NewWriter(writer)
	if headerError := csvWriter.Write([]string{csvSerialNumberHeaderConstant, csvStaleBranchHeaderConstant, csvDeletedBranchHeaderConstant}); headerError != nil {
		return headerError
	}

	rowCount := max(len(report.StaleBranches), len(report.DeletedBranches))
	for rowIndex := 0; rowIndex < rowCount; rowIndex++ {
		record := []string{strconv.Itoa(rowIndex + 1), valueAt(report.StaleBranches, rowIndex), valueAt(report.DeletedBranches, rowIndex)}
		if rowError := csvWriter.Write(record); rowError != nil {
			return rowError
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func valueAt(values []string, index int) string {
	if index < len(values) {
		return values[index]
	}
	return ""
}

func nonNilBranches(branches []string) []string {
	if branches == nil {
		return []string{}
	}
	return branches
}
