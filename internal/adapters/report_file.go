package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"resengine/internal/ports"
	"resengine/internal/types"
)

// ReportFileAdapter writes YAML reports into an output directory.
type ReportFileAdapter struct {
	Dir string
}

func NewReportFileAdapter(dir string) ReportFileAdapter {
	return ReportFileAdapter{Dir: dir}
}

func (a ReportFileAdapter) WriteValueReport(report types.ValueReport) error {
	return a.writeYAML("value.yaml", report)
}

func (a ReportFileAdapter) WriteBagReport(report types.BagReport) error {
	return a.writeYAML("bag.yaml", report)
}

func (a ReportFileAdapter) WriteThemeReport(report types.ThemeReport) error {
	return a.writeYAML("theme.yaml", report)
}

func (a ReportFileAdapter) WriteSourcesReport(reports []types.SourceReport) error {
	return a.writeYAML("sources.yaml", reports)
}

func (a ReportFileAdapter) writeYAML(filename string, value any) error {
	path, err := a.ensurePath(filename)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode " + filename).
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + filename).
			WithCause(err)
	}
	return nil
}

func (a ReportFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.ReportWriterPort = ReportFileAdapter{}
