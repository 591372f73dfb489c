package app

import (
	"strings"

	"resengine/internal/types"
)

// WriteValueReport writes report into dir. An empty dir is a no-op.
func (s Service) WriteValueReport(dir string, report types.ValueReport) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	return s.Reports(dir).WriteValueReport(report)
}

func (s Service) WriteBagReport(dir string, report types.BagReport) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	return s.Reports(dir).WriteBagReport(report)
}

func (s Service) WriteThemeReport(dir string, report types.ThemeReport) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	return s.Reports(dir).WriteThemeReport(report)
}

func (s Service) WriteSourcesReport(dir string, reports []types.SourceReport) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	return s.Reports(dir).WriteSourcesReport(reports)
}
