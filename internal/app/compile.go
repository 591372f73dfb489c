package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// Compile turns a YAML table description into a binary table file.
func (s Service) Compile(ctx context.Context, req CompileRequest) (CompileResult, error) {
	specPath := strings.TrimSpace(req.SpecPath)
	if specPath == "" {
		return CompileResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("table spec path is required")
	}
	outputPath := strings.TrimSpace(req.OutputPath)
	if outputPath == "" {
		outputPath = strings.TrimSuffix(specPath, filepath.Ext(specPath)) + ".arsc"
	}
	assert.NotEmpty(ctx, outputPath, "output path must be set")

	spec, err := s.Specs.LoadTableSpec(specPath)
	if err != nil {
		return CompileResult{}, err
	}
	data, err := s.Compiler.Compile(spec)
	if err != nil {
		return CompileResult{}, err
	}
	if err := s.WriteFile(outputPath, data); err != nil {
		return CompileResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write %s", outputPath)).
			WithCause(err)
	}
	result := CompileResult{OutputPath: outputPath, Bytes: len(data)}
	for _, pkg := range spec.Packages {
		result.Packages = append(result.Packages, pkg.Name)
	}
	log.Info().
		Str("spec", specPath).
		Str("output", outputPath).
		Int("bytes", len(data)).
		Msg("table compiled")
	return result, nil
}
