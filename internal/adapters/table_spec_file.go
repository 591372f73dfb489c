package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"resengine/internal/types"
)

type TableSpecFileAdapter struct{}

func NewTableSpecFileAdapter() TableSpecFileAdapter {
	return TableSpecFileAdapter{}
}

func (a TableSpecFileAdapter) LoadTableSpec(path string) (types.TableSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.TableSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("table spec file not found").
			WithCause(err)
	}
	return a.ParseTableSpec(data)
}

func (a TableSpecFileAdapter) ParseTableSpec(data []byte) (types.TableSpec, error) {
	var spec types.TableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return types.TableSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse table spec yaml").
			WithCause(err)
	}
	return spec, nil
}
