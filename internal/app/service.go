package app

import (
	"os"

	"resengine/internal/adapters"
	"resengine/internal/ports"
)

type Service struct {
	Loader   ports.SourceLoaderPort
	Specs    ports.TableSpecPort
	Compiler ports.TableCompilerPort
	Reports  func(dir string) ports.ReportWriterPort
	// WriteFile persists compiled tables.
	WriteFile func(path string, data []byte) error
}

func NewService() Service {
	return Service{
		Loader:   adapters.NewSourceLoaderAdapter(),
		Specs:    adapters.NewTableSpecFileAdapter(),
		Compiler: adapters.NewTableCompilerAdapter(),
		Reports: func(dir string) ports.ReportWriterPort {
			return adapters.NewReportFileAdapter(dir)
		},
		WriteFile: func(path string, data []byte) error {
			return os.WriteFile(path, data, 0644)
		},
	}
}
