package adapters

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shogo82148/androidbinary"

	"resengine/internal/ports"
)

const (
	tableFileName    = "resources.arsc"
	manifestFileName = "AndroidManifest.xml"
)

// TableSource is a loaded resource container: a decoded table plus the
// files that travel with it.
type TableSource struct {
	path            string
	system          bool
	manifestPackage string
	table           *resourceTable
	packages        []ports.LoadedPackage
	files           func(name string) ([]byte, bool)
}

// NewTableSource decodes table bytes into a source. files may be nil.
func NewTableSource(path string, system bool, data []byte, files map[string][]byte) (*TableSource, error) {
	table, err := loadTable(data)
	if err != nil {
		return nil, err
	}
	source := newTableSource(path, system, table)
	source.files = func(name string) ([]byte, bool) {
		content, ok := files[name]
		return content, ok
	}
	return source, nil
}

func newTableSource(path string, system bool, table *resourceTable) *TableSource {
	packages := make([]ports.LoadedPackage, 0, len(table.packages))
	for _, pkg := range table.packages {
		packages = append(packages, pkg)
	}
	return &TableSource{
		path:     path,
		system:   system,
		table:    table,
		packages: packages,
		files:    func(string) ([]byte, bool) { return nil, false },
	}
}

func (s *TableSource) Path() string {
	return s.path
}

func (s *TableSource) IsSystem() bool {
	return s.system
}

// ManifestPackage is the package attribute of the container's binary
// manifest, empty when the container has none.
func (s *TableSource) ManifestPackage() string {
	return s.manifestPackage
}

func (s *TableSource) Packages() []ports.LoadedPackage {
	return s.packages
}

func (s *TableSource) String(index uint32) (string, error) {
	value, err := s.table.strings.get(index)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("string %d not found in %s", index, s.path)).
			WithCause(err)
	}
	return value, nil
}

func (s *TableSource) Open(name string) ([]byte, bool) {
	return s.files(name)
}

// SourceLoaderAdapter loads sources from .arsc, .apk/.zip and .yaml files.
type SourceLoaderAdapter struct {
	Specs    ports.TableSpecPort
	Compiler ports.TableCompilerPort
}

func NewSourceLoaderAdapter() SourceLoaderAdapter {
	return SourceLoaderAdapter{
		Specs:    NewTableSpecFileAdapter(),
		Compiler: NewTableCompilerAdapter(),
	}
}

func (a SourceLoaderAdapter) Load(ctx context.Context, path string, system bool) (ports.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("source loading canceled").
			WithCause(err)
	}
	var (
		source *TableSource
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".arsc":
		source, err = a.loadTable(path, system)
	case ".apk", ".zip":
		source, err = a.loadArchive(path, system)
	case ".yaml", ".yml":
		source, err = a.loadSpec(path, system)
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported source type %q", path))
	}
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("path", path).
		Bool("system", system).
		Int("packages", len(source.packages)).
		Msg("source loaded")
	return source, nil
}

func (a SourceLoaderAdapter) loadTable(path string, system bool) (*TableSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sourceNotFound(path, err)
	}
	return NewTableSource(path, system, data, nil)
}

func (a SourceLoaderAdapter) loadSpec(path string, system bool) (*TableSource, error) {
	spec, err := a.Specs.LoadTableSpec(path)
	if err != nil {
		return nil, err
	}
	data, err := a.Compiler.Compile(spec)
	if err != nil {
		return nil, err
	}
	files := make(map[string][]byte, len(spec.Assets))
	for name, content := range spec.Assets {
		files[name] = []byte(content)
	}
	return NewTableSource(path, system, data, files)
}

func (a SourceLoaderAdapter) loadArchive(path string, system bool) (*TableSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sourceNotFound(path, err)
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s is not a zip archive", path)).
			WithCause(err)
	}
	entries := make(map[string]*zip.File, len(archive.File))
	for _, file := range archive.File {
		entries[file.Name] = file
	}
	tableFile, ok := entries[tableFileName]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("%s has no %s", path, tableFileName))
	}
	tableData, err := readZipFile(tableFile)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s from %s", tableFileName, path)).
			WithCause(err)
	}
	table, err := loadTable(tableData)
	if err != nil {
		return nil, err
	}
	source := newTableSource(path, system, table)
	source.files = func(name string) ([]byte, bool) {
		file, ok := entries[name]
		if !ok {
			return nil, false
		}
		content, err := readZipFile(file)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Str("file", name).Msg("failed to read archive entry")
			return nil, false
		}
		return content, true
	}
	if manifest, ok := entries[manifestFileName]; ok {
		pkg, err := readManifestPackage(manifest)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to decode binary manifest")
		}
		source.manifestPackage = pkg
	}
	return source, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file.Name)
	}
	return data, nil
}

type manifestRoot struct {
	Package string `xml:"package,attr"`
}

// readManifestPackage decodes a binary AndroidManifest.xml and returns its
// package attribute.
func readManifestPackage(file *zip.File) (string, error) {
	data, err := readZipFile(file)
	if err != nil {
		return "", err
	}
	xmlFile, err := androidbinary.NewXMLFile(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "parse-axml")
	}
	plain, err := io.ReadAll(xmlFile.Reader())
	if err != nil {
		return "", errors.Wrap(err, "read-axml")
	}
	var root manifestRoot
	if err := xml.Unmarshal(plain, &root); err != nil {
		return "", errors.Wrap(err, "unmarshal-manifest")
	}
	return root.Package, nil
}

func sourceNotFound(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("source %s not found", path)).
		WithCause(err)
}

var (
	_ ports.Source        = (*TableSource)(nil)
	_ ports.LoadedPackage = (*tablePackage)(nil)
)
