package ports

import (
	"context"

	"resengine/internal/types"
)

// LoadedPackage is one decoded package of a resource table.
type LoadedPackage interface {
	PackageID() uint8
	PackageName() string
	// IsDynamic reports whether the package was built as a shared library
	// and has no fixed package id.
	IsDynamic() bool
	DynamicPackageMap() []types.DynamicPackageEntry
	// FindEntry returns the best variant of the entry for desired. The bool
	// is false when the package holds no matching variant; an error means
	// the entry's data is corrupt.
	FindEntry(typeIndex uint8, entryIndex uint16, desired types.Configuration) (types.PackageEntry, bool, error)
	FindEntryByName(typeName, entryName string) (uint8, uint16, bool)
	TypeName(typeIndex uint8) (string, bool)
	EntryName(typeIndex uint8, entryIndex uint16) (string, bool)
	Configurations(excludeMipmap bool) []types.Configuration
	Locales() []string
}

// Source is one loaded resource container, addressed by its cookie.
type Source interface {
	Path() string
	IsSystem() bool
	ManifestPackage() string
	Packages() []LoadedPackage
	// String returns an entry of the table's global string pool, used by
	// STRING values.
	String(index uint32) (string, error)
	// Open returns the bytes of a named file carried by the source.
	Open(name string) ([]byte, bool)
}

type SourceLoaderPort interface {
	Load(ctx context.Context, path string, system bool) (Source, error)
}

type TableSpecPort interface {
	LoadTableSpec(path string) (types.TableSpec, error)
}

type TableCompilerPort interface {
	Compile(spec types.TableSpec) ([]byte, error)
}

type ReportWriterPort interface {
	WriteValueReport(report types.ValueReport) error
	WriteBagReport(report types.BagReport) error
	WriteThemeReport(report types.ThemeReport) error
	WriteSourcesReport(reports []types.SourceReport) error
}
