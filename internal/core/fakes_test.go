package core

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"resengine/internal/ports"
	"resengine/internal/types"
)

type fakeVariant struct {
	config types.Configuration
	entry  types.TableEntry
}

type fakeEntry struct {
	name     string
	flags    uint32
	variants []fakeVariant
}

type fakeType struct {
	name    string
	entries map[uint16]*fakeEntry
}

type fakePackage struct {
	id      uint8
	name    string
	dynamic bool
	libs    []types.DynamicPackageEntry
	types   map[uint8]*fakeType
}

func newFakePackage(id uint8, name string) *fakePackage {
	return &fakePackage{id: id, name: name, dynamic: id == 0, types: map[uint8]*fakeType{}}
}

// add registers a variant of the entry at typeIndex/entryIndex. The entry's
// type spec flags absorb the variant's diff against the default
// configuration.
func (p *fakePackage) add(typeName string, typeIndex uint8, entryName string, entryIndex uint16, cfg types.Configuration, entry types.TableEntry) *fakePackage {
	typ, ok := p.types[typeIndex]
	if !ok {
		typ = &fakeType{name: typeName, entries: map[uint16]*fakeEntry{}}
		p.types[typeIndex] = typ
	}
	e, ok := typ.entries[entryIndex]
	if !ok {
		e = &fakeEntry{name: entryName}
		typ.entries[entryIndex] = e
	}
	e.flags |= uint32(cfg.Diff(types.Configuration{}))
	e.variants = append(e.variants, fakeVariant{config: cfg, entry: entry})
	return p
}

func (p *fakePackage) library(name string, id uint8) *fakePackage {
	p.libs = append(p.libs, types.DynamicPackageEntry{PackageName: name, PackageID: id})
	return p
}

func (p *fakePackage) PackageID() uint8 { return p.id }
func (p *fakePackage) PackageName() string { return p.name }
func (p *fakePackage) IsDynamic() bool { return p.dynamic }

func (p *fakePackage) DynamicPackageMap() []types.DynamicPackageEntry {
	return p.libs
}

func (p *fakePackage) FindEntry(typeIndex uint8, entryIndex uint16, desired types.Configuration) (types.PackageEntry, bool, error) {
	typ, ok := p.types[typeIndex]
	if !ok {
		return types.PackageEntry{}, false, nil
	}
	e, ok := typ.entries[entryIndex]
	if !ok {
		return types.PackageEntry{}, false, nil
	}
	var best *fakeVariant
	for i := range e.variants {
		v := &e.variants[i]
		if !v.config.Match(desired) {
			continue
		}
		if best == nil || v.config.IsBetterThan(best.config, desired) {
			best = v
		}
	}
	if best == nil {
		return types.PackageEntry{}, false, nil
	}
	return types.PackageEntry{
		Entry:         best.entry,
		Config:        best.config,
		TypeSpecFlags: e.flags,
		TypeName:      typ.name,
		EntryName:     e.name,
	}, true, nil
}

func (p *fakePackage) FindEntryByName(typeName, entryName string) (uint8, uint16, bool) {
	for typeIndex, typ := range p.types {
		if typ.name != typeName {
			continue
		}
		for entryIndex, e := range typ.entries {
			if e.name == entryName {
				return typeIndex, entryIndex, true
			}
		}
	}
	return 0, 0, false
}

func (p *fakePackage) TypeName(typeIndex uint8) (string, bool) {
	typ, ok := p.types[typeIndex]
	if !ok {
		return "", false
	}
	return typ.name, true
}

func (p *fakePackage) EntryName(typeIndex uint8, entryIndex uint16) (string, bool) {
	typ, ok := p.types[typeIndex]
	if !ok {
		return "", false
	}
	e, ok := typ.entries[entryIndex]
	if !ok {
		return "", false
	}
	return e.name, true
}

func (p *fakePackage) Configurations(excludeMipmap bool) []types.Configuration {
	var out []types.Configuration
	for _, typ := range p.types {
		if excludeMipmap && typ.name == "mipmap" {
			continue
		}
		for _, e := range typ.entries {
			for _, v := range e.variants {
				out = append(out, v.config)
			}
		}
	}
	return out
}

func (p *fakePackage) Locales() []string {
	var out []string
	for _, cfg := range p.Configurations(false) {
		if locale := cfg.Locale(); locale != "" {
			out = append(out, locale)
		}
	}
	sort.Strings(out)
	return out
}

type fakeSource struct {
	path     string
	system   bool
	packages []ports.LoadedPackage
	strings  []string
	files    map[string][]byte
}

func newFakeSource(path string, packages ...*fakePackage) *fakeSource {
	source := &fakeSource{path: path, files: map[string][]byte{}}
	for _, pkg := range packages {
		source.packages = append(source.packages, pkg)
	}
	return source
}

func (s *fakeSource) Path() string { return s.path }
func (s *fakeSource) IsSystem() bool { return s.system }
func (s *fakeSource) ManifestPackage() string { return "" }
func (s *fakeSource) Packages() []ports.LoadedPackage { return s.packages }
func (s *fakeSource) Open(name string) ([]byte, bool) {
	data, ok := s.files[name]
	return data, ok
}

func (s *fakeSource) String(index uint32) (string, error) {
	if int(index) >= len(s.strings) {
		return "", notFound(fmt.Sprintf("string %d", index))
	}
	return s.strings[index], nil
}

var (
	_ ports.LoadedPackage = (*fakePackage)(nil)
	_ ports.Source        = (*fakeSource)(nil)
)

func simpleEntry(v types.Value) types.TableEntry {
	return types.TableEntry{HeaderSize: types.EntryHeaderSize, Value: v}
}

func bagEntry(parent types.ResID, items ...types.MapEntry) types.TableEntry {
	return types.TableEntry{
		HeaderSize: types.MapEntryHeaderSize,
		Flags:      types.EntryFlagComplex,
		Parent:     parent,
		Map:        items,
	}
}

func item(key types.ResID, v types.Value) types.MapEntry {
	return types.MapEntry{Name: key, Value: v}
}

func intValue(n uint32) types.Value {
	return types.Value{Type: types.DataTypeIntDec, Data: n}
}

func refValue(id types.ResID) types.Value {
	return types.Value{Type: types.DataTypeReference, Data: uint32(id)}
}

func attrValue(id types.ResID) types.Value {
	return types.Value{Type: types.DataTypeAttribute, Data: uint32(id)}
}

func mustConfig(t *testing.T, qualifiers string) types.Configuration {
	t.Helper()
	cfg, err := types.ParseQualifiers(qualifiers)
	require.NoError(t, err)
	return cfg
}

func newManager(sources ...ports.Source) *AssetManager {
	am := NewAssetManager()
	am.SetSources(sources, true)
	return am
}
