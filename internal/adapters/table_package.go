package adapters

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pkg/errors"

	"resengine/internal/types"
)

func (p *tablePackage) PackageID() uint8 {
	return p.id
}

func (p *tablePackage) PackageName() string {
	return p.name
}

func (p *tablePackage) IsDynamic() bool {
	return p.id == 0
}

func (p *tablePackage) DynamicPackageMap() []types.DynamicPackageEntry {
	return append([]types.DynamicPackageEntry(nil), p.dynamicMap...)
}

func (p *tablePackage) spec(typeIndex uint8) *typeSpecChunk {
	return p.specs[typeIndex]
}

// typeName looks a type up in the type string pool, which does not count
// the types skipped by the type id offset.
func (p *tablePackage) typeName(spec *typeSpecChunk) (string, error) {
	if spec.id-1 < p.typeIDOffset {
		return "", errors.Errorf("type id %d is below the type id offset %d", spec.id, p.typeIDOffset)
	}
	return p.typeStrings.get(uint32(spec.id - 1 - p.typeIDOffset))
}

// FindEntry selects the best variant of an entry among the type chunks
// whose configuration matches desired.
func (p *tablePackage) FindEntry(typeIndex uint8, entryIndex uint16, desired types.Configuration) (types.PackageEntry, bool, error) {
	spec := p.spec(typeIndex)
	if spec == nil || int(entryIndex) >= len(spec.flags) {
		return types.PackageEntry{}, false, nil
	}
	var best *typeChunk
	bestOffset := 0
	for _, t := range spec.types {
		if !t.config.Match(desired) {
			continue
		}
		off, ok, err := t.entryOffset(entryIndex)
		if err != nil {
			return types.PackageEntry{}, false, p.corrupt(typeIndex, entryIndex, err)
		}
		if !ok {
			continue
		}
		if best == nil || t.config.IsBetterThan(best.config, desired) {
			best = t
			bestOffset = off
		}
	}
	if best == nil {
		return types.PackageEntry{}, false, nil
	}
	entry, err := best.decodeEntry(bestOffset)
	if err != nil {
		return types.PackageEntry{}, false, p.corrupt(typeIndex, entryIndex, err)
	}
	typeName, _ := p.typeName(spec)
	entryName, _ := p.keyStrings.get(entry.KeyIndex)
	return types.PackageEntry{
		Entry:         entry,
		Config:        best.config,
		TypeSpecFlags: spec.flags[entryIndex],
		TypeName:      typeName,
		EntryName:     entryName,
	}, true, nil
}

func (p *tablePackage) corrupt(typeIndex uint8, entryIndex uint16, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("corrupt entry %s in package %s", types.NewResID(p.id, typeIndex+1, entryIndex), p.name)).
		WithCause(err)
}

// FindEntryByName returns the type index and entry index of the named
// resource in this package.
func (p *tablePackage) FindEntryByName(typeName, entryName string) (uint8, uint16, bool) {
	typeStringIndex, ok := p.typeStrings.indexOf(typeName)
	if !ok {
		return 0, 0, false
	}
	keyIndex, ok := p.keyStrings.indexOf(entryName)
	if !ok {
		return 0, 0, false
	}
	typeIndex := typeStringIndex + uint32(p.typeIDOffset)
	if typeIndex > 0xff || p.specs[typeIndex] == nil {
		return 0, 0, false
	}
	spec := p.specs[typeIndex]
	for _, t := range spec.types {
		for i := 0; i < len(spec.flags); i++ {
			off, ok, err := t.entryOffset(uint16(i))
			if err != nil || !ok {
				continue
			}
			key, err := t.entryKey(off)
			if err == nil && key == keyIndex {
				return uint8(typeIndex), uint16(i), true
			}
		}
	}
	return 0, 0, false
}

func (p *tablePackage) TypeName(typeIndex uint8) (string, bool) {
	spec := p.spec(typeIndex)
	if spec == nil {
		return "", false
	}
	name, err := p.typeName(spec)
	return name, err == nil
}

func (p *tablePackage) EntryName(typeIndex uint8, entryIndex uint16) (string, bool) {
	spec := p.spec(typeIndex)
	if spec == nil {
		return "", false
	}
	for _, t := range spec.types {
		off, ok, err := t.entryOffset(entryIndex)
		if err != nil || !ok {
			continue
		}
		key, err := t.entryKey(off)
		if err != nil {
			continue
		}
		name, err := p.keyStrings.get(key)
		return name, err == nil
	}
	return "", false
}

// Configurations lists the configuration of every type chunk. The mipmap
// type is skipped when excludeMipmap is set.
func (p *tablePackage) Configurations(excludeMipmap bool) []types.Configuration {
	var out []types.Configuration
	for _, spec := range p.specs {
		if spec == nil {
			continue
		}
		if excludeMipmap {
			if name, err := p.typeName(spec); err == nil && name == "mipmap" {
				continue
			}
		}
		for _, t := range spec.types {
			out = append(out, t.config)
		}
	}
	return out
}

func (p *tablePackage) Locales() []string {
	var out []string
	for _, cfg := range p.Configurations(false) {
		if locale := cfg.Locale(); locale != "" {
			out = append(out, locale)
		}
	}
	return out
}
