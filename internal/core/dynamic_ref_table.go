package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"resengine/internal/ports"
	"resengine/internal/types"
)

// DynamicRefTable rewrites the package byte of ids compiled against shared
// libraries to the package ids assigned at load time.
type DynamicRefTable struct {
	assignedPackageID uint8
	entries           map[string]uint8
	lookup            [256]uint8
}

func NewDynamicRefTable(assignedPackageID uint8) *DynamicRefTable {
	t := &DynamicRefTable{
		assignedPackageID: assignedPackageID,
		entries:           map[string]uint8{},
	}
	t.lookup[types.SystemPackageID] = types.SystemPackageID
	t.lookup[types.AppPackageID] = types.AppPackageID
	return t
}

func (t *DynamicRefTable) AssignedPackageID() uint8 {
	return t.assignedPackageID
}

// Entries returns the build-time package ids this table knows, by name.
func (t *DynamicRefTable) Entries() []types.DynamicPackageEntry {
	out := make([]types.DynamicPackageEntry, 0, len(t.entries))
	for name, id := range t.entries {
		out = append(out, types.DynamicPackageEntry{PackageName: name, PackageID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackageName < out[j].PackageName })
	return out
}

func (t *DynamicRefTable) addEntry(name string, buildPackageID uint8) {
	t.entries[name] = buildPackageID
}

// addMapping routes the build-time id recorded for name to runtimeID. It
// reports false when the table has no entry for name.
func (t *DynamicRefTable) addMapping(name string, runtimeID uint8) bool {
	buildID, ok := t.entries[name]
	if !ok {
		return false
	}
	t.lookup[buildID] = runtimeID
	return true
}

// LookupResourceID rewrites the package byte of id. Package 0 refers to the
// table's own package. A missing mapping leaves id untouched and returns
// a NotFound error.
func (t *DynamicRefTable) LookupResourceID(id types.ResID) (types.ResID, error) {
	if id == 0 {
		return id, nil
	}
	pkg := id.PackageID()
	switch pkg {
	case types.AppPackageID:
		return id, nil
	case 0:
		return id.WithPackageID(t.assignedPackageID), nil
	}
	translated := t.lookup[pkg]
	if translated == 0 {
		return id, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no mapping for build-time package id 0x%02x in table of package 0x%02x", pkg, t.assignedPackageID))
	}
	return id.WithPackageID(translated), nil
}

// LookupResourceValue turns dynamic references and attributes into their
// static forms. Other values are returned unchanged.
func (t *DynamicRefTable) LookupResourceValue(v types.Value) (types.Value, error) {
	var resolved types.DataType
	switch v.Type {
	case types.DataTypeDynamicReference:
		resolved = types.DataTypeReference
	case types.DataTypeDynamicAttribute:
		resolved = types.DataTypeAttribute
	default:
		return v, nil
	}
	id, err := t.LookupResourceID(types.ResID(v.Data))
	if err != nil {
		return v, err
	}
	return types.Value{Type: resolved, Data: uint32(id)}, nil
}

// PackageGroup holds every loaded package that shares one runtime package
// id, in load order.
type PackageGroup struct {
	Packages        []ports.LoadedPackage
	Cookies         []types.Cookie
	DynamicRefTable *DynamicRefTable
}

const unmappedGroup uint8 = 0xff

// buildPackageGroups assigns runtime package ids and groups packages. The
// returned index maps a runtime package id to its group.
func buildPackageGroups(sources []ports.Source) ([]*PackageGroup, [256]uint8) {
	var index [256]uint8
	for i := range index {
		index[i] = unmappedGroup
	}
	var groups []*PackageGroup
	nextPackageID := uint8(0x02)
	for cookie, source := range sources {
		for _, pkg := range source.Packages() {
			id := pkg.PackageID()
			if pkg.IsDynamic() {
				id = nextPackageID
				nextPackageID++
			}
			idx := index[id]
			if idx == unmappedGroup {
				idx = uint8(len(groups))
				index[id] = idx
				groups = append(groups, &PackageGroup{DynamicRefTable: NewDynamicRefTable(id)})
			}
			group := groups[idx]
			group.Packages = append(group.Packages, pkg)
			group.Cookies = append(group.Cookies, types.Cookie(cookie))
			for _, entry := range pkg.DynamicPackageMap() {
				group.DynamicRefTable.addEntry(entry.PackageName, entry.PackageID)
			}
		}
	}
	for _, group := range groups {
		name := group.Packages[0].PackageName()
		id := group.DynamicRefTable.assignedPackageID
		for _, other := range groups {
			other.DynamicRefTable.addMapping(name, id)
		}
	}
	return groups, index
}
