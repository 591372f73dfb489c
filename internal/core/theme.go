package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"resengine/internal/types"
)

type themeEntry struct {
	cookie        types.Cookie
	typeSpecFlags uint32
	value         types.Value
}

type themeType struct {
	entries []themeEntry
}

type themePackage struct {
	types [256]*themeType
}

// Theme is an overlay of attribute values built by applying styles. The
// first style to set an attribute wins unless a later one is forced.
// A Theme must not be shared between goroutines.
type Theme struct {
	manager       *AssetManager
	typeSpecFlags uint32
	packages      [256]*themePackage
}

func (t *Theme) Manager() *AssetManager {
	return t.manager
}

// TypeSpecFlags is the union of the flags of every applied style.
func (t *Theme) TypeSpecFlags() uint32 {
	return t.typeSpecFlags
}

// ApplyStyle layers the bag of resid onto the theme. With force, existing
// attribute values are overwritten. A style holding an invalid attribute id
// is rejected before the theme is touched.
func (t *Theme) ApplyStyle(resid types.ResID, force bool) error {
	bag, err := t.manager.GetBag(resid)
	if err != nil {
		return err
	}

	type typeKey struct{ pkg, typ uint8 }
	lastEntry := map[typeKey]uint16{}
	for _, entry := range bag.Entries {
		if !entry.Key.IsValid() {
			return notFound(fmt.Sprintf("style %s holds invalid attribute %s", resid, entry.Key))
		}
		key := typeKey{entry.Key.PackageID(), entry.Key.TypeIndex()}
		if last, ok := lastEntry[key]; !ok || entry.Key.EntryID() > last {
			lastEntry[key] = entry.Key.EntryID()
		}
	}

	for key, last := range lastEntry {
		pkg := t.packages[key.pkg]
		if pkg == nil {
			pkg = &themePackage{}
			t.packages[key.pkg] = pkg
		}
		typ := pkg.types[key.typ]
		if typ == nil {
			typ = &themeType{}
			pkg.types[key.typ] = typ
		}
		if need := int(last) + 1; need > len(typ.entries) {
			grown := make([]themeEntry, need)
			copy(grown, typ.entries)
			typ.entries = grown
		}
	}

	for _, entry := range bag.Entries {
		cell := &t.packages[entry.Key.PackageID()].types[entry.Key.TypeIndex()].entries[entry.Key.EntryID()]
		if force || cell.value.Type == types.DataTypeNull {
			cell.cookie = entry.Cookie
			cell.typeSpecFlags |= bag.TypeSpecFlags
			cell.value = entry.Value
		}
	}
	t.typeSpecFlags |= bag.TypeSpecFlags
	return nil
}

func (t *Theme) cell(resid types.ResID) (themeEntry, bool) {
	pkg := t.packages[resid.PackageID()]
	if pkg == nil {
		return themeEntry{}, false
	}
	typ := pkg.types[resid.TypeIndex()]
	if typ == nil || int(resid.EntryID()) >= len(typ.entries) {
		return themeEntry{}, false
	}
	return typ.entries[resid.EntryID()], true
}

// GetAttribute returns the theme's value for the attribute resid, following
// attribute indirection. Unset attributes are not found; @empty is a value.
func (t *Theme) GetAttribute(resid types.ResID) (types.ResolvedValue, error) {
	var flags uint32
	current := resid
	for i := 0; i <= maxChainIterations; i++ {
		entry, ok := t.cell(current)
		if !current.IsValid() || !ok {
			return types.ResolvedValue{}, notFound(fmt.Sprintf("attribute %s not set in theme", current))
		}
		flags |= entry.typeSpecFlags
		value := entry.value
		switch value.Type {
		case types.DataTypeNull:
			if value.Data != types.DataNullEmpty {
				return types.ResolvedValue{}, notFound(fmt.Sprintf("attribute %s not set in theme", current))
			}
		case types.DataTypeAttribute:
			current = types.ResID(value.Data)
			continue
		case types.DataTypeDynamicAttribute, types.DataTypeDynamicReference:
			refs := t.manager.DynamicRefTableForCookie(entry.cookie)
			if refs == nil {
				return types.ResolvedValue{}, notFound(fmt.Sprintf("no dynamic reference table for cookie %d", entry.cookie))
			}
			rewritten, err := refs.LookupResourceValue(value)
			if err != nil {
				log.Warn().Err(err).Str("attr", current.String()).Msg("failed to rewrite theme value")
				return types.ResolvedValue{}, err
			}
			if rewritten.Type == types.DataTypeAttribute {
				current = types.ResID(rewritten.Data)
				continue
			}
			value = rewritten
		}
		return types.ResolvedValue{Cookie: entry.cookie, Value: value, TypeSpecFlags: flags}, nil
	}
	log.Warn().Str("attr", resid.String()).Str("last", current.String()).Msg("attribute chain exhausted")
	return types.ResolvedValue{}, chainExhausted(fmt.Sprintf("attribute %s still indirect after %d lookups", resid, maxChainIterations))
}

// ResolveAttributeReference resolves an attribute value through the theme
// and then follows references through the manager.
func (t *Theme) ResolveAttributeReference(in types.ResolvedValue) (types.ResolvedValue, error) {
	current := in
	if in.Value.Type == types.DataTypeAttribute {
		attr, err := t.GetAttribute(types.ResID(in.Value.Data))
		if err != nil {
			return types.ResolvedValue{}, err
		}
		attr.TypeSpecFlags |= in.TypeSpecFlags
		attr.Config = in.Config
		current = attr
	}
	return t.manager.ResolveReference(current)
}

// SetTo makes t a deep copy of other. Both themes must belong to the same
// manager.
func (t *Theme) SetTo(other *Theme) error {
	if t == other {
		return nil
	}
	if t.manager != other.manager {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("themes belong to different asset managers")
	}
	var packages [256]*themePackage
	for p, pkg := range other.packages {
		if pkg == nil {
			continue
		}
		copied := &themePackage{}
		for ty, typ := range pkg.types {
			if typ == nil {
				continue
			}
			copied.types[ty] = &themeType{entries: append([]themeEntry(nil), typ.entries...)}
		}
		packages[p] = copied
	}
	t.packages = packages
	t.typeSpecFlags = other.typeSpecFlags
	return nil
}

// Clear empties the theme.
func (t *Theme) Clear() {
	t.packages = [256]*themePackage{}
	t.typeSpecFlags = 0
}
