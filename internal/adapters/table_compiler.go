package adapters

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"resengine/internal/shared"
	"resengine/internal/types"
)

// TableCompilerAdapter compiles YAML table descriptions into binary
// resource tables.
type TableCompilerAdapter struct{}

func NewTableCompilerAdapter() TableCompilerAdapter {
	return TableCompilerAdapter{}
}

var dimensionUnits = map[string]uint32{
	"px": 0, "dp": 1, "dip": 1, "sp": 2, "pt": 3, "in": 4, "mm": 5,
}

var fractionUnits = map[string]uint32{
	"%": 0, "%p": 1,
}

var complexPattern = regexp.MustCompile(`^(-?\d+)([a-z%]+)$`)

type tableCompilation struct {
	spec       types.TableSpec
	symbols    map[string]types.ResID
	strings    []string
	stringRefs map[string]uint32
}

func (c TableCompilerAdapter) Compile(spec types.TableSpec) ([]byte, error) {
	if len(spec.Packages) == 0 {
		return nil, invalidTable("table declares no packages")
	}
	comp := &tableCompilation{
		spec:       spec,
		symbols:    map[string]types.ResID{},
		stringRefs: map[string]uint32{},
	}
	if err := comp.collectSymbols(); err != nil {
		return nil, err
	}
	var packages [][]byte
	for _, pkg := range spec.Packages {
		data, err := comp.encodePackage(pkg)
		if err != nil {
			return nil, err
		}
		packages = append(packages, data)
	}
	pool, err := encodeStringPool(comp.strings, true)
	if err != nil {
		return nil, invalidTable("failed to encode global strings").WithCause(err)
	}
	return encodeChunk(chunkTypeTable, func(w *chunkWriter) {
		w.u32(uint32(len(packages)))
	}, func(w *chunkWriter) {
		w.raw(pool)
		for _, pkg := range packages {
			w.raw(pkg)
		}
	}), nil
}

func invalidTable(msg string) *errbuilder.ErrBuilder {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

func (c *tableCompilation) collectSymbols() error {
	seen := map[string]struct{}{}
	for _, pkg := range c.spec.Packages {
		if strings.TrimSpace(pkg.Name) == "" {
			return invalidTable("package name is required")
		}
		if pkg.ID < 0 || pkg.ID > 0xff {
			return invalidTable(fmt.Sprintf("package %s has id 0x%x out of range", pkg.Name, pkg.ID))
		}
		if _, dup := seen[pkg.Name]; dup {
			return invalidTable(fmt.Sprintf("package %s declared twice", pkg.Name))
		}
		seen[pkg.Name] = struct{}{}
		if len(pkg.Types) > 0xff {
			return invalidTable(fmt.Sprintf("package %s declares too many types", pkg.Name))
		}
		for ti, typ := range pkg.Types {
			if len(typ.Entries) > 0xffff {
				return invalidTable(fmt.Sprintf("type %s declares too many entries", typ.Name))
			}
			for ei, entry := range typ.Entries {
				key := pkg.Name + ":" + typ.Name + "/" + entry.Name
				if _, dup := c.symbols[key]; dup {
					return invalidTable(fmt.Sprintf("resource %s declared twice", key))
				}
				c.symbols[key] = types.NewResID(uint8(pkg.ID), uint8(ti+1), uint16(ei))
			}
		}
	}
	return nil
}

// resolveRef resolves a hexadecimal id or a symbolic name relative to the
// package being compiled.
func (c *tableCompilation) resolveRef(pkg types.PackageSpec, ref string) (types.ResID, error) {
	if shared.IsHexResID(ref) {
		return shared.ParseResID(ref)
	}
	name, err := shared.ParseResourceName(ref)
	if err != nil {
		return 0, err
	}
	if name.Package == "" {
		name.Package = pkg.Name
	}
	id, ok := c.symbols[name.Package+":"+name.Type+"/"+name.Entry]
	if !ok {
		return 0, invalidTable(fmt.Sprintf("unknown resource %q in package %s", ref, pkg.Name))
	}
	return id, nil
}

func (c *tableCompilation) internString(s string) uint32 {
	if idx, ok := c.stringRefs[s]; ok {
		return idx
	}
	idx := uint32(len(c.strings))
	c.strings = append(c.strings, s)
	c.stringRefs[s] = idx
	return idx
}

func (c *tableCompilation) encodeValue(pkg types.PackageSpec, v types.ValueSpec) (types.Value, error) {
	dataType, ok := parseValueType(v.Type)
	if !ok {
		return types.Value{}, invalidTable(fmt.Sprintf("unknown value type %q", v.Type))
	}
	data := strings.TrimSpace(v.Data)
	fail := func(err error) (types.Value, error) {
		return types.Value{}, invalidTable(fmt.Sprintf("invalid %s value %q", dataType, v.Data)).WithCause(err)
	}
	out := types.Value{Type: dataType}
	switch dataType {
	case types.DataTypeNull:
		switch data {
		case "", "undefined", "@null":
			out.Data = types.DataNullUndefined
		case "empty", "@empty":
			out.Data = types.DataNullEmpty
		default:
			return fail(fmt.Errorf("expected empty or undefined"))
		}
	case types.DataTypeReference, types.DataTypeAttribute, types.DataTypeDynamicReference, types.DataTypeDynamicAttribute:
		id, err := c.resolveRef(pkg, data)
		if err != nil {
			return types.Value{}, err
		}
		out.Data = uint32(id)
	case types.DataTypeString:
		out.Data = c.internString(v.Data)
	case types.DataTypeFloat:
		f, err := strconv.ParseFloat(data, 32)
		if err != nil {
			return fail(err)
		}
		out.Data = math.Float32bits(float32(f))
	case types.DataTypeDimension:
		n, err := encodeComplex(data, dimensionUnits)
		if err != nil {
			return fail(err)
		}
		out.Data = n
	case types.DataTypeFraction:
		n, err := encodeComplex(data, fractionUnits)
		if err != nil {
			return fail(err)
		}
		out.Data = n
	case types.DataTypeIntDec:
		n, err := strconv.ParseInt(data, 10, 32)
		if err != nil {
			return fail(err)
		}
		out.Data = uint32(int32(n))
	case types.DataTypeIntHex:
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(data), "0x"), 16, 32)
		if err != nil {
			return fail(err)
		}
		out.Data = uint32(n)
	case types.DataTypeIntBoolean:
		b, err := strconv.ParseBool(data)
		if err != nil {
			return fail(err)
		}
		if b {
			out.Data = 0xffffffff
		}
	default:
		n, err := encodeColor(data)
		if err != nil {
			return fail(err)
		}
		out.Data = n
	}
	return out, nil
}

func parseValueType(name string) (types.DataType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "color":
		return types.DataTypeIntColorARGB8, true
	case "int", "integer":
		return types.DataTypeIntDec, true
	case "boolean":
		return types.DataTypeIntBoolean, true
	}
	return types.ParseDataType(strings.ToLower(strings.TrimSpace(name)))
}

// encodeComplex encodes integral dimensions and fractions with a zero
// radix, or passes a raw 0x value through.
func encodeComplex(data string, units map[string]uint32) (uint32, error) {
	if strings.HasPrefix(data, "0x") {
		n, err := strconv.ParseUint(data[2:], 16, 32)
		return uint32(n), err
	}
	m := complexPattern.FindStringSubmatch(data)
	if m == nil {
		return 0, fmt.Errorf("expected <integer><unit>")
	}
	unit, ok := units[m[2]]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", m[2])
	}
	n, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return 0, err
	}
	if n < -(1<<23) || n >= 1<<23 {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return uint32(int32(n))<<8 | unit, nil
}

func encodeColor(data string) (uint32, error) {
	hex := strings.TrimPrefix(data, "#")
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, err
	}
	switch len(hex) {
	case 8:
		return uint32(n), nil
	case 6:
		return 0xff000000 | uint32(n), nil
	case 4, 3:
		var out uint32
		digits := hex
		if len(hex) == 3 {
			digits = "f" + hex
		}
		for _, ch := range digits {
			d, _ := strconv.ParseUint(string(ch), 16, 8)
			out = out<<8 | uint32(d)<<4 | uint32(d)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("expected #RGB, #ARGB, #RRGGBB or #AARRGGBB")
	}
}

type compiledEntry struct {
	key    uint32
	public bool
	value  *types.Value
	parent types.ResID
	items  []types.MapEntry
}

func (c *tableCompilation) encodePackage(pkg types.PackageSpec) ([]byte, error) {
	typeNames := make([]string, len(pkg.Types))
	var keyNames []string
	keyIndex := map[string]uint32{}
	for i, typ := range pkg.Types {
		typeNames[i] = typ.Name
		for _, entry := range typ.Entries {
			if _, ok := keyIndex[entry.Name]; !ok {
				keyIndex[entry.Name] = uint32(len(keyNames))
				keyNames = append(keyNames, entry.Name)
			}
		}
	}
	typePool, err := encodeStringPool(typeNames, false)
	if err != nil {
		return nil, invalidTable("failed to encode type strings").WithCause(err)
	}
	keyPool, err := encodeStringPool(keyNames, true)
	if err != nil {
		return nil, invalidTable("failed to encode key strings").WithCause(err)
	}
	name, err := encodeFixedUTF16(pkg.Name, packageNameBytes)
	if err != nil {
		return nil, invalidTable("failed to encode package name").WithCause(err)
	}

	var body chunkWriter
	body.raw(typePool)
	body.raw(keyPool)
	if len(pkg.Libraries) > 0 {
		library, err := encodeLibrary(pkg.Libraries)
		if err != nil {
			return nil, err
		}
		body.raw(library)
	}
	for ti, typ := range pkg.Types {
		chunks, err := c.encodeType(pkg, uint8(ti+1), typ, keyIndex)
		if err != nil {
			return nil, err
		}
		body.raw(chunks)
	}

	return encodeChunk(chunkTypePackage, func(w *chunkWriter) {
		w.u32(uint32(pkg.ID))
		w.raw(name)
		w.u32(packageHeaderSize)
		w.u32(uint32(len(typeNames)))
		w.u32(uint32(packageHeaderSize + len(typePool)))
		w.u32(uint32(len(keyNames)))
		w.u32(0)
	}, func(w *chunkWriter) {
		w.raw(body.buf)
	}), nil
}

func encodeLibrary(libraries []types.LibrarySpec) ([]byte, error) {
	var entries chunkWriter
	for _, lib := range libraries {
		if lib.ID <= 0 || lib.ID > 0xff {
			return nil, invalidTable(fmt.Sprintf("library %s has id 0x%x out of range", lib.Name, lib.ID))
		}
		name, err := encodeFixedUTF16(lib.Name, packageNameBytes)
		if err != nil {
			return nil, invalidTable("failed to encode library name").WithCause(err)
		}
		entries.u32(uint32(lib.ID))
		entries.raw(name)
	}
	return encodeChunk(chunkTypeLibrary, func(w *chunkWriter) {
		w.u32(uint32(len(libraries)))
	}, func(w *chunkWriter) {
		w.raw(entries.buf)
	}), nil
}

// encodeType writes the type spec chunk followed by one type chunk per
// distinct configuration, in order of first appearance.
func (c *tableCompilation) encodeType(pkg types.PackageSpec, id uint8, typ types.TypeSpec, keyIndex map[string]uint32) ([]byte, error) {
	var configs []types.Configuration
	byConfig := map[types.Configuration][]*compiledEntry{}
	flags := make([]uint32, len(typ.Entries))

	for ei, entry := range typ.Entries {
		if len(entry.Values) == 0 {
			return nil, invalidTable(fmt.Sprintf("%s/%s has no values", typ.Name, entry.Name))
		}
		if entry.Public {
			flags[ei] |= types.SpecPublic
		}
		for _, variant := range entry.Values {
			cfg, err := types.ParseQualifiers(variant.Config)
			if err != nil {
				return nil, err
			}
			compiled, err := c.compileVariant(pkg, typ, entry, variant)
			if err != nil {
				return nil, err
			}
			compiled.key = keyIndex[entry.Name]
			slot, ok := byConfig[cfg]
			if !ok {
				configs = append(configs, cfg)
				slot = make([]*compiledEntry, len(typ.Entries))
				byConfig[cfg] = slot
			}
			if slot[ei] != nil {
				return nil, invalidTable(fmt.Sprintf("%s/%s declares config %s twice", typ.Name, entry.Name, cfg))
			}
			slot[ei] = compiled
			flags[ei] |= uint32(cfg.Diff(types.Configuration{}))
		}
	}

	var out chunkWriter
	out.raw(encodeChunk(chunkTypeTypeSpec, func(w *chunkWriter) {
		w.u8(id)
		w.u8(0)
		w.u16(0)
		w.u32(uint32(len(flags)))
	}, func(w *chunkWriter) {
		for _, f := range flags {
			w.u32(f)
		}
	}))
	for _, cfg := range configs {
		out.raw(encodeTypeChunk(id, cfg, byConfig[cfg]))
	}
	return out.buf, nil
}

func (c *tableCompilation) compileVariant(pkg types.PackageSpec, typ types.TypeSpec, entry types.EntrySpec, variant types.ConfigValueSpec) (*compiledEntry, error) {
	compiled := &compiledEntry{public: entry.Public}
	switch {
	case variant.Value != nil && variant.Bag != nil:
		return nil, invalidTable(fmt.Sprintf("%s/%s sets both value and bag", typ.Name, entry.Name))
	case variant.Value != nil:
		value, err := c.encodeValue(pkg, *variant.Value)
		if err != nil {
			return nil, err
		}
		compiled.value = &value
	case variant.Bag != nil:
		if variant.Bag.Parent != "" {
			parent, err := c.resolveRef(pkg, variant.Bag.Parent)
			if err != nil {
				return nil, err
			}
			compiled.parent = parent
		}
		for _, item := range variant.Bag.Items {
			key, err := c.resolveRef(pkg, item.Key)
			if err != nil {
				return nil, err
			}
			value, err := c.encodeValue(pkg, item.Value)
			if err != nil {
				return nil, err
			}
			compiled.items = append(compiled.items, types.MapEntry{Name: key, Value: value})
		}
		sort.SliceStable(compiled.items, func(i, j int) bool {
			return compiled.items[i].Name < compiled.items[j].Name
		})
	default:
		return nil, invalidTable(fmt.Sprintf("%s/%s needs a value or a bag", typ.Name, entry.Name))
	}
	return compiled, nil
}

func encodeTypeChunk(id uint8, cfg types.Configuration, entries []*compiledEntry) []byte {
	offsets := make([]uint32, len(entries))
	var data chunkWriter
	for i, entry := range entries {
		if entry == nil {
			offsets[i] = noEntry
			continue
		}
		offsets[i] = uint32(len(data.buf))
		writeEntry(&data, entry)
	}
	config := encodeConfig(cfg)
	headerSize := chunkHeaderSize + 12 + len(config)
	return encodeChunk(chunkTypeType, func(w *chunkWriter) {
		w.u8(id)
		w.u8(0)
		w.u16(0)
		w.u32(uint32(len(entries)))
		w.u32(uint32(headerSize + 4*len(entries)))
		w.raw(config)
	}, func(w *chunkWriter) {
		for _, off := range offsets {
			w.u32(off)
		}
		w.raw(data.buf)
	})
}

func writeEntry(w *chunkWriter, entry *compiledEntry) {
	var flags uint16
	if entry.public {
		flags |= types.EntryFlagPublic
	}
	if entry.value != nil {
		w.u16(types.EntryHeaderSize)
		w.u16(flags)
		w.u32(entry.key)
		writeValue(w, *entry.value)
		return
	}
	w.u16(types.MapEntryHeaderSize)
	w.u16(flags | types.EntryFlagComplex)
	w.u32(entry.key)
	w.u32(uint32(entry.parent))
	w.u32(uint32(len(entry.items)))
	for _, item := range entry.items {
		w.u32(uint32(item.Name))
		writeValue(w, item.Value)
	}
}

func writeValue(w *chunkWriter, v types.Value) {
	w.u16(types.ValueSize)
	w.u8(0)
	w.u8(uint8(v.Type))
	w.u32(v.Data)
}
