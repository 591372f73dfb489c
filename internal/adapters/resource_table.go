package adapters

import (
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pkg/errors"

	"resengine/internal/types"
)

const (
	chunkTypeTable    uint16 = 0x0002
	chunkTypePackage  uint16 = 0x0200
	chunkTypeType     uint16 = 0x0201
	chunkTypeTypeSpec uint16 = 0x0202
	chunkTypeLibrary  uint16 = 0x0203
)

const (
	tableHeaderSize      = 12
	packageHeaderSize    = 288
	packageHeaderMinSize = 284
	packageNameBytes     = 256
	typeSpecHeaderSize   = 16
	typeHeaderMinSize    = 20
	libraryHeaderSize    = 12
	libraryEntrySize     = 4 + packageNameBytes
	typeFlagSparse       = 0x01
)

const noEntry uint32 = 0xffffffff

// resourceTable is a decoded resources.arsc. Entries are decoded lazily on
// lookup.
type resourceTable struct {
	strings  *stringPool
	packages []*tablePackage
}

// loadTable decodes binary table bytes. Structural damage to the table,
// package or type headers fails the load; damage inside an entry only
// surfaces when that entry is looked up.
func loadTable(data []byte) (*resourceTable, error) {
	table, err := decodeTable(newByteView(data))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode resource table").
			WithCause(err)
	}
	return table, nil
}

func decodeTable(v byteView) (*resourceTable, error) {
	hdr, chunk, err := v.readChunk(0)
	if err != nil {
		return nil, errors.Wrap(err, "table header")
	}
	if hdr.Type != chunkTypeTable {
		return nil, errors.Errorf("expected table chunk, found 0x%04x", hdr.Type)
	}
	table := &resourceTable{}
	for off := int(hdr.HeaderSize); off < chunk.Len(); {
		child, childView, err := chunk.readChunk(off)
		if err != nil {
			return nil, errors.Wrapf(err, "table child at offset %d", off)
		}
		switch child.Type {
		case chunkTypeStringPool:
			if table.strings == nil {
				if table.strings, err = decodeStringPool(childView); err != nil {
					return nil, errors.Wrap(err, "global string pool")
				}
			}
		case chunkTypePackage:
			pkg, err := decodePackage(childView)
			if err != nil {
				return nil, errors.Wrapf(err, "package at offset %d", off)
			}
			table.packages = append(table.packages, pkg)
		}
		off += int(child.Size)
	}
	return table, nil
}

type tablePackage struct {
	id           uint8
	name         string
	typeIDOffset uint8
	typeStrings  *stringPool
	keyStrings   *stringPool
	specs        [256]*typeSpecChunk
	dynamicMap   []types.DynamicPackageEntry
}

type typeSpecChunk struct {
	id    uint8
	flags []uint32
	types []*typeChunk
}

type typeChunk struct {
	config     types.Configuration
	sparse     bool
	entryCount uint32
	offsets    byteView
	entries    byteView
}

func decodePackage(chunk byteView) (*tablePackage, error) {
	headerSize, _ := chunk.u16(2)
	if headerSize < packageHeaderMinSize {
		return nil, errors.Errorf("package header size %d is too small", headerSize)
	}
	id, _ := chunk.u32(8)
	if id > 0xff {
		return nil, errors.Errorf("package id 0x%x out of range", id)
	}
	rawName, _ := chunk.bytes(12, packageNameBytes)
	name, err := decodeFixedUTF16(rawName)
	if err != nil {
		return nil, errors.Wrap(err, "package name")
	}
	pkg := &tablePackage{id: uint8(id), name: name}

	typeStringsOff, _ := chunk.u32(268)
	keyStringsOff, _ := chunk.u32(276)
	if headerSize >= packageHeaderSize {
		offset, _ := chunk.u32(284)
		if offset > 0xff {
			return nil, errors.Errorf("type id offset %d out of range", offset)
		}
		pkg.typeIDOffset = uint8(offset)
	}
	if pkg.typeStrings, err = decodePoolAt(chunk, int(typeStringsOff)); err != nil {
		return nil, errors.Wrap(err, "type strings")
	}
	if pkg.keyStrings, err = decodePoolAt(chunk, int(keyStringsOff)); err != nil {
		return nil, errors.Wrap(err, "key strings")
	}

	for off := int(headerSize); off < chunk.Len(); {
		child, childView, err := chunk.readChunk(off)
		if err != nil {
			return nil, errors.Wrapf(err, "package child at offset %d", off)
		}
		switch child.Type {
		case chunkTypeTypeSpec:
			if err := pkg.addTypeSpec(childView); err != nil {
				return nil, err
			}
		case chunkTypeType:
			if err := pkg.addType(childView); err != nil {
				return nil, err
			}
		case chunkTypeLibrary:
			if err := pkg.addLibrary(childView); err != nil {
				return nil, err
			}
		}
		off += int(child.Size)
	}
	return pkg, nil
}

func decodePoolAt(chunk byteView, off int) (*stringPool, error) {
	v, err := chunk.tail(off)
	if err != nil {
		return nil, err
	}
	return decodeStringPool(v)
}

func (p *tablePackage) addTypeSpec(chunk byteView) error {
	id, _ := chunk.u8(8)
	if id == 0 {
		return errors.New("type spec with id 0")
	}
	count, _ := chunk.u32(12)
	headerSize, _ := chunk.u16(2)
	flagsView, err := chunk.sub(int(headerSize), int(count)*4)
	if err != nil {
		return errors.Wrapf(err, "type spec %d flags", id)
	}
	spec := p.specs[id-1]
	if spec == nil {
		spec = &typeSpecChunk{id: id}
		p.specs[id-1] = spec
	}
	spec.flags = make([]uint32, count)
	for i := range spec.flags {
		spec.flags[i], _ = flagsView.u32(i * 4)
	}
	return nil
}

func (p *tablePackage) addType(chunk byteView) error {
	headerSize, _ := chunk.u16(2)
	if headerSize < typeHeaderMinSize {
		return errors.Errorf("type header size %d is too small", headerSize)
	}
	id, _ := chunk.u8(8)
	if id == 0 {
		return errors.New("type with id 0")
	}
	flags, _ := chunk.u8(9)
	count, _ := chunk.u32(12)
	entriesStart, _ := chunk.u32(16)
	cfg, _, err := decodeConfig(chunk, 20)
	if err != nil {
		return errors.Wrapf(err, "type %d config", id)
	}
	t := &typeChunk{config: cfg, sparse: flags&typeFlagSparse != 0, entryCount: count}
	if t.offsets, err = chunk.sub(int(headerSize), int(count)*4); err != nil {
		return errors.Wrapf(err, "type %d offsets", id)
	}
	if t.entries, err = chunk.tail(int(entriesStart)); err != nil {
		return errors.Wrapf(err, "type %d entries", id)
	}
	spec := p.specs[id-1]
	if spec == nil {
		spec = &typeSpecChunk{id: id}
		p.specs[id-1] = spec
	}
	spec.types = append(spec.types, t)
	return nil
}

func (p *tablePackage) addLibrary(chunk byteView) error {
	headerSize, _ := chunk.u16(2)
	count, _ := chunk.u32(8)
	for i := 0; i < int(count); i++ {
		entry, err := chunk.sub(int(headerSize)+i*libraryEntrySize, libraryEntrySize)
		if err != nil {
			return errors.Wrap(err, "library entry")
		}
		id, _ := entry.u32(0)
		rawName, _ := entry.bytes(4, packageNameBytes)
		name, err := decodeFixedUTF16(rawName)
		if err != nil {
			return errors.Wrap(err, "library name")
		}
		p.dynamicMap = append(p.dynamicMap, types.DynamicPackageEntry{PackageName: name, PackageID: uint8(id)})
	}
	return nil
}

// entryOffset returns the offset of entry index within the entries area.
func (t *typeChunk) entryOffset(index uint16) (int, bool, error) {
	if !t.sparse {
		if uint32(index) >= t.entryCount {
			return 0, false, nil
		}
		off, err := t.offsets.u32(int(index) * 4)
		if err != nil {
			return 0, false, err
		}
		if off == noEntry {
			return 0, false, nil
		}
		return int(off), true, nil
	}
	// Sparse types list (index u16, offset/4 u16) pairs sorted by index.
	n := int(t.entryCount)
	var readErr error
	i := sort.Search(n, func(i int) bool {
		idx, err := t.offsets.u16(i * 4)
		if err != nil {
			readErr = err
			return true
		}
		return idx >= index
	})
	if readErr != nil {
		return 0, false, readErr
	}
	if i == n {
		return 0, false, nil
	}
	idx, _ := t.offsets.u16(i * 4)
	if idx != index {
		return 0, false, nil
	}
	off, err := t.offsets.u16(i*4 + 2)
	if err != nil {
		return 0, false, err
	}
	return int(off) * 4, true, nil
}

func (t *typeChunk) entryKey(off int) (uint32, error) {
	return t.entries.u32(off + 4)
}

// decodeEntry decodes the entry at off. Complex entries with a header too
// short to hold a parent and count are returned without a map so callers
// can reject them.
func (t *typeChunk) decodeEntry(off int) (types.TableEntry, error) {
	var entry types.TableEntry
	var err error
	if entry.HeaderSize, err = t.entries.u16(off); err != nil {
		return entry, errors.Wrap(err, "entry size")
	}
	if entry.Flags, err = t.entries.u16(off + 2); err != nil {
		return entry, errors.Wrap(err, "entry flags")
	}
	if entry.KeyIndex, err = t.entries.u32(off + 4); err != nil {
		return entry, errors.Wrap(err, "entry key")
	}
	if entry.HeaderSize < types.EntryHeaderSize {
		return entry, errors.Errorf("entry header size %d is too small", entry.HeaderSize)
	}
	if !entry.IsComplex() {
		entry.Value, err = decodeValue(t.entries, off+int(entry.HeaderSize))
		return entry, err
	}
	if entry.HeaderSize < types.MapEntryHeaderSize {
		return entry, nil
	}
	parent, err := t.entries.u32(off + 8)
	if err != nil {
		return entry, errors.Wrap(err, "map parent")
	}
	count, err := t.entries.u32(off + 12)
	if err != nil {
		return entry, errors.Wrap(err, "map count")
	}
	items, err := t.entries.sub(off+int(entry.HeaderSize), int(count)*types.MapItemSize)
	if err != nil {
		return entry, errors.Wrapf(err, "map with %d items", count)
	}
	entry.Parent = types.ResID(parent)
	entry.Map = make([]types.MapEntry, count)
	for i := range entry.Map {
		name, _ := items.u32(i * types.MapItemSize)
		value, err := decodeValue(items, i*types.MapItemSize+4)
		if err != nil {
			return entry, errors.Wrapf(err, "map item %d", i)
		}
		entry.Map[i] = types.MapEntry{Name: types.ResID(name), Value: value}
	}
	return entry, nil
}

func decodeValue(v byteView, off int) (types.Value, error) {
	size, err := v.u16(off)
	if err != nil {
		return types.Value{}, errors.Wrap(err, "value size")
	}
	if size < types.ValueSize {
		return types.Value{}, errors.Errorf("value size %d is too small", size)
	}
	dataType, err := v.u8(off + 3)
	if err != nil {
		return types.Value{}, errors.Wrap(err, "value type")
	}
	data, err := v.u32(off + 4)
	if err != nil {
		return types.Value{}, errors.Wrap(err, "value data")
	}
	return types.Value{Type: types.DataType(dataType), Data: data}, nil
}
