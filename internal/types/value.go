package types

import "fmt"

// Cookie identifies the loaded source a value came from: its index in the
// ordered source list.
type Cookie int32

const InvalidCookie Cookie = -1

func (c Cookie) IsValid() bool {
	return c >= 0
}

type Value struct {
	Type DataType
	Data uint32
}

func (v Value) IsNull() bool {
	return v.Type == DataTypeNull && v.Data != DataNullEmpty
}

func (v Value) String() string {
	switch v.Type {
	case DataTypeNull:
		if v.Data == DataNullEmpty {
			return "@empty"
		}
		return "@null"
	case DataTypeReference, DataTypeDynamicReference:
		return fmt.Sprintf("@0x%08x", v.Data)
	case DataTypeAttribute, DataTypeDynamicAttribute:
		return fmt.Sprintf("?0x%08x", v.Data)
	case DataTypeIntDec:
		return fmt.Sprintf("%d", int32(v.Data))
	case DataTypeIntBoolean:
		if v.Data != 0 {
			return "true"
		}
		return "false"
	case DataTypeIntColorARGB8, DataTypeIntColorRGB8, DataTypeIntColorARGB4, DataTypeIntColorRGB4:
		return fmt.Sprintf("#%08x", v.Data)
	default:
		return fmt.Sprintf("(%s) 0x%08x", v.Type, v.Data)
	}
}

// MapEntry is one key/value pair of a complex (bag) entry.
type MapEntry struct {
	Name  ResID
	Value Value
}

// TableEntry is one decoded entry of a type table. Simple entries carry
// Value; complex entries carry Parent and Map.
type TableEntry struct {
	HeaderSize uint16
	Flags      uint16
	KeyIndex   uint32
	Value      Value
	Parent     ResID
	Map        []MapEntry
}

func (e TableEntry) IsComplex() bool {
	return e.Flags&EntryFlagComplex != 0
}

// PackageEntry is the best entry a single package holds for a resource
// under a desired configuration.
type PackageEntry struct {
	Entry         TableEntry
	Config        Configuration
	TypeSpecFlags uint32
	TypeName      string
	EntryName     string
}

// DynamicPackageEntry maps a shared library package name to the package
// id it was assigned at build time.
type DynamicPackageEntry struct {
	PackageName string
	PackageID   uint8
}

// BagEntry is one flattened entry of a resolved bag.
type BagEntry struct {
	Key    ResID
	Value  Value
	Cookie Cookie
}

// ResolvedBag is a fully inherited style or array, sorted by key. It is
// never mutated once built.
type ResolvedBag struct {
	TypeSpecFlags uint32
	Entries       []BagEntry
}

// Find returns the entry for key using binary search.
func (b *ResolvedBag) Find(key ResID) (BagEntry, bool) {
	lo, hi := 0, len(b.Entries)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if b.Entries[mid].Key < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(b.Entries) && b.Entries[lo].Key == key {
		return b.Entries[lo], true
	}
	return BagEntry{}, false
}

// ResolvedValue is a value together with where and how it was selected.
// LastReference is the last reference id followed while resolving, zero if
// none was followed.
type ResolvedValue struct {
	Cookie        Cookie
	Value         Value
	Config        Configuration
	TypeSpecFlags uint32
	LastReference ResID
}

// ResourceName is the package:type/entry triple of a resource.
type ResourceName struct {
	Package string
	Type    string
	Entry   string
}

func (n ResourceName) String() string {
	out := n.Entry
	if n.Type != "" {
		out = n.Type + "/" + out
	}
	if n.Package != "" {
		out = n.Package + ":" + out
	}
	return out
}
