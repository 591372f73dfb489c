package types

import "fmt"

// ResID is a packed resource identifier laid out as 0xPPTTEEEE: an 8-bit
// package id, an 8-bit type id (1-based) and a 16-bit entry id.
type ResID uint32

const (
	// AppPackageID is the build-time id of a regular application package.
	AppPackageID uint8 = 0x7f
	// SystemPackageID is the build-time id of the framework package.
	SystemPackageID uint8 = 0x01
)

// NewResID packs a package id, 1-based type id and entry id.
func NewResID(pkg, typ uint8, entry uint16) ResID {
	return ResID(uint32(pkg)<<24 | uint32(typ)<<16 | uint32(entry))
}

// Unpack returns the package id, 1-based type id and entry id.
func (id ResID) Unpack() (uint8, uint8, uint16) {
	return id.PackageID(), id.TypeID(), id.EntryID()
}

func (id ResID) PackageID() uint8 {
	return uint8(id >> 24)
}

// TypeID is the wire (1-based) type id.
func (id ResID) TypeID() uint8 {
	return uint8(id >> 16)
}

// TypeIndex is the 0-based type index used to address type tables. It is
// only meaningful for valid ids.
func (id ResID) TypeIndex() uint8 {
	return id.TypeID() - 1
}

func (id ResID) EntryID() uint16 {
	return uint16(id)
}

// IsValid reports whether both the package and type bytes are set.
func (id ResID) IsValid() bool {
	return id&0xff000000 != 0 && id&0x00ff0000 != 0
}

// IsInternal reports whether id is a table-private key such as a bag
// attribute marker (0x01000000) or an array index (0x02000000|n). Internal
// ids are never rewritten through a dynamic reference table.
func (id ResID) IsInternal() bool {
	return id&0xffff0000 != 0 && id&0x00ff0000 == 0
}

// WithPackageID replaces the package byte.
func (id ResID) WithPackageID(pkg uint8) ResID {
	return ResID(uint32(id)&0x00ffffff | uint32(pkg)<<24)
}

func (id ResID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}
