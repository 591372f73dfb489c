package adapters

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// byteView is a bounds-checked little-endian window over table bytes.
// Offsets are relative to the start of the view.
type byteView struct {
	data []byte
}

func newByteView(data []byte) byteView {
	return byteView{data: data}
}

func (v byteView) Len() int {
	return len(v.data)
}

func (v byteView) check(off, n int) error {
	if off < 0 || n < 0 || off > len(v.data) || len(v.data)-off < n {
		return errors.Errorf("read of %d bytes at offset %d exceeds view of %d bytes", n, off, len(v.data))
	}
	return nil
}

func (v byteView) u8(off int) (uint8, error) {
	if err := v.check(off, 1); err != nil {
		return 0, err
	}
	return v.data[off], nil
}

func (v byteView) u16(off int) (uint16, error) {
	if err := v.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.data[off:]), nil
}

func (v byteView) u32(off int) (uint32, error) {
	if err := v.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v.data[off:]), nil
}

// sub returns the n bytes starting at off as a new view.
func (v byteView) sub(off, n int) (byteView, error) {
	if err := v.check(off, n); err != nil {
		return byteView{}, err
	}
	return byteView{data: v.data[off : off+n : off+n]}, nil
}

// tail returns everything from off to the end of the view.
func (v byteView) tail(off int) (byteView, error) {
	if err := v.check(off, 0); err != nil {
		return byteView{}, err
	}
	return byteView{data: v.data[off:]}, nil
}

func (v byteView) bytes(off, n int) ([]byte, error) {
	if err := v.check(off, n); err != nil {
		return nil, err
	}
	return v.data[off : off+n], nil
}

// chunkHeader is the common header that starts every table chunk.
type chunkHeader struct {
	Type       uint16
	HeaderSize uint16
	Size       uint32
}

const chunkHeaderSize = 8

// readChunk reads the chunk header at off and returns the header together
// with a view limited to the chunk.
func (v byteView) readChunk(off int) (chunkHeader, byteView, error) {
	var hdr chunkHeader
	var err error
	if hdr.Type, err = v.u16(off); err != nil {
		return hdr, byteView{}, errors.Wrap(err, "chunk type")
	}
	if hdr.HeaderSize, err = v.u16(off + 2); err != nil {
		return hdr, byteView{}, errors.Wrap(err, "chunk header size")
	}
	if hdr.Size, err = v.u32(off + 4); err != nil {
		return hdr, byteView{}, errors.Wrap(err, "chunk size")
	}
	if hdr.HeaderSize < chunkHeaderSize || uint32(hdr.HeaderSize) > hdr.Size {
		return hdr, byteView{}, errors.Errorf("chunk 0x%04x at offset %d has header size %d and size %d", hdr.Type, off, hdr.HeaderSize, hdr.Size)
	}
	chunk, err := v.sub(off, int(hdr.Size))
	if err != nil {
		return hdr, byteView{}, errors.Wrapf(err, "chunk 0x%04x", hdr.Type)
	}
	return hdr, chunk, nil
}
