package adapters

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

const (
	chunkTypeStringPool  uint16 = 0x0001
	stringPoolHeaderSize        = 28
	stringPoolUTF8Flag   uint32 = 1 << 8
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// stringPool decodes strings on demand so a damaged string only fails the
// lookups that touch it.
type stringPool struct {
	count   uint32
	utf8    bool
	offsets byteView
	strings byteView
}

func decodeStringPool(chunk byteView) (*stringPool, error) {
	hdr, chunk, err := chunk.readChunk(0)
	if err != nil {
		return nil, errors.Wrap(err, "string pool")
	}
	if hdr.Type != chunkTypeStringPool {
		return nil, errors.Errorf("expected string pool chunk, found 0x%04x", hdr.Type)
	}
	if hdr.HeaderSize < stringPoolHeaderSize {
		return nil, errors.Errorf("string pool header size %d is too small", hdr.HeaderSize)
	}
	count, _ := chunk.u32(8)
	flags, _ := chunk.u32(16)
	start, _ := chunk.u32(20)
	offsets, err := chunk.sub(int(hdr.HeaderSize), int(count)*4)
	if err != nil {
		return nil, errors.Wrap(err, "string pool offsets")
	}
	pool := &stringPool{
		count:   count,
		utf8:    flags&stringPoolUTF8Flag != 0,
		offsets: offsets,
	}
	if count > 0 {
		if pool.strings, err = chunk.tail(int(start)); err != nil {
			return nil, errors.Wrap(err, "string pool data")
		}
	}
	return pool, nil
}

func (p *stringPool) Len() int {
	if p == nil {
		return 0
	}
	return int(p.count)
}

func (p *stringPool) get(index uint32) (string, error) {
	if p == nil || index >= p.count {
		return "", errors.Errorf("string index %d out of range", index)
	}
	off, err := p.offsets.u32(int(index) * 4)
	if err != nil {
		return "", err
	}
	if p.utf8 {
		return p.utf8At(int(off))
	}
	return p.utf16At(int(off))
}

// indexOf returns the index of s, scanning the pool.
func (p *stringPool) indexOf(s string) (uint32, bool) {
	for i := uint32(0); i < uint32(p.Len()); i++ {
		if v, err := p.get(i); err == nil && v == s {
			return i, true
		}
	}
	return 0, false
}

func (p *stringPool) utf8At(off int) (string, error) {
	_, n, err := p.utf8Length(off)
	if err != nil {
		return "", err
	}
	off += n
	size, n, err := p.utf8Length(off)
	if err != nil {
		return "", err
	}
	raw, err := p.strings.bytes(off+n, size)
	if err != nil {
		return "", errors.Wrap(err, "utf-8 string")
	}
	return string(raw), nil
}

// utf8Length reads a one or two byte length prefix.
func (p *stringPool) utf8Length(off int) (int, int, error) {
	first, err := p.strings.u8(off)
	if err != nil {
		return 0, 0, err
	}
	if first&0x80 == 0 {
		return int(first), 1, nil
	}
	second, err := p.strings.u8(off + 1)
	if err != nil {
		return 0, 0, err
	}
	return int(first&0x7f)<<8 | int(second), 2, nil
}

func (p *stringPool) utf16At(off int) (string, error) {
	first, err := p.strings.u16(off)
	if err != nil {
		return "", err
	}
	units, n := int(first), 2
	if first&0x8000 != 0 {
		second, err := p.strings.u16(off + 2)
		if err != nil {
			return "", err
		}
		units, n = int(first&0x7fff)<<16|int(second), 4
	}
	raw, err := p.strings.bytes(off+n, units*2)
	if err != nil {
		return "", errors.Wrap(err, "utf-16 string")
	}
	return decodeUTF16(raw)
}

func decodeUTF16(raw []byte) (string, error) {
	out, err := utf16LE.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(err, "decode utf-16")
	}
	return string(out), nil
}

// decodeFixedUTF16 decodes a NUL terminated UTF-16 field of fixed width,
// such as a package name.
func decodeFixedUTF16(raw []byte) (string, error) {
	end := len(raw) &^ 1
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			end = i
			break
		}
	}
	return decodeUTF16(raw[:end])
}

func encodeUTF16(s string) ([]byte, error) {
	out, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrap(err, "encode utf-16")
	}
	return out, nil
}
