package adapters

import (
	"encoding/binary"
	"unicode/utf16"
)

// chunkWriter appends little-endian fields to a byte slice.
type chunkWriter struct {
	buf []byte
}

func (w *chunkWriter) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *chunkWriter) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *chunkWriter) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *chunkWriter) raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *chunkWriter) pad4() {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

// encodeChunk writes a chunk whose header and body are produced by the two
// callbacks; sizes are filled in from what they write.
func encodeChunk(chunkType uint16, header func(w *chunkWriter), body func(w *chunkWriter)) []byte {
	var hw, bw chunkWriter
	header(&hw)
	body(&bw)
	headerSize := chunkHeaderSize + len(hw.buf)
	var out chunkWriter
	out.u16(chunkType)
	out.u16(uint16(headerSize))
	out.u32(uint32(headerSize + len(bw.buf)))
	out.raw(hw.buf)
	out.raw(bw.buf)
	return out.buf
}

// encodeStringPool writes a string pool chunk in UTF-8 or UTF-16 form.
func encodeStringPool(values []string, utf8Form bool) ([]byte, error) {
	var data chunkWriter
	offsets := make([]uint32, len(values))
	for i, s := range values {
		offsets[i] = uint32(len(data.buf))
		if utf8Form {
			writeUTF8Length(&data, len(utf16.Encode([]rune(s))))
			writeUTF8Length(&data, len(s))
			data.raw([]byte(s))
			data.u8(0)
			continue
		}
		encoded, err := encodeUTF16(s)
		if err != nil {
			return nil, err
		}
		units := len(encoded) / 2
		if units > 0x7fff {
			data.u16(uint16(0x8000 | units>>16))
		}
		data.u16(uint16(units))
		data.raw(encoded)
		data.u16(0)
	}
	data.pad4()

	var flags uint32
	if utf8Form {
		flags = stringPoolUTF8Flag
	}
	return encodeChunk(chunkTypeStringPool, func(w *chunkWriter) {
		w.u32(uint32(len(values)))
		w.u32(0)
		w.u32(flags)
		w.u32(uint32(stringPoolHeaderSize + 4*len(values)))
		w.u32(0)
	}, func(w *chunkWriter) {
		for _, off := range offsets {
			w.u32(off)
		}
		w.raw(data.buf)
	}), nil
}

func writeUTF8Length(w *chunkWriter, n int) {
	if n > 0x7f {
		w.u8(uint8(0x80 | n>>8))
	}
	w.u8(uint8(n))
}

// encodeFixedUTF16 writes s into a zero padded UTF-16 field of size bytes.
func encodeFixedUTF16(s string, size int) ([]byte, error) {
	encoded, err := encodeUTF16(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	if len(encoded) > size-2 {
		encoded = encoded[:size-2]
	}
	copy(out, encoded)
	return out, nil
}
