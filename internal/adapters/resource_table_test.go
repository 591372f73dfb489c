package adapters

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resengine/internal/types"
)

func TestLoadTableRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":       nil,
		"short":       {0x02, 0x00, 0x0c},
		"wrong chunk": encodeChunk(chunkTypePackage, func(w *chunkWriter) { w.u32(0) }, func(*chunkWriter) {}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadTable(data)
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
		})
	}
}

func TestLoadTableWithoutPackages(t *testing.T) {
	data := encodeChunk(chunkTypeTable, func(w *chunkWriter) { w.u32(0) }, func(*chunkWriter) {})
	table, err := loadTable(data)
	require.NoError(t, err)
	assert.Empty(t, table.packages)
	assert.Zero(t, table.strings.Len())
}

// packageWith builds a single-type package around one hand written type
// chunk.
func packageWith(t *typeChunk, entries int) *tablePackage {
	pkg := &tablePackage{id: types.AppPackageID, name: "com.example.app"}
	pkg.specs[0] = &typeSpecChunk{id: 1, flags: make([]uint32, entries), types: []*typeChunk{t}}
	return pkg
}

func TestFindEntryReportsCorruptValue(t *testing.T) {
	var entries chunkWriter
	entries.u16(types.EntryHeaderSize)
	entries.u16(0)
	entries.u32(0)
	entries.u16(types.ValueSize)
	entries.u8(0)

	var offsets chunkWriter
	offsets.u32(0)
	pkg := packageWith(&typeChunk{
		entryCount: 1,
		offsets:    newByteView(offsets.buf),
		entries:    newByteView(entries.buf),
	}, 1)

	_, ok, err := pkg.FindEntry(0, 0, types.Configuration{})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "corrupt entry 0x7f010000")
}

func TestFindEntryShortComplexHeader(t *testing.T) {
	var entries chunkWriter
	entries.u16(types.EntryHeaderSize)
	entries.u16(types.EntryFlagComplex)
	entries.u32(0)

	var offsets chunkWriter
	offsets.u32(0)
	pkg := packageWith(&typeChunk{
		entryCount: 1,
		offsets:    newByteView(offsets.buf),
		entries:    newByteView(entries.buf),
	}, 1)

	entry, ok, err := pkg.FindEntry(0, 0, types.Configuration{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.Entry.IsComplex())
	assert.Nil(t, entry.Entry.Map)
	assert.Equal(t, uint16(types.EntryHeaderSize), entry.Entry.HeaderSize)
}

func TestSparseEntryOffsets(t *testing.T) {
	var offsets chunkWriter
	offsets.u16(0)
	offsets.u16(0)
	offsets.u16(3)
	offsets.u16(4)
	offsets.u16(9)
	offsets.u16(8)
	chunk := &typeChunk{sparse: true, entryCount: 3, offsets: newByteView(offsets.buf)}

	tests := []struct {
		index  uint16
		want   int
		wantOK bool
	}{
		{index: 0, want: 0, wantOK: true},
		{index: 1},
		{index: 3, want: 16, wantOK: true},
		{index: 9, want: 32, wantOK: true},
		{index: 10},
	}
	for _, tt := range tests {
		off, ok, err := chunk.entryOffset(tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.wantOK, ok, "index %d", tt.index)
		assert.Equal(t, tt.want, off, "index %d", tt.index)
	}
}

func TestDenseEntryOffsets(t *testing.T) {
	var offsets chunkWriter
	offsets.u32(0)
	offsets.u32(noEntry)
	offsets.u32(24)
	chunk := &typeChunk{entryCount: 3, offsets: newByteView(offsets.buf)}

	off, ok, err := chunk.entryOffset(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24, off)

	_, ok, err = chunk.entryOffset(1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = chunk.entryOffset(3)
	require.NoError(t, err)
	assert.False(t, ok)

	truncated := &typeChunk{entryCount: 5, offsets: newByteView(offsets.buf)}
	_, _, err = truncated.entryOffset(4)
	assert.Error(t, err)
}
