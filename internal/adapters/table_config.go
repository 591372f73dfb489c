package adapters

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"resengine/internal/types"
)

// tableConfigSize is the configuration size written by the compiler. Older
// and newer tables carry shorter or longer configurations; missing fields
// read as zero and unknown trailing fields are ignored.
const tableConfigSize = 52

func decodeConfig(v byteView, off int) (types.Configuration, int, error) {
	size, err := v.u32(off)
	if err != nil {
		return types.Configuration{}, 0, errors.Wrap(err, "config size")
	}
	if size < 4 {
		return types.Configuration{}, 0, errors.Errorf("config size %d is too small", size)
	}
	raw, err := v.bytes(off, int(size))
	if err != nil {
		return types.Configuration{}, 0, errors.Wrap(err, "config")
	}
	buf := make([]byte, tableConfigSize)
	copy(buf, raw)

	le := binary.LittleEndian
	var cfg types.Configuration
	cfg.Mcc = le.Uint16(buf[4:])
	cfg.Mnc = le.Uint16(buf[6:])
	copy(cfg.Language[:], buf[8:10])
	copy(cfg.Country[:], buf[10:12])
	cfg.Orientation = buf[12]
	cfg.Touchscreen = buf[13]
	cfg.Density = le.Uint16(buf[14:])
	cfg.Keyboard = buf[16]
	cfg.Navigation = buf[17]
	cfg.InputFlags = buf[18]
	cfg.ScreenWidth = le.Uint16(buf[20:])
	cfg.ScreenHeight = le.Uint16(buf[22:])
	cfg.SDKVersion = le.Uint16(buf[24:])
	cfg.MinorVersion = le.Uint16(buf[26:])
	cfg.ScreenLayout = buf[28]
	cfg.UIMode = buf[29]
	cfg.SmallestScreenWidthDp = le.Uint16(buf[30:])
	cfg.ScreenWidthDp = le.Uint16(buf[32:])
	cfg.ScreenHeightDp = le.Uint16(buf[34:])
	copy(cfg.Script[:], buf[36:40])
	copy(cfg.Variant[:], buf[40:48])
	cfg.ScreenLayout2 = buf[48]
	cfg.ColorMode = buf[49]
	return cfg, int(size), nil
}

func encodeConfig(cfg types.Configuration) []byte {
	buf := make([]byte, tableConfigSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], tableConfigSize)
	le.PutUint16(buf[4:], cfg.Mcc)
	le.PutUint16(buf[6:], cfg.Mnc)
	copy(buf[8:10], cfg.Language[:])
	copy(buf[10:12], cfg.Country[:])
	buf[12] = cfg.Orientation
	buf[13] = cfg.Touchscreen
	le.PutUint16(buf[14:], cfg.Density)
	buf[16] = cfg.Keyboard
	buf[17] = cfg.Navigation
	buf[18] = cfg.InputFlags
	le.PutUint16(buf[20:], cfg.ScreenWidth)
	le.PutUint16(buf[22:], cfg.ScreenHeight)
	le.PutUint16(buf[24:], cfg.SDKVersion)
	le.PutUint16(buf[26:], cfg.MinorVersion)
	buf[28] = cfg.ScreenLayout
	buf[29] = cfg.UIMode
	le.PutUint16(buf[30:], cfg.SmallestScreenWidthDp)
	le.PutUint16(buf[32:], cfg.ScreenWidthDp)
	le.PutUint16(buf[34:], cfg.ScreenHeightDp)
	copy(buf[36:40], cfg.Script[:])
	copy(buf[40:48], cfg.Variant[:])
	buf[48] = cfg.ScreenLayout2
	buf[49] = cfg.ColorMode
	return buf
}
