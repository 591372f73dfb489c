package types

type DataType uint8

const (
	DataTypeNull             DataType = 0x00
	DataTypeReference        DataType = 0x01
	DataTypeAttribute        DataType = 0x02
	DataTypeString           DataType = 0x03
	DataTypeFloat            DataType = 0x04
	DataTypeDimension        DataType = 0x05
	DataTypeFraction         DataType = 0x06
	DataTypeDynamicReference DataType = 0x07
	DataTypeDynamicAttribute DataType = 0x08
	DataTypeIntDec           DataType = 0x10
	DataTypeIntHex           DataType = 0x11
	DataTypeIntBoolean       DataType = 0x12
	DataTypeIntColorARGB8    DataType = 0x1c
	DataTypeIntColorRGB8     DataType = 0x1d
	DataTypeIntColorARGB4    DataType = 0x1e
	DataTypeIntColorRGB4     DataType = 0x1f
)

// Data payloads of a NULL value.
const (
	DataNullUndefined uint32 = 0
	DataNullEmpty     uint32 = 1
)

var dataTypeNames = map[DataType]string{
	DataTypeNull:             "null",
	DataTypeReference:        "reference",
	DataTypeAttribute:        "attribute",
	DataTypeString:           "string",
	DataTypeFloat:            "float",
	DataTypeDimension:        "dimension",
	DataTypeFraction:         "fraction",
	DataTypeDynamicReference: "dynamic_reference",
	DataTypeDynamicAttribute: "dynamic_attribute",
	DataTypeIntDec:           "int_dec",
	DataTypeIntHex:           "int_hex",
	DataTypeIntBoolean:       "bool",
	DataTypeIntColorARGB8:    "color_argb8",
	DataTypeIntColorRGB8:     "color_rgb8",
	DataTypeIntColorARGB4:    "color_argb4",
	DataTypeIntColorRGB4:     "color_rgb4",
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseDataType maps a data type name back to its DataType.
func ParseDataType(name string) (DataType, bool) {
	for t, n := range dataTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// ConfigChange is a bitmask of configuration axes. The same layout is used
// for Configuration.Diff results and for per-entry type spec flags.
type ConfigChange uint32

const (
	ConfigMCC                ConfigChange = 0x0001
	ConfigMNC                ConfigChange = 0x0002
	ConfigLocale             ConfigChange = 0x0004
	ConfigTouchscreen        ConfigChange = 0x0008
	ConfigKeyboard           ConfigChange = 0x0010
	ConfigKeyboardHidden     ConfigChange = 0x0020
	ConfigNavigation         ConfigChange = 0x0040
	ConfigOrientation        ConfigChange = 0x0080
	ConfigDensity            ConfigChange = 0x0100
	ConfigScreenSize         ConfigChange = 0x0200
	ConfigVersion            ConfigChange = 0x0400
	ConfigScreenLayout       ConfigChange = 0x0800
	ConfigUIMode             ConfigChange = 0x1000
	ConfigSmallestScreenSize ConfigChange = 0x2000
	ConfigLayoutDir          ConfigChange = 0x4000
	ConfigScreenRound        ConfigChange = 0x8000
	ConfigColorMode          ConfigChange = 0x10000

	// ConfigAll requests a full cache invalidation.
	ConfigAll ConfigChange = 0xffffffff
)

// SpecPublic marks a publicly exported entry in type spec flags.
const SpecPublic uint32 = 0x40000000

// Entry header flags.
const (
	EntryFlagComplex uint16 = 0x0001
	EntryFlagPublic  uint16 = 0x0002
	EntryFlagWeak    uint16 = 0x0004
)

// Header sizes of table entries.
const (
	EntryHeaderSize    = 8
	MapEntryHeaderSize = 16
	MapItemSize        = 12
	ValueSize          = 8
)
