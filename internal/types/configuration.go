package types

import "bytes"

// Orientation values.
const (
	OrientationAny    uint8 = 0
	OrientationPort   uint8 = 1
	OrientationLand   uint8 = 2
	OrientationSquare uint8 = 3
)

// Touchscreen values.
const (
	TouchscreenAny     uint8 = 0
	TouchscreenNoTouch uint8 = 1
	TouchscreenStylus  uint8 = 2
	TouchscreenFinger  uint8 = 3
)

// Density values in dpi. DensityAny selects vector-like resources that never
// need scaling.
const (
	DensityDefault uint16 = 0
	DensityLow     uint16 = 120
	DensityMedium  uint16 = 160
	DensityTV      uint16 = 213
	DensityHigh    uint16 = 240
	DensityXHigh   uint16 = 320
	DensityXXHigh  uint16 = 480
	DensityXXXHigh uint16 = 640
	DensityAny     uint16 = 0xfffe
	DensityNone    uint16 = 0xffff
)

// Keyboard values.
const (
	KeyboardAny    uint8 = 0
	KeyboardNoKeys uint8 = 1
	KeyboardQwerty uint8 = 2
	Keyboard12Key  uint8 = 3
)

// Navigation values.
const (
	NavigationAny       uint8 = 0
	NavigationNoNav     uint8 = 1
	NavigationDPad      uint8 = 2
	NavigationTrackball uint8 = 3
	NavigationWheel     uint8 = 4
)

// InputFlags bits.
const (
	MaskKeysHidden uint8 = 0x03
	KeysHiddenNo   uint8 = 0x01
	KeysHiddenYes  uint8 = 0x02
	KeysHiddenSoft uint8 = 0x03

	MaskNavHidden uint8 = 0x0c
	NavHiddenNo   uint8 = 0x04
	NavHiddenYes  uint8 = 0x08
)

// ScreenLayout bits.
const (
	MaskScreenSize   uint8 = 0x0f
	ScreenSizeSmall  uint8 = 0x01
	ScreenSizeNormal uint8 = 0x02
	ScreenSizeLarge  uint8 = 0x03
	ScreenSizeXLarge uint8 = 0x04
	MaskScreenLong   uint8 = 0x30
	ScreenLongNo     uint8 = 0x10
	ScreenLongYes    uint8 = 0x20
	MaskLayoutDir    uint8 = 0xc0
	LayoutDirLTR     uint8 = 0x40
	LayoutDirRTL     uint8 = 0x80
	MaskScreenRound  uint8 = 0x03
	ScreenRoundNo    uint8 = 0x01
	ScreenRoundYes   uint8 = 0x02
	MaskWideColor    uint8 = 0x03
	WideColorNo      uint8 = 0x01
	WideColorYes     uint8 = 0x02
	MaskHDR          uint8 = 0x0c
	HDRNo            uint8 = 0x04
	HDRYes           uint8 = 0x08
)

// UIMode bits.
const (
	MaskUIModeType       uint8 = 0x0f
	UIModeTypeNormal     uint8 = 0x01
	UIModeTypeDesk       uint8 = 0x02
	UIModeTypeCar        uint8 = 0x03
	UIModeTypeTelevision uint8 = 0x04
	UIModeTypeAppliance  uint8 = 0x05
	UIModeTypeWatch      uint8 = 0x06
	UIModeTypeVRHeadset  uint8 = 0x07
	MaskUIModeNight      uint8 = 0x30
	UIModeNightNo        uint8 = 0x10
	UIModeNightYes       uint8 = 0x20
)

// Configuration describes a device (when used as the requested
// configuration) or the qualifiers of one resource variant.
type Configuration struct {
	Mcc uint16
	Mnc uint16

	Language [2]byte
	Country  [2]byte
	Script   [4]byte
	Variant  [8]byte

	Orientation uint8
	Touchscreen uint8
	Density     uint16

	Keyboard   uint8
	Navigation uint8
	InputFlags uint8

	ScreenWidth  uint16
	ScreenHeight uint16

	SDKVersion   uint16
	MinorVersion uint16

	ScreenLayout          uint8
	UIMode                uint8
	SmallestScreenWidthDp uint16

	ScreenWidthDp  uint16
	ScreenHeightDp uint16

	ScreenLayout2 uint8
	ColorMode     uint8
}

var (
	languageEnglish     = [2]byte{'e', 'n'}
	countryUnitedStates = [2]byte{'U', 'S'}
)

func (c Configuration) IsDefault() bool {
	return c == Configuration{}
}

func (c Configuration) hasLocale() bool {
	return c.Language[0] != 0 || c.Country[0] != 0 || c.Script[0] != 0 || c.Variant[0] != 0
}

// Diff returns the axes on which c and o differ.
func (c Configuration) Diff(o Configuration) ConfigChange {
	var diffs ConfigChange
	if c.Mcc != o.Mcc {
		diffs |= ConfigMCC
	}
	if c.Mnc != o.Mnc {
		diffs |= ConfigMNC
	}
	if c.Orientation != o.Orientation {
		diffs |= ConfigOrientation
	}
	if c.Density != o.Density {
		diffs |= ConfigDensity
	}
	if c.Touchscreen != o.Touchscreen {
		diffs |= ConfigTouchscreen
	}
	if (c.InputFlags^o.InputFlags)&(MaskKeysHidden|MaskNavHidden) != 0 {
		diffs |= ConfigKeyboardHidden
	}
	if c.Keyboard != o.Keyboard {
		diffs |= ConfigKeyboard
	}
	if c.Navigation != o.Navigation {
		diffs |= ConfigNavigation
	}
	if c.ScreenWidth != o.ScreenWidth || c.ScreenHeight != o.ScreenHeight {
		diffs |= ConfigScreenSize
	}
	if c.SDKVersion != o.SDKVersion || c.MinorVersion != o.MinorVersion {
		diffs |= ConfigVersion
	}
	if c.ScreenLayout&MaskLayoutDir != o.ScreenLayout&MaskLayoutDir {
		diffs |= ConfigLayoutDir
	}
	if c.ScreenLayout&^MaskLayoutDir != o.ScreenLayout&^MaskLayoutDir {
		diffs |= ConfigScreenLayout
	}
	if c.ScreenLayout2&MaskScreenRound != o.ScreenLayout2&MaskScreenRound {
		diffs |= ConfigScreenRound
	}
	if c.ColorMode != o.ColorMode {
		diffs |= ConfigColorMode
	}
	if c.UIMode != o.UIMode {
		diffs |= ConfigUIMode
	}
	if c.SmallestScreenWidthDp != o.SmallestScreenWidthDp {
		diffs |= ConfigSmallestScreenSize
	}
	if c.ScreenWidthDp != o.ScreenWidthDp || c.ScreenHeightDp != o.ScreenHeightDp {
		diffs |= ConfigScreenSize
	}
	if c.Language != o.Language || c.Country != o.Country || c.Script != o.Script || c.Variant != o.Variant {
		diffs |= ConfigLocale
	}
	return diffs
}

// Match reports whether a resource variant qualified by c can be used on a
// device described by requested. Density always matches since it can be
// scaled.
func (c Configuration) Match(requested Configuration) bool {
	if c.Mcc != 0 && c.Mcc != requested.Mcc {
		return false
	}
	if c.Mnc != 0 && c.Mnc != requested.Mnc {
		return false
	}
	if c.Language[0] != 0 {
		if c.Language != requested.Language {
			return false
		}
		if c.Script[0] != 0 && requested.Script[0] != 0 && c.Script != requested.Script {
			return false
		}
		if c.Country[0] != 0 && c.Country != requested.Country {
			return false
		}
	}

	if dir := c.ScreenLayout & MaskLayoutDir; dir != 0 && dir != requested.ScreenLayout&MaskLayoutDir {
		return false
	}
	if size := c.ScreenLayout & MaskScreenSize; size != 0 && size > requested.ScreenLayout&MaskScreenSize {
		return false
	}
	if long := c.ScreenLayout & MaskScreenLong; long != 0 && long != requested.ScreenLayout&MaskScreenLong {
		return false
	}
	if typ := c.UIMode & MaskUIModeType; typ != 0 && typ != requested.UIMode&MaskUIModeType {
		return false
	}
	if night := c.UIMode & MaskUIModeNight; night != 0 && night != requested.UIMode&MaskUIModeNight {
		return false
	}
	if c.SmallestScreenWidthDp != 0 && c.SmallestScreenWidthDp > requested.SmallestScreenWidthDp {
		return false
	}
	if round := c.ScreenLayout2 & MaskScreenRound; round != 0 && round != requested.ScreenLayout2&MaskScreenRound {
		return false
	}
	if wide := c.ColorMode & MaskWideColor; wide != 0 && wide != requested.ColorMode&MaskWideColor {
		return false
	}
	if hdr := c.ColorMode & MaskHDR; hdr != 0 && hdr != requested.ColorMode&MaskHDR {
		return false
	}
	if c.ScreenWidthDp != 0 && c.ScreenWidthDp > requested.ScreenWidthDp {
		return false
	}
	if c.ScreenHeightDp != 0 && c.ScreenHeightDp > requested.ScreenHeightDp {
		return false
	}
	if c.Orientation != 0 && c.Orientation != requested.Orientation {
		return false
	}
	if c.Touchscreen != 0 && c.Touchscreen != requested.Touchscreen {
		return false
	}

	keysHidden := c.InputFlags & MaskKeysHidden
	reqKeysHidden := requested.InputFlags & MaskKeysHidden
	if keysHidden != 0 && keysHidden != reqKeysHidden {
		// A request for "keys not hidden" also accepts the soft keyboard.
		if keysHidden != KeysHiddenNo || reqKeysHidden != KeysHiddenSoft {
			return false
		}
	}
	if nav := c.InputFlags & MaskNavHidden; nav != 0 && nav != requested.InputFlags&MaskNavHidden {
		return false
	}
	if c.Keyboard != 0 && c.Keyboard != requested.Keyboard {
		return false
	}
	if c.Navigation != 0 && c.Navigation != requested.Navigation {
		return false
	}
	if c.ScreenWidth != 0 && c.ScreenWidth > requested.ScreenWidth {
		return false
	}
	if c.ScreenHeight != 0 && c.ScreenHeight > requested.ScreenHeight {
		return false
	}
	if c.SDKVersion != 0 && c.SDKVersion > requested.SDKVersion {
		return false
	}
	if c.MinorVersion != 0 && c.MinorVersion != requested.MinorVersion {
		return false
	}
	return true
}

// IsBetterThan reports whether c is a better match than o for requested.
// Both c and o are expected to have passed Match. Axes are compared in
// qualifier precedence order and the first distinguishing axis decides.
func (c Configuration) IsBetterThan(o Configuration, requested Configuration) bool {
	if c.Mcc != 0 || c.Mnc != 0 || o.Mcc != 0 || o.Mnc != 0 {
		if c.Mcc != o.Mcc && requested.Mcc != 0 {
			return c.Mcc != 0
		}
		if c.Mnc != o.Mnc && requested.Mnc != 0 {
			return c.Mnc != 0
		}
	}

	if c.isLocaleBetterThan(o, requested) {
		return true
	} else if o.isLocaleBetterThan(c, requested) {
		return false
	}

	if c.ScreenLayout != 0 || o.ScreenLayout != 0 {
		if (c.ScreenLayout^o.ScreenLayout)&MaskLayoutDir != 0 && requested.ScreenLayout&MaskLayoutDir != 0 {
			return c.ScreenLayout&MaskLayoutDir > o.ScreenLayout&MaskLayoutDir
		}
	}

	if c.SmallestScreenWidthDp != o.SmallestScreenWidthDp {
		// Larger-than-device variants were filtered out by Match.
		return c.SmallestScreenWidthDp > o.SmallestScreenWidthDp
	}

	if c.ScreenWidthDp != 0 || c.ScreenHeightDp != 0 || o.ScreenWidthDp != 0 || o.ScreenHeightDp != 0 {
		myDelta, otherDelta := 0, 0
		if requested.ScreenWidthDp != 0 {
			myDelta += int(requested.ScreenWidthDp) - int(c.ScreenWidthDp)
			otherDelta += int(requested.ScreenWidthDp) - int(o.ScreenWidthDp)
		}
		if requested.ScreenHeightDp != 0 {
			myDelta += int(requested.ScreenHeightDp) - int(c.ScreenHeightDp)
			otherDelta += int(requested.ScreenHeightDp) - int(o.ScreenHeightDp)
		}
		if myDelta != otherDelta {
			return myDelta < otherDelta
		}
	}

	if c.ScreenLayout != 0 || o.ScreenLayout != 0 {
		mySL := c.ScreenLayout & MaskScreenSize
		oSL := o.ScreenLayout & MaskScreenSize
		if mySL != oSL && requested.ScreenLayout&MaskScreenSize != 0 {
			fixedMySL, fixedOSL := mySL, oSL
			// An undefined size counts as normal, but only when the device is
			// at least normal; otherwise small beats the default.
			if requested.ScreenLayout&MaskScreenSize >= ScreenSizeNormal {
				if fixedMySL == 0 {
					fixedMySL = ScreenSizeNormal
				}
				if fixedOSL == 0 {
					fixedOSL = ScreenSizeNormal
				}
			}
			if fixedMySL == fixedOSL {
				return mySL != 0
			}
			return fixedMySL > fixedOSL
		}
		if (c.ScreenLayout^o.ScreenLayout)&MaskScreenLong != 0 && requested.ScreenLayout&MaskScreenLong != 0 {
			return c.ScreenLayout&MaskScreenLong != 0
		}
	}

	if (c.ScreenLayout2^o.ScreenLayout2)&MaskScreenRound != 0 && requested.ScreenLayout2&MaskScreenRound != 0 {
		return c.ScreenLayout2&MaskScreenRound != 0
	}
	if (c.ColorMode^o.ColorMode)&MaskHDR != 0 && requested.ColorMode&MaskHDR != 0 {
		return c.ColorMode&MaskHDR != 0
	}
	if (c.ColorMode^o.ColorMode)&MaskWideColor != 0 && requested.ColorMode&MaskWideColor != 0 {
		return c.ColorMode&MaskWideColor != 0
	}

	if c.Orientation != o.Orientation && requested.Orientation != 0 {
		return c.Orientation != 0
	}

	if c.UIMode != 0 || o.UIMode != 0 {
		diff := c.UIMode ^ o.UIMode
		if diff&MaskUIModeType != 0 && requested.UIMode&MaskUIModeType != 0 {
			return c.UIMode&MaskUIModeType != 0
		}
		if diff&MaskUIModeNight != 0 && requested.UIMode&MaskUIModeNight != 0 {
			return c.UIMode&MaskUIModeNight != 0
		}
	}

	if c.Density != o.Density {
		return c.isDensityBetterThan(o, requested)
	}
	if c.Touchscreen != o.Touchscreen && requested.Touchscreen != 0 {
		return c.Touchscreen != 0
	}

	if c.InputFlags != 0 || o.InputFlags != 0 {
		keysHidden := c.InputFlags & MaskKeysHidden
		oKeysHidden := o.InputFlags & MaskKeysHidden
		if keysHidden != oKeysHidden {
			if reqKeysHidden := requested.InputFlags & MaskKeysHidden; reqKeysHidden != 0 {
				switch {
				case keysHidden == 0:
					return false
				case oKeysHidden == 0:
					return true
				case reqKeysHidden == keysHidden:
					return true
				case reqKeysHidden == oKeysHidden:
					return false
				}
			}
		}
		navHidden := c.InputFlags & MaskNavHidden
		oNavHidden := o.InputFlags & MaskNavHidden
		if navHidden != oNavHidden && requested.InputFlags&MaskNavHidden != 0 {
			if navHidden == 0 {
				return false
			}
			if oNavHidden == 0 {
				return true
			}
		}
	}
	if c.Keyboard != o.Keyboard && requested.Keyboard != 0 {
		return c.Keyboard != 0
	}
	if c.Navigation != o.Navigation && requested.Navigation != 0 {
		return c.Navigation != 0
	}

	if c.ScreenWidth != 0 || c.ScreenHeight != 0 || o.ScreenWidth != 0 || o.ScreenHeight != 0 {
		myDelta, otherDelta := 0, 0
		if requested.ScreenWidth != 0 {
			myDelta += int(requested.ScreenWidth) - int(c.ScreenWidth)
			otherDelta += int(requested.ScreenWidth) - int(o.ScreenWidth)
		}
		if requested.ScreenHeight != 0 {
			myDelta += int(requested.ScreenHeight) - int(c.ScreenHeight)
			otherDelta += int(requested.ScreenHeight) - int(o.ScreenHeight)
		}
		if myDelta != otherDelta {
			return myDelta < otherDelta
		}
	}

	if c.SDKVersion != o.SDKVersion && requested.SDKVersion != 0 {
		return c.SDKVersion > o.SDKVersion
	}
	if c.MinorVersion != o.MinorVersion && requested.MinorVersion != 0 {
		return c.MinorVersion != 0
	}
	return false
}

// isDensityBetterThan prefers anydpi, then the bucket closest to the
// requested density, treating a downscale as twice as good as an upscale.
func (c Configuration) isDensityBetterThan(o Configuration, requested Configuration) bool {
	thisDensity := int(c.Density)
	if thisDensity == 0 {
		thisDensity = int(DensityMedium)
	}
	otherDensity := int(o.Density)
	if otherDensity == 0 {
		otherDensity = int(DensityMedium)
	}
	if thisDensity == int(DensityAny) {
		return true
	} else if otherDensity == int(DensityAny) {
		return false
	}

	requestedDensity := int(requested.Density)
	if requestedDensity == 0 || requestedDensity == int(DensityAny) {
		requestedDensity = int(DensityMedium)
	}

	h, l := thisDensity, otherDensity
	imBigger := true
	if l > h {
		h, l = l, h
		imBigger = false
	}
	if requestedDensity >= h {
		return imBigger
	}
	if l >= requestedDensity {
		return !imBigger
	}
	if (2*l-requestedDensity)*h > requestedDensity*requestedDensity {
		return !imBigger
	}
	return imBigger
}

// isLocaleBetterThan assumes both c and o passed Match, so their languages
// are either empty or equal to the requested one.
func (c Configuration) isLocaleBetterThan(o Configuration, requested Configuration) bool {
	if requested.Language[0] == 0 && requested.Country[0] == 0 {
		return false
	}
	if !c.hasLocale() && !o.hasLocale() {
		return false
	}
	if c.Language != o.Language {
		// Resources without a language are where US English traditionally
		// lives, so for en-US they beat an English variant of another region.
		if requested.Language == languageEnglish && requested.Country == countryUnitedStates {
			if c.Language[0] != 0 {
				return c.Country[0] == 0 || c.Country == countryUnitedStates
			}
			return !(o.Country[0] == 0 || o.Country == countryUnitedStates)
		}
		return c.Language[0] != 0
	}
	if c.Country != o.Country {
		mine := c.Country == requested.Country
		other := o.Country == requested.Country
		if mine != other {
			return mine
		}
	}
	if c.Script != o.Script {
		mine := c.Script == requested.Script
		other := o.Script == requested.Script
		if mine != other {
			return mine
		}
	}
	mine := c.Variant == requested.Variant
	other := o.Variant == requested.Variant
	if mine != other {
		return mine
	}
	return false
}

// Compare is a total order over configurations, used to make set results
// deterministic.
func (c Configuration) Compare(o Configuration) int {
	ints := [][2]int{
		{int(c.Mcc), int(o.Mcc)},
		{int(c.Mnc), int(o.Mnc)},
	}
	for _, pair := range ints {
		if pair[0] != pair[1] {
			return cmpInt(pair[0], pair[1])
		}
	}
	if n := bytes.Compare(c.Language[:], o.Language[:]); n != 0 {
		return n
	}
	if n := bytes.Compare(c.Country[:], o.Country[:]); n != 0 {
		return n
	}
	if n := bytes.Compare(c.Script[:], o.Script[:]); n != 0 {
		return n
	}
	if n := bytes.Compare(c.Variant[:], o.Variant[:]); n != 0 {
		return n
	}
	ints = [][2]int{
		{int(c.ScreenLayout), int(o.ScreenLayout)},
		{int(c.ScreenLayout2), int(o.ScreenLayout2)},
		{int(c.ColorMode), int(o.ColorMode)},
		{int(c.SmallestScreenWidthDp), int(o.SmallestScreenWidthDp)},
		{int(c.ScreenWidthDp), int(o.ScreenWidthDp)},
		{int(c.ScreenHeightDp), int(o.ScreenHeightDp)},
		{int(c.Orientation), int(o.Orientation)},
		{int(c.UIMode), int(o.UIMode)},
		{int(c.Density), int(o.Density)},
		{int(c.Touchscreen), int(o.Touchscreen)},
		{int(c.InputFlags), int(o.InputFlags)},
		{int(c.Keyboard), int(o.Keyboard)},
		{int(c.Navigation), int(o.Navigation)},
		{int(c.ScreenWidth), int(o.ScreenWidth)},
		{int(c.ScreenHeight), int(o.ScreenHeight)},
		{int(c.SDKVersion), int(o.SDKVersion)},
		{int(c.MinorVersion), int(o.MinorVersion)},
	}
	for _, pair := range ints {
		if pair[0] != pair[1] {
			return cmpInt(pair[0], pair[1])
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// Locale returns the BCP-47 style tag of the configuration's locale, or ""
// when no language is set.
func (c Configuration) Locale() string {
	if c.Language[0] == 0 {
		return ""
	}
	out := string(trimZero(c.Language[:]))
	if c.Script[0] != 0 {
		out += "-" + string(trimZero(c.Script[:]))
	}
	if c.Country[0] != 0 {
		out += "-" + string(trimZero(c.Country[:]))
	}
	if c.Variant[0] != 0 {
		out += "-" + string(trimZero(c.Variant[:]))
	}
	return out
}

func trimZero(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
