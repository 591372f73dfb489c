package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

var (
	mccPattern        = regexp.MustCompile(`^mcc(\d{1,3})$`)
	mncPattern        = regexp.MustCompile(`^mnc(\d{1,3})$`)
	languagePattern   = regexp.MustCompile(`^[a-z]{2}$`)
	regionPattern     = regexp.MustCompile(`^r([A-Z]{2})$`)
	smallestPattern   = regexp.MustCompile(`^sw(\d+)dp$`)
	widthDpPattern    = regexp.MustCompile(`^w(\d+)dp$`)
	heightDpPattern   = regexp.MustCompile(`^h(\d+)dp$`)
	densityPattern    = regexp.MustCompile(`^(\d+)dpi$`)
	screenSizePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)
	versionPattern    = regexp.MustCompile(`^v(\d+)$`)
)

// simpleQualifiers maps fixed qualifier tokens onto the axis they set.
var simpleQualifiers = map[string]func(*Configuration){
	"ldltr":       func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskLayoutDir | LayoutDirLTR },
	"ldrtl":       func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskLayoutDir | LayoutDirRTL },
	"small":       func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskScreenSize | ScreenSizeSmall },
	"normal":      func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskScreenSize | ScreenSizeNormal },
	"large":       func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskScreenSize | ScreenSizeLarge },
	"xlarge":      func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskScreenSize | ScreenSizeXLarge },
	"long":        func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskScreenLong | ScreenLongYes },
	"notlong":     func(c *Configuration) { c.ScreenLayout = c.ScreenLayout&^MaskScreenLong | ScreenLongNo },
	"round":       func(c *Configuration) { c.ScreenLayout2 = c.ScreenLayout2&^MaskScreenRound | ScreenRoundYes },
	"notround":    func(c *Configuration) { c.ScreenLayout2 = c.ScreenLayout2&^MaskScreenRound | ScreenRoundNo },
	"widecg":      func(c *Configuration) { c.ColorMode = c.ColorMode&^MaskWideColor | WideColorYes },
	"nowidecg":    func(c *Configuration) { c.ColorMode = c.ColorMode&^MaskWideColor | WideColorNo },
	"highdr":      func(c *Configuration) { c.ColorMode = c.ColorMode&^MaskHDR | HDRYes },
	"lowdr":       func(c *Configuration) { c.ColorMode = c.ColorMode&^MaskHDR | HDRNo },
	"port":        func(c *Configuration) { c.Orientation = OrientationPort },
	"land":        func(c *Configuration) { c.Orientation = OrientationLand },
	"square":      func(c *Configuration) { c.Orientation = OrientationSquare },
	"desk":        func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeType | UIModeTypeDesk },
	"car":         func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeType | UIModeTypeCar },
	"television":  func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeType | UIModeTypeTelevision },
	"appliance":   func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeType | UIModeTypeAppliance },
	"watch":       func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeType | UIModeTypeWatch },
	"vrheadset":   func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeType | UIModeTypeVRHeadset },
	"night":       func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeNight | UIModeNightYes },
	"notnight":    func(c *Configuration) { c.UIMode = c.UIMode&^MaskUIModeNight | UIModeNightNo },
	"ldpi":        func(c *Configuration) { c.Density = DensityLow },
	"mdpi":        func(c *Configuration) { c.Density = DensityMedium },
	"tvdpi":       func(c *Configuration) { c.Density = DensityTV },
	"hdpi":        func(c *Configuration) { c.Density = DensityHigh },
	"xhdpi":       func(c *Configuration) { c.Density = DensityXHigh },
	"xxhdpi":      func(c *Configuration) { c.Density = DensityXXHigh },
	"xxxhdpi":     func(c *Configuration) { c.Density = DensityXXXHigh },
	"anydpi":      func(c *Configuration) { c.Density = DensityAny },
	"nodpi":       func(c *Configuration) { c.Density = DensityNone },
	"notouch":     func(c *Configuration) { c.Touchscreen = TouchscreenNoTouch },
	"stylus":      func(c *Configuration) { c.Touchscreen = TouchscreenStylus },
	"finger":      func(c *Configuration) { c.Touchscreen = TouchscreenFinger },
	"keysexposed": func(c *Configuration) { c.InputFlags = c.InputFlags&^MaskKeysHidden | KeysHiddenNo },
	"keyshidden":  func(c *Configuration) { c.InputFlags = c.InputFlags&^MaskKeysHidden | KeysHiddenYes },
	"keyssoft":    func(c *Configuration) { c.InputFlags = c.InputFlags&^MaskKeysHidden | KeysHiddenSoft },
	"nokeys":      func(c *Configuration) { c.Keyboard = KeyboardNoKeys },
	"qwerty":      func(c *Configuration) { c.Keyboard = KeyboardQwerty },
	"12key":       func(c *Configuration) { c.Keyboard = Keyboard12Key },
	"navexposed":  func(c *Configuration) { c.InputFlags = c.InputFlags&^MaskNavHidden | NavHiddenNo },
	"navhidden":   func(c *Configuration) { c.InputFlags = c.InputFlags&^MaskNavHidden | NavHiddenYes },
	"nonav":       func(c *Configuration) { c.Navigation = NavigationNoNav },
	"dpad":        func(c *Configuration) { c.Navigation = NavigationDPad },
	"trackball":   func(c *Configuration) { c.Navigation = NavigationTrackball },
	"wheel":       func(c *Configuration) { c.Navigation = NavigationWheel },
}

// ParseQualifiers parses a dash separated qualifier string such as
// "en-rUS-land-hdpi-v21" into a Configuration. An empty string or "default"
// yields the zero configuration.
func ParseQualifiers(raw string) (Configuration, error) {
	var cfg Configuration
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return cfg, nil
	}
	tokens := strings.Split(raw, "-")
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if apply, ok := simpleQualifiers[token]; ok {
			apply(&cfg)
			continue
		}
		if ok, err := parseNumericQualifier(&cfg, token); err != nil {
			return Configuration{}, invalidQualifier(raw, token)
		} else if ok {
			continue
		}
		if strings.HasPrefix(token, "b+") {
			if err := parseBCP47Qualifier(&cfg, token); err != nil {
				return Configuration{}, invalidQualifier(raw, token)
			}
			continue
		}
		if languagePattern.MatchString(token) {
			copy(cfg.Language[:], token)
			if i+1 < len(tokens) {
				if m := regionPattern.FindStringSubmatch(tokens[i+1]); m != nil {
					copy(cfg.Country[:], m[1])
					i++
				}
			}
			continue
		}
		return Configuration{}, invalidQualifier(raw, token)
	}
	return cfg, nil
}

func parseNumericQualifier(cfg *Configuration, token string) (bool, error) {
	number := func(s string) (uint16, error) {
		n, err := strconv.ParseUint(s, 10, 16)
		return uint16(n), err
	}
	var err error
	switch {
	case mccPattern.MatchString(token):
		cfg.Mcc, err = number(mccPattern.FindStringSubmatch(token)[1])
	case mncPattern.MatchString(token):
		cfg.Mnc, err = number(mncPattern.FindStringSubmatch(token)[1])
	case smallestPattern.MatchString(token):
		cfg.SmallestScreenWidthDp, err = number(smallestPattern.FindStringSubmatch(token)[1])
	case widthDpPattern.MatchString(token):
		cfg.ScreenWidthDp, err = number(widthDpPattern.FindStringSubmatch(token)[1])
	case heightDpPattern.MatchString(token):
		cfg.ScreenHeightDp, err = number(heightDpPattern.FindStringSubmatch(token)[1])
	case densityPattern.MatchString(token):
		cfg.Density, err = number(densityPattern.FindStringSubmatch(token)[1])
	case versionPattern.MatchString(token):
		cfg.SDKVersion, err = number(versionPattern.FindStringSubmatch(token)[1])
	case screenSizePattern.MatchString(token):
		m := screenSizePattern.FindStringSubmatch(token)
		if cfg.ScreenWidth, err = number(m[1]); err != nil {
			return true, err
		}
		if cfg.ScreenHeight, err = number(m[2]); err != nil {
			return true, err
		}
		if cfg.ScreenWidth < cfg.ScreenHeight {
			return true, fmt.Errorf("screen size must list the larger dimension first")
		}
	default:
		return false, nil
	}
	return true, err
}

// parseBCP47Qualifier handles the "b+lang+Script+REGION+variant" form.
func parseBCP47Qualifier(cfg *Configuration, token string) error {
	parts := strings.Split(strings.TrimPrefix(token, "b+"), "+")
	if len(parts) == 0 || !languagePattern.MatchString(strings.ToLower(parts[0])) {
		return fmt.Errorf("invalid language subtag")
	}
	copy(cfg.Language[:], strings.ToLower(parts[0]))
	for _, part := range parts[1:] {
		switch {
		case len(part) == 4:
			copy(cfg.Script[:], strings.ToUpper(part[:1])+strings.ToLower(part[1:]))
		case len(part) == 2 || len(part) == 3:
			copy(cfg.Country[:], strings.ToUpper(part))
		case len(part) >= 5 && len(part) <= 8:
			copy(cfg.Variant[:], strings.ToLower(part))
		default:
			return fmt.Errorf("invalid subtag %q", part)
		}
	}
	return nil
}

func invalidQualifier(raw, token string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid qualifier %q in %q", token, raw))
}

// String formats the configuration as a qualifier string in canonical
// order. The zero configuration formats as "default".
func (c Configuration) String() string {
	var parts []string
	add := func(s string) { parts = append(parts, s) }

	if c.Mcc != 0 {
		add(fmt.Sprintf("mcc%d", c.Mcc))
	}
	if c.Mnc != 0 {
		add(fmt.Sprintf("mnc%d", c.Mnc))
	}
	if c.Language[0] != 0 {
		if c.Script[0] != 0 || c.Variant[0] != 0 {
			tag := "b+" + string(trimZero(c.Language[:]))
			if c.Script[0] != 0 {
				tag += "+" + string(trimZero(c.Script[:]))
			}
			if c.Country[0] != 0 {
				tag += "+" + string(trimZero(c.Country[:]))
			}
			if c.Variant[0] != 0 {
				tag += "+" + string(trimZero(c.Variant[:]))
			}
			add(tag)
		} else {
			add(string(trimZero(c.Language[:])))
			if c.Country[0] != 0 {
				add("r" + string(trimZero(c.Country[:])))
			}
		}
	}
	add(lookupName(c.ScreenLayout&MaskLayoutDir, map[uint8]string{LayoutDirLTR: "ldltr", LayoutDirRTL: "ldrtl"}))
	if c.SmallestScreenWidthDp != 0 {
		add(fmt.Sprintf("sw%ddp", c.SmallestScreenWidthDp))
	}
	if c.ScreenWidthDp != 0 {
		add(fmt.Sprintf("w%ddp", c.ScreenWidthDp))
	}
	if c.ScreenHeightDp != 0 {
		add(fmt.Sprintf("h%ddp", c.ScreenHeightDp))
	}
	add(lookupName(c.ScreenLayout&MaskScreenSize, map[uint8]string{
		ScreenSizeSmall: "small", ScreenSizeNormal: "normal", ScreenSizeLarge: "large", ScreenSizeXLarge: "xlarge",
	}))
	add(lookupName(c.ScreenLayout&MaskScreenLong, map[uint8]string{ScreenLongYes: "long", ScreenLongNo: "notlong"}))
	add(lookupName(c.ScreenLayout2&MaskScreenRound, map[uint8]string{ScreenRoundYes: "round", ScreenRoundNo: "notround"}))
	add(lookupName(c.ColorMode&MaskWideColor, map[uint8]string{WideColorYes: "widecg", WideColorNo: "nowidecg"}))
	add(lookupName(c.ColorMode&MaskHDR, map[uint8]string{HDRYes: "highdr", HDRNo: "lowdr"}))
	add(lookupName(c.Orientation, map[uint8]string{
		OrientationPort: "port", OrientationLand: "land", OrientationSquare: "square",
	}))
	add(lookupName(c.UIMode&MaskUIModeType, map[uint8]string{
		UIModeTypeDesk: "desk", UIModeTypeCar: "car", UIModeTypeTelevision: "television",
		UIModeTypeAppliance: "appliance", UIModeTypeWatch: "watch", UIModeTypeVRHeadset: "vrheadset",
	}))
	add(lookupName(c.UIMode&MaskUIModeNight, map[uint8]string{UIModeNightYes: "night", UIModeNightNo: "notnight"}))
	add(densityName(c.Density))
	add(lookupName(c.Touchscreen, map[uint8]string{
		TouchscreenNoTouch: "notouch", TouchscreenStylus: "stylus", TouchscreenFinger: "finger",
	}))
	add(lookupName(c.InputFlags&MaskKeysHidden, map[uint8]string{
		KeysHiddenNo: "keysexposed", KeysHiddenYes: "keyshidden", KeysHiddenSoft: "keyssoft",
	}))
	add(lookupName(c.Keyboard, map[uint8]string{
		KeyboardNoKeys: "nokeys", KeyboardQwerty: "qwerty", Keyboard12Key: "12key",
	}))
	add(lookupName(c.InputFlags&MaskNavHidden, map[uint8]string{NavHiddenNo: "navexposed", NavHiddenYes: "navhidden"}))
	add(lookupName(c.Navigation, map[uint8]string{
		NavigationNoNav: "nonav", NavigationDPad: "dpad", NavigationTrackball: "trackball", NavigationWheel: "wheel",
	}))
	if c.ScreenWidth != 0 || c.ScreenHeight != 0 {
		add(fmt.Sprintf("%dx%d", c.ScreenWidth, c.ScreenHeight))
	}
	if c.SDKVersion != 0 {
		add(fmt.Sprintf("v%d", c.SDKVersion))
	}

	var out []string
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return "default"
	}
	return strings.Join(out, "-")
}

func lookupName(value uint8, names map[uint8]string) string {
	return names[value]
}

func densityName(density uint16) string {
	switch density {
	case DensityDefault:
		return ""
	case DensityLow:
		return "ldpi"
	case DensityMedium:
		return "mdpi"
	case DensityTV:
		return "tvdpi"
	case DensityHigh:
		return "hdpi"
	case DensityXHigh:
		return "xhdpi"
	case DensityXXHigh:
		return "xxhdpi"
	case DensityXXXHigh:
		return "xxxhdpi"
	case DensityAny:
		return "anydpi"
	case DensityNone:
		return "nodpi"
	default:
		return fmt.Sprintf("%ddpi", density)
	}
}
