package core

import (
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resengine/internal/types"
)

const (
	appPackage       = "com.example.app"
	typeAttrIndex    = 0
	typeIntegerIndex = 1
	typeStyleIndex   = 2
)

func appID(typeIndex uint8, entry uint16) types.ResID {
	return types.NewResID(types.AppPackageID, typeIndex+1, entry)
}

func TestFindEntryPrefersBestConfiguration(t *testing.T) {
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "size", 0, types.Configuration{}, simpleEntry(intValue(1))).
		add("integer", typeIntegerIndex, "size", 0, mustConfig(t, "land"), simpleEntry(intValue(2))).
		add("integer", typeIntegerIndex, "size", 0, mustConfig(t, "fr"), simpleEntry(intValue(3)))
	am := newManager(newFakeSource("app.arsc", pkg))

	tests := []struct {
		name   string
		config string
		want   uint32
	}{
		{name: "default", config: "", want: 1},
		{name: "landscape", config: "land", want: 2},
		{name: "locale beats orientation", config: "fr-land", want: 3},
		{name: "unmatched locale falls back", config: "de-port", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am.SetConfiguration(mustConfig(t, tt.config))
			result, err := am.FindEntry(appID(typeIntegerIndex, 0), 0, false)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, result.Entry.Value.Data); diff != "" {
				t.Fatalf("unexpected selected value (-want +got):\n%s", diff)
			}
			assert.Equal(t, uint32(types.ConfigOrientation|types.ConfigLocale), result.TypeSpecFlags)
			assert.Equal(t, "size", result.EntryName)
			assert.Equal(t, "integer", result.TypeName)
		})
	}
}

func TestFindEntryLaterPackageOverridesEqualConfig(t *testing.T) {
	base := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "size", 0, types.Configuration{}, simpleEntry(intValue(1))).
		add("integer", typeIntegerIndex, "size", 0, mustConfig(t, "hdpi"), simpleEntry(intValue(2)))
	overlay := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "size", 0, types.Configuration{}, simpleEntry(intValue(10)))
	am := newManager(newFakeSource("base.arsc", base), newFakeSource("overlay.arsc", overlay))

	result, err := am.FindEntry(appID(typeIntegerIndex, 0), 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), result.Entry.Value.Data)
	assert.Equal(t, types.Cookie(1), result.Cookie)
	assert.Equal(t, uint32(types.ConfigDensity), result.TypeSpecFlags)

	am.SetConfiguration(mustConfig(t, "hdpi"))
	result, err = am.FindEntry(appID(typeIntegerIndex, 0), 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), result.Entry.Value.Data)
	assert.Equal(t, types.Cookie(0), result.Cookie)

	first, err := am.FindEntry(appID(typeIntegerIndex, 0), 0, true)
	require.NoError(t, err)
	assert.Equal(t, types.Cookie(0), first.Cookie)
}

func TestFindEntryDensityOverride(t *testing.T) {
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "icon", 0, mustConfig(t, "mdpi"), simpleEntry(intValue(160))).
		add("integer", typeIntegerIndex, "icon", 0, mustConfig(t, "xxhdpi"), simpleEntry(intValue(480)))
	am := newManager(newFakeSource("app.arsc", pkg))
	am.SetConfiguration(mustConfig(t, "mdpi"))

	result, err := am.FindEntry(appID(typeIntegerIndex, 0), 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(160), result.Entry.Value.Data)

	result, err = am.FindEntry(appID(typeIntegerIndex, 0), types.DensityXXHigh, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(480), result.Entry.Value.Data)
}

func TestFindEntryNotFound(t *testing.T) {
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "size", 0, mustConfig(t, "land"), simpleEntry(intValue(1)))
	am := newManager(newFakeSource("app.arsc", pkg))

	tests := []struct {
		name  string
		resid types.ResID
	}{
		{name: "invalid id", resid: 0x7f000001},
		{name: "unmapped package", resid: 0x22020000},
		{name: "missing entry", resid: appID(typeIntegerIndex, 4)},
		{name: "no matching config", resid: appID(typeIntegerIndex, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := am.FindEntry(tt.resid, 0, false)
			require.Error(t, err)
			assert.True(t, IsNotFound(err))
			assert.False(t, IsChainExhausted(err))
		})
	}
}

func TestGetResourceBags(t *testing.T) {
	style := appID(typeStyleIndex, 0)
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("style", typeStyleIndex, "Base", 0, types.Configuration{}, bagEntry(0, item(appID(typeAttrIndex, 0), intValue(1))))
	am := newManager(newFakeSource("app.arsc", pkg))

	_, err := am.GetResource(style, false, 0)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	value, err := am.GetResource(style, true, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(refValue(style), value.Value); diff != "" {
		t.Fatalf("unexpected bag value (-want +got):\n%s", diff)
	}
}

// chainPackage holds entries 1..hops of the integer type where entry k
// references entry k+1 and the last entry is the integer 42.
func chainPackage(hops int) *fakePackage {
	pkg := newFakePackage(types.AppPackageID, appPackage)
	for k := 1; k <= hops; k++ {
		value := intValue(42)
		if k < hops {
			value = refValue(appID(typeIntegerIndex, uint16(k+1)))
		}
		pkg.add("integer", typeIntegerIndex, fmt.Sprintf("hop_%d", k), uint16(k), types.Configuration{}, simpleEntry(value))
	}
	return pkg
}

func TestResolveReferenceChainLength(t *testing.T) {
	tests := []struct {
		hops    int
		wantErr bool
	}{
		{hops: 1},
		{hops: 19},
		{hops: 20},
		{hops: 21, wantErr: true},
		{hops: 22, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d hops", tt.hops), func(t *testing.T) {
			am := newManager(newFakeSource("app.arsc", chainPackage(tt.hops)))
			in := types.ResolvedValue{Value: refValue(appID(typeIntegerIndex, 1))}
			got, err := am.ResolveReference(in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsNotFound(err))
				assert.True(t, IsChainExhausted(err))
				assert.Equal(t, appID(typeIntegerIndex, 20), got.LastReference)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(intValue(42), got.Value); diff != "" {
				t.Fatalf("unexpected resolved value (-want +got):\n%s", diff)
			}
			assert.Equal(t, appID(typeIntegerIndex, uint16(tt.hops)), got.LastReference)
		})
	}
}

func TestResolveReferenceStopsOnSelfReference(t *testing.T) {
	self := appID(typeIntegerIndex, 0)
	style := appID(typeStyleIndex, 0)
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "self", 0, types.Configuration{}, simpleEntry(refValue(self))).
		add("style", typeStyleIndex, "Base", 0, mustConfig(t, "night"), bagEntry(0))
	am := newManager(newFakeSource("app.arsc", pkg))
	am.SetConfiguration(mustConfig(t, "night"))

	got, err := am.ResolveReference(types.ResolvedValue{Value: refValue(self)})
	require.NoError(t, err)
	assert.Equal(t, refValue(self), got.Value)
	assert.Equal(t, self, got.LastReference)

	got, err = am.ResolveReference(types.ResolvedValue{Value: refValue(style), TypeSpecFlags: uint32(types.ConfigLocale)})
	require.NoError(t, err)
	assert.Equal(t, refValue(style), got.Value)
	assert.Equal(t, uint32(types.ConfigLocale|types.ConfigUIMode), got.TypeSpecFlags)
}

func TestResolveReferenceReportsDanglingReference(t *testing.T) {
	dangling := appID(typeIntegerIndex, 7)
	link := appID(typeIntegerIndex, 0)
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "link", 0, types.Configuration{}, simpleEntry(refValue(dangling)))
	am := newManager(newFakeSource("app.arsc", pkg))

	got, err := am.ResolveReference(types.ResolvedValue{Value: refValue(link)})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsChainExhausted(err))
	assert.Equal(t, dangling, got.LastReference)
}

func TestSetConfigurationReturnsChangedAxes(t *testing.T) {
	am := newManager()
	assert.Equal(t, types.ConfigLocale|types.ConfigOrientation, am.SetConfiguration(mustConfig(t, "fr-land")))
	assert.Zero(t, am.SetConfiguration(mustConfig(t, "fr-land")))
	assert.Equal(t, types.ConfigUIMode, am.SetConfiguration(mustConfig(t, "fr-land-night")))
	assert.Equal(t, "fr-land-night", am.Configuration().String())
}

func TestResolveReferenceIgnoresNonReferences(t *testing.T) {
	am := newManager()
	in := types.ResolvedValue{Value: intValue(5), Cookie: 3}
	got, err := am.ResolveReference(in)
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("unexpected resolved value (-want +got):\n%s", diff)
	}

	nullRef := types.ResolvedValue{Value: refValue(0)}
	got, err = am.ResolveReference(nullRef)
	require.NoError(t, err)
	assert.Equal(t, nullRef, got)
}

func TestGetResourceName(t *testing.T) {
	pkg := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "size", 3, types.Configuration{}, simpleEntry(intValue(1)))
	am := newManager(newFakeSource("app.arsc", pkg))

	name, err := am.GetResourceName(appID(typeIntegerIndex, 3))
	require.NoError(t, err)
	if diff := cmp.Diff(types.ResourceName{Package: appPackage, Type: "integer", Entry: "size"}, name); diff != "" {
		t.Fatalf("unexpected name (-want +got):\n%s", diff)
	}
	assert.Equal(t, "com.example.app:integer/size", name.String())

	_, err = am.GetResourceName(appID(typeIntegerIndex, 4))
	assert.True(t, IsNotFound(err))
}

func TestGetResourceID(t *testing.T) {
	app := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "size", 3, types.Configuration{}, simpleEntry(intValue(1))).
		add("^attr-private", 4, "hidden", 2, types.Configuration{}, simpleEntry(intValue(0)))
	framework := newFakePackage(types.SystemPackageID, "android").
		add("attr", typeAttrIndex, "textColor", 7, types.Configuration{}, simpleEntry(intValue(0)))
	am := newManager(newFakeSource("framework.arsc", framework), newFakeSource("app.arsc", app))

	tests := []struct {
		name            string
		input           string
		fallbackType    string
		fallbackPackage string
		want            types.ResID
	}{
		{name: "qualified", input: "com.example.app:integer/size", want: appID(typeIntegerIndex, 3)},
		{name: "leading at", input: "@com.example.app:integer/size", want: appID(typeIntegerIndex, 3)},
		{name: "fallback package", input: "integer/size", fallbackPackage: appPackage, want: appID(typeIntegerIndex, 3)},
		{name: "fallback type", input: "android:textColor", fallbackType: "attr", want: types.NewResID(types.SystemPackageID, 1, 7)},
		{name: "private attr", input: "com.example.app:attr/hidden", want: appID(4, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := am.GetResourceID(tt.input, tt.fallbackType, tt.fallbackPackage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := am.GetResourceID("com.example.app:integer/missing", "", "")
	assert.True(t, IsNotFound(err))
	_, err = am.GetResourceID("integer/size", "", "")
	assert.True(t, IsNotFound(err))
	_, err = am.GetResourceID("com.example.app:integer/", "", "")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestGetResourceConfigurations(t *testing.T) {
	framework := newFakePackage(types.SystemPackageID, "android").
		add("integer", typeIntegerIndex, "a", 0, mustConfig(t, "night"), simpleEntry(intValue(1)))
	app := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "b", 0, mustConfig(t, "land"), simpleEntry(intValue(1))).
		add("integer", typeIntegerIndex, "b", 0, types.Configuration{}, simpleEntry(intValue(1))).
		add("integer", typeIntegerIndex, "c", 1, mustConfig(t, "land"), simpleEntry(intValue(1))).
		add("mipmap", 5, "icon", 0, mustConfig(t, "hdpi"), simpleEntry(intValue(1)))
	frameworkSource := newFakeSource("framework.arsc", framework)
	frameworkSource.system = true
	am := newManager(frameworkSource, newFakeSource("app.arsc", app))

	got := am.GetResourceConfigurations(false, false)
	want := []types.Configuration{{}, mustConfig(t, "night"), mustConfig(t, "land"), mustConfig(t, "hdpi")}
	for i := range want {
		require.Contains(t, got, want[i])
	}
	assert.Len(t, got, len(want))
	for i := 1; i < len(got); i++ {
		assert.Negative(t, got[i-1].Compare(got[i]))
	}

	got = am.GetResourceConfigurations(true, true)
	if diff := cmp.Diff([]types.Configuration{{}, mustConfig(t, "land")}, got); diff != "" {
		t.Fatalf("unexpected configurations (-want +got):\n%s", diff)
	}
}

func TestGetResourceLocales(t *testing.T) {
	framework := newFakePackage(types.SystemPackageID, "android").
		add("integer", typeIntegerIndex, "a", 0, mustConfig(t, "de"), simpleEntry(intValue(1)))
	app := newFakePackage(types.AppPackageID, appPackage).
		add("integer", typeIntegerIndex, "b", 0, mustConfig(t, "iw"), simpleEntry(intValue(1))).
		add("integer", typeIntegerIndex, "b", 0, mustConfig(t, "he"), simpleEntry(intValue(1))).
		add("integer", typeIntegerIndex, "b", 0, mustConfig(t, "en-rUS"), simpleEntry(intValue(1)))
	frameworkSource := newFakeSource("framework.arsc", framework)
	frameworkSource.system = true
	am := newManager(frameworkSource, newFakeSource("app.arsc", app))

	tests := []struct {
		name          string
		excludeSystem bool
		merge         bool
		want          []string
	}{
		{name: "all", want: []string{"de", "en-US", "he", "iw"}},
		{name: "merged", merge: true, want: []string{"de", "en-US", "he"}},
		{name: "app only", excludeSystem: true, want: []string{"en-US", "he", "iw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := am.GetResourceLocales(tt.excludeSystem, tt.merge)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected locales (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDynamicPackagesAreRewritten(t *testing.T) {
	framework := newFakePackage(types.SystemPackageID, "android").
		add("attr", typeAttrIndex, "color", 0, types.Configuration{}, simpleEntry(intValue(0)))
	libA := newFakePackage(0, "com.example.liba").
		add("integer", typeIntegerIndex, "unused", 0, types.Configuration{}, simpleEntry(intValue(1)))
	libB := newFakePackage(0, "com.example.libb").
		add("integer", typeIntegerIndex, "value", 0, types.Configuration{}, simpleEntry(intValue(7))).
		add("integer", typeIntegerIndex, "alias", 1, types.Configuration{}, simpleEntry(types.Value{Type: types.DataTypeDynamicReference, Data: 0x00020000})).
		add("style", typeStyleIndex, "LibStyle", 0, types.Configuration{}, bagEntry(0,
			item(types.NewResID(types.SystemPackageID, 1, 0), intValue(2)),
			item(0x00010000, intValue(1)),
		))
	app := newFakePackage(types.AppPackageID, appPackage).
		library("com.example.libb", 0x02).
		add("integer", typeIntegerIndex, "from_lib", 0, types.Configuration{}, simpleEntry(types.Value{Type: types.DataTypeDynamicReference, Data: 0x02020000})).
		add("style", typeStyleIndex, "AppStyle", 0, types.Configuration{}, bagEntry(0x02030000, item(appID(typeAttrIndex, 0), intValue(3))))
	am := newManager(
		newFakeSource("framework.arsc", framework),
		newFakeSource("liba.arsc", libA),
		newFakeSource("libb.arsc", libB),
		newFakeSource("app.arsc", app),
	)

	require.NotNil(t, am.DynamicRefTableForPackageID(0x03))
	assert.Equal(t, uint8(0x03), am.DynamicRefTableForCookie(2).AssignedPackageID())
	assert.Nil(t, am.DynamicRefTableForPackageID(0x40))

	value, err := am.GetResource(appID(typeIntegerIndex, 0), false, 0)
	require.NoError(t, err)
	assert.Equal(t, refValue(0x03020000), value.Value)

	resolved, err := am.ResolveReference(value)
	require.NoError(t, err)
	assert.Equal(t, intValue(7), resolved.Value)
	assert.Equal(t, types.Cookie(2), resolved.Cookie)

	alias, err := am.GetResource(0x03020001, false, 0)
	require.NoError(t, err)
	assert.Equal(t, refValue(0x03020000), alias.Value)

	bag, err := am.GetBag(appID(typeStyleIndex, 0))
	require.NoError(t, err)
	want := []types.BagEntry{
		{Key: types.NewResID(types.SystemPackageID, 1, 0), Value: intValue(2), Cookie: 2},
		{Key: 0x03010000, Value: intValue(1), Cookie: 2},
		{Key: appID(typeAttrIndex, 0), Value: intValue(3), Cookie: 3},
	}
	if diff := cmp.Diff(want, bag.Entries); diff != "" {
		t.Fatalf("unexpected bag entries (-want +got):\n%s", diff)
	}

	id, err := am.GetResourceID("com.example.libb:integer/value", "", "")
	require.NoError(t, err)
	assert.Equal(t, types.ResID(0x03020000), id)
}

func TestGetStringAndOpen(t *testing.T) {
	first := newFakeSource("first.arsc")
	first.strings = []string{"hello"}
	first.files["assets/data.txt"] = []byte("first")
	first.files["res/raw/only.txt"] = []byte("raw")
	second := newFakeSource("second.arsc")
	second.files["assets/data.txt"] = []byte("second")
	am := newManager(first, second)

	text, err := am.GetString(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	_, err = am.GetString(7, 0)
	assert.True(t, IsNotFound(err))

	data, cookie, err := am.Open("data.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, types.Cookie(1), cookie)

	data, cookie, err = am.OpenNonAsset("res/raw/only.txt")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))
	assert.Equal(t, types.Cookie(0), cookie)

	_, cookie, err = am.Open("missing.txt")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, types.InvalidCookie, cookie)
}
