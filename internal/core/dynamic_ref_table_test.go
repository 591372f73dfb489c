package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resengine/internal/ports"
	"resengine/internal/types"
)

func TestDynamicRefTableLookupResourceID(t *testing.T) {
	table := NewDynamicRefTable(0x05)
	table.addEntry("com.example.lib", 0x02)
	require.True(t, table.addMapping("com.example.lib", 0x04))
	require.False(t, table.addMapping("com.example.other", 0x06))

	tests := []struct {
		name    string
		in      types.ResID
		want    types.ResID
		wantErr bool
	}{
		{name: "zero", in: 0, want: 0},
		{name: "app", in: 0x7f010002, want: 0x7f010002},
		{name: "framework", in: 0x01010002, want: 0x01010002},
		{name: "own package", in: 0x00030004, want: 0x05030004},
		{name: "mapped library", in: 0x02010000, want: 0x04010000},
		{name: "unmapped library", in: 0x03010000, want: 0x03010000, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.LookupResourceID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsNotFound(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	if diff := cmp.Diff([]types.DynamicPackageEntry{{PackageName: "com.example.lib", PackageID: 0x02}}, table.Entries()); diff != "" {
		t.Fatalf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestDynamicRefTableLookupResourceValue(t *testing.T) {
	table := NewDynamicRefTable(0x03)

	static := []types.Value{
		refValue(0x7f010000),
		attrValue(0x01010000),
		intValue(0x00010000),
		{Type: types.DataTypeString, Data: 4},
	}
	for _, v := range static {
		once, err := table.LookupResourceValue(v)
		require.NoError(t, err)
		twice, err := table.LookupResourceValue(once)
		require.NoError(t, err)
		assert.Equal(t, v, once)
		assert.Equal(t, once, twice)
	}

	got, err := table.LookupResourceValue(types.Value{Type: types.DataTypeDynamicReference, Data: 0x00020001})
	require.NoError(t, err)
	assert.Equal(t, refValue(0x03020001), got)

	got, err = table.LookupResourceValue(types.Value{Type: types.DataTypeDynamicAttribute, Data: 0x00010001})
	require.NoError(t, err)
	assert.Equal(t, attrValue(0x03010001), got)

	again, err := table.LookupResourceValue(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	dangling := types.Value{Type: types.DataTypeDynamicReference, Data: 0x09010000}
	got, err = table.LookupResourceValue(dangling)
	require.Error(t, err)
	assert.Equal(t, dangling, got)
}

func TestBuildPackageGroupsAssignsDynamicIDs(t *testing.T) {
	framework := newFakePackage(types.SystemPackageID, "android")
	first := newFakePackage(0, "com.example.first")
	second := newFakePackage(0, "com.example.second").library("com.example.first", 0x02)
	app := newFakePackage(types.AppPackageID, appPackage).
		library("com.example.second", 0x02).
		library("com.example.first", 0x03)
	overlay := newFakePackage(types.AppPackageID, appPackage)

	groups, index := buildPackageGroups([]ports.Source{
		newFakeSource("framework.arsc", framework),
		newFakeSource("libs.arsc", first, second),
		newFakeSource("app.arsc", app),
		newFakeSource("overlay.arsc", overlay),
	})
	require.Len(t, groups, 4)
	assert.Equal(t, uint8(0), index[types.SystemPackageID])
	assert.Equal(t, uint8(1), index[0x02])
	assert.Equal(t, uint8(2), index[0x03])
	assert.Equal(t, uint8(3), index[types.AppPackageID])
	assert.Equal(t, unmappedGroup, index[0x04])

	appGroup := groups[3]
	if diff := cmp.Diff([]types.Cookie{2, 3}, appGroup.Cookies); diff != "" {
		t.Fatalf("unexpected app cookies (-want +got):\n%s", diff)
	}
	got, err := appGroup.DynamicRefTable.LookupResourceID(0x02010000)
	require.NoError(t, err)
	assert.Equal(t, types.ResID(0x03010000), got)
	got, err = appGroup.DynamicRefTable.LookupResourceID(0x03010000)
	require.NoError(t, err)
	assert.Equal(t, types.ResID(0x02010000), got)

	got, err = groups[2].DynamicRefTable.LookupResourceID(0x02050000)
	require.NoError(t, err)
	assert.Equal(t, types.ResID(0x02050000), got)
}
