package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resengine/internal/app"
	"resengine/internal/types"
	"resengine/tests/testutil"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine, err := app.NewService().Open(t.Context(), app.OpenRequest{
		SystemSources: []string{testutil.Fixture(t, "framework.yaml")},
		Sources:       []string{testutil.Fixture(t, "widgets.yaml"), testutil.Fixture(t, "app.yaml")},
		Configuration: "en-rUS-port-xhdpi-v30",
	})
	require.NoError(t, err)
	srv := httptest.NewServer(NewServer(engine).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestResourceEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var greeting types.ValueReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/resources/string/greeting", "", &greeting))
	assert.Equal(t, "Howdy", greeting.Display)
	assert.Equal(t, "en-rUS", greeting.SelectedConfig)

	var followed types.ValueReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/resources/color/link_of_link", "", &followed))
	assert.Equal(t, "#ff3f51b5", followed.Display)
	assert.Equal(t, "0x7f030000", followed.LastReference)

	var raw types.ValueReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/resources/color/link_of_link?follow=false", "", &raw))
	assert.Equal(t, "@0x7f030001", raw.Display)

	var icon types.ValueReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/resources/mipmap/icon?density=hdpi", "", &icon))
	assert.Equal(t, "0x00000001", icon.Data)

	var bag types.ValueReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/resources/style/AppTheme?bag=true&follow=false", "", &bag))
	assert.Equal(t, "0x7f050000", bag.Data)
}

func TestResourceEndpointErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "missing entry", path: "/v1/resources/color/missing", status: http.StatusNotFound},
		{name: "bag without flag", path: "/v1/resources/style/AppTheme", status: http.StatusNotFound},
		{name: "bad boolean", path: "/v1/resources/color/brand?follow=maybe", status: http.StatusBadRequest},
		{name: "bad density", path: "/v1/resources/mipmap/icon?density=land-hdpi", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			assert.Equal(t, tt.status, do(t, http.MethodGet, srv.URL+tt.path, "", &body))
			assert.NotEmpty(t, body.Error)
			assert.False(t, body.ChainExhausted)
		})
	}
}

func TestBagAndNameEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var bag types.BagReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/bags/AppTheme.Widgets", "", &bag))
	keys := make([]string, 0, len(bag.Entries))
	for _, entry := range bag.Entries {
		keys = append(keys, entry.Key)
	}
	want := []string{"0x01010000", "0x01010001", "0x01010002", "0x02010000", "0x7f010000"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("unexpected bag keys (-want +got):\n%s", diff)
	}

	var name nameResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/names/0x02020000", "", &name))
	assert.Equal(t, nameResponse{ResID: "0x02020000", Name: "com.example.widgets:color/accent"}, name)

	var id nameResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/ids?name=brandColor&type=attr", "", &id))
	assert.Equal(t, "0x7f010000", id.ResID)

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/v1/ids", "", nil))
}

func TestConfigurationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var current configurationBody
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/configuration", "", &current))
	assert.Equal(t, "en-rUS-port-xhdpi-v30", current.Configuration)

	var changed configurationBody
	require.Equal(t, http.StatusOK, do(t, http.MethodPut, srv.URL+"/v1/configuration",
		`{"configuration":"fr-port-xhdpi-v30"}`, &changed))
	assert.Equal(t, "fr-port-xhdpi-v30", changed.Configuration)
	assert.NotEmpty(t, changed.Changed)

	var greeting types.ValueReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/resources/string/greeting", "", &greeting))
	assert.Equal(t, "Bonjour", greeting.Display)

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPut, srv.URL+"/v1/configuration", `{"config":"fr"}`, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPut, srv.URL+"/v1/configuration", `{"configuration":"sideways"}`, nil))

	var locales []string
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/locales", "", &locales))
	if diff := cmp.Diff([]string{"en-US", "es", "fr"}, locales); diff != "" {
		t.Fatalf("unexpected locales (-want +got):\n%s", diff)
	}

	var configs []string
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/configurations?exclude_mipmap=true", "", &configs))
	assert.Contains(t, configs, "night")
	assert.NotContains(t, configs, "hdpi")

	var sources []types.SourceReport
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/v1/sources", "", &sources))
	require.Len(t, sources, 3)
	assert.True(t, sources[0].System)
}

func TestThemeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var report types.ThemeReport
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/v1/themes/resolve",
		`{"styles":[{"ref":"AppTheme.Widgets"}],"attributes":["brandColor","android:textColor"]}`, &report))
	got := map[string]string{}
	for _, attr := range report.Attributes {
		got[attr.Name] = attr.Display
	}
	want := map[string]string{
		"com.example.app:attr/brandColor": "#ff3f51b5",
		"android:attr/textColor":          "#ffffffff",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected attributes (-want +got):\n%s", diff)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/v1/themes/resolve", `{"styles":[]}`, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/v1/themes/resolve", `not json`, nil))
}

func TestBoolParam(t *testing.T) {
	v, err := boolParam("", true)
	require.NoError(t, err)
	assert.True(t, v)
	v, err = boolParam("0", true)
	require.NoError(t, err)
	assert.False(t, v)
	_, err = boolParam("nope", false)
	require.Error(t, err)
}
