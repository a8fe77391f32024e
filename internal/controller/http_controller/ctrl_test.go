package http_controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/horockey/settingsapp/internal/controller/http_controller"
	"github.com/horockey/settingsapp/internal/gateway/view_modules/embedded_view_modules"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps/inmemory_stamps"
	"github.com/horockey/settingsapp/internal/router"
	"github.com/horockey/settingsapp/internal/routes"
	"github.com/horockey/settingsapp/internal/updater"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ts = int64(1700000000000)

type brokenGateway struct{}

func (brokenGateway) Metrics() []prometheus.Collector { return nil }

func (brokenGateway) Load(context.Context, string, string) (model.View, error) {
	return nil, errors.New("bundle fetch failed")
}

type failingUpdater struct{}

func (failingUpdater) UpdateStore(context.Context, map[string]any) (model.StoreUpdate, error) {
	return model.StoreUpdate{}, model.StorageWriteError{Key: updater.Namespace, Err: errors.New("quota")}
}

func (failingUpdater) LastUpdated(context.Context) (int64, error) {
	return 0, model.KeyNotFoundError{Key: updater.Namespace}
}

func setup(t *testing.T, apiKey string) *http_controller.HttpController {
	t.Helper()

	nav, err := router.New(routes.Settings(), embedded_view_modules.New(), zerolog.Nop())
	require.NoError(t, err)

	upd := updater.New(
		inmemory_stamps.New[int64](),
		func() time.Time { return time.UnixMilli(ts) },
		zerolog.Nop(),
	)

	return http_controller.New("127.0.0.1:0", apiKey, upd, nav, zerolog.Nop())
}

func do(h http.Handler, method, target string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Finds the object carrying "updated" regardless of response envelope.
func findPayload(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var doc any
	require.NoError(t, json.Unmarshal(body, &doc))

	var walk func(v any) (map[string]any, bool)
	walk = func(v any) (map[string]any, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if _, found := m["updated"]; found {
			return m, true
		}
		for _, nested := range m {
			if res, found := walk(nested); found {
				return res, true
			}
		}
		return nil, false
	}

	res, found := walk(doc)
	require.True(t, found, "payload not found in %s", string(body))
	return res
}

func Test_PostStore(t *testing.T) {
	ctrl := setup(t, "")

	rec := do(ctrl.Handler(), http.MethodPost, "/store", strings.NewReader(`{"theme":"dark"}`), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := findPayload(t, rec.Body.Bytes())
	assert.Equal(t, map[string]any{"theme": "dark"}, payload["data"])
	assert.Equal(t, float64(ts), payload["updated"])

	rec = do(ctrl.Handler(), http.MethodGet, "/store/updated", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(ts), findPayload(t, rec.Body.Bytes())["updated"])
}

func Test_PostStore_EmptyBody(t *testing.T) {
	ctrl := setup(t, "")

	rec := do(ctrl.Handler(), http.MethodPost, "/store", http.NoBody, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{}, findPayload(t, rec.Body.Bytes())["data"])
}

func Test_PostStore_BadBody(t *testing.T) {
	ctrl := setup(t, "")

	rec := do(ctrl.Handler(), http.MethodPost, "/store", strings.NewReader(`[1,2`), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_GetStoreUpdated_NeverUpdated(t *testing.T) {
	ctrl := setup(t, "")

	rec := do(ctrl.Handler(), http.MethodGet, "/store/updated", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_PostStore_WriteFailure(t *testing.T) {
	nav, err := router.New(routes.Settings(), embedded_view_modules.New(), zerolog.Nop())
	require.NoError(t, err)
	ctrl := http_controller.New("127.0.0.1:0", "", failingUpdater{}, nav, zerolog.Nop())

	rec := do(ctrl.Handler(), http.MethodPost, "/store", nil, nil)

	assert.Equal(t, http.StatusInsufficientStorage, rec.Code)
}

func Test_Store_ApiKey(t *testing.T) {
	ctrl := setup(t, "secret")

	rec := do(ctrl.Handler(), http.MethodPost, "/store", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(ctrl.Handler(), http.MethodPost, "/store", nil, map[string]string{"X-Api-Key": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(ctrl.Handler(), http.MethodPost, "/store", nil, map[string]string{"X-Api-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// views are public
	rec = do(ctrl.Handler(), http.MethodGet, "/settings", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_Views(t *testing.T) {
	ctrl := setup(t, "")

	cases := map[string]string{
		"/settings":            "SettingsMenu",
		"/settings/":           "SettingsMenu",
		"/settings/categories": "SettingsCategories",
		"/settings/about":      "SettingsAbout",
		"/settings/data":       "SettingsData",
	}
	for target, module := range cases {
		rec := do(ctrl.Handler(), http.MethodGet, target, nil, nil)

		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"), target)
		assert.Contains(t, rec.Body.String(), `data-module="Settings"`, target)
		assert.Contains(t, rec.Body.String(), `data-module="`+module+`"`, target)
	}
}

func Test_Views_NotFound(t *testing.T) {
	ctrl := setup(t, "")

	rec := do(ctrl.Handler(), http.MethodGet, "/settings/unknown", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Views_ModuleLoadError(t *testing.T) {
	nav, err := router.New(routes.Settings(), brokenGateway{}, zerolog.Nop())
	require.NoError(t, err)
	ctrl := http_controller.New("127.0.0.1:0", "", failingUpdater{}, nav, zerolog.Nop())

	rec := do(ctrl.Handler(), http.MethodGet, "/settings/about", nil, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func Test_URL_NamedRoutes(t *testing.T) {
	ctrl := setup(t, "")

	u, err := ctrl.URL("SettingsAbout")
	require.NoError(t, err)
	assert.Equal(t, "/settings/about", u)

	u, err = ctrl.URL("Settings")
	require.NoError(t, err)
	assert.Equal(t, "/settings", u)

	_, err = ctrl.URL("Nope")
	assert.Error(t, err)
}

func Test_Start_StopsOnCancel(t *testing.T) {
	ctrl := setup(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ctrl.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("controller did not stop")
	}
}

func Test_PostStore_TrailingData(t *testing.T) {
	cases := map[string]string{
		"garbage":       `{"theme":"dark"} garbage`,
		"second object": `{"theme":"dark"}{"theme":"light"}`,
		"second value":  `{"theme":"dark"} 1`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ctrl := setup(t, "")

			rec := do(ctrl.Handler(), http.MethodPost, "/store", strings.NewReader(body), nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			// nothing was written
			rec = do(ctrl.Handler(), http.MethodGet, "/store/updated", nil, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func Test_PostStore_TrailingWhitespace(t *testing.T) {
	ctrl := setup(t, "")

	rec := do(ctrl.Handler(), http.MethodPost, "/store", strings.NewReader("{\"theme\":\"dark\"}\n\t "), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"theme": "dark"}, findPayload(t, rec.Body.Bytes())["data"])
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, surface string) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "surface" && lp.GetValue() == surface {
					return m.GetCounter().GetValue()
				}
			}
			if surface == "" && len(m.GetLabel()) == 0 {
				return m.GetCounter().GetValue()
			}
		}
	}

	t.Fatalf("metric %s{surface=%q} not found", name, surface)
	return 0
}

func Test_Metrics_SplitBySurface(t *testing.T) {
	ctrl := setup(t, "secret")

	reg := prometheus.NewRegistry()
	for _, c := range ctrl.Metrics() {
		require.NoError(t, reg.Register(c))
	}

	key := map[string]string{"X-Api-Key": "secret"}
	do(ctrl.Handler(), http.MethodGet, "/settings", nil, nil)
	do(ctrl.Handler(), http.MethodGet, "/settings/about", nil, nil)
	do(ctrl.Handler(), http.MethodPost, "/store", strings.NewReader(`{"a":1}`), key)
	do(ctrl.Handler(), http.MethodPost, "/store", strings.NewReader(`{"a":1} x`), key)
	do(ctrl.Handler(), http.MethodPost, "/store", nil, nil)
	do(ctrl.Handler(), http.MethodGet, "/settings/unknown", nil, nil)

	assert.Equal(t, float64(2), counterValue(t, reg, "http_controller_requests_cnt", "view"))
	assert.Equal(t, float64(3), counterValue(t, reg, "http_controller_requests_cnt", "store"))
	assert.Equal(t, float64(2), counterValue(t, reg, "http_controller_success_responses_cnt", "view"))
	assert.Equal(t, float64(1), counterValue(t, reg, "http_controller_success_responses_cnt", "store"))
	assert.Equal(t, float64(0), counterValue(t, reg, "http_controller_err_processes_cnt", "view"))
	assert.Equal(t, float64(2), counterValue(t, reg, "http_controller_err_processes_cnt", "store"))
	assert.Equal(t, float64(1), counterValue(t, reg, "http_controller_auth_rejected_cnt", ""))
	assert.Equal(t, float64(1), counterValue(t, reg, "http_controller_unmatched_requests_cnt", ""))
}
