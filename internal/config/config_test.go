package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horockey/settingsapp/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_Load_MissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
}

func Test_Load_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
service:
  port: 8080
  api_key: secret
storage:
  backend: inmemory
views:
  source: http
  base_url: http://assets.local
  timeout: 2s
log:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, 9100, cfg.Service.MetricsPort)
	assert.Equal(t, "secret", cfg.Service.EffectiveAPIKey())
	assert.Equal(t, config.StorageInmemory, cfg.Storage.Backend)
	assert.Equal(t, config.ViewsHTTP, cfg.Views.Source)
	assert.Equal(t, "http://assets.local", cfg.Views.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Views.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func Test_Load_APIKeyFromEnv(t *testing.T) {
	t.Setenv("SETTINGSAPP_TEST_KEY", "from-env")
	path := writeConfig(t, t.TempDir(), `
service:
  api_key: inline
  api_key_env: SETTINGSAPP_TEST_KEY
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Service.EffectiveAPIKey())
}

func Test_Load_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        "service: [",
		"bad port":        "service:\n  port: -1\n",
		"unknown backend": "storage:\n  backend: redis\n",
		"http no url":     "views:\n  source: http\n",
		"unknown source":  "views:\n  source: cdn\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)

			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func startWatch(t *testing.T, ctx context.Context, path string) (<-chan *config.Config, <-chan error) {
	t.Helper()

	changes := make(chan *config.Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- config.Watch(ctx, path, zerolog.Nop(), func(cfg *config.Config) {
			select {
			case changes <- cfg:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	return changes, done
}

// Events for one save may be split, so wait for the expected level.
func awaitLevel(t *testing.T, changes <-chan *config.Config, level string) {
	t.Helper()

	timeout := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Log.Level == level {
				return
			}
		case <-timeout:
			t.Fatalf("config change to %q not observed", level)
		}
	}
}

func Test_Watch_Reloads(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, done := startWatch(t, ctx, path)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	awaitLevel(t, changes, "debug")

	cancel()
	assert.NoError(t, <-done)
}

func Test_Watch_ReloadsAfterRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, done := startWatch(t, ctx, path)

	for _, level := range []string{"debug", "warn", "error"} {
		tmp := filepath.Join(dir, "config.yaml.tmp")
		require.NoError(t, os.WriteFile(tmp, []byte("log:\n  level: "+level+"\n"), 0o600))
		require.NoError(t, os.Rename(tmp, path))

		awaitLevel(t, changes, level)
	}

	cancel()
	assert.NoError(t, <-done)
}

func Test_Watch_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, done := startWatch(t, ctx, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("log:\n  level: debug\n"), 0o600))

	select {
	case cfg := <-changes:
		t.Fatalf("unexpected reload: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-done)
}
