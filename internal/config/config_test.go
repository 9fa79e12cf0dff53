package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, int32(600), cfg.Timeline.TimeScale)
	assert.Equal(t, 50.0, cfg.Timeline.PixelsPerSecond)
	assert.Equal(t, 0.15, cfg.Timeline.SnapToleranceSec)
	assert.Equal(t, 1.5, cfg.Assets.SecondsPerThumbnail)
	assert.Equal(t, 150*time.Millisecond, cfg.Preview.DebounceInterval)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipstack.yaml")
	content := []byte(`
server:
  port: 9090
timeline:
  pixels_per_second: 100
  snap_tolerance_sec: 0.25
assets:
  watch_dir: /media/incoming
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	require.NoError(t, Load(path))
	t.Cleanup(func() { Set(nil) })

	cfg := Get()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 100.0, cfg.Timeline.PixelsPerSecond)
	assert.Equal(t, 0.25, cfg.Timeline.SnapToleranceSec)
	assert.Equal(t, "/media/incoming", cfg.Assets.WatchDir)

	// untouched fields keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int32(600), cfg.Timeline.TimeScale)
}

func TestLoadMissingFileFails(t *testing.T) {
	assert.Error(t, Load("/nonexistent/clipstack.yaml"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLIPSTACK_PORT", "7070")
	t.Setenv("CLIPSTACK_PIXELS_PER_SECOND", "80")
	t.Setenv("CLIPSTACK_ASSET_WATCH", "false")
	t.Setenv("CLIPSTACK_PREVIEW_DEBOUNCE", "300ms")

	require.NoError(t, Load(""))
	t.Cleanup(func() { Set(nil) })

	cfg := Get()
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 80.0, cfg.Timeline.PixelsPerSecond)
	assert.False(t, cfg.Assets.WatchEnabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Preview.DebounceInterval)
}

func TestGetFallsBackToDefaults(t *testing.T) {
	Set(nil)
	t.Cleanup(func() { Set(nil) })

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestAddWatcherNotifiedOnLoad(t *testing.T) {
	t.Cleanup(func() {
		configMu.Lock()
		watchers = nil
		configMu.Unlock()
		Set(nil)
	})

	notified := make(chan *Config, 1)
	AddWatcher(func(oldConfig, newConfig *Config) {
		notified <- newConfig
	})

	path := filepath.Join(t.TempDir(), "clipstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o644))
	require.NoError(t, Load(path))

	select {
	case cfg := <-notified:
		assert.Equal(t, 9191, cfg.Server.Port)
	case <-time.After(time.Second):
		t.Fatal("watcher was not notified")
	}
}

func TestFileWatcherReloadsOnChange(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	dir := t.TempDir()
	path := filepath.Join(dir, "clipstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9192\n"), 0o644))
	require.NoError(t, Load(path))
	require.Equal(t, 9192, Get().Server.Port)

	w, err := WatchFile(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9193\n"), 0o644))

	assert.Eventually(t, func() bool {
		return Get().Server.Port == 9193
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileWatcherIgnoresOtherFiles(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	dir := t.TempDir()
	path := filepath.Join(dir, "clipstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9194\n"), 0o644))
	require.NoError(t, Load(path))

	w, err := WatchFile(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("server:\n  port: 1\n"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 9194, Get().Server.Port)
}
