package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/toaster/internal/core/toast"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
limit: 5
remove_delay: 250ms
durations:
  success: 10s
surfaces:
  - pattern: "modal/*"
    limit: 1
    position: top-center
server:
  addr: "127.0.0.1:9000"
  allowed_origins: ["http://localhost:3000"]
history:
  enabled: false
tui:
  width: 60
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Limit)
	assert.Equal(t, 250*time.Millisecond, cfg.RemoveDelay)
	assert.Equal(t, 10*time.Second, cfg.Durations.Success)
	assert.Equal(t, 4*time.Second, cfg.Durations.Error, "unset durations fall back to defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Server.Gutter)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 60, cfg.TUI.Width)
	assert.Equal(t, toast.PositionTopRight, cfg.TUI.Position)
	require.Len(t, cfg.Surfaces, 1)
	assert.Equal(t, toast.PositionTopCenter, cfg.Surfaces[0].Position)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad yaml", "limit: [", "parse config file"},
		{"negative limit", "limit: -1", "limit must not be negative"},
		{"bad position", "tui: {position: middle}", "not a valid position"},
		{"surface without pattern", "surfaces: [{limit: 2}]", "pattern is required"},
		{"surface bad position", "surfaces: [{pattern: a, position: up}]", "not a valid position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RequiresDataDir(t *testing.T) {
	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestSettingsFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Surfaces = []Surface{
		{Pattern: "modal/*", Limit: 1, Position: toast.PositionTopCenter},
		{Pattern: "editor/**", Position: toast.PositionBottomLeft},
		{Pattern: "modal/login", Limit: 9},
	}

	tests := []struct {
		key      string
		limit    int
		position toast.Position
	}{
		{"default", toast.DefaultLimit, toast.PositionTopRight},
		{"modal/login", 1, toast.PositionTopCenter},
		{"modal/a/b", toast.DefaultLimit, toast.PositionTopRight},
		{"editor/a/b", toast.DefaultLimit, toast.PositionBottomLeft},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.limit, cfg.SettingsFor(tt.key).Limit)
			assert.Equal(t, tt.position, cfg.PositionFor(tt.key, toast.PositionTopRight))
		})
	}
}

func TestKindDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Durations.Success = time.Minute

	got := cfg.KindDurations()
	assert.Equal(t, time.Minute, got[toast.KindSuccess])
	assert.Equal(t, 4*time.Second, got[toast.KindBlank])
	assert.NotContains(t, got, toast.KindLoading)
}
