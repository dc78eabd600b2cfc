package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nixtree/pkg/cache"
	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/stats"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store = "daemon"
file = "release.nix"
derivation = true
sort = "added"
no_cache = true
cache_ttl = "1h30m"

[options]
substituters = "https://cache.nixos.org"
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "daemon", cfg.Store)
	assert.Equal(t, "release.nix", cfg.File)
	assert.True(t, cfg.Derivation)
	assert.True(t, cfg.NoCache)
	assert.Equal(t, stats.AddedSize, cfg.SortOrder())
	assert.Equal(t, map[string]string{"substituters": "https://cache.nixos.org"}, cfg.Options)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, ttl)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `store = "local"`), false)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Store)
	assert.Equal(t, stats.Alphabetical, cfg.SortOrder())

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, cache.TTLPathInfo, ttl)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `store = `},
		{"bad sort", `sort = "size"`},
		{"bad ttl", `cache_ttl = "tomorrow"`},
		{"negative ttl", `cache_ttl = "-1h"`},
		{"zero ttl", `cache_ttl = "0s"`},
		{"unknown key", `colour = "red"`},
		{"wrong type", `derivation = "yes"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/nixtree/config.toml", path)

	t.Setenv("XDG_CONFIG_HOME", "")
	path, err = Path()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "nixtree", FileName), path)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
