// Package config loads nixtree's configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/nixtree/config.toml
// (~/.config/nixtree/config.toml when XDG_CONFIG_HOME is unset):
//
//	store = "daemon"
//	derivation = false
//	sort = "closure"      # name, closure or added
//	no_cache = false
//	cache_ttl = "24h"
//
//	[options]
//	substituters = "https://cache.nixos.org"
//
// A missing file yields the defaults. Command-line flags override file
// values.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nixtree/pkg/cache"
	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/stats"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "config.toml"

// Config holds user preferences.
type Config struct {
	Store      string            `toml:"store"`
	File       string            `toml:"file"`
	Derivation bool              `toml:"derivation"`
	Sort       string            `toml:"sort"`
	NoCache    bool              `toml:"no_cache"`
	CacheTTL   string            `toml:"cache_ttl"`
	Options    map[string]string `toml:"options"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Sort:     "name",
		CacheTTL: cache.TTLPathInfo.String(),
	}
}

// Path returns the default location of the configuration file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "nixtree", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nixtree", FileName), nil
}

// Load reads the file at path over the defaults and validates the result. A
// missing file is not an error unless required is set, which the CLI does
// for an explicit --config.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the sort order and cache TTL.
func (c Config) Validate() error {
	if _, err := stats.ParseSortOrder(c.Sort); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "sort")
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	return nil
}

// SortOrder returns the configured initial sort order.
func (c Config) SortOrder() stats.SortOrder {
	o, _ := stats.ParseSortOrder(c.Sort)
	return o
}

// TTL returns the parsed cache lifetime. An empty value means the default;
// zero and negative lifetimes are rejected.
func (c Config) TTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return cache.TTLPathInfo, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache_ttl")
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must be positive, use no_cache to disable caching: %s", c.CacheTTL)
	}
	return d, nil
}
