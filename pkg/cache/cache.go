// Package cache stores the output of expensive Nix queries between runs.
//
// Only store path metadata is cached. Store paths are content-addressed, so
// the metadata for a given set of resolved paths under the same options never
// changes; entries still expire after a TTL so a garbage-collected store does
// not keep serving stale closures. Resolution of user references is never
// cached because profile links move.
package cache

import (
	"context"
	"slices"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired and
	// unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Key types reported to observability hooks.
const (
	KeyTypePathInfo = "pathinfo"
)

// TTLPathInfo is the default lifetime of cached path metadata.
const TTLPathInfo = 24 * time.Hour

// PathInfoKeyOpts holds everything besides the path set that changes the
// output of nix path-info.
type PathInfoKeyOpts struct {
	Store      string            `json:"store,omitempty"`
	File       string            `json:"file,omitempty"`
	Derivation bool              `json:"derivation,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// PathInfoKey returns the key for the metadata of paths under opts.
	PathInfoKey(paths []string, opts PathInfoKeyOpts) string
}

// DefaultKeyer hashes its inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PathInfoKey returns "pathinfo:<sha256>" over the sorted paths and opts.
// The order of paths does not matter.
func (DefaultKeyer) PathInfoKey(paths []string, opts PathInfoKeyOpts) string {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return hashKey(KeyTypePathInfo, sorted, opts)
}
