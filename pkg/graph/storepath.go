package graph

import (
	"path"
	"strings"
)

// StorePath is a single artifact in the Nix store: a uniquely identified unit
// with a byte size and outgoing dependency edges.
//
// StorePaths are created once during ingestion and treated as immutable once
// they have been added to a [Graph], with the exception of Name, which
// [Graph.DisambiguateNames] may rewrite.
type StorePath struct {
	Path string // Unique identifier, e.g. /nix/store/<hash>-<name>
	Hash string // Content hash extracted from Path (may be empty)
	Name string // Display name, unique after DisambiguateNames

	// NarSize is the size of the path itself in bytes.
	NarSize uint64

	// ClosureSize is the total size of everything reachable from this path,
	// as reported by the ingestion source. Nil when not reported.
	ClosureSize *uint64

	// References lists the identifiers this path directly depends on.
	References []string

	// Signatures are informational only and never used by any algorithm.
	Signatures []string
}

// NewStorePath creates a StorePath for p with Hash and Name parsed from the
// identifier.
func NewStorePath(p string, narSize uint64, references []string) *StorePath {
	hash, name := ParseStorePath(p)
	return &StorePath{
		Path:       p,
		Hash:       hash,
		Name:       name,
		NarSize:    narSize,
		References: references,
	}
}

// ParseStorePath splits a store path into its hash and name parts.
//
// The last path segment is split at its first '-': "/nix/store/abc-hello-2.12"
// yields ("abc", "hello-2.12"). A segment without '-' has no hash and is used
// as the name unchanged. ParseStorePath never fails.
func ParseStorePath(p string) (hash, name string) {
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" {
		return "", p
	}
	hash, name, ok := strings.Cut(base, "-")
	if !ok || hash == "" || name == "" {
		return "", base
	}
	return hash, name
}
