package nix

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/graph"
)

// PathInfo is the metadata nix path-info --json reports for one store path.
type PathInfo struct {
	Path        string   `json:"path,omitempty"`
	NarHash     string   `json:"narHash,omitempty"`
	NarSize     uint64   `json:"narSize"`
	ClosureSize *uint64  `json:"closureSize,omitempty"`
	References  []string `json:"references"`
	Signatures  []string `json:"signatures,omitempty"`
}

// rawPathInfo detects missing fields and the legacy "valid" marker.
type rawPathInfo struct {
	Path        string   `json:"path"`
	Valid       *bool    `json:"valid"`
	NarHash     string   `json:"narHash"`
	NarSize     *uint64  `json:"narSize"`
	ClosureSize *uint64  `json:"closureSize"`
	References  []string `json:"references"`
	Signatures  []string `json:"signatures"`
}

// DecodePathInfo parses the output of nix path-info --json.
//
// Newer versions of Nix print an object keyed by store path in which invalid
// paths map to null; older versions print an array of objects with a "path"
// field and "valid": false for invalid paths. Both forms are accepted and
// invalid paths are skipped. If a path appears twice the last entry wins.
func DecodePathInfo(data []byte) (map[string]PathInfo, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedOutput, "empty path-info output")
	}

	out := make(map[string]PathInfo)
	switch data[0] {
	case '{':
		var m map[string]*rawPathInfo
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedOutput, err, "decode path-info")
		}
		for path, raw := range m {
			if raw == nil {
				continue
			}
			raw.Path = path
			info, err := raw.toPathInfo()
			if err != nil {
				return nil, err
			}
			out[path] = info
		}
	case '[':
		var list []*rawPathInfo
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedOutput, err, "decode path-info")
		}
		for _, raw := range list {
			if raw == nil || raw.Path == "" || (raw.Valid != nil && !*raw.Valid) {
				continue
			}
			info, err := raw.toPathInfo()
			if err != nil {
				return nil, err
			}
			out[raw.Path] = info
		}
	default:
		return nil, errors.New(errors.ErrCodeMalformedOutput, "path-info output is neither a JSON object nor an array")
	}
	return out, nil
}

func (r *rawPathInfo) toPathInfo() (PathInfo, error) {
	if r.NarSize == nil {
		return PathInfo{}, errors.New(errors.ErrCodeMalformedOutput, "path-info for %s has no narSize", r.Path)
	}
	return PathInfo{
		Path:        r.Path,
		NarHash:     r.NarHash,
		NarSize:     *r.NarSize,
		ClosureSize: r.ClosureSize,
		References:  r.References,
		Signatures:  r.Signatures,
	}, nil
}

// StorePath converts the metadata into a graph node.
func (p PathInfo) StorePath() *graph.StorePath {
	sp := graph.NewStorePath(p.Path, p.NarSize, slices.Clone(p.References))
	sp.Signatures = slices.Clone(p.Signatures)
	if p.ClosureSize != nil {
		v := *p.ClosureSize
		sp.ClosureSize = &v
	}
	return sp
}

// sortedKeys returns the keys of m in lexicographic order.
func sortedKeys(m map[string]PathInfo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
