package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns "kind:<sha256>" over the JSON encoding of parts. For
// path-info keys parts are the sorted store paths and the PathInfoKeyOpts,
// so maps in the options encode with sorted keys and equal queries collide.
func hashKey(kind string, parts ...any) string {
	// parts are slices, strings and option structs; none can fail to encode.
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. FileCache uses it to name entry
// files, so any key maps to a fixed-length file name.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
