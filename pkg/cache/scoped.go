package cache

// ScopedKeyer wraps a Keyer with a prefix so that entries written by one
// namespace are never read by another.
//
// The CLI scopes keys by release so that a change in the cached format is
// never decoded by an older or newer binary:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PathInfoKey generates a prefixed key for path metadata.
func (k *ScopedKeyer) PathInfoKey(paths []string, opts PathInfoKeyOpts) string {
	return k.prefix + k.inner.PathInfoKey(paths, opts)
}
