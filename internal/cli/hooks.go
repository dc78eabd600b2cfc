package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nixtree/pkg/observability"
)

// logHooks writes ingestion and cache events to the debug log and remembers
// whether the last metadata query was served from the cache.
type logHooks struct {
	logger *log.Logger
	cached atomic.Bool
}

func (h *logHooks) OnResolveStart(_ context.Context, refs []string) {
	h.logger.Debug("resolving", "refs", refs)
}

func (h *logHooks) OnResolveComplete(_ context.Context, count int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "err", err, "took", d.Round(time.Millisecond))
		return
	}
	h.logger.Debug("resolved", "paths", count, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnQueryStart(_ context.Context, pathCount int) {
	h.cached.Store(false)
	h.logger.Debug("querying closure", "roots", pathCount)
}

func (h *logHooks) OnQueryComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("query failed", "err", err, "took", d.Round(time.Millisecond))
		return
	}
	h.logger.Debug("queried closure", "paths", nodes, "edges", edges, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnStatsComplete(_ context.Context, nodes int, d time.Duration) {
	h.logger.Debug("calculated sizes", "paths", nodes, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cached.Store(true)
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// fromCache reports whether the last query was answered by the cache.
func (h *logHooks) fromCache() bool {
	return h.cached.Load()
}

var (
	_ observability.IngestHooks = (*logHooks)(nil)
	_ observability.CacheHooks  = (*logHooks)(nil)
)
