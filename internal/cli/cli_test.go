package cli

import (
	"bytes"
	"testing"

	"github.com/matzehuels/nixtree/pkg/config"
	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/stats"
)

const (
	pRoot = "/nix/store/rrrrrrrr-system"
	pA    = "/nix/store/aaaaaaaa-libfoo"
	pB    = "/nix/store/bbbbbbbb-libbar"
	pC    = "/nix/store/cccccccc-glibc"
)

// testLoaded returns system -> {libfoo, libbar}, libfoo -> glibc,
// libbar -> glibc with the given sort order configured.
func testLoaded(sort string) *loaded {
	g := graph.New()
	g.AddPath(graph.NewStorePath(pRoot, 10, []string{pA, pB}))
	g.AddPath(graph.NewStorePath(pA, 20, []string{pC}))
	g.AddPath(graph.NewStorePath(pB, 15, []string{pC}))
	g.AddPath(graph.NewStorePath(pC, 5, nil))
	g.Roots = []string{pRoot}
	g.DisambiguateNames()

	cfg := config.Default()
	cfg.Sort = sort
	return &loaded{cfg: cfg, graph: g, stats: stats.Calculate(g)}
}

// captureStatus redirects status lines to a buffer for the duration of the
// test.
func captureStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := statusOut
	statusOut = &buf
	t.Cleanup(func() { statusOut = prev })
	return &buf
}
