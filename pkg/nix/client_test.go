package nix

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nixtree/pkg/cache"
	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/observability"
)

const (
	resolveJSON = `{"/nix/store/rrr-root": {"narSize": 10, "references": ["/nix/store/aaa-a", "/nix/store/bbb-b"]}}`
	queryJSON   = `{
	  "/nix/store/rrr-root": {"narSize": 10, "closureSize": 50, "references": ["/nix/store/aaa-a", "/nix/store/bbb-b", "/nix/store/rrr-root"]},
	  "/nix/store/aaa-a":    {"narSize": 20, "closureSize": 25, "references": ["/nix/store/ccc-c"]},
	  "/nix/store/bbb-b":    {"narSize": 15, "closureSize": 20, "references": ["/nix/store/ccc-c", "/nix/store/xxx-outside"]},
	  "/nix/store/ccc-c":    {"narSize": 5, "closureSize": 5, "references": []}
	}`
)

// fakeRunner answers resolution and closure queries with canned output.
type fakeRunner struct {
	resolve string
	query   string
	err     error
	calls   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	if slices.Contains(args, "--recursive") {
		return []byte(f.query), nil
	}
	return []byte(f.resolve), nil
}

func (f *fakeRunner) queries() int {
	n := 0
	for _, c := range f.calls {
		if slices.Contains(c, "--recursive") {
			n++
		}
	}
	return n
}

func newTestClient(r Runner, opts ...ClientOption) *Client {
	opts = append([]ClientOption{
		WithRunner(r),
		WithLogger(log.New(&strings.Builder{})),
	}, opts...)
	return NewClient(opts...)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient()
	assert.IsType(t, ExecRunner{}, c.Runner)
	assert.Equal(t, DefaultBinary, c.Options.Binary)
	assert.Equal(t, cache.TTLPathInfo, c.Options.CacheTTL)
	assert.NotNil(t, c.Cache)
	assert.NotNil(t, c.Keyer)
	assert.NotNil(t, c.Logger)
}

func TestResolveArgs(t *testing.T) {
	c := NewClient(WithOptions(Options{
		Store:      "daemon",
		File:       "default.nix",
		Derivation: true,
		NixOptions: map[string]string{"substituters": "", "allow-import-from-derivation": "true"},
	}))

	got := c.ResolveArgs([]string{"hello"})
	want := []string{
		"--extra-experimental-features", "nix-command flakes",
		"--option", "allow-import-from-derivation", "true",
		"--option", "substituters", "",
		"--store", "daemon",
		"--file", "default.nix",
		"path-info", "--json", "--derivation",
		"hello",
	}
	assert.Equal(t, want, got)
}

func TestQueryArgs(t *testing.T) {
	c := NewClient(WithOptions(Options{File: "default.nix"}))

	got := c.QueryArgs([]string{"/nix/store/aaa-a"})
	want := []string{
		"--extra-experimental-features", "nix-command flakes",
		"path-info", "--json", "--closure-size", "--recursive",
		"/nix/store/aaa-a",
	}
	assert.Equal(t, want, got, "resolved store paths are not attribute paths of --file")
}

func TestResolve(t *testing.T) {
	r := &fakeRunner{resolve: `{"/nix/store/bbb-b": {"narSize": 1, "references": []}, "/nix/store/aaa-a": {"narSize": 1, "references": []}}`}
	c := newTestClient(r)

	paths, err := c.Resolve(context.Background(), []string{"nixpkgs#b", "nixpkgs#a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/nix/store/aaa-a", "/nix/store/bbb-b"}, paths)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "nix", r.calls[0][0])
}

func TestResolveEmpty(t *testing.T) {
	r := &fakeRunner{}
	c := newTestClient(r)

	paths, err := c.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Empty(t, r.calls, "nix must not run without references")
}

func TestQueryPathInfo(t *testing.T) {
	r := &fakeRunner{resolve: resolveJSON, query: queryJSON}
	c := newTestClient(r)

	g, err := c.QueryPathInfo(context.Background(), []string{"/run/current-system"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/nix/store/rrr-root"}, g.Roots)
	assert.Equal(t, 4, g.Len())

	root, ok := g.Path("/nix/store/rrr-root")
	require.True(t, ok)
	assert.Equal(t, "root", root.Name)
	assert.NotContains(t, root.References, "/nix/store/rrr-root", "self-reference kept")
	require.NotNil(t, root.ClosureSize)
	assert.Equal(t, uint64(50), *root.ClosureSize)

	// Missing targets stay on the node but resolve to nothing.
	b, _ := g.Path("/nix/store/bbb-b")
	assert.Contains(t, b.References, "/nix/store/xxx-outside")
	assert.Len(t, g.References("/nix/store/bbb-b"), 1)

	assert.ElementsMatch(t, []string{"/nix/store/aaa-a", "/nix/store/bbb-b"}, g.ReferrerIDs("/nix/store/ccc-c"))
}

func TestQueryPathInfoNoRoots(t *testing.T) {
	r := &fakeRunner{resolve: `{}`}
	c := newTestClient(r)

	g, err := c.QueryPathInfo(context.Background(), []string{"/nix/store/zzz-gone"})
	require.NoError(t, err)
	assert.Empty(t, g.Roots)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, r.queries())
}

func TestQueryPathInfoCommandFailed(t *testing.T) {
	r := &fakeRunner{err: fmt.Errorf("exit status 1: error: path '/nix/store/x' is not valid")}
	c := newTestClient(r)

	_, err := c.QueryPathInfo(context.Background(), []string{"/nix/store/x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
	assert.Contains(t, errors.UserMessage(err), "is not valid")
}

func TestQueryPathInfoMalformed(t *testing.T) {
	r := &fakeRunner{resolve: resolveJSON, query: "warning: something\n{"}
	c := newTestClient(r)

	_, err := c.QueryPathInfo(context.Background(), []string{"/run/current-system"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedOutput))
}

func TestQueryPathInfoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRunner{err: fmt.Errorf("signal: killed")}
	c := newTestClient(r)

	_, err := c.QueryPathInfo(ctx, []string{"/run/current-system"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryPathInfoCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := &fakeRunner{resolve: resolveJSON, query: queryJSON}
	c := newTestClient(r, WithCache(fc))

	_, err = c.QueryPathInfo(context.Background(), []string{"/run/current-system"})
	require.NoError(t, err)
	g, err := c.QueryPathInfo(context.Background(), []string{"/run/current-system"})
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 1, r.queries(), "second closure query should be served from cache")
	assert.Equal(t, 1, hooks.hits)
	assert.Equal(t, 1, hooks.misses)
	assert.Equal(t, 1, hooks.sets)

	// Resolution is never cached.
	assert.Len(t, r.calls, 3)
}

func TestQueryPathInfoCacheKeyedByOptions(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	r := &fakeRunner{resolve: resolveJSON, query: queryJSON}
	_, err = newTestClient(r, WithCache(fc)).QueryPathInfo(context.Background(), []string{"x"})
	require.NoError(t, err)
	_, err = newTestClient(r, WithCache(fc), WithOptions(Options{Store: "daemon"})).QueryPathInfo(context.Background(), []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, 2, r.queries())
}

func TestQueryPathInfoExpiredCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	r := &fakeRunner{resolve: resolveJSON, query: queryJSON}
	c := newTestClient(r, WithCache(fc), WithOptions(Options{CacheTTL: time.Nanosecond}))

	_, err = c.QueryPathInfo(context.Background(), []string{"x"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.QueryPathInfo(context.Background(), []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, 2, r.queries())
}

func TestDefaultRoots(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := defaultRoots(ctx, dir, "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNoRoots))

	system := dir + "/system"
	require.NoError(t, mkdir(system))
	roots, err := defaultRoots(ctx, dir, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{system}, roots)

	user := dir + "/per-user/alice/profile"
	require.NoError(t, mkdir(user))
	roots, err = defaultRoots(ctx, dir, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{system, user}, roots)

	roots, err = defaultRoots(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{system}, roots)
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func mkdir(p string) error { return os.MkdirAll(p, 0755) }
