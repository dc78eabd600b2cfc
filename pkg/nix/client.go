// Package nix loads store path metadata by running the nix command line tool.
//
// Loading happens in two steps. [Client.Resolve] turns the user's references
// (store paths, profile links, flake references, or attributes of a file)
// into concrete store paths. [Client.QueryPathInfo] then fetches the
// metadata of the full closure of those paths and builds a [graph.Graph].
//
// Both steps run nix path-info --json. The command is abstracted behind
// [Runner] so tests can substitute canned output.
package nix

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nixtree/pkg/cache"
	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/observability"
)

// DefaultBinary is the command run when Options.Binary is empty.
const DefaultBinary = "nix"

// experimentalFeatures are always enabled so that path-info accepts flake
// references regardless of the user's nix.conf.
const experimentalFeatures = "nix-command flakes"

// Options select the store and how references are interpreted.
type Options struct {
	// Binary is the nix executable. Defaults to DefaultBinary.
	Binary string

	// Store is the URL of the Nix store to query (--store).
	Store string

	// File evaluates references as attributes of this Nix file (--file).
	File string

	// Derivation queries derivations instead of outputs (--derivation).
	Derivation bool

	// NixOptions are passed as --option name value.
	NixOptions map[string]string

	// CacheTTL is the lifetime of cached metadata. Defaults to
	// cache.TTLPathInfo.
	CacheTTL time.Duration
}

// Client runs nix path-info and turns its output into a graph.
type Client struct {
	Runner  Runner
	Options Options
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// ClientOption configures NewClient.
type ClientOption func(*Client)

// WithRunner sets the command runner.
func WithRunner(r Runner) ClientOption {
	return func(c *Client) { c.Runner = r }
}

// WithOptions sets the query options.
func WithOptions(o Options) ClientOption {
	return func(c *Client) { c.Options = o }
}

// WithCache enables metadata caching.
func WithCache(cc cache.Cache) ClientOption {
	return func(c *Client) { c.Cache = cc }
}

// WithKeyer sets the cache key generator.
func WithKeyer(k cache.Keyer) ClientOption {
	return func(c *Client) { c.Keyer = k }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.Logger = l }
}

// NewClient creates a Client. Without options it runs the real nix binary
// with caching disabled.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Runner == nil {
		c.Runner = ExecRunner{}
	}
	if c.Cache == nil {
		c.Cache = cache.NewNullCache()
	}
	if c.Keyer == nil {
		c.Keyer = cache.NewDefaultKeyer()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Options.Binary == "" {
		c.Options.Binary = DefaultBinary
	}
	if c.Options.CacheTTL == 0 {
		c.Options.CacheTTL = cache.TTLPathInfo
	}
	return c
}

// globalArgs returns the arguments that precede the path-info subcommand.
// withFile controls whether --file is passed; it only applies while
// references are still attribute paths.
func (c *Client) globalArgs(withFile bool) []string {
	args := []string{"--extra-experimental-features", experimentalFeatures}

	names := make([]string, 0, len(c.Options.NixOptions))
	for name := range c.Options.NixOptions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		args = append(args, "--option", name, c.Options.NixOptions[name])
	}

	if c.Options.Store != "" {
		args = append(args, "--store", c.Options.Store)
	}
	if withFile && c.Options.File != "" {
		args = append(args, "--file", c.Options.File)
	}
	return args
}

// ResolveArgs returns the nix arguments used to resolve refs.
func (c *Client) ResolveArgs(refs []string) []string {
	args := append(c.globalArgs(true), "path-info", "--json")
	if c.Options.Derivation {
		args = append(args, "--derivation")
	}
	return append(args, refs...)
}

// QueryArgs returns the nix arguments used to fetch the closure metadata of
// resolved store paths.
func (c *Client) QueryArgs(paths []string) []string {
	args := append(c.globalArgs(false), "path-info", "--json", "--closure-size", "--recursive")
	if c.Options.Derivation {
		args = append(args, "--derivation")
	}
	return append(args, paths...)
}

func (c *Client) run(ctx context.Context, args []string) ([]byte, error) {
	c.Logger.Debug("running nix", "binary", c.Options.Binary, "args", args)
	out, err := c.Runner.Run(ctx, c.Options.Binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "nix path-info failed")
	}
	return out, nil
}

// Resolve turns references into the sorted, de-duplicated store paths they
// denote. No references resolve to no paths without running nix. Results are
// never cached.
func (c *Client) Resolve(ctx context.Context, refs []string) (paths []string, err error) {
	if len(refs) == 0 {
		return nil, nil
	}

	start := time.Now()
	observability.Ingest().OnResolveStart(ctx, refs)
	defer func() {
		observability.Ingest().OnResolveComplete(ctx, len(paths), time.Since(start), err)
	}()

	out, err := c.run(ctx, c.ResolveArgs(refs))
	if err != nil {
		return nil, err
	}
	infos, err := DecodePathInfo(out)
	if err != nil {
		return nil, err
	}
	return sortedKeys(infos), nil
}

// QueryPathInfo resolves refs and loads the metadata of their full closure
// into a graph whose Roots are the resolved paths. Metadata is served from
// the cache when possible. References to paths missing from the metadata are
// kept on their referrers and treated as dead leaves by the graph.
func (c *Client) QueryPathInfo(ctx context.Context, refs []string) (*graph.Graph, error) {
	roots, err := c.Resolve(ctx, refs)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	g.Roots = roots
	if len(roots) == 0 {
		return g, nil
	}

	start := time.Now()
	observability.Ingest().OnQueryStart(ctx, len(roots))

	infos, err := c.queryMetadata(ctx, roots)
	if err != nil {
		observability.Ingest().OnQueryComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	for _, path := range sortedKeys(infos) {
		g.AddPath(infos[path].StorePath())
	}
	g.DisambiguateNames()

	observability.Ingest().OnQueryComplete(ctx, g.Len(), g.EdgeCount(), time.Since(start), nil)
	return g, nil
}

func (c *Client) queryMetadata(ctx context.Context, roots []string) (map[string]PathInfo, error) {
	key := c.Keyer.PathInfoKey(roots, cache.PathInfoKeyOpts{
		Store:      c.Options.Store,
		File:       c.Options.File,
		Derivation: c.Options.Derivation,
		Options:    c.Options.NixOptions,
	})

	if data, hit, err := c.Cache.Get(ctx, key); err == nil && hit {
		infos, err := DecodePathInfo(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypePathInfo)
			c.Logger.Debug("path-info cache hit", "paths", len(infos))
			return infos, nil
		}
		// Undecodable entry, fall through to query nix
	} else if err != nil {
		c.Logger.Debug("path-info cache read failed", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyTypePathInfo)

	out, err := c.run(ctx, c.QueryArgs(roots))
	if err != nil {
		return nil, err
	}
	infos, err := DecodePathInfo(out)
	if err != nil {
		return nil, err
	}

	if err := c.Cache.Set(ctx, key, out, c.Options.CacheTTL); err != nil {
		c.Logger.Debug("path-info cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cache.KeyTypePathInfo, len(out))
	}
	return infos, nil
}
