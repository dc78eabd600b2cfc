package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nixtree/pkg/cache"
	"github.com/matzehuels/nixtree/pkg/config"
	"github.com/matzehuels/nixtree/pkg/errors"
	"github.com/matzehuels/nixtree/pkg/graph"
	"github.com/matzehuels/nixtree/pkg/io"
	"github.com/matzehuels/nixtree/pkg/nix"
	"github.com/matzehuels/nixtree/pkg/observability"
	"github.com/matzehuels/nixtree/pkg/stats"
)

// loadOpts holds the flags shared by every command that loads a graph.
type loadOpts struct {
	configPath string   // explicit config file; must exist
	store      string   // --store URL
	file       string   // --file
	derivation bool     // query derivations instead of outputs
	options    []string // --option name=value
	noCache    bool     // bypass the path-info cache
	importPath string   // JSON snapshot to load instead of running nix
	sort       string   // initial sort order
}

// bind registers the load flags on cmd.
func (o *loadOpts) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nixtree/config.toml)")
	f.StringVar(&o.store, "store", "", "URL of the Nix store to query")
	f.StringVar(&o.file, "file", "", "interpret PATHS as attributes of this Nix file")
	f.BoolVarP(&o.derivation, "derivation", "d", false, "operate on store derivations instead of outputs")
	f.StringArrayVar(&o.options, "option", nil, "pass a Nix option as name=value (repeatable)")
	f.BoolVar(&o.noCache, "no-cache", false, "do not read or write the path-info cache")
	f.StringVar(&o.importPath, "import", "", "load a JSON snapshot written by 'nixtree export -f json'")
	f.StringVar(&o.sort, "sort", "", "initial sort order: name, closure, added")
}

// settings merges the config file with the flags that were set explicitly.
func (o *loadOpts) settings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("store") {
		cfg.Store = o.store
	}
	if f.Changed("file") {
		cfg.File = o.file
	}
	if f.Changed("derivation") {
		cfg.Derivation = o.derivation
	}
	if f.Changed("no-cache") {
		cfg.NoCache = o.noCache
	}
	if f.Changed("sort") {
		cfg.Sort = o.sort
	}
	if len(o.options) > 0 {
		opts, err := parseOptions(o.options)
		if err != nil {
			return cfg, err
		}
		if cfg.Options == nil {
			cfg.Options = make(map[string]string, len(opts))
		}
		for k, v := range opts {
			cfg.Options[k] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid flags")
	}
	return cfg, nil
}

// loadConfig reads --config, or the default file when it can be located.
// Without a config directory the defaults apply.
func (o *loadOpts) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath, true)
	}
	path, err := config.Path()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(path, false)
}

// parseOptions parses name=value pairs. Later pairs win.
func parseOptions(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid --option %q, expected name=value", p)
		}
		out[name] = value
	}
	return out, nil
}

// loaded is the result of ingestion.
type loaded struct {
	cfg   config.Config
	graph *graph.Graph
	stats *stats.Table
}

// load reads the graph for refs (or the default roots), either from nix or
// from a snapshot, and calculates sizes.
func (c *CLI) load(ctx context.Context, cmd *cobra.Command, refs []string, o *loadOpts) (*loaded, error) {
	cfg, err := o.settings(cmd)
	if err != nil {
		return nil, err
	}

	var g *graph.Graph
	if o.importPath != "" {
		g, err = c.importGraph(o.importPath)
	} else {
		g, err = c.queryGraph(ctx, cfg, refs)
	}
	if err != nil {
		return nil, err
	}
	if len(g.Roots) == 0 {
		return nil, errors.New(errors.ErrCodeNoRoots, "no store paths to browse")
	}

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Calculating sizes...")
	spinner.Start()
	t := stats.Calculate(g)
	spinner.Stop()
	observability.Ingest().OnStatsComplete(ctx, t.Len(), prog.elapsed())
	prog.done("Calculated sizes")

	return &loaded{cfg: cfg, graph: g, stats: t}, nil
}

func (c *CLI) queryGraph(ctx context.Context, cfg config.Config, refs []string) (*graph.Graph, error) {
	logger := loggerFromContext(ctx)

	if len(refs) == 0 {
		roots, err := nix.DefaultRoots(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("using default roots", "roots", roots)
		refs = roots
	}

	ttl, err := cfg.TTL()
	if err != nil {
		return nil, err
	}
	cc, err := newCache(cfg.NoCache)
	if err != nil {
		printWarning("Cache unavailable: %v", err)
		cc = cache.NewNullCache()
	}
	defer cc.Close()

	client := nix.NewClient(
		nix.WithOptions(nix.Options{
			Store:      cfg.Store,
			File:       cfg.File,
			Derivation: cfg.Derivation,
			NixOptions: cfg.Options,
			CacheTTL:   ttl,
		}),
		nix.WithCache(cc),
		nix.WithKeyer(newKeyer()),
		nix.WithLogger(logger),
	)

	spinner := newSpinnerWithContext(ctx, "Loading store paths...")
	spinner.Start()
	g, err := client.QueryPathInfo(ctx, refs)
	if err != nil {
		spinner.Stop()
		return nil, err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Loaded %d store paths", g.Len()))
	printStats(g.Len(), g.EdgeCount(), c.hooks.fromCache())
	return g, nil
}

func (c *CLI) importGraph(path string) (*graph.Graph, error) {
	g, err := io.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	printSuccess("Imported %d store paths", g.Len())
	printDetail("Snapshot: %s", path)
	return g, nil
}
