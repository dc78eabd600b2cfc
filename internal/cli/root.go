package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nixtree/internal/tui"
	"github.com/matzehuels/nixtree/pkg/buildinfo"
	"github.com/matzehuels/nixtree/pkg/navigator"
)

// browseCommand creates the root command, which opens the interactive browser.
func (c *CLI) browseCommand() *cobra.Command {
	var opts loadOpts

	cmd := &cobra.Command{
		Use:   appName + " [PATHS]...",
		Short: "Interactively browse dependency graphs of Nix derivations",
		Long: `nixtree shows the closure of one or more store paths in three panes:
the paths referring to the selected path, the current list, and the paths
the selected path references. Each path is annotated with its closure size
and the size it adds on top of its siblings.

PATHS may be store paths, profile links or anything 'nix path-info' accepts.
Without PATHS the system profile and the current user's profile are shown.`,
		Example: `  nixtree
  nixtree /run/current-system
  nixtree --derivation nixpkgs#hello
  nixtree --file default.nix hello`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.load(ctx, cmd, args, &opts)
			if err != nil {
				return err
			}
			nav := navigator.New(l.graph, l.stats, navigator.WithSortOrder(l.cfg.SortOrder()))
			return tui.Run(ctx, nav)
		},
	}

	opts.bind(cmd)
	return cmd
}
