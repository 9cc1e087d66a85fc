package cli

import (
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pixelsort/pkg/core/score"
)

// completionGenerators writes the completion script of the root command for
// one shell.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionGenerators))
	for name := range completionGenerators {
		shells = append(shells, name)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   "completion [bash|fish|powershell|zsh]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell. Completion covers
subcommands, image arguments and the fixed choices of --by, --direction,
--channel, --step and --format.`,
		Example: `  source <(pixelsort completion bash)
  pixelsort completion zsh > "${fpath[1]}/_pixelsort"
  pixelsort completion fish > ~/.config/fish/completions/pixelsort.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// fixedCompletions completes a flag value from a fixed list.
func fixedCompletions(choices ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return choices, cobra.ShellCompDirectiveNoFileComp
	}
}

// imageArgCompletion completes the single image argument with files the
// decoder understands.
func imageArgCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}, cobra.ShellCompDirectiveFilterFileExt
}

// algorithmNames lists every score algorithm for completion.
func algorithmNames() []string {
	algs := score.Algorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = a.String()
	}
	return names
}
