package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/errors"
	"github.com/matzehuels/pixelsort/pkg/pipeline"
)

// statsOpts holds the command-line flags for the stats command.
type statsOpts struct {
	by      []string
	all     bool
	json    bool
	noCache bool
}

// statsCommand creates the stats command, which summarizes the score keys of
// an image for one or more algorithms.
func (c *CLI) statsCommand() *cobra.Command {
	opts := statsOpts{by: []string{score.AlgLuma.String()}}

	cmd := &cobra.Command{
		Use:   "stats [image]",
		Short: "Summarize the score distribution of an image",
		Long: `Print the mean, standard deviation and range of the per-pixel sort keys.

Useful for picking a sort key: an algorithm whose keys barely vary will
move few pixels.`,
		Example: `  pixelsort stats photo.jpg
  pixelsort stats photo.jpg --by hue,saturation
  pixelsort stats photo.jpg --all --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: imageArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.by, "by", "b", opts.by, "algorithms to summarize (comma-separated)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "summarize every algorithm")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	_ = cmd.RegisterFlagCompletionFunc("by", fixedCompletions(algorithmNames()...))

	return cmd
}

func (c *CLI) runStats(cmd *cobra.Command, input string, opts *statsOpts) error {
	ctx := cmd.Context()

	algs, err := statsAlgorithms(opts)
	if err != nil {
		return err
	}
	if err := errors.ValidatePath(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", input)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if !opts.json && isTerminal(os.Stderr) {
		spinner = newSpinner(ctx, "Analyzing "+filepath.Base(input)+"...")
		spinner.Start()
	}

	results := make([]*pipeline.Analysis, 0, len(algs))
	for _, alg := range algs {
		if spinner != nil {
			spinner.SetMessage(fmt.Sprintf("Analyzing %s by %s...", filepath.Base(input), alg))
		}
		a, err := runner.Analyze(ctx, pipeline.AnalyzeOptions{Input: data, By: alg})
		if err != nil {
			if spinner != nil {
				spinner.StopWithError(errors.UserMessage(err))
			}
			return err
		}
		results = append(results, a)
	}
	if spinner != nil {
		spinner.Stop()
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	out := newPrinter(cmd.OutOrStdout())
	first := results[0]
	out.info("%s %s", StyleValue.Render(filepath.Base(input)),
		StyleDim.Render(fmt.Sprintf("%s · %dx%d", first.Format, first.Width, first.Height)))
	out.blank()
	renderStatsTable(cmd.OutOrStdout(), results)
	out.blank()
	out.nextStep("Sort by the widest spread", "pixelsort sort "+input+" --by "+widestSpread(results))
	return nil
}

// statsAlgorithms resolves the --by and --all flags.
func statsAlgorithms(opts *statsOpts) ([]score.Algorithm, error) {
	if opts.all {
		return score.Algorithms(), nil
	}
	if len(opts.by) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "at least one algorithm is required")
	}
	algs := make([]score.Algorithm, 0, len(opts.by))
	for _, name := range opts.by {
		alg, err := score.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return algs, nil
}

// renderStatsTable writes one row per analysis.
func renderStatsTable(w io.Writer, results []*pipeline.Analysis) {
	rows := make([][]string, 0, len(results))
	for _, a := range results {
		status := iconFresh
		if a.Hit {
			status = iconCached
		}
		rows = append(rows, []string{
			a.By,
			fmt.Sprintf("%.2f", a.Summary.Mean),
			fmt.Sprintf("%.2f", a.Summary.StdDev),
			fmt.Sprintf("%d", a.Summary.Min),
			fmt.Sprintf("%d", a.Summary.Max),
			status,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("By", "Mean", "StdDev", "Min", "Max", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorCyan)
			case col == 5 && results[row].Hit:
				return base.Foreground(colorGreen)
			case col == 5:
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})
	fmt.Fprintln(w, t.Render())
}

// widestSpread names the algorithm with the largest standard deviation.
func widestSpread(results []*pipeline.Analysis) string {
	best := results[0]
	for _, a := range results[1:] {
		if a.Summary.StdDev > best.Summary.StdDev {
			best = a
		}
	}
	return best.By
}
