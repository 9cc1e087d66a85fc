package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/core/sorter"
	"github.com/matzehuels/pixelsort/pkg/errors"
	"github.com/matzehuels/pixelsort/pkg/imageio"
	"github.com/matzehuels/pixelsort/pkg/pipeline"
	"github.com/matzehuels/pixelsort/pkg/preset"
)

// sortOpts holds the command-line flags for the sort command. Sort flags only
// override a preset when they were set explicitly.
type sortOpts struct {
	output     string
	format     string
	quality    int
	preset     string
	savePreset string

	by           string
	interval     int
	reverse      bool
	coefficients string
	discretize   int
	progressive  int
	direction    string
	shuffle      bool
	channel      string
	step         string
	seed         uint64
	workers      int

	noCache    bool
	refresh    bool
	noProgress bool
}

// sortCommand creates the sort command.
func (c *CLI) sortCommand() *cobra.Command {
	def := sorter.DefaultOptions()
	opts := sortOpts{
		by:        def.By.String(),
		interval:  def.Interval,
		direction: def.Direction.String(),
		step:      def.StepPolicy.String(),
	}

	cmd := &cobra.Command{
		Use:   "sort [image]",
		Short: "Pixel-sort an image",
		Long: `Sort runs of pixels along the rows or columns of an image.

Options are resolved in order: built-in defaults, then --preset, then any
flag given explicitly on the command line. Without --output the result is
written next to the input as <name>.sorted.<ext>.`,
		Example: `  pixelsort sort photo.jpg
  pixelsort sort photo.jpg --by hue --interval 12 --direction vertical
  pixelsort sort photo.png --preset glitch.toml --seed 7 -o out.png`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: imageArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSort(cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (format follows the extension)")
	f.StringVarP(&opts.format, "format", "f", "", "output format: png, jpeg, gif, bmp, tiff (default: input format)")
	f.IntVar(&opts.quality, "quality", imageio.DefaultJPEGQuality, "JPEG quality 1-100")
	f.StringVar(&opts.preset, "preset", "", "load options from a TOML or YAML preset")
	f.StringVar(&opts.savePreset, "save-preset", "", "write the resolved options to a TOML or YAML preset")

	f.StringVarP(&opts.by, "by", "b", opts.by, "sort key: luma, brightness, chroma, hue, saturation, intensity")
	f.IntVarP(&opts.interval, "interval", "i", opts.interval, "maximum step between starting points")
	f.BoolVarP(&opts.reverse, "reverse", "r", false, "sort in descending order")
	f.StringVar(&opts.coefficients, "coefficients", "", "channel weights as r,g,b")
	f.IntVarP(&opts.discretize, "discretize", "d", 0, "window size; 0 or 1 sorts whole runs")
	f.IntVar(&opts.progressive, "progressive", 0, "extra step added per line index")
	f.StringVar(&opts.direction, "direction", opts.direction, "traversal: horizontal, vertical")
	f.BoolVarP(&opts.shuffle, "shuffle", "s", false, "shuffle blocks instead of sorting them")
	f.StringVarP(&opts.channel, "channel", "c", "", "score a single channel: red, green, blue")
	f.StringVar(&opts.step, "step", opts.step, "step policy: random, fixed")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = random; seeded runs are cached)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "worker goroutines (0 = GOMAXPROCS)")

	f.BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")
	f.BoolVar(&opts.noProgress, "no-progress", false, "do not draw the progress display")

	_ = cmd.RegisterFlagCompletionFunc("by", fixedCompletions(algorithmNames()...))
	_ = cmd.RegisterFlagCompletionFunc("direction", fixedCompletions("horizontal", "vertical"))
	_ = cmd.RegisterFlagCompletionFunc("channel", fixedCompletions("red", "green", "blue"))
	_ = cmd.RegisterFlagCompletionFunc("step", fixedCompletions("random", "fixed"))
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions("png", "jpeg", "gif", "bmp", "tiff"))
	_ = cmd.MarkFlagFilename("preset", "toml", "yaml", "yml")
	_ = cmd.MarkFlagFilename("save-preset", "toml", "yaml", "yml")

	return cmd
}

func (c *CLI) runSort(cmd *cobra.Command, input string, opts *sortOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	out := newPrinter(cmd.OutOrStdout())

	if err := errors.ValidatePath(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", input)
	}

	popts, err := buildSortOptions(cmd.Flags().Changed, opts)
	if err != nil {
		return err
	}
	popts.Input = data

	if opts.savePreset != "" {
		if err := savePreset(opts.savePreset, popts); err != nil {
			return err
		}
		out.success("Saved preset")
		out.file(opts.savePreset)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var res *pipeline.Result
	if !opts.noProgress && isTerminal(os.Stderr) {
		res, err = runWithProgress(ctx, os.Stderr, runner, filepath.Base(input), popts)
	} else {
		res, err = runner.Execute(ctx, popts)
	}
	if err != nil {
		return err
	}

	dst := opts.output
	if dst == "" {
		dst = defaultOutputPath(input, res.Format)
	}
	if err := os.WriteFile(dst, res.Output, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", dst)
	}

	logger.Debug("pipeline timings",
		"decode", res.Stats.DecodeTime,
		"sort", res.Stats.SortTime,
		"encode", res.Stats.EncodeTime)
	prog.done("sorted image", "width", res.Width, "height", res.Height, "cached", res.CacheInfo.Hit)

	out.success("Sorted %s", filepath.Base(input))
	out.file(dst)
	out.sortSummary(res.Width, res.Height, res.Stats.Moved, res.CacheInfo.Hit)
	return nil
}

// buildSortOptions resolves defaults, the preset and the explicitly changed
// flags into pipeline options.
func buildSortOptions(changed func(string) bool, opts *sortOpts) (pipeline.Options, error) {
	so := sorter.DefaultOptions()
	var format string
	var quality int

	if opts.preset != "" {
		p, err := preset.Load(opts.preset)
		if err != nil {
			return pipeline.Options{}, err
		}
		if err := p.Apply(&so); err != nil {
			return pipeline.Options{}, err
		}
		if p.Format != nil {
			format = *p.Format
		}
		if p.JPEGQuality != nil {
			quality = *p.JPEGQuality
		}
	}

	if changed("by") {
		alg, err := score.ParseAlgorithm(opts.by)
		if err != nil {
			return pipeline.Options{}, err
		}
		so.By = alg
	}
	if changed("direction") {
		d, err := sorter.ParseDirection(opts.direction)
		if err != nil {
			return pipeline.Options{}, err
		}
		so.Direction = d
	}
	if changed("step") {
		sp, err := sorter.ParseStepPolicy(opts.step)
		if err != nil {
			return pipeline.Options{}, err
		}
		so.StepPolicy = sp
	}
	if changed("channel") {
		ch, err := score.ParseChannel(opts.channel)
		if err != nil {
			return pipeline.Options{}, err
		}
		so.Channel = &ch
	}
	if changed("coefficients") {
		coef, err := score.ParseCoefficients(opts.coefficients)
		if err != nil {
			return pipeline.Options{}, err
		}
		so.Coefficients = &coef
	}
	if changed("progressive") {
		n := opts.progressive
		so.ProgressiveAmount = &n
	}
	if changed("interval") {
		so.Interval = opts.interval
	}
	if changed("reverse") {
		so.Reverse = opts.reverse
	}
	if changed("discretize") {
		so.Discretize = opts.discretize
	}
	if changed("shuffle") {
		so.Shuffle = opts.shuffle
	}
	if changed("seed") {
		so.Seed = opts.seed
	}
	so.Workers = opts.workers

	switch {
	case changed("format"):
		format = opts.format
	case opts.output != "":
		f, err := imageio.FormatFromPath(opts.output)
		if err != nil {
			return pipeline.Options{}, err
		}
		format = f
	}
	if changed("quality") {
		quality = opts.quality
	}

	if err := so.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Sort:        so,
		Format:      format,
		JPEGQuality: quality,
		Refresh:     opts.refresh,
	}, nil
}

// savePreset writes the resolved options to path. The preset is named after
// the file.
func savePreset(path string, opts pipeline.Options) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p := preset.FromOptions(name, opts.Sort)
	if opts.Format != "" {
		f := opts.Format
		p.Format = &f
	}
	if opts.JPEGQuality != 0 {
		q := opts.JPEGQuality
		p.JPEGQuality = &q
	}
	return p.Save(path)
}

// defaultOutputPath derives "<dir>/<name>.sorted<ext>" from the input path.
func defaultOutputPath(input, format string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".sorted" + imageio.Extension(format)
}
