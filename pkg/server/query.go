package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/core/sorter"
	"github.com/matzehuels/pixelsort/pkg/errors"
	"github.com/matzehuels/pixelsort/pkg/pipeline"
)

// parseSortQuery builds pipeline options from query parameters layered over
// sorter.DefaultOptions.
func parseSortQuery(q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{Sort: sorter.DefaultOptions()}
	s := &opts.Sort

	for key, values := range q {
		v := values[len(values)-1]
		var err error
		switch key {
		case "by":
			s.By, err = score.ParseAlgorithm(v)
		case "interval":
			s.Interval, err = parseInt(key, v)
		case "reverse":
			s.Reverse, err = parseBool(key, v)
		case "coefficients":
			var c score.Coefficients
			if c, err = score.ParseCoefficients(v); err == nil {
				s.Coefficients = &c
			}
		case "discretize":
			s.Discretize, err = parseInt(key, v)
		case "progressive":
			var n int
			if n, err = parseInt(key, v); err == nil {
				s.ProgressiveAmount = &n
			}
		case "direction":
			s.Direction, err = sorter.ParseDirection(v)
		case "shuffle":
			s.Shuffle, err = parseBool(key, v)
		case "channel":
			var ch score.Channel
			if ch, err = score.ParseChannel(v); err == nil {
				s.Channel = &ch
			}
		case "step":
			s.StepPolicy, err = sorter.ParseStepPolicy(v)
		case "seed":
			s.Seed, err = strconv.ParseUint(v, 10, 64)
			if err != nil {
				err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "seed %q", v)
			}
		case "format":
			opts.Format = v
		case "quality":
			opts.JPEGQuality, err = parseInt(key, v)
		case "refresh":
			opts.Refresh, err = parseBool(key, v)
		default:
			err = errors.New(errors.ErrCodeInvalidConfig, "unknown parameter %q", key)
		}
		if err != nil {
			return pipeline.Options{}, err
		}
	}
	return opts, nil
}

// parseStatsQuery reads the score algorithm for /v1/stats.
func parseStatsQuery(q url.Values) (pipeline.AnalyzeOptions, error) {
	opts := pipeline.AnalyzeOptions{By: score.AlgLuma}
	for key := range q {
		if key != "by" {
			return opts, errors.New(errors.ErrCodeInvalidConfig, "unknown parameter %q", key)
		}
	}
	if v := q.Get("by"); v != "" {
		alg, err := score.ParseAlgorithm(v)
		if err != nil {
			return opts, err
		}
		opts.By = alg
	}
	return opts, nil
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func parseBool(key, v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
