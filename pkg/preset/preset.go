// Package preset loads and saves named sort configurations.
//
// A preset is a TOML or YAML file whose keys mirror the CLI flags. Every key
// is optional; absent keys leave the base options untouched, so a preset
// can be layered over [sorter.DefaultOptions] and then under explicit flags.
//
//	# glitch.toml
//	name = "glitch"
//	by = "hue"
//	interval = 12
//	direction = "vertical"
//	shuffle = true
//	seed = 42
//
//	[coefficients]
//	red = 1.0
//	green = 0.5
//	blue = 0.0
//
// Unknown keys are rejected so that typos surface as errors.
package preset

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/core/sorter"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// File formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Preset is the on-disk form of a sort configuration. Enumerations are kept
// as strings so that error messages can quote the offending value.
type Preset struct {
	Name string `toml:"name,omitempty" yaml:"name,omitempty"`

	By                *string             `toml:"by,omitempty" yaml:"by,omitempty"`
	Interval          *int                `toml:"interval,omitempty" yaml:"interval,omitempty"`
	Reverse           *bool               `toml:"reverse,omitempty" yaml:"reverse,omitempty"`
	Coefficients      *score.Coefficients `toml:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	Discretize        *int                `toml:"discretize,omitempty" yaml:"discretize,omitempty"`
	ProgressiveAmount *int                `toml:"progressive_amount,omitempty" yaml:"progressive_amount,omitempty"`
	Direction         *string             `toml:"direction,omitempty" yaml:"direction,omitempty"`
	Shuffle           *bool               `toml:"shuffle,omitempty" yaml:"shuffle,omitempty"`
	Channel           *string             `toml:"channel,omitempty" yaml:"channel,omitempty"`
	StepPolicy        *string             `toml:"step_policy,omitempty" yaml:"step_policy,omitempty"`
	Seed              *uint64             `toml:"seed,omitempty" yaml:"seed,omitempty"`

	Splice         *float64 `toml:"splice,omitempty" yaml:"splice,omitempty"`
	EdgeThreshold  *uint64  `toml:"edge_threshold,omitempty" yaml:"edge_threshold,omitempty"`
	ImageThreshold *uint64  `toml:"image_threshold,omitempty" yaml:"image_threshold,omitempty"`
	ImageMask      *string  `toml:"image_mask,omitempty" yaml:"image_mask,omitempty"`

	// Output settings, used by the CLI and ignored by Apply.
	Format      *string `toml:"format,omitempty" yaml:"format,omitempty"`
	JPEGQuality *int    `toml:"jpeg_quality,omitempty" yaml:"jpeg_quality,omitempty"`
}

// FormatFromPath maps .toml, .yaml and .yml to a preset format.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unrecognized preset extension %q (must be .toml, .yaml or .yml)", filepath.Ext(path))
}

// Load reads a preset file, choosing the format from its extension.
func Load(path string) (*Preset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read preset %s", path)
	}
	p, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse decodes a preset and validates the options it describes.
func Parse(data []byte, format string) (*Preset, error) {
	var p Preset
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml preset")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown preset key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml preset")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown preset format %q", format)
	}

	if _, err := p.Options(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Apply overlays the preset onto o. Fields absent from the preset are left
// as they are.
func (p *Preset) Apply(o *sorter.Options) error {
	if p.By != nil {
		alg, err := score.ParseAlgorithm(*p.By)
		if err != nil {
			return err
		}
		o.By = alg
	}
	if p.Direction != nil {
		d, err := sorter.ParseDirection(*p.Direction)
		if err != nil {
			return err
		}
		o.Direction = d
	}
	if p.StepPolicy != nil {
		sp, err := sorter.ParseStepPolicy(*p.StepPolicy)
		if err != nil {
			return err
		}
		o.StepPolicy = sp
	}
	if p.Channel != nil {
		ch, err := score.ParseChannel(*p.Channel)
		if err != nil {
			return err
		}
		o.Channel = &ch
	}
	if p.Coefficients != nil {
		c := *p.Coefficients
		o.Coefficients = &c
	}
	if p.ProgressiveAmount != nil {
		n := *p.ProgressiveAmount
		o.ProgressiveAmount = &n
	}

	setIf(&o.Interval, p.Interval)
	setIf(&o.Reverse, p.Reverse)
	setIf(&o.Discretize, p.Discretize)
	setIf(&o.Shuffle, p.Shuffle)
	setIf(&o.Seed, p.Seed)
	setIf(&o.ImageMask, p.ImageMask)
	o.Splice = cloneIf(o.Splice, p.Splice)
	o.EdgeThreshold = cloneIf(o.EdgeThreshold, p.EdgeThreshold)
	o.ImageThreshold = cloneIf(o.ImageThreshold, p.ImageThreshold)
	return nil
}

// Options returns the preset layered over sorter.DefaultOptions, validated.
func (p *Preset) Options() (sorter.Options, error) {
	o := sorter.DefaultOptions()
	if err := p.Apply(&o); err != nil {
		return sorter.Options{}, err
	}
	if err := o.Validate(); err != nil {
		return sorter.Options{}, err
	}
	return o, nil
}

// FromOptions captures every serializable field of o.
func FromOptions(name string, o sorter.Options) *Preset {
	p := &Preset{
		Name:              name,
		By:                ptr(o.By.String()),
		Interval:          ptr(o.Interval),
		Reverse:           ptr(o.Reverse),
		Discretize:        ptr(o.Discretize),
		Direction:         ptr(o.Direction.String()),
		Shuffle:           ptr(o.Shuffle),
		StepPolicy:        ptr(o.StepPolicy.String()),
		ProgressiveAmount: cloneIf(nil, o.ProgressiveAmount),
		Coefficients:      cloneIf(nil, o.Coefficients),
		Splice:            cloneIf(nil, o.Splice),
		EdgeThreshold:     cloneIf(nil, o.EdgeThreshold),
		ImageThreshold:    cloneIf(nil, o.ImageThreshold),
	}
	if o.Channel != nil {
		p.Channel = ptr(o.Channel.String())
	}
	if o.Seed != 0 {
		p.Seed = ptr(o.Seed)
	}
	if o.ImageMask != "" {
		p.ImageMask = ptr(o.ImageMask)
	}
	return p
}

// Encode writes the preset in the given format.
func (p *Preset) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown preset format %q", format)
}

// Save writes the preset to path, choosing the format from its extension.
func (p *Preset) Save(path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.Encode(&buf, format); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode preset")
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func ptr[T any](v T) *T { return &v }

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// cloneIf returns a copy of src, or cur when src is nil.
func cloneIf[T any](cur, src *T) *T {
	if src == nil {
		return cur
	}
	v := *src
	return &v
}
