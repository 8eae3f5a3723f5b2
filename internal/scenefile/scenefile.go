// Package scenefile decodes HCL scene descriptions into molecule widgets.
//
// A scene file holds an optional background color and any number of
// molecule blocks:
//
//	background = "#1e1b2e"
//
//	molecule "water" {
//	  x      = 120
//	  y      = 90
//	  height = 140
//	  width  = 140
//	  border = true
//
//	  max_radius = 24
//	  duration   = "5s"
//	  path_mode  = "linear"
//	  easing     = "in-out-sine"
//	  path       = [-10, -15, -5, -15, 0, 0]
//
//	  image {
//	    url = "atom.png"
//	    x   = 30
//	    y   = 30
//	  }
//
//	  circle {
//	    color = "steelblue"
//	    x     = 20
//	    y     = 20
//	    r     = 6
//	  }
//	}
//
// Expressions can read the widget defaults (defaults.max_radius,
// defaults.min_radius, defaults.duration) and call min, max, abs, floor and
// ceil. Relative image URLs resolve against the scene file's directory.
package scenefile

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/phanxgames/molecule"
)

// File is the top-level structure of a scene file.
type File struct {
	Background string      `hcl:"background,optional"`
	Molecules  []*Molecule `hcl:"molecule,block"`

	// dir is the directory relative image paths resolve against.
	dir string
}

// Molecule describes one widget.
type Molecule struct {
	Name   string  `hcl:"name,label"`
	X      float64 `hcl:"x"`
	Y      float64 `hcl:"y"`
	Height float64 `hcl:"height"`
	Width  float64 `hcl:"width"`
	Border bool    `hcl:"border,optional"`

	MaxRadius *int      `hcl:"max_radius,optional"`
	MinRadius int       `hcl:"min_radius,optional"`
	Duration  string    `hcl:"duration,optional"`
	PathMode  string    `hcl:"path_mode,optional"`
	Easing    string    `hcl:"easing,optional"`
	Path      []float64 `hcl:"path,optional"`

	Image   *Image    `hcl:"image,block"`
	Circles []*Circle `hcl:"circle,block"`
}

// Image is the optional bitmap of a molecule.
type Image struct {
	URL string  `hcl:"url"`
	X   float64 `hcl:"x,optional"`
	Y   float64 `hcl:"y,optional"`
}

// Circle is one decorative circle of a molecule.
type Circle struct {
	Color string  `hcl:"color"`
	X     float64 `hcl:"x"`
	Y     float64 `hcl:"y"`
	R     float64 `hcl:"r"`
}

// evalContext exposes the widget defaults and a few numeric functions to
// scene expressions, e.g. `max_radius = defaults.max_radius / 2` or
// `x = max(10, 40 - 8)`.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"max_radius": cty.NumberIntVal(molecule.DefaultMaxRadius),
				"min_radius": cty.NumberIntVal(molecule.DefaultMinRadius),
				"duration":   cty.StringVal(molecule.DefaultAnimationDuration.String()),
			}),
		},
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"abs":   stdlib.AbsoluteFunc,
			"floor": stdlib.FloorFunc,
			"ceil":  stdlib.CeilFunc,
		},
	}
}

// Parse decodes scene source. filename is used in diagnostics, and its
// directory anchors relative image paths.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", filename, diags)
	}

	var f File
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scene file %s: %w", filename, diags)
	}
	f.dir = filepath.Dir(filename)

	seen := make(map[string]bool, len(f.Molecules))
	for _, m := range f.Molecules {
		if seen[m.Name] {
			return nil, fmt.Errorf("scene file %s: duplicate molecule %q", filename, m.Name)
		}
		seen[m.Name] = true
	}
	return &f, nil
}

// Load reads and decodes the scene file at path.
func Load(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	return Parse(src, path)
}

// Options carries the collaborators handed to every built widget.
type Options struct {
	Logger      *slog.Logger
	ImageLoader molecule.ImageLoader
}

// Scene is the result of building a File.
type Scene struct {
	Background molecule.Color
	Widgets    []*molecule.Widget
	// Names holds the block label of each widget, index-aligned with Widgets.
	Names []string
	// Borders holds each block's border setting, index-aligned with Widgets.
	// Pass it to Assemble.
	Borders []bool
}

// Build turns every molecule block into a configured, unassembled widget.
func (f *File) Build(opts Options) (*Scene, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := &Scene{}
	if f.Background != "" {
		bg, err := molecule.ParseColor(f.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		out.Background = bg
	}

	for _, m := range f.Molecules {
		w, err := f.buildMolecule(m, opts.ImageLoader, logger)
		if err != nil {
			return nil, fmt.Errorf("molecule %q: %w", m.Name, err)
		}
		logger.Debug("built molecule", "name", m.Name, "id", w.ID(), "circles", w.NumCircles())
		out.Widgets = append(out.Widgets, w)
		out.Names = append(out.Names, m.Name)
		out.Borders = append(out.Borders, m.Border)
	}
	return out, nil
}

func (f *File) buildMolecule(m *Molecule, loader molecule.ImageLoader, logger *slog.Logger) (*molecule.Widget, error) {
	cfg := molecule.Config{
		MinRadius:   m.MinRadius,
		ImageLoader: loader,
		Logger:      logger.With("molecule", m.Name),
	}
	if m.MaxRadius != nil {
		// Config treats zero as "use the default", so an explicit zero
		// would silently become DefaultMaxRadius.
		if *m.MaxRadius == 0 {
			return nil, fmt.Errorf("%w: max_radius must be positive; omit it for the default of %d",
				molecule.ErrInvalidArgument, molecule.DefaultMaxRadius)
		}
		cfg.MaxRadius = *m.MaxRadius
	}
	if m.Duration != "" {
		d, err := time.ParseDuration(m.Duration)
		if err != nil {
			return nil, fmt.Errorf("duration: %w", err)
		}
		cfg.AnimationDuration = d
	}
	mode, err := molecule.ParsePathMode(m.PathMode)
	if err != nil {
		return nil, err
	}
	cfg.PathMode = mode
	easing, err := molecule.EasingByName(m.Easing)
	if err != nil {
		return nil, err
	}
	cfg.Easing = easing

	w, err := molecule.New(m.X, m.Y, m.Height, m.Width, cfg)
	if err != nil {
		return nil, err
	}

	if m.Image != nil {
		w.SetImage(f.resolveURL(m.Image.URL), m.Image.X, m.Image.Y)
	}

	specs := make([]molecule.CircleSpec, 0, len(m.Circles))
	for i, c := range m.Circles {
		col, err := molecule.ParseColor(c.Color)
		if err != nil {
			return nil, fmt.Errorf("circle %d: %w", i, err)
		}
		specs = append(specs, molecule.CircleSpec{Color: col, X: c.X, Y: c.Y, Radius: c.R})
	}
	w.SetCircles(specs...)

	if m.Path != nil {
		offsets, err := molecule.PairsFromFlat(m.Path)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		w.SetAnimationPath(offsets)
	}
	return w, nil
}

// resolveURL anchors relative file paths at the scene file's directory.
// Absolute paths and URLs with a scheme are returned unchanged.
func (f *File) resolveURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return raw
	}
	if filepath.IsAbs(raw) || f.dir == "" || f.dir == "." {
		return raw
	}
	return filepath.Join(f.dir, raw)
}
