package circle

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/mapcircle/pkg/broadcast"
	"github.com/go-drift/mapcircle/pkg/errors"
)

// Default option values. Radii are meters.
const (
	DefaultMinRadius = 10.0
	DefaultMaxRadius = 1_100_000.0

	DefaultStrokeColor   = "#000000"
	DefaultStrokeWeight  = 0.5
	DefaultStrokeOpacity = 0.75
	DefaultFillColor     = "#fb6a4a"
	DefaultFillOpacity   = 0.25
)

// Options configures a circle at construction.
//
// Zero-valued fields take their defaults, so the zero Options is a
// valid non-editable circle configuration. A fully transparent fill or
// stroke is expressed with a zero-alpha color, not a zero opacity.
type Options struct {
	// Editable enables center and radius handles and enrolls the
	// circle in the suspend/resume protocol.
	Editable bool `yaml:"editable"`

	// MinRadius and MaxRadius bound the radius during edits, meters.
	MinRadius float64 `yaml:"minRadius"`
	MaxRadius float64 `yaml:"maxRadius"`

	// Stroke and fill styling. Colors accept #rgb, #rrggbb, and SVG
	// 1.1 color names.
	StrokeColor   string  `yaml:"strokeColor"`
	StrokeWeight  float64 `yaml:"strokeWeight"`
	StrokeOpacity float64 `yaml:"strokeOpacity"`
	FillColor     string  `yaml:"fillColor"`
	FillOpacity   float64 `yaml:"fillOpacity"`

	// RefineStroke enables adaptive precision: the polygon's vertex
	// count follows zoom and radius instead of staying fixed.
	RefineStroke bool `yaml:"refineStroke"`

	// Properties is opaque metadata attached to the rendered polygon
	// feature.
	Properties map[string]any `yaml:"properties"`

	// FireDuringDrag makes centerchanged/radiuschanged fire on every
	// drag update instead of only on release.
	FireDuringDrag bool `yaml:"fireDuringDrag"`

	// Coordinator is the broadcast coordinator to enroll in when
	// editable. Nil selects the process-wide default.
	Coordinator *broadcast.Coordinator `yaml:"-"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MinRadius:     DefaultMinRadius,
		MaxRadius:     DefaultMaxRadius,
		StrokeColor:   DefaultStrokeColor,
		StrokeWeight:  DefaultStrokeWeight,
		StrokeOpacity: DefaultStrokeOpacity,
		FillColor:     DefaultFillColor,
		FillOpacity:   DefaultFillOpacity,
	}
}

// normalize fills zero-valued fields with defaults and validates the
// result.
func (o Options) normalize() (Options, error) {
	const op = "circle.Options"
	d := DefaultOptions()

	if o.MinRadius == 0 {
		o.MinRadius = d.MinRadius
	}
	if o.MaxRadius == 0 {
		o.MaxRadius = d.MaxRadius
	}
	if o.StrokeColor == "" {
		o.StrokeColor = d.StrokeColor
	}
	if o.StrokeWeight == 0 {
		o.StrokeWeight = d.StrokeWeight
	}
	if o.StrokeOpacity == 0 {
		o.StrokeOpacity = d.StrokeOpacity
	}
	if o.FillColor == "" {
		o.FillColor = d.FillColor
	}
	if o.FillOpacity == 0 {
		o.FillOpacity = d.FillOpacity
	}

	if o.MinRadius < 0 || o.MaxRadius <= 0 {
		return o, errors.Configuration(op, fmt.Errorf("radius bounds must be positive (min=%g max=%g)", o.MinRadius, o.MaxRadius))
	}
	if o.MinRadius > o.MaxRadius {
		return o, errors.Configuration(op, fmt.Errorf("minRadius %g above maxRadius %g", o.MinRadius, o.MaxRadius))
	}

	var err error
	if o.StrokeColor, err = ParseColor(o.StrokeColor); err != nil {
		return o, errors.Configuration(op, fmt.Errorf("strokeColor: %w", err))
	}
	if o.FillColor, err = ParseColor(o.FillColor); err != nil {
		return o, errors.Configuration(op, fmt.Errorf("fillColor: %w", err))
	}
	return o, nil
}

// clampRadius constrains a radius to the configured bounds.
func (o Options) clampRadius(r float64) float64 {
	if r < o.MinRadius {
		return o.MinRadius
	}
	if r > o.MaxRadius {
		return o.MaxRadius
	}
	return r
}

// ParseColor normalizes a CSS-style color to "#rrggbb". It accepts
// "#rgb", "#rrggbb", and the SVG 1.1 color names ("tomato",
// "steelblue").
func ParseColor(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[name]; ok {
		return rgbString(c), nil
	}
	if !strings.HasPrefix(name, "#") {
		return "", fmt.Errorf("unknown color %q", s)
	}
	hex := name[1:]
	switch len(hex) {
	case 3:
		var r, g, b uint8
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); err != nil {
			return "", fmt.Errorf("invalid hex color %q", s)
		}
		return rgbString(color.RGBA{R: r * 17, G: g * 17, B: b * 17}), nil
	case 6:
		var r, g, b uint8
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return "", fmt.Errorf("invalid hex color %q", s)
		}
		return rgbString(color.RGBA{R: r, G: g, B: b}), nil
	default:
		return "", fmt.Errorf("invalid hex color %q", s)
	}
}

func rgbString(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// LoadOptionsFile reads circle options from a YAML file. A missing
// file yields the defaults; a malformed file is an error.
func LoadOptionsFile(path string) (Options, error) {
	const op = "circle.LoadOptionsFile"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultOptions(), nil
		}
		return Options{}, errors.Configuration(op, fmt.Errorf("failed to read %s: %w", path, err))
	}

	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, errors.Configuration(op, fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return o.normalize()
}
