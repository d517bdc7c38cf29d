package imagepkg

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout selects how photos are arranged on the collage canvas.
type Layout string

const (
	LayoutGrid     Layout = "grid"
	LayoutStacked  Layout = "stacked"
	LayoutPolaroid Layout = "polaroid"
)

var ErrUnknownLayout = errors.New("unknown layout")

// ParseLayout accepts the layout names used by the API and CLI.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutGrid, LayoutStacked, LayoutPolaroid:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// Tuning holds the spacing constants of the three layouts. The stacked and
// polaroid height formulas are heuristics; they are kept configurable rather
// than derived.
type Tuning struct {
	CanvasWidth int     `yaml:"canvas_width"`
	BaseHeight  int     `yaml:"base_height"`
	MaxHeight   int     `yaml:"max_height"`
	Margin      float64 `yaml:"margin"`
	CaptionSize float64 `yaml:"caption_size"`
	CaptionGap  float64 `yaml:"caption_gap"`

	GridAspect float64 `yaml:"grid_aspect"`

	StackedWidth   float64 `yaml:"stacked_width"`
	StackedAdvance float64 `yaml:"stacked_advance"`
	StackedBand    float64 `yaml:"stacked_band"`
	StackedBandPad float64 `yaml:"stacked_band_pad"`
	StackedFooter  float64 `yaml:"stacked_footer"`

	PolaroidWidth   float64 `yaml:"polaroid_width"`
	PolaroidPhoto   float64 `yaml:"polaroid_photo"`
	PolaroidPadding float64 `yaml:"polaroid_padding"`
	PolaroidStep    float64 `yaml:"polaroid_step"`
	PolaroidFooter  float64 `yaml:"polaroid_footer"`
	PolaroidTilt    float64 `yaml:"polaroid_tilt"` // degrees, either direction
}

// DefaultTuning returns the 800px reference geometry.
func DefaultTuning() Tuning {
	return Tuning{
		CanvasWidth: 800,
		BaseHeight:  600,
		MaxHeight:   8000,
		Margin:      20,
		CaptionSize: 16,
		CaptionGap:  5,

		GridAspect: 0.75,

		StackedWidth:   0.7,
		StackedAdvance: 0.8,
		StackedBand:    0.5,
		StackedBandPad: 80,
		StackedFooter:  100,

		PolaroidWidth:   250,
		PolaroidPhoto:   200,
		PolaroidPadding: 15,
		PolaroidStep:    40,
		PolaroidFooter:  350,
		PolaroidTilt:    7.5,
	}
}

// LoadTuning reads a YAML file over the defaults. Keys that are absent keep
// their default value.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects geometry that cannot produce a canvas.
func (t Tuning) Validate() error {
	switch {
	case t.CanvasWidth <= 0 || t.BaseHeight <= 0:
		return fmt.Errorf("canvas must be positive, got %dx%d", t.CanvasWidth, t.BaseHeight)
	case t.MaxHeight < t.BaseHeight:
		return fmt.Errorf("max_height %d below base_height %d", t.MaxHeight, t.BaseHeight)
	case t.Margin < 0 || t.CaptionSize <= 0:
		return errors.New("margin and caption_size must be non-negative")
	case t.GridAspect <= 0 || t.StackedWidth <= 0 || t.StackedWidth > 1 || t.StackedAdvance <= 0:
		return errors.New("grid and stacked ratios must be positive")
	case t.StackedAdvance > 1:
		return errors.New("stacked_advance above 1 lets photos drift past max_height")
	case t.PolaroidWidth <= 2*t.PolaroidPadding || t.PolaroidPhoto <= 0:
		return errors.New("polaroid card too small for its padding")
	}
	for n := 1; n <= 6; n++ {
		if h := t.Height(LayoutGrid, t.Grid(n)); h > t.MaxHeight {
			return fmt.Errorf("grid of %d needs height %d above max_height %d", n, h, t.MaxHeight)
		}
	}
	return nil
}

// Rect is an axis-aligned box in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Within reports whether r lies fully inside a w×h canvas.
func (r Rect) Within(w, h float64) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= w && r.Y+r.H <= h
}

// Rotation turns a drawing by Angle radians about (X, Y). The zero value is
// no rotation.
type Rotation struct {
	Angle, X, Y float64
}

// Placement is where one photo and its caption land on the canvas.
type Placement struct {
	Photo Rect
	// Card is the polaroid frame; only set when Framed.
	Card   Rect
	Framed bool

	CaptionX, CaptionY float64
	// CaptionWidth squeezes wider captions; 0 leaves them unconstrained.
	CaptionWidth float64

	Rotation Rotation
}

// GridColumns maps a photo count to the number of grid columns.
func GridColumns(n int) int {
	switch n {
	case 2, 4:
		return 2
	case 3, 5, 6:
		return 3
	default:
		return 1
	}
}

// Grid places n photos in equal cells, row by row.
func (t Tuning) Grid(n int) []Placement {
	cols := GridColumns(n)
	m := t.Margin
	cellW := (float64(t.CanvasWidth) - m*float64(cols+1)) / float64(cols)
	cellH := cellW * t.GridAspect

	out := make([]Placement, n)
	for i := range out {
		row, col := i/cols, i%cols
		x := m + float64(col)*(cellW+m)
		y := m + float64(row)*(cellH+m)
		out[i] = Placement{
			Photo:    Rect{X: x, Y: y, W: cellW, H: cellH},
			CaptionX: x + cellW/2,
			CaptionY: y + cellH + t.CaptionSize + t.CaptionGap,
		}
	}
	return out
}

// Stacked centers each photo at a fixed share of the canvas width. Each photo
// starts below the previous one's top by a fraction of that photo's height, so
// neighbours overlap slightly. Photos too tall for an equal share of MaxHeight
// are shrunk, keeping their aspect ratio, so the canvas never outgrows it.
func (t Tuning) Stacked(sizes []image.Point) []Placement {
	full := float64(t.CanvasWidth) * t.StackedWidth
	limit := t.stackedLimit(len(sizes))
	y := t.Margin

	out := make([]Placement, len(sizes))
	for i, sz := range sizes {
		w, h := full, full
		if sz.X > 0 && sz.Y > 0 {
			h = full * float64(sz.Y) / float64(sz.X)
		}
		if limit > 0 && h > limit {
			w, h = w*limit/h, limit
		}
		x := (float64(t.CanvasWidth) - w) / 2
		out[i] = Placement{
			Photo:    Rect{X: x, Y: y, W: w, H: h},
			CaptionX: x + w/2,
			CaptionY: y + h + t.CaptionSize + t.CaptionGap,
		}
		y += h*t.StackedAdvance + t.Margin
	}
	return out
}

// stackedLimit is the tallest photo n stacked photos may have while the last
// caption and the bottom margin still fit in MaxHeight. Zero means no limit.
func (t Tuning) stackedLimit(n int) float64 {
	if t.MaxHeight <= 0 || n == 0 {
		return 0
	}
	room := float64(t.MaxHeight) - float64(n+1)*t.Margin - t.CaptionSize - t.CaptionGap
	return math.Max(1, math.Floor(room/float64(n)))
}

// Polaroid cascades framed photos down the canvas, alternating between two
// columns. tilt supplies each card's angle in radians.
func (t Tuning) Polaroid(n int, tilt func() float64) []Placement {
	m, pad := t.Margin, t.PolaroidPadding
	cardW := t.PolaroidWidth
	cardH := t.PolaroidCardHeight()

	out := make([]Placement, n)
	for i := range out {
		x := m + float64(i%2)*(cardW+2*m)
		y := m + float64(i)*t.PolaroidStep
		card := Rect{X: x, Y: y, W: cardW, H: cardH}
		cx, cy := card.Center()
		var angle float64
		if tilt != nil {
			angle = tilt()
		}
		out[i] = Placement{
			Photo:        Rect{X: x + pad, Y: y + pad, W: cardW - 2*pad, H: t.PolaroidPhoto},
			Card:         card,
			Framed:       true,
			CaptionX:     cx,
			CaptionY:     y + pad + t.PolaroidPhoto + t.CaptionSize + t.CaptionGap,
			CaptionWidth: cardW - 2*pad,
			Rotation:     Rotation{Angle: angle, X: cx, Y: cy},
		}
	}
	return out
}

// PolaroidCardHeight covers the photo, padding above and below it, and two
// caption lines.
func (t Tuning) PolaroidCardHeight() float64 {
	return t.PolaroidPhoto + t.PolaroidPadding*2 + t.CaptionSize*2
}

// Height returns the canvas height for a layout and its placements. Grid and
// stacked canvases grow past BaseHeight when the last caption would not fit.
func (t Tuning) Height(layout Layout, placements []Placement) int {
	base := float64(t.BaseHeight)
	n := float64(len(placements))
	h := base
	switch layout {
	case LayoutGrid:
		if len(placements) > 0 {
			last := placements[len(placements)-1]
			h = math.Max(h, last.CaptionY+t.Margin)
		}
	case LayoutStacked:
		band := n*(float64(t.CanvasWidth)*t.StackedBand+t.StackedBandPad) + t.StackedFooter
		h = math.Max(h, band)
		if len(placements) > 0 {
			last := placements[len(placements)-1]
			h = math.Max(h, last.CaptionY+t.Margin)
		}
	case LayoutPolaroid:
		h = math.Max(h, n*t.PolaroidStep+t.PolaroidFooter)
	}
	return int(math.Ceil(h))
}
