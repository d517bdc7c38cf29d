package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"math/rand/v2"
)

var ErrNoValidImages = errors.New("no valid images to download")

// Style carries everything about a collage that is not layout geometry:
// background, decorative motifs, suggested filename.
type Style struct {
	Filename string
	// Layout overrides the requested layout when set.
	Layout Layout

	Inner, Outer color.Color

	Motifs           int
	Kinds            []GlyphKind
	Palette          []color.NRGBA
	MinSize, MaxSize float64
	GlyphTilt        float64 // degrees, either direction

	// QRText, when set, stamps a QR code in the bottom-right corner.
	QRText string
	QRSize int
}

// CollageStyle is the collage built while picking photos.
var CollageStyle = Style{
	Filename: "MyGalentineCollage.png",
	Inner:    color.NRGBA{R: 0xff, G: 0xf5, B: 0xf7, A: 0xff},
	Outer:    color.NRGBA{R: 0xf0, G: 0xe6, B: 0xfa, A: 0xff},
	Motifs:   40,
	Kinds:    []GlyphKind{GlyphHeart, GlyphSparkle},
	Palette: []color.NRGBA{
		{R: 255, G: 192, B: 203, A: 77},
		{R: 240, G: 230, B: 250, A: 77},
		{R: 255, G: 239, B: 213, A: 77},
	},
	MinSize:   15,
	MaxSize:   30,
	GlyphTilt: 22.5,
	QRSize:    96,
}

// KeepsakeStyle is the collage offered after the proposal is accepted.
var KeepsakeStyle = Style{
	Filename:  "OurGalentineForever.png",
	Layout:    LayoutPolaroid,
	Inner:     color.NRGBA{R: 0xff, G: 0xf5, B: 0xf7, A: 0xff},
	Outer:     color.NRGBA{R: 0xff, G: 0xf5, B: 0xf7, A: 0xff},
	Motifs:    30,
	Kinds:     []GlyphKind{GlyphHeart},
	Palette:   []color.NRGBA{{R: 255, G: 182, B: 193, A: 77}},
	MinSize:   24,
	MaxSize:   24,
	GlyphTilt: 0,
	QRSize:    96,
}

// WithQR returns a copy of st that stamps text as a QR badge.
func (st Style) WithQR(text string) Style {
	st.QRText = text
	return st
}

// Result is a flattened collage ready for download.
type Result struct {
	Data     []byte
	Filename string
	Layout   Layout
	Width    int
	Height   int
	Pictures int
}

// Deliverer receives finished collages, e.g. as an HTTP attachment or a file.
type Deliverer interface {
	Deliver(ctx context.Context, filename string, data []byte) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, filename string, data []byte) error

func (f DelivererFunc) Deliver(ctx context.Context, filename string, data []byte) error {
	return f(ctx, filename, data)
}

// Compositor lays photos out and renders them to PNG.
type Compositor struct {
	tuning  Tuning
	surface SurfaceFunc
	logger  *slog.Logger
	newRand func() *rand.Rand
}

type Option func(*Compositor)

// WithSurface replaces the gg-backed surface.
func WithSurface(f SurfaceFunc) Option {
	return func(c *Compositor) { c.surface = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) { c.logger = l }
}

func NewCompositor(t Tuning, opts ...Option) *Compositor {
	c := &Compositor{
		tuning: t,
		logger: slog.Default(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.surface == nil {
		c.surface = NewSurfaceFunc(t.CaptionSize, t.MaxHeight)
	}
	return c
}

func (c *Compositor) Tuning() Tuning { return c.tuning }

type decoded struct {
	img     image.Image
	caption string
}

// Compose decodes sources, lays them out and returns the encoded PNG.
// Sources that fail to decode are skipped; if none decode, nothing is drawn
// and ErrNoValidImages is returned.
func (c *Compositor) Compose(ctx context.Context, sources []Source, layout Layout, st Style) (*Result, error) {
	if st.Layout != "" {
		layout = st.Layout
	}
	if _, err := ParseLayout(string(layout)); err != nil {
		return nil, err
	}

	images := DecodeAll(ctx, c.logger, sources)
	items := make([]decoded, 0, len(images))
	for i, img := range images {
		if img != nil {
			items = append(items, decoded{img: img, caption: sources[i].Caption})
		}
	}
	if len(items) == 0 {
		return nil, ErrNoValidImages
	}

	rnd := c.newRand()
	placements := c.place(layout, items, rnd)
	width, height := c.tuning.CanvasWidth, c.tuning.Height(layout, placements)

	s, err := c.surface(width, height)
	if err != nil {
		if !errors.Is(err, ErrCanvasUnavailable) {
			err = fmt.Errorf("%w: %v", ErrCanvasUnavailable, err)
		}
		return nil, err
	}

	s.Gradient(st.Inner, st.Outer)
	for _, g := range scatter(rnd, st, width, height) {
		s.Glyph(g)
	}
	for i, p := range placements {
		if p.Framed {
			s.Card(p.Card, p.Rotation)
		}
		s.Picture(items[i].img, p.Photo, p.Rotation)
		if items[i].caption != "" {
			s.Caption(items[i].caption, p.CaptionX, p.CaptionY, p.CaptionWidth, p.Rotation)
		}
	}
	if st.QRText != "" {
		c.stampQR(ctx, s, st, width, height)
	}

	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode collage: %w", err)
	}
	c.logger.InfoContext(ctx, "collage composed",
		"layout", layout, "pictures", len(items), "skipped", len(sources)-len(items),
		"width", width, "height", height, "bytes", buf.Len())
	return &Result{
		Data:     buf.Bytes(),
		Filename: st.Filename,
		Layout:   layout,
		Width:    width,
		Height:   height,
		Pictures: len(items),
	}, nil
}

// Export composes and hands the result to d. Nothing is delivered when
// composing fails.
func (c *Compositor) Export(ctx context.Context, sources []Source, layout Layout, st Style, d Deliverer) (*Result, error) {
	res, err := c.Compose(ctx, sources, layout, st)
	if err != nil {
		return nil, err
	}
	if err := d.Deliver(ctx, res.Filename, res.Data); err != nil {
		return nil, fmt.Errorf("deliver %s: %w", res.Filename, err)
	}
	return res, nil
}

func (c *Compositor) place(layout Layout, items []decoded, rnd *rand.Rand) []Placement {
	switch layout {
	case LayoutStacked:
		sizes := make([]image.Point, len(items))
		for i, it := range items {
			sizes[i] = it.img.Bounds().Size()
		}
		return c.tuning.Stacked(sizes)
	case LayoutPolaroid:
		tilt := c.tuning.PolaroidTilt * math.Pi / 180
		return c.tuning.Polaroid(len(items), func() float64 {
			return (rnd.Float64()*2 - 1) * tilt
		})
	default:
		return c.tuning.Grid(len(items))
	}
}

func (c *Compositor) stampQR(ctx context.Context, s Surface, st Style, width, height int) {
	size := st.QRSize
	if size <= 0 {
		size = 96
	}
	qr, err := GenerateQRImage(st.QRText, size)
	if err != nil {
		c.logger.WarnContext(ctx, "qr badge skipped", "err", err)
		return
	}
	m := int(c.tuning.Margin)
	b := qr.Bounds()
	s.Overlay(qr, width-b.Dx()-m, height-b.Dy()-m)
}
