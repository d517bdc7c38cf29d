package imagepkg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var ErrCanvasUnavailable = errors.New("canvas unavailable")

// Surface is the raster the compositor draws on. Every drawing primitive the
// layouts share goes through it.
type Surface interface {
	Gradient(inner, outer color.Color)
	Glyph(g Glyph)
	Card(r Rect, rot Rotation)
	Picture(img image.Image, r Rect, rot Rotation)
	Caption(text string, x, y, maxWidth float64, rot Rotation)
	Overlay(img image.Image, x, y int)
	Encode(w io.Writer) error
}

// SurfaceFunc creates a width×height surface.
type SurfaceFunc func(width, height int) (Surface, error)

var (
	captionColor = color.NRGBA{R: 0x4a, G: 0x55, B: 0x68, A: 0xff}
	shadowColor  = color.NRGBA{A: 77}
)

const (
	shadowOffset = 3
	shadowSigma  = 5
)

var (
	fontOnce sync.Once
	fontErr  error
	goFont   *opentype.Font
)

func captionFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return opentype.NewFace(goFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// NewSurfaceFunc returns a gg-backed SurfaceFunc with captions set in Go
// Regular at captionSize pixels. Dimensions above maxHeight are refused.
func NewSurfaceFunc(captionSize float64, maxHeight int) SurfaceFunc {
	return func(width, height int) (Surface, error) {
		if width <= 0 || height <= 0 || (maxHeight > 0 && height > maxHeight) {
			return nil, fmt.Errorf("%w: %dx%d", ErrCanvasUnavailable, width, height)
		}
		face, err := captionFace(captionSize)
		if err != nil {
			return nil, fmt.Errorf("%w: caption font: %v", ErrCanvasUnavailable, err)
		}
		return &ggSurface{dc: gg.NewContext(width, height), face: face}, nil
	}
}

type ggSurface struct {
	dc   *gg.Context
	face font.Face
}

func (s *ggSurface) Gradient(inner, outer color.Color) {
	w, h := float64(s.dc.Width()), float64(s.dc.Height())
	g := gg.NewRadialGradient(w/2, h/2, 0, w/2, h/2, math.Max(w, h)/2)
	g.AddColorStop(0, inner)
	g.AddColorStop(1, outer)
	s.dc.SetFillStyle(g)
	s.dc.DrawRectangle(0, 0, w, h)
	s.dc.Fill()
}

func (s *ggSurface) Glyph(g Glyph) {
	dc := s.dc
	dc.Push()
	defer dc.Pop()
	dc.Translate(g.X, g.Y)
	dc.Rotate(g.Angle)
	dc.SetColor(g.Color)
	r := g.Size / 2
	switch g.Kind {
	case GlyphSparkle:
		for i := 0; i < 8; i++ {
			rad := r
			if i%2 == 1 {
				rad = r * 0.3
			}
			a := float64(i)*math.Pi/4 - math.Pi/2
			dc.LineTo(rad*math.Cos(a), rad*math.Sin(a))
		}
	default:
		dc.MoveTo(0, 0.9*r)
		dc.CubicTo(-1.2*r, 0.1*r, -0.6*r, -r, 0, -0.35*r)
		dc.CubicTo(0.6*r, -r, 1.2*r, 0.1*r, 0, 0.9*r)
	}
	dc.ClosePath()
	dc.Fill()
}

// Card draws a white frame over a blurred drop shadow.
func (s *ggSurface) Card(r Rect, rot Rotation) {
	shadow := gg.NewContext(s.dc.Width(), s.dc.Height())
	shadow.RotateAbout(rot.Angle, rot.X, rot.Y)
	shadow.SetColor(shadowColor)
	shadow.DrawRectangle(r.X+shadowOffset, r.Y+shadowOffset, r.W, r.H)
	shadow.Fill()
	s.dc.DrawImage(imaging.Blur(shadow.Image(), shadowSigma), 0, 0)

	s.dc.Push()
	defer s.dc.Pop()
	s.dc.RotateAbout(rot.Angle, rot.X, rot.Y)
	s.dc.SetColor(color.White)
	s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	s.dc.Fill()
}

// Picture stretches img into r.
func (s *ggSurface) Picture(img image.Image, r Rect, rot Rotation) {
	w, h := int(math.Round(r.W)), int(math.Round(r.H))
	if w < 1 || h < 1 {
		return
	}
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.RotateAbout(rot.Angle, rot.X, rot.Y)
	s.dc.DrawImage(scaled, int(math.Round(r.X)), int(math.Round(r.Y)))
}

// Caption centers text on x with its baseline at y. Text wider than maxWidth
// is squeezed horizontally to fit.
func (s *ggSurface) Caption(text string, x, y, maxWidth float64, rot Rotation) {
	dc := s.dc
	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(rot.Angle, rot.X, rot.Y)
	dc.SetFontFace(s.face)
	dc.SetColor(captionColor)
	if w, _ := dc.MeasureString(text); maxWidth > 0 && w > maxWidth {
		dc.ScaleAbout(maxWidth/w, 1, x, y)
	}
	dc.DrawStringAnchored(text, x, y, 0.5, 0)
}

func (s *ggSurface) Overlay(img image.Image, x, y int) {
	s.dc.DrawImage(img, x, y)
}

func (s *ggSurface) Encode(w io.Writer) error {
	return s.dc.EncodePNG(w)
}
