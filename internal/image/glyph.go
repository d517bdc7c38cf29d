package imagepkg

import (
	"image/color"
	"math"
	"math/rand/v2"
)

// GlyphKind is a decorative motif shape.
type GlyphKind int

const (
	GlyphHeart GlyphKind = iota
	GlyphSparkle
)

// Glyph is one decorative motif, centered on (X, Y).
type Glyph struct {
	Kind  GlyphKind
	X, Y  float64
	Size  float64
	Angle float64
	Color color.NRGBA
}

// scatter places st.Motifs glyphs uniformly over a w×h canvas.
func scatter(r *rand.Rand, st Style, w, h int) []Glyph {
	if st.Motifs <= 0 || len(st.Kinds) == 0 || len(st.Palette) == 0 {
		return nil
	}
	tilt := st.GlyphTilt * math.Pi / 180
	out := make([]Glyph, st.Motifs)
	for i := range out {
		out[i] = Glyph{
			Kind:  st.Kinds[r.IntN(len(st.Kinds))],
			X:     r.Float64() * float64(w),
			Y:     r.Float64() * float64(h),
			Size:  st.MinSize + r.Float64()*(st.MaxSize-st.MinSize),
			Angle: (r.Float64()*2 - 1) * tilt,
			Color: st.Palette[r.IntN(len(st.Palette))],
		}
	}
	return out
}
