package fonts

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/width"
)

// FallbackRune is drawn in place of glyphs the font lacks
const FallbackRune = '?'

// Face provides glyph metrics and masks for one font at one size. Wrapping
// and drawing both measure through it.
type Face struct {
	font       *opentype.Font
	face       font.Face
	buf        sfnt.Buffer
	size       float64
	ascent     float32
	lineHeight float32
	advances   map[rune]float32
}

// NewFace parses TTF/OTF data, or the first font of a TTC collection
func NewFace(data []byte, size float64) (*Face, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFont
	}

	parsed, err := parse(data)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	metrics := face.Metrics()
	return &Face{
		font:       parsed,
		face:       face,
		size:       size,
		ascent:     float32(metrics.Ascent.Ceil()),
		lineHeight: float32((metrics.Ascent + metrics.Descent).Ceil()),
		advances:   make(map[rune]float32),
	}, nil
}

func parse(data []byte) (*opentype.Font, error) {
	if bytes.HasPrefix(data, []byte("ttcf")) {
		collection, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font collection: %w", err)
		}
		if collection.NumFonts() == 0 {
			return nil, ErrEmptyFont
		}
		parsed, err := collection.Font(0)
		if err != nil {
			return nil, fmt.Errorf("failed to read font 0 of collection: %w", err)
		}
		return parsed, nil
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return parsed, nil
}

// Size returns the point size the face was built for
func (f *Face) Size() float64 {
	return f.size
}

// Ascent returns the distance from the top of a line to its baseline
func (f *Face) Ascent() float32 {
	return f.ascent
}

// LineHeight returns ascent plus descent in pixels
func (f *Face) LineHeight() float32 {
	return f.lineHeight
}

// Has reports whether the font carries a real glyph for r
func (f *Face) Has(r rune) bool {
	idx, err := f.font.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

// Resolve maps r to the rune that will actually be drawn
func (f *Face) Resolve(r rune) rune {
	if f.Has(r) {
		return r
	}
	return FallbackRune
}

// Advance returns the rendered pixel width of r. A rune the font lacks is
// laid out as one fallback glyph per cell it would occupy.
func (f *Face) Advance(r rune) float32 {
	if w, ok := f.advances[r]; ok {
		return w
	}
	resolved := f.Resolve(r)
	adv, ok := f.face.GlyphAdvance(resolved)
	w := float32(0)
	if ok {
		w = float32(adv) / 64
	}
	if resolved != r {
		w *= fallbackCells(r)
	}
	f.advances[r] = w
	return w
}

func fallbackCells(r rune) float32 {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// Measure returns the pixel width of a whole string
func (f *Face) Measure(text string) float32 {
	total := float32(0)
	for _, r := range text {
		total += f.Advance(r)
	}
	return total
}

// Glyph rasterises r with its origin on the baseline. The returned rectangle
// is relative to that origin.
func (f *Face) Glyph(r rune) (image.Rectangle, image.Image, image.Point, bool) {
	dr, mask, maskp, _, ok := f.face.Glyph(fixed.P(0, 0), f.Resolve(r))
	return dr, mask, maskp, ok
}

// Close releases the underlying face
func (f *Face) Close() error {
	return f.face.Close()
}
