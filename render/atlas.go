package render

import (
	"image"
	"image/draw"
)

// shelfPacker places rectangles left to right in rows ("shelves"). A new
// shelf starts below the tallest rectangle of the current one.
type shelfPacker struct {
	size      int
	padding   int
	x, y      int
	rowHeight int
}

func newShelfPacker(size, padding int) shelfPacker {
	return shelfPacker{size: size, padding: padding, x: padding, y: padding}
}

// Pack reserves a w×h slot and returns its top-left corner
func (p *shelfPacker) Pack(w, h int) (image.Point, bool) {
	if w <= 0 || h <= 0 || w+2*p.padding > p.size || h+2*p.padding > p.size {
		return image.Point{}, false
	}
	if p.x+w+p.padding > p.size {
		p.x = p.padding
		p.y += p.rowHeight + p.padding
		p.rowHeight = 0
	}
	if p.y+h+p.padding > p.size {
		return image.Point{}, false
	}
	pos := image.Point{X: p.x, Y: p.y}
	p.x += w + p.padding
	if h > p.rowHeight {
		p.rowHeight = h
	}
	return pos, true
}

// Reset empties the packer
func (p *shelfPacker) Reset() {
	*p = newShelfPacker(p.size, p.padding)
}

// glyphSource rasterises glyphs relative to their baseline origin
type glyphSource interface {
	Glyph(r rune) (image.Rectangle, image.Image, image.Point, bool)
	Resolve(r rune) rune
}

// uploadFunc copies an 8-bit alpha block into the atlas texture
type uploadFunc func(x, y, w, h int, pix []byte)

// glyphEntry locates a glyph in the atlas. Bounds are relative to the pen
// position on the baseline; blank glyphs have empty bounds.
type glyphEntry struct {
	bounds         image.Rectangle
	u0, v0, u1, v1 float32
}

// glyphCache rasterises glyphs on first use. When the atlas fills up every
// entry is dropped and packing starts over.
type glyphCache struct {
	src     glyphSource
	packer  shelfPacker
	entries map[rune]glyphEntry
	upload  uploadFunc
	resets  int
}

func newGlyphCache(src glyphSource, size int, upload uploadFunc) *glyphCache {
	return &glyphCache{
		src:     src,
		packer:  newShelfPacker(size, 1),
		entries: make(map[rune]glyphEntry),
		upload:  upload,
	}
}

func (c *glyphCache) lookup(r rune) (glyphEntry, bool) {
	r = c.src.Resolve(r)
	if entry, ok := c.entries[r]; ok {
		return entry, true
	}

	dr, mask, maskp, ok := c.src.Glyph(r)
	if !ok {
		return glyphEntry{}, false
	}
	if dr.Empty() {
		entry := glyphEntry{}
		c.entries[r] = entry
		return entry, true
	}

	w, h := dr.Dx(), dr.Dy()
	pos, ok := c.packer.Pack(w, h)
	if !ok {
		c.entries = make(map[rune]glyphEntry)
		c.packer.Reset()
		c.resets++
		if pos, ok = c.packer.Pack(w, h); !ok {
			return glyphEntry{}, false
		}
	}

	// The face reuses its mask buffer, so copy it out before the next call
	alpha := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.Draw(alpha, alpha.Bounds(), mask, maskp, draw.Src)
	c.upload(pos.X, pos.Y, w, h, alpha.Pix)

	size := float32(c.packer.size)
	entry := glyphEntry{
		bounds: dr,
		u0:     float32(pos.X) / size,
		v0:     float32(pos.Y) / size,
		u1:     float32(pos.X+w) / size,
		v1:     float32(pos.Y+h) / size,
	}
	c.entries[r] = entry
	return entry, true
}
