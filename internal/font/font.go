// Package font provides the bitmap-font subsystem: the Glyph and Font
// model, a BDF parser, and a process-wide glyph cache with optional
// on-disk persistence.
//
// Fonts are identified by opaque caller-supplied names; a Provider
// resolves a name to a font definition file. The empty name selects the
// built-in default font. Glyph lookups never fail: a codepoint absent
// from the font's table yields a fixed placeholder glyph so drawing code
// is never interrupted by a missing character.
package font

// Glyph holds a single character's bitmap and placement metrics.
//
// The bitmap is packed 1-bpp, MSB-first, row-major, top row first, with
// a row stride of ceil(Width/8) bytes. XOffset and YOffset position the
// bitmap's lower-left corner relative to the pen origin on the baseline,
// BDF-style: the top-left blit position for a pen at (x, y) is
// (x+XOffset, y-Height-YOffset). Advance is the horizontal pen movement
// after the glyph.
type Glyph struct {
	Width   int
	Height  int
	XOffset int
	YOffset int
	Advance int
	Bitmap  []byte
}

// Stride returns the glyph's packed row stride in bytes.
func (g Glyph) Stride() int {
	return (g.Width + 7) / 8
}

// Bit reports whether the pixel at (x, y) within the glyph bitmap is
// set. Coordinates outside the glyph read as unset.
func (g Glyph) Bit(x, y int) bool {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return false
	}
	idx := y*g.Stride() + x/8
	if idx >= len(g.Bitmap) {
		return false
	}
	return g.Bitmap[idx]&(0x80>>(x%8)) != 0
}

// Font is an immutable parsed bitmap font.
//
// Fields are exported so parsed fonts can round-trip through the on-disk
// gob cache; callers must not mutate a Font after it is published to the
// cache.
type Font struct {
	Name    string
	Ascent  int
	Descent int
	Glyphs  map[rune]Glyph
}

// Glyph looks up the glyph for a codepoint.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	g, ok := f.Glyphs[r]
	return g, ok
}

// Placeholder glyph dimensions, sized to match the default font cell.
const (
	placeholderWidth   = 6
	placeholderHeight  = 8
	placeholderAdvance = 7
)

// Placeholder returns the fixed glyph rendered for codepoints missing
// from a font's table: a filled box sitting on the baseline.
func Placeholder() Glyph {
	bitmap := make([]byte, placeholderHeight)
	for i := range bitmap {
		bitmap[i] = 0xFC // top 6 bits of each row
	}
	return Glyph{
		Width:   placeholderWidth,
		Height:  placeholderHeight,
		Advance: placeholderAdvance,
		Bitmap:  bitmap,
	}
}
