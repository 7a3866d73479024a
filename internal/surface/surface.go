// Package surface provides the drawing-primitive API user code draws
// with: an embedded-display style interface over one framebuffer plus
// the current draw state (color and font).
//
// Primitives clip silently at the framebuffer bounds. Errors from
// external files (missing images, bad fonts) degrade to no-ops or
// placeholder glyphs so a drawing routine is never interrupted; the only
// error surfaced to the caller is a structurally invalid argument.
package surface

import (
	"errors"

	"github.com/dshills/lcdsim/internal/fb"
	"github.com/dshills/lcdsim/internal/font"
	"github.com/dshills/lcdsim/internal/imgcache"
)

// ErrInvalidArgument is returned for structurally invalid primitive
// arguments, such as an undersized bitmap buffer.
var ErrInvalidArgument = errors.New("invalid argument")

// SendFunc receives the finished framebuffer on SendBuffer. The
// framebuffer passed is a snapshot; the surface keeps drawing into its
// own plane.
type SendFunc func(*fb.FrameBuffer)

// Surface binds a framebuffer to the draw state and the glyph and
// image caches. A fresh Surface is constructed for every draw cycle
// with the state reset to draw color 1 and the default font.
type Surface struct {
	buf    *fb.FrameBuffer
	fonts  *font.Cache
	images *imgcache.Cache
	send   SendFunc

	// onImageError receives file-image failures for logging; the draw
	// call itself is a no-op in that case.
	onImageError func(path string, err error)

	color    byte
	fontName string
}

// Option configures a Surface.
type Option func(*Surface)

// WithSendFunc sets the hand-off target for SendBuffer.
func WithSendFunc(fn SendFunc) Option {
	return func(s *Surface) { s.send = fn }
}

// WithImageErrorFunc registers a callback for file-image failures.
func WithImageErrorFunc(fn func(path string, err error)) Option {
	return func(s *Surface) { s.onImageError = fn }
}

// New creates a surface over buf with draw state reset.
func New(buf *fb.FrameBuffer, fonts *font.Cache, images *imgcache.Cache, opts ...Option) *Surface {
	s := &Surface{
		buf:    buf,
		fonts:  fonts,
		images: images,
		color:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Width returns the framebuffer width in pixels.
func (s *Surface) Width() int { return s.buf.Width() }

// Height returns the framebuffer height in pixels.
func (s *Surface) Height() int { return s.buf.Height() }

// Buffer returns the framebuffer being drawn into.
func (s *Surface) Buffer() *fb.FrameBuffer { return s.buf }

// ClearBuffer sets every pixel to 0.
func (s *Surface) ClearBuffer() {
	s.buf.Clear()
}

// SetDrawColor sets the current draw color. Out-of-range values clamp
// to the nearest valid color; a cosmetic setting never errors.
func (s *Surface) SetDrawColor(c int) {
	switch {
	case c <= 0:
		s.color = 0
	default:
		s.color = 1
	}
}

// DrawColor returns the current draw color.
func (s *Surface) DrawColor() int { return int(s.color) }

// SetFont selects the font for subsequent DrawStr calls. The empty
// name selects the built-in default font; any other name is loaded
// lazily by the glyph cache on first use.
func (s *Surface) SetFont(name string) {
	s.fontName = name
}

// FontMetrics returns the ascent and descent of the current font.
func (s *Surface) FontMetrics() (ascent, descent int) {
	return s.fonts.Metrics(s.fontName)
}

// DrawPixel plots a single pixel in the current color.
func (s *Surface) DrawPixel(x, y int) {
	s.buf.SetPixel(x, y, s.color)
}

// DrawBox fills the rectangle [x,x+w) x [y,y+h) with the current
// color. Zero or negative dimensions draw nothing.
func (s *Surface) DrawBox(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			s.buf.SetPixel(xx, yy, s.color)
		}
	}
}

// DrawFrame draws the one-pixel outline of DrawBox's rectangle.
func (s *Surface) DrawFrame(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.DrawHLine(x, y, w)
	s.DrawHLine(x, y+h-1, w)
	s.DrawVLine(x, y, h)
	s.DrawVLine(x+w-1, y, h)
}

// DrawHLine draws a horizontal line of w pixels starting at (x, y).
func (s *Surface) DrawHLine(x, y, w int) {
	for i := 0; i < w; i++ {
		s.buf.SetPixel(x+i, y, s.color)
	}
}

// DrawVLine draws a vertical line of h pixels starting at (x, y).
func (s *Surface) DrawVLine(x, y, h int) {
	for i := 0; i < h; i++ {
		s.buf.SetPixel(x, y+i, s.color)
	}
}

// DrawLine draws an integer Bresenham line between the endpoints,
// inclusive. Swapping the endpoints produces the identical pixel set;
// coincident endpoints draw a single pixel.
func (s *Surface) DrawLine(x0, y0, x1, y1 int) {
	// Canonical endpoint order makes the traversal direction, and with
	// it the rounding, independent of argument order.
	if x1 < x0 || (x1 == x0 && y1 < y0) {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}

	dx := x1 - x0
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sy := 1
	if y1 < y0 {
		sy = -1
	}

	err := dx - dy
	x, y := x0, y0
	for {
		s.buf.SetPixel(x, y, s.color)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x++
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// DrawCircle draws the outline of a circle centered at (cx, cy) using
// the midpoint algorithm.
func (s *Surface) DrawCircle(cx, cy, r int) {
	if r < 0 {
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		s.circlePoints(cx, cy, x, y)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func (s *Surface) circlePoints(cx, cy, x, y int) {
	s.buf.SetPixel(cx+x, cy+y, s.color)
	s.buf.SetPixel(cx-x, cy+y, s.color)
	s.buf.SetPixel(cx+x, cy-y, s.color)
	s.buf.SetPixel(cx-x, cy-y, s.color)
	s.buf.SetPixel(cx+y, cy+x, s.color)
	s.buf.SetPixel(cx-y, cy+x, s.color)
	s.buf.SetPixel(cx+y, cy-x, s.color)
	s.buf.SetPixel(cx-y, cy-x, s.color)
}

// DrawDisc draws a filled circle centered at (cx, cy).
func (s *Surface) DrawDisc(cx, cy, r int) {
	if r < 0 {
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		s.DrawHLine(cx-x, cy+y, 2*x+1)
		s.DrawHLine(cx-x, cy-y, 2*x+1)
		s.DrawHLine(cx-y, cy+x, 2*y+1)
		s.DrawHLine(cx-y, cy-x, 2*y+1)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// DrawRFrame draws the outline of a rounded rectangle with corner
// radius r. The radius clamps to half the shorter side; a radius of
// zero degrades to DrawFrame.
func (s *Surface) DrawRFrame(x, y, w, h, r int) {
	if w <= 0 || h <= 0 {
		return
	}
	if rmax := (min(w, h) - 1) / 2; r > rmax {
		r = rmax
	}
	if r <= 0 {
		s.DrawFrame(x, y, w, h)
		return
	}

	s.DrawHLine(x+r, y, w-2*r)
	s.DrawHLine(x+r, y+h-1, w-2*r)
	s.DrawVLine(x, y+r, h-2*r)
	s.DrawVLine(x+w-1, y+r, h-2*r)

	left, right := x+r, x+w-1-r
	top, bottom := y+r, y+h-1-r
	cx, cy := r, 0
	err := 1 - r
	for cx >= cy {
		s.cornerPoints(left, top, right, bottom, cx, cy)
		cy++
		if err < 0 {
			err += 2*cy + 1
		} else {
			cx--
			err += 2*(cy-cx) + 1
		}
	}
}

// cornerPoints mirrors one midpoint-circle octant pair into all four
// corner arcs of a rounded rectangle.
func (s *Surface) cornerPoints(left, top, right, bottom, x, y int) {
	s.buf.SetPixel(left-x, top-y, s.color)
	s.buf.SetPixel(left-y, top-x, s.color)
	s.buf.SetPixel(right+x, top-y, s.color)
	s.buf.SetPixel(right+y, top-x, s.color)
	s.buf.SetPixel(left-x, bottom+y, s.color)
	s.buf.SetPixel(left-y, bottom+x, s.color)
	s.buf.SetPixel(right+x, bottom+y, s.color)
	s.buf.SetPixel(right+y, bottom+x, s.color)
}

// DrawRBox draws a filled rounded rectangle with corner radius r. The
// radius clamps to half the shorter side; a radius of zero degrades to
// DrawBox.
func (s *Surface) DrawRBox(x, y, w, h, r int) {
	if w <= 0 || h <= 0 {
		return
	}
	if rmax := (min(w, h) - 1) / 2; r > rmax {
		r = rmax
	}
	if r <= 0 {
		s.DrawBox(x, y, w, h)
		return
	}

	s.DrawBox(x, y+r, w, h-2*r)

	left, right := x+r, x+w-1-r
	top, bottom := y+r, y+h-1-r
	cx, cy := r, 0
	err := 1 - r
	for cx >= cy {
		s.DrawHLine(left-cx, top-cy, right-left+2*cx+1)
		s.DrawHLine(left-cy, top-cx, right-left+2*cy+1)
		s.DrawHLine(left-cx, bottom+cy, right-left+2*cx+1)
		s.DrawHLine(left-cy, bottom+cx, right-left+2*cy+1)
		cy++
		if err < 0 {
			err += 2*cy + 1
		} else {
			cx--
			err += 2*(cy-cx) + 1
		}
	}
}

// DrawStr renders text with the current font, with the pen starting at
// (x, y) on the baseline. Codepoints missing from the font render as
// the placeholder glyph; drawing text never fails.
func (s *Surface) DrawStr(x, y int, text string) {
	pen := x
	for _, r := range text {
		g := s.fonts.GetGlyph(s.fontName, r)
		s.blitGlyph(pen, y, g)
		pen += g.Advance
	}
}

// DrawUTF8 renders text exactly as DrawStr; the name mirrors the
// embedded display API.
func (s *Surface) DrawUTF8(x, y int, text string) {
	s.DrawStr(x, y, text)
}

// blitGlyph places a glyph for a pen at (x, y) on the baseline.
func (s *Surface) blitGlyph(x, y int, g font.Glyph) {
	left := x + g.XOffset
	top := y - g.Height - g.YOffset
	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < g.Width; gx++ {
			if g.Bit(gx, gy) {
				s.buf.SetPixel(left+gx, top+gy, s.color)
			}
		}
	}
}

// DrawBitmap1 blits a packed 1-bpp bitmap: MSB-first, row-major, row
// stride ceil(w/8) bytes. Set bits draw the current color; clear bits
// are transparent. A buffer shorter than ceil(w/8)*h bytes returns
// ErrInvalidArgument.
func (s *Surface) DrawBitmap1(x, y, w, h int, data []byte) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	stride := (w + 7) / 8
	if need := stride * h; len(data) < need {
		return &invalidArgumentError{
			op:   "DrawBitmap1",
			want: need,
			got:  len(data),
		}
	}

	for row := 0; row < h; row++ {
		off := row * stride
		for col := 0; col < w; col++ {
			if data[off+col/8]&(0x80>>(col%8)) != 0 {
				s.buf.SetPixel(x+col, y+row, s.color)
			}
		}
	}
	return nil
}

// DrawBitmap blits exactly as DrawBitmap1; the name mirrors the
// Arduino-style convenience alias of the embedded API.
func (s *Surface) DrawBitmap(x, y, w, h int, data []byte) error {
	return s.DrawBitmap1(x, y, w, h, data)
}

// DrawXBM blits a packed 1-bpp bitmap, mirroring the embedded API name.
func (s *Surface) DrawXBM(x, y, w, h int, data []byte) error {
	return s.DrawBitmap1(x, y, w, h, data)
}

// DrawXBMFile decodes and blits a bitmap file through the image cache.
// A missing or undecodable file is a no-op.
func (s *Surface) DrawXBMFile(path string, x, y int) {
	bm, err := s.images.GetBitmap(path)
	if err != nil {
		if s.onImageError != nil {
			s.onImageError(path, err)
		}
		return
	}
	for row := 0; row < bm.Height; row++ {
		for col := 0; col < bm.Width; col++ {
			if bm.Bit(col, row) {
				s.buf.SetPixel(x+col, y+row, s.color)
			}
		}
	}
}

// DrawPBMFile draws a bitmap file exactly as DrawXBMFile; non-XBM
// files go through the image decoder fallback.
func (s *Surface) DrawPBMFile(path string, x, y int) {
	s.DrawXBMFile(path, x, y)
}

// SendBuffer hands a snapshot of the framebuffer to the display
// surface. Pixel contents are untouched.
func (s *Surface) SendBuffer() {
	if s.send != nil {
		s.send(s.buf.Snapshot())
	}
}
