// Package fb provides the emulated LCD framebuffer: a fixed-size
// monochrome pixel plane packed one bit per pixel, MSB-first, row-major.
//
// A FrameBuffer is created fresh for every draw cycle and handed off to
// the display backend once the cycle completes. All coordinate access is
// clipped to the plane; out-of-range reads return 0 and out-of-range
// writes are dropped.
package fb

import (
	"image"
	"image/color"
)

// Default plane dimensions, matching a common 128x64 LCD module.
const (
	DefaultWidth  = 128
	DefaultHeight = 64
)

// Stride returns the number of bytes per packed row for the given width.
func Stride(width int) int {
	return (width + 7) / 8
}

// FrameBuffer is a 1-bit-per-pixel pixel plane.
type FrameBuffer struct {
	width  int
	height int
	stride int
	pix    []byte
}

// New creates a cleared framebuffer. Non-positive dimensions fall back
// to the defaults.
func New(width, height int) *FrameBuffer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	stride := Stride(width)
	return &FrameBuffer{
		width:  width,
		height: height,
		stride: stride,
		pix:    make([]byte, stride*height),
	}
}

// Width returns the plane width in pixels.
func (f *FrameBuffer) Width() int { return f.width }

// Height returns the plane height in pixels.
func (f *FrameBuffer) Height() int { return f.height }

// RowStride returns the number of bytes per packed row.
func (f *FrameBuffer) RowStride() int { return f.stride }

// SetPixel writes a single pixel. v is treated as boolean: zero clears
// the pixel, any other value sets it. Out-of-range coordinates are
// silently dropped.
func (f *FrameBuffer) SetPixel(x, y int, v byte) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	idx := y*f.stride + x/8
	mask := byte(0x80) >> (x % 8)
	if v != 0 {
		f.pix[idx] |= mask
	} else {
		f.pix[idx] &^= mask
	}
}

// Pixel reads a single pixel, returning 0 or 1. Out-of-range
// coordinates read as 0.
func (f *FrameBuffer) Pixel(x, y int) byte {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return 0
	}
	idx := y*f.stride + x/8
	if f.pix[idx]&(0x80>>(x%8)) != 0 {
		return 1
	}
	return 0
}

// Clear sets every pixel to 0.
func (f *FrameBuffer) Clear() {
	for i := range f.pix {
		f.pix[i] = 0
	}
}

// Fill sets every pixel to the given value.
func (f *FrameBuffer) Fill(v byte) {
	b := byte(0)
	if v != 0 {
		b = 0xFF
	}
	for i := range f.pix {
		f.pix[i] = b
	}
	f.clearRowPadding()
}

// clearRowPadding zeroes the unused trailing bits of each packed row so
// Bytes() never exposes stray padding pixels.
func (f *FrameBuffer) clearRowPadding() {
	rem := f.width % 8
	if rem == 0 {
		return
	}
	mask := byte(0xFF) << (8 - rem)
	for y := 0; y < f.height; y++ {
		f.pix[y*f.stride+f.stride-1] &= mask
	}
}

// Bytes returns the packed pixel plane. The slice aliases the
// framebuffer's storage; callers that hold onto it should use Snapshot.
func (f *FrameBuffer) Bytes() []byte {
	return f.pix
}

// Snapshot returns an independent copy of the framebuffer, used for the
// hand-off to the display backend at the end of a draw cycle.
func (f *FrameBuffer) Snapshot() *FrameBuffer {
	cp := &FrameBuffer{
		width:  f.width,
		height: f.height,
		stride: f.stride,
		pix:    make([]byte, len(f.pix)),
	}
	copy(cp.pix, f.pix)
	return cp
}

// ToImage renders the plane into an 8-bit grayscale image, with set
// pixels white. Used by the screenshot and GIF exporters.
func (f *FrameBuffer) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			if f.Pixel(x, y) != 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
