// Package imgcache provides decoding and caching of file-based
// monochrome bitmaps.
//
// The cache is a bounded LRU keyed by (absolute path, modification
// time). The primary format is the XBM-style bitmap text format; any
// other file is decoded through the registered image decoders (PNG,
// BMP) and thresholded to 1-bpp, matching what the drawing primitives
// consume.
package imgcache

import (
	"bytes"
	"image"
	"os"
	"path/filepath"

	_ "image/png" // registered for the image-file fallback path

	_ "golang.org/x/image/bmp" // registered for the image-file fallback path
)

// DefaultCapacity is the default cache size in entries.
const DefaultCapacity = 64

// Bitmap is a decoded 1-bpp image: packed MSB-first, row-major, row
// stride ceil(Width/8) bytes.
type Bitmap struct {
	Width  int
	Height int
	Data   []byte
}

// Stride returns the packed row stride in bytes.
func (b Bitmap) Stride() int {
	return (b.Width + 7) / 8
}

// Bit reports whether pixel (x, y) is set.
func (b Bitmap) Bit(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return false
	}
	idx := y*b.Stride() + x/8
	if idx >= len(b.Data) {
		return false
	}
	return b.Data[idx]&(0x80>>(x%8)) != 0
}

type cacheKey struct {
	path    string
	modTime int64
}

type cacheEntry struct {
	bitmap Bitmap
	access uint64
}

// Cache is a bounded LRU cache of decoded bitmaps. It is mutated only
// by the single reload-loop goroutine, so it carries no locking.
type Cache struct {
	capacity int
	entries  map[cacheKey]*cacheEntry
	seq      uint64
	decodes  int
}

// New creates a cache holding at most capacity decoded bitmaps.
// Capacities below 1 are raised to 1.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*cacheEntry),
	}
}

// GetBitmap returns the decoded bitmap for path. A cache hit is O(1)
// and marks the entry most-recently-used; a miss decodes the file,
// inserts it and evicts the least-recently-used entry beyond capacity.
//
// An unreadable file or malformed data returns an error (a *DecodeError
// for malformed data); callers treat either as "no image".
func (c *Cache) GetBitmap(path string) (Bitmap, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Bitmap{}, err
	}
	key := cacheKey{path: abs, modTime: info.ModTime().UnixNano()}

	if entry, ok := c.entries[key]; ok {
		c.seq++
		entry.access = c.seq
		return entry.bitmap, nil
	}

	bitmap, err := c.decode(abs)
	if err != nil {
		return Bitmap{}, err
	}

	c.seq++
	c.entries[key] = &cacheEntry{bitmap: bitmap, access: c.seq}
	c.evict()
	return bitmap, nil
}

// decode reads and decodes one file.
func (c *Cache) decode(path string) (Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bitmap{}, err
	}
	c.decodes++

	if looksLikeXBM(data) {
		return decodeXBM(path, data)
	}
	return decodeImageFile(path, data)
}

// decodeImageFile handles non-XBM files through the registered image
// decoders, thresholding luminance at 128.
func decodeImageFile(path string, data []byte) (Bitmap, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Bitmap{}, &DecodeError{Path: path, Reason: "unrecognized image data", Err: err}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Bitmap{}, &DecodeError{Path: path, Reason: "empty image"}
	}

	stride := (w + 7) / 8
	packed := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma on 16-bit channels.
			luma := (299*r + 587*g + 114*b) / 1000
			if luma >= 128<<8 {
				packed[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return Bitmap{Width: w, Height: h, Data: packed}, nil
}

// evict removes least-recently-used entries until the cache fits.
func (c *Cache) evict() {
	for len(c.entries) > c.capacity {
		var (
			oldestKey cacheKey
			oldest    uint64
			found     bool
		)
		for key, entry := range c.entries {
			if !found || entry.access < oldest {
				oldestKey = key
				oldest = entry.access
				found = true
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Decodes returns the number of decode operations performed, used to
// observe cache effectiveness.
func (c *Cache) Decodes() int { return c.decodes }

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Contains reports whether path (at its current mtime) is cached,
// without touching LRU order.
func (c *Cache) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(abs)
	if err != nil {
		return false
	}
	_, ok := c.entries[cacheKey{path: abs, modTime: info.ModTime().UnixNano()}]
	return ok
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.entries = make(map[cacheKey]*cacheEntry)
}
