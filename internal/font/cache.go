package font

import (
	"os"
	"time"
)

// Cache is the process-wide glyph cache. Fonts are parsed on first
// reference and kept for the process lifetime, keyed by name; an entry
// is invalidated and reparsed when its source file's modification time
// advances.
//
// Lookups never fail: any resolution or parse problem degrades to the
// built-in default font, and a codepoint missing from a font's table
// yields the fixed placeholder glyph. The cache is mutated only by the
// single reload-loop goroutine, so it carries no locking.
type Cache struct {
	provider    Provider
	disk        *diskCache
	fonts       map[string]*cachedFont
	placeholder Glyph

	// onError receives font resolution/parse failures for logging.
	onError func(name string, err error)
}

type cachedFont struct {
	font    *Font
	path    string
	modTime time.Time
	failed  bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithDiskCache enables the on-disk secondary cache in dir. An empty
// dir selects DefaultCacheDir.
func WithDiskCache(dir string) CacheOption {
	return func(c *Cache) {
		c.disk = newDiskCache(dir)
	}
}

// WithErrorFunc registers a callback for font load failures. Failures
// are reported once per (name, source version), not on every lookup.
func WithErrorFunc(fn func(name string, err error)) CacheOption {
	return func(c *Cache) {
		c.onError = fn
	}
}

// NewCache creates a glyph cache backed by the given provider.
func NewCache(provider Provider, opts ...CacheOption) *Cache {
	c := &Cache{
		provider:    provider,
		fonts:       make(map[string]*cachedFont),
		placeholder: Placeholder(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetGlyph returns the glyph for codepoint r in the named font. The
// empty name selects the built-in default font. Missing codepoints
// render as the placeholder glyph.
func (c *Cache) GetGlyph(name string, r rune) Glyph {
	f := c.Font(name)
	if g, ok := f.Glyph(r); ok {
		return g
	}
	return c.placeholder
}

// Metrics returns the ascent and descent of the named font.
func (c *Cache) Metrics(name string) (ascent, descent int) {
	f := c.Font(name)
	return f.Ascent, f.Descent
}

// Font returns the named font, loading and caching it on first
// reference. Failures degrade to the default font.
func (c *Cache) Font(name string) *Font {
	if name == "" {
		return DefaultFont()
	}

	cached := c.fonts[name]

	path, err := c.provider.Resolve(name)
	if err != nil {
		// Unresolvable now; a previously parsed font stays usable.
		if cached != nil && cached.font != nil {
			return cached.font
		}
		if cached == nil || !cached.failed {
			c.fonts[name] = &cachedFont{failed: true}
			c.reportError(name, err)
		}
		return DefaultFont()
	}

	info, err := os.Stat(path)
	if err != nil {
		if cached != nil && cached.font != nil {
			return cached.font
		}
		if cached == nil || !cached.failed {
			c.fonts[name] = &cachedFont{failed: true}
			c.reportError(name, err)
		}
		return DefaultFont()
	}
	modTime := info.ModTime()

	if cached != nil && cached.path == path && cached.modTime.Equal(modTime) {
		if cached.font != nil {
			return cached.font
		}
		// Known-bad source, unchanged since the failure was reported.
		return DefaultFont()
	}

	f := c.loadFont(name, path, modTime)
	if f == nil {
		c.fonts[name] = &cachedFont{path: path, modTime: modTime, failed: true}
		return DefaultFont()
	}
	c.fonts[name] = &cachedFont{font: f, path: path, modTime: modTime}
	return f
}

// loadFont fetches a font from the disk cache or parses it from source,
// refreshing the disk cache on a successful parse. Returns nil on
// failure (already reported).
func (c *Cache) loadFont(name, path string, modTime time.Time) *Font {
	if c.disk != nil {
		if f, ok := c.disk.load(name, modTime); ok {
			f.Name = name
			return f
		}
	}

	src, err := os.Open(path)
	if err != nil {
		c.reportError(name, err)
		return nil
	}
	defer src.Close()

	f, err := ParseBDF(src, path)
	if err != nil {
		c.reportError(name, err)
		return nil
	}
	f.Name = name

	if c.disk != nil {
		c.disk.store(name, modTime, f)
	}
	return f
}

func (c *Cache) reportError(name string, err error) {
	if c.onError != nil {
		c.onError(name, err)
	}
}
