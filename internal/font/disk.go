package font

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCacheDir is the on-disk glyph cache directory, relative to the
// process working directory. Deleting it only costs a re-parse.
const DefaultCacheDir = "fontcache"

// diskCache persists parsed fonts across runs, keyed by font name and
// source modification time. Every failure mode degrades to a re-parse;
// no disk cache error ever reaches a caller.
type diskCache struct {
	dir string
}

// diskEntry is the gob payload for one cached font.
type diskEntry struct {
	SourceModTime int64 // UnixNano of the font source at parse time
	Font          Font
}

func newDiskCache(dir string) *diskCache {
	if dir == "" {
		dir = DefaultCacheDir
	}
	return &diskCache{dir: dir}
}

// path maps a font name to its cache file, flattening path separators
// so names that look like paths stay inside the cache directory.
func (c *diskCache) path(name string) string {
	flat := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(name)
	return filepath.Join(c.dir, flat+".gob")
}

// load returns the cached font for (name, modTime), or false on any
// miss, mismatch or corruption.
func (c *diskCache) load(name string, modTime time.Time) (*Font, bool) {
	f, err := os.Open(c.path(name))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var entry diskEntry
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false
	}
	if entry.SourceModTime != modTime.UnixNano() {
		return nil, false
	}
	if len(entry.Font.Glyphs) == 0 {
		return nil, false
	}
	return &entry.Font, true
}

// store writes a parsed font to disk, best-effort.
func (c *diskCache) store(name string, modTime time.Time, font *Font) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(c.dir, ".font-*")
	if err != nil {
		return
	}
	defer os.Remove(tmp.Name())

	entry := diskEntry{
		SourceModTime: modTime.UnixNano(),
		Font:          *font,
	}
	if err := gob.NewEncoder(tmp).Encode(entry); err != nil {
		tmp.Close()
		return
	}
	if err := tmp.Close(); err != nil {
		return
	}
	_ = os.Rename(tmp.Name(), c.path(name))
}
