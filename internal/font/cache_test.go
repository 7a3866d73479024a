package font

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeProvider resolves names through a fixed map.
type fakeProvider struct {
	paths map[string]string
}

func (p fakeProvider) Resolve(name string) (string, error) {
	if path, ok := p.paths[name]; ok {
		return path, nil
	}
	return "", ErrFontNotFound
}

func writeTempBDF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCache_DefaultFont(t *testing.T) {
	c := NewCache(fakeProvider{})

	f := c.Font("")
	if f != DefaultFont() {
		t.Error(`Font("") did not return the built-in default font`)
	}

	g := c.GetGlyph("", 'A')
	if g.Width != 5 || g.Height != 7 {
		t.Errorf(`GetGlyph("", 'A') = %dx%d, want 5x7`, g.Width, g.Height)
	}
}

func TestCache_LoadAndReuse(t *testing.T) {
	dir := t.TempDir()
	path := writeTempBDF(t, dir, "sample.bdf", sampleBDF)
	c := NewCache(fakeProvider{paths: map[string]string{"sample": path}})

	f1 := c.Font("sample")
	if _, ok := f1.Glyph('A'); !ok {
		t.Fatal("loaded font missing glyph 'A'")
	}

	// Unchanged source reuses the exact cached Font.
	f2 := c.Font("sample")
	if f1 != f2 {
		t.Error("second lookup reparsed an unchanged font")
	}
}

func TestCache_MissingCodepointPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeTempBDF(t, dir, "sample.bdf", sampleBDF)
	c := NewCache(fakeProvider{paths: map[string]string{"sample": path}})

	g := c.GetGlyph("sample", '世') // not in the two-glyph sample
	want := Placeholder()
	if g.Width != want.Width || g.Height != want.Height {
		t.Errorf("missing codepoint glyph = %dx%d, want placeholder %dx%d",
			g.Width, g.Height, want.Width, want.Height)
	}
}

func TestCache_MTimeInvalidation(t *testing.T) {
	dir := t.TempDir()
	path := writeTempBDF(t, dir, "sample.bdf", sampleBDF)
	c := NewCache(fakeProvider{paths: map[string]string{"sample": path}})

	f1 := c.Font("sample")
	if f1.Ascent != 6 {
		t.Fatalf("initial ascent = %d, want 6", f1.Ascent)
	}

	// Rewrite the source with different metrics and an advanced mtime.
	updated := "STARTFONT 2.1\nFONT_ASCENT 9\nFONT_DESCENT 1\n" +
		"STARTCHAR A\nENCODING 65\nDWIDTH 6 0\nBBX 5 6 0 0\nBITMAP\n70\n88\n88\nF8\n88\n88\nENDCHAR\nENDFONT\n"
	writeTempBDF(t, dir, "sample.bdf", updated)
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	f2 := c.Font("sample")
	if f2.Ascent != 9 {
		t.Errorf("ascent after source update = %d, want 9 (reparse)", f2.Ascent)
	}
}

func TestCache_UnresolvableFallsBack(t *testing.T) {
	var reported int
	c := NewCache(fakeProvider{}, WithErrorFunc(func(name string, err error) {
		reported++
	}))

	f := c.Font("nope")
	if f != DefaultFont() {
		t.Error("unresolvable font did not fall back to default")
	}
	if reported != 1 {
		t.Errorf("error reports = %d, want 1", reported)
	}

	// A repeated lookup must not re-report.
	c.Font("nope")
	if reported != 1 {
		t.Errorf("error reports after repeat = %d, want 1", reported)
	}
}

func TestCache_MalformedSourceFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeTempBDF(t, dir, "bad.bdf", "not a bdf file at all")

	var reported int
	c := NewCache(
		fakeProvider{paths: map[string]string{"bad": path}},
		WithErrorFunc(func(name string, err error) { reported++ }),
	)

	// Must never panic or error out of GetGlyph.
	g := c.GetGlyph("bad", 'A')
	if g.Width == 0 {
		t.Error("fallback glyph is empty")
	}
	if reported != 1 {
		t.Errorf("error reports = %d, want 1", reported)
	}

	// Unchanged bad source stays quiet.
	c.GetGlyph("bad", 'B')
	if reported != 1 {
		t.Errorf("error reports after repeat = %d, want 1", reported)
	}
}

func TestCache_DiskCacheSurvivesSource(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "fontcache")
	path := writeTempBDF(t, dir, "sample.bdf", sampleBDF)
	provider := fakeProvider{paths: map[string]string{"sample": path}}

	c1 := NewCache(provider, WithDiskCache(cacheDir))
	if f := c1.Font("sample"); f.Ascent != 6 {
		t.Fatalf("first load ascent = %d, want 6", f.Ascent)
	}

	// Corrupt the source but keep its mtime: a fresh cache must hit the
	// disk entry instead of reparsing.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	writeTempBDF(t, dir, "sample.bdf", "garbage")
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	c2 := NewCache(provider, WithDiskCache(cacheDir))
	f := c2.Font("sample")
	if f.Ascent != 6 {
		t.Errorf("disk-cached ascent = %d, want 6", f.Ascent)
	}
	if _, ok := f.Glyph('A'); !ok {
		t.Error("disk-cached font missing glyph 'A'")
	}
}

func TestCache_CorruptDiskCacheReparses(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "fontcache")
	path := writeTempBDF(t, dir, "sample.bdf", sampleBDF)

	// Pre-plant a corrupt cache file where the entry would live.
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "sample.gob"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(
		fakeProvider{paths: map[string]string{"sample": path}},
		WithDiskCache(cacheDir),
	)
	f := c.Font("sample")
	if f.Ascent != 6 {
		t.Errorf("ascent with corrupt disk cache = %d, want 6 (reparse)", f.Ascent)
	}
}
