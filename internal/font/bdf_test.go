package font

import (
	"errors"
	"strings"
	"testing"
)

const sampleBDF = `STARTFONT 2.1
FONT -test-sample-medium-r-normal--8-80-75-75-c-80-iso10646-1
SIZE 8 75 75
FONTBOUNDINGBOX 8 8 0 -2
STARTPROPERTIES 2
FONT_ASCENT 6
FONT_DESCENT 2
ENDPROPERTIES
CHARS 2
STARTCHAR A
ENCODING 65
SWIDTH 500 0
DWIDTH 6 0
BBX 5 6 0 0
BITMAP
70
88
88
F8
88
88
ENDCHAR
STARTCHAR exclam
ENCODING 33
DWIDTH 2 0
BBX 1 6 0 0
BITMAP
80
80
80
80
00
80
ENDCHAR
ENDFONT
`

func TestParseBDF(t *testing.T) {
	f, err := ParseBDF(strings.NewReader(sampleBDF), "sample.bdf")
	if err != nil {
		t.Fatalf("ParseBDF() error = %v", err)
	}

	if f.Ascent != 6 || f.Descent != 2 {
		t.Errorf("metrics = %d/%d, want 6/2", f.Ascent, f.Descent)
	}
	if len(f.Glyphs) != 2 {
		t.Fatalf("len(Glyphs) = %d, want 2", len(f.Glyphs))
	}

	g, ok := f.Glyph('A')
	if !ok {
		t.Fatal("glyph 'A' missing")
	}
	if g.Width != 5 || g.Height != 6 {
		t.Errorf("'A' size = %dx%d, want 5x6", g.Width, g.Height)
	}
	if g.Advance != 6 {
		t.Errorf("'A' advance = %d, want 6", g.Advance)
	}
	if len(g.Bitmap) != g.Stride()*g.Height {
		t.Errorf("'A' bitmap = %d bytes, want %d", len(g.Bitmap), g.Stride()*g.Height)
	}

	// Top row of 'A' is 0x70: pixels 1,2,3 set.
	if g.Bit(0, 0) || !g.Bit(1, 0) || !g.Bit(2, 0) || !g.Bit(3, 0) || g.Bit(4, 0) {
		t.Error("'A' top row does not match 0x70")
	}
}

func TestParseBDF_MetricsFallback(t *testing.T) {
	// No FONT_ASCENT/FONT_DESCENT: fall back to FONTBOUNDINGBOX.
	src := `STARTFONT 2.1
FONTBOUNDINGBOX 8 10 0 -2
STARTCHAR dot
ENCODING 46
DWIDTH 2 0
BBX 1 1 0 0
BITMAP
80
ENDCHAR
ENDFONT
`
	f, err := ParseBDF(strings.NewReader(src), "nometrics.bdf")
	if err != nil {
		t.Fatalf("ParseBDF() error = %v", err)
	}
	if f.Ascent != 8 || f.Descent != 2 {
		t.Errorf("fallback metrics = %d/%d, want 8/2", f.Ascent, f.Descent)
	}
}

func TestParseBDF_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no header", "FONT x\nENDFONT\n"},
		{"no glyphs", "STARTFONT 2.1\nENDFONT\n"},
		{"bad hex row", "STARTFONT 2.1\nSTARTCHAR x\nENCODING 65\nBBX 4 1 0 0\nBITMAP\nZZ\nENDCHAR\nENDFONT\n"},
		{"short bitmap", "STARTFONT 2.1\nSTARTCHAR x\nENCODING 65\nBBX 4 3 0 0\nBITMAP\n80\nENDCHAR\nENDFONT\n"},
		{"truncated glyph", "STARTFONT 2.1\nSTARTCHAR x\nENCODING 65\nBBX 4 1 0 0\nBITMAP\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBDF(strings.NewReader(tt.src), tt.name)
			if err == nil {
				t.Fatal("ParseBDF() error = nil, want DecodeError")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error type = %T, want *DecodeError", err)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	g := Placeholder()
	if g.Width != 6 || g.Height != 8 {
		t.Errorf("placeholder size = %dx%d, want 6x8", g.Width, g.Height)
	}
	if len(g.Bitmap) != g.Stride()*g.Height {
		t.Errorf("placeholder bitmap = %d bytes, want %d", len(g.Bitmap), g.Stride()*g.Height)
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !g.Bit(x, y) {
				t.Fatalf("placeholder pixel (%d,%d) unset, want filled box", x, y)
			}
		}
	}
}

func TestDefaultFont(t *testing.T) {
	f := DefaultFont()
	if f.Ascent != 7 {
		t.Errorf("default ascent = %d, want 7", f.Ascent)
	}
	for _, r := range "AZaz09 ~!" {
		if _, ok := f.Glyph(r); !ok {
			t.Errorf("default font missing glyph %q", r)
		}
	}
	g, _ := f.Glyph('A')
	if g.Width != 5 || g.Height != 7 || g.Advance != 6 {
		t.Errorf("default 'A' = %dx%d adv %d, want 5x7 adv 6", g.Width, g.Height, g.Advance)
	}
}
