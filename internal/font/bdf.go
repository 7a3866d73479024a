package font

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
)

// ParseBDF parses a BDF (Bitmap Distribution Format) font definition.
// The source string is used only for error reporting and the resulting
// font's Name.
//
// Only the properties the renderer needs are consumed: the font-wide
// ascent/descent (falling back to FONTBOUNDINGBOX when the properties
// are absent) and, per glyph, ENCODING, DWIDTH, BBX and the BITMAP hex
// rows. Unknown lines are skipped, which keeps the parser tolerant of
// the many BDF producer dialects.
func ParseBDF(r io.Reader, source string) (*Font, error) {
	p := &bdfParser{
		scanner: bufio.NewScanner(r),
		source:  source,
		font: &Font{
			Name:   source,
			Glyphs: make(map[rune]Glyph),
		},
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.font, nil
}

type bdfParser struct {
	scanner *bufio.Scanner
	source  string
	line    int
	font    *Font

	// FONTBOUNDINGBOX fallback for missing ascent/descent properties.
	boxHeight  int
	boxYOffset int
	haveAscent bool
	haveDesc   bool
}

func (p *bdfParser) next() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	p.line++
	return strings.TrimSpace(p.scanner.Text()), true
}

func (p *bdfParser) errorf(msg string) error {
	return &DecodeError{Source: p.source, Line: p.line, Message: msg}
}

func (p *bdfParser) parse() error {
	sawHeader := false
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "STARTFONT":
			sawHeader = true
		case "FONT_ASCENT":
			p.font.Ascent = atoiField(fields, 1)
			p.haveAscent = true
		case "FONT_DESCENT":
			p.font.Descent = atoiField(fields, 1)
			p.haveDesc = true
		case "FONTBOUNDINGBOX":
			if len(fields) >= 5 {
				p.boxHeight = atoiField(fields, 2)
				p.boxYOffset = atoiField(fields, 4)
			}
		case "STARTCHAR":
			if err := p.parseChar(); err != nil {
				return err
			}
		case "ENDFONT":
			return p.finish(sawHeader)
		}
	}

	if err := p.scanner.Err(); err != nil {
		return &DecodeError{Source: p.source, Message: err.Error()}
	}
	return p.finish(sawHeader)
}

func (p *bdfParser) finish(sawHeader bool) error {
	if !sawHeader {
		return &DecodeError{Source: p.source, Message: "missing STARTFONT header"}
	}
	if len(p.font.Glyphs) == 0 {
		return &DecodeError{Source: p.source, Message: "font defines no glyphs"}
	}
	if !p.haveAscent {
		p.font.Ascent = p.boxHeight + p.boxYOffset
	}
	if !p.haveDesc {
		p.font.Descent = -p.boxYOffset
	}
	if p.font.Ascent <= 0 {
		p.font.Ascent = 8
	}
	if p.font.Descent < 0 {
		p.font.Descent = 0
	}
	return nil
}

// parseChar consumes one STARTCHAR..ENDCHAR block.
func (p *bdfParser) parseChar() error {
	var (
		encoding = -1
		advance  int
		g        Glyph
		haveBBX  bool
	)

	for {
		line, ok := p.next()
		if !ok {
			return p.errorf("unexpected end of file inside glyph")
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "ENCODING":
			encoding = atoiField(fields, 1)
		case "DWIDTH":
			advance = atoiField(fields, 1)
		case "BBX":
			if len(fields) < 5 {
				return p.errorf("malformed BBX")
			}
			g.Width = atoiField(fields, 1)
			g.Height = atoiField(fields, 2)
			g.XOffset = atoiField(fields, 3)
			g.YOffset = atoiField(fields, 4)
			haveBBX = true
		case "BITMAP":
			if !haveBBX {
				return p.errorf("BITMAP before BBX")
			}
			if err := p.parseBitmap(&g); err != nil {
				return err
			}
		case "ENDCHAR":
			if encoding >= 0 && haveBBX {
				if g.Bitmap == nil {
					g.Bitmap = make([]byte, g.Stride()*g.Height)
				}
				if advance == 0 {
					advance = g.Width + g.XOffset
				}
				g.Advance = advance
				p.font.Glyphs[rune(encoding)] = g
			}
			return nil
		}
	}
}

// parseBitmap reads the hex rows following a BITMAP keyword. BDF pads
// each row's hex data to a whole number of bytes; rows are normalized to
// the glyph's ceil(Width/8) stride.
func (p *bdfParser) parseBitmap(g *Glyph) error {
	stride := g.Stride()
	g.Bitmap = make([]byte, 0, stride*g.Height)

	for row := 0; row < g.Height; row++ {
		line, ok := p.next()
		if !ok {
			return p.errorf("unexpected end of file inside BITMAP")
		}
		if line == "ENDCHAR" {
			return p.errorf("BITMAP shorter than BBX height")
		}
		raw, err := hex.DecodeString(line)
		if err != nil {
			return p.errorf("bad bitmap row " + strconv.Quote(line))
		}
		switch {
		case len(raw) < stride:
			padded := make([]byte, stride)
			copy(padded, raw)
			raw = padded
		case len(raw) > stride:
			raw = raw[:stride]
		}
		g.Bitmap = append(g.Bitmap, raw...)
	}
	return nil
}

func atoiField(fields []string, i int) int {
	if i >= len(fields) {
		return 0
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0
	}
	return n
}
