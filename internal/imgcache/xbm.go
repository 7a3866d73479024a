package imgcache

import (
	"bytes"
	"regexp"
	"strconv"
)

// XBM-style bitmap text format: #define lines declaring width and
// height, followed by a hexadecimal byte array of packed 1-bpp pixel
// data, MSB-first per byte, row stride ceil(width/8).
var (
	xbmWidthRe  = regexp.MustCompile(`#define\s+\S*width\s+(\d+)`)
	xbmHeightRe = regexp.MustCompile(`#define\s+\S*height\s+(\d+)`)
	xbmByteRe   = regexp.MustCompile(`0[xX][0-9a-fA-F]{1,2}`)
)

// looksLikeXBM reports whether data resembles the bitmap text format.
func looksLikeXBM(data []byte) bool {
	return bytes.Contains(data, []byte("#define"))
}

// decodeXBM decodes the bitmap text format into a packed Bitmap.
func decodeXBM(path string, data []byte) (Bitmap, error) {
	width, ok := xbmInt(xbmWidthRe, data)
	if !ok || width <= 0 {
		return Bitmap{}, &DecodeError{Path: path, Reason: "missing or invalid width"}
	}
	height, ok := xbmInt(xbmHeightRe, data)
	if !ok || height <= 0 {
		return Bitmap{}, &DecodeError{Path: path, Reason: "missing or invalid height"}
	}

	stride := (width + 7) / 8
	need := stride * height

	tokens := xbmByteRe.FindAll(data, -1)
	if len(tokens) < need {
		return Bitmap{}, &DecodeError{
			Path:   path,
			Reason: "truncated pixel data: " + strconv.Itoa(len(tokens)) + " bytes, need " + strconv.Itoa(need),
		}
	}

	packed := make([]byte, need)
	for i := 0; i < need; i++ {
		v, err := strconv.ParseUint(string(tokens[i][2:]), 16, 8)
		if err != nil {
			return Bitmap{}, &DecodeError{Path: path, Reason: "bad byte " + string(tokens[i]), Err: err}
		}
		packed[i] = byte(v)
	}

	return Bitmap{Width: width, Height: height, Data: packed}, nil
}

func xbmInt(re *regexp.Regexp, data []byte) (int, bool) {
	m := re.FindSubmatch(data)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, false
	}
	return n, true
}
