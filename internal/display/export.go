package display

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// monoPalette is the two-color palette used for exported images.
var monoPalette = color.Palette{
	color.Black,
	color.White,
}

// Exporter writes screenshots and GIF recordings of presented frames.
// Filenames carry a per-session identifier so repeated runs in the
// same directory never collide.
type Exporter struct {
	dir     string
	session string
	seq     int

	recording bool
	frames    []*image.Paletted
	delays    []int
}

// NewExporter creates an exporter writing into dir (the working
// directory when empty).
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{
		dir:     dir,
		session: uuid.NewString()[:8],
	}
}

// WritePNG writes a single frame as a PNG file and returns its path.
func (e *Exporter) WritePNG(frame Frame) (string, error) {
	e.seq++
	path := filepath.Join(e.dir, fmt.Sprintf("lcdsim-%s-%03d.png", e.session, e.seq))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, frameToPaletted(frame)); err != nil {
		return "", err
	}
	return path, nil
}

// Recording reports whether a GIF recording is in progress.
func (e *Exporter) Recording() bool { return e.recording }

// StartRecording begins collecting frames for a GIF.
func (e *Exporter) StartRecording() {
	e.recording = true
	e.frames = nil
	e.delays = nil
}

// AddFrame appends a frame to the active recording. No-op when not
// recording.
func (e *Exporter) AddFrame(frame Frame, delay time.Duration) {
	if !e.recording {
		return
	}
	e.frames = append(e.frames, frameToPaletted(frame))
	e.delays = append(e.delays, int(delay/(10*time.Millisecond))) // GIF ticks are 1/100s
}

// StopRecording finishes the recording and writes the GIF, returning
// its path. Recording with no frames writes nothing.
func (e *Exporter) StopRecording() (string, error) {
	e.recording = false
	if len(e.frames) == 0 {
		return "", nil
	}

	e.seq++
	path := filepath.Join(e.dir, fmt.Sprintf("lcdsim-%s-%03d.gif", e.session, e.seq))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	anim := &gif.GIF{Image: e.frames, Delay: e.delays}
	e.frames = nil
	e.delays = nil
	if err := gif.EncodeAll(f, anim); err != nil {
		return "", err
	}
	return path, nil
}

// frameToPaletted converts a 1-bpp frame to a paletted image.
func frameToPaletted(frame Frame) *image.Paletted {
	w, h := frame.Width(), frame.Height()
	img := image.NewPaletted(image.Rect(0, 0, w, h), monoPalette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetColorIndex(x, y, frame.Pixel(x, y))
		}
	}
	return img
}
