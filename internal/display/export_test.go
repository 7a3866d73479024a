package display

import (
	"image/gif"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/dshills/lcdsim/internal/fb"
)

func testFrame() *fb.FrameBuffer {
	f := fb.New(16, 8)
	f.SetPixel(1, 1, 1)
	f.SetPixel(14, 6, 1)
	return f
}

func TestExporter_WritePNG(t *testing.T) {
	e := NewExporter(t.TempDir())

	path, err := e.WritePNG(testFrame())
	if err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("exported PNG undecodable: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("exported size = %v, want 16x8", img.Bounds())
	}

	r, g, b, _ := img.At(1, 1).RGBA()
	if r == 0 && g == 0 && b == 0 {
		t.Error("set pixel exported black, want white")
	}
}

func TestExporter_UniqueNames(t *testing.T) {
	e := NewExporter(t.TempDir())

	p1, err := e.WritePNG(testFrame())
	if err != nil {
		t.Fatal(err)
	}
	p2, err := e.WritePNG(testFrame())
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Errorf("consecutive screenshots share the path %s", p1)
	}
}

func TestExporter_GIFRecording(t *testing.T) {
	e := NewExporter(t.TempDir())

	// Frames added outside a recording are dropped.
	e.AddFrame(testFrame(), 100*time.Millisecond)

	e.StartRecording()
	if !e.Recording() {
		t.Fatal("Recording() = false after StartRecording")
	}
	e.AddFrame(testFrame(), 100*time.Millisecond)
	e.AddFrame(testFrame(), 100*time.Millisecond)

	path, err := e.StopRecording()
	if err != nil {
		t.Fatalf("StopRecording() error = %v", err)
	}
	if e.Recording() {
		t.Error("Recording() = true after StopRecording")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("exported GIF undecodable: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("GIF frames = %d, want 2", len(anim.Image))
	}
}

func TestExporter_EmptyRecording(t *testing.T) {
	e := NewExporter(t.TempDir())

	e.StartRecording()
	path, err := e.StopRecording()
	if err != nil {
		t.Fatalf("StopRecording() error = %v", err)
	}
	if path != "" {
		t.Errorf("empty recording wrote %s, want nothing", path)
	}
}
