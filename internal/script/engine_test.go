package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/lcdsim/internal/fb"
	"github.com/dshills/lcdsim/internal/font"
	"github.com/dshills/lcdsim/internal/imgcache"
	"github.com/dshills/lcdsim/internal/surface"
)

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draw.lua")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFrameSurface(w, h int) *surface.Surface {
	return surface.New(fb.New(w, h), font.NewCache(font.DirProvider{}), imgcache.New(4))
}

func TestLoad_Draw(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd.drawBox(0, 0, 4, 4)
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer p.Close()

	if p.Entry() != "draw" {
		t.Errorf("Entry() = %q, want \"draw\"", p.Entry())
	}

	surf := newFrameSurface(16, 16)
	if err := p.CallFrame(surf, 0); err != nil {
		t.Fatalf("CallFrame() error = %v", err)
	}
	if surf.Buffer().Pixel(2, 2) != 1 {
		t.Error("script's drawBox did not reach the framebuffer")
	}
}

func TestLoad_DemoDrawFallback(t *testing.T) {
	path := writeScript(t, `
function demo_draw(lcd, t)
    lcd.drawPixel(1, 1)
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer p.Close()

	if p.Entry() != "demo_draw" {
		t.Errorf("Entry() = %q, want \"demo_draw\"", p.Entry())
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	path := writeScript(t, "function draw(lcd, t\n  broken(\n")
	e := NewEngine()

	_, err := e.Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want LoadError")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("error type = %T, want *LoadError", err)
	}
}

func TestLoad_NoEntryPoint(t *testing.T) {
	path := writeScript(t, "local x = 1\n")
	e := NewEngine()

	_, err := e.Load(path)
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("Load() error = %v, want ErrNoEntryPoint", err)
	}
}

func TestCallFrame_RuntimeError(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    error("boom")
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	err = p.CallFrame(newFrameSurface(8, 8), 0)
	if err == nil {
		t.Fatal("CallFrame() error = nil, want FrameError")
	}
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Errorf("error type = %T, want *FrameError", err)
	}

	// The program must stay callable after a failed frame.
	err = p.CallFrame(newFrameSurface(8, 8), 0)
	if errors.Is(err, ErrProgramClosed) {
		t.Error("failed frame closed the program")
	}
}

func TestCallFrame_StatePersists(t *testing.T) {
	path := writeScript(t, `
count = 0
function draw(lcd, t)
    count = count + 1
    lcd.drawHLine(0, 0, count)
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	first := newFrameSurface(16, 16)
	if err := p.CallFrame(first, 0); err != nil {
		t.Fatal(err)
	}
	second := newFrameSurface(16, 16)
	if err := p.CallFrame(second, 0); err != nil {
		t.Fatal(err)
	}

	if first.Buffer().Pixel(1, 0) != 0 {
		t.Error("first frame drew more than one pixel; globals not starting fresh")
	}
	if second.Buffer().Pixel(1, 0) != 1 {
		t.Error("second frame lost script state; count did not persist")
	}
}

func TestCallFrame_TimeArgument(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd.drawHLine(0, 0, math.floor(t))
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	surf := newFrameSurface(16, 16)
	if err := p.CallFrame(surf, 3.7); err != nil {
		t.Fatal(err)
	}
	if surf.Buffer().Pixel(2, 0) != 1 || surf.Buffer().Pixel(3, 0) != 0 {
		t.Error("elapsed time argument did not reach the script")
	}
}

func TestCallFrame_ColonSyntax(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd:drawBox(0, 0, 2, 2)
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	surf := newFrameSurface(8, 8)
	if err := p.CallFrame(surf, 0); err != nil {
		t.Fatalf("CallFrame() error = %v", err)
	}
	if surf.Buffer().Pixel(1, 1) != 1 {
		t.Error("colon-syntax call did not draw")
	}
}

func TestCallFrame_UndersizedBitmapRaises(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd.drawBitmap1(0, 0, 16, 2, {0xFF})
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	err = p.CallFrame(newFrameSurface(16, 16), 0)
	if err == nil {
		t.Fatal("undersized bitmap did not surface an error to the caller")
	}
}

func TestCallFrame_BitmapFromTable(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd.drawBitmap1(0, 0, 8, 1, {0x81})
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	surf := newFrameSurface(8, 8)
	if err := p.CallFrame(surf, 0); err != nil {
		t.Fatal(err)
	}
	if surf.Buffer().Pixel(0, 0) != 1 || surf.Buffer().Pixel(7, 0) != 1 || surf.Buffer().Pixel(1, 0) != 0 {
		t.Error("table bitmap bits not blitted MSB-first")
	}
}

func TestCallFrame_RoundedPrimitives(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd.drawRBox(2, 2, 20, 10, 3)
    lcd.drawRFrame(0, 0, 32, 16, 4)
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	surf := newFrameSurface(32, 16)
	if err := p.CallFrame(surf, 0); err != nil {
		t.Fatalf("CallFrame() error = %v", err)
	}
	if surf.Buffer().Pixel(12, 7) != 1 {
		t.Error("drawRBox interior not filled")
	}
	if surf.Buffer().Pixel(2, 2) != 0 {
		t.Error("drawRBox square corner filled, want rounded away")
	}
	if surf.Buffer().Pixel(16, 0) != 1 {
		t.Error("drawRFrame top edge not drawn")
	}
}

func TestCallFrame_DrawBitmapAlias(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
    lcd.drawBitmap(0, 0, 8, 1, {0x81})
end
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	surf := newFrameSurface(8, 8)
	if err := p.CallFrame(surf, 0); err != nil {
		t.Fatalf("CallFrame() error = %v", err)
	}
	if surf.Buffer().Pixel(0, 0) != 1 || surf.Buffer().Pixel(7, 0) != 1 {
		t.Error("drawBitmap alias did not blit")
	}
}

func TestSandbox_NoHostAccess(t *testing.T) {
	path := writeScript(t, `
function draw(lcd, t)
end
has_io = io ~= nil
has_os = os ~= nil
`)
	e := NewEngine()
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if p.state.GetGlobal("has_io").String() == "true" {
		t.Error("io library open in sandbox")
	}
	if p.state.GetGlobal("has_os").String() == "true" {
		t.Error("os library open in sandbox")
	}
}

func TestEngine_PrintRouted(t *testing.T) {
	var logged int
	e := NewEngine(WithPrintf(func(format string, args ...any) { logged++ }))

	path := writeScript(t, `
print("hello")
function draw(lcd, t)
end
`)
	p, err := e.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if logged != 1 {
		t.Errorf("print() routed %d times, want 1", logged)
	}
}
