package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Terminal renders frames into a terminal through tcell. Each LCD
// pixel is magnified by the configured scale and packed two rows per
// terminal cell using the upper-half-block rune, which keeps the
// emulated pixels roughly square.
type Terminal struct {
	mu sync.Mutex

	screen tcell.Screen

	// Pixel magnification per axis, derived from scale and aspect.
	scaleX int
	scaleY int

	invert bool
	status string
	last   Frame

	events chan Event
	done   chan struct{}

	// Presentation times within the last second, for the FPS readout.
	frameTimes []time.Time
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithScale sets the base pixel magnification and the per-axis aspect
// ratio (Y over X). Values are rounded to whole cells with a minimum
// of 1.
func WithScale(scale, aspect float64) TerminalOption {
	return func(t *Terminal) {
		if scale <= 0 {
			scale = 1
		}
		if aspect <= 0 {
			aspect = 1
		}
		t.scaleX = max(1, int(scale+0.5))
		t.scaleY = max(1, int(scale*aspect+0.5))
	}
}

// WithInvert sets the initial display polarity.
func WithInvert(on bool) TerminalOption {
	return func(t *Terminal) { t.invert = on }
}

// NewTerminal creates a terminal backend on the current tty.
func NewTerminal(opts ...TerminalOption) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, opts...), nil
}

// NewTerminalWithScreen creates a terminal backend over an existing
// tcell screen, used by tests with a simulation screen.
func NewTerminalWithScreen(screen tcell.Screen, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen: screen,
		scaleX: 1,
		scaleY: 1,
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init initializes the screen and starts the key-event reader.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.Clear()
	go t.readEvents()
	return nil
}

// Fini tears down the screen. Safe to call once.
func (t *Terminal) Fini() {
	close(t.done)
	t.screen.Fini()
}

// Events returns the user-command channel.
func (t *Terminal) Events() <-chan Event {
	return t.events
}

// Present displays a frame and updates the FPS readout.
func (t *Terminal) Present(frame Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = frame
	now := time.Now()
	t.frameTimes = append(t.frameTimes, now)
	cutoff := now.Add(-time.Second)
	for len(t.frameTimes) > 0 && t.frameTimes[0].Before(cutoff) {
		t.frameTimes = t.frameTimes[1:]
	}

	t.draw()
}

// SetStatus updates the status line.
func (t *Terminal) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	t.draw()
}

// draw renders the last frame plus the status line. Caller holds mu.
func (t *Terminal) draw() {
	on, off := tcell.ColorWhite, tcell.ColorBlack
	if t.invert {
		on, off = off, on
	}

	if t.last != nil {
		cellsX := t.last.Width() * t.scaleX
		cellsY := (t.last.Height()*t.scaleY + 1) / 2
		for cy := 0; cy < cellsY; cy++ {
			for cx := 0; cx < cellsX; cx++ {
				upper := t.pixelColor(cx, 2*cy, on, off)
				lower := t.pixelColor(cx, 2*cy+1, on, off)
				style := tcell.StyleDefault.Foreground(upper).Background(lower)
				t.screen.SetContent(cx, cy, '▀', nil, style)
			}
		}
	}

	t.drawStatus()
	t.screen.Show()
}

// pixelColor maps a magnified display coordinate back to a plane pixel.
func (t *Terminal) pixelColor(dx, dy int, on, off tcell.Color) tcell.Color {
	x := dx / t.scaleX
	y := dy / t.scaleY
	if t.last.Pixel(x, y) != 0 {
		return on
	}
	return off
}

// drawStatus renders the FPS readout and status text under the plane.
func (t *Terminal) drawStatus() {
	row := 0
	if t.last != nil {
		row = (t.last.Height()*t.scaleY + 1) / 2
	}

	line := fmt.Sprintf("%d FPS", len(t.frameTimes))
	if t.status != "" {
		line += "  " + t.status
	}

	width, _ := t.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(line) {
			r = rune(line[x])
		}
		t.screen.SetContent(x, row, r, nil, style)
	}
}

// readEvents translates tcell input into backend events until Fini.
func (t *Terminal) readEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		select {
		case <-t.done:
			return
		default:
		}

		switch e := ev.(type) {
		case *tcell.EventResize:
			t.mu.Lock()
			t.screen.Sync()
			t.draw()
			t.mu.Unlock()
		case *tcell.EventKey:
			t.handleKey(e)
		}
	}
}

func (t *Terminal) handleKey(e *tcell.EventKey) {
	switch {
	case e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC:
		t.emit(EventQuit)
	case e.Key() != tcell.KeyRune:
		return
	case e.Rune() == 'q':
		t.emit(EventQuit)
	case e.Rune() == 'i':
		t.mu.Lock()
		t.invert = !t.invert
		t.draw()
		t.mu.Unlock()
		t.emit(EventInvertToggle)
	case e.Rune() == 'c':
		t.emit(EventClearCache)
	case e.Rune() == 's':
		t.emit(EventScreenshot)
	case e.Rune() == 'g':
		t.emit(EventRecordToggle)
	}
}

// emit forwards an event without blocking the input reader.
func (t *Terminal) emit(ev Event) {
	select {
	case t.events <- ev:
	default:
	}
}
