// Package reload drives the live-reload execution loop: it polls the
// user's drawing script for changes, reloads it when its modification
// time advances, and invokes the active entry point against a fresh
// framebuffer once per tick.
//
// Every error originating from the script or from external files is
// contained here; only a missing source file at startup is fatal.
package reload

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dshills/lcdsim/internal/display"
	"github.com/dshills/lcdsim/internal/fb"
	"github.com/dshills/lcdsim/internal/font"
	"github.com/dshills/lcdsim/internal/imgcache"
	"github.com/dshills/lcdsim/internal/script"
	"github.com/dshills/lcdsim/internal/surface"
)

// DefaultPollInterval is the default tick period.
const DefaultPollInterval = 200 * time.Millisecond

// Logger is the subset of the application logger the loop needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// State is the loop's lifecycle state.
type State int

const (
	// StateIdle is the state before the first load attempt.
	StateIdle State = iota

	// StateLoaded means an entry point is active and ready to draw.
	StateLoaded

	// StateRunning means a frame invocation is in progress.
	StateRunning

	// StateFailed means no entry point has ever loaded successfully.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config configures a Loop.
type Config struct {
	// SourcePath is the user drawing script. It must exist when the
	// loop is created.
	SourcePath string

	// Width and Height are the framebuffer dimensions per cycle.
	Width  int
	Height int

	// PollInterval is the tick period. Zero selects the default.
	PollInterval time.Duration

	// ExportDir receives screenshots and GIF recordings. Empty means
	// the working directory.
	ExportDir string
}

// Loop owns one draw cycle per tick: change detection, script reload,
// frame invocation and the hand-off to the display backend. It runs on
// a single goroutine; the caches it touches need no locking.
type Loop struct {
	cfg      Config
	engine   *script.Engine
	fonts    *font.Cache
	images   *imgcache.Cache
	backend  display.Backend
	exporter *display.Exporter
	logger   Logger
	notify   *notifier

	state       State
	program     *script.Program
	lastAttempt time.Time
	lastFrame   *fb.FrameBuffer
	started     time.Time

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// New creates a loop for the given script. A source file that does not
// exist at startup is a configuration error and fails immediately.
func New(cfg Config, backend display.Backend, fonts *font.Cache, images *imgcache.Cache, logger Logger) (*Loop, error) {
	if _, err := os.Stat(cfg.SourcePath); err != nil {
		return nil, fmt.Errorf("source file %s: %w", cfg.SourcePath, err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	l := &Loop{
		cfg:      cfg,
		fonts:    fonts,
		images:   images,
		backend:  backend,
		exporter: display.NewExporter(cfg.ExportDir),
		logger:   logger,
		state:    StateIdle,
		now:      time.Now,
	}
	l.engine = script.NewEngine(script.WithPrintf(func(format string, args ...any) {
		logger.Info("script: "+format, args...)
	}))

	// File-change notifications only accelerate detection; the loop
	// stays tick-driven and falls back to pure mtime polling.
	n, err := newNotifier(cfg.SourcePath)
	if err != nil {
		logger.Debug("change notifications unavailable, polling only: %v", err)
	} else {
		l.notify = n
	}

	return l, nil
}

// State returns the loop state.
func (l *Loop) State() State { return l.state }

// LastFrame returns the most recently rendered framebuffer, or nil.
func (l *Loop) LastFrame() *fb.FrameBuffer { return l.lastFrame }

// Run ticks until the context is canceled or the backend requests
// shutdown. Cancellation is cooperative: it is observed between ticks,
// never inside a drawing call.
func (l *Loop) Run(ctx context.Context) error {
	l.started = l.now()
	defer l.close()

	l.Tick()

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.backend.Events():
			if !l.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs one cycle: reload check, then frame invocation.
func (l *Loop) Tick() {
	l.maybeReload()
	l.runFrame()
}

func (l *Loop) close() {
	if l.notify != nil {
		l.notify.close()
	}
	if l.program != nil {
		l.program.Close()
	}
}

// maybeReload re-attempts loading when the source has changed since the
// last attempt. A failed reload keeps the previously active entry
// point so the display does not go blank on a typo.
func (l *Loop) maybeReload() {
	notified := l.notify != nil && l.notify.consumeDirty()

	info, err := os.Stat(l.cfg.SourcePath)
	if err != nil {
		// Source vanished after startup: keep whatever is loaded.
		if l.program == nil && l.state != StateFailed {
			l.state = StateFailed
			l.logger.Warn("waiting for %s", l.cfg.SourcePath)
			l.showMessage("waiting for source", l.cfg.SourcePath)
		}
		return
	}

	if !notified && info.ModTime().Equal(l.lastAttempt) {
		return
	}
	l.lastAttempt = info.ModTime()

	program, err := l.engine.Load(l.cfg.SourcePath)
	if err != nil {
		l.logger.Error("load failed: %v", err)
		l.backend.SetStatus("load error (last good kept)")
		if l.program == nil {
			l.state = StateFailed
			l.showMessage("load error", err.Error())
		}
		return
	}

	// Atomic from the frame's point of view: the swap happens between
	// invocations, never during one.
	if l.program != nil {
		l.program.Close()
	}
	l.program = program
	l.state = StateLoaded
	l.logger.Info("loaded %s (%s)", l.cfg.SourcePath, program.Entry())
	l.backend.SetStatus("loaded " + l.cfg.SourcePath)
}

// runFrame invokes the active entry point against a fresh framebuffer
// with the draw state reset. Errors are logged and the previous frame
// stays on screen.
func (l *Loop) runFrame() {
	if l.program == nil {
		return
	}

	l.state = StateRunning
	defer func() { l.state = StateLoaded }()

	buf := fb.New(l.cfg.Width, l.cfg.Height)
	surf := surface.New(buf, l.fonts, l.images,
		surface.WithSendFunc(l.present),
		surface.WithImageErrorFunc(func(path string, err error) {
			l.logger.Warn("image %s: %v", path, err)
		}),
	)

	elapsed := l.now().Sub(l.started).Seconds()
	if err := l.program.CallFrame(surf, elapsed); err != nil {
		l.logger.Error("frame failed: %v", err)
		l.backend.SetStatus("frame error (previous frame kept)")
	}
}

// present receives the framebuffer from the script's sendBuffer call.
func (l *Loop) present(frame *fb.FrameBuffer) {
	l.lastFrame = frame
	l.backend.Present(frame)
	l.exporter.AddFrame(frame, l.cfg.PollInterval)
}

// handleEvent processes one backend command; false stops the loop.
func (l *Loop) handleEvent(ev display.Event) bool {
	switch ev {
	case display.EventQuit:
		l.logger.Info("shutdown requested")
		return false
	case display.EventClearCache:
		l.images.Clear()
		l.logger.Info("bitmap cache cleared")
	case display.EventScreenshot:
		if l.lastFrame == nil {
			return true
		}
		path, err := l.exporter.WritePNG(l.lastFrame)
		if err != nil {
			l.logger.Error("screenshot failed: %v", err)
			return true
		}
		l.logger.Info("screenshot written to %s", path)
	case display.EventRecordToggle:
		if l.exporter.Recording() {
			path, err := l.exporter.StopRecording()
			if err != nil {
				l.logger.Error("recording failed: %v", err)
				return true
			}
			if path != "" {
				l.logger.Info("recording written to %s", path)
			}
		} else {
			l.exporter.StartRecording()
			l.logger.Info("recording started")
		}
	case display.EventInvertToggle:
		l.logger.Debug("display polarity toggled")
	}
	return true
}

// showMessage renders a text card in place of script output, used for
// load failures before any entry point is active.
func (l *Loop) showMessage(lines ...string) {
	buf := fb.New(l.cfg.Width, l.cfg.Height)
	surf := surface.New(buf, l.fonts, l.images, surface.WithSendFunc(l.present))
	surf.SetDrawColor(1)

	y := 12
	for _, line := range lines {
		surf.DrawStr(2, y, line)
		y += 10
	}
	surf.SendBuffer()
}
