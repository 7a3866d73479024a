package app

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/lcdsim/internal/config"
	"github.com/dshills/lcdsim/internal/display"
	"github.com/dshills/lcdsim/internal/font"
	"github.com/dshills/lcdsim/internal/imgcache"
	"github.com/dshills/lcdsim/internal/reload"
)

// Application wires the caches, the script loop and the display
// backend together and runs them until shutdown.
type Application struct {
	cfg     config.Config
	logger  *Logger
	backend display.Backend
	loop    *reload.Loop
}

// Option configures an Application.
type Option func(*options)

type options struct {
	backend   display.Backend
	logOutput io.Writer
}

// WithBackend replaces the default terminal backend. Used by tests and
// headless runs.
func WithBackend(b display.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogOutput redirects log output.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// New builds an application from a validated configuration.
func New(cfg config.Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.LogLevel),
		Output: o.logOutput,
		Prefix: "lcdsim",
	})

	fontLog := logger.WithComponent("font")
	fontOpts := []font.CacheOption{
		font.WithErrorFunc(func(name string, err error) {
			fontLog.Warn("font %s unavailable, using fallback: %v", name, err)
		}),
	}
	if cfg.Fonts.CacheDir != "" {
		fontOpts = append(fontOpts, font.WithDiskCache(cfg.Fonts.CacheDir))
	}
	fonts := font.NewCache(font.DirProvider{Root: cfg.Fonts.Root}, fontOpts...)

	images := imgcache.New(cfg.Images.CacheSize)

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = display.NewTerminal(
			display.WithScale(cfg.Display.Scale, cfg.Display.Aspect),
			display.WithInvert(cfg.Display.Invert),
		)
		if err != nil {
			return nil, fmt.Errorf("create terminal backend: %w", err)
		}
	}

	loop, err := reload.New(reload.Config{
		SourcePath:   cfg.SourcePath,
		Width:        cfg.Display.Width,
		Height:       cfg.Display.Height,
		PollInterval: cfg.Reload.PollInterval.Std(),
		ExportDir:    cfg.ExportDir,
	}, backend, fonts, images, logger.WithComponent("reload"))
	if err != nil {
		return nil, err
	}

	return &Application{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		loop:    loop,
	}, nil
}

// Logger returns the application logger.
func (a *Application) Logger() *Logger { return a.logger }

// Run initializes the display and drives the reload loop until the
// context is canceled or the user quits.
func (a *Application) Run(ctx context.Context) error {
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer a.backend.Fini()

	a.logger.Info("watching %s (%dx%d plane)",
		a.cfg.SourcePath, a.cfg.Display.Width, a.cfg.Display.Height)

	return a.loop.Run(ctx)
}
