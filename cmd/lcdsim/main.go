// Package main is the entry point for the lcdsim display simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/lcdsim/internal/app"
	"github.com/dshills/lcdsim/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, logPath, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts := []app.Option{}
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			return 1
		}
		defer logFile.Close()
		opts = append(opts, app.WithLogOutput(logFile))
	}

	application, err := app.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (config.Config, string, error) {
	var (
		configPath  string
		logPath     string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "lcdsim.toml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "lcdsim.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&logPath, "log", "", "Write logs to a file instead of stderr")

	width := flag.Int("width", 0, "Display width in pixels")
	height := flag.Int("height", 0, "Display height in pixels")
	scale := flag.Float64("scale", 0, "Terminal pixel scale factor")
	aspect := flag.Float64("aspect", 0, "Vertical aspect correction factor")
	invert := flag.Bool("invert", false, "Invert display polarity")
	poll := flag.Duration("poll", 0, "Script poll interval")
	fontRoot := flag.String("fonts", "", "Directory searched for BDF fonts")
	exportDir := flag.String("export", "", "Directory for screenshots and recordings")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lcdsim - monochrome LCD simulator with live script reload\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lcdsim [options] script.lua\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lcdsim demo.lua                 Run a drawing script\n")
		fmt.Fprintf(os.Stderr, "  lcdsim -scale 2 demo.lua        Double-size pixels\n")
		fmt.Fprintf(os.Stderr, "  lcdsim -width 256 -height 128 demo.lua\n")
		fmt.Fprintf(os.Stderr, "\nKeys: q quit, i invert, s screenshot, g record GIF, c clear cache\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lcdsim %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, "", err
	}

	// Command-line flags override the configuration file.
	if flag.NArg() > 0 {
		cfg.SourcePath = flag.Arg(0)
	}
	if *width > 0 {
		cfg.Display.Width = *width
	}
	if *height > 0 {
		cfg.Display.Height = *height
	}
	if *scale > 0 {
		cfg.Display.Scale = *scale
	}
	if *aspect > 0 {
		cfg.Display.Aspect = *aspect
	}
	if *invert {
		cfg.Display.Invert = true
	}
	if *poll > 0 {
		cfg.Reload.PollInterval = config.Duration(*poll)
	}
	if *fontRoot != "" {
		cfg.Fonts.Root = *fontRoot
	}
	if *exportDir != "" {
		cfg.ExportDir = *exportDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		return cfg, "", err
	}
	return cfg, logPath, nil
}
