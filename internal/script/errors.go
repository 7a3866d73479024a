package script

import (
	"errors"
	"fmt"
)

// ErrNoEntryPoint is returned when a script defines neither draw nor
// demo_draw.
var ErrNoEntryPoint = errors.New("no draw(lcd, t) or demo_draw(lcd, t) function found")

// ErrProgramClosed is returned when calling into a closed program.
var ErrProgramClosed = errors.New("script program is closed")

// LoadError reports a script that failed to load: unreadable, a syntax
// error, an error while executing the top level, or a missing entry
// point. Load errors are non-fatal; the loop keeps the previously
// loaded program.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FrameError reports a failure inside a single frame's draw call. The
// frame is skipped and the loop continues.
type FrameError struct {
	Entry string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("calling %s: %v", e.Entry, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
