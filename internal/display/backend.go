// Package display presents finished framebuffers on screen and exports
// them to image files.
//
// The reload loop drives a Backend: it hands over one framebuffer per
// draw cycle and consumes the backend's key events between ticks. The
// terminal backend renders through tcell; the null backend records
// frames for tests and headless use.
package display

// Event is a user command emitted by a backend.
type Event int

const (
	// EventQuit requests loop shutdown (window close, q, Esc).
	EventQuit Event = iota

	// EventInvertToggle flips the displayed polarity.
	EventInvertToggle

	// EventClearCache clears the decoded-bitmap cache.
	EventClearCache

	// EventScreenshot writes the current frame to a PNG file.
	EventScreenshot

	// EventRecordToggle starts or finishes GIF recording.
	EventRecordToggle
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventQuit:
		return "quit"
	case EventInvertToggle:
		return "invert"
	case EventClearCache:
		return "clear-cache"
	case EventScreenshot:
		return "screenshot"
	case EventRecordToggle:
		return "record"
	default:
		return "unknown"
	}
}

// Backend receives finished frames for presentation.
type Backend interface {
	// Init prepares the display. It must be called before Present.
	Init() error

	// Present displays a finished framebuffer. The backend owns the
	// passed snapshot.
	Present(frame Frame)

	// SetStatus updates the status line shown alongside the plane.
	SetStatus(status string)

	// Events returns the backend's user-command channel. No events
	// are delivered after Fini.
	Events() <-chan Event

	// Fini tears the display down.
	Fini()
}

// Frame is the read surface a backend needs from a framebuffer.
type Frame interface {
	Width() int
	Height() int
	Pixel(x, y int) byte
}
