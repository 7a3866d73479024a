package display

import "sync"

// Null is a headless backend that records what it is handed. Used by
// tests and by the reload loop's own tests. Safe for concurrent use so
// tests can inspect it while the loop runs.
type Null struct {
	mu       sync.Mutex
	frames   []Frame
	statuses []string
	events   chan Event
}

// NewNull creates a null backend.
func NewNull() *Null {
	return &Null{events: make(chan Event, 8)}
}

// Init implements Backend.
func (n *Null) Init() error { return nil }

// Present implements Backend.
func (n *Null) Present(frame Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frames = append(n.frames, frame)
}

// SetStatus implements Backend.
func (n *Null) SetStatus(status string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
}

// Events implements Backend.
func (n *Null) Events() <-chan Event { return n.events }

// Fini implements Backend.
func (n *Null) Fini() {}

// Emit injects a user command, for tests driving the loop.
func (n *Null) Emit(ev Event) {
	n.events <- ev
}

// Frames returns a copy of every presented frame in order.
func (n *Null) Frames() []Frame {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Frame, len(n.frames))
	copy(out, n.frames)
	return out
}

// LastFrame returns the most recently presented frame, or nil.
func (n *Null) LastFrame() Frame {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.frames) == 0 {
		return nil
	}
	return n.frames[len(n.frames)-1]
}

// Statuses returns a copy of every status line set on the backend.
func (n *Null) Statuses() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.statuses))
	copy(out, n.statuses)
	return out
}
