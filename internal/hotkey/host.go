package hotkey

import "errors"

// Handle is an opaque native window handle.
type Handle uintptr

// EventKind distinguishes host events.
type EventKind int

const (
	// HandleCreated reports a new native handle; bindings must be redone.
	HandleCreated EventKind = iota
	// Hotkey reports that a registered chord fired.
	Hotkey
)

func (k EventKind) String() string {
	switch k {
	case HandleCreated:
		return "handle-created"
	case Hotkey:
		return "hotkey"
	default:
		return "unknown"
	}
}

// Event is delivered on Host.Events.
type Event struct {
	Kind   EventKind
	Handle Handle
	ID     int
}

// Binder registers chords against a window handle.
type Binder interface {
	Register(h Handle, id int, c Chord) error
	Unregister(h Handle, id int) error
}

// Host owns the window handle hotkeys are bound to.
type Host interface {
	// Events is closed when the host is closed.
	Events() <-chan Event
	// Binder returns the binder for this host's handles.
	Binder() Binder
	// Recreate destroys the current handle and creates a new one. A
	// HandleCreated event follows.
	Recreate() error
	Close() error
}

var (
	// ErrUnsupported indicates global hotkeys are unavailable.
	ErrUnsupported = errors.New("global hotkeys not supported")

	// ErrRegister is wrapped by registration failures.
	ErrRegister = errors.New("hotkey registration failed")

	// ErrNotRegistered indicates an unregister for an unknown binding.
	ErrNotRegistered = errors.New("hotkey not registered")

	// ErrHostClosed indicates the host has shut down.
	ErrHostClosed = errors.New("hotkey host closed")
)

// Logger is the logging surface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
