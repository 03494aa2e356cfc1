package inject

import "errors"

// Window is an opaque native window handle. Zero means no window.
type Window uintptr

// Sender injects a single character through the primary path.
type Sender interface {
	// SendChar reports whether the character was delivered.
	SendChar(r rune) bool
}

// CommandSender types an escaped command string produced by EncodeFallback.
type CommandSender interface {
	SendCommands(cmd string) error
}

// Focus queries and restores the foreground window.
type Focus interface {
	Foreground() Window
	Activate(w Window) bool
}

// InputQueue discards keyboard input that is still queued.
type InputQueue interface {
	Flush()
}

// Platform bundles the native injection facilities.
type Platform struct {
	Primary  Sender
	Fallback CommandSender
	Focus    Focus
	Queue    InputQueue
}

var (
	// ErrUnsupportedRune indicates the fallback key map cannot type a character.
	ErrUnsupportedRune = errors.New("character not supported by fallback")

	// ErrSyntax indicates a malformed command string.
	ErrSyntax = errors.New("malformed command string")
)

// NoFocus is a Focus that never reports or changes a window.
type NoFocus struct{}

func (NoFocus) Foreground() Window { return 0 }

func (NoFocus) Activate(Window) bool { return false }

// NoQueue is an InputQueue with nothing to flush.
type NoQueue struct{}

func (NoQueue) Flush() {}
