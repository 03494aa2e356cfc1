// Package status fans user-facing status lines out to observers such as
// the console and the log.
package status

import (
	"fmt"
	"time"
)

// Level grades a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is one status line.
type Status struct {
	Level Level
	Text  string
	Time  time.Time
}

func (s Status) String() string {
	return "Status: " + s.Text
}

func newStatus(l Level, format string, args ...any) Status {
	return Status{Level: l, Text: fmt.Sprintf(format, args...), Time: time.Now()}
}

// Ready is shown while idle with hotkeys registered.
func Ready() Status {
	return newStatus(LevelSuccess, "Hotkeys CTRL+SHIFT+1-9 are active")
}

// Registration reports the outcome of a registration pass. text is the
// report's own description.
func Registration(registered, total int, text string) Status {
	switch {
	case registered == total:
		return newStatus(LevelSuccess, "%s", text)
	case registered > 0:
		return newStatus(LevelWarning, "%s", text)
	default:
		return newStatus(LevelError, "%s", text)
	}
}

func NoActiveSet() Status {
	return newStatus(LevelError, "No active snippet set")
}

func NoSnippet(slot int) Status {
	return newStatus(LevelWarning, "No snippet assigned to CTRL+SHIFT+%d", slot)
}

func FileNotFound(path string) Status {
	return newStatus(LevelError, "File not found: %s", path)
}

func ReadError(err error) Status {
	return newStatus(LevelError, "Error reading file: %v", err)
}

func Truncated() Status {
	return newStatus(LevelWarning, "File truncated for typing")
}

func Typing(name string, speed int) Status {
	return newStatus(LevelWarning, "Typing '%s' at speed %d...", name, speed)
}

func Cancelled() Status {
	return newStatus(LevelError, "Typing cancelled")
}

func Finished(name string) Status {
	return newStatus(LevelSuccess, "Finished typing '%s'", name)
}

func Failed(err error) Status {
	return newStatus(LevelError, "Error typing text: %v", err)
}

func SetChanged(name string) Status {
	return newStatus(LevelInfo, "Active set: %s", name)
}

func Reloaded(sets int) Status {
	return newStatus(LevelInfo, "Settings reloaded (%d sets)", sets)
}

func SettingsError(err error) Status {
	return newStatus(LevelError, "Error loading settings: %v", err)
}

func HostError(err error) Status {
	return newStatus(LevelError, "Error re-creating hotkey window: %v", err)
}

func Restored(sets int) Status {
	return newStatus(LevelInfo, "Settings restored from backup (%d sets)", sets)
}
