// Package alert raises desktop notifications for conditions the user
// should see even when the console is hidden.
package alert

import (
	"strconv"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/dshills/hotkeytyper/internal/hotkey"
)

// Title is used for every notification.
const Title = "Hotkey Typer"

// NotifyFunc shows one notification.
type NotifyFunc func(title, message string) error

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Logger is the logging surface used by this package.
type Logger interface {
	Warn(msg string, args ...any)
}

// Alerter sends notifications when enabled.
type Alerter struct {
	notify  NotifyFunc
	enabled bool
	log     Logger
}

// New returns an Alerter backed by beeep.
func New(enabled bool, log Logger) *Alerter {
	return NewWith(desktopNotify, enabled, log)
}

// NewWith returns an Alerter using notify.
func NewWith(notify NotifyFunc, enabled bool, log Logger) *Alerter {
	return &Alerter{notify: notify, enabled: enabled, log: log}
}

// Enabled reports whether notifications are sent.
func (a *Alerter) Enabled() bool {
	return a.enabled
}

// Registration notifies about slots that could not be registered. A
// report with every slot registered sends nothing.
func (a *Alerter) Registration(rep hotkey.Report) {
	switch rep.Outcome() {
	case hotkey.AllRegistered:
		return
	case hotkey.PartiallyRegistered:
		failed := make([]string, len(rep.Failed))
		for i, s := range rep.Failed {
			failed[i] = strconv.Itoa(s)
		}
		a.send("Some hotkeys failed to register: CTRL+SHIFT+" + strings.Join(failed, ", ") +
			". They may be in use by another application.")
	default:
		a.send("Failed to register global hotkeys. They may be in use by another application.")
	}
}

// Message sends an arbitrary notification.
func (a *Alerter) Message(msg string) {
	a.send(msg)
}

func (a *Alerter) send(msg string) {
	if !a.enabled || a.notify == nil {
		return
	}
	if err := a.notify(Title, msg); err != nil && a.log != nil {
		a.log.Warn("notification failed: %v", err)
	}
}
