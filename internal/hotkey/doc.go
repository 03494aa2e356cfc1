// Package hotkey owns the nine global hotkeys Ctrl+Shift+1 through
// Ctrl+Shift+9.
//
// A Host owns the native window handle that hotkeys are bound to and
// delivers two kinds of events: HandleCreated whenever a handle comes into
// existence (including when an existing one is destroyed and recreated), and
// Hotkey when a bound chord fires. Bindings do not survive a handle being
// recreated, so the owner must call Registry.RegisterAll on every
// HandleCreated event.
//
// RegisterAll always starts from scratch: it unregisters all nine ids and
// then registers each slot, returning a Report of which slots succeeded.
// Slots usually fail because another process already owns the chord. There
// is no automatic retry.
//
// Slot n is bound under id 1000+n-1.
package hotkey
