//go:build !windows

package hotkey

import (
	"fmt"
	"sync"

	xhotkey "golang.design/x/hotkey"
)

type bindingKey struct {
	handle Handle
	id     int
}

type binding struct {
	hk   *xhotkey.Hotkey
	stop chan struct{}
}

// virtualHost stands in for a native window on platforms without one.
// Handles are generation numbers and bindings go through
// golang.design/x/hotkey.
type virtualHost struct {
	log    Logger
	events chan Event

	mu       sync.Mutex
	gen      Handle
	bindings map[bindingKey]*binding
	closed   bool
	wg       sync.WaitGroup

	// eventsMu guards sends on events against its close. It is never held
	// while acquiring mu.
	eventsMu     sync.Mutex
	eventsClosed bool
}

// NewHost creates the host and its first handle. The binder is only
// supported on Linux with X11; on macOS golang.design/x/hotkey must run on
// the main thread, which this host does not arrange.
func NewHost(log Logger) (Host, error) {
	if log == nil {
		log = nopLogger{}
	}
	h := &virtualHost{
		log:      log,
		events:   make(chan Event, 64),
		bindings: make(map[bindingKey]*binding),
	}
	h.mu.Lock()
	h.newHandleLocked()
	h.mu.Unlock()
	return h, nil
}

func (h *virtualHost) Events() <-chan Event { return h.events }

func (h *virtualHost) Binder() Binder { return h }

func (h *virtualHost) newHandleLocked() {
	h.gen++
	h.log.Debug("virtual handle %d created", h.gen)
	h.emit(Event{Kind: HandleCreated, Handle: h.gen})
}

func (h *virtualHost) emit(ev Event) {
	h.eventsMu.Lock()
	defer h.eventsMu.Unlock()
	if h.eventsClosed {
		return
	}
	select {
	case h.events <- ev:
	default:
		h.log.Warn("dropped %s event (id %d)", ev.Kind, ev.ID)
	}
}

func (h *virtualHost) Register(handle Handle, id int, c Chord) error {
	key, ok := designKey(c.Key)
	if !ok {
		return fmt.Errorf("%w: %s: unsupported key", ErrRegister, c)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	if handle != h.gen {
		return fmt.Errorf("%w: %s: stale handle %d", ErrRegister, c, handle)
	}
	k := bindingKey{handle, id}
	if _, exists := h.bindings[k]; exists {
		return fmt.Errorf("%w: %s: id %d already bound", ErrRegister, c, id)
	}

	hk := xhotkey.New(designMods(c.Mods), key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRegister, c, err)
	}
	b := &binding{hk: hk, stop: make(chan struct{})}
	h.bindings[k] = b

	h.wg.Add(1)
	go h.forward(b, handle, id)
	return nil
}

func (h *virtualHost) forward(b *binding, handle Handle, id int) {
	defer h.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		case _, ok := <-b.hk.Keydown():
			if !ok {
				return
			}
			h.emit(Event{Kind: Hotkey, Handle: handle, ID: id})
		}
	}
}

func (h *virtualHost) Unregister(handle Handle, id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unbindLocked(bindingKey{handle, id})
}

func (h *virtualHost) unbindLocked(k bindingKey) error {
	b, ok := h.bindings[k]
	if !ok {
		return ErrNotRegistered
	}
	delete(h.bindings, k)
	close(b.stop)
	return b.hk.Unregister()
}

func (h *virtualHost) unbindHandleLocked(handle Handle) {
	for k := range h.bindings {
		if k.handle == handle {
			if err := h.unbindLocked(k); err != nil {
				h.log.Debug("unbinding id %d: %v", k.id, err)
			}
		}
	}
}

// Recreate drops every binding on the current handle, as destroying a
// native window would, and issues a new handle.
func (h *virtualHost) Recreate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	h.unbindHandleLocked(h.gen)
	h.newHandleLocked()
	return nil
}

func (h *virtualHost) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	for k := range h.bindings {
		_ = h.unbindLocked(k)
	}
	h.closed = true
	h.mu.Unlock()

	h.wg.Wait()
	h.eventsMu.Lock()
	h.eventsClosed = true
	close(h.events)
	h.eventsMu.Unlock()
	return nil
}

func designMods(m Modifier) []xhotkey.Modifier {
	var mods []xhotkey.Modifier
	if m.Has(ModControl) {
		mods = append(mods, xhotkey.ModCtrl)
	}
	if m.Has(ModShift) {
		mods = append(mods, xhotkey.ModShift)
	}
	return mods
}

var designKeys = map[rune]xhotkey.Key{
	'1': xhotkey.Key1,
	'2': xhotkey.Key2,
	'3': xhotkey.Key3,
	'4': xhotkey.Key4,
	'5': xhotkey.Key5,
	'6': xhotkey.Key6,
	'7': xhotkey.Key7,
	'8': xhotkey.Key8,
	'9': xhotkey.Key9,
}

func designKey(r rune) (xhotkey.Key, bool) {
	k, ok := designKeys[r]
	return k, ok
}
