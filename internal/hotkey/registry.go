package hotkey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Outcome summarizes a registration pass.
type Outcome int

const (
	AllRegistered Outcome = iota
	PartiallyRegistered
	NoneRegistered
)

func (o Outcome) String() string {
	switch o {
	case AllRegistered:
		return "all"
	case PartiallyRegistered:
		return "partial"
	default:
		return "none"
	}
}

// Report is the result of Registry.RegisterAll.
type Report struct {
	Handle     Handle
	Registered []int
	Failed     []int
	Errors     map[int]error
}

// Outcome classifies the report.
func (r Report) Outcome() Outcome {
	switch len(r.Registered) {
	case SlotCount:
		return AllRegistered
	case 0:
		return NoneRegistered
	default:
		return PartiallyRegistered
	}
}

// IsRegistered reports whether slot was bound in this pass.
func (r Report) IsRegistered(slot int) bool {
	for _, s := range r.Registered {
		if s == slot {
			return true
		}
	}
	return false
}

// String returns the user-facing status text.
func (r Report) String() string {
	switch r.Outcome() {
	case AllRegistered:
		return "All hotkeys (CTRL+SHIFT+1-9) registered"
	case NoneRegistered:
		return "Failed to register any hotkeys"
	}
	failed := make([]string, len(r.Failed))
	for i, s := range r.Failed {
		failed[i] = strconv.Itoa(s)
	}
	return fmt.Sprintf("%d/%d hotkeys registered. Failed: %s",
		len(r.Registered), SlotCount, strings.Join(failed, ", "))
}

// Registry binds the nine slots to a host handle.
type Registry struct {
	binder Binder
	log    Logger

	mu     sync.Mutex
	handle Handle
	last   Report
}

// NewRegistry creates a registry over b. A nil logger discards output.
func NewRegistry(b Binder, log Logger) *Registry {
	if log == nil {
		log = nopLogger{}
	}
	return &Registry{binder: b, log: log}
}

// RegisterAll unregisters every slot on h and then registers each one.
// It never trusts earlier results, so it is safe to call again after a
// partial failure or after the handle has been recreated.
func (r *Registry) RegisterAll(h Handle) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle != 0 && r.handle != h {
		r.unregisterLocked(r.handle)
	}
	r.unregisterLocked(h)
	r.handle = h

	rep := Report{Handle: h, Errors: make(map[int]error)}
	for slot := 1; slot <= SlotCount; slot++ {
		id := SlotID(slot)
		chord := SlotChord(slot)
		if err := r.binder.Register(h, id, chord); err != nil {
			rep.Failed = append(rep.Failed, slot)
			rep.Errors[slot] = err
			r.log.Warn("registering %s (id %d) failed: %v", chord, id, err)
			continue
		}
		rep.Registered = append(rep.Registered, slot)
	}
	sort.Ints(rep.Failed)

	r.log.Info("hotkeys registered on handle %#x: %d ok, %d failed", uintptr(h), len(rep.Registered), len(rep.Failed))
	r.last = rep
	return rep
}

// UnregisterAll releases all nine ids on the current handle regardless of
// whether they were registered.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == 0 {
		return
	}
	r.unregisterLocked(r.handle)
	r.last = Report{Handle: r.handle, Errors: map[int]error{}}
	for slot := 1; slot <= SlotCount; slot++ {
		r.last.Failed = append(r.last.Failed, slot)
	}
}

func (r *Registry) unregisterLocked(h Handle) {
	for slot := 1; slot <= SlotCount; slot++ {
		// Unknown ids fail harmlessly.
		_ = r.binder.Unregister(h, SlotID(slot))
	}
}

// Last returns the most recent report.
func (r *Registry) Last() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Handle returns the handle of the last registration pass.
func (r *Registry) Handle() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

// Slot maps a hotkey event to its slot.
func (r *Registry) Slot(ev Event) (int, bool) {
	if ev.Kind != Hotkey {
		return 0, false
	}
	return SlotForID(ev.ID)
}
