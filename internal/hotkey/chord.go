package hotkey

import (
	"fmt"
	"strings"
)

// SlotCount is the number of hotkey slots.
const SlotCount = 9

// IDBase is the id registered for slot 1.
const IDBase = 1000

// Modifier is a set of modifier keys using the Win32 MOD_* values.
type Modifier uint32

const (
	ModAlt     Modifier = 0x0001
	ModControl Modifier = 0x0002
	ModShift   Modifier = 0x0004
	ModWin     Modifier = 0x0008
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// String returns a label like "Ctrl+Shift".
func (m Modifier) String() string {
	var parts []string
	if m.Has(ModControl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModWin) {
		parts = append(parts, "Win")
	}
	return strings.Join(parts, "+")
}

// Chord is a modifier set plus a digit key.
type Chord struct {
	Mods Modifier
	Key  rune
}

// VirtualKey returns the Win32 virtual-key code; digits map to '0'..'9'.
func (c Chord) VirtualKey() uint32 {
	return uint32(c.Key)
}

func (c Chord) String() string {
	if c.Mods == 0 {
		return string(c.Key)
	}
	return fmt.Sprintf("%s+%c", c.Mods, c.Key)
}

// SlotChord returns the chord bound to slot.
func SlotChord(slot int) Chord {
	return Chord{Mods: ModControl | ModShift, Key: rune('0' + slot)}
}

// SlotID returns the registration id for slot.
func SlotID(slot int) int {
	return IDBase + slot - 1
}

// SlotForID maps a registration id back to its slot.
func SlotForID(id int) (int, bool) {
	if id < IDBase || id >= IDBase+SlotCount {
		return 0, false
	}
	return id - IDBase + 1, true
}
