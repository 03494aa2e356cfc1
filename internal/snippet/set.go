package snippet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is the colour given to sets without a valid one.
const DefaultColor = "#3498db"

const (
	maxDescriptionLength = 500
	maxSnippetsPerSet    = MaxSlot
)

// Set is a named group of up to nine snippets with distinct hotkey slots.
type Set struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Snippets    []Snippet `json:"snippets"`
	Created     time.Time `json:"createdDate"`
	Modified    time.Time `json:"modifiedDate"`
	ColorHex    string    `json:"colorHex"`
	IconName    string    `json:"iconName"`
}

// NewSet returns an empty set with a fresh id.
func NewSet(name string) *Set {
	now := time.Now()
	return &Set{
		ID:       uuid.NewString(),
		Name:     name,
		Created:  now,
		Modified: now,
		ColorHex: DefaultColor,
		IconName: "folder",
	}
}

// SnippetByHotkey returns the snippet bound to slot, if any.
func (s *Set) SnippetByHotkey(slot int) (*Snippet, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Snippets {
		if s.Snippets[i].HotkeySlot == slot {
			return &s.Snippets[i], true
		}
	}
	return nil, false
}

// SnippetByID returns the snippet with the given id, if any. Hotkey
// dispatch goes through Resolve; this lookup serves settings editors.
func (s *Set) SnippetByID(id string) (*Snippet, bool) {
	for i := range s.Snippets {
		if s.Snippets[i].ID == id {
			return &s.Snippets[i], true
		}
	}
	return nil, false
}

// AvailableHotkeys returns the unassigned slots in ascending order.
func (s *Set) AvailableHotkeys() []int {
	used := make(map[int]bool, len(s.Snippets))
	for _, sn := range s.Snippets {
		used[sn.HotkeySlot] = true
	}
	free := make([]int, 0, MaxSlot)
	for n := MinSlot; n <= MaxSlot; n++ {
		if !used[n] {
			free = append(free, n)
		}
	}
	return free
}

// HasHotkeyConflict reports whether a snippet other than excludeID uses slot.
func (s *Set) HasHotkeyConflict(slot int, excludeID string) bool {
	for _, sn := range s.Snippets {
		if sn.HotkeySlot == slot && sn.ID != excludeID {
			return true
		}
	}
	return false
}

// NextAvailableHotkey returns the lowest free slot, or 0 when the set is full.
func (s *Set) NextAvailableHotkey() int {
	if free := s.AvailableHotkeys(); len(free) > 0 {
		return free[0]
	}
	return 0
}

// AddSnippet appends sn unless its slot is already taken.
func (s *Set) AddSnippet(sn Snippet) error {
	if s.HasHotkeyConflict(sn.HotkeySlot, sn.ID) {
		return fmt.Errorf("%w: slot %d", ErrHotkeyConflict, sn.HotkeySlot)
	}
	if len(s.Snippets) >= maxSnippetsPerSet {
		return fmt.Errorf("%w: a set cannot contain more than %d snippets", ErrInvalid, maxSnippetsPerSet)
	}
	s.Snippets = append(s.Snippets, sn)
	s.Touch()
	return nil
}

// RemoveSnippet deletes the snippet with the given id.
func (s *Set) RemoveSnippet(id string) error {
	for i := range s.Snippets {
		if s.Snippets[i].ID == id {
			s.Snippets = append(s.Snippets[:i], s.Snippets[i+1:]...)
			s.Touch()
			return nil
		}
	}
	return fmt.Errorf("snippet %s: %w", id, ErrNotFound)
}

// Touch updates the modification time.
func (s *Set) Touch() {
	s.Modified = time.Now()
}

// Clone returns a deep copy with new ids for the set and every snippet.
func (s *Set) Clone(name string) *Set {
	if name == "" {
		name = s.Name + " - Copy"
	}
	c := NewSet(name)
	c.Description = s.Description
	c.ColorHex = s.ColorHex
	c.IconName = s.IconName
	c.Snippets = make([]Snippet, 0, len(s.Snippets))
	for _, sn := range s.Snippets {
		c.Snippets = append(c.Snippets, sn.Clone(sn.Name))
	}
	return c
}

// copy returns a deep copy that keeps every id.
func (s *Set) copy() *Set {
	c := *s
	c.Snippets = append([]Snippet(nil), s.Snippets...)
	return &c
}

// Color parses ColorHex, falling back to DefaultColor.
func (s *Set) Color() colorful.Color {
	if c, err := colorful.Hex(s.ColorHex); err == nil {
		return c
	}
	c, _ := colorful.Hex(DefaultColor)
	return c
}

// Validate checks the set and every snippet in it.
func (s *Set) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: set name cannot be empty", ErrInvalid)
	case len([]rune(s.Name)) > maxNameLength:
		return fmt.Errorf("%w: set name cannot exceed %d characters", ErrInvalid, maxNameLength)
	case len([]rune(s.Description)) > maxDescriptionLength:
		return fmt.Errorf("%w: description cannot exceed %d characters", ErrInvalid, maxDescriptionLength)
	case len(s.Snippets) > maxSnippetsPerSet:
		return fmt.Errorf("%w: a set cannot contain more than %d snippets", ErrInvalid, maxSnippetsPerSet)
	}
	if s.ColorHex != "" {
		if _, err := colorful.Hex(s.ColorHex); err != nil {
			return fmt.Errorf("%w: colour %q: %v", ErrInvalid, s.ColorHex, err)
		}
	}

	seen := make(map[int]bool, len(s.Snippets))
	for _, sn := range s.Snippets {
		if seen[sn.HotkeySlot] {
			return fmt.Errorf("%w: multiple snippets assigned to hotkey %d", ErrInvalid, sn.HotkeySlot)
		}
		seen[sn.HotkeySlot] = true
	}
	for _, sn := range s.Snippets {
		if err := sn.Validate(); err != nil {
			return fmt.Errorf("snippet %q: %w", sn.Name, err)
		}
	}
	return nil
}

func (s *Set) String() string {
	return fmt.Sprintf("%s (%d snippets)", s.Name, len(s.Snippets))
}
