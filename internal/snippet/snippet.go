package snippet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// Slot and speed bounds.
const (
	MinSlot  = 1
	MaxSlot  = 9
	MinSpeed = 1
	MaxSpeed = 10

	// DefaultSpeed is the typing speed given to new snippets.
	DefaultSpeed = 5

	maxNameLength = 100
)

// Snippet is a text fragment bound to a hotkey slot.
type Snippet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	HotkeySlot  int       `json:"hotkeyNumber"`
	TypingSpeed int       `json:"typingSpeed"`
	HasCode     bool      `json:"hasCode"`
	UseFile     bool      `json:"useFile"`
	FilePath    string    `json:"filePath"`
	Created     time.Time `json:"createdDate"`
	Modified    time.Time `json:"modifiedDate"`
}

// New returns a snippet with a fresh id and default speed.
func New(name string, slot int) Snippet {
	now := time.Now()
	return Snippet{
		ID:          uuid.NewString(),
		Name:        name,
		HotkeySlot:  slot,
		TypingSpeed: DefaultSpeed,
		Created:     now,
		Modified:    now,
	}
}

// HotkeyDisplay returns the chord label, e.g. "CTRL+SHIFT+3".
func (s Snippet) HotkeyDisplay() string {
	return fmt.Sprintf("CTRL+SHIFT+%d", s.HotkeySlot)
}

// Preview returns a single-line preview of the content limited to max
// grapheme clusters. Line breaks become spaces.
func (s Snippet) Preview(max int) string {
	if s.Content == "" {
		return "(empty)"
	}
	preview := strings.ReplaceAll(s.Content, "\n", " ")
	preview = strings.ReplaceAll(preview, "\r", "")
	preview = strings.TrimSpace(preview)

	if max <= 0 || uniseg.GraphemeClusterCount(preview) <= max {
		return preview
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(preview)
	for n := 0; n < max && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return b.String() + "..."
}

// Touch updates the modification time.
func (s *Snippet) Touch() {
	s.Modified = time.Now()
}

// Clone returns a copy with a new id. An empty name yields "<name> - Copy".
func (s Snippet) Clone(name string) Snippet {
	if name == "" {
		name = s.Name + " - Copy"
	}
	now := time.Now()
	c := s
	c.ID = uuid.NewString()
	c.Name = name
	c.Created = now
	c.Modified = now
	return c
}

// Validate checks the snippet's field constraints.
func (s Snippet) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: snippet name cannot be empty", ErrInvalid)
	case len([]rune(s.Name)) > maxNameLength:
		return fmt.Errorf("%w: snippet name cannot exceed %d characters", ErrInvalid, maxNameLength)
	case !ValidSlot(s.HotkeySlot):
		return fmt.Errorf("%w: hotkey number must be between %d and %d", ErrInvalid, MinSlot, MaxSlot)
	case s.TypingSpeed < MinSpeed || s.TypingSpeed > MaxSpeed:
		return fmt.Errorf("%w: typing speed must be between %d and %d", ErrInvalid, MinSpeed, MaxSpeed)
	case s.UseFile && strings.TrimSpace(s.FilePath) == "":
		return fmt.Errorf("%w: file path is required when 'use file' is enabled", ErrInvalid)
	}
	return nil
}

func (s Snippet) String() string {
	return fmt.Sprintf("[%d] %s", s.HotkeySlot, s.Name)
}

// ValidSlot reports whether n is a usable hotkey slot.
func ValidSlot(n int) bool {
	return n >= MinSlot && n <= MaxSlot
}
