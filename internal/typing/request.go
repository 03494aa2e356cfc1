package typing

import "github.com/dshills/hotkeytyper/internal/snippet"

// Request is everything a session needs, copied out of a snippet when the
// hotkey fires. Later edits to the snippet do not reach it.
type Request struct {
	Name      string
	Slot      int
	Text      string
	Truncated bool
	Speed     int
	HasCode   bool
}

// NewRequest loads sn's content and copies its typing settings.
func NewRequest(sn snippet.Snippet) (Request, error) {
	c, err := LoadContent(sn)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Name:      sn.Name,
		Slot:      sn.HotkeySlot,
		Text:      c.Text,
		Truncated: c.Truncated,
		Speed:     sn.TypingSpeed,
		HasCode:   sn.HasCode,
	}, nil
}
