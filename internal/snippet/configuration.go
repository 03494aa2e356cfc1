package snippet

import (
	"fmt"
	"strings"
)

// SettingsVersion is the current persisted schema version.
const SettingsVersion = 2

// UIScale selects the presentation scale.
type UIScale int

const (
	ScaleSmall UIScale = iota
	ScaleNormal
	ScaleLarge
)

// UISettings holds display preferences owned by the presentation layer.
type UISettings struct {
	Scale           UIScale `json:"scale"`
	BaseFontSize    int     `json:"baseFontSize"`
	ContentFontSize int     `json:"contentFontSize"`
	AutoSave        bool    `json:"autoSave"`
}

// DefaultUISettings returns the stock display preferences.
func DefaultUISettings() UISettings {
	return UISettings{Scale: ScaleNormal, BaseFontSize: 9, ContentFontSize: 10}
}

// Configuration is the complete snippet hierarchy plus preferences.
type Configuration struct {
	SettingsVersion int        `json:"settingsVersion"`
	Sets            []*Set     `json:"sets"`
	ActiveSetID     string     `json:"activeSetId"`
	MinimizeToTray  bool       `json:"minimizeToTray"`
	UI              UISettings `json:"uiSettings"`
}

// NewConfiguration returns an empty configuration at the current version.
func NewConfiguration() *Configuration {
	return &Configuration{
		SettingsVersion: SettingsVersion,
		UI:              DefaultUISettings(),
	}
}

// DefaultConfiguration returns a configuration holding the sample set.
func DefaultConfiguration() *Configuration {
	c := NewConfiguration()
	c.CreateDefaultSet()
	return c
}

// ActiveSet returns the active set. An empty ActiveSetID selects the first set.
func (c *Configuration) ActiveSet() (*Set, bool) {
	if c == nil || len(c.Sets) == 0 {
		return nil, false
	}
	if c.ActiveSetID == "" {
		return c.Sets[0], true
	}
	return c.SetByID(c.ActiveSetID)
}

// SetActive makes the set with the given id active.
func (c *Configuration) SetActive(id string) error {
	if _, ok := c.SetByID(id); !ok {
		return fmt.Errorf("set %s: %w", id, ErrNotFound)
	}
	c.ActiveSetID = id
	return nil
}

// NextSet activates the set after the current one, wrapping around, and
// returns it.
func (c *Configuration) NextSet() (*Set, bool) {
	if len(c.Sets) == 0 {
		return nil, false
	}
	next := 0
	for i, s := range c.Sets {
		if s.ID == c.ActiveSetID {
			next = (i + 1) % len(c.Sets)
			break
		}
	}
	c.ActiveSetID = c.Sets[next].ID
	return c.Sets[next], true
}

// SetByID returns the set with the given id.
func (c *Configuration) SetByID(id string) (*Set, bool) {
	for _, s := range c.Sets {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// SetByName returns the set with the given name, ignoring case.
func (c *Configuration) SetByName(name string) (*Set, bool) {
	for _, s := range c.Sets {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}

// IsSetNameTaken reports whether a set other than excludeID uses name.
func (c *Configuration) IsSetNameTaken(name, excludeID string) bool {
	for _, s := range c.Sets {
		if strings.EqualFold(s.Name, name) && s.ID != excludeID {
			return true
		}
	}
	return false
}

// AddSet appends set. The first set added, or any set added with
// activate, becomes active.
func (c *Configuration) AddSet(set *Set, activate bool) error {
	if c.IsSetNameTaken(set.Name, set.ID) {
		return fmt.Errorf("%w: %q", ErrSetNameTaken, set.Name)
	}
	c.Sets = append(c.Sets, set)
	if len(c.Sets) == 1 || activate {
		c.ActiveSetID = set.ID
	}
	return nil
}

// RemoveSet deletes a set. The last remaining set cannot be removed.
// Removing the active set activates the first remaining one.
func (c *Configuration) RemoveSet(id string) error {
	if len(c.Sets) <= 1 {
		return ErrLastSet
	}
	idx := -1
	for i, s := range c.Sets {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("set %s: %w", id, ErrNotFound)
	}
	c.Sets = append(c.Sets[:idx], c.Sets[idx+1:]...)
	if c.ActiveSetID == id {
		c.ActiveSetID = c.Sets[0].ID
	}
	return nil
}

// CreateDefaultSet adds the sample set when no sets exist.
func (c *Configuration) CreateDefaultSet() {
	if len(c.Sets) > 0 {
		return
	}
	set := NewSet("Default")
	set.Description = "Your first snippet set"
	sample := New("Sample Snippet", 1)
	sample.Content = "Hello, this is a sample snippet!\nEdit this to get started."
	set.Snippets = append(set.Snippets, sample)
	c.Sets = append(c.Sets, set)
	c.ActiveSetID = set.ID
}

// EnsureValid repairs the configuration so it can be handed to the core:
// at least one valid set exists and the active id points at one of them.
// Invalid sets are dropped.
func (c *Configuration) EnsureValid() {
	kept := c.Sets[:0]
	for _, s := range c.Sets {
		if s == nil {
			continue
		}
		if s.ColorHex == "" {
			s.ColorHex = DefaultColor
		}
		if s.Validate() == nil {
			kept = append(kept, s)
		}
	}
	c.Sets = kept

	if len(c.Sets) == 0 {
		c.CreateDefaultSet()
	}
	if _, ok := c.SetByID(c.ActiveSetID); !ok {
		c.ActiveSetID = c.Sets[0].ID
	}
	if c.SettingsVersion < SettingsVersion {
		c.SettingsVersion = SettingsVersion
	}
}

// TotalSnippets returns the number of snippets across all sets.
func (c *Configuration) TotalSnippets() int {
	n := 0
	for _, s := range c.Sets {
		n += len(s.Snippets)
	}
	return n
}

// Validate checks the whole configuration.
func (c *Configuration) Validate() error {
	if len(c.Sets) == 0 {
		return fmt.Errorf("%w: at least one set is required", ErrInvalid)
	}
	if c.ActiveSetID == "" {
		return fmt.Errorf("%w: active set id cannot be empty", ErrInvalid)
	}
	if _, ok := c.SetByID(c.ActiveSetID); !ok {
		return fmt.Errorf("%w: active set not found", ErrInvalid)
	}

	names := make(map[string]bool, len(c.Sets))
	var dups []string
	for _, s := range c.Sets {
		key := strings.ToLower(s.Name)
		if names[key] {
			dups = append(dups, key)
		}
		names[key] = true
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: duplicate set names found: %s", ErrInvalid, strings.Join(dups, ", "))
	}

	for _, s := range c.Sets {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("set %q: %w", s.Name, err)
		}
	}
	return nil
}

// Clone returns a deep copy that preserves ids.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	out.Sets = make([]*Set, len(c.Sets))
	for i, s := range c.Sets {
		out.Sets[i] = s.copy()
	}
	return &out
}
