package snippet

// Source supplies the active set for one resolution.
type Source interface {
	ActiveSet() (*Set, bool)
}

// Resolve returns the snippet in active bound to slot. It reports false
// when active is nil or the slot is empty. The result is a copy.
func Resolve(active *Set, slot int) (Snippet, bool) {
	if active == nil || !ValidSlot(slot) {
		return Snippet{}, false
	}
	sn, ok := active.SnippetByHotkey(slot)
	if !ok {
		return Snippet{}, false
	}
	return *sn, true
}

// ResolveFrom resolves slot against src's active set.
func ResolveFrom(src Source, slot int) (Snippet, bool) {
	if src == nil {
		return Snippet{}, false
	}
	active, ok := src.ActiveSet()
	if !ok {
		return Snippet{}, false
	}
	return Resolve(active, slot)
}
