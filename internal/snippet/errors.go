package snippet

import "errors"

var (
	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("invalid snippet data")

	// ErrHotkeyConflict indicates the slot is already used in the set.
	ErrHotkeyConflict = errors.New("hotkey already assigned in set")

	// ErrSetNameTaken indicates another set already uses the name.
	ErrSetNameTaken = errors.New("set name already in use")

	// ErrLastSet indicates an attempt to remove the only remaining set.
	ErrLastSet = errors.New("cannot remove the last set")

	// ErrNotFound indicates the referenced set or snippet does not exist.
	ErrNotFound = errors.New("not found")
)
