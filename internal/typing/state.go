package typing

import "fmt"

// State is a session's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsTerminal reports whether the session has finished.
func (s State) IsTerminal() bool {
	switch s {
	case Completed, Cancelled, Failed:
		return true
	default:
		return false
	}
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Idle:
		return to == Running
	case Running:
		return to.IsTerminal()
	default:
		return false
	}
}
