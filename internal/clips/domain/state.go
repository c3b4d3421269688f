package domain

import "fmt"

// State of one upload transaction. Committed and Failed are terminal.
type State string

const (
	Idle       State = "idle"
	Uploading  State = "uploading"
	Finalizing State = "finalizing"
	Committed  State = "committed"
	Failed     State = "failed"
)

func CanTransition(from, to State) bool {
	switch from {
	case Idle:
		return to == Uploading
	case Uploading:
		return to == Finalizing || to == Failed
	case Finalizing:
		return to == Committed || to == Failed
	case Committed:
		return false
	case Failed:
		return false
	default:
		return false
	}
}

func ValidateTransition(from, to State) error {
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition: %s -> %s", from, to)
	}
	return nil
}

// Terminal reports whether s admits no further transitions.
func (s State) Terminal() bool {
	return s == Committed || s == Failed
}
