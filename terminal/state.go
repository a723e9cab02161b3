package terminal

// State is the lifecycle state of a Session.
type State int

const (
	StateConnecting State = iota
	StateClaimed
	StateListening
	StateIdle
	StateTransferring
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateClaimed:
		return "claimed"
	case StateListening:
		return "listening"
	case StateIdle:
		return "idle"
	case StateTransferring:
		return "transferring"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// canTransition reports whether from -> to is a legal lifecycle step.
// Every state except Closed may move to Closing.
func canTransition(from, to State) bool {
	if to == StateClosing {
		return from != StateClosing && from != StateClosed
	}
	switch from {
	case StateConnecting:
		return to == StateClaimed
	case StateClaimed:
		return to == StateListening
	case StateListening:
		return to == StateIdle
	case StateIdle:
		return to == StateTransferring
	case StateTransferring:
		return to == StateIdle
	case StateClosing:
		return to == StateClosed
	}
	return false
}
