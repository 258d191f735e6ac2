package poller

// State is the lifecycle of a single poll.
//
//	Idle ──► Polling ──► Succeeded
//	            │  ▲
//	            └──┘ (non-terminal response)
//	            │
//	            └──────► Failed
//
// Succeeded and Failed are terminal states.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateSucceeded
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state has no outgoing transitions
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

var validTransitions = map[State][]State{
	StateIdle:    {StatePolling},
	StatePolling: {StatePolling, StateSucceeded, StateFailed},
}

// IsTransitionAllowed reports whether moving from -> to is permitted
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
