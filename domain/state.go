package domain

// SessionState follows New -> Active -> Draining -> HalfClosed -> Drained -> Closed.
type SessionState int

const (
	StateNew SessionState = iota
	StateActive
	StateDraining
	StateHalfClosed
	StateDrained
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateHalfClosed:
		return "half-closed"
	case StateDrained:
		return "drained"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// InboundMode selects where the inbound pump delivers events.
type InboundMode string

const (
	// InboundDirect renders from the inbound pump itself.
	InboundDirect InboundMode = "direct"
	// InboundQueued hands events to a separate render consumer.
	InboundQueued InboundMode = "queued"
)
