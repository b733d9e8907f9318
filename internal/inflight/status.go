package inflight

// Status tracks one optimistic toggle from the local flip to the server's
// answer.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusConfirmed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Combine folds the statuses of two independent toggles into one for
// display. Pending wins over Failed, Failed over Confirmed, and Confirmed
// over Idle.
func Combine(a, b Status) Status {
	switch {
	case a == StatusPending || b == StatusPending:
		return StatusPending
	case a == StatusFailed || b == StatusFailed:
		return StatusFailed
	case a == StatusConfirmed || b == StatusConfirmed:
		return StatusConfirmed
	default:
		return StatusIdle
	}
}
