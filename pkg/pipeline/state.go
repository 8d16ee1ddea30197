package pipeline

// TurnState tracks one turn through the run.
type TurnState int32

const (
	TurnPending TurnState = iota
	TurnInFlight
	TurnDone
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnPending:
		return "PENDING"
	case TurnInFlight:
		return "IN_FLIGHT"
	case TurnDone:
		return "DONE"
	case TurnFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// FailurePolicy decides what a turn's permanent failure does to the run.
type FailurePolicy int

const (
	// FailFast aborts the run on the first failure and discards every
	// completed segment; no partial output ever reaches the joiner.
	FailFast FailurePolicy = iota
	// BestEffort skips failed turns and keeps going. Remaining segments
	// stay in script order; skipped turns are reported as gaps.
	BestEffort
)

func (p FailurePolicy) String() string {
	if p == BestEffort {
		return "best_effort"
	}
	return "fail_fast"
}

// ParseFailurePolicy maps a config string to a policy, defaulting to
// fail-fast. Best-effort is an explicit opt-in.
func ParseFailurePolicy(s string) FailurePolicy {
	switch s {
	case "best_effort", "best-effort":
		return BestEffort
	}
	return FailFast
}
