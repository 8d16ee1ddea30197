package errorsx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonTTSRateLimit)
	if Reason(err) != ReasonTTSRateLimit {
		t.Fatalf("expected reason %s, got %s", ReasonTTSRateLimit, Reason(err))
	}
	if !HasReason(err, ReasonTTSRateLimit) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonScriptMalformed)
	second := Wrap(first, ReasonTTSRequest)
	if Reason(second) != ReasonScriptMalformed {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestReasonSurvivesFmtWrapping(t *testing.T) {
	inner := Wrap(assertErr{}, ReasonVoiceUnknown)
	outer := fmt.Errorf("turn 3: %w", inner)
	if Reason(outer) != ReasonVoiceUnknown {
		t.Fatalf("expected reason through fmt wrap, got %s", Reason(outer))
	}
	var re ReasonedError
	if !errors.As(outer, &re) {
		t.Fatalf("expected ReasonedError in chain")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
