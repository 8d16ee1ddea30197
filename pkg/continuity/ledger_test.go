package continuity

import (
	"fmt"
	"testing"

	"github.com/harunnryd/newsroom/pkg/voices"
)

func TestHistoryBoundedAtDepth(t *testing.T) {
	l := NewLedger()
	voice := &voices.VoiceIdentity{VoiceID: "v1"}
	for i := 0; i < 5; i++ {
		l.Record(voice, fmt.Sprintf("g%d", i))
	}
	got := l.HistoryFor(voice)
	if len(got) != HistoryDepth {
		t.Fatalf("expected %d ids, got %d", HistoryDepth, len(got))
	}
	// Oldest first, oldest evicted.
	want := []string{"g2", "g3", "g4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history %v, want %v", got, want)
		}
	}
}

func TestHistoryForUnseenVoice(t *testing.T) {
	l := NewLedger()
	got := l.HistoryFor(&voices.VoiceIdentity{VoiceID: "never"})
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %v", got)
	}
}

func TestSpeakersSharingVoiceShareHistory(t *testing.T) {
	l := NewLedger()
	anchor := &voices.VoiceIdentity{VoiceID: "shared"}
	host := &voices.VoiceIdentity{VoiceID: "shared"}
	l.Record(anchor, "g1")
	got := l.HistoryFor(host)
	if len(got) != 1 || got[0] != "g1" {
		t.Fatalf("shared voice must share history, got %v", got)
	}
}

func TestRecordIgnoresEmptyID(t *testing.T) {
	l := NewLedger()
	voice := &voices.VoiceIdentity{VoiceID: "v1"}
	l.Record(voice, "")
	if got := l.HistoryFor(voice); len(got) != 0 {
		t.Fatalf("empty id must not be recorded, got %v", got)
	}
}

func TestHistoryCopyIsStable(t *testing.T) {
	l := NewLedger()
	voice := &voices.VoiceIdentity{VoiceID: "v1"}
	l.Record(voice, "g1")
	snapshot := l.HistoryFor(voice)
	l.Record(voice, "g2")
	if len(snapshot) != 1 || snapshot[0] != "g1" {
		t.Fatalf("snapshot mutated by later record: %v", snapshot)
	}
}
