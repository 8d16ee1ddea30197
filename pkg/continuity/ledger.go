package continuity

import (
	"sync"

	"github.com/harunnryd/newsroom/pkg/voices"
)

// HistoryDepth is how many prior generation IDs are kept per voice. The
// synthesis provider accepts at most three stitching references.
const HistoryDepth = 3

// Ledger tracks the recent generation IDs per voice so consecutive turns
// spoken by the same voice keep a consistent prosody. Keyed by the
// resolved voice ID, not the speaker label: two speakers sharing a voice
// intentionally share one history.
//
// Only successful generations may be recorded; a failed call must leave
// the ledger untouched (the orchestrator enforces this by calling Record
// on success only). A fresh ledger is created per run.
type Ledger struct {
	mu      sync.Mutex
	byVoice map[string][]string
}

func NewLedger() *Ledger {
	return &Ledger{byVoice: make(map[string][]string)}
}

// HistoryFor returns up to HistoryDepth prior generation IDs for a voice,
// oldest first. Unseen voices yield an empty slice. The returned slice is
// a copy; callers may hold it across a network call.
func (l *Ledger) HistoryFor(voice *voices.VoiceIdentity) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := l.byVoice[voice.VoiceID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Record appends a successful generation ID for a voice, evicting the
// oldest entry beyond HistoryDepth.
func (l *Ledger) Record(voice *voices.VoiceIdentity, generationID string) {
	if generationID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := append(l.byVoice[voice.VoiceID], generationID)
	if len(ids) > HistoryDepth {
		ids = ids[len(ids)-HistoryDepth:]
	}
	l.byVoice[voice.VoiceID] = ids
}
