package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/harunnryd/newsroom/pkg/synth"
)

// Call captures one synthesis request for assertions.
type Call struct {
	Request      synth.Request
	GenerationID string
}

// Synthesizer is a deterministic in-memory TTS used by tests and offline
// runs. Each call emits a small fake audio buffer and a fresh generation
// ID. Errors can be scripted per call index via Fail.
type Synthesizer struct {
	// Fail maps call index (0-based, counted across all calls) to the
	// error returned for that call. Failed calls emit no audio.
	Fail map[int]error

	mu    sync.Mutex
	calls []Call
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Fail: make(map[int]error)}
}

func (s *Synthesizer) Name() string { return "mock_tts" }

func (s *Synthesizer) Synthesize(ctx context.Context, req synth.Request) (synth.Result, error) {
	if err := ctx.Err(); err != nil {
		return synth.Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.calls)
	if err, ok := s.Fail[idx]; ok && err != nil {
		s.calls = append(s.calls, Call{Request: req})
		return synth.Result{}, err
	}
	id := uuid.NewString()
	s.calls = append(s.calls, Call{Request: req, GenerationID: id})
	return synth.Result{
		Audio:        []byte("audio:" + req.VoiceID + ":" + req.Text),
		GenerationID: id,
	}, nil
}

// Calls returns a snapshot of every request seen so far, in call order.
func (s *Synthesizer) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

var _ synth.Synthesizer = (*Synthesizer)(nil)
