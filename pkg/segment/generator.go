package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunnryd/newsroom/pkg/continuity"
	"github.com/harunnryd/newsroom/pkg/errorsx"
	"github.com/harunnryd/newsroom/pkg/metrics"
	"github.com/harunnryd/newsroom/pkg/resilience"
	"github.com/harunnryd/newsroom/pkg/script"
	"github.com/harunnryd/newsroom/pkg/synth"
	"github.com/harunnryd/newsroom/pkg/voices"
)

// Segment is one turn's synthesized audio plus the generation ID used to
// stitch future turns spoken by the same voice. Immutable once created.
type Segment struct {
	TurnIndex    int
	Audio        []byte
	GenerationID string
	Voice        *voices.VoiceIdentity
}

// GenerationError carries enough context to point the user at the failing
// line of the script. Transient reports whether another run may succeed
// without changes; exhausted retries surface as permanent.
type GenerationError struct {
	TurnIndex int
	Speaker   string
	Transient bool
	Err       error
}

func (e GenerationError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("turn %d (%s): %s generation failure: %v", e.TurnIndex, e.Speaker, kind, e.Err)
}

func (e GenerationError) Unwrap() error { return e.Err }

// IsTransient classifies a synthesis error for retry purposes. Rate
// limits, timeouts and 5xx-class provider failures heal on their own;
// auth and malformed-request failures never do.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if resilience.IsRateLimit(err) {
		return true
	}
	switch errorsx.Reason(err) {
	case errorsx.ReasonTTSRateLimit, errorsx.ReasonTTSTimeout, errorsx.ReasonTTSUnavailable:
		return true
	}
	return false
}

// Config tunes the generator. Retry is a pure policy value so tests can
// substitute zero-wait schedules.
type Config struct {
	Retry          resilience.RetryPolicy
	PerCallTimeout time.Duration
	// ChunkLimit caps the characters per synthesis request; longer turn
	// text is split at sentence boundaries. Defaults to DefaultChunkLimit.
	ChunkLimit int
}

// Generator turns one script turn into a Segment via the synthesis
// collaborator. It never touches the continuity ledger; recording history
// is the orchestrator's job, so generation stays independently mockable.
type Generator struct {
	tts     synth.Synthesizer
	cfg     Config
	breaker *resilience.CircuitBreaker
	obs     metrics.Observer
	log     *slog.Logger
}

func NewGenerator(tts synth.Synthesizer, cfg Config, opts ...Option) *Generator {
	if cfg.PerCallTimeout <= 0 {
		cfg.PerCallTimeout = 90 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = resilience.NewRetryPolicy(3, 500*time.Millisecond)
	}
	if cfg.Retry.IsRetryable == nil {
		cfg.Retry.IsRetryable = IsTransient
	}
	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = DefaultChunkLimit
	}
	g := &Generator{
		tts:     tts,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker(3, 30*time.Second),
		obs:     metrics.NoopObserver{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type Option func(*Generator)

func WithObserver(obs metrics.Observer) Option {
	return func(g *Generator) {
		if obs != nil {
			g.obs = obs
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// Generate synthesizes one turn with the given voice and continuity
// history. Turn text over the chunk limit is split at sentence
// boundaries and synthesized chunk by chunk: each chunk stitches against
// its predecessors, the buffers are concatenated into one Segment, and
// the last chunk's generation ID carries the turn's continuity forward.
func (g *Generator) Generate(ctx context.Context, turn script.Turn, voice *voices.VoiceIdentity, history []string) (Segment, error) {
	chunks := splitChunks(turn.Text, g.cfg.ChunkLimit)

	hist := make([]string, len(history))
	copy(hist, history)

	var audio []byte
	generationID := ""
	attempts := 0
	lastAttempts := 0
	start := time.Now()
	var err error
	for _, chunk := range chunks {
		stitch := hist
		if len(stitch) > continuity.HistoryDepth {
			stitch = stitch[len(stitch)-continuity.HistoryDepth:]
		}
		req := synth.Request{
			Text:               chunk,
			VoiceID:            voice.VoiceID,
			Model:              voice.Model,
			OutputFormat:       voice.OutputFormat,
			PreviousRequestIDs: stitch,
		}
		var result synth.Result
		result, lastAttempts, err = g.synthesize(ctx, turn, req)
		attempts += lastAttempts
		if err != nil {
			break
		}
		// MP3 frames are self-contained, so chunk buffers append without
		// re-encoding.
		audio = append(audio, result.Audio...)
		if result.GenerationID != "" {
			hist = append(hist, result.GenerationID)
			generationID = result.GenerationID
		}
	}

	g.obs.RecordEvent(metrics.MetricsEvent{
		Name:  "synth_latency_ms",
		Time:  time.Now(),
		Value: float64(time.Since(start).Milliseconds()),
		Tags: map[string]string{
			"provider": g.tts.Name(),
			"voice_id": voice.VoiceID,
			"outcome":  outcome(err),
		},
		Fields: map[string]any{"attempts": attempts, "chunks": len(chunks)},
	})

	if err != nil {
		transient := IsTransient(err)
		if transient && lastAttempts >= g.cfg.Retry.MaxAttempts {
			// Retries exhausted: escalate to permanent so the caller stops.
			// Built directly so the retry reason shadows the transient one.
			transient = false
			err = errorsx.ReasonedError{Err: err, Reason: errorsx.ReasonTTSRetry}
		}
		return Segment{}, GenerationError{
			TurnIndex: turn.Index,
			Speaker:   turn.Speaker,
			Transient: transient,
			Err:       err,
		}
	}

	return Segment{
		TurnIndex:    turn.Index,
		Audio:        audio,
		GenerationID: generationID,
		Voice:        voice,
	}, nil
}

// synthesize performs one provider request under the retry policy, the
// per-call timeout, and the rate-limit breaker.
func (g *Generator) synthesize(ctx context.Context, turn script.Turn, req synth.Request) (synth.Result, int, error) {
	var result synth.Result
	attempts := 0
	err := g.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		attempts++
		if !g.breaker.Allow() {
			return errorsx.Wrap(
				fmt.Errorf("provider circuit open after repeated rate limits"),
				errorsx.ReasonTTSCircuitOpen,
			)
		}
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.PerCallTimeout)
		defer cancel()
		var callErr error
		result, callErr = g.tts.Synthesize(callCtx, req)
		if callErr != nil {
			g.breaker.OnError(callErr)
			g.log.Debug("synthesis attempt failed",
				slog.Int("turn", turn.Index),
				slog.Int("attempt", attempts),
				slog.String("error", callErr.Error()))
			return callErr
		}
		g.breaker.OnSuccess()
		return nil
	})
	return result, attempts, err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
