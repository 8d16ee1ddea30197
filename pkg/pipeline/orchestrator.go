package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/harunnryd/newsroom/pkg/audio"
	"github.com/harunnryd/newsroom/pkg/continuity"
	"github.com/harunnryd/newsroom/pkg/metrics"
	"github.com/harunnryd/newsroom/pkg/script"
	"github.com/harunnryd/newsroom/pkg/segment"
	"github.com/harunnryd/newsroom/pkg/voices"
)

// Config tunes one orchestrator.
type Config struct {
	Policy FailurePolicy
	// Concurrency bounds in-flight synthesis calls across all voices.
	// Values <= 1 run the whole script sequentially.
	Concurrency int
}

// Generator is the segment-generation collaborator. Satisfied by
// *segment.Generator; narrowed to an interface so tests can stub it.
type Generator interface {
	Generate(ctx context.Context, turn script.Turn, voice *voices.VoiceIdentity, history []string) (segment.Segment, error)
}

// TurnFailure is one skipped turn under the best-effort policy.
type TurnFailure struct {
	TurnIndex int
	Speaker   string
	Err       error
}

// RunResult is the outcome of a completed (possibly gappy) run.
type RunResult struct {
	Audio    []byte
	Segments int
	Skipped  []TurnFailure
}

// TurnPreview is one resolved turn from a dry run.
type TurnPreview struct {
	Index   int
	Speaker string
	VoiceID string
	Text    string
}

// Orchestrator drives the whole script: resolve voice, read continuity
// history, generate, record history, and finally hand the ordered audio
// buffers to the joiner. It owns all ledger bookkeeping; the generator
// never mutates shared state.
type Orchestrator struct {
	resolver *voices.Resolver
	ledger   *continuity.Ledger
	gen      Generator
	joiner   audio.Joiner
	cfg      Config
	obs      metrics.Observer
	log      *slog.Logger
}

func NewOrchestrator(resolver *voices.Resolver, gen Generator, joiner audio.Joiner, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	o := &Orchestrator{
		resolver: resolver,
		ledger:   continuity.NewLedger(),
		gen:      gen,
		joiner:   joiner,
		cfg:      cfg,
		obs:      metrics.NoopObserver{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type Option func(*Orchestrator)

func WithObserver(obs metrics.Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.obs = obs
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// DryRun resolves every turn without a single synthesis call, so a script
// can be reviewed before spending provider quota.
func (o *Orchestrator) DryRun(turns []script.Turn) ([]TurnPreview, error) {
	previews := make([]TurnPreview, 0, len(turns))
	for _, t := range turns {
		voice, err := o.resolver.Resolve(t.Speaker)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", t.Index, err)
		}
		previews = append(previews, TurnPreview{
			Index:   t.Index,
			Speaker: t.Speaker,
			VoiceID: voice.VoiceID,
			Text:    t.Text,
		})
	}
	return previews, nil
}

// Run generates audio for every turn and joins the segments in script
// order. Under fail-fast any failure aborts the run before the joiner is
// invoked; under best-effort failed turns become reported gaps.
func (o *Orchestrator) Run(ctx context.Context, turns []script.Turn) (*RunResult, error) {
	if len(turns) == 0 {
		return nil, script.EmptyScriptError{}
	}

	// Resolve every unique speaker up front so an unknown label aborts
	// before any network call.
	voiceFor := make([]*voices.VoiceIdentity, len(turns))
	for _, t := range turns {
		voice, err := o.resolver.Resolve(t.Speaker)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", t.Index, err)
		}
		voiceFor[t.Index] = voice
	}

	run := &runState{
		turns:    turns,
		voiceFor: voiceFor,
		states:   make([]TurnState, len(turns)),
		segments: make([]*segment.Segment, len(turns)),
	}

	o.dispatch(ctx, run)

	if o.cfg.Policy == FailFast {
		if err := run.firstErr(); err != nil {
			// Completed segments are discarded; no partial output.
			return nil, err
		}
	}
	// A cancelled run never produces output under either policy: turns
	// that were never attempted are not reported gaps, so joining the
	// survivors would silently omit dialogue.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordered, skipped := run.collect()
	if len(ordered) == 0 {
		if err := run.firstErr(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no segments generated")
	}
	for _, f := range skipped {
		o.log.Warn("turn skipped",
			slog.Int("turn", f.TurnIndex),
			slog.String("speaker", f.Speaker),
			slog.String("error", f.Err.Error()))
	}

	buffers := make([][]byte, 0, len(ordered))
	var total time.Duration
	for _, seg := range ordered {
		buffers = append(buffers, seg.Audio)
		if d, err := audio.MP3Duration(seg.Audio); err == nil {
			total += d
		}
	}

	joined, err := o.joiner.Join(ctx, buffers)
	if err != nil {
		return nil, err
	}
	o.log.Info("run complete",
		slog.Int("segments", len(ordered)),
		slog.Int("skipped", len(skipped)),
		slog.Duration("play_length", total),
		slog.Int("size_bytes", len(joined)))
	o.obs.RecordEvent(metrics.MetricsEvent{
		Name:  "run_segments",
		Time:  time.Now(),
		Value: float64(len(ordered)),
		Tags:  map[string]string{"policy": o.cfg.Policy.String()},
	})

	return &RunResult{Audio: joined, Segments: len(ordered), Skipped: skipped}, nil
}

// dispatch executes the script either as a strict sequential loop (the
// default) or fanned out to one in-order worker per voice. The per-voice
// queue is the sequencing construct: turns sharing a voice serialize in
// script order (so every history read sees all earlier successes for that
// voice), while distinct voices generate concurrently up to the
// concurrency bound.
func (o *Orchestrator) dispatch(ctx context.Context, run *runState) {
	if o.cfg.Concurrency <= 1 {
		for _, t := range run.turns {
			if ctx.Err() != nil {
				return
			}
			if !o.runTurn(ctx, run, t.Index) {
				if o.cfg.Policy == FailFast {
					return
				}
			}
		}
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	byVoice := make(map[string][]int)
	var voiceOrder []string
	for _, t := range run.turns {
		id := run.voiceFor[t.Index].VoiceID
		if _, ok := byVoice[id]; !ok {
			voiceOrder = append(voiceOrder, id)
		}
		byVoice[id] = append(byVoice[id], t.Index)
	}

	sem := make(chan struct{}, o.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, voiceID := range voiceOrder {
		indices := byVoice[voiceID]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, idx := range indices {
				select {
				case sem <- struct{}{}:
				case <-runCtx.Done():
					// Stop dispatching; in-flight calls finish on their own.
					return
				}
				done := o.runTurn(runCtx, run, idx)
				<-sem
				if !done && o.cfg.Policy == FailFast {
					cancel()
					return
				}
				if !done && o.cfg.Policy == BestEffort {
					// A failed turn must not poison later turns for this
					// voice; continuity history simply misses one entry.
					continue
				}
			}
		}()
	}
	wg.Wait()
}

// runTurn executes one turn end to end: history read, generation, and on
// success the ledger record. Returns false on failure.
func (o *Orchestrator) runTurn(ctx context.Context, run *runState, idx int) bool {
	turn := run.turns[idx]
	voice := run.voiceFor[idx]
	run.setState(idx, TurnInFlight)

	history := o.ledger.HistoryFor(voice)
	o.log.Debug("generating turn",
		slog.Int("turn", idx),
		slog.String("speaker", turn.Speaker),
		slog.String("voice_id", voice.VoiceID),
		slog.Int("history", len(history)))

	seg, err := o.gen.Generate(ctx, turn, voice, history)
	if err != nil {
		run.fail(idx, TurnFailure{TurnIndex: idx, Speaker: turn.Speaker, Err: err})
		return false
	}

	o.ledger.Record(voice, seg.GenerationID)
	run.complete(idx, seg)
	return true
}

// runState is the orchestrator's shared bookkeeping for one run.
type runState struct {
	turns    []script.Turn
	voiceFor []*voices.VoiceIdentity

	mu       sync.Mutex
	states   []TurnState
	segments []*segment.Segment
	failures []TurnFailure
}

func (r *runState) setState(idx int, s TurnState) {
	r.mu.Lock()
	r.states[idx] = s
	r.mu.Unlock()
}

func (r *runState) complete(idx int, seg segment.Segment) {
	r.mu.Lock()
	r.states[idx] = TurnDone
	r.segments[idx] = &seg
	r.mu.Unlock()
}

func (r *runState) fail(idx int, f TurnFailure) {
	r.mu.Lock()
	r.states[idx] = TurnFailed
	r.failures = append(r.failures, f)
	r.mu.Unlock()
}

// firstErr returns the failure with the lowest turn index, preferring
// real synthesis failures over cancellation fallout: under concurrent
// fail-fast a lower-indexed in-flight turn fails with context.Canceled
// as a side effect of the abort and must not mask the root cause.
func (r *runState) firstErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first, firstReal *TurnFailure
	for i := range r.failures {
		f := &r.failures[i]
		if first == nil || f.TurnIndex < first.TurnIndex {
			first = f
		}
		if errors.Is(f.Err, context.Canceled) {
			continue
		}
		if firstReal == nil || f.TurnIndex < firstReal.TurnIndex {
			firstReal = f
		}
	}
	if firstReal != nil {
		return firstReal.Err
	}
	if first != nil {
		return first.Err
	}
	return nil
}

// collect returns completed segments in turn order plus the skipped turns
// sorted by index.
func (r *runState) collect() ([]segment.Segment, []TurnFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ordered []segment.Segment
	for _, seg := range r.segments {
		if seg != nil {
			ordered = append(ordered, *seg)
		}
	}
	skipped := make([]TurnFailure, len(r.failures))
	copy(skipped, r.failures)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].TurnIndex < skipped[j].TurnIndex })
	return ordered, skipped
}
