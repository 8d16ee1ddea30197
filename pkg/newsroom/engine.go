package newsroom

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/harunnryd/newsroom/pkg/audio"
	"github.com/harunnryd/newsroom/pkg/configutil"
	"github.com/harunnryd/newsroom/pkg/logging"
	"github.com/harunnryd/newsroom/pkg/metrics"
	"github.com/harunnryd/newsroom/pkg/pipeline"
	"github.com/harunnryd/newsroom/pkg/providers/elevenlabs"
	"github.com/harunnryd/newsroom/pkg/providers/mock"
	"github.com/harunnryd/newsroom/pkg/research"
	"github.com/harunnryd/newsroom/pkg/resilience"
	"github.com/harunnryd/newsroom/pkg/script"
	"github.com/harunnryd/newsroom/pkg/scriptgen"
	"github.com/harunnryd/newsroom/pkg/segment"
	"github.com/harunnryd/newsroom/pkg/synth"
	"github.com/harunnryd/newsroom/pkg/voices"
)

type elevenlabsSettings struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ModelID      string `mapstructure:"model_id"`
	OutputFormat string `mapstructure:"output_format"`
	TimeoutMS    int    `mapstructure:"timeout_ms"`
}

var elevenlabsSchema = configutil.Schema{
	Required: []string{"api_key"},
	Optional: []string{"base_url", "model_id", "output_format", "timeout_ms"},
}

type openAISettings struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

var openAISchema = configutil.Schema{
	Required: []string{"api_key"},
	Optional: []string{"model", "base_url"},
}

// Engine wires the parser, resolver, generator, and orchestrator for one
// configuration. Build once, render any number of scripts.
type Engine struct {
	cfg      Config
	format   voices.FormatKind
	tts      synth.Synthesizer
	joiner   audio.Joiner
	obs      metrics.Observer
	flush    func() error
	log      *slog.Logger
	writer   *scriptgen.Generator
	notes    *research.Client
	settings struct {
		model        string
		outputFormat string
	}
}

type EngineOption func(*Engine)

// WithSynthesizer overrides the configured TTS provider, mainly for tests
// and offline runs.
func WithSynthesizer(s synth.Synthesizer) EngineOption {
	return func(e *Engine) { e.tts = s }
}

func WithJoiner(j audio.Joiner) EngineOption {
	return func(e *Engine) { e.joiner = j }
}

func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	format, err := voices.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		format: format,
		joiner: audio.FFmpegJoiner{},
		obs:    metrics.NoopObserver{},
		flush:  func() error { return nil },
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Metrics.JSONLPath != "" {
		f, err := os.OpenFile(cfg.Metrics.JSONLPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open metrics file: %w", err)
		}
		async := metrics.NewAsyncObserver(metrics.NewJSONLObserver(f), 256)
		e.obs = async
		e.flush = func() error {
			async.Close()
			return f.Close()
		}
	}

	if e.tts == nil {
		tts, model, outputFormat, err := buildSynthesizer(cfg.TTS)
		if err != nil {
			return nil, err
		}
		e.tts = tts
		e.settings.model = model
		e.settings.outputFormat = outputFormat
	}

	if cfg.ScriptGen.Provider == "openai" && cfg.ScriptGen.Settings != nil {
		// Script generation is optional, so a misconfiguration must not
		// block render-only use. It still gets reported, not swallowed.
		writer, err := buildScriptWriter(cfg.ScriptGen)
		if err != nil {
			e.log.Warn("script generation disabled",
				slog.String("error", err.Error()))
		} else {
			e.writer = writer
		}
	}
	e.notes = research.NewClient(cfg.Research.APIKey)

	return e, nil
}

func buildScriptWriter(vendor VendorConfig) (*scriptgen.Generator, error) {
	if err := configutil.ValidateSettings(vendor.Settings, openAISchema); err != nil {
		return nil, fmt.Errorf("scriptgen settings: %w", err)
	}
	var s openAISettings
	if err := configutil.DecodeSettings(vendor.Settings, &s); err != nil {
		return nil, fmt.Errorf("scriptgen settings: %w", err)
	}
	return scriptgen.New(scriptgen.Config{
		APIKey:  s.APIKey,
		Model:   s.Model,
		BaseURL: s.BaseURL,
	})
}

func buildSynthesizer(vendor VendorConfig) (synth.Synthesizer, string, string, error) {
	switch vendor.Provider {
	case "elevenlabs":
		if err := configutil.ValidateSettings(vendor.Settings, elevenlabsSchema); err != nil {
			return nil, "", "", fmt.Errorf("tts settings: %w", err)
		}
		var s elevenlabsSettings
		if err := configutil.DecodeSettings(vendor.Settings, &s); err != nil {
			return nil, "", "", fmt.Errorf("tts settings: %w", err)
		}
		client, err := elevenlabs.New(elevenlabs.Config{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Timeout: time.Duration(s.TimeoutMS) * time.Millisecond,
		})
		if err != nil {
			return nil, "", "", err
		}
		return client, s.ModelID, s.OutputFormat, nil
	case "mock":
		return mock.NewSynthesizer(), "mock_model", "mp3_44100_128", nil
	default:
		return nil, "", "", fmt.Errorf("unknown tts provider %q", vendor.Provider)
	}
}

func (e *Engine) newOrchestrator() *pipeline.Orchestrator {
	resolver := voices.NewResolver(e.format, e.cfg.Voices, e.settings.model, e.settings.outputFormat)
	gen := segment.NewGenerator(e.tts, segment.Config{
		Retry: resilience.RetryPolicy{
			MaxAttempts: e.cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(e.cfg.Retry.BaseDelayMS) * time.Millisecond,
			MaxDelay:    time.Duration(e.cfg.Retry.MaxDelayMS) * time.Millisecond,
			Jitter:      e.cfg.Retry.Jitter,
		},
		PerCallTimeout: time.Duration(e.cfg.Retry.CallTimeoutMS) * time.Millisecond,
	}, segment.WithObserver(e.obs), segment.WithLogger(logging.NewComponentLogger(e.log, "segment")))

	return pipeline.NewOrchestrator(resolver, gen, e.joiner, pipeline.Config{
		Policy:      pipeline.ParseFailurePolicy(e.cfg.FailurePolicy),
		Concurrency: e.cfg.Concurrency,
	}, pipeline.WithObserver(e.obs), pipeline.WithLogger(logging.NewComponentLogger(e.log, "pipeline")))
}

// Render parses raw script text and produces the joined broadcast audio.
// Each call is an independent run with a fresh continuity ledger.
func (e *Engine) Render(ctx context.Context, rawScript string) (*pipeline.RunResult, error) {
	turns, err := script.Parse(rawScript)
	if err != nil {
		return nil, err
	}
	e.log.Info("script parsed",
		slog.Int("turns", len(turns)),
		slog.Int("words", script.WordCount(turns)),
		slog.Any("speakers", script.Speakers(turns)))
	return e.newOrchestrator().Run(ctx, turns)
}

// Preview parses and voice-resolves a script without any synthesis call.
func (e *Engine) Preview(rawScript string) ([]pipeline.TurnPreview, error) {
	turns, err := script.Parse(rawScript)
	if err != nil {
		return nil, err
	}
	return e.newOrchestrator().DryRun(turns)
}

// WriteScript generates raw script text for a topic using the optional
// research and script-generation collaborators.
func (e *Engine) WriteScript(ctx context.Context, topic string, length scriptgen.Length, skipResearch bool) (string, error) {
	if e.writer == nil {
		return "", fmt.Errorf("script generation not configured (set scriptgen.settings.api_key)")
	}
	notes := ""
	if !skipResearch {
		notes = e.notes.Notes(ctx, topic)
	}
	return e.writer.Generate(ctx, topic, e.format, length, notes)
}

// Close flushes any buffered metrics.
func (e *Engine) Close() error { return e.flush() }
