package newsroom

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type concatJoiner struct {
	mu     sync.Mutex
	called int
}

func (j *concatJoiner) Join(ctx context.Context, buffers [][]byte) ([]byte, error) {
	j.mu.Lock()
	j.called++
	j.mu.Unlock()
	var out []byte
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out, nil
}

func mockConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Format = "podcast"
	cfg.TTS = VendorConfig{Provider: "mock"}
	cfg.ScriptGen = VendorConfig{}
	return cfg
}

func TestEngineRenderWithMockProvider(t *testing.T) {
	joiner := &concatJoiner{}
	engine, err := NewEngine(mockConfig(t), WithJoiner(joiner))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	result, err := engine.Render(context.Background(), "HOST: [excited] Hi!\nCO-HOST: Hey!")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.Segments != 2 {
		t.Fatalf("expected 2 segments, got %d", result.Segments)
	}
	if len(result.Audio) == 0 {
		t.Fatalf("expected joined audio")
	}
	if joiner.called != 1 {
		t.Fatalf("joiner called %d times", joiner.called)
	}
}

func TestEnginePreviewResolvesWithoutAudio(t *testing.T) {
	engine, err := NewEngine(mockConfig(t))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	previews, err := engine.Preview("HOST: one\nCO-HOST: two")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("expected 2 previews, got %d", len(previews))
	}
}

func TestEngineRejectsUnknownFormat(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Format = "sitcom"
	if _, err := NewEngine(cfg); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestEngineRejectsUnknownProvider(t *testing.T) {
	cfg := mockConfig(t)
	cfg.TTS = VendorConfig{Provider: "nonesuch"}
	if _, err := NewEngine(cfg); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestEngineReportsScriptGenMisconfiguration(t *testing.T) {
	cfg := mockConfig(t)
	cfg.ScriptGen = VendorConfig{
		Provider: "openai",
		Settings: map[string]any{"api_key": ""},
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	engine, err := NewEngine(cfg, WithLogger(log))
	if err != nil {
		t.Fatalf("optional scriptgen must not block the engine: %v", err)
	}
	defer engine.Close()

	if !strings.Contains(buf.String(), "script generation disabled") {
		t.Fatalf("misconfiguration not reported: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "api_key") {
		t.Fatalf("underlying cause lost: %q", buf.String())
	}
	if _, err := engine.WriteScript(context.Background(), "topic", "medium", true); err == nil {
		t.Fatalf("expected error from unconfigured script generation")
	}
}

func TestEngineParseErrorSurfaces(t *testing.T) {
	engine, err := NewEngine(mockConfig(t))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Render(context.Background(), "no colon here"); err == nil {
		t.Fatalf("expected parse error")
	}
}
