package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/dimiro1/banner"
	"github.com/joho/godotenv"

	"github.com/harunnryd/newsroom/pkg/logging"
	"github.com/harunnryd/newsroom/pkg/newsroom"
	"github.com/harunnryd/newsroom/pkg/scriptgen"
)

const version = "dev"

func printBanner() {
	tpl := "{{ .Title \"NEWSROOM\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

var slugRe = regexp.MustCompile(`[^a-z0-9-]`)

func slugify(s string) string {
	return slugRe.ReplaceAllString(strings.ReplaceAll(strings.ToLower(s), " ", "-"), "")
}

func main() {
	_ = godotenv.Load()

	var (
		configPath   = flag.String("config", "", "path to config.yaml")
		format       = flag.String("format", "", "broadcast format: news, podcast, debate, narrative")
		length       = flag.String("length", "medium", "script length for auto-generation: short, medium, long")
		scriptPath   = flag.String("script", "", "pre-written script file to render (skips generation)")
		output       = flag.String("output", "", "output file path (default <topic-slug>.mp3)")
		dryRun       = flag.Bool("dry-run", false, "parse and resolve the script only, no audio")
		skipResearch = flag.Bool("skip-research", false, "skip web research for auto-generation")
	)
	flag.Parse()

	cfg, err := newsroom.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Format = *format
	}

	log := logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(log)
	printBanner()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *scriptPath, flag.Arg(0), *length, *output, *dryRun, *skipResearch); err != nil {
		log.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg newsroom.Config, log *slog.Logger, scriptPath, topic, length, output string, dryRun, skipResearch bool) error {
	engine, err := newsroom.NewEngine(cfg, newsroom.WithLogger(log))
	if err != nil {
		return err
	}
	defer engine.Close()

	var rawScript string
	switch {
	case scriptPath != "":
		raw, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		rawScript = string(raw)
	case topic != "":
		rawScript, err = engine.WriteScript(ctx, topic, scriptgen.Length(length), skipResearch)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("usage: newsroom [flags] <topic>  or  newsroom -script script.txt")
	}

	if dryRun {
		previews, err := engine.Preview(rawScript)
		if err != nil {
			return err
		}
		fmt.Printf("%d turns resolved:\n", len(previews))
		for _, p := range previews {
			fmt.Printf("  [%d] %-12s voice=%s  %s\n", p.Index, p.Speaker, p.VoiceID, p.Text)
		}
		return nil
	}

	result, err := engine.Render(ctx, rawScript)
	if err != nil {
		return err
	}
	for _, f := range result.Skipped {
		log.Warn("gap in output", slog.Int("turn", f.TurnIndex), slog.String("speaker", f.Speaker))
	}

	if output == "" {
		name := "broadcast"
		if topic != "" {
			if slug := slugify(topic); slug != "" {
				name = slug
			}
		} else if scriptPath != "" {
			name = strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
		}
		output = name + ".mp3"
	}
	if err := os.WriteFile(output, result.Audio, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Println("Done:", output)
	return nil
}
