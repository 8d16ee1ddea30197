package voices

import (
	"fmt"
	"sync"

	"github.com/harunnryd/newsroom/pkg/errorsx"
	"github.com/harunnryd/newsroom/pkg/script"
)

// FormatKind selects the built-in speaker roster for a broadcast format.
type FormatKind string

const (
	FormatNews      FormatKind = "news"
	FormatPodcast   FormatKind = "podcast"
	FormatDebate    FormatKind = "debate"
	FormatNarrative FormatKind = "narrative"
)

// ParseFormat validates a format name from config or CLI input.
func ParseFormat(s string) (FormatKind, error) {
	switch FormatKind(s) {
	case FormatNews, FormatPodcast, FormatDebate, FormatNarrative:
		return FormatKind(s), nil
	}
	return "", fmt.Errorf("unknown format %q (news, podcast, debate, narrative)", s)
}

// VoiceIdentity is a resolved speaker-to-voice mapping plus the synthesis
// settings used for every turn spoken by that voice. Resolved once per
// speaker and never mutated.
type VoiceIdentity struct {
	VoiceID      string
	Model        string
	OutputFormat string
}

// UnknownSpeakerError reports a speaker label with no override and no
// format default. The pipeline never guesses a fallback voice; silently
// misattributed dialogue is worse than a failed run.
type UnknownSpeakerError struct {
	Speaker string
	Format  FormatKind
}

func (e UnknownSpeakerError) Error() string {
	return fmt.Sprintf("no voice for speaker %q in format %s", e.Speaker, e.Format)
}

// Default voice assignments per format, keyed by normalized speaker label.
var formatDefaults = map[FormatKind]map[string]string{
	FormatNews: {
		"ANCHOR": "cjVigY5qzO86Huf0OWal",
	},
	FormatPodcast: {
		"HOST":    "cjVigY5qzO86Huf0OWal",
		"CO-HOST": "TX3LPaxmHKxFdv7VOQHJ",
		"COHOST":  "TX3LPaxmHKxFdv7VOQHJ",
	},
	FormatDebate: {
		"MODERATOR": "cjVigY5qzO86Huf0OWal",
		"SIDE-A":    "TX3LPaxmHKxFdv7VOQHJ",
		"SIDEA":     "TX3LPaxmHKxFdv7VOQHJ",
		"SIDE-B":    "EXAVITQu4vr4xnSAxGW1",
		"SIDEB":     "EXAVITQu4vr4xnSAxGW1",
	},
	FormatNarrative: {
		"NARRATOR": "nPczCjz82KWdKScP46A1",
	},
}

// ExpectedSpeakers returns the labels a format's default roster covers.
func ExpectedSpeakers(format FormatKind) []string {
	defaults := formatDefaults[format]
	out := make([]string, 0, len(defaults))
	for label := range defaults {
		out = append(out, label)
	}
	return out
}

// Resolver maps speaker labels to voice identities for one pipeline run.
// Resolution is cached so the same label always yields the identical
// *VoiceIdentity; the continuity ledger depends on stable identities.
type Resolver struct {
	format       FormatKind
	overrides    map[string]string
	model        string
	outputFormat string

	mu    sync.Mutex
	cache map[string]*VoiceIdentity
}

// NewResolver builds a resolver for a format. Override keys may arrive in
// any case; they are normalized once here.
func NewResolver(format FormatKind, overrides map[string]string, model, outputFormat string) *Resolver {
	normalized := make(map[string]string, len(overrides))
	for label, voiceID := range overrides {
		normalized[script.NormalizeSpeaker(label)] = voiceID
	}
	return &Resolver{
		format:       format,
		overrides:    normalized,
		model:        model,
		outputFormat: outputFormat,
		cache:        make(map[string]*VoiceIdentity),
	}
}

// Resolve returns the voice identity for a speaker label. Overrides win
// over format defaults; an unmatched label fails the run.
func (r *Resolver) Resolve(label string) (*VoiceIdentity, error) {
	key := script.NormalizeSpeaker(label)

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache[key]; ok {
		return v, nil
	}

	voiceID, ok := r.overrides[key]
	if !ok {
		voiceID, ok = formatDefaults[r.format][key]
	}
	if !ok {
		return nil, errorsx.Wrap(
			UnknownSpeakerError{Speaker: key, Format: r.format},
			errorsx.ReasonVoiceUnknown,
		)
	}

	v := &VoiceIdentity{
		VoiceID:      voiceID,
		Model:        r.model,
		OutputFormat: r.outputFormat,
	}
	r.cache[key] = v
	return v, nil
}
