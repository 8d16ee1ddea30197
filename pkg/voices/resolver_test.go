package voices

import (
	"errors"
	"testing"

	"github.com/harunnryd/newsroom/pkg/errorsx"
)

func TestResolveFormatDefaults(t *testing.T) {
	r := NewResolver(FormatPodcast, nil, "eleven_v3", "mp3_44100_128")
	host, err := r.Resolve("HOST")
	if err != nil {
		t.Fatalf("resolve HOST: %v", err)
	}
	cohost, err := r.Resolve("CO-HOST")
	if err != nil {
		t.Fatalf("resolve CO-HOST: %v", err)
	}
	if host.VoiceID == cohost.VoiceID {
		t.Fatalf("podcast hosts must default to distinct voices")
	}
	if host.Model != "eleven_v3" || host.OutputFormat != "mp3_44100_128" {
		t.Fatalf("settings not carried: %+v", host)
	}
}

func TestResolveOverrideWinsOverDefault(t *testing.T) {
	r := NewResolver(FormatPodcast, map[string]string{"host": "custom-voice"}, "m", "f")
	v, err := r.Resolve("HOST")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v.VoiceID != "custom-voice" {
		t.Fatalf("override ignored, got %q", v.VoiceID)
	}
}

func TestResolveOverrideAddsNewSpeaker(t *testing.T) {
	r := NewResolver(FormatNews, map[string]string{"GUEST": "guest-voice"}, "m", "f")
	v, err := r.Resolve("guest")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v.VoiceID != "guest-voice" {
		t.Fatalf("got %q", v.VoiceID)
	}
}

func TestResolveUnknownSpeakerFails(t *testing.T) {
	r := NewResolver(FormatNews, nil, "m", "f")
	_, err := r.Resolve("MYSTERY")
	var unknown UnknownSpeakerError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownSpeakerError, got %v", err)
	}
	if unknown.Speaker != "MYSTERY" {
		t.Fatalf("error missing speaker: %+v", unknown)
	}
	if !errorsx.HasReason(err, errorsx.ReasonVoiceUnknown) {
		t.Fatalf("expected voice_unknown reason")
	}
}

func TestResolveCachedIdentity(t *testing.T) {
	r := NewResolver(FormatPodcast, nil, "m", "f")
	first, err := r.Resolve("HOST")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := r.Resolve("host")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical *VoiceIdentity for the same label")
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("podcast"); err != nil {
		t.Fatalf("podcast should parse: %v", err)
	}
	if _, err := ParseFormat("television"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
