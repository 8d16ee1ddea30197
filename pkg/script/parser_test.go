package script

import (
	"errors"
	"testing"

	"github.com/harunnryd/newsroom/pkg/errorsx"
)

func TestParseOrderAndCount(t *testing.T) {
	raw := "HOST: [excited] Hi!\n\nCO-HOST: [laughing] Hey!\n\nHOST: [thoughtful] So...\n"
	turns, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	wantSpeakers := []string{"HOST", "CO-HOST", "HOST"}
	for i, turn := range turns {
		if turn.Index != i {
			t.Fatalf("turn %d has index %d", i, turn.Index)
		}
		if turn.Speaker != wantSpeakers[i] {
			t.Fatalf("turn %d speaker %q, want %q", i, turn.Speaker, wantSpeakers[i])
		}
	}
}

func TestParseKeepsTagsVerbatim(t *testing.T) {
	raw := "ANCHOR: [serious] Markets fell [sigh] again [long pause] today."
	turns, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "[serious] Markets fell [sigh] again [long pause] today."
	if turns[0].Text != want {
		t.Fatalf("text mutated:\n got %q\nwant %q", turns[0].Text, want)
	}
}

func TestParseNormalizesSpeakerCase(t *testing.T) {
	turns, err := Parse("host: one\nHoSt: two\n  HOST  : three")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i, turn := range turns {
		if turn.Speaker != "HOST" {
			t.Fatalf("turn %d speaker %q, want HOST", i, turn.Speaker)
		}
	}
}

func TestParseMalformedLine(t *testing.T) {
	raw := "HOST: fine line\nrandom text no colon\nHOST: never reached"
	_, err := Parse(raw)
	var malformed MalformedTurnError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedTurnError, got %v", err)
	}
	if malformed.LineNumber != 2 {
		t.Fatalf("expected line 2, got %d", malformed.LineNumber)
	}
	if !errorsx.HasReason(err, errorsx.ReasonScriptMalformed) {
		t.Fatalf("expected script_malformed reason")
	}
}

func TestParseEmptyScript(t *testing.T) {
	for _, raw := range []string{"", "\n\n\n", "   \n\t\n"} {
		_, err := Parse(raw)
		var empty EmptyScriptError
		if !errors.As(err, &empty) {
			t.Fatalf("input %q: expected EmptyScriptError, got %v", raw, err)
		}
		if !errorsx.HasReason(err, errorsx.ReasonScriptEmpty) {
			t.Fatalf("expected script_empty reason")
		}
	}
}

func TestParseColonInsideText(t *testing.T) {
	turns, err := Parse("HOST: the ratio was 3:1 yesterday")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if turns[0].Text != "the ratio was 3:1 yesterday" {
		t.Fatalf("text split on wrong colon: %q", turns[0].Text)
	}
}

func TestSpeakersFirstSeenOrder(t *testing.T) {
	turns, _ := Parse("B: one\nA: two\nB: three")
	got := Speakers(turns)
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Fatalf("unexpected speakers %v", got)
	}
}
