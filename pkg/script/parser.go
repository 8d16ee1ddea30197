package script

import (
	"fmt"
	"strings"

	"github.com/harunnryd/newsroom/pkg/errorsx"
)

// Turn is one speaker utterance parsed from a script line. Text keeps any
// bracketed delivery tags byte-for-byte; the synthesis model interprets
// them natively, so nothing downstream strips or reorders them.
type Turn struct {
	Speaker string
	Text    string
	Index   int
}

// MalformedTurnError reports a non-blank line without a SPEAKER: prefix.
type MalformedTurnError struct {
	LineNumber int
	Line       string
}

func (e MalformedTurnError) Error() string {
	return fmt.Sprintf("line %d: no speaker prefix: %q", e.LineNumber, e.Line)
}

// EmptyScriptError reports a script that yielded zero turns.
type EmptyScriptError struct{}

func (EmptyScriptError) Error() string { return "script contains no speaker turns" }

// NormalizeSpeaker canonicalizes a speaker label for identity comparison.
// Every map keyed by speaker label downstream must use this exact form.
func NormalizeSpeaker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Parse splits raw script text into ordered turns, one per non-blank line.
// Blank lines are skipped; a non-blank line without a colon is a parse
// error rather than silently dropped dialogue.
func Parse(raw string) ([]Turn, error) {
	var turns []Turn
	for lineNo, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		label, rest, ok := strings.Cut(trimmed, ":")
		if !ok || strings.TrimSpace(label) == "" {
			return nil, errorsx.Wrap(
				MalformedTurnError{LineNumber: lineNo + 1, Line: trimmed},
				errorsx.ReasonScriptMalformed,
			)
		}
		text := strings.TrimSpace(rest)
		if text == "" {
			return nil, errorsx.Wrap(
				MalformedTurnError{LineNumber: lineNo + 1, Line: trimmed},
				errorsx.ReasonScriptMalformed,
			)
		}
		turns = append(turns, Turn{
			Speaker: NormalizeSpeaker(label),
			Text:    text,
			Index:   len(turns),
		})
	}
	if len(turns) == 0 {
		return nil, errorsx.Wrap(EmptyScriptError{}, errorsx.ReasonScriptEmpty)
	}
	return turns, nil
}

// Speakers returns the distinct normalized speaker labels in first-seen order.
func Speakers(turns []Turn) []string {
	seen := make(map[string]bool, len(turns))
	var out []string
	for _, t := range turns {
		if !seen[t.Speaker] {
			seen[t.Speaker] = true
			out = append(out, t.Speaker)
		}
	}
	return out
}

// WordCount sums the whitespace-separated words across all turns.
func WordCount(turns []Turn) int {
	n := 0
	for _, t := range turns {
		n += len(strings.Fields(t.Text))
	}
	return n
}
