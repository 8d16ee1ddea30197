package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotesWithoutAPIKey(t *testing.T) {
	c := NewClient("")
	notes := c.Notes(context.Background(), "quantum computing")
	if !strings.Contains(notes, "# Research: quantum computing") {
		t.Fatalf("missing header: %q", notes)
	}
	if !strings.Contains(notes, "No live research available") {
		t.Fatalf("expected no-research fallback: %q", notes)
	}
}

func TestNotesFlattensResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "brave-key" {
			t.Errorf("token header %q", got)
		}
		if q := r.URL.Query().Get("q"); !strings.Contains(q, "fusion power") {
			t.Errorf("query %q", q)
		}
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Breakthrough","url":"https://example.com/a","description":"Net gain achieved","age":"2 days ago"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient("brave-key")
	c.BaseURL = srv.URL
	notes := c.Notes(context.Background(), "fusion power")
	if !strings.Contains(notes, "## Breakthrough") {
		t.Fatalf("missing result title: %q", notes)
	}
	if !strings.Contains(notes, "Net gain achieved") {
		t.Fatalf("missing description: %q", notes)
	}
}

func TestNotesDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("brave-key")
	c.BaseURL = srv.URL
	notes := c.Notes(context.Background(), "anything")
	if !strings.Contains(notes, "No live research available") {
		t.Fatalf("expected fallback on server error: %q", notes)
	}
}
