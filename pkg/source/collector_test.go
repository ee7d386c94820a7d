package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSource struct {
	id    string
	items []Candidate
	err   error
	delay time.Duration
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Fetch(ctx context.Context) ([]Candidate, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.items, f.err
}

func TestCollectFlattensInDeclaredOrder(t *testing.T) {
	t.Parallel()

	sources := []Source{
		&fakeSource{id: "slow", delay: 50 * time.Millisecond, items: []Candidate{
			{Source: "slow", Title: "first"},
			{Source: "slow", Title: "second"},
		}},
		&fakeSource{id: "fast", items: []Candidate{
			{Source: "fast", Title: "third"},
		}},
	}

	out := NewCollector(4, time.Minute, nil).Collect(context.Background(), sources)

	if len(out.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(out.Candidates))
	}
	want := []string{"first", "second", "third"}
	for i, title := range want {
		if out.Candidates[i].Title != title {
			t.Fatalf("candidate %d: expected %q, got %q", i, title, out.Candidates[i].Title)
		}
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", out.Warnings)
	}
}

func TestCollectFailedSourceBecomesWarning(t *testing.T) {
	t.Parallel()

	sources := []Source{
		&fakeSource{id: "healthy", items: []Candidate{{Source: "healthy", Title: "ok"}}},
		&fakeSource{id: "down", err: errors.New("connection refused")},
	}

	out := NewCollector(4, time.Minute, nil).Collect(context.Background(), sources)

	if len(out.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(out.Candidates))
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", out.Warnings)
	}
	if !strings.Contains(out.Warnings[0], "source down skipped") {
		t.Fatalf("unexpected warning: %s", out.Warnings[0])
	}
}

func TestCollectAbandonsSlowSourceAtBudget(t *testing.T) {
	t.Parallel()

	sources := []Source{
		&fakeSource{id: "quick", items: []Candidate{{Source: "quick", Title: "made it"}}},
		&fakeSource{id: "stuck", delay: 2 * time.Second, items: []Candidate{{Source: "stuck", Title: "too late"}}},
	}

	out := NewCollector(4, 100*time.Millisecond, nil).Collect(context.Background(), sources)

	if len(out.Candidates) != 1 || out.Candidates[0].Title != "made it" {
		t.Fatalf("expected only the quick source's candidate, got %v", out.Candidates)
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", out.Warnings)
	}
	if !strings.Contains(out.Warnings[0], "source stuck abandoned") {
		t.Fatalf("unexpected warning: %s", out.Warnings[0])
	}
}

func TestCollectNoSources(t *testing.T) {
	t.Parallel()

	out := NewCollector(4, time.Minute, nil).Collect(context.Background(), nil)
	if len(out.Candidates) != 0 || len(out.Warnings) != 0 {
		t.Fatalf("expected empty output, got %+v", out)
	}
}
