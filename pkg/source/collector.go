package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Output is what ingestion hands to the pipeline: every candidate that
// arrived before the budget expired, plus one warning per skipped or
// abandoned source.
type Output struct {
	Candidates []Candidate
	Warnings   []string
}

// Collector fans sources out over a bounded worker pool and funnels every
// result through a single aggregation channel. Only the collector
// goroutine ever touches the shared candidate slice, so adapters stay
// free of shared mutable state.
type Collector struct {
	Workers int
	Budget  time.Duration

	log *slog.Logger
}

// NewCollector builds a collector. workers caps concurrent fetches;
// budget is the wall-clock limit for the whole ingestion phase.
func NewCollector(workers int, budget time.Duration, log *slog.Logger) *Collector {
	if workers <= 0 {
		workers = 4
	}
	if budget <= 0 {
		budget = 2 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Collector{Workers: workers, Budget: budget, log: log}
}

type fetchResult struct {
	idx        int
	id         string
	candidates []Candidate
	err        error
}

// Collect runs every source and aggregates their candidates. A failing
// source becomes a warning, never an error; an unfinished source at
// budget expiry is abandoned and warned about. Candidates are flattened
// in declared source order so identical inputs always produce identical
// output regardless of fetch completion order.
func (c *Collector) Collect(ctx context.Context, sources []Source) Output {
	ctx, cancel := context.WithTimeout(ctx, c.Budget)
	defer cancel()

	results := make(chan fetchResult, len(sources))
	sem := make(chan struct{}, c.Workers)

	for i, src := range sources {
		go func(idx int, src Source) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- fetchResult{idx: idx, id: src.ID(), err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			start := time.Now()
			candidates, err := src.Fetch(ctx)
			c.log.Debug("source fetch done",
				"source", src.ID(), "items", len(candidates),
				"elapsed", time.Since(start), "err", err)
			results <- fetchResult{idx: idx, id: src.ID(), candidates: candidates, err: err}
		}(i, src)
	}

	// Single-writer aggregation point.
	byIndex := make(map[int]fetchResult, len(sources))
	deadline := time.NewTimer(c.Budget)
	defer deadline.Stop()

collect:
	for len(byIndex) < len(sources) {
		select {
		case r := <-results:
			byIndex[r.idx] = r
		case <-deadline.C:
			break collect
		}
	}

	var out Output
	var abandoned []string
	for i, src := range sources {
		r, ok := byIndex[i]
		if !ok {
			abandoned = append(abandoned, src.ID())
			continue
		}
		if r.err != nil {
			c.log.Warn("source skipped", "source", r.id, "err", r.err)
			out.Warnings = append(out.Warnings, fmt.Sprintf("source %s skipped: %v", r.id, r.err))
			continue
		}
		out.Candidates = append(out.Candidates, r.candidates...)
	}

	if len(abandoned) > 0 {
		sort.Strings(abandoned)
		for _, id := range abandoned {
			out.Warnings = append(out.Warnings, fmt.Sprintf("source %s abandoned: ingest budget expired", id))
		}
	}

	return out
}
