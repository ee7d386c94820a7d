// Package pipeline implements the trend aggregation engine: candidates
// from independent sources are normalized, collapsed into story clusters,
// scored for freshness and cross-source velocity, diffed against the
// previous run, and checked against the quality gates.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/dailytrending/trendwatch/pkg/source"
)

// Pipeline wires the stages together. Ingestion is the only concurrent
// phase; everything after the collector runs single-threaded over an
// immutable snapshot of the aggregated candidates.
type Pipeline struct {
	Collector  *source.Collector
	Sources    []source.Source
	Normalizer *Normalizer
	Dedup      *Deduplicator
	Scorer     *Scorer
	Comparator *Comparator
	Gate       *Gate

	log *slog.Logger
}

// New assembles a pipeline from its stages.
func New(collector *source.Collector, sources []source.Source, n *Normalizer,
	d *Deduplicator, s *Scorer, c *Comparator, g *Gate, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Collector:  collector,
		Sources:    sources,
		Normalizer: n,
		Dedup:      d,
		Scorer:     s,
		Comparator: c,
		Gate:       g,
		log:        log,
	}
}

// Run executes a full pass. yesterday is the previous run's snapshot, nil
// on first run or after a read failure; its absence degrades the
// comparator and records a warning. The returned error is non-nil only
// for a fatal quality-gate abort, and even then the Result describes the
// aborted run.
func (p *Pipeline) Run(ctx context.Context, yesterday []TrendRecord) (*Result, error) {
	collected := p.Collector.Collect(ctx, p.Sources)
	p.log.Info("ingestion complete",
		"candidates", len(collected.Candidates),
		"warnings", len(collected.Warnings))

	result := &Result{
		Warnings:    collected.Warnings,
		CollectedAt: time.Now().UTC(),
	}

	records := p.normalizeAll(collected.Candidates)
	p.log.Info("normalized", "kept", len(records), "dropped", len(collected.Candidates)-len(records))

	clusters := p.Dedup.Cluster(records)
	p.log.Info("deduplicated", "clusters", len(clusters))

	result.GlobalKeywords = p.Scorer.Score(clusters)

	if yesterday == nil {
		result.Warnings = append(result.Warnings, "snapshot unavailable: classifying all trends as new today")
	}
	p.Comparator.Classify(clusters, yesterday)

	result.Records = flatten(clusters)
	result.FreshRatio = p.Scorer.FreshRatio(result.Records)

	gateWarnings, err := p.Gate.Check(len(result.Records), result.FreshRatio)
	result.Warnings = append(result.Warnings, gateWarnings...)
	if err != nil {
		result.Aborted = true
		result.Warnings = append(result.Warnings, err.Error())
		p.log.Error("quality gate abort", "err", err)
		return result, err
	}

	p.log.Info("run complete",
		"trends", len(result.Records),
		"fresh_ratio", result.FreshRatio,
		"global_keywords", len(result.GlobalKeywords))
	return result, nil
}

// normalizeAll drops malformed and non-English candidates quietly; per
// the error policy, record-level rejects are logged at debug only.
func (p *Pipeline) normalizeAll(candidates []source.Candidate) []TrendRecord {
	records := make([]TrendRecord, 0, len(candidates))
	for _, c := range candidates {
		rec, err := p.Normalizer.Normalize(c)
		if err != nil {
			if !errors.Is(err, ErrMalformedRecord) && !errors.Is(err, ErrNonEnglish) {
				p.log.Warn("unexpected normalize error", "err", err)
			} else {
				p.log.Debug("candidate dropped", "err", err)
			}
			continue
		}
		records = append(records, rec)
	}
	return records
}

// flatten orders cluster representatives into the final list: velocity
// descending, then raw score, then title, so identical inputs always
// yield the same ordering.
func flatten(clusters []*Cluster) []TrendRecord {
	records := make([]TrendRecord, 0, len(clusters))
	for _, c := range clusters {
		records = append(records, c.Rep)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Velocity != records[j].Velocity {
			return records[i].Velocity > records[j].Velocity
		}
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].Title < records[j].Title
	})
	return records
}
