package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dailytrending/trendwatch/internal/config"
	"github.com/dailytrending/trendwatch/internal/logging"
	"github.com/dailytrending/trendwatch/internal/scheduler"
	"github.com/dailytrending/trendwatch/internal/snapshot"
	"github.com/dailytrending/trendwatch/internal/store"
	"github.com/dailytrending/trendwatch/pkg/pipeline"
	"github.com/dailytrending/trendwatch/pkg/server"
	"github.com/dailytrending/trendwatch/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// buildSources constructs every enabled adapter in a fixed declaration
// order, so repeated runs aggregate candidates identically.
func buildSources(cfg *config.Config) ([]source.Source, error) {
	var sources []source.Source

	if cfg.Sources.HackerNews.Enabled {
		settings, err := cfg.Sources.HackerNews.Build("hackernews")
		if err != nil {
			return nil, err
		}
		sources = append(sources, source.NewHackerNews(settings))
	}
	if cfg.Sources.Reddit.Enabled {
		settings, err := cfg.Sources.Reddit.SourceSettings.Build("reddit")
		if err != nil {
			return nil, err
		}
		sources = append(sources, source.NewReddit(settings, cfg.Sources.Reddit.Subreddits))
	}
	if cfg.Sources.DevTo.Enabled {
		settings, err := cfg.Sources.DevTo.Build("devto")
		if err != nil {
			return nil, err
		}
		sources = append(sources, source.NewDevTo(settings))
	}
	if cfg.Sources.GitHubTrending.Enabled {
		settings, err := cfg.Sources.GitHubTrending.Build("github_trending")
		if err != nil {
			return nil, err
		}
		sources = append(sources, source.NewGitHubTrending(settings))
	}
	if cfg.Sources.Wikipedia.Enabled {
		settings, err := cfg.Sources.Wikipedia.Build("wikipedia")
		if err != nil {
			return nil, err
		}
		sources = append(sources, source.NewWikipedia(settings))
	}
	if cfg.Sources.RSS.Enabled {
		for _, group := range cfg.Sources.RSS.Groups {
			settings, err := cfg.Sources.RSS.SourceSettings.Build("rss_" + group.Name)
			if err != nil {
				return nil, err
			}
			sources = append(sources, source.NewRSS(settings, group))
		}
	}

	return sources, nil
}

func buildPipeline(cfg *config.Config, sources []source.Source, log *slog.Logger) *pipeline.Pipeline {
	collector := source.NewCollector(cfg.Ingest.Workers, cfg.Ingest.ParseBudget(), log)
	return pipeline.New(
		collector,
		sources,
		pipeline.NewNormalizer(nil),
		pipeline.NewDeduplicator(cfg.Dedup.SimilarityThreshold),
		pipeline.NewScorer(cfg.Score.FreshnessWindow(), cfg.Score.RawWeight, cfg.Score.SourceWeight, nil),
		pipeline.NewComparator(cfg.Dedup.SimilarityThreshold),
		pipeline.NewGate(cfg.Gate.MinTrends, cfg.Gate.MinFreshRatio),
		log,
	)
}

// executeRun performs one full aggregation pass: read the previous
// snapshot, run the pipeline, archive the result, and advance the
// snapshot only when the gate passed. Shared by collect and the daemon.
func executeRun(ctx context.Context, cfg *config.Config, db store.Store,
	sources []source.Source, log *slog.Logger) (*pipeline.Result, error) {
	yesterday, err := snapshot.Load(cfg.Snapshot.Path)
	if err != nil {
		log.Warn("previous snapshot unavailable", "err", err)
		yesterday = nil
	}

	pipe := buildPipeline(cfg, sources, log)
	result, runErr := pipe.Run(ctx, yesterday)

	if _, err := db.SaveRun(ctx, result); err != nil {
		log.Error("archive run", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	if cutoff := cfg.Archive.KeepDays; cutoff > 0 {
		olderThan := time.Now().UTC().AddDate(0, 0, -cutoff)
		if pruned, err := db.PruneRuns(ctx, olderThan); err != nil {
			log.Warn("prune run archive", "err", err)
		} else if pruned > 0 {
			log.Info("pruned old runs", "count", pruned, "keep_days", cutoff)
		}
	}

	// An aborted run keeps yesterday's snapshot so the next comparison
	// still has a baseline.
	if !result.Aborted {
		if err := snapshot.Save(cfg.Snapshot.Path, result.Records); err != nil {
			log.Error("write snapshot", "err", err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	for _, warning := range result.Warnings {
		log.Warn(warning)
	}
	return result, runErr
}

func runCollect(ctx context.Context, filterSources []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	allSources, err := buildSources(cfg)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}

	sources := allSources
	if len(filterSources) > 0 {
		wanted := make(map[string]bool)
		for _, s := range filterSources {
			wanted[strings.ToLower(strings.TrimSpace(s))] = true
		}
		sources = nil
		for _, s := range allSources {
			if wanted[s.ID()] {
				sources = append(sources, s)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("no matching sources for: %s", strings.Join(filterSources, ", "))
		}
	}

	result, err := executeRun(ctx, cfg, db, sources, log)
	if err != nil {
		var gateErr *pipeline.GateError
		if errors.As(err, &gateErr) {
			return fmt.Errorf("run aborted: %w", gateErr)
		}
		return err
	}

	log.Info("collected",
		"trends", len(result.Records),
		"fresh_ratio", fmt.Sprintf("%.2f", result.FreshRatio),
		"warnings", len(result.Warnings))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VELOCITY\tBADGE\tSOURCES\tSTATUS\tTITLE")
	for i, r := range result.Records {
		if i >= 10 {
			break
		}
		fmt.Fprintf(w, "%.1f\t%s\t%d\t%s\t%s\n",
			r.Velocity, r.Badge, r.SourceCount, r.Status, r.Title)
	}
	return w.Flush()
}

func runTrends(ctx context.Context, jsonOutput bool, limit int, category string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	run, err := db.LatestRun(ctx)
	if err != nil {
		return fmt.Errorf("latest run: %w", err)
	}
	if run == nil {
		fmt.Println("no runs archived yet (try: trendwatch collect)")
		return nil
	}

	records, err := db.RunRecords(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("run records: %w", err)
	}

	if category != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Category == category {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("no trends in the latest run")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VELOCITY\tBADGE\tSOURCES\tSTATUS\tTITLE")
	for _, r := range records {
		fmt.Fprintf(w, "%.1f\t%s\t%d\t%s\t%s\n",
			r.Velocity, r.Badge, r.SourceCount, r.Status, r.Title)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New()

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	sources, err := buildSources(cfg)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(cfg.Schedule.ParseRunInterval(), func(ctx context.Context) error {
		_, err := executeRun(ctx, cfg, db, sources, log)
		return err
	}, log)

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler", "err", err)
		}
	}()

	srv := server.New(db, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
