package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dailytrending/trendwatch/pkg/source"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Sources  SourcesConfig  `yaml:"sources"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Score    ScoreConfig    `yaml:"score"`
	Gate     GateConfig     `yaml:"gate"`
}

// DatabaseConfig configures the SQLite run archive.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig configures daemon-mode runs.
type ScheduleConfig struct {
	RunInterval string `yaml:"run_interval"`
}

// ParseRunInterval returns the run interval as a duration.
func (s ScheduleConfig) ParseRunInterval() time.Duration {
	d, err := time.ParseDuration(s.RunInterval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// SnapshotConfig locates the yesterday-snapshot artifact.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig controls run-archive retention.
type ArchiveConfig struct {
	KeepDays int `yaml:"keep_days"`
}

// IngestConfig bounds the concurrent ingestion phase.
type IngestConfig struct {
	Workers int    `yaml:"workers"`
	Budget  string `yaml:"budget"`
}

// ParseBudget returns the ingestion wall-clock budget.
func (i IngestConfig) ParseBudget() time.Duration {
	d, err := time.ParseDuration(i.Budget)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// SourceSettings is the yaml shape of one source's configuration record.
type SourceSettings struct {
	Enabled    bool   `yaml:"enabled"`
	FetchLimit int    `yaml:"fetch_limit"`
	Timeout    string `yaml:"timeout"`
	MinDelay   string `yaml:"min_delay"`
}

// Build converts the yaml record into the validated runtime record.
func (s SourceSettings) Build(id string) (source.Settings, error) {
	settings := source.Settings{
		ID:         id,
		Enabled:    s.Enabled,
		FetchLimit: s.FetchLimit,
		Timeout:    parseDuration(s.Timeout),
		MinDelay:   parseDuration(s.MinDelay),
	}
	if err := settings.Validate(); err != nil {
		return source.Settings{}, err
	}
	return settings, nil
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// SourcesConfig holds per-adapter settings.
type SourcesConfig struct {
	HackerNews     SourceSettings `yaml:"hackernews"`
	Reddit         RedditConfig   `yaml:"reddit"`
	GitHubTrending SourceSettings `yaml:"github_trending"`
	Wikipedia      SourceSettings `yaml:"wikipedia"`
	DevTo          SourceSettings `yaml:"devto"`
	RSS            RSSConfig      `yaml:"rss"`
}

// RedditConfig adds the subreddit list to the common settings.
type RedditConfig struct {
	SourceSettings `yaml:",inline"`
	Subreddits     []string `yaml:"subreddits"`
}

// RSSConfig holds the shared RSS settings plus the category feed groups.
type RSSConfig struct {
	SourceSettings `yaml:",inline"`
	Groups         []source.FeedGroup `yaml:"groups"`
}

// DedupConfig configures clustering.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// ScoreConfig configures the scorer.
type ScoreConfig struct {
	FreshnessHours int     `yaml:"freshness_hours"`
	RawWeight      float64 `yaml:"raw_weight"`
	SourceWeight   float64 `yaml:"source_weight"`
}

// FreshnessWindow returns the freshness window as a duration.
func (s ScoreConfig) FreshnessWindow() time.Duration {
	if s.FreshnessHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.FreshnessHours) * time.Hour
}

// GateConfig configures the quality gate thresholds.
type GateConfig struct {
	MinTrends     int     `yaml:"min_trends"`
	MinFreshRatio float64 `yaml:"min_fresh_ratio"`
}

// Default returns a Config with the stock source set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./trendwatch.db"},
		Server:   ServerConfig{Port: 8080},
		Schedule: ScheduleConfig{RunInterval: "24h"},
		Snapshot: SnapshotConfig{Path: "./data/trends.json"},
		Archive:  ArchiveConfig{KeepDays: 30},
		Ingest:   IngestConfig{Workers: 4, Budget: "2m"},
		Sources: SourcesConfig{
			HackerNews: SourceSettings{Enabled: true, FetchLimit: 15, Timeout: "15s", MinDelay: "150ms"},
			Reddit: RedditConfig{
				SourceSettings: SourceSettings{Enabled: true, FetchLimit: 6, Timeout: "15s", MinDelay: "150ms"},
				Subreddits: []string{
					"news", "worldnews", "politics", "technology",
					"science", "economics", "sports", "movies",
				},
			},
			GitHubTrending: SourceSettings{Enabled: true, FetchLimit: 10, Timeout: "15s"},
			Wikipedia:      SourceSettings{Enabled: true, FetchLimit: 20, Timeout: "15s"},
			DevTo:          SourceSettings{Enabled: true, FetchLimit: 8, Timeout: "15s"},
			RSS: RSSConfig{
				SourceSettings: SourceSettings{Enabled: true, FetchLimit: 6, Timeout: "20s", MinDelay: "150ms"},
				Groups: []source.FeedGroup{
					{
						Name: "news", Category: "news", BaseScore: 1.8,
						Feeds: []source.Feed{
							{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml"},
							{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
							{Name: "Guardian", URL: "https://www.theguardian.com/world/rss"},
							{Name: "CBS News", URL: "https://www.cbsnews.com/latest/rss/main"},
						},
					},
					{
						Name: "tech", Category: "tech", BaseScore: 1.5,
						Feeds: []source.Feed{
							{Name: "Verge", URL: "https://www.theverge.com/rss/index.xml"},
							{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
							{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
						},
					},
					{
						Name: "science", Category: "science", BaseScore: 1.5,
						Feeds: []source.Feed{
							{Name: "Science Daily", URL: "https://www.sciencedaily.com/rss/all.xml"},
							{Name: "Phys.org", URL: "https://phys.org/rss-feed/"},
							{Name: "Space.com", URL: "https://www.space.com/feeds/all"},
						},
					},
					{
						Name: "politics", Category: "politics", BaseScore: 1.6,
						Feeds: []source.Feed{
							{Name: "The Hill", URL: "https://thehill.com/feed/"},
							{Name: "NPR Politics", URL: "https://feeds.npr.org/1014/rss.xml"},
							{Name: "BBC Politics", URL: "https://feeds.bbci.co.uk/news/politics/rss.xml"},
						},
					},
					{
						Name: "finance", Category: "finance", BaseScore: 1.5,
						Feeds: []source.Feed{
							{Name: "CNBC", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
							{Name: "MarketWatch", URL: "https://feeds.marketwatch.com/marketwatch/topstories/"},
							{Name: "Fortune", URL: "https://fortune.com/feed/"},
						},
					},
					{
						Name: "sports", Category: "sports", BaseScore: 1.4,
						Feeds: []source.Feed{
							{Name: "ESPN", URL: "https://www.espn.com/espn/rss/news"},
							{Name: "BBC Sport", URL: "https://feeds.bbci.co.uk/sport/rss.xml"},
						},
					},
					{
						Name: "entertainment", Category: "entertainment", BaseScore: 1.4,
						Feeds: []source.Feed{
							{Name: "Variety", URL: "https://variety.com/feed/"},
							{Name: "Billboard", URL: "https://www.billboard.com/feed/"},
						},
					},
				},
			},
		},
		Dedup: DedupConfig{SimilarityThreshold: 0.8},
		Score: ScoreConfig{FreshnessHours: 24, RawWeight: 0.6, SourceWeight: 0.4},
		Gate:  GateConfig{MinTrends: 5, MinFreshRatio: 0.5},
	}
}

// Load reads configuration from a YAML file over the defaults and
// applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Gate.MinTrends < 1 {
		return fmt.Errorf("gate.min_trends must be at least 1")
	}
	if c.Gate.MinFreshRatio <= 0 || c.Gate.MinFreshRatio > 1 {
		return fmt.Errorf("gate.min_fresh_ratio must be within (0,1]")
	}
	if c.Dedup.SimilarityThreshold <= 0 || c.Dedup.SimilarityThreshold > 1 {
		return fmt.Errorf("dedup.similarity_threshold must be within (0,1]")
	}
	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must not be negative")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRENDWATCH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRENDWATCH_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
}
