package pipeline

import "time"

// Status classifies a story against the previous run's snapshot.
type Status string

const (
	StatusNew        Status = "new today"
	StatusTrendingUp Status = "trending up"
	StatusContinuing Status = "continuing"
)

// Badge is the velocity tier assigned by the scorer.
type Badge string

const (
	BadgeHot    Badge = "hot"
	BadgeRising Badge = "rising"
	BadgeSteady Badge = "steady"
	BadgeNone   Badge = ""
)

// TrendRecord is the canonical story record flowing through the pipeline
// and out to consumers. The snapshot file persists the same type, so any
// schema change must be additive to keep old snapshots readable.
type TrendRecord struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"canonical_url" db:"url"`
	Source      string    `json:"source" db:"source"`
	Score       float64   `json:"score" db:"score"`
	Velocity    float64   `json:"velocity" db:"velocity"`
	Badge       Badge     `json:"velocity_badge" db:"badge"`
	Keywords    []string  `json:"keywords" db:"-"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Language    string    `json:"language" db:"language"`
	Category    string    `json:"category,omitempty" db:"category"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	Status      Status    `json:"comparison_status" db:"status"`
	SourceCount int       `json:"source_count" db:"source_count"`
}

// Cluster groups near-duplicate records describing the same story. It owns
// its members: no references to the input slice survive clustering.
type Cluster struct {
	Rep      TrendRecord
	Members  []TrendRecord
	Keywords []string
	sources  map[string]struct{}
}

// SourceCount reports how many distinct source ids contributed members.
func (c *Cluster) SourceCount() int { return len(c.sources) }

// Result is the pipeline's final output, consumed by the snapshot writer,
// the run archive, and the orchestrator's exit-code decision.
type Result struct {
	Records        []TrendRecord `json:"records"`
	FreshRatio     float64       `json:"fresh_ratio"`
	Aborted        bool          `json:"aborted"`
	Warnings       []string      `json:"warnings"`
	GlobalKeywords []string      `json:"global_keywords"`
	CollectedAt    time.Time     `json:"collected_at"`
}
