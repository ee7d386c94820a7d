package pipeline

import "time"

// DefaultFreshnessWindow is how old a story may be and still count as
// fresh.
const DefaultFreshnessWindow = 24 * time.Hour

// Boost multipliers for stories sharing keywords with the day's
// meta-trends. A keyword carried by three or more distinct stories marks
// a global trend; matching more of them amplifies the story's weight.
const (
	globalKeywordMinStories = 3
	boostOneMatch           = 1.15
	boostTwoMatches         = 1.35
	boostThreeMatches       = 1.6
)

// Scorer assigns freshness, velocity, and badge tiers to clusters. It is
// side-effect free: the raw score is never mutated, so scoring the same
// clusters twice produces identical output.
type Scorer struct {
	FreshnessWindow time.Duration
	RawWeight       float64
	SourceWeight    float64

	now func() time.Time
}

// NewScorer builds a scorer. Zero weights fall back to the 0.6/0.4 blend;
// nil now means time.Now.
func NewScorer(window time.Duration, rawWeight, sourceWeight float64, now func() time.Time) *Scorer {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	if rawWeight+sourceWeight == 0 {
		rawWeight = 0.6
		sourceWeight = 0.4
	}
	if now == nil {
		now = time.Now
	}
	return &Scorer{
		FreshnessWindow: window,
		RawWeight:       rawWeight,
		SourceWeight:    sourceWeight,
		now:             now,
	}
}

// Score computes velocity and badge for every cluster representative and
// returns the day's global keywords. Velocity is a monotonic blend of the
// boosted raw score and the distinct-source count, each normalized to
// [0,100]:
//
//	velocity = rawWeight*min(100, boosted*25) + sourceWeight*min(100, sources*25)
func (s *Scorer) Score(clusters []*Cluster) []string {
	global := globalKeywords(clusters)

	for _, c := range clusters {
		boosted := c.Rep.Score * keywordBoost(c.Keywords, global)

		rawComponent := clamp100(boosted * 25)
		sourceComponent := clamp100(float64(c.SourceCount()) * 25)
		velocity := s.RawWeight*rawComponent + s.SourceWeight*sourceComponent

		c.Rep.Velocity = clamp100(velocity)
		c.Rep.Badge = badgeFor(c.Rep.Velocity, c.SourceCount())
		c.Rep.SourceCount = c.SourceCount()
		c.Rep.Keywords = c.Keywords
	}

	return global
}

// Fresh reports whether rec falls inside the freshness window.
func (s *Scorer) Fresh(rec TrendRecord) bool {
	return s.now().Sub(rec.Timestamp) < s.FreshnessWindow
}

// FreshRatio is the fraction of records inside the freshness window,
// always in [0,1].
func (s *Scorer) FreshRatio(records []TrendRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	fresh := 0
	for _, r := range records {
		if s.Fresh(r) {
			fresh++
		}
	}
	return float64(fresh) / float64(len(records))
}

// badgeFor evaluates the tier table in priority order.
func badgeFor(velocity float64, sources int) Badge {
	switch {
	case velocity >= 80 && sources >= 4:
		return BadgeHot
	case velocity >= 50 && velocity < 80 && (sources == 2 || sources == 3):
		return BadgeRising
	case velocity >= 30 && velocity < 50:
		return BadgeSteady
	default:
		return BadgeNone
	}
}

// globalKeywords finds keywords carried by at least three distinct
// clusters, in first-seen order for deterministic output.
func globalKeywords(clusters []*Cluster) []string {
	counts := make(map[string]int)
	var order []string

	for _, c := range clusters {
		for _, k := range c.Keywords {
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}

	var global []string
	for _, k := range order {
		if counts[k] >= globalKeywordMinStories {
			global = append(global, k)
		}
	}
	return global
}

func keywordBoost(keywords, global []string) float64 {
	if len(global) == 0 {
		return 1
	}
	set := make(map[string]bool, len(global))
	for _, k := range global {
		set[k] = true
	}

	matches := 0
	for _, k := range keywords {
		if set[k] {
			matches++
		}
	}

	switch {
	case matches >= 3:
		return boostThreeMatches
	case matches == 2:
		return boostTwoMatches
	case matches == 1:
		return boostOneMatch
	default:
		return 1
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
