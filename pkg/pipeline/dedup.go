package pipeline

import "sort"

// DefaultSimilarityThreshold is the title similarity at or above which two
// records are treated as the same story.
const DefaultSimilarityThreshold = 0.8

// Similarity scores how alike two titles are. Implementations must be
// deterministic, symmetric, and bounded to [0,1].
type Similarity func(a, b string) float64

// TokenOverlap is the default similarity: the overlap coefficient of the
// two titles' significant-token sets, |A∩B| / min(|A|,|B|).
func TokenOverlap(a, b string) float64 {
	return tokenOverlap(titleTokens(a), titleTokens(b))
}

func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	shared := 0
	for t := range setA {
		if setB[t] {
			shared++
		}
	}

	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	return float64(shared) / float64(smaller)
}

// Deduplicator collapses near-duplicate records into story clusters with a
// greedy single pass. O(n²) against cluster representatives, fine for the
// hundreds of records a daily run produces.
type Deduplicator struct {
	Threshold  float64
	Similarity Similarity
}

// NewDeduplicator builds a deduplicator with the default metric and
// threshold; either can be overridden on the returned value.
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{Threshold: threshold, Similarity: TokenOverlap}
}

// Cluster groups records by title similarity. Records are visited in
// raw-score-descending order (stable, so equal scores keep input order);
// each either merges into the most similar existing cluster or opens a
// new one. The input slice is not retained.
func (d *Deduplicator) Cluster(records []TrendRecord) []*Cluster {
	sorted := make([]TrendRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	sim := d.Similarity
	if sim == nil {
		sim = TokenOverlap
	}

	var clusters []*Cluster
	for _, rec := range sorted {
		best := -1
		bestSim := 0.0
		for i, c := range clusters {
			s := sim(rec.Title, c.Rep.Title)
			if s > bestSim {
				bestSim = s
				best = i
			}
		}

		if best >= 0 && bestSim >= d.Threshold {
			clusters[best].absorb(rec)
			continue
		}

		clusters = append(clusters, newCluster(rec))
	}

	return clusters
}

func newCluster(rec TrendRecord) *Cluster {
	c := &Cluster{
		Rep:     rec,
		Members: []TrendRecord{rec},
		sources: map[string]struct{}{rec.Source: {}},
	}
	c.Keywords = append(c.Keywords, rec.Keywords...)
	return c
}

// absorb merges rec into the cluster: keyword union in first-seen order,
// distinct-source accounting, and deterministic representative
// re-election.
func (c *Cluster) absorb(rec TrendRecord) {
	c.Members = append(c.Members, rec)
	c.sources[rec.Source] = struct{}{}

	seen := make(map[string]bool, len(c.Keywords))
	for _, k := range c.Keywords {
		seen[k] = true
	}
	for _, k := range rec.Keywords {
		if !seen[k] {
			seen[k] = true
			c.Keywords = append(c.Keywords, k)
		}
	}

	if beats(rec, c.Rep) {
		c.Rep = rec
	}
}

// beats implements the representative tie-break: highest raw score, then
// earliest timestamp, then lexicographic source id.
func beats(a, b TrendRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Source < b.Source
}
