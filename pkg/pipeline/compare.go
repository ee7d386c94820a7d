package pipeline

// Comparator classifies today's clusters against the previous run's
// snapshot. The snapshot is passed in explicitly; a nil snapshot means
// first run or read failure, and every cluster comes out "new today".
type Comparator struct {
	Threshold  float64
	Similarity Similarity
}

// NewComparator builds a comparator reusing the deduplication similarity
// metric unless overridden.
func NewComparator(threshold float64) *Comparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Comparator{Threshold: threshold, Similarity: TokenOverlap}
}

// Classify sets each representative's comparison status, in priority
// order: exact canonical-URL match wins, then title similarity at or
// above the threshold, then "new today".
func (c *Comparator) Classify(clusters []*Cluster, yesterday []TrendRecord) {
	if len(yesterday) == 0 {
		for _, cl := range clusters {
			cl.Rep.Status = StatusNew
		}
		return
	}

	byURL := make(map[string]bool, len(yesterday))
	for _, rec := range yesterday {
		if rec.URL != "" {
			byURL[rec.URL] = true
		}
	}

	sim := c.Similarity
	if sim == nil {
		sim = TokenOverlap
	}

	for _, cl := range clusters {
		if byURL[cl.Rep.URL] {
			cl.Rep.Status = StatusContinuing
			continue
		}

		cl.Rep.Status = StatusNew
		for _, rec := range yesterday {
			if sim(cl.Rep.Title, rec.Title) >= c.Threshold {
				cl.Rep.Status = StatusTrendingUp
				break
			}
		}
	}
}
