package pipeline

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
	"time"

	"github.com/dailytrending/trendwatch/pkg/source"
)

const maxKeywords = 5

// Normalizer turns raw candidates into canonical English trend records.
// It is a pure function of its input plus the injected clock: no I/O,
// no retained state.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer builds a normalizer. now supplies the ingestion time used
// for candidates without a timestamp; nil means time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize cleans and enriches a candidate. It returns ErrMalformedRecord
// for an empty/invalid title or URL and ErrNonEnglish for titles that fail
// the language check. Normalizing an already-normalized record changes
// nothing: cleaning and keyword extraction are both idempotent.
func (n *Normalizer) Normalize(c source.Candidate) (TrendRecord, error) {
	title := cleanTitle(stripHTML(c.Title))
	if title == "" {
		return TrendRecord{}, fmt.Errorf("%w: empty title from %s", ErrMalformedRecord, c.Source)
	}

	canonical, err := canonicalURL(c.URL)
	if err != nil {
		return TrendRecord{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, c.Source, err)
	}

	if !isEnglish(title) {
		return TrendRecord{}, fmt.Errorf("%w: %q", ErrNonEnglish, title)
	}

	keywords := titleTokens(title)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	ts := c.Published
	if ts.IsZero() {
		ts = n.now()
	}

	return TrendRecord{
		ID:          recordID(c.Source, canonical),
		Title:       title,
		URL:         canonical,
		Source:      c.Source,
		Score:       c.Score,
		Keywords:    keywords,
		Timestamp:   ts.UTC(),
		Language:    "en",
		Category:    c.Category,
		ImageURL:    c.ImageURL,
		SourceCount: 1,
	}, nil
}

// canonicalURL validates and normalizes the raw URL: scheme and host are
// required and lowercased, fragments are dropped.
func canonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

func recordID(src, canonical string) string {
	h := fnv.New64a()
	h.Write([]byte(canonical))
	return fmt.Sprintf("%s:%x", src, h.Sum64())
}
