package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dailytrending/trendwatch/pkg/source"
)

func fixedNow() time.Time {
	return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
}

func TestNormalizeValidCandidate(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)
	published := time.Date(2026, time.August, 30, 8, 30, 0, 0, time.UTC)

	rec, err := n.Normalize(source.Candidate{
		Source:    "hackernews",
		Title:     "  Quantum   Computing Startup Raises Funding Round - The Verge",
		URL:       "HTTPS://Example.com/Article?id=7#comments",
		Category:  "tech",
		Score:     2.5,
		Published: published,
	})
	require.NoError(t, err)

	require.Equal(t, "Quantum Computing Startup Raises Funding Round", rec.Title)
	require.Equal(t, "https://example.com/Article?id=7", rec.URL)
	require.Equal(t, "hackernews", rec.Source)
	require.Equal(t, "en", rec.Language)
	require.Equal(t, "tech", rec.Category)
	require.Equal(t, 2.5, rec.Score)
	require.Equal(t, published, rec.Timestamp)
	require.Equal(t, 1, rec.SourceCount)
	require.Equal(t, []string{"quantum", "computing", "startup", "raises", "funding"}, rec.Keywords)
	require.NotEmpty(t, rec.ID)
}

func TestNormalizeKeywordCap(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)
	rec, err := n.Normalize(source.Candidate{
		Source: "devto",
		Title:  "Seven Engineers Debate Whether Kubernetes Complexity Finally Justifies Simpler Alternatives",
		URL:    "https://example.com/k8s",
	})
	require.NoError(t, err)
	require.Len(t, rec.Keywords, 5)
}

func TestNormalizeMalformed(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)

	cases := []struct {
		name string
		c    source.Candidate
	}{
		{"empty title", source.Candidate{Source: "s", Title: "   ", URL: "https://example.com/a"}},
		{"html only title", source.Candidate{Source: "s", Title: "<p> </p>", URL: "https://example.com/a"}},
		{"empty url", source.Candidate{Source: "s", Title: "A Perfectly Fine Headline", URL: ""}},
		{"relative url", source.Candidate{Source: "s", Title: "A Perfectly Fine Headline", URL: "/local/path"}},
		{"ftp url", source.Candidate{Source: "s", Title: "A Perfectly Fine Headline", URL: "ftp://example.com/a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.c)
			require.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestNormalizeNonEnglish(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)
	_, err := n.Normalize(source.Candidate{
		Source: "reddit_worldnews",
		Title:  "世界のニュースが今日も更新されました",
		URL:    "https://example.jp/news",
	})
	require.ErrorIs(t, err, ErrNonEnglish)

	// Mixed-script titles fail as soon as a non-Latin script shows up.
	_, err = n.Normalize(source.Candidate{
		Source: "reddit_worldnews",
		Title:  "Президент announces new policy for markets",
		URL:    "https://example.com/mixed",
	})
	require.ErrorIs(t, err, ErrNonEnglish)
}

func TestNormalizeZeroTimestampUsesClock(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)
	rec, err := n.Normalize(source.Candidate{
		Source: "rss",
		Title:  "Headline Without Any Publication Date Attached",
		URL:    "https://example.com/undated",
	})
	require.NoError(t, err)
	require.Equal(t, fixedNow(), rec.Timestamp)
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)

	// Some feeds stack the publisher suffix; cleaning must remove every
	// trailing copy the first time through or the second pass would keep
	// shortening the title.
	titles := []string{
		"<b>Compiler Team Ships Incremental Build Cache</b> - NPR",
		"Morning Briefing Covers Overnight Market Moves - NPR - NPR",
		"Senate Panel Advances Spectrum Bill | Reuters | Reuters",
	}

	for _, title := range titles {
		first, err := n.Normalize(source.Candidate{
			Source:    "hackernews",
			Title:     title,
			URL:       "https://Example.com/cache#frag",
			Score:     1.2,
			Published: fixedNow(),
		})
		require.NoError(t, err)
		require.NotContains(t, first.Title, " - NPR")
		require.NotContains(t, first.Title, " | Reuters")

		second, err := n.Normalize(source.Candidate{
			Source:    first.Source,
			Title:     first.Title,
			URL:       first.URL,
			Score:     first.Score,
			Published: first.Timestamp,
		})
		require.NoError(t, err)
		require.Equal(t, first, second)
	}
}

func TestCleanTitleStrippedCompletely(t *testing.T) {
	t.Parallel()

	got := cleanTitle("Morning Briefing Covers Overnight Market Moves - NPR - NPR")
	require.Equal(t, "Morning Briefing Covers Overnight Market Moves", got)
	require.Equal(t, got, cleanTitle(got))
}

func TestNormalizeErrorsAreDistinguishable(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(fixedNow)
	_, err := n.Normalize(source.Candidate{Source: "s", Title: "", URL: "https://example.com"})
	require.False(t, errors.Is(err, ErrNonEnglish))
	require.True(t, errors.Is(err, ErrMalformedRecord))
}
