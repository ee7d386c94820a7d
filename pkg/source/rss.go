package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dailytrending/trendwatch/internal/httpx"
)

// Feed is a single named RSS/Atom feed.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FeedGroup is a category of feeds collected together, with a shared
// per-category base score (news outranks entertainment, and so on).
type FeedGroup struct {
	Name      string  `yaml:"name"`
	Category  string  `yaml:"category"`
	BaseScore float64 `yaml:"base_score"`
	Feeds     []Feed  `yaml:"feeds"`
}

// RSS collects one feed group. Feeds are fetched sequentially with the
// configured inter-request delay; a single broken feed only costs its own
// entries.
type RSS struct {
	settings Settings
	group    FeedGroup
	client   *http.Client
	parser   *gofeed.Parser
}

// NewRSS creates an adapter for one feed group.
func NewRSS(settings Settings, group FeedGroup) *RSS {
	settings = settings.withDefaults(6, 15*time.Second)
	return &RSS{
		settings: settings,
		group:    group,
		client:   httpx.NewClient(settings.Timeout),
		parser:   gofeed.NewParser(),
	}
}

func (r *RSS) ID() string { return r.settings.ID }

func (r *RSS) Fetch(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate
	failures := 0

	for i, feed := range r.group.Feeds {
		if i > 0 {
			if err := pause(ctx, r.settings.MinDelay); err != nil {
				break
			}
		}

		items, err := r.fetchFeed(ctx, feed)
		if err != nil {
			failures++
			continue
		}
		candidates = append(candidates, items...)
	}

	if failures == len(r.group.Feeds) {
		return nil, unavailable(r.settings.ID, fmt.Errorf("all %d feeds failed", failures))
	}
	return candidates, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feed Feed) ([]Candidate, error) {
	resp, err := httpx.Get(ctx, r.client, feed.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	sourceID := fmt.Sprintf("%s_%s", r.group.Category, slugify(feed.Name))

	var candidates []Candidate
	for i, entry := range parsed.Items {
		if i >= r.settings.FetchLimit {
			break
		}
		if len(strings.TrimSpace(entry.Title)) < 10 {
			continue
		}

		var published time.Time
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		candidates = append(candidates, Candidate{
			Source:    sourceID,
			Title:     entry.Title,
			URL:       entry.Link,
			Summary:   entry.Description,
			Category:  r.group.Category,
			Score:     r.group.BaseScore,
			ImageURL:  entryImage(entry),
			Published: published,
		})
	}

	return candidates, nil
}

// entryImage pulls an article image out of a feed entry, trying the
// strategies feeds actually use: item image, media:content,
// media:thumbnail, then image enclosures.
func entryImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}

	if media, ok := entry.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			url := ext.Attrs["url"]
			medium := ext.Attrs["medium"]
			if url != "" && (medium == "image" || strings.Contains(ext.Attrs["type"], "image") || hasImageExt(url)) {
				return url
			}
		}
		for _, ext := range media["thumbnail"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	for _, enc := range entry.Enclosures {
		if enc.URL != "" && strings.Contains(enc.Type, "image") {
			return enc.URL
		}
	}

	return ""
}

func hasImageExt(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp", ".gif"} {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
