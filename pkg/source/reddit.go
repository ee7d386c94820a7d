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

const defaultRedditBaseURL = "https://www.reddit.com"

// Reddit collects hot posts from a set of subreddits through their RSS
// feeds, which are far more dependable than the JSON API for
// unauthenticated daily pulls.
type Reddit struct {
	settings   Settings
	subreddits []string
	client     *http.Client
	parser     *gofeed.Parser
	baseURL    string
}

// NewReddit creates the Reddit adapter.
func NewReddit(settings Settings, subreddits []string) *Reddit {
	settings = settings.withDefaults(6, 15*time.Second)
	return &Reddit{
		settings:   settings,
		subreddits: subreddits,
		client:     httpx.NewClient(settings.Timeout),
		parser:     gofeed.NewParser(),
		baseURL:    defaultRedditBaseURL,
	}
}

func (r *Reddit) ID() string { return r.settings.ID }

func (r *Reddit) Fetch(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate
	failures := 0

	for i, sub := range r.subreddits {
		if i > 0 {
			if err := pause(ctx, r.settings.MinDelay); err != nil {
				break
			}
		}

		items, err := r.fetchSubreddit(ctx, sub)
		if err != nil {
			failures++
			continue
		}
		candidates = append(candidates, items...)
	}

	if len(r.subreddits) > 0 && failures == len(r.subreddits) {
		return nil, unavailable(r.settings.ID, fmt.Errorf("all %d subreddits failed", failures))
	}
	return candidates, nil
}

func (r *Reddit) fetchSubreddit(ctx context.Context, sub string) ([]Candidate, error) {
	resp, err := httpx.Get(ctx, r.client, fmt.Sprintf("%s/r/%s/.rss", r.baseURL, sub))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("r/%s status %d", sub, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse r/%s: %w", sub, err)
	}

	var candidates []Candidate
	for i, entry := range parsed.Items {
		if i >= r.settings.FetchLimit {
			break
		}
		// Short reddit titles are usually memes or mod posts.
		if len(strings.TrimSpace(entry.Title)) < 15 {
			continue
		}

		var published time.Time
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		}

		candidates = append(candidates, Candidate{
			Source:    fmt.Sprintf("reddit_%s", strings.ToLower(sub)),
			Title:     entry.Title,
			URL:       entry.Link,
			Category:  redditCategory(sub),
			Score:     1.5,
			Published: published,
		})
	}

	return candidates, nil
}

func redditCategory(sub string) string {
	switch strings.ToLower(sub) {
	case "news", "worldnews", "upliftingnews":
		return "news"
	case "politics":
		return "politics"
	case "technology":
		return "tech"
	case "science", "space":
		return "science"
	case "business", "economics":
		return "finance"
	case "sports", "nba", "soccer":
		return "sports"
	case "movies", "television", "music":
		return "entertainment"
	}
	return ""
}
