package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dailytrending/trendwatch/internal/httpx"
)

const defaultHNBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNews fetches top stories from the Hacker News API. Story items
// are fetched sequentially with the configured inter-request delay.
type HackerNews struct {
	settings Settings
	client   *http.Client
	baseURL  string
}

// NewHackerNews creates the HN adapter.
func NewHackerNews(settings Settings) *HackerNews {
	settings = settings.withDefaults(15, 15*time.Second)
	return &HackerNews{
		settings: settings,
		client:   httpx.NewClient(settings.Timeout),
		baseURL:  defaultHNBaseURL,
	}
}

func (h *HackerNews) ID() string { return h.settings.ID }

func (h *HackerNews) Fetch(ctx context.Context) ([]Candidate, error) {
	ids, err := h.topStories(ctx)
	if err != nil {
		return nil, unavailable(h.settings.ID, err)
	}
	if len(ids) > h.settings.FetchLimit {
		ids = ids[:h.settings.FetchLimit]
	}

	var candidates []Candidate
	for i, id := range ids {
		if i > 0 {
			if err := pause(ctx, h.settings.MinDelay); err != nil {
				return candidates, nil
			}
		}

		story, err := h.story(ctx, id)
		if err != nil || story == nil || story.Title == "" {
			continue
		}

		url := story.URL
		if url == "" {
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}

		// HN points are folded into the raw weight, capped at 3x.
		boost := float64(story.Score) / 100
		if boost > 3 {
			boost = 3
		}

		candidates = append(candidates, Candidate{
			Source:    h.settings.ID,
			Title:     story.Title,
			URL:       url,
			Category:  "tech",
			Score:     1.0 + boost,
			Published: time.Unix(story.Time, 0).UTC(),
		})
	}

	return candidates, nil
}

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

func (h *HackerNews) topStories(ctx context.Context) ([]int, error) {
	resp, err := httpx.Get(ctx, h.client, h.baseURL+"/topstories.json")
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("top stories status %d", resp.StatusCode)
	}

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) story(ctx context.Context, id int) (*hnStory, error) {
	resp, err := httpx.Get(ctx, h.client, fmt.Sprintf("%s/item/%d.json", h.baseURL, id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("item %d status %d", id, resp.StatusCode)
	}

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, err
	}
	if story.Type != "story" {
		return nil, nil
	}
	return &story, nil
}
