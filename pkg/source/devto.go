package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dailytrending/trendwatch/internal/httpx"
)

const defaultDevToBaseURL = "https://dev.to"

// DevTo fetches the top developer-community articles of the day.
type DevTo struct {
	settings Settings
	client   *http.Client
	baseURL  string
}

// NewDevTo creates the Dev.to adapter.
func NewDevTo(settings Settings) *DevTo {
	settings = settings.withDefaults(8, 15*time.Second)
	return &DevTo{
		settings: settings,
		client:   httpx.NewClient(settings.Timeout),
		baseURL:  defaultDevToBaseURL,
	}
}

func (d *DevTo) ID() string { return d.settings.ID }

func (d *DevTo) Fetch(ctx context.Context) ([]Candidate, error) {
	url := fmt.Sprintf("%s/api/articles?top=1&per_page=%d", d.baseURL, d.settings.FetchLimit)
	resp, err := httpx.Get(ctx, d.client, url)
	if err != nil {
		return nil, unavailable(d.settings.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(d.settings.ID, fmt.Errorf("status %d", resp.StatusCode))
	}

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, unavailable(d.settings.ID, fmt.Errorf("decode articles: %w", err))
	}

	var candidates []Candidate
	for _, a := range articles {
		if len(a.Title) < 10 {
			continue
		}

		boost := float64(a.Reactions) / 100
		if boost > 1 {
			boost = 1
		}

		var published time.Time
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			published = t.UTC()
		}

		candidates = append(candidates, Candidate{
			Source:    d.settings.ID,
			Title:     a.Title,
			URL:       a.URL,
			Summary:   a.Description,
			Category:  "tech",
			Score:     1.3 + boost,
			ImageURL:  a.CoverImage,
			Published: published,
		})
	}

	return candidates, nil
}

type devtoArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Reactions   int    `json:"public_reactions_count"`
	CoverImage  string `json:"cover_image"`
	PublishedAt string `json:"published_at"`
}
