package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dailytrending/trendwatch/internal/httpx"
)

const defaultWikipediaBaseURL = "https://en.wikipedia.org"

var citationRefs = regexp.MustCompile(`\[.*?\]`)

// Wikipedia scrapes the Current Events portal for the day's notable
// happenings.
type Wikipedia struct {
	settings Settings
	client   *http.Client
	baseURL  string
}

// NewWikipedia creates the Wikipedia current-events adapter.
func NewWikipedia(settings Settings) *Wikipedia {
	settings = settings.withDefaults(20, 15*time.Second)
	return &Wikipedia{
		settings: settings,
		client:   httpx.NewClient(settings.Timeout),
		baseURL:  defaultWikipediaBaseURL,
	}
}

func (w *Wikipedia) ID() string { return w.settings.ID }

func (w *Wikipedia) Fetch(ctx context.Context) ([]Candidate, error) {
	resp, err := httpx.Get(ctx, w.client, w.baseURL+"/wiki/Portal:Current_events")
	if err != nil {
		return nil, unavailable(w.settings.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(w.settings.ID, fmt.Errorf("status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, unavailable(w.settings.ID, fmt.Errorf("parse portal: %w", err))
	}

	var candidates []Candidate
	doc.Find(".current-events-content li").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if len(candidates) >= w.settings.FetchLimit {
			return false
		}

		text := strings.Join(strings.Fields(item.Text()), " ")
		text = strings.TrimSpace(citationRefs.ReplaceAllString(text, ""))
		// Entries outside this band are section headers or whole-day blobs.
		if len(text) < 20 || len(text) > 200 {
			return true
		}

		url := ""
		if href, ok := item.Find("a").First().Attr("href"); ok && strings.HasPrefix(href, "/wiki/") {
			url = w.baseURL + href
		}
		if url == "" {
			return true
		}

		candidates = append(candidates, Candidate{
			Source:   w.settings.ID,
			Title:    truncate(text, 150),
			URL:      url,
			Category: "news",
			Score:    1.4,
		})
		return true
	})

	return candidates, nil
}
