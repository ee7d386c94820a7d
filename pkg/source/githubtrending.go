package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dailytrending/trendwatch/internal/httpx"
)

const defaultGitHubBaseURL = "https://github.com"

var nonDigits = regexp.MustCompile(`[^\d]`)

// GitHubTrending scrapes the daily trending page, filtered to
// English-language repositories.
type GitHubTrending struct {
	settings Settings
	client   *http.Client
	baseURL  string
}

// NewGitHubTrending creates the GitHub trending adapter.
func NewGitHubTrending(settings Settings) *GitHubTrending {
	settings = settings.withDefaults(10, 15*time.Second)
	return &GitHubTrending{
		settings: settings,
		client:   httpx.NewClient(settings.Timeout),
		baseURL:  defaultGitHubBaseURL,
	}
}

func (g *GitHubTrending) ID() string { return g.settings.ID }

func (g *GitHubTrending) Fetch(ctx context.Context) ([]Candidate, error) {
	url := g.baseURL + "/trending?since=daily&spoken_language_code=en"
	resp, err := httpx.Get(ctx, g.client, url)
	if err != nil {
		return nil, unavailable(g.settings.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(g.settings.ID, fmt.Errorf("status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, unavailable(g.settings.ID, fmt.Errorf("parse trending page: %w", err))
	}

	var candidates []Candidate
	doc.Find("article.Box-row").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= g.settings.FetchLimit {
			return false
		}

		link := row.Find("h2 a")
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		repoName := strings.ReplaceAll(strings.TrimSpace(link.Text()), " ", "")
		repoName = strings.ReplaceAll(repoName, "\n", "")

		description := strings.TrimSpace(row.Find("p").First().Text())
		language := strings.TrimSpace(row.Find(`[itemprop="programmingLanguage"]`).Text())
		stars := parseStars(row.Find(".float-sm-right").Text())

		title := repoName
		if language != "" {
			title += fmt.Sprintf(" (%s)", language)
		}
		if description != "" {
			title += ": " + truncate(description, 80)
		}

		starBoost := float64(stars) / 500
		if starBoost > 1.5 {
			starBoost = 1.5
		}

		candidates = append(candidates, Candidate{
			Source:   g.settings.ID,
			Title:    truncate(title, 120),
			URL:      g.baseURL + href,
			Summary:  description,
			Category: "tech",
			Score:    1.3 + starBoost,
		})
		return true
	})

	return candidates, nil
}

func parseStars(text string) int {
	n, _ := strconv.Atoi(nonDigits.ReplaceAllString(text, ""))
	return n
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
