package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHackerNewsFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/topstories.json":
			fmt.Fprint(w, `[101, 102, 103, 104]`)
		case "/item/101.json":
			fmt.Fprint(w, `{"id":101,"type":"story","title":"Show HN: A Tiny Database","url":"https://example.com/tinydb","score":250,"time":1767100000}`)
		case "/item/102.json":
			fmt.Fprint(w, `{"id":102,"type":"job","title":"Hiring Engineers","score":1,"time":1767100000}`)
		case "/item/103.json":
			fmt.Fprint(w, `{"id":103,"type":"story","title":"Ask HN: Favorite Papers","score":40,"time":1767100000}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	hn := NewHackerNews(Settings{ID: "hackernews", Enabled: true, FetchLimit: 3})
	hn.baseURL = server.URL

	candidates, err := hn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// Item 102 is a job posting, not a story; the fetch limit excludes 104.
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Show HN: A Tiny Database" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.URL != "https://example.com/tinydb" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.Category != "tech" {
		t.Fatalf("unexpected category: %s", first.Category)
	}
	// 250 points: score = 1.0 + 2.5.
	if first.Score != 3.5 {
		t.Fatalf("unexpected score: %v", first.Score)
	}

	second := candidates[1]
	if second.URL != "https://news.ycombinator.com/item?id=103" {
		t.Fatalf("expected discussion fallback url, got %s", second.URL)
	}
}

func TestHackerNewsRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	// A decodable body must not mask the error status.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	hn := NewHackerNews(Settings{ID: "hackernews", Enabled: true})
	hn.baseURL = server.URL

	_, err := hn.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for forbidden status")
	}
}

func TestHackerNewsUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	hn := NewHackerNews(Settings{ID: "hackernews", Enabled: true})
	hn.baseURL = server.URL

	_, err := hn.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}
