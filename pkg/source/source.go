package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks a source that could not be reached or parsed.
// The collector skips the source and records a warning; it never aborts
// the run.
var ErrUnavailable = errors.New("source unavailable")

// Candidate is a raw item as produced by a single adapter, before any
// cleaning or filtering. Candidates are immutable once returned from Fetch.
type Candidate struct {
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary,omitempty"`
	Category  string    `json:"category,omitempty"`
	Score     float64   `json:"score"`
	ImageURL  string    `json:"image_url,omitempty"`
	Published time.Time `json:"published"` // zero when the feed gave none
}

// Source is the interface every adapter implements. Fetch performs all
// outbound I/O for the adapter, including its own inter-request delays,
// and returns its candidates in feed order.
type Source interface {
	ID() string
	Fetch(ctx context.Context) ([]Candidate, error)
}

// Settings is the validated per-source configuration record, constructed
// once at startup.
type Settings struct {
	ID         string
	Enabled    bool
	FetchLimit int
	Timeout    time.Duration
	MinDelay   time.Duration
}

// Validate checks the settings record for values that would make an
// adapter misbehave.
func (s Settings) Validate() error {
	if s.ID == "" {
		return errors.New("source settings: empty id")
	}
	if s.FetchLimit < 0 {
		return fmt.Errorf("source %s: negative fetch_limit", s.ID)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("source %s: negative timeout", s.ID)
	}
	if s.MinDelay < 0 {
		return fmt.Errorf("source %s: negative min_delay", s.ID)
	}
	return nil
}

// withDefaults fills zero values with adapter-wide defaults.
func (s Settings) withDefaults(limit int, timeout time.Duration) Settings {
	if s.FetchLimit == 0 {
		s.FetchLimit = limit
	}
	if s.Timeout == 0 {
		s.Timeout = timeout
	}
	return s
}

// pause sleeps for the source's min_delay unless the context ends first.
// Adapters call it between consecutive requests so each source stays
// below its own rate ceiling without any global coordination.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// unavailable wraps err so errors.Is(err, ErrUnavailable) holds.
func unavailable(id string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, id, err)
}
