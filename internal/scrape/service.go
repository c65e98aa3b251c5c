// Package scrape drives car-rental searches against EnjoyTravel through
// a remote stealth browser. The site sits behind a bot challenge, so
// its JSON APIs are reached by navigating the managed browser to their
// URLs and reading the rendered page body as text.
package scrape

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/rentalwatch/enjoytravel-scraper/internal/artifacts"
	"github.com/rentalwatch/enjoytravel-scraper/internal/browserql"
	"github.com/rentalwatch/enjoytravel-scraper/internal/config"
	"github.com/rentalwatch/enjoytravel-scraper/internal/jsontext"
	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
)

// ErrNoLocations is returned when a location query resolves to nothing.
var ErrNoLocations = errors.New("scrape: no locations found")

type Service struct {
	executor  browserql.Executor
	progress  progress.Store
	artifacts *artifacts.Store
	cfg       config.ScraperConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(executor browserql.Executor, store progress.Store, artifactStore *artifacts.Store, cfg config.ScraperConfig, logger *slog.Logger) *Service {
	return &Service{
		executor:  executor,
		progress:  store,
		artifacts: artifactStore,
		cfg:       cfg,
		logger:    logger.With("component", "scrape"),
		now:       time.Now,
	}
}

// Criteria identifies one search: a location plus pickup/dropoff dates
// and times. Bulk runs issue one Criteria per day with pickup equal to
// dropoff.
type Criteria struct {
	LocationID  string
	PickupDate  string
	DropoffDate string
	PickupTime  string
	DropoffTime string
}

// SearchLocations resolves a free-text location query against the
// site's location API. Unlike the scrape runs this is synchronous;
// failures go straight back to the caller.
func (s *Service) SearchLocations(ctx context.Context, query string) ([]any, error) {
	if err := s.executor.Warmup(ctx, s.cfg.BaseURL); err != nil {
		return nil, err
	}

	text, err := s.executor.PageText(ctx, s.locationURL(query))
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = "[]"
	}

	decoded, err := jsontext.Decode(text)
	if err != nil {
		return nil, err
	}

	locations, ok := decoded.([]any)
	if !ok || len(locations) == 0 {
		return nil, ErrNoLocations
	}
	return locations, nil
}

func (s *Service) locationURL(query string) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("lang", "en")
	return s.cfg.LocationAPI + "?" + params.Encode()
}

func (s *Service) searchURL(c Criteria) string {
	params := url.Values{}
	params.Set("source", "enjoy_google_brand")
	params.Set("plocation", c.LocationID)
	params.Set("dlocation", c.LocationID)
	params.Set("pdate", c.PickupDate)
	params.Set("ddate", c.DropoffDate)
	params.Set("ptime", c.PickupTime)
	params.Set("dtime", c.DropoffTime)
	params.Set("old", "true")
	return s.cfg.SearchAPI + "?" + params.Encode()
}

// fetchSearch navigates to the search API for the given criteria and
// decodes the rendered body.
func (s *Service) fetchSearch(ctx context.Context, c Criteria) (any, error) {
	text, err := s.executor.PageText(ctx, s.searchURL(c))
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = "{}"
	}
	return jsontext.Decode(text)
}

func (s *Service) publish(ctx context.Context, sessionID string, run progress.Run) {
	if err := s.progress.Set(ctx, sessionID, run); err != nil {
		s.logger.Error("failed to publish progress", "session", sessionID, "error", err)
	}
}

// fail records a terminal error state. Runs never propagate errors to
// their caller; by the time anything fails the caller has already
// disengaged and learns outcomes only by polling.
func (s *Service) fail(ctx context.Context, sessionID, message string) {
	s.publish(ctx, sessionID, progress.Run{
		Status:  progress.StatusError,
		Message: "Error: " + message,
	})
}

func (s *Service) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
