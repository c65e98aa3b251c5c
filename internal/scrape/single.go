package scrape

import (
	"context"
	"fmt"

	"github.com/rentalwatch/enjoytravel-scraper/internal/export"
	"github.com/rentalwatch/enjoytravel-scraper/internal/jsontext"
	"github.com/rentalwatch/enjoytravel-scraper/internal/offers"
	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
)

// SingleRequest starts one search over a fixed date range.
type SingleRequest struct {
	LocationID  string `json:"locationId"`
	Pickup      string `json:"pickup"`
	Dropoff     string `json:"dropoff"`
	PickupTime  string `json:"pickupTime"`
	DropoffTime string `json:"dropoffTime"`
}

// RunSingle executes the single-date flow, publishing progress at every
// step. Validation happens before any remote call; any failure after
// that converts to a terminal error state.
func (s *Service) RunSingle(ctx context.Context, sessionID string, req SingleRequest) {
	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusStarting, Message: "Initializing scraper...", Progress: 0,
	})

	if req.LocationID == "" || req.Pickup == "" || req.Dropoff == "" {
		s.fail(ctx, sessionID, "Missing required fields")
		return
	}

	criteria := Criteria{
		LocationID:  req.LocationID,
		PickupDate:  req.Pickup,
		DropoffDate: req.Dropoff,
		PickupTime:  orDefault(req.PickupTime, s.cfg.DefaultTime),
		DropoffTime: orDefault(req.DropoffTime, s.cfg.DefaultTime),
	}

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Connecting to EnjoyTravel...", Progress: 10,
	})
	if err := s.executor.Warmup(ctx, s.cfg.BaseURL); err != nil {
		s.logger.Error("warmup failed", "session", sessionID, "error", err)
		s.fail(ctx, sessionID, err.Error())
		return
	}

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Connected! Waiting for bot challenge...", Progress: 20,
	})
	s.pause(ctx, s.cfg.SettleDelay)

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Fetching car rental offers...", Progress: 40,
	})

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Calling search API...", Progress: 50,
	})
	text, err := s.executor.PageText(ctx, s.searchURL(criteria))
	if err != nil {
		s.logger.Error("search fetch failed", "session", sessionID, "error", err)
		s.fail(ctx, sessionID, err.Error())
		return
	}
	if text == "" {
		text = "{}"
	}

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Parsing API response...", Progress: 60,
	})
	decoded, err := jsontext.Decode(text)
	if err != nil {
		s.logger.Error("search parse failed", "session", sessionID, "error", err)
		s.fail(ctx, sessionID, err.Error())
		return
	}

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Processing results...", Progress: 70,
	})
	result := offers.Normalize(decoded, "")

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Generating CSV file...", Progress: 85,
	})
	filename := export.OfferFilename(s.now())
	content := export.Encode(result, export.OfferColumns)
	s.artifacts.Put(filename, content)

	s.logger.Info("csv stored", "session", sessionID, "filename", filename, "offers", len(result), "bytes", len(content))

	s.publish(ctx, sessionID, progress.Run{
		Status:   progress.StatusCompleted,
		Message:  fmt.Sprintf("Success! Found %d car rental offers", len(result)),
		Progress: 100,
		Result: &progress.Result{
			Offers:      result,
			Total:       len(result),
			CSVFilename: filename,
		},
	})
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
