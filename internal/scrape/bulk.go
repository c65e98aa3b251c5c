package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/rentalwatch/enjoytravel-scraper/internal/export"
	"github.com/rentalwatch/enjoytravel-scraper/internal/offers"
	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
)

// BulkRequest sweeps one-day rental searches across every date in an
// inclusive range.
type BulkRequest struct {
	LocationID string `json:"locationId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Time       string `json:"time"`
}

const dateLayout = "2006-01-02"

// RunBulk executes the day-by-day sweep. One warmed browser session is
// shared across the whole range. Per-day failures are logged and
// skipped; the loop always advances to the next date, so a handful of
// rejected requests cannot waste the rest of an expensive multi-day
// run. Only validation problems and a failed warmup are terminal.
func (s *Service) RunBulk(ctx context.Context, sessionID string, req BulkRequest) {
	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusStarting, Message: "Initializing bulk search...", Progress: 0,
	})

	if req.LocationID == "" || req.StartDate == "" || req.EndDate == "" {
		s.fail(ctx, sessionID, "Missing required fields")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		s.fail(ctx, sessionID, fmt.Sprintf("Invalid start date: %s", req.StartDate))
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		s.fail(ctx, sessionID, fmt.Sprintf("Invalid end date: %s", req.EndDate))
		return
	}

	totalDays := dayCount(start, end)
	if totalDays > s.cfg.MaxBulkDays {
		s.fail(ctx, sessionID, fmt.Sprintf("Maximum %d days allowed", s.cfg.MaxBulkDays))
		return
	}
	rentalTime := orDefault(req.Time, s.cfg.DefaultTime)

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Connecting to EnjoyTravel...", Progress: 5,
		TotalDays: totalDays,
	})
	if err := s.executor.Warmup(ctx, s.cfg.BaseURL); err != nil {
		s.logger.Error("warmup failed", "session", sessionID, "error", err)
		s.fail(ctx, sessionID, err.Error())
		return
	}
	s.pause(ctx, s.cfg.SettleDelay)

	var all []offers.Offer
	for i := 0; i < totalDays; i++ {
		dateStr := start.AddDate(0, 0, i).Format(dateLayout)

		s.publish(ctx, sessionID, progress.Run{
			Status:      progress.StatusRunning,
			Message:     fmt.Sprintf("Searching %s (one-day rental)...", dateStr),
			Progress:    10 + i*85/totalDays,
			CurrentDay:  i + 1,
			TotalDays:   totalDays,
			CurrentDate: dateStr,
		})

		decoded, err := s.fetchSearch(ctx, Criteria{
			LocationID:  req.LocationID,
			PickupDate:  dateStr,
			DropoffDate: dateStr,
			PickupTime:  rentalTime,
			DropoffTime: rentalTime,
		})
		if err != nil {
			s.logger.Error("day skipped", "session", sessionID, "date", dateStr, "error", err)
			continue
		}

		all = append(all, offers.Normalize(decoded, dateStr)...)

		s.pause(ctx, s.cfg.PacingDelay)
	}

	s.publish(ctx, sessionID, progress.Run{
		Status: progress.StatusRunning, Message: "Generating CSV file...", Progress: 95,
		CurrentDay: totalDays, TotalDays: totalDays,
	})

	filename := export.BulkFilename(req.StartDate, req.EndDate, s.now())
	content := export.Encode(all, export.BulkColumns)
	s.artifacts.Put(filename, content)

	s.logger.Info("bulk csv stored", "session", sessionID, "filename", filename, "offers", len(all), "days", totalDays)

	s.publish(ctx, sessionID, progress.Run{
		Status:     progress.StatusCompleted,
		Message:    fmt.Sprintf("Bulk search completed! Found %d total offers", len(all)),
		Progress:   100,
		CurrentDay: totalDays,
		TotalDays:  totalDays,
		Result: &progress.Result{
			Offers:      all,
			Total:       len(all),
			CSVFilename: filename,
			TotalDays:   totalDays,
		},
	})
}

// dayCount is the inclusive number of days between two dates,
// regardless of their order.
func dayCount(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours()/24) + 1
}
