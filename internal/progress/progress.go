// Package progress tracks the live state of scrape runs keyed by
// session. The store is an injected collaborator with per-session
// expiry rather than an ambient unbounded map, so long-lived deployments
// do not accumulate finished sessions forever.
package progress

import (
	"context"

	"github.com/rentalwatch/enjoytravel-scraper/internal/offers"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusStarting  Status = "starting"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Run is the state of one scrape session. Every write replaces the
// whole entry.
type Run struct {
	Status      Status  `json:"status"`
	Message     string  `json:"message"`
	Progress    int     `json:"progress"`
	CurrentDay  int     `json:"currentDay,omitempty"`
	TotalDays   int     `json:"totalDays,omitempty"`
	CurrentDate string  `json:"currentDate,omitempty"`
	Result      *Result `json:"result,omitempty"`
}

// Result is attached to a Run once it completes.
type Result struct {
	Offers      []offers.Offer `json:"offers"`
	Total       int            `json:"total"`
	CSVFilename string         `json:"csvFilename"`
	TotalDays   int            `json:"totalDays,omitempty"`
}

// Idle is what pollers see for sessions the store does not know,
// including expired ones.
func Idle() Run {
	return Run{Status: StatusIdle, Message: "Waiting...", Progress: 0}
}

// Store is polled by HTTP consumers while orchestrators publish into
// it. Get never fails on an unknown session; it returns the idle
// default.
type Store interface {
	Set(ctx context.Context, sessionID string, run Run) error
	Get(ctx context.Context, sessionID string) (Run, error)
}
