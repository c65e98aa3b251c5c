package export

import (
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02T15-04-05"

// OfferFilename names a single-date export from the current time.
func OfferFilename(now time.Time) string {
	return fmt.Sprintf("enjoytravel-offers-%s.csv", now.UTC().Format(timestampLayout))
}

// BulkFilename names a bulk export from its date range and the current
// time.
func BulkFilename(startDate, endDate string, now time.Time) string {
	return fmt.Sprintf("enjoytravel-bulk-%s-to-%s-%s.csv", startDate, endDate, now.UTC().Format(timestampLayout))
}
