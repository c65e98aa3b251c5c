// Package export renders normalized offers as CSV text. The format is
// deliberately minimal: header row plus one row per offer, rows joined
// with \n, a field quoted only when it contains a comma, quote, or
// newline. Same input always yields byte-identical output.
package export

import (
	"strconv"
	"strings"

	"github.com/rentalwatch/enjoytravel-scraper/internal/offers"
)

// Column pairs a header label with the extractor producing its cell
// value for one offer.
type Column struct {
	Header string
	Value  func(offers.Offer) string
}

// Encode serializes offers under the given column set.
func Encode(records []offers.Offer, columns []Column) string {
	var b strings.Builder

	for i, col := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escape(col.Header))
	}

	for _, record := range records {
		b.WriteByte('\n')
		for i, col := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escape(col.Value(record)))
		}
	}

	return b.String()
}

func escape(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// OfferColumns is the column set for single-date exports.
var OfferColumns = []Column{
	{"Brand", func(o offers.Offer) string { return strVal(o.Brand) }},
	{"Car Type", func(o offers.Offer) string { return strVal(o.CarType) }},
	{"Vehicle Name", func(o offers.Offer) string { return strVal(o.VehicleName) }},
	{"Supplier", func(o offers.Offer) string { return strVal(o.Supplier) }},
	{"Price", func(o offers.Offer) string { return numVal(o.Price) }},
	{"Currency", func(o offers.Offer) string { return o.Currency }},
	{"Price Per Day", func(o offers.Offer) string { return numVal(o.PriceDayRate) }},
	{"Rating", func(o offers.Offer) string { return numVal(o.Rating) }},
	{"Recommended", func(o offers.Offer) string { return yesNo(o.Recommended) }},
	{"Car ID", func(o offers.Offer) string { return strVal(o.CarID) }},
	{"ACRISS Code", func(o offers.Offer) string { return strVal(o.AcrissCode) }},
	{"Transmission", func(o offers.Offer) string { return strVal(o.Transmission) }},
	{"Seats", func(o offers.Offer) string { return numVal(o.Seats) }},
	{"Fuel Type", func(o offers.Offer) string { return strVal(o.FuelType) }},
}

// BulkColumns prepends the rental date to the single-date set.
var BulkColumns = append([]Column{
	{"Rental Date", func(o offers.Offer) string { return o.RentalDate }},
}, OfferColumns...)

func strVal(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func numVal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
