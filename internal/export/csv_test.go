package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalwatch/enjoytravel-scraper/internal/offers"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestEncodeQuoting(t *testing.T) {
	records := []offers.Offer{
		{Brand: strPtr("Tesla, Inc."), Price: numPtr(100), Recommended: true},
	}
	columns := []Column{
		{"Brand", func(o offers.Offer) string { return *o.Brand }},
		{"Price", func(o offers.Offer) string { return numVal(o.Price) }},
		{"Recommended", func(o offers.Offer) string { return yesNo(o.Recommended) }},
	}

	got := Encode(records, columns)
	assert.Equal(t, "Brand,Price,Recommended\n\"Tesla, Inc.\",100,Yes", got)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Toyota", "Toyota"},
		{"empty", "", ""},
		{"comma", "Tesla, Inc.", `"Tesla, Inc."`},
		{"quote", `the "best" car`, `"the ""best"" car"`},
		{"newline", "line1\nline2", "\"line1\nline2\""},
		{"quote and comma", `a,"b"`, `"a,""b"""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escape(tt.input))
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	records := []offers.Offer{
		{
			Brand:        strPtr("Tesla, Inc."),
			CarType:      strPtr("Electric"),
			VehicleName:  strPtr(`Model "3"`),
			Supplier:     strPtr("Acme\nRentals"),
			Price:        numPtr(99.5),
			Currency:     "USD",
			Rating:       numPtr(8.2),
			Recommended:  true,
			CarID:        strPtr("c-77"),
			Transmission: strPtr("Automatic"),
			Seats:        numPtr(5),
			FuelType:     strPtr("Electric"),
		},
		{Currency: "EUR"},
	}

	encoded := Encode(records, OfferColumns)

	reader := csv.NewReader(strings.NewReader(encoded))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "Brand", header[0])
	assert.Equal(t, "ACRISS Code", header[10])

	first := rows[1]
	assert.Equal(t, "Tesla, Inc.", first[0])
	assert.Equal(t, `Model "3"`, first[2])
	assert.Equal(t, "Acme\nRentals", first[3])
	assert.Equal(t, "99.5", first[4])
	assert.Equal(t, "Yes", first[8])
	assert.Equal(t, "5", first[12])

	// Defaulted offer renders empty cells except currency and the
	// boolean column.
	second := rows[2]
	assert.Equal(t, "", second[0])
	assert.Equal(t, "EUR", second[5])
	assert.Equal(t, "No", second[8])
}

func TestEncodeDeterministic(t *testing.T) {
	records := []offers.Offer{
		{Brand: strPtr("Fiat"), Price: numPtr(42), Currency: "USD"},
		{Brand: strPtr("Opel"), Currency: "USD"},
	}

	a := Encode(records, OfferColumns)
	b := Encode(records, OfferColumns)
	assert.Equal(t, a, b)
}

func TestEncodeEmpty(t *testing.T) {
	got := Encode(nil, []Column{{"A", func(offers.Offer) string { return "" }}})
	assert.Equal(t, "A", got)
}

func TestBulkColumnsIncludeRentalDate(t *testing.T) {
	records := []offers.Offer{
		{RentalDate: "2026-02-01", Brand: strPtr("Seat"), Currency: "USD"},
	}

	encoded := Encode(records, BulkColumns)
	lines := strings.Split(encoded, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Rental Date,Brand,"))
	assert.True(t, strings.HasPrefix(lines[1], "2026-02-01,Seat,"))
}

func TestFilenames(t *testing.T) {
	now := time.Date(2026, 1, 3, 9, 30, 15, 0, time.UTC)

	assert.Equal(t, "enjoytravel-offers-2026-01-03T09-30-15.csv", OfferFilename(now))
	assert.Equal(t,
		"enjoytravel-bulk-2026-01-03-to-2026-01-10-2026-01-03T09-30-15.csv",
		BulkFilename("2026-01-03", "2026-01-10", now))
}
