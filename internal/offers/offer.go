package offers

// Offer is one normalized car-rental record. Nullable fields are
// pointers so absent source data serializes as JSON null; Currency
// defaults to USD and Recommended to false. RentalDate is stamped only
// by bulk runs.
type Offer struct {
	RentalDate   string   `json:"rentalDate,omitempty"`
	Brand        *string  `json:"brand"`
	CarType      *string  `json:"carType"`
	VehicleName  *string  `json:"vehicleName"`
	Supplier     *string  `json:"supplier"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency"`
	PriceDayRate *float64 `json:"priceDayRate"`
	Rating       *float64 `json:"rating"`
	Recommended  bool     `json:"recommended"`
	CarID        *string  `json:"carId"`
	AcrissCode   *string  `json:"acrissCode"`
	Transmission *string  `json:"transmission"`
	Seats        *float64 `json:"seats"`
	FuelType     *string  `json:"fuelType"`
}
