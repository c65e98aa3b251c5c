package offers

import "strconv"

// Normalize maps a decoded search response onto canonical Offers. The
// upstream guarantees nothing about its shape, so every lookup is
// optional: unresolvable fields become nil (or the documented default)
// and an unrecognized response yields an empty slice, never an error.
//
// Shapes are tried in a fixed order and the first match wins:
//  1. a products list, each wrapping a vehicle record plus
//     product-level overrides
//  2. a categoryItems list, each wrapping one reference vehicle
//  3. a flat list under one of several known keys
func Normalize(raw any, dateTag string) []Offer {
	root, _ := raw.(map[string]any)

	var items []map[string]any
	for _, decode := range shapeDecoders {
		if decoded, ok := decode(root); ok {
			items = decoded
			break
		}
	}

	result := make([]Offer, 0, len(items))
	for _, item := range items {
		offer := toOffer(item)
		offer.RentalDate = dateTag
		result = append(result, offer)
	}
	return result
}

type shapeDecoder func(map[string]any) ([]map[string]any, bool)

var shapeDecoders = []shapeDecoder{
	decodeProducts,
	decodeCategoryItems,
	decodeFlat,
}

// decodeProducts handles the richest shape: every product carries a
// listProduct (full vehicle), falling back to referenceProduct, falling
// back to the product record itself. Product-level fields override the
// vehicle's where the original feed does the same.
func decodeProducts(root map[string]any) ([]map[string]any, bool) {
	products, ok := asList(root["products"])
	if !ok {
		return nil, false
	}

	items := make([]map[string]any, 0, len(products))
	for _, entry := range products {
		product, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		vehicle := firstMap(product["listProduct"], product["referenceProduct"])
		if vehicle == nil {
			vehicle = product
		}

		item := make(map[string]any, len(vehicle)+6)
		for k, v := range vehicle {
			item[k] = v
		}

		setFirst(item, "supplier", product["supplierName"], vehicle["supplier"])
		setFirst(item, "rating", product["rating"])
		setFirst(item, "recommended", product["recommended"])
		setFirst(item, "price", vehicle["price"], product["payNowPayTotal"], product["resultDisplayPrice"])
		setFirst(item, "carId", product["carId"])
		setFirst(item, "normalizedTypeName", product["normalizedTypeName"], vehicle["vehicleCategoryName"])

		items = append(items, item)
	}
	return items, true
}

// decodeCategoryItems handles the category-grouped shape, which exposes
// only one reference vehicle per category.
func decodeCategoryItems(root map[string]any) ([]map[string]any, bool) {
	categories, ok := asList(root["categoryItems"])
	if !ok {
		return nil, false
	}

	items := make([]map[string]any, 0, len(categories))
	for _, entry := range categories {
		category, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		vehicle := firstMap(category["referenceProduct"])

		item := make(map[string]any, len(vehicle)+1)
		for k, v := range vehicle {
			item[k] = v
		}
		setFirst(item, "categoryName", category["categoryName"])

		items = append(items, item)
	}
	return items, true
}

var flatListKeys = []string{"results", "Results", "cars", "Cars", "data", "vehicles"}

func decodeFlat(root map[string]any) ([]map[string]any, bool) {
	for _, key := range flatListKeys {
		list, ok := asList(root[key])
		if !ok {
			continue
		}
		items := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items, true
	}
	return nil, true
}

func toOffer(item map[string]any) Offer {
	vehicle := firstMap(item["vehicle"])

	return Offer{
		Brand:        firstString(vehicle["make"], item["make"], item["brand"]),
		CarType:      firstString(item["normalizedTypeName"], item["vehicleCategoryName"], vehicle["category"], item["categoryName"], item["carType"], item["type"]),
		VehicleName:  firstString(vehicle["name"], item["name"], item["vehicleName"]),
		Supplier:     firstString(item["supplier"], item["supplierName"], item["provider"]),
		Price:        normalizePrice(item),
		Currency:     currencyOf(item),
		PriceDayRate: firstNumber(item["priceDayRate"], item["premiumPriceDayRate"]),
		Rating:       firstNumber(item["rating"]),
		Recommended:  item["recommended"] == true,
		CarID:        firstString(item["carId"]),
		AcrissCode:   firstString(item["acrissCode"]),
		Transmission: firstString(item["transmission"]),
		Seats:        firstNumber(item["seats"]),
		FuelType:     firstString(item["fuelType"]),
	}
}

// normalizePrice walks the known price keys in priority order; a price
// that is itself an object contributes its amount field.
func normalizePrice(item map[string]any) *float64 {
	var nestedAmount any
	if priceObj := firstMap(item["price"]); priceObj != nil {
		nestedAmount = priceObj["amount"]
	}

	return firstNumber(
		item["price"],
		item["payNowPayTotal"],
		item["resultDisplayPrice"],
		nestedAmount,
		item["totalPrice"],
		item["Price"],
		item["premiumPrice"],
	)
}

func currencyOf(item map[string]any) string {
	if s := firstString(item["currency"], item["localCurrency"]); s != nil {
		return *s
	}
	return "USD"
}

func asList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// firstMap returns the first candidate that is a non-empty JSON object.
func firstMap(candidates ...any) map[string]any {
	for _, c := range candidates {
		if m, ok := c.(map[string]any); ok && len(m) > 0 {
			return m
		}
	}
	return nil
}

// setFirst assigns the first usable candidate, leaving the key alone
// when every candidate is absent or empty.
func setFirst(item map[string]any, key string, candidates ...any) {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if s, ok := c.(string); ok && s == "" {
			continue
		}
		item[key] = c
		return
	}
}

func firstString(candidates ...any) *string {
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// firstNumber accepts JSON numbers and numeric strings; anything else
// is treated as absent.
func firstNumber(candidates ...any) *float64 {
	for _, c := range candidates {
		switch v := c.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}
