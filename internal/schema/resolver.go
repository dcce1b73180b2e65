package schema

import (
	"strconv"
	"strings"

	"marketplace-portal/internal/models"
)

// Normalized category keys. Anything outside this set falls back to the
// lowercased category name itself.
const (
	KeyHouse     = "house"
	KeyApartment = "apartment"
	KeyCar       = "car"
	KeyFurniture = "furniture"
	KeyPlot      = "plot"
)

// keywordTable maps substrings of a category display name to its normalized
// key. Matched in order: "apartment" must win before "house" so names like
// "Apartment House" resolve to apartment.
var keywordTable = []struct {
	substr string
	key    string
}{
	{"apartment", KeyApartment},
	{"house", KeyHouse},
	{"home", KeyHouse},
	{"car", KeyCar},
	{"vehicle", KeyCar},
	{"auto", KeyCar},
	{"furniture", KeyFurniture},
	{"plot", KeyPlot},
	{"land", KeyPlot},
}

// CategoryKey derives the normalized key from a category display name via
// substring matching. Known ambiguity: a name like "Dollhouse Miniatures"
// resolves to house. Categories can pin an explicit Kind to avoid this;
// see ResolveKey.
func CategoryKey(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, entry := range keywordTable {
		if strings.Contains(lower, entry.substr) {
			return entry.key
		}
	}
	return lower
}

// ResolveKey returns the category's explicit Kind when set, otherwise the
// key inferred from its name.
func ResolveKey(category models.Category) string {
	if category.Kind != "" {
		return category.Kind
	}
	return CategoryKey(category.Name)
}

// RequiredFields returns the attribute names a listing of the given category
// key and transaction type must carry.
func RequiredFields(key string, tx models.TransactionType) []string {
	var fields []string

	switch key {
	case KeyHouse, KeyApartment:
		fields = append(fields, "bedrooms", "bathrooms", "area_sqm")
	case KeyCar:
		fields = append(fields, "transmission", "year")
	}
	// furniture, plot and unknown keys need nothing beyond the listing basics

	if tx == models.TransactionRent {
		fields = append(fields, "rent_period")
	}

	return fields
}

// RentPeriods returns the acceptable rent_period values for a category key.
// A nil result means the value is unconstrained.
func RentPeriods(key string) []string {
	switch key {
	case KeyApartment:
		return []string{"daily", "weekly", "monthly"}
	case KeyHouse:
		return []string{"monthly", "yearly"}
	}
	return nil
}

// numeric attribute fields that must parse when present
var intFields = map[string]bool{
	"bedrooms":  true,
	"bathrooms": true,
	"year":      true,
	"mileage":   true,
}

var floatFields = map[string]bool{
	"area_sqm": true,
}

// ValidationResult lists the field names that failed validation
type ValidationResult struct {
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

// OK reports whether the bag passed
func (r ValidationResult) OK() bool {
	return len(r.Missing) == 0 && len(r.Invalid) == 0
}

// Fields returns every failed field name, missing first
func (r ValidationResult) Fields() []string {
	out := make([]string, 0, len(r.Missing)+len(r.Invalid))
	out = append(out, r.Missing...)
	out = append(out, r.Invalid...)
	return out
}

// Validate checks an attribute bag against the required set for the category
// key and transaction type. Pure: the bag is never mutated. The identical
// rules run client-side before submission; this is the server-side mirror.
func Validate(key string, tx models.TransactionType, bag models.AttributeBag) ValidationResult {
	var result ValidationResult

	for _, field := range RequiredFields(key, tx) {
		if strings.TrimSpace(bag[field]) == "" {
			result.Missing = append(result.Missing, field)
		}
	}

	for field, value := range bag {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if intFields[field] {
			if _, err := strconv.Atoi(value); err != nil {
				result.Invalid = append(result.Invalid, field)
			}
		} else if floatFields[field] {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				result.Invalid = append(result.Invalid, field)
			}
		}
	}

	// rent_period values are constrained per category
	if tx == models.TransactionRent {
		if period := strings.TrimSpace(bag["rent_period"]); period != "" {
			if allowed := RentPeriods(key); allowed != nil && !contains(allowed, period) {
				result.Invalid = append(result.Invalid, "rent_period")
			}
		}
	}

	return result
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
