package schema

import (
	"testing"

	"marketplace-portal/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCategoryKey(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Houses", KeyHouse},
		{"Family Homes", KeyHouse},
		{"Apartments", KeyApartment},
		{"Apartment House", KeyApartment}, // apartment wins over house
		{"Cars", KeyCar},
		{"Vehicles", KeyCar},
		{"Automobiles", KeyCar},
		{"Car Parts", KeyCar}, // substring match, known quirk
		{"Furniture", KeyFurniture},
		{"Plots", KeyPlot},
		{"Land for Sale", KeyPlot},
		{"Electronics", "electronics"}, // fallback to lowercased name
		{"  Electronics  ", "electronics"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CategoryKey(tt.name), "name: %q", tt.name)
	}
}

func TestResolveKey_KindOverride(t *testing.T) {
	// An explicit Kind pins the key regardless of what the name suggests
	category := models.Category{Name: "Car Parts", Kind: "spare_parts"}
	assert.Equal(t, "spare_parts", ResolveKey(category))

	// Without Kind, falls back to name inference
	category.Kind = ""
	assert.Equal(t, KeyCar, ResolveKey(category))
}

func TestRequiredFields(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"bedrooms", "bathrooms", "area_sqm"},
		RequiredFields(KeyHouse, models.TransactionSell))

	assert.ElementsMatch(t,
		[]string{"bedrooms", "bathrooms", "area_sqm", "rent_period"},
		RequiredFields(KeyHouse, models.TransactionRent))

	assert.ElementsMatch(t,
		[]string{"bedrooms", "bathrooms", "area_sqm"},
		RequiredFields(KeyApartment, models.TransactionSell))

	assert.ElementsMatch(t,
		[]string{"transmission", "year"},
		RequiredFields(KeyCar, models.TransactionSell))

	// Rent adds rent_period even for categories with no base requirements
	assert.ElementsMatch(t,
		[]string{"rent_period"},
		RequiredFields(KeyFurniture, models.TransactionRent))

	assert.Empty(t, RequiredFields(KeyPlot, models.TransactionSell))
	assert.Empty(t, RequiredFields("electronics", models.TransactionSell))
}

func TestRentPeriods(t *testing.T) {
	assert.Equal(t, []string{"daily", "weekly", "monthly"}, RentPeriods(KeyApartment))
	assert.Equal(t, []string{"monthly", "yearly"}, RentPeriods(KeyHouse))
	assert.Nil(t, RentPeriods(KeyCar))
	assert.Nil(t, RentPeriods("electronics"))
}

func TestValidate_MissingFields(t *testing.T) {
	bag := models.AttributeBag{
		"bedrooms":  "3",
		"bathrooms": "2",
	}

	result := Validate(KeyHouse, models.TransactionSell, bag)
	assert.False(t, result.OK())
	assert.Equal(t, []string{"area_sqm"}, result.Missing)
	assert.Empty(t, result.Invalid)
	assert.Equal(t, []string{"area_sqm"}, result.Fields())
}

func TestValidate_BlankCountsAsMissing(t *testing.T) {
	bag := models.AttributeBag{
		"bedrooms":  "3",
		"bathrooms": "  ",
		"area_sqm":  "120.5",
	}

	result := Validate(KeyHouse, models.TransactionSell, bag)
	assert.Equal(t, []string{"bathrooms"}, result.Missing)
}

func TestValidate_NumericFields(t *testing.T) {
	bag := models.AttributeBag{
		"bedrooms":  "three",
		"bathrooms": "2",
		"area_sqm":  "120,5",
	}

	result := Validate(KeyHouse, models.TransactionSell, bag)
	assert.False(t, result.OK())
	assert.Empty(t, result.Missing)
	assert.ElementsMatch(t, []string{"bedrooms", "area_sqm"}, result.Invalid)
}

func TestValidate_RentPeriodValues(t *testing.T) {
	bag := models.AttributeBag{
		"bedrooms":    "2",
		"bathrooms":   "1",
		"area_sqm":    "80",
		"rent_period": "daily",
	}

	// daily is valid for apartments
	assert.True(t, Validate(KeyApartment, models.TransactionRent, bag).OK())

	// but not for houses
	result := Validate(KeyHouse, models.TransactionRent, bag)
	assert.False(t, result.OK())
	assert.Equal(t, []string{"rent_period"}, result.Invalid)

	// unconstrained categories accept anything
	furnitureBag := models.AttributeBag{"rent_period": "whatever"}
	assert.True(t, Validate(KeyFurniture, models.TransactionRent, furnitureBag).OK())
}

func TestValidate_SellIgnoresRentPeriod(t *testing.T) {
	bag := models.AttributeBag{
		"transmission": "manual",
		"year":         "2018",
	}

	assert.True(t, Validate(KeyCar, models.TransactionSell, bag).OK())

	// missing rent_period on a rental
	result := Validate(KeyCar, models.TransactionRent, bag)
	assert.Equal(t, []string{"rent_period"}, result.Missing)
}

func TestValidate_DoesNotMutateBag(t *testing.T) {
	bag := models.AttributeBag{"bedrooms": " 3 "}
	Validate(KeyHouse, models.TransactionSell, bag)
	assert.Equal(t, " 3 ", bag["bedrooms"])
}

func TestValidate_UnknownCategoryNeedsNothing(t *testing.T) {
	assert.True(t, Validate("electronics", models.TransactionSell, models.AttributeBag{}).OK())
}
