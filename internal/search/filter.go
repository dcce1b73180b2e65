package search

import (
	"fmt"
	"strings"

	"marketplace-portal/internal/models"
)

// FilterParams are the quick-filter options for the public search bar
type FilterParams struct {
	Query        string
	MinPrice     *float64
	MaxPrice     *float64
	CategoryKeys []string
	Type         string
	Province     string
	SortBy       string
	Limit        int64
}

// FilterSearch performs search with structured filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Listing, error) {
	var filters []string

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %f", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %f", *params.MaxPrice))
	}

	// Category filter
	if len(params.CategoryKeys) > 0 {
		keyFilters := make([]string, len(params.CategoryKeys))
		for i, key := range params.CategoryKeys {
			keyFilters[i] = fmt.Sprintf("category_key = '%s'", key)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(keyFilters, " OR ")))
	}

	// Transaction type filter
	if params.Type != "" {
		filters = append(filters, fmt.Sprintf("type = '%s'", params.Type))
	}

	// Province filter
	if params.Province != "" {
		filters = append(filters, fmt.Sprintf("location_province = '%s'", params.Province))
	}

	// Public search never surfaces inactive listings
	filters = append(filters, fmt.Sprintf("status = '%s'", models.ListingStatusActive))

	// Determine sort order
	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	// Default limit
	if params.Limit == 0 {
		params.Limit = 20
	}

	result, err := s.AdvancedSearch(SearchRequest{
		Query:  params.Query,
		Limit:  params.Limit,
		Filter: filters,
		Sort:   sort,
	})
	if err != nil {
		return nil, err
	}

	return result.Hits, nil
}
