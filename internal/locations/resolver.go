package locations

import (
	"errors"
	"fmt"
	"strings"

	"marketplace-portal/internal/models"
)

// ErrUnknownCountry is returned for country codes outside RW/DRC
var ErrUnknownCountry = errors.New("unknown country code")

// Store abstracts the seeded location tree. The GORM store in
// internal/database implements it; tests use an in-memory one.
type Store interface {
	ProvincesByCountry(country string) ([]models.Province, error)
	DistrictsByProvince(provinceID uint) ([]models.District, error)
	SectorsByDistrict(districtID uint) ([]models.Sector, error)
	CitiesByProvince(provinceID uint) ([]models.City, error)
	TerritoriesByProvince(provinceID uint) ([]models.Territory, error)

	DistrictByID(id uint) (*models.District, error)
	SectorByID(id uint) (*models.Sector, error)
	CityByID(id uint) (*models.City, error)
	TerritoryByID(id uint) (*models.Territory, error)
}

// Resolver answers the cascading-select lookups over the location hierarchy.
// Pure reads, no side effects.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

func validCountry(country string) bool {
	return country == models.CountryRW || country == models.CountryDRC
}

// ListProvinces returns the provinces of a country. An empty or unknown
// country code is an error, not an empty list.
func (r *Resolver) ListProvinces(country string) ([]models.Province, error) {
	if !validCountry(country) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	return r.store.ProvincesByCountry(country)
}

// Children is the country-dependent child set of a province. For Rwanda only
// Districts is populated (sectors cascade off a chosen district); for DRC
// Cities and Territories come back together since they are siblings.
type Children struct {
	Districts   []models.District
	Sectors     []models.Sector
	Cities      []models.City
	Territories []models.Territory
}

// ListChildren returns the children of a province. Unknown province ids
// yield empty lists, matching the permissive cascading-select behavior.
func (r *Resolver) ListChildren(country string, provinceID uint) (*Children, error) {
	if !validCountry(country) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}

	children := &Children{
		Districts:   []models.District{},
		Sectors:     []models.Sector{},
		Cities:      []models.City{},
		Territories: []models.Territory{},
	}

	if country == models.CountryRW {
		districts, err := r.store.DistrictsByProvince(provinceID)
		if err != nil {
			return nil, err
		}
		children.Districts = districts
		return children, nil
	}

	cities, err := r.store.CitiesByProvince(provinceID)
	if err != nil {
		return nil, err
	}
	territories, err := r.store.TerritoriesByProvince(provinceID)
	if err != nil {
		return nil, err
	}
	children.Cities = cities
	children.Territories = territories
	return children, nil
}

// ListSectors returns the sectors of a Rwanda district. Unknown district ids
// yield an empty list.
func (r *Resolver) ListSectors(districtID uint) ([]models.Sector, error) {
	return r.store.SectorsByDistrict(districtID)
}

// LabelParts are the name components a composed location label is built from
type LabelParts struct {
	Province  string
	District  string
	Sector    string
	City      string
	Territory string
}

// ComposeLabel joins the non-empty location names with ", ". Rwanda order is
// country, province, district, sector; DRC is country, province, then city
// or territory (city wins when both are set).
func ComposeLabel(country string, parts LabelParts) string {
	names := []string{models.CountryName(country)}

	appendNonEmpty := func(name string) {
		if strings.TrimSpace(name) != "" {
			names = append(names, strings.TrimSpace(name))
		}
	}

	appendNonEmpty(parts.Province)
	if country == models.CountryDRC {
		if strings.TrimSpace(parts.City) != "" {
			appendNonEmpty(parts.City)
		} else {
			appendNonEmpty(parts.Territory)
		}
	} else {
		appendNonEmpty(parts.District)
		appendNonEmpty(parts.Sector)
	}

	return strings.Join(names, ", ")
}

// ValidateBrokerLocation checks that a broker's home-location references
// resolve under the right country tree: Rwanda brokers need a district and
// sector chained to their province, DRC brokers a city and/or territory
// under a DRC province.
func (r *Resolver) ValidateBrokerLocation(u *models.User) error {
	switch u.Country {
	case models.CountryRW:
		if u.BrokerProvince == nil || u.BrokerDistrict == nil || u.BrokerSector == nil {
			return errors.New("rwanda broker requires province, district and sector")
		}
		district, err := r.store.DistrictByID(*u.BrokerDistrict)
		if err != nil {
			return fmt.Errorf("district %d not found", *u.BrokerDistrict)
		}
		if district.ProvinceID != *u.BrokerProvince {
			return fmt.Errorf("district %d is not in province %d", district.ID, *u.BrokerProvince)
		}
		sector, err := r.store.SectorByID(*u.BrokerSector)
		if err != nil {
			return fmt.Errorf("sector %d not found", *u.BrokerSector)
		}
		if sector.DistrictID != district.ID {
			return fmt.Errorf("sector %d is not in district %d", sector.ID, district.ID)
		}
		return nil

	case models.CountryDRC:
		if u.CityID == nil && u.TerritoryID == nil {
			return errors.New("drc broker requires a city or territory")
		}
		if u.CityID != nil {
			if _, err := r.store.CityByID(*u.CityID); err != nil {
				return fmt.Errorf("city %d not found", *u.CityID)
			}
		}
		if u.TerritoryID != nil {
			if _, err := r.store.TerritoryByID(*u.TerritoryID); err != nil {
				return fmt.Errorf("territory %d not found", *u.TerritoryID)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownCountry, u.Country)
}
