package locations

import (
	"testing"

	"marketplace-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore is an in-memory Store for resolver tests
type fakeStore struct {
	provinces   []models.Province
	districts   []models.District
	sectors     []models.Sector
	cities      []models.City
	territories []models.Territory
}

func (f *fakeStore) ProvincesByCountry(country string) ([]models.Province, error) {
	var out []models.Province
	for _, p := range f.provinces {
		if p.Country == country {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) DistrictsByProvince(provinceID uint) ([]models.District, error) {
	var out []models.District
	for _, d := range f.districts {
		if d.ProvinceID == provinceID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) SectorsByDistrict(districtID uint) ([]models.Sector, error) {
	var out []models.Sector
	for _, s := range f.sectors {
		if s.DistrictID == districtID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CitiesByProvince(provinceID uint) ([]models.City, error) {
	var out []models.City
	for _, c := range f.cities {
		if c.ProvinceID == provinceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) TerritoriesByProvince(provinceID uint) ([]models.Territory, error) {
	var out []models.Territory
	for _, t := range f.territories {
		if t.ProvinceID == provinceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) DistrictByID(id uint) (*models.District, error) {
	for _, d := range f.districts {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) SectorByID(id uint) (*models.Sector, error) {
	for _, s := range f.sectors {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CityByID(id uint) (*models.City, error) {
	for _, c := range f.cities {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) TerritoryByID(id uint) (*models.Territory, error) {
	for _, t := range f.territories {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func testStore() *fakeStore {
	return &fakeStore{
		provinces: []models.Province{
			{ID: 1, Name: "Kigali City", Country: models.CountryRW},
			{ID: 2, Name: "Eastern Province", Country: models.CountryRW},
			{ID: 3, Name: "Nord-Kivu", Country: models.CountryDRC},
		},
		districts: []models.District{
			{ID: 10, Name: "Gasabo", ProvinceID: 1},
			{ID: 11, Name: "Kicukiro", ProvinceID: 1},
		},
		sectors: []models.Sector{
			{ID: 100, Name: "Remera", DistrictID: 10},
			{ID: 101, Name: "Kimironko", DistrictID: 10},
		},
		cities: []models.City{
			{ID: 200, Name: "Goma", ProvinceID: 3},
		},
		territories: []models.Territory{
			{ID: 300, Name: "Nyiragongo", ProvinceID: 3},
			{ID: 301, Name: "Masisi", ProvinceID: 3},
		},
	}
}

func TestListProvinces(t *testing.T) {
	r := NewResolver(testStore())

	provinces, err := r.ListProvinces(models.CountryRW)
	require.NoError(t, err)
	assert.Len(t, provinces, 2)

	provinces, err = r.ListProvinces(models.CountryDRC)
	require.NoError(t, err)
	assert.Len(t, provinces, 1)
	assert.Equal(t, "Nord-Kivu", provinces[0].Name)
}

func TestListProvinces_UnknownCountry(t *testing.T) {
	r := NewResolver(testStore())

	_, err := r.ListProvinces("KE")
	assert.ErrorIs(t, err, ErrUnknownCountry)

	_, err = r.ListProvinces("")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestListChildren_Rwanda(t *testing.T) {
	r := NewResolver(testStore())

	children, err := r.ListChildren(models.CountryRW, 1)
	require.NoError(t, err)
	assert.Len(t, children.Districts, 2)
	assert.Empty(t, children.Cities)
	assert.Empty(t, children.Territories)
}

func TestListChildren_DRC(t *testing.T) {
	r := NewResolver(testStore())

	children, err := r.ListChildren(models.CountryDRC, 3)
	require.NoError(t, err)
	assert.Len(t, children.Cities, 1)
	assert.Len(t, children.Territories, 2)
	assert.Empty(t, children.Districts)

	// Cities and territories never share a unit
	for _, city := range children.Cities {
		for _, territory := range children.Territories {
			assert.NotEqual(t, city.Name, territory.Name)
		}
	}
}

func TestListChildren_UnknownProvinceIsEmpty(t *testing.T) {
	r := NewResolver(testStore())

	children, err := r.ListChildren(models.CountryRW, 999)
	require.NoError(t, err)
	assert.Empty(t, children.Districts)

	children, err = r.ListChildren(models.CountryDRC, 999)
	require.NoError(t, err)
	assert.Empty(t, children.Cities)
	assert.Empty(t, children.Territories)
}

func TestListSectors(t *testing.T) {
	r := NewResolver(testStore())

	sectors, err := r.ListSectors(10)
	require.NoError(t, err)
	assert.Len(t, sectors, 2)

	sectors, err = r.ListSectors(999)
	require.NoError(t, err)
	assert.Empty(t, sectors)
}

func TestComposeLabel(t *testing.T) {
	label := ComposeLabel(models.CountryRW, LabelParts{
		Province: "Kigali City",
		District: "Gasabo",
		Sector:   "Remera",
	})
	assert.Equal(t, "Rwanda, Kigali City, Gasabo, Remera", label)

	// Partial parts are skipped, not left as gaps
	label = ComposeLabel(models.CountryRW, LabelParts{Province: "Kigali City"})
	assert.Equal(t, "Rwanda, Kigali City", label)

	label = ComposeLabel(models.CountryDRC, LabelParts{
		Province: "Nord-Kivu",
		City:     "Goma",
	})
	assert.Equal(t, "DR Congo, Nord-Kivu, Goma", label)

	label = ComposeLabel(models.CountryDRC, LabelParts{
		Province:  "Nord-Kivu",
		Territory: "Masisi",
	})
	assert.Equal(t, "DR Congo, Nord-Kivu, Masisi", label)

	// City wins when both are set
	label = ComposeLabel(models.CountryDRC, LabelParts{
		Province:  "Nord-Kivu",
		City:      "Goma",
		Territory: "Masisi",
	})
	assert.Equal(t, "DR Congo, Nord-Kivu, Goma", label)
}

func uintPtr(v uint) *uint { return &v }

func TestValidateBrokerLocation_Rwanda(t *testing.T) {
	r := NewResolver(testStore())

	user := &models.User{
		Country:        models.CountryRW,
		BrokerProvince: uintPtr(1),
		BrokerDistrict: uintPtr(10),
		BrokerSector:   uintPtr(100),
	}
	assert.NoError(t, r.ValidateBrokerLocation(user))

	// Sector from another district fails the chain check
	user.BrokerSector = uintPtr(999)
	assert.Error(t, r.ValidateBrokerLocation(user))

	// District not under the claimed province
	user = &models.User{
		Country:        models.CountryRW,
		BrokerProvince: uintPtr(2),
		BrokerDistrict: uintPtr(10),
		BrokerSector:   uintPtr(100),
	}
	assert.Error(t, r.ValidateBrokerLocation(user))

	// Missing pieces
	user = &models.User{Country: models.CountryRW, BrokerProvince: uintPtr(1)}
	assert.Error(t, r.ValidateBrokerLocation(user))
}

func TestValidateBrokerLocation_DRC(t *testing.T) {
	r := NewResolver(testStore())

	user := &models.User{Country: models.CountryDRC, CityID: uintPtr(200)}
	assert.NoError(t, r.ValidateBrokerLocation(user))

	user = &models.User{Country: models.CountryDRC, TerritoryID: uintPtr(300)}
	assert.NoError(t, r.ValidateBrokerLocation(user))

	user = &models.User{Country: models.CountryDRC}
	assert.Error(t, r.ValidateBrokerLocation(user))

	user = &models.User{Country: models.CountryDRC, CityID: uintPtr(999)}
	assert.Error(t, r.ValidateBrokerLocation(user))
}

func TestValidateBrokerLocation_UnknownCountry(t *testing.T) {
	r := NewResolver(testStore())

	user := &models.User{Country: "KE"}
	assert.ErrorIs(t, r.ValidateBrokerLocation(user), ErrUnknownCountry)
}
