package locations

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"marketplace-portal/internal/models"

	"gorm.io/gorm"
)

// RwandaSeed is the bootstrap file format for the Rwanda tree:
// {"provinces": [{"name": ..., "districts": [{"name": ..., "sectors": [...]}]}]}
type RwandaSeed struct {
	Provinces []RwandaProvinceSeed `json:"provinces"`
}

type RwandaProvinceSeed struct {
	Name      string             `json:"name"`
	Districts []RwandaDistrictSeed `json:"districts"`
}

type RwandaDistrictSeed struct {
	Name    string   `json:"name"`
	Sectors []string `json:"sectors"`
}

// DRCSeed is the analogous format for DRC: cities and territories sit as
// siblings directly under the province.
type DRCSeed struct {
	Provinces []DRCProvinceSeed `json:"provinces"`
}

type DRCProvinceSeed struct {
	Name        string   `json:"name"`
	Cities      []string `json:"cities"`
	Territories []string `json:"territories"`
}

// Seeder imports location seed files into the database. Imports are
// idempotent: rows are matched by (parent, name), so re-running a seed file
// never duplicates units.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder over the given database
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedRwandaFile loads and applies a Rwanda seed file
func (s *Seeder) SeedRwandaFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed RwandaSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	return s.SeedRwanda(&seed)
}

// SeedRwanda applies a Rwanda seed in a single transaction
func (s *Seeder) SeedRwanda(seed *RwandaSeed) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range seed.Provinces {
			province := models.Province{Name: p.Name, Country: models.CountryRW}
			if err := tx.Where("country = ? AND name = ?", models.CountryRW, p.Name).
				FirstOrCreate(&province).Error; err != nil {
				return fmt.Errorf("province %q: %w", p.Name, err)
			}

			for _, d := range p.Districts {
				district := models.District{Name: d.Name, ProvinceID: province.ID}
				if err := tx.Where("province_id = ? AND name = ?", province.ID, d.Name).
					FirstOrCreate(&district).Error; err != nil {
					return fmt.Errorf("district %q: %w", d.Name, err)
				}

				for _, sectorName := range d.Sectors {
					sector := models.Sector{Name: sectorName, DistrictID: district.ID}
					if err := tx.Where("district_id = ? AND name = ?", district.ID, sectorName).
						FirstOrCreate(&sector).Error; err != nil {
						return fmt.Errorf("sector %q: %w", sectorName, err)
					}
				}
			}
			log.Printf("[Seed] RW province %q: %d districts", p.Name, len(p.Districts))
		}
		return nil
	})
}

// SeedDRCFile loads and applies a DRC seed file
func (s *Seeder) SeedDRCFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed DRCSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	return s.SeedDRC(&seed)
}

// SeedDRC applies a DRC seed in a single transaction
func (s *Seeder) SeedDRC(seed *DRCSeed) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range seed.Provinces {
			province := models.Province{Name: p.Name, Country: models.CountryDRC}
			if err := tx.Where("country = ? AND name = ?", models.CountryDRC, p.Name).
				FirstOrCreate(&province).Error; err != nil {
				return fmt.Errorf("province %q: %w", p.Name, err)
			}

			for _, cityName := range p.Cities {
				city := models.City{Name: cityName, ProvinceID: province.ID}
				if err := tx.Where("province_id = ? AND name = ?", province.ID, cityName).
					FirstOrCreate(&city).Error; err != nil {
					return fmt.Errorf("city %q: %w", cityName, err)
				}
			}

			for _, territoryName := range p.Territories {
				territory := models.Territory{Name: territoryName, ProvinceID: province.ID}
				if err := tx.Where("province_id = ? AND name = ?", province.ID, territoryName).
					FirstOrCreate(&territory).Error; err != nil {
					return fmt.Errorf("territory %q: %w", territoryName, err)
				}
			}
			log.Printf("[Seed] DRC province %q: %d cities, %d territories",
				p.Name, len(p.Cities), len(p.Territories))
		}
		return nil
	})
}
