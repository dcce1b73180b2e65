package models

// Country codes for the supported administrative hierarchies
const (
	CountryRW  = "RW"
	CountryDRC = "DRC"
)

// CountryName maps a country code to its display name used in composed
// location labels
func CountryName(code string) string {
	switch code {
	case CountryRW:
		return "Rwanda"
	case CountryDRC:
		return "DR Congo"
	}
	return code
}

// Province is the top level of both the Rwanda and DRC hierarchies
type Province struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_province_name,priority:2" json:"name"`
	Country string `gorm:"type:varchar(10);not null;index;uniqueIndex:idx_province_name,priority:1" json:"country"`
}

func (Province) TableName() string {
	return "provinces"
}

// District is a Rwanda subdivision of a province
type District struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_district_name,priority:2" json:"name"`
	ProvinceID uint   `gorm:"not null;index;uniqueIndex:idx_district_name,priority:1" json:"province_id"`
}

func (District) TableName() string {
	return "districts"
}

// Sector is a Rwanda subdivision of a district
type Sector struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_sector_name,priority:2" json:"name"`
	DistrictID uint   `gorm:"not null;index;uniqueIndex:idx_sector_name,priority:1" json:"district_id"`
}

func (Sector) TableName() string {
	return "sectors"
}

// City is a DRC subdivision of a province. Cities and territories are
// siblings under the province, neither nests further.
type City struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_city_name,priority:2" json:"name"`
	ProvinceID uint   `gorm:"not null;index;uniqueIndex:idx_city_name,priority:1" json:"province_id"`
}

func (City) TableName() string {
	return "cities"
}

// Territory is a DRC subdivision of a province
type Territory struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_territory_name,priority:2" json:"name"`
	ProvinceID uint   `gorm:"not null;index;uniqueIndex:idx_territory_name,priority:1" json:"province_id"`
}

func (Territory) TableName() string {
	return "territories"
}
