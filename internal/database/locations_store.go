package database

import (
	"marketplace-portal/internal/models"
)

// Location tree lookups backing the locations.Resolver. Unknown parent ids
// simply match nothing, which gives the permissive empty-list behavior the
// cascading selects expect.

func (gdb *GormDB) ProvincesByCountry(country string) ([]models.Province, error) {
	var provinces []models.Province
	err := gdb.db.Where("country = ?", country).Order("name ASC").Find(&provinces).Error
	return provinces, err
}

func (gdb *GormDB) DistrictsByProvince(provinceID uint) ([]models.District, error) {
	var districts []models.District
	err := gdb.db.Where("province_id = ?", provinceID).Order("name ASC").Find(&districts).Error
	return districts, err
}

func (gdb *GormDB) SectorsByDistrict(districtID uint) ([]models.Sector, error) {
	var sectors []models.Sector
	err := gdb.db.Where("district_id = ?", districtID).Order("name ASC").Find(&sectors).Error
	return sectors, err
}

func (gdb *GormDB) CitiesByProvince(provinceID uint) ([]models.City, error) {
	var cities []models.City
	err := gdb.db.Where("province_id = ?", provinceID).Order("name ASC").Find(&cities).Error
	return cities, err
}

func (gdb *GormDB) TerritoriesByProvince(provinceID uint) ([]models.Territory, error) {
	var territories []models.Territory
	err := gdb.db.Where("province_id = ?", provinceID).Order("name ASC").Find(&territories).Error
	return territories, err
}

func (gdb *GormDB) DistrictByID(id uint) (*models.District, error) {
	var district models.District
	if err := gdb.db.First(&district, id).Error; err != nil {
		return nil, err
	}
	return &district, nil
}

func (gdb *GormDB) SectorByID(id uint) (*models.Sector, error) {
	var sector models.Sector
	if err := gdb.db.First(&sector, id).Error; err != nil {
		return nil, err
	}
	return &sector, nil
}

func (gdb *GormDB) CityByID(id uint) (*models.City, error) {
	var city models.City
	if err := gdb.db.First(&city, id).Error; err != nil {
		return nil, err
	}
	return &city, nil
}

func (gdb *GormDB) TerritoryByID(id uint) (*models.Territory, error) {
	var territory models.Territory
	if err := gdb.db.First(&territory, id).Error; err != nil {
		return nil, err
	}
	return &territory, nil
}
