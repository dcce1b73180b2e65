package database

import (
	"marketplace-portal/internal/models"

	"gorm.io/gorm"
)

// GetUserByID retrieves a user by id
func (gdb *GormDB) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := gdb.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser stores a new account. Brokers start with status pending and the
// configured default quotas.
func (gdb *GormDB) CreateUser(user *models.User) error {
	if user.Role == models.RoleBroker && user.BrokerStatus == nil {
		pending := models.BrokerStatusPending
		user.BrokerStatus = &pending
	}
	return gdb.db.Create(user).Error
}

// ListBrokers returns broker accounts, optionally filtered by approval status
func (gdb *GormDB) ListBrokers(status models.BrokerStatus) ([]models.User, error) {
	q := gdb.db.Where("role = ?", models.RoleBroker)
	if status != "" {
		q = q.Where("broker_status = ?", status)
	}

	var brokers []models.User
	err := q.Order("created_at DESC").Find(&brokers).Error
	return brokers, err
}

// UpdateBrokerStatus transitions a broker's approval status
func (gdb *GormDB) UpdateBrokerStatus(id uint, status models.BrokerStatus) error {
	result := gdb.db.Model(&models.User{}).
		Where("id = ? AND role = ?", id, models.RoleBroker).
		Update("broker_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCategories returns all listing categories
func (gdb *GormDB) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := gdb.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryByID retrieves a category by id
func (gdb *GormDB) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := gdb.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
