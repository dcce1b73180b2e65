package database

import (
	"errors"
	"fmt"
	"time"

	"marketplace-portal/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sentinel errors surfaced to handlers
var (
	ErrQuotaItemsExceeded   = errors.New("listing quota exceeded")
	ErrQuotaStorageExceeded = errors.New("storage quota exceeded")
)

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Province{},
		&models.District{},
		&models.Sector{},
		&models.City{},
		&models.Territory{},
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Inquiry{},
		&models.ListingSnapshot{},
		&models.ListingChange{},
		&models.IndexQueue{},
		&models.DeleteLog{},
	)
}

// reserveStorage moves a broker's storage counter by deltaMB inside tx.
// The guard runs as a single conditional UPDATE so concurrent uploads can
// never read-then-write past the quota.
func reserveStorage(tx *gorm.DB, brokerID uint, deltaMB float64) error {
	if deltaMB <= 0 {
		return nil
	}
	result := tx.Model(&models.User{}).
		Where("id = ? AND storage_used_mb + ? <= quota_storage_mb", brokerID, deltaMB).
		Update("storage_used_mb", gorm.Expr("storage_used_mb + ?", deltaMB))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuotaStorageExceeded
	}
	return nil
}

// releaseStorage gives storage back on deletion, floored at zero
func releaseStorage(tx *gorm.DB, brokerID uint, deltaMB float64) error {
	if deltaMB <= 0 {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", brokerID).
		Update("storage_used_mb", gorm.Expr("GREATEST(storage_used_mb - ?, 0)", deltaMB)).Error
}

// enqueueIndex records a pending search-index operation for a listing.
// Runs inside the listing write transaction so the queue never misses a
// committed write.
func enqueueIndex(tx *gorm.DB, listingID, operation string) error {
	queue := models.IndexQueue{
		ListingID: listingID,
		Operation: operation,
		Status:    models.QueueStatusPending,
	}
	return tx.Create(&queue).Error
}
