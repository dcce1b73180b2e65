package cleanup

import (
	"fmt"
	"log"
	"time"

	"marketplace-portal/internal/models"

	"gorm.io/gorm"
)

// Service physically deletes rejected listings past retention and sweeps
// orphaned image rows, logging every deletion.
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Config holds configuration for cleanup operations
type Config struct {
	RetentionDays    int  // Days a rejected listing is kept before deletion
	MaxDeletionCount int  // Maximum listings to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted
}

// DefaultConfig returns default cleanup configuration
func DefaultConfig() Config {
	return Config{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount     int       `json:"target_count"`
	DeletedCount    int       `json:"deleted_count"`
	OrphanedImages  int       `json:"orphaned_images"`
	ErrorCount      int       `json:"error_count"`
	DryRun          bool      `json:"dry_run"`
	ExecutedAt      time.Time `json:"executed_at"`
	DeletedListings []string  `json:"deleted_listings"`
	Errors          []string  `json:"errors,omitempty"`
}

// FindExpiredListings finds rejected listings older than retentionDays
func (s *Service) FindExpiredListings(retentionDays int) ([]models.Listing, error) {
	var listings []models.Listing

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("status = ? AND updated_at < ?",
		models.ListingStatusRejected,
		cutoffDate,
	).Find(&listings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find expired listings: %w", err)
	}

	log.Printf("[Cleanup] Found %d rejected listings older than %s", len(listings), cutoffDate.Format("2006-01-02"))
	return listings, nil
}

// Run executes the cleanup: expired rejected listings first, then the
// orphaned-image sweep
func (s *Service) Run(config Config) (*Result, error) {
	result := &Result{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	listings, err := s.FindExpiredListings(config.RetentionDays)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(listings)

	if len(listings) > config.MaxDeletionCount {
		log.Printf("[Cleanup] Capping deletion at %d of %d eligible listings", config.MaxDeletionCount, len(listings))
		listings = listings[:config.MaxDeletionCount]
	}

	for _, listing := range listings {
		if config.DryRun {
			log.Printf("[Cleanup] DRY RUN: would delete listing %s (%s)", listing.ID, listing.Title)
			result.DeletedListings = append(result.DeletedListings, listing.ID)
			continue
		}

		if err := s.deleteListing(&listing); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", listing.ID, err))
			continue
		}

		result.DeletedCount++
		result.DeletedListings = append(result.DeletedListings, listing.ID)
	}

	orphaned, err := s.sweepOrphanedImages(config.DryRun)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("orphan sweep: %v", err))
		result.ErrorCount++
	}
	result.OrphanedImages = orphaned

	log.Printf("[Cleanup] Done: deleted=%d orphaned_images=%d errors=%d dry_run=%v",
		result.DeletedCount, result.OrphanedImages, result.ErrorCount, config.DryRun)

	return result, nil
}

// deleteListing removes one listing and its images, gives the gallery
// storage back to the broker, writes the delete log and queues a search
// index delete
func (s *Service) deleteListing(listing *models.Listing) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var galleryMB float64
		row := tx.Model(&models.ListingImage{}).
			Where("listing_id = ?", listing.ID).
			Select("COALESCE(SUM(size_mb), 0)").Row()
		if err := row.Scan(&galleryMB); err != nil {
			return err
		}

		if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", listing.ID).Delete(&models.Listing{}).Error; err != nil {
			return err
		}
		if err := releaseBrokerStorage(tx, listing.BrokerID, galleryMB); err != nil {
			return err
		}

		deleteLog := models.DeleteLog{
			ListingID: listing.ID,
			BrokerID:  listing.BrokerID,
			Title:     listing.Title,
			DeletedAt: time.Now(),
			Reason:    models.DeleteReasonRejected,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return err
		}

		// Let the worker drop the listing's search document
		queue := models.IndexQueue{
			ListingID: listing.ID,
			Operation: models.QueueOpDelete,
			Status:    models.QueueStatusPending,
		}
		return tx.Create(&queue).Error
	})
}

// releaseBrokerStorage gives gallery storage back to its broker, floored
// at zero
func releaseBrokerStorage(tx *gorm.DB, brokerID uint, sizeMB float64) error {
	if sizeMB <= 0 {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", brokerID).
		Update("storage_used_mb", gorm.Expr("GREATEST(storage_used_mb - ?, 0)", sizeMB)).Error
}

// sweepOrphanedImages deletes image rows whose listing no longer exists.
// Their storage is credited back to the owning broker, found through the
// delete log of the vanished listing.
func (s *Service) sweepOrphanedImages(dryRun bool) (int, error) {
	var count int64
	orphanCondition := "listing_images.listing_id NOT IN (SELECT id FROM listings)"

	if err := s.db.Model(&models.ListingImage{}).Where(orphanCondition).Count(&count).Error; err != nil {
		return 0, err
	}

	if count == 0 || dryRun {
		return int(count), nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := tx.Model(&models.ListingImage{}).
			Select("delete_logs.broker_id, COALESCE(SUM(listing_images.size_mb), 0)").
			Joins("JOIN delete_logs ON delete_logs.listing_id = listing_images.listing_id").
			Where(orphanCondition).
			Group("delete_logs.broker_id").
			Rows()
		if err != nil {
			return err
		}

		type brokerUsage struct {
			brokerID uint
			sizeMB   float64
		}
		var usages []brokerUsage
		for rows.Next() {
			var u brokerUsage
			if err := rows.Scan(&u.brokerID, &u.sizeMB); err != nil {
				rows.Close()
				return err
			}
			usages = append(usages, u)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, u := range usages {
			if err := releaseBrokerStorage(tx, u.brokerID, u.sizeMB); err != nil {
				return err
			}
		}

		return tx.Where(orphanCondition).Delete(&models.ListingImage{}).Error
	})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// GetDeleteLogs retrieves recent delete log entries
func (s *Service) GetDeleteLogs(limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// GetDeleteStats returns deletion counts grouped by reason
func (s *Service) GetDeleteStats() (map[string]int64, error) {
	stats := make(map[string]int64)

	rows, err := s.db.Model(&models.DeleteLog{}).
		Select("reason, COUNT(*) as count").
		Group("reason").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var count int64
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		stats[reason] = count
	}

	return stats, rows.Err()
}
