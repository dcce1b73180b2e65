package snapshot

import (
	"errors"
	"fmt"
	"log"
	"time"

	"marketplace-portal/internal/models"

	"gorm.io/gorm"
)

// Service handles listing snapshot operations
type Service struct {
	db *gorm.DB
}

// NewService creates a new snapshot service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateSnapshot records a listing's current state, one snapshot per day.
// The returned snapshot carries its database ID so change records can
// reference it.
func (s *Service) CreateSnapshot(listing *models.Listing, hasChanged bool) (*models.ListingSnapshot, error) {
	snapshot := &models.ListingSnapshot{
		ListingID:  listing.ID,
		SnapshotAt: time.Now().Truncate(24 * time.Hour),
		Title:      listing.Title,
		Price:      listing.Price,
		Location:   listing.Location,
		Status:     string(listing.Status),
		HasChanged: hasChanged,
	}

	// Check if snapshot already exists for today
	var existing models.ListingSnapshot
	result := s.db.Where("listing_id = ? AND snapshot_at = ?", listing.ID, snapshot.SnapshotAt).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := s.db.Create(snapshot).Error; err != nil {
			return nil, err
		}
		return snapshot, nil
	} else if result.Error != nil {
		return nil, result.Error
	}

	// Update existing snapshot
	snapshot.ID = existing.ID
	if err := s.db.Save(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// DetectChanges compares a listing's current state against its most recent
// snapshot and returns the detected change records
func (s *Service) DetectChanges(listing *models.Listing) ([]models.ListingChange, error) {
	var lastSnapshot models.ListingSnapshot
	today := time.Now().Truncate(24 * time.Hour)

	result := s.db.Where("listing_id = ? AND snapshot_at < ?", listing.ID, today).
		Order("snapshot_at DESC").
		First(&lastSnapshot)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// No previous snapshot, this is a new listing
		return []models.ListingChange{{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeNew,
			NewValue:   "New listing",
			DetectedAt: time.Now(),
		}}, nil
	} else if result.Error != nil {
		return nil, result.Error
	}

	changes := []models.ListingChange{}

	// Price change
	if listing.Price != lastSnapshot.Price {
		magnitude := listing.Price - lastSnapshot.Price
		changes = append(changes, models.ListingChange{
			ListingID:       listing.ID,
			ChangeType:      models.ChangeTypePrice,
			OldValue:        fmt.Sprintf("%.2f", lastSnapshot.Price),
			NewValue:        fmt.Sprintf("%.2f", listing.Price),
			ChangeMagnitude: &magnitude,
			DetectedAt:      time.Now(),
		})
	}

	// Title change
	if listing.Title != lastSnapshot.Title {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeTitle,
			OldValue:   lastSnapshot.Title,
			NewValue:   listing.Title,
			DetectedAt: time.Now(),
		})
	}

	// Status change
	if string(listing.Status) != lastSnapshot.Status {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeStatus,
			OldValue:   lastSnapshot.Status,
			NewValue:   string(listing.Status),
			DetectedAt: time.Now(),
		})
	}

	// Location change
	if listing.Location != lastSnapshot.Location {
		changes = append(changes, models.ListingChange{
			ListingID:  listing.ID,
			ChangeType: models.ChangeTypeLocation,
			OldValue:   lastSnapshot.Location,
			NewValue:   listing.Location,
			DetectedAt: time.Now(),
		})
	}

	return changes, nil
}

// RecordUpdate snapshots a listing and persists any detected changes.
// Called on the listing update path; failures are logged, not fatal.
func (s *Service) RecordUpdate(listing *models.Listing) {
	changes, err := s.DetectChanges(listing)
	if err != nil {
		log.Printf("[Snapshot] change detection failed for %s: %v", listing.ID, err)
		return
	}

	snapshot, err := s.CreateSnapshot(listing, len(changes) > 0)
	if err != nil {
		log.Printf("[Snapshot] snapshot failed for %s: %v", listing.ID, err)
		return
	}

	if len(changes) == 0 {
		return
	}

	if err := s.SaveChanges(changes, snapshot.ID); err != nil {
		log.Printf("[Snapshot] saving changes failed for %s: %v", listing.ID, err)
		return
	}
	log.Printf("[Snapshot] listing %s: %d change(s) recorded", listing.ID, len(changes))
}

// SaveChanges persists detected change records, linking each to the
// snapshot they were detected against
func (s *Service) SaveChanges(changes []models.ListingChange, snapshotID uint) error {
	if len(changes) == 0 {
		return nil
	}
	for i := range changes {
		changes[i].SnapshotID = snapshotID
	}
	return s.db.Create(&changes).Error
}

// GetListingHistory retrieves snapshot history for a listing
func (s *Service) GetListingHistory(listingID string, limit int) ([]models.ListingSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	var snapshots []models.ListingSnapshot
	err := s.db.Where("listing_id = ?", listingID).
		Order("snapshot_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}

// GetRecentChanges retrieves the most recently detected changes
func (s *Service) GetRecentChanges(limit int) ([]models.ListingChange, error) {
	if limit <= 0 {
		limit = 50
	}

	var changes []models.ListingChange
	err := s.db.Order("detected_at DESC").
		Limit(limit).
		Find(&changes).Error
	return changes, err
}
