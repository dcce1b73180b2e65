package database

import (
	"fmt"
	"time"

	"marketplace-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingFilters are the optional, conjunctive filters for listing queries
type ListingFilters struct {
	CategoryID  *uint
	CategoryKey string
	Type        string
	MinPrice    *float64
	MaxPrice    *float64
	// Substring match against the composed location label, not a geo query
	Location string
	BrokerID *uint
	Status   string
	SortBy   string
	Limit    int
	Offset   int
}

// PaginatedListings is a page of listing results
type PaginatedListings struct {
	Items  []models.Listing `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func applyListingFilters(q *gorm.DB, filters ListingFilters) *gorm.DB {
	if filters.CategoryID != nil {
		q = q.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.CategoryKey != "" {
		q = q.Where("category_key = ?", filters.CategoryKey)
	}
	if filters.Type != "" {
		q = q.Where("type = ?", filters.Type)
	}
	if filters.MinPrice != nil {
		q = q.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		q = q.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.Location != "" {
		q = q.Where("location LIKE ?", "%"+filters.Location+"%")
	}
	if filters.BrokerID != nil {
		q = q.Where("broker_id = ?", *filters.BrokerID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	return q
}

// GetListingsWithFilters returns a page of listings matching all the given
// filters (AND semantics)
func (gdb *GormDB) GetListingsWithFilters(filters ListingFilters) (*PaginatedListings, error) {
	q := applyListingFilters(gdb.db.Model(&models.Listing{}), filters)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var orderClause string
	switch filters.SortBy {
	case "price_asc":
		orderClause = "price ASC"
	case "price_desc":
		orderClause = "price DESC"
	case "oldest":
		orderClause = "created_at ASC"
	default:
		orderClause = "created_at DESC"
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}

	var listings []models.Listing
	err := q.Order(orderClause).Limit(limit).Offset(filters.Offset).Find(&listings).Error
	if err != nil {
		return nil, err
	}

	return &PaginatedListings{
		Items:  listings,
		Total:  total,
		Limit:  limit,
		Offset: filters.Offset,
	}, nil
}

// GetListingByID retrieves a listing by id
func (gdb *GormDB) GetListingByID(id string) (*models.Listing, error) {
	var listing models.Listing
	if err := gdb.db.Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListingImages returns a listing's gallery ordered by sort_order
func (gdb *GormDB) GetListingImages(listingID string) ([]models.ListingImage, error) {
	var images []models.ListingImage
	err := gdb.db.Where("listing_id = ?", listingID).Order("sort_order ASC").Find(&images).Error
	return images, err
}

// CountBrokerListings counts a broker's listings
func (gdb *GormDB) CountBrokerListings(brokerID uint) (int64, error) {
	var count int64
	err := gdb.db.Model(&models.Listing{}).Where("broker_id = ?", brokerID).Count(&count).Error
	return count, err
}

// CreateListingWithImages persists a new listing, its gallery, the storage
// reservation, and the index-queue entry in one transaction. The item-count
// check runs inside the same transaction; the storage guard is a conditional
// UPDATE, so neither quota can be blown by a concurrent create.
func (gdb *GormDB) CreateListingWithImages(listing *models.Listing, images []models.ListingImage) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.Status == "" {
		listing.Status = models.ListingStatusActive
	}

	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var broker models.User
		if err := tx.First(&broker, listing.BrokerID).Error; err != nil {
			return fmt.Errorf("broker %d: %w", listing.BrokerID, err)
		}

		var count int64
		if err := tx.Model(&models.Listing{}).Where("broker_id = ?", listing.BrokerID).Count(&count).Error; err != nil {
			return err
		}
		if broker.QuotaItems > 0 && count >= int64(broker.QuotaItems) {
			return ErrQuotaItemsExceeded
		}

		var totalMB float64
		for _, img := range images {
			totalMB += img.SizeMB
		}
		if err := reserveStorage(tx, listing.BrokerID, totalMB); err != nil {
			return err
		}

		if err := tx.Create(listing).Error; err != nil {
			return err
		}

		for i := range images {
			images[i].ListingID = listing.ID
			images[i].SortOrder = i
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}

		return enqueueIndex(tx, listing.ID, models.QueueOpIndex)
	})
}

// UpdateListing saves a modified listing and queues it for reindexing
func (gdb *GormDB) UpdateListing(listing *models.Listing) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(listing).Error; err != nil {
			return err
		}
		return enqueueIndex(tx, listing.ID, models.QueueOpIndex)
	})
}

// AddListingImages appends gallery images to an existing listing, reserving
// the storage they take
func (gdb *GormDB) AddListingImages(listing *models.Listing, images []models.ListingImage) error {
	if len(images) == 0 {
		return nil
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		row := tx.Model(&models.ListingImage{}).
			Where("listing_id = ?", listing.ID).
			Select("COALESCE(MAX(sort_order), -1)").Row()
		if err := row.Scan(&maxOrder); err != nil {
			return err
		}

		var totalMB float64
		for _, img := range images {
			totalMB += img.SizeMB
		}
		if err := reserveStorage(tx, listing.BrokerID, totalMB); err != nil {
			return err
		}

		for i := range images {
			images[i].ListingID = listing.ID
			images[i].SortOrder = maxOrder + 1 + i
		}
		return tx.Create(&images).Error
	})
}

// DeleteListing hard-deletes a listing and cascades to its image rows.
// Storage held by the gallery is released, the deletion is logged, and a
// delete operation is queued for the search index.
func (gdb *GormDB) DeleteListing(id, reason string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("id = ?", id).First(&listing).Error; err != nil {
			return err
		}

		var totalMB float64
		row := tx.Model(&models.ListingImage{}).
			Where("listing_id = ?", id).
			Select("COALESCE(SUM(size_mb), 0)").Row()
		if err := row.Scan(&totalMB); err != nil {
			return err
		}

		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Listing{}).Error; err != nil {
			return err
		}

		if err := releaseStorage(tx, listing.BrokerID, totalMB); err != nil {
			return err
		}

		deleteLog := models.DeleteLog{
			ListingID: listing.ID,
			BrokerID:  listing.BrokerID,
			Title:     listing.Title,
			DeletedAt: time.Now(),
			Reason:    reason,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return err
		}

		return enqueueIndex(tx, listing.ID, models.QueueOpDelete)
	})
}

// GetAllListings retrieves every listing, newest first
func (gdb *GormDB) GetAllListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// GetActiveListings retrieves publicly visible listings
func (gdb *GormDB) GetActiveListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.Where("status = ?", models.ListingStatusActive).Order("created_at DESC").Find(&listings).Error
	return listings, err
}
