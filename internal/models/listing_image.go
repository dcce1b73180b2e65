package models

import "time"

// ListingImage represents a gallery image attached to a listing. Deleting a
// listing hard-deletes its image rows in the same transaction.
type ListingImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	SizeMB    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"size_mb"`
	SortOrder int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}
