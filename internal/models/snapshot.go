package models

import "time"

// ListingSnapshot captures a listing's state at the time of an update, so
// price history is available to the admin dashboard.
type ListingSnapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID  string    `gorm:"type:varchar(36);not null;index:idx_listing_date" json:"listing_id"`
	SnapshotAt time.Time `gorm:"type:date;not null;index:idx_listing_date,priority:2;index:idx_snapshot_date" json:"snapshot_at"`

	// Listing state at snapshot time
	Title    string  `gorm:"type:text" json:"title,omitempty"`
	Price    float64 `gorm:"type:decimal(14,2)" json:"price"`
	Location string  `gorm:"type:varchar(255)" json:"location,omitempty"`
	Status   string  `gorm:"type:varchar(20);not null" json:"status"`

	HasChanged bool   `gorm:"type:boolean;default:false" json:"has_changed"`
	ChangeNote string `gorm:"type:text" json:"change_note,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

func (ListingSnapshot) TableName() string {
	return "listing_snapshots"
}

// ListingChange represents a detected change between snapshots
type ListingChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID       string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	SnapshotID      uint      `gorm:"type:bigint;not null" json:"snapshot_id"`
	ChangeType      string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue        string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue        string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangeMagnitude *float64  `gorm:"type:decimal(14,2)" json:"change_magnitude,omitempty"`
	DetectedAt      time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"detected_at"`
}

func (ListingChange) TableName() string {
	return "listing_changes"
}

// ChangeType constants
const (
	ChangeTypePrice    = "price_changed"
	ChangeTypeTitle    = "title_changed"
	ChangeTypeStatus   = "status_changed"
	ChangeTypeLocation = "location_changed"
	ChangeTypeNew      = "new_listing"
	ChangeTypeDeleted  = "listing_deleted"
)
