package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TransactionType qualifies a listing's commercial intent
type TransactionType string

const (
	TransactionSell TransactionType = "sell"
	TransactionRent TransactionType = "rent"
)

// ListingStatus gates public visibility
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
	ListingStatusRejected ListingStatus = "rejected"
)

// AttributeBag holds the category-specific key/value details of a listing,
// persisted as a JSON column
type AttributeBag map[string]string

// Value implements driver.Valuer
func (b AttributeBag) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (b *AttributeBag) Scan(value interface{}) error {
	if value == nil {
		*b = AttributeBag{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("attribute bag: unsupported column type %T", value)
	}
	if len(data) == 0 {
		*b = AttributeBag{}
		return nil
	}
	return json.Unmarshal(data, b)
}

// Listing is the aggregate a broker publishes: core fields plus the
// category-dependent attribute bag and its image set.
type Listing struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	BrokerID   uint            `gorm:"not null;index" json:"broker_id"`
	CategoryID uint            `gorm:"not null;index" json:"category_id"`
	// Denormalized normalized category key, kept for search filtering
	CategoryKey string          `gorm:"type:varchar(30);not null;index" json:"category_key"`
	Type        TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Title       string          `gorm:"type:text;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       float64         `gorm:"type:decimal(14,2);not null" json:"price"`

	// Composed display label plus the structured columns it was built from
	Location         string `gorm:"type:varchar(255);index" json:"location"`
	LocationProvince string `gorm:"type:varchar(100)" json:"location_province,omitempty"`
	LocationDistrict string `gorm:"type:varchar(100)" json:"location_district,omitempty"`
	LocationSector   string `gorm:"type:varchar(100)" json:"location_sector,omitempty"`

	Attributes AttributeBag `gorm:"type:json" json:"attributes"`

	PrimaryImageURL string        `gorm:"type:text" json:"primary_image_url,omitempty"`
	Status          ListingStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_listing_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// IsPubliclyVisible reports whether the listing shows up in public browsing
func (l *Listing) IsPubliclyVisible() bool {
	return l.Status == ListingStatusActive
}
