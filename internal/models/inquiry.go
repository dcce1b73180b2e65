package models

import "time"

// InquiryStatus tracks whether a buyer contact has been handled
type InquiryStatus string

const (
	InquiryStatusOpen   InquiryStatus = "open"
	InquiryStatusClosed InquiryStatus = "closed"
)

// Inquiry is a prospective buyer's contact record against a broker and,
// optionally, one of their listings.
type Inquiry struct {
	ID          string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	BrokerID    uint          `gorm:"not null;index:idx_inquiry_broker" json:"broker_id"`
	ListingID   *string       `gorm:"type:varchar(36);index" json:"listing_id,omitempty"`
	ClientName  string        `gorm:"type:varchar(100)" json:"client_name,omitempty"`
	ClientPhone string        `gorm:"type:varchar(30);index" json:"client_phone"`
	ClientEmail string        `gorm:"type:varchar(255);index" json:"client_email"`
	Details     string        `gorm:"type:text" json:"details"`
	Status      InquiryStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CreatedAt   time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Inquiry) TableName() string {
	return "inquiries"
}
