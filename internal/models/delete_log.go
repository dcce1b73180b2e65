package models

import "time"

// DeleteLog records listings that were physically deleted, either through
// the API or by the retention cleanup job.
type DeleteLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	BrokerID  uint      `gorm:"not null" json:"broker_id"`
	Title     string    `gorm:"type:text" json:"title"`
	DeletedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"deleted_at"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
}

func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonOwner       = "owner_deletion"
	DeleteReasonAdmin       = "admin_deletion"
	DeleteReasonRejected    = "rejected_expired"
	DeleteReasonOrphanImage = "orphan_image_sweep"
)
