package models

import (
	"time"
)

// IndexQueue holds listings waiting to be pushed to the search index.
// Listing writes enqueue here; the background worker drains the queue so a
// slow or unavailable search engine never blocks the request path.
type IndexQueue struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID string `gorm:"type:varchar(36);not null;index:idx_queue_listing" json:"listing_id"`
	// index or delete
	Operation   string     `gorm:"type:varchar(20);not null;default:'index'" json:"operation"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_queue_status" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index:idx_queue_retry" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (IndexQueue) TableName() string {
	return "index_queue"
}

// Queue operation constants
const (
	QueueOpIndex  = "index"
	QueueOpDelete = "delete"
)

// Queue status constants
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusDone       = "done"
	QueueStatusFailed     = "failed"
)

// MaxRetryAttempts before a queue item is marked failed for good
const MaxRetryAttempts = 5

// GetNextRetryDelay calculates backoff for queue retries
func GetNextRetryDelay(attempts int) time.Duration {
	// 30s, 2min, 10min, 30min, 1h
	delays := []time.Duration{
		30 * time.Second,
		2 * time.Minute,
		10 * time.Minute,
		30 * time.Minute,
		1 * time.Hour,
	}

	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
