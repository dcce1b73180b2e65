package scheduler

import (
	"errors"
	"log"
	"time"

	"marketplace-portal/internal/models"
	"marketplace-portal/internal/search"

	"gorm.io/gorm"
)

// QueueWorker drains the index_queue into Meilisearch in the background, so
// listing writes never block on the search engine.
type QueueWorker struct {
	db           *gorm.DB
	search       *search.SearchClient
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
	batchSize    int
}

// NewQueueWorker creates a new queue worker
func NewQueueWorker(db *gorm.DB, searchClient *search.SearchClient) *QueueWorker {
	return &QueueWorker{
		db:           db,
		search:       searchClient,
		stopChan:     make(chan struct{}),
		pollInterval: 5 * time.Second,
		batchSize:    20,
	}
}

// Start starts the queue worker
func (w *QueueWorker) Start() {
	if w.isRunning {
		log.Println("QueueWorker: Already running")
		return
	}

	w.isRunning = true
	log.Printf("QueueWorker: Started (poll_interval=%v, batch_size=%d)", w.pollInterval, w.batchSize)

	go w.run()
}

// Stop stops the queue worker
func (w *QueueWorker) Stop() {
	if !w.isRunning {
		return
	}
	close(w.stopChan)
	w.isRunning = false
	log.Println("QueueWorker: Stopped")
}

func (w *QueueWorker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.drainOnce()
		}
	}
}

// drainOnce processes up to batchSize pending queue items
func (w *QueueWorker) drainOnce() {
	var items []models.IndexQueue
	err := w.db.Where("status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
		models.QueueStatusPending, time.Now()).
		Order("created_at ASC").
		Limit(w.batchSize).
		Find(&items).Error
	if err != nil {
		log.Printf("QueueWorker: failed to fetch queue: %v", err)
		return
	}

	for _, item := range items {
		w.processItem(&item)
	}
}

func (w *QueueWorker) processItem(item *models.IndexQueue) {
	if err := w.db.Model(item).Update("status", models.QueueStatusProcessing).Error; err != nil {
		log.Printf("QueueWorker: failed to claim item %d: %v", item.ID, err)
		return
	}

	err := w.apply(item)
	if err == nil {
		now := time.Now()
		w.db.Model(item).Updates(map[string]interface{}{
			"status":       models.QueueStatusDone,
			"completed_at": &now,
		})
		return
	}

	item.Attempts++
	if item.Attempts >= models.MaxRetryAttempts {
		log.Printf("QueueWorker: item %d (listing %s) failed permanently: %v", item.ID, item.ListingID, err)
		w.db.Model(item).Updates(map[string]interface{}{
			"status":     models.QueueStatusFailed,
			"attempts":   item.Attempts,
			"last_error": err.Error(),
		})
		return
	}

	nextRetry := time.Now().Add(models.GetNextRetryDelay(item.Attempts))
	log.Printf("QueueWorker: item %d (listing %s) failed (attempt %d), retrying at %s: %v",
		item.ID, item.ListingID, item.Attempts, nextRetry.Format(time.RFC3339), err)
	w.db.Model(item).Updates(map[string]interface{}{
		"status":        models.QueueStatusPending,
		"attempts":      item.Attempts,
		"last_error":    err.Error(),
		"next_retry_at": &nextRetry,
	})
}

// apply performs the queued search-index operation
func (w *QueueWorker) apply(item *models.IndexQueue) error {
	if item.Operation == models.QueueOpDelete {
		return w.search.RemoveListing(item.ListingID)
	}

	var listing models.Listing
	err := w.db.Where("id = ?", item.ListingID).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Listing vanished between enqueue and drain; remove from index
		return w.search.RemoveListing(item.ListingID)
	}
	if err != nil {
		return err
	}

	return w.search.IndexListing(&listing)
}

// QueueStats is a snapshot of queue depth by status
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Done       int64 `json:"done"`
	Failed     int64 `json:"failed"`
}

// GetQueueStats returns current queue statistics
func (w *QueueWorker) GetQueueStats() QueueStats {
	var stats QueueStats
	w.db.Model(&models.IndexQueue{}).Where("status = ?", models.QueueStatusPending).Count(&stats.Pending)
	w.db.Model(&models.IndexQueue{}).Where("status = ?", models.QueueStatusProcessing).Count(&stats.Processing)
	w.db.Model(&models.IndexQueue{}).Where("status = ?", models.QueueStatusDone).Count(&stats.Done)
	w.db.Model(&models.IndexQueue{}).Where("status = ?", models.QueueStatusFailed).Count(&stats.Failed)
	return stats
}
