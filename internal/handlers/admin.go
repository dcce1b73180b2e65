package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"marketplace-portal/internal/cleanup"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/locations"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/scheduler"
	"marketplace-portal/internal/snapshot"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db              *database.GormDB
	scheduler       *scheduler.Scheduler
	worker          *scheduler.QueueWorker
	snapshotService *snapshot.Service
	cleanupService  *cleanup.Service
	resolver        *locations.Resolver
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.GormDB, sched *scheduler.Scheduler, worker *scheduler.QueueWorker) *AdminHandler {
	return &AdminHandler{
		db:              db,
		scheduler:       sched,
		worker:          worker,
		snapshotService: snapshot.NewService(db.DB()),
		cleanupService:  cleanup.NewService(db.DB()),
		resolver:        locations.NewResolver(db),
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})
	gdb := h.db.DB()

	// Listing counts by status
	var activeCount, inactiveCount, rejectedCount int64
	gdb.Model(&models.Listing{}).Where("status = ?", models.ListingStatusActive).Count(&activeCount)
	gdb.Model(&models.Listing{}).Where("status = ?", models.ListingStatusInactive).Count(&inactiveCount)
	gdb.Model(&models.Listing{}).Where("status = ?", models.ListingStatusRejected).Count(&rejectedCount)

	stats["listings"] = map[string]interface{}{
		"active":   activeCount,
		"inactive": inactiveCount,
		"rejected": rejectedCount,
		"total":    activeCount + inactiveCount + rejectedCount,
	}

	// Broker counts by approval state
	var pendingBrokers, approvedBrokers, rejectedBrokers int64
	gdb.Model(&models.User{}).Where("role = ? AND broker_status = ?", models.RoleBroker, models.BrokerStatusPending).Count(&pendingBrokers)
	gdb.Model(&models.User{}).Where("role = ? AND broker_status = ?", models.RoleBroker, models.BrokerStatusApproved).Count(&approvedBrokers)
	gdb.Model(&models.User{}).Where("role = ? AND broker_status = ?", models.RoleBroker, models.BrokerStatusRejected).Count(&rejectedBrokers)

	stats["brokers"] = map[string]interface{}{
		"pending":  pendingBrokers,
		"approved": approvedBrokers,
		"rejected": rejectedBrokers,
	}

	// Inquiry workload
	var openInquiries, closedInquiries int64
	gdb.Model(&models.Inquiry{}).Where("status = ?", models.InquiryStatusOpen).Count(&openInquiries)
	gdb.Model(&models.Inquiry{}).Where("status = ?", models.InquiryStatusClosed).Count(&closedInquiries)

	stats["inquiries"] = map[string]interface{}{
		"open":   openInquiries,
		"closed": closedInquiries,
	}

	// Recent publishing activity (last 24 hours)
	last24h := time.Now().AddDate(0, 0, -1)
	var recentlyCreated int64
	gdb.Model(&models.Listing{}).Where("created_at >= ?", last24h).Count(&recentlyCreated)
	stats["recent_activity"] = map[string]interface{}{
		"created_last_24h": recentlyCreated,
	}

	// Snapshot statistics
	var snapshotCount int64
	gdb.Model(&models.ListingSnapshot{}).Count(&snapshotCount)
	stats["snapshots"] = map[string]interface{}{
		"total": snapshotCount,
	}

	// Listing changes (last 7 days)
	last7days := time.Now().AddDate(0, 0, -7)
	var recentChanges int64
	gdb.Model(&models.ListingChange{}).Where("detected_at >= ?", last7days).Count(&recentChanges)
	stats["changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	// Delete logs statistics
	deleteStats, err := h.cleanupService.GetDeleteStats()
	if err != nil {
		log.Printf("Failed to get delete stats: %v", err)
	} else {
		stats["deletions"] = deleteStats
	}

	// Index queue health
	if h.worker != nil {
		stats["index_queue"] = h.worker.GetQueueStats()
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentActivity returns recently published or updated listings
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	var listings []models.Listing
	err := h.db.DB().Order("updated_at DESC").Limit(limit).Find(&listings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// ListBrokers returns broker accounts, optionally filtered by approval state
func (h *AdminHandler) ListBrokers(c *gin.Context) {
	status := models.BrokerStatus(c.Query("status"))

	brokers, err := h.db.ListBrokers(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brokers": brokers,
		"count":   len(brokers),
	})
}

// createBrokerRequest is the body for POST /api/admin/brokers. Password
// handling happens in the external auth layer; only the profile columns
// are set here.
type createBrokerRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Country        string  `json:"country"`
	BrokerProvince *uint   `json:"broker_province"`
	BrokerDistrict *uint   `json:"broker_district"`
	BrokerSector   *uint   `json:"broker_sector"`
	CityID         *uint   `json:"city_id"`
	TerritoryID    *uint   `json:"territory_id"`
	QuotaItems     int     `json:"quota_items"`
	QuotaStorageMB float64 `json:"quota_storage_mb"`
}

// CreateBroker registers a broker profile in pending state. The home
// location must resolve under the right country tree before the row is
// written.
func (h *AdminHandler) CreateBroker(c *gin.Context) {
	var req createBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	user := &models.User{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           models.RoleBroker,
		Country:        req.Country,
		BrokerProvince: req.BrokerProvince,
		BrokerDistrict: req.BrokerDistrict,
		BrokerSector:   req.BrokerSector,
		CityID:         req.CityID,
		TerritoryID:    req.TerritoryID,
	}
	if req.QuotaItems > 0 {
		user.QuotaItems = req.QuotaItems
	}
	if req.QuotaStorageMB > 0 {
		user.QuotaStorageMB = req.QuotaStorageMB
	}

	if err := h.resolver.ValidateBrokerLocation(user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": []string{"location"}})
		return
	}

	if err := h.db.CreateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: broker %d (%s) created in %s state", user.ID, user.Email, models.BrokerStatusPending)
	c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) setBrokerStatus(c *gin.Context, status models.BrokerStatus) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid broker id"})
		return
	}

	if err := h.db.UpdateBrokerStatus(uint(id), status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Broker not found"})
		return
	}

	log.Printf("Admin: broker %d marked %s", id, status)
	c.JSON(http.StatusOK, gin.H{"broker_id": id, "status": status})
}

// ApproveBroker handles POST /api/admin/brokers/:id/approve
func (h *AdminHandler) ApproveBroker(c *gin.Context) {
	h.setBrokerStatus(c, models.BrokerStatusApproved)
}

// RejectBroker handles POST /api/admin/brokers/:id/reject
func (h *AdminHandler) RejectBroker(c *gin.Context) {
	h.setBrokerStatus(c, models.BrokerStatusRejected)
}

// TriggerMaintenance manually triggers the nightly reindex and cleanup pass
func (h *AdminHandler) TriggerMaintenance(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available (MySQL/GORM required)",
		})
		return
	}

	log.Println("Admin: Manual maintenance trigger requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("Admin: Manual maintenance failed: %v", err)
		} else {
			log.Println("Admin: Manual maintenance completed successfully")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Maintenance job started",
		"status":  "running",
	})
}

// RunCleanup executes physical deletion of old rejected listings
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`     // Days to keep (default: 90)
		MaxDeletionCount int  `json:"max_deletion_count"` // Safety limit (default: 10000)
		DryRun           bool `json:"dry_run"`            // Dry run mode
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Set defaults
	config := cleanup.DefaultConfig()
	if req.RetentionDays > 0 {
		config.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	config.DryRun = req.DryRun

	log.Printf("Admin: Running cleanup (retention: %d days, max: %d, dry-run: %v)",
		config.RetentionDays, config.MaxDeletionCount, config.DryRun)

	result, err := h.cleanupService.Run(config)
	if err != nil {
		log.Printf("Admin: Cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: Cleanup completed: %d/%d deleted (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.DryRun)

	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.cleanupService.GetDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetListingHistory returns snapshot history for a listing
func (h *AdminHandler) GetListingHistory(c *gin.Context) {
	listingID := c.Param("id")
	limitStr := c.DefaultQuery("limit", "30")
	limit, _ := strconv.Atoi(limitStr)

	snapshots, err := h.snapshotService.GetListingHistory(listingID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_id": listingID,
		"snapshots":  snapshots,
		"count":      len(snapshots),
	})
}

// GetRecentChanges returns recently detected listing changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.snapshotService.GetRecentChanges(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// GetAreaStats returns active listing counts per province
func (h *AdminHandler) GetAreaStats(c *gin.Context) {
	type AreaStat struct {
		Province string `json:"province"`
		Count    int64  `json:"count"`
	}

	var stats []AreaStat
	err := h.db.DB().Model(&models.Listing{}).
		Select("location_province as province, count(*) as count").
		Where("status = ? AND location_province IS NOT NULL AND location_province != ''", models.ListingStatusActive).
		Group("location_province").
		Order("count DESC").
		Limit(20).
		Scan(&stats).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"area_stats": stats,
		"count":      len(stats),
	})
}

// GetPriceDistribution returns active listing counts per price band
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	type PriceRange struct {
		RangeLabel string  `json:"range_label"`
		MinPrice   float64 `json:"min_price"`
		MaxPrice   float64 `json:"max_price"`
		Count      int64   `json:"count"`
	}

	// Bands in Rwandan francs
	ranges := []PriceRange{
		{RangeLabel: "under 100k", MinPrice: 0, MaxPrice: 100_000},
		{RangeLabel: "100k-500k", MinPrice: 100_000, MaxPrice: 500_000},
		{RangeLabel: "500k-1M", MinPrice: 500_000, MaxPrice: 1_000_000},
		{RangeLabel: "1M-10M", MinPrice: 1_000_000, MaxPrice: 10_000_000},
		{RangeLabel: "10M-50M", MinPrice: 10_000_000, MaxPrice: 50_000_000},
		{RangeLabel: "over 50M", MinPrice: 50_000_000, MaxPrice: 100_000_000_000},
	}

	txType := c.DefaultQuery("type", string(models.TransactionSell))

	for i := range ranges {
		var count int64
		h.db.DB().Model(&models.Listing{}).
			Where("status = ? AND type = ? AND price >= ? AND price < ?",
				models.ListingStatusActive, txType, ranges[i].MinPrice, ranges[i].MaxPrice).
			Count(&count)
		ranges[i].Count = count
	}

	c.JSON(http.StatusOK, gin.H{
		"type":               txType,
		"price_distribution": ranges,
	})
}
