package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"marketplace-portal/internal/ai"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/handlers"
	"marketplace-portal/internal/locations"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/ratelimit"
	"marketplace-portal/internal/scheduler"
	"marketplace-portal/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	db           *database.DB
	gormDB       *database.GormDB
	searchClient *search.SearchClient
	appConfig    *config.Config
	rateLimiter  *ratelimit.RateLimiter
	appScheduler *scheduler.Scheduler
	queueWorker  *scheduler.QueueWorker
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/portal_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "mysql" {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "portal_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "portal_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "portal_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		// Initialize schema with GORM AutoMigrate
		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "portal_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "portal_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "portal_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema
		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize rate limiter
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	// Initialize and start scheduler and index queue worker (MySQL only)
	if gormDB != nil {
		appScheduler = scheduler.NewScheduler(gormDB.DB(), searchClient, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()

		queueWorker = scheduler.NewQueueWorker(gormDB.DB(), searchClient)
		queueWorker.Start()
		defer queueWorker.Stop()
		log.Println("Index queue worker started")
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	corsOrigins := appConfig.Server.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:5176"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Broker-ID", "X-Role"},
		AllowCredentials: true,
	}))

	// Routes
	r.GET("/health", healthCheck)

	if gormDB != nil {
		locationHandler := handlers.NewLocationHandler(locations.NewResolver(gormDB))
		r.GET("/api/provinces", locationHandler.GetProvinces)
		r.GET("/api/provinces/:id/children", locationHandler.GetProvinceChildren)
		r.GET("/api/districts", locationHandler.GetDistricts)
		r.GET("/api/sectors", locationHandler.GetSectors)
		r.GET("/api/cities", locationHandler.GetCities)
		r.GET("/api/territories", locationHandler.GetTerritories)

		listingHandler := handlers.NewListingHandler(gormDB, appConfig)
		r.GET("/api/categories", listingHandler.GetCategories)
		r.GET("/api/listings", listingHandler.List)
		r.GET("/api/listings/:id", listingHandler.Get)
		r.POST("/api/listings", rateLimitMiddleware(), listingHandler.Create)
		r.PUT("/api/listings/:id", listingHandler.Update)
		r.DELETE("/api/listings/:id", listingHandler.Delete)

		inquiryHandler := handlers.NewInquiryHandler(gormDB)
		r.POST("/api/inquiries", rateLimitMiddleware(), inquiryHandler.Submit)
		r.GET("/api/inquiries", inquiryHandler.List)
		r.POST("/api/inquiries/:id/close", inquiryHandler.Close)

		aiClient := ai.NewClient(
			getEnvOrConfig(appConfig.AI.BaseURL, "AI_SERVICE_URL", ""),
			getEnvOrConfig(appConfig.AI.APIKey, "AI_SERVICE_KEY", ""),
			appConfig.AI.GetTimeout(),
		)
		aiHandler := handlers.NewAIHandler(aiClient)
		r.POST("/api/ai/generate-description", rateLimitMiddleware(), aiHandler.GenerateDescription)
	} else {
		// Legacy fallback serves the public read path only
		r.GET("/api/listings", getListingsLegacy)
		r.GET("/api/listings/:id", getListingLegacy)
	}

	// Rate limiter stats endpoint
	r.GET("/api/ratelimit/stats", handlers.RequireAdmin(), getRateLimitStats)

	// Queue worker stats endpoint
	r.GET("/api/queue/stats", handlers.RequireAdmin(), getQueueStats)

	r.GET("/api/search", searchListings)
	r.POST("/api/search/advanced", advancedSearchListings)
	r.GET("/api/search/facets", getSearchFacets)
	r.POST("/api/search/reindex", handlers.RequireAdmin(), reindexAllListings)
	r.GET("/api/filter", filterListings)

	// Admin API routes
	if gormDB != nil {
		adminHandler := handlers.NewAdminHandler(gormDB, appScheduler, queueWorker)
		adminInquiries := handlers.NewInquiryHandler(gormDB)

		admin := r.Group("/api/admin", handlers.RequireAdmin())
		{
			// Statistics
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/activity", adminHandler.GetRecentActivity)
			admin.GET("/area-stats", adminHandler.GetAreaStats)
			admin.GET("/price-distribution", adminHandler.GetPriceDistribution)

			// Broker moderation
			admin.GET("/brokers", adminHandler.ListBrokers)
			admin.POST("/brokers", adminHandler.CreateBroker)
			admin.POST("/brokers/:id/approve", adminHandler.ApproveBroker)
			admin.POST("/brokers/:id/reject", adminHandler.RejectBroker)

			// Inquiry oversight
			admin.GET("/inquiries", adminInquiries.List)
			admin.POST("/inquiries/:id/close", adminInquiries.Close)

			// Maintenance control
			admin.POST("/maintenance/trigger", adminHandler.TriggerMaintenance)

			// Cleanup operations
			admin.POST("/cleanup/run", adminHandler.RunCleanup)
			admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)

			// Listing history
			admin.GET("/listings/:id/history", adminHandler.GetListingHistory)
			admin.GET("/changes/recent", adminHandler.GetRecentChanges)
		}

		log.Println("Admin API routes registered at /api/admin/*")
	}

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// getListingsLegacy serves the public catalog when running without GORM
func getListingsLegacy(c *gin.Context) {
	listings, err := db.GetAllListings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, listings)
}

func getListingLegacy(c *gin.Context) {
	id := c.Param("id")

	listing, err := db.GetListingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	images, _ := db.GetListingImages(id)

	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
		"images":  images,
	})
}

func searchListings(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	// If no query, get all from database
	if query == "" {
		var listings []models.Listing
		var err error

		if gormDB != nil {
			listings, err = gormDB.GetActiveListings()
		} else {
			listings, err = db.GetAllListings()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	// Search using Meilisearch
	listings, err := searchClient.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

func filterListings(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	// Parse filter parameters
	params := search.FilterParams{
		Query: query,
		Limit: limit,
	}

	// Price range
	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		if minPrice, err := strconv.ParseFloat(minPriceStr, 64); err == nil {
			params.MinPrice = &minPrice
		}
	}
	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		if maxPrice, err := strconv.ParseFloat(maxPriceStr, 64); err == nil {
			params.MaxPrice = &maxPrice
		}
	}

	// Categories
	if categoryKeys := c.QueryArray("category_key"); len(categoryKeys) > 0 {
		params.CategoryKeys = categoryKeys
	}

	// Transaction type
	if txType := c.Query("type"); txType != "" {
		params.Type = txType
	}

	// Province
	if province := c.Query("province"); province != "" {
		params.Province = province
	}

	// Sort by
	if sortBy := c.Query("sort_by"); sortBy != "" {
		params.SortBy = sortBy
	}

	// If no query and no filters, get all from database
	if query == "" && params.MinPrice == nil && params.MaxPrice == nil &&
		len(params.CategoryKeys) == 0 && params.Type == "" && params.Province == "" {
		var listings []models.Listing
		var err error

		if gormDB != nil {
			listings, err = gormDB.GetActiveListings()
		} else {
			listings, err = db.GetAllListings()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	// Search with filters using Meilisearch
	listings, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// advancedSearchListings performs advanced search with filters and facets
func advancedSearchListings(c *gin.Context) {
	var reqBody struct {
		Query        string   `json:"query"`
		Limit        int64    `json:"limit"`
		Offset       int64    `json:"offset"`
		MinPrice     *float64 `json:"min_price"`
		MaxPrice     *float64 `json:"max_price"`
		CategoryKeys []string `json:"category_keys"`
		Type         string   `json:"type"`
		Province     string   `json:"province"`
		Sort         string   `json:"sort"` // "price_asc", "price_desc", "newest"
		Facets       []string `json:"facets"`
	}

	if err := c.ShouldBindJSON(&reqBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build filter conditions
	filters := []string{"status = 'active'"}

	if reqBody.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %f", *reqBody.MinPrice))
	}
	if reqBody.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %f", *reqBody.MaxPrice))
	}
	if reqBody.Type != "" {
		filters = append(filters, fmt.Sprintf("type = '%s'", reqBody.Type))
	}
	if reqBody.Province != "" {
		filters = append(filters, fmt.Sprintf("location_province = '%s'", reqBody.Province))
	}
	if len(reqBody.CategoryKeys) > 0 {
		keyFilters := make([]string, len(reqBody.CategoryKeys))
		for i, key := range reqBody.CategoryKeys {
			keyFilters[i] = fmt.Sprintf("category_key = '%s'", key)
		}
		filters = append(filters, "("+strings.Join(keyFilters, " OR ")+")")
	}

	// Build sort conditions
	sortConditions := []string{}
	switch reqBody.Sort {
	case "price_asc":
		sortConditions = append(sortConditions, "price:asc")
	case "price_desc":
		sortConditions = append(sortConditions, "price:desc")
	case "newest":
		sortConditions = append(sortConditions, "created_at:desc")
	}

	// Default facets
	facets := reqBody.Facets
	if len(facets) == 0 {
		facets = []string{"category_key", "location_province"}
	}

	searchReq := search.SearchRequest{
		Query:        reqBody.Query,
		Limit:        reqBody.Limit,
		Offset:       reqBody.Offset,
		Filter:       filters,
		Sort:         sortConditions,
		FacetsFilter: facets,
	}

	if searchReq.Limit == 0 {
		searchReq.Limit = 20
	}

	result, err := searchClient.AdvancedSearch(searchReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":            result.Hits,
		"total_hits":      result.TotalHits,
		"facets":          result.Facets,
		"processing_time": result.ProcessingTime,
		"query":           reqBody.Query,
		"filters":         filters,
	})
}

// getSearchFacets retrieves facet distributions
func getSearchFacets(c *gin.Context) {
	facetsParam := c.DefaultQuery("facets", "category_key,location_province")
	facets := strings.Split(facetsParam, ",")

	facetDist, err := searchClient.GetFacets(facets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facets": facetDist,
	})
}

// reindexAllListings re-indexes all listings from database to Meilisearch
func reindexAllListings(c *gin.Context) {
	log.Println("[Reindex] Starting full reindex of all listings")

	var listings []models.Listing
	var err error

	if gormDB != nil {
		listings, err = gormDB.GetAllListings()
	} else {
		listings, err = db.GetAllListings()
	}

	if err != nil {
		log.Printf("[Reindex] Error fetching listings from database: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch listings from database",
		})
		return
	}

	log.Printf("[Reindex] Found %d listings in database", len(listings))

	successCount := 0
	failCount := 0

	for i, listing := range listings {
		if err := searchClient.IndexListing(&listing); err != nil {
			log.Printf("[Reindex] Error indexing listing %d (%s): %v", i+1, listing.ID, err)
			failCount++
		} else {
			successCount++
		}

		// Log progress every 100 listings
		if (i+1)%100 == 0 {
			log.Printf("[Reindex] Progress: %d/%d indexed", i+1, len(listings))
		}
	}

	log.Printf("[Reindex] Reindex complete. Success: %d, Failed: %d", successCount, failCount)

	c.JSON(http.StatusOK, gin.H{
		"message": "Reindex complete",
		"total":   len(listings),
		"indexed": successCount,
		"failed":  failCount,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

// rateLimitMiddleware returns a Gin middleware that enforces rate limiting
// per client address
func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.AllowRequest(c.ClientIP()) {
			stats := rateLimiter.GetStats()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   stats,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getRateLimitStats returns current rate limiter statistics
func getRateLimitStats(c *gin.Context) {
	stats := rateLimiter.GetStats()
	c.JSON(http.StatusOK, stats)
}

// getQueueStats returns current queue worker statistics
func getQueueStats(c *gin.Context) {
	if queueWorker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Queue worker is not available (requires MySQL/GORM)",
		})
		return
	}

	stats := queueWorker.GetQueueStats()
	c.JSON(http.StatusOK, stats)
}
