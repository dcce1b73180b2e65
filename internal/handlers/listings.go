package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/locations"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/schema"
	"marketplace-portal/internal/snapshot"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingHandler handles listing CRUD
type ListingHandler struct {
	db       *database.GormDB
	cfg      *config.Config
	snapshot *snapshot.Service
}

// NewListingHandler creates a new listing handler
func NewListingHandler(db *database.GormDB, cfg *config.Config) *ListingHandler {
	return &ListingHandler{
		db:       db,
		cfg:      cfg,
		snapshot: snapshot.NewService(db.DB()),
	}
}

// List handles GET /api/listings with optional conjunctive filters
func (h *ListingHandler) List(c *gin.Context) {
	filters := database.ListingFilters{
		CategoryKey: c.Query("category_key"),
		Type:        c.Query("type"),
		Location:    c.Query("location"),
		SortBy:      c.DefaultQuery("sort", "newest"),
		Status:      string(models.ListingStatusActive),
	}

	if id := c.Query("category_id"); id != "" {
		if parsed, err := strconv.ParseUint(id, 10, 32); err == nil {
			categoryID := uint(parsed)
			filters.CategoryID = &categoryID
		}
	}
	if minStr := c.Query("min_price"); minStr != "" {
		if minPrice, err := strconv.ParseFloat(minStr, 64); err == nil {
			filters.MinPrice = &minPrice
		}
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		if maxPrice, err := strconv.ParseFloat(maxStr, 64); err == nil {
			filters.MaxPrice = &maxPrice
		}
	}
	if brokerStr := c.Query("broker_id"); brokerStr != "" {
		if parsed, err := strconv.ParseUint(brokerStr, 10, 32); err == nil {
			brokerID := uint(parsed)
			filters.BrokerID = &brokerID

			// Owners and admins may see their non-active listings
			a := actorFrom(c)
			if a.canModify(brokerID) {
				filters.Status = c.Query("status")
			}
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if filters.Limit == 0 {
		filters.Limit = h.cfg.Listings.DefaultPageLimit
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	result, err := h.db.GetListingsWithFilters(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	id := c.Param("id")

	listing, err := h.db.GetListingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	images, _ := h.db.GetListingImages(id)

	c.JSON(http.StatusOK, gin.H{
		"listing": listing,
		"images":  images,
	})
}

// resolveCategory maps the incoming category_id (or legacy category name)
// to a category id and normalized key
func (h *ListingHandler) resolveCategory(c *gin.Context) (uint, string, error) {
	if idStr := c.PostForm("category_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return 0, "", fmt.Errorf("invalid category_id %q", idStr)
		}
		category, err := h.db.GetCategoryByID(uint(id))
		if err != nil {
			return 0, "", fmt.Errorf("category %d not found", id)
		}
		return category.ID, schema.ResolveKey(*category), nil
	}

	// Legacy clients send the category name directly
	if name := c.PostForm("category"); name != "" {
		return 0, schema.CategoryKey(name), nil
	}

	return 0, "", errors.New("category_id or category is required")
}

// collectAttributes reads the repeated attributes[<key>]=<value> form fields
func collectAttributes(form *multipart.Form) models.AttributeBag {
	bag := models.AttributeBag{}
	for field, values := range form.Value {
		if !strings.HasPrefix(field, "attributes[") || !strings.HasSuffix(field, "]") {
			continue
		}
		key := field[len("attributes[") : len(field)-1]
		if key == "" || len(values) == 0 {
			continue
		}
		bag[key] = values[0]
	}
	return bag
}

// storedImagePath is where the external storage layer will place the upload.
// Actual file storage is handled outside this service; only the reference
// and size are recorded here.
func storedImagePath(header *multipart.FileHeader) (string, float64) {
	name := fmt.Sprintf("/uploads/%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	sizeMB := float64(header.Size) / (1024 * 1024)
	return name, sizeMB
}

// Create handles POST /api/listings (multipart form)
func (h *ListingHandler) Create(c *gin.Context) {
	a := actorFrom(c)

	// Admins may post on behalf of a broker via the broker_id field
	brokerID := a.BrokerID
	if a.isAdmin() {
		if idStr := c.PostForm("broker_id"); idStr != "" {
			if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
				brokerID = uint(id)
			}
		}
	}
	if brokerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "broker identity required"})
		return
	}

	if !a.isAdmin() {
		broker, err := h.db.GetUserByID(brokerID)
		if err != nil || !broker.IsApprovedBroker() {
			c.JSON(http.StatusForbidden, gin.H{"error": "only approved brokers may publish listings"})
			return
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, categoryKey, err := h.resolveCategory(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txType := models.TransactionType(c.DefaultPostForm("type", c.PostForm("purpose")))
	if txType != models.TransactionSell && txType != models.TransactionRent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be sell or rent"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative number"})
		return
	}

	attributes := collectAttributes(form)
	if result := schema.Validate(categoryKey, txType, attributes); !result.OK() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "missing or invalid attributes",
			"fields": result.Fields(),
		})
		return
	}

	// Compose the location label server-side when the client sends parts
	location := c.PostForm("location")
	if location == "" {
		location = locations.ComposeLabel(c.DefaultPostForm("country", models.CountryRW), locations.LabelParts{
			Province:  c.PostForm("location_province"),
			District:  c.PostForm("location_district"),
			Sector:    c.PostForm("location_sector"),
			City:      c.PostForm("location_city"),
			Territory: c.PostForm("location_territory"),
		})
	}

	listing := &models.Listing{
		BrokerID:         brokerID,
		CategoryID:       categoryID,
		CategoryKey:      categoryKey,
		Type:             txType,
		Title:            title,
		Description:      c.PostForm("description"),
		Price:            price,
		Location:         location,
		LocationProvince: c.PostForm("location_province"),
		LocationDistrict: c.PostForm("location_district"),
		LocationSector:   c.PostForm("location_sector"),
		Attributes:       attributes,
	}

	var images []models.ListingImage

	if primary, err := c.FormFile("image"); err == nil {
		path, sizeMB := storedImagePath(primary)
		listing.PrimaryImageURL = path
		images = append(images, models.ListingImage{ImageURL: path, SizeMB: sizeMB})
	}

	gallery := form.File["images[]"]
	if len(gallery) > h.cfg.Listings.MaxGalleryImages {
		gallery = gallery[:h.cfg.Listings.MaxGalleryImages]
	}
	for _, header := range gallery {
		path, sizeMB := storedImagePath(header)
		images = append(images, models.ListingImage{ImageURL: path, SizeMB: sizeMB})
	}

	if listing.PrimaryImageURL == "" && h.cfg.Listings.RequiresPrimaryImage(categoryKey) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "a primary image is required for this category",
			"fields": []string{"image"},
		})
		return
	}

	if err := h.db.CreateListingWithImages(listing, images); err != nil {
		switch {
		case errors.Is(err, database.ErrQuotaItemsExceeded),
			errors.Is(err, database.ErrQuotaStorageExceeded):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.snapshot.RecordUpdate(listing)
	log.Printf("[Listings] created id=%s broker=%d category=%s type=%s images=%d",
		listing.ID, brokerID, categoryKey, txType, len(images))

	c.JSON(http.StatusCreated, listing)
}

// updateRequest is the partial-update body for PUT /api/listings/:id
type updateRequest struct {
	Title            *string             `json:"title"`
	Description      *string             `json:"description"`
	Price            *float64            `json:"price"`
	Type             *string             `json:"type"`
	Location         *string             `json:"location"`
	LocationProvince *string             `json:"location_province"`
	LocationDistrict *string             `json:"location_district"`
	LocationSector   *string             `json:"location_sector"`
	Status           *string             `json:"status"`
	Attributes       models.AttributeBag `json:"attributes"`
}

// Update handles PUT /api/listings/:id. The merged attribute bag is
// re-validated against the listing's (possibly unchanged) category and
// transaction type before anything is saved.
func (h *ListingHandler) Update(c *gin.Context) {
	id := c.Param("id")

	listing, err := h.db.GetListingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	a := actorFrom(c)
	if !a.canModify(listing.BrokerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the listing owner"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be non-negative", "fields": []string{"price"}})
			return
		}
		listing.Price = *req.Price
	}
	if req.Type != nil {
		txType := models.TransactionType(*req.Type)
		if txType != models.TransactionSell && txType != models.TransactionRent {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be sell or rent", "fields": []string{"type"}})
			return
		}
		listing.Type = txType
	}
	if req.Location != nil {
		listing.Location = *req.Location
	}
	if req.LocationProvince != nil {
		listing.LocationProvince = *req.LocationProvince
	}
	if req.LocationDistrict != nil {
		listing.LocationDistrict = *req.LocationDistrict
	}
	if req.LocationSector != nil {
		listing.LocationSector = *req.LocationSector
	}
	if req.Status != nil {
		// Only admins flip listings in and out of rejected
		status := models.ListingStatus(*req.Status)
		if status == models.ListingStatusRejected && !a.isAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "only admins may reject listings"})
			return
		}
		listing.Status = status
	}

	// Merge attribute changes over the existing bag
	if req.Attributes != nil {
		if listing.Attributes == nil {
			listing.Attributes = models.AttributeBag{}
		}
		for k, v := range req.Attributes {
			if v == "" {
				delete(listing.Attributes, k)
				continue
			}
			listing.Attributes[k] = v
		}
	}

	if result := schema.Validate(listing.CategoryKey, listing.Type, listing.Attributes); !result.OK() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "missing or invalid attributes",
			"fields": result.Fields(),
		})
		return
	}

	if err := h.db.UpdateListing(listing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.snapshot.RecordUpdate(listing)

	c.JSON(http.StatusOK, listing)
}

// Delete handles DELETE /api/listings/:id (hard delete, cascades to images)
func (h *ListingHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	listing, err := h.db.GetListingByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	a := actorFrom(c)
	if !a.canModify(listing.BrokerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the listing owner"})
		return
	}

	reason := models.DeleteReasonOwner
	if a.isAdmin() && a.BrokerID != listing.BrokerID {
		reason = models.DeleteReasonAdmin
	}

	if err := h.db.DeleteListing(id, reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Listings] deleted id=%s by broker=%d reason=%s", id, a.BrokerID, reason)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// GetCategories handles GET /api/categories
func (h *ListingHandler) GetCategories(c *gin.Context) {
	categories, err := h.db.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}
