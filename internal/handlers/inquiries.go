package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InquiryHandler handles client inquiry intake and broker workflow
type InquiryHandler struct {
	db *database.GormDB
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(db *database.GormDB) *InquiryHandler {
	return &InquiryHandler{db: db}
}

type inquiryRequest struct {
	BrokerID    uint   `json:"broker_id"`
	ListingID   string `json:"listing_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`
	Details     string `json:"details"`
}

// Submit handles POST /api/inquiries. Clients are anonymous; the broker
// the inquiry targets is named in the body. A repeat submission from the
// same contact while an earlier inquiry is still open is acknowledged
// without creating a second row.
func (h *InquiryHandler) Submit(c *gin.Context) {
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.ClientPhone = strings.TrimSpace(req.ClientPhone)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)

	if req.ClientPhone == "" && req.ClientEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "a phone number or email is required",
			"fields": []string{"client_phone", "client_email"},
		})
		return
	}

	brokerID := req.BrokerID
	if brokerID == 0 && req.ListingID != "" {
		listing, err := h.db.GetListingByID(req.ListingID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		brokerID = listing.BrokerID
	}
	if brokerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "broker_id or listing_id is required"})
		return
	}

	existing, err := h.db.FindOpenDuplicateInquiry(brokerID, req.ClientPhone, req.ClientEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "already_received",
			"inquiry_id": existing.ID,
		})
		return
	}

	inquiry := &models.Inquiry{
		BrokerID:    brokerID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		Details:     req.Details,
	}
	if req.ListingID != "" {
		inquiry.ListingID = &req.ListingID
	}

	if err := h.db.CreateInquiry(inquiry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Inquiries] received id=%s broker=%d listing=%s", inquiry.ID, brokerID, req.ListingID)
	c.JSON(http.StatusCreated, gin.H{
		"status":     "received",
		"inquiry_id": inquiry.ID,
	})
}

// List handles GET /api/inquiries. Brokers see only their own inbox;
// admins may pass broker_id to inspect any.
func (h *InquiryHandler) List(c *gin.Context) {
	a := actorFrom(c)
	if a.BrokerID == 0 && !a.isAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "broker identity required"})
		return
	}

	var brokerID *uint
	if a.isAdmin() {
		if idStr := c.Query("broker_id"); idStr != "" {
			if parsed, err := strconv.ParseUint(idStr, 10, 32); err == nil {
				id := uint(parsed)
				brokerID = &id
			}
		}
	} else {
		brokerID = &a.BrokerID
	}

	status := models.InquiryStatus(c.Query("status"))

	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	inquiries, err := h.db.ListInquiries(status, brokerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inquiries": inquiries,
		"count":     len(inquiries),
	})
}

// Close handles POST /api/inquiries/:id/close. Closing frees the contact
// to submit a fresh inquiry later.
func (h *InquiryHandler) Close(c *gin.Context) {
	id := c.Param("id")

	inquiry, err := h.db.GetInquiryByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
		return
	}

	a := actorFrom(c)
	if !a.canModify(inquiry.BrokerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the inquiry owner"})
		return
	}

	if err := h.db.CloseInquiry(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"closed": id})
}
