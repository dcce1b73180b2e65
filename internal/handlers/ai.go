package handlers

import (
	"errors"
	"net/http"

	"marketplace-portal/internal/ai"

	"github.com/gin-gonic/gin"
)

// AIHandler proxies description drafting to the external text service
type AIHandler struct {
	client *ai.Client
}

// NewAIHandler creates a new AI handler
func NewAIHandler(client *ai.Client) *AIHandler {
	return &AIHandler{client: client}
}

// GenerateDescription handles POST /api/ai/generate-description. The draft is
// returned to the broker for editing; nothing is persisted here.
func (h *AIHandler) GenerateDescription(c *gin.Context) {
	var req ai.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" && req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title or category is required"})
		return
	}

	result, err := h.client.GenerateDescription(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
