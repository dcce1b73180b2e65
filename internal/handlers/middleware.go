package handlers

import (
	"net/http"
	"strconv"

	"marketplace-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// Caller identity as supplied by the upstream auth layer. Session handling,
// password checks and token validation live outside this service; it trusts
// the gateway-injected headers and only enforces owner/role policy on them.
const (
	headerBrokerID = "X-Broker-ID"
	headerRole     = "X-Role"
)

// actor is the authenticated caller as seen by this service
type actor struct {
	BrokerID uint
	Role     string
}

func actorFrom(c *gin.Context) actor {
	a := actor{Role: c.GetHeader(headerRole)}
	if idStr := c.GetHeader(headerBrokerID); idStr != "" {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			a.BrokerID = uint(id)
		}
	}
	return a
}

func (a actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

// canModify reports whether the actor may mutate a listing owned by ownerID
func (a actor) canModify(ownerID uint) bool {
	if a.isAdmin() {
		return true
	}
	return a.BrokerID != 0 && a.BrokerID == ownerID
}

// RequireAdmin gates the admin route group
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).isAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
