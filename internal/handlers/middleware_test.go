package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestActorFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Broker-ID", "42")
	c.Request.Header.Set("X-Role", "broker")

	a := actorFrom(c)
	assert.EqualValues(t, 42, a.BrokerID)
	assert.Equal(t, "broker", a.Role)
	assert.False(t, a.isAdmin())

	// Garbage broker id is treated as anonymous
	c.Request.Header.Set("X-Broker-ID", "not-a-number")
	a = actorFrom(c)
	assert.EqualValues(t, 0, a.BrokerID)
}

func TestCanModify(t *testing.T) {
	owner := actor{BrokerID: 7, Role: "broker"}
	assert.True(t, owner.canModify(7))
	assert.False(t, owner.canModify(8))

	admin := actor{BrokerID: 1, Role: "admin"}
	assert.True(t, admin.canModify(7))

	anonymous := actor{}
	assert.False(t, anonymous.canModify(0))
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Role", "broker")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Role", "admin")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
