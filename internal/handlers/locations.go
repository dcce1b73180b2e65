package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace-portal/internal/locations"
	"marketplace-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// LocationHandler serves the cascading-select lookups over the seeded
// location tree
type LocationHandler struct {
	resolver *locations.Resolver
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(resolver *locations.Resolver) *LocationHandler {
	return &LocationHandler{resolver: resolver}
}

func parseIDQuery(c *gin.Context, name string) uint {
	if idStr := c.Query(name); idStr != "" {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			return uint(id)
		}
	}
	return 0
}

// GetProvinces handles GET /api/provinces?country=RW|DRC
func (h *LocationHandler) GetProvinces(c *gin.Context) {
	country := c.Query("country")

	provinces, err := h.resolver.ListProvinces(country)
	if err != nil {
		if errors.Is(err, locations.ErrUnknownCountry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, provinces)
}

// GetProvinceChildren handles GET /api/provinces/:id/children?country=.
// Rwanda answers districts (sectors stay empty until a district is chosen);
// DRC answers cities and territories together.
func (h *LocationHandler) GetProvinceChildren(c *gin.Context) {
	country := c.Query("country")

	provinceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid province id"})
		return
	}

	children, err := h.resolver.ListChildren(country, uint(provinceID))
	if err != nil {
		if errors.Is(err, locations.ErrUnknownCountry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if country == models.CountryDRC {
		c.JSON(http.StatusOK, gin.H{
			"cities":      children.Cities,
			"territories": children.Territories,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"districts": children.Districts,
		"sectors":   children.Sectors,
	})
}

// GetDistricts handles GET /api/districts?province_id= (Rwanda)
func (h *LocationHandler) GetDistricts(c *gin.Context) {
	children, err := h.resolver.ListChildren(models.CountryRW, parseIDQuery(c, "province_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, children.Districts)
}

// GetSectors handles GET /api/sectors?district_id= (Rwanda)
func (h *LocationHandler) GetSectors(c *gin.Context) {
	sectors, err := h.resolver.ListSectors(parseIDQuery(c, "district_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sectors)
}

// GetCities handles GET /api/cities?province_id= (DRC)
func (h *LocationHandler) GetCities(c *gin.Context) {
	children, err := h.resolver.ListChildren(models.CountryDRC, parseIDQuery(c, "province_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, children.Cities)
}

// GetTerritories handles GET /api/territories?province_id= (DRC)
func (h *LocationHandler) GetTerritories(c *gin.Context) {
	children, err := h.resolver.ListChildren(models.CountryDRC, parseIDQuery(c, "province_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, children.Territories)
}
