package assetmodule

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

type handlers struct {
	service *Service
}

func registerRoutes(router *gin.Engine, service *Service) {
	h := &handlers{service: service}

	api := router.Group("/api/assets")
	{
		api.GET("", h.list)
		api.POST("", h.register)
		api.GET("/:id", h.get)
		api.PUT("/:id/duration", h.setDuration)
		api.DELETE("/:id", h.remove)
		api.GET("/:id/expected-units", h.expectedUnits)
	}
}

func (h *handlers) list(c *gin.Context) {
	assets, err := h.service.List(AssetKind(c.Query("kind")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

func (h *handlers) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.service.Register(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func (h *handlers) get(c *gin.Context) {
	asset, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *handlers) setDuration(c *gin.Context) {
	var req struct {
		Seconds float64 `json:"seconds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.service.SetDuration(c.Param("id"), req.Seconds)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *handlers) remove(c *gin.Context) {
	if err := h.service.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// expectedUnits implements the thumbnail/waveform collaborator contract:
// how many display units a time span needs.
func (h *handlers) expectedUnits(c *gin.Context) {
	asset, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	span := asset.Duration()
	if raw := c.Query("seconds"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be a non-negative number"})
			return
		}
		span = timeline.FromSeconds(seconds, timeline.DefaultScale)
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_id": asset.ID,
		"units":    h.service.ExpectedUnits(span),
	})
}
