package editormodule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipstack/clipstack/internal/modules/editormodule/core/compositor"
	edit "github.com/clipstack/clipstack/internal/modules/editormodule/types"
)

type handlers struct {
	service *Service
}

func registerRoutes(router *gin.Engine, service *Service) {
	h := &handlers{service: service}

	api := router.Group("/api/edit/:projectID")
	{
		api.GET("", h.getDescriptor)
		api.PUT("/primary-asset", h.setPrimaryAsset)
		api.PUT("/speed", h.setSpeed)
		api.PUT("/trim", h.setTrim)
		api.PUT("/filter", h.setFilter)
		api.PUT("/crop", h.setCrop)
		api.PUT("/audio-replacement", h.setAudioReplacement)
		api.PUT("/volume", h.setVolume)
		api.PUT("/muted", h.setMuted)
		api.PUT("/stickers", h.setStickers)
		api.GET("/compose", h.compose)
	}
}

func (h *handlers) getDescriptor(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Descriptor(c.Param("projectID")))
}

func (h *handlers) setPrimaryAsset(c *gin.Context) {
	var req struct {
		AssetID string `json:"asset_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SetPrimaryAsset(c.Param("projectID"), req.AssetID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) setSpeed(c *gin.Context) {
	var req struct {
		Rate float64 `json:"rate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetSpeedRate(c.Param("projectID"), req.Rate)
	h.respond(c, descriptor, err)
}

func (h *handlers) setTrim(c *gin.Context) {
	var req struct {
		RatioStart float64 `json:"ratio_start"`
		RatioEnd   float64 `json:"ratio_end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetTrimRatios(c.Param("projectID"), req.RatioStart, req.RatioEnd)
	h.respond(c, descriptor, err)
}

func (h *handlers) setFilter(c *gin.Context) {
	var req struct {
		Filter *edit.FilterSpec `json:"filter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetFilter(c.Param("projectID"), req.Filter)
	h.respond(c, descriptor, err)
}

func (h *handlers) setCrop(c *gin.Context) {
	var req struct {
		Preset string `json:"preset"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetCroppingPreset(c.Param("projectID"), req.Preset)
	h.respond(c, descriptor, err)
}

func (h *handlers) setAudioReplacement(c *gin.Context) {
	var req struct {
		Replacement *edit.AudioReplacement `json:"replacement"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetAudioReplacement(c.Param("projectID"), req.Replacement)
	h.respond(c, descriptor, err)
}

func (h *handlers) setVolume(c *gin.Context) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetVolume(c.Param("projectID"), req.Volume)
	h.respond(c, descriptor, err)
}

func (h *handlers) setMuted(c *gin.Context) {
	var req struct {
		Muted bool `json:"muted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetMuted(c.Param("projectID"), req.Muted)
	h.respond(c, descriptor, err)
}

func (h *handlers) setStickers(c *gin.Context) {
	var req struct {
		Stickers []edit.Sticker `json:"stickers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	descriptor, err := h.service.SetStickers(c.Param("projectID"), req.Stickers)
	h.respond(c, descriptor, err)
}

func (h *handlers) compose(c *gin.Context) {
	mode := compositor.ModePreview
	if c.Query("mode") == string(compositor.ModeExport) {
		mode = compositor.ModeExport
	}

	plan, err := h.service.Compose(c.Param("projectID"), mode)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *handlers) respond(c *gin.Context, descriptor edit.EditDescriptor, err error) {
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, descriptor)
}
