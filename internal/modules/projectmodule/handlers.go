package projectmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	service *Service
}

func registerRoutes(router *gin.Engine, service *Service) {
	h := &handlers{service: service}

	api := router.Group("/api/projects")
	{
		api.GET("", h.list)
		api.POST("", h.create)
		api.GET("/:id", h.get)
		api.PUT("/:id/name", h.rename)
		api.POST("/:id/save", h.save)
		api.POST("/:id/load", h.load)
		api.DELETE("/:id", h.remove)
	}
}

func (h *handlers) list(c *gin.Context) {
	projects, err := h.service.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *handlers) create(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		PrimaryAssetID string `json:"primary_asset_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.Create(req.Name, req.PrimaryAssetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *handlers) get(c *gin.Context) {
	project, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *handlers) rename(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.Rename(c.Param("id"), req.Name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *handlers) save(c *gin.Context) {
	project, err := h.service.Save(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *handlers) load(c *gin.Context) {
	project, err := h.service.Load(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *handlers) remove(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
