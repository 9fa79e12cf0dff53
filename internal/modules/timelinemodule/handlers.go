package timelinemodule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipstack/clipstack/internal/modules/timelinemodule/core/trim"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

type handlers struct {
	service *Service
}

func registerRoutes(router *gin.Engine, service *Service) {
	h := &handlers{service: service}

	api := router.Group("/api/timeline/:projectID")
	{
		api.GET("", h.getTimeline)
		api.POST("/tracks", h.addTrack)
		api.POST("/tracks/:trackID/items", h.addItem)
		api.POST("/tracks/:trackID/validate", h.validateItem)
		api.POST("/items/:itemID/move", h.moveItem)
		api.DELETE("/items/:itemID", h.removeItem)
		api.GET("/items/:itemID/snap-points", h.snapPoints)
		api.POST("/items/:itemID/trim/begin", h.beginTrim)
		api.POST("/trim/change", h.changeTrim)
		api.POST("/trim/end", h.endTrim)
		api.POST("/trim/cancel", h.cancelTrim)
		api.PUT("/playhead", h.setPlayhead)
	}
}

func (h *handlers) getTimeline(c *gin.Context) {
	session := h.service.Session(c.Param("projectID"))
	c.JSON(http.StatusOK, gin.H{
		"timeline": session.Timeline,
		"playhead": session.Playhead,
	})
}

func (h *handlers) addTrack(c *gin.Context) {
	var req struct {
		Type types.TrackType `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	track, err := h.service.AddTrack(c.Param("projectID"), req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, track)
}

type addItemRequest struct {
	Kind            types.ItemKind  `json:"kind" binding:"required"`
	StartSeconds    float64         `json:"start_seconds"`
	DurationSeconds float64         `json:"duration_seconds" binding:"required"`
	AssetID         string          `json:"asset_id"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Transform       types.Transform `json:"transform"`
}

// buildItem constructs a timeline item from a request body, writing the
// error response itself when construction fails.
func (h *handlers) buildItem(c *gin.Context, req addItemRequest) (*types.TimelineItem, bool) {
	start := types.FromSeconds(req.StartSeconds, types.DefaultScale)
	duration := types.FromSeconds(req.DurationSeconds, types.DefaultScale)

	switch req.Kind {
	case types.KindVideo:
		source, err := h.service.ResolveAsset(req.AssetID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		return types.NewVideoItem(source, start, duration), true
	case types.KindAudio:
		var source *types.SourceAssetMetadata
		trackType := types.TrackTypeAudioOriginal
		if req.AssetID != "" {
			resolved, err := h.service.ResolveAsset(req.AssetID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return nil, false
			}
			source = &resolved
			trackType = types.TrackTypeAudioReplacement
		}
		return types.NewAudioItem(trackType, source, req.Title, start, duration), true
	case types.KindText, types.KindSticker:
		return types.NewOverlayItem(req.Kind, req.Content, req.Transform, start, duration), true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown item kind"})
		return nil, false
	}
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, ok := h.buildItem(c, req)
	if !ok {
		return
	}

	placed, err := h.service.AddItem(c.Param("projectID"), c.Param("trackID"), item)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func (h *handlers) validateItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, ok := h.buildItem(c, req)
	if !ok {
		return
	}

	result, err := h.service.ValidateItem(c.Param("projectID"), c.Param("trackID"), item)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) moveItem(c *gin.Context) {
	var req struct {
		StartSeconds float64 `json:"start_seconds"`
		Snap         bool    `json:"snap"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := types.FromSeconds(req.StartSeconds, types.DefaultScale)
	settled, err := h.service.MoveItem(c.Param("projectID"), c.Param("itemID"), target, req.Snap)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": settled, "start_seconds": settled.Seconds()})
}

func (h *handlers) removeItem(c *gin.Context) {
	if err := h.service.RemoveItem(c.Param("projectID"), c.Param("itemID")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) snapPoints(c *gin.Context) {
	points, err := h.service.SnapPoints(c.Param("projectID"), c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snap_points": points})
}

func (h *handlers) beginTrim(c *gin.Context) {
	var req struct {
		Handle          string  `json:"handle" binding:"required"`
		PixelsPerSecond float64 `json:"pixels_per_second"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handle := trim.HandleLeft
	switch req.Handle {
	case "left":
	case "right":
		handle = trim.HandleRight
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle must be \"left\" or \"right\""})
		return
	}

	if err := h.service.BeginTrim(c.Param("projectID"), c.Param("itemID"), handle, req.PixelsPerSecond); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) changeTrim(c *gin.Context) {
	var req struct {
		DeltaPixels float64 `json:"delta_pixels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gesture, err := h.service.ChangeTrim(c.Param("projectID"), req.DeltaPixels)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"start":    gesture.CandidateStart,
		"duration": gesture.CandidateDuration,
		"clamped":  gesture.Clamped,
	})
}

func (h *handlers) endTrim(c *gin.Context) {
	var req struct {
		DeltaPixels float64 `json:"delta_pixels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commit, err := h.service.EndTrim(c.Param("projectID"), req.DeltaPixels)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, commit)
}

func (h *handlers) cancelTrim(c *gin.Context) {
	h.service.CancelTrim(c.Param("projectID"))
	c.Status(http.StatusNoContent)
}

func (h *handlers) setPlayhead(c *gin.Context) {
	var req struct {
		Seconds float64 `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settled := h.service.SetPlayhead(c.Param("projectID"), types.FromSeconds(req.Seconds, types.DefaultScale))
	c.JSON(http.StatusOK, gin.H{"playhead": settled, "seconds": settled.Seconds()})
}
