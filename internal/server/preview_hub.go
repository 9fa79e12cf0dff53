package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/modules/editormodule/core/compositor"
	"github.com/clipstack/clipstack/internal/services"
)

// planComposer is the slice of the editor service the hub needs
type planComposer interface {
	Compose(projectID string, mode compositor.Mode) (compositor.CompositionPlan, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PreviewHub pushes fresh preview composition plans to connected clients
// whenever a project's edit state changes. Rapid successive changes (a
// continuous trim drag) are debounced so downstream work runs once per
// settle, not once per pixel.
type PreviewHub struct {
	mu       sync.Mutex
	clients  map[string]map[*websocket.Conn]bool
	timers   map[string]*time.Timer
	debounce time.Duration
	logger   hclog.Logger
}

// NewPreviewHub creates the hub
func NewPreviewHub(debounce time.Duration, logger hclog.Logger) *PreviewHub {
	return &PreviewHub{
		clients:  make(map[string]map[*websocket.Conn]bool),
		timers:   make(map[string]*time.Timer),
		debounce: debounce,
		logger:   logger,
	}
}

// HandleWS upgrades the connection and registers it for a project's previews
func (h *PreviewHub) HandleWS(c *gin.Context) {
	projectID := c.Param("projectID")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*websocket.Conn]bool)
	}
	h.clients[projectID][conn] = true
	h.mu.Unlock()

	// push the current plan immediately so the client doesn't wait for the
	// next edit
	h.pushPlan(projectID)

	go h.readLoop(projectID, conn)
}

func (h *PreviewHub) readLoop(projectID string, conn *websocket.Conn) {
	defer h.drop(projectID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *PreviewHub) drop(projectID string, conn *websocket.Conn) {
	h.mu.Lock()
	if conns, ok := h.clients[projectID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, projectID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// HandleEvent debounces edit-state events into preview pushes
func (h *PreviewHub) HandleEvent(event events.Event) error {
	projectID, _ := event.Data["project_id"].(string)
	if projectID == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients[projectID]) == 0 {
		return nil
	}

	if timer, ok := h.timers[projectID]; ok {
		timer.Reset(h.debounce)
		return nil
	}
	h.timers[projectID] = time.AfterFunc(h.debounce, func() {
		h.mu.Lock()
		delete(h.timers, projectID)
		h.mu.Unlock()
		h.pushPlan(projectID)
	})
	return nil
}

func (h *PreviewHub) pushPlan(projectID string) {
	composer, err := services.GetService[planComposer](services.EditorServiceName)
	if err != nil {
		h.logger.Warn("editor service unavailable for preview", "error", err)
		return
	}

	plan, err := composer.Compose(projectID, compositor.ModePreview)
	if err != nil {
		// no primary asset yet or invalid edit; nothing to preview
		h.logger.Debug("no preview plan", "project", projectID, "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients[projectID]))
	for conn := range h.clients[projectID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(plan); err != nil {
			h.logger.Debug("dropping preview client", "project", projectID, "error", err)
			h.drop(projectID, conn)
		}
	}
}

// Close disconnects all clients
func (h *PreviewHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for projectID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, projectID)
	}
	for projectID, timer := range h.timers {
		timer.Stop()
		delete(h.timers, projectID)
	}
}
