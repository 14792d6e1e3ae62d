package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"gochart/internal"
	"gochart/models"
)

const keepAliveInterval = 30 * time.Second

type sseClient struct {
	sessionID string
	channel   chan models.RunEvent
}

// SSEHub fans pipeline run events out to Server-Sent Events clients,
// keyed by session id.
type SSEHub struct {
	clients    map[string]map[chan models.RunEvent]bool
	clientsMu  sync.RWMutex
	register   chan sseClient
	unregister chan sseClient
	broadcast  chan models.RunEvent
	done       chan struct{}
	logger     *internal.Logger
}

// NewSSEHub starts the hub loop. Call Close to stop it.
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:    make(map[string]map[chan models.RunEvent]bool),
		register:   make(chan sseClient, 10),
		unregister: make(chan sseClient, 10),
		broadcast:  make(chan models.RunEvent, 100),
		done:       make(chan struct{}),
		logger:     logger.Named("SSE"),
	}
	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[chan models.RunEvent]bool)
			}
			h.clients[client.sessionID][client.channel] = true
			h.logger.Debug("client registered for session %s (total %d)", client.sessionID, len(h.clients[client.sessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, ok := h.clients[client.sessionID]; ok {
				delete(clients, client.channel)
				close(client.channel)
				if len(clients) == 0 {
					delete(h.clients, client.sessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for ch := range h.clients[event.SessionID] {
				select {
				case ch <- event:
				default:
					h.logger.Warn("client channel full for session %s, dropping %s", event.SessionID, event.EventType)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Publish queues an event for the session's listeners without blocking.
// Events of runs without a session id are dropped.
func (h *SSEHub) Publish(event models.RunEvent) {
	if event.SessionID == "" {
		return
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping %s", event.EventType)
	}
}

// Close stops the hub loop
func (h *SSEHub) Close() {
	close(h.done)
}

// ClientCount returns the number of listeners for a session
func (h *SSEHub) ClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}

// HandleSSE streams a session's run events until the client disconnects
func (h *SSEHub) HandleSSE(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id parameter required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan models.RunEvent, 10)
	select {
	case h.register <- sseClient{sessionID: sessionID, channel: ch}:
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event hub is busy"})
		return
	}
	defer func() {
		select {
		case h.unregister <- sseClient{sessionID: sessionID, channel: ch}:
		case <-h.done:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			raw, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(raw))
			return true
		case <-time.After(keepAliveInterval):
			c.SSEvent("ping", `{"status":"alive"}`)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
