package server

import (
	"net/http"
	"time"

	"perfmon-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It owns the clients map.
func (s *DashboardServer) handleWebsockets() {
	defer close(s.hubDone)

	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			// Send initial state on connect
			select {
			case client.send <- s.initialMessage():
			default:
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.done)
				s.connections.Store(int64(len(s.clients)))
			}

		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.done)
			}
			s.connections.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Payload builders
// -----------------------------------------------------------------------------

func (s *DashboardServer) initialMessage() *models.MDashboardMessage {
	stats := s.Snapshot.Stats()
	return &models.MDashboardMessage{
		Type:        "INITIAL",
		Source:      stats.Source,
		Fingerprint: stats.Fingerprint,
		Counters:    s.Snapshot.GetCounterSummaries(),
		Categories:  s.Snapshot.GetCategorySummaries(),
		Timestamp:   time.Now().Unix(),
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) categoryMessage(name string) *models.MDashboardMessage {
	stats := s.Snapshot.Stats()
	msg := &models.MDashboardMessage{
		Source:      stats.Source,
		Fingerprint: stats.Fingerprint,
		Timestamp:   time.Now().Unix(),
	}

	category, ok := models.ParseCategory(name)
	if !ok {
		msg.Type = "ERROR"
		msg.Error = "unknown category " + name
		return msg
	}

	summary, _ := s.Snapshot.CategorySummary(category)
	msg.Type = "CATEGORY"
	msg.Counters = summary.Counters
	msg.Categories = map[models.Category]models.MCategorySummary{category: summary}
	return msg
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	if s.stopped.Load() {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MDashboardMessage, 16),
		done: make(chan struct{}),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	response := s.categoryMessage(cmd.Category)

	// Never block the read loop on a slow writer
	select {
	case client.send <- response:
	case <-client.done:
	default:
		s.Logger.Warning("Dropping %s response for slow websocket client", response.Type)
	}
}
