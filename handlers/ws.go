package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/LovationAdmin/storefinder-api/models"
)

const searchIDKey = "search_id"

// ProgressHub streams search progress events to websocket clients that
// subscribed to a search id.
type ProgressHub struct {
	M *melody.Melody
}

func NewProgressHub() *ProgressHub {
	m := melody.New()

	m.Config.MaxMessageSize = 4 * 1024

	// Keep-Alive pour l'hébergement cloud (Render)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		searchID, _ := s.Get(searchIDKey)
		log.Printf("✅ Client subscribed to search: %v", searchID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		searchID, _ := s.Get(searchIDKey)
		log.Printf("🔌 Client disconnected from search: %v", searchID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &ProgressHub{M: m}
}

// HandleWS upgrades the request and tags the session with the search id.
func (h *ProgressHub) HandleWS(c *gin.Context) {
	searchID := c.Param("id")

	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		searchIDKey: searchID,
	})
	if err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// Publish sends an event to every client listening to event.SearchID.
func (h *ProgressHub) Publish(event models.SearchProgressEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ Failed to encode progress event: %v", err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get(searchIDKey)
		return exists && id == event.SearchID
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting to search %s: %v", event.SearchID, err)
	}
}

func (h *ProgressHub) Close() error {
	return h.M.Close()
}
