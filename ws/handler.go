package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// services paketi ws.EventPublisher'ı kullanır; ws'nin services'i import etmesi
// döngü oluştururdu. main.go'da TokenService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.APIClaims, error)
}

// StatsProvider, ready event'i için registry boyutlarını veren interface.
type StatsProvider interface {
	Stats() registry.Stats
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	stats          StatsProvider
	upgrader       websocket.Upgrader
}

// NewHandler, yeni bir WebSocket handler oluşturur.
//
// checkOrigin nil ise tüm origin'lere izin verilir (development).
func NewHandler(hub *Hub, tokenValidator TokenValidator, stats StatsProvider, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		stats:          stats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Tarayıcılar WebSocket isteğine header ekleyemediği için token query parameter'ı
// olarak gelir:
//
//	ws://server/ws?token=JWT_TOKEN
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for subject %s: %v", claims.Subject, err)
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		id:      uuid.NewString(),
		subject: claims.Subject,
		send:    make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	stats := h.stats.Stats()
	client.sendEvent(Event{
		Op: OpReady,
		Data: ReadyData{
			ConnectionID: client.id,
			Subject:      client.subject,
			Guilds:       stats.Guilds,
			Channels:     stats.Channels,
			Users:        stats.Users,
		},
	})

	// WritePump ayrı goroutine'de, ReadPump bağlantı kapanana kadar burada bloklar.
	go client.WritePump()
	client.ReadPump()
}
