package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// EventPublisher, service katmanının WebSocket event'leri broadcast etmek için
// kullandığı interface.
//
// Service'ler Hub'ın concrete struct'ına değil bu interface'e bağımlıdır;
// testlerde kaydedici bir fake kullanılır.
type EventPublisher interface {
	BroadcastToAll(event Event)
	BroadcastToChannels(channelIDs []models.Snowflake, event Event)
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Bir event olduğunda Hub, ilgili tüm client'lara bildirim gönderir.
// Run() goroutine'i register/unregister channel'larından `select` ile okur.
type Hub struct {
	// clients: token subject → Client set (aynı token ile birden fazla bağlantı olabilir).
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	// seq: Her outbound event'e verilen artan sayaç.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
// Shutdown çağrılınca döner.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-h.stop:
			return
		}
	}
}

// addClient, yeni bir client'ı Hub'a ekler.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.subject]; !ok {
		h.clients[client.subject] = make(map[*Client]bool)
	}
	h.clients[client.subject][client] = true

	log.Printf("[ws] client connected: subject=%s id=%s (connections for subject: %d)",
		client.subject, client.id, len(h.clients[client.subject]))
}

// removeClient, bir client'ı Hub'dan çıkarır ve send channel'ını kapatır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.subject]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.subject)
	}
	log.Printf("[ws] client disconnected: subject=%s id=%s", client.subject, client.id)
}

// BroadcastToAll, tüm bağlı client'lara event gönderir.
func (h *Hub) BroadcastToAll(event Event) {
	h.broadcast(event, func(*Client) bool { return true })
}

// BroadcastToChannels, event'i verilen kanallardan en az birine abone olan
// client'lara gönderir. Aboneliği olmayan client'lar her şeyi alır.
func (h *Hub) BroadcastToChannels(channelIDs []models.Snowflake, event Event) {
	if len(channelIDs) == 0 {
		return
	}
	h.broadcast(event, func(c *Client) bool { return c.subscribedToAny(channelIDs) })
}

func (h *Hub) broadcast(event Event, accept func(*Client) bool) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event %s: %v", event.Op, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			if !accept(client) {
				continue
			}
			select {
			case client.send <- data:
			default:
				// Buffer dolu: bu client yavaş, kapat
				go h.drop(client)
			}
		}
	}
}

// drop, client'ı unregister eder; Hub durmuşsa bloklamaz.
func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// ConnectionCount, açık bağlantı sayısını döner (health endpoint'i için).
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// Shutdown, tüm client bağlantılarını kapatır ve Run loop'unu durdurur (graceful shutdown).
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stop)

		h.mu.Lock()
		defer h.mu.Unlock()

		for _, clients := range h.clients {
			for client := range clients {
				close(client.send)
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		log.Println("[ws] hub shut down, all connections closed")
	})
}
