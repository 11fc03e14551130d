package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum mesaj boyutu (byte).
	// Subscribe listesi en fazla maxSubscriptions ID taşır.
	maxMessageSize = 16384

	// maxSubscriptions: Bir bağlantının abone olabileceği en fazla kanal sayısı.
	maxSubscriptions = 500

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	// Buffer doluysa (client yavaş) client disconnect edilir.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine vardır:
// - ReadPump: Client'dan gelen mesajları okur
// - WritePump: Hub'dan gelen mesajları client'a yazar
//
// gorilla/websocket aynı anda sadece bir okuma ve bir yazma işlemi destekler.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string // bağlantı ID'si (uuid)
	subject string // token subject'i
	send    chan []byte
	mu      sync.Mutex // conn.WriteMessage çağrılarını korur

	// subscriptions: boşsa client tüm kanalların event'lerini alır.
	subMu         sync.RWMutex
	subscriptions map[models.Snowflake]struct{}
}

// subscribedToAny, client'ın kanallardan birine abone olup olmadığını döner.
func (c *Client) subscribedToAny(channelIDs []models.Snowflake) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	if len(c.subscriptions) == 0 {
		return true
	}
	for _, id := range channelIDs {
		if _, ok := c.subscriptions[id]; ok {
			return true
		}
	}
	return false
}

// setSubscriptions, aboneliği verilen kanallarla değiştirir.
func (c *Client) setSubscriptions(channelIDs []models.Snowflake) {
	subs := make(map[models.Snowflake]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		subs[id] = struct{}{}
	}

	c.subMu.Lock()
	c.subscriptions = subs
	c.subMu.Unlock()
}

// ReadPump, WebSocket bağlantısından gelen mesajları okur ve işler.
// Bağlantı kapanana kadar bloklar; kapanınca client'ı Hub'dan çıkarır.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for %s: %v", c.id, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for %s: %v", c.id, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from %s: %v", c.id, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, client'dan gelen event'leri türüne göre işler.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for %s: %v", c.id, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpSubscribe:
		c.handleSubscribe(event)

	default:
		log.Printf("[ws] unknown op from %s: %s", c.id, event.Op)
	}
}

// handleSubscribe, client'ın kanal aboneliğini günceller.
//
// event.Data tipi `any`: JSON'a çevirip tekrar parse etmek en güvenli yöntem.
func (c *Client) handleSubscribe(event Event) {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var data SubscribeData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		log.Printf("[ws] invalid subscribe payload from %s: %v", c.id, err)
		return
	}

	if len(data.ChannelIDs) > maxSubscriptions {
		log.Printf("[ws] subscribe from %s exceeds %d channels, ignoring", c.id, maxSubscriptions)
		return
	}

	c.setSubscriptions(data.ChannelIDs)
}

// sendEvent, client'a tek bir event gönderir.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for %s: %v", c.id, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[ws] send buffer full for %s, dropping connection", c.id)
		go c.hub.drop(c)
	}
}

// WritePump, Hub'dan gelen mesajları WebSocket bağlantısına yazar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			// Channel kapatıldı: Hub client'ı çıkardı
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, WebSocket'e mesaj yazar (mutex ile korunur).
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
