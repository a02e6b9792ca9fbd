package services

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Event представляет событие журнала склада, рассылаемое подписчикам гильдии
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client представляет подключенного подписчика событий
type Client struct {
	ID       uint
	UserID   int64
	GuildID  int64
	Conn     *websocket.Conn
	Send     chan Event
	Hub      *Hub
	LastPing time.Time
}

// Hub управляет всеми подключениями. События расходятся строго внутри
// своей гильдии: подписчик видит только журнал той гильдии, чей токен
// он предъявил при подключении.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub создает новый хаб событий
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run запускает хаб
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			log.Printf("Client %d connected to guild %d feed. Total clients: %d",
				client.UserID, client.GuildID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()

			log.Printf("Client %d disconnected. Total clients: %d",
				client.UserID, len(h.clients))
		}
	}
}

// PublishToGuild рассылает событие всем подписчикам одной гильдии
func (h *Hub) PublishToGuild(guildID int64, event Event) {
	h.mutex.RLock()
	for client := range h.clients {
		if client.GuildID == guildID {
			select {
			case client.Send <- event:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
	h.mutex.RUnlock()
}

// HandleWebSocket обрабатывает WebSocket соединение
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	// Получаем JWT токен из query параметров
	tokenString := c.Query("token")
	if tokenString == "" {
		c.Close()
		return
	}

	secretKey := os.Getenv("JWT_SECRET")
	if secretKey == "" {
		secretKey = "larder-secret-key-change-in-production"
	}

	// Парсим JWT токен
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})

	if err != nil || !token.Valid {
		c.Close()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.Close()
		return
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		c.Close()
		return
	}

	guildIDFloat, ok := claims["guild_id"].(float64)
	if !ok {
		c.Close()
		return
	}

	// Создаем клиента
	client := &Client{
		ID:       uint(time.Now().UnixNano()),
		UserID:   int64(userIDFloat),
		GuildID:  int64(guildIDFloat),
		Conn:     c,
		Send:     make(chan Event, 256),
		Hub:      h,
		LastPing: time.Now(),
	}

	// Регистрируем клиента
	h.register <- client

	// Запускаем горутины для чтения и записи
	go client.writePump()
	go client.readPump()
}

// readPump читает сообщения из WebSocket
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		var event Event
		err := c.Conn.ReadJSON(&event)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(event)
	}
}

// writePump записывает сообщения в WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage обрабатывает входящие сообщения. Подписчики событий
// только слушают, единственное входящее сообщение это ping.
func (c *Client) handleMessage(event Event) {
	switch event.Type {
	case "ping":
		c.handlePing()
	}
}

// handlePing отвечает pong тому же клиенту
func (c *Client) handlePing() {
	pong := Event{
		Type: "pong",
		Payload: map[string]interface{}{
			"timestamp": time.Now().Unix(),
		},
	}

	select {
	case c.Send <- pong:
	default:
	}
}
