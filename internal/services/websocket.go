package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client joined to one parcel conversation room
type Client struct {
	UserID   uint
	ParcelID uint
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
}

// Hub maintains the set of active clients grouped into parcel rooms
type Hub struct {
	rooms      map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.rooms[client.ParcelID] == nil {
				h.rooms[client.ParcelID] = make(map[*Client]bool)
			}
			h.rooms[client.ParcelID][client] = true
			h.mutex.Unlock()
			log.Printf("User %d joined parcel room %d", client.UserID, client.ParcelID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if room, ok := h.rooms[client.ParcelID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.Send)
					if len(room) == 0 {
						delete(h.rooms, client.ParcelID)
					}
				}
			}
			h.mutex.Unlock()
			log.Printf("User %d left parcel room %d", client.UserID, client.ParcelID)
		}
	}
}

// BroadcastToRoom sends a message to every client in a parcel room.
// Delivery is fire-and-forget: a client with a full send buffer is dropped.
func (h *Hub) BroadcastToRoom(parcelID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.rooms[parcelID] {
		select {
		case client.Send <- message:
		default:
			log.Printf("Warning: Could not send to user %d in room %d (channel full)", client.UserID, parcelID)
		}
	}
}

// RoomSize returns the number of clients in a parcel room
func (h *Hub) RoomSize(parcelID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[parcelID])
}

// WebSocket message types
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewMessageEvent is emitted into a parcel room when a chat message is created
type NewMessageEvent struct {
	MessageID  uint      `json:"messageId"`
	ParcelID   uint      `json:"parcelId"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sentAt"`
}

// SendNewMessage emits a new_message event into the parcel's room
func (h *Hub) SendNewMessage(event NewMessageEvent) {
	message := WebSocketMessage{
		Type: "new_message",
		Data: event,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling new message event: %v", err)
		return
	}

	h.BroadcastToRoom(event.ParcelID, data)
}

// HandleWebSocket upgrades the connection and joins the client to a room
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID, parcelID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		UserID:   userID,
		ParcelID: parcelID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the websocket connection; clients only listen on parcel
// rooms, so inbound frames are discarded until the connection closes.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}

	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
