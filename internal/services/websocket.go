package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WebSocket event names pushed to subscribers.
const (
	EventNewRide              = "new-ride"
	EventRideAccepted         = "ride-accepted"
	EventRideStarted          = "ride-started"
	EventRideCompleted        = "ride-completed"
	EventRideCancelled        = "ride-cancelled"
	EventDriverLocationUpdate = "driver-location-update"
)

// Client-originated event names.
const (
	EventJoinRide       = "join-ride"
	EventDriverLocation = "driver-location"
)

// RideChannel returns the scoped channel name for one ride.
func RideChannel(rideID uint) string {
	return fmt.Sprintf("ride-%d", rideID)
}

// WebSocketMessage is the envelope for every event on the wire.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client represents one WebSocket connection.
type Client struct {
	ID     string // connection id, not user id
	UserID uint
	Role   string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

type joinRequest struct {
	client  *Client
	channel string
}

// Hub maintains the set of active clients and the ride-scoped channels they
// have joined. It is process-wide state owned by a single goroutine plus a
// mutex for the broadcast paths; membership is pruned on disconnect.
type Hub struct {
	clients    map[*Client]bool
	channels   map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		channels:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s connected (user %d, %s)", client.ID, client.UserID, client.Role)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.removeFromChannelsLocked(client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client %s disconnected", client.ID)

		case req := <-h.join:
			h.mutex.Lock()
			if _, ok := h.clients[req.client]; ok {
				if h.channels[req.channel] == nil {
					h.channels[req.channel] = make(map[*Client]bool)
				}
				h.channels[req.channel][req.client] = true
			}
			h.mutex.Unlock()
		}
	}
}

// removeFromChannelsLocked prunes a client from every channel. Caller holds the lock.
func (h *Hub) removeFromChannelsLocked(client *Client) {
	for name, members := range h.channels {
		delete(members, client)
		if len(members) == 0 {
			delete(h.channels, name)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinChannel subscribes a client to a string-keyed channel. There is no
// authentication on join.
func (h *Hub) JoinChannel(client *Client, channel string) {
	h.join <- joinRequest{client: client, channel: channel}
}

// BroadcastToChannel delivers a message to every current member of a channel.
// Delivery is fire-and-forget: slow clients are dropped, nothing is queued
// for disconnected ones.
func (h *Hub) BroadcastToChannel(channel string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.channels[channel] {
		select {
		case client.Send <- message:
		default:
			log.Printf("Warning: could not send to client %s (channel full)", client.ID)
		}
	}
}

// BroadcastToRole sends a message to every connected client with the given role.
func (h *Hub) BroadcastToRole(role string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.Role != role {
			continue
		}
		select {
		case client.Send <- message:
		default:
			log.Printf("Warning: could not send to client %s (channel full)", client.ID)
		}
	}
}

// BroadcastToUser sends a message to every connection of a specific user.
func (h *Hub) BroadcastToUser(userID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			log.Printf("Warning: could not send to client %s (channel full)", client.ID)
		}
	}
}

// ChannelSize returns the current member count of a channel.
func (h *Hub) ChannelSize(channel string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.channels[channel])
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Emit marshals an event envelope and delivers it to a ride's channel.
func (h *Hub) Emit(channel, event string, data interface{}) {
	message, err := json.Marshal(WebSocketMessage{Type: event, Data: data})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event, err)
		return
	}
	h.BroadcastToChannel(channel, message)
}

// EmitToRole marshals an event envelope and delivers it to every client of a role.
func (h *Hub) EmitToRole(role, event string, data interface{}) {
	message, err := json.Marshal(WebSocketMessage{Type: event, Data: data})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event, err)
		return
	}
	h.BroadcastToRole(role, message)
}

// HandleWebSocket upgrades an authenticated request and runs the connection pumps.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
	}

	client.Hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshaling WebSocket message: %v", err)
			continue
		}

		switch wsMessage.Type {
		case EventJoinRide:
			c.handleJoinRide(wsMessage.Data)
		case EventDriverLocation:
			c.handleDriverLocation(wsMessage.Data)
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

// handleJoinRide subscribes the connection to a ride's scoped channel.
func (c *Client) handleJoinRide(data interface{}) {
	var payload struct {
		RideID uint `json:"rideId"`
	}
	raw, err := json.Marshal(data)
	if err != nil || json.Unmarshal(raw, &payload) != nil || payload.RideID == 0 {
		log.Printf("Client %s sent malformed join-ride payload", c.ID)
		return
	}
	c.Hub.JoinChannel(c, RideChannel(payload.RideID))
}

// handleDriverLocation rebroadcasts a live location report to the ride channel.
// This is the realtime twin of the REST location endpoint; last received wins.
func (c *Client) handleDriverLocation(data interface{}) {
	var payload struct {
		RideID uint    `json:"rideId"`
		Lat    float64 `json:"lat"`
		Lng    float64 `json:"lng"`
	}
	raw, err := json.Marshal(data)
	if err != nil || json.Unmarshal(raw, &payload) != nil || payload.RideID == 0 {
		log.Printf("Client %s sent malformed driver-location payload", c.ID)
		return
	}

	c.Hub.Emit(RideChannel(payload.RideID), EventDriverLocationUpdate, map[string]interface{}{
		"rideId": payload.RideID,
		"lat":    payload.Lat,
		"lng":    payload.Lng,
	})
}
