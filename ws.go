package dlcf_library

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// write timeout
	writeWait = 10 * time.Second

	// pong timeout
	pongWait = 60 * time.Second

	// ping interval, must be below pongWait
	pingPeriod = (pongWait * 9) / 10

	// peer message size cap; chat bodies max out at 2000 chars plus the
	// JSON envelope
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // host app handles origin policy
	},
}

// Client is one websocket connection. A user with several tabs open holds
// several clients; room subscriptions are per connection.
type Client struct {
	hub *WsServer

	conn *websocket.Conn

	// buffered outbound queue
	send chan []byte

	UserID uint64

	Name string

	// rooms this connection subscribed to, guarded by hub.mu
	rooms map[string]bool

	// closed is set once the hub drops the connection, guarded by hub.mu.
	// Joins check it instead of the clients map because registration rides
	// a channel and may land after the first inbound frame.
	closed bool
}

// readPump moves messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.handleMessage(c, message)
	}
}

// writePump moves messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// drain whatever queued up behind this message in one frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump ping failed")
				return
			}
		}
	}
}

// WsServer is the connection hub: it tracks every client, the per-user
// connection list, and the room membership of each connection.
type WsServer struct {
	clients map[*Client]bool
	// userID -> that user's active connections (multi-device)
	userClients map[uint64][]*Client
	// room name -> subscribed connections
	rooms map[string]map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	// message callback
	onMessage func(client *Client, msg []byte)
}

func NewWsServer() *WsServer {
	return &WsServer{
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
		rooms:       make(map[string]map[*Client]bool),
	}
}

func (h *WsServer) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closed = true
				close(client.send)
				h.dropFromUserLocked(client)
				h.dropFromRoomsLocked(client)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// never mutate maps or close channels under RLock
			var toRemove []*Client
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					toRemove = append(toRemove, client)
				}
			}
			h.mu.RUnlock()

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; !ok {
						continue
					}
					delete(h.clients, client)
					client.closed = true
					h.dropFromUserLocked(client)
					h.dropFromRoomsLocked(client)
					func() {
						defer func() { _ = recover() }()
						close(client.send)
					}()
				}
				h.mu.Unlock()
			}
		}
	}
}

// dropFromUserLocked removes the client from its user's connection list.
// Caller holds h.mu.
func (h *WsServer) dropFromUserLocked(client *Client) {
	userConns, exists := h.userClients[client.UserID]
	if !exists {
		return
	}
	for i, conn := range userConns {
		if conn == client {
			h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
}

// dropFromRoomsLocked removes the client from every room it joined.
// Caller holds h.mu.
func (h *WsServer) dropFromRoomsLocked(client *Client) {
	for room := range client.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.rooms = make(map[string]bool)
}

// JoinRoom subscribes the connection to a room.
func (h *WsServer) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.closed {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
}

// LeaveRoom removes the connection from a room.
func (h *WsServer) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// InRoom reports whether the connection currently subscribes to the room.
func (h *WsServer) InRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.rooms[room]
}

// Publish delivers a message to every connection subscribed to the room.
// Slow consumers are skipped, not waited for. Sends stay under the read
// lock: send channels are only closed under the write lock, after the
// closed flag is set, so a concurrent disconnect cannot slip a closed
// channel past the flag check.
func (h *WsServer) Publish(room string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		if client.closed {
			continue
		}
		select {
		case client.send <- msg:
		default:
		}
	}
}

// BroadcastAll queues a message for every live connection.
func (h *WsServer) BroadcastAll(msg []byte) {
	h.broadcast <- msg
}

// SendToUser delivers a message to every connection of one user. Same
// locking discipline as Publish.
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.userClients[userID] {
		if client.closed {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// drop rather than block
		}
	}
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

// ServeWS upgrades the request and starts the connection's pumps.
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64, name string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		UserID: userID,
		Name:   name,
		rooms:  make(map[string]bool),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	// connection lifetime is owned by the pumps; never block the handler
}
