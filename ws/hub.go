package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"memory-duel-server/config"
	"memory-duel-server/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of active connections and hands their lifecycle
// events to the room.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Room       *game.Room
	Config     *config.Config
}

// NewHub creates a new Hub bound to the shared room.
func NewHub(cfg *config.Config, room *game.Room) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Room:       room,
		Config:     cfg,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled the loop returns and no longer accepts registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("hub shutting down", "tag", "ws")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			h.Room.Actions <- game.Action{Type: game.ActionConnect, ConnID: client.ID, Send: client.Send}
			slog.Info("client connected", "tag", "ws", "conn", client.ID, "total", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				slog.Info("client disconnected", "tag", "ws", "conn", client.ID, "total", len(h.Clients))

				// Lifecycle events must never be dropped: a lost
				// disconnect would leak the seat until reset. The room
				// loop always drains, so a blocking send is safe here.
				h.Room.Actions <- game.Action{Type: game.ActionDisconnect, ConnID: client.ID}
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		ID:   uuid.NewString(),
		Send: make(chan []byte, 256),
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
