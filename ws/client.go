package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"memory-duel-server/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the room.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	ID   string // connection ID, assigned at upgrade time
	Send chan []byte
}

// ReadPump pumps messages from the websocket connection into the room's
// actions channel. It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Info("read error", "tag", "ws", "conn", c.ID, "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage routes one inbound frame to the room. Malformed frames and
// unknown event types are ignorable client errors: dropped without a reply.
func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		slog.Debug("dropping malformed frame", "tag", "ws", "conn", c.ID, "err", err)
		return
	}

	switch envelope.Type {
	case "player_joined":
		var msg JoinMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			slog.Debug("dropping malformed player_joined", "tag", "ws", "conn", c.ID, "err", err)
			return
		}
		c.dispatch(game.Action{Type: game.ActionJoin, ConnID: c.ID, Name: msg.Name, Send: c.Send})

	case "start_game":
		var msg StartGameMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			slog.Debug("dropping malformed start_game", "tag", "ws", "conn", c.ID, "err", err)
			return
		}
		c.dispatch(game.Action{Type: game.ActionStartGame, ConnID: c.ID, Difficulty: msg.Difficulty})

	case "flip_card":
		var msg FlipCardMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			slog.Debug("dropping malformed flip_card", "tag", "ws", "conn", c.ID, "err", err)
			return
		}
		c.dispatch(game.Action{Type: game.ActionFlipCard, ConnID: c.ID, CardIndex: msg.CardID})

	case "end_turn":
		c.dispatch(game.Action{Type: game.ActionEndTurn, ConnID: c.ID})

	case "reset_game":
		c.dispatch(game.Action{Type: game.ActionResetGame, ConnID: c.ID})

	default:
		slog.Debug("dropping unknown event", "tag", "ws", "conn", c.ID, "event", envelope.Type)
	}
}

func (c *Client) dispatch(action game.Action) {
	select {
	case c.Hub.Room.Actions <- action:
	default:
		slog.Warn("room actions channel full, dropping event", "tag", "ws", "conn", c.ID)
	}
}
