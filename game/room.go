package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"memory-duel-server/config"
	"memory-duel-server/wsutil"
)

// ActionType enumerates the kinds of events the room can process.
type ActionType int

const (
	ActionConnect ActionType = iota
	ActionJoin
	ActionStartGame
	ActionFlipCard
	ActionEndTurn
	ActionResetGame
	ActionDisconnect
)

// Action is one inbound event sent into the room's actions channel.
type Action struct {
	Type       ActionType
	ConnID     string
	Name       string      // for ActionJoin
	Difficulty string      // for ActionStartGame
	CardIndex  int         // for ActionFlipCard
	Send       chan []byte // for ActionConnect and ActionJoin: the client's send channel
}

// Room owns the single shared game session for the process: the registry,
// the deck and all turn state. Every inbound event goes through the Actions
// channel and is applied by Run one at a time, so the multi-step flip
// resolution never interleaves with another event.
type Room struct {
	registry *Registry
	cfg      *config.Config
	rng      *rand.Rand

	// conns holds the send channel of every connected client, seated or
	// not. Broadcasts fan out over this set; targeted notices go through
	// the player's own channel.
	conns map[string]chan []byte

	deck         []Card
	activeSeat   int
	pendingFlips []int
	turnLocked   bool
	scoreboard   Scoreboard
	gameStarted  bool
	difficulty   Difficulty
	matchID      string

	Actions chan Action

	// OnGameEnd is called after a game_over broadcast with the final result.
	// winnerSeat is 1, 2, or 0 for a tie. Optional; may be nil.
	OnGameEnd func(matchID string, difficulty Difficulty, player1Name, player2Name string, scores Scoreboard, winnerSeat int)
}

// NewRoom creates the room. A nil rng gets a time-seeded source; tests pass
// a seeded one for deterministic decks.
func NewRoom(cfg *config.Config, rng *rand.Rand) *Room {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Room{
		registry:   NewRegistry(cfg.MaxPlayers),
		cfg:        cfg,
		rng:        rng,
		conns:      make(map[string]chan []byte),
		activeSeat: 1,
		Actions:    make(chan Action, 64),
	}
}

// Run is the room's main loop. It processes actions sequentially until ctx
// is cancelled. Should be run as a goroutine.
func (r *Room) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("room shutting down", "tag", "room")
			return
		case action := <-r.Actions:
			r.apply(action)
		}
	}
}

func (r *Room) apply(action Action) {
	switch action.Type {
	case ActionConnect:
		r.handleConnect(action.ConnID, action.Send)
	case ActionJoin:
		r.handleJoin(action.ConnID, action.Name, action.Send)
	case ActionStartGame:
		r.handleStartGame(action.ConnID, action.Difficulty)
	case ActionFlipCard:
		r.handleFlipCard(action.ConnID, action.CardIndex)
	case ActionEndTurn:
		r.handleEndTurn(action.ConnID)
	case ActionResetGame:
		r.handleReset(action.ConnID)
	case ActionDisconnect:
		r.handleDisconnect(action.ConnID)
	}
}

// broadcast marshals msg and fans it out to every connected client,
// whether or not it holds a seat. Sends are fire-and-forget; a slow or
// closed client never blocks the room.
func (r *Room) broadcast(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling broadcast", "tag", "room", "err", err)
		return
	}
	for _, send := range r.conns {
		wsutil.SafeSend(send, data)
	}
}

// sendTo marshals msg and delivers it to a single send channel.
func (r *Room) sendTo(send chan []byte, msg interface{}) {
	if send == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling targeted message", "tag", "room", "err", err)
		return
	}
	wsutil.SafeSend(send, data)
}
