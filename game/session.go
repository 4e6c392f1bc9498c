package game

import (
	"errors"
	"fmt"
)

// ErrRoomFull is returned by Registry.Join when every seat is taken.
var ErrRoomFull = errors.New("room is full")

// Player is one registered connection in the room.
type Player struct {
	ID    string // connection ID assigned by the hub
	Name  string
	Seat  int // 1 or 2
	Score int
	Send  chan []byte // reference to the client's send channel
}

// Registry maps connection IDs to players and owns seat assignment.
type Registry struct {
	players  map[string]*Player
	maxSeats int
}

// NewRegistry creates an empty registry with the given seat count.
func NewRegistry(maxSeats int) *Registry {
	return &Registry{
		players:  make(map[string]*Player),
		maxSeats: maxSeats,
	}
}

// Join registers a connection and assigns it the lowest free seat.
// An empty name defaults to "Player {seat}". Returns ErrRoomFull when
// every seat is occupied.
func (r *Registry) Join(connID, name string, send chan []byte) (*Player, error) {
	seat := r.lowestFreeSeat()
	if seat == 0 {
		return nil, ErrRoomFull
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", seat)
	}
	p := &Player{
		ID:   connID,
		Name: name,
		Seat: seat,
		Send: send,
	}
	r.players[connID] = p
	return p, nil
}

// Leave removes and returns the player for connID, or nil if not registered.
func (r *Registry) Leave(connID string) *Player {
	p, ok := r.players[connID]
	if !ok {
		return nil
	}
	delete(r.players, connID)
	return p
}

// Get returns the player for connID, or nil if not registered.
func (r *Registry) Get(connID string) *Player {
	return r.players[connID]
}

// BySeat returns the player holding the given seat, or nil if vacant.
func (r *Registry) BySeat(seat int) *Player {
	for _, p := range r.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// Count returns the number of registered players.
func (r *Registry) Count() int {
	return len(r.players)
}

// All returns every registered player in no particular order.
func (r *Registry) All() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}

func (r *Registry) lowestFreeSeat() int {
	for seat := 1; seat <= r.maxSeats; seat++ {
		if r.BySeat(seat) == nil {
			return seat
		}
	}
	return 0
}
