package game

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// handleConnect registers a connection's send channel so broadcasts reach
// every connected client, seated or not.
func (r *Room) handleConnect(connID string, send chan []byte) {
	if send == nil {
		return
	}
	r.conns[connID] = send
}

func (r *Room) handleJoin(connID, name string, send chan []byte) {
	if runes := []rune(name); len(runes) > r.cfg.MaxNameLength {
		name = string(runes[:r.cfg.MaxNameLength])
	}

	p, err := r.registry.Join(connID, name, send)
	if err != nil {
		r.sendTo(send, RoomFullMsg{
			Type:    "room_full",
			Message: "Both seats are taken. Try again later.",
		})
		slog.Info("join rejected, room full", "tag", "room", "conn", connID)
		return
	}

	r.broadcast(PlayerJoinedMsg{
		Type:         "player_joined",
		PlayerID:     p.ID,
		PlayerNumber: p.Seat,
		PlayerName:   p.Name,
		TotalPlayers: r.registry.Count(),
	})
	slog.Info("player joined", "tag", "room", "name", p.Name, "seat", p.Seat, "total", r.registry.Count())
}

// handleStartGame deals a fresh deck. Valid from idle or game-over only;
// a start request mid-game is dropped. Any connected client may start,
// joined or not.
func (r *Room) handleStartGame(connID, difficultyTag string) {
	if r.gameStarted {
		return
	}
	if difficultyTag == "" {
		difficultyTag = r.cfg.DefaultDifficulty
	}
	d := ParseDifficulty(difficultyTag)

	r.deck = NewDeck(d, r.rng)
	r.gameStarted = true
	r.activeSeat = 1
	r.pendingFlips = nil
	r.turnLocked = false
	r.difficulty = d
	r.matchID = uuid.NewString()

	r.broadcast(GameStartMsg{
		Type:          "game_start",
		Cards:         r.deck,
		CurrentPlayer: r.activeSeat,
		PlayerID:      connID,
		Difficulty:    string(d),
	})
	slog.Info("game started", "tag", "room", "match", r.matchID, "difficulty", d, "cards", len(r.deck))
}

// handleFlipCard runs the full flip validation ladder. Rejections are either
// silent (game not running, bad index, matched card, unknown caller) or a
// targeted notice (wrong turn, locked turn); only a valid flip mutates state.
func (r *Room) handleFlipCard(connID string, cardIndex int) {
	if !r.gameStarted || cardIndex < 0 || cardIndex >= len(r.deck) {
		return
	}
	card := &r.deck[cardIndex]
	if card.Matched {
		return
	}
	p := r.registry.Get(connID)
	if p == nil {
		return
	}
	if p.Seat != r.activeSeat {
		r.sendTo(p.Send, InvalidTurnMsg{
			Type:          "invalid_turn",
			Message:       "It is not your turn.",
			CurrentPlayer: r.activeSeat,
		})
		return
	}
	// Flipping a face-up card back down is the recovery action after a
	// mismatch, so it stays allowed while the turn is locked.
	if r.turnLocked && !card.Flipped {
		r.sendTo(p.Send, TurnLockedMsg{
			Type:    "turn_locked",
			Message: "No match! Flip the face-up cards back before ending your turn.",
		})
		return
	}

	if card.Flipped {
		card.Flipped = false
		r.removePending(cardIndex)
		r.broadcast(CardFlippedFaceDownMsg{
			Type:       "card_flipped_face_down",
			CardID:     cardIndex,
			PlayerID:   p.ID,
			PlayerName: p.Name,
		})
		return
	}

	card.Flipped = true
	r.pendingFlips = append(r.pendingFlips, cardIndex)
	r.broadcast(CardFlippedMsg{
		Type:       "card_flipped",
		CardID:     cardIndex,
		CardValue:  card.Value,
		PlayerID:   p.ID,
		PlayerName: p.Name,
	})

	if len(r.pendingFlips) == 2 {
		r.resolveFlips(p)
	}
}

// resolveFlips compares the two pending cards and settles the turn, all
// within the same event as the second flip.
func (r *Room) resolveFlips(p *Player) {
	first, second := r.pendingFlips[0], r.pendingFlips[1]
	a, b := &r.deck[first], &r.deck[second]
	r.pendingFlips = nil

	if a.Value != b.Value {
		r.turnLocked = true
		r.broadcast(NoMatchMsg{
			Type:         "no_match",
			FlippedCards: []int{first, second},
			Message:      "No match! Flip the cards back manually and pass your turn to the next player.",
		})
		return
	}

	a.Matched = true
	b.Matched = true
	p.Score++
	r.addSeatScore(p.Seat)

	r.broadcast(MatchFoundMsg{
		Type:         "match_found",
		MatchedCards: []int{first, second},
		CardValue:    a.Value,
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		Scores:       r.scoreboard,
	})

	if allMatched(r.deck) {
		r.finishGame()
	}
}

func (r *Room) finishGame() {
	r.gameStarted = false

	var winnerSeat int
	switch {
	case r.scoreboard.Player1 > r.scoreboard.Player2:
		winnerSeat = 1
	case r.scoreboard.Player2 > r.scoreboard.Player1:
		winnerSeat = 2
	}

	winner := "tie"
	message := "It's a tie!"
	if winnerSeat != 0 {
		winner = r.seatName(winnerSeat)
		message = winner + " wins the game!"
	}

	r.broadcast(GameOverMsg{
		Type:    "game_over",
		Winner:  winner,
		Scores:  r.scoreboard,
		Message: message,
	})
	slog.Info("game over", "tag", "room", "match", r.matchID, "winner", winner,
		"player1", r.scoreboard.Player1, "player2", r.scoreboard.Player2)

	if r.OnGameEnd != nil {
		r.OnGameEnd(r.matchID, r.difficulty, r.seatName(1), r.seatName(2), r.scoreboard, winnerSeat)
	}
}

// handleEndTurn passes the turn to the other seat. Only the active seat may
// end its turn; anything else is silently dropped.
func (r *Room) handleEndTurn(connID string) {
	if !r.gameStarted {
		return
	}
	p := r.registry.Get(connID)
	if p == nil || p.Seat != r.activeSeat {
		return
	}

	previous := r.activeSeat
	r.activeSeat = 3 - previous
	r.turnLocked = false

	r.broadcast(TurnChangeMsg{
		Type:           "turn_change",
		CurrentPlayer:  r.activeSeat,
		PreviousPlayer: previous,
	})
}

// handleReset returns the room to its idle state. Valid from any state and
// idempotent. Players stay registered but their scores are zeroed.
func (r *Room) handleReset(connID string) {
	r.deck = nil
	r.gameStarted = false
	r.pendingFlips = nil
	r.turnLocked = false
	r.scoreboard = Scoreboard{}
	r.activeSeat = 1
	r.difficulty = ""
	r.matchID = ""
	for _, p := range r.registry.All() {
		p.Score = 0
	}

	r.broadcast(GameResetMsg{
		Type:    "game_reset",
		Message: "Game has been reset. Start a new game when ready.",
	})
	slog.Info("game reset", "tag", "room", "by", connID)
}

// handleDisconnect drops the connection from the broadcast set, removes the
// player if seated and, when the departing player held the turn mid-game,
// cleans up their unresolved flips and passes the turn so the remaining
// player is never stalled behind a vacated seat.
func (r *Room) handleDisconnect(connID string) {
	delete(r.conns, connID)
	p := r.registry.Leave(connID)
	if p == nil {
		return
	}

	r.broadcast(PlayerLeftMsg{
		Type:         "player_left",
		PlayerID:     p.ID,
		PlayerNumber: p.Seat,
		TotalPlayers: r.registry.Count(),
	})
	slog.Info("player left", "tag", "room", "name", p.Name, "seat", p.Seat, "remaining", r.registry.Count())

	if !r.gameStarted || p.Seat != r.activeSeat {
		return
	}

	for _, idx := range r.pendingFlips {
		r.deck[idx].Flipped = false
		r.broadcast(CardFlippedFaceDownMsg{
			Type:       "card_flipped_face_down",
			CardID:     idx,
			PlayerID:   p.ID,
			PlayerName: p.Name,
		})
	}
	r.pendingFlips = nil
	r.turnLocked = false

	previous := r.activeSeat
	r.activeSeat = 3 - previous
	r.broadcast(TurnChangeMsg{
		Type:           "turn_change",
		CurrentPlayer:  r.activeSeat,
		PreviousPlayer: previous,
	})
}

func (r *Room) addSeatScore(seat int) {
	if seat == 1 {
		r.scoreboard.Player1++
	} else {
		r.scoreboard.Player2++
	}
}

func (r *Room) removePending(cardIndex int) {
	for i, idx := range r.pendingFlips {
		if idx == cardIndex {
			r.pendingFlips = append(r.pendingFlips[:i], r.pendingFlips[i+1:]...)
			return
		}
	}
}

// seatName resolves a seat to a display name, falling back to the default
// when the seat is vacant (e.g. the player left before game over).
func (r *Room) seatName(seat int) string {
	if p := r.registry.BySeat(seat); p != nil {
		return p.Name
	}
	return fmt.Sprintf("Player %d", seat)
}
