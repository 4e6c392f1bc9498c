package game

// Server-to-client notification payloads. Every message carries a "type"
// discriminator so the presentation client can route it.

// Scoreboard is the per-seat pair-match tally included in match and
// game-over notifications.
type Scoreboard struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// PlayerJoinedMsg announces a new player to everyone in the room.
type PlayerJoinedMsg struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	PlayerName   string `json:"playerName"`
	TotalPlayers int    `json:"totalPlayers"`
}

// PlayerLeftMsg announces a departure to everyone in the room.
type PlayerLeftMsg struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	TotalPlayers int    `json:"totalPlayers"`
}

// RoomFullMsg is sent to a joiner when both seats are already taken.
type RoomFullMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GameStartMsg deals the full deck to everyone. Card values are visible on
// the wire; hiding them from the client is not a goal of this design.
type GameStartMsg struct {
	Type          string `json:"type"`
	Cards         []Card `json:"cards"`
	CurrentPlayer int    `json:"currentPlayer"`
	PlayerID      string `json:"playerId"`
	Difficulty    string `json:"difficulty"`
}

// CardFlippedMsg announces a card turned face-up.
type CardFlippedMsg struct {
	Type       string `json:"type"`
	CardID     int    `json:"cardId"`
	CardValue  string `json:"cardValue"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// CardFlippedFaceDownMsg announces a card turned back face-down.
type CardFlippedFaceDownMsg struct {
	Type       string `json:"type"`
	CardID     int    `json:"cardId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// MatchFoundMsg announces a resolved pair.
type MatchFoundMsg struct {
	Type         string     `json:"type"`
	MatchedCards []int      `json:"matchedCards"`
	CardValue    string     `json:"cardValue"`
	PlayerID     string     `json:"playerId"`
	PlayerName   string     `json:"playerName"`
	Scores       Scoreboard `json:"scores"`
}

// NoMatchMsg announces a failed pair. The cards stay face-up; the active
// player must flip them back manually before ending the turn.
type NoMatchMsg struct {
	Type         string `json:"type"`
	FlippedCards []int  `json:"flippedCards"`
	Message      string `json:"message"`
}

// InvalidTurnMsg is a targeted rejection for a flip out of turn.
type InvalidTurnMsg struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	CurrentPlayer int    `json:"currentPlayer"`
}

// TurnLockedMsg is a targeted rejection for a fresh flip while the turn is
// locked after a mismatch.
type TurnLockedMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TurnChangeMsg announces the active seat passing to the other player.
type TurnChangeMsg struct {
	Type           string `json:"type"`
	CurrentPlayer  int    `json:"currentPlayer"`
	PreviousPlayer int    `json:"previousPlayer"`
}

// GameOverMsg announces the end of a game. Winner is the winning player's
// display name, or "tie" when the scores are equal.
type GameOverMsg struct {
	Type    string     `json:"type"`
	Winner  string     `json:"winner"`
	Scores  Scoreboard `json:"scores"`
	Message string     `json:"message"`
}

// GameResetMsg announces that the room was reset to its idle state.
type GameResetMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
