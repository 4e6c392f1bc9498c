package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"memory-duel-server/config"
)

// newTestRoom returns a room with Alice on seat 1 and Bob on seat 2, with
// both join broadcasts already drained. Handlers are called directly instead
// of going through the actions channel, which keeps tests synchronous; the
// channel is exercised by the integration tests.
func newTestRoom(t *testing.T) (*Room, chan []byte, chan []byte) {
	t.Helper()
	r := NewRoom(config.Defaults(), rand.New(rand.NewSource(42)))

	send1 := make(chan []byte, 100)
	send2 := make(chan []byte, 100)
	r.handleConnect("conn-1", send1)
	r.handleConnect("conn-2", send2)
	r.handleJoin("conn-1", "Alice", send1)
	r.handleJoin("conn-2", "Bob", send2)
	drainChannel(send1)
	drainChannel(send2)
	return r, send1, send2
}

// setDeck puts the room into a running game with a known 4-card deck:
// dogs at 0 and 2, cats at 1 and 3, seat 1 to move.
func setDeck(r *Room) {
	r.deck = []Card{
		{Value: "🐶"}, {Value: "🐱"}, {Value: "🐶"}, {Value: "🐱"},
	}
	r.gameStarted = true
	r.activeSeat = 1
	r.pendingFlips = nil
	r.turnLocked = false
	r.scoreboard = Scoreboard{}
	r.difficulty = Easy
	r.matchID = "test-match"
}

// drainChannel reads all available messages from a channel.
func drainChannel(ch chan []byte) [][]byte {
	var msgs [][]byte
	for {
		select {
		case msg := <-ch:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", data, err)
	}
	return msg
}

func msgTypes(t *testing.T, msgs [][]byte) []string {
	t.Helper()
	types := make([]string, len(msgs))
	for i, m := range msgs {
		types[i] = decode(t, m)["type"].(string)
	}
	return types
}

func TestStartGameDealsDeck(t *testing.T) {
	r, send1, send2 := newTestRoom(t)

	r.handleStartGame("conn-1", "easy")

	if !r.gameStarted {
		t.Fatal("expected gameStarted=true")
	}
	if r.activeSeat != 1 {
		t.Errorf("expected activeSeat=1, got %d", r.activeSeat)
	}
	if len(r.deck) != 20 {
		t.Errorf("expected 20 cards, got %d", len(r.deck))
	}

	for _, ch := range []chan []byte{send1, send2} {
		msgs := drainChannel(ch)
		if len(msgs) != 1 {
			t.Fatalf("expected 1 broadcast, got %d", len(msgs))
		}
		msg := decode(t, msgs[0])
		if msg["type"] != "game_start" {
			t.Errorf("expected game_start, got %v", msg["type"])
		}
		if msg["difficulty"] != "easy" {
			t.Errorf("expected difficulty easy, got %v", msg["difficulty"])
		}
		if cards := msg["cards"].([]interface{}); len(cards) != 20 {
			t.Errorf("expected 20 cards on the wire, got %d", len(cards))
		}
		if msg["currentPlayer"].(float64) != 1 {
			t.Errorf("expected currentPlayer 1, got %v", msg["currentPlayer"])
		}
	}
}

func TestStartGameIgnoredWhileInProgress(t *testing.T) {
	r, send1, _ := newTestRoom(t)
	setDeck(r)

	r.handleStartGame("conn-2", "hard")

	if len(r.deck) != 4 {
		t.Errorf("deck should be untouched, got %d cards", len(r.deck))
	}
	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("expected no broadcast, got %v", msgTypes(t, msgs))
	}
}

func TestStartGameUnknownDifficultyFallsBackToEasy(t *testing.T) {
	r, send1, _ := newTestRoom(t)

	r.handleStartGame("conn-1", "nightmare")

	if len(r.deck) != 20 {
		t.Errorf("expected easy deck of 20 cards, got %d", len(r.deck))
	}
	msg := decode(t, drainChannel(send1)[0])
	if msg["difficulty"] != "easy" {
		t.Errorf("expected difficulty easy, got %v", msg["difficulty"])
	}
}

// Scripted scenario: two matches in a row win the 4-card game for seat 1.
func TestFlipCardMatchAndWin(t *testing.T) {
	r, send1, send2 := newTestRoom(t)
	setDeck(r)

	var gameEnds int
	var endWinnerSeat int
	r.OnGameEnd = func(matchID string, d Difficulty, p1, p2 string, scores Scoreboard, winnerSeat int) {
		gameEnds++
		endWinnerSeat = winnerSeat
		if p1 != "Alice" || p2 != "Bob" {
			t.Errorf("unexpected names in OnGameEnd: %q, %q", p1, p2)
		}
	}

	r.handleFlipCard("conn-1", 0)
	types := msgTypes(t, drainChannel(send1))
	if len(types) != 1 || types[0] != "card_flipped" {
		t.Fatalf("expected [card_flipped], got %v", types)
	}

	r.handleFlipCard("conn-1", 2)
	msgs := drainChannel(send1)
	types = msgTypes(t, msgs)
	if len(types) != 2 || types[0] != "card_flipped" || types[1] != "match_found" {
		t.Fatalf("expected [card_flipped match_found], got %v", types)
	}
	match := decode(t, msgs[1])
	matched := match["matchedCards"].([]interface{})
	if matched[0].(float64) != 0 || matched[1].(float64) != 2 {
		t.Errorf("expected matchedCards [0 2], got %v", matched)
	}
	scores := match["scores"].(map[string]interface{})
	if scores["player1"].(float64) != 1 || scores["player2"].(float64) != 0 {
		t.Errorf("expected scores {1 0}, got %v", scores)
	}
	if !r.gameStarted {
		t.Fatal("game should not be over with the cat pair unresolved")
	}
	if gameEnds != 0 {
		t.Fatal("OnGameEnd fired early")
	}

	r.handleFlipCard("conn-1", 1)
	drainChannel(send1)
	r.handleFlipCard("conn-1", 3)
	msgs = drainChannel(send1)
	types = msgTypes(t, msgs)
	if len(types) != 3 || types[1] != "match_found" || types[2] != "game_over" {
		t.Fatalf("expected [card_flipped match_found game_over], got %v", types)
	}

	over := decode(t, msgs[2])
	if over["winner"] != "Alice" {
		t.Errorf("expected winner Alice, got %v", over["winner"])
	}
	if r.gameStarted {
		t.Error("expected gameStarted=false after game over")
	}
	if gameEnds != 1 {
		t.Errorf("expected exactly one OnGameEnd call, got %d", gameEnds)
	}
	if endWinnerSeat != 1 {
		t.Errorf("expected winner seat 1, got %d", endWinnerSeat)
	}

	// Bob saw the same sequence: 4 flips, 2 matches, 1 game over.
	if n := len(drainChannel(send2)); n != 7 {
		t.Errorf("expected Bob to receive 7 broadcasts, got %d", n)
	}
}

// Scripted scenario: mismatch locks the turn, recovery flips stay allowed,
// end_turn hands over and clears the lock.
func TestFlipCardMismatchLockAndRecovery(t *testing.T) {
	r, send1, send2 := newTestRoom(t)
	setDeck(r)

	r.handleFlipCard("conn-1", 0) // 🐶
	r.handleFlipCard("conn-1", 1) // 🐱
	msgs := drainChannel(send1)
	types := msgTypes(t, msgs)
	if types[len(types)-1] != "no_match" {
		t.Fatalf("expected no_match last, got %v", types)
	}
	noMatch := decode(t, msgs[len(msgs)-1])
	flipped := noMatch["flippedCards"].([]interface{})
	if flipped[0].(float64) != 0 || flipped[1].(float64) != 1 {
		t.Errorf("expected flippedCards [0 1], got %v", flipped)
	}
	if !r.turnLocked {
		t.Fatal("expected turnLocked=true after mismatch")
	}
	if len(r.pendingFlips) != 0 {
		t.Fatalf("pendingFlips should be cleared after resolution, got %v", r.pendingFlips)
	}
	drainChannel(send2)

	// A fresh face-down flip is rejected with a targeted notice.
	r.handleFlipCard("conn-1", 2)
	types = msgTypes(t, drainChannel(send1))
	if len(types) != 1 || types[0] != "turn_locked" {
		t.Fatalf("expected targeted [turn_locked], got %v", types)
	}
	if msgs := drainChannel(send2); len(msgs) != 0 {
		t.Errorf("turn_locked must not be broadcast, Bob got %v", msgTypes(t, msgs))
	}
	if r.deck[2].Flipped {
		t.Error("locked flip must not mutate the card")
	}

	// Flipping the face-up cards back down is the allowed recovery.
	r.handleFlipCard("conn-1", 0)
	types = msgTypes(t, drainChannel(send1))
	if len(types) != 1 || types[0] != "card_flipped_face_down" {
		t.Fatalf("expected [card_flipped_face_down], got %v", types)
	}
	r.handleFlipCard("conn-1", 1)
	drainChannel(send1)
	drainChannel(send2)

	r.handleEndTurn("conn-1")
	msgs = drainChannel(send1)
	types = msgTypes(t, msgs)
	if len(types) != 1 || types[0] != "turn_change" {
		t.Fatalf("expected [turn_change], got %v", types)
	}
	change := decode(t, msgs[0])
	if change["previousPlayer"].(float64) != 1 || change["currentPlayer"].(float64) != 2 {
		t.Errorf("expected turn 1 -> 2, got %v", change)
	}
	if r.turnLocked {
		t.Error("end_turn should clear the lock")
	}
	if r.activeSeat != 2 {
		t.Errorf("expected activeSeat=2, got %d", r.activeSeat)
	}
}

func TestFlipCardOutOfTurn(t *testing.T) {
	r, send1, send2 := newTestRoom(t)
	setDeck(r)

	r.handleFlipCard("conn-2", 0)

	types := msgTypes(t, drainChannel(send2))
	if len(types) != 1 || types[0] != "invalid_turn" {
		t.Fatalf("expected targeted [invalid_turn], got %v", types)
	}
	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("invalid_turn must not be broadcast, Alice got %v", msgTypes(t, msgs))
	}
	if r.deck[0].Flipped || len(r.pendingFlips) != 0 || r.scoreboard != (Scoreboard{}) {
		t.Error("out-of-turn flip must not mutate shared state")
	}
}

func TestFlipCardIgnorableRejections(t *testing.T) {
	r, send1, _ := newTestRoom(t)

	// Game not started.
	r.handleFlipCard("conn-1", 0)
	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("expected silence before game start, got %v", msgTypes(t, msgs))
	}

	setDeck(r)

	// Out of range.
	r.handleFlipCard("conn-1", -1)
	r.handleFlipCard("conn-1", 4)
	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("expected silence for out-of-range index, got %v", msgTypes(t, msgs))
	}

	// Unregistered connection.
	r.handleFlipCard("conn-ghost", 0)
	if r.deck[0].Flipped {
		t.Error("unregistered flip must not mutate state")
	}
}

func TestMatchedCardIsImmutable(t *testing.T) {
	r, send1, _ := newTestRoom(t)
	setDeck(r)

	r.handleFlipCard("conn-1", 0)
	r.handleFlipCard("conn-1", 2)
	drainChannel(send1)

	r.handleFlipCard("conn-1", 0)
	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("expected silence for flip on matched card, got %v", msgTypes(t, msgs))
	}
	if !r.deck[0].Matched {
		t.Error("matched flag must never clear outside reset")
	}
}

func TestFaceDownFlipRemovesPendingSlot(t *testing.T) {
	r, send1, _ := newTestRoom(t)
	setDeck(r)

	r.handleFlipCard("conn-1", 0)
	if len(r.pendingFlips) != 1 {
		t.Fatalf("expected 1 pending flip, got %v", r.pendingFlips)
	}

	r.handleFlipCard("conn-1", 0) // back down
	if len(r.pendingFlips) != 0 {
		t.Fatalf("face-down flip should clear the pending slot, got %v", r.pendingFlips)
	}
	drainChannel(send1)

	// The next two flips resolve against each other, not against card 0.
	r.handleFlipCard("conn-1", 1)
	r.handleFlipCard("conn-1", 3)
	msgs := drainChannel(send1)
	types := msgTypes(t, msgs)
	if types[len(types)-1] != "match_found" {
		t.Fatalf("expected match_found, got %v", types)
	}
	match := decode(t, msgs[len(msgs)-1])
	matched := match["matchedCards"].([]interface{})
	if matched[0].(float64) != 1 || matched[1].(float64) != 3 {
		t.Errorf("expected matchedCards [1 3], got %v", matched)
	}
}

func TestGameOverTie(t *testing.T) {
	r, send1, send2 := newTestRoom(t)
	setDeck(r)

	r.handleFlipCard("conn-1", 0)
	r.handleFlipCard("conn-1", 2) // Alice matches the dogs
	r.handleEndTurn("conn-1")
	drainChannel(send1)
	drainChannel(send2)

	r.handleFlipCard("conn-2", 1)
	r.handleFlipCard("conn-2", 3) // Bob matches the cats
	msgs := drainChannel(send2)
	types := msgTypes(t, msgs)
	if types[len(types)-1] != "game_over" {
		t.Fatalf("expected game_over, got %v", types)
	}
	over := decode(t, msgs[len(msgs)-1])
	if over["winner"] != "tie" {
		t.Errorf("expected tie, got %v", over["winner"])
	}
	scores := over["scores"].(map[string]interface{})
	if scores["player1"].(float64) != 1 || scores["player2"].(float64) != 1 {
		t.Errorf("expected 1-1, got %v", scores)
	}
}

func TestEndTurnRejections(t *testing.T) {
	r, send1, send2 := newTestRoom(t)

	// Not started: silent.
	r.handleEndTurn("conn-1")
	if r.activeSeat != 1 {
		t.Errorf("activeSeat changed before game start: %d", r.activeSeat)
	}

	setDeck(r)

	// Out of turn: silent.
	r.handleEndTurn("conn-2")
	if r.activeSeat != 1 {
		t.Errorf("non-active seat ended the turn: activeSeat=%d", r.activeSeat)
	}
	if msgs := drainChannel(send2); len(msgs) != 0 {
		t.Errorf("expected silence, got %v", msgTypes(t, msgs))
	}
	drainChannel(send1)
}

func TestResetIsIdempotent(t *testing.T) {
	r, send1, _ := newTestRoom(t)
	setDeck(r)
	r.handleFlipCard("conn-1", 0)
	r.handleFlipCard("conn-1", 2)
	drainChannel(send1)

	for i := 0; i < 2; i++ {
		r.handleReset("conn-2")

		if r.gameStarted || len(r.deck) != 0 || len(r.pendingFlips) != 0 || r.turnLocked {
			t.Fatalf("reset %d left non-idle state", i+1)
		}
		if r.activeSeat != 1 {
			t.Errorf("reset %d: expected activeSeat=1, got %d", i+1, r.activeSeat)
		}
		if r.scoreboard != (Scoreboard{}) {
			t.Errorf("reset %d: scoreboard not zeroed: %+v", i+1, r.scoreboard)
		}
		for _, p := range r.registry.All() {
			if p.Score != 0 {
				t.Errorf("reset %d: player %s score not zeroed", i+1, p.Name)
			}
		}
		if r.registry.Count() != 2 {
			t.Errorf("reset %d must not remove players, count=%d", i+1, r.registry.Count())
		}

		types := msgTypes(t, drainChannel(send1))
		if len(types) != 1 || types[0] != "game_reset" {
			t.Fatalf("reset %d: expected [game_reset], got %v", i+1, types)
		}
	}
}

func TestDisconnectOfActiveSeatAdvancesTurn(t *testing.T) {
	r, send1, send2 := newTestRoom(t)
	setDeck(r)

	r.handleFlipCard("conn-1", 0)
	drainChannel(send1)
	drainChannel(send2)

	r.handleDisconnect("conn-1")

	types := msgTypes(t, drainChannel(send2))
	want := []string{"player_left", "card_flipped_face_down", "turn_change"}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, types)
		}
	}

	if r.deck[0].Flipped {
		t.Error("pending card should be flipped back down")
	}
	if len(r.pendingFlips) != 0 {
		t.Errorf("pendingFlips should be cleared, got %v", r.pendingFlips)
	}
	if r.activeSeat != 2 {
		t.Errorf("expected turn to pass to seat 2, got %d", r.activeSeat)
	}
	if r.registry.Count() != 1 {
		t.Errorf("expected 1 remaining player, got %d", r.registry.Count())
	}
}

func TestDisconnectOfWaitingSeatKeepsTurn(t *testing.T) {
	r, send1, _ := newTestRoom(t)
	setDeck(r)

	r.handleDisconnect("conn-2")

	types := msgTypes(t, drainChannel(send1))
	if len(types) != 1 || types[0] != "player_left" {
		t.Fatalf("expected only [player_left], got %v", types)
	}
	if r.activeSeat != 1 {
		t.Errorf("turn should stay with seat 1, got %d", r.activeSeat)
	}
}

func TestThirdJoinGetsRoomFull(t *testing.T) {
	r, send1, _ := newTestRoom(t)

	send3 := make(chan []byte, 10)
	r.handleJoin("conn-3", "Carol", send3)

	types := msgTypes(t, drainChannel(send3))
	if len(types) != 1 || types[0] != "room_full" {
		t.Fatalf("expected targeted [room_full], got %v", types)
	}
	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("room_full must not be broadcast, got %v", msgTypes(t, msgs))
	}
	if r.registry.Count() != 2 {
		t.Errorf("expected 2 players, got %d", r.registry.Count())
	}
}

// Broadcasts are addressed to every connected client, not just the two
// seated players. A connected-but-unseated client may start the game and
// must see the deal it triggered.
func TestBroadcastReachesUnseatedConnections(t *testing.T) {
	r, send1, _ := newTestRoom(t)

	watcher := make(chan []byte, 100)
	r.handleConnect("conn-watch", watcher)

	r.handleStartGame("conn-watch", "easy")

	for name, ch := range map[string]chan []byte{"seated": send1, "unseated": watcher} {
		types := msgTypes(t, drainChannel(ch))
		if len(types) != 1 || types[0] != "game_start" {
			t.Fatalf("%s client: expected [game_start], got %v", name, types)
		}
	}
}

func TestRejectedJoinerStillSpectates(t *testing.T) {
	r, send1, _ := newTestRoom(t)

	send3 := make(chan []byte, 100)
	r.handleConnect("conn-3", send3)
	r.handleJoin("conn-3", "Carol", send3)
	types := msgTypes(t, drainChannel(send3))
	if len(types) != 1 || types[0] != "room_full" {
		t.Fatalf("expected targeted [room_full], got %v", types)
	}

	r.handleStartGame("conn-1", "easy")
	drainChannel(send1)
	types = msgTypes(t, drainChannel(send3))
	if len(types) != 1 || types[0] != "game_start" {
		t.Fatalf("rejected joiner should still receive broadcasts, got %v", types)
	}
}

func TestDisconnectOfUnseatedConnectionIsQuiet(t *testing.T) {
	r, send1, _ := newTestRoom(t)

	watcher := make(chan []byte, 100)
	r.handleConnect("conn-watch", watcher)
	r.handleDisconnect("conn-watch")

	if msgs := drainChannel(send1); len(msgs) != 0 {
		t.Errorf("unseated disconnect must not announce player_left, got %v", msgTypes(t, msgs))
	}

	r.handleStartGame("conn-1", "easy")
	if msgs := drainChannel(watcher); len(msgs) != 0 {
		t.Errorf("disconnected watcher should receive nothing, got %v", msgTypes(t, msgs))
	}
}

func TestJoinTruncatesLongName(t *testing.T) {
	cfg := config.Defaults()
	r := NewRoom(cfg, rand.New(rand.NewSource(1)))

	send := make(chan []byte, 10)
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" // 32 chars
	r.handleJoin("conn-1", long, send)

	p := r.registry.Get("conn-1")
	if p == nil {
		t.Fatal("player not registered")
	}
	if len([]rune(p.Name)) != cfg.MaxNameLength {
		t.Errorf("expected name truncated to %d runes, got %d", cfg.MaxNameLength, len([]rune(p.Name)))
	}
}
