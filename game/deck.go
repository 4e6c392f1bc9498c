package game

import (
	"math/rand"
)

// Difficulty selects how many pairs are dealt.
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// symbols is the full alphabet; each tier deals the first PairCount entries.
var symbols = []string{
	"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨", "🐘",
	"🦁", "🐯", "🐸", "🐵", "🐔", "🐧", "🦉", "🦆", "🐢", "🐙",
}

// ParseDifficulty maps a client-supplied tag to a Difficulty.
// Unrecognized or empty tags fall back to Easy.
func ParseDifficulty(tag string) Difficulty {
	switch Difficulty(tag) {
	case Easy, Hard:
		return Difficulty(tag)
	default:
		return Easy
	}
}

// PairCount returns the number of card pairs dealt for the tier.
func (d Difficulty) PairCount() int {
	if d == Hard {
		return 20
	}
	return 10
}

// Card is a single card in the deck. Its identity is its position in the
// deck slice; cards are mutated in place and never removed.
type Card struct {
	Value   string `json:"value"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// NewDeck builds a shuffled deck of 2×PairCount cards for the given tier.
// Every symbol appears exactly twice; all cards start face-down and unmatched.
// The shuffle is a Fisher–Yates pass over the injected rng, so callers that
// need determinism (tests) can seed it.
func NewDeck(d Difficulty, rng *rand.Rand) []Card {
	pairs := d.PairCount()
	deck := make([]Card, 0, 2*pairs)
	for _, s := range symbols[:pairs] {
		deck = append(deck, Card{Value: s}, Card{Value: s})
	}

	for i := len(deck) - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	return deck
}

// allMatched reports whether every card in the deck has been matched.
// An empty deck is never considered finished.
func allMatched(deck []Card) bool {
	if len(deck) == 0 {
		return false
	}
	for _, c := range deck {
		if !c.Matched {
			return false
		}
	}
	return true
}
