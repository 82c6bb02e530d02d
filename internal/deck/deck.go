package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/google/uuid"
)

// StandardSize is the number of non-joker cards in a deck.
const StandardSize = 52

// ErrDeckExhausted is returned when a deal runs out of cards. It indicates a
// seat/hand-size/deck-size mismatch and should never happen with valid
// configuration.
var ErrDeckExhausted = errors.New("deck is empty while dealing")

// New creates a fresh, ordered deck: one card per (suit, rank) for the four
// standard suits and thirteen ranks, followed by jokerCount jokers. Every card
// gets a unique ID.
func New(jokerCount int) []Card {
	if jokerCount < 0 {
		jokerCount = 0
	}
	cards := make([]Card, 0, StandardSize+jokerCount)

	for _, suit := range StandardSuits {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, NewCard(uuid.NewString(), suit, rank))
		}
	}
	for i := 0; i < jokerCount; i++ {
		cards = append(cards, NewJoker(uuid.NewString()))
	}

	return cards
}

// Shuffle returns a uniformly random permutation of cards (Fisher-Yates).
// The input slice is left untouched.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal deals handSize cards to each of seatCount hands, round-robin, taking
// each card from the end (top) of the deck. The remaining cards are returned
// as rest. The input slice is not modified.
func Deal(cards []Card, handSize, seatCount int) (hands [][]Card, rest []Card, err error) {
	rest = make([]Card, len(cards))
	copy(rest, cards)

	hands = make([][]Card, seatCount)
	for s := range hands {
		hands[s] = make([]Card, 0, handSize)
	}

	for r := 0; r < handSize; r++ {
		for s := 0; s < seatCount; s++ {
			card, ok := Top(rest)
			if !ok {
				return nil, nil, fmt.Errorf("deal %d×%d from %d cards: %w", handSize, seatCount, len(cards), ErrDeckExhausted)
			}
			rest = rest[:len(rest)-1]
			hands[s] = append(hands[s], card)
		}
	}

	return hands, rest, nil
}

// Top returns the top card (the tail) without removing it.
func Top(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	return cards[len(cards)-1], true
}
