package bot

import (
	rand "math/rand/v2"

	"github.com/lox/hundred/internal/game"
)

// SafeJokerMax returns the largest joker value that would not lose if played
// now, capped at game.MaxJokerValue. When no value is safe it returns
// game.MinJokerValue.
func SafeJokerMax(s game.GameState) int {
	var limit int
	if s.Mode == game.ModeUp {
		limit = s.Target - 1 - s.Total
	} else {
		limit = s.Total - 1
	}
	return max(game.MinJokerValue, min(game.MaxJokerValue, limit))
}

// JokerValue picks the value to declare for a joker. SMART declares the safe
// boundary exactly; CASUAL picks uniformly between 1 and the boundary.
func JokerValue(s game.GameState, d Difficulty, rng *rand.Rand) int {
	limit := SafeJokerMax(s)
	if d == Smart || limit == game.MinJokerValue {
		return limit
	}
	return game.MinJokerValue + rng.IntN(limit)
}

type move struct {
	handIndex  int
	jokerValue int
	afterTotal int
}

// pressure ranks a move: higher is closer to the losing edge for the next seat.
func (m move) pressure(mode game.Mode) int {
	if mode == game.ModeDown {
		return -m.afterTotal
	}
	return m.afterTotal
}

// safeMoves resolves every hand card through the rules engine and keeps the
// ones that do not lose, in hand order.
func safeMoves(s game.GameState, d Difficulty, rng *rand.Rand) []move {
	var moves []move
	for i, card := range s.Seats[s.Turn].Hand {
		jv := 0
		if card.IsJoker() {
			jv = JokerValue(s, d, rng)
		}
		effect, err := game.ApplyCardEffects(s, s.Turn, card, game.OriginHand, jv)
		if err != nil || effect.Lose {
			continue
		}
		moves = append(moves, move{handIndex: i, jokerValue: jv, afterTotal: effect.AfterTotal})
	}
	return moves
}

func draw(s game.GameState, d Difficulty, rng *rand.Rand, reasoning string) Decision {
	jv := 0
	if top, ok := s.TopOfDeck(); ok && top.IsJoker() {
		jv = JokerValue(s, d, rng)
	}
	return Decision{Action: game.DrawPlayAction(s.Turn, jv), Reasoning: reasoning}
}

func play(s game.GameState, m move, reasoning string) Decision {
	return Decision{Action: game.PlayHandAction(s.Turn, m.handIndex, m.jokerValue), Reasoning: reasoning}
}

// noSafeMove is shared by every difficulty: draw while the deck lasts,
// otherwise throw a random card.
func noSafeMove(s game.GameState, d Difficulty, rng *rand.Rand) Decision {
	if _, ok := s.TopOfDeck(); ok {
		return draw(s, d, rng, "no safe card in hand, drawing")
	}

	hand := s.Seats[s.Turn].Hand
	idx := rng.IntN(len(hand))
	jv := 0
	if hand[idx].IsJoker() {
		jv = JokerValue(s, d, rng)
	}
	return Decision{
		Action:    game.PlayHandAction(s.Turn, idx, jv),
		Reasoning: "no safe card and empty deck, playing at random",
	}
}
