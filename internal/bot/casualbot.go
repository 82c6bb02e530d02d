package bot

import (
	rand "math/rand/v2"

	"github.com/lox/hundred/internal/game"
)

// casualDrawChance is how often CasualBot gambles on the deck even though it
// holds a safe card.
const casualDrawChance = 0.15

// CasualBot plays a random safe card and sometimes draws on a whim.
type CasualBot struct{}

func (CasualBot) Name() string { return "casual" }

func (CasualBot) Decide(s game.GameState, rng *rand.Rand) Decision {
	if len(s.Seats[s.Turn].Hand) == 0 {
		return draw(s, Casual, rng, "empty hand, drawing")
	}

	moves := safeMoves(s, Casual, rng)
	if len(moves) == 0 {
		return noSafeMove(s, Casual, rng)
	}

	if len(s.Deck) > 0 && rng.Float64() < casualDrawChance {
		return draw(s, Casual, rng, "speculative draw")
	}
	return play(s, moves[rng.IntN(len(moves))], "random safe card")
}
