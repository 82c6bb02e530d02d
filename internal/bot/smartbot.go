package bot

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/hundred/internal/game"
)

// SmartBot plays the safe card that leaves the next seat closest to losing.
type SmartBot struct{}

func (SmartBot) Name() string { return "smart" }

func (SmartBot) Decide(s game.GameState, rng *rand.Rand) Decision {
	if len(s.Seats[s.Turn].Hand) == 0 {
		return draw(s, Smart, rng, "empty hand, drawing")
	}

	moves := safeMoves(s, Smart, rng)
	if len(moves) == 0 {
		return noSafeMove(s, Smart, rng)
	}

	// Strict comparison keeps the earliest card on ties.
	best := moves[0]
	for _, m := range moves[1:] {
		if m.pressure(s.Mode) > best.pressure(s.Mode) {
			best = m
		}
	}
	return play(s, best, fmt.Sprintf("max pressure %d→%d", s.Total, best.afterTotal))
}
