package bot

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/hundred/internal/game"
)

// DefaultStepLimit caps one run of consecutive NPC turns.
const DefaultStepLimit = 200

var (
	// ErrStepLimit is returned when NPC seats are still to act after limit
	// steps. The returned state is valid and may be resumed.
	ErrStepLimit = errors.New("npc step limit reached")
	// ErrStalled is returned when an NPC action did not change the game,
	// which happens when the seat to act has no hand and the deck is empty.
	ErrStalled = errors.New("npc action did not advance the game")
)

// Autoplay plays NPC turns from s until a human seat is to act, the game is
// over, limit steps have been played or ctx is done. It returns the last state
// and every state produced along the way, in order, for the caller to replay.
func Autoplay(ctx context.Context, s game.GameState, d Difficulty, rng *rand.Rand, limit int) (game.GameState, []game.GameState, error) {
	var steps []game.GameState

	for range limit {
		if !s.Result.IsPlaying() || s.CurrentSeat().Kind != game.NPC {
			return s, steps, nil
		}
		if err := ctx.Err(); err != nil {
			return s, steps, err
		}

		action := ChooseAction(s, d, rng)
		next, err := game.Apply(s, action, rng)
		if err != nil {
			return s, steps, fmt.Errorf("npc seat %d played %s: %w", s.Turn, action, err)
		}
		if next.Key() == s.Key() {
			return s, steps, ErrStalled
		}

		s = next
		steps = append(steps, s)
	}

	if s.Result.IsPlaying() && s.CurrentSeat().Kind == game.NPC {
		return s, steps, ErrStepLimit
	}
	return s, steps, nil
}
