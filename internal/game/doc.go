// Package game implements the deterministic state machine of the 100 Game.
//
// Four seats take turns playing cards that move a running total. In UP mode
// cards add and the seat that brings the total to the target or above loses;
// in DOWN mode cards subtract and the seat that brings it to zero or below
// loses. Jacks reverse the mode, a joker is worth a declared 1..49, and the
// 3 of spades played right after a joker cancels it.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	s, err := game.NewGame(game.SoloPlayers("Alice"), game.GameType100, rng)
//	if err != nil {
//	    return err
//	}
//	s, err = game.Apply(s, game.PlayHandAction(s.Turn, 0, 0), rng)
//
// # State
//
// GameState is a value. Apply never modifies its input and always returns a
// new state, so callers can keep earlier states around (for frame replay, or
// to discard a stale decision) without copying. The only randomness used
// after setup is the redeal shuffle, drawn from the *rand.Rand passed to
// Apply.
//
// Invalid actions are no-ops rather than errors. The one error Apply returns
// is ErrInvalidJokerValue, which is a caller contract violation: a joker
// must be declared before the action is applied.
//
// # Redeal and Void
//
// Games with a target of 200 or more refill hands from the shuffled discard
// pile when the deck runs out and a hand is empty. A game voids when nobody
// can act any more. CheckInvariants verifies card conservation and that
// History.Replay reproduces the running total.
package game
