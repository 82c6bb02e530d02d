package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/hundred/internal/randutil"
)

// randomAction picks any action the current seat could legally take.
func randomAction(s GameState, rng *rand.Rand) Action {
	seat := s.Turn
	hand := s.Seats[seat].Hand
	_, canDraw := s.TopOfDeck()

	if len(hand) == 0 || (canDraw && rng.IntN(4) == 0) {
		jv := 0
		if top, ok := s.TopOfDeck(); ok && top.IsJoker() {
			jv = MinJokerValue + rng.IntN(MaxJokerValue)
		}
		return DrawPlayAction(seat, jv)
	}

	idx := rng.IntN(len(hand))
	jv := 0
	if hand[idx].IsJoker() {
		jv = MinJokerValue + rng.IntN(MaxJokerValue)
	}
	return PlayHandAction(seat, idx, jv)
}

// isStuck reports the below-threshold deadlock: the seat to act has no hand
// and the deck is empty while another seat still holds cards.
func isStuck(s GameState) bool {
	_, canDraw := s.TopOfDeck()
	return len(s.CurrentSeat().Hand) == 0 && !canDraw
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	types := []GameType{GameType100, GameType200, GameType300, GameType400, GameType500, GameTypeExtra}

	for _, gt := range types {
		t.Run(gt.String(), func(t *testing.T) {
			for seed := int64(1); seed <= 60; seed++ {
				rng := randutil.New(seed)
				s, err := NewGame(SoloPlayers("p"), gt, rng)
				require.NoError(t, err)

				stuck := false
				for step := 0; step < 5000 && s.Result.IsPlaying(); step++ {
					if stuck = isStuck(s); stuck {
						break
					}
					prev := s
					action := randomAction(s, rng)

					s, err = Apply(prev, action, rng)
					require.NoError(t, err)
					require.NoError(t, CheckInvariants(s), "seed %d step %d", seed, step)
					require.Len(t, s.History, len(prev.History)+1, "every legal action resolves one play")

					last, _ := s.History.Last()
					require.Equal(t, prev.Turn, last.Seat)

					switch {
					case last.Card.IsSpadeThree() && len(prev.History) > 0 && prev.History[len(prev.History)-1].Card.IsJoker():
						joker := prev.History[len(prev.History)-1]
						require.Equal(t, joker.BeforeTotal, s.Total, "3♠ restores the pre-joker total")
						require.Equal(t, prev.Mode, s.Mode)
						require.True(t, s.Result.Status != StatusLose)
					case last.Card.IsJack():
						if s.Result.Status == StatusLose {
							require.Equal(t, prev.Mode, s.Mode)
						} else {
							require.Equal(t, prev.Mode.Toggle(), s.Mode)
						}
					default:
						require.Equal(t, prev.Mode, s.Mode)
					}

					if s.Result.IsPlaying() {
						require.Equal(t, (prev.Turn+1)%SeatCount, s.Turn)
					}
					if s.Result.Status == StatusLose {
						loser, _ := s.Result.Loser()
						require.Equal(t, prev.Turn, loser)
						require.Equal(t, prev.Turn, s.Turn)
					}
					if s.Target < RedealThreshold {
						require.Empty(t, s.SystemLogs)
					}
				}
				require.True(t, stuck || !s.Result.IsPlaying(), "seed %d did not finish", seed)
			}
		})
	}
}

func TestTerminalStateIsStable(t *testing.T) {
	rng := randutil.New(5)
	s, err := NewGame(SoloPlayers("p"), GameType100, rng)
	require.NoError(t, err)
	for s.Result.IsPlaying() && !isStuck(s) {
		s, err = Apply(s, randomAction(s, rng), rng)
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		next, err := Apply(s, randomAction(s, rng), rng)
		require.NoError(t, err)
		require.Equal(t, s, next)
	}
}
