package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hundred/internal/deck"
	"github.com/lox/hundred/internal/randutil"
)

func TestNewGame(t *testing.T) {
	s, err := NewGame(SoloPlayers("Alice"), GameType200, randutil.New(3))
	require.NoError(t, err)

	assert.Equal(t, 200, s.Target)
	assert.Equal(t, 0, s.Turn)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, ModeUp, s.Mode)
	assert.True(t, s.Result.IsPlaying())
	assert.Nil(t, s.LastCard)
	assert.NotNil(t, s.History)
	assert.NotNil(t, s.Discard)
	assert.NotNil(t, s.SystemLogs)

	for i, seat := range s.Seats {
		assert.Len(t, seat.Hand, HandSize, "seat %d", i)
	}
	assert.Equal(t, Human, s.Seats[0].Kind)
	assert.Equal(t, "Alice", s.Seats[0].Name)
	assert.Equal(t, NPC, s.Seats[3].Kind)
	assert.Equal(t, "NPC3", s.Seats[3].Name)

	assert.Len(t, s.Deck, deck.StandardSize+DefaultJokerCount-SeatCount*HandSize)
	require.NoError(t, CheckInvariants(s))
}

func TestNewGameSameSeedSameDeal(t *testing.T) {
	codes := func(s GameState) []string {
		var out []string
		for _, seat := range s.Seats {
			for _, c := range seat.Hand {
				out = append(out, c.String())
			}
		}
		for _, c := range s.Deck {
			out = append(out, c.String())
		}
		return out
	}

	a, err := NewGame(SoloPlayers("a"), GameTypeExtra, randutil.New(11))
	require.NoError(t, err)
	b, err := NewGame(SoloPlayers("a"), GameTypeExtra, randutil.New(11))
	require.NoError(t, err)

	assert.Equal(t, a.Target, b.Target)
	assert.Equal(t, codes(a), codes(b))
}

func TestNewGameExtraTarget(t *testing.T) {
	seen := map[int]bool{}
	for seed := int64(0); seed < 50; seed++ {
		s, err := NewGame(SoloPlayers("x"), GameTypeExtra, randutil.New(seed))
		require.NoError(t, err)
		assert.Contains(t, ExtraCandidates, s.Target)
		seen[s.Target] = true
	}
	assert.Greater(t, len(seen), 1, "EXTRA should not always pick the same target")
}

func TestNewGameOptions(t *testing.T) {
	s, err := NewGame(SoloPlayers("x"), GameTypeExtra, randutil.New(1), WithTarget(300), WithJokerCount(2))
	require.NoError(t, err)

	assert.Equal(t, 300, s.Target)
	assert.Equal(t, 2, s.JokerCount)
	assert.Equal(t, deck.StandardSize+2, s.CardCount())
	require.NoError(t, CheckInvariants(s))
}

func TestNewGameInvalidType(t *testing.T) {
	_, err := NewGame(SoloPlayers("x"), GameType(150), randutil.New(1))
	require.Error(t, err)
}

func TestRedacted(t *testing.T) {
	s, err := NewGame(SoloPlayers("x"), GameTypeExtra, randutil.New(1), WithTarget(400))
	require.NoError(t, err)

	red := s.Redacted()
	assert.Equal(t, 0, red.Target)
	assert.Equal(t, 400, s.Target, "original keeps its target")

	raw, err := json.Marshal(red)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"target"`)

	s.Result = Lose(2, "total ≥400 (405) [EXTRA target=400]")
	assert.Equal(t, 400, s.Redacted().Target, "target is revealed once the game ends")

	plain, err := NewGame(SoloPlayers("x"), GameType100, randutil.New(1))
	require.NoError(t, err)
	assert.Equal(t, 100, plain.Redacted().Target)
}

func TestResultJSON(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{name: "playing", result: Playing(), want: `{"status":"PLAYING"}`},
		{name: "lose", result: Lose(0, "total ≤0 (-3)"), want: `{"status":"LOSE","loserSeat":0,"reason":"total ≤0 (-3)"}`},
		{name: "void", result: Void("deck and all hands exhausted"), want: `{"status":"VOID","reason":"deck and all hands exhausted"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.result)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var back Result
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tt.result, back)
		})
	}
}

func TestParseGameType(t *testing.T) {
	for _, in := range []string{"100", "200", "300", "400", "500"} {
		gt, err := ParseGameType(in)
		require.NoError(t, err)
		assert.Equal(t, in, gt.String())
	}

	gt, err := ParseGameType("extra")
	require.NoError(t, err)
	assert.Equal(t, GameTypeExtra, gt)

	for _, bad := range []string{"", "-1", "150", "six hundred"} {
		_, err := ParseGameType(bad)
		assert.Error(t, err, bad)
	}
}

func TestConvertToNPC(t *testing.T) {
	s, err := NewGame(SoloPlayers("Alice"), GameType100, randutil.New(1))
	require.NoError(t, err)

	next := s.ConvertToNPC(0, "NPC0")
	assert.Equal(t, NPC, next.Seats[0].Kind)
	assert.Equal(t, "NPC0", next.Seats[0].Name)
	assert.Equal(t, handIDs(s.Seats[0].Hand), handIDs(next.Seats[0].Hand))
	assert.Equal(t, Human, s.Seats[0].Kind)

	assert.Equal(t, s, s.ConvertToNPC(7, "nobody"))
}

func TestCheckInvariantsDetectsCorruption(t *testing.T) {
	s, err := NewGame(SoloPlayers("Alice"), GameType100, randutil.New(1))
	require.NoError(t, err)

	dup := s.clone()
	dup.Seats[1].Hand[0] = dup.Seats[0].Hand[0]
	assert.ErrorContains(t, CheckInvariants(dup), "appears twice")

	lost := s.clone()
	lost.Deck = lost.Deck[1:]
	assert.ErrorContains(t, CheckInvariants(lost), "card count")

	drift := s.clone()
	drift.Total = 12
	assert.ErrorContains(t, CheckInvariants(drift), "replay")
}
