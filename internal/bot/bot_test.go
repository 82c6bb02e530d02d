package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hundred/internal/deck"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/randutil"
)

// table builds a PLAYING 100 game where seat 0 is to act with hand.
func table(mode game.Mode, total int, hand, deckCodes string) game.GameState {
	s := game.GameState{
		GameType:   game.GameType100,
		Target:     100,
		JokerCount: 1,
		Deck:       deck.MustParseCards(deckCodes),
		Discard:    []deck.Card{},
		Mode:       mode,
		Total:      total,
		History:    game.History{},
		SystemLogs: []game.SystemLog{},
		Result:     game.Playing(),
	}
	for i := range s.Seats {
		s.Seats[i] = game.Seat{Kind: game.NPC, Name: "NPC", Hand: []deck.Card{}}
	}
	s.Seats[0].Hand = deck.MustParseCards(hand)
	return s
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("casual")
	require.NoError(t, err)
	assert.Equal(t, Casual, d)

	d, err = ParseDifficulty(" SMART ")
	require.NoError(t, err)
	assert.Equal(t, Smart, d)

	_, err = ParseDifficulty("HARD")
	assert.Error(t, err)

	var fromText Difficulty
	require.NoError(t, fromText.UnmarshalText([]byte("CASUAL")))
	assert.Equal(t, "CASUAL", fromText.String())
}

func TestForDifficulty(t *testing.T) {
	assert.Equal(t, "smart", ForDifficulty(Smart).Name())
	assert.Equal(t, "casual", ForDifficulty(Casual).Name())
}

func TestSafeJokerMax(t *testing.T) {
	tests := []struct {
		name  string
		mode  game.Mode
		total int
		want  int
	}{
		{name: "up far from target caps at 49", mode: game.ModeUp, total: 24, want: 49},
		{name: "up near target", mode: game.ModeUp, total: 90, want: 9},
		{name: "up one below target floors at 1", mode: game.ModeUp, total: 99, want: 1},
		{name: "down", mode: game.ModeDown, total: 30, want: 29},
		{name: "down large total caps at 49", mode: game.ModeDown, total: 80, want: 49},
		{name: "down at one floors at 1", mode: game.ModeDown, total: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := table(tt.mode, tt.total, "", "")
			assert.Equal(t, tt.want, SafeJokerMax(s))
		})
	}
}

func TestJokerValue(t *testing.T) {
	s := table(game.ModeUp, 80, "", "")
	rng := randutil.New(1)

	assert.Equal(t, 19, JokerValue(s, Smart, rng))

	seen := map[int]bool{}
	for range 500 {
		v := JokerValue(s, Casual, rng)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 19)
		seen[v] = true
	}
	assert.Greater(t, len(seen), 10)
}

func TestSmartBotDecide(t *testing.T) {
	tests := []struct {
		name      string
		mode      game.Mode
		total     int
		hand      string
		deck      string
		wantKind  game.ActionKind
		wantIndex int
		wantJoker int
	}{
		{name: "highest safe total when up", mode: game.ModeUp, total: 50, hand: "2H 9C KD 5S", deck: "4C", wantKind: game.PlayHand, wantIndex: 2},
		{name: "skips busting cards", mode: game.ModeUp, total: 91, hand: "9C KD 5S", deck: "4C", wantKind: game.PlayHand, wantIndex: 2},
		{name: "lowest safe total when down", mode: game.ModeDown, total: 30, hand: "2H 9C", deck: "4C", wantKind: game.PlayHand, wantIndex: 1},
		{name: "ties go to the first card", mode: game.ModeUp, total: 10, hand: "KD QH", deck: "4C", wantKind: game.PlayHand, wantIndex: 0},
		{name: "joker at the boundary", mode: game.ModeUp, total: 24, hand: "KD JK", deck: "4C", wantKind: game.PlayHand, wantIndex: 1, wantJoker: 49},
		{name: "jack that busts down is unsafe", mode: game.ModeDown, total: 5, hand: "JH 2C", deck: "4C", wantKind: game.PlayHand, wantIndex: 1},
		{name: "empty hand draws", mode: game.ModeUp, total: 10, hand: "", deck: "4C 5C", wantKind: game.DrawPlay},
		{name: "empty hand draws joker with value", mode: game.ModeUp, total: 90, hand: "", deck: "4C JK", wantKind: game.DrawPlay, wantJoker: 9},
		{name: "no safe card draws", mode: game.ModeUp, total: 95, hand: "KD QH", deck: "4C", wantKind: game.DrawPlay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := table(tt.mode, tt.total, tt.hand, tt.deck)
			d := SmartBot{}.Decide(s, randutil.New(1))

			assert.Equal(t, tt.wantKind, d.Action.Kind)
			assert.Equal(t, 0, d.Action.Seat)
			assert.Equal(t, tt.wantJoker, d.Action.JokerValue)
			if tt.wantKind == game.PlayHand {
				assert.Equal(t, tt.wantIndex, d.Action.HandIndex)
			}
			assert.NotEmpty(t, d.Reasoning)
		})
	}
}

func TestSmartBotSeesCancellation(t *testing.T) {
	s := table(game.ModeUp, 99, "5H 3S", "4C")
	joker := deck.NewJoker("jk")
	s.History = game.History{{
		Seat: 3, Card: joker, Value: 49, Delta: 49,
		BeforeTotal: 50, AfterTotal: 99, BeforeMode: game.ModeUp, AfterMode: game.ModeUp,
	}}

	d := SmartBot{}.Decide(s, randutil.New(1))
	assert.Equal(t, game.PlayHandAction(0, 1, 0), d.Action)
}

func TestNoSafeMoveWithEmptyDeckPlaysFromHand(t *testing.T) {
	for _, diff := range []Difficulty{Smart, Casual} {
		for seed := int64(0); seed < 20; seed++ {
			s := table(game.ModeUp, 95, "KD QH", "")
			a := ChooseAction(s, diff, randutil.New(seed))

			require.Equal(t, game.PlayHand, a.Kind)
			require.GreaterOrEqual(t, a.HandIndex, 0)
			require.Less(t, a.HandIndex, 2)
			require.Zero(t, a.JokerValue)
		}
	}
}

func TestOnlySafeCardIsJoker(t *testing.T) {
	s := table(game.ModeUp, 95, "KD JK QH", "")

	smart := ChooseAction(s, Smart, randutil.New(1))
	assert.Equal(t, game.PlayHandAction(0, 1, 4), smart)

	for seed := int64(0); seed < 20; seed++ {
		casual := ChooseAction(s, Casual, randutil.New(seed))
		require.Equal(t, 1, casual.HandIndex)
		require.GreaterOrEqual(t, casual.JokerValue, 1)
		require.LessOrEqual(t, casual.JokerValue, 4)
	}
}

func TestCasualBotDecide(t *testing.T) {
	s := table(game.ModeUp, 91, "2H KD 9C 5S", "4C 6C")
	draws, plays := 0, map[int]int{}

	for seed := int64(0); seed < 400; seed++ {
		d := CasualBot{}.Decide(s, randutil.New(seed))
		switch d.Action.Kind {
		case game.DrawPlay:
			draws++
		case game.PlayHand:
			plays[d.Action.HandIndex]++
		}
	}

	assert.Greater(t, draws, 20, "casual should sometimes draw")
	assert.Less(t, draws, 120)
	assert.Zero(t, plays[1], "K at 91 busts")
	assert.Zero(t, plays[2], "9 at 91 busts")
	assert.Positive(t, plays[0])
	assert.Positive(t, plays[3])
}

func TestCasualBotNeverDrawsFromEmptyDeck(t *testing.T) {
	s := table(game.ModeUp, 10, "2H 3H", "")
	for seed := int64(0); seed < 100; seed++ {
		d := CasualBot{}.Decide(s, randutil.New(seed))
		require.Equal(t, game.PlayHand, d.Action.Kind)
	}
}

func TestChooseActionDeterministic(t *testing.T) {
	s, err := game.NewGame(game.SoloPlayers("x"), game.GameType300, randutil.New(4))
	require.NoError(t, err)

	for _, diff := range []Difficulty{Smart, Casual} {
		a := ChooseAction(s, diff, randutil.New(77))
		b := ChooseAction(s, diff, randutil.New(77))
		assert.Equal(t, a, b)
	}
}

func TestAutoplayStopsAtHuman(t *testing.T) {
	rng := randutil.New(8)
	s, err := game.NewGame(game.SoloPlayers("Alice"), game.GameType100, rng)
	require.NoError(t, err)

	s, err = game.Apply(s, ChooseAction(s, Smart, rng), rng)
	require.NoError(t, err)
	require.Equal(t, 1, s.Turn)

	final, steps, err := Autoplay(context.Background(), s, Smart, rng, DefaultStepLimit)
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	assert.LessOrEqual(t, len(steps), 3)
	assert.Equal(t, final, steps[len(steps)-1])
	if final.Result.IsPlaying() {
		assert.Equal(t, 0, final.Turn)
	}
	for i, step := range steps {
		assert.Len(t, step.History, len(s.History)+i+1)
	}
}

func TestAutoplayNothingToDo(t *testing.T) {
	rng := randutil.New(1)
	s, err := game.NewGame(game.SoloPlayers("Alice"), game.GameType100, rng)
	require.NoError(t, err)

	final, steps, err := Autoplay(context.Background(), s, Smart, rng, DefaultStepLimit)
	require.NoError(t, err)
	assert.Empty(t, steps)
	assert.Equal(t, s, final)
}

func TestAutoplayAllNPCsFinishes(t *testing.T) {
	for _, gt := range []game.GameType{game.GameType100, game.GameType500, game.GameTypeExtra} {
		rng := randutil.New(21)
		players := game.SoloPlayers("x")
		players[0].Kind = game.NPC
		s, err := game.NewGame(players, gt, rng)
		require.NoError(t, err)

		final, steps, err := Autoplay(context.Background(), s, Casual, rng, 100000)
		if err != nil {
			require.ErrorIs(t, err, ErrStalled)
		} else {
			assert.False(t, final.Result.IsPlaying())
		}
		require.NoError(t, game.CheckInvariants(final))
		assert.Len(t, final.History, len(steps))
	}
}

func TestAutoplayStepLimit(t *testing.T) {
	rng := randutil.New(2)
	players := game.SoloPlayers("x")
	players[0].Kind = game.NPC
	s, err := game.NewGame(players, game.GameType500, rng)
	require.NoError(t, err)

	final, steps, err := Autoplay(context.Background(), s, Smart, rng, 3)
	require.ErrorIs(t, err, ErrStepLimit)
	assert.Len(t, steps, 3)
	assert.Equal(t, 3, final.Turn)
}

func TestAutoplayCancelled(t *testing.T) {
	rng := randutil.New(2)
	players := game.SoloPlayers("x")
	players[0].Kind = game.NPC
	s, err := game.NewGame(players, game.GameType100, rng)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	final, steps, err := Autoplay(ctx, s, Smart, rng, DefaultStepLimit)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, steps)
	assert.Equal(t, s, final)
}

func TestAutoplayStalled(t *testing.T) {
	s := table(game.ModeUp, 10, "", "")
	s.Seats[1].Hand = deck.MustParseCards("2H")

	final, steps, err := Autoplay(context.Background(), s, Smart, randutil.New(1), DefaultStepLimit)
	require.ErrorIs(t, err, ErrStalled)
	assert.Empty(t, steps)
	assert.Equal(t, s, final)
}
