package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/hundred/internal/deck"
)

// Player describes who sits in a seat when a game is created.
type Player struct {
	Kind   SeatKind
	Name   string
	IconID string
}

// Option customises NewGame.
type Option func(*options)

type options struct {
	jokerCount int
	target     int
}

// WithJokerCount overrides the number of jokers in the deck.
func WithJokerCount(n int) Option {
	return func(o *options) {
		o.jokerCount = n
	}
}

// WithTarget fixes the numeric target instead of deriving it from the game
// type. Mostly useful for EXTRA games in tests.
func WithTarget(target int) Option {
	return func(o *options) {
		o.target = target
	}
}

// NewGame builds, shuffles and deals a fresh game. For EXTRA the target is
// drawn from ExtraCandidates using rng. The error is a configuration error
// (unknown game type, or a deck too small to deal from) and should be
// treated as fatal.
func NewGame(players [SeatCount]Player, gameType GameType, rng *rand.Rand, opts ...Option) (GameState, error) {
	o := options{jokerCount: DefaultJokerCount}
	for _, opt := range opts {
		opt(&o)
	}

	if !gameType.Valid() {
		return GameState{}, fmt.Errorf("invalid game type: %d", int(gameType))
	}

	target := int(gameType)
	if gameType.IsExtra() {
		target = ExtraCandidates[rng.IntN(len(ExtraCandidates))]
	}
	if o.target > 0 {
		target = o.target
	}

	cards := deck.Shuffle(deck.New(o.jokerCount), rng)
	hands, rest, err := deck.Deal(cards, HandSize, SeatCount)
	if err != nil {
		return GameState{}, fmt.Errorf("failed to deal new game: %w", err)
	}

	s := GameState{
		GameType:   gameType,
		Target:     target,
		JokerCount: o.jokerCount,
		Deck:       rest,
		Discard:    []deck.Card{},
		Turn:       0,
		Total:      0,
		Mode:       ModeUp,
		History:    History{},
		SystemLogs: []SystemLog{},
		Result:     Playing(),
	}
	for i, p := range players {
		s.Seats[i] = Seat{
			Kind:   p.Kind,
			Name:   p.Name,
			Hand:   hands[i],
			IconID: p.IconID,
		}
	}

	return s, nil
}

// SoloPlayers returns the single-player seating: one human in seat 0 and
// three NPCs.
func SoloPlayers(humanName string) [SeatCount]Player {
	players := [SeatCount]Player{{Kind: Human, Name: humanName}}
	for i := 1; i < SeatCount; i++ {
		players[i] = Player{Kind: NPC, Name: fmt.Sprintf("NPC%d", i)}
	}
	return players
}

// ConvertToNPC returns a copy of s with seat taken over by an NPC. It is how
// a departing human's seat keeps the game going.
func (s GameState) ConvertToNPC(seat int, name string) GameState {
	if seat < 0 || seat >= SeatCount {
		return s
	}
	next := s.clone()
	next.Seats[seat].Kind = NPC
	next.Seats[seat].Name = name
	return next
}
