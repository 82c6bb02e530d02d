package game

import (
	"fmt"
	"testing"

	"github.com/lox/hundred/internal/deck"
)

// cards parses card codes and gives them IDs unique to prefix.
func cards(t *testing.T, prefix, codes string) []deck.Card {
	t.Helper()
	parsed, err := deck.ParseCards(codes)
	if err != nil {
		t.Fatalf("bad card fixture %q: %v", codes, err)
	}
	for i := range parsed {
		parsed[i].ID = fmt.Sprintf("%s-%d", prefix, i)
	}
	return parsed
}

func card(t *testing.T, id, code string) deck.Card {
	t.Helper()
	c, err := deck.ParseCard(code)
	if err != nil {
		t.Fatalf("bad card fixture %q: %v", code, err)
	}
	c.ID = id
	return c
}

// tableState builds a PLAYING state with the given target and hands. Deck and
// discard default to empty.
func tableState(t *testing.T, target int, hands [SeatCount]string) GameState {
	t.Helper()
	s := GameState{
		GameType:   GameType(target),
		Target:     target,
		JokerCount: 1,
		Deck:       []deck.Card{},
		Discard:    []deck.Card{},
		Mode:       ModeUp,
		History:    History{},
		SystemLogs: []SystemLog{},
		Result:     Playing(),
	}
	if !s.GameType.Valid() {
		s.GameType = GameType100
	}
	for i, h := range hands {
		s.Seats[i] = Seat{
			Kind: NPC,
			Name: fmt.Sprintf("NPC%d", i),
			Hand: cards(t, fmt.Sprintf("s%d", i), h),
		}
	}
	return s
}

func handIDs(hand []deck.Card) []string {
	ids := make([]string, len(hand))
	for i, c := range hand {
		ids[i] = c.ID
	}
	return ids
}
