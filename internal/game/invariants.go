package game

import (
	"errors"
	"fmt"

	"github.com/lox/hundred/internal/deck"
)

// CheckInvariants verifies the structural invariants of a state: card
// conservation, unique card IDs, replay determinism of total and mode, a
// valid turn index and a consistent result. It returns all violations
// joined together, or nil.
func CheckInvariants(s GameState) error {
	var errs []error

	if s.Turn < 0 || s.Turn >= SeatCount {
		errs = append(errs, fmt.Errorf("turn %d out of range", s.Turn))
	}

	want := deck.StandardSize + s.JokerCount
	if got := s.CardCount(); got != want {
		errs = append(errs, fmt.Errorf("card count %d, want %d", got, want))
	}

	seen := make(map[string]bool, want)
	check := func(where string, cards []deck.Card) {
		for _, c := range cards {
			if seen[c.ID] {
				errs = append(errs, fmt.Errorf("card %s (%s) appears twice (again in %s)", c, c.ID, where))
			}
			seen[c.ID] = true
		}
	}
	check("deck", s.Deck)
	check("discard", s.Discard)
	if s.LastCard != nil {
		check("table", []deck.Card{*s.LastCard})
	}
	for i, seat := range s.Seats {
		check(fmt.Sprintf("seat %d", i), seat.Hand)
	}

	total, mode := s.History.Replay()
	if total != s.Total || mode != s.Mode {
		errs = append(errs, fmt.Errorf("replay gives total=%d mode=%s, state has total=%d mode=%s", total, mode, s.Total, s.Mode))
	}

	if seat, ok := s.Result.Loser(); ok && (seat < 0 || seat >= SeatCount) {
		errs = append(errs, fmt.Errorf("loser seat %d out of range", seat))
	}

	return errors.Join(errs...)
}
