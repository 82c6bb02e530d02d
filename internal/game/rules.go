package game

import (
	"errors"
	"fmt"

	"github.com/lox/hundred/internal/deck"
)

// ErrInvalidJokerValue is returned when a joker is played without a declared
// value in [MinJokerValue, MaxJokerValue]. Callers must validate the
// declaration before applying an action.
var ErrInvalidJokerValue = errors.New("joker value must be 1..49")

const (
	noteModeReversed = "mode reversed"
	noteCancelled    = "cancelled by 3♠"
	jackValue        = 10
)

// Effect is the outcome of resolving one card against a state.
type Effect struct {
	Log        PlayLog
	AfterTotal int
	AfterMode  Mode
	Lose       bool
	// PatchedPrev is set when the play cancelled the previous history entry;
	// it replaces that entry (same numbers, annotated note).
	PatchedPrev *PlayLog
}

// WouldLose reports whether total is a losing total under mode.
func WouldLose(mode Mode, total, target int) bool {
	if mode == ModeUp {
		return total >= target
	}
	return total <= 0
}

// CardValue returns the base value of card; jokers take the declared value.
func CardValue(card deck.Card, jokerValue int) (int, error) {
	if card.IsJoker() {
		if jokerValue < MinJokerValue || jokerValue > MaxJokerValue {
			return 0, fmt.Errorf("%w (got %d)", ErrInvalidJokerValue, jokerValue)
		}
		return jokerValue, nil
	}
	if v := card.FaceValue(); v > 0 {
		return v, nil
	}
	return 0, fmt.Errorf("unknown rank: %v", card.Rank)
}

// ApplyCardEffects computes the effect of seat playing card. It does not
// modify s; the reducer applies the returned values.
//
// Rules, first match wins:
//  1. 3♠ directly after a joker cancels the joker and restores the total.
//  2. A Jack counts 10 and reverses the mode unless that play loses.
//  3. Anything else adds (UP) or subtracts (DOWN) its value.
func ApplyCardEffects(s GameState, seat int, card deck.Card, origin Origin, jokerValue int) (Effect, error) {
	beforeTotal := s.Total
	beforeMode := s.Mode

	if prev, ok := s.History.Last(); ok && card.IsSpadeThree() && prev.Card.IsJoker() {
		return cancelJoker(prev, seat, card, origin, beforeTotal, beforeMode), nil
	}

	if card.IsJack() {
		delta := beforeMode.Sign() * jackValue
		afterTotal := beforeTotal + delta
		lose := WouldLose(beforeMode, afterTotal, s.Target)
		afterMode := beforeMode
		note := ""
		if !lose {
			afterMode = beforeMode.Toggle()
			note = noteModeReversed
		}
		return Effect{
			Log: PlayLog{
				Origin:      origin,
				Seat:        seat,
				Card:        card,
				Value:       jackValue,
				Delta:       delta,
				BeforeTotal: beforeTotal,
				AfterTotal:  afterTotal,
				BeforeMode:  beforeMode,
				AfterMode:   afterMode,
				Note:        note,
			},
			AfterTotal: afterTotal,
			AfterMode:  afterMode,
			Lose:       lose,
		}, nil
	}

	value, err := CardValue(card, jokerValue)
	if err != nil {
		return Effect{}, err
	}
	delta := beforeMode.Sign() * value
	afterTotal := beforeTotal + delta

	return Effect{
		Log: PlayLog{
			Origin:      origin,
			Seat:        seat,
			Card:        card,
			Value:       value,
			Delta:       delta,
			BeforeTotal: beforeTotal,
			AfterTotal:  afterTotal,
			BeforeMode:  beforeMode,
			AfterMode:   beforeMode,
		},
		AfterTotal: afterTotal,
		AfterMode:  beforeMode,
		Lose:       WouldLose(beforeMode, afterTotal, s.Target),
	}, nil
}

// cancelJoker resolves 3♠ against the joker entry prev. The undo amount is
// signed by the mode at the time of the cancelling play, which is the
// joker's own mode since nothing was played in between.
func cancelJoker(prev PlayLog, seat int, card deck.Card, origin Origin, beforeTotal int, mode Mode) Effect {
	patched := prev
	if prev.Note != "" {
		patched.Note = prev.Note + " / " + noteCancelled
	} else {
		patched.Note = noteCancelled
	}

	undo := -mode.Sign() * prev.Value
	afterTotal := beforeTotal + undo

	return Effect{
		Log: PlayLog{
			Origin:      origin,
			Seat:        seat,
			Card:        card,
			Value:       0,
			Delta:       undo,
			BeforeTotal: beforeTotal,
			AfterTotal:  afterTotal,
			BeforeMode:  mode,
			AfterMode:   mode,
			Note:        fmt.Sprintf("joker cancelled (🃏 %d undone)", prev.Value),
		},
		AfterTotal:  afterTotal,
		AfterMode:   mode,
		Lose:        false,
		PatchedPrev: &patched,
	}
}
