package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/hundred/internal/deck"
)

// ActionKind is the discriminant of Action.
type ActionKind int

const (
	// PlayHand plays the card at HandIndex from the acting seat's hand.
	PlayHand ActionKind = iota
	// DrawPlay plays the top card of the deck without touching the hand.
	DrawPlay
)

func (k ActionKind) String() string {
	if k == DrawPlay {
		return "DRAW_PLAY"
	}
	return "PLAY_HAND"
}

// Action is a player move. JokerValue is the declared joker value; zero
// means undeclared and is only valid when the played card is not a joker.
type Action struct {
	Kind       ActionKind
	Seat       int
	HandIndex  int
	JokerValue int
}

// PlayHandAction builds a PLAY_HAND action for seat.
func PlayHandAction(seat, handIndex, jokerValue int) Action {
	return Action{Kind: PlayHand, Seat: seat, HandIndex: handIndex, JokerValue: jokerValue}
}

// DrawPlayAction builds a DRAW_PLAY action for seat.
func DrawPlayAction(seat, jokerValue int) Action {
	return Action{Kind: DrawPlay, Seat: seat, JokerValue: jokerValue}
}

func (a Action) String() string {
	if a.Kind == DrawPlay {
		return fmt.Sprintf("%s(seat=%d joker=%d)", a.Kind, a.Seat, a.JokerValue)
	}
	return fmt.Sprintf("%s(seat=%d idx=%d joker=%d)", a.Kind, a.Seat, a.HandIndex, a.JokerValue)
}

// Apply resolves action against s and returns the next state.
//
// Invalid actions (finished game, wrong seat, bad hand index, draw from an
// empty deck) are no-ops: s is returned unchanged with a nil error. The only
// error is an invalid joker declaration, in which case s is also returned
// unchanged. rng is used to shuffle the pool when a redeal happens.
func Apply(s GameState, action Action, rng *rand.Rand) (GameState, error) {
	if !s.Result.IsPlaying() || action.Seat != s.Turn {
		return s, nil
	}

	seat := s.Turn
	var (
		card   deck.Card
		origin Origin
		next   GameState
	)

	switch action.Kind {
	case PlayHand:
		hand := s.Seats[seat].Hand
		if action.HandIndex < 0 || action.HandIndex >= len(hand) {
			return s, nil
		}
		next = s.clone()
		card = hand[action.HandIndex]
		origin = OriginHand
		newHand := make([]deck.Card, 0, len(hand)-1)
		newHand = append(newHand, hand[:action.HandIndex]...)
		newHand = append(newHand, hand[action.HandIndex+1:]...)
		next.Seats[seat].Hand = newHand

	case DrawPlay:
		top, ok := s.TopOfDeck()
		if !ok {
			return s, nil
		}
		next = s.clone()
		card = top
		origin = OriginDeck
		next.Deck = next.Deck[:len(next.Deck)-1]

	default:
		return s, nil
	}

	next = pushTableCard(next, card)

	effect, err := ApplyCardEffects(next, seat, card, origin, action.JokerValue)
	if err != nil {
		return s, err
	}

	if effect.PatchedPrev != nil {
		next.History = next.History.ReplaceLastAndAppend(*effect.PatchedPrev, effect.Log)
	} else {
		next.History = next.History.Append(effect.Log)
	}
	next.Total = effect.AfterTotal
	next.Mode = effect.AfterMode

	if effect.Lose {
		next.Result = Lose(seat, loseReason(next, effect.AfterTotal, effect.Log.BeforeMode)+extraSuffix(next))
		return next, nil
	}

	next.Turn = (next.Turn + 1) % SeatCount
	next = maybeRedeal(next, rng)
	return voidIfStuck(next), nil
}

func pushTableCard(s GameState, card deck.Card) GameState {
	if s.LastCard != nil {
		s.Discard = append(s.Discard, *s.LastCard)
	}
	c := card
	s.LastCard = &c
	return s
}

func loseReason(s GameState, afterTotal int, mode Mode) string {
	if mode == ModeUp {
		return fmt.Sprintf("total ≥%d (%d)", s.Target, afterTotal)
	}
	return fmt.Sprintf("total ≤0 (%d)", afterTotal)
}

func extraSuffix(s GameState) string {
	if s.GameType.IsExtra() {
		return fmt.Sprintf(" [EXTRA target=%d]", s.Target)
	}
	return ""
}

func setVoid(s GameState, reason string) GameState {
	if !s.Result.IsPlaying() {
		return s
	}
	s.Result = Void(reason + extraSuffix(s))
	return s
}

func anyHandEmpty(s GameState) bool {
	for _, seat := range s.Seats {
		if len(seat.Hand) == 0 {
			return true
		}
	}
	return false
}

func allHandsEmpty(s GameState) bool {
	for _, seat := range s.Seats {
		if len(seat.Hand) != 0 {
			return false
		}
	}
	return true
}

const (
	reasonNoRedeal   = "no cards available to redeal"
	reasonExhausted  = "deck and all hands exhausted"
	redealGuardLimit = 10000
)

// maybeRedeal refills hands from discard+deck once the deck is empty and a
// hand has run out. Only games with target ≥ RedealThreshold redeal. s must
// already be a private copy.
func maybeRedeal(s GameState, rng *rand.Rand) GameState {
	if !s.Result.IsPlaying() || s.Target < RedealThreshold {
		return s
	}
	if len(s.Deck) != 0 || !anyHandEmpty(s) {
		return s
	}

	pooled := make([]deck.Card, 0, len(s.Discard)+len(s.Deck))
	pooled = append(pooled, s.Discard...)
	pooled = append(pooled, s.Deck...)
	recovered := len(pooled)
	if recovered == 0 {
		return setVoid(s, reasonNoRedeal)
	}
	pool := deck.Shuffle(pooled, rng)

	needsAny := func() bool {
		for _, seat := range s.Seats {
			if len(seat.Hand) < HandSize {
				return true
			}
		}
		return false
	}

	idx := s.Turn
	for guard := 0; len(pool) > 0 && needsAny() && guard < redealGuardLimit; guard++ {
		if len(s.Seats[idx].Hand) < HandSize {
			s.Seats[idx].Hand = append(s.Seats[idx].Hand, pool[len(pool)-1])
			pool = pool[:len(pool)-1]
		}
		idx = (idx + 1) % SeatCount
	}

	s.Deck = pool
	s.Discard = []deck.Card{}

	return pushSystemLog(s, SystemLogRedeal,
		fmt.Sprintf("discard pile collected and redealt (recovered: %d cards / deck: %d cards)", recovered, len(s.Deck)))
}

func pushSystemLog(s GameState, kind SystemLogKind, message string) GameState {
	nextID := 1
	if n := len(s.SystemLogs); n > 0 {
		nextID = s.SystemLogs[n-1].ID + 1
	}
	s.SystemLogs = append(s.SystemLogs, SystemLog{
		ID:             nextID,
		Kind:           kind,
		AfterPlayIndex: len(s.History),
		Message:        message,
	})
	return s
}

// voidIfStuck ends the game when nobody can act. High-threshold games void
// when a redeal found nothing to deal; the others void once deck and every
// hand are empty.
func voidIfStuck(s GameState) GameState {
	if !s.Result.IsPlaying() {
		return s
	}
	if s.Target >= RedealThreshold {
		if len(s.Deck) == 0 && anyHandEmpty(s) && len(s.Discard) == 0 {
			return setVoid(s, reasonNoRedeal)
		}
		return s
	}
	if len(s.Deck) == 0 && allHandsEmpty(s) {
		return setVoid(s, reasonExhausted)
	}
	return s
}
