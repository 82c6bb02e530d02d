package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. Jokers carry their own marker suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
	JokerSuit
)

// StandardSuits lists the four non-joker suits in deck-building order.
var StandardSuits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case JokerSuit:
		return "🃏"
	default:
		return "?"
	}
}

// Code returns the wire code of a suit ("S", "H", "D", "C", "JOKER").
func (s Suit) Code() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	case JokerSuit:
		return "JOKER"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) MarshalText() ([]byte, error) {
	if s < Spades || s > JokerSuit {
		return nil, fmt.Errorf("invalid suit: %d", int(s))
	}
	return []byte(s.Code()), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	parsed, err := ParseSuit(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit parses a suit code, case-insensitively.
func ParseSuit(code string) (Suit, error) {
	switch strings.ToUpper(code) {
	case "S":
		return Spades, nil
	case "H":
		return Hearts, nil
	case "D":
		return Diamonds, nil
	case "C":
		return Clubs, nil
	case "JOKER":
		return JokerSuit, nil
	}
	return 0, fmt.Errorf("invalid suit: %q", code)
}

// Rank represents a card rank
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Joker
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Joker:
		return "JOKER"
	default:
		return "?"
	}
}

func (r Rank) MarshalText() ([]byte, error) {
	if r < Ace || r > Joker {
		return nil, fmt.Errorf("invalid rank: %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	parsed, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank parses a rank code ("A", "2".."10", "T", "J", "Q", "K", "JOKER").
func ParseRank(code string) (Rank, error) {
	switch c := strings.ToUpper(code); c {
	case "A":
		return Ace, nil
	case "T", "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "JOKER":
		return Joker, nil
	default:
		if len(c) == 1 && c[0] >= '2' && c[0] <= '9' {
			return Rank(c[0] - '0'), nil
		}
	}
	return 0, fmt.Errorf("invalid rank: %q", code)
}

// Card represents a playing card. Cards are immutable once created; ID is
// unique within a deck.
type Card struct {
	ID   string `json:"id"`
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
}

// NewCard creates a new card
func NewCard(id string, suit Suit, rank Rank) Card {
	return Card{ID: id, Suit: suit, Rank: rank}
}

// NewJoker creates a joker card
func NewJoker(id string) Card {
	return Card{ID: id, Suit: JokerSuit, Rank: Joker}
}

// String returns the string representation of a card (e.g., "3♠")
func (c Card) String() string {
	if c.IsJoker() {
		return "🃏"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsJoker reports whether the card is a joker
func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

// IsJack reports whether the card is a Jack (the mode toggle card)
func (c Card) IsJack() bool {
	return c.Rank == Jack
}

// IsSpadeThree reports whether the card is the 3 of spades, which cancels
// an immediately preceding joker.
func (c Card) IsSpadeThree() bool {
	return c.Suit == Spades && c.Rank == Three
}

// FaceValue returns the base numeric value of a non-joker card: Ace is 1,
// numeric ranks are their face value and J/Q/K are 10. Jokers return 0 since
// their value is declared at play time.
func (c Card) FaceValue() int {
	switch {
	case c.Rank == Joker:
		return 0
	case c.Rank >= Jack:
		return 10
	default:
		return int(c.Rank)
	}
}

// ParseCard parses a compact card code such as "9H", "10s", "TS", "Kd" or
// "JK" (joker). The card ID is left empty.
func ParseCard(code string) (Card, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "JK" || c == "JOKER" {
		return NewJoker(""), nil
	}
	if len(c) < 2 {
		return Card{}, fmt.Errorf("invalid card: %q", code)
	}
	rank, err := ParseRank(c[:len(c)-1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", code, err)
	}
	suit, err := ParseSuit(c[len(c)-1:])
	if err != nil || suit == JokerSuit {
		return Card{}, fmt.Errorf("invalid card %q: bad suit", code)
	}
	return NewCard("", suit, rank), nil
}

// ParseCards parses whitespace separated card codes, assigning each card a
// positional ID ("c0", "c1", ...) so they are distinguishable in tests and
// fixtures.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for i, f := range fields {
		card, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		card.ID = fmt.Sprintf("c%d", i)
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
