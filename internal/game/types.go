package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/hundred/internal/deck"
)

const (
	// SeatCount is the fixed number of seats at a table.
	SeatCount = 4
	// HandSize is the number of cards dealt to each seat, and the level a
	// redeal tops hands back up to.
	HandSize = 4
	// DefaultJokerCount is the number of jokers shuffled into a new deck.
	DefaultJokerCount = 1

	// MinJokerValue and MaxJokerValue bound a declared joker value.
	MinJokerValue = 1
	MaxJokerValue = 49

	// RedealThreshold is the lowest target for which redeal applies.
	RedealThreshold = 200
)

// Mode is the direction cards move the running total.
type Mode int

const (
	// ModeUp adds card values; the game is lost when total ≥ target.
	ModeUp Mode = iota
	// ModeDown subtracts card values; the game is lost when total ≤ 0.
	ModeDown
)

func (m Mode) String() string {
	if m == ModeDown {
		return "DOWN"
	}
	return "UP"
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == ModeUp {
		return ModeDown
	}
	return ModeUp
}

// Sign returns +1 for UP and -1 for DOWN.
func (m Mode) Sign() int {
	if m == ModeDown {
		return -1
	}
	return 1
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "UP":
		*m = ModeUp
	case "DOWN":
		*m = ModeDown
	default:
		return fmt.Errorf("invalid mode: %q", string(b))
	}
	return nil
}

// GameType is the configured threshold family.
type GameType int

const (
	GameType100 GameType = 100
	GameType200 GameType = 200
	GameType300 GameType = 300
	GameType400 GameType = 400
	GameType500 GameType = 500
	// GameTypeExtra picks a hidden target from ExtraCandidates at start.
	GameTypeExtra GameType = -1
)

// ExtraCandidates are the targets an EXTRA game draws from.
var ExtraCandidates = []int{100, 200, 300, 400, 500}

// IsExtra reports whether the target is randomly chosen and hidden.
func (g GameType) IsExtra() bool {
	return g == GameTypeExtra
}

// Valid reports whether g is one of the known game types.
func (g GameType) Valid() bool {
	switch g {
	case GameType100, GameType200, GameType300, GameType400, GameType500, GameTypeExtra:
		return true
	}
	return false
}

func (g GameType) String() string {
	if g.IsExtra() {
		return "EXTRA"
	}
	return strconv.Itoa(int(g))
}

func (g GameType) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid game type: %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *GameType) UnmarshalText(b []byte) error {
	parsed, err := ParseGameType(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGameType parses "100".."500" or "EXTRA" (case-insensitive).
func ParseGameType(s string) (GameType, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "EXTRA") {
		return GameTypeExtra, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil {
		if gt := GameType(n); gt.Valid() && !gt.IsExtra() {
			return gt, nil
		}
	}
	return 0, fmt.Errorf("invalid game type: %q", s)
}

// SeatKind says who controls a seat.
type SeatKind int

const (
	Human SeatKind = iota
	NPC
)

func (k SeatKind) String() string {
	if k == NPC {
		return "NPC"
	}
	return "HUMAN"
}

func (k SeatKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *SeatKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "HUMAN":
		*k = Human
	case "NPC":
		*k = NPC
	default:
		return fmt.Errorf("invalid seat kind: %q", string(b))
	}
	return nil
}

// Seat is one of the four positions at the table.
type Seat struct {
	Kind   SeatKind    `json:"kind"`
	Name   string      `json:"name"`
	Hand   []deck.Card `json:"hand"`
	IconID string      `json:"iconId,omitempty"`
}

// Origin records where a played card came from.
type Origin int

const (
	OriginHand Origin = iota
	OriginDeck
)

func (o Origin) String() string {
	if o == OriginDeck {
		return "DECK"
	}
	return "HAND"
}

func (o Origin) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Origin) UnmarshalText(b []byte) error {
	switch string(b) {
	case "HAND":
		*o = OriginHand
	case "DECK":
		*o = OriginDeck
	default:
		return fmt.Errorf("invalid origin: %q", string(b))
	}
	return nil
}

// PlayLog is one resolved card play.
type PlayLog struct {
	Origin      Origin    `json:"origin"`
	Seat        int       `json:"seat"`
	Card        deck.Card `json:"card"`
	Value       int       `json:"value"`
	Delta       int       `json:"delta"`
	BeforeTotal int       `json:"beforeTotal"`
	AfterTotal  int       `json:"afterTotal"`
	BeforeMode  Mode      `json:"beforeMode"`
	AfterMode   Mode      `json:"afterMode"`
	Note        string    `json:"note,omitempty"`
}

// SystemLogKind classifies non-play narrative events.
type SystemLogKind string

const (
	SystemLogRedeal SystemLogKind = "REDEAL"
	SystemLogInfo   SystemLogKind = "INFO"
)

// SystemLog is a narrative event anchored to a point in the play history.
type SystemLog struct {
	ID   int           `json:"id"`
	Kind SystemLogKind `json:"kind"`
	// AfterPlayIndex is len(history) at the moment the event happened.
	AfterPlayIndex int    `json:"afterPlayIndex"`
	Message        string `json:"message"`
}

// Status is the discriminant of Result.
type Status int

const (
	StatusPlaying Status = iota
	StatusLose
	StatusVoid
)

func (s Status) String() string {
	switch s {
	case StatusLose:
		return "LOSE"
	case StatusVoid:
		return "VOID"
	default:
		return "PLAYING"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "PLAYING":
		*s = StatusPlaying
	case "LOSE":
		*s = StatusLose
	case "VOID":
		*s = StatusVoid
	default:
		return fmt.Errorf("invalid status: %q", string(b))
	}
	return nil
}

// Result is the game outcome: PLAYING, LOSE{loserSeat, reason} or
// VOID{reason}. Build it with Playing, Lose or Void.
type Result struct {
	Status    Status
	LoserSeat int
	Reason    string
}

func Playing() Result { return Result{Status: StatusPlaying, LoserSeat: -1} }

func Lose(seat int, reason string) Result {
	return Result{Status: StatusLose, LoserSeat: seat, Reason: reason}
}

func Void(reason string) Result {
	return Result{Status: StatusVoid, LoserSeat: -1, Reason: reason}
}

// IsPlaying reports whether the game is still in progress.
func (r Result) IsPlaying() bool { return r.Status == StatusPlaying }

// Loser returns the losing seat for a LOSE result.
func (r Result) Loser() (int, bool) {
	if r.Status != StatusLose {
		return -1, false
	}
	return r.LoserSeat, true
}

type resultJSON struct {
	Status    Status `json:"status"`
	LoserSeat *int   `json:"loserSeat,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Status: r.Status}
	switch r.Status {
	case StatusLose:
		seat := r.LoserSeat
		out.LoserSeat = &seat
		out.Reason = r.Reason
	case StatusVoid:
		out.Reason = r.Reason
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var in resultJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Status {
	case StatusLose:
		if in.LoserSeat == nil {
			return fmt.Errorf("LOSE result without loserSeat")
		}
		*r = Lose(*in.LoserSeat, in.Reason)
	case StatusVoid:
		*r = Void(in.Reason)
	default:
		*r = Playing()
	}
	return nil
}

// GameState is the complete state of one game. It is treated as an immutable
// value: Apply and the other transitions return a new GameState and never
// modify slices reachable from their input.
type GameState struct {
	Seats      [SeatCount]Seat `json:"seats"`
	GameType   GameType        `json:"gameType"`
	Target     int             `json:"target,omitempty"`
	JokerCount int             `json:"jokerCount"`
	Deck       []deck.Card     `json:"deck"`
	Discard    []deck.Card     `json:"discard"`
	LastCard   *deck.Card      `json:"lastCard"`
	Turn       int             `json:"turn"`
	Total      int             `json:"total"`
	Mode       Mode            `json:"mode"`
	History    History         `json:"history"`
	SystemLogs []SystemLog     `json:"systemLogs"`
	Result     Result          `json:"result"`
}

// TurnKey identifies the decision point a state is waiting on. Any pending
// asynchronous decision must be keyed to it and discarded if the key no
// longer matches when the decision arrives.
type TurnKey struct {
	Turn       int `json:"turn"`
	HistoryLen int `json:"historyLen"`
}

// Key returns the decision key of the state.
func (s GameState) Key() TurnKey {
	return TurnKey{Turn: s.Turn, HistoryLen: len(s.History)}
}

// CurrentSeat returns the seat whose turn it is.
func (s GameState) CurrentSeat() Seat {
	return s.Seats[s.Turn]
}

// TopOfDeck returns the card a DRAW_PLAY would take next.
func (s GameState) TopOfDeck() (deck.Card, bool) {
	return deck.Top(s.Deck)
}

// CardCount returns the number of cards across deck, discard, table and hands.
func (s GameState) CardCount() int {
	n := len(s.Deck) + len(s.Discard)
	if s.LastCard != nil {
		n++
	}
	for _, seat := range s.Seats {
		n += len(seat.Hand)
	}
	return n
}

// Redacted returns the state as it may be shown to untrusted viewers: the
// target of an EXTRA game is hidden while the game is in progress.
func (s GameState) Redacted() GameState {
	if s.GameType.IsExtra() && s.Result.IsPlaying() {
		s.Target = 0
	}
	return s
}

// clone returns a deep copy whose slices can be modified freely.
func (s GameState) clone() GameState {
	out := s
	for i := range s.Seats {
		out.Seats[i].Hand = cloneCards(s.Seats[i].Hand)
	}
	out.Deck = cloneCards(s.Deck)
	out.Discard = cloneCards(s.Discard)
	if s.LastCard != nil {
		c := *s.LastCard
		out.LastCard = &c
	}
	out.History = make(History, len(s.History))
	copy(out.History, s.History)
	out.SystemLogs = make([]SystemLog, len(s.SystemLogs))
	copy(out.SystemLogs, s.SystemLogs)
	return out
}

func cloneCards(cards []deck.Card) []deck.Card {
	out := make([]deck.Card, len(cards))
	copy(out, cards)
	return out
}
