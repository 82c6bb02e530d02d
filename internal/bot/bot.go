package bot

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/lox/hundred/internal/game"
)

// Difficulty selects the NPC strategy.
type Difficulty int

const (
	Smart Difficulty = iota
	Casual
)

func (d Difficulty) String() string {
	if d == Casual {
		return "CASUAL"
	}
	return "SMART"
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
	parsed, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty parses "SMART" or "CASUAL" (case-insensitive).
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SMART":
		return Smart, nil
	case "CASUAL":
		return Casual, nil
	}
	return Smart, fmt.Errorf("invalid difficulty: %q", s)
}

// Decision is a chosen action plus a short explanation, useful in logs.
type Decision struct {
	Action    game.Action
	Reasoning string
}

// Strategy decides the move for the seat whose turn it is in s. It must not
// modify s and may only draw randomness from rng.
type Strategy interface {
	Name() string
	Decide(s game.GameState, rng *rand.Rand) Decision
}

// ForDifficulty returns the strategy that plays at d.
func ForDifficulty(d Difficulty) Strategy {
	if d == Casual {
		return CasualBot{}
	}
	return SmartBot{}
}

// ChooseAction returns the NPC action for the seat to act in s.
func ChooseAction(s game.GameState, d Difficulty, rng *rand.Rand) game.Action {
	return ForDifficulty(d).Decide(s, rng).Action
}
