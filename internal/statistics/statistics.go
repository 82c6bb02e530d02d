// Package statistics aggregates the outcomes of many simulated games.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/hundred/internal/game"
)

// GameResult represents the outcome of a single game
type GameResult struct {
	Game          int         // Stream index; replay with randutil.Derive(seed, Game)
	Status        game.Status // LOSE or VOID; PLAYING means the game stalled
	LoserSeat     int         // Seat that lost, -1 unless Status is LOSE
	Target        int         // Numeric target, revealed for EXTRA games too
	Plays         int         // Cards played
	Draws         int         // Plays taken from the deck
	Redeals       int         // Discard pile redeals
	Cancellations int         // Jokers cancelled by 3♠
	Reversals     int         // Jack mode reversals
}

// Stalled reports whether the game stopped without a result.
func (r GameResult) Stalled() bool {
	return r.Status == game.StatusPlaying
}

// Statistics tracks outcome and game length statistics across games
type Statistics struct {
	Games  int
	Sum    float64   // Sum of plays per game
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // Plays per game, for median/percentile calculation

	Losses  [game.SeatCount]int
	Voids   int
	Stalled int

	Draws         int
	Redeals       int
	Cancellations int
	Reversals     int

	// Targets counts games per numeric target
	Targets map[int]int
}

// Mean returns the mean number of plays per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.Sum / float64(s.Games)
}

// Variance returns the sample variance of plays per game
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of plays per game
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	plays := float64(result.Plays)
	s.Games++
	s.Sum += plays
	s.Sum2 += plays * plays
	s.Values = append(s.Values, plays)

	switch result.Status {
	case game.StatusLose:
		if result.LoserSeat >= 0 && result.LoserSeat < game.SeatCount {
			s.Losses[result.LoserSeat]++
		}
	case game.StatusVoid:
		s.Voids++
	default:
		s.Stalled++
	}

	s.Draws += result.Draws
	s.Redeals += result.Redeals
	s.Cancellations += result.Cancellations
	s.Reversals += result.Reversals

	if s.Targets == nil {
		s.Targets = make(map[int]int)
	}
	s.Targets[result.Target]++
}

// Median returns the median number of plays per game
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the game length at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// TotalLosses returns the number of games that ended with a loser
func (s *Statistics) TotalLosses() int {
	total := 0
	for _, n := range s.Losses {
		total += n
	}
	return total
}

// LossRate returns the fraction of games lost by seat
func (s *Statistics) LossRate(seat int) float64 {
	if seat < 0 || seat >= game.SeatCount || s.Games == 0 {
		return 0
	}
	return float64(s.Losses[seat]) / float64(s.Games)
}

// Validate checks that the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)",
			len(s.Values), s.Games)
	}

	outcomes := s.TotalLosses() + s.Voids + s.Stalled
	if outcomes != s.Games {
		return fmt.Errorf("outcomes total (%d) does not match games count (%d)", outcomes, s.Games)
	}

	targets := 0
	for _, n := range s.Targets {
		targets += n
	}
	if targets != s.Games {
		return fmt.Errorf("target counts (%d) do not match games count (%d)", targets, s.Games)
	}

	if s.Draws > int(s.Sum) {
		return fmt.Errorf("draws (%d) exceed plays (%d)", s.Draws, int(s.Sum))
	}

	return nil
}
