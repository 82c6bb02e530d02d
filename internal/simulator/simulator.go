// Package simulator plays many all-NPC games to measure how the rules and
// the NPC strategies behave in aggregate.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/randutil"
	"github.com/lox/hundred/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games    int
	GameType game.GameType
	// Difficulties is the strategy played by each seat
	Difficulties [game.SeatCount]bot.Difficulty
	Seed         int64
	// Workers bounds the number of games played at once; 0 means GOMAXPROCS
	Workers int
	// StepLimit caps the plays in one game before it is counted as stalled
	StepLimit int
	// CheckInvariants verifies every intermediate state
	CheckInvariants bool
	Logger          *log.Logger
}

// DefaultStepLimit is generous: a 500 game with redeals rarely needs more
// than a few hundred plays.
const DefaultStepLimit = 2000

// Summary is the outcome of a simulation run
type Summary struct {
	Config  Config
	Stats   *statistics.Statistics
	Elapsed time.Duration
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if !c.GameType.Valid() {
		return fmt.Errorf("invalid game type: %d", int(c.GameType))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.StepLimit < 0 {
		return fmt.Errorf("step limit must not be negative, got %d", c.StepLimit)
	}
	return nil
}

// Run plays cfg.Games games and aggregates their results. Game i draws all
// of its randomness from randutil.Derive(cfg.Seed, i), so a run is
// reproducible regardless of how the games are scheduled.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.StepLimit == 0 {
		cfg.StepLimit = DefaultStepLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	logger := cfg.Logger.WithPrefix("simulator")

	start := time.Now()
	results := make([]statistics.GameResult, cfg.Games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Games {
		g.Go(func() error {
			result, err := PlayGame(gctx, cfg, i)
			if err != nil {
				return err
			}
			if result.Stalled() {
				logger.Debug("Game stalled", "game", i, "plays", result.Plays, "target", result.Target)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Aggregate in game order so Values is independent of scheduling
	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	summary := &Summary{Config: cfg, Stats: stats, Elapsed: time.Since(start)}
	logger.Info("Simulation complete", "games", stats.Games, "voids", stats.Voids,
		"stalled", stats.Stalled, "elapsed", summary.Elapsed)
	return summary, nil
}

// PlayGame plays game number index of a run to the end. A game that stops
// changing, or that reaches the step limit, is returned with a PLAYING
// status and counts as stalled.
func PlayGame(ctx context.Context, cfg Config, index int) (statistics.GameResult, error) {
	rng := randutil.Derive(cfg.Seed, index)

	s, err := game.NewGame(npcPlayers(), cfg.GameType, rng)
	if err != nil {
		return statistics.GameResult{}, fmt.Errorf("game %d: %w", index, err)
	}

	limit := cfg.StepLimit
	if limit == 0 {
		limit = DefaultStepLimit
	}

	for step := 0; step < limit && s.Result.IsPlaying(); step++ {
		if err := ctx.Err(); err != nil {
			return statistics.GameResult{}, err
		}

		next, err := play(s, cfg.Difficulties[s.Turn], rng)
		if errors.Is(err, bot.ErrStalled) {
			break
		}
		if err != nil {
			return statistics.GameResult{}, fmt.Errorf("game %d step %d: %w", index, step, err)
		}
		if cfg.CheckInvariants {
			if err := game.CheckInvariants(next); err != nil {
				return statistics.GameResult{}, fmt.Errorf("game %d step %d: %w", index, step, err)
			}
		}
		s = next
	}

	return Summarize(s, index), nil
}

func play(s game.GameState, d bot.Difficulty, rng *rand.Rand) (game.GameState, error) {
	action := bot.ChooseAction(s, d, rng)
	next, err := game.Apply(s, action, rng)
	if err != nil {
		return s, fmt.Errorf("seat %d played %s: %w", s.Turn, action, err)
	}
	if next.Key() == s.Key() {
		return s, bot.ErrStalled
	}
	return next, nil
}

// Summarize derives the result counters of one game from its final state
func Summarize(s game.GameState, index int) statistics.GameResult {
	result := statistics.GameResult{
		Game:      index,
		Status:    s.Result.Status,
		LoserSeat: s.Result.LoserSeat,
		Target:    s.Target,
		Plays:     len(s.History),
	}
	if s.Result.Status != game.StatusLose {
		result.LoserSeat = -1
	}

	for _, entry := range s.History {
		if entry.Origin == game.OriginDeck {
			result.Draws++
		}
		if entry.AfterMode != entry.BeforeMode {
			result.Reversals++
		}
		// A cancelling 3♠ is logged with no value of its own
		if entry.Card.IsSpadeThree() && entry.Value == 0 {
			result.Cancellations++
		}
	}
	for _, sys := range s.SystemLogs {
		if sys.Kind == game.SystemLogRedeal {
			result.Redeals++
		}
	}
	return result
}

func npcPlayers() [game.SeatCount]game.Player {
	var players [game.SeatCount]game.Player
	for i := range players {
		players[i] = game.Player{Kind: game.NPC, Name: fmt.Sprintf("NPC%d", i)}
	}
	return players
}
