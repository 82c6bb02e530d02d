package main

import (
	"fmt"
	"os"

	"github.com/lox/hundred/cmd/hundred/shared"
	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/display"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/randutil"
	"github.com/lox/hundred/internal/simulator"
)

// SimulateCmd plays all-NPC games locally
type SimulateCmd struct {
	Games           int      `kong:"default='1000',help='Number of games to play'"`
	GameType        string   `kong:"name='game-type',default='100',help='Game type (100..500 or EXTRA)'"`
	Difficulty      []string `kong:"default='SMART',help='NPC difficulty, one for every seat or one per seat'"`
	Seed            *int64   `kong:"help='Base RNG seed (optional)'"`
	Workers         int      `kong:"default='0',help='Games played at once (0 = GOMAXPROCS)'"`
	StepLimit       int      `kong:"name='step-limit',default='0',help='Plays per game before it counts as stalled (0 = default)'"`
	CheckInvariants bool     `kong:"name='check-invariants',help='Verify every intermediate state'"`
	NoColor         bool     `kong:"name='no-color',help='Disable colours'"`
	LogLevel        string   `kong:"default='warn',help='Log level'"`
}

func (c *SimulateCmd) Run() error {
	logger, err := shared.SetupLogger(c.LogLevel, false)
	if err != nil {
		return err
	}

	gameType, err := game.ParseGameType(c.GameType)
	if err != nil {
		return err
	}
	difficulties, err := parseDifficulties(c.Difficulty)
	if err != nil {
		return err
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
	} else {
		_, seed = randutil.NewTimeSeeded()
	}

	ctx := shared.SetupSignalHandler(logger)
	summary, err := simulator.Run(ctx, simulator.Config{
		Games:           c.Games,
		GameType:        gameType,
		Difficulties:    difficulties,
		Seed:            seed,
		Workers:         c.Workers,
		StepLimit:       c.StepLimit,
		CheckInvariants: c.CheckInvariants,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	fmt.Println(display.New(os.Stdout, c.NoColor).FormatSummary(summary))
	return nil
}

func parseDifficulties(values []string) ([game.SeatCount]bot.Difficulty, error) {
	var out [game.SeatCount]bot.Difficulty
	switch len(values) {
	case 1, game.SeatCount:
	default:
		return out, fmt.Errorf("expected 1 or %d difficulties, got %d", game.SeatCount, len(values))
	}

	for seat := range out {
		v := values[0]
		if len(values) == game.SeatCount {
			v = values[seat]
		}
		d, err := bot.ParseDifficulty(v)
		if err != nil {
			return out, err
		}
		out[seat] = d
	}
	return out, nil
}
