package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lox/hundred/cmd/hundred/shared"
	"github.com/lox/hundred/internal/client"
	"github.com/lox/hundred/internal/display"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/randutil"
)

// BotCmd plays one seat of a room. Without --room it creates a room and
// hosts it.
type BotCmd struct {
	Config     string `kong:"help='Client HCL config file (optional)'"`
	Server     string `kong:"help='Server URL, overrides the config file'"`
	Room       string `kong:"help='Room id to join; a new room is created when empty'"`
	HostToken  string `kong:"name='host-token',help='Host token, takes seat 0'"`
	Name       string `kong:"help='Name to commit in the lobby'"`
	Difficulty string `kong:"help='Policy difficulty (SMART or CASUAL), overrides the config file'"`
	GameType   string `kong:"name='game-type',help='Game type to configure when hosting (100..500 or EXTRA)'"`
	Start      bool   `kong:"help='Start the game once seated (host only)'"`
	Games      int    `kong:"default='1',help='Games to play before leaving; the host restarts in between'"`
	Disband    bool   `kong:"help='Disband the room when done (host only)'"`
	Seed       *int64 `kong:"help='Deterministic RNG seed for the policy (optional)'"`
	Quiet      bool   `kong:"help='Do not print game frames'"`
	NoColor    bool   `kong:"name='no-color',help='Disable colours'"`
	LogLevel   string `kong:"help='Log level, overrides the config file'"`
}

func (c *BotCmd) Run() error {
	cfg := client.DefaultClientConfig()
	if c.Config != "" {
		loaded, err := client.LoadClientConfig(c.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if c.Difficulty != "" {
		cfg.Player.Difficulty = c.Difficulty
	}
	if c.LogLevel != "" {
		cfg.Player.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be at least 1")
	}

	logger, err := shared.SetupLogger(cfg.Player.LogLevel, false)
	if err != nil {
		return err
	}
	ctx := shared.SetupSignalHandler(logger)

	cl := client.NewClient(cfg.Server.URL, logger)
	roomID, token := c.Room, c.HostToken
	if roomID == "" {
		info, err := cl.CreateRoom(ctx)
		if err != nil {
			return err
		}
		roomID, token = info.RoomID, info.HostToken
		fmt.Printf("Created room %s (host token %s, expires %s)\n",
			info.RoomID, info.HostToken, info.ExpiresAt.Format(time.RFC3339))
	}
	host := token != ""
	if (c.Start || c.Disband) && !host {
		return errors.New("--start and --disband need the host token")
	}

	rng, seed := randutil.NewTimeSeeded()
	if c.Seed != nil {
		seed = *c.Seed
		rng = randutil.New(seed)
	}
	logger.Debug("Policy seed", "seed", seed)

	player := client.NewBotPlayer(cl, cfg.GetDifficulty(), rng, logger)
	f := display.New(os.Stdout, c.NoColor)
	if !c.Quiet {
		player.OnState = func(s game.GameState) {
			printFrame(f, s)
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	err = cl.Connect(connectCtx, roomID, token)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		_ = cl.Disconnect() // Ignore errors, we are exiting
	}()

	if cfg.Player.Name != "" {
		if err := cl.CommitName(cfg.Player.Name); err != nil {
			return err
		}
	}
	if c.Start {
		if c.GameType != "" {
			if err := cl.SetConfig(cfg.Player.Difficulty, c.GameType); err != nil {
				return err
			}
		}
		if err := cl.StartGame(); err != nil {
			return err
		}
	}

	return c.play(ctx, cl, player, host)
}

// play waits for games to finish, restarting between them when hosting
func (c *BotCmd) play(ctx context.Context, cl *client.Client, player *client.BotPlayer, host bool) error {
	for {
		select {
		case <-ctx.Done():
			return c.leave(cl, host)
		case <-player.Closed():
			fmt.Println("Room disbanded")
			return nil
		case <-cl.Done():
			return errors.New("connection closed by server")
		case <-player.Finished():
			if player.GamesPlayed() >= c.Games {
				return c.leave(cl, host)
			}
			if host && c.Start {
				if err := cl.RestartGame(); err != nil {
					return err
				}
			}
		}
	}
}

func (c *BotCmd) leave(cl *client.Client, host bool) error {
	if host && c.Disband {
		return cl.Disband()
	}
	return cl.Leave()
}

// printFrame prints the whole table for new and finished games, and a single
// play line otherwise
func printFrame(f *display.Formatter, s game.GameState) {
	last, ok := s.History.Last()
	if !ok || !s.Result.IsPlaying() {
		fmt.Println(f.FormatState(s))
		fmt.Println()
		return
	}
	fmt.Println(f.FormatPlay(last))
}
