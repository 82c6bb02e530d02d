package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/hundred/cmd/hundred/shared"
	"github.com/lox/hundred/internal/randutil"
	"github.com/lox/hundred/internal/server"
)

// ServerCmd runs the HTTP and WebSocket room server
type ServerCmd struct {
	Config   string `kong:"default='hundred.hcl',help='HCL config file; defaults apply when it does not exist'"`
	Addr     string `kong:"help='Listen address, overrides the config file'"`
	LogLevel string `kong:"help='Log level, overrides the config file'"`
	JSONLogs bool   `kong:"name='json-logs',help='Log as JSON lines'"`
	StateDir string `kong:"help='Directory for room snapshots, overrides the config file'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed for rooms (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.StateDir != "" {
		cfg.Server.StateDir = c.StateDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel, c.JSONLogs)
	if err != nil {
		return err
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		_, seed = randutil.NewTimeSeeded()
		logger.Info("Using random seed", "seed", seed)
	}

	var store server.Store = server.NewMemoryStore()
	if cfg.Server.StateDir != "" {
		fs, err := server.NewFileStore(cfg.Server.StateDir)
		if err != nil {
			return err
		}
		store = fs
		logger.Info("Persisting rooms", "dir", cfg.Server.StateDir)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	opts := cfg.RoomOptions()
	rooms := server.NewRoomService(opts, store, nil, quartz.NewReal(), seed, logger)
	srv := server.NewServer(addr, rooms, logger)

	logger.Info("Room defaults",
		"game_type", opts.GameType,
		"npc_difficulty", opts.Difficulty,
		"turn_timeout", opts.TurnTimeout,
		"frame_interval", opts.FrameInterval,
		"invite_ttl", opts.InviteTTL)

	ctx := shared.SetupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
