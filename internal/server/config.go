package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Room   *RoomSettings  `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	// StateDir holds one JSON snapshot per room. Empty keeps rooms in memory.
	StateDir string `hcl:"state_dir,optional"`
}

// RoomSettings are the defaults every new room starts with
type RoomSettings struct {
	GameType           string `hcl:"game_type,optional"`
	NPCDifficulty      string `hcl:"npc_difficulty,optional"`
	TurnTimeoutSeconds int    `hcl:"turn_timeout_seconds,optional"`
	FrameIntervalMS    int    `hcl:"frame_interval_ms,optional"`
	InviteTTLHours     int    `hcl:"invite_ttl_hours,optional"`
	NPCStepLimit       int    `hcl:"npc_step_limit,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Room: defaultRoomSettings(),
	}
}

func defaultRoomSettings() *RoomSettings {
	return &RoomSettings{
		GameType:           "100",
		NPCDifficulty:      "SMART",
		TurnTimeoutSeconds: 60,
		FrameIntervalMS:    250,
		InviteTTLHours:     12,
		NPCStepLimit:       bot.DefaultStepLimit,
	}
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}

	if c.Room == nil {
		c.Room = defaultRoomSettings()
		return
	}
	if c.Room.GameType == "" {
		c.Room.GameType = defaults.Room.GameType
	}
	if c.Room.NPCDifficulty == "" {
		c.Room.NPCDifficulty = defaults.Room.NPCDifficulty
	}
	if c.Room.TurnTimeoutSeconds == 0 {
		c.Room.TurnTimeoutSeconds = defaults.Room.TurnTimeoutSeconds
	}
	if c.Room.FrameIntervalMS == 0 {
		c.Room.FrameIntervalMS = defaults.Room.FrameIntervalMS
	}
	if c.Room.InviteTTLHours == 0 {
		c.Room.InviteTTLHours = defaults.Room.InviteTTLHours
	}
	if c.Room.NPCStepLimit == 0 {
		c.Room.NPCStepLimit = defaults.Room.NPCStepLimit
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Room == nil {
		return nil
	}
	if _, err := game.ParseGameType(c.Room.GameType); err != nil {
		return fmt.Errorf("room: %w", err)
	}
	if _, err := bot.ParseDifficulty(c.Room.NPCDifficulty); err != nil {
		return fmt.Errorf("room: %w", err)
	}
	if c.Room.TurnTimeoutSeconds <= 0 {
		return fmt.Errorf("room: turn timeout must be positive")
	}
	if c.Room.FrameIntervalMS < 0 {
		return fmt.Errorf("room: frame interval cannot be negative")
	}
	if c.Room.InviteTTLHours <= 0 {
		return fmt.Errorf("room: invite ttl must be positive")
	}
	if c.Room.NPCStepLimit <= 0 {
		return fmt.Errorf("room: npc step limit must be positive")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomOptions converts the room block into options for new rooms. Call
// Validate first; unparseable values fall back to the defaults.
func (c *ServerConfig) RoomOptions() RoomOptions {
	opts := DefaultRoomOptions()
	if c.Room == nil {
		return opts
	}

	if gt, err := game.ParseGameType(c.Room.GameType); err == nil {
		opts.GameType = gt
	}
	if d, err := bot.ParseDifficulty(c.Room.NPCDifficulty); err == nil {
		opts.Difficulty = d
	}
	opts.TurnTimeout = time.Duration(c.Room.TurnTimeoutSeconds) * time.Second
	opts.FrameInterval = time.Duration(c.Room.FrameIntervalMS) * time.Millisecond
	opts.InviteTTL = time.Duration(c.Room.InviteTTLHours) * time.Hour
	opts.NPCStepLimit = c.Room.NPCStepLimit
	return opts
}
