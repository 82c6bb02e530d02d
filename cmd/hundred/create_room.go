package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lox/hundred/cmd/hundred/shared"
	"github.com/lox/hundred/internal/client"
)

// CreateRoomCmd creates a room and prints the invite
type CreateRoomCmd struct {
	Server   string        `kong:"default='http://localhost:8080',help='Server URL'"`
	Timeout  time.Duration `kong:"default='10s',help='Request timeout'"`
	JSON     bool          `kong:"help='Print the room as JSON'"`
	LogLevel string        `kong:"default='warn',help='Log level'"`
}

func (c *CreateRoomCmd) Run() error {
	logger, err := shared.SetupLogger(c.LogLevel, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	info, err := client.NewClient(c.Server, logger).CreateRoom(ctx)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("Room:       %s\n", info.RoomID)
	fmt.Printf("Host token: %s\n", info.HostToken)
	fmt.Printf("Expires:    %s\n", info.ExpiresAt.Format(time.RFC3339))
	fmt.Printf("\nHost:    hundred bot --server %s --room %s --host-token %s --start\n", c.Server, info.RoomID, info.HostToken)
	fmt.Printf("Players: hundred bot --server %s --room %s\n", c.Server, info.RoomID)
	return nil
}
