package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/randutil"
	"github.com/lox/hundred/internal/server"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	rooms := server.NewRoomService(server.DefaultRoomOptions(), server.NewMemoryStore(), nil, quartz.NewReal(), 5, testLogger())
	ts := httptest.NewServer(server.NewServer("", rooms, testLogger()).Handler())
	t.Cleanup(func() {
		rooms.Close()
		ts.Close()
	})
	return ts
}

func TestBotPlayerFinishesGame(t *testing.T) {
	t.Parallel()

	ts := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := NewClient(ts.URL, testLogger())
	defer c.Disconnect()

	info, err := c.CreateRoom(ctx)
	require.NoError(t, err)

	player := NewBotPlayer(c, bot.Smart, randutil.New(1), testLogger())
	var states []game.GameState
	player.OnState = func(s game.GameState) { states = append(states, s) }

	require.NoError(t, c.Connect(ctx, info.RoomID, info.HostToken))
	require.Eventually(t, func() bool { return player.Seat() == 0 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.CommitName("robot"))
	require.NoError(t, c.StartGame())

	select {
	case final := <-player.Finished():
		assert.False(t, final.Result.IsPlaying())
		assert.Equal(t, "robot", final.Seats[0].Name)
		require.NoError(t, game.CheckInvariants(final))
		assert.NotEmpty(t, states)
	case <-ctx.Done():
		t.Fatal("game did not finish")
	}
	assert.Equal(t, 1, player.GamesPlayed())

	require.NoError(t, c.Disband())
	select {
	case <-player.Closed():
	case <-ctx.Done():
		t.Fatal("room was not disbanded")
	}
}

func TestConnectRejected(t *testing.T) {
	t.Parallel()

	ts := startServer(t)
	c := NewClient(ts.URL, testLogger())
	defer c.Disconnect()

	err := c.Connect(context.Background(), "missing00000", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, c.IsConnected())
}

func TestSchemes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ws", wsScheme("http"))
	assert.Equal(t, "wss", wsScheme("https"))
	assert.Equal(t, "ws", wsScheme("ws"))
	assert.Equal(t, "http", httpScheme("ws"))
	assert.Equal(t, "https", httpScheme("wss"))
	assert.Equal(t, "https", httpScheme("https"))
}
