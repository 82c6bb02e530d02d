package client

import (
	"encoding/json"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/server"
)

// BotPlayer plays one seat of a remote room with the NPC policy. It acts at
// most once per decision point and keys every action to the state it saw.
type BotPlayer struct {
	client     *Client
	difficulty bot.Difficulty
	rng        *rand.Rand
	logger     *log.Logger

	// OnState is called for every game state received, in order.
	OnState func(game.GameState)
	// OnRoom is called for every room state received.
	OnRoom func(server.RoomState)

	mu       sync.Mutex
	seat     int
	lastSent *game.TurnKey
	latest   *game.GameState
	games    int
	finished chan game.GameState
	closed   chan struct{}
	once     sync.Once
}

// NewBotPlayer registers the player's handlers on client. Call before
// Connect so the welcome message is not missed.
func NewBotPlayer(client *Client, difficulty bot.Difficulty, rng *rand.Rand, logger *log.Logger) *BotPlayer {
	p := &BotPlayer{
		client:     client,
		difficulty: difficulty,
		rng:        rng,
		logger:     logger.WithPrefix("player"),
		seat:       -1,
		finished:   make(chan game.GameState, 16),
		closed:     make(chan struct{}),
	}

	client.AddEventHandler(server.MessageTypeWelcome, p.handleWelcome)
	client.AddEventHandler(server.MessageTypeRoomState, p.handleRoomState)
	client.AddEventHandler(server.MessageTypeGameState, p.handleGameState)
	client.AddEventHandler(server.MessageTypeGameStates, p.handleGameStates)
	client.AddEventHandler(server.MessageTypeTurnTimeout, p.handleTurnTimeout)
	client.AddEventHandler(server.MessageTypeRoomDisbanded, p.handleDisbanded)
	client.AddEventHandler(server.MessageTypeError, p.handleError)
	return p
}

// Seat returns the seat assigned by the server, or -1 before the welcome.
func (p *BotPlayer) Seat() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seat
}

// Finished delivers the final state of every game that ends.
func (p *BotPlayer) Finished() <-chan game.GameState {
	return p.finished
}

// GamesPlayed returns how many finished games this player has seen.
func (p *BotPlayer) GamesPlayed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.games
}

// Closed is closed when the room is disbanded.
func (p *BotPlayer) Closed() <-chan struct{} {
	return p.closed
}

func (p *BotPlayer) handleWelcome(msg *server.Message) {
	var data server.WelcomeData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		p.logger.Error("Failed to parse welcome", "error", err)
		return
	}

	p.mu.Lock()
	p.seat = data.SeatIndex
	p.mu.Unlock()

	p.logger.Info("Seated", "room", data.Room.RoomID, "seat", data.SeatIndex)
	if p.OnRoom != nil {
		p.OnRoom(data.Room)
	}
}

func (p *BotPlayer) handleRoomState(msg *server.Message) {
	var data server.RoomStateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		p.logger.Error("Failed to parse room state", "error", err)
		return
	}
	if p.OnRoom != nil {
		p.OnRoom(data.Room)
	}
}

func (p *BotPlayer) handleGameState(msg *server.Message) {
	var data server.GameStateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		p.logger.Error("Failed to parse game state", "error", err)
		return
	}

	// A fresh game_state is a new deal: forget what was sent for the last one.
	p.mu.Lock()
	p.lastSent = nil
	p.mu.Unlock()

	p.observe(data.State)
	p.act()
}

func (p *BotPlayer) handleGameStates(msg *server.Message) {
	var data server.GameStatesData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		p.logger.Error("Failed to parse game states", "error", err)
		return
	}

	for _, s := range data.States {
		p.observe(s)
	}
	p.act()
}

func (p *BotPlayer) observe(s game.GameState) {
	if p.OnState != nil {
		p.OnState(s)
	}

	p.mu.Lock()
	p.latest = &s
	p.mu.Unlock()

	if !s.Result.IsPlaying() {
		p.mu.Lock()
		p.games++
		p.mu.Unlock()
		select {
		case p.finished <- s:
		default:
			p.logger.Warn("Dropping finished game, nobody is listening")
		}
	}
}

// act plays the seat if the latest state is waiting on it.
func (p *BotPlayer) act() {
	p.mu.Lock()
	if p.latest == nil {
		p.mu.Unlock()
		return
	}
	s := *p.latest
	seat := p.seat
	key := s.Key()
	if !s.Result.IsPlaying() || s.Turn != seat || s.CurrentSeat().Kind != game.Human {
		p.mu.Unlock()
		return
	}
	if p.lastSent != nil && *p.lastSent == key {
		p.mu.Unlock()
		return
	}
	p.lastSent = &key
	p.mu.Unlock()

	// EXTRA targets are hidden from clients, so the policy plays against the
	// largest candidate.
	if s.Target == 0 {
		s.Target = game.ExtraCandidates[len(game.ExtraCandidates)-1]
	}

	action := bot.ChooseAction(s, p.difficulty, p.rng)
	p.logger.Debug("Playing", "seat", seat, "action", action, "total", s.Total)
	if err := p.client.SendAction(action, key); err != nil {
		p.logger.Error("Failed to send action", "error", err)
	}
}

func (p *BotPlayer) handleTurnTimeout(msg *server.Message) {
	var data server.TurnTimeoutData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		p.logger.Error("Failed to parse turn timeout", "error", err)
		return
	}
	p.logger.Warn("Turn timed out", "seat", data.Seat, "timeoutSeconds", data.TimeoutSeconds)
}

func (p *BotPlayer) handleDisbanded(msg *server.Message) {
	p.logger.Info("Room disbanded")
	p.once.Do(func() { close(p.closed) })
}

func (p *BotPlayer) handleError(msg *server.Message) {
	var data server.ErrorData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		p.logger.Error("Failed to parse error message", "error", err)
		return
	}

	if data.Code == server.ErrCodeStaleAction {
		p.logger.Debug("Action was stale", "message", data.Message)
		return
	}
	p.logger.Warn("Server error", "code", data.Code, "message", data.Message)
}
