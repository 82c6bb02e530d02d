package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/hundred/internal/bot"
	"github.com/lox/hundred/internal/game"
)

const maxNameLength = 20

// LobbySeatKind says who occupies a lobby seat before and during a game.
type LobbySeatKind int

const (
	SeatHost LobbySeatKind = iota
	SeatPlayer
	SeatNPC
)

func (k LobbySeatKind) String() string {
	switch k {
	case SeatHost:
		return "HOST"
	case SeatPlayer:
		return "PLAYER"
	default:
		return "NPC"
	}
}

func (k LobbySeatKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *LobbySeatKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "HOST":
		*k = SeatHost
	case "PLAYER":
		*k = SeatPlayer
	case "NPC":
		*k = SeatNPC
	default:
		return fmt.Errorf("invalid lobby seat kind: %q", string(b))
	}
	return nil
}

// LobbySeat is one of the four seats as shown in the lobby.
type LobbySeat struct {
	Kind   LobbySeatKind `json:"kind"`
	Name   string        `json:"name"`
	IconID string        `json:"iconId,omitempty"`
}

// RoomState is the public view of a room. It never carries the host token.
type RoomState struct {
	RoomID        string                    `json:"roomId"`
	ExpiresAt     time.Time                 `json:"expiresAt"`
	Locked        bool                      `json:"locked"`
	Disbanded     bool                      `json:"disbanded"`
	NPCDifficulty bot.Difficulty            `json:"npcDifficulty"`
	GameType      game.GameType             `json:"gameType"`
	Seats         [game.SeatCount]LobbySeat `json:"seats"`
}

// RoomOptions are the settings a new room starts with.
type RoomOptions struct {
	GameType      game.GameType
	Difficulty    bot.Difficulty
	TurnTimeout   time.Duration
	FrameInterval time.Duration
	InviteTTL     time.Duration
	NPCStepLimit  int
}

// DefaultRoomOptions returns the settings used when no config file is given.
func DefaultRoomOptions() RoomOptions {
	return RoomOptions{
		GameType:      game.GameType100,
		Difficulty:    bot.Smart,
		TurnTimeout:   60 * time.Second,
		FrameInterval: 250 * time.Millisecond,
		InviteTTL:     12 * time.Hour,
		NPCStepLimit:  bot.DefaultStepLimit,
	}
}

// Session is a connected client as seen by a room.
type Session interface {
	ID() string
	SendMessage(msg *Message) error
	Close() error
}

// Room owns one lobby and the authoritative game played in it. All methods
// are safe for concurrent use; every mutation happens under mu and is
// persisted before the lock is released.
type Room struct {
	mu        sync.Mutex
	state     RoomState
	hostToken string
	game      *game.GameState
	seq       int
	sessions  map[Session]int

	opts   RoomOptions
	clock  quartz.Clock
	rng    *rand.Rand
	store  Store
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	timer *quartz.Timer
}

func npcName(seat int) string    { return fmt.Sprintf("NPC%d", seat) }
func playerName(seat int) string { return fmt.Sprintf("Player%d", seat) }

func newRoom(snap RoomSnapshot, opts RoomOptions, clock quartz.Clock, rng *rand.Rand, store Store, logger *log.Logger) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	return &Room{
		state:     snap.RoomState,
		hostToken: snap.HostToken,
		game:      snap.Game,
		seq:       snap.Seq,
		sessions:  make(map[Session]int),
		opts:      opts,
		clock:     clock,
		rng:       rng,
		store:     store,
		logger:    logger.WithPrefix("room").With("room", snap.RoomID),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// initialSnapshot is the lobby of a freshly created room: the host in seat 0
// and NPCs everywhere else.
func initialSnapshot(info RoomInfo, opts RoomOptions) RoomSnapshot {
	snap := RoomSnapshot{
		RoomState: RoomState{
			RoomID:        info.RoomID,
			ExpiresAt:     info.ExpiresAt,
			NPCDifficulty: opts.Difficulty,
			GameType:      opts.GameType,
		},
		HostToken: info.HostToken,
	}
	snap.Seats[0] = LobbySeat{Kind: SeatHost, Name: "HOST"}
	for i := 1; i < game.SeatCount; i++ {
		snap.Seats[i] = LobbySeat{Kind: SeatNPC, Name: npcName(i)}
	}
	return snap
}

// ID returns the room id.
func (r *Room) ID() string {
	return r.state.RoomID
}

// State returns the public room state.
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Game returns the current game state, if a game has been started.
func (r *Room) Game() (game.GameState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.game == nil {
		return game.GameState{}, false
	}
	return *r.game, true
}

// SessionCount returns the number of connected sessions.
func (r *Room) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CheckJoin reports whether a client holding token could join right now.
// It is called before the WebSocket upgrade so the rejection can be an
// HTTP status.
func (r *Room) CheckJoin(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.seatFor(token)
	return err
}

func (r *Room) isHostToken(token string) bool {
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(r.hostToken)) == 1
}

func (r *Room) seatFor(token string) (int, error) {
	switch {
	case r.state.Disbanded:
		return -1, ErrRoomDisbanded
	case r.clock.Now().After(r.state.ExpiresAt):
		return -1, ErrRoomExpired
	case r.state.Locked:
		return -1, ErrRoomLocked
	}

	if r.isHostToken(token) {
		return 0, nil
	}
	for i := 1; i < game.SeatCount; i++ {
		if r.state.Seats[i].Kind == SeatNPC {
			return i, nil
		}
	}
	return -1, ErrRoomFull
}

// Join seats sess and greets it with a welcome message.
func (r *Room) Join(sess Session, token string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, err := r.seatFor(token)
	if err != nil {
		return -1, err
	}

	if seat == 0 {
		r.state.Seats[0].Kind = SeatHost
	} else {
		r.state.Seats[seat] = LobbySeat{Kind: SeatPlayer, Name: playerName(seat)}
	}
	r.sessions[sess] = seat
	r.logger.Info("Session joined", "session", sess.ID(), "seat", seat)

	r.send(sess, MessageTypeWelcome, WelcomeData{SeatIndex: seat, Room: r.state})
	r.broadcast(MessageTypeRoomState, RoomStateData{Room: r.state})
	r.persist()
	return seat, nil
}

// Disconnect removes sess from the room. Its seat is handed to an NPC
// unless it is the host seat.
func (r *Room) Disconnect(sess Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(sess)
}

func (r *Room) release(sess Session) {
	seat, ok := r.sessions[sess]
	if !ok {
		return
	}
	delete(r.sessions, sess)
	r.logger.Info("Session left", "session", sess.ID(), "seat", seat)

	if seat == 0 || r.state.Disbanded {
		return
	}

	r.state.Seats[seat] = LobbySeat{Kind: SeatNPC, Name: npcName(seat)}
	r.broadcast(MessageTypeRoomState, RoomStateData{Room: r.state})

	if r.state.Locked && r.game != nil {
		s := r.game.ConvertToNPC(seat, npcName(seat))
		r.game = &s
		if s.Result.IsPlaying() && s.Turn == seat {
			r.advance(s, true)
			return
		}
		r.broadcastFrames([]game.GameState{s})
	}
	r.persist()
}

// HandleMessage dispatches one client message.
func (r *Room) HandleMessage(sess Session, msg *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.sessions[sess]
	if !ok {
		r.sendError(sess, ErrCodeNotAllowed, "not seated in this room")
		return
	}

	r.logger.Debug("Received message", "type", msg.Type, "seat", seat)

	switch msg.Type {
	case MessageTypeUpdateName, MessageTypeCommitName:
		var data NameData
		if err := decode(msg, &data); err != nil {
			r.sendError(sess, ErrCodeInvalidMessage, "Failed to parse name data")
			return
		}
		r.handleName(sess, seat, data.Name, msg.Type == MessageTypeCommitName)

	case MessageTypeHostSetConfig:
		var data HostSetConfigData
		if err := decode(msg, &data); err != nil {
			r.sendError(sess, ErrCodeInvalidMessage, "Failed to parse config data")
			return
		}
		r.handleSetConfig(sess, seat, data)

	case MessageTypeHostStart:
		r.handleStart(sess, seat, false)

	case MessageTypeHostRestart:
		r.handleStart(sess, seat, true)

	case MessageTypePlayHand, MessageTypeDrawPlay:
		var data PlayData
		if err := decode(msg, &data); err != nil {
			r.sendError(sess, ErrCodeInvalidMessage, "Failed to parse play data")
			return
		}
		r.handlePlay(sess, seat, msg.Type, data)

	case MessageTypeLeave:
		r.release(sess)
		_ = sess.Close() // Ignore close errors, the session is gone either way

	case MessageTypeHostDisband:
		if seat != 0 {
			r.sendError(sess, ErrCodeNotAllowed, "only the host can disband the room")
			return
		}
		r.disband()

	default:
		r.sendError(sess, ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func decode(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	return json.Unmarshal(msg.Data, v)
}

func (r *Room) handleName(sess Session, seat int, name string, commit bool) {
	if r.state.Locked {
		r.sendError(sess, ErrCodeNotAllowed, "names are fixed once the game has started")
		return
	}

	if commit {
		name = strings.TrimSpace(name)
		if name == "" {
			name = playerName(seat)
			if seat == 0 {
				name = "HOST"
			}
		}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	r.state.Seats[seat].Name = name
	r.broadcast(MessageTypeRoomState, RoomStateData{Room: r.state})
	r.persist()
}

func (r *Room) handleSetConfig(sess Session, seat int, data HostSetConfigData) {
	if seat != 0 {
		r.sendError(sess, ErrCodeNotAllowed, "only the host can change the room config")
		return
	}
	if r.state.Locked {
		r.sendError(sess, ErrCodeNotAllowed, "config is fixed once the game has started")
		return
	}

	difficulty := r.state.NPCDifficulty
	if data.NPCDifficulty != "" {
		d, err := bot.ParseDifficulty(data.NPCDifficulty)
		if err != nil {
			r.sendError(sess, ErrCodeInvalidConfig, err.Error())
			return
		}
		difficulty = d
	}
	gameType := r.state.GameType
	if data.GameType != "" {
		gt, err := game.ParseGameType(data.GameType)
		if err != nil {
			r.sendError(sess, ErrCodeInvalidConfig, err.Error())
			return
		}
		gameType = gt
	}

	r.state.NPCDifficulty = difficulty
	r.state.GameType = gameType
	r.logger.Info("Room config changed", "difficulty", difficulty, "gameType", gameType)
	r.broadcast(MessageTypeRoomState, RoomStateData{Room: r.state})
	r.persist()
}

func (r *Room) handleStart(sess Session, seat int, restart bool) {
	if seat != 0 {
		r.sendError(sess, ErrCodeNotAllowed, "only the host can start the game")
		return
	}
	if restart && !r.state.Locked {
		r.sendError(sess, ErrCodeNotAllowed, "no game to restart")
		return
	}
	if !restart && r.state.Locked {
		r.sendError(sess, ErrCodeNotAllowed, "game already started")
		return
	}

	var players [game.SeatCount]game.Player
	for i, ls := range r.state.Seats {
		if ls.Kind == SeatNPC {
			players[i] = game.Player{Kind: game.NPC, Name: npcName(i), IconID: ls.IconID}
			continue
		}
		players[i] = game.Player{Kind: game.Human, Name: ls.Name, IconID: ls.IconID}
	}

	s, err := game.NewGame(players, r.state.GameType, r.rng)
	if err != nil {
		r.logger.Error("Failed to create game", "error", err)
		r.sendError(sess, ErrCodeInvalidConfig, err.Error())
		return
	}

	r.state.Locked = true
	r.seq = 0
	r.game = &s
	r.logger.Info("Game started", "gameType", s.GameType, "target", s.Target, "restart", restart)

	r.broadcast(MessageTypeRoomState, RoomStateData{Room: r.state})
	r.broadcast(MessageTypeGameState, GameStateData{State: s.Redacted()})
	r.advance(s, false)
}

func (r *Room) handlePlay(sess Session, seat int, kind MessageType, data PlayData) {
	if r.game == nil {
		r.sendError(sess, ErrCodeNoGame, "no game in progress")
		return
	}
	s := *r.game
	if !s.Result.IsPlaying() {
		r.sendError(sess, ErrCodeInvalidAction, "game is over")
		return
	}
	if s.Turn != seat {
		r.sendError(sess, ErrCodeNotAllowed, "not your turn")
		return
	}
	if s.Seats[seat].Kind != game.Human {
		r.sendError(sess, ErrCodeNotAllowed, "seat is played by an NPC")
		return
	}
	if data.Key != nil && *data.Key != s.Key() {
		r.sendError(sess, ErrCodeStaleAction, "action is for an earlier turn")
		return
	}

	jokerValue := 0
	if data.JokerValue != nil {
		v := *data.JokerValue
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.sendError(sess, ErrCodeInvalidJoker, "joker value must be a finite number")
			return
		}
		jokerValue = int(math.Floor(v))
	}

	var action game.Action
	if kind == MessageTypePlayHand {
		if data.HandIndex == nil {
			r.sendError(sess, ErrCodeInvalidMessage, "handIndex is required")
			return
		}
		action = game.PlayHandAction(seat, *data.HandIndex, jokerValue)
	} else {
		action = game.DrawPlayAction(seat, jokerValue)
	}

	next, err := game.Apply(s, action, r.rng)
	if err != nil {
		r.sendError(sess, ErrCodeInvalidJoker, err.Error())
		return
	}
	if next.Key() == s.Key() {
		r.sendError(sess, ErrCodeInvalidAction, "action had no effect")
		return
	}

	r.logger.Debug("Seat played", "seat", seat, "action", action, "total", next.Total)
	r.game = &next
	r.advance(next, true)
}

// advance runs NPC turns from s, broadcasts the resulting frames and re-arms
// the turn timer. When includeFirst is set, s itself is the first frame.
func (r *Room) advance(s game.GameState, includeFirst bool) {
	final, steps, err := bot.Autoplay(r.ctx, s, r.state.NPCDifficulty, r.rng, r.opts.NPCStepLimit)
	switch {
	case errors.Is(err, bot.ErrStalled):
		r.logger.Warn("Game is stalled", "turn", final.Turn, "total", final.Total)
	case err != nil:
		r.logger.Error("NPC turns failed", "error", err)
	}

	var frames []game.GameState
	if includeFirst {
		frames = append(frames, s)
	}
	frames = append(frames, steps...)

	r.game = &final
	if len(frames) > 0 {
		r.broadcastFrames(frames)
	}
	if !final.Result.IsPlaying() {
		r.logger.Info("Game finished", "status", final.Result.Status, "reason", final.Result.Reason)
	}
	r.armTimer()
	r.persist()
}

func (r *Room) broadcastFrames(frames []game.GameState) {
	r.seq++
	states := make([]game.GameState, len(frames))
	for i, f := range frames {
		states[i] = f.Redacted()
	}
	r.broadcast(MessageTypeGameStates, GameStatesData{
		Seq:        r.seq,
		IntervalMS: int(r.opts.FrameInterval / time.Millisecond),
		States:     states,
	})
}

// armTimer starts the turn limit for the seat to act, if it is human.
func (r *Room) armTimer() {
	r.stopTimer()
	if r.game == nil || r.state.Disbanded {
		return
	}
	s := *r.game
	if !s.Result.IsPlaying() || s.CurrentSeat().Kind != game.Human {
		return
	}

	key := s.Key()
	r.timer = r.clock.AfterFunc(r.opts.TurnTimeout, func() {
		r.onTurnTimeout(key)
	}, "room", "turn")
}

// resume re-arms the turn timer of a room loaded from the store.
func (r *Room) resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armTimer()
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) onTurnTimeout(key game.TurnKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.game == nil || r.state.Disbanded {
		return
	}
	s := *r.game
	if !s.Result.IsPlaying() || s.Key() != key {
		r.logger.Debug("Discarding stale turn timer", "key", key)
		return
	}
	r.timer = nil

	r.logger.Info("Turn timed out", "seat", s.Turn)
	r.broadcast(MessageTypeTurnTimeout, TurnTimeoutData{
		Seat:           s.Turn,
		Key:            key,
		TimeoutSeconds: int(r.opts.TurnTimeout / time.Second),
	})

	action := bot.ChooseAction(s, r.state.NPCDifficulty, r.rng)
	next, err := game.Apply(s, action, r.rng)
	if err != nil {
		r.logger.Error("Timeout action failed", "seat", s.Turn, "action", action, "error", err)
		return
	}
	if next.Key() == s.Key() {
		r.logger.Warn("Game is stalled", "turn", s.Turn, "total", s.Total)
		return
	}

	r.game = &next
	r.advance(next, true)
}

func (r *Room) disband() {
	r.state.Disbanded = true
	r.stopTimer()
	r.cancel()
	r.logger.Info("Room disbanded")

	r.broadcast(MessageTypeRoomDisbanded, RoomStateData{Room: r.state})
	for sess := range r.sessions {
		_ = sess.Close() // Ignore close errors during teardown
	}
	clear(r.sessions)
	r.persist()
}

// Close stops the room's timer and disconnects every session without
// changing the persisted state.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimer()
	r.cancel()
	for sess := range r.sessions {
		_ = sess.Close() // Ignore close errors during shutdown
	}
	clear(r.sessions)
}

// evictable reports whether the room can be dropped from memory.
func (r *Room) evictable(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) > 0 {
		return false
	}
	return r.state.Disbanded || now.After(r.state.ExpiresAt)
}

func (r *Room) snapshot() RoomSnapshot {
	snap := RoomSnapshot{
		RoomState: r.state,
		HostToken: r.hostToken,
		Seq:       r.seq,
	}
	if r.game != nil {
		g := *r.game
		snap.Game = &g
	}
	return snap
}

func (r *Room) persist() {
	if r.store == nil {
		return
	}
	if err := r.store.Save(r.snapshot()); err != nil {
		r.logger.Error("Failed to persist room", "error", err)
	}
}

func (r *Room) send(sess Session, msgType MessageType, data any) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		r.logger.Error("Failed to create message", "type", msgType, "error", err)
		return
	}
	if err := sess.SendMessage(msg); err != nil {
		r.logger.Debug("Failed to send message", "session", sess.ID(), "error", err)
	}
}

func (r *Room) broadcast(msgType MessageType, data any) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		r.logger.Error("Failed to create message", "type", msgType, "error", err)
		return
	}
	for sess := range r.sessions {
		if err := sess.SendMessage(msg); err != nil {
			r.logger.Debug("Failed to send message", "session", sess.ID(), "error", err)
		}
	}
	r.logger.Debug("Broadcast message", "type", msgType, "recipients", len(r.sessions))
}

func (r *Room) sendError(sess Session, code, message string) {
	r.send(sess, MessageTypeError, ErrorData{Code: code, Message: message})
}
