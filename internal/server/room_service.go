package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/hundred/internal/randutil"
	"github.com/lox/hundred/internal/roomid"
)

// pruneInterval is how often idle rooms are evicted from memory.
const pruneInterval = 5 * time.Minute

// RoomService creates rooms and keeps the live ones in memory, falling back
// to the store for rooms created by an earlier process.
type RoomService struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	opts   RoomOptions
	store  Store
	ids    *roomid.Generator
	clock  quartz.Clock
	seed   int64
	count  int
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRoomService creates a room service. Each room gets its own random
// stream derived from seed, so a server run can be replayed.
func NewRoomService(opts RoomOptions, store Store, ids *roomid.Generator, clock quartz.Clock, seed int64, logger *log.Logger) *RoomService {
	if store == nil {
		store = NewMemoryStore()
	}
	if ids == nil {
		ids = roomid.NewGenerator(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &RoomService{
		rooms:  make(map[string]*Room),
		opts:   opts,
		store:  store,
		ids:    ids,
		clock:  clock,
		seed:   seed,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins evicting idle rooms in the background.
func (rs *RoomService) Start() {
	rs.clock.TickerFunc(rs.ctx, pruneInterval, func() error {
		rs.Prune()
		return nil
	}, "rooms", "prune")
}

// CreateRoom registers a new room and returns its id and host token.
func (rs *RoomService) CreateRoom() (RoomInfo, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	info := RoomInfo{
		RoomID:    rs.ids.RoomID(),
		HostToken: rs.ids.HostToken(),
		ExpiresAt: rs.clock.Now().Add(rs.opts.InviteTTL).UTC(),
	}
	if _, exists := rs.rooms[info.RoomID]; exists {
		return RoomInfo{}, fmt.Errorf("room id collision: %s", info.RoomID)
	}

	snap := initialSnapshot(info, rs.opts)
	if err := rs.store.Save(snap); err != nil {
		return RoomInfo{}, fmt.Errorf("failed to save room: %w", err)
	}
	rs.rooms[info.RoomID] = rs.newRoomLocked(snap)

	rs.logger.Info("Room created", "room", info.RoomID, "expiresAt", info.ExpiresAt)
	return info, nil
}

func (rs *RoomService) newRoomLocked(snap RoomSnapshot) *Room {
	rng := randutil.Derive(rs.seed, rs.count)
	rs.count++
	return newRoom(snap, rs.opts, rs.clock, rng, rs.store, rs.logger)
}

// Room returns the live room with the given id, loading it from the store if
// it is not in memory.
func (rs *RoomService) Room(id string) (*Room, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if room, ok := rs.rooms[id]; ok {
		return room, nil
	}

	snap, err := rs.store.Load(id)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %s: %w", id, err)
	}

	room := rs.newRoomLocked(snap)
	room.resume()
	rs.rooms[id] = room
	rs.logger.Info("Room restored", "room", id, "locked", snap.Locked)
	return room, nil
}

// Prune drops rooms with no sessions that are disbanded or past their
// invite expiry. Disbanded rooms are also removed from the store.
func (rs *RoomService) Prune() int {
	now := rs.clock.Now()

	rs.mu.Lock()
	defer rs.mu.Unlock()

	pruned := 0
	for id, room := range rs.rooms {
		if !room.evictable(now) {
			continue
		}
		room.Close()
		delete(rs.rooms, id)
		pruned++

		if room.State().Disbanded {
			if err := rs.store.Delete(id); err != nil {
				rs.logger.Warn("Failed to delete room", "room", id, "error", err)
			}
		}
	}

	if pruned > 0 {
		rs.logger.Debug("Pruned rooms", "count", pruned, "remaining", len(rs.rooms))
	}
	return pruned
}

// Close stops background work and disconnects every session.
func (rs *RoomService) Close() {
	rs.cancel()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, room := range rs.rooms {
		room.Close()
	}
}
