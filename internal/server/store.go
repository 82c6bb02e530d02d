package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lox/hundred/internal/fileutil"
	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/roomid"
)

// RoomSnapshot is everything needed to restore a room: the lobby, the host
// token and the authoritative game state.
type RoomSnapshot struct {
	RoomState
	HostToken string          `json:"hostToken"`
	Game      *game.GameState `json:"game,omitempty"`
	Seq       int             `json:"seq"`
}

// Store persists room snapshots. Load returns ErrRoomNotFound for unknown
// rooms.
type Store interface {
	Save(snap RoomSnapshot) error
	Load(id string) (RoomSnapshot, error)
	Delete(id string) error
}

// MemoryStore keeps snapshots in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]RoomSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]RoomSnapshot)}
}

func (m *MemoryStore) Save(snap RoomSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[snap.RoomID] = snap
	return nil
}

func (m *MemoryStore) Load(id string) (RoomSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.rooms[id]
	if !ok {
		return RoomSnapshot{}, ErrRoomNotFound
	}
	return snap, nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	return nil
}

// FileStore writes one JSON file per room into a directory. Writes are
// atomic, so a crash never leaves a half-written snapshot behind.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(id string) (string, error) {
	if err := roomid.Validate(id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRoomNotFound, err)
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *FileStore) Save(snap RoomSnapshot) error {
	p, err := f.path(snap.RoomID)
	if err != nil {
		return err
	}
	return fileutil.WriteJSONAtomic(p, snap, 0o600)
}

func (f *FileStore) Load(id string) (RoomSnapshot, error) {
	p, err := f.path(id)
	if err != nil {
		return RoomSnapshot{}, err
	}

	var snap RoomSnapshot
	if err := fileutil.ReadJSON(p, &snap); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RoomSnapshot{}, ErrRoomNotFound
		}
		return RoomSnapshot{}, err
	}
	return snap, nil
}

func (f *FileStore) Delete(id string) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
