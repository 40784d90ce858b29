package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Lobbies is the table of chat lobbies. The first lobby created is the
// default one every new connection joins; lobbies are never removed.
type Lobbies struct {
	mu        sync.RWMutex
	lobbies   map[string]*entity.Lobby
	defaultID string
}

func NewLobbies() *Lobbies {
	return &Lobbies{
		lobbies: make(map[string]*entity.Lobby),
	}
}

// Create - registers a new lobby under a generated id.
func (that *Lobbies) Create(name, description string) *entity.Lobby {
	lobby := entity.NewLobby(uuid.NewString(), name, description)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.lobbies[lobby.ID] = lobby
	if that.defaultID == "" {
		that.defaultID = lobby.ID
	}

	return lobby
}

func (that *Lobbies) Get(id string) (*entity.Lobby, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	lobby, ok := that.lobbies[id]

	return lobby, ok
}

// Default - returns the lobby created first. The server always creates one at
// startup before accepting connections.
func (that *Lobbies) Default() *entity.Lobby {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.lobbies[that.defaultID]
}

// List - returns a snapshot of every lobby.
func (that *Lobbies) List() []*entity.Lobby {
	that.mu.RLock()
	defer that.mu.RUnlock()

	out := make([]*entity.Lobby, 0, len(that.lobbies))
	for _, lobby := range that.lobbies {
		out = append(out, lobby)
	}

	return out
}
