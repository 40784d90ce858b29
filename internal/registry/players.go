// Package registry holds the process-wide tables shared by all connection
// goroutines. Single-key operations are atomic; no cross-key transactions.
package registry

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Messenger delivers one whole protocol line to a client. Implementations
// must be safe for concurrent use.
type Messenger interface {
	Send(line string)
}

// Players is the table of connected players keyed by generated id, paired
// with each player's outbound message sink.
type Players struct {
	mu      sync.RWMutex
	players map[string]*entity.Player
	conns   map[string]Messenger
}

func NewPlayers() *Players {
	return &Players{
		players: make(map[string]*entity.Player),
		conns:   make(map[string]Messenger),
	}
}

func (that *Players) Register(player *entity.Player, conn Messenger) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = player
	that.conns[player.ID] = conn
}

func (that *Players) Get(id string) (*entity.Player, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]

	return player, ok
}

// Remove - deletes the player. Removing an unknown id is a no-op.
func (that *Players) Remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.players, id)
	delete(that.conns, id)
}

// Send - delivers a line to the player's connection. Disconnected players are
// silently skipped so broadcasts never fail mid-iteration.
func (that *Players) Send(id, line string) {
	that.mu.RLock()
	conn, ok := that.conns[id]
	that.mu.RUnlock()

	if ok {
		conn.Send(line)
	}
}

// Snapshot - returns all currently registered players.
func (that *Players) Snapshot() []*entity.Player {
	that.mu.RLock()
	defer that.mu.RUnlock()

	out := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.players {
		out = append(out, player)
	}

	return out
}

func (that *Players) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.players)
}
