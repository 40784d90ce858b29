package entity

import "sync"

// Lobby is a named chat group. Membership is a set of player ids; lobbies are
// created at startup and never destroyed.
type Lobby struct {
	ID          string
	Name        string
	Description string

	mu      sync.Mutex
	members map[string]struct{}
}

func NewLobby(id, name, description string) *Lobby {
	return &Lobby{
		ID:          id,
		Name:        name,
		Description: description,
		members:     make(map[string]struct{}),
	}
}

func (that *Lobby) Join(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.members[playerID] = struct{}{}
}

// Leave - removes the player from the membership set. Leaving a lobby the
// player is not in is a no-op, so disconnect races never fail.
func (that *Lobby) Leave(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.members, playerID)
}

// Members - returns a snapshot of the membership set.
func (that *Lobby) Members() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]string, 0, len(that.members))
	for id := range that.members {
		out = append(out, id)
	}

	return out
}

func (that *Lobby) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.members)
}
