package entity

import (
	"sync"
	"time"
)

// InitialRating is the rating every new player starts with.
const InitialRating = 1200

// Player holds the per-connection mutable state of one connected client.
// Every accessor takes the player's own mutex, so single-player updates are
// atomic no matter which goroutine (session, game outcome, broadcast) touches
// them.
type Player struct {
	ID string

	mu       sync.Mutex
	name     string
	rating   int
	wins     int
	losses   int
	ties     int
	lobbyID  string
	gameID   string
	history  []string
	lastSeen time.Time
}

// PlayerStats is an atomic snapshot of a player's counters.
type PlayerStats struct {
	Name   string
	Rating int
	Wins   int
	Losses int
	Ties   int
}

// NewPlayer - creates a player with a default name derived from its id.
func NewPlayer(id string) *Player {
	name := "Player" + id
	if len(id) >= 4 {
		name = "Player" + id[:4]
	}

	return &Player{
		ID:       id,
		name:     name,
		rating:   InitialRating,
		lastSeen: time.Now(),
	}
}

func (that *Player) Name() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.name
}

func (that *Player) SetName(name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.name = name
}

// Touch - records client activity.
func (that *Player) Touch() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastSeen = time.Now()
}

func (that *Player) LastSeen() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.lastSeen
}

// ApplyWin - increments the win counter and adjusts the rating in one step.
func (that *Player) ApplyWin(ratingDelta int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.wins++
	that.rating += ratingDelta
}

// ApplyLoss - increments the loss counter and deducts from the rating in one step.
func (that *Player) ApplyLoss(ratingDelta int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.losses++
	that.rating -= ratingDelta
}

// ApplyTie - increments the tie counter. Ties never move the rating.
func (that *Player) ApplyTie() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.ties++
}

func (that *Player) Stats() PlayerStats {
	that.mu.Lock()
	defer that.mu.Unlock()

	return PlayerStats{
		Name:   that.name,
		Rating: that.rating,
		Wins:   that.wins,
		Losses: that.losses,
		Ties:   that.ties,
	}
}

func (that *Player) TotalGames() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.wins + that.losses + that.ties
}

func (that *Player) LobbyID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.lobbyID
}

func (that *Player) SetLobbyID(lobbyID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lobbyID = lobbyID
}

func (that *Player) GameID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gameID
}

func (that *Player) SetGameID(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = gameID
}

func (that *Player) ClearGameID() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = ""
}

// RecordGame - appends a game id to the player's match history.
func (that *Player) RecordGame(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.history = append(that.history, gameID)
}

// History - returns up to the last n recorded game ids, oldest first.
func (that *Player) History(n int) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	start := 0
	if len(that.history) > n {
		start = len(that.history) - n
	}

	out := make([]string, len(that.history)-start)
	copy(out, that.history[start:])

	return out
}
