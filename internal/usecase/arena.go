// Package usecase contains the Arena, the orchestrator behind every protocol
// verb: it owns the matchmaking queue, the active-games table, and the global
// counters, and routes notifications back to players through the registries.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-arena/internal/registry"
)

// Rating deltas. A decisive win pays more than a forfeit win; walking away
// from a live game costs more than losing it.
const (
	winRating         = 15
	lossRating        = 10
	forfeitWinRating  = 10
	forfeitLossRating = 15
)

const (
	leaderboardMinGames = 5
	leaderboardSize     = 10
	historySize         = 10
)

type gameArchive interface {
	Save(ctx context.Context, record *entity.GameRecord) error
}

type Arena struct {
	logger  *slog.Logger
	players *registry.Players
	lobbies *registry.Lobbies
	archive gameArchive

	serverName string
	maxClients int64

	mu      sync.Mutex
	waiting []string
	games   map[string]*entity.Game

	totalGames  atomic.Int64
	connections atomic.Int64
	startedAt   time.Time
}

func NewArena(logger *slog.Logger, players *registry.Players, lobbies *registry.Lobbies, archive gameArchive, serverName string, maxClients int) *Arena {
	return &Arena{
		logger:     logger.With("component", "arena"),
		players:    players,
		lobbies:    lobbies,
		archive:    archive,
		serverName: serverName,
		maxClients: int64(maxClients),
		games:      make(map[string]*entity.Game),
		startedAt:  time.Now(),
	}
}

// AcquireConnection - claims a connection slot. Returns false when the server
// is full; a rejected connection is never counted against the total.
func (that *Arena) AcquireConnection() bool {
	for {
		current := that.connections.Load()
		if current >= that.maxClients {
			return false
		}

		if that.connections.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Connect - registers a fresh player for the given connection, joins them to
// the default lobby, and pushes the connection handshake messages.
func (that *Arena) Connect(conn registry.Messenger) *entity.Player {
	player := entity.NewPlayer(uuid.NewString())
	that.players.Register(player, conn)

	that.players.Send(player.ID, protocol.Connected(player.ID))
	that.players.Send(player.ID, protocol.ServerInfo("Welcome to "+that.serverName+"! Server time: "+time.Now().Format(time.UnixDate)))

	that.enterLobby(player, that.lobbies.Default())

	that.logger.Info("player connected", "playerID", player.ID)

	return player
}

// Disconnect - the single idempotent cleanup path for both explicit QUIT and
// transport failure. A live game is forfeited, the waiting queue and lobby
// membership are released, and finished games nobody references are reaped.
func (that *Arena) Disconnect(ctx context.Context, playerID string) {
	player, ok := that.players.Get(playerID)
	if !ok {
		return
	}

	if lobby, ok := that.lobbies.Get(player.LobbyID()); ok {
		lobby.Leave(playerID)
		that.broadcastLobby(lobby, protocol.LobbyLeave(playerID))
	}

	if gameID := player.GameID(); gameID != "" {
		if game, ok := that.game(gameID); ok {
			that.forfeitGame(ctx, game, player)
		}
	}

	that.mu.Lock()
	for i, id := range that.waiting {
		if id == playerID {
			that.waiting = append(that.waiting[:i], that.waiting[i+1:]...)
			break
		}
	}
	that.mu.Unlock()

	that.players.Remove(playerID)
	that.connections.Add(-1)

	that.reapFinishedGames()

	that.logger.Info("player disconnected", "playerID", playerID, "name", player.Name())
}

// SetName - updates the display name and announces it to the player's lobby.
// Empty names are ignored.
func (that *Arena) SetName(playerID, name string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	player.SetName(name)

	if lobby, ok := that.lobbies.Get(player.LobbyID()); ok {
		that.broadcastLobby(lobby, protocol.PlayerNameUpdate(playerID, name))
	}

	that.logger.Info("player renamed", "playerID", playerID, "name", name)

	return nil
}

// LobbyChat - broadcasts a chat line, attributed to the sender's current
// name, to every member of the sender's lobby.
func (that *Arena) LobbyChat(playerID, text string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	lobby, ok := that.lobbies.Get(player.LobbyID())
	if !ok {
		return nil
	}

	that.broadcastLobby(lobby, protocol.LobbyChat(player.Name(), text))

	return nil
}

// GameChat - broadcasts a chat line to both game participants. Chatting
// without a game is a silent no-op.
func (that *Arena) GameChat(playerID, text string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	gameID := player.GameID()
	if gameID == "" {
		return nil
	}

	game, ok := that.game(gameID)
	if !ok {
		return nil
	}

	line := protocol.GameChat(player.Name(), text)
	that.players.Send(game.PlayerXID, line)
	that.players.Send(game.PlayerOID, line)

	return nil
}

// ListLobbies - sends the lobby table snapshot to the requesting player.
func (that *Arena) ListLobbies(playerID string) error {
	entries := make([]protocol.LobbyEntry, 0)
	for _, lobby := range that.lobbies.List() {
		entries = append(entries, protocol.LobbyEntry{
			ID:          lobby.ID,
			Name:        lobby.Name,
			Description: lobby.Description,
			Members:     lobby.Len(),
		})
	}

	that.players.Send(playerID, protocol.LobbyList(entries))

	return nil
}

// JoinLobby - moves the player from their current lobby into the target one.
func (that *Arena) JoinLobby(playerID, lobbyID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	target, ok := that.lobbies.Get(lobbyID)
	if !ok {
		return apperror.ErrLobbyNotFound
	}

	if current, ok := that.lobbies.Get(player.LobbyID()); ok {
		current.Leave(playerID)
		that.broadcastLobby(current, protocol.LobbyLeave(playerID))
	}

	that.enterLobby(player, target)

	return nil
}

// Metrics is a point-in-time view of the server's aggregate state.
type Metrics struct {
	Uptime      time.Duration
	Connections int64
	TotalGames  int64
	ActiveGames int
	Players     int
	Waiting     int
}

func (that *Arena) Metrics() Metrics {
	that.mu.Lock()
	activeGames := len(that.games)
	waiting := len(that.waiting)
	that.mu.Unlock()

	return Metrics{
		Uptime:      time.Since(that.startedAt),
		Connections: that.connections.Load(),
		TotalGames:  that.totalGames.Load(),
		ActiveGames: activeGames,
		Players:     that.players.Len(),
		Waiting:     waiting,
	}
}

// enterLobby - adds the player to the lobby and pushes the join notices: the
// membership broadcast goes to everyone including the joiner, then the joiner
// gets the lobby confirmation and the current member list.
func (that *Arena) enterLobby(player *entity.Player, lobby *entity.Lobby) {
	lobby.Join(player.ID)
	player.SetLobbyID(lobby.ID)

	that.broadcastLobby(lobby, protocol.LobbyJoin(player.ID, player.Name()))
	that.players.Send(player.ID, protocol.JoinedLobby(lobby.ID, lobby.Name))
	that.sendPlayerList(player.ID, lobby)
}

func (that *Arena) sendPlayerList(playerID string, lobby *entity.Lobby) {
	entries := make([]protocol.PlayerEntry, 0)
	for _, memberID := range lobby.Members() {
		member, ok := that.players.Get(memberID)
		if !ok {
			continue
		}

		stats := member.Stats()
		entries = append(entries, protocol.PlayerEntry{
			ID:     memberID,
			Name:   stats.Name,
			Wins:   stats.Wins,
			Losses: stats.Losses,
			Ties:   stats.Ties,
		})
	}

	that.players.Send(playerID, protocol.PlayerList(entries))
}

func (that *Arena) broadcastLobby(lobby *entity.Lobby, line string) {
	for _, memberID := range lobby.Members() {
		that.players.Send(memberID, line)
	}
}

func (that *Arena) player(id string) (*entity.Player, error) {
	player, ok := that.players.Get(id)
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return player, nil
}

func (that *Arena) game(id string) (*entity.Game, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]

	return game, ok
}

// reapFinishedGames - drops finished games once neither participant is
// connected anymore. Keeping them while a participant remains lets that
// player still query history and negotiate a rematch.
func (that *Arena) reapFinishedGames() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, game := range that.games {
		if !game.IsOver() {
			continue
		}

		if _, ok := that.players.Get(game.PlayerXID); ok {
			continue
		}
		if _, ok := that.players.Get(game.PlayerOID); ok {
			continue
		}

		delete(that.games, id)
	}
}
