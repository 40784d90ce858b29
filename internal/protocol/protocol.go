// Package protocol defines the line-based wire format spoken between the
// arena server and its clients. Every message is a single newline-terminated
// line; a verb prefix is separated from its argument by the first colon.
package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

// Client -> server verbs.
const (
	CmdName           = "NAME"
	CmdChat           = "CHAT"
	CmdLobbyChat      = "LOBBY_CHAT"
	CmdGameChat       = "GAME_CHAT"
	CmdListLobbies    = "LIST_LOBBIES"
	CmdJoinLobby      = "JOIN_LOBBY"
	CmdFindGame       = "FIND_GAME"
	CmdMove           = "MOVE"
	CmdRematch        = "REMATCH"
	CmdRematchAccept  = "REMATCH_ACCEPT"
	CmdRematchDecline = "REMATCH_DECLINE"
	CmdGetStats       = "GET_STATS"
	CmdGetLeaderboard = "GET_LEADERBOARD"
	CmdGetHistory     = "GET_HISTORY"
	CmdQuit           = "QUIT"
)

// ParseCommand - splits an inbound line into its verb and argument.
// Lines without a colon are verbs with an empty argument.
func ParseCommand(line string) (string, string) {
	if i := strings.Index(line, ":"); i >= 0 {
		return line[:i], line[i+1:]
	}

	return line, ""
}

func Connected(playerID string) string {
	return "CONNECTED:" + playerID
}

func ServerInfo(text string) string {
	return "SERVER_INFO:" + text
}

func JoinedLobby(lobbyID, name string) string {
	return "JOINED_LOBBY:" + lobbyID + ":" + name
}

func LobbyJoin(playerID, name string) string {
	return "LOBBY_JOIN:" + playerID + ":" + name
}

func LobbyLeave(playerID string) string {
	return "LOBBY_LEAVE:" + playerID
}

func LobbyChat(senderName, text string) string {
	return "LOBBY_CHAT:" + senderName + ":" + text
}

func GameChat(senderName, text string) string {
	return "GAME_CHAT:" + senderName + ":" + text
}

func PlayerNameUpdate(playerID, name string) string {
	return "PLAYER_UPDATE:" + playerID + ":name:" + name
}

func Waiting() string {
	return "WAITING"
}

func GameStarted(mark, gameID, opponentName string) string {
	return "GAME_STARTED:" + mark + ":" + gameID + ":" + opponentName
}

func YourTurn() string {
	return "YOUR_TURN"
}

func Board(board string) string {
	return "BOARD:" + board
}

// GameOver - formats the terminal notice: a tie, or the winning marker with
// its `-`-joined winning line.
func GameOver(winnerMark string, line [3]int, decisive bool) string {
	if !decisive {
		return "GAME_OVER:TIE"
	}

	return fmt.Sprintf("GAME_OVER:%s:%d-%d-%d", winnerMark, line[0], line[1], line[2])
}

func OpponentDisconnected() string {
	return "OPPONENT_DISCONNECTED"
}

func RematchRequested(requesterName string) string {
	return "REMATCH_REQUESTED:" + requesterName
}

func RematchSent(opponentName string) string {
	return "REMATCH_SENT:" + opponentName
}

func RematchAccepted() string {
	return "REMATCH_ACCEPTED"
}

func RematchDeclined() string {
	return "REMATCH_DECLINED"
}

func PlayerStats(wins, losses, ties, rating int) string {
	return fmt.Sprintf("PLAYER_STATS:%d:%d:%d:%d", wins, losses, ties, rating)
}

func Error(message string) string {
	return "ERROR:" + message
}

// PlayerEntry is one row of a PLAYER_LIST message.
type PlayerEntry struct {
	ID     string
	Name   string
	Wins   int
	Losses int
	Ties   int
}

func PlayerList(entries []PlayerEntry) string {
	var sb strings.Builder
	sb.WriteString("PLAYER_LIST:")

	for _, entry := range entries {
		fmt.Fprintf(&sb, "%s:%s:%d:%d:%d|", entry.ID, entry.Name, entry.Wins, entry.Losses, entry.Ties)
	}

	return sb.String()
}

// LobbyEntry is one row of a LOBBY_LIST message.
type LobbyEntry struct {
	ID          string
	Name        string
	Description string
	Members     int
}

func LobbyList(entries []LobbyEntry) string {
	var sb strings.Builder
	sb.WriteString("LOBBY_LIST:")

	for _, entry := range entries {
		fmt.Fprintf(&sb, "%s:%s:%s:%d|", entry.ID, entry.Name, entry.Description, entry.Members)
	}

	return sb.String()
}

// LeaderboardEntry is one row of a LEADERBOARD message.
type LeaderboardEntry struct {
	Rank   int
	Name   string
	Rating int
	Wins   int
	Losses int
	Ties   int
}

func Leaderboard(entries []LeaderboardEntry) string {
	var sb strings.Builder
	sb.WriteString("LEADERBOARD:")

	for _, entry := range entries {
		fmt.Fprintf(&sb, "%d:%s:%d:%d:%d:%d|", entry.Rank, entry.Name, entry.Rating, entry.Wins, entry.Losses, entry.Ties)
	}

	return sb.String()
}

// HistoryEntry is one row of a GAME_HISTORY message.
type HistoryEntry struct {
	GameID       string
	OpponentName string
	Status       string
}

func GameHistory(entries []HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString("GAME_HISTORY:")

	for _, entry := range entries {
		fmt.Fprintf(&sb, "%s:%s:%s|", entry.GameID, entry.OpponentName, entry.Status)
	}

	return sb.String()
}

// clientMessages maps internal sentinel errors to the text clients see on an
// ERROR line. The wording is part of the wire contract.
var clientMessages = []struct {
	err  error
	text string
}{
	{apperror.ErrGameFinished, "Game is over"},
	{apperror.ErrNotYourTurn, "Not your turn"},
	{apperror.ErrInvalidCell, "Invalid position"},
	{apperror.ErrCellOccupied, "Position already taken"},
	{apperror.ErrBadPosition, "Invalid position format"},
	{apperror.ErrAlreadyInGame, "You are already in a game"},
	{apperror.ErrSearchCancel, "Canceled matchmaking"},
	{apperror.ErrNotInGame, "You are not in a game"},
	{apperror.ErrGameNotFound, "Game not found"},
	{apperror.ErrPlayerNotFound, "Player not found"},
	{apperror.ErrLobbyNotFound, "Lobby does not exist"},
	{apperror.ErrInvalidRematch, "Invalid game for rematch"},
	{apperror.ErrNoRematchGame, "No active game for rematch"},
	{apperror.ErrBadRematchState, "Invalid game state for rematch"},
	{apperror.ErrNoRematchRequest, "No rematch request to accept"},
	{apperror.ErrRematchPending, "Rematch already requested"},
	{apperror.ErrOpponentGone, "Opponent not available for rematch"},
	{apperror.ErrRequesterGone, "Requester not available"},
	{apperror.ErrNotParticipant, "Invalid game for rematch"},
}

// ClientError - translates an error into the message reported to the
// offending client. Unknown errors are not leaked over the wire.
func ClientError(err error) string {
	for _, candidate := range clientMessages {
		if errors.Is(err, candidate.err) {
			return candidate.text
		}
	}

	return "Internal server error"
}
