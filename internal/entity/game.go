package entity

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const (
	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""

	StatusInProgress = "IN_PROGRESS"
	StatusTie        = "TIE"
	StatusPlayer1Won = "PLAYER1_WON"
	StatusPlayer2Won = "PLAYER2_WON"
)

// Rematch handshake states. Decline returns the game to idle so a fresh
// request can be made; accept resolves the handshake for good.
const (
	rematchIdle = iota
	rematchRequested
	rematchResolved
)

// WinLines - the 8 possible winning triples, checked in fixed order:
// 3 rows, 3 columns, 2 diagonals.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Game is a single match between two players. PlayerXID always moves first.
// All mutation goes through the embedded mutex: concurrent moves from both
// participants serialize, and the transition to game-over happens exactly once.
type Game struct {
	ID        string
	PlayerXID string
	PlayerOID string

	mu        sync.Mutex
	board     [9]string
	turn      string
	over      bool
	winner    string // winning mark, empty while running or on tie
	winLine   [3]int
	decisive  bool // true when winLine is meaningful
	startedAt time.Time
	endedAt   time.Time

	rematchState     int
	rematchRequester string
}

// TurnResult describes the observable outcome of one accepted move.
type TurnResult struct {
	Board    string
	Over     bool
	Winner   string // winning mark, empty on tie
	WinLine  [3]int
	Decisive bool
	NextTurn string // mark to move when the game continues
}

func NewGame(id, playerXID, playerOID string) *Game {
	return &Game{
		ID:        id,
		PlayerXID: playerXID,
		PlayerOID: playerOID,
		turn:      MarkX,
		startedAt: time.Now(),
	}
}

// MakeTurn - applies one move for the given mark. Rejected moves leave the
// board and turn untouched.
func (that *Game) MakeTurn(mark string, cell int) (*TurnResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.over {
		return nil, apperror.ErrGameFinished
	}

	if that.turn != mark {
		return nil, apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= len(that.board) {
		return nil, apperror.ErrInvalidCell
	}

	if that.board[cell] != EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	that.board[cell] = mark

	result := &TurnResult{Board: that.boardString()}

	if line, won := that.findWinLine(mark); won {
		that.over = true
		that.winner = mark
		that.winLine = line
		that.decisive = true
		that.endedAt = time.Now()

		result.Over = true
		result.Winner = mark
		result.WinLine = line
		result.Decisive = true

		return result, nil
	}

	if that.boardFull() {
		that.over = true
		that.endedAt = time.Now()

		result.Over = true

		return result, nil
	}

	that.turn = toggleMark(mark)
	result.NextTurn = that.turn

	return result, nil
}

// Forfeit - ends the game in favor of the remaining participant. Returns
// ok=false when the game is already over, so racing disconnect paths collapse
// into a single effect.
func (that *Game) Forfeit(playerID string) (winnerID, loserID string, ok bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.over {
		return "", "", false
	}

	that.over = true
	that.endedAt = time.Now()

	winnerID = that.opponentOf(playerID)
	that.winner = that.markOf(winnerID)
	that.decisive = false

	return winnerID, playerID, true
}

// RequestRematch - moves the handshake from idle to requested. Only a
// participant of a finished game may request.
func (that *Game) RequestRematch(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.markOf(playerID) == EmptyCell {
		return apperror.ErrNotParticipant
	}

	if !that.over {
		return apperror.ErrInvalidRematch
	}

	switch that.rematchState {
	case rematchIdle:
		that.rematchState = rematchRequested
		that.rematchRequester = playerID
		return nil
	case rematchRequested:
		return apperror.ErrRematchPending
	default:
		return apperror.ErrInvalidRematch
	}
}

// AcceptRematch - valid only for the non-requesting participant while a
// request is pending. Resolves the handshake and returns the requester id.
func (that *Game) AcceptRematch(playerID string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.markOf(playerID) == EmptyCell {
		return "", apperror.ErrNotParticipant
	}

	if that.rematchState != rematchRequested || that.rematchRequester == playerID {
		return "", apperror.ErrNoRematchRequest
	}

	that.rematchState = rematchResolved

	return that.rematchRequester, nil
}

// DeclineRematch - valid only for the non-requesting participant while a
// request is pending. Clears the request and returns the requester id.
func (that *Game) DeclineRematch(playerID string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.markOf(playerID) == EmptyCell {
		return "", apperror.ErrNotParticipant
	}

	if that.rematchState != rematchRequested || that.rematchRequester == playerID {
		return "", apperror.ErrNoRematchRequest
	}

	requester := that.rematchRequester
	that.rematchState = rematchIdle
	that.rematchRequester = ""

	return requester, nil
}

func (that *Game) IsOver() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.over
}

// MarkOf - returns the marker assigned to the player, or an empty string for
// a non-participant.
func (that *Game) MarkOf(playerID string) string {
	return that.markOf(playerID)
}

// OpponentOf - returns the other participant's id.
func (that *Game) OpponentOf(playerID string) string {
	return that.opponentOf(playerID)
}

// Status - reports the game outcome in history terms.
func (that *Game) Status() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case !that.over:
		return StatusInProgress
	case that.winner == EmptyCell:
		return StatusTie
	case that.winner == MarkX:
		return StatusPlayer1Won
	default:
		return StatusPlayer2Won
	}
}

// BoardString - renders the board as exactly 9 characters, row-major, with a
// space for each empty cell.
func (that *Game) BoardString() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.boardString()
}

// GameRecord is the archival snapshot of a finished game.
type GameRecord struct {
	ID        string    `json:"id"`
	PlayerXID string    `json:"player_x_id"`
	PlayerOID string    `json:"player_o_id"`
	Winner    string    `json:"winner,omitempty"`
	Status    string    `json:"status"`
	Board     string    `json:"board"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// Snapshot - captures the game for archiving.
func (that *Game) Snapshot() *GameRecord {
	status := that.Status()

	that.mu.Lock()
	defer that.mu.Unlock()

	return &GameRecord{
		ID:        that.ID,
		PlayerXID: that.PlayerXID,
		PlayerOID: that.PlayerOID,
		Winner:    that.winner,
		Status:    status,
		Board:     that.boardString(),
		StartedAt: that.startedAt,
		EndedAt:   that.endedAt,
	}
}

func (that *Game) boardString() string {
	buf := make([]byte, 0, len(that.board))
	for _, cell := range that.board {
		if cell == EmptyCell {
			buf = append(buf, ' ')
			continue
		}
		buf = append(buf, cell[0])
	}

	return string(buf)
}

func (that *Game) boardFull() bool {
	for _, cell := range that.board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *Game) findWinLine(mark string) ([3]int, bool) {
	for _, line := range WinLines {
		if that.board[line[0]] == mark && that.board[line[1]] == mark && that.board[line[2]] == mark {
			return line, true
		}
	}

	return [3]int{}, false
}

func (that *Game) markOf(playerID string) string {
	switch playerID {
	case that.PlayerXID:
		return MarkX
	case that.PlayerOID:
		return MarkO
	default:
		return EmptyCell
	}
}

func (that *Game) opponentOf(playerID string) string {
	if playerID == that.PlayerXID {
		return that.PlayerOID
	}

	return that.PlayerXID
}

func toggleMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}

	return MarkX
}
