package apperror

import "errors"

var (
	ErrGameFinished   = errors.New("game is already finished")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrBadPosition    = errors.New("invalid position format")
	ErrAlreadyInGame  = errors.New("player is already in a game")
	ErrSearchCancel   = errors.New("matchmaking search canceled")
	ErrNotInGame      = errors.New("player is not in a game")
	ErrGameNotFound   = errors.New("game not found")
	ErrLobbyNotFound  = errors.New("lobby does not exist")
	ErrPlayerNotFound = errors.New("player not found")

	ErrInvalidRematch   = errors.New("invalid game for rematch")
	ErrNoRematchGame    = errors.New("no active game for rematch")
	ErrBadRematchState  = errors.New("invalid game state for rematch")
	ErrNoRematchRequest = errors.New("no rematch request to accept")
	ErrRematchPending   = errors.New("rematch already requested")
	ErrOpponentGone     = errors.New("opponent not available for rematch")
	ErrRequesterGone    = errors.New("requester not available")
	ErrNotParticipant   = errors.New("player is not a game participant")

	ErrRecordNotFound = errors.New("game record not found")
)
