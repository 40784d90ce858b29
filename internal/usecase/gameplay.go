package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/protocol"
)

// FindGame - matchmaking entry point. Calling it twice in a row cancels a
// pending search; otherwise the player either waits or is paired with the
// longest-waiting player. Pairing is strictly first-come: no rating
// compatibility check.
func (that *Arena) FindGame(ctx context.Context, playerID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	// A finished game keeps the player's game id bound for rematch and
	// history; only a live game blocks a new search.
	if gameID := player.GameID(); gameID != "" {
		if game, ok := that.game(gameID); ok && !game.IsOver() {
			return apperror.ErrAlreadyInGame
		}

		player.ClearGameID()
	}

	that.mu.Lock()

	for i, id := range that.waiting {
		if id == playerID {
			that.waiting = append(that.waiting[:i], that.waiting[i+1:]...)
			that.mu.Unlock()

			return apperror.ErrSearchCancel
		}
	}

	// Skip over waiting entries whose player vanished in a disconnect race.
	var opponent *entity.Player
	for len(that.waiting) > 0 {
		candidateID := that.waiting[0]
		that.waiting = that.waiting[1:]

		if candidate, ok := that.players.Get(candidateID); ok {
			opponent = candidate
			break
		}
	}

	if opponent == nil {
		that.waiting = append(that.waiting, playerID)
		that.mu.Unlock()

		that.players.Send(playerID, protocol.Waiting())
		that.logger.Info("player waiting for opponent", "playerID", playerID, "name", player.Name())

		return nil
	}

	that.mu.Unlock()

	that.startGame(player, opponent)

	return nil
}

// MakeMove - applies one move for the player's current game and broadcasts
// the resulting board, then either the game-over notice or the next player's
// turn prompt.
func (that *Arena) MakeMove(ctx context.Context, playerID, position string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	gameID := player.GameID()
	if gameID == "" {
		return apperror.ErrNotInGame
	}

	game, ok := that.game(gameID)
	if !ok {
		player.ClearGameID()
		return apperror.ErrGameNotFound
	}

	cell, err := strconv.Atoi(strings.TrimSpace(position))
	if err != nil {
		return apperror.ErrBadPosition
	}

	result, err := game.MakeTurn(game.MarkOf(playerID), cell)
	if err != nil {
		return err
	}

	boardLine := protocol.Board(result.Board)
	that.players.Send(game.PlayerXID, boardLine)
	that.players.Send(game.PlayerOID, boardLine)

	if !result.Over {
		nextID := game.PlayerXID
		if result.NextTurn == entity.MarkO {
			nextID = game.PlayerOID
		}
		that.players.Send(nextID, protocol.YourTurn())

		return nil
	}

	overLine := protocol.GameOver(result.Winner, result.WinLine, result.Decisive)
	that.players.Send(game.PlayerXID, overLine)
	that.players.Send(game.PlayerOID, overLine)

	if result.Decisive {
		winnerID := game.PlayerXID
		loserID := game.PlayerOID
		if result.Winner == entity.MarkO {
			winnerID, loserID = loserID, winnerID
		}

		if winner, ok := that.players.Get(winnerID); ok {
			winner.ApplyWin(winRating)
		}
		if loser, ok := that.players.Get(loserID); ok {
			loser.ApplyLoss(lossRating)
		}
	} else {
		for _, id := range []string{game.PlayerXID, game.PlayerOID} {
			if participant, ok := that.players.Get(id); ok {
				participant.ApplyTie()
			}
		}
	}

	that.logger.Info("game finished", "gameID", game.ID, "status", game.Status())
	that.archiveGame(ctx, game)

	return nil
}

// RequestRematch - starts the rematch handshake on a finished game.
func (that *Arena) RequestRematch(playerID, gameID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	game, ok := that.game(gameID)
	if !ok {
		return apperror.ErrInvalidRematch
	}

	if game.MarkOf(playerID) == entity.EmptyCell {
		return apperror.ErrNotParticipant
	}

	opponentID := game.OpponentOf(playerID)
	opponent, ok := that.players.Get(opponentID)
	if !ok || opponent.GameID() == "" {
		return apperror.ErrOpponentGone
	}

	if err := game.RequestRematch(playerID); err != nil {
		return err
	}

	that.players.Send(opponentID, protocol.RematchRequested(player.Name()))
	that.players.Send(playerID, protocol.RematchSent(opponent.Name()))

	return nil
}

// AcceptRematch - completes the handshake and starts a fresh game with the
// original requester as X, so the markers rotate.
func (that *Arena) AcceptRematch(playerID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	gameID := player.GameID()
	if gameID == "" {
		return apperror.ErrNoRematchGame
	}

	game, ok := that.game(gameID)
	if !ok || !game.IsOver() {
		return apperror.ErrBadRematchState
	}

	requesterID, err := game.AcceptRematch(playerID)
	if err != nil {
		return err
	}

	requester, ok := that.players.Get(requesterID)
	if !ok {
		return apperror.ErrRequesterGone
	}

	that.players.Send(playerID, protocol.RematchAccepted())
	that.players.Send(requesterID, protocol.RematchAccepted())

	that.startGame(requester, player)

	return nil
}

// DeclineRematch - turns down a pending request. Every precondition failure
// is a silent no-op; only the requester is notified of the decline.
func (that *Arena) DeclineRematch(playerID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return nil
	}

	gameID := player.GameID()
	if gameID == "" {
		return nil
	}

	game, ok := that.game(gameID)
	if !ok {
		return nil
	}

	requesterID, err := game.DeclineRematch(playerID)
	if err != nil {
		return nil
	}

	that.players.Send(requesterID, protocol.RematchDeclined())

	return nil
}

// Stats - sends the player their own counters and rating.
func (that *Arena) Stats(playerID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	stats := player.Stats()
	that.players.Send(playerID, protocol.PlayerStats(stats.Wins, stats.Losses, stats.Ties, stats.Rating))

	return nil
}

// Leaderboard - sends the top rated players. Only players with enough games
// are ranked.
func (that *Arena) Leaderboard(playerID string) error {
	type ranked struct {
		stats entity.PlayerStats
		total int
	}

	candidates := make([]ranked, 0)
	for _, player := range that.players.Snapshot() {
		stats := player.Stats()
		total := stats.Wins + stats.Losses + stats.Ties
		if total >= leaderboardMinGames {
			candidates = append(candidates, ranked{stats: stats, total: total})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].stats.Rating > candidates[j].stats.Rating
	})

	if len(candidates) > leaderboardSize {
		candidates = candidates[:leaderboardSize]
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(candidates))
	for i, candidate := range candidates {
		entries = append(entries, protocol.LeaderboardEntry{
			Rank:   i + 1,
			Name:   candidate.stats.Name,
			Rating: candidate.stats.Rating,
			Wins:   candidate.stats.Wins,
			Losses: candidate.stats.Losses,
			Ties:   candidate.stats.Ties,
		})
	}

	that.players.Send(playerID, protocol.Leaderboard(entries))

	return nil
}

// History - sends the player's last recorded games with opponent and status.
// Games already reaped from the table are skipped.
func (that *Arena) History(playerID string) error {
	player, err := that.player(playerID)
	if err != nil {
		return err
	}

	entries := make([]protocol.HistoryEntry, 0)
	for _, gameID := range player.History(historySize) {
		game, ok := that.game(gameID)
		if !ok {
			continue
		}

		opponentName := "Unknown"
		if opponent, ok := that.players.Get(game.OpponentOf(playerID)); ok {
			opponentName = opponent.Name()
		}

		entries = append(entries, protocol.HistoryEntry{
			GameID:       gameID,
			OpponentName: opponentName,
			Status:       game.Status(),
		})
	}

	that.players.Send(playerID, protocol.GameHistory(entries))

	return nil
}

// startGame - pairs two players into a new game: the first argument plays X
// and moves first.
func (that *Arena) startGame(playerX, playerO *entity.Player) {
	game := entity.NewGame(uuid.NewString(), playerX.ID, playerO.ID)

	that.mu.Lock()
	that.games[game.ID] = game
	that.mu.Unlock()

	playerX.SetGameID(game.ID)
	playerO.SetGameID(game.ID)
	playerX.RecordGame(game.ID)
	playerO.RecordGame(game.ID)

	that.totalGames.Add(1)

	that.players.Send(playerX.ID, protocol.GameStarted(entity.MarkX, game.ID, playerO.Name()))
	that.players.Send(playerO.ID, protocol.GameStarted(entity.MarkO, game.ID, playerX.Name()))
	that.players.Send(playerX.ID, protocol.YourTurn())

	boardLine := protocol.Board(game.BoardString())
	that.players.Send(playerX.ID, boardLine)
	that.players.Send(playerO.ID, boardLine)

	that.logger.Info("game started", "gameID", game.ID, "playerX", playerX.ID, "playerO", playerO.ID)
}

// forfeitGame - resolves a live game against the leaving player. The
// survivor's game id is left set so they can still query the final result.
func (that *Arena) forfeitGame(ctx context.Context, game *entity.Game, leaver *entity.Player) {
	winnerID, _, ok := game.Forfeit(leaver.ID)
	if !ok {
		return
	}

	leaver.ApplyLoss(forfeitLossRating)
	leaver.ClearGameID()

	if winner, ok := that.players.Get(winnerID); ok {
		winner.ApplyWin(forfeitWinRating)
		that.players.Send(winnerID, protocol.OpponentDisconnected())
	}

	that.logger.Info("game forfeited", "gameID", game.ID, "leaver", leaver.ID)
	that.archiveGame(ctx, game)
}

func (that *Arena) archiveGame(ctx context.Context, game *entity.Game) {
	if err := that.archive.Save(ctx, game.Snapshot()); err != nil {
		that.logger.Error("failed to archive game", "gameID", game.ID, "error", err)
	}
}
