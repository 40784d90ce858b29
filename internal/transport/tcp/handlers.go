package tcp

import "context"

func (that *Server) handleName(_ context.Context, _ *Session, playerID, arg string) error {
	return that.arena.SetName(playerID, arg)
}

func (that *Server) handleLobbyChat(_ context.Context, _ *Session, playerID, arg string) error {
	return that.arena.LobbyChat(playerID, arg)
}

func (that *Server) handleGameChat(_ context.Context, _ *Session, playerID, arg string) error {
	return that.arena.GameChat(playerID, arg)
}

func (that *Server) handleListLobbies(_ context.Context, _ *Session, playerID, _ string) error {
	return that.arena.ListLobbies(playerID)
}

func (that *Server) handleJoinLobby(_ context.Context, _ *Session, playerID, arg string) error {
	return that.arena.JoinLobby(playerID, arg)
}

func (that *Server) handleFindGame(ctx context.Context, _ *Session, playerID, _ string) error {
	return that.arena.FindGame(ctx, playerID)
}

func (that *Server) handleMove(ctx context.Context, _ *Session, playerID, arg string) error {
	return that.arena.MakeMove(ctx, playerID, arg)
}

func (that *Server) handleRematch(_ context.Context, _ *Session, playerID, arg string) error {
	return that.arena.RequestRematch(playerID, arg)
}

func (that *Server) handleRematchAccept(_ context.Context, _ *Session, playerID, _ string) error {
	return that.arena.AcceptRematch(playerID)
}

func (that *Server) handleRematchDecline(_ context.Context, _ *Session, playerID, _ string) error {
	return that.arena.DeclineRematch(playerID)
}

func (that *Server) handleStats(_ context.Context, _ *Session, playerID, _ string) error {
	return that.arena.Stats(playerID)
}

func (that *Server) handleLeaderboard(_ context.Context, _ *Session, playerID, _ string) error {
	return that.arena.Leaderboard(playerID)
}

func (that *Server) handleHistory(_ context.Context, _ *Session, playerID, _ string) error {
	return that.arena.History(playerID)
}

func (that *Server) handleQuit(_ context.Context, _ *Session, _, _ string) error {
	return errQuit
}
