// Package tcp serves the line-based client protocol over plain TCP: one
// goroutine per accepted connection, reading newline-terminated commands and
// dispatching them to the arena.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-arena/internal/usecase"
)

// errQuit signals an orderly client-requested shutdown of one session.
var errQuit = errors.New("client quit")

type handlerFunc func(ctx context.Context, sess *Session, playerID, arg string) error

type Server struct {
	logger   *slog.Logger
	arena    *usecase.Arena
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, arena *usecase.Arena) *Server {
	server := &Server{
		logger: logger.With("component", "tcp"),
		arena:  arena,
	}

	server.handlers = map[string]handlerFunc{
		protocol.CmdName:           server.handleName,
		protocol.CmdChat:           server.handleLobbyChat,
		protocol.CmdLobbyChat:      server.handleLobbyChat,
		protocol.CmdGameChat:       server.handleGameChat,
		protocol.CmdListLobbies:    server.handleListLobbies,
		protocol.CmdJoinLobby:      server.handleJoinLobby,
		protocol.CmdFindGame:       server.handleFindGame,
		protocol.CmdMove:           server.handleMove,
		protocol.CmdRematch:        server.handleRematch,
		protocol.CmdRematchAccept:  server.handleRematchAccept,
		protocol.CmdRematchDecline: server.handleRematchDecline,
		protocol.CmdGetStats:       server.handleStats,
		protocol.CmdGetLeaderboard: server.handleLeaderboard,
		protocol.CmdGetHistory:     server.handleHistory,
		protocol.CmdQuit:           server.handleQuit,
	}

	return server
}

// Start - listens on the given port and accepts connections until the
// context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	that.logger.Info("server listening", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			that.logger.Error("failed to accept connection", "error", err)
			continue
		}

		if !that.arena.AcquireConnection() {
			that.logger.Warn("server full, rejecting connection", "remote", conn.RemoteAddr().String())
			_, _ = fmt.Fprintf(conn, "%s\n", protocol.Error("Server is full. Please try again later."))
			_ = conn.Close()
			continue
		}

		go that.serve(ctx, conn)
	}
}

// serve - runs one client session: register the player, loop over inbound
// lines, and clean up exactly once on QUIT, EOF, or read failure.
func (that *Server) serve(ctx context.Context, conn net.Conn) {
	log := that.logger.With("remote", conn.RemoteAddr().String())
	log.Info("connection accepted")

	sess := newSession(conn)
	player := that.arena.Connect(sess)

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			that.arena.Disconnect(ctx, player.ID)
			_ = conn.Close()
		})
	}
	defer shutdown()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if quit := that.dispatch(ctx, sess, player.ID, line); quit {
			break
		}

		player.Touch()
	}

	if err := scanner.Err(); err != nil {
		log.Info("connection lost", "playerID", player.ID, "error", err)
	}
}

// dispatch - routes one inbound line to its verb handler. Handler errors are
// reported to the offending client only; the connection stays open.
func (that *Server) dispatch(ctx context.Context, sess *Session, playerID, line string) bool {
	verb, arg := protocol.ParseCommand(line)

	handler, ok := that.handlers[verb]
	if !ok {
		sess.Send(protocol.Error("Unknown command"))
		return false
	}

	if err := handler(ctx, sess, playerID, arg); err != nil {
		if errors.Is(err, errQuit) {
			return true
		}

		that.logger.Debug("command rejected", "playerID", playerID, "verb", verb, "error", err)
		sess.Send(protocol.Error(protocol.ClientError(err)))
	}

	return false
}
