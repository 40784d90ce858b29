package tcp

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/registry"
	"github.com/rocketscienceinc/tictactoe-arena/internal/usecase"
)

type nopArchive struct{}

func (nopArchive) Save(_ context.Context, _ *entity.GameRecord) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	players := registry.NewPlayers()
	lobbies := registry.NewLobbies()
	lobbies.Create("Main Lobby", "The main lobby for all players")

	arena := usecase.NewArena(logger, players, lobbies, nopArchive{}, "Test Server", 10)

	return New(logger, arena)
}

// lineReader drains one end of a pipe in the background so writes through the
// session never block, and collects whole lines for assertions.
type lineReader struct {
	mu    sync.Mutex
	lines []string
}

func newLineReader(conn net.Conn) *lineReader {
	reader := &lineReader{}

	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			reader.mu.Lock()
			reader.lines = append(reader.lines, scanner.Text())
			reader.mu.Unlock()
		}
	}()

	return reader
}

func (that *lineReader) Lines() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]string, len(that.lines))
	copy(out, that.lines)

	return out
}

func (that *lineReader) waitFor(t *testing.T, prefix string) string {
	t.Helper()

	var found string
	require.Eventually(t, func() bool {
		for _, line := range that.Lines() {
			if strings.HasPrefix(line, prefix) {
				found = line
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "no line with prefix %q", prefix)

	return found
}

func TestSession_Send(t *testing.T) {
	t.Run("Lines arrive newline-terminated", func(t *testing.T) {
		serverSide, clientSide := net.Pipe()
		defer serverSide.Close()
		defer clientSide.Close()

		reader := newLineReader(clientSide)
		sess := newSession(serverSide)

		sess.Send("WAITING")

		assert.Equal(t, "WAITING", reader.waitFor(t, "WAITING"))
	})

	t.Run("Concurrent sends never interleave", func(t *testing.T) {
		serverSide, clientSide := net.Pipe()
		defer serverSide.Close()
		defer clientSide.Close()

		reader := newLineReader(clientSide)
		sess := newSession(serverSide)

		// When: many goroutines write through the same session
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess.Send("BOARD:XOXOXOXOX")
			}()
		}
		wg.Wait()

		// Then: every received line is intact
		require.Eventually(t, func() bool {
			return len(reader.Lines()) == 20
		}, 2*time.Second, 10*time.Millisecond)

		for _, line := range reader.Lines() {
			assert.Equal(t, "BOARD:XOXOXOXOX", line)
		}
	})
}

func TestServer_Dispatch(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Server, *Session, *lineReader, string) {
		t.Helper()

		server := newTestServer(t)

		serverSide, clientSide := net.Pipe()
		t.Cleanup(func() {
			serverSide.Close()
			clientSide.Close()
		})

		reader := newLineReader(clientSide)
		sess := newSession(serverSide)
		player := server.arena.Connect(sess)
		reader.waitFor(t, "PLAYER_LIST:")

		return server, sess, reader, player.ID
	}

	t.Run("Unknown verb is reported without closing the session", func(t *testing.T) {
		server, sess, reader, playerID := setup(t)

		quit := server.dispatch(ctx, sess, playerID, "TELEPORT:somewhere")

		assert.False(t, quit)
		assert.Equal(t, "ERROR:Unknown command", reader.waitFor(t, "ERROR:"))
	})

	t.Run("Handler errors are translated to client text", func(t *testing.T) {
		server, sess, reader, playerID := setup(t)

		quit := server.dispatch(ctx, sess, playerID, "MOVE:4")

		assert.False(t, quit)
		assert.Equal(t, "ERROR:You are not in a game", reader.waitFor(t, "ERROR:"))
	})

	t.Run("QUIT ends the session", func(t *testing.T) {
		server, sess, _, playerID := setup(t)

		quit := server.dispatch(ctx, sess, playerID, "QUIT")

		assert.True(t, quit)
	})

	t.Run("NAME renames and FIND_GAME queues", func(t *testing.T) {
		server, sess, reader, playerID := setup(t)

		require.False(t, server.dispatch(ctx, sess, playerID, "NAME:Alice"))
		reader.waitFor(t, "PLAYER_UPDATE:"+playerID+":name:Alice")

		require.False(t, server.dispatch(ctx, sess, playerID, "FIND_GAME"))
		reader.waitFor(t, "WAITING")
	})

	t.Run("CHAT and LOBBY_CHAT are aliases", func(t *testing.T) {
		server, sess, reader, playerID := setup(t)
		require.False(t, server.dispatch(ctx, sess, playerID, "NAME:Alice"))

		require.False(t, server.dispatch(ctx, sess, playerID, "CHAT:hello"))
		reader.waitFor(t, "LOBBY_CHAT:Alice:hello")

		require.False(t, server.dispatch(ctx, sess, playerID, "LOBBY_CHAT:again"))
		reader.waitFor(t, "LOBBY_CHAT:Alice:again")
	})
}

func TestServer_Serve(t *testing.T) {
	t.Run("Two clients play a full game over the wire", func(t *testing.T) {
		server := newTestServer(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		aliceServer, alice := net.Pipe()
		bobServer, bob := net.Pipe()
		t.Cleanup(func() {
			alice.Close()
			bob.Close()
		})

		go server.serve(ctx, aliceServer)
		go server.serve(ctx, bobServer)

		aliceReader := newLineReader(alice)
		bobReader := newLineReader(bob)
		aliceReader.waitFor(t, "CONNECTED:")
		bobReader.waitFor(t, "CONNECTED:")

		send := func(conn net.Conn, line string) {
			_, err := conn.Write([]byte(line + "\n"))
			require.NoError(t, err)
		}

		// Given: both clients search; the pairing seeker plays X
		send(alice, "FIND_GAME")
		aliceReader.waitFor(t, "WAITING")
		send(bob, "FIND_GAME")
		bobReader.waitFor(t, "GAME_STARTED:X:")
		aliceReader.waitFor(t, "GAME_STARTED:O:")
		bobReader.waitFor(t, "YOUR_TURN")

		// When: Bob wins on the top row, each move confirmed before the next
		send(bob, "MOVE:0")
		aliceReader.waitFor(t, "BOARD:X        ")
		send(alice, "MOVE:3")
		bobReader.waitFor(t, "BOARD:X  O     ")
		send(bob, "MOVE:1")
		aliceReader.waitFor(t, "BOARD:XX O     ")
		send(alice, "MOVE:4")
		bobReader.waitFor(t, "BOARD:XX OO    ")
		send(bob, "MOVE:2")

		// Then: both see the result
		aliceReader.waitFor(t, "GAME_OVER:X:0-1-2")
		bobReader.waitFor(t, "GAME_OVER:X:0-1-2")
	})

	t.Run("QUIT disconnects and forfeits the live game", func(t *testing.T) {
		server := newTestServer(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		aliceServer, alice := net.Pipe()
		bobServer, bob := net.Pipe()
		t.Cleanup(func() {
			alice.Close()
			bob.Close()
		})

		go server.serve(ctx, aliceServer)
		go server.serve(ctx, bobServer)

		aliceReader := newLineReader(alice)
		bobReader := newLineReader(bob)
		aliceReader.waitFor(t, "CONNECTED:")
		bobReader.waitFor(t, "CONNECTED:")

		_, err := alice.Write([]byte("FIND_GAME\n"))
		require.NoError(t, err)
		aliceReader.waitFor(t, "WAITING")
		_, err = bob.Write([]byte("FIND_GAME\n"))
		require.NoError(t, err)
		bobReader.waitFor(t, "GAME_STARTED:X:")

		// When: Alice quits mid-game
		_, err = alice.Write([]byte("QUIT\n"))
		require.NoError(t, err)

		// Then: Bob wins by forfeit
		bobReader.waitFor(t, "OPPONENT_DISCONNECTED")
		bobReader.waitFor(t, "LOBBY_LEAVE:")
	})
}
