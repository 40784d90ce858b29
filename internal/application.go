package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/registry"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-arena/internal/transport/tcp"
	"github.com/rocketscienceinc/tictactoe-arena/internal/usecase"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	archive, closeArchive, err := newArchive(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeArchive()

	players := registry.NewPlayers()
	lobbies := registry.NewLobbies()
	lobbies.Create("Main Lobby", "The main lobby for all players")

	arena := usecase.NewArena(logger, players, lobbies, archive, conf.ServerName, conf.MaxClients)

	go statsLoop(ctx, log, arena, conf.StatsInterval)

	tcpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting TCP server", "port", conf.TCPPort)
		tcpServer := tcp.New(logger, arena)
		if tcpErr := tcpServer.Start(ctx, conf.TCPPort); tcpErr != nil {
			log.Error("TCP server error", "error", tcpErr)
			tcpErrCh <- tcpErr
		}
	}()

	select {
	case err = <-tcpErrCh:
		return fmt.Errorf("TCP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newArchive - connects the finished-game archive when Redis is configured,
// otherwise installs the no-op archive.
func newArchive(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameArchive, func(), error) {
	addr := conf.Redis.GetRedisAddr()
	if addr == "" {
		log.Info("Game archive disabled, no redis address configured")
		return repository.NewNopArchive(), func() {}, nil
	}

	redisStorage, err := storage.New(ctx, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closer := func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	return repository.NewGameArchive(redisStorage.Connection), closer, nil
}

// statsLoop - periodically logs aggregate server statistics without ever
// blocking a client-serving goroutine.
func statsLoop(ctx context.Context, log *slog.Logger, arena *usecase.Arena, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics := arena.Metrics()
			log.Info("server statistics",
				"uptime", metrics.Uptime.Round(time.Second).String(),
				"connections", metrics.Connections,
				"total_games", metrics.TotalGames,
				"active_games", metrics.ActiveGames,
				"players", metrics.Players,
				"waiting", metrics.Waiting,
			)
		}
	}
}
