package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cbodonnell/deacoudre/pkg/api"
	"github.com/cbodonnell/deacoudre/pkg/game/config"
	"github.com/cbodonnell/deacoudre/pkg/host"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/network"
	"github.com/cbodonnell/deacoudre/pkg/queue"
	"github.com/cbodonnell/deacoudre/pkg/repositories"
	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
	"github.com/cbodonnell/deacoudre/pkg/state"
	"github.com/cbodonnell/deacoudre/pkg/workers"
	"github.com/cbodonnell/deacoudre/pkg/world/memory"
	"golang.org/x/sync/errgroup"
)

func main() {
	wsPort := flag.Int("ws-port", 8080, "WebSocket port to listen on")
	apiPort := flag.Int("api-port", 8081, "API port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	poolWidth := flag.Int("pool-width", memory.DefaultPoolWidth, "Width of the pool in blocks")
	poolLength := flag.Int("pool-length", memory.DefaultPoolLength, "Length of the pool in blocks")
	autoStart := flag.Int("auto-start", 0, "Start a game once this many players are online (0 waits for a start message)")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	gameConfig, err := config.LoadEnv()
	if err != nil {
		panic(fmt.Sprintf("Failed to load game config: %v", err))
	}
	log.Info("Players start with %d lives and have %d seconds to jump", gameConfig.Life, gameConfig.TurnTimeLimit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := openRepository(ctx, os.Getenv("DEACOUDRE_DATABASE_URL"))
	if err != nil {
		panic(fmt.Sprintf("Failed to open repository: %v", err))
	}
	defer repository.Close(context.Background())

	clientManager := network.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue[*messages.Message](10000)
	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		WSPort:        *wsPort,
	})

	serverEventQueue := queue.NewInMemoryQueue[any](1000)
	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ConnectionEventChan: clientManager.GetConnectionEventChan(),
		ServerEventQueue:    serverEventQueue,
	})

	saveMatchResultChannelSize := 100
	saveMatchResultChan := make(chan *models.MatchResult, saveMatchResultChannelSize)
	saveMatchResultWorker := workers.NewSaveMatchResultWorker(workers.NewSaveMatchResultWorkerOptions{
		Repository:          repository,
		SaveMatchResultChan: saveMatchResultChan,
	})

	broadcastMessageChannelSize := 1000
	broadcastMessageChan := make(chan workers.BroadcastMessage, broadcastMessageChannelSize)
	broadcastMessageWorker := workers.NewBroadcastMessageWorker(workers.NewBroadcastMessageWorkerOptions{
		Sender:               networkManager,
		BroadcastMessageChan: broadcastMessageChan,
	})

	stateManager := state.NewInMemoryStateManager()
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:         *apiPort,
		StateManager: stateManager,
		Repository:   repository,
	})

	gameLoopInterval := 50 * time.Millisecond // 20 ticks per second
	gameManager, err := host.NewGameManager(host.NewGameManagerOptions{
		ClientMessageQueue:   clientMessageQueue,
		ServerEventQueue:     serverEventQueue,
		StateManager:         stateManager,
		BroadcastMessageChan: broadcastMessageChan,
		SaveMatchResultChan:  saveMatchResultChan,
		GameLoopInterval:     gameLoopInterval,
		Config:               gameConfig,
		ArenaOptions: memory.ArenaOptions{
			PoolWidth:  *poolWidth,
			PoolLength: *poolLength,
		},
		AutoStartPlayers: *autoStart,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game manager: %v", err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		connectionEventWorker.Start(ctx)
		return nil
	})
	g.Go(func() error {
		saveMatchResultWorker.Start(ctx)
		return nil
	})
	g.Go(func() error {
		broadcastMessageWorker.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return networkManager.Start(ctx)
	})
	g.Go(func() error {
		return apiServer.Start(ctx)
	})
	g.Go(func() error {
		log.Info("Starting game manager")
		return gameManager.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

// openRepository picks the repository from a connection string. sqlite://path
// (the default is sqlite://deacoudre.db) and postgres URLs are supported.
func openRepository(ctx context.Context, connStr string) (repositories.Repository, error) {
	if connStr == "" {
		connStr = "sqlite://deacoudre.db"
	}

	if path, ok := strings.CutPrefix(connStr, "sqlite://"); ok {
		repository, err := repositories.NewSQLiteRepository(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %v", err)
		}
		return repository, nil
	}
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		repository, err := repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres repository: %v", err)
		}
		return repository, nil
	}

	return nil, fmt.Errorf("unknown database type in %q", connStr)
}
