// Package host runs game sessions for connected players: it keeps the
// lobby, feeds queued events into the running session and publishes the
// results.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/config"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/queue"
	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
	"github.com/cbodonnell/deacoudre/pkg/state"
	"github.com/cbodonnell/deacoudre/pkg/workers"
	"github.com/cbodonnell/deacoudre/pkg/world/memory"
)

const (
	// VoidY is the height below which a player is considered out of the world
	VoidY = -1
	// StatusBroadcastTicks is how often the status is sent to clients when nothing changed
	StatusBroadcastTicks = 20
	// PendingMessageTicks is how long a message from a client whose connect
	// event has not been processed yet is held before it is dropped
	PendingMessageTicks = 20
)

type pendingMessage struct {
	message *messages.Message
	age     int
}

type GameManager struct {
	clientMessageQueue   queue.Queue[*messages.Message]
	serverEventQueue     queue.Queue[any]
	stateManager         state.StateManager
	broadcastMessageChan chan<- workers.BroadcastMessage
	saveMatchResultChan  chan<- *models.MatchResult
	gameLoopInterval     time.Duration
	config               config.Config
	arenaOptions         memory.ArenaOptions
	autoStartPlayers     int
	rand                 *rand.Rand
	logger               *log.Logger

	world       *memory.World
	clients     map[uint32]types.Participant
	pending     []pendingMessage
	broadcaster *channelBroadcaster
	session     *game.Session
	closer      *closeRequest
	startedAt   int64
	timestamp   int64
	// lastStatus is the phase and roster size last sent to clients
	lastStatus  string
	statusTicks int
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	ClientMessageQueue   queue.Queue[*messages.Message]
	ServerEventQueue     queue.Queue[any]
	StateManager         state.StateManager
	BroadcastMessageChan chan<- workers.BroadcastMessage
	SaveMatchResultChan  chan<- *models.MatchResult
	GameLoopInterval     time.Duration
	Config               config.Config
	ArenaOptions         memory.ArenaOptions
	// AutoStartPlayers starts a game as soon as that many players are
	// online. Zero waits for a start message.
	AutoStartPlayers int
	// Rand is optional
	Rand *rand.Rand
}

func NewGameManager(opts NewGameManagerOptions) (*GameManager, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	world, err := memory.NewArena(opts.ArenaOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to build arena: %v", err)
	}
	if opts.GameLoopInterval <= 0 {
		return nil, fmt.Errorf("game loop interval must be positive")
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := log.Default().Named("host")

	return &GameManager{
		clientMessageQueue:   opts.ClientMessageQueue,
		serverEventQueue:     opts.ServerEventQueue,
		stateManager:         opts.StateManager,
		broadcastMessageChan: opts.BroadcastMessageChan,
		saveMatchResultChan:  opts.SaveMatchResultChan,
		gameLoopInterval:     opts.GameLoopInterval,
		config:               opts.Config,
		arenaOptions:         opts.ArenaOptions,
		autoStartPlayers:     opts.AutoStartPlayers,
		rand:                 rng,
		logger:               logger,
		world:                world,
		clients:              make(map[uint32]types.Participant),
		broadcaster: &channelBroadcaster{
			ch:     opts.BroadcastMessageChan,
			logger: logger,
		},
	}, nil
}

// Start starts the game loop. It returns when the context is done.
func (gm *GameManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			gm.Stop()
			return nil
		case t := <-ticker.C:
			err := gm.gameTick(ctx, t)
			if err != nil {
				gm.logger.Error("Failed to run game tick: %v", err)
			}
		}
	}
}

// Stop abandons the running session without recording a result.
func (gm *GameManager) Stop() {
	if gm.session == nil {
		return
	}
	gm.logger.Info("Abandoning running session")
	gm.session.OnClose()
	gm.session = nil
}

// gameTick runs one iteration of the game loop.
func (gm *GameManager) gameTick(ctx context.Context, t time.Time) error {
	gm.timestamp = t.UnixMilli()
	gm.processServerEvents()
	gm.processClientMessages()

	if gm.session == nil && gm.autoStartPlayers > 0 && len(gm.world.OnlinePlayers()) >= gm.autoStartPlayers {
		if err := gm.startSession(); err != nil {
			return fmt.Errorf("failed to auto start session: %v", err)
		}
	}

	if gm.session != nil {
		gm.world.Advance()
		gm.session.OnTick()
		if gm.closer.requested {
			gm.finishSession()
		}
	}

	return gm.publishState(ctx)
}

// processServerEvents applies connects and disconnects queued by the network.
func (gm *GameManager) processServerEvents() {
	for _, item := range gm.serverEventQueue.ReadAllMessages() {
		switch event := item.(type) {
		case *types.ConnectPlayerEvent:
			player := gm.world.AddPlayer(event.Participant, event.Name)
			gm.clients[event.ClientID] = event.Participant
			gm.logger.Debug("Player %s connected as %s", event.Participant, event.Name)
			if gm.session != nil {
				gm.session.OnJoin(player)
			}
		case *types.DisconnectPlayerEvent:
			if player, ok := gm.world.Entity(event.Participant); ok && gm.session != nil {
				gm.session.OnLeave(player)
			}
			gm.world.SetOnline(event.Participant, false)
			delete(gm.clients, event.ClientID)
			gm.logger.Debug("Player %s disconnected", event.Participant)
		default:
			gm.logger.Error("Unhandled server event type: %T", event)
		}
	}
}

// processClientMessages applies pending player input to the world and the
// session. Connect events travel through their own worker, so input from a
// client that is not known yet is retried on the following ticks.
func (gm *GameManager) processClientMessages() {
	batch := gm.pending
	gm.pending = nil
	for _, message := range gm.clientMessageQueue.ReadAllMessages() {
		batch = append(batch, pendingMessage{message: message})
	}

	for _, item := range batch {
		p, ok := gm.clients[item.message.ClientID]
		if !ok {
			item.age++
			if item.age < PendingMessageTicks {
				gm.pending = append(gm.pending, item)
				continue
			}
			gm.logger.Warn("Client %d is not in the game, dropping %s message", item.message.ClientID, item.message.Type)
			continue
		}
		gm.handleClientMessage(p, item.message)
	}
}

func (gm *GameManager) handleClientMessage(p types.Participant, message *messages.Message) {
	switch message.Type {
	case messages.MessageTypeClientMove:
		clientMove := &messages.ClientMove{}
		if err := json.Unmarshal(message.Payload, clientMove); err != nil {
			gm.logger.Error("Failed to unmarshal client move: %v", err)
			return
		}
		gm.handleMove(p, clientMove.Position)
	case messages.MessageTypeClientDamage:
		clientDamage := &messages.ClientDamage{}
		if err := json.Unmarshal(message.Payload, clientDamage); err != nil {
			gm.logger.Error("Failed to unmarshal client damage: %v", err)
			return
		}
		gm.handleDamage(p, types.ParseDamageSource(clientDamage.Source), clientDamage.Fatal)
	case messages.MessageTypeClientStart:
		if gm.session != nil {
			gm.logger.Warn("Client %d asked to start while a game is running", message.ClientID)
			return
		}
		if err := gm.startSession(); err != nil {
			gm.logger.Error("Failed to start session: %v", err)
		}
	default:
		gm.logger.Error("Unhandled message type: %s", message.Type)
	}
}

func (gm *GameManager) handleMove(p types.Participant, pos types.Vec3) {
	if !gm.world.Move(p, pos) {
		return
	}
	if pos.Y >= VoidY {
		return
	}

	player, ok := gm.world.Entity(p)
	if !ok {
		return
	}
	if gm.session != nil {
		gm.session.OnDamage(player, types.DamageSourceOutOfWorld)
		return
	}
	gm.world.SpawnPlayer(player, types.GameModeAdventure)
}

func (gm *GameManager) handleDamage(p types.Participant, source types.DamageSource, fatal bool) {
	player, ok := gm.world.Entity(p)
	if !ok || gm.session == nil {
		return
	}
	if fatal {
		gm.session.OnDeath(player, source)
		return
	}
	gm.session.OnDamage(player, source)
}

// startSession freezes the online players into a new game.
func (gm *GameManager) startSession() error {
	online := gm.world.OnlinePlayers()
	if len(online) == 0 {
		return fmt.Errorf("no players online")
	}
	participants := make([]types.Participant, 0, len(online))
	for _, player := range online {
		participants = append(participants, player.Participant())
	}

	scoreboard := &broadcastScoreboard{broadcaster: gm.broadcaster}
	closer := &closeRequest{}
	session, err := game.NewSession(game.NewSessionOptions{
		Config:       gm.config,
		Participants: participants,
		World:        gm.world,
		Map:          gm.world,
		Spawner:      gm.world.Spawner(),
		Broadcaster:  gm.broadcaster,
		Scoreboard:   scoreboard,
		Closer:       closer,
		Rand:         gm.rand,
		Logger:       gm.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %v", err)
	}

	gm.session = session
	gm.closer = closer
	gm.startedAt = gm.timestamp
	session.Open()
	gm.logger.Info("Started a game with %d players", len(participants))

	return nil
}

// finishSession records the result and returns everyone to a fresh arena.
func (gm *GameManager) finishSession() {
	result := gm.matchResult()
	gm.session.OnClose()
	gm.session = nil
	gm.closer = nil

	if gm.saveMatchResultChan != nil {
		select {
		case gm.saveMatchResultChan <- result:
		default:
			gm.logger.Error("Save channel is full, dropping match result")
		}
	}

	world, err := memory.NewArena(gm.arenaOptions)
	if err != nil {
		// options were validated when the manager was built
		gm.logger.Error("Failed to rebuild arena: %v", err)
		return
	}
	for _, player := range gm.world.OnlinePlayers() {
		world.AddPlayer(player.Participant(), player.Name())
	}
	gm.world = world
}

func (gm *GameManager) matchResult() *models.MatchResult {
	snapshot := gm.session.Snapshot()
	result := &models.MatchResult{
		StartedAt:    gm.startedAt,
		EndedAt:      gm.timestamp,
		Ticks:        gm.world.Time(),
		Participants: make([]models.MatchParticipant, 0, len(snapshot.Participants)),
	}
	for _, p := range snapshot.Participants {
		result.Participants = append(result.Participants, models.MatchParticipant{
			Participant: p.Participant.String(),
			Name:        p.Name,
			Lives:       p.Lives,
			Marker:      string(p.Marker),
		})
	}
	if winner, ok := gm.session.Result().Winner(); ok {
		result.Winner = winner.String()
		if player, ok := gm.world.Player(winner); ok {
			result.WinnerName = player.Name()
		}
	}
	return result
}

// publishState shares the lobby and session view with the API and the clients.
func (gm *GameManager) publishState(ctx context.Context) error {
	status := &state.Status{
		Timestamp: gm.timestamp,
		Phase:     state.PhaseLobby,
		Players:   make([]state.LobbyPlayer, 0),
	}
	for _, player := range gm.world.OnlinePlayers() {
		status.Players = append(status.Players, state.LobbyPlayer{
			Participant: player.Participant(),
			Name:        player.Name(),
		})
	}
	if gm.session != nil {
		status.Phase = state.PhasePlaying
		snapshot := gm.session.Snapshot()
		status.Session = &snapshot
	}

	if err := gm.stateManager.Set(ctx, status); err != nil {
		return fmt.Errorf("failed to set state: %v", err)
	}

	gm.statusTicks++
	key := fmt.Sprintf("%s/%d", status.Phase, len(status.Players))
	if key == gm.lastStatus && gm.statusTicks < StatusBroadcastTicks {
		return nil
	}
	gm.lastStatus = key
	gm.statusTicks = 0
	gm.broadcaster.send(workers.BroadcastMessage{
		Type:    messages.MessageTypeServerSnapshot,
		Message: &messages.ServerSnapshot{Status: status},
	})

	return nil
}
