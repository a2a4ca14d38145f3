package workers

import (
	"context"

	gametypes "github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/network"
	"github.com/cbodonnell/deacoudre/pkg/queue"
)

type ConnectionEventWorker struct {
	connectionEventChan <-chan network.ConnectionEvent
	serverEventQueue    queue.Queue[any]
}

type NewConnectionEventWorkerOptions struct {
	ConnectionEventChan <-chan network.ConnectionEvent
	ServerEventQueue    queue.Queue[any]
}

// NewConnectionEventWorker creates a new ConnectionEventWorker.
// The worker processes client events like connect and disconnect
// and writes server events to a queue for the game loop to process.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		connectionEventChan: opts.ConnectionEventChan,
		serverEventQueue:    opts.ServerEventQueue,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.connectionEventChan:
			switch event.Type {
			case network.ConnectionEventTypeConnect:
				w.handleClientConnect(event)
			case network.ConnectionEventTypeDisconnect:
				w.handleClientDisconnect(event)
			default:
				log.Error("Unknown client event type: %v", event.Type)
			}
		}
	}
}

func (w *ConnectionEventWorker) handleClientConnect(event network.ConnectionEvent) {
	data, ok := event.Data.(network.ClientConnectData)
	if !ok {
		log.Error("Failed to cast client connect data")
		return
	}

	serverEvent := &gametypes.ConnectPlayerEvent{
		ClientID:    event.ClientID,
		Participant: data.Participant,
		Name:        data.Name,
	}
	if err := w.serverEventQueue.Enqueue(serverEvent); err != nil {
		log.Error("Failed to enqueue connect player event: %v", err)
	}
}

func (w *ConnectionEventWorker) handleClientDisconnect(event network.ConnectionEvent) {
	data, ok := event.Data.(network.ClientDisconnectData)
	if !ok {
		log.Error("Failed to cast client disconnect data")
		return
	}

	serverEvent := &gametypes.DisconnectPlayerEvent{
		ClientID:    event.ClientID,
		Participant: data.Participant,
	}
	if err := w.serverEventQueue.Enqueue(serverEvent); err != nil {
		log.Error("Failed to enqueue disconnect player event: %v", err)
	}
}
