package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/queue"
	"nhooyr.io/websocket"
)

// MaxNameLength is the longest player name accepted on join
const MaxNameLength = 32

type NetworkManager struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue[*messages.Message]
	WSServer      *WSServer
}

type NewNetworkManagerOptions struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue[*messages.Message]
	WSPort        int
	WSServerTLS   *TLSConfig
}

func NewNetworkManager(options NewNetworkManagerOptions) *NetworkManager {
	return &NetworkManager{
		ClientManager: options.ClientManager,
		MessageQueue:  options.MessageQueue,
		WSServer: NewWSServer(NewWSServerOptions{
			Port: options.WSPort,
			TLS:  options.WSServerTLS,
		}),
	}
}

// Start serves WebSocket clients until the context is done.
func (n *NetworkManager) Start(ctx context.Context) error {
	return n.WSServer.Start(ctx, n.handleDisconnect, n.handleMessage)
}

// Handler serves player connections without starting a listener.
func (n *NetworkManager) Handler(ctx context.Context) http.Handler {
	return n.WSServer.Handler(ctx, n.handleDisconnect, n.handleMessage)
}

func (n *NetworkManager) handleDisconnect(conn *websocket.Conn) {
	clientID := n.ClientManager.GetClientIDByWSConn(conn)
	if clientID == 0 {
		log.Warn("Unknown client disconnected")
		return
	}
	n.ClientManager.DisconnectClient(clientID)
	log.Info("Client %d disconnected", clientID)
}

func (n *NetworkManager) handleMessage(ctx context.Context, conn *websocket.Conn, message *messages.Message) {
	if message.Type == messages.MessageTypeClientJoin {
		client, err := n.handleClientJoin(conn, message)
		if err != nil {
			log.Error("Failed to handle client join: %v", err)
			if err := n.sendServerJoinFailure(ctx, conn, err.Error()); err != nil {
				log.Error("Failed to send server join failure: %v", err)
			}
			return
		}
		log.Info("Client %d joined as %s", client.ID, client.Name)
		if err := n.sendServerJoinSuccess(ctx, client); err != nil {
			log.Error("Failed to send server join success: %v", err)
		}
		return
	}

	// the connection identifies the client, not the payload
	clientID := n.ClientManager.GetClientIDByWSConn(conn)
	if clientID == 0 {
		log.Warn("Received %s message from a connection that has not joined", message.Type)
		return
	}
	message.ClientID = clientID

	if err := n.MessageQueue.Enqueue(message); err != nil {
		log.Error("Failed to enqueue message: %v", err)
	}
}

// handleClientJoin handles a client join message.
func (n *NetworkManager) handleClientJoin(conn *websocket.Conn, message *messages.Message) (*Client, error) {
	clientJoin := &messages.ClientJoin{}
	if err := json.Unmarshal(message.Payload, clientJoin); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client join: %v", err)
	}
	if clientJoin.Name == "" || len(clientJoin.Name) > MaxNameLength {
		return nil, fmt.Errorf("name must be between 1 and %d characters", MaxNameLength)
	}

	participant := types.NilParticipant
	if clientJoin.Participant != nil {
		participant = *clientJoin.Participant
	}
	client, err := n.ClientManager.ConnectClient(conn, clientJoin.Name, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to connect client: %v", err)
	}

	return client, nil
}

func (n *NetworkManager) sendServerJoinSuccess(ctx context.Context, client *Client) error {
	msg, err := messages.NewMessage(0, messages.MessageTypeServerJoinSuccess, &messages.ServerJoinSuccess{
		ClientID:    client.ID,
		Participant: client.Participant,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal server join success: %v", err)
	}

	if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
		return fmt.Errorf("failed to send server join success: %v", err)
	}

	return nil
}

func (n *NetworkManager) sendServerJoinFailure(ctx context.Context, conn *websocket.Conn, reason string) error {
	msg, err := messages.NewMessage(0, messages.MessageTypeServerJoinFailure, &messages.ServerJoinFailure{
		Reason: reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal server join failure: %v", err)
	}

	if err := WriteMessageToWS(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to send server join failure: %v", err)
	}

	return nil
}

// SendMessageToAll writes a message to every joined client.
func (n *NetworkManager) SendMessageToAll(ctx context.Context, msg *messages.Message) {
	for _, client := range n.ClientManager.GetClients() {
		if client.WSConn == nil {
			continue
		}
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			log.Error("Failed to send message to client %d: %v", client.ID, err)
		}
	}
}

func (n *NetworkManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		return fmt.Errorf("failed to get client %d: %v", clientID, err)
	}
	if client.WSConn == nil {
		return fmt.Errorf("client %d has no connection", clientID)
	}

	if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
		return fmt.Errorf("failed to send message to client %d: %v", clientID, err)
	}

	return nil
}
