// Package client connects a player to a game server over WebSocket.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/network"
	"github.com/cbodonnell/deacoudre/pkg/queue"
	"nhooyr.io/websocket"
)

const DefaultServerURL = "ws://localhost:8080"

// Client is the player side of a server connection.
type Client struct {
	conn         *websocket.Conn
	messageQueue queue.Queue[*messages.Message]
	closed       atomic.Bool
}

// Dial opens a connection. Server messages are queued on messageQueue once Start runs.
func Dial(ctx context.Context, url string, messageQueue queue.Queue[*messages.Message]) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v", url, err)
	}
	return &Client{
		conn:         conn,
		messageQueue: messageQueue,
	}, nil
}

// Start reads server messages until the connection closes.
func (c *Client) Start(ctx context.Context) error {
	for {
		msg, err := network.ReadMessageFromWS(ctx, c.conn)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || c.closed.Load() || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read message: %v", err)
		}
		if err := c.messageQueue.Enqueue(msg); err != nil {
			log.Warn("Dropping %s message: %v", msg.Type, err)
		}
	}
}

func (c *Client) Close() error {
	c.closed.Store(true)
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// Join asks to play under name. The reply arrives on the message queue.
func (c *Client) Join(ctx context.Context, name string) error {
	return c.send(ctx, messages.MessageTypeClientJoin, &messages.ClientJoin{Name: name})
}

// Rejoin joins under an identity handed out by an earlier join.
func (c *Client) Rejoin(ctx context.Context, name string, participant types.Participant) error {
	return c.send(ctx, messages.MessageTypeClientJoin, &messages.ClientJoin{Name: name, Participant: &participant})
}

func (c *Client) Move(ctx context.Context, timestamp int64, pos types.Vec3) error {
	return c.send(ctx, messages.MessageTypeClientMove, &messages.ClientMove{Timestamp: timestamp, Position: pos})
}

func (c *Client) Damage(ctx context.Context, source types.DamageSource, fatal bool) error {
	return c.send(ctx, messages.MessageTypeClientDamage, &messages.ClientDamage{Source: source.String(), Fatal: fatal})
}

// StartGame asks the server to start a game with everyone in the lobby.
func (c *Client) StartGame(ctx context.Context) error {
	return c.send(ctx, messages.MessageTypeClientStart, nil)
}

func (c *Client) send(ctx context.Context, t messages.MessageType, v interface{}) error {
	msg, err := messages.NewMessage(0, t, v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %v", t, err)
	}
	if err := network.WriteMessageToWS(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("failed to send %s message: %v", t, err)
	}
	return nil
}

// Decode unmarshals the payload of a server message into v.
func Decode(msg *messages.Message, v interface{}) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", msg.Type, err)
	}
	return nil
}
