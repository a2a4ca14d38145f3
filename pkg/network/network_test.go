package network

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func newTestNetwork(t *testing.T) (*NetworkManager, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := NewNetworkManager(NewNetworkManagerOptions{
		ClientManager: NewClientManager(),
		MessageQueue:  queue.NewInMemoryQueue[*messages.Message](16),
	})
	srv := httptest.NewServer(n.Handler(ctx))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return n, conn
}

func send(t *testing.T, conn *websocket.Conn, msgType messages.MessageType, v interface{}) {
	t.Helper()
	msg, err := messages.NewMessage(0, msgType, v)
	require.NoError(t, err)
	require.NoError(t, WriteMessageToWS(context.Background(), conn, msg))
}

func receive(t *testing.T, conn *websocket.Conn) *messages.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	return msg
}

func nextEvent(t *testing.T, n *NetworkManager) ConnectionEvent {
	t.Helper()
	select {
	case event := <-n.ClientManager.GetConnectionEventChan():
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for connection event")
		return ConnectionEvent{}
	}
}

func TestNetworkManager_joinPlayLeave(t *testing.T) {
	n, conn := newTestNetwork(t)

	send(t, conn, messages.MessageTypeClientJoin, &messages.ClientJoin{Name: "Alice"})
	reply := receive(t, conn)
	require.Equal(t, messages.MessageTypeServerJoinSuccess, reply.Type)
	joined := &messages.ServerJoinSuccess{}
	require.NoError(t, json.Unmarshal(reply.Payload, joined))

	event := nextEvent(t, n)
	assert.Equal(t, ConnectionEventTypeConnect, event.Type)
	assert.Equal(t, joined.ClientID, event.ClientID)
	data, ok := event.Data.(ClientConnectData)
	require.True(t, ok)
	assert.Equal(t, "Alice", data.Name)
	assert.Equal(t, joined.Participant, data.Participant)

	send(t, conn, messages.MessageTypeClientStart, nil)
	assert.Eventually(t, func() bool { return n.MessageQueue.Size() == 1 }, 5*time.Second, 10*time.Millisecond)
	queued := n.MessageQueue.ReadAllMessages()
	require.Len(t, queued, 1)
	assert.Equal(t, joined.ClientID, queued[0].ClientID)
	assert.Equal(t, messages.MessageTypeClientStart, queued[0].Type)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	event = nextEvent(t, n)
	assert.Equal(t, ConnectionEventTypeDisconnect, event.Type)
	assert.Equal(t, joined.ClientID, event.ClientID)
	assert.False(t, n.ClientManager.Exists(joined.ClientID))
}

func TestNetworkManager_rejectsInvalidJoin(t *testing.T) {
	n, conn := newTestNetwork(t)

	send(t, conn, messages.MessageTypeClientJoin, &messages.ClientJoin{Name: ""})
	reply := receive(t, conn)
	assert.Equal(t, messages.MessageTypeServerJoinFailure, reply.Type)
	assert.Empty(t, n.ClientManager.GetClients())
}

func TestNetworkManager_ignoresMessagesBeforeJoin(t *testing.T) {
	n, conn := newTestNetwork(t)

	send(t, conn, messages.MessageTypeClientStart, nil)
	send(t, conn, messages.MessageTypeClientJoin, &messages.ClientJoin{Name: "Bob"})
	reply := receive(t, conn)
	require.Equal(t, messages.MessageTypeServerJoinSuccess, reply.Type)

	// messages are handled in order, so the start was already dropped
	assert.Equal(t, 0, n.MessageQueue.Size())
}

func TestClientManager(t *testing.T) {
	cm := NewClientManager()

	a, err := cm.ConnectClient(nil, "A", types.NilParticipant)
	require.NoError(t, err)
	b, err := cm.ConnectClient(nil, "B", types.NilParticipant)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Participant, b.Participant)
	assert.Len(t, cm.GetClients(), 2)

	got, err := cm.GetClient(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	cm.DisconnectClient(a.ID)
	cm.DisconnectClient(a.ID)
	assert.False(t, cm.Exists(a.ID))
	_, err = cm.GetClient(a.ID)
	assert.Error(t, err)

	// identities survive reconnects but cannot be shared
	_, err = cm.ConnectClient(nil, "B again", b.Participant)
	assert.Error(t, err)
	again, err := cm.ConnectClient(nil, "A", a.Participant)
	require.NoError(t, err)
	assert.Equal(t, a.Participant, again.Participant)

	events := cm.GetConnectionEventChan()
	assert.Len(t, events, 4)
}
