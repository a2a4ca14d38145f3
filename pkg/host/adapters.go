package host

import (
	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/workers"
)

// channelBroadcaster hands chat lines and sounds to the broadcast worker.
// It never blocks the tick loop: when the channel is full the message is dropped.
type channelBroadcaster struct {
	ch     chan<- workers.BroadcastMessage
	logger *log.Logger
}

func (b *channelBroadcaster) Message(text types.Text) {
	b.logger.Debug("chat: %s", text.Content)
	b.send(workers.BroadcastMessage{
		Type:    messages.MessageTypeServerChat,
		Message: &messages.ServerChat{Text: text},
	})
}

func (b *channelBroadcaster) Sound(sound types.Sound) {
	b.send(workers.BroadcastMessage{
		Type:    messages.MessageTypeServerSound,
		Message: &messages.ServerSound{Sound: sound},
	})
}

func (b *channelBroadcaster) send(msg workers.BroadcastMessage) {
	if b.ch == nil {
		return
	}
	select {
	case b.ch <- msg:
	default:
		b.logger.Warn("Broadcast channel is full, dropping %s message", msg.Type)
	}
}

// broadcastScoreboard shows the session state to every client.
type broadcastScoreboard struct {
	broadcaster *channelBroadcaster
	closed      bool
}

func (s *broadcastScoreboard) Update(snapshot game.Snapshot) {
	if s.closed {
		return
	}
	s.broadcaster.send(workers.BroadcastMessage{
		Type:    messages.MessageTypeServerScoreboard,
		Message: &messages.ServerScoreboard{Snapshot: snapshot},
	})
}

func (s *broadcastScoreboard) Close() {
	s.closed = true
}

// closeRequest records that the session asked to be torn down.
type closeRequest struct {
	requested bool
}

func (c *closeRequest) RequestClose() {
	c.requested = true
}
