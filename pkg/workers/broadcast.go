package workers

import (
	"context"
	"fmt"

	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
)

// MessageSender delivers a message to every joined client.
type MessageSender interface {
	SendMessageToAll(ctx context.Context, msg *messages.Message)
}

type BroadcastMessageWorker struct {
	sender               MessageSender
	broadcastMessageChan <-chan BroadcastMessage
}

type BroadcastMessage struct {
	Type    messages.MessageType
	Message interface{}
}

type NewBroadcastMessageWorkerOptions struct {
	Sender               MessageSender
	BroadcastMessageChan <-chan BroadcastMessage
}

func NewBroadcastMessageWorker(opts NewBroadcastMessageWorkerOptions) *BroadcastMessageWorker {
	return &BroadcastMessageWorker{
		sender:               opts.Sender,
		broadcastMessageChan: opts.BroadcastMessageChan,
	}
}

func (w *BroadcastMessageWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.broadcastMessageChan:
			if err := w.handleBroadcastMessage(ctx, msg); err != nil {
				log.Error("Failed to handle %s broadcast message: %v", msg.Type, err)
			}
		}
	}
}

func (w *BroadcastMessageWorker) handleBroadcastMessage(ctx context.Context, b BroadcastMessage) error {
	switch b.Message.(type) {
	case *messages.ServerChat:
		if b.Type != messages.MessageTypeServerChat {
			return fmt.Errorf("chat payload sent as %s", b.Type)
		}
	case *messages.ServerSound:
		if b.Type != messages.MessageTypeServerSound {
			return fmt.Errorf("sound payload sent as %s", b.Type)
		}
	case *messages.ServerSnapshot:
		if b.Type != messages.MessageTypeServerSnapshot {
			return fmt.Errorf("snapshot payload sent as %s", b.Type)
		}
	case *messages.ServerScoreboard:
		if b.Type != messages.MessageTypeServerScoreboard {
			return fmt.Errorf("scoreboard payload sent as %s", b.Type)
		}
	default:
		return fmt.Errorf("unknown broadcast payload %T", b.Message)
	}

	msg, err := messages.NewMessage(0, b.Type, b.Message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %v", b.Type, err)
	}
	w.sender.SendMessageToAll(ctx, msg)

	return nil
}
