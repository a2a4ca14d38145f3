package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/deacoudre/pkg/client"
	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/messages"
	"github.com/cbodonnell/deacoudre/pkg/queue"
	"github.com/cbodonnell/deacoudre/pkg/world/memory"
	"golang.org/x/sync/errgroup"
)

// A headless player: it joins, optionally starts the game, and dives into
// a random pool cell whenever it is its turn.
func main() {
	serverURL := flag.String("url", client.DefaultServerURL, "Server WebSocket URL")
	name := flag.String("name", fmt.Sprintf("bot-%d", os.Getpid()), "Player name")
	start := flag.Bool("start", false, "Ask the server to start a game after joining")
	poolWidth := flag.Int("pool-width", memory.DefaultPoolWidth, "Width of the server's pool in blocks")
	poolLength := flag.Int("pool-length", memory.DefaultPoolLength, "Length of the server's pool in blocks")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inbox := queue.NewInMemoryQueue[*messages.Message](1024)
	c, err := client.Dial(ctx, *serverURL, inbox)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect: %v", err))
	}
	defer c.Close()

	b := &bot{
		client:     c,
		inbox:      inbox,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		poolWidth:  *poolWidth,
		poolLength: *poolLength,
		start:      *start,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Start(ctx)
	})
	g.Go(func() error {
		if err := c.Join(ctx, *name); err != nil {
			return err
		}
		return b.run(ctx)
	})
	if err := g.Wait(); err != nil {
		log.Error("Client stopped: %v", err)
		os.Exit(1)
	}
}

type bot struct {
	client     *client.Client
	inbox      queue.Queue[*messages.Message]
	rand       *rand.Rand
	poolWidth  int
	poolLength int
	start      bool

	participant types.Participant
	// waited counts snapshots since the last dive of the current turn
	waited int
	jumped bool
}

// retryTicks is how long the bot waits on the platform before diving again
// after landing on a claimed cell.
const retryTicks = 20

func (b *bot) run(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, msg := range b.inbox.ReadAllMessages() {
				if err := b.handle(ctx, msg); err != nil {
					return err
				}
			}
		}
	}
}

func (b *bot) handle(ctx context.Context, msg *messages.Message) error {
	switch msg.Type {
	case messages.MessageTypeServerJoinSuccess:
		joined := &messages.ServerJoinSuccess{}
		if err := client.Decode(msg, joined); err != nil {
			return err
		}
		b.participant = joined.Participant
		log.Info("Joined as %s", b.participant)
		if b.start {
			return b.client.StartGame(ctx)
		}
	case messages.MessageTypeServerJoinFailure:
		failure := &messages.ServerJoinFailure{}
		if err := client.Decode(msg, failure); err != nil {
			return err
		}
		return fmt.Errorf("join rejected: %s", failure.Reason)
	case messages.MessageTypeServerChat:
		chat := &messages.ServerChat{}
		if err := client.Decode(msg, chat); err != nil {
			return err
		}
		log.Info("[%s] %s", chat.Text.Color, chat.Text.Content)
	case messages.MessageTypeServerScoreboard:
		scoreboard := &messages.ServerScoreboard{}
		if err := client.Decode(msg, scoreboard); err != nil {
			return err
		}
		return b.onSnapshot(ctx, scoreboard.Snapshot)
	}
	return nil
}

// onSnapshot dives once per turn, after the server put the bot on the platform.
func (b *bot) onSnapshot(ctx context.Context, snapshot game.Snapshot) error {
	myTurn := snapshot.State == game.StateActive && snapshot.NextJumper != nil && *snapshot.NextJumper == b.participant
	if !myTurn || snapshot.TurnStarting {
		b.jumped = false
		b.waited = 0
		return nil
	}
	if b.jumped {
		b.waited++
		if b.waited < retryTicks {
			return nil
		}
	}
	b.jumped = true
	b.waited = 0

	target := types.Vec3{
		X: float64(b.rand.Intn(b.poolWidth)) + 0.5,
		Y: 1.5,
		Z: float64(b.rand.Intn(b.poolLength)) + 0.5,
	}
	log.Debug("Diving to %v", target)
	return b.client.Move(ctx, time.Now().UnixMilli(), target)
}
