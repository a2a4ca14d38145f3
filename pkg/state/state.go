package state

import (
	"context"

	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
)

// LobbyPlayer is a connected player waiting for the next game.
type LobbyPlayer struct {
	Participant types.Participant `json:"participant"`
	Name        string            `json:"name"`
}

// Status is what the game loop publishes for readers on other goroutines.
type Status struct {
	// Timestamp is the unix millisecond time the status was generated
	Timestamp int64          `json:"timestamp"`
	Phase     Phase          `json:"phase"`
	Players   []LobbyPlayer  `json:"players"`
	Session   *game.Snapshot `json:"session,omitempty"`
}

// StateManager provides shared access to the latest status.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current status.
	Get(ctx context.Context) (*Status, error)
	// Set replaces the current status.
	Set(ctx context.Context, status *Status) error
}
