package game

import "github.com/cbodonnell/deacoudre/pkg/game/types"

// World is the block and entity storage owned by the host.
// Entity handles must be looked up again on every tick; they are never kept
// by the session.
type World interface {
	// Entity returns the live handle of an online participant.
	Entity(p types.Participant) (Entity, bool)
	BlockState(pos types.BlockPos) types.BlockState
	SetBlockState(pos types.BlockPos, state types.BlockState)
	// Time is the world time in ticks.
	Time() int64
}

// Entity is a live player handle.
type Entity interface {
	Participant() types.Participant
	Name() string
	Position() types.Vec3
	Teleport(pos types.Vec3, yaw, pitch float32)
	// SetExperienceLevel drives the level display, used as the life indicator.
	SetExperienceLevel(level int)
}

// Map exposes the named regions and spawn point of the loaded map.
type Map interface {
	Region(name string) (types.Bounds, bool)
	Spawn() types.BlockPos
}

// Spawner puts a player into the playing or spectating state.
type Spawner interface {
	Spawn(e Entity, mode types.GameMode)
}

// Broadcaster sends chat lines and sounds to every connected viewer.
type Broadcaster interface {
	Message(text types.Text)
	Sound(sound types.Sound)
}

// Scoreboard is the display resource owned by a session.
type Scoreboard interface {
	Update(snapshot Snapshot)
	Close()
}

// Closer ends the hosting game when the session is done.
type Closer interface {
	RequestClose()
}
