// Package memory is an in-memory block world implementing the host
// capabilities a game session consumes.
package memory

import (
	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

// World stores blocks, players and regions. It is owned by the tick
// goroutine and is not safe for concurrent use.
type World struct {
	blocks  map[types.BlockPos]types.BlockState
	players map[types.Participant]*Player
	order   []types.Participant
	regions map[string]types.Bounds
	spawn   types.BlockPos
	time    int64
}

func NewWorld() *World {
	return &World{
		blocks:  make(map[types.BlockPos]types.BlockState),
		players: make(map[types.Participant]*Player),
		regions: make(map[string]types.Bounds),
	}
}

// Entity returns the player only while it is online.
func (w *World) Entity(p types.Participant) (game.Entity, bool) {
	player, ok := w.players[p]
	if !ok || !player.online {
		return nil, false
	}
	return player, true
}

// BlockState returns air for cells that were never set.
func (w *World) BlockState(pos types.BlockPos) types.BlockState {
	if b, ok := w.blocks[pos]; ok {
		return b
	}
	return types.Air
}

func (w *World) SetBlockState(pos types.BlockPos, state types.BlockState) {
	if state == types.Air {
		delete(w.blocks, pos)
		return
	}
	w.blocks[pos] = state
}

// Fill sets every block of b.
func (w *World) Fill(b types.Bounds, state types.BlockState) {
	b.Iterate(func(pos types.BlockPos) bool {
		w.SetBlockState(pos, state)
		return true
	})
}

// Count returns how many blocks of b hold state.
func (w *World) Count(b types.Bounds, state types.BlockState) int {
	n := 0
	b.Iterate(func(pos types.BlockPos) bool {
		if w.BlockState(pos) == state {
			n++
		}
		return true
	})
	return n
}

func (w *World) Time() int64 {
	return w.time
}

// Advance moves world time forward by one tick.
func (w *World) Advance() {
	w.time++
}

func (w *World) Region(name string) (types.Bounds, bool) {
	b, ok := w.regions[name]
	return b, ok
}

func (w *World) SetRegion(name string, b types.Bounds) {
	w.regions[name] = b
}

func (w *World) Spawn() types.BlockPos {
	return w.spawn
}

func (w *World) SetSpawn(pos types.BlockPos) {
	w.spawn = pos
}

// AddPlayer registers an online player at the spawn point. Adding a known
// participant brings it back online under the new name.
func (w *World) AddPlayer(p types.Participant, name string) *Player {
	if player, ok := w.players[p]; ok {
		player.name = name
		player.online = true
		return player
	}
	player := &Player{
		participant: p,
		name:        name,
		position:    w.spawnPosition(),
		online:      true,
	}
	w.players[p] = player
	w.order = append(w.order, p)
	return player
}

func (w *World) Player(p types.Participant) (*Player, bool) {
	player, ok := w.players[p]
	return player, ok
}

// OnlinePlayers returns the online players in join order.
func (w *World) OnlinePlayers() []*Player {
	var out []*Player
	for _, p := range w.order {
		if player := w.players[p]; player.online {
			out = append(out, player)
		}
	}
	return out
}

func (w *World) SetOnline(p types.Participant, online bool) {
	if player, ok := w.players[p]; ok {
		player.online = online
	}
}

// Move places a player without any physics.
func (w *World) Move(p types.Participant, pos types.Vec3) bool {
	player, ok := w.players[p]
	if !ok {
		return false
	}
	player.position = pos
	return true
}

// SpawnPlayer puts a player back on the spawn point in the requested mode.
func (w *World) SpawnPlayer(e game.Entity, mode types.GameMode) {
	player, ok := w.players[e.Participant()]
	if !ok {
		return
	}
	player.mode = mode
	player.position = w.spawnPosition()
}

func (w *World) spawnPosition() types.Vec3 {
	return types.Vec3{X: float64(w.spawn.X) + 0.5, Y: float64(w.spawn.Y), Z: float64(w.spawn.Z) + 0.5}
}

// Spawner adapts the world to game.Spawner.
func (w *World) Spawner() game.Spawner {
	return spawner{w: w}
}

type spawner struct {
	w *World
}

func (s spawner) Spawn(e game.Entity, mode types.GameMode) {
	s.w.SpawnPlayer(e, mode)
}
