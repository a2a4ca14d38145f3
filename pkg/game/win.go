package game

import "github.com/cbodonnell/deacoudre/pkg/game/types"

type WinInput struct {
	// IgnoreWinState is set for sessions started with at most one participant.
	IgnoreWinState bool
	// Online are the participants with a live entity.
	Online []types.Participant
	// PoolCovered is true once no pool cell is water.
	PoolCovered bool
}

// EvaluateWin decides whether the game is over.
// A covered pool ends the game without a winner whatever the online count.
func EvaluateWin(in WinInput) types.WinResult {
	if in.IgnoreWinState {
		return types.NoResult()
	}
	if in.PoolCovered {
		return types.Win(types.NilParticipant)
	}
	if len(in.Online) > 1 {
		return types.NoResult()
	}
	if len(in.Online) == 1 {
		return types.Win(in.Online[0])
	}
	return types.Win(types.NilParticipant)
}

// PoolCovered reports whether no cell of pool still holds water.
func PoolCovered(world World, pool types.Bounds) bool {
	covered := true
	pool.Iterate(func(pos types.BlockPos) bool {
		if world.BlockState(pos) == types.Water {
			covered = false
			return false
		}
		return true
	})
	return covered
}
