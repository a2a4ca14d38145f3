package game

import (
	"testing"

	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateWin(t *testing.T) {
	ps := participants(2)

	tests := []struct {
		name       string
		in         WinInput
		wantWin    bool
		wantWinner types.Participant
	}{
		{
			name:    "testing mode never wins",
			in:      WinInput{IgnoreWinState: true, Online: ps[:1], PoolCovered: true},
			wantWin: false,
		},
		{
			name:    "two online keeps playing",
			in:      WinInput{Online: ps},
			wantWin: false,
		},
		{
			name:       "sole survivor wins",
			in:         WinInput{Online: ps[:1]},
			wantWin:    true,
			wantWinner: ps[0],
		},
		{
			name:       "nobody online ends without winner",
			in:         WinInput{},
			wantWin:    true,
			wantWinner: types.NilParticipant,
		},
		{
			name:       "covered pool with one online has no winner",
			in:         WinInput{Online: ps[:1], PoolCovered: true},
			wantWin:    true,
			wantWinner: types.NilParticipant,
		},
		{
			name:       "covered pool with several online has no winner",
			in:         WinInput{Online: ps, PoolCovered: true},
			wantWin:    true,
			wantWinner: types.NilParticipant,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateWin(tt.in)
			assert.Equal(t, tt.wantWin, got.IsWin())
			winner, ok := got.Winner()
			assert.Equal(t, !tt.wantWinner.IsNil(), ok)
			assert.Equal(t, tt.wantWinner, winner)
		})
	}
}

type blockWorld map[types.BlockPos]types.BlockState

func (w blockWorld) Entity(types.Participant) (Entity, bool)   { return nil, false }
func (w blockWorld) BlockState(p types.BlockPos) types.BlockState { return w[p] }
func (w blockWorld) SetBlockState(p types.BlockPos, s types.BlockState) {
	w[p] = s
}
func (w blockWorld) Time() int64 { return 0 }

func TestPoolCovered(t *testing.T) {
	pool := types.NewBounds(types.BlockPos{}, types.BlockPos{X: 1, Z: 1})
	w := blockWorld{}
	pool.Iterate(func(p types.BlockPos) bool {
		w[p] = types.Water
		return true
	})
	assert.False(t, PoolCovered(w, pool))

	w[types.BlockPos{}] = "minecraft:red_wool"
	w[types.BlockPos{X: 1}] = "minecraft:red_wool"
	w[types.BlockPos{Z: 1}] = types.EmeraldBlock
	assert.False(t, PoolCovered(w, pool))

	w[types.BlockPos{X: 1, Z: 1}] = "minecraft:blue_wool"
	assert.True(t, PoolCovered(w, pool))
}
