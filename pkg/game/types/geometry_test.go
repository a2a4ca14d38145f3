package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounds(t *testing.T) {
	b := NewBounds(BlockPos{X: 3, Y: 1, Z: 2}, BlockPos{X: 0, Y: 0, Z: 0})

	assert.Equal(t, BlockPos{X: 0, Y: 0, Z: 0}, b.Min)
	assert.Equal(t, BlockPos{X: 3, Y: 1, Z: 2}, b.Max)
	assert.Equal(t, 24, b.Volume())
	assert.Equal(t, Vec3{X: 2, Y: 1, Z: 1.5}, b.Center())

	assert.True(t, b.Contains(BlockPos{X: 3, Y: 1, Z: 2}))
	assert.False(t, b.Contains(BlockPos{X: 4, Y: 1, Z: 2}))
	assert.True(t, b.ContainsVec(Vec3{X: 3.9, Y: 1.5, Z: 0.1}))
	assert.False(t, b.ContainsVec(Vec3{X: 4.1, Y: 0, Z: 0}))

	count := 0
	b.Iterate(func(BlockPos) bool {
		count++
		return true
	})
	assert.Equal(t, b.Volume(), count)

	count = 0
	b.Iterate(func(BlockPos) bool {
		count++
		return count < 5
	})
	assert.Equal(t, 5, count)
}

func TestVec3_BlockPos(t *testing.T) {
	assert.Equal(t, BlockPos{X: -1, Y: 2, Z: 0}, Vec3{X: -0.5, Y: 2.99, Z: 0}.BlockPos())
}

func TestBlockPos_Neighbors(t *testing.T) {
	p := BlockPos{X: 1, Y: 5, Z: 1}
	assert.Equal(t, [4]BlockPos{
		{X: 0, Y: 5, Z: 1},
		{X: 2, Y: 5, Z: 1},
		{X: 1, Y: 5, Z: 0},
		{X: 1, Y: 5, Z: 2},
	}, p.Neighbors())
}

func TestWinResult(t *testing.T) {
	assert.False(t, NoResult().IsWin())

	w := Win(NilParticipant)
	assert.True(t, w.IsWin())
	_, ok := w.Winner()
	assert.False(t, ok)

	p := NewParticipant()
	winner, ok := Win(p).Winner()
	assert.True(t, ok)
	assert.Equal(t, p, winner)
}

func TestParticipant_text(t *testing.T) {
	p := NewParticipant()
	b, err := p.MarshalText()
	assert.NoError(t, err)

	var got Participant
	assert.NoError(t, got.UnmarshalText(b))
	assert.Equal(t, p, got)

	parsed, err := ParseParticipant(p.String())
	assert.NoError(t, err)
	assert.Equal(t, p, parsed)

	_, err = ParseParticipant("nope")
	assert.Error(t, err)
}
