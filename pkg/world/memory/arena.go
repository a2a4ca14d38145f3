package memory

import (
	"fmt"

	"github.com/cbodonnell/deacoudre/pkg/game/constants"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

const (
	DefaultPoolWidth  = 5
	DefaultPoolLength = 5
	// platformHeight is how far above the water the jumping platform sits
	platformHeight = 20
)

type ArenaOptions struct {
	PoolWidth  int
	PoolLength int
}

// NewArena builds a stone basin holding a single layer of water with a
// diving platform above its north edge:
//
//	pool            the water layer at y=1
//	jumpingPlatform three stone blocks at y=1+platformHeight
//	jumpingArea     the air box above the platform
//	spawn           ground level south of the pool
func NewArena(opts ArenaOptions) (*World, error) {
	if opts.PoolWidth == 0 {
		opts.PoolWidth = DefaultPoolWidth
	}
	if opts.PoolLength == 0 {
		opts.PoolLength = DefaultPoolLength
	}
	if opts.PoolWidth < 1 || opts.PoolLength < 1 {
		return nil, fmt.Errorf("pool must be at least 1x1, got %dx%d", opts.PoolWidth, opts.PoolLength)
	}

	w := NewWorld()
	waterY := 1
	pool := types.NewBounds(
		types.BlockPos{X: 0, Y: waterY, Z: 0},
		types.BlockPos{X: opts.PoolWidth - 1, Y: waterY, Z: opts.PoolLength - 1},
	)

	// floor and rim
	w.Fill(types.NewBounds(
		types.BlockPos{X: -1, Y: 0, Z: -1},
		types.BlockPos{X: opts.PoolWidth, Y: waterY, Z: opts.PoolLength},
	), types.Stone)
	w.Fill(pool, types.Water)

	centerX := opts.PoolWidth / 2
	top := waterY + platformHeight
	platform := types.NewBounds(
		types.BlockPos{X: centerX, Y: top, Z: -3},
		types.BlockPos{X: centerX, Y: top, Z: -1},
	)
	w.Fill(platform, types.Stone)

	jumpingArea := types.NewBounds(
		types.BlockPos{X: centerX - 1, Y: top + 1, Z: -4},
		types.BlockPos{X: centerX + 1, Y: top + 4, Z: 0},
	)

	w.SetRegion(constants.RegionPool, pool)
	w.SetRegion(constants.RegionJumpingPlatform, platform)
	w.SetRegion(constants.RegionJumpingArea, jumpingArea)
	w.SetSpawn(types.BlockPos{X: centerX, Y: waterY + 1, Z: opts.PoolLength + 2})

	return w, nil
}
