package types

import "math"

// BlockPos is the integer coordinate of a block cell.
type BlockPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p BlockPos) Offset(dx, dy, dz int) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

func (p BlockPos) West() BlockPos  { return p.Offset(-1, 0, 0) }
func (p BlockPos) East() BlockPos  { return p.Offset(1, 0, 0) }
func (p BlockPos) North() BlockPos { return p.Offset(0, 0, -1) }
func (p BlockPos) South() BlockPos { return p.Offset(0, 0, 1) }

// Neighbors returns the four horizontal orthogonal neighbours.
func (p BlockPos) Neighbors() [4]BlockPos {
	return [4]BlockPos{p.West(), p.East(), p.North(), p.South()}
}

// Vec3 is an entity position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(x, y, z float64) Vec3 {
	return Vec3{X: v.X + x, Y: v.Y + y, Z: v.Z + z}
}

// BlockPos returns the block containing v.
func (v Vec3) BlockPos() BlockPos {
	return BlockPos{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

// Bounds is an axis-aligned box of blocks. Both corners are inclusive.
type Bounds struct {
	Min BlockPos `json:"min"`
	Max BlockPos `json:"max"`
}

// NewBounds builds bounds from two arbitrary corners.
func NewBounds(a, b BlockPos) Bounds {
	return Bounds{
		Min: BlockPos{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: BlockPos{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

func (b Bounds) Contains(p BlockPos) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsVec truncates each coordinate toward zero before testing.
func (b Bounds) ContainsVec(v Vec3) bool {
	return b.Contains(BlockPos{X: int(v.X), Y: int(v.Y), Z: int(v.Z)})
}

// Center is the geometric centre of the box, treating every block as a unit cube.
func (b Bounds) Center() Vec3 {
	return Vec3{
		X: float64(b.Min.X+b.Max.X+1) / 2,
		Y: float64(b.Min.Y+b.Max.Y+1) / 2,
		Z: float64(b.Min.Z+b.Max.Z+1) / 2,
	}
}

func (b Bounds) Volume() int {
	return (b.Max.X - b.Min.X + 1) * (b.Max.Y - b.Min.Y + 1) * (b.Max.Z - b.Min.Z + 1)
}

// Iterate calls fn for every block in the box until fn returns false.
func (b Bounds) Iterate(fn func(BlockPos) bool) {
	for y := b.Min.Y; y <= b.Max.Y; y++ {
		for z := b.Min.Z; z <= b.Max.Z; z++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				if !fn(BlockPos{X: x, Y: y, Z: z}) {
					return
				}
			}
		}
	}
}
