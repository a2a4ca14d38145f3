package constants

const (
	// TicksPerSecond is the host tick cadence
	TicksPerSecond int64 = 20
	// TickIntervalMillis is the wall-clock length of one tick
	TickIntervalMillis int64 = 1000 / TicksPerSecond

	// CloseDelaySeconds is how long a finished session stays open after the win broadcast
	CloseDelaySeconds int64 = 5

	// DefaultLife is the starting life count
	DefaultLife int = 3
	// DefaultTurnTimeLimit is how many seconds a jumper may stay in the jumping area
	DefaultTurnTimeLimit int64 = 20

	// TurnStartHeightOffset is added to the platform centre when teleporting the jumper
	TurnStartHeightOffset float64 = 2
	// JumperYaw is the facing used for every teleport
	JumperYaw float32 = 180
	// JumperPitch is the pitch used for every teleport
	JumperPitch float32 = 0

	// FallBandMinY and FallBandMaxY bound (exclusive) the altitude band in
	// which fall damage counts as a failed jump
	FallBandMinY float64 = 6
	FallBandMaxY float64 = 10

	// OutOfWorldRespawnY is the height players are returned to after leaving the world
	OutOfWorldRespawnY float64 = 10
)

// Region names looked up on the map.
const (
	RegionPool            = "pool"
	RegionJumpingPlatform = "jumpingPlatform"
	RegionJumpingArea     = "jumpingArea"
)
