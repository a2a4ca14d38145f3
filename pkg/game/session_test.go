package game_test

import (
	"math/rand"
	"testing"

	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/config"
	"github.com/cbodonnell/deacoudre/pkg/game/constants"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/world/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t          *testing.T
	world      *memory.World
	recorder   *memory.Recorder
	scoreboard *memory.Scoreboard
	closer     *memory.CloseSignal
	session    *game.Session
	players    []types.Participant
}

func newFixture(t *testing.T, names []string, cfg config.Config, arena memory.ArenaOptions) *fixture {
	t.Helper()
	world, err := memory.NewArena(arena)
	require.NoError(t, err)

	f := &fixture{
		t:          t,
		world:      world,
		recorder:   &memory.Recorder{},
		scoreboard: &memory.Scoreboard{},
		closer:     &memory.CloseSignal{},
	}
	for _, name := range names {
		p := types.NewParticipant()
		world.AddPlayer(p, name)
		f.players = append(f.players, p)
	}

	f.session, err = game.NewSession(game.NewSessionOptions{
		Config:       cfg,
		Participants: f.players,
		World:        world,
		Map:          world,
		Spawner:      world.Spawner(),
		Broadcaster:  f.recorder,
		Scoreboard:   f.scoreboard,
		Closer:       f.closer,
		Rand:         rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	f.session.Open()
	return f
}

func configWithLife(life int) config.Config {
	c := config.Default()
	c.Life = life
	return c
}

func (f *fixture) tick() {
	f.world.Advance()
	f.session.OnTick()
}

func (f *fixture) player(i int) *memory.Player {
	p, ok := f.world.Player(f.players[i])
	require.True(f.t, ok)
	return p
}

// jumpInto places a player inside the given pool cell.
func (f *fixture) jumpInto(i int, pos types.BlockPos) {
	f.world.Move(f.players[i], types.Vec3{X: float64(pos.X) + 0.5, Y: float64(pos.Y) + 0.2, Z: float64(pos.Z) + 0.5})
}

func (f *fixture) pool() types.Bounds {
	b, ok := f.world.Region(constants.RegionPool)
	require.True(f.t, ok)
	return b
}

func (f *fixture) hasMessage(content string) bool {
	for _, m := range f.recorder.Messages {
		if m.Content == content {
			return true
		}
	}
	return false
}

// assertLedgersAgree checks that lives, markers and the rotation share one key set.
func (f *fixture) assertLedgersAgree() {
	f.t.Helper()
	participants := f.session.Participants()
	inRotation := make(map[types.Participant]bool, len(participants))
	for _, p := range participants {
		inRotation[p] = true
		_, hasLives := f.session.Lives(p)
		_, hasMarker := f.session.Marker(p)
		assert.True(f.t, hasLives, "lives for %s", p)
		assert.True(f.t, hasMarker, "marker for %s", p)
	}
	for _, p := range f.players {
		if inRotation[p] {
			continue
		}
		_, hasLives := f.session.Lives(p)
		_, hasMarker := f.session.Marker(p)
		assert.False(f.t, hasLives, "stale lives for %s", p)
		assert.False(f.t, hasMarker, "stale marker for %s", p)
	}
}

func TestNewSession_invalidConfig(t *testing.T) {
	world, err := memory.NewArena(memory.ArenaOptions{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr error
	}{
		{name: "zero life", cfg: configWithLife(0), wantErr: config.ErrInvalidLife},
		{name: "no markers", cfg: config.Config{Life: 2, TurnTimeLimit: 20}, wantErr: config.ErrNoMarkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := game.NewSession(game.NewSessionOptions{
				Config:      tt.cfg,
				World:       world,
				Map:         world,
				Spawner:     world.Spawner(),
				Broadcaster: &memory.Recorder{},
				Closer:      &memory.CloseSignal{},
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewSession_missingRegion(t *testing.T) {
	world := memory.NewWorld()
	_, err := game.NewSession(game.NewSessionOptions{
		Config:      config.Default(),
		World:       world,
		Map:         world,
		Spawner:     world.Spawner(),
		Broadcaster: &memory.Recorder{},
		Closer:      &memory.CloseSignal{},
	})
	assert.ErrorIs(t, err, game.ErrMissingRegion)
}

func TestSession_open(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})

	assert.Equal(t, game.StateActive, f.session.State())
	assert.Equal(t, f.players[0], f.session.NextJumper())
	assert.True(t, f.session.TurnStarting())
	assert.False(t, f.session.Testing())
	assert.True(t, f.hasMessage("All player start with 3 life/lives."))
	for i := range f.players {
		lives, ok := f.session.Lives(f.players[i])
		assert.True(t, ok)
		assert.Equal(t, 3, lives)
		assert.Equal(t, types.GameModeAdventure, f.player(i).Mode())
	}
	f.assertLedgersAgree()
}

func TestSession_turnStart(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})

	f.tick()

	platform, _ := f.world.Region(constants.RegionJumpingPlatform)
	want := platform.Center().Add(0, constants.TurnStartHeightOffset, 0)
	assert.Equal(t, want, f.player(0).Position())
	yaw, pitch := f.player(0).Facing()
	assert.Equal(t, constants.JumperYaw, yaw)
	assert.Equal(t, constants.JumperPitch, pitch)
	assert.False(t, f.session.TurnStarting())
	assert.True(t, f.hasMessage("It's A's turn!"))
	assert.Equal(t, 3, f.player(0).ExperienceLevel())
	assert.Equal(t, 3, f.player(1).ExperienceLevel())
	assert.Equal(t, 1, f.scoreboard.Updates)
}

func TestSession_specialCompletion(t *testing.T) {
	f := newFixture(t, []string{"A", "B", "C"}, configWithLife(2), memory.ArenaOptions{PoolWidth: 5, PoolLength: 5})
	f.tick()

	// every neighbour of the centre cell is covered
	center := types.BlockPos{X: 2, Y: 1, Z: 2}
	for _, n := range center.Neighbors() {
		f.world.SetBlockState(n, "minecraft:red_wool")
	}
	f.jumpInto(0, center)
	f.tick()

	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 3, lives)
	assert.Equal(t, types.EmeraldBlock, f.world.BlockState(center))
	assert.Equal(t, f.players[1], f.session.NextJumper())
	assert.True(t, f.session.TurnStarting())
	assert.True(t, f.hasMessage("A made a dé à coudre! They are winning an additional life! 3 lives left!"))
	assert.Equal(t, []types.Sound{types.SoundFireworkLargeBlast, types.SoundFireworkTwinkle}, f.recorder.Sounds)
	assert.Equal(t, f.world.Spawn(), f.player(0).Position().BlockPos())

	f.tick()
	assert.True(t, f.hasMessage("It's B's turn!"))
}

func TestSession_claimWithMarker(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(2), memory.ArenaOptions{PoolWidth: 5, PoolLength: 5})
	f.tick()

	cell := types.BlockPos{X: 2, Y: 1, Z: 2}
	f.jumpInto(0, cell)
	f.tick()

	marker, ok := f.session.Marker(f.players[0])
	require.True(t, ok)
	assert.Equal(t, marker, f.world.BlockState(cell))
	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 2, lives)
	assert.Equal(t, []types.Sound{types.SoundUnderwaterEnter}, f.recorder.Sounds)
	assert.Equal(t, f.players[1], f.session.NextJumper())
}

func TestSession_fallEliminatesLastLife(t *testing.T) {
	f := newFixture(t, []string{"A", "B", "C"}, configWithLife(1), memory.ArenaOptions{})
	f.tick()

	f.world.Move(f.players[0], types.Vec3{X: 0.5, Y: 8, Z: 0.5})
	entity, ok := f.world.Entity(f.players[0])
	require.True(t, ok)
	assert.True(t, f.session.OnDamage(entity, types.DamageSourceFall))

	assert.NotContains(t, f.session.Participants(), f.players[0])
	assert.Equal(t, types.GameModeSpectator, f.player(0).Mode())
	assert.True(t, f.hasMessage("A has been eliminated!"))
	assert.Contains(t, f.recorder.Sounds, types.SoundExperienceOrbPickup)
	assert.Equal(t, f.players[1], f.session.NextJumper())
	f.assertLedgersAgree()
}

func TestSession_fallCostsLife(t *testing.T) {
	f := newFixture(t, []string{"A", "B", "C"}, configWithLife(3), memory.ArenaOptions{})
	f.tick()

	f.world.Move(f.players[0], types.Vec3{X: 1.5, Y: 1.1, Z: 1.5})
	entity, _ := f.world.Entity(f.players[0])
	f.session.OnDamage(entity, types.DamageSourceFall)

	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 2, lives)
	assert.Equal(t, f.players[1], f.session.NextJumper())
	assert.True(t, f.session.TurnStarting())
	assert.True(t, f.hasMessage("A lost a life! 2 life/lives left!"))
	assert.Equal(t, f.world.Spawn(), f.player(0).Position().BlockPos())
}

func TestSession_fallOutsidePoolIgnored(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})
	f.tick()

	f.world.Move(f.players[0], types.Vec3{X: 30, Y: 2, Z: 30})
	entity, _ := f.world.Entity(f.players[0])
	f.session.OnDamage(entity, types.DamageSourceFall)

	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 3, lives)
	assert.Equal(t, f.players[0], f.session.NextJumper())
}

func TestSession_outOfWorld(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})

	f.world.Move(f.players[1], types.Vec3{X: 0, Y: -70, Z: 0})
	entity, _ := f.world.Entity(f.players[1])
	f.session.OnDamage(entity, types.DamageSourceOutOfWorld)

	spawn := f.world.Spawn()
	assert.Equal(t, types.Vec3{X: float64(spawn.X), Y: constants.OutOfWorldRespawnY, Z: float64(spawn.Z)}, f.player(1).Position())
	lives, _ := f.session.Lives(f.players[1])
	assert.Equal(t, 3, lives)
}

func TestSession_deathEliminates(t *testing.T) {
	f := newFixture(t, []string{"A", "B", "C"}, configWithLife(5), memory.ArenaOptions{})
	f.tick()

	entity, _ := f.world.Entity(f.players[1])
	assert.True(t, f.session.OnDeath(entity, types.DamageSourceGeneric))

	assert.Equal(t, []types.Participant{f.players[0], f.players[2]}, f.session.Participants())
	// B did not hold the turn, so the turn moves on from A
	assert.Equal(t, f.players[2], f.session.NextJumper())
	f.assertLedgersAgree()
}

func TestSession_lastSurvivorWins(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})
	f.tick()

	entity, _ := f.world.Entity(f.players[0])
	f.session.OnDeath(entity, types.DamageSourceGeneric)
	f.tick()

	winner, ok := f.session.Result().Winner()
	require.True(t, ok)
	assert.Equal(t, f.players[1], winner)
	assert.Equal(t, game.StateClosing, f.session.State())
	assert.True(t, f.hasMessage("B has won the game!"))
	assert.Contains(t, f.recorder.Sounds, types.SoundVillagerYes)
}

func TestSession_coveredPoolEndsWithoutWinner(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{PoolWidth: 2, PoolLength: 2})
	f.tick()

	f.world.SetBlockState(types.BlockPos{X: 0, Y: 1, Z: 0}, "minecraft:red_wool")
	f.world.SetBlockState(types.BlockPos{X: 1, Y: 1, Z: 0}, "minecraft:blue_wool")
	f.world.SetBlockState(types.BlockPos{X: 0, Y: 1, Z: 1}, "minecraft:red_wool")
	last := types.BlockPos{X: 1, Y: 1, Z: 1}
	f.jumpInto(0, last)
	f.tick()

	assert.NotEqual(t, types.Water, f.world.BlockState(last))
	assert.Equal(t, 0, f.world.Count(f.pool(), types.Water))
	result := f.session.Result()
	assert.True(t, result.IsWin())
	_, ok := result.Winner()
	assert.False(t, ok)
	assert.Equal(t, game.StateClosing, f.session.State())
	assert.True(t, f.hasMessage("The game ended, but nobody won!"))

	closeAt := f.world.Time() + constants.CloseDelaySeconds*constants.TicksPerSecond
	for f.world.Time() < closeAt-1 {
		f.tick()
	}
	assert.Equal(t, 0, f.closer.Requests)
	f.tick()
	assert.Equal(t, 1, f.closer.Requests)
	f.tick()
	assert.Equal(t, 1, f.closer.Requests)

	f.session.OnClose()
	f.session.OnClose()
	assert.Equal(t, game.StateClosed, f.session.State())
	assert.Equal(t, 1, f.scoreboard.Closes)
}

func TestSession_coveredPoolBeatsSingleSurvivor(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{PoolWidth: 3, PoolLength: 3})
	f.tick()

	f.world.SetOnline(f.players[1], false)
	f.world.Fill(f.pool(), "minecraft:lime_wool")
	f.tick()

	result := f.session.Result()
	assert.True(t, result.IsWin())
	_, ok := result.Winner()
	assert.False(t, ok)
}

func TestSession_timeout(t *testing.T) {
	cfg := configWithLife(2)
	cfg.TurnTimeLimit = 1
	f := newFixture(t, []string{"A", "B"}, cfg, memory.ArenaOptions{})

	f.tick()
	for i := 0; i < int(constants.TicksPerSecond)-1; i++ {
		f.tick()
	}
	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 2, lives)

	f.tick()
	lives, _ = f.session.Lives(f.players[0])
	assert.Equal(t, 1, lives)
	assert.True(t, f.hasMessage("A was too slow to jump and lost a life (1)"))
	assert.Equal(t, f.players[1], f.session.NextJumper())

	// B times out, then A times out with its last life
	for i := 0; i < int(constants.TicksPerSecond)+1; i++ {
		f.tick()
	}
	assert.Equal(t, f.players[0], f.session.NextJumper())
	for i := 0; i < int(constants.TicksPerSecond)+1; i++ {
		f.tick()
	}
	assert.NotContains(t, f.session.Participants(), f.players[0])
	_, ok := f.session.Lives(f.players[0])
	assert.False(t, ok)
	f.assertLedgersAgree()
}

func TestSession_testingModeNeverWins(t *testing.T) {
	cfg := configWithLife(100)
	cfg.TurnTimeLimit = 1
	f := newFixture(t, []string{"A"}, cfg, memory.ArenaOptions{})
	require.True(t, f.session.Testing())

	ticks := 10 * (int(constants.TicksPerSecond) + 1)
	for i := 0; i < ticks; i++ {
		f.tick()
		assert.Equal(t, f.players[0], f.session.NextJumper())
	}

	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 90, lives)
	assert.False(t, f.session.Result().IsWin())
	assert.Equal(t, game.StateActive, f.session.State())
}

func TestSession_offlineJumperIsSkipped(t *testing.T) {
	f := newFixture(t, []string{"A", "B", "C"}, configWithLife(3), memory.ArenaOptions{})
	f.world.SetOnline(f.players[0], false)

	f.tick()

	assert.Equal(t, f.players[1], f.session.NextJumper())
	assert.True(t, f.hasMessage("Next player is B"))
	assert.True(t, f.hasMessage("It's B's turn!"))
	assert.Contains(t, f.session.Participants(), f.players[0])
	lives, _ := f.session.Lives(f.players[0])
	assert.Equal(t, 3, lives)
}

func TestSession_joinAndLeave(t *testing.T) {
	f := newFixture(t, []string{"A", "B", "C"}, configWithLife(3), memory.ArenaOptions{})

	late := types.NewParticipant()
	player := f.world.AddPlayer(late, "Late")
	f.session.OnJoin(player)
	assert.Equal(t, types.GameModeSpectator, player.Mode())
	assert.NotContains(t, f.session.Participants(), late)

	f.session.OnLeave(f.player(0))
	assert.NotContains(t, f.session.Participants(), f.players[0])
	assert.Equal(t, f.players[1], f.session.NextJumper())
	f.assertLedgersAgree()
}

func TestSession_closeFromAnyState(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})

	f.session.OnClose()
	assert.Equal(t, game.StateClosed, f.session.State())
	assert.Equal(t, 1, f.scoreboard.Closes)

	before := f.world.Time()
	f.tick()
	assert.Equal(t, 0, f.scoreboard.Updates)
	assert.Equal(t, before+1, f.world.Time())
}

func TestSession_snapshot(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(4), memory.ArenaOptions{})
	f.tick()

	snap := f.session.Snapshot()
	assert.Equal(t, game.StateActive, snap.State)
	require.NotNil(t, snap.NextJumper)
	assert.Equal(t, f.players[0], *snap.NextJumper)
	require.Len(t, snap.Participants, 2)
	assert.Equal(t, "A", snap.Participants[0].Name)
	assert.Equal(t, 4, snap.Participants[0].Lives)
	assert.True(t, snap.Participants[0].Online)
	assert.NotEmpty(t, snap.Participants[0].Marker)
	assert.Nil(t, snap.Winner)
}

func TestState_textRoundTrip(t *testing.T) {
	for _, s := range []game.State{game.StateInitializing, game.StateActive, game.StateClosing, game.StateClosed} {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var got game.State
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}

	var bad game.State
	assert.Error(t, bad.UnmarshalText([]byte("paused")))
}

func TestSession_closesWhenEveryoneLeaves(t *testing.T) {
	f := newFixture(t, []string{"A", "B"}, configWithLife(3), memory.ArenaOptions{})
	f.tick()

	f.session.OnLeave(f.player(0))
	f.session.OnLeave(f.player(1))
	assert.Empty(t, f.session.Participants())
	f.assertLedgersAgree()

	f.tick()
	assert.Equal(t, game.StateClosing, f.session.State())
	assert.Equal(t, 1, f.closer.Requests)
	assert.False(t, f.session.Result().IsWin())
	assert.True(t, f.session.NextJumper().IsNil())

	f.tick()
	assert.Equal(t, 1, f.closer.Requests)
}

func TestSession_closesWhenSoloPlayerIsEliminated(t *testing.T) {
	cfg := configWithLife(1)
	cfg.TurnTimeLimit = 1
	f := newFixture(t, []string{"A"}, cfg, memory.ArenaOptions{})
	require.True(t, f.session.Testing())

	for i := 0; i < 5*int(constants.TicksPerSecond) && f.closer.Requests == 0; i++ {
		f.tick()
	}
	assert.Equal(t, 1, f.closer.Requests)
	assert.True(t, f.hasMessage("A has been eliminated!"))
	assert.Empty(t, f.session.Participants())
	assert.Equal(t, types.GameModeSpectator, f.player(0).Mode())
	assert.False(t, f.session.Result().IsWin())
}

func TestSession_emptyRosterCloses(t *testing.T) {
	f := newFixture(t, nil, config.Default(), memory.ArenaOptions{})
	f.tick()
	assert.Equal(t, 1, f.closer.Requests)
	assert.Equal(t, game.StateClosing, f.session.State())
}
