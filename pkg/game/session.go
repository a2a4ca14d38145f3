package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cbodonnell/deacoudre/pkg/game/config"
	"github.com/cbodonnell/deacoudre/pkg/game/constants"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/log"
)

var ErrMissingRegion = errors.New("map is missing a required region")

type State uint8

const (
	StateInitializing State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(data []byte) error {
	for _, candidate := range []State{StateInitializing, StateActive, StateClosing, StateClosed} {
		if candidate.String() == string(data) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", data)
}

// Session drives one game from the moment the roster is frozen until the
// host closes it. It is not safe for concurrent use: the host calls every
// On* method from its tick goroutine.
type Session struct {
	config      config.Config
	world       World
	gameMap     Map
	spawner     Spawner
	broadcaster Broadcaster
	scoreboard  Scoreboard
	closer      Closer
	logger      *log.Logger

	pool        types.Bounds
	platform    types.Bounds
	jumpingArea types.Bounds

	rotation *Rotation
	lives    LifeLedger
	markers  MarkerLedger

	nextJumper     types.Participant
	turnStarting   bool
	ignoreWinState bool

	ticks     int64
	seconds   int64
	closeTime int64

	state            State
	result           types.WinResult
	closeRequested   bool
	scoreboardClosed bool
}

// NewSessionOptions contains options for creating a new Session.
type NewSessionOptions struct {
	Config       config.Config
	Participants []types.Participant
	World        World
	Map          Map
	Spawner      Spawner
	Broadcaster  Broadcaster
	// Scoreboard is optional
	Scoreboard Scoreboard
	Closer     Closer
	// Rand is optional and used for marker assignment
	Rand *rand.Rand
	// Logger is optional
	Logger *log.Logger
}

// NewSession freezes the roster and assigns lives and markers.
// Invalid configuration or a map without the three game regions is an error.
func NewSession(opts NewSessionOptions) (*Session, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.World == nil || opts.Map == nil || opts.Spawner == nil || opts.Broadcaster == nil || opts.Closer == nil {
		return nil, fmt.Errorf("world, map, spawner, broadcaster and closer are required")
	}

	regions := make(map[string]types.Bounds, 3)
	for _, name := range []string{constants.RegionPool, constants.RegionJumpingPlatform, constants.RegionJumpingArea} {
		b, ok := opts.Map.Region(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRegion, name)
		}
		regions[name] = b
	}

	participants := dedupe(opts.Participants)

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{
		config:         opts.Config,
		world:          opts.World,
		gameMap:        opts.Map,
		spawner:        opts.Spawner,
		broadcaster:    opts.Broadcaster,
		scoreboard:     opts.Scoreboard,
		closer:         opts.Closer,
		logger:         logger.Named("session"),
		pool:           regions[constants.RegionPool],
		platform:       regions[constants.RegionJumpingPlatform],
		jumpingArea:    regions[constants.RegionJumpingArea],
		rotation:       NewRotation(participants),
		lives:          NewLifeLedger(participants, opts.Config.Life),
		markers:        DrawMarkers(rng, participants, opts.Config.PlayerBlocks),
		nextJumper:     types.NilParticipant,
		turnStarting:   true,
		ignoreWinState: len(participants) <= 1,
		closeTime:      -1,
		state:          StateInitializing,
	}
	if len(participants) > 0 {
		s.nextJumper = participants[0]
	}

	return s, nil
}

func dedupe(participants []types.Participant) []types.Participant {
	seen := make(map[types.Participant]struct{}, len(participants))
	out := make([]types.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsNil() {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Open spawns the participants and starts the game.
func (s *Session) Open() {
	if s.state != StateInitializing {
		return
	}
	for _, p := range s.rotation.Participants() {
		if e, ok := s.world.Entity(p); ok {
			s.spawner.Spawn(e, types.GameModeAdventure)
		}
	}
	s.message(types.ColorGreen, "All player start with %d life/lives.", s.config.Life)
	s.state = StateActive
	s.logger.Info("Session opened with %d participants (testing mode: %t)", s.rotation.Len(), s.ignoreWinState)
}

// OnClose releases the display resources. It may be called in any state.
func (s *Session) OnClose() {
	if s.scoreboard != nil && !s.scoreboardClosed {
		s.scoreboard.Close()
		s.scoreboardClosed = true
	}
	if s.state != StateClosed {
		s.logger.Info("Session closed from state %s", s.state)
	}
	s.state = StateClosed
}

// OnJoin handles a player entering the game after it started.
// Only participants play; everyone else watches.
func (s *Session) OnJoin(e Entity) {
	if s.state == StateClosed || e == nil {
		return
	}
	if !s.rotation.Contains(e.Participant()) {
		s.spawner.Spawn(e, types.GameModeSpectator)
	}
}

// OnLeave eliminates a participant that leaves the game.
func (s *Session) OnLeave(e Entity) {
	if s.state == StateClosed || e == nil {
		return
	}
	if s.rotation.Contains(e.Participant()) {
		s.eliminate(e)
	}
}

// OnDamage maps damage to game outcomes. It always returns true: the host
// must not apply the damage itself.
func (s *Session) OnDamage(e Entity, source types.DamageSource) bool {
	if e == nil || s.state != StateActive {
		return true
	}
	p := e.Participant()
	pos := e.Position()

	switch source {
	case types.DamageSourceFall:
		inBand := pos.Y > constants.FallBandMinY && pos.Y < constants.FallBandMaxY
		if !inBand && !s.pool.ContainsVec(pos) {
			return true
		}
		lives, ok := s.lives.Get(p)
		if !ok {
			return true
		}
		if lives < 2 {
			s.eliminate(e)
			return true
		}
		s.spawner.Spawn(e, types.GameModeAdventure)
		lives = s.lives.Add(p, -1)
		s.nextJumper = s.nextPlayer(true)
		s.message(types.ColorYellow, "%s lost a life! %d life/lives left!", e.Name(), lives)
	case types.DamageSourceOutOfWorld:
		spawn := s.gameMap.Spawn()
		e.Teleport(types.Vec3{X: float64(spawn.X), Y: constants.OutOfWorldRespawnY, Z: float64(spawn.Z)}, constants.JumperYaw, constants.JumperPitch)
	}
	return true
}

// OnDeath eliminates the player whatever killed it. It returns true to
// cancel the host's own death handling.
func (s *Session) OnDeath(e Entity, source types.DamageSource) bool {
	if e == nil || s.state == StateClosed {
		return true
	}
	s.logger.Debug("%s died (%s)", e.Name(), source)
	s.eliminate(e)
	return true
}

// OnTick runs one step of the game loop.
func (s *Session) OnTick() {
	if s.state != StateActive && s.state != StateClosing {
		return
	}

	if s.rotation.Len() == 0 {
		s.closeAbandoned()
		return
	}

	if s.nextJumper.IsNil() {
		s.nextJumper = s.nextPlayer(true)
		return
	}

	s.ticks++
	s.updateExperienceLevels()
	if s.scoreboard != nil {
		s.scoreboard.Update(s.Snapshot())
	}

	now := s.world.Time()
	if s.closeTime > 0 {
		s.tickClosing(now)
		return
	}

	entity, online := s.world.Entity(s.nextJumper)
	if s.turnStarting && s.rotation.Contains(s.nextJumper) {
		entity, online = s.startTurn(entity, online)
	}

	if !online || s.nextJumper.IsNil() {
		if !online {
			s.logger.Warn("Entity of jumper %s is missing", s.nextJumper)
		}
		if s.nextJumper.IsNil() {
			s.logger.Warn("Jumper is missing, attempting to get the next player")
			s.nextJumper = s.nextPlayer(true)
		}
	} else if s.rotation.Contains(s.nextJumper) && s.world.BlockState(entity.Position().BlockPos()) == types.Water {
		s.resolveJump(entity)
	}

	secondElapsed := false
	if s.ticks > 0 && s.ticks%constants.TicksPerSecond == 0 && !s.turnStarting {
		s.seconds++
		secondElapsed = true
	}

	if secondElapsed && s.seconds%s.config.TurnTimeLimit == 0 && !s.turnStarting &&
		!s.nextJumper.IsNil() && online && entity.Participant() == s.nextJumper &&
		s.jumpingArea.Contains(entity.Position().BlockPos()) {
		s.timeout(entity)
	}

	result := s.checkWinResult()
	if result.IsWin() {
		s.result = result
		s.broadcastWin(result)
		s.closeTime = now + constants.CloseDelaySeconds*constants.TicksPerSecond
		s.state = StateClosing
	}
}

// startTurn moves the jumper onto the platform. When the jumper has no
// entity the rotation is advanced once without opening a new turn and the
// lookup retried.
func (s *Session) startTurn(entity Entity, online bool) (Entity, bool) {
	s.ticks = 0
	s.seconds = 0

	if !online {
		s.logger.Warn("Jumper %s is offline, attempting to get the next player", s.nextJumper)
		s.message(types.ColorRed, "The jumper is missing! Attempting to get the next player.")
		s.nextJumper = s.nextPlayer(false)
		if s.nextJumper.IsNil() {
			return nil, false
		}
		entity, online = s.world.Entity(s.nextJumper)
		if !online {
			return nil, false
		}
		s.message(types.ColorWhite, "Next player is %s", entity.Name())
	}

	target := s.platform.Center().Add(0, constants.TurnStartHeightOffset, 0)
	entity.Teleport(target, constants.JumperYaw, constants.JumperPitch)
	s.message(types.ColorBlue, "It's %s's turn!", entity.Name())
	s.turnStarting = false

	return entity, true
}

// resolveJump claims the water cell the jumper landed in.
func (s *Session) resolveJump(entity Entity) {
	jumper := s.nextJumper
	pos := entity.Position().BlockPos()

	special := true
	for _, n := range pos.Neighbors() {
		if s.world.BlockState(n) == types.Water {
			special = false
			break
		}
	}

	if special {
		s.world.SetBlockState(pos, types.EmeraldBlock)
		lives := s.lives.Add(jumper, 1)
		s.message(types.ColorAqua, "%s made a dé à coudre! They are winning an additional life! %d lives left!", entity.Name(), lives)
	} else {
		marker, ok := s.markers.Get(jumper)
		if !ok {
			s.logger.Warn("Jumper %s has no marker", jumper)
			marker = types.Stone
		}
		s.world.SetBlockState(pos, marker)
	}

	s.nextJumper = s.nextPlayer(true)
	s.spawner.Spawn(entity, types.GameModeAdventure)

	if special {
		s.broadcaster.Sound(types.SoundFireworkLargeBlast)
		s.broadcaster.Sound(types.SoundFireworkTwinkle)
	} else {
		s.broadcaster.Sound(types.SoundUnderwaterEnter)
	}
}

// timeout punishes a jumper that stayed in the jumping area too long.
func (s *Session) timeout(entity Entity) {
	jumper := s.nextJumper
	lives, _ := s.lives.Get(jumper)
	s.message(types.ColorYellow, "%s was too slow to jump and lost a life (%d)", entity.Name(), lives-1)

	if s.lives.Add(jumper, -1) < 1 {
		s.eliminate(entity)
		return
	}
	s.nextJumper = s.nextPlayer(true)
	s.spawner.Spawn(entity, types.GameModeAdventure)
}

// eliminate turns a participant into a spectator and forces a new turn.
// When the eliminated participant held the turn, it passes to their
// successor in the rotation.
func (s *Session) eliminate(e Entity) {
	p := e.Participant()
	if !s.rotation.Contains(p) {
		s.spawner.Spawn(e, types.GameModeSpectator)
		return
	}

	s.message(types.ColorRed, "%s has been eliminated!", e.Name())
	s.broadcaster.Sound(types.SoundExperienceOrbPickup)
	s.spawner.Spawn(e, types.GameModeSpectator)

	wasJumper := p == s.nextJumper
	var successor RotationResult
	if wasJumper {
		successor = s.rotation.Next(p, s.ignoreWinState)
	}

	s.rotation.Remove(p)
	s.lives.Remove(p)
	s.markers.Remove(p)
	s.logger.Info("Participant %s eliminated, %d remaining", p, s.rotation.Len())

	if wasJumper {
		if successor.Outcome == RotationAdvanced {
			s.nextJumper = successor.Next
			s.turnStarting = true
		} else {
			s.nextJumper = s.nextPlayer(true)
		}
		return
	}
	s.nextJumper = s.nextPlayer(true)
}

// nextPlayer advances the rotation from the current jumper. When newTurn is
// set a successful advance schedules turn-start setup for the next tick.
func (s *Session) nextPlayer(newTurn bool) types.Participant {
	result := s.rotation.Next(s.nextJumper, s.ignoreWinState)
	switch result.Outcome {
	case RotationAdvanced, RotationRepeated:
		if newTurn {
			s.turnStarting = true
		}
		return result.Next
	default:
		s.logger.Warn("Rotation from %s is inconsistent (%d participants), something might be wrong", s.nextJumper, s.rotation.Len())
		return types.NilParticipant
	}
}

// closeAbandoned ends a session whose rotation ran empty. There is no
// winner and no close delay.
func (s *Session) closeAbandoned() {
	if s.closeRequested {
		return
	}
	s.logger.Info("No participants left, closing the game")
	s.nextJumper = types.NilParticipant
	s.state = StateClosing
	s.closeRequested = true
	s.closer.RequestClose()
}

func (s *Session) tickClosing(now int64) {
	if now >= s.closeTime && !s.closeRequested {
		s.closeRequested = true
		s.closer.RequestClose()
	}
}

func (s *Session) checkWinResult() types.WinResult {
	if s.ignoreWinState {
		return types.NoResult()
	}
	return EvaluateWin(WinInput{
		IgnoreWinState: s.ignoreWinState,
		Online:         s.onlineParticipants(),
		PoolCovered:    PoolCovered(s.world, s.pool),
	})
}

func (s *Session) onlineParticipants() []types.Participant {
	var online []types.Participant
	for _, p := range s.rotation.Participants() {
		if _, ok := s.world.Entity(p); ok {
			online = append(online, p)
		}
	}
	return online
}

func (s *Session) broadcastWin(result types.WinResult) {
	name := ""
	if winner, ok := result.Winner(); ok {
		if e, online := s.world.Entity(winner); online {
			name = e.Name()
		}
	}
	if name != "" {
		s.message(types.ColorGold, "%s has won the game!", name)
		s.logger.Info("%s won the game", name)
	} else {
		s.message(types.ColorGold, "The game ended, but nobody won!")
		s.logger.Info("Game ended without a winner")
	}
	s.broadcaster.Sound(types.SoundVillagerYes)
}

func (s *Session) updateExperienceLevels() {
	for _, p := range s.rotation.Participants() {
		e, ok := s.world.Entity(p)
		if !ok {
			continue
		}
		if lives, ok := s.lives.Get(p); ok {
			e.SetExperienceLevel(lives)
		}
	}
}

func (s *Session) message(color types.Color, format string, args ...interface{}) {
	s.broadcaster.Message(types.Text{
		Content: fmt.Sprintf(format, args...),
		Color:   color,
	})
}

func (s *Session) State() State {
	return s.state
}

// NextJumper returns the current turn holder, or NilParticipant.
func (s *Session) NextJumper() types.Participant {
	return s.nextJumper
}

// TurnStarting reports whether turn-start setup runs on the next tick.
func (s *Session) TurnStarting() bool {
	return s.turnStarting
}

// Testing reports whether win checks are suppressed.
func (s *Session) Testing() bool {
	return s.ignoreWinState
}

// Result is the win result that moved the session to closing, if any.
func (s *Session) Result() types.WinResult {
	return s.result
}

func (s *Session) Participants() []types.Participant {
	return s.rotation.Participants()
}

func (s *Session) Lives(p types.Participant) (int, bool) {
	return s.lives.Get(p)
}

func (s *Session) Marker(p types.Participant) (types.BlockState, bool) {
	return s.markers.Get(p)
}
