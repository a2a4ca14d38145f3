package memory

import "github.com/cbodonnell/deacoudre/pkg/game/types"

// Player is the live handle of a player in a memory World.
type Player struct {
	participant types.Participant
	name        string
	position    types.Vec3
	yaw         float32
	pitch       float32
	level       int
	mode        types.GameMode
	online      bool
}

func (p *Player) Participant() types.Participant {
	return p.participant
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Position() types.Vec3 {
	return p.position
}

func (p *Player) Teleport(pos types.Vec3, yaw, pitch float32) {
	p.position = pos
	p.yaw = yaw
	p.pitch = pitch
}

func (p *Player) SetExperienceLevel(level int) {
	p.level = level
}

func (p *Player) ExperienceLevel() int {
	return p.level
}

func (p *Player) Mode() types.GameMode {
	return p.mode
}

func (p *Player) Online() bool {
	return p.online
}

func (p *Player) Facing() (yaw, pitch float32) {
	return p.yaw, p.pitch
}
