package types

// BlockState identifies the content of a block cell.
type BlockState string

const (
	Air          BlockState = "minecraft:air"
	Water        BlockState = "minecraft:water"
	EmeraldBlock BlockState = "minecraft:emerald_block"
	Stone        BlockState = "minecraft:stone"
)

// GameMode is the mode the spawn service puts a player in.
type GameMode uint8

const (
	GameModeAdventure GameMode = iota
	GameModeSpectator
)

func (m GameMode) String() string {
	switch m {
	case GameModeAdventure:
		return "adventure"
	case GameModeSpectator:
		return "spectator"
	default:
		return "unknown"
	}
}

// DamageSource classifies the cause of a damage or death event.
type DamageSource uint8

const (
	DamageSourceGeneric DamageSource = iota
	DamageSourceFall
	DamageSourceOutOfWorld
)

func (s DamageSource) String() string {
	switch s {
	case DamageSourceFall:
		return "fall"
	case DamageSourceOutOfWorld:
		return "out_of_world"
	default:
		return "generic"
	}
}

// ParseDamageSource is the inverse of String. Unknown values map to generic.
func ParseDamageSource(s string) DamageSource {
	switch s {
	case "fall":
		return DamageSourceFall
	case "out_of_world":
		return DamageSourceOutOfWorld
	default:
		return DamageSourceGeneric
	}
}

type Sound string

const (
	SoundExperienceOrbPickup Sound = "entity.experience_orb.pickup"
	SoundFireworkLargeBlast  Sound = "entity.firework_rocket.large_blast"
	SoundFireworkTwinkle     Sound = "entity.firework_rocket.twinkle"
	SoundUnderwaterEnter     Sound = "ambient.underwater.enter"
	SoundVillagerYes         Sound = "entity.villager.yes"
)

type Color string

const (
	ColorWhite  Color = "white"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorAqua   Color = "aqua"
	ColorGold   Color = "gold"
)

// Text is a broadcast chat line.
type Text struct {
	Content string `json:"content"`
	Color   Color  `json:"color"`
}
