package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/deacoudre/pkg/game/constants"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

var (
	ErrInvalidLife          = errors.New("life must be a positive integer")
	ErrNoMarkers            = errors.New("at least one player block is required")
	ErrInvalidTurnTimeLimit = errors.New("turn time limit must be a positive number of seconds")
)

// Config holds the rules of a game.
type Config struct {
	// Life is the number of lives every participant starts with
	Life int `json:"life" env:"DEACOUDRE_LIFE"`
	// PlayerBlocks are the marker blocks drawn for participants
	PlayerBlocks []types.BlockState `json:"player_blocks" env:"DEACOUDRE_PLAYER_BLOCKS" envSeparator:","`
	// TurnTimeLimit is the number of seconds a jumper may wait before losing a life
	TurnTimeLimit int64 `json:"turn_time_limit" env:"DEACOUDRE_TURN_TIME_LIMIT"`
}

// DefaultPlayerBlocks are the wool colours handed out as markers.
var DefaultPlayerBlocks = []types.BlockState{
	"minecraft:white_wool",
	"minecraft:orange_wool",
	"minecraft:magenta_wool",
	"minecraft:light_blue_wool",
	"minecraft:yellow_wool",
	"minecraft:lime_wool",
	"minecraft:pink_wool",
	"minecraft:gray_wool",
	"minecraft:cyan_wool",
	"minecraft:purple_wool",
	"minecraft:blue_wool",
	"minecraft:brown_wool",
	"minecraft:green_wool",
	"minecraft:red_wool",
	"minecraft:black_wool",
}

func Default() Config {
	blocks := make([]types.BlockState, len(DefaultPlayerBlocks))
	copy(blocks, DefaultPlayerBlocks)
	return Config{
		Life:          constants.DefaultLife,
		PlayerBlocks:  blocks,
		TurnTimeLimit: constants.DefaultTurnTimeLimit,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Life <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLife, c.Life)
	}
	if len(c.PlayerBlocks) == 0 {
		return ErrNoMarkers
	}
	for i, b := range c.PlayerBlocks {
		if b == "" {
			return fmt.Errorf("%w: block %d is empty", ErrNoMarkers, i)
		}
	}
	if c.TurnTimeLimit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTurnTimeLimit, c.TurnTimeLimit)
	}
	return nil
}

// LoadEnv starts from Default and overrides any field set in the environment.
func LoadEnv() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
