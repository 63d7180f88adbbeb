// Package config provides configuration loading and validation for the
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/petrilab/petri/genome"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters. It is fixed at process start;
// nothing reloads it while a simulation runs.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Time       TimeConfig       `yaml:"time"`
	Nutrient   NutrientConfig   `yaml:"nutrient"`
	Sunlight   SunlightConfig   `yaml:"sunlight"`
	Colony     ColonyConfig     `yaml:"colony"`
	Population PopulationConfig `yaml:"population"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Genes      genome.Bounds    `yaml:"genes"`
	Predator   PredatorConfig   `yaml:"predator"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// WorldConfig holds grid dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TimeConfig holds the day/night cycle parameters.
type TimeConfig struct {
	CycleLength           int     `yaml:"cycle_length"`            // ticks per full day/night cycle
	DayRatio              float64 `yaml:"day_ratio"`               // fraction of the cycle that is day
	NightMetabolismFactor float64 `yaml:"night_metabolism_factor"` // prey metabolic stress at night
	NightMoveChance       float64 `yaml:"night_move_chance"`       // probability prey moves at night
}

// NutrientConfig holds nutrient field parameters.
type NutrientConfig struct {
	Max           float64 `yaml:"max"`            // cell value ceiling
	SpawnRate     float64 `yaml:"spawn_rate"`     // per-cell regeneration probability per tick
	RegenAmount   float64 `yaml:"regen_amount"`   // amount added on regeneration
	Decay         float64 `yaml:"decay"`          // per-tick multiplier
	Diffusion     float64 `yaml:"diffusion"`      // 4-neighbor diffusion constant, [0, 0.25]
	DeadBody      float64 `yaml:"dead_body"`      // nutrient deposited by a corpse
	MaxEatRate    float64 `yaml:"max_eat_rate"`   // nutrient an agent can consume per tick
	SeedScale     float64 `yaml:"seed_scale"`     // noise frequency for initial clusters
	SeedThreshold float64 `yaml:"seed_threshold"` // noise level above which a cell is seeded
}

// SunlightConfig holds the sunlight gradient parameters.
type SunlightConfig struct {
	MaxIntensity       float64 `yaml:"max_intensity"`       // surface intensity
	PenetrationDepth   float64 `yaml:"penetration_depth"`   // bottom intensity relative to top
	PhotosynthesisRate float64 `yaml:"photosynthesis_rate"` // base multiplier for solar gain
}

// ColonyConfig holds colony bonding parameters.
type ColonyConfig struct {
	SharingRate float64 `yaml:"sharing_rate"` // fraction of the energy gap shared per tick
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	Initial       int     `yaml:"initial"`
	InitialEnergy float64 `yaml:"initial_energy"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate     float64 `yaml:"rate"`     // chance per gene
	Strength float64 `yaml:"strength"` // relative perturbation magnitude
}

// PredatorConfig holds predator evolution and behavior parameters.
type PredatorConfig struct {
	ThresholdEnergy    float64 `yaml:"threshold_energy"`
	ThresholdSize      float64 `yaml:"threshold_size"`
	ThresholdOffspring int     `yaml:"threshold_offspring"`
	MetabolismPenalty  float64 `yaml:"metabolism_penalty"`
	EatEfficiency      float64 `yaml:"eat_efficiency"` // fraction of prey energy gained
	DayActivity        bool    `yaml:"day_activity"`   // predators hunt in daylight
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks int `yaml:"stats_window_ticks"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults, and validates the result. If path is empty, only embedded
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct: only fields present in the
		// file overwrite the defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the simulation cannot be constructed
// from. All failures here are fatal at startup.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Time.CycleLength <= 0 {
		return fmt.Errorf("cycle_length must be positive, got %d", c.Time.CycleLength)
	}
	if c.Time.DayRatio < 0 || c.Time.DayRatio > 1 {
		return fmt.Errorf("day_ratio must be in [0, 1], got %g", c.Time.DayRatio)
	}
	if c.Time.NightMoveChance < 0 || c.Time.NightMoveChance > 1 {
		return fmt.Errorf("night_move_chance must be in [0, 1], got %g", c.Time.NightMoveChance)
	}
	if c.Nutrient.Max <= 0 {
		return fmt.Errorf("nutrient max must be positive, got %g", c.Nutrient.Max)
	}
	if c.Nutrient.Diffusion < 0 || c.Nutrient.Diffusion > 0.25 {
		return fmt.Errorf("diffusion must be in [0, 0.25], got %g", c.Nutrient.Diffusion)
	}
	if c.Nutrient.Decay <= 0 || c.Nutrient.Decay > 1 {
		return fmt.Errorf("decay must be in (0, 1], got %g", c.Nutrient.Decay)
	}
	if c.Nutrient.SpawnRate < 0 || c.Nutrient.SpawnRate > 1 {
		return fmt.Errorf("spawn_rate must be in [0, 1], got %g", c.Nutrient.SpawnRate)
	}
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return fmt.Errorf("mutation rate must be in [0, 1], got %g", c.Mutation.Rate)
	}
	if c.Population.Initial < 0 {
		return fmt.Errorf("initial population must be non-negative, got %d", c.Population.Initial)
	}
	if c.Population.Initial > c.World.Width*c.World.Height {
		return fmt.Errorf("initial population %d exceeds grid capacity %d",
			c.Population.Initial, c.World.Width*c.World.Height)
	}
	if c.Predator.EatEfficiency < 0 || c.Predator.EatEfficiency > 1 {
		return fmt.Errorf("eat_efficiency must be in [0, 1], got %g", c.Predator.EatEfficiency)
	}
	if c.Telemetry.StatsWindowTicks <= 0 {
		return fmt.Errorf("stats_window_ticks must be positive, got %d", c.Telemetry.StatsWindowTicks)
	}
	if err := c.Genes.Validate(); err != nil {
		return err
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
