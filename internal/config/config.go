// Package config loads the settings of the command line tools with viper:
// built-in defaults, then an optional YAML file, then BATTLESCAPE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Garsondee/Battlescape/internal/ai"
	"github.com/Garsondee/Battlescape/internal/battlescape"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/visibility"
)

// EnvPrefix prefixes environment overrides: sim.seed is BATTLESCAPE_SIM_SEED.
const EnvPrefix = "BATTLESCAPE"

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// SimConfig holds scheduler settings.
type SimConfig struct {
	Seed             int64 `mapstructure:"seed"`
	MaxTicks         int   `mapstructure:"maxTicks"`
	StrictInvariants bool  `mapstructure:"strictInvariants"`
	ReactionFire     bool  `mapstructure:"reactionFire"`
	StopOnSpotted    bool  `mapstructure:"stopOnSpotted"`
	AutoPlayer       bool  `mapstructure:"autoPlayer"`
	StaminaRecovery  int   `mapstructure:"staminaRecovery"`
}

// VisionConfig holds line of sight settings.
type VisionConfig struct {
	MaxRange   float64 `mapstructure:"maxRange"`
	NightRange float64 `mapstructure:"nightRange"`
	FOVDegrees float64 `mapstructure:"fovDegrees"`
	Daylight   bool    `mapstructure:"daylight"`
}

// PathConfig holds extra movement costs.
type PathConfig struct {
	DoorOpenCost int `mapstructure:"doorOpenCost"`
	ClimbCost    int `mapstructure:"climbCost"`
	DescendCost  int `mapstructure:"descendCost"`
}

// AIConfig holds the AI decision budget and scoring weights.
type AIConfig struct {
	MaxDecisionsPerUnit int     `mapstructure:"maxDecisionsPerUnit"`
	ExposureWeight      float64 `mapstructure:"exposureWeight"`
	DamageWeight        float64 `mapstructure:"damageWeight"`
	ObjectiveWeight     float64 `mapstructure:"objectiveWeight"`
	FleeWeight          float64 `mapstructure:"fleeWeight"`
}

// Config is the full tool configuration.
type Config struct {
	Log      LogConfig    `mapstructure:"log"`
	Sim      SimConfig    `mapstructure:"sim"`
	Vision   VisionConfig `mapstructure:"vision"`
	Path     PathConfig   `mapstructure:"path"`
	AI       AIConfig     `mapstructure:"ai"`
	Rules    FileConfig   `mapstructure:"rules"`
	Scenario FileConfig   `mapstructure:"scenario"`
}

// FileConfig points at an optional data file.
type FileConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	d := battlescape.DefaultSettings()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.dir", "")

	v.SetDefault("sim.seed", d.Seed)
	v.SetDefault("sim.maxTicks", d.MaxTicks)
	v.SetDefault("sim.strictInvariants", d.StrictInvariants)
	v.SetDefault("sim.reactionFire", d.ReactionFire)
	v.SetDefault("sim.stopOnSpotted", d.StopOnSpotted)
	v.SetDefault("sim.autoPlayer", d.AutoPlayer)
	v.SetDefault("sim.staminaRecovery", d.StaminaRecovery)

	v.SetDefault("vision.maxRange", d.Vision.MaxRange)
	v.SetDefault("vision.nightRange", d.Vision.NightRange)
	v.SetDefault("vision.fovDegrees", d.Vision.FOVDegrees)
	v.SetDefault("vision.daylight", d.Vision.Daylight)

	v.SetDefault("path.doorOpenCost", d.Costs.DoorOpen)
	v.SetDefault("path.climbCost", d.Costs.Climb)
	v.SetDefault("path.descendCost", d.Costs.Descend)

	v.SetDefault("ai.maxDecisionsPerUnit", d.AIMaxDecisions)
	v.SetDefault("ai.exposureWeight", d.AIWeights.Exposure)
	v.SetDefault("ai.damageWeight", d.AIWeights.Damage)
	v.SetDefault("ai.objectiveWeight", d.AIWeights.Objective)
	v.SetDefault("ai.fleeWeight", d.AIWeights.Flee)

	v.SetDefault("rules.file", "")
	v.SetDefault("scenario.file", "")
}

// Load reads the configuration. An empty path uses defaults and the
// environment only; a named file must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Sim.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("sim.maxTicks must not be negative, got %d", c.Sim.MaxTicks))
	}
	if c.Vision.MaxRange <= 0 {
		errs = append(errs, fmt.Errorf("vision.maxRange must be positive, got %v", c.Vision.MaxRange))
	}
	if c.Vision.FOVDegrees <= 0 || c.Vision.FOVDegrees > 360 {
		errs = append(errs, fmt.Errorf("vision.fovDegrees must be in (0, 360], got %v", c.Vision.FOVDegrees))
	}
	if c.Path.DoorOpenCost < 0 || c.Path.ClimbCost < 0 || c.Path.DescendCost < 0 {
		errs = append(errs, errors.New("path costs must not be negative"))
	}
	if c.AI.MaxDecisionsPerUnit < 1 {
		errs = append(errs, fmt.Errorf("ai.maxDecisionsPerUnit must be at least 1, got %d", c.AI.MaxDecisionsPerUnit))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Settings converts the configuration into battle settings.
func (c Config) Settings() battlescape.Settings {
	return battlescape.Settings{
		Seed:             c.Sim.Seed,
		MaxTicks:         c.Sim.MaxTicks,
		StrictInvariants: c.Sim.StrictInvariants,
		ReactionFire:     c.Sim.ReactionFire,
		StopOnSpotted:    c.Sim.StopOnSpotted,
		AutoPlayer:       c.Sim.AutoPlayer,
		StaminaRecovery:  c.Sim.StaminaRecovery,
		Vision:           c.VisionSettings(),
		Costs:            c.Costs(),
		AIMaxDecisions:   c.AI.MaxDecisionsPerUnit,
		AIWeights:        c.Weights(),
	}
}

// VisionSettings converts the vision block.
func (c Config) VisionSettings() visibility.Settings {
	return visibility.Settings{
		MaxRange:   c.Vision.MaxRange,
		NightRange: c.Vision.NightRange,
		FOVDegrees: c.Vision.FOVDegrees,
		Daylight:   c.Vision.Daylight,
	}
}

// Costs converts the path block.
func (c Config) Costs() pathfind.Costs {
	return pathfind.Costs{DoorOpen: c.Path.DoorOpenCost, Climb: c.Path.ClimbCost, Descend: c.Path.DescendCost}
}

// Weights converts the AI scoring weights.
func (c Config) Weights() ai.Weights {
	return ai.Weights{
		Exposure:  c.AI.ExposureWeight,
		Damage:    c.AI.DamageWeight,
		Objective: c.AI.ObjectiveWeight,
		Flee:      c.AI.FleeWeight,
	}
}
