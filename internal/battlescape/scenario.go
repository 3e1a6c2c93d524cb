package battlescape

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optBase  optionKind = iota // settings, rules, logger, whole snapshots: applied first
	optField                   // size, terrain, objectives, seed
	optUnit                    // units, after the field is laid out
)

// Option configures a battle built by New.
type Option struct {
	kind optionKind
	fn   func(*builder) error
}

type builder struct {
	settings Settings
	rules    *rules.Ruleset
	log      zerolog.Logger
	snap     battlefield.Snapshot
	field    *battlefield.Battlefield // prebuilt, replaces snap
	resume   *resumePoint
}

// resumePoint is the turn and phase a saved battle continues from.
type resumePoint struct {
	turn  int
	phase battlefield.Faction
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return Option{optBase, func(b *builder) error {
		b.settings = s
		return nil
	}}
}

// WithRules uses rs instead of the built-in ruleset.
func WithRules(rs *rules.Ruleset) Option {
	return Option{optBase, func(b *builder) error {
		if rs == nil {
			return errors.New("nil ruleset")
		}
		b.rules = rs
		return nil
	}}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return Option{optBase, func(b *builder) error {
		b.log = l
		return nil
	}}
}

// WithSnapshot starts from a described battlefield. Field and unit options
// are applied on top of it.
func WithSnapshot(s battlefield.Snapshot) Option {
	return Option{optBase, func(b *builder) error {
		b.snap = s
		return nil
	}}
}

// WithBattlefield runs the battle on an already built battlefield. It
// cannot be combined with field or unit options.
func WithBattlefield(bf *battlefield.Battlefield) Option {
	return Option{optBase, func(b *builder) error {
		b.field = bf
		return nil
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return Option{optField, func(b *builder) error {
		b.settings.Seed = seed
		return nil
	}}
}

// WithResume continues a saved battle: turn and phase are restored and the
// phase is reopened without refilling anyone's pools.
func WithResume(turn int, phase battlefield.Faction) Option {
	return Option{optField, func(b *builder) error {
		if turn < 1 {
			return fmt.Errorf("resume turn %d: must be at least 1", turn)
		}
		if phase >= battlefield.FactionCount {
			return fmt.Errorf("resume phase %d: unknown faction", phase)
		}
		b.resume = &resumePoint{turn: turn, phase: phase}
		return nil
	}}
}

// WithSize sets the battlefield extent.
func WithSize(width, length, levels int) Option {
	return Option{optField, func(b *builder) error {
		b.snap.Width, b.snap.Length, b.snap.Levels = width, length, levels
		return nil
	}}
}

// WithRegion fills a rectangle of one level.
func WithRegion(r battlefield.RegionSpec) Option {
	return Option{optField, func(b *builder) error {
		b.snap.Regions = append(b.snap.Regions, r)
		return nil
	}}
}

// WithWall runs a line of wall objects between two corners on level z.
func WithWall(x0, y0, x1, y1, z int) Option {
	return WithRegion(battlefield.RegionSpec{X0: x0, Y0: y0, X1: x1, Y1: y1, Z: z, Object: "wall"})
}

// WithTile overrides one tile.
func WithTile(t battlefield.TileSpec) Option {
	return Option{optField, func(b *builder) error {
		b.snap.Tiles = append(b.snap.Tiles, t)
		return nil
	}}
}

// WithObjective gives a faction's AI a tile to move toward.
func WithObjective(f battlefield.Faction, p battlefield.Position) Option {
	return Option{optField, func(b *builder) error {
		b.snap.Objectives = append(b.snap.Objectives, battlefield.ObjectiveSpec{Faction: f.String(), X: p.X, Y: p.Y, Z: p.Z})
		return nil
	}}
}

// WithUnit places a unit. Units get IDs in the order they are added.
func WithUnit(us battlefield.UnitSpec) Option {
	return Option{optUnit, func(b *builder) error {
		b.snap.Units = append(b.snap.Units, us)
		return nil
	}}
}

// WithPlayer places a player unit built from a unit template.
func WithPlayer(name, template string, p battlefield.Position) Option {
	return withFactionUnit(battlefield.FactionPlayer, name, template, p)
}

// WithHostile places a hostile unit.
func WithHostile(name, template string, p battlefield.Position) Option {
	return withFactionUnit(battlefield.FactionHostile, name, template, p)
}

// WithCivilian places a civilian.
func WithCivilian(name string, p battlefield.Position) Option {
	return withFactionUnit(battlefield.FactionNeutral, name, "civilian", p)
}

func withFactionUnit(f battlefield.Faction, name, template string, p battlefield.Position) Option {
	return WithUnit(battlefield.UnitSpec{Name: name, Template: template, Faction: f.String(), X: p.X, Y: p.Y, Z: p.Z})
}

// New builds a battle from options in ordered passes: base, field, units.
// The first phase (the player's, turn 1) is open when it returns, unless
// WithResume names another.
func New(opts ...Option) (*Game, error) {
	b := &builder{
		settings: DefaultSettings(),
		log:      zerolog.Nop(),
	}
	for _, kind := range []optionKind{optBase, optField, optUnit} {
		for _, o := range opts {
			if o.kind != kind {
				continue
			}
			if b.field != nil && kind != optBase {
				return nil, errors.New("battlescape: field and unit options cannot modify a prebuilt battlefield")
			}
			if err := o.fn(b); err != nil {
				return nil, fmt.Errorf("battlescape: option: %w", err)
			}
		}
	}
	if b.rules == nil {
		b.rules = rules.Default()
	}

	bf := b.field
	if bf == nil {
		var err error
		bf, err = battlefield.New(b.snap, b.rules.Templates())
		if err != nil {
			return nil, fmt.Errorf("battlescape: building battlefield: %w", err)
		}
	}
	return newGame(bf, b.rules, b.settings, b.log, b.resume)
}

// --- Scenario files ---

// Scenario is a battle described in YAML: the battlefield plus the seed to
// run it with. Saved battles also carry the turn and phase to resume at.
type Scenario struct {
	Name  string               `yaml:"name"`
	Seed  int64                `yaml:"seed"`
	Turn  int                  `yaml:"turn,omitempty"`
	Phase string               `yaml:"phase,omitempty"`
	Field battlefield.Snapshot `yaml:"battlefield"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return sc, nil
}

// Options returns the options that build the scenario.
func (sc Scenario) Options() []Option {
	opts := []Option{WithSnapshot(sc.Field)}
	if sc.Seed != 0 {
		opts = append(opts, WithSeed(sc.Seed))
	}
	if sc.Turn > 0 {
		f, ok := battlefield.ParseFaction(sc.Phase)
		if !ok {
			opts = append(opts, Option{optField, func(*builder) error {
				return fmt.Errorf("scenario %s: unknown phase %q", sc.Name, sc.Phase)
			}})
		} else {
			opts = append(opts, WithResume(sc.Turn, f))
		}
	}
	return opts
}

// SaveScenario writes the current battlefield of g as a scenario file that
// resumes it. The battle must be idle: actions in flight are not saved.
func SaveScenario(g *Game, name, path string) error {
	if !g.AtIdle() {
		return errors.New("saving scenario: battle is not idle")
	}
	sc := Scenario{
		Name:  name,
		Seed:  g.settings.Seed,
		Turn:  g.turn,
		Phase: g.phase.String(),
		Field: g.bf.Snapshot(),
	}
	data, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing scenario: %w", err)
	}
	return nil
}
