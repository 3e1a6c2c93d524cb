// Package rules holds the static item and unit rule data a battle is
// generated from: weapons, armours and unit templates.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

//go:embed default.yaml
var defaultRules []byte

// WeaponKind separates weapons by how they are used.
type WeaponKind string

const (
	KindFirearm WeaponKind = "firearm" // fired, Fire action
	KindGrenade WeaponKind = "grenade" // thrown, detonates where it lands
	KindMelee   WeaponKind = "melee"   // adjacent targets only
)

// DamageType decides what an impact does beyond raw damage.
type DamageType string

const (
	DamageKinetic    DamageType = "kinetic"    // direct hit only
	DamageHE         DamageType = "he"         // explosion, destroys terrain
	DamageStun       DamageType = "stun"       // explosion, stun instead of health
	DamageSmoke      DamageType = "smoke"      // explosion, smoke cloud only
	DamageIncendiary DamageType = "incendiary" // explosion, sets tiles alight
)

// Area reports whether impacts of this type resolve as an explosion.
func (d DamageType) Area() bool {
	return d == DamageHE || d == DamageStun || d == DamageSmoke || d == DamageIncendiary
}

// FireModes is a per-mode value table. Zero means the mode is unavailable.
type FireModes struct {
	Snap  int `yaml:"snap"`
	Aimed int `yaml:"aimed"`
	Auto  int `yaml:"auto"`
	Throw int `yaml:"throw"`
}

// Weapon is the rule data for one weapon or grenade.
type Weapon struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Kind        WeaponKind `yaml:"kind"`
	DamageType  DamageType `yaml:"damage_type"`
	Power       int        `yaml:"power"`
	Radius      int        `yaml:"radius"` // explosion radius in tiles, area types only
	Range       int        `yaml:"range"`  // tiles; throws are also strength-limited
	Accuracy    FireModes  `yaml:"accuracy"`
	TUPercent   FireModes  `yaml:"tu_percent"` // cost as a percentage of max TU
	AutoShots   int        `yaml:"auto_shots"`
	Clip        int        `yaml:"clip"` // 0 = no ammo tracking
	FlightSpeed int        `yaml:"flight_speed"`
}

// Explosive reports whether impacts resolve as an area explosion.
func (w *Weapon) Explosive() bool {
	return w.Kind != KindMelee && w.DamageType.Area()
}

// Armour is a flat damage reduction worn by a unit.
type Armour struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

// UnitRule is a unit template: its stat block, armour and loadout.
type UnitRule struct {
	ID        string             `yaml:"id"`
	Stats     battlefield.Stats  `yaml:"stats"`
	Armour    string             `yaml:"armour"`
	Inventory []battlefield.Item `yaml:"inventory"`
}

// Ruleset is the full rule data of a game.
type Ruleset struct {
	Weapons []Weapon   `yaml:"weapons"`
	Armours []Armour   `yaml:"armours"`
	Units   []UnitRule `yaml:"units"`

	weapons map[string]*Weapon
	armours map[string]*Armour
}

// Default returns the built-in ruleset.
func Default() *Ruleset {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded ruleset is invalid: %v", err))
	}
	return rs
}

// Parse decodes and validates a ruleset from YAML.
func Parse(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadFile reads a ruleset from disk.
func LoadFile(path string) (*Ruleset, error) {
	b, err := os.ReadFile(path) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return Parse(b)
}

// Validate checks references and value ranges and builds the lookup indexes.
func (rs *Ruleset) Validate() error {
	var errs []error
	rs.weapons = make(map[string]*Weapon, len(rs.Weapons))
	rs.armours = make(map[string]*Armour, len(rs.Armours))

	for i := range rs.Weapons {
		w := &rs.Weapons[i]
		if w.ID == "" {
			errs = append(errs, fmt.Errorf("weapon %d: missing id", i))
			continue
		}
		if _, dup := rs.weapons[w.ID]; dup {
			errs = append(errs, fmt.Errorf("weapon %q: duplicate id", w.ID))
		}
		rs.weapons[w.ID] = w
		if w.DamageType == "" {
			w.DamageType = DamageKinetic
		}
		if w.FlightSpeed <= 0 {
			w.FlightSpeed = 4
		}
		switch w.Kind {
		case KindFirearm:
			if w.Accuracy.Snap == 0 && w.Accuracy.Aimed == 0 && w.Accuracy.Auto == 0 {
				errs = append(errs, fmt.Errorf("weapon %q: no fire mode", w.ID))
			}
			if w.Accuracy.Auto > 0 && w.AutoShots <= 0 {
				w.AutoShots = 3
			}
		case KindGrenade:
			if w.TUPercent.Throw <= 0 {
				errs = append(errs, fmt.Errorf("weapon %q: grenade without throw cost", w.ID))
			}
		case KindMelee:
		default:
			errs = append(errs, fmt.Errorf("weapon %q: unknown kind %q", w.ID, w.Kind))
		}
		if w.Explosive() && w.Radius <= 0 {
			errs = append(errs, fmt.Errorf("weapon %q: area damage needs a radius", w.ID))
		}
		if w.Range <= 0 {
			errs = append(errs, fmt.Errorf("weapon %q: range must be positive", w.ID))
		}
	}
	for i := range rs.Armours {
		a := &rs.Armours[i]
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("armour %d: missing id", i))
			continue
		}
		rs.armours[a.ID] = a
	}
	seen := make(map[string]bool, len(rs.Units))
	for i, u := range rs.Units {
		if u.ID == "" {
			errs = append(errs, fmt.Errorf("unit %d: missing id", i))
			continue
		}
		if seen[u.ID] {
			errs = append(errs, fmt.Errorf("unit %q: duplicate id", u.ID))
		}
		seen[u.ID] = true
		if u.Stats.MaxTimeUnits <= 0 {
			errs = append(errs, fmt.Errorf("unit %q: max_time_units must be positive", u.ID))
		}
		if u.Armour != "" && rs.armours[u.Armour] == nil {
			errs = append(errs, fmt.Errorf("unit %q: unknown armour %q", u.ID, u.Armour))
		}
		for _, it := range u.Inventory {
			if rs.weapons[it.RuleID] == nil {
				errs = append(errs, fmt.Errorf("unit %q: unknown item %q", u.ID, it.RuleID))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("rules: invalid ruleset: %w", err)
	}
	return nil
}

// Weapon looks up a weapon by ID.
func (rs *Ruleset) Weapon(id string) (*Weapon, bool) {
	w, ok := rs.weapons[id]
	return w, ok
}

// Templates converts the unit rules into battlefield templates. Armour is
// folded into the stat block and items start with a full clip.
func (rs *Ruleset) Templates() map[string]battlefield.UnitTemplate {
	out := make(map[string]battlefield.UnitTemplate, len(rs.Units))
	for _, u := range rs.Units {
		st := u.Stats
		if a := rs.armours[u.Armour]; a != nil {
			st.Armor += a.Value
		}
		inv := make([]battlefield.Item, 0, len(u.Inventory))
		for _, it := range u.Inventory {
			if it.Ammo == 0 {
				if w := rs.weapons[it.RuleID]; w != nil {
					it.Ammo = w.Clip
				}
			}
			inv = append(inv, it)
		}
		out[u.ID] = battlefield.UnitTemplate{Stats: st, Inventory: inv}
	}
	return out
}

// WeaponIDs returns all weapon IDs in sorted order.
func (rs *Ruleset) WeaponIDs() []string {
	ids := make([]string, 0, len(rs.weapons))
	for id := range rs.weapons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
