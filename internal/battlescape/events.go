package battlescape

import (
	"fmt"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// Event is one discrete change the presentation layer can react to.
// Events are emitted in the order the core applies them.
type Event interface {
	Name() string
	Subject() battlefield.UnitID // NoUnit for events about no unit in particular
	Detail() string
}

// UnitMoved is one completed tile step.
type UnitMoved struct {
	Unit     battlefield.UnitID
	From, To battlefield.Position
}

func (UnitMoved) Name() string                  { return "unit_moved" }
func (e UnitMoved) Subject() battlefield.UnitID { return e.Unit }
func (e UnitMoved) Detail() string              { return fmt.Sprintf("%s -> %s", e.From, e.To) }

// TileRevealed marks a tile first seen by a faction.
type TileRevealed struct {
	Tile    battlefield.Position
	Faction battlefield.Faction
}

func (TileRevealed) Name() string                { return "tile_revealed" }
func (TileRevealed) Subject() battlefield.UnitID { return battlefield.NoUnit }
func (e TileRevealed) Detail() string            { return fmt.Sprintf("%s to %s", e.Tile, e.Faction) }

// DamageApplied reports health or stun damage dealt to a unit.
type DamageApplied struct {
	Unit   battlefield.UnitID
	Amount int
	Source battlefield.UnitID
	Type   rules.DamageType
}

func (DamageApplied) Name() string                  { return "damage_applied" }
func (e DamageApplied) Subject() battlefield.UnitID { return e.Unit }
func (e DamageApplied) Detail() string {
	return fmt.Sprintf("%d %s from #%d", e.Amount, e.Type, e.Source)
}

// UnitDied is emitted when a death is finalised.
type UnitDied struct {
	Unit   battlefield.UnitID
	Killer battlefield.UnitID
}

func (UnitDied) Name() string                  { return "unit_died" }
func (e UnitDied) Subject() battlefield.UnitID { return e.Unit }
func (e UnitDied) Detail() string              { return fmt.Sprintf("killed by #%d", e.Killer) }

// UnitUnconscious is emitted when a stunned-out unit leaves the battle.
type UnitUnconscious struct {
	Unit battlefield.UnitID
}

func (UnitUnconscious) Name() string                  { return "unit_unconscious" }
func (e UnitUnconscious) Subject() battlefield.UnitID { return e.Unit }
func (UnitUnconscious) Detail() string                { return "" }

// ExplosionOccurred marks ground zero of a blast.
type ExplosionOccurred struct {
	Center battlefield.Position
	Radius int
	Type   rules.DamageType
	Source battlefield.UnitID
}

func (ExplosionOccurred) Name() string                  { return "explosion" }
func (e ExplosionOccurred) Subject() battlefield.UnitID { return e.Source }
func (e ExplosionOccurred) Detail() string {
	return fmt.Sprintf("%s at %s r=%d", e.Type, e.Center, e.Radius)
}

// UnitTurned reports a completed rotation.
type UnitTurned struct {
	Unit     battlefield.UnitID
	From, To battlefield.Direction
}

func (UnitTurned) Name() string                  { return "unit_turned" }
func (e UnitTurned) Subject() battlefield.UnitID { return e.Unit }
func (e UnitTurned) Detail() string              { return fmt.Sprintf("%s -> %s", e.From, e.To) }

// StanceChanged reports a posture change.
type StanceChanged struct {
	Unit     battlefield.UnitID
	From, To battlefield.Stance
}

func (StanceChanged) Name() string                  { return "stance_changed" }
func (e StanceChanged) Subject() battlefield.UnitID { return e.Unit }
func (e StanceChanged) Detail() string              { return fmt.Sprintf("%s -> %s", e.From, e.To) }

// DoorOpened reports a door opened by a walking unit.
type DoorOpened struct {
	Unit battlefield.UnitID
	Tile battlefield.Position
}

func (DoorOpened) Name() string                  { return "door_opened" }
func (e DoorOpened) Subject() battlefield.UnitID { return e.Unit }
func (e DoorOpened) Detail() string              { return e.Tile.String() }

// ShotFired is one projectile leaving a weapon. Hit is decided here, before
// the flight.
type ShotFired struct {
	Shooter battlefield.UnitID
	Target  battlefield.Position
	Weapon  string
	Mode    rules.FireMode
	Chance  float64
	Hit     bool
}

func (ShotFired) Name() string                  { return "shot_fired" }
func (e ShotFired) Subject() battlefield.UnitID { return e.Shooter }
func (e ShotFired) Detail() string {
	res := "miss"
	if e.Hit {
		res = "hit"
	}
	return fmt.Sprintf("%s %s at %s %.0f%% %s", e.Weapon, e.Mode, e.Target, e.Chance*100, res)
}

// ProjectileImpact is where a projectile came to rest.
type ProjectileImpact struct {
	Shooter battlefield.UnitID
	Tile    battlefield.Position
	Struck  battlefield.UnitID
}

func (ProjectileImpact) Name() string                  { return "projectile_impact" }
func (e ProjectileImpact) Subject() battlefield.UnitID { return e.Shooter }
func (e ProjectileImpact) Detail() string {
	if e.Struck == battlefield.NoUnit {
		return e.Tile.String()
	}
	return fmt.Sprintf("%s struck #%d", e.Tile, e.Struck)
}

// TileDestroyed reports terrain changed by an explosion.
type TileDestroyed struct {
	Tile          battlefield.Position
	Before, After battlefield.ObjectType
	FloorLost     bool
}

func (TileDestroyed) Name() string                { return "tile_destroyed" }
func (TileDestroyed) Subject() battlefield.UnitID { return battlefield.NoUnit }
func (e TileDestroyed) Detail() string {
	s := fmt.Sprintf("%s %s -> %s", e.Tile, e.Before, e.After)
	if e.FloorLost {
		s += " floor lost"
	}
	return s
}

// UnitFell reports a unit landing after losing its footing.
type UnitFell struct {
	Unit     battlefield.UnitID
	From, To battlefield.Position
}

func (UnitFell) Name() string                  { return "unit_fell" }
func (e UnitFell) Subject() battlefield.UnitID { return e.Unit }
func (e UnitFell) Detail() string              { return fmt.Sprintf("%s -> %s", e.From, e.To) }

// UnitPanicked reports a unit losing its nerve for the rest of the turn.
type UnitPanicked struct {
	Unit battlefield.UnitID
}

func (UnitPanicked) Name() string                  { return "unit_panicked" }
func (e UnitPanicked) Subject() battlefield.UnitID { return e.Unit }
func (UnitPanicked) Detail() string                { return "" }

// ReactionFire reports an interrupt shot at a moving unit.
type ReactionFire struct {
	Reactor battlefield.UnitID
	Target  battlefield.UnitID
}

func (ReactionFire) Name() string                  { return "reaction_fire" }
func (e ReactionFire) Subject() battlefield.UnitID { return e.Reactor }
func (e ReactionFire) Detail() string              { return fmt.Sprintf("at #%d", e.Target) }

// WalkStopped reports a walk ending before its destination.
type WalkStopped struct {
	Unit   battlefield.UnitID
	At     battlefield.Position
	Reason string
}

func (WalkStopped) Name() string                  { return "walk_stopped" }
func (e WalkStopped) Subject() battlefield.UnitID { return e.Unit }
func (e WalkStopped) Detail() string              { return fmt.Sprintf("at %s: %s", e.At, e.Reason) }

// ActionDiscarded reports a suspended action dropped because its actor can
// no longer act.
type ActionDiscarded struct {
	Unit battlefield.UnitID
	Kind ActionKind
}

func (ActionDiscarded) Name() string                  { return "action_discarded" }
func (e ActionDiscarded) Subject() battlefield.UnitID { return e.Unit }
func (e ActionDiscarded) Detail() string              { return e.Kind.String() }

// PhaseStarted opens a faction's phase.
type PhaseStarted struct {
	Faction battlefield.Faction
	Turn    int
}

func (PhaseStarted) Name() string                { return "phase_started" }
func (PhaseStarted) Subject() battlefield.UnitID { return battlefield.NoUnit }
func (e PhaseStarted) Detail() string            { return fmt.Sprintf("%s turn %d", e.Faction, e.Turn) }

// PhaseEnded closes a faction's phase.
type PhaseEnded struct {
	Faction battlefield.Faction
	Turn    int
}

func (PhaseEnded) Name() string                { return "phase_ended" }
func (PhaseEnded) Subject() battlefield.UnitID { return battlefield.NoUnit }
func (e PhaseEnded) Detail() string            { return fmt.Sprintf("%s turn %d", e.Faction, e.Turn) }

// BattleEnded is the last event of a battle.
type BattleEnded struct {
	Outcome Outcome
}

func (BattleEnded) Name() string                { return "battle_ended" }
func (BattleEnded) Subject() battlefield.UnitID { return battlefield.NoUnit }
func (e BattleEnded) Detail() string            { return e.Outcome.String() }
