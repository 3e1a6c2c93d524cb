package battlefield

import (
	"fmt"
	"sort"
	"strings"
)

// Battlefield is the authoritative state of one battle: a 3D arena of tiles
// and the arena of units placed on it. Tiles and unit records live for the
// whole battle; units leaving the battle keep their record for scoring.
type Battlefield struct {
	Width  int // X extent
	Length int // Y extent
	Levels int // Z extent

	tiles []Tile // index = (z*Length + y)*Width + x
	units []*Unit

	objectives    [FactionCount]Position
	hasObjective  [FactionCount]bool
	minGroundCost int
}

// NewEmpty creates a battlefield with grass ground at level 0 and open air
// above.
func NewEmpty(width, length, levels int) *Battlefield {
	if width < 1 {
		width = 1
	}
	if length < 1 {
		length = 1
	}
	if levels < 1 {
		levels = 1
	}
	bf := &Battlefield{
		Width:  width,
		Length: length,
		Levels: levels,
		tiles:  make([]Tile, width*length*levels),
	}
	for z := 0; z < levels; z++ {
		for y := 0; y < length; y++ {
			for x := 0; x < width; x++ {
				t := &bf.tiles[bf.index(Position{X: x, Y: y, Z: z})]
				t.Pos = Position{X: x, Y: y, Z: z}
				t.Occupant = NoUnit
				if z == 0 {
					t.Ground = GroundGrass
					t.Flags |= TileFloor
				} else {
					t.Ground = GroundVoid
				}
			}
		}
	}
	bf.recomputeMinGroundCost()
	return bf
}

// InBounds reports whether pos lies inside the grid.
func (bf *Battlefield) InBounds(p Position) bool {
	return p.X >= 0 && p.X < bf.Width && p.Y >= 0 && p.Y < bf.Length && p.Z >= 0 && p.Z < bf.Levels
}

func (bf *Battlefield) index(p Position) int {
	return (p.Z*bf.Length+p.Y)*bf.Width + p.X
}

// Tile returns the tile at p, or nil when p is out of bounds.
func (bf *Battlefield) Tile(p Position) *Tile {
	if !bf.InBounds(p) {
		return nil
	}
	return &bf.tiles[bf.index(p)]
}

// Tiles exposes the tile arena in index order.
func (bf *Battlefield) Tiles() []Tile { return bf.tiles }

// --- Terrain editing ---

// SetGround sets the ground of a tile. Non-void ground gives the tile a floor.
func (bf *Battlefield) SetGround(p Position, g Ground) {
	t := bf.Tile(p)
	if t == nil {
		return
	}
	t.Ground = g
	if g == GroundVoid {
		t.Flags &^= TileFloor
		t.FloorHP = 0
	} else {
		t.Flags |= TileFloor
		if p.Z > 0 {
			t.FloorHP = floorDurability
		}
	}
	bf.recomputeMinGroundCost()
}

// SetObject places an object on a tile, initialising its durability.
func (bf *Battlefield) SetObject(p Position, o ObjectType) {
	t := bf.Tile(p)
	if t == nil {
		return
	}
	t.Object = o
	t.Durability = objectDefaultDurability(o)
	t.Flags &^= TileDoorOpen | TileLocked
	bf.recomputeMinGroundCost()
}

// SetObjective records the tile a faction's AI should push toward.
func (bf *Battlefield) SetObjective(f Faction, p Position) {
	if f >= FactionCount {
		return
	}
	bf.objectives[f] = p
	bf.hasObjective[f] = true
}

// Objective returns the faction's objective tile, if any.
func (bf *Battlefield) Objective(f Faction) (Position, bool) {
	if f >= FactionCount {
		return Position{}, false
	}
	return bf.objectives[f], bf.hasObjective[f]
}

// MinGroundCost is the cheapest base TU cost of any enterable tile. The
// pathfinder scales its heuristic by it.
func (bf *Battlefield) MinGroundCost() int { return bf.minGroundCost }

func (bf *Battlefield) recomputeMinGroundCost() {
	best := 0
	for i := range bf.tiles {
		c := bf.tiles[i].BaseTU()
		if c <= 0 {
			continue
		}
		if best == 0 || c < best {
			best = c
		}
	}
	if best == 0 {
		best = 1
	}
	bf.minGroundCost = best
}

// --- Movement queries ---

// Standable reports whether a unit at p has something under its feet.
func (bf *Battlefield) Standable(p Position) bool {
	t := bf.Tile(p)
	if t == nil {
		return false
	}
	if p.Z == 0 {
		return true
	}
	if t.HasFloor() || t.IsStairs() {
		return true
	}
	below := bf.Tile(p.Step(Down))
	return below != nil && below.Blocking() && below.Object != ObjectWindow
}

// Passable reports whether a unit could stand on p, ignoring occupants.
func (bf *Battlefield) Passable(p Position) bool {
	t := bf.Tile(p)
	if t == nil || t.Blocking() {
		return false
	}
	return bf.Standable(p)
}

// StepBlocked reports whether moving from p in direction d is impossible due
// to terrain alone: out of bounds, blocking target, sealed edge, corner
// cutting past blocked tiles, or a level change without stairs.
func (bf *Battlefield) StepBlocked(p Position, d Direction) bool {
	from := bf.Tile(p)
	if from == nil || d >= DirectionCount {
		return true
	}
	to := p.Step(d)
	if !bf.Passable(to) {
		return true
	}
	if !from.EdgeOpen(d) {
		return true
	}
	if tt := bf.Tile(to); !tt.EdgeOpen(d.Opposite()) {
		return true
	}
	switch {
	case d == Up || d == Down:
		if !from.IsStairs() || !bf.Tile(to).IsStairs() {
			return true
		}
	case d.Diagonal():
		o := d.Offset()
		a := bf.Tile(Position{X: p.X + o.X, Y: p.Y, Z: p.Z})
		b := bf.Tile(Position{X: p.X, Y: p.Y + o.Y, Z: p.Z})
		if a == nil || b == nil || a.Blocking() || b.Blocking() {
			return true
		}
	}
	return false
}

// --- Units ---

// Units returns the unit arena in ID order, including units out of the
// battle.
func (bf *Battlefield) Units() []*Unit { return bf.units }

// Unit returns the unit with the given ID, or nil.
func (bf *Battlefield) Unit(id UnitID) *Unit {
	if id < 0 || int(id) >= len(bf.units) {
		return nil
	}
	return bf.units[id]
}

// UnitAt returns the unit occupying p, or nil.
func (bf *Battlefield) UnitAt(p Position) *Unit {
	t := bf.Tile(p)
	if t == nil || t.Occupant == NoUnit {
		return nil
	}
	return bf.Unit(t.Occupant)
}

// Occupied reports whether another unit than self stands on p.
func (bf *Battlefield) Occupied(p Position, self UnitID) bool {
	t := bf.Tile(p)
	return t != nil && t.Occupant != NoUnit && t.Occupant != self
}

// UnitsOf returns the living units of a faction in ID order.
func (bf *Battlefield) UnitsOf(f Faction) []*Unit {
	var out []*Unit
	for _, u := range bf.units {
		if u.Faction == f && u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// AddUnit appends u to the arena and places it on p. The unit's ID is
// assigned from its arena index.
func (bf *Battlefield) AddUnit(u Unit, p Position) (UnitID, error) {
	if !bf.Passable(p) {
		return NoUnit, fmt.Errorf("battlefield: cannot place %q at %s: tile not passable", u.Name, p)
	}
	if bf.Occupied(p, NoUnit) {
		return NoUnit, fmt.Errorf("battlefield: cannot place %q at %s: tile occupied", u.Name, p)
	}
	u.ID = UnitID(len(bf.units))
	u.Stats.normalize()
	u.Pos = p
	u.placed = true
	nu := u
	bf.units = append(bf.units, &nu)
	bf.Tile(p).Occupant = nu.ID
	return nu.ID, nil
}

// MoveUnit relocates a unit, updating the unit and both tiles together.
// It returns false and changes nothing when the target is out of bounds or
// held by another unit.
func (bf *Battlefield) MoveUnit(id UnitID, to Position) bool {
	u := bf.Unit(id)
	dst := bf.Tile(to)
	if u == nil || dst == nil || !u.placed {
		return false
	}
	if dst.Occupant != NoUnit && dst.Occupant != id {
		return false
	}
	if src := bf.Tile(u.Pos); src != nil && src.Occupant == id {
		src.Occupant = NoUnit
	}
	dst.Occupant = id
	u.Pos = to
	return true
}

// RemoveUnit takes a unit off the grid with a terminal status. The record
// stays in the arena; its inventory drops onto the tile it stood on.
func (bf *Battlefield) RemoveUnit(id UnitID, status Status) {
	u := bf.Unit(id)
	if u == nil {
		return
	}
	u.Status = status
	if !u.placed {
		return
	}
	if t := bf.Tile(u.Pos); t != nil {
		if t.Occupant == id {
			t.Occupant = NoUnit
		}
		t.Items = append(t.Items, u.Inventory...)
	}
	u.Inventory = nil
	u.placed = false
}

// Placed reports whether the unit currently occupies a tile.
func (bf *Battlefield) Placed(id UnitID) bool {
	u := bf.Unit(id)
	return u != nil && u.placed
}

// --- Doors and destruction ---

// OpenDoor opens an unlocked closed door. It reports whether the door state
// changed.
func (bf *Battlefield) OpenDoor(p Position) bool {
	t := bf.Tile(p)
	if t == nil || !t.DoorClosed() || t.Has(TileLocked) {
		return false
	}
	t.Flags |= TileDoorOpen
	return true
}

// CloseDoor shuts an open door that nobody stands in.
func (bf *Battlefield) CloseDoor(p Position) bool {
	t := bf.Tile(p)
	if t == nil || !t.IsDoor() || !t.Has(TileDoorOpen) || t.Occupant != NoUnit {
		return false
	}
	t.Flags &^= TileDoorOpen
	return true
}

// TileDamage describes what happened to a tile under DamageTile.
type TileDamage struct {
	Pos            Position
	ObjectBefore   ObjectType
	ObjectAfter    ObjectType
	FloorDestroyed bool
}

// Changed reports whether the damage altered the terrain.
func (d TileDamage) Changed() bool {
	return d.ObjectBefore != d.ObjectAfter || d.FloorDestroyed
}

// DamageTile applies explosive damage to the object and, above ground, the
// floor of a tile. Units whose footing was lost are returned in ID order;
// callers make them fall.
func (bf *Battlefield) DamageTile(p Position, dmg int) (TileDamage, []UnitID) {
	t := bf.Tile(p)
	res := TileDamage{Pos: p}
	if t == nil || dmg <= 0 {
		return res, nil
	}
	res.ObjectBefore = t.Object
	res.ObjectAfter = t.Object

	if t.Durability > 0 {
		t.Durability -= dmg
		if t.Durability <= 0 {
			obj, ground := objectDestroyedResult(t.Object, t.Ground)
			t.Object = obj
			t.Durability = objectDefaultDurability(obj)
			t.Flags &^= TileDoorOpen | TileLocked
			if t.Ground != GroundVoid {
				t.Ground = ground
			}
			t.Flags |= TileDestroyed
			res.ObjectAfter = obj
		}
	}

	if p.Z > 0 && t.HasFloor() {
		t.FloorHP -= dmg
		if t.FloorHP <= 0 {
			t.FloorHP = 0
			t.Ground = GroundVoid
			t.Flags &^= TileFloor
			t.Flags |= TileDestroyed
			res.FloorDestroyed = true
		}
	}

	if !res.Changed() {
		return res, nil
	}
	bf.recomputeMinGroundCost()
	return res, bf.unsupportedAround(p)
}

// unsupportedAround lists units on p or directly above p that no longer
// have footing.
func (bf *Battlefield) unsupportedAround(p Position) []UnitID {
	var out []UnitID
	for _, q := range []Position{p, p.Step(Up)} {
		u := bf.UnitAt(q)
		if u == nil || bf.Standable(q) {
			continue
		}
		out = append(out, u.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LandingLevel returns the position a unit falling from p comes to rest on:
// the first standable tile below it.
func (bf *Battlefield) LandingLevel(p Position) Position {
	q := p
	for q.Z > 0 && !bf.Standable(q) {
		q = q.Step(Down)
	}
	return q
}

// --- Smoke and fire ---

// AddSmoke raises the smoke density of a tile, capped at MaxSmoke.
func (bf *Battlefield) AddSmoke(p Position, amount int) {
	t := bf.Tile(p)
	if t == nil || amount <= 0 {
		return
	}
	t.Smoke += amount
	if t.Smoke > MaxSmoke {
		t.Smoke = MaxSmoke
	}
}

// Ignite sets a tile burning for the given number of turns.
func (bf *Battlefield) Ignite(p Position, turns int) {
	t := bf.Tile(p)
	if t == nil || turns <= 0 || t.Ground == GroundWater || t.Ground == GroundVoid {
		return
	}
	if turns > t.Fire {
		t.Fire = turns
	}
	t.Flags |= TileOnFire
}

// DecayEnvironment thins smoke and burns down fires at the start of a turn.
// Burning tiles give off a little smoke.
func (bf *Battlefield) DecayEnvironment() {
	for i := range bf.tiles {
		t := &bf.tiles[i]
		if t.Smoke > 0 {
			t.Smoke--
		}
		if t.Fire > 0 {
			t.Fire--
			if t.Smoke < 3 {
				t.Smoke++
			}
			if t.Fire == 0 {
				t.Flags &^= TileOnFire
			}
		}
	}
}

// --- Invariants ---

// InvariantError reports a broken battlefield invariant. It is raised by
// panicking; continuing past one would corrupt the outcome.
type InvariantError struct {
	Rule   string
	Detail string
	Dump   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("battlefield invariant %q violated: %s", e.Rule, e.Detail)
}

// CheckInvariants verifies occupant/position agreement and non-negative TU
// and stamina. It returns the first violation found.
func (bf *Battlefield) CheckInvariants() error {
	for i := range bf.tiles {
		t := &bf.tiles[i]
		if t.Occupant == NoUnit {
			continue
		}
		u := bf.Unit(t.Occupant)
		if u == nil {
			return bf.violation("occupant", fmt.Sprintf("tile %s references missing unit %d", t.Pos, t.Occupant))
		}
		if !u.placed || !u.Alive() {
			return bf.violation("occupant", fmt.Sprintf("tile %s references %s which is %s", t.Pos, u, u.Status))
		}
		if u.Pos != t.Pos {
			return bf.violation("occupant", fmt.Sprintf("tile %s references %s positioned at %s", t.Pos, u, u.Pos))
		}
	}
	for _, u := range bf.units {
		if u.placed {
			t := bf.Tile(u.Pos)
			if t == nil || t.Occupant != u.ID {
				return bf.violation("position", fmt.Sprintf("%s at %s is not the tile occupant", u, u.Pos))
			}
		}
		if u.Stats.TimeUnits < 0 {
			return bf.violation("time_units", fmt.Sprintf("%s has %d TU", u, u.Stats.TimeUnits))
		}
		if u.Stats.Stamina < 0 {
			return bf.violation("stamina", fmt.Sprintf("%s has %d stamina", u, u.Stats.Stamina))
		}
	}
	return nil
}

func (bf *Battlefield) violation(rule, detail string) *InvariantError {
	return &InvariantError{Rule: rule, Detail: detail, Dump: bf.Dump()}
}

// Dump renders the full battle state as text for debugging.
func (bf *Battlefield) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "battlefield %dx%dx%d min_cost=%d\n", bf.Width, bf.Length, bf.Levels, bf.minGroundCost)
	for _, u := range bf.units {
		fmt.Fprintf(&sb, "  unit %-12s %-8s pos=%s placed=%t facing=%s stance=%s status=%s tu=%d/%d hp=%d/%d stun=%d sta=%d morale=%d\n",
			u, u.Faction, u.Pos, u.placed, u.Facing, u.Stance, u.Status,
			u.Stats.TimeUnits, u.Stats.MaxTimeUnits, u.Stats.Health, u.Stats.MaxHealth,
			u.Stats.Stun, u.Stats.Stamina, u.Stats.Morale)
	}
	for z := 0; z < bf.Levels; z++ {
		fmt.Fprintf(&sb, "level %d\n", z)
		for y := 0; y < bf.Length; y++ {
			for x := 0; x < bf.Width; x++ {
				sb.WriteByte(bf.glyph(Position{X: x, Y: y, Z: z}))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// glyph is the single-character map symbol used by Dump.
func (bf *Battlefield) glyph(p Position) byte {
	t := bf.Tile(p)
	if t.Occupant != NoUnit {
		if u := bf.Unit(t.Occupant); u != nil {
			switch u.Faction {
			case FactionPlayer:
				return 'P'
			case FactionHostile:
				return 'H'
			default:
				return 'N'
			}
		}
		return '?'
	}
	switch {
	case t.IsDoor():
		if t.Has(TileDoorOpen) {
			return '/'
		}
		return '+'
	case t.IsStairs():
		return '>'
	case t.Blocking():
		return '#'
	case t.ObstacleHeight() > 0:
		return '='
	case t.Smoke >= 10:
		return '%'
	case !bf.Standable(p):
		return ' '
	default:
		return '.'
	}
}
