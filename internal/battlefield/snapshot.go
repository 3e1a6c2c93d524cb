package battlefield

import (
	"fmt"
	"sort"
)

// Snapshot is the plain-data description of a battle handed to the core by
// the battlefield generator or a savegame loader.
type Snapshot struct {
	Width         int             `yaml:"width"`
	Length        int             `yaml:"length"`
	Levels        int             `yaml:"levels"`
	DefaultGround string          `yaml:"default_ground"`
	Regions       []RegionSpec    `yaml:"regions"`
	Tiles         []TileSpec      `yaml:"tiles"`
	Units         []UnitSpec      `yaml:"units"`
	Objectives    []ObjectiveSpec `yaml:"objectives"`
}

// RegionSpec fills a rectangle of one level with ground and/or an object.
// Coordinates are inclusive.
type RegionSpec struct {
	X0     int    `yaml:"x0"`
	Y0     int    `yaml:"y0"`
	X1     int    `yaml:"x1"`
	Y1     int    `yaml:"y1"`
	Z      int    `yaml:"z"`
	Ground string `yaml:"ground"`
	Object string `yaml:"object"`
	// Outline only fills the border of the rectangle (building walls).
	Outline bool `yaml:"outline"`
}

// TileSpec overrides a single tile.
type TileSpec struct {
	X          int            `yaml:"x"`
	Y          int            `yaml:"y"`
	Z          int            `yaml:"z"`
	Ground     string         `yaml:"ground"`
	Object     string         `yaml:"object"`
	Locked     bool           `yaml:"locked"`
	Open       bool           `yaml:"open"`
	Smoke      int            `yaml:"smoke"`
	Fire       int            `yaml:"fire"`
	BlockEdges []string       `yaml:"block_edges"`
	EdgeCost   map[string]int `yaml:"edge_cost"`
}

// UnitSpec places one unit. Stats, when set, replace the template stats;
// their pools are refilled unless KeepPools is set (a resumed battle).
type UnitSpec struct {
	Name      string `yaml:"name"`
	Template  string `yaml:"template"`
	Faction   string `yaml:"faction"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Z         int    `yaml:"z"`
	Facing    string `yaml:"facing"`
	Stance    string `yaml:"stance"`
	Stats     *Stats `yaml:"stats"`
	KeepPools bool   `yaml:"keep_pools"`
	Inventory []Item `yaml:"inventory"`
}

// ObjectiveSpec names the tile a faction's AI moves toward.
type ObjectiveSpec struct {
	Faction string `yaml:"faction"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Z       int    `yaml:"z"`
}

// UnitTemplate is the stat block and loadout a unit is created from.
type UnitTemplate struct {
	Stats     Stats
	Inventory []Item
}

// New builds a battlefield from a snapshot. Units are added in snapshot
// order, so their IDs follow it.
func New(s Snapshot, templates map[string]UnitTemplate) (*Battlefield, error) {
	if s.Width <= 0 || s.Length <= 0 {
		return nil, fmt.Errorf("battlefield: invalid size %dx%d", s.Width, s.Length)
	}
	bf := NewEmpty(s.Width, s.Length, s.Levels)
	if s.DefaultGround != "" {
		g, ok := ParseGround(s.DefaultGround)
		if !ok {
			return nil, fmt.Errorf("battlefield: unknown default ground %q", s.DefaultGround)
		}
		for y := 0; y < bf.Length; y++ {
			for x := 0; x < bf.Width; x++ {
				bf.Tile(Position{X: x, Y: y}).Ground = g
			}
		}
	}

	for i, r := range s.Regions {
		if err := bf.applyRegion(r); err != nil {
			return nil, fmt.Errorf("battlefield: region %d: %w", i, err)
		}
	}
	for i, ts := range s.Tiles {
		if err := bf.applyTile(ts); err != nil {
			return nil, fmt.Errorf("battlefield: tile %d: %w", i, err)
		}
	}
	bf.recomputeMinGroundCost()

	for _, o := range s.Objectives {
		f, ok := ParseFaction(o.Faction)
		if !ok {
			return nil, fmt.Errorf("battlefield: objective for unknown faction %q", o.Faction)
		}
		bf.SetObjective(f, Position{X: o.X, Y: o.Y, Z: o.Z})
	}

	for i, us := range s.Units {
		u, err := buildUnit(us, templates)
		if err != nil {
			return nil, fmt.Errorf("battlefield: unit %d: %w", i, err)
		}
		if _, err := bf.AddUnit(u, Position{X: us.X, Y: us.Y, Z: us.Z}); err != nil {
			return nil, err
		}
	}
	return bf, nil
}

func (bf *Battlefield) applyRegion(r RegionSpec) error {
	var g Ground
	var o ObjectType
	var ok bool
	if r.Ground != "" {
		if g, ok = ParseGround(r.Ground); !ok {
			return fmt.Errorf("unknown ground %q", r.Ground)
		}
	}
	if r.Object != "" {
		if o, ok = ParseObject(r.Object); !ok {
			return fmt.Errorf("unknown object %q", r.Object)
		}
	}
	x0, x1 := minInt(r.X0, r.X1), maxInt(r.X0, r.X1)
	y0, y1 := minInt(r.Y0, r.Y1), maxInt(r.Y0, r.Y1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if r.Outline && x != x0 && x != x1 && y != y0 && y != y1 {
				continue
			}
			p := Position{X: x, Y: y, Z: r.Z}
			if !bf.InBounds(p) {
				return fmt.Errorf("tile %s out of bounds", p)
			}
			if r.Ground != "" {
				bf.SetGround(p, g)
			}
			if r.Object != "" {
				bf.SetObject(p, o)
			}
		}
	}
	return nil
}

func (bf *Battlefield) applyTile(ts TileSpec) error {
	p := Position{X: ts.X, Y: ts.Y, Z: ts.Z}
	t := bf.Tile(p)
	if t == nil {
		return fmt.Errorf("tile %s out of bounds", p)
	}
	if ts.Ground != "" {
		g, ok := ParseGround(ts.Ground)
		if !ok {
			return fmt.Errorf("unknown ground %q", ts.Ground)
		}
		bf.SetGround(p, g)
	}
	if ts.Object != "" {
		o, ok := ParseObject(ts.Object)
		if !ok {
			return fmt.Errorf("unknown object %q", ts.Object)
		}
		bf.SetObject(p, o)
	}
	if ts.Locked {
		t.Flags |= TileLocked
	}
	if ts.Open {
		t.Flags |= TileDoorOpen
	}
	bf.AddSmoke(p, ts.Smoke)
	bf.Ignite(p, ts.Fire)
	for _, name := range ts.BlockEdges {
		d, ok := ParseDirection(name)
		if !ok {
			return fmt.Errorf("unknown direction %q", name)
		}
		t.BlockEdge(d)
	}
	// Sorted for a deterministic error on bad input.
	keys := make([]string, 0, len(ts.EdgeCost))
	for k := range ts.EdgeCost {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		d, ok := ParseDirection(name)
		if !ok {
			return fmt.Errorf("unknown direction %q", name)
		}
		c := ts.EdgeCost[name]
		if c < 0 || c > 255 {
			return fmt.Errorf("edge cost %d out of range", c)
		}
		t.EdgeCost[d] = uint8(c) // #nosec G115 -- range checked above
	}
	return nil
}

func buildUnit(us UnitSpec, templates map[string]UnitTemplate) (Unit, error) {
	f, ok := ParseFaction(us.Faction)
	if !ok {
		return Unit{}, fmt.Errorf("unknown faction %q", us.Faction)
	}
	u := Unit{Name: us.Name, Template: us.Template, Faction: f}
	if us.Template != "" {
		tpl, ok := templates[us.Template]
		switch {
		case ok:
			u.Stats = tpl.Stats.Fresh()
			u.Inventory = append([]Item(nil), tpl.Inventory...)
		case us.Stats == nil:
			return Unit{}, fmt.Errorf("unknown unit template %q", us.Template)
		}
	}
	if us.Stats != nil {
		if us.KeepPools {
			u.Stats = *us.Stats
		} else {
			u.Stats = us.Stats.Fresh()
		}
	}
	if len(us.Inventory) > 0 {
		u.Inventory = append([]Item(nil), us.Inventory...)
	}
	if u.Stats.MaxTimeUnits <= 0 {
		return Unit{}, fmt.Errorf("unit %q has no time units", us.Name)
	}
	if us.Facing != "" {
		d, ok := ParseDirection(us.Facing)
		if !ok || !d.Lateral() {
			return Unit{}, fmt.Errorf("bad facing %q", us.Facing)
		}
		u.Facing = d
	}
	switch us.Stance {
	case "", "standing":
		u.Stance = StanceStanding
	case "kneeling":
		u.Stance = StanceKneeling
	case "prone":
		u.Stance = StanceProne
	default:
		return Unit{}, fmt.Errorf("unknown stance %q", us.Stance)
	}
	if u.Name == "" {
		u.Name = f.String()
	}
	return u, nil
}

// ParseDirection maps a direction name ("N", "ne", "up") back to its value.
func ParseDirection(name string) (Direction, bool) {
	for d := Direction(0); d < DirectionCount; d++ {
		if equalFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Snapshot exports the current state in the form New accepts. Only tiles
// that differ from an empty battlefield are listed, and only units still on
// the grid are included.
func (bf *Battlefield) Snapshot() Snapshot {
	s := Snapshot{Width: bf.Width, Length: bf.Length, Levels: bf.Levels}
	for i := range bf.tiles {
		t := &bf.tiles[i]
		if ts, ok := tileSpecOf(t); ok {
			s.Tiles = append(s.Tiles, ts)
		}
	}
	for f := Faction(0); f < FactionCount; f++ {
		if p, ok := bf.Objective(f); ok {
			s.Objectives = append(s.Objectives, ObjectiveSpec{Faction: f.String(), X: p.X, Y: p.Y, Z: p.Z})
		}
	}
	for _, u := range bf.units {
		if !u.placed {
			continue
		}
		st := u.Stats
		s.Units = append(s.Units, UnitSpec{
			Name:      u.Name,
			Template:  u.Template,
			Faction:   u.Faction.String(),
			X:         u.Pos.X,
			Y:         u.Pos.Y,
			Z:         u.Pos.Z,
			Facing:    u.Facing.String(),
			Stance:    u.Stance.String(),
			Stats:     &st,
			KeepPools: true,
			Inventory: append([]Item(nil), u.Inventory...),
		})
	}
	return s
}

func tileSpecOf(t *Tile) (TileSpec, bool) {
	ts := TileSpec{X: t.Pos.X, Y: t.Pos.Y, Z: t.Pos.Z, Smoke: t.Smoke, Fire: t.Fire}
	changed := t.Smoke > 0 || t.Fire > 0
	defGround := GroundGrass
	if t.Pos.Z > 0 {
		defGround = GroundVoid
	}
	if t.Ground != defGround {
		ts.Ground = t.Ground.String()
		changed = true
	}
	if t.Object != ObjectNone {
		ts.Object = t.Object.String()
		changed = true
	}
	if t.Has(TileLocked) {
		ts.Locked = true
		changed = true
	}
	if t.Has(TileDoorOpen) {
		ts.Open = true
		changed = true
	}
	for d := Direction(0); d < DirectionCount; d++ {
		if !t.EdgeOpen(d) {
			ts.BlockEdges = append(ts.BlockEdges, d.String())
			changed = true
		}
		if t.EdgeCost[d] > 0 {
			if ts.EdgeCost == nil {
				ts.EdgeCost = make(map[string]int)
			}
			ts.EdgeCost[d.String()] = int(t.EdgeCost[d])
			changed = true
		}
	}
	return ts, changed
}
