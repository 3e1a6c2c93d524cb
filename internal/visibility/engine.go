// Package visibility computes line of sight and fog of war on the
// battlefield. Visible sets are recomputed on events (a step, a door, an
// explosion, a new turn), never on a clock.
package visibility

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// Settings controls sight range and lighting.
type Settings struct {
	MaxRange   float64 // tiles, daylight sight range
	NightRange float64 // tiles, range to unlit tiles at night
	FOVDegrees float64 // facing cone; 360 disables it
	Daylight   bool
}

// DefaultSettings are used when a zero Settings is passed to New.
var DefaultSettings = Settings{MaxRange: 20, NightRange: 9, FOVDegrees: 360, Daylight: true}

// VisibleSet is what one unit currently observes. Slices are sorted.
type VisibleSet struct {
	Unit     battlefield.UnitID
	Tiles    []battlefield.Position
	Units    []battlefield.UnitID
	Revealed []battlefield.Position // tiles first discovered by the unit's faction in this recompute
}

// Contains reports whether target is in the set.
func (vs *VisibleSet) Contains(target battlefield.UnitID) bool {
	i := sort.Search(len(vs.Units), func(i int) bool { return vs.Units[i] >= target })
	return i < len(vs.Units) && vs.Units[i] == target
}

// Sees reports whether tile p is in the set.
func (vs *VisibleSet) Sees(p battlefield.Position) bool {
	i := sort.Search(len(vs.Tiles), func(i int) bool { return !vs.Tiles[i].Less(p) })
	return i < len(vs.Tiles) && vs.Tiles[i] == p
}

func (vs *VisibleSet) addUnit(id battlefield.UnitID) bool {
	i := sort.Search(len(vs.Units), func(i int) bool { return vs.Units[i] >= id })
	if i < len(vs.Units) && vs.Units[i] == id {
		return false
	}
	vs.Units = append(vs.Units, 0)
	copy(vs.Units[i+1:], vs.Units[i:])
	vs.Units[i] = id
	return true
}

func (vs *VisibleSet) removeUnit(id battlefield.UnitID) bool {
	i := sort.Search(len(vs.Units), func(i int) bool { return vs.Units[i] >= id })
	if i >= len(vs.Units) || vs.Units[i] != id {
		return false
	}
	vs.Units = append(vs.Units[:i], vs.Units[i+1:]...)
	return true
}

// Engine owns every unit's visible set. Sets are invalidated, not deleted,
// when something they depend on changes.
type Engine struct {
	bf       *battlefield.Battlefield
	settings Settings
	log      zerolog.Logger

	sets  map[battlefield.UnitID]*VisibleSet
	stale map[battlefield.UnitID]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes recompute diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an engine. No sets exist until the first recompute.
func New(bf *battlefield.Battlefield, s Settings, opts ...Option) *Engine {
	if s == (Settings{}) {
		s = DefaultSettings
	}
	if s.FOVDegrees <= 0 {
		s.FOVDegrees = 360
	}
	e := &Engine{
		bf:       bf,
		settings: s,
		log:      zerolog.Nop(),
		sets:     make(map[battlefield.UnitID]*VisibleSet),
		stale:    make(map[battlefield.UnitID]bool),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Settings returns the active settings.
func (e *Engine) Settings() Settings { return e.settings }

// SetDaylight changes lighting and invalidates every set.
func (e *Engine) SetDaylight(day bool) {
	if e.settings.Daylight == day {
		return
	}
	e.settings.Daylight = day
	e.InvalidateAll()
}

// observes reports whether u can look at anything at all.
func (e *Engine) observes(u *battlefield.Unit) bool {
	return u != nil && u.Alive() && e.bf.Placed(u.ID)
}

// inRange applies sight range, night lighting and the facing cone.
func (e *Engine) inRange(u *battlefield.Unit, from, to battlefield.Position, useCone bool) bool {
	d := battlefield.Distance3D(from, to)
	if d > e.settings.MaxRange {
		return false
	}
	if !e.settings.Daylight && d > e.settings.NightRange {
		if t := e.bf.Tile(to); t == nil || !t.Lit() {
			return false
		}
	}
	if useCone && !inCone(from, to, u.Facing, e.settings.FOVDegrees) {
		return false
	}
	return true
}

// tileOpacity returns the best-ray opacity from an eye at `from` to the tile
// at `to`, or opaque when the tile is out of range.
func (e *Engine) tileOpacity(from battlefield.Position, stance battlefield.Stance, to battlefield.Position) float64 {
	if from == to {
		return 0
	}
	return bestOpacity(e.bf, eyePoint(from, stance), from, to)
}

// Recompute rebuilds the unit's visible set, updates its faction's
// discovered and visible bits, and returns the new set.
func (e *Engine) Recompute(id battlefield.UnitID) VisibleSet {
	u := e.bf.Unit(id)
	vs := &VisibleSet{Unit: id}
	if !e.observes(u) {
		e.sets[id] = vs
		delete(e.stale, id)
		e.refreshFaction(u)
		return *vs
	}

	r := int(e.settings.MaxRange)
	from := u.Pos
	opacity := make(map[battlefield.Position]float64)
	for z := 0; z < e.bf.Levels; z++ {
		for y := from.Y - r; y <= from.Y+r; y++ {
			for x := from.X - r; x <= from.X+r; x++ {
				p := battlefield.Position{X: x, Y: y, Z: z}
				if !e.bf.InBounds(p) || !e.inRange(u, from, p, true) {
					continue
				}
				op := e.tileOpacity(from, u.Stance, p)
				if op >= opaque {
					continue
				}
				opacity[p] = op
				vs.Tiles = append(vs.Tiles, p)
			}
		}
	}
	// Loop order already yields sorted tiles (z, then y, then x).

	for _, other := range e.bf.Units() {
		if other.ID == id || !other.Alive() || !e.bf.Placed(other.ID) {
			continue
		}
		op, ok := opacity[other.Pos]
		if !ok {
			continue
		}
		if op+e.bf.Tile(other.Pos).SmokeOpacity() < opaque {
			vs.Units = append(vs.Units, other.ID)
		}
	}

	for _, p := range vs.Tiles {
		t := e.bf.Tile(p)
		if !t.Discovered.Has(u.Faction) {
			t.Discovered = t.Discovered.With(u.Faction)
			vs.Revealed = append(vs.Revealed, p)
		}
	}

	e.sets[id] = vs
	delete(e.stale, id)
	e.refreshFaction(u)
	e.log.Debug().
		Int("unit", int(id)).
		Int("tiles", len(vs.Tiles)).
		Int("units", len(vs.Units)).
		Int("revealed", len(vs.Revealed)).
		Msg("visibility recomputed")
	return *vs
}

// refreshFaction rebuilds the Visible bit of u's faction from the cached
// sets of its members.
func (e *Engine) refreshFaction(u *battlefield.Unit) {
	if u == nil {
		return
	}
	f := u.Faction
	tiles := e.bf.Tiles()
	for i := range tiles {
		tiles[i].Visible = tiles[i].Visible.Without(f)
	}
	for _, m := range e.bf.UnitsOf(f) {
		vs := e.sets[m.ID]
		if vs == nil {
			continue
		}
		for _, p := range vs.Tiles {
			t := e.bf.Tile(p)
			t.Visible = t.Visible.With(f)
		}
	}
}

// Set returns the cached visible set of a unit. ok is false when it was
// never computed; a stale set is still returned.
func (e *Engine) Set(id battlefield.UnitID) (VisibleSet, bool) {
	vs, ok := e.sets[id]
	if !ok {
		return VisibleSet{Unit: id}, false
	}
	return *vs, true
}

// Stale reports whether the unit's set needs recomputing.
func (e *Engine) Stale(id battlefield.UnitID) bool {
	_, ok := e.sets[id]
	return !ok || e.stale[id]
}

// Invalidate marks one unit's set stale.
func (e *Engine) Invalidate(id battlefield.UnitID) { e.stale[id] = true }

// InvalidateAll marks every set stale, after terrain, smoke or lighting
// changes.
func (e *Engine) InvalidateAll() {
	for _, u := range e.bf.Units() {
		e.stale[u.ID] = true
	}
}

// RecomputeStale recomputes every stale set in unit ID order and returns
// the tiles newly revealed per unit.
func (e *Engine) RecomputeStale() []VisibleSet {
	var out []VisibleSet
	for _, u := range e.bf.Units() {
		if !e.Stale(u.ID) {
			continue
		}
		out = append(out, e.Recompute(u.ID))
	}
	return out
}

// RecomputeAll recomputes every unit's set in unit ID order.
func (e *Engine) RecomputeAll() []VisibleSet {
	e.InvalidateAll()
	return e.RecomputeStale()
}

// CanSee runs a live ray test from observer to target, ignoring the cache.
func (e *Engine) CanSee(observer, target battlefield.UnitID) bool {
	o := e.bf.Unit(observer)
	t := e.bf.Unit(target)
	if !e.observes(o) || t == nil || !t.Alive() || !e.bf.Placed(target) || observer == target {
		return false
	}
	if !e.inRange(o, o.Pos, t.Pos, true) {
		return false
	}
	op := e.tileOpacity(o.Pos, o.Stance, t.Pos)
	return op+e.bf.Tile(t.Pos).SmokeOpacity() < opaque
}

// CanSeeFrom tests whether an eye at `from` in the given stance would see a
// unit standing at `to`, regardless of facing. The AI uses it to score
// hypothetical positions.
func (e *Engine) CanSeeFrom(from battlefield.Position, stance battlefield.Stance, to battlefield.Position) bool {
	if !e.bf.InBounds(from) || !e.bf.InBounds(to) {
		return false
	}
	if from == to {
		return true
	}
	if !e.inRange(nil, from, to, false) {
		return false
	}
	op := e.tileOpacity(from, stance, to)
	return op+e.bf.Tile(to).SmokeOpacity() < opaque
}

// ExposureAt counts the watchers that would see a unit standing at p.
// Watchers may turn, so the facing cone is ignored.
func (e *Engine) ExposureAt(p battlefield.Position, watchers []*battlefield.Unit) int {
	n := 0
	for _, w := range watchers {
		if !e.observes(w) || w.Pos == p {
			continue
		}
		if e.CanSeeFrom(w.Pos, w.Stance, p) {
			n++
		}
	}
	return n
}

// RefreshSighting re-tests whether observer sees target and patches the
// observer's cached set. It reports whether target is visible and whether
// that changed. Used when only the target moved.
func (e *Engine) RefreshSighting(observer, target battlefield.UnitID) (visible, changed bool) {
	vs, ok := e.sets[observer]
	if !ok {
		vs = &VisibleSet{Unit: observer}
		e.sets[observer] = vs
		e.stale[observer] = true
	}
	visible = e.CanSee(observer, target)
	if visible {
		changed = vs.addUnit(target)
	} else {
		changed = vs.removeUnit(target)
	}
	return visible, changed
}

// Exposed reports whether any unit of faction f has u in its visible set.
func (e *Engine) Exposed(u battlefield.UnitID, f battlefield.Faction) bool {
	for _, o := range e.bf.UnitsOf(f) {
		if vs := e.sets[o.ID]; vs != nil && vs.Contains(u) {
			return true
		}
	}
	return false
}

// Spotters lists the living units hostile to u that currently have it in
// their visible set, in ID order.
func (e *Engine) Spotters(u battlefield.UnitID) []battlefield.UnitID {
	target := e.bf.Unit(u)
	if target == nil {
		return nil
	}
	var out []battlefield.UnitID
	for _, o := range e.bf.Units() {
		if !o.Alive() || !battlefield.Hostile(o.Faction, target.Faction) {
			continue
		}
		if vs := e.sets[o.ID]; vs != nil && vs.Contains(u) {
			out = append(out, o.ID)
		}
	}
	return out
}

// VisibleHostiles returns the hostile units in u's cached set, in ID order.
func (e *Engine) VisibleHostiles(u battlefield.UnitID) []battlefield.UnitID {
	self := e.bf.Unit(u)
	vs := e.sets[u]
	if self == nil || vs == nil {
		return nil
	}
	var out []battlefield.UnitID
	for _, id := range vs.Units {
		o := e.bf.Unit(id)
		if o != nil && o.Alive() && battlefield.Hostile(self.Faction, o.Faction) {
			out = append(out, id)
		}
	}
	return out
}
