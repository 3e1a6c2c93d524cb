package battlescape

import (
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

const (
	dieTicks           = 3
	panicTicks         = 2
	fallDamagePerLevel = 10
)

// --- Die ---

// die plays out a unit going down, then takes it off the grid.
type die struct {
	unit   battlefield.UnitID
	killer battlefield.UnitID
	status battlefield.Status // dead or unconscious
	ticks  int
}

func newDie(id, killer battlefield.UnitID, status battlefield.Status) *die {
	return &die{unit: id, killer: killer, status: status}
}

func (d *die) Kind() ActionKind           { return KindDie }
func (d *die) Actor() battlefield.UnitID { return d.unit }

func (d *die) Tick(g *Game) Status {
	d.ticks++
	if d.ticks < dieTicks {
		return Continue()
	}
	u := g.bf.Unit(d.unit)
	if u == nil || !u.Alive() {
		return Complete()
	}
	g.bf.RemoveUnit(u.ID, d.status)
	g.vision.Invalidate(u.ID)
	if d.status != battlefield.StatusDead {
		g.emit(UnitUnconscious{Unit: u.ID})
		return Complete()
	}

	g.emit(UnitDied{Unit: u.ID, Killer: d.killer})
	if k := g.bf.Unit(d.killer); k != nil && battlefield.Hostile(k.Faction, u.Faction) {
		k.Kills++
	}
	for _, ally := range g.bf.UnitsOf(u.Faction) {
		ally.AdjustMorale(-allyDeathMorale)
	}
	g.log.Debug().Str("unit", u.String()).Int("killer", int(d.killer)).Msg("unit died")
	return Complete()
}

// --- Fall ---

// fall drops a unit that lost its footing one level per tick until it
// reaches something to stand on.
type fall struct {
	unit    battlefield.UnitID
	from    battlefield.Position
	started bool
	landed  bool
}

func newFall(id battlefield.UnitID) *fall { return &fall{unit: id} }

func (f *fall) Kind() ActionKind           { return KindFall }
func (f *fall) Actor() battlefield.UnitID { return f.unit }

func (f *fall) Tick(g *Game) Status {
	u := g.bf.Unit(f.unit)
	if f.landed || u == nil || !g.bf.Placed(f.unit) {
		return Complete()
	}
	if !f.started {
		f.started = true
		f.from = u.Pos
	}
	if u.Pos.Z > 0 && !g.bf.Standable(u.Pos) && g.bf.MoveUnit(u.ID, u.Pos.Step(battlefield.Down)) {
		return Continue()
	}

	// Landed: on a floor, or on top of whoever is below.
	f.landed = true
	g.emit(UnitFell{Unit: u.ID, From: f.from, To: u.Pos})
	g.vision.Invalidate(u.ID)
	g.refreshAfterMove(u)
	if levels := f.from.Z - u.Pos.Z; levels > 0 {
		if a := g.hurt(u.ID, levels*fallDamagePerLevel, rules.DamageKinetic, battlefield.NoUnit); a != nil {
			return Push(a)
		}
	}
	return Complete()
}

// --- Panic ---

// panicking takes a unit's nerve: it spends the rest of the phase unable to
// act.
type panicking struct {
	unit  battlefield.UnitID
	ticks int
}

func newPanic(id battlefield.UnitID) *panicking { return &panicking{unit: id} }

func (p *panicking) Kind() ActionKind           { return KindPanic }
func (p *panicking) Actor() battlefield.UnitID { return p.unit }

func (p *panicking) Tick(g *Game) Status {
	p.ticks++
	if p.ticks < panicTicks {
		return Continue()
	}
	if u := g.bf.Unit(p.unit); u != nil && u.CanAct() {
		u.Status = battlefield.StatusPanicked
		u.Stats.TimeUnits = 0
		g.emit(UnitPanicked{Unit: u.ID})
	}
	return Complete()
}
