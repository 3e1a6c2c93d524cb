package battlescape

import (
	"sort"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// burnDivisor scales blast strength down to fire damage and burn time.
const burnDivisor = 10

// explosion resolves an area impact in one tick: terrain first, in tile
// order, then unit damage in ID order. The states it causes (deaths, falls,
// panics) are pushed afterwards one per tick, lowest unit ID first.
type explosion struct {
	source battlefield.UnitID
	weapon *rules.Weapon
	center battlefield.Position
	done   bool
	queue  []Action
}

func newExplosion(source battlefield.UnitID, w *rules.Weapon, center battlefield.Position) *explosion {
	return &explosion{source: source, weapon: w, center: center}
}

func (e *explosion) Kind() ActionKind           { return KindExplosion }
func (e *explosion) Actor() battlefield.UnitID { return e.source }

func (e *explosion) Tick(g *Game) Status {
	if !e.done {
		e.done = true
		g.emit(ExplosionOccurred{Center: e.center, Radius: e.weapon.Radius, Type: e.weapon.DamageType, Source: e.source})
		e.queue = e.detonate(g)
	}
	if len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		return Push(next)
	}
	return Complete()
}

type blastHit struct {
	unit  battlefield.UnitID
	blast int
}

func (e *explosion) detonate(g *Game) []Action {
	w := e.weapon
	r := w.Radius
	var (
		hits    []blastHit
		fallers []battlefield.UnitID
	)
	for z := e.center.Z - r; z <= e.center.Z+r; z++ {
		for y := e.center.Y - r; y <= e.center.Y+r; y++ {
			for x := e.center.X - r; x <= e.center.X+r; x++ {
				p := battlefield.Position{X: x, Y: y, Z: z}
				if !g.bf.InBounds(p) {
					continue
				}
				blast := w.BlastDamage(battlefield.TileDistance(p, e.center))
				if blast <= 0 {
					continue
				}
				switch w.DamageType {
				case rules.DamageHE:
					td, fell := g.bf.DamageTile(p, blast)
					if td.Changed() {
						g.emit(TileDestroyed{Tile: p, Before: td.ObjectBefore, After: td.ObjectAfter, FloorLost: td.FloorDestroyed})
					}
					fallers = append(fallers, fell...)
				case rules.DamageSmoke:
					g.bf.AddSmoke(p, 1+blast*battlefield.MaxSmoke/w.Power)
				case rules.DamageIncendiary:
					g.bf.Ignite(p, 1+blast/burnDivisor)
				}
				if u := g.bf.UnitAt(p); u != nil {
					hits = append(hits, blastHit{unit: u.ID, blast: blast})
				}
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].unit < hits[j].unit })
	follow := make(map[battlefield.UnitID][]Action)
	for _, h := range hits {
		u := g.bf.Unit(h.unit)
		dmg := rules.RollDamage(g.rng, h.blast, u.Stats.Armor)
		if w.DamageType == rules.DamageIncendiary {
			dmg = dmg * 2 / burnDivisor
		}
		if a := g.hurt(h.unit, dmg, w.DamageType, e.source); a != nil {
			follow[h.unit] = append(follow[h.unit], a)
		}
	}
	// A faller lands before any panic it already earned takes hold.
	for _, id := range fallers {
		if prev := follow[id]; len(prev) > 0 && prev[0].Kind() == KindDie {
			continue
		}
		if u := g.bf.Unit(id); u != nil && u.Alive() {
			follow[id] = append([]Action{newFall(id)}, follow[id]...)
		}
	}

	g.vision.InvalidateAll()
	g.recomputeStale()

	ids := make([]battlefield.UnitID, 0, len(follow))
	for id := range follow {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []Action
	for _, id := range ids {
		out = append(out, follow[id]...)
	}
	return out
}
