package battlescape

import (
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// kineticTerrainDivisor scales a bullet's power down to what it does to the
// tile it hits.
const kineticTerrainDivisor = 4

// projectile is a shot or grenade in flight. It covers FlightSpeed tiles per
// tick; on landing it resolves the impact and then pushes whatever the
// impact caused, one state per tick.
type projectile struct {
	source battlefield.UnitID
	weapon *rules.Weapon
	tiles  []battlefield.Position // flown over, last is the impact tile
	struck battlefield.UnitID
	flown  int
	landed bool
	queue  []Action
}

func newProjectile(source battlefield.UnitID, w *rules.Weapon, tiles []battlefield.Position, struck battlefield.UnitID) *projectile {
	return &projectile{source: source, weapon: w, tiles: tiles, struck: struck}
}

func (p *projectile) Kind() ActionKind           { return KindProjectile }
func (p *projectile) Actor() battlefield.UnitID { return p.source }

func (p *projectile) current() (battlefield.Position, bool) {
	if len(p.tiles) == 0 {
		return battlefield.Position{}, false
	}
	i := p.flown
	if i >= len(p.tiles) {
		i = len(p.tiles) - 1
	}
	return p.tiles[i], true
}

func (p *projectile) impact() battlefield.Position {
	return p.tiles[len(p.tiles)-1]
}

func (p *projectile) Tick(g *Game) Status {
	if !p.landed {
		speed := p.weapon.FlightSpeed
		if speed < 1 {
			speed = 1
		}
		p.flown += speed
		if p.flown < len(p.tiles) {
			return Continue()
		}
		p.landed = true
		p.land(g)
		if p.weapon.Explosive() {
			return Push(newExplosion(p.source, p.weapon, p.impact()))
		}
	}
	if len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		return Push(next)
	}
	return Complete()
}

func (p *projectile) land(g *Game) {
	at := p.impact()
	g.emit(ProjectileImpact{Shooter: p.source, Tile: at, Struck: p.struck})
	if p.weapon.Explosive() {
		return
	}
	if p.struck != battlefield.NoUnit {
		target := g.bf.Unit(p.struck)
		if target == nil {
			return
		}
		dmg := rules.RollDamage(g.rng, p.weapon.Power, target.Stats.Armor)
		if a := g.hurt(p.struck, dmg, p.weapon.DamageType, p.source); a != nil {
			p.queue = append(p.queue, a)
		}
		return
	}
	if p.weapon.Kind != rules.KindFirearm {
		return
	}
	td, fallers := g.bf.DamageTile(at, p.weapon.Power/kineticTerrainDivisor)
	if !td.Changed() {
		return
	}
	g.emit(TileDestroyed{Tile: at, Before: td.ObjectBefore, After: td.ObjectAfter, FloorLost: td.FloorDestroyed})
	g.vision.InvalidateAll()
	g.recomputeStale()
	for _, id := range fallers {
		p.queue = append(p.queue, newFall(id))
	}
}

// hurt applies damage to a unit and returns the state it triggers, if any:
// a death, a knock-out or a panic.
func (g *Game) hurt(id battlefield.UnitID, amount int, dt rules.DamageType, source battlefield.UnitID) Action {
	u := g.bf.Unit(id)
	if u == nil || !u.Alive() || dt == rules.DamageSmoke {
		return nil
	}
	if amount < 0 {
		amount = 0
	}
	if dt == rules.DamageStun {
		u.Stats.Stun += amount
	} else {
		u.Stats.Health -= amount
		if u.Stats.Health < 0 {
			u.Stats.Health = 0
		}
	}
	g.emit(DamageApplied{Unit: id, Amount: amount, Source: source, Type: dt})

	switch {
	case u.Stats.Health <= 0:
		return newDie(id, source, battlefield.StatusDead)
	case u.Stats.Stun >= u.Stats.Health:
		return newDie(id, source, battlefield.StatusUnconscious)
	}
	if amount > 0 {
		u.AdjustMorale(-amount / woundMoraleDivisor)
		if g.rollPanic(u) {
			return newPanic(id)
		}
	}
	return nil
}
