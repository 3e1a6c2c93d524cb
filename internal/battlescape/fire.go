package battlescape

import (
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// --- Fire ---

type shot struct {
	aim    battlefield.Position
	chance float64
	hit    bool
	flight *projectile
}

// fireAction shoots a firearm or swings a melee weapon. Every shot of a
// burst is rolled when the action commits; the projectiles then fly one
// after another.
type fireAction struct {
	shooter  battlefield.UnitID
	item     int
	weapon   *rules.Weapon
	target   battlefield.Position
	mode     rules.FireMode
	cost     int
	reaction bool

	committed bool
	shots     []shot
	next      int
}

func (a *fireAction) Kind() ActionKind           { return KindFire }
func (a *fireAction) Actor() battlefield.UnitID { return a.shooter }

func (a *fireAction) Tick(g *Game) Status {
	u := g.bf.Unit(a.shooter)
	if !a.committed {
		a.committed = true
		if !u.SpendTU(a.cost) {
			return Complete()
		}
		g.face(u, a.target)
		a.roll(g, u)
	}
	if a.next < len(a.shots) {
		s := a.shots[a.next]
		a.next++
		g.emit(ShotFired{
			Shooter: a.shooter,
			Target:  a.target,
			Weapon:  a.weapon.ID,
			Mode:    a.mode,
			Chance:  s.chance,
			Hit:     s.hit,
		})
		return Push(s.flight)
	}
	return Complete()
}

// roll decides every shot of the burst and spends the ammunition.
func (a *fireAction) roll(g *Game, u *battlefield.Unit) {
	n := a.weapon.Shots(a.mode)
	it := &u.Inventory[a.item]
	if a.weapon.Clip > 0 {
		if n > it.Ammo {
			n = it.Ammo
		}
		it.Ammo -= n
	}

	intended := battlefield.NoUnit
	if occ := g.bf.UnitAt(a.target); occ != nil {
		intended = occ.ID
	}
	dist := battlefield.Distance3D(u.Pos, a.target)
	chance := rules.HitChance(u.Stats.Accuracy, a.weapon, a.mode, dist, u.Stance)
	for i := 0; i < n; i++ {
		s := shot{aim: a.target, chance: chance}
		s.hit = g.rng.Float64() < chance
		ignore := battlefield.NoUnit
		if !s.hit {
			s.aim = g.deflect(a.target, 1+int(dist)/6)
			ignore = intended
		}
		var tiles []battlefield.Position
		struck := battlefield.NoUnit
		if a.weapon.Kind == rules.KindMelee {
			tiles = []battlefield.Position{a.target}
			if s.hit {
				struck = intended
			}
		} else {
			tiles, struck = g.trace(u.Pos, u.Stance, s.aim, u.ID, ignore, traceShot)
		}
		s.flight = newProjectile(u.ID, a.weapon, tiles, struck)
		a.shots = append(a.shots, s)
	}
}

// --- Throw ---

// throwAction lobs a grenade. The grenade leaves the inventory on commit.
type throwAction struct {
	thrower battlefield.UnitID
	item    int
	weapon  *rules.Weapon
	target  battlefield.Position
	cost    int

	committed bool
	flight    *projectile
}

func (a *throwAction) Kind() ActionKind           { return KindThrow }
func (a *throwAction) Actor() battlefield.UnitID { return a.thrower }

func (a *throwAction) Tick(g *Game) Status {
	if a.committed {
		return Complete()
	}
	a.committed = true
	u := g.bf.Unit(a.thrower)
	if !u.SpendTU(a.cost) {
		return Complete()
	}
	g.face(u, a.target)
	u.Inventory = append(u.Inventory[:a.item:a.item], u.Inventory[a.item+1:]...)

	dist := battlefield.Distance3D(u.Pos, a.target)
	chance := rules.HitChance(u.Stats.ThrowingAccuracy, a.weapon, rules.ModeThrow, dist, u.Stance)
	hit := g.rng.Float64() < chance
	aim := a.target
	if !hit {
		aim = g.deflect(a.target, 1+int(dist)/8)
	}
	tiles, _ := g.trace(u.Pos, u.Stance, aim, u.ID, battlefield.NoUnit, traceThrow)
	g.emit(ShotFired{
		Shooter: u.ID,
		Target:  a.target,
		Weapon:  a.weapon.ID,
		Mode:    rules.ModeThrow,
		Chance:  chance,
		Hit:     hit,
	})
	return Push(newProjectile(u.ID, a.weapon, tiles, battlefield.NoUnit))
}

// face turns u toward p for free; aiming is part of the shot.
func (g *Game) face(u *battlefield.Unit, p battlefield.Position) {
	if p.X == u.Pos.X && p.Y == u.Pos.Y {
		return
	}
	d := battlefield.DirectionTo(u.Pos, battlefield.Position{X: p.X, Y: p.Y, Z: u.Pos.Z})
	if d.Lateral() && d != u.Facing {
		u.Facing = d
		g.vision.Invalidate(u.ID)
	}
}
