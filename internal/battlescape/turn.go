package battlescape

import "github.com/Garsondee/Battlescape/internal/battlefield"

const (
	turnCost = 1 // TU per turn order, whatever the angle
	turnRate = 2 // octants rotated per tick
)

// turning rotates a unit in place toward a direction.
type turning struct {
	unit    battlefield.UnitID
	to      battlefield.Direction
	from    battlefield.Direction
	charged bool
}

func (t *turning) Kind() ActionKind           { return KindTurn }
func (t *turning) Actor() battlefield.UnitID { return t.unit }

func (t *turning) Tick(g *Game) Status {
	u := g.bf.Unit(t.unit)
	if !t.charged {
		t.charged = true
		if !u.SpendTU(turnCost) {
			return Complete()
		}
		t.from = u.Facing
	}
	steps := battlefield.RotationSteps(u.Facing, t.to)
	switch {
	case steps > turnRate:
		steps = turnRate
	case steps < -turnRate:
		steps = -turnRate
	}
	u.Facing = battlefield.Direction((int(u.Facing) + steps + 8) % 8)
	if u.Facing != t.to {
		return Continue()
	}
	g.emit(UnitTurned{Unit: u.ID, From: t.from, To: t.to})
	g.vision.Invalidate(u.ID)
	g.recomputeStale()
	return Complete()
}

// stanceChange kneels, goes prone or stands up. It takes one tick.
type stanceChange struct {
	unit battlefield.UnitID
	to   battlefield.Stance
}

func (s *stanceChange) Kind() ActionKind           { return KindStance }
func (s *stanceChange) Actor() battlefield.UnitID { return s.unit }

func (s *stanceChange) Tick(g *Game) Status {
	u := g.bf.Unit(s.unit)
	if !u.SpendTU(s.to.Profile().EnterTU) {
		return Complete()
	}
	from := u.Stance
	u.Stance = s.to
	g.emit(StanceChanged{Unit: u.ID, From: from, To: s.to})
	g.vision.Invalidate(u.ID)
	g.recomputeStale()
	for _, o := range g.bf.Units() {
		if o.ID != u.ID && o.Alive() && g.bf.Placed(o.ID) {
			g.vision.RefreshSighting(o.ID, u.ID)
		}
	}
	return Complete()
}
