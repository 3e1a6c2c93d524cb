package battlescape

import "github.com/Garsondee/Battlescape/internal/battlefield"

// idle is the bottom of the stack for one faction's phase. It accepts
// commands, drives AI factions and completes when the phase is over.
type idle struct {
	faction      battlefield.Faction
	started      bool
	panics       []battlefield.UnitID
	endRequested bool
}

func (a *idle) Kind() ActionKind           { return KindIdle }
func (a *idle) Actor() battlefield.UnitID { return battlefield.NoUnit }

func (a *idle) Tick(g *Game) Status {
	if !a.started {
		a.started = true
		// Shaken units roll once at the start of their phase, in ID order.
		for _, u := range g.bf.UnitsOf(a.faction) {
			if g.canAct(u.ID) && g.rollPanic(u) {
				a.panics = append(a.panics, u.ID)
			}
		}
	}
	if g.ended {
		return Complete()
	}
	for len(a.panics) > 0 {
		id := a.panics[0]
		a.panics = a.panics[1:]
		if g.canAct(id) {
			return Push(newPanic(id))
		}
	}
	if a.endRequested {
		return Complete()
	}

	g.recomputeStale()
	if g.ai[a.faction] != nil {
		for _, u := range g.bf.UnitsOf(a.faction) {
			if g.canAct(u.ID) && !u.AI.Done {
				return Push(&aiTurn{unit: u.ID})
			}
		}
		return Complete()
	}

	// A player phase ends by itself once nobody can do anything.
	for _, u := range g.bf.UnitsOf(a.faction) {
		if g.canAct(u.ID) && u.Stats.TimeUnits > 0 {
			return Continue()
		}
	}
	return Complete()
}
