package battlescape

import (
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// walk moves a unit one tile per tick along a path. Each step is paid for
// when it is taken, at the cost the terrain has at that moment; a walk that
// can no longer pay or pass simply stops where it is.
type walk struct {
	unit battlefield.UnitID
	path pathfind.Path
	next int
	stop string // reason to halt once an interrupt has resolved
}

func (w *walk) Kind() ActionKind           { return KindWalk }
func (w *walk) Actor() battlefield.UnitID { return w.unit }

func (w *walk) Tick(g *Game) Status {
	u := g.bf.Unit(w.unit)
	if w.stop != "" {
		return w.halt(g, u, w.stop)
	}
	if w.next >= len(w.path.Steps) {
		return Complete()
	}

	step := w.path.Steps[w.next]
	if u.Pos != step.From {
		return w.halt(g, u, "off path")
	}
	cost, ok := g.paths.StepCost(u, u.Pos, step.Dir, w.path.Mode)
	switch {
	case !ok:
		return w.halt(g, u, "blocked")
	case u.Stats.TimeUnits < cost:
		return w.halt(g, u, "out of time units")
	case w.path.Mode == pathfind.Run && u.Stats.Stamina < pathfind.StaminaPerStep:
		return w.halt(g, u, "exhausted")
	}

	if g.bf.Tile(step.To).DoorClosed() && g.bf.OpenDoor(step.To) {
		g.emit(DoorOpened{Unit: u.ID, Tile: step.To})
		g.vision.InvalidateAll()
	}
	u.SpendTU(cost)
	if w.path.Mode == pathfind.Run {
		u.SpendStamina(pathfind.StaminaPerStep)
	}
	if step.Dir.Lateral() {
		u.Facing = step.Dir
	}
	from := u.Pos
	g.bf.MoveUnit(u.ID, step.To)
	g.emit(UnitMoved{Unit: u.ID, From: from, To: step.To})
	w.next++

	spotted := g.refreshAfterMove(u)
	if spotted && g.settings.StopOnSpotted && w.next < len(w.path.Steps) {
		w.stop = "hostile spotted"
	}

	if g.settings.ReactionFire {
		if shot, ok := g.reaction(u); ok {
			g.emit(ReactionFire{Reactor: shot.shooter, Target: u.ID})
			return Push(shot)
		}
	}
	if w.stop != "" {
		return w.halt(g, u, w.stop)
	}
	if w.next >= len(w.path.Steps) {
		return Complete()
	}
	return Continue()
}

func (w *walk) halt(g *Game, u *battlefield.Unit, reason string) Status {
	g.emit(WalkStopped{Unit: u.ID, At: u.Pos, Reason: reason})
	return Complete()
}

// reaction picks the spotter that gets to shoot at mover: the one with the
// highest reaction score above the mover's own, lower ID on ties, that can
// afford a shot right now.
func (g *Game) reaction(mover *battlefield.Unit) (*fireAction, bool) {
	var (
		best     *battlefield.Unit
		bestShot *fireAction
	)
	for _, id := range g.vision.Spotters(mover.ID) {
		r := g.bf.Unit(id)
		if !g.canAct(id) || r.ReactionScore() <= mover.ReactionScore() {
			continue
		}
		if best != nil && r.ReactionScore() <= best.ReactionScore() {
			continue
		}
		if shot, ok := g.reactionShot(r, mover); ok {
			best, bestShot = r, shot
		}
	}
	return bestShot, best != nil
}

// reactionShot is the cheapest fire mode of r's first usable weapon that
// passes validation against mover.
func (g *Game) reactionShot(r, mover *battlefield.Unit) (*fireAction, bool) {
	for i, it := range r.Inventory {
		wpn, ok := g.rules.Weapon(it.RuleID)
		if !ok || wpn.Kind == rules.KindGrenade {
			continue
		}
		var (
			cheapest rules.FireMode
			cost     int
		)
		for _, m := range rules.FiringModes {
			c := wpn.TUCost(m, r.Stats.MaxTimeUnits)
			if c > 0 && (cost == 0 || c < cost) {
				cheapest, cost = m, c
			}
		}
		if cost == 0 {
			continue
		}
		shot, cerr := g.prepareFire(r, i, mover.Pos, cheapest)
		if cerr != nil {
			continue
		}
		shot.reaction = true
		return shot, true
	}
	return nil, false
}
