package battlescape

import (
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// Commands are accepted only while the scheduler is idle. An accepted
// command pushes its action, which starts on the next tick; a rejected one
// returns a *CommandError and changes nothing.

// RequestMove walks or runs unit id to dest.
func (g *Game) RequestMove(id battlefield.UnitID, dest battlefield.Position, mode pathfind.MoveMode) error {
	u, cerr := g.commandUnit(id)
	if cerr != nil {
		return g.rejected(cerr)
	}
	switch {
	case u.Stats.TimeUnits <= 0:
		return g.rejected(reject(ReasonInsufficientTimeUnits, id, "no time units left"))
	case !g.bf.InBounds(dest) || dest == u.Pos:
		return g.rejected(reject(ReasonInvalidTarget, id, "destination %s", dest))
	}
	path, ok := g.paths.FindPath(u, u.Pos, dest, mode)
	if !ok {
		return g.rejected(reject(ReasonNoPath, id, "%s to %s", u.Pos, dest))
	}
	w, cerr := g.prepareWalk(u, path)
	if cerr != nil {
		return g.rejected(cerr)
	}
	return g.accept(w)
}

// RequestFire shoots at target with the unit's primary weapon: the first
// weapon in its inventory that has mode, or failing that the first weapon.
func (g *Game) RequestFire(id battlefield.UnitID, target battlefield.Position, mode rules.FireMode) error {
	u, cerr := g.commandUnit(id)
	if cerr != nil {
		return g.rejected(cerr)
	}
	item := g.primaryWeapon(u, mode)
	a, cerr := g.prepareFire(u, item, target, mode)
	if cerr != nil {
		return g.rejected(cerr)
	}
	return g.accept(a)
}

// RequestThrow throws a grenade at target. ruleID picks the grenade; empty
// takes the first one carried.
func (g *Game) RequestThrow(id battlefield.UnitID, target battlefield.Position, ruleID string) error {
	u, cerr := g.commandUnit(id)
	if cerr != nil {
		return g.rejected(cerr)
	}
	item := u.ItemIndex(func(it battlefield.Item) bool {
		if ruleID != "" {
			return it.RuleID == ruleID
		}
		w, ok := g.rules.Weapon(it.RuleID)
		return ok && w.Kind == rules.KindGrenade
	})
	a, cerr := g.prepareThrow(u, item, target)
	if cerr != nil {
		return g.rejected(cerr)
	}
	return g.accept(a)
}

// RequestTurn rotates a unit in place.
func (g *Game) RequestTurn(id battlefield.UnitID, dir battlefield.Direction) error {
	u, cerr := g.commandUnit(id)
	if cerr != nil {
		return g.rejected(cerr)
	}
	switch {
	case !dir.Lateral() || dir == u.Facing:
		return g.rejected(reject(ReasonInvalidTarget, id, "facing %s", dir))
	case u.Stats.TimeUnits < turnCost:
		return g.rejected(reject(ReasonInsufficientTimeUnits, id, "turn costs %d, have %d", turnCost, u.Stats.TimeUnits))
	}
	return g.accept(&turning{unit: id, to: dir})
}

// RequestStance changes a unit's posture.
func (g *Game) RequestStance(id battlefield.UnitID, s battlefield.Stance) error {
	u, cerr := g.commandUnit(id)
	if cerr != nil {
		return g.rejected(cerr)
	}
	cost := s.Profile().EnterTU
	switch {
	case s > battlefield.StanceProne || s == u.Stance:
		return g.rejected(reject(ReasonInvalidTarget, id, "stance %s", s))
	case u.Stats.TimeUnits < cost:
		return g.rejected(reject(ReasonInsufficientTimeUnits, id, "%s costs %d, have %d", s, cost, u.Stats.TimeUnits))
	}
	return g.accept(&stanceChange{unit: id, to: s})
}

// EndTurn closes faction f's phase. Units keep whatever TU they have left
// until their faction's next phase restores them.
func (g *Game) EndTurn(f battlefield.Faction) error {
	if g.ended {
		return g.rejected(reject(ReasonPhaseOver, battlefield.NoUnit, "battle is over"))
	}
	if !g.phaseOpen || f != g.phase {
		return g.rejected(reject(ReasonNotUnitsTurn, battlefield.NoUnit, "%s phase is current", g.phase))
	}
	top, ok := g.stack[len(g.stack)-1].(*idle)
	if !ok {
		return g.rejected(reject(ReasonActionInProgress, battlefield.NoUnit, "%s in progress", g.stack[len(g.stack)-1].Kind()))
	}
	top.endRequested = true
	return nil
}

// Abort ends the battle at once. It is only allowed while idle.
func (g *Game) Abort() error {
	if g.ended {
		return g.rejected(reject(ReasonPhaseOver, battlefield.NoUnit, "battle is over"))
	}
	if len(g.stack) > 0 && !g.AtIdle() {
		return g.rejected(reject(ReasonActionInProgress, battlefield.NoUnit, "%s in progress", g.stack[len(g.stack)-1].Kind()))
	}
	r := DetermineOutcome(g.bf)
	r.Outcome = OutcomeAborted
	r.Description = "aborted"
	g.finish(r)
	return nil
}

// --- Validation ---

// commandUnit runs the checks every unit command shares, in order.
func (g *Game) commandUnit(id battlefield.UnitID) (*battlefield.Unit, *CommandError) {
	if g.ended || !g.phaseOpen {
		return nil, reject(ReasonPhaseOver, id, "no phase running")
	}
	u := g.bf.Unit(id)
	if u == nil {
		return nil, reject(ReasonUnknownUnit, id, "")
	}
	if u.Faction != g.phase {
		return nil, reject(ReasonNotUnitsTurn, id, "%s phase is current", g.phase)
	}
	if !g.AtIdle() {
		return nil, reject(ReasonActionInProgress, id, "%s in progress", g.stack[len(g.stack)-1].Kind())
	}
	if !g.canAct(id) {
		return nil, reject(ReasonUnitIncapacitated, id, "%s", u.Status)
	}
	return u, nil
}

func (g *Game) accept(a Action) error {
	g.push(a)
	g.log.Debug().Str("kind", a.Kind().String()).Int("unit", int(a.Actor())).Msg("command accepted")
	return nil
}

func (g *Game) rejected(cerr *CommandError) error {
	g.metrics.reject(cerr.Reason)
	g.log.Debug().Err(cerr).Msg("command rejected")
	return cerr
}

func (g *Game) primaryWeapon(u *battlefield.Unit, mode rules.FireMode) int {
	first := -1
	for i, it := range u.Inventory {
		w, ok := g.rules.Weapon(it.RuleID)
		if !ok || w.Kind == rules.KindGrenade {
			continue
		}
		if w.HasMode(mode) {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

// prepareWalk checks that path can be started now.
func (g *Game) prepareWalk(u *battlefield.Unit, path pathfind.Path) (*walk, *CommandError) {
	if path.Empty() || path.Steps[0].From != u.Pos {
		return nil, reject(ReasonInvalidTarget, u.ID, "path does not start at %s", u.Pos)
	}
	if u.Stats.TimeUnits <= 0 {
		return nil, reject(ReasonInsufficientTimeUnits, u.ID, "no time units left")
	}
	first := path.Steps[0]
	cost, ok := g.paths.StepCost(u, u.Pos, first.Dir, path.Mode)
	switch {
	case !ok:
		return nil, reject(ReasonNoPath, u.ID, "first step %s blocked", first.To)
	case cost > u.Stats.TimeUnits:
		return nil, reject(ReasonInsufficientTimeUnits, u.ID, "first step costs %d, have %d", cost, u.Stats.TimeUnits)
	case path.Mode == pathfind.Run && u.Stats.Stamina < pathfind.StaminaPerStep:
		return nil, reject(ReasonInsufficientStamina, u.ID, "stamina %d", u.Stats.Stamina)
	}
	return &walk{unit: u.ID, path: path}, nil
}

// prepareFire validates a shot with the weapon at inventory index item. It
// does not check whose phase it is, so reaction fire goes through it too.
func (g *Game) prepareFire(u *battlefield.Unit, item int, target battlefield.Position, mode rules.FireMode) (*fireAction, *CommandError) {
	if item < 0 || item >= len(u.Inventory) {
		return nil, reject(ReasonNoWeapon, u.ID, "no weapon")
	}
	it := u.Inventory[item]
	w, ok := g.rules.Weapon(it.RuleID)
	switch {
	case !ok || w.Kind == rules.KindGrenade:
		return nil, reject(ReasonNoWeapon, u.ID, "%q cannot be fired", it.RuleID)
	case !w.HasMode(mode):
		return nil, reject(ReasonNoWeapon, u.ID, "%s has no %s mode", w.ID, mode)
	case w.Clip > 0 && it.Ammo <= 0:
		return nil, reject(ReasonNoAmmo, u.ID, "%s is empty", w.ID)
	case !g.bf.InBounds(target) || target == u.Pos:
		return nil, reject(ReasonInvalidTarget, u.ID, "target %s", target)
	}
	cost := w.TUCost(mode, u.Stats.MaxTimeUnits)
	if cost > u.Stats.TimeUnits {
		return nil, reject(ReasonInsufficientTimeUnits, u.ID, "%s %s costs %d, have %d", w.ID, mode, cost, u.Stats.TimeUnits)
	}
	if w.Kind == rules.KindMelee {
		if target.Z != u.Pos.Z || battlefield.ChebyshevDistance(u.Pos, target) > 1 {
			return nil, reject(ReasonTargetOutOfRange, u.ID, "%s is not adjacent", target)
		}
	} else if battlefield.Distance3D(u.Pos, target) > float64(w.Range) {
		return nil, reject(ReasonTargetOutOfRange, u.ID, "%s beyond range %d", target, w.Range)
	}
	if !g.vision.CanSeeFrom(u.Pos, u.Stance, target) {
		return nil, reject(ReasonNoLineOfFire, u.ID, "%s to %s", u.Pos, target)
	}
	return &fireAction{shooter: u.ID, item: item, weapon: w, target: target, mode: mode, cost: cost}, nil
}

// prepareThrow validates throwing the grenade at inventory index item.
func (g *Game) prepareThrow(u *battlefield.Unit, item int, target battlefield.Position) (*throwAction, *CommandError) {
	if item < 0 || item >= len(u.Inventory) {
		return nil, reject(ReasonNoWeapon, u.ID, "nothing to throw")
	}
	w, ok := g.rules.Weapon(u.Inventory[item].RuleID)
	switch {
	case !ok || !w.HasMode(rules.ModeThrow):
		return nil, reject(ReasonNoWeapon, u.ID, "%q cannot be thrown", u.Inventory[item].RuleID)
	case !g.bf.InBounds(target) || target == u.Pos:
		return nil, reject(ReasonInvalidTarget, u.ID, "target %s", target)
	}
	cost := w.TUCost(rules.ModeThrow, u.Stats.MaxTimeUnits)
	if cost > u.Stats.TimeUnits {
		return nil, reject(ReasonInsufficientTimeUnits, u.ID, "throw costs %d, have %d", cost, u.Stats.TimeUnits)
	}
	if d := battlefield.TileDistance(u.Pos, target); d > w.ThrowRange(u.Stats.Strength) {
		return nil, reject(ReasonTargetOutOfRange, u.ID, "%s beyond throw range %d", target, w.ThrowRange(u.Stats.Strength))
	}
	if !g.vision.CanSeeFrom(u.Pos, u.Stance, target) {
		return nil, reject(ReasonNoLineOfFire, u.ID, "%s to %s", u.Pos, target)
	}
	return &throwAction{thrower: u.ID, item: item, weapon: w, target: target, cost: cost}, nil
}
