package ai

import (
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

// attack is one weapon use considered by the AI.
type attack struct {
	kind   Kind
	target battlefield.UnitID
	pos    battlefield.Position
	item   int
	mode   rules.FireMode
	cost   int
	damage float64 // expected
}

func (a attack) decision(score float64) Decision {
	d := Decision{
		Kind:      a.kind,
		Target:    a.target,
		TargetPos: a.pos,
		Item:      a.item,
		Mode:      a.mode,
		Score:     score,
		Reason:    "engage",
	}
	if a.kind == Throw {
		d.Target = battlefield.NoUnit
	}
	return d
}

// bestAttack finds the use of u's inventory with the highest expected
// damage against threats if u stood at from with tu time units left.
// Equal options keep the first found: inventory order, then mode
// preference, then target ID.
func (c *Controller) bestAttack(w World, u *battlefield.Unit, from battlefield.Position, tu int, threats []*battlefield.Unit) (attack, bool) {
	if tu <= 0 {
		return attack{}, false
	}
	los := make([]int8, len(threats)) // 0 unknown, 1 clear, -1 blocked
	visible := func(j int) bool {
		if los[j] == 0 {
			los[j] = -1
			if w.Vision.CanSeeFrom(from, u.Stance, threats[j].Pos) {
				los[j] = 1
			}
		}
		return los[j] > 0
	}

	var best attack
	found := false
	for i, it := range u.Inventory {
		wpn, ok := w.Weapons.Weapon(it.RuleID)
		if !ok || wpn.DamageType == rules.DamageSmoke {
			continue
		}
		modes := rules.FiringModes
		kind := Attack
		if wpn.Kind == rules.KindGrenade {
			modes = []rules.FireMode{rules.ModeThrow}
			kind = Throw
		} else if wpn.Clip > 0 && it.Ammo <= 0 {
			continue
		}
		for _, m := range modes {
			if !wpn.HasMode(m) {
				continue
			}
			cost := wpn.TUCost(m, u.Stats.MaxTimeUnits)
			if cost > tu {
				continue
			}
			shots := wpn.Shots(m)
			if wpn.Clip > 0 && shots > it.Ammo {
				shots = it.Ammo
			}
			for j, t := range threats {
				if !inReach(wpn, m, u, from, t.Pos) || !visible(j) {
					continue
				}
				var dmg float64
				if wpn.Explosive() {
					if endangersFriends(w, u, from, wpn, t.Pos) {
						continue
					}
					dmg = blastValue(wpn, t.Pos, threats)
				} else {
					dmg = rules.ExpectedDamage(wpn.Power, t.Stats.Armor)
				}
				acc := u.Stats.Accuracy
				if m == rules.ModeThrow {
					acc = u.Stats.ThrowingAccuracy
				}
				dmg *= rules.HitChance(acc, wpn, m, battlefield.Distance3D(from, t.Pos), u.Stance) * float64(shots)
				if dmg <= 0 {
					continue
				}
				if !found || dmg > best.damage+scoreEpsilon {
					best = attack{kind: kind, target: t.ID, pos: t.Pos, item: i, mode: m, cost: cost, damage: dmg}
					found = true
				}
			}
		}
	}
	return best, found
}

// inReach checks weapon range from `from` to `to`.
func inReach(wpn *rules.Weapon, m rules.FireMode, u *battlefield.Unit, from, to battlefield.Position) bool {
	switch {
	case wpn.Kind == rules.KindMelee:
		return from.Z == to.Z && battlefield.ChebyshevDistance(from, to) == 1
	case m == rules.ModeThrow:
		return battlefield.TileDistance(from, to) <= wpn.ThrowRange(u.Stats.Strength)
	default:
		return battlefield.Distance3D(from, to) <= float64(wpn.Range)
	}
}

// endangersFriends reports whether a blast at center would reach u (at
// from) or any of its faction.
func endangersFriends(w World, u *battlefield.Unit, from battlefield.Position, wpn *rules.Weapon, center battlefield.Position) bool {
	if battlefield.TileDistance(from, center) <= wpn.Radius {
		return true
	}
	for _, f := range w.Field.UnitsOf(u.Faction) {
		if f.ID != u.ID && w.Field.Placed(f.ID) && battlefield.TileDistance(f.Pos, center) <= wpn.Radius {
			return true
		}
	}
	return false
}

// blastValue sums the expected blast damage over every threat in radius.
func blastValue(wpn *rules.Weapon, center battlefield.Position, threats []*battlefield.Unit) float64 {
	total := 0.0
	for _, t := range threats {
		if d := battlefield.TileDistance(t.Pos, center); d <= wpn.Radius {
			total += rules.ExpectedDamage(wpn.BlastDamage(d), t.Stats.Armor)
		}
	}
	return total
}
