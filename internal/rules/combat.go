package rules

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// --- Combat constants ---

const (
	cqbRange        = 2.0  // tiles, inside this a shot gets easier
	pointBlankBonus = 0.32 // accuracy bonus at zero distance
	minHitChance    = 0.01 // nothing is impossible
	minThrowRange   = 4    // tiles any unit can throw
)

// FireMode is how a weapon is used for one attack.
type FireMode string

const (
	ModeSnap  FireMode = "snap"
	ModeAimed FireMode = "aimed"
	ModeAuto  FireMode = "auto"
	ModeThrow FireMode = "throw"
)

// FiringModes lists the firing modes in order of preference for the AI.
var FiringModes = []FireMode{ModeAimed, ModeSnap, ModeAuto}

// ParseFireMode maps a mode name back to its value.
func ParseFireMode(name string) (FireMode, bool) {
	switch m := FireMode(name); m {
	case ModeSnap, ModeAimed, ModeAuto, ModeThrow:
		return m, true
	}
	return "", false
}

func (f FireModes) get(m FireMode) int {
	switch m {
	case ModeSnap:
		return f.Snap
	case ModeAimed:
		return f.Aimed
	case ModeAuto:
		return f.Auto
	case ModeThrow:
		return f.Throw
	}
	return 0
}

// HasMode reports whether the weapon can be used in mode m.
func (w *Weapon) HasMode(m FireMode) bool {
	if m == ModeThrow {
		return w.Kind == KindGrenade && w.TUPercent.Throw > 0
	}
	if w.Kind == KindGrenade {
		return false
	}
	return w.Accuracy.get(m) > 0 && w.TUPercent.get(m) > 0
}

// TUCost is the time-unit price of one use in mode m for a unit with the
// given maximum TU. Costs are a percentage of max TU, rounded up.
func (w *Weapon) TUCost(m FireMode, maxTU int) int {
	pct := w.TUPercent.get(m)
	if pct <= 0 {
		return 0
	}
	cost := (pct*maxTU + 99) / 100
	if cost < 1 {
		cost = 1
	}
	return cost
}

// Shots is the number of projectiles one use fires.
func (w *Weapon) Shots(m FireMode) int {
	if m == ModeAuto && w.AutoShots > 0 {
		return w.AutoShots
	}
	return 1
}

// ThrowRange is how far a unit of the given strength can throw w.
func (w *Weapon) ThrowRange(strength int) int {
	r := minThrowRange + strength/4
	if r > w.Range {
		r = w.Range
	}
	return r
}

// BlastDamage is the explosion damage dist tiles from ground zero. It falls
// off linearly to nothing just beyond the radius.
func (w *Weapon) BlastDamage(dist int) int {
	if dist < 0 || dist > w.Radius {
		return 0
	}
	return w.Power - dist*w.Power/(w.Radius+1)
}

// rangePenalty returns the accuracy loss for a shot over dist tiles with a
// weapon of the given maximum range. Close shots get a bonus (negative
// penalty); past half range the penalty ramps hard.
func rangePenalty(dist, maxRange float64) float64 {
	if dist <= 0 {
		return -pointBlankBonus
	}
	if dist <= cqbRange {
		return -pointBlankBonus * (1.0 - dist/cqbRange)
	}
	accurate := maxRange / 2
	if accurate <= cqbRange {
		accurate = cqbRange + 1
	}
	if dist <= accurate {
		return 0.08 * ((dist - cqbRange) / (accurate - cqbRange))
	}
	if dist >= maxRange {
		return 0.78
	}
	t := (dist - accurate) / (maxRange - accurate)
	return 0.12 + 0.66*math.Pow(t, 1.15)
}

// HitChance is the probability in [0, 1] that one projectile fired by a
// shooter with skill acc (firing or throwing accuracy, percent) strikes a
// target dist tiles away.
func HitChance(acc int, w *Weapon, m FireMode, dist float64, stance battlefield.Stance) float64 {
	p := float64(acc) / 100 * float64(w.Accuracy.get(m)) / 100
	if m != ModeThrow {
		p *= stance.Profile().AccuracyMul
	}
	if w.Kind != KindMelee {
		p *= 1 - rangePenalty(dist, float64(w.Range))
	}
	if p < minHitChance {
		return minHitChance
	}
	if p > 1 {
		return 1
	}
	return p
}

// RollDamage draws impact damage: 50..150% of power, less armour.
func RollDamage(rng *rand.Rand, power, armour int) int {
	d := power*(50+rng.Intn(101))/100 - armour
	if d < 0 {
		return 0
	}
	return d
}

// ExpectedDamage is the mean of RollDamage for the same inputs.
func ExpectedDamage(power, armour int) float64 {
	sum := 0
	for k := 50; k <= 150; k++ {
		if d := power*k/100 - armour; d > 0 {
			sum += d
		}
	}
	return float64(sum) / 101
}
