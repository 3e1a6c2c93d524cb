// Package ai decides what non-player units do with their phase. A decision
// is a pure function of the battle state and the injected RNG; whatever the
// unit remembers between decisions lives on the unit itself.
package ai

import (
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
	"github.com/Garsondee/Battlescape/internal/visibility"
)

// DefaultMaxDecisions caps how many actions one unit takes per phase.
const DefaultMaxDecisions = 4

// scoreEpsilon is the margin a candidate needs to beat the current best.
const scoreEpsilon = 1e-9

// Kind is what a decision asks the scheduler to do.
type Kind uint8

const (
	Pass   Kind = iota // end the unit's phase
	Move               // walk Path
	Attack             // fire Item at Target
	Throw              // throw Item at TargetPos
)

func (k Kind) String() string {
	switch k {
	case Pass:
		return "pass"
	case Move:
		return "move"
	case Attack:
		return "attack"
	case Throw:
		return "throw"
	default:
		return "unknown"
	}
}

// Decision is one AI choice, expressed as the command the scheduler should
// push on the unit's behalf.
type Decision struct {
	Kind      Kind
	Unit      battlefield.UnitID
	Path      pathfind.Path
	Target    battlefield.UnitID
	TargetPos battlefield.Position
	Item      int // inventory index
	Mode      rules.FireMode
	Score     float64
	Reason    string
}

// WeaponLookup resolves inventory rule IDs.
type WeaponLookup interface {
	Weapon(id string) (*rules.Weapon, bool)
}

// World is everything a decision may read.
type World struct {
	Field   *battlefield.Battlefield
	Paths   *pathfind.Pathfinder
	Vision  *visibility.Engine
	Weapons WeaponLookup
	RNG     *rand.Rand
}

// Controller runs one policy for all units of a faction.
type Controller struct {
	policy       Policy
	maxDecisions int
	log          zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes decision diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMaxDecisions caps decisions per unit per phase. Zero or less keeps
// the default.
func WithMaxDecisions(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxDecisions = n
		}
	}
}

// New creates a controller for a policy.
func New(p Policy, opts ...Option) *Controller {
	c := &Controller{policy: p, maxDecisions: DefaultMaxDecisions, log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ForFaction returns the controller the faction is played by, or nil for
// the player faction.
func ForFaction(f battlefield.Faction, w Weights, opts ...Option) *Controller {
	switch f {
	case battlefield.FactionHostile:
		return New(HostilePolicy{Weights: w}, opts...)
	case battlefield.FactionNeutral:
		return New(CivilianPolicy{Weights: w}, opts...)
	default:
		return nil
	}
}

// Policy returns the controller's policy.
func (c *Controller) Policy() Policy { return c.policy }

// MaxDecisions returns the per-phase decision cap.
func (c *Controller) MaxDecisions() int { return c.maxDecisions }

// Decide picks the next action for unit id. It never fails: when nothing
// useful is possible the decision is Pass.
func (c *Controller) Decide(w World, id battlefield.UnitID) Decision {
	d := c.decide(w, id)
	d.Unit = id
	c.log.Debug().
		Int("unit", int(id)).
		Str("policy", c.policy.Name()).
		Str("kind", d.Kind.String()).
		Float64("score", d.Score).
		Str("reason", d.Reason).
		Msg("ai decision")
	return d
}

func pass(reason string) Decision {
	return Decision{Kind: Pass, Target: battlefield.NoUnit, Item: -1, Reason: reason}
}

func (c *Controller) decide(w World, id battlefield.UnitID) Decision {
	u := w.Field.Unit(id)
	switch {
	case u == nil || !u.CanAct() || !w.Field.Placed(id):
		return pass("cannot act")
	case u.AI.Done:
		return pass("done")
	case u.AI.Decisions >= c.maxDecisions:
		return pass("decision limit")
	}

	caps := c.policy.Capabilities()
	var threats []*battlefield.Unit
	if caps.CanSeeTargets {
		threats = KnownThreats(w, u)
	}

	// Already in an attacking position: shoot rather than move.
	if caps.CanAttack && len(threats) > 0 {
		if a, ok := c.bestAttack(w, u, u.Pos, u.Stats.TimeUnits, threats); ok {
			f := c.features(w, u, u.Pos, 0, threats, caps)
			f.Damage = a.damage
			return a.decision(c.policy.Score(f))
		}
	}

	if !caps.CanPath {
		return pass("cannot move")
	}

	reach := w.Paths.Reachable(u, u.Pos, pathfind.Walk, u.Stats.TimeUnits)
	tiles := sortedByCost(reach)
	goal, hasGoal := goalFor(w, u, threats)

	score := func(p battlefield.Position) float64 {
		f := c.features(w, u, p, reach[p], threats, caps)
		if hasGoal {
			f.GoalDist, f.HasGoal = battlefield.Distance3D(p, goal), true
		}
		return c.policy.Score(f)
	}

	bestPos, bestScore := u.Pos, score(u.Pos)
	for _, p := range tiles {
		if p == u.Pos {
			continue
		}
		if s := score(p); s > bestScore+scoreEpsilon {
			bestPos, bestScore = p, s
		}
	}

	if bestPos != u.Pos {
		if path, ok := w.Paths.FindPath(u, u.Pos, bestPos, pathfind.Walk); ok {
			reason := "advance"
			switch {
			case caps.CanFlee:
				reason = "flee"
			case len(threats) > 0:
				reason = "reposition"
			}
			return Decision{Kind: Move, Path: path, Target: battlefield.NoUnit, Item: -1, Score: bestScore, Reason: reason}
		}
	}

	// Hunters with nothing to go on wander once per phase.
	if caps.CanAttack && !hasGoal && len(threats) == 0 && u.AI.Decisions == 0 && w.RNG != nil {
		var cands []battlefield.Position
		for _, p := range tiles {
			if reach[p] > 0 {
				cands = append(cands, p)
			}
		}
		if len(cands) > 0 {
			dest := cands[w.RNG.Intn(len(cands))]
			if path, ok := w.Paths.FindPath(u, u.Pos, dest, pathfind.Walk); ok {
				return Decision{Kind: Move, Path: path, Target: battlefield.NoUnit, Item: -1, Reason: "patrol"}
			}
		}
	}

	// Nothing better in reach. If we are being watched, head for the last
	// tile we were safe on even if it takes more than one phase.
	if len(threats) > 0 && u.AI.HasLastSafe && u.AI.LastSafe != u.Pos &&
		w.Vision.ExposureAt(u.Pos, threats) > 0 {
		if path, ok := w.Paths.FindPath(u, u.Pos, u.AI.LastSafe, pathfind.Walk); ok && path.Affordable(u.Stats.TimeUnits) > 0 {
			return Decision{Kind: Move, Path: path, Target: battlefield.NoUnit, Item: -1, Score: bestScore, Reason: "fallback"}
		}
	}
	return pass("holding")
}

func (c *Controller) features(w World, u *battlefield.Unit, p battlefield.Position, cost int, threats []*battlefield.Unit, caps Capabilities) Features {
	f := Features{Cost: cost}
	if len(threats) == 0 {
		return f
	}
	f.Exposure = w.Vision.ExposureAt(p, threats)
	if caps.CanFlee {
		f.ThreatDist, f.HasThreat = nearestDistance(p, threats), true
	}
	if caps.CanAttack {
		if a, ok := c.bestAttack(w, u, p, u.Stats.TimeUnits-cost, threats); ok {
			f.Damage = a.damage
		}
	}
	return f
}

// KnownThreats returns the living hostiles that any member of u's faction
// currently sees, in ID order.
func KnownThreats(w World, u *battlefield.Unit) []*battlefield.Unit {
	seen := make(map[battlefield.UnitID]bool)
	for _, m := range w.Field.UnitsOf(u.Faction) {
		for _, id := range w.Vision.VisibleHostiles(m.ID) {
			seen[id] = true
		}
	}
	ids := make([]battlefield.UnitID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*battlefield.Unit, 0, len(ids))
	for _, id := range ids {
		if t := w.Field.Unit(id); t != nil && t.Alive() && w.Field.Placed(id) {
			out = append(out, t)
		}
	}
	return out
}

// goalFor is the nearest known threat, else the faction objective.
func goalFor(w World, u *battlefield.Unit, threats []*battlefield.Unit) (battlefield.Position, bool) {
	if len(threats) > 0 {
		best := threats[0]
		bestD := battlefield.Distance3D(u.Pos, best.Pos)
		for _, t := range threats[1:] {
			if d := battlefield.Distance3D(u.Pos, t.Pos); d < bestD {
				best, bestD = t, d
			}
		}
		return best.Pos, true
	}
	return w.Field.Objective(u.Faction)
}

func nearestDistance(p battlefield.Position, units []*battlefield.Unit) float64 {
	best := -1.0
	for _, t := range units {
		if d := battlefield.Distance3D(p, t.Pos); best < 0 || d < best {
			best = d
		}
	}
	return best
}

// sortedByCost orders reachable tiles by cost, then position.
func sortedByCost(reach map[battlefield.Position]int) []battlefield.Position {
	out := make([]battlefield.Position, 0, len(reach))
	for p := range reach {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := reach[out[i]], reach[out[j]]
		if ci != cj {
			return ci < cj
		}
		return out[i].Less(out[j])
	})
	return out
}
