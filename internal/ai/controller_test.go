package ai

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bfpkg "github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
	"github.com/Garsondee/Battlescape/internal/visibility"
)

func newWorld(bf *bfpkg.Battlefield, seed int64) World {
	return World{
		Field:   bf,
		Paths:   pathfind.New(bf, pathfind.Costs{}),
		Vision:  visibility.New(bf, visibility.Settings{}),
		Weapons: rules.Default(),
		RNG:     rand.New(rand.NewSource(seed)), // #nosec G404 -- test fixture
	}
}

func place(t *testing.T, bf *bfpkg.Battlefield, name string, f bfpkg.Faction, p bfpkg.Position, tu int, inv ...bfpkg.Item) bfpkg.UnitID {
	t.Helper()
	id, err := bf.AddUnit(bfpkg.Unit{
		Name:    name,
		Faction: f,
		Stats: bfpkg.Stats{
			MaxTimeUnits: tu, TimeUnits: tu,
			MaxHealth: 30, Health: 30,
			MaxStamina: 60, Stamina: 60,
			Accuracy: 60, ThrowingAccuracy: 60,
			Reactions: 50, Bravery: 50, Morale: 100, Strength: 30,
		},
		Inventory: inv,
	}, p)
	require.NoError(t, err)
	return id
}

func TestCivilian_PassesWithoutThreats(t *testing.T) {
	bf := bfpkg.NewEmpty(10, 10, 1)
	civ := place(t, bf, "civ", bfpkg.FactionNeutral, bfpkg.Pos(5, 5, 0), 50)
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	d := ForFaction(bfpkg.FactionNeutral, Weights{}).Decide(w, civ)
	assert.Equal(t, Pass, d.Kind)
	assert.Equal(t, civ, d.Unit)
}

func TestCivilian_FleesVisibleHostile(t *testing.T) {
	bf := bfpkg.NewEmpty(20, 20, 1)
	civ := place(t, bf, "civ", bfpkg.FactionNeutral, bfpkg.Pos(10, 10, 0), 50, bfpkg.Item{RuleID: "rifle", Ammo: 20})
	place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(10, 4, 0), 50)
	place(t, bf, "trooper", bfpkg.FactionPlayer, bfpkg.Pos(0, 19, 0), 50)
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	c := ForFaction(bfpkg.FactionNeutral, Weights{})
	require.False(t, c.Policy().Capabilities().CanAttack)

	d := c.Decide(w, civ)
	require.Equal(t, Move, d.Kind, "civilians never shoot, even armed")
	assert.Equal(t, "flee", d.Reason)
	dest, ok := d.Path.Destination()
	require.True(t, ok)
	assert.Greater(t, bfpkg.Distance3D(dest, bfpkg.Pos(10, 4, 0)), 6.0)
	assert.LessOrEqual(t, d.Path.Total, 50)
}

func TestHostile_AttacksFromPosition(t *testing.T) {
	bf := bfpkg.NewEmpty(12, 12, 1)
	alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(2, 2, 0), 54, bfpkg.Item{RuleID: "plasma_rifle", Ammo: 28})
	trooper := place(t, bf, "trooper", bfpkg.FactionPlayer, bfpkg.Pos(8, 2, 0), 50)
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	d := ForFaction(bfpkg.FactionHostile, Weights{}).Decide(w, alien)
	require.Equal(t, Attack, d.Kind)
	assert.Equal(t, trooper, d.Target)
	assert.Equal(t, 0, d.Item)
	assert.NotEmpty(t, d.Mode)
	assert.Greater(t, d.Score, -10.0)
}

func TestHostile_NoAmmoRepositions(t *testing.T) {
	bf := bfpkg.NewEmpty(12, 12, 1)
	alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(2, 2, 0), 54, bfpkg.Item{RuleID: "plasma_rifle", Ammo: 0})
	place(t, bf, "trooper", bfpkg.FactionPlayer, bfpkg.Pos(8, 2, 0), 50)
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	d := ForFaction(bfpkg.FactionHostile, Weights{}).Decide(w, alien)
	assert.Equal(t, Move, d.Kind)
	assert.Equal(t, "reposition", d.Reason)
}

func TestHostile_AdvancesOnObjective(t *testing.T) {
	bf := bfpkg.NewEmpty(12, 12, 1)
	bf.SetObjective(bfpkg.FactionHostile, bfpkg.Pos(11, 11, 0))
	alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(0, 0, 0), 20)
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	d := ForFaction(bfpkg.FactionHostile, Weights{}).Decide(w, alien)
	require.Equal(t, Move, d.Kind)
	assert.Equal(t, "advance", d.Reason)
	dest, _ := d.Path.Destination()
	assert.Equal(t, bfpkg.Pos(5, 5, 0), dest)
	assert.Equal(t, 20, d.Path.Total)
}

func TestHostile_PatrolIsSeeded(t *testing.T) {
	decide := func(seed int64) Decision {
		bf := bfpkg.NewEmpty(12, 12, 1)
		alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(6, 6, 0), 30)
		w := newWorld(bf, seed)
		w.Vision.RecomputeAll()
		return ForFaction(bfpkg.FactionHostile, Weights{}).Decide(w, alien)
	}
	a, b := decide(42), decide(42)
	require.Equal(t, Move, a.Kind)
	assert.Equal(t, "patrol", a.Reason)
	assert.Equal(t, a, b)
}

func TestHostile_PatrolsOncePerPhase(t *testing.T) {
	bf := bfpkg.NewEmpty(12, 12, 1)
	alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(6, 6, 0), 30)
	bf.Unit(alien).AI.Decisions = 1
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	d := ForFaction(bfpkg.FactionHostile, Weights{}).Decide(w, alien)
	assert.Equal(t, Pass, d.Kind)
}

func TestDecide_Limits(t *testing.T) {
	bf := bfpkg.NewEmpty(12, 12, 1)
	alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(2, 2, 0), 54, bfpkg.Item{RuleID: "plasma_rifle", Ammo: 28})
	place(t, bf, "trooper", bfpkg.FactionPlayer, bfpkg.Pos(8, 2, 0), 50)
	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()
	c := ForFaction(bfpkg.FactionHostile, Weights{}, WithMaxDecisions(2))
	u := bf.Unit(alien)

	u.AI.Decisions = 2
	assert.Equal(t, "decision limit", c.Decide(w, alien).Reason)

	u.AI.Decisions = 0
	u.AI.Done = true
	assert.Equal(t, Pass, c.Decide(w, alien).Kind)

	u.AI.Done = false
	u.Status = bfpkg.StatusPanicked
	assert.Equal(t, "cannot act", c.Decide(w, alien).Reason)

	assert.Nil(t, ForFaction(bfpkg.FactionPlayer, Weights{}))
}

func TestHostile_GrenadeSparesFriends(t *testing.T) {
	setup := func(withFriend bool) Decision {
		bf := bfpkg.NewEmpty(14, 8, 1)
		alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(2, 2, 0), 54, bfpkg.Item{RuleID: "grenade"})
		place(t, bf, "trooper", bfpkg.FactionPlayer, bfpkg.Pos(7, 2, 0), 50)
		if withFriend {
			place(t, bf, "friend", bfpkg.FactionHostile, bfpkg.Pos(7, 3, 0), 50)
		}
		w := newWorld(bf, 1)
		w.Vision.RecomputeAll()
		return ForFaction(bfpkg.FactionHostile, Weights{}).Decide(w, alien)
	}

	d := setup(false)
	require.Equal(t, Throw, d.Kind)
	assert.Equal(t, bfpkg.Pos(7, 2, 0), d.TargetPos)
	assert.Equal(t, rules.ModeThrow, d.Mode)
	assert.Equal(t, bfpkg.NoUnit, d.Target)

	d = setup(true)
	assert.NotEqual(t, Throw, d.Kind)
}

func TestHostile_FallsBackToLastSafe(t *testing.T) {
	bf := bfpkg.NewEmpty(30, 3, 1)
	alien := place(t, bf, "alien", bfpkg.FactionHostile, bfpkg.Pos(10, 1, 0), 60)
	place(t, bf, "trooper", bfpkg.FactionPlayer, bfpkg.Pos(2, 1, 0), 50)
	u := bf.Unit(alien)
	u.Stats.TimeUnits = 20
	u.AI.LastSafe, u.AI.HasLastSafe = bfpkg.Pos(24, 1, 0), true

	w := newWorld(bf, 1)
	w.Vision.RecomputeAll()

	// Only exposure matters, and every tile in reach is exposed.
	c := New(HostilePolicy{Weights: Weights{Exposure: 4, Damage: 1}})
	d := c.Decide(w, alien)
	require.Equal(t, Move, d.Kind)
	assert.Equal(t, "fallback", d.Reason)
	dest, _ := d.Path.Destination()
	assert.Equal(t, bfpkg.Pos(24, 1, 0), dest)
	assert.Greater(t, d.Path.Total, u.Stats.TimeUnits, "the walk will be cut short")
}

func TestPolicies_Score(t *testing.T) {
	h := HostilePolicy{}
	assert.Greater(t, h.Score(Features{Damage: 20, Exposure: 1}), h.Score(Features{Exposure: 1}))
	assert.Greater(t, h.Score(Features{GoalDist: 1, HasGoal: true}), h.Score(Features{GoalDist: 5, HasGoal: true}))

	c := CivilianPolicy{}
	assert.Greater(t, c.Score(Features{ThreatDist: 9, HasThreat: true}), c.Score(Features{ThreatDist: 3, HasThreat: true}))
	assert.Greater(t, c.Score(Features{}), c.Score(Features{Exposure: 2}))
	assert.Equal(t, c.Score(Features{Damage: 99}), c.Score(Features{}), "civilians ignore damage")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "throw", Throw.String())
}
