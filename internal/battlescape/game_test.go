package battlescape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
)

var pos = battlefield.Pos

// newBattle builds a small field with a far-away hostile so the battle does
// not end by itself.
func newBattle(t *testing.T, opts ...Option) *Game {
	t.Helper()
	g, err := New(append([]Option{WithSize(40, 8, 1)}, opts...)...)
	require.NoError(t, err)
	return g
}

func quietPair() []Option {
	return []Option{
		WithPlayer("Alvarez", "trooper", pos(1, 4, 0)),
		WithHostile("Sectoid", "sectoid", pos(38, 4, 0)),
	}
}

func atIdle(g *Game) bool { return g.AtIdle() || g.Ended() }

func TestNew_OpensPlayerPhase(t *testing.T) {
	g := newBattle(t, quietPair()...)

	assert.Equal(t, []ActionKind{KindIdle}, g.Stack())
	assert.Equal(t, battlefield.FactionPlayer, g.Phase())
	assert.Equal(t, 1, g.Turn())
	assert.True(t, g.PhaseOpen())
	assert.False(t, g.Ended())
	assert.Positive(t, g.Events().Count("tile_revealed"))

	e, ok := g.Events().LastOf("phase_started")
	require.True(t, ok)
	assert.Equal(t, PhaseStarted{Faction: battlefield.FactionPlayer, Turn: 1}, e.Event)
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(WithSize(0, 0, 1))
	assert.Error(t, err)

	_, err = New(WithSize(8, 8, 1), WithPlayer("x", "no_such_template", pos(1, 1, 0)))
	assert.Error(t, err)

	_, err = New(WithBattlefield(battlefield.NewEmpty(4, 4, 1)), WithSize(8, 8, 1))
	assert.Error(t, err)
}

func TestRequestMove_ZeroTURejectedWithoutEvents(t *testing.T) {
	g := newBattle(t, quietPair()...)
	g.Battlefield().Unit(0).Stats.TimeUnits = 0
	before := g.Events().Len()

	err := g.RequestMove(0, pos(4, 4, 0), pathfind.Walk)
	require.ErrorIs(t, err, ErrInsufficientTimeUnits)

	assert.Equal(t, before, g.Events().Len())
	assert.Equal(t, []ActionKind{KindIdle}, g.Stack())
	assert.Equal(t, pos(1, 4, 0), g.Battlefield().Unit(0).Pos)
}

func TestCommands_Rejections(t *testing.T) {
	g := newBattle(t, append(quietPair(),
		WithRegion(battlefield.RegionSpec{X0: 10, Y0: 0, X1: 12, Y1: 2, Object: "wall", Outline: true}),
	)...)

	assert.ErrorIs(t, g.RequestMove(7, pos(2, 2, 0), pathfind.Walk), ErrUnknownUnit)
	assert.ErrorIs(t, g.RequestMove(1, pos(30, 4, 0), pathfind.Walk), ErrNotUnitsTurn)
	assert.ErrorIs(t, g.RequestMove(0, pos(1, 4, 0), pathfind.Walk), ErrInvalidTarget)
	assert.ErrorIs(t, g.RequestMove(0, pos(11, 1, 0), pathfind.Walk), ErrNoPath)
	assert.ErrorIs(t, g.RequestFire(0, pos(38, 4, 0), rules.ModeSnap), ErrTargetOutOfRange)
	assert.ErrorIs(t, g.RequestFire(0, pos(5, 4, 0), rules.ModeThrow), ErrNoWeapon)
	assert.ErrorIs(t, g.RequestThrow(0, pos(30, 4, 0), ""), ErrTargetOutOfRange)
	assert.ErrorIs(t, g.RequestTurn(0, battlefield.North), ErrInvalidTarget)
	assert.ErrorIs(t, g.RequestStance(0, battlefield.StanceStanding), ErrInvalidTarget)
	assert.ErrorIs(t, g.EndTurn(battlefield.FactionHostile), ErrNotUnitsTurn)

	g.Battlefield().Unit(0).Inventory[0].Ammo = 0
	assert.ErrorIs(t, g.RequestFire(0, pos(5, 4, 0), rules.ModeSnap), ErrNoAmmo)

	require.NoError(t, g.RequestMove(0, pos(3, 4, 0), pathfind.Walk))
	assert.Equal(t, []ActionKind{KindIdle, KindWalk}, g.Stack())
	assert.ErrorIs(t, g.RequestMove(0, pos(4, 4, 0), pathfind.Walk), ErrActionInProgress)
	assert.ErrorIs(t, g.EndTurn(battlefield.FactionPlayer), ErrActionInProgress)
}

func TestRequestMove_SpendsExactPathCost(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	path, ok := g.Pathfinder().FindPath(u, u.Pos, pos(5, 4, 0), pathfind.Walk)
	require.True(t, ok)
	tu := u.Stats.TimeUnits

	require.NoError(t, g.RequestMove(0, pos(5, 4, 0), pathfind.Walk))
	n := g.RunUntil(atIdle, 100)

	assert.Equal(t, 4, n, "one step per tick")
	assert.Equal(t, pos(5, 4, 0), u.Pos)
	assert.Equal(t, tu-path.Total, u.Stats.TimeUnits)
	assert.Equal(t, 4, g.Events().Count("unit_moved"))
	assert.Equal(t, 0, g.Events().Count("walk_stopped"))
}

func TestRequestMove_RunSpendsStamina(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	stamina := u.Stats.Stamina

	require.NoError(t, g.RequestMove(0, pos(4, 4, 0), pathfind.Run))
	g.RunUntil(atIdle, 100)

	assert.Equal(t, pos(4, 4, 0), u.Pos)
	assert.Equal(t, stamina-3*pathfind.StaminaPerStep, u.Stats.Stamina)

	u.Stats.Stamina = 0
	assert.ErrorIs(t, g.RequestMove(0, pos(6, 4, 0), pathfind.Run), ErrInsufficientStamina)
}

func TestWalk_TruncatesWhenTimeRunsOut(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	require.NoError(t, g.RequestMove(0, pos(12, 4, 0), pathfind.Walk))
	// TU drained after acceptance: each step is paid when taken.
	u.Stats.TimeUnits = 9
	g.RunUntil(atIdle, 100)

	e, ok := g.Events().LastOf("walk_stopped")
	require.True(t, ok)
	assert.Equal(t, "out of time units", e.Event.(WalkStopped).Reason)
	assert.Less(t, u.Pos.X, 12)
	assert.GreaterOrEqual(t, u.Stats.TimeUnits, 0)
}

func TestRequestTurn_CostsOneTU(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	tu := u.Stats.TimeUnits

	require.NoError(t, g.RequestTurn(0, battlefield.South))
	n := g.RunUntil(atIdle, 10)

	assert.Equal(t, 2, n, "four octants at two per tick")
	assert.Equal(t, battlefield.South, u.Facing)
	assert.Equal(t, tu-1, u.Stats.TimeUnits)
	assert.True(t, g.Events().HasEntry("unit_turned", "N -> S"))
}

func TestRequestStance_ChargesEnterCost(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	tu := u.Stats.TimeUnits

	require.NoError(t, g.RequestStance(0, battlefield.StanceKneeling))
	g.RunUntil(atIdle, 10)

	assert.Equal(t, battlefield.StanceKneeling, u.Stance)
	assert.Equal(t, tu-battlefield.StanceKneeling.Profile().EnterTU, u.Stats.TimeUnits)
	assert.Equal(t, 1, g.Events().Count("stance_changed"))
}

func TestEndTurn_RotatesPhasesAndRestoresTU(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	u.Stats.TimeUnits = 3

	require.NoError(t, g.EndTurn(battlefield.FactionPlayer))
	n := g.RunUntil(func(g *Game) bool { return g.Turn() == 2 }, 2000)
	require.NotEqual(t, -1, n)

	var phases []PhaseStarted
	for _, e := range g.Events().Filter("phase_started") {
		phases = append(phases, e.Event.(PhaseStarted))
	}
	assert.Equal(t, []PhaseStarted{
		{Faction: battlefield.FactionPlayer, Turn: 1},
		{Faction: battlefield.FactionHostile, Turn: 1},
		{Faction: battlefield.FactionPlayer, Turn: 2},
	}, phases)
	assert.Equal(t, 2, g.Events().Count("phase_ended"))
	assert.Equal(t, u.Stats.MaxTimeUnits, u.Stats.TimeUnits)
	assert.Equal(t, battlefield.FactionPlayer, g.Phase())
}

func TestAbort_OnlyWhileIdle(t *testing.T) {
	g := newBattle(t, quietPair()...)
	require.NoError(t, g.RequestMove(0, pos(6, 4, 0), pathfind.Walk))
	assert.ErrorIs(t, g.Abort(), ErrActionInProgress)

	g.RunUntil(atIdle, 100)
	require.NoError(t, g.Abort())

	assert.True(t, g.Ended())
	assert.Equal(t, OutcomeAborted, g.Outcome().Outcome)
	assert.Empty(t, g.Stack())
	assert.False(t, g.PhaseOpen())
	assert.False(t, g.Tick())
	assert.ErrorIs(t, g.RequestMove(0, pos(8, 4, 0), pathfind.Walk), ErrPhaseOver)
	assert.ErrorIs(t, g.Abort(), ErrPhaseOver)

	e, ok := g.Events().LastOf("battle_ended")
	require.True(t, ok)
	assert.Equal(t, OutcomeAborted, e.Event.(BattleEnded).Outcome)
}

func TestMaxTicks_EndsInconclusive(t *testing.T) {
	s := DefaultSettings()
	s.MaxTicks = 5
	g := newBattle(t, append(quietPair(), WithSettings(s))...)

	g.Run(100)

	assert.True(t, g.Ended())
	assert.Equal(t, 5, g.Ticks())
	assert.Equal(t, OutcomeInconclusive, g.Outcome().Outcome)
}

func TestPanic_ShakenUnitLosesTurn(t *testing.T) {
	g := newBattle(t, quietPair()...)
	u := g.Battlefield().Unit(0)
	u.Stats.Morale = 0
	u.Stats.Bravery = 10

	n := g.RunUntil(func(g *Game) bool { return g.Events().Count("unit_panicked") > 0 }, 10)
	require.NotEqual(t, -1, n)

	assert.Equal(t, battlefield.StatusPanicked, u.Status)
	assert.Equal(t, 0, u.Stats.TimeUnits)
	assert.ErrorIs(t, g.RequestMove(0, pos(3, 4, 0), pathfind.Walk), ErrUnitIncapacitated)
}

func TestStackInvariant_HoldsThroughFullBattle(t *testing.T) {
	sc, ok := BuiltinScenario("skirmish")
	require.True(t, ok)
	s := DefaultSettings()
	s.AutoPlayer = true
	s.MaxTicks = 4000

	g, err := New(append(sc.Options(), WithSettings(s))...)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		for g.Tick() {
			if g.PhaseOpen() {
				require.NotEmpty(t, g.Stack())
				require.Equal(t, KindIdle, g.Stack()[0])
			} else {
				require.Empty(t, g.Stack())
			}
		}
	})
	assert.True(t, g.Ended())
	assert.NotEqual(t, OutcomeInProgress, g.Outcome().Outcome)
	assert.Equal(t, 1, g.Events().Count("battle_ended"))
}

func TestDeterminism_SameSeedSameStream(t *testing.T) {
	run := func() string {
		sc, _ := BuiltinScenario("skirmish")
		s := DefaultSettings()
		s.AutoPlayer = true
		s.MaxTicks = 1500
		g, err := New(append(sc.Options(), WithSettings(s))...)
		require.NoError(t, err)
		g.Run(s.MaxTicks)
		return g.Events().Digest()
	}
	first := run()
	assert.Equal(t, first, run())
}
