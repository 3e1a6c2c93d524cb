package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

func place(t *testing.T, bf *battlefield.Battlefield, f battlefield.Faction, p battlefield.Position, s battlefield.Stance) battlefield.UnitID {
	t.Helper()
	id, err := bf.AddUnit(battlefield.Unit{
		Name:    f.String(),
		Faction: f,
		Stance:  s,
		Stats:   battlefield.Stats{MaxTimeUnits: 50, TimeUnits: 50, MaxHealth: 30, Health: 30},
	}, p)
	require.NoError(t, err)
	return id
}

func TestRecompute_OpenField(t *testing.T) {
	bf := battlefield.NewEmpty(12, 12, 1)
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(1, 1, 0), battlefield.StanceStanding)
	b := place(t, bf, battlefield.FactionHostile, battlefield.Pos(10, 10, 0), battlefield.StanceStanding)
	e := New(bf, Settings{MaxRange: 20, NightRange: 9, FOVDegrees: 360, Daylight: true})

	vs := e.Recompute(a)
	assert.Len(t, vs.Tiles, 144)
	assert.Equal(t, []battlefield.UnitID{b}, vs.Units)
	assert.Len(t, vs.Revealed, 144)
	assert.True(t, bf.Tile(battlefield.Pos(11, 0, 0)).Discovered.Has(battlefield.FactionPlayer))
	assert.True(t, bf.Tile(battlefield.Pos(11, 0, 0)).Visible.Has(battlefield.FactionPlayer))
	assert.False(t, bf.Tile(battlefield.Pos(11, 0, 0)).Discovered.Has(battlefield.FactionHostile))

	again := e.Recompute(a)
	assert.Empty(t, again.Revealed, "nothing new the second time")
	assert.Equal(t, vs.Tiles, again.Tiles)
}

func TestRecompute_WallBlocks(t *testing.T) {
	bf := battlefield.NewEmpty(9, 9, 1)
	for y := 0; y < 9; y++ {
		bf.SetObject(battlefield.Pos(4, y, 0), battlefield.ObjectWall)
	}
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(1, 4, 0), battlefield.StanceStanding)
	b := place(t, bf, battlefield.FactionHostile, battlefield.Pos(7, 4, 0), battlefield.StanceStanding)
	e := New(bf, Settings{})

	vs := e.Recompute(a)
	assert.True(t, vs.Sees(battlefield.Pos(4, 4, 0)), "the wall face itself is seen")
	assert.False(t, vs.Sees(battlefield.Pos(6, 4, 0)))
	assert.Empty(t, vs.Units)
	assert.False(t, e.CanSee(a, b))
	assert.False(t, e.CanSee(b, a))
}

func TestRecompute_DoorOpening(t *testing.T) {
	bf := battlefield.NewEmpty(9, 3, 1)
	for y := 0; y < 3; y++ {
		bf.SetObject(battlefield.Pos(4, y, 0), battlefield.ObjectWall)
	}
	bf.SetObject(battlefield.Pos(4, 1, 0), battlefield.ObjectDoor)
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(0, 1, 0), battlefield.StanceStanding)
	b := place(t, bf, battlefield.FactionHostile, battlefield.Pos(8, 1, 0), battlefield.StanceStanding)
	e := New(bf, Settings{})

	assert.NotContains(t, e.Recompute(a).Units, b)
	require.True(t, bf.OpenDoor(battlefield.Pos(4, 1, 0)))
	e.Invalidate(a)
	assert.True(t, e.Stale(a))
	assert.Contains(t, e.Recompute(a).Units, b)
	assert.False(t, e.Stale(a))
}

// An elevated standing observer sees over a low wall onto a prone unit that
// cannot see back.
func TestVisibility_ElevationAsymmetry(t *testing.T) {
	bf := battlefield.NewEmpty(11, 8, 2)
	bf.SetGround(battlefield.Pos(5, 0, 1), battlefield.GroundWood)
	for x := 0; x < 11; x++ {
		bf.SetObject(battlefield.Pos(x, 4, 0), battlefield.ObjectLowWall)
	}
	high := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(5, 0, 1), battlefield.StanceStanding)
	low := place(t, bf, battlefield.FactionHostile, battlefield.Pos(5, 5, 0), battlefield.StanceProne)
	e := New(bf, Settings{})

	assert.True(t, e.CanSee(high, low))
	assert.False(t, e.CanSee(low, high))

	e.Recompute(high)
	e.Recompute(low)
	assert.True(t, e.Exposed(low, battlefield.FactionPlayer))
	assert.False(t, e.Exposed(high, battlefield.FactionHostile))
	assert.Equal(t, []battlefield.UnitID{high}, e.Spotters(low))
	assert.Empty(t, e.Spotters(high))
}

// A unit inside dense smoke sees out but is not seen.
func TestVisibility_SmokeAsymmetry(t *testing.T) {
	bf := battlefield.NewEmpty(10, 3, 1)
	in := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(1, 1, 0), battlefield.StanceStanding)
	out := place(t, bf, battlefield.FactionHostile, battlefield.Pos(7, 1, 0), battlefield.StanceStanding)
	bf.AddSmoke(battlefield.Pos(1, 1, 0), 12)
	e := New(bf, Settings{})

	assert.True(t, e.CanSee(in, out))
	assert.False(t, e.CanSee(out, in))

	vs := e.Recompute(out)
	assert.True(t, vs.Sees(battlefield.Pos(1, 1, 0)), "the smoky tile is seen, its occupant is not")
	assert.NotContains(t, vs.Units, in)
}

func TestVisibility_SmokeAccumulates(t *testing.T) {
	bf := battlefield.NewEmpty(10, 1, 1)
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(0, 0, 0), battlefield.StanceStanding)
	b := place(t, bf, battlefield.FactionHostile, battlefield.Pos(9, 0, 0), battlefield.StanceStanding)
	e := New(bf, Settings{})

	bf.AddSmoke(battlefield.Pos(3, 0, 0), 5)
	assert.True(t, e.CanSee(a, b), "one thin cloud")
	bf.AddSmoke(battlefield.Pos(5, 0, 0), 5)
	assert.False(t, e.CanSee(a, b), "two thin clouds add up")
}

func TestVisibility_RangeAndNight(t *testing.T) {
	bf := battlefield.NewEmpty(30, 1, 1)
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(0, 0, 0), battlefield.StanceStanding)
	near := place(t, bf, battlefield.FactionHostile, battlefield.Pos(8, 0, 0), battlefield.StanceStanding)
	mid := place(t, bf, battlefield.FactionHostile, battlefield.Pos(15, 0, 0), battlefield.StanceStanding)
	far := place(t, bf, battlefield.FactionHostile, battlefield.Pos(25, 0, 0), battlefield.StanceStanding)
	e := New(bf, Settings{MaxRange: 20, NightRange: 9, FOVDegrees: 360, Daylight: true})

	assert.Equal(t, []battlefield.UnitID{near, mid}, e.Recompute(a).Units)

	e.SetDaylight(false)
	assert.True(t, e.Stale(a))
	assert.Equal(t, []battlefield.UnitID{near}, e.Recompute(a).Units)

	bf.Ignite(battlefield.Pos(15, 0, 0), 3)
	e.InvalidateAll()
	assert.Equal(t, []battlefield.UnitID{near, mid}, e.Recompute(a).Units, "burning tiles are lit")
	_ = far
}

func TestVisibility_FacingCone(t *testing.T) {
	bf := battlefield.NewEmpty(9, 9, 1)
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(4, 4, 0), battlefield.StanceStanding)
	north := place(t, bf, battlefield.FactionHostile, battlefield.Pos(4, 0, 0), battlefield.StanceStanding)
	south := place(t, bf, battlefield.FactionHostile, battlefield.Pos(4, 8, 0), battlefield.StanceStanding)
	bf.Unit(a).Facing = battlefield.North
	e := New(bf, Settings{MaxRange: 20, NightRange: 9, FOVDegrees: 90, Daylight: true})

	assert.True(t, e.CanSee(a, north))
	assert.False(t, e.CanSee(a, south))
	assert.True(t, e.CanSeeFrom(bf.Unit(a).Pos, battlefield.StanceStanding, bf.Unit(south).Pos), "hypothetical checks ignore facing")
}

func TestVisibility_FloorBlocksSightBetweenLevels(t *testing.T) {
	bf := battlefield.NewEmpty(6, 1, 2)
	for x := 0; x < 6; x++ {
		bf.SetGround(battlefield.Pos(x, 0, 1), battlefield.GroundConcrete)
	}
	below := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(0, 0, 0), battlefield.StanceStanding)
	above := place(t, bf, battlefield.FactionHostile, battlefield.Pos(5, 0, 1), battlefield.StanceStanding)
	e := New(bf, Settings{})

	assert.False(t, e.CanSee(below, above))
	assert.False(t, e.CanSee(above, below))
}

func TestRefreshSighting(t *testing.T) {
	bf := battlefield.NewEmpty(9, 9, 1)
	for y := 0; y < 9; y++ {
		if y != 4 {
			bf.SetObject(battlefield.Pos(4, y, 0), battlefield.ObjectWall)
		}
	}
	watcher := place(t, bf, battlefield.FactionHostile, battlefield.Pos(7, 4, 0), battlefield.StanceStanding)
	mover := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(1, 0, 0), battlefield.StanceStanding)
	e := New(bf, Settings{})
	e.Recompute(watcher)
	require.Empty(t, e.Spotters(mover))

	require.True(t, bf.MoveUnit(mover, battlefield.Pos(1, 4, 0)))
	visible, changed := e.RefreshSighting(watcher, mover)
	assert.True(t, visible)
	assert.True(t, changed)
	assert.Equal(t, []battlefield.UnitID{watcher}, e.Spotters(mover))
	assert.Equal(t, []battlefield.UnitID{mover}, e.VisibleHostiles(watcher))

	_, changed = e.RefreshSighting(watcher, mover)
	assert.False(t, changed)

	require.True(t, bf.MoveUnit(mover, battlefield.Pos(1, 8, 0)))
	visible, changed = e.RefreshSighting(watcher, mover)
	assert.False(t, visible)
	assert.True(t, changed)
}

func TestExposureAt(t *testing.T) {
	bf := battlefield.NewEmpty(9, 9, 1)
	for x := 0; x < 9; x++ {
		bf.SetObject(battlefield.Pos(x, 4, 0), battlefield.ObjectWall)
	}
	w1 := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(1, 1, 0), battlefield.StanceStanding)
	w2 := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(7, 1, 0), battlefield.StanceStanding)
	e := New(bf, Settings{})
	watchers := []*battlefield.Unit{bf.Unit(w1), bf.Unit(w2)}

	assert.Equal(t, 2, e.ExposureAt(battlefield.Pos(4, 2, 0), watchers))
	assert.Equal(t, 0, e.ExposureAt(battlefield.Pos(4, 7, 0), watchers))
}

func TestVisibleSet_DeadObserverSeesNothing(t *testing.T) {
	bf := battlefield.NewEmpty(5, 5, 1)
	a := place(t, bf, battlefield.FactionPlayer, battlefield.Pos(0, 0, 0), battlefield.StanceStanding)
	b := place(t, bf, battlefield.FactionHostile, battlefield.Pos(4, 4, 0), battlefield.StanceStanding)
	e := New(bf, Settings{})
	require.Contains(t, e.Recompute(a).Units, b)

	bf.RemoveUnit(a, battlefield.StatusDead)
	vs := e.Recompute(a)
	assert.Empty(t, vs.Tiles)
	assert.False(t, e.CanSee(a, b))
	assert.False(t, bf.Tile(battlefield.Pos(4, 4, 0)).Visible.Has(battlefield.FactionPlayer))
	assert.True(t, bf.Tile(battlefield.Pos(4, 4, 0)).Discovered.Has(battlefield.FactionPlayer), "discovery is permanent")
}
