package pathfind

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bfpkg "github.com/Garsondee/Battlescape/internal/battlefield"
)

func addUnit(t *testing.T, bf *bfpkg.Battlefield, f bfpkg.Faction, p bfpkg.Position, tu int) *bfpkg.Unit {
	t.Helper()
	id, err := bf.AddUnit(bfpkg.Unit{
		Name:    f.String(),
		Faction: f,
		Stats:   bfpkg.Stats{MaxTimeUnits: tu, TimeUnits: tu, MaxHealth: 30, Health: 30, MaxStamina: 50, Stamina: 50},
	}, p)
	require.NoError(t, err)
	return bf.Unit(id)
}

// The canonical open-field case: corner to corner on uniform grass.
func TestFindPath_DiagonalAcrossOpenField(t *testing.T) {
	bf := bfpkg.NewEmpty(10, 10, 1)
	hostile := addUnit(t, bf, bfpkg.FactionHostile, bfpkg.Pos(0, 0, 0), 50)
	addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(9, 9, 0), 50)

	pf := New(bf, Costs{})
	// The player unit sits on (9,9); route to the tile next to it.
	p, ok := pf.FindPath(hostile, bfpkg.Pos(0, 0, 0), bfpkg.Pos(8, 8, 0), Walk)
	require.True(t, ok)
	assert.Equal(t, 8, p.Len())
	assert.Equal(t, 32, p.Total)

	_, ok = pf.FindPath(hostile, bfpkg.Pos(0, 0, 0), bfpkg.Pos(9, 9, 0), Walk)
	assert.False(t, ok, "occupied destination is unreachable")
}

func TestFindPath_NineStepsThirtySixTU(t *testing.T) {
	bf := bfpkg.NewEmpty(10, 10, 1)
	hostile := addUnit(t, bf, bfpkg.FactionHostile, bfpkg.Pos(0, 0, 0), 50)

	pf := New(bf, Costs{})
	p, ok := pf.FindPath(hostile, bfpkg.Pos(0, 0, 0), bfpkg.Pos(9, 9, 0), Walk)
	require.True(t, ok)
	assert.Equal(t, 9, p.Len())
	assert.Equal(t, 36, p.Total)
	sum := 0
	for _, s := range p.Steps {
		sum += s.Cost
	}
	assert.Equal(t, p.Total, sum)
	assert.Equal(t, 0, p.Turns(), "straight diagonal")
	dest, _ := p.Destination()
	assert.Equal(t, bfpkg.Pos(9, 9, 0), dest)
}

func TestFindPath_BudgetIsMaxTU(t *testing.T) {
	bf := bfpkg.NewEmpty(20, 1, 1)
	u := addUnit(t, bf, bfpkg.FactionHostile, bfpkg.Pos(0, 0, 0), 50)
	u.Stats.TimeUnits = 0 // current TU does not bound the planner

	pf := New(bf, Costs{})
	p, ok := pf.FindPath(u, u.Pos, bfpkg.Pos(12, 0, 0), Walk)
	require.True(t, ok)
	assert.Equal(t, 48, p.Total)

	_, ok = pf.FindPath(u, u.Pos, bfpkg.Pos(13, 0, 0), Walk)
	assert.False(t, ok, "52 TU exceeds the 50 TU budget")
}

func TestFindPath_Walls(t *testing.T) {
	bf := bfpkg.NewEmpty(7, 7, 1)
	for y := 0; y < 6; y++ {
		bf.SetObject(bfpkg.Pos(3, y, 0), bfpkg.ObjectWall)
	}
	u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 0, 0), 200)
	pf := New(bf, Costs{})

	p, ok := pf.FindPath(u, u.Pos, bfpkg.Pos(6, 0, 0), Walk)
	require.True(t, ok)
	for _, s := range p.Steps {
		assert.False(t, s.To.X == 3 && s.To.Y < 6, "path crosses the wall at %s", s.To)
	}

	// Seal the gap and the far side becomes unreachable.
	bf.SetObject(bfpkg.Pos(3, 6, 0), bfpkg.ObjectWall)
	_, ok = pf.FindPath(u, u.Pos, bfpkg.Pos(6, 0, 0), Walk)
	assert.False(t, ok)
}

func TestFindPath_DoorCost(t *testing.T) {
	bf := bfpkg.NewEmpty(3, 1, 1)
	bf.SetObject(bfpkg.Pos(1, 0, 0), bfpkg.ObjectDoor)
	u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 0, 0), 50)
	pf := New(bf, Costs{DoorOpen: 5, Climb: 8, Descend: 2})

	p, ok := pf.FindPath(u, u.Pos, bfpkg.Pos(2, 0, 0), Walk)
	require.True(t, ok)
	assert.Equal(t, 4+5, p.Steps[0].Cost)
	assert.Equal(t, 13, p.Total)

	bf.OpenDoor(bfpkg.Pos(1, 0, 0))
	p, _ = pf.FindPath(u, u.Pos, bfpkg.Pos(2, 0, 0), Walk)
	assert.Equal(t, 8, p.Total, "an open door costs nothing extra")

	bf.CloseDoor(bfpkg.Pos(1, 0, 0))
	bf.Tile(bfpkg.Pos(1, 0, 0)).Flags |= bfpkg.TileLocked
	_, ok = pf.FindPath(u, u.Pos, bfpkg.Pos(2, 0, 0), Walk)
	assert.False(t, ok, "locked door")
}

func TestFindPath_ClimbCostsMoreThanDescend(t *testing.T) {
	bf := bfpkg.NewEmpty(3, 1, 2)
	bf.SetObject(bfpkg.Pos(0, 0, 0), bfpkg.ObjectStairs)
	bf.SetGround(bfpkg.Pos(0, 0, 1), bfpkg.GroundWood)
	bf.SetObject(bfpkg.Pos(0, 0, 1), bfpkg.ObjectStairs)
	bf.SetGround(bfpkg.Pos(1, 0, 1), bfpkg.GroundWood)

	u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 0, 0), 60)
	pf := New(bf, Costs{DoorOpen: 4, Climb: 8, Descend: 2})

	up, ok := pf.FindPath(u, bfpkg.Pos(0, 0, 0), bfpkg.Pos(1, 0, 1), Walk)
	require.True(t, ok)
	require.Equal(t, 2, up.Len())
	assert.Equal(t, bfpkg.Up, up.Steps[0].Dir)
	assert.Equal(t, 4+8, up.Steps[0].Cost)

	down, ok := pf.FindPath(u, bfpkg.Pos(1, 0, 1), bfpkg.Pos(0, 0, 0), Walk)
	require.True(t, ok)
	assert.Equal(t, bfpkg.Down, down.Steps[1].Dir)
	assert.Equal(t, 4+2, down.Steps[1].Cost)
	assert.Greater(t, up.Total, down.Total)
}

func TestFindPath_Modes(t *testing.T) {
	bf := bfpkg.NewEmpty(5, 1, 1)
	u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 0, 0), 80)
	pf := New(bf, Costs{})

	walk, _ := pf.FindPath(u, u.Pos, bfpkg.Pos(4, 0, 0), Walk)
	run, _ := pf.FindPath(u, u.Pos, bfpkg.Pos(4, 0, 0), Run)
	kneel, _ := pf.FindPath(u, u.Pos, bfpkg.Pos(4, 0, 0), Kneel)
	assert.Equal(t, 16, walk.Total)
	assert.Equal(t, 12, run.Total)
	assert.Equal(t, 24, kneel.Total)
	assert.Equal(t, Run, run.Mode)
}

func TestFindPath_PrefersFewerTurns(t *testing.T) {
	// Many zig-zag routes cost the same as the straight one.
	bf := bfpkg.NewEmpty(5, 3, 1)
	u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 1, 0), 80)
	pf := New(bf, Costs{})

	p, ok := pf.FindPath(u, u.Pos, bfpkg.Pos(4, 1, 0), Walk)
	require.True(t, ok)
	assert.Equal(t, 16, p.Total)
	assert.Equal(t, 0, p.Turns())
	for _, s := range p.Steps {
		assert.Equal(t, bfpkg.East, s.Dir)
	}
}

func TestPreviewPath_MatchesFindPath(t *testing.T) {
	bf := randomField(rand.New(rand.NewSource(7)), 16, 16) // #nosec G404 -- test fixture
	u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 0, 0), 120)
	pf := New(bf, Costs{})

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			dest := bfpkg.Pos(x, y, 0)
			want, wantOK := pf.FindPath(u, u.Pos, dest, Walk)
			for i := 0; i < 3; i++ {
				got, gotOK := pf.PreviewPath(u, dest)
				require.Equal(t, wantOK, gotOK, "dest %s", dest)
				require.Equal(t, want, got, "dest %s", dest)
			}
		}
	}
}

func TestFindPath_OptimalAgainstDijkstra(t *testing.T) {
	for seed := int64(1); seed <= 6; seed++ {
		rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- test fixture
		bf := randomField(rng, 14, 14)
		u := addUnit(t, bf, bfpkg.FactionPlayer, bfpkg.Pos(0, 0, 0), 90)
		pf := New(bf, Costs{})

		for _, mode := range []MoveMode{Walk, Run, Kneel} {
			reach := pf.Reachable(u, u.Pos, mode, u.Stats.MaxTimeUnits)
			for y := 0; y < 14; y++ {
				for x := 0; x < 14; x++ {
					dest := bfpkg.Pos(x, y, 0)
					p, ok := pf.FindPath(u, u.Pos, dest, mode)
					want, reachable := reach[dest]
					require.Equal(t, reachable, ok, "seed %d %s dest %s", seed, mode, dest)
					if ok {
						assert.Equal(t, want, p.Total, "seed %d %s dest %s", seed, mode, dest)
					}
				}
			}
		}
	}
}

func TestPath_Affordable(t *testing.T) {
	p := Path{Steps: []Step{{Cost: 4}, {Cost: 6}, {Cost: 4}}, Total: 14}
	assert.Equal(t, 0, p.Affordable(3))
	assert.Equal(t, 1, p.Affordable(9))
	assert.Equal(t, 2, p.Affordable(10))
	assert.Equal(t, 3, p.Affordable(14))
}

// randomField scatters walls, rough ground, doors and edge costs.
func randomField(rng *rand.Rand, w, l int) *bfpkg.Battlefield {
	bf := bfpkg.NewEmpty(w, l, 1)
	grounds := []bfpkg.Ground{bfpkg.GroundGrass, bfpkg.GroundMud, bfpkg.GroundGrassLong, bfpkg.GroundTarmac}
	for y := 0; y < l; y++ {
		for x := 0; x < w; x++ {
			p := bfpkg.Pos(x, y, 0)
			if x == 0 && y == 0 {
				continue
			}
			bf.SetGround(p, grounds[rng.Intn(len(grounds))])
			switch r := rng.Intn(20); {
			case r < 4:
				bf.SetObject(p, bfpkg.ObjectWall)
			case r == 4:
				bf.SetObject(p, bfpkg.ObjectDoor)
			case r == 5:
				bf.SetObject(p, bfpkg.ObjectHedgerow)
			case r == 6:
				bf.Tile(p).EdgeCost[bfpkg.LateralDirections[rng.Intn(8)]] = 3
			}
		}
	}
	return bf
}
