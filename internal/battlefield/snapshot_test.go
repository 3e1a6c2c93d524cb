package battlefield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const houseYAML = `
width: 8
length: 6
levels: 2
default_ground: dirt
regions:
  - {x0: 2, y0: 1, x1: 6, y1: 4, ground: concrete}
  - {x0: 2, y0: 1, x1: 6, y1: 4, object: wall, outline: true}
  - {x0: 3, y0: 2, x1: 5, y1: 3, z: 1, ground: wood}
tiles:
  - {x: 4, y: 4, object: door}
  - {x: 0, y: 0, smoke: 6}
  - {x: 1, y: 5, edge_cost: {E: 2}, block_edges: [N]}
units:
  - {name: Vasquez, template: trooper, faction: player, x: 0, y: 5, facing: NE}
  - {name: Grunt, template: trooper, faction: hostile, x: 4, y: 2, stance: kneeling,
     stats: {max_time_units: 40, max_health: 20, reactions: 70}}
objectives:
  - {faction: hostile, x: 0, y: 5}
`

func templates() map[string]UnitTemplate {
	return map[string]UnitTemplate{
		"trooper": {
			Stats:     Stats{MaxTimeUnits: 55, MaxHealth: 35, MaxStamina: 70, Reactions: 50, Accuracy: 60},
			Inventory: []Item{{RuleID: "rifle", Ammo: 20}},
		},
	}
}

func TestNew_FromYAML(t *testing.T) {
	var snap Snapshot
	require.NoError(t, yaml.Unmarshal([]byte(houseYAML), &snap))

	bf, err := New(snap, templates())
	require.NoError(t, err)

	assert.Equal(t, GroundDirt, bf.Tile(Pos(0, 0, 0)).Ground)
	assert.Equal(t, ObjectWall, bf.Tile(Pos(2, 1, 0)).Object)
	assert.Equal(t, ObjectNone, bf.Tile(Pos(4, 2, 0)).Object, "outline leaves the interior clear")
	assert.Equal(t, ObjectDoor, bf.Tile(Pos(4, 4, 0)).Object)
	assert.Equal(t, GroundConcrete, bf.Tile(Pos(4, 2, 0)).Ground)
	assert.True(t, bf.Standable(Pos(4, 2, 1)))
	assert.Equal(t, 6, bf.Tile(Pos(0, 0, 0)).Smoke)
	assert.Equal(t, uint8(2), bf.Tile(Pos(1, 5, 0)).EdgeCost[East])
	assert.False(t, bf.Tile(Pos(1, 5, 0)).EdgeOpen(North))

	vasquez := bf.Unit(0)
	require.NotNil(t, vasquez)
	assert.Equal(t, "Vasquez", vasquez.Name)
	assert.Equal(t, NorthEast, vasquez.Facing)
	assert.Equal(t, 55, vasquez.Stats.TimeUnits, "template pools start full")
	assert.Equal(t, 100, vasquez.Stats.Morale)
	assert.Len(t, vasquez.Inventory, 1)

	grunt := bf.Unit(1)
	assert.Equal(t, StanceKneeling, grunt.Stance)
	assert.Equal(t, 40, grunt.Stats.TimeUnits, "explicit stats replace the template")
	assert.Equal(t, 70, grunt.Stats.Reactions)
	assert.Len(t, grunt.Inventory, 1, "loadout still comes from the template")

	obj, ok := bf.Objective(FactionHostile)
	require.True(t, ok)
	assert.Equal(t, Pos(0, 5, 0), obj)
	_, ok = bf.Objective(FactionPlayer)
	assert.False(t, ok)
}

func TestNew_Errors(t *testing.T) {
	cases := map[string]Snapshot{
		"size":     {Width: 0, Length: 3},
		"ground":   {Width: 3, Length: 3, DefaultGround: "lava"},
		"object":   {Width: 3, Length: 3, Tiles: []TileSpec{{Object: "throne"}}},
		"bounds":   {Width: 3, Length: 3, Tiles: []TileSpec{{X: 9}}},
		"faction":  {Width: 3, Length: 3, Units: []UnitSpec{{Faction: "aliens", Template: "trooper"}}},
		"template": {Width: 3, Length: 3, Units: []UnitSpec{{Faction: "player", Template: "ghost"}}},
		"no tu":    {Width: 3, Length: 3, Units: []UnitSpec{{Faction: "player"}}},
		"stance":   {Width: 3, Length: 3, Units: []UnitSpec{{Faction: "player", Template: "trooper", Stance: "floating"}}},
		"overlap": {Width: 3, Length: 3, Units: []UnitSpec{
			{Faction: "player", Template: "trooper"},
			{Faction: "hostile", Template: "trooper"},
		}},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(snap, templates())
			assert.Error(t, err)
		})
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	var snap Snapshot
	require.NoError(t, yaml.Unmarshal([]byte(houseYAML), &snap))
	bf, err := New(snap, templates())
	require.NoError(t, err)

	bf.Unit(0).SpendTU(11)
	require.True(t, bf.OpenDoor(Pos(4, 4, 0)))
	bf.RemoveUnit(1, StatusDead)

	out, err := yaml.Marshal(bf.Snapshot())
	require.NoError(t, err)
	var again Snapshot
	require.NoError(t, yaml.Unmarshal(out, &again))
	restored, err := New(again, nil)
	require.NoError(t, err)

	require.Len(t, restored.Units(), 1, "dead units are not placed again")
	assert.Equal(t, 44, restored.Unit(0).Stats.TimeUnits, "pools survive a resume")
	assert.True(t, restored.Tile(Pos(4, 4, 0)).Has(TileDoorOpen))
	for i, tile := range bf.Tiles() {
		got := restored.Tiles()[i]
		assert.Equal(t, tile.Ground, got.Ground, "ground at %s", tile.Pos)
		assert.Equal(t, tile.Object, got.Object, "object at %s", tile.Pos)
		assert.Equal(t, tile.Smoke, got.Smoke, "smoke at %s", tile.Pos)
		assert.Equal(t, tile.EdgeBlocked, got.EdgeBlocked, "edges at %s", tile.Pos)
	}
}

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection("sw")
	assert.True(t, ok)
	assert.Equal(t, SouthWest, d)
	d, ok = ParseDirection("UP")
	assert.True(t, ok)
	assert.Equal(t, Up, d)
	_, ok = ParseDirection("north")
	assert.False(t, ok)
}
