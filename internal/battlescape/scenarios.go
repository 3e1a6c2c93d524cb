package battlescape

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

func unitAt(name, template string, f battlefield.Faction, x, y int, facing string) battlefield.UnitSpec {
	return battlefield.UnitSpec{Name: name, Template: template, Faction: f.String(), X: x, Y: y, Facing: facing}
}

var builtinScenarios = map[string]Scenario{
	// An open field with scattered cover between two squads.
	"skirmish": {
		Name: "skirmish",
		Seed: 7,
		Field: battlefield.Snapshot{
			Width: 24, Length: 24, Levels: 1,
			Regions: []battlefield.RegionSpec{
				{X0: 0, Y0: 11, X1: 23, Y1: 12, Ground: "dirt"},
				{X0: 4, Y0: 8, X1: 7, Y1: 8, Object: "sandbag"},
				{X0: 16, Y0: 8, X1: 19, Y1: 8, Object: "sandbag"},
				{X0: 9, Y0: 15, X1: 14, Y1: 15, Object: "low_wall"},
				{X0: 2, Y0: 13, X1: 3, Y1: 17, Ground: "long_grass"},
			},
			Tiles: []battlefield.TileSpec{
				{X: 11, Y: 6, Object: "crate"},
				{X: 12, Y: 6, Object: "crate"},
				{X: 20, Y: 14, Object: "tree_trunk"},
				{X: 5, Y: 18, Object: "vehicle_wreck"},
				{X: 6, Y: 18, Object: "vehicle_wreck"},
			},
			Units: []battlefield.UnitSpec{
				unitAt("Alvarez", "trooper", battlefield.FactionPlayer, 6, 2, "S"),
				unitAt("Becker", "trooper", battlefield.FactionPlayer, 9, 1, "S"),
				unitAt("Chen", "veteran", battlefield.FactionPlayer, 13, 2, "S"),
				unitAt("Dubois", "trooper", battlefield.FactionPlayer, 17, 1, "S"),
				unitAt("Sectoid 1", "sectoid", battlefield.FactionHostile, 5, 21, "N"),
				unitAt("Sectoid 2", "sectoid", battlefield.FactionHostile, 10, 22, "N"),
				unitAt("Sectoid 3", "sectoid", battlefield.FactionHostile, 14, 21, "N"),
				unitAt("Muton", "muton", battlefield.FactionHostile, 18, 22, "N"),
			},
			Objectives: []battlefield.ObjectiveSpec{
				{Faction: "hostile", X: 11, Y: 3},
				{Faction: "player", X: 11, Y: 20},
			},
		},
	},
	// A two-storey house with civilians inside, hostiles closing in.
	"farmhouse": {
		Name: "farmhouse",
		Seed: 11,
		Field: battlefield.Snapshot{
			Width: 28, Length: 22, Levels: 2,
			Regions: []battlefield.RegionSpec{
				{X0: 9, Y0: 7, X1: 18, Y1: 14, Ground: "concrete"},
				{X0: 9, Y0: 7, X1: 18, Y1: 14, Object: "wall", Outline: true},
				{X0: 9, Y0: 7, X1: 18, Y1: 14, Z: 1, Ground: "wood"},
				{X0: 9, Y0: 7, X1: 18, Y1: 14, Z: 1, Object: "wall", Outline: true},
				{X0: 0, Y0: 18, X1: 27, Y1: 18, Object: "hedgerow"},
				{X0: 22, Y0: 3, X1: 25, Y1: 3, Object: "fence"},
			},
			Tiles: []battlefield.TileSpec{
				{X: 13, Y: 14, Object: "door"},
				{X: 13, Y: 7, Object: "door"},
				{X: 9, Y: 10, Object: "window"},
				{X: 18, Y: 11, Object: "window"},
				{X: 11, Y: 9, Object: "stairs"},
				{X: 11, Y: 9, Z: 1, Object: "stairs"},
				{X: 15, Y: 10, Object: "table"},
				{X: 14, Y: 18, Object: "none"},
				{X: 5, Y: 11, Object: "crate"},
				{X: 22, Y: 9, Object: "vehicle_wreck"},
			},
			Units: []battlefield.UnitSpec{
				unitAt("Alvarez", "trooper", battlefield.FactionPlayer, 12, 2, "S"),
				unitAt("Becker", "trooper", battlefield.FactionPlayer, 14, 1, "S"),
				unitAt("Chen", "veteran", battlefield.FactionPlayer, 16, 2, "S"),
				unitAt("Farmer", "civilian", battlefield.FactionNeutral, 12, 11, "E"),
				unitAt("Farmhand", "civilian", battlefield.FactionNeutral, 16, 12, "W"),
				unitAt("Sectoid 1", "sectoid", battlefield.FactionHostile, 6, 20, "N"),
				unitAt("Sectoid 2", "sectoid", battlefield.FactionHostile, 20, 20, "N"),
				unitAt("Sectoid 3", "sectoid", battlefield.FactionHostile, 14, 21, "N"),
			},
			Objectives: []battlefield.ObjectiveSpec{
				{Faction: "hostile", X: 13, Y: 11},
				{Faction: "player", X: 13, Y: 15},
			},
		},
	},
}

// BuiltinScenario returns a scenario that ships with the module.
func BuiltinScenario(name string) (Scenario, bool) {
	sc, ok := builtinScenarios[name]
	return sc, ok
}

// BuiltinScenarioNames lists the shipped scenarios in name order.
func BuiltinScenarioNames() []string {
	names := make([]string, 0, len(builtinScenarios))
	for n := range builtinScenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveScenario returns the builtin scenario called name, or else loads
// name as a scenario file.
func ResolveScenario(name string) (Scenario, error) {
	if sc, ok := BuiltinScenario(name); ok {
		return sc, nil
	}
	if _, err := os.Stat(name); err != nil {
		return Scenario{}, fmt.Errorf("unknown scenario %q (builtin: %s)", name, strings.Join(BuiltinScenarioNames(), ", "))
	}
	return LoadScenario(name)
}
