package battlescape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/rules"
)

func outcomeField(t *testing.T) *battlefield.Battlefield {
	t.Helper()
	bf, err := battlefield.New(battlefield.Snapshot{
		Width: 10, Length: 10, Levels: 1,
		Units: []battlefield.UnitSpec{
			{Name: "A", Template: "trooper", Faction: "player", X: 1, Y: 1},
			{Name: "B", Template: "trooper", Faction: "player", X: 2, Y: 1},
			{Name: "S", Template: "sectoid", Faction: "hostile", X: 8, Y: 8},
			{Name: "C", Template: "civilian", Faction: "neutral", X: 5, Y: 5},
		},
	}, rules.Default().Templates())
	require.NoError(t, err)
	return bf
}

func TestDetermineOutcome(t *testing.T) {
	tests := []struct {
		name   string
		remove map[battlefield.UnitID]battlefield.Status
		want   Outcome
		desc   string
	}{
		{"forces remain", nil, OutcomeInProgress, "forces_remain"},
		{"hostiles gone", map[battlefield.UnitID]battlefield.Status{2: battlefield.StatusDead}, OutcomePlayerVictory, "hostiles_eliminated"},
		{"stunned hostiles count as gone", map[battlefield.UnitID]battlefield.Status{2: battlefield.StatusUnconscious}, OutcomePlayerVictory, "hostiles_eliminated"},
		{"squad gone", map[battlefield.UnitID]battlefield.Status{0: battlefield.StatusDead, 1: battlefield.StatusDead}, OutcomeHostileVictory, "squad_eliminated"},
		{"everyone gone", map[battlefield.UnitID]battlefield.Status{0: battlefield.StatusDead, 1: battlefield.StatusDead, 2: battlefield.StatusDead}, OutcomeDraw, "mutual_destruction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := outcomeField(t)
			for id, st := range tt.remove {
				bf.RemoveUnit(id, st)
			}
			r := DetermineOutcome(bf)
			assert.Equal(t, tt.want, r.Outcome)
			assert.Equal(t, tt.desc, r.Description)
			assert.Equal(t, 2, r.PlayerTotal, "records outlive removal")
			assert.Equal(t, 1, r.CivilianSaved)
		})
	}
}

func TestDetermineOutcome_CountsKills(t *testing.T) {
	bf := outcomeField(t)
	bf.Unit(0).Kills = 2
	bf.Unit(2).Kills = 1
	r := DetermineOutcome(bf)
	assert.Equal(t, 2, r.PlayerKills)
	assert.Equal(t, 1, r.HostileKills)
	assert.Contains(t, r.String(), "player=2/2 hostile=1/1 civilians=1/1")
}
