package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	rs := Default()
	require.NotEmpty(t, rs.WeaponIDs())

	rifle, ok := rs.Weapon("rifle")
	require.True(t, ok)
	assert.Equal(t, KindFirearm, rifle.Kind)
	assert.Equal(t, 3, rifle.AutoShots)
	assert.False(t, rifle.Explosive())

	gren, ok := rs.Weapon("grenade")
	require.True(t, ok)
	assert.True(t, gren.Explosive())

	rod, ok := rs.Weapon("stun_rod")
	require.True(t, ok)
	assert.False(t, rod.Explosive(), "melee stun is a direct hit")
}

func TestTemplates_FoldArmourAndClips(t *testing.T) {
	tpl := Default().Templates()
	trooper, ok := tpl["trooper"]
	require.True(t, ok)
	assert.Equal(t, 4, trooper.Stats.Armor)
	require.NotEmpty(t, trooper.Inventory)
	assert.Equal(t, "rifle", trooper.Inventory[0].RuleID)
	assert.Equal(t, 20, trooper.Inventory[0].Ammo)
	assert.Equal(t, 0, trooper.Inventory[1].Ammo, "grenades carry no clip")
}

func TestParse_Defaults(t *testing.T) {
	rs, err := Parse([]byte(`
weapons:
  - {id: smg, kind: firearm, power: 20, range: 10, accuracy: {auto: 40}, tu_percent: {auto: 30}}
`))
	require.NoError(t, err)
	smg, _ := rs.Weapon("smg")
	assert.Equal(t, DamageKinetic, smg.DamageType)
	assert.Equal(t, 3, smg.AutoShots)
	assert.Equal(t, 4, smg.FlightSpeed)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":       "weapons: [",
		"kind":         "weapons: [{id: x, kind: laser, range: 3}]",
		"no mode":      "weapons: [{id: x, kind: firearm, range: 3}]",
		"radius":       "weapons: [{id: x, kind: grenade, damage_type: he, range: 3, tu_percent: {throw: 20}}]",
		"range":        "weapons: [{id: x, kind: melee}]",
		"duplicate":    "weapons: [{id: x, kind: melee, range: 1}, {id: x, kind: melee, range: 1}]",
		"unit armour":  "units: [{id: u, armour: tin, stats: {max_time_units: 10}}]",
		"unit item":    "units: [{id: u, stats: {max_time_units: 10}, inventory: [{rule: spoon}]}]",
		"unit tu":      "units: [{id: u}]",
		"grenade cost": "weapons: [{id: x, kind: grenade, range: 3}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, defaultRules, 0o600))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rs.Units, len(Default().Units))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
