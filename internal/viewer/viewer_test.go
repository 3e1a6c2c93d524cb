package viewer

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/battlescape"
	"github.com/Garsondee/Battlescape/internal/pathfind"
)

func newViewer(t *testing.T, opts Options) (*Viewer, *battlescape.Game) {
	t.Helper()
	g, err := battlescape.New(
		battlescape.WithSize(12, 10, 2),
		battlescape.WithPlayer("Alvarez", "trooper", battlefield.Pos(1, 1, 0)),
		battlescape.WithHostile("Sectoid", "sectoid", battlefield.Pos(10, 8, 0)),
	)
	require.NoError(t, err)
	opts.Log = zerolog.Nop()
	return New(g, opts), g
}

func TestEventPanel_KeepsNewestEntries(t *testing.T) {
	p := newEventPanel()
	for i := 0; i < panelEntries+5; i++ {
		p.add(battlescape.Entry{Seq: i, Tick: i})
	}
	got := p.recent()
	require.Len(t, got, panelEntries)
	assert.Equal(t, 5, got[0].Seq)
	assert.Equal(t, panelEntries+4, got[len(got)-1].Seq)
}

func TestEventPanel_PullsOnlyNewEvents(t *testing.T) {
	v, g := newViewer(t, Options{})
	before := len(v.panel.recent())
	assert.Equal(t, g.Events().Len(), before)

	v.panel.pull(g.Events())
	assert.Len(t, v.panel.recent(), before, "nothing new to pull")

	require.NoError(t, g.RequestTurn(0, battlefield.East))
	g.RunUntil(func(g *battlescape.Game) bool { return g.AtIdle() }, 50)
	v.panel.pull(g.Events())
	last := v.panel.recent()[len(v.panel.recent())-1]
	assert.Equal(t, "unit_turned", last.Event.Name())
}

func TestTileColor_FogAndDoors(t *testing.T) {
	tile := &battlefield.Tile{Ground: battlefield.GroundConcrete}
	assert.Equal(t, fogColor, tileColor(tile, battlefield.FactionPlayer))

	tile.Discovered = tile.Discovered.With(battlefield.FactionPlayer)
	assert.Equal(t, colornames.Gray, tileColor(tile, battlefield.FactionPlayer))
	assert.Equal(t, fogColor, tileColor(tile, battlefield.FactionHostile))

	tile.Object = battlefield.ObjectDoor
	assert.Equal(t, colornames.Goldenrod, tileColor(tile, battlefield.FactionPlayer))
	tile.Flags |= battlefield.TileDoorOpen
	assert.Equal(t, colornames.Palegoldenrod, tileColor(tile, battlefield.FactionPlayer))
}

func TestSmokeAlpha(t *testing.T) {
	assert.Zero(t, smokeAlpha(0))
	assert.Less(t, smokeAlpha(1), smokeAlpha(battlefield.MaxSmoke))
	assert.Equal(t, smokeAlpha(battlefield.MaxSmoke), smokeAlpha(battlefield.MaxSmoke+4))
}

func TestTileAt_MapsPixelsOnCurrentLevel(t *testing.T) {
	v, _ := newViewer(t, Options{TileSize: 10})

	p, ok := v.tileAt(borderWidth+25, borderWidth+hudHeight+5)
	require.True(t, ok)
	assert.Equal(t, battlefield.Pos(2, 0, 0), p)

	_, ok = v.tileAt(0, 0)
	assert.False(t, ok)
	_, ok = v.tileAt(borderWidth+10*12+1, borderWidth+hudHeight)
	assert.False(t, ok, "right of the map")

	v.changeLevel(1)
	p, ok = v.tileAt(borderWidth+25, borderWidth+hudHeight+5)
	require.True(t, ok)
	assert.Equal(t, 1, p.Z)
	v.changeLevel(1)
	assert.Equal(t, 1, v.level, "no level above the top")
}

func TestClick_SelectsThenMoves(t *testing.T) {
	v, g := newViewer(t, Options{})

	v.click(battlefield.Pos(5, 5, 0), pathfind.Walk)
	assert.Equal(t, battlefield.NoUnit, v.selected, "nothing selected yet")

	v.click(battlefield.Pos(1, 1, 0), pathfind.Walk)
	assert.Equal(t, battlefield.UnitID(0), v.selected)

	v.hover, v.hovering = battlefield.Pos(3, 1, 0), true
	v.updatePreview()
	assert.Equal(t, 2, v.preview.Len())

	v.click(battlefield.Pos(3, 1, 0), pathfind.Walk)
	assert.Equal(t, "move ok", v.status)
	g.RunUntil(func(g *battlescape.Game) bool { return g.AtIdle() }, 50)
	assert.Equal(t, battlefield.Pos(3, 1, 0), g.Battlefield().Unit(0).Pos)
}

func TestClick_RejectionShownInStatus(t *testing.T) {
	v, _ := newViewer(t, Options{})
	v.selected = 0
	v.fireAt(battlefield.Pos(1, 1, 0), "snap")
	assert.Contains(t, v.status, "fire snap:")
}

func TestCopyDump(t *testing.T) {
	var copied string
	v, g := newViewer(t, Options{Copy: func(s string) error {
		copied = s
		return nil
	}})
	v.copyDump()
	assert.Equal(t, g.Dump(), copied)
	assert.Equal(t, "state dump copied", v.status)

	v.opts.Copy = func(string) error { return errors.New("no display") }
	v.copyDump()
	assert.Equal(t, "copy failed: no display", v.status)

	v.opts.Copy = nil
	v.copyDump()
	assert.Equal(t, "clipboard unavailable", v.status)
}

func TestSize_IncludesPanel(t *testing.T) {
	v, _ := newViewer(t, Options{TileSize: 20})
	w, h := v.Size()
	assert.Equal(t, borderWidth*2+12*20+panelWidth, w)
	assert.Equal(t, borderWidth*2+10*20+hudHeight, h)
}
