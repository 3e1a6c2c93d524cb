package battlescape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

func sampleLog() *EventLog {
	el := NewEventLog()
	el.Add(1, PhaseStarted{Faction: battlefield.FactionPlayer, Turn: 1})
	el.Add(3, UnitMoved{Unit: 2, From: pos(4, 5, 0), To: pos(5, 5, 0)})
	el.Add(4, UnitMoved{Unit: 7, From: pos(1, 1, 0), To: pos(1, 2, 0)})
	el.Add(9, UnitDied{Unit: 7, Killer: 2})
	return el
}

func TestEntry_StringIsFixedWidth(t *testing.T) {
	e := sampleLog().Entries()[1]
	assert.Equal(t, "[T=003] #2   unit_moved        (4,5,0) -> (5,5,0)", e.String())

	phase := sampleLog().Entries()[0]
	assert.True(t, strings.HasPrefix(phase.String(), "[T=001] --   phase_started"))
}

func TestEventLog_Queries(t *testing.T) {
	el := sampleLog()

	assert.Equal(t, 4, el.Len())
	assert.Equal(t, 2, el.Count("unit_moved"))
	assert.Len(t, el.Filter(""), 4)
	assert.Len(t, el.FilterUnit(7), 2)
	assert.Len(t, el.FilterTickRange(3, 4), 2)
	assert.Len(t, el.Since(2), 2)
	assert.Nil(t, el.Since(10))

	last, ok := el.LastOf("unit_moved")
	require.True(t, ok)
	assert.Equal(t, battlefield.UnitID(7), last.Event.Subject())
	_, ok = el.LastOf("explosion")
	assert.False(t, ok)

	assert.True(t, el.HasEntry("unit_died", "killed by #2"))
	assert.False(t, el.HasEntry("unit_died", "killed by #3"))
	assert.Equal(t, 2, strings.Count(el.FormatRange(3, 4), "\n"))
}

func TestEventLog_DigestTracksContent(t *testing.T) {
	a, b := sampleLog(), sampleLog()
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Len(t, a.Digest(), 16)

	b.Add(10, UnitMoved{Unit: 2, From: pos(5, 5, 0), To: pos(6, 5, 0)})
	assert.NotEqual(t, a.Digest(), b.Digest())
}
