package viewer

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/battlescape"
)

const (
	panelWidth    = 360
	panelEntries  = 80
	panelLineH    = 14
	panelHeaderH  = 48
	panelHighlite = 3 // latest entries drawn on a highlight row
)

// eventPanel is a ring buffer of recent battle events shown beside the map.
type eventPanel struct {
	entries []battlescape.Entry
	head    int
	count   int
	next    int // first event sequence number not yet pulled
}

func newEventPanel() *eventPanel {
	return &eventPanel{entries: make([]battlescape.Entry, panelEntries)}
}

// pull copies events the panel has not seen from the log.
func (p *eventPanel) pull(log *battlescape.EventLog) {
	for _, e := range log.Since(p.next) {
		p.add(e)
		p.next = e.Seq + 1
	}
}

func (p *eventPanel) add(e battlescape.Entry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % len(p.entries)
	if p.count < len(p.entries) {
		p.count++
	}
}

// recent returns buffered entries oldest first.
func (p *eventPanel) recent() []battlescape.Entry {
	out := make([]battlescape.Entry, p.count)
	for i := 0; i < p.count; i++ {
		out[i] = p.entries[(p.head-p.count+i+len(p.entries))%len(p.entries)]
	}
	return out
}

func (p *eventPanel) draw(screen *ebiten.Image, g *battlescape.Game, x, h int) {
	vector.FillRect(screen, float32(x), 0, panelWidth, float32(h), panelBgColor, false)
	vector.StrokeLine(screen, float32(x), 0, float32(x), float32(h), 1, panelEdgeColor, false)

	status := fmt.Sprintf("turn %d  %s phase  tick %d", g.Turn(), g.Phase(), g.Ticks())
	if g.Ended() {
		status = "battle over: " + g.Outcome().Outcome.String()
	}
	ebitenutil.DebugPrintAt(screen, status, x+8, 2)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("stack %v", g.Stack()), x+8, 18)
	vector.StrokeLine(screen, float32(x), panelHeaderH-10, float32(x+panelWidth), panelHeaderH-10, 1, panelEdgeColor, false)

	entries := p.recent()
	if fit := (h - panelHeaderH) / panelLineH; len(entries) > fit {
		entries = entries[len(entries)-fit:]
	}
	y := panelHeaderH
	for i, e := range entries {
		if i >= len(entries)-panelHighlite {
			vector.FillRect(screen, float32(x+2), float32(y), panelWidth-4, panelLineH, panelEdgeColor, false)
		}
		if id := e.Event.Subject(); id != battlefield.NoUnit {
			if u := g.Battlefield().Unit(id); u != nil {
				vector.FillRect(screen, float32(x+5), float32(y+4), 3, 6, factionColors[u.Faction], false)
			}
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d %-16s %s", e.Tick, e.Event.Name(), e.Event.Detail()), x+12, y)
		y += panelLineH
	}
}
