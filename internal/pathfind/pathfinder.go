// Package pathfind computes minimum time-unit routes over the battlefield.
package pathfind

import (
	"container/heap"
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

const instrumentationName = "github.com/Garsondee/Battlescape/internal/pathfind"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Costs are the fixed TU surcharges on top of terrain cost.
type Costs struct {
	DoorOpen int // entering a closed door tile
	Climb    int // each level gained
	Descend  int // each level lost
}

// DefaultCosts are used when a zero Costs is passed to New.
var DefaultCosts = Costs{DoorOpen: 4, Climb: 8, Descend: 2}

// Pathfinder is a pure query object over a battlefield. It keeps no state
// between searches.
type Pathfinder struct {
	bf       *battlefield.Battlefield
	costs    Costs
	searches metric.Int64Counter
}

// New creates a pathfinder. Metrics go to the global OTel meter (no-op
// unless the host installs a provider).
func New(bf *battlefield.Battlefield, costs Costs) *Pathfinder {
	if costs == (Costs{}) {
		costs = DefaultCosts
	}
	c, err := meter().Int64Counter(
		"pathfind.searches",
		metric.WithDescription("Path searches by result"),
	)
	if err != nil {
		c = noop.Int64Counter{}
	}
	return &Pathfinder{bf: bf, costs: costs, searches: c}
}

// Costs returns the surcharges in effect.
func (pf *Pathfinder) Costs() Costs { return pf.costs }

// StepCost is the edge function of the search: the TU cost for unit to move
// one tile from `from` in direction d. ok is false when the move is not
// possible at all.
func (pf *Pathfinder) StepCost(unit *battlefield.Unit, from battlefield.Position, d battlefield.Direction, mode MoveMode) (int, bool) {
	if pf.bf.StepBlocked(from, d) {
		return 0, false
	}
	to := from.Step(d)
	self := battlefield.NoUnit
	if unit != nil {
		self = unit.ID
	}
	if pf.bf.Occupied(to, self) {
		return 0, false
	}
	src := pf.bf.Tile(from)
	dst := pf.bf.Tile(to)

	base := dst.BaseTU()
	if base <= 0 {
		// Standing on top of something without a floor of its own.
		base = pf.bf.MinGroundCost()
	}
	cost := mode.scale(base) + int(src.EdgeCost[d])
	if dst.DoorClosed() {
		cost += pf.costs.DoorOpen
	}
	switch d {
	case battlefield.Up:
		cost += pf.costs.Climb
	case battlefield.Down:
		cost += pf.costs.Descend
	}
	return cost, true
}

// FindPath returns the cheapest route for unit from origin to dest, bounded
// by the unit's maximum TU. ok is false when no route fits the budget.
// Among equally cheap routes the one with the fewest direction changes wins.
func (pf *Pathfinder) FindPath(unit *battlefield.Unit, origin, dest battlefield.Position, mode MoveMode) (Path, bool) {
	budget := 0
	if unit != nil {
		budget = unit.Stats.MaxTimeUnits
	}
	p, ok := pf.search(unit, origin, dest, mode, budget)
	result := "found"
	if !ok {
		result = "unreachable"
	}
	pf.searches.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
	return p, ok
}

// PreviewPath shows the walking route from the unit's current tile. It runs
// the same search as FindPath and never spends TU.
func (pf *Pathfinder) PreviewPath(unit *battlefield.Unit, dest battlefield.Position) (Path, bool) {
	if unit == nil {
		return Path{}, false
	}
	return pf.FindPath(unit, unit.Pos, dest, Walk)
}

// --- A* ---

// noDir marks the start node, which has no incoming direction.
const noDir = battlefield.DirectionCount

type node struct {
	pos    battlefield.Position
	dir    battlefield.Direction // direction of the step into pos
	g      int
	turns  int
	h      int
	parent *node
	index  int // heap index
}

func (n *node) f() int { return n.g + n.h }

// openList orders by f, then fewer turns, then deeper nodes, then position
// and direction so that expansion order never depends on insertion order.
type openList []*node

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	a, b := ol[i], ol[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.turns != b.turns {
		return a.turns < b.turns
	}
	if a.h != b.h {
		return a.h < b.h
	}
	if a.pos != b.pos {
		return a.pos.Less(b.pos)
	}
	return a.dir < b.dir
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*node); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

type nodeKey struct {
	pos battlefield.Position
	dir battlefield.Direction
}

func (pf *Pathfinder) search(unit *battlefield.Unit, origin, dest battlefield.Position, mode MoveMode, budget int) (Path, bool) {
	bf := pf.bf
	if !bf.InBounds(origin) || !bf.Passable(dest) {
		return Path{}, false
	}
	self := battlefield.NoUnit
	if unit != nil {
		self = unit.ID
	}
	if bf.Occupied(dest, self) {
		return Path{}, false
	}
	if origin == dest {
		return Path{Mode: mode}, true
	}

	minStep := mode.scale(bf.MinGroundCost())
	heuristic := func(p battlefield.Position) int {
		d := battlefield.ChebyshevDistance(p, dest)
		if dz := absInt(p.Z - dest.Z); dz > d {
			d = dz
		}
		return d * minStep
	}

	start := &node{pos: origin, dir: noDir, h: heuristic(origin)}
	ol := &openList{start}
	heap.Init(ol)
	best := map[nodeKey]*node{{origin, noDir}: start}
	closed := make(map[nodeKey]bool)

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*node)
		k := nodeKey{cur.pos, cur.dir}
		if closed[k] {
			continue
		}
		if cur.pos == dest {
			return buildPath(cur, mode), true
		}
		closed[k] = true

		for d := battlefield.Direction(0); d < battlefield.DirectionCount; d++ {
			cost, ok := pf.StepCost(unit, cur.pos, d, mode)
			if !ok {
				continue
			}
			g := cur.g + cost
			if budget > 0 && g > budget {
				continue
			}
			next := cur.pos.Step(d)
			nk := nodeKey{next, d}
			if closed[nk] {
				continue
			}
			turns := cur.turns
			if cur.dir != noDir && cur.dir != d {
				turns++
			}
			if prev, ok := best[nk]; ok && (g > prev.g || (g == prev.g && turns >= prev.turns)) {
				continue
			}
			n := &node{pos: next, dir: d, g: g, turns: turns, h: heuristic(next), parent: cur}
			best[nk] = n
			heap.Push(ol, n)
		}
	}
	return Path{}, false
}

func buildPath(end *node, mode MoveMode) Path {
	var steps []Step
	for n := end; n.parent != nil; n = n.parent {
		steps = append(steps, Step{From: n.parent.pos, To: n.pos, Dir: n.dir, Cost: n.g - n.parent.g})
	}
	// Reverse
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Path{Mode: mode, Steps: steps, Total: end.g}
}

// --- Reach map ---

type reachItem struct {
	pos   battlefield.Position
	g     int
	index int
}

type reachQueue []*reachItem

func (q reachQueue) Len() int { return len(q) }
func (q reachQueue) Less(i, j int) bool {
	if q[i].g != q[j].g {
		return q[i].g < q[j].g
	}
	return q[i].pos.Less(q[j].pos)
}
func (q reachQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *reachQueue) Push(x interface{}) { it := x.(*reachItem); it.index = len(*q); *q = append(*q, it) }
func (q *reachQueue) Pop() interface{} {
	old := *q
	it := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return it
}

// Reachable runs a bounded Dijkstra from origin and returns the minimum TU
// cost of every tile the unit can reach within budget, origin included.
// It uses the same edge function as FindPath.
func (pf *Pathfinder) Reachable(unit *battlefield.Unit, origin battlefield.Position, mode MoveMode, budget int) map[battlefield.Position]int {
	dist := map[battlefield.Position]int{origin: 0}
	if !pf.bf.InBounds(origin) {
		return dist
	}
	q := &reachQueue{{pos: origin}}
	heap.Init(q)
	done := make(map[battlefield.Position]bool)
	for q.Len() > 0 {
		cur := heap.Pop(q).(*reachItem)
		if done[cur.pos] {
			continue
		}
		done[cur.pos] = true
		for d := battlefield.Direction(0); d < battlefield.DirectionCount; d++ {
			cost, ok := pf.StepCost(unit, cur.pos, d, mode)
			if !ok {
				continue
			}
			g := cur.g + cost
			if g > budget {
				continue
			}
			next := cur.pos.Step(d)
			if prev, ok := dist[next]; ok && g >= prev {
				continue
			}
			dist[next] = g
			heap.Push(q, &reachItem{pos: next, g: g})
		}
	}
	return dist
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
