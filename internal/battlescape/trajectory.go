package battlescape

import (
	"math"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

const (
	traceSamplesPerTile = 4
	aimHeight           = 0.5 // body centre above the tile's base
)

type traceMode uint8

const (
	traceShot  traceMode = iota // flat fire: stopped by units, solid objects and floors
	traceThrow                  // lobbed: clears units and low cover
)

// trace follows a projectile from the eye of a unit standing at from toward
// aim. It returns the tiles flown over in order, ending at the impact tile,
// and the unit struck if any. ignore is passed through (the target of a
// missed shot).
func (g *Game) trace(from battlefield.Position, stance battlefield.Stance, aim battlefield.Position, self, ignore battlefield.UnitID, mode traceMode) ([]battlefield.Position, battlefield.UnitID) {
	ax := float64(from.X) + 0.5
	ay := float64(from.Y) + 0.5
	ah := float64(from.Z) + stance.Profile().EyeHeight
	dx := float64(aim.X) + 0.5 - ax
	dy := float64(aim.Y) + 0.5 - ay
	dh := float64(aim.Z) + aimHeight - ah

	n := int(math.Ceil(math.Sqrt(dx*dx+dy*dy+dh*dh) * traceSamplesPerTile))
	var tiles []battlefield.Position
	prev := from
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		h := ah + dh*t
		cur := battlefield.Position{
			X: int(math.Floor(ax + dx*t)),
			Y: int(math.Floor(ay + dy*t)),
			Z: int(math.Floor(h)),
		}
		if i == n {
			cur = aim
		}
		if cur == prev {
			continue
		}
		tile := g.bf.Tile(cur)
		if tile == nil {
			break
		}
		if cur.Z != prev.Z {
			upper := cur
			if prev.Z > cur.Z {
				upper = prev
			}
			if g.bf.Tile(upper).HasFloor() {
				break
			}
		}
		if mode == traceThrow {
			if tile.ObstacleHeight() >= 1 && tile.ObjectOpacity() >= 1 {
				break
			}
			tiles = append(tiles, cur)
			prev = cur
			continue
		}

		tiles = append(tiles, cur)
		prev = cur
		if occ := tile.Occupant; occ != battlefield.NoUnit && occ != self && occ != ignore {
			return tiles, occ
		}
		if h-float64(cur.Z) < tile.ObstacleHeight() && tile.ObjectOpacity() >= 1 {
			return tiles, battlefield.NoUnit
		}
	}
	if len(tiles) == 0 {
		// Blocked at the muzzle: it lands where it started.
		tiles = append(tiles, from)
	}
	return tiles, battlefield.NoUnit
}

// deflect moves a missed aim point up to spread tiles off the target on the
// same level, staying inside the battlefield and never on the target.
func (g *Game) deflect(target battlefield.Position, spread int) battlefield.Position {
	if spread < 1 {
		spread = 1
	}
	dx := g.rng.Intn(2*spread+1) - spread
	dy := g.rng.Intn(2*spread+1) - spread
	if dx == 0 && dy == 0 {
		dx = spread
		if g.rng.Intn(2) == 0 {
			dx = -spread
		}
	}
	p := battlefield.Position{X: target.X + dx, Y: target.Y + dy, Z: target.Z}
	p.X = clampInt(p.X, 0, g.bf.Width-1)
	p.Y = clampInt(p.Y, 0, g.bf.Length-1)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
