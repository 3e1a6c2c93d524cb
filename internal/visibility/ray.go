package visibility

import (
	"math"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

const (
	// samplesPerTile is the ray-march resolution.
	samplesPerTile = 4
	// subSampleOffset moves the extra eye points toward the tile edges.
	subSampleOffset = 0.3
	// targetHeight is where rays aim inside the target tile.
	targetHeight = 0.5
	// opaque is the accumulated opacity at which a ray is stopped.
	opaque = 1.0
)

// point is a position in tile space: x, y in tiles, h in levels.
type point struct{ x, y, h float64 }

// eyePoint is where an observer standing at p in stance s looks from.
func eyePoint(p battlefield.Position, s battlefield.Stance) point {
	return point{float64(p.X) + 0.5, float64(p.Y) + 0.5, float64(p.Z) + s.Profile().EyeHeight}
}

// targetPoint is the centre of a tile at body height.
func targetPoint(p battlefield.Position) point {
	return point{float64(p.X) + 0.5, float64(p.Y) + 0.5, float64(p.Z) + targetHeight}
}

// subSamples returns the centre eye plus four inset lateral offsets.
func subSamples(eye point) [5]point {
	return [5]point{
		eye,
		{eye.x - subSampleOffset, eye.y, eye.h},
		{eye.x + subSampleOffset, eye.y, eye.h},
		{eye.x, eye.y - subSampleOffset, eye.h},
		{eye.x, eye.y + subSampleOffset, eye.h},
	}
}

// traceOpacity marches a ray from a to b and returns the opacity it
// accumulates between the origin tile and the target tile, both excluded.
// It stops early once the ray is opaque.
func traceOpacity(bf *battlefield.Battlefield, a, b point, origin, target battlefield.Position) float64 {
	dx, dy, dh := b.x-a.x, b.y-a.y, b.h-a.h
	length := math.Sqrt(dx*dx + dy*dy + dh*dh)
	n := int(math.Ceil(length * samplesPerTile))
	if n < 1 {
		return 0
	}

	total := 0.0
	prev := origin
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		x, y, h := a.x+dx*t, a.y+dy*t, a.h+dh*t
		cur := battlefield.Position{X: int(math.Floor(x)), Y: int(math.Floor(y)), Z: int(math.Floor(h))}
		if cur == prev {
			continue
		}
		// Crossing into another level means passing through a floor.
		if cur.Z != prev.Z {
			upper := cur
			if prev.Z > cur.Z {
				upper = battlefield.Position{X: cur.X, Y: cur.Y, Z: prev.Z}
			}
			if ft := bf.Tile(upper); ft != nil && ft.HasFloor() {
				return opaque
			}
		}
		if cur == target {
			break
		}
		prev = cur
		if cur == origin {
			continue
		}
		tile := bf.Tile(cur)
		if tile == nil {
			return opaque
		}
		local := h - float64(cur.Z)
		if local < tile.ObstacleHeight() {
			total += tile.ObjectOpacity()
		}
		total += tile.SmokeOpacity()
		if total >= opaque {
			return opaque
		}
	}
	return total
}

// bestOpacity casts the sub-sampled rays from an eye to a target tile and
// returns the lowest opacity among them.
func bestOpacity(bf *battlefield.Battlefield, eye point, origin, target battlefield.Position) float64 {
	best := opaque
	tp := targetPoint(target)
	for _, e := range subSamples(eye) {
		op := traceOpacity(bf, e, tp, origin, target)
		if op < best {
			best = op
			if best == 0 {
				break
			}
		}
	}
	return best
}

// inCone reports whether target lies within a facing cone of fovDeg degrees.
func inCone(from, to battlefield.Position, facing battlefield.Direction, fovDeg float64) bool {
	if fovDeg >= 360 {
		return true
	}
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	if math.Abs(dx) < 1e-9 && math.Abs(dy) < 1e-9 {
		return true
	}
	angleToTarget := math.Atan2(dy, dx)
	diff := normalizeAngle(angleToTarget - facing.Angle())
	half := fovDeg * math.Pi / 360.0
	return diff >= -half && diff <= half
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
