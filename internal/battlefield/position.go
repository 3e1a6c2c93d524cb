package battlefield

import (
	"fmt"
	"math"
)

// Position is a tile coordinate. Z is the level, 0 = ground.
type Position struct {
	X, Y, Z int
}

// Pos is shorthand for Position{x, y, z}.
func Pos(x, y, z int) Position { return Position{X: x, Y: y, Z: z} }

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Step returns the neighbouring position in direction d.
func (p Position) Step(d Direction) Position {
	o := d.Offset()
	return Position{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Less orders positions by level, then row, then column. Used wherever a
// stable iteration order over positions is required.
func (p Position) Less(q Position) bool {
	if p.Z != q.Z {
		return p.Z < q.Z
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// ChebyshevDistance is the 2D king-move distance, ignoring level.
func ChebyshevDistance(a, b Position) int {
	dx := absInt(a.X - b.X)
	dy := absInt(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// TileDistance is the Chebyshev distance counting levels too: the number
// of king moves in three dimensions.
func TileDistance(a, b Position) int {
	d := ChebyshevDistance(a, b)
	if dz := absInt(a.Z - b.Z); dz > d {
		return dz
	}
	return d
}

// Distance3D is the euclidean distance in tile units. One level counts as
// one tile.
func Distance3D(a, b Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance2D is the euclidean distance on the ground plane.
func Distance2D(a, b Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// --- Directions ---

// Direction is one of the eight lateral compass directions or Up/Down.
// North is -Y.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
	Up
	Down
	DirectionCount // sentinel
)

// LateralDirections lists the eight horizontal directions in compass order.
var LateralDirections = [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionOffsets = [DirectionCount]Position{
	North:     {X: 0, Y: -1},
	NorthEast: {X: 1, Y: -1},
	East:      {X: 1, Y: 0},
	SouthEast: {X: 1, Y: 1},
	South:     {X: 0, Y: 1},
	SouthWest: {X: -1, Y: 1},
	West:      {X: -1, Y: 0},
	NorthWest: {X: -1, Y: -1},
	Up:        {Z: 1},
	Down:      {Z: -1},
}

// Offset returns the coordinate delta for one step in d.
func (d Direction) Offset() Position {
	if d >= DirectionCount {
		return Position{}
	}
	return directionOffsets[d]
}

// Lateral reports whether d is one of the eight horizontal directions.
func (d Direction) Lateral() bool { return d < Up }

// Diagonal reports whether d is a lateral diagonal.
func (d Direction) Diagonal() bool { return d.Lateral() && d%2 == 1 }

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return (d + 4) % 8
	}
}

// Angle returns the heading of a lateral direction in radians, screen
// convention (0 = east, pi/2 = south).
func (d Direction) Angle() float64 {
	o := d.Offset()
	return math.Atan2(float64(o.Y), float64(o.X))
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case East:
		return "E"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case West:
		return "W"
	case NorthWest:
		return "NW"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "?"
	}
}

// DirectionTo returns the lateral direction that best points from a toward b.
// Returns the zero direction (North) when a and b share a column.
func DirectionTo(a, b Position) Direction {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return North
	}
	angle := math.Atan2(float64(dy), float64(dx)) // 0 = east
	// Rotate so that north is 0 and step clockwise in eighths.
	octant := int(math.Round((angle+math.Pi/2)/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return Direction(octant)
}

// RotationSteps returns the signed number of 45° steps to turn from a to b,
// in [-3, 4]. Positive is clockwise.
func RotationSteps(from, to Direction) int {
	diff := (int(to) - int(from) + 8) % 8
	if diff > 4 {
		diff -= 8
	}
	return diff
}
