package battlefield

// MaxSmoke is the densest smoke a tile can hold.
const MaxSmoke = 15

// TileFlags is a bitfield for per-tile state.
type TileFlags uint8

const (
	TileFloor     TileFlags = 1 << iota // has a floor to stand on
	TileDoorOpen                        // door object is open
	TileLocked                          // door cannot be opened
	TileOnFire                          // burning; lights the tile
	TileDestroyed                       // terrain was destroyed by an explosion
)

// FactionMask holds one bit per faction.
type FactionMask uint8

// Has reports whether f's bit is set.
func (m FactionMask) Has(f Faction) bool { return m&(1<<f) != 0 }

// With returns m with f's bit set.
func (m FactionMask) With(f Faction) FactionMask { return m | 1<<f }

// Without returns m with f's bit cleared.
func (m FactionMask) Without(f Faction) FactionMask { return m &^ (1 << f) }

// Tile is one cell of the battlefield. Tiles live in the Battlefield arena
// for the whole battle and are never freed individually.
type Tile struct {
	Pos        Position
	Ground     Ground
	Object     ObjectType
	Flags      TileFlags
	Smoke      int // 0..MaxSmoke
	Fire       int // turns of fire remaining
	Durability int // object hit points
	FloorHP    int // upper-storey floor hit points

	// EdgeCost is extra TU charged for leaving the tile in a direction.
	EdgeCost [DirectionCount]uint8
	// EdgeBlocked has bit d set when the tile cannot be left in direction d
	// (thin walls, sealed hatches).
	EdgeBlocked uint16

	Occupant   UnitID      // NoUnit when empty; back-reference only
	Discovered FactionMask // ever seen by the faction
	Visible    FactionMask // seen by the faction since the last recompute

	Items []Item // dropped equipment
}

// Has reports whether all bits of f are set.
func (t *Tile) Has(f TileFlags) bool { return t.Flags&f == f }

// IsDoor reports whether the tile holds an intact door.
func (t *Tile) IsDoor() bool { return t.Object == ObjectDoor }

// DoorClosed reports whether an intact door on the tile is shut.
func (t *Tile) DoorClosed() bool { return t.IsDoor() && !t.Has(TileDoorOpen) }

// IsStairs reports whether units can change level from this tile.
func (t *Tile) IsStairs() bool { return t.Object == ObjectStairs }

// Blocking reports whether the tile can never be entered on foot. Closed
// doors are not blocking unless locked.
func (t *Tile) Blocking() bool {
	if objectBlocksMovement(t.Object) {
		return true
	}
	if t.IsDoor() && t.Has(TileLocked) && !t.Has(TileDoorOpen) {
		return true
	}
	return false
}

// HasFloor reports whether the tile has its own floor.
func (t *Tile) HasFloor() bool {
	return t.Has(TileFloor) && t.Ground != GroundVoid
}

// BaseTU returns the terrain TU cost of stepping onto the tile, not
// including door or edge costs. 0 means there is nothing to stand on.
func (t *Tile) BaseTU() int {
	if t.IsStairs() {
		return 4
	}
	c := groundTUCost(t.Ground)
	if c == 0 {
		return 0
	}
	return c + objectExtraTU(t.Object)
}

// ObstacleHeight is the top of the object as a fraction of the level.
func (t *Tile) ObstacleHeight() float64 {
	if t.IsDoor() && t.Has(TileDoorOpen) {
		return 0
	}
	return objectHeight(t.Object)
}

// ObjectOpacity is the line-of-sight opacity below ObstacleHeight.
func (t *Tile) ObjectOpacity() float64 {
	if t.IsDoor() {
		if t.Has(TileDoorOpen) {
			return 0
		}
		return 1
	}
	return objectOpacity(t.Object)
}

// SmokeOpacity is the opacity added by smoke when a ray crosses the tile.
// Ten or more density units block sight on their own.
func (t *Tile) SmokeOpacity() float64 {
	if t.Smoke <= 0 {
		return 0
	}
	op := float64(t.Smoke) / 10.0
	if op > 1 {
		op = 1
	}
	return op
}

// Lit reports whether the tile is illuminated regardless of daylight.
func (t *Tile) Lit() bool { return t.Has(TileOnFire) }

// EdgeOpen reports whether the tile may be left in direction d.
func (t *Tile) EdgeOpen(d Direction) bool {
	return t.EdgeBlocked&(1<<d) == 0
}

// BlockEdge seals the tile edge in direction d.
func (t *Tile) BlockEdge(d Direction) { t.EdgeBlocked |= 1 << d }
