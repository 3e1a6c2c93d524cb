package battlefield

// Ground identifies the walking surface of a tile.
type Ground uint8

const (
	GroundGrass       Ground = iota // default open ground
	GroundGrassLong                 // tall grass
	GroundScrub                     // low bushes / bramble
	GroundMud                       // wet / churned ground
	GroundSand                      // sandy patches
	GroundDirt                      // packed earth path
	GroundTarmac                    // road surface
	GroundConcrete                  // building floor
	GroundWood                      // interior wood floor, upper storeys
	GroundWater                     // shallow water
	GroundRubbleLight               // scattered debris
	GroundRubbleHeavy               // dense rubble field
	GroundCrater                    // shell crater
	GroundVoid                      // no floor (open air or destroyed)
	groundCount                     // sentinel
)

var groundNames = [groundCount]string{
	"grass", "long_grass", "scrub", "mud", "sand", "dirt", "tarmac",
	"concrete", "wood", "water", "rubble_light", "rubble_heavy", "crater", "void",
}

func (g Ground) String() string {
	if g >= groundCount {
		return "unknown"
	}
	return groundNames[g]
}

// ParseGround maps a ground name back to its value.
func ParseGround(name string) (Ground, bool) {
	for i, n := range groundNames {
		if n == name {
			return Ground(i), true
		}
	}
	return 0, false
}

// groundTUCost returns the time-unit cost of stepping onto the ground type.
// 0 means there is nothing to stand on.
func groundTUCost(g Ground) int {
	switch g {
	case GroundGrass, GroundDirt, GroundTarmac, GroundConcrete, GroundWood:
		return 4
	case GroundGrassLong, GroundScrub, GroundSand, GroundRubbleLight, GroundCrater:
		return 6
	case GroundMud, GroundWater, GroundRubbleHeavy:
		return 8
	case GroundVoid:
		return 0
	default:
		return 4
	}
}

// ObjectType identifies the object sitting on a tile.
type ObjectType uint8

const (
	ObjectNone         ObjectType = iota // empty tile
	ObjectWall                           // structural wall
	ObjectWallDamaged                    // holed wall, still blocks movement
	ObjectWindow                         // see through, can't pass
	ObjectWindowBroken                   // passable frame
	ObjectDoor                           // door, see TileDoorOpen
	ObjectDoorBroken                     // destroyed door frame
	ObjectPillar                         // structural column
	ObjectTable                          // furniture
	ObjectCrate                          // wooden crate
	ObjectSandbag                        // chest-high sandbags
	ObjectLowWall                        // low masonry wall
	ObjectHedgerow                       // thick hedge
	ObjectBush                           // decorative bush
	ObjectTreeTrunk                      // tree base
	ObjectRubblePile                     // heaped debris
	ObjectFence                          // chain-link fence
	ObjectStairs                         // stairwell, allows level changes
	ObjectVehicleWreck                   // burnt-out hull
	objectCount                          // sentinel
)

var objectNames = [objectCount]string{
	"none", "wall", "wall_damaged", "window", "window_broken", "door", "door_broken",
	"pillar", "table", "crate", "sandbag", "low_wall", "hedgerow", "bush",
	"tree_trunk", "rubble_pile", "fence", "stairs", "vehicle_wreck",
}

func (o ObjectType) String() string {
	if o >= objectCount {
		return "unknown"
	}
	return objectNames[o]
}

// ParseObject maps an object name back to its value.
func ParseObject(name string) (ObjectType, bool) {
	for i, n := range objectNames {
		if n == name {
			return ObjectType(i), true
		}
	}
	return 0, false
}

// objectBlocksMovement reports whether the object can never be walked through.
// Doors are handled separately since they open.
func objectBlocksMovement(o ObjectType) bool {
	switch o {
	case ObjectWall, ObjectWallDamaged, ObjectWindow, ObjectPillar,
		ObjectCrate, ObjectTreeTrunk, ObjectVehicleWreck:
		return true
	default:
		return false
	}
}

// objectExtraTU returns the additional time-unit cost of entering a tile
// holding a passable object.
func objectExtraTU(o ObjectType) int {
	switch o {
	case ObjectTable, ObjectBush, ObjectWindowBroken:
		return 2
	case ObjectSandbag, ObjectLowWall, ObjectRubblePile, ObjectFence:
		return 4
	case ObjectHedgerow:
		return 6
	default:
		return 0
	}
}

// objectOpacity returns the 0–1 line-of-sight opacity of the object below its
// top edge. 1.0 = opaque.
func objectOpacity(o ObjectType) float64 {
	switch o {
	case ObjectWall, ObjectPillar, ObjectCrate, ObjectTreeTrunk,
		ObjectVehicleWreck, ObjectSandbag, ObjectLowWall:
		return 1.0
	case ObjectWallDamaged:
		return 0.7
	case ObjectHedgerow:
		return 0.5
	case ObjectBush:
		return 0.3
	case ObjectTable, ObjectRubblePile:
		return 0.4
	case ObjectFence:
		return 0.1
	default:
		return 0.0
	}
}

// objectHeight returns how tall the object stands as a fraction of a level.
func objectHeight(o ObjectType) float64 {
	switch o {
	case ObjectWall, ObjectWallDamaged, ObjectPillar, ObjectTreeTrunk, ObjectDoor:
		return 1.0
	case ObjectHedgerow:
		return 0.8
	case ObjectCrate, ObjectVehicleWreck:
		return 0.7
	case ObjectSandbag, ObjectLowWall:
		return 0.6
	case ObjectTable, ObjectBush, ObjectFence:
		return 0.45
	case ObjectRubblePile:
		return 0.3
	default:
		return 0.0
	}
}

// objectDefaultDurability returns the starting hit points for destructible
// objects. 0 means the object cannot be destroyed.
func objectDefaultDurability(o ObjectType) int {
	switch o {
	case ObjectWall:
		return 60
	case ObjectWallDamaged:
		return 30
	case ObjectWindow:
		return 5
	case ObjectDoor:
		return 20
	case ObjectPillar:
		return 80
	case ObjectTable:
		return 8
	case ObjectCrate:
		return 15
	case ObjectSandbag:
		return 40
	case ObjectLowWall:
		return 35
	case ObjectHedgerow:
		return 20
	case ObjectBush:
		return 4
	case ObjectFence:
		return 6
	case ObjectTreeTrunk:
		return 50
	case ObjectVehicleWreck:
		return 70
	default:
		return 0
	}
}

// objectDestroyedResult returns what an object turns into when its durability
// runs out, and the ground left behind (or the current ground if unchanged).
func objectDestroyedResult(o ObjectType, ground Ground) (ObjectType, Ground) {
	switch o {
	case ObjectWall:
		return ObjectWallDamaged, ground
	case ObjectWallDamaged, ObjectPillar, ObjectLowWall, ObjectSandbag:
		return ObjectRubblePile, ground
	case ObjectWindow:
		return ObjectWindowBroken, ground
	case ObjectDoor:
		return ObjectDoorBroken, ground
	case ObjectTable, ObjectCrate, ObjectFence:
		return ObjectNone, GroundRubbleLight
	case ObjectHedgerow:
		return ObjectNone, GroundScrub
	case ObjectBush:
		return ObjectNone, ground
	case ObjectTreeTrunk, ObjectVehicleWreck:
		return ObjectNone, GroundRubbleHeavy
	default:
		return o, ground
	}
}

// floorDurability is the damage an upper-storey floor absorbs before
// collapsing.
const floorDurability = 40
