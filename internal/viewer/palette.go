package viewer

import (
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

var groundColors = map[battlefield.Ground]color.RGBA{
	battlefield.GroundGrass:       {R: 58, G: 82, B: 50, A: 255},
	battlefield.GroundGrassLong:   {R: 70, G: 98, B: 52, A: 255},
	battlefield.GroundScrub:       colornames.Darkolivegreen,
	battlefield.GroundMud:         {R: 78, G: 60, B: 42, A: 255},
	battlefield.GroundSand:        colornames.Tan,
	battlefield.GroundDirt:        colornames.Sienna,
	battlefield.GroundTarmac:      colornames.Dimgray,
	battlefield.GroundConcrete:    colornames.Gray,
	battlefield.GroundWood:        colornames.Saddlebrown,
	battlefield.GroundWater:       colornames.Steelblue,
	battlefield.GroundRubbleLight: colornames.Rosybrown,
	battlefield.GroundRubbleHeavy: colornames.Peru,
	battlefield.GroundCrater:      {R: 52, G: 44, B: 36, A: 255},
	battlefield.GroundVoid:        {R: 12, G: 14, B: 12, A: 255},
}

var objectColors = map[battlefield.ObjectType]color.RGBA{
	battlefield.ObjectWall:         colornames.Lightslategray,
	battlefield.ObjectWallDamaged:  colornames.Slategray,
	battlefield.ObjectWindow:       colornames.Lightblue,
	battlefield.ObjectWindowBroken: colornames.Cadetblue,
	battlefield.ObjectDoor:         colornames.Goldenrod,
	battlefield.ObjectDoorBroken:   colornames.Darkgoldenrod,
	battlefield.ObjectPillar:       colornames.Silver,
	battlefield.ObjectTable:        colornames.Burlywood,
	battlefield.ObjectCrate:        colornames.Chocolate,
	battlefield.ObjectSandbag:      colornames.Khaki,
	battlefield.ObjectLowWall:      colornames.Darkgray,
	battlefield.ObjectHedgerow:     colornames.Darkgreen,
	battlefield.ObjectBush:         colornames.Olivedrab,
	battlefield.ObjectTreeTrunk:    colornames.Brown,
	battlefield.ObjectRubblePile:   colornames.Rosybrown,
	battlefield.ObjectFence:        colornames.Lightgray,
	battlefield.ObjectStairs:       colornames.Wheat,
	battlefield.ObjectVehicleWreck: colornames.Darkslategray,
}

var factionColors = [battlefield.FactionCount]color.RGBA{
	battlefield.FactionPlayer:  {R: 210, G: 70, B: 70, A: 255},
	battlefield.FactionHostile: {R: 70, G: 110, B: 210, A: 255},
	battlefield.FactionNeutral: colornames.Gold,
}

var (
	fogColor       = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	dimColor       = color.RGBA{A: 110}
	smokeColor     = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	fireColor      = colornames.Orangered
	pathColor      = colornames.Yellow
	selectColor    = colornames.White
	projectileCol  = colornames.Orange
	gridLineColor  = color.RGBA{R: 0, G: 0, B: 0, A: 60}
	panelBgColor   = color.RGBA{R: 10, G: 12, B: 10, A: 248}
	panelEdgeColor = color.RGBA{R: 50, G: 70, B: 50, A: 255}
)

// tileColor is the base colour of a tile as the viewing faction knows it.
// Undiscovered tiles are fog; discovered tiles out of sight are dimmed by the
// caller.
func tileColor(t *battlefield.Tile, viewer battlefield.Faction) color.RGBA {
	if !t.Discovered.Has(viewer) {
		return fogColor
	}
	if c, ok := objectColors[t.Object]; ok {
		if t.IsDoor() && t.Has(battlefield.TileDoorOpen) {
			return colornames.Palegoldenrod
		}
		return c
	}
	if c, ok := groundColors[t.Ground]; ok {
		return c
	}
	return groundColors[battlefield.GroundGrass]
}

// smokeAlpha maps a smoke density to an overlay alpha.
func smokeAlpha(density int) uint8 {
	if density <= 0 {
		return 0
	}
	if density > battlefield.MaxSmoke {
		density = battlefield.MaxSmoke
	}
	return uint8(40 + density*180/battlefield.MaxSmoke)
}
