// Package viewer draws a running battle with ebiten and turns mouse and
// keyboard input into battle commands. It is a presentation layer: all
// state lives in the battlescape.Game it wraps.
package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/battlescape"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
)

const (
	borderWidth     = 16
	defaultTileSize = 24
	hudHeight       = 18
)

// Options tunes the viewer.
type Options struct {
	TileSize int
	Faction  battlefield.Faction     // whose fog of war is drawn
	Copy     func(text string) error // clipboard sink for the state dump; nil disables C
	Log      zerolog.Logger
}

// Viewer implements ebiten.Game over a battle.
type Viewer struct {
	game *battlescape.Game
	opts Options

	level    int
	selected battlefield.UnitID
	hover    battlefield.Position
	hovering bool
	preview  pathfind.Path
	status   string

	autoRun   bool
	simSpeed  float64 // ticks per frame while auto-running
	tickAccum float64

	panel     *eventPanel
	prevKeys  map[ebiten.Key]bool
	prevLeft  bool
	prevRight bool
}

// New wraps g.
func New(g *battlescape.Game, opts Options) *Viewer {
	if opts.TileSize <= 0 {
		opts.TileSize = defaultTileSize
	}
	v := &Viewer{
		game:     g,
		opts:     opts,
		selected: battlefield.NoUnit,
		simSpeed: 1,
		panel:    newEventPanel(),
		prevKeys: make(map[ebiten.Key]bool),
	}
	v.panel.pull(g.Events())
	return v
}

// Size is the window size in pixels.
func (v *Viewer) Size() (int, int) {
	bf := v.game.Battlefield()
	w := borderWidth*2 + bf.Width*v.opts.TileSize + panelWidth
	h := borderWidth*2 + bf.Length*v.opts.TileSize + hudHeight
	return w, h
}

// Layout implements ebiten.Game.
func (v *Viewer) Layout(_, _ int) (int, int) { return v.Size() }

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	v.handleInput()

	if v.autoRun && !v.game.Ended() {
		v.tickAccum += v.simSpeed
		for v.tickAccum >= 1 {
			v.tickAccum--
			v.step()
		}
	}
	v.panel.pull(v.game.Events())
	return nil
}

// step advances the battle by one tick.
func (v *Viewer) step() {
	if v.game.Ended() {
		return
	}
	v.game.Tick()
	if v.selected != battlefield.NoUnit && !v.game.Battlefield().Placed(v.selected) {
		v.selected = battlefield.NoUnit
		v.preview = pathfind.Path{}
	}
}

// --- Input ---

// pressed reports a key going down this frame.
func (v *Viewer) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !v.prevKeys[k]
}

func (v *Viewer) handleInput() {
	cur := map[ebiten.Key]bool{}

	if v.pressed(cur, ebiten.KeySpace) {
		v.step()
	}
	if v.pressed(cur, ebiten.KeyR) {
		v.autoRun = !v.autoRun
	}
	if v.pressed(cur, ebiten.KeyE) {
		v.report(v.game.EndTurn(battlefield.FactionPlayer), "end turn")
	}
	if v.pressed(cur, ebiten.KeyPageUp) {
		v.changeLevel(1)
	}
	if v.pressed(cur, ebiten.KeyPageDown) {
		v.changeLevel(-1)
	}
	if v.pressed(cur, ebiten.KeyC) {
		v.copyDump()
	}
	if v.pressed(cur, ebiten.KeyTab) {
		v.opts.Faction = (v.opts.Faction + 1) % battlefield.FactionCount
	}
	if v.pressed(cur, ebiten.KeyK) {
		v.cycleStance()
	}
	if v.pressed(cur, ebiten.KeyG) && v.hovering {
		v.throwAt(v.hover)
	}

	// Speed: ,=slower .=faster
	if v.pressed(cur, ebiten.KeyComma) && v.simSpeed > 0.25 {
		v.simSpeed /= 2
	}
	if v.pressed(cur, ebiten.KeyPeriod) && v.simSpeed < 16 {
		v.simSpeed *= 2
	}

	mx, my := ebiten.CursorPosition()
	v.hover, v.hovering = v.tileAt(mx, my)
	v.updatePreview()

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !v.prevLeft && v.hovering {
		mode := pathfind.Walk
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			mode = pathfind.Run
		}
		v.click(v.hover, mode)
	}
	v.prevLeft = left

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !v.prevRight && v.hovering {
		mode := rules.ModeSnap
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			mode = rules.ModeAimed
		} else if ebiten.IsKeyPressed(ebiten.KeyControl) {
			mode = rules.ModeAuto
		}
		v.fireAt(v.hover, mode)
	}
	v.prevRight = right

	v.prevKeys = cur
}

// tileAt maps a screen pixel to a tile on the current level.
func (v *Viewer) tileAt(mx, my int) (battlefield.Position, bool) {
	ts := v.opts.TileSize
	x, y := mx-borderWidth, my-borderWidth-hudHeight
	if x < 0 || y < 0 {
		return battlefield.Position{}, false
	}
	p := battlefield.Pos(x/ts, y/ts, v.level)
	return p, v.game.Battlefield().InBounds(p)
}

func (v *Viewer) changeLevel(d int) {
	l := v.level + d
	if l >= 0 && l < v.game.Battlefield().Levels {
		v.level = l
	}
}

// click selects a player unit under p, or orders the selected one to move
// there.
func (v *Viewer) click(p battlefield.Position, mode pathfind.MoveMode) {
	bf := v.game.Battlefield()
	if u := bf.UnitAt(p); u != nil && u.Faction == battlefield.FactionPlayer {
		v.selected = u.ID
		v.status = fmt.Sprintf("selected %s (TU %d)", u.Name, u.Stats.TimeUnits)
		return
	}
	if v.selected == battlefield.NoUnit {
		return
	}
	v.report(v.game.RequestMove(v.selected, p, mode), "move")
}

func (v *Viewer) fireAt(p battlefield.Position, mode rules.FireMode) {
	if v.selected == battlefield.NoUnit {
		return
	}
	v.report(v.game.RequestFire(v.selected, p, mode), "fire "+string(mode))
}

func (v *Viewer) throwAt(p battlefield.Position) {
	if v.selected == battlefield.NoUnit {
		return
	}
	v.report(v.game.RequestThrow(v.selected, p, ""), "throw")
}

func (v *Viewer) cycleStance() {
	u := v.game.Battlefield().Unit(v.selected)
	if u == nil {
		return
	}
	next := (u.Stance + 1) % (battlefield.StanceProne + 1)
	v.report(v.game.RequestStance(v.selected, next), "stance "+next.String())
}

// report shows the result of a command in the HUD.
func (v *Viewer) report(err error, what string) {
	if err != nil {
		v.status = fmt.Sprintf("%s: %v", what, err)
		v.opts.Log.Debug().Err(err).Str("command", what).Msg("command rejected")
		return
	}
	v.status = what + " ok"
}

func (v *Viewer) updatePreview() {
	v.preview = pathfind.Path{}
	if !v.hovering || v.selected == battlefield.NoUnit || !v.game.AtIdle() {
		return
	}
	u := v.game.Battlefield().Unit(v.selected)
	if u == nil || u.Pos == v.hover {
		return
	}
	if path, ok := v.game.Pathfinder().PreviewPath(u, v.hover); ok {
		v.preview = path
	}
}

func (v *Viewer) copyDump() {
	if v.opts.Copy == nil {
		v.status = "clipboard unavailable"
		return
	}
	if err := v.opts.Copy(v.game.Dump()); err != nil {
		v.status = "copy failed: " + err.Error()
		v.opts.Log.Warn().Err(err).Msg("copying state dump")
		return
	}
	v.status = "state dump copied"
}

// --- Drawing ---

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	bf := v.game.Battlefield()
	ts := float32(v.opts.TileSize)
	ox, oy := float32(borderWidth), float32(borderWidth+hudHeight)

	for y := 0; y < bf.Length; y++ {
		for x := 0; x < bf.Width; x++ {
			t := bf.Tile(battlefield.Pos(x, y, v.level))
			px, py := ox+float32(x)*ts, oy+float32(y)*ts
			vector.FillRect(screen, px, py, ts, ts, tileColor(t, v.opts.Faction), false)
			if !t.Discovered.Has(v.opts.Faction) {
				continue
			}
			if t.Smoke > 0 {
				c := smokeColor
				c.A = smokeAlpha(t.Smoke)
				vector.FillRect(screen, px, py, ts, ts, c, false)
			}
			if t.Has(battlefield.TileOnFire) {
				vector.FillRect(screen, px+ts/4, py+ts/4, ts/2, ts/2, fireColor, false)
			}
			if !t.Visible.Has(v.opts.Faction) {
				vector.FillRect(screen, px, py, ts, ts, dimColor, false)
			}
			vector.StrokeRect(screen, px, py, ts, ts, 1, gridLineColor, false)
		}
	}

	for _, s := range v.preview.Steps {
		if s.To.Z != v.level {
			continue
		}
		cx, cy := ox+(float32(s.To.X)+.5)*ts, oy+(float32(s.To.Y)+.5)*ts
		vector.FillCircle(screen, cx, cy, ts/6, pathColor, true)
	}

	for _, u := range bf.Units() {
		if !bf.Placed(u.ID) || u.Pos.Z != v.level {
			continue
		}
		t := bf.Tile(u.Pos)
		if u.Faction != v.opts.Faction && !t.Visible.Has(v.opts.Faction) {
			continue
		}
		cx, cy := ox+(float32(u.Pos.X)+.5)*ts, oy+(float32(u.Pos.Y)+.5)*ts
		vector.FillCircle(screen, cx, cy, ts*.35, factionColors[u.Faction], true)
		off := u.Facing.Offset()
		vector.StrokeLine(screen, cx, cy, cx+float32(off.X)*ts*.45, cy+float32(off.Y)*ts*.45, 2, selectColor, true)
		if u.ID == v.selected {
			vector.StrokeCircle(screen, cx, cy, ts*.45, 2, selectColor, true)
		}
	}

	if p, ok := v.game.Projectile(); ok && p.Z == v.level {
		vector.FillCircle(screen, ox+(float32(p.X)+.5)*ts, oy+(float32(p.Y)+.5)*ts, ts/6, projectileCol, true)
	}

	ebitenutil.DebugPrintAt(screen, v.hud(), borderWidth, 0)
	w, h := v.Size()
	v.panel.draw(screen, v.game, w-panelWidth, h)
}

// hud is the status line above the map.
func (v *Viewer) hud() string {
	run := "paused"
	if v.autoRun {
		run = fmt.Sprintf("running x%g", v.simSpeed)
	}
	s := fmt.Sprintf("z=%d  view=%s  %s", v.level, v.opts.Faction, run)
	if v.hovering {
		s += "  " + v.hover.String()
	}
	if !v.preview.Empty() {
		s += fmt.Sprintf("  path %d TU", v.preview.Total)
	}
	if v.status != "" {
		s += "  | " + v.status
	}
	return s
}
