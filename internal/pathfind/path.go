package pathfind

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// MoveMode selects how a unit moves and scales the terrain cost.
type MoveMode uint8

const (
	Walk  MoveMode = iota // ×1
	Run                   // ×3/4, spends stamina
	Kneel                 // ×3/2, crouched movement
)

// modeScale is the terrain cost multiplier as an integer fraction.
var modeScale = [...]struct{ num, den int }{
	Walk:  {4, 4},
	Run:   {3, 4},
	Kneel: {6, 4},
}

func (m MoveMode) String() string {
	switch m {
	case Walk:
		return "walk"
	case Run:
		return "run"
	case Kneel:
		return "kneel"
	default:
		return "unknown"
	}
}

// ParseMoveMode maps a mode name back to its value.
func ParseMoveMode(name string) (MoveMode, bool) {
	for m := Walk; m <= Kneel; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return Walk, false
}

// scale applies the mode multiplier to a terrain cost. Any enterable tile
// costs at least 1 TU.
func (m MoveMode) scale(cost int) int {
	if int(m) >= len(modeScale) {
		m = Walk
	}
	s := modeScale[m]
	c := cost * s.num / s.den
	if c < 1 {
		c = 1
	}
	return c
}

// StaminaPerStep is the stamina a running unit spends per tile.
const StaminaPerStep = 2

// Step is one tile-to-tile move of a path.
type Step struct {
	From battlefield.Position
	To   battlefield.Position
	Dir  battlefield.Direction
	Cost int
}

// Path is an ordered route with per-step TU costs. It is a value; callers
// own it and may truncate it freely.
type Path struct {
	Mode  MoveMode
	Steps []Step
	Total int
}

// Len is the number of steps.
func (p Path) Len() int { return len(p.Steps) }

// Empty reports whether the path has no steps.
func (p Path) Empty() bool { return len(p.Steps) == 0 }

// Destination returns the last tile of the path.
func (p Path) Destination() (battlefield.Position, bool) {
	if len(p.Steps) == 0 {
		return battlefield.Position{}, false
	}
	return p.Steps[len(p.Steps)-1].To, true
}

// Turns counts the direction changes along the path.
func (p Path) Turns() int {
	n := 0
	for i := 1; i < len(p.Steps); i++ {
		if p.Steps[i].Dir != p.Steps[i-1].Dir {
			n++
		}
	}
	return n
}

// Affordable returns the number of leading steps that fit in a TU budget.
func (p Path) Affordable(tu int) int {
	n := 0
	for _, s := range p.Steps {
		if s.Cost > tu {
			break
		}
		tu -= s.Cost
		n++
	}
	return n
}

func (p Path) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %dTU", p.Mode, p.Total)
	for i, s := range p.Steps {
		if i == 0 {
			fmt.Fprintf(&sb, " %s", s.From)
		}
		fmt.Fprintf(&sb, " -%s/%d-> %s", s.Dir, s.Cost, s.To)
	}
	return sb.String()
}
