package battlescape

import "github.com/Garsondee/Battlescape/internal/battlefield"

// ActionKind tags the states the scheduler stack can hold.
type ActionKind uint8

const (
	KindIdle ActionKind = iota
	KindWalk
	KindTurn
	KindStance
	KindFire
	KindThrow
	KindProjectile
	KindExplosion
	KindDie
	KindFall
	KindPanic
	KindAITurn
	kindCount // sentinel
)

var kindNames = [kindCount]string{
	"idle", "walk", "turn", "stance", "fire", "throw", "projectile",
	"explosion", "die", "fall", "panic", "ai_turn",
}

func (k ActionKind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// unitDriven reports whether an action of this kind is carried out by its
// actor. Such actions are discarded, not resumed, when the actor can no
// longer act by the time the scheduler returns to them. Resolution states
// (projectiles, explosions, deaths, falls, panic) always run to completion.
func (k ActionKind) unitDriven() bool {
	switch k {
	case KindWalk, KindTurn, KindStance, KindFire, KindThrow, KindAITurn:
		return true
	default:
		return false
	}
}

// Action is one state on the scheduler stack. Only the top of the stack is
// ticked.
type Action interface {
	Kind() ActionKind
	Actor() battlefield.UnitID
	Tick(g *Game) Status
}

type statusCode uint8

const (
	statusContinue statusCode = iota
	statusComplete
	statusPush
)

// Status is what a state's tick asks the scheduler to do next.
type Status struct {
	code  statusCode
	child Action
}

// Continue keeps the state on top for another tick.
func Continue() Status { return Status{code: statusContinue} }

// Complete pops the state; its pusher resumes on the next tick.
func Complete() Status { return Status{code: statusComplete} }

// Push suspends the state beneath child.
func Push(child Action) Status { return Status{code: statusPush, child: child} }

func (s Status) String() string {
	switch s.code {
	case statusContinue:
		return "continue"
	case statusComplete:
		return "complete"
	default:
		if s.child != nil {
			return "push " + s.child.Kind().String()
		}
		return "push"
	}
}
