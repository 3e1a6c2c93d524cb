package battlescape

import (
	"github.com/Garsondee/Battlescape/internal/ai"
	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// aiTurn takes one decision for an AI unit and runs it. The decision goes
// through the same validation as a player command; anything it cannot do
// ends the unit's phase.
type aiTurn struct {
	unit    battlefield.UnitID
	decided bool
}

func (a *aiTurn) Kind() ActionKind           { return KindAITurn }
func (a *aiTurn) Actor() battlefield.UnitID { return a.unit }

func (a *aiTurn) Tick(g *Game) Status {
	if a.decided {
		return Complete()
	}
	a.decided = true

	u := g.bf.Unit(a.unit)
	ctrl := g.ai[u.Faction]
	if ctrl == nil {
		u.AI.Done = true
		return Complete()
	}
	g.recomputeStale()
	if len(g.vision.Spotters(u.ID)) == 0 {
		u.AI.LastSafe, u.AI.HasLastSafe = u.Pos, true
	}

	d := ctrl.Decide(g.aiWorld(), u.ID)
	u.AI.Decisions++
	u.AI.LastDecision = d.Kind.String() + ":" + d.Reason

	act, cerr := g.fromDecision(u, d)
	if cerr != nil {
		g.log.Debug().Err(cerr).Str("unit", u.String()).Msg("ai decision rejected")
	}
	if act == nil {
		u.AI.Done = true
		return Complete()
	}
	return Push(act)
}

// fromDecision turns a decision into the action a command would push.
func (g *Game) fromDecision(u *battlefield.Unit, d ai.Decision) (Action, *CommandError) {
	switch d.Kind {
	case ai.Move:
		w, cerr := g.prepareWalk(u, d.Path)
		if cerr != nil {
			return nil, cerr
		}
		return w, nil
	case ai.Attack:
		a, cerr := g.prepareFire(u, d.Item, d.TargetPos, d.Mode)
		if cerr != nil {
			return nil, cerr
		}
		return a, nil
	case ai.Throw:
		a, cerr := g.prepareThrow(u, d.Item, d.TargetPos)
		if cerr != nil {
			return nil, cerr
		}
		return a, nil
	default:
		return nil, nil
	}
}
