// Package battlescape runs a battle: a stack of tagged action states driven
// one tick at a time, the command interface that feeds it, and the event
// stream it produces. The simulation is single-threaded; a tick never
// leaves the battle half-mutated.
package battlescape

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Battlescape/internal/ai"
	"github.com/Garsondee/Battlescape/internal/battlefield"
	"github.com/Garsondee/Battlescape/internal/pathfind"
	"github.com/Garsondee/Battlescape/internal/rules"
	"github.com/Garsondee/Battlescape/internal/visibility"
)

// --- Tuning ---

const (
	panicMorale        = 50 // below this a unit may panic
	allyDeathMorale    = 10 // morale lost when a friend dies
	woundMoraleDivisor = 2  // morale lost per point of damage taken
	moraleRecovery     = 10 // regained at the start of each own phase
)

// Settings control a battle.
type Settings struct {
	Seed             int64
	MaxTicks         int  // 0 runs until decided
	StrictInvariants bool // check battlefield invariants after every tick
	ReactionFire     bool
	StopOnSpotted    bool // a walk halts when the walker spots a new hostile
	AutoPlayer       bool // the player faction is AI controlled too
	StaminaRecovery  int  // per phase
	Vision           visibility.Settings
	Costs            pathfind.Costs
	AIMaxDecisions   int
	AIWeights        ai.Weights
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{
		Seed:             1,
		MaxTicks:         20000,
		StrictInvariants: true,
		ReactionFire:     true,
		StopOnSpotted:    true,
		StaminaRecovery:  10,
		Vision:           visibility.DefaultSettings,
		Costs:            pathfind.DefaultCosts,
		AIMaxDecisions:   ai.DefaultMaxDecisions,
		AIWeights:        ai.DefaultWeights,
	}
}

// Game owns one battle: the battlefield, the query engines over it and the
// action stack.
type Game struct {
	settings Settings
	bf       *battlefield.Battlefield
	rules    *rules.Ruleset
	paths    *pathfind.Pathfinder
	vision   *visibility.Engine
	ai       [battlefield.FactionCount]*ai.Controller
	rng      *rand.Rand
	log      zerolog.Logger
	events   *EventLog
	metrics  instruments

	stack     []Action
	ticks     int
	turn      int
	phase     battlefield.Faction
	phaseOpen bool
	ended     bool
	outcome   OutcomeReport
}

func newGame(bf *battlefield.Battlefield, rs *rules.Ruleset, s Settings, log zerolog.Logger, resume *resumePoint) (*Game, error) {
	if rs == nil {
		rs = rules.Default()
	}
	seed := s.Seed
	if seed == 0 {
		seed = 1
	}
	in, err := newInstruments()
	if err != nil {
		return nil, err
	}
	g := &Game{
		settings: s,
		bf:       bf,
		rules:    rs,
		paths:    pathfind.New(bf, s.Costs),
		vision:   visibility.New(bf, s.Vision, visibility.WithLogger(log)),
		rng:      rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
		log:      log,
		events:   NewEventLog(),
		metrics:  in,
		phase:    battlefield.FactionNeutral,
	}
	aiOpts := []ai.Option{ai.WithLogger(log), ai.WithMaxDecisions(s.AIMaxDecisions)}
	g.ai[battlefield.FactionHostile] = ai.ForFaction(battlefield.FactionHostile, s.AIWeights, aiOpts...)
	g.ai[battlefield.FactionNeutral] = ai.ForFaction(battlefield.FactionNeutral, s.AIWeights, aiOpts...)
	if s.AutoPlayer {
		g.ai[battlefield.FactionPlayer] = ai.New(ai.HostilePolicy{Weights: s.AIWeights}, aiOpts...)
	}

	if err := bf.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("battlescape: initial state: %w", err)
	}
	for _, vs := range g.vision.RecomputeAll() {
		g.revealed(vs)
	}
	if resume != nil {
		g.resumePhase(*resume)
	} else {
		g.nextPhase()
	}
	g.log.Info().
		Int64("seed", seed).
		Int("units", len(bf.Units())).
		Str("size", fmt.Sprintf("%dx%dx%d", bf.Width, bf.Length, bf.Levels)).
		Msg("battle started")
	return g, nil
}

// --- Accessors ---

func (g *Game) Battlefield() *battlefield.Battlefield { return g.bf }
func (g *Game) Pathfinder() *pathfind.Pathfinder      { return g.paths }
func (g *Game) Vision() *visibility.Engine            { return g.vision }
func (g *Game) Rules() *rules.Ruleset                 { return g.rules }
func (g *Game) Events() *EventLog                     { return g.events }
func (g *Game) Settings() Settings                    { return g.settings }

// Ticks returns the number of ticks executed.
func (g *Game) Ticks() int { return g.ticks }

// Turn returns the current turn, from 1.
func (g *Game) Turn() int { return g.turn }

// Phase returns the faction whose phase is current (or just ended).
func (g *Game) Phase() battlefield.Faction { return g.phase }

// PhaseOpen reports whether a phase is running. It is false exactly when
// the stack is empty.
func (g *Game) PhaseOpen() bool { return g.phaseOpen }

// Ended reports whether the battle is over.
func (g *Game) Ended() bool { return g.ended }

// Outcome returns the current assessment; final once Ended.
func (g *Game) Outcome() OutcomeReport {
	if g.ended {
		return g.outcome
	}
	return DetermineOutcome(g.bf)
}

// Stack lists the kinds on the action stack, bottom first.
func (g *Game) Stack() []ActionKind {
	out := make([]ActionKind, len(g.stack))
	for i, a := range g.stack {
		out[i] = a.Kind()
	}
	return out
}

// AtIdle reports whether nothing is in flight and commands are accepted.
func (g *Game) AtIdle() bool {
	return len(g.stack) > 0 && g.stack[len(g.stack)-1].Kind() == KindIdle
}

// Projectile returns the tile a projectile in flight is over.
func (g *Game) Projectile() (battlefield.Position, bool) {
	if len(g.stack) == 0 {
		return battlefield.Position{}, false
	}
	if p, ok := g.stack[len(g.stack)-1].(*projectile); ok {
		return p.current()
	}
	return battlefield.Position{}, false
}

// --- Tick loop ---

// Tick advances the battle by one step: the top state is ticked once, or a
// new phase begins if the stack is empty. It returns false once the battle
// has ended.
func (g *Game) Tick() bool {
	if g.ended {
		return false
	}
	g.ticks++
	g.metrics.tick()

	if len(g.stack) == 0 {
		g.nextPhase()
	} else {
		top := g.stack[len(g.stack)-1]
		st := top.Tick(g)
		switch st.code {
		case statusComplete:
			g.pop()
		case statusPush:
			g.push(st.child)
		}
	}

	if g.settings.StrictInvariants {
		g.checkInvariants()
	}
	g.settle()
	if !g.ended && g.settings.MaxTicks > 0 && g.ticks >= g.settings.MaxTicks {
		r := DetermineOutcome(g.bf)
		r.Outcome = OutcomeInconclusive
		r.Description = "tick_limit"
		g.finish(r)
	}
	return !g.ended
}

// Run ticks until the battle ends or maxTicks have run, and returns the
// number of ticks executed.
func (g *Game) Run(maxTicks int) int {
	n := 0
	for n < maxTicks && g.Tick() {
		n++
	}
	return n
}

// RunUntil ticks until pred holds, up to maxTicks. It returns the number of
// ticks run, or -1 if pred never held.
func (g *Game) RunUntil(pred func(*Game) bool, maxTicks int) int {
	for n := 0; n < maxTicks; n++ {
		if pred(g) {
			return n
		}
		if !g.Tick() {
			if pred(g) {
				return n + 1
			}
			return -1
		}
	}
	if pred(g) {
		return maxTicks
	}
	return -1
}

func (g *Game) push(a Action) {
	g.stack = append(g.stack, a)
	g.metrics.push(a.Kind())
	g.log.Trace().Str("kind", a.Kind().String()).Int("actor", int(a.Actor())).Int("depth", len(g.stack)).Msg("push")
}

// pop removes the completed top state, then discards suspended actions
// whose actor can no longer act.
func (g *Game) pop() {
	n := len(g.stack)
	done := g.stack[n-1]
	g.stack[n-1] = nil
	g.stack = g.stack[:n-1]
	if done.Kind() == KindIdle {
		g.closePhase()
		return
	}
	for len(g.stack) > 0 {
		top := g.stack[len(g.stack)-1]
		if !top.Kind().unitDriven() || g.canAct(top.Actor()) {
			break
		}
		g.stack[len(g.stack)-1] = nil
		g.stack = g.stack[:len(g.stack)-1]
		g.emit(ActionDiscarded{Unit: top.Actor(), Kind: top.Kind()})
	}
}

// --- Phases ---

// nextPhase opens the phase of the next faction with units standing.
// Wrapping back to the player starts a new turn.
func (g *Game) nextPhase() {
	f := g.phase
	for i := 0; i < int(battlefield.FactionCount); i++ {
		f = (f + 1) % battlefield.FactionCount
		if f == battlefield.FactionPlayer {
			g.newTurn()
		}
		if len(g.bf.UnitsOf(f)) > 0 {
			g.openPhase(f)
			return
		}
	}
	g.phase = f
	g.finish(DetermineOutcome(g.bf))
}

func (g *Game) newTurn() {
	g.turn++
	if g.turn == 1 {
		return
	}
	g.bf.DecayEnvironment()
	g.vision.InvalidateAll()
	g.recomputeStale()
}

func (g *Game) openPhase(f battlefield.Faction) {
	g.phase = f
	g.phaseOpen = true
	for _, u := range g.bf.UnitsOf(f) {
		u.BeginPhase(g.settings.StaminaRecovery)
		u.AdjustMorale(moraleRecovery)
	}
	g.emit(PhaseStarted{Faction: f, Turn: g.turn})
	g.log.Debug().Str("faction", f.String()).Int("turn", g.turn).Msg("phase started")
	g.push(&idle{faction: f})
}

// resumePhase reopens a saved phase. Pools and morale are as saved. A phase
// whose faction has nobody left hands over to the next one.
func (g *Game) resumePhase(r resumePoint) {
	g.turn = r.turn
	if len(g.bf.UnitsOf(r.phase)) == 0 {
		g.phase = r.phase
		g.nextPhase()
		return
	}
	g.phase = r.phase
	g.phaseOpen = true
	g.emit(PhaseStarted{Faction: r.phase, Turn: g.turn})
	g.log.Debug().Str("faction", r.phase.String()).Int("turn", g.turn).Msg("phase resumed")
	g.push(&idle{faction: r.phase})
}

func (g *Game) closePhase() {
	g.phaseOpen = false
	g.emit(PhaseEnded{Faction: g.phase, Turn: g.turn})
}

// settle ends the battle once it is decided and nothing is in flight.
func (g *Game) settle() {
	if g.ended || (len(g.stack) > 0 && !g.AtIdle()) {
		return
	}
	if r := DetermineOutcome(g.bf); r.Outcome != OutcomeInProgress {
		g.finish(r)
	}
}

func (g *Game) finish(r OutcomeReport) {
	if g.phaseOpen {
		g.closePhase()
	}
	for i := range g.stack {
		g.stack[i] = nil
	}
	g.stack = g.stack[:0]
	g.ended = true
	g.outcome = r
	g.emit(BattleEnded{Outcome: r.Outcome})
	g.log.Info().
		Str("outcome", r.Outcome.String()).
		Int("ticks", g.ticks).
		Int("turns", g.turn).
		Int("player_survivors", r.PlayerSurvivors).
		Int("hostile_survivors", r.HostileSurvivors).
		Msg("battle ended")
}

// --- Invariants ---

// checkInvariants panics with an *battlefield.InvariantError on the first
// broken invariant. Continuing would corrupt the outcome.
func (g *Game) checkInvariants() {
	if err := g.bf.CheckInvariants(); err != nil {
		g.log.Error().Err(err).Msg("invariant violated")
		panic(err)
	}
	if (len(g.stack) == 0) == g.phaseOpen {
		g.violation("stack", fmt.Sprintf("stack depth %d with phase open=%t", len(g.stack), g.phaseOpen))
	}
	for i, a := range g.stack {
		if (i == 0) != (a.Kind() == KindIdle) {
			g.violation("stack", fmt.Sprintf("%s at depth %d", a.Kind(), i))
		}
	}
}

func (g *Game) violation(rule, detail string) {
	err := &battlefield.InvariantError{Rule: rule, Detail: detail, Dump: g.Dump()}
	g.log.Error().Err(err).Msg("invariant violated")
	panic(err)
}

// Dump renders the scheduler and battlefield state for debugging.
func (g *Game) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tick=%d turn=%d phase=%s open=%t ended=%t\n", g.ticks, g.turn, g.phase, g.phaseOpen, g.ended)
	kinds := make([]string, len(g.stack))
	for i, k := range g.Stack() {
		kinds[i] = k.String()
	}
	fmt.Fprintf(&sb, "stack [%s]\n", strings.Join(kinds, " "))
	sb.WriteString(g.bf.Dump())
	return sb.String()
}

// --- Shared helpers ---

func (g *Game) emit(ev Event) {
	g.events.Add(g.ticks, ev)
	g.log.Trace().Str("event", ev.Name()).Msg(ev.Detail())
}

// canAct reports whether a unit is on the grid and able to spend TU.
func (g *Game) canAct(id battlefield.UnitID) bool {
	u := g.bf.Unit(id)
	return u != nil && u.CanAct() && g.bf.Placed(id)
}

func (g *Game) revealed(vs visibility.VisibleSet) {
	u := g.bf.Unit(vs.Unit)
	if u == nil {
		return
	}
	for _, p := range vs.Revealed {
		g.emit(TileRevealed{Tile: p, Faction: u.Faction})
	}
}

func (g *Game) recomputeStale() {
	for _, vs := range g.vision.RecomputeStale() {
		g.revealed(vs)
	}
}

// refreshAfterMove updates sight after u changed tile: its own set, and
// every other unit's view of it. It reports whether u now sees a hostile
// it did not see before.
func (g *Game) refreshAfterMove(u *battlefield.Unit) bool {
	before := g.vision.VisibleHostiles(u.ID)
	g.vision.Invalidate(u.ID)
	g.recomputeStale()
	for _, o := range g.bf.Units() {
		if o.ID != u.ID && o.Alive() && g.bf.Placed(o.ID) {
			g.vision.RefreshSighting(o.ID, u.ID)
		}
	}
	seen := make(map[battlefield.UnitID]bool, len(before))
	for _, id := range before {
		seen[id] = true
	}
	for _, id := range g.vision.VisibleHostiles(u.ID) {
		if !seen[id] {
			return true
		}
	}
	return false
}

// aiWorld is the read view handed to AI decisions.
func (g *Game) aiWorld() ai.World {
	return ai.World{Field: g.bf, Paths: g.paths, Vision: g.vision, Weapons: g.rules, RNG: g.rng}
}

// rollPanic decides whether a shaken unit loses its nerve. Steady units do
// not roll at all.
func (g *Game) rollPanic(u *battlefield.Unit) bool {
	if !u.CanAct() || u.Stats.Morale >= panicMorale {
		return false
	}
	chance := (panicMorale - u.Stats.Morale) * (110 - u.Stats.Bravery) / 50
	return g.rng.Intn(100) < chance
}
