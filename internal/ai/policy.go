package ai

// Capabilities gate which parts of the shared decision procedure a policy
// takes part in.
type Capabilities struct {
	CanSeeTargets bool // knows about hostiles its faction can see
	CanPath       bool // may move
	CanAttack     bool // may fire or throw
	CanFlee       bool // scores distance from threats
}

// Weights tune how the tile score combines its terms.
type Weights struct {
	Exposure  float64 // per hostile able to see the tile
	Damage    float64 // per point of expected damage from the tile
	Objective float64 // per tile of distance to the goal
	Flee      float64 // per tile of distance from the nearest threat
}

// DefaultWeights are used for zero Weights.
var DefaultWeights = Weights{Exposure: 4, Damage: 1, Objective: 1, Flee: 2}

func (w Weights) orDefault() Weights {
	if w == (Weights{}) {
		return DefaultWeights
	}
	return w
}

// costWeight breaks ties toward cheaper moves.
const costWeight = 0.01

// Features describe one candidate tile.
type Features struct {
	Cost       int     // TU to get there
	Exposure   int     // known hostiles that would see a unit there
	Damage     float64 // best expected damage of an attack from there
	GoalDist   float64
	HasGoal    bool
	ThreatDist float64 // to the nearest known threat
	HasThreat  bool
}

// Policy scores candidate tiles. Hostile and civilian units share the
// decision procedure and differ only in their policy.
type Policy interface {
	Name() string
	Capabilities() Capabilities
	Score(f Features) float64
}

// HostilePolicy closes on its goal and trades exposure for damage.
type HostilePolicy struct {
	Weights Weights
}

func (HostilePolicy) Name() string { return "hostile" }

func (HostilePolicy) Capabilities() Capabilities {
	return Capabilities{CanSeeTargets: true, CanPath: true, CanAttack: true}
}

func (p HostilePolicy) Score(f Features) float64 {
	w := p.Weights.orDefault()
	s := f.Damage*w.Damage - float64(f.Exposure)*w.Exposure - float64(f.Cost)*costWeight
	if f.HasGoal {
		s -= f.GoalDist * w.Objective
	}
	return s
}

// CivilianPolicy only runs and hides.
type CivilianPolicy struct {
	Weights Weights
}

func (CivilianPolicy) Name() string { return "civilian" }

func (CivilianPolicy) Capabilities() Capabilities {
	return Capabilities{CanSeeTargets: true, CanPath: true, CanFlee: true}
}

func (p CivilianPolicy) Score(f Features) float64 {
	w := p.Weights.orDefault()
	s := -float64(f.Exposure)*w.Exposure - float64(f.Cost)*costWeight
	if f.HasThreat {
		s += f.ThreatDist * w.Flee
	}
	return s
}
