package battlefield

import "fmt"

// UnitID indexes the Battlefield unit arena.
type UnitID int

// NoUnit marks an empty occupant slot.
const NoUnit UnitID = -1

// Faction distinguishes the sides of a battle.
type Faction uint8

const (
	FactionPlayer  Faction = iota // player-controlled squad
	FactionHostile                // enemy force, AI controlled
	FactionNeutral                // civilians, AI controlled
	FactionCount                  // sentinel
)

func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionHostile:
		return "hostile"
	case FactionNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// ParseFaction maps a faction name back to its value.
func ParseFaction(name string) (Faction, bool) {
	for f := Faction(0); f < FactionCount; f++ {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Hostile reports whether units of a and b fight each other. Civilians are
// only targeted by the hostile faction and never fight back.
func Hostile(a, b Faction) bool {
	switch {
	case a == b:
		return false
	case a == FactionNeutral:
		return b == FactionHostile
	case b == FactionNeutral:
		return a == FactionHostile
	default:
		return true
	}
}

// --- Stance ---

// Stance represents a unit's body posture.
type Stance uint8

const (
	StanceStanding Stance = iota
	StanceKneeling
	StanceProne
)

// StanceProfile holds the gameplay modifiers for a stance.
type StanceProfile struct {
	EyeHeight   float64 // eye position as a fraction of the level
	AccuracyMul float64 // multiplier on firing accuracy
	EnterTU     int     // TU charged for switching into the stance
}

var stanceProfiles = [...]StanceProfile{
	StanceStanding: {EyeHeight: 0.9, AccuracyMul: 1.0, EnterTU: 8},
	StanceKneeling: {EyeHeight: 0.55, AccuracyMul: 1.15, EnterTU: 4},
	StanceProne:    {EyeHeight: 0.25, AccuracyMul: 1.25, EnterTU: 6},
}

// Profile returns the gameplay modifiers for this stance.
func (s Stance) Profile() StanceProfile {
	if int(s) >= len(stanceProfiles) {
		return stanceProfiles[StanceStanding]
	}
	return stanceProfiles[s]
}

func (s Stance) String() string {
	switch s {
	case StanceStanding:
		return "standing"
	case StanceKneeling:
		return "kneeling"
	case StanceProne:
		return "prone"
	default:
		return "unknown"
	}
}

// --- Status ---

// Status is the lifecycle state of a unit.
type Status uint8

const (
	StatusActive      Status = iota
	StatusStunned            // recovers next turn, cannot act
	StatusPanicked           // lost its nerve this turn
	StatusDead               // terminal
	StatusUnconscious        // terminal for the battle
	StatusCaptured           // terminal
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusStunned:
		return "stunned"
	case StatusPanicked:
		return "panicked"
	case StatusDead:
		return "dead"
	case StatusUnconscious:
		return "unconscious"
	case StatusCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// Terminal reports whether the unit has left the battle for good.
func (s Status) Terminal() bool {
	return s == StatusDead || s == StatusUnconscious || s == StatusCaptured
}

// --- Stats ---

// Stats is a unit's stat block, copied from its template at battle start.
type Stats struct {
	TimeUnits        int `yaml:"time_units"`
	MaxTimeUnits     int `yaml:"max_time_units"`
	Health           int `yaml:"health"`
	MaxHealth        int `yaml:"max_health"`
	Stun             int `yaml:"stun"`
	Accuracy         int `yaml:"accuracy"`          // firing accuracy, percent
	ThrowingAccuracy int `yaml:"throwing_accuracy"` // percent
	Reactions        int `yaml:"reactions"`
	Stamina          int `yaml:"stamina"`
	MaxStamina       int `yaml:"max_stamina"`
	Bravery          int `yaml:"bravery"` // 10..100, higher resists panic
	Morale           int `yaml:"morale"`  // 0..100
	Strength         int `yaml:"strength"`
	Armor            int `yaml:"armor"` // flat damage reduction
}

// Fresh returns a copy of the block with every pool at its maximum, the way
// a template is copied onto a unit at battle start.
func (s Stats) Fresh() Stats {
	s.normalize()
	s.TimeUnits = s.MaxTimeUnits
	s.Health = s.MaxHealth
	s.Stamina = s.MaxStamina
	s.Stun = 0
	if s.Morale == 0 {
		s.Morale = 100
	}
	return s
}

// normalize derives missing maxima from current values and clamps the block.
func (s *Stats) normalize() {
	s.MaxTimeUnits, s.TimeUnits = clampPool(s.MaxTimeUnits, s.TimeUnits)
	s.MaxHealth, s.Health = clampPool(s.MaxHealth, s.Health)
	s.MaxStamina, s.Stamina = clampPool(s.MaxStamina, s.Stamina)
	if s.Morale < 0 {
		s.Morale = 0
	}
	if s.Morale > 100 {
		s.Morale = 100
	}
}

func clampPool(maxV, cur int) (int, int) {
	if maxV <= 0 {
		maxV = cur
	}
	if cur > maxV {
		cur = maxV
	}
	if cur < 0 {
		cur = 0
	}
	return maxV, cur
}

// --- Items ---

// Item is a piece of equipment. RuleID refers to the weapon/item rule data.
type Item struct {
	RuleID string `yaml:"rule"`
	Ammo   int    `yaml:"ammo"`
}

// AIMemory is the decision state an AI unit carries between decisions.
// It lives on the unit so that decisions stay a pure function of the battle.
type AIMemory struct {
	LastSafe     Position
	HasLastSafe  bool
	Done         bool // finished acting for the current phase
	Decisions    int  // decisions taken this phase
	LastDecision string
}

// Unit is a combatant or civilian on the battlefield.
type Unit struct {
	ID        UnitID
	Name      string
	Template  string
	Faction   Faction
	Pos       Position // tile reference; mirrored by Tile.Occupant
	Facing    Direction
	Stance    Stance
	Status    Status
	Stats     Stats
	Inventory []Item
	AI        AIMemory
	Kills     int
	placed    bool
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s#%d", u.Name, u.ID)
}

// Alive reports whether the unit is still part of the battle.
func (u *Unit) Alive() bool { return !u.Status.Terminal() }

// CanAct reports whether the unit may spend TU right now.
func (u *Unit) CanAct() bool {
	return u.Status == StatusActive
}

// SpendTU deducts cost from the unit's time units. It refuses, leaving the
// unit unchanged, when the result would go negative.
func (u *Unit) SpendTU(cost int) bool {
	if cost < 0 || u.Stats.TimeUnits < cost {
		return false
	}
	u.Stats.TimeUnits -= cost
	return true
}

// SpendStamina deducts stamina, refusing to go negative.
func (u *Unit) SpendStamina(cost int) bool {
	if cost < 0 || u.Stats.Stamina < cost {
		return false
	}
	u.Stats.Stamina -= cost
	return true
}

// ReactionScore is the X-COM style initiative value: reactions scaled by the
// fraction of TU still available.
func (u *Unit) ReactionScore() float64 {
	if u.Stats.MaxTimeUnits <= 0 {
		return 0
	}
	return float64(u.Stats.Reactions) * float64(u.Stats.TimeUnits) / float64(u.Stats.MaxTimeUnits)
}

// ItemIndex returns the index of the first inventory item accepted by keep,
// or -1.
func (u *Unit) ItemIndex(keep func(Item) bool) int {
	for i, it := range u.Inventory {
		if keep(it) {
			return i
		}
	}
	return -1
}

// AdjustMorale changes morale by delta, clamped to [0, 100].
func (u *Unit) AdjustMorale(delta int) {
	u.Stats.Morale += delta
	if u.Stats.Morale < 0 {
		u.Stats.Morale = 0
	}
	if u.Stats.Morale > 100 {
		u.Stats.Morale = 100
	}
}

// BeginPhase restores TU and recovers stamina and panic for a new turn of the
// unit's faction.
func (u *Unit) BeginPhase(staminaRecovery int) {
	if !u.Alive() {
		return
	}
	if u.Status == StatusPanicked {
		u.Status = StatusActive
	}
	if u.Status == StatusStunned {
		if u.Stats.Stun < u.Stats.Health {
			u.Status = StatusActive
		}
	}
	if u.Stats.Stun > 0 {
		u.Stats.Stun--
	}
	u.Stats.TimeUnits = u.Stats.MaxTimeUnits
	u.Stats.Stamina += staminaRecovery
	if u.Stats.Stamina > u.Stats.MaxStamina {
		u.Stats.Stamina = u.Stats.MaxStamina
	}
	u.AI.Done = false
	u.AI.Decisions = 0
}
