package battlescape

import (
	"fmt"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// Outcome is how a battle ended, or that it has not.
type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomePlayerVictory
	OutcomeHostileVictory
	OutcomeDraw
	OutcomeInconclusive
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in_progress"
	case OutcomePlayerVictory:
		return "player_victory"
	case OutcomeHostileVictory:
		return "hostile_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// OutcomeReport scores a battle per faction from the unit records.
type OutcomeReport struct {
	Outcome          Outcome
	PlayerSurvivors  int
	PlayerTotal      int
	HostileSurvivors int
	HostileTotal     int
	CivilianSaved    int
	CivilianTotal    int
	PlayerKills      int
	HostileKills     int
	Description      string
}

func (r OutcomeReport) String() string {
	return fmt.Sprintf("%s player=%d/%d hostile=%d/%d civilians=%d/%d (%s)",
		r.Outcome, r.PlayerSurvivors, r.PlayerTotal, r.HostileSurvivors, r.HostileTotal,
		r.CivilianSaved, r.CivilianTotal, r.Description)
}

// DetermineOutcome scores the battle from the unit records, which outlive
// their units' removal from the grid. A battle is decided once one side has
// nobody left standing.
func DetermineOutcome(bf *battlefield.Battlefield) OutcomeReport {
	var r OutcomeReport
	for _, u := range bf.Units() {
		standing := u.Alive()
		switch u.Faction {
		case battlefield.FactionPlayer:
			r.PlayerTotal++
			r.PlayerKills += u.Kills
			if standing {
				r.PlayerSurvivors++
			}
		case battlefield.FactionHostile:
			r.HostileTotal++
			r.HostileKills += u.Kills
			if standing {
				r.HostileSurvivors++
			}
		case battlefield.FactionNeutral:
			r.CivilianTotal++
			if standing {
				r.CivilianSaved++
			}
		}
	}

	switch {
	case r.PlayerTotal == 0 || r.HostileTotal == 0:
		// One-sided fields never end on their own.
		r.Outcome = OutcomeInProgress
		r.Description = "no_opposition"
	case r.PlayerSurvivors == 0 && r.HostileSurvivors == 0:
		r.Outcome = OutcomeDraw
		r.Description = "mutual_destruction"
	case r.HostileSurvivors == 0:
		r.Outcome = OutcomePlayerVictory
		r.Description = "hostiles_eliminated"
	case r.PlayerSurvivors == 0:
		r.Outcome = OutcomeHostileVictory
		r.Description = "squad_eliminated"
	default:
		r.Outcome = OutcomeInProgress
		r.Description = "forces_remain"
	}
	return r
}
