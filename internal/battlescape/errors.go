package battlescape

import (
	"fmt"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// Reason says why a command was rejected.
type Reason string

const (
	ReasonInsufficientTimeUnits Reason = "InsufficientTimeUnits"
	ReasonInsufficientStamina   Reason = "InsufficientStamina"
	ReasonNoLineOfFire          Reason = "NoLineOfFire"
	ReasonTargetOutOfRange      Reason = "TargetOutOfRange"
	ReasonNotUnitsTurn          Reason = "NotUnitsTurn"
	ReasonActionInProgress      Reason = "ActionInProgress"
	ReasonUnitIncapacitated     Reason = "UnitIncapacitated"
	ReasonNoPath                Reason = "NoPath"
	ReasonNoAmmo                Reason = "NoAmmo"
	ReasonNoWeapon              Reason = "NoWeapon"
	ReasonInvalidTarget         Reason = "InvalidTarget"
	ReasonPhaseOver             Reason = "PhaseOver"
	ReasonUnknownUnit           Reason = "UnknownUnit"
)

// CommandError is a rejected command. A rejected command changes nothing
// and emits no events.
type CommandError struct {
	Reason Reason
	Unit   battlefield.UnitID
	Detail string
}

func (e *CommandError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("command rejected for unit %d: %s", e.Unit, e.Reason)
	}
	return fmt.Sprintf("command rejected for unit %d: %s: %s", e.Unit, e.Reason, e.Detail)
}

// Is matches any CommandError with the same reason, so callers can write
// errors.Is(err, battlescape.ErrNoPath).
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	return ok && t.Reason == e.Reason
}

func reject(r Reason, u battlefield.UnitID, format string, args ...any) *CommandError {
	return &CommandError{Reason: r, Unit: u, Detail: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrInsufficientTimeUnits = &CommandError{Reason: ReasonInsufficientTimeUnits, Unit: battlefield.NoUnit}
	ErrInsufficientStamina   = &CommandError{Reason: ReasonInsufficientStamina, Unit: battlefield.NoUnit}
	ErrNoLineOfFire          = &CommandError{Reason: ReasonNoLineOfFire, Unit: battlefield.NoUnit}
	ErrTargetOutOfRange      = &CommandError{Reason: ReasonTargetOutOfRange, Unit: battlefield.NoUnit}
	ErrNotUnitsTurn          = &CommandError{Reason: ReasonNotUnitsTurn, Unit: battlefield.NoUnit}
	ErrActionInProgress      = &CommandError{Reason: ReasonActionInProgress, Unit: battlefield.NoUnit}
	ErrUnitIncapacitated     = &CommandError{Reason: ReasonUnitIncapacitated, Unit: battlefield.NoUnit}
	ErrNoPath                = &CommandError{Reason: ReasonNoPath, Unit: battlefield.NoUnit}
	ErrNoAmmo                = &CommandError{Reason: ReasonNoAmmo, Unit: battlefield.NoUnit}
	ErrNoWeapon              = &CommandError{Reason: ReasonNoWeapon, Unit: battlefield.NoUnit}
	ErrInvalidTarget         = &CommandError{Reason: ReasonInvalidTarget, Unit: battlefield.NoUnit}
	ErrPhaseOver             = &CommandError{Reason: ReasonPhaseOver, Unit: battlefield.NoUnit}
	ErrUnknownUnit           = &CommandError{Reason: ReasonUnknownUnit, Unit: battlefield.NoUnit}
)
