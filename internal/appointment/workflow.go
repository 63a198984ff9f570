package appointment

import (
	"errors"
	"fmt"

	"github.com/hackgods/clinic-booking/internal/access"
	"github.com/hackgods/clinic-booking/internal/user"
)

var ErrInvalidStatusTransition = errors.New("invalid status transition")

// Party is the side of an appointment making a status change.
type Party string

const (
	PartyPatient Party = "patient"
	PartyDoctor  Party = "doctor"
	PartySystem  Party = "system"
)

// transitions lists every legal move and who may make it. States without an
// entry are terminal.
var transitions = map[Status]map[Status][]Party{
	StatusPending: {
		StatusAccepted:  {PartyDoctor},
		StatusRejected:  {PartyDoctor},
		StatusCancelled: {PartyPatient, PartyDoctor, PartySystem},
	},
	StatusAccepted: {
		StatusCompleted: {PartyDoctor},
		StatusCancelled: {PartyDoctor},
	},
}

// PartyOf maps an actor onto the side it plays in an appointment.
func PartyOf(a access.Actor) Party {
	if a.Role == user.RoleDoctor {
		return PartyDoctor
	}
	return PartyPatient
}

// CheckTransition returns ErrInvalidStatusTransition when from->to is not in
// the table and access.ErrForbidden when it is but by may not make it.
func CheckTransition(from, to Status, by Party) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: appointment is already %s", ErrInvalidStatusTransition, from)
	}
	allowed, ok := transitions[from][to]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}
	for _, p := range allowed {
		if p == by {
			return nil
		}
	}
	return fmt.Errorf("%w: %s may not move %s -> %s", access.ErrForbidden, by, from, to)
}
