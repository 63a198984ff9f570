// Package access holds the per-operation authorization rules. Every rule is a
// pure function of the acting user and the ids that own the resource; callers
// run existence checks first and the policy second.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/user"
)

var ErrForbidden = errors.New("access denied")

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

func (a Actor) IsDoctor() bool  { return a.Role == user.RoleDoctor }
func (a Actor) IsPatient() bool { return a.Role == user.RolePatient }

func (a Actor) is(id *uuid.UUID) bool {
	return id != nil && *id == a.ID
}

type actorKey struct{}

// WithActor stores the actor resolved from the request credential.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// RequireRole allows actors holding one of roles.
func RequireRole(a Actor, roles ...user.Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// CanCreateRecord: doctors only.
func CanCreateRecord(a Actor) error {
	return RequireRole(a, user.RoleDoctor)
}

// CanReadPatient covers listing a patient's records and reading their vitals:
// any doctor, or the patient themself.
func CanReadPatient(a Actor, patientID uuid.UUID) error {
	if a.IsDoctor() {
		return nil
	}
	if a.IsPatient() && a.ID == patientID {
		return nil
	}
	return ErrForbidden
}

// CanWriteVitals has the same shape as CanReadPatient. There is no per-field
// restriction by role.
func CanWriteVitals(a Actor, patientID uuid.UUID) error {
	return CanReadPatient(a, patientID)
}

// CanViewRecord: the record's doctor or the record's patient.
func CanViewRecord(a Actor, patientID uuid.UUID, doctorID *uuid.UUID) error {
	if a.ID == patientID || a.is(doctorID) {
		return nil
	}
	return ErrForbidden
}

// CanModifyRecord: only the doctor named on the record may update or delete it.
// Records without a doctor (patient-entered vitals) cannot be modified this way.
func CanModifyRecord(a Actor, doctorID *uuid.UUID) error {
	if a.IsDoctor() && a.is(doctorID) {
		return nil
	}
	return ErrForbidden
}

// CanBook: patients book for themselves.
func CanBook(a Actor) error {
	return RequireRole(a, user.RolePatient)
}

// CanAccessAppointment: the appointment's patient or its doctor. Viewing,
// cancelling and status changes all pass through this before the transition
// table is consulted.
func CanAccessAppointment(a Actor, patientID, doctorID uuid.UUID) error {
	if a.IsPatient() && a.ID == patientID {
		return nil
	}
	if a.IsDoctor() && a.ID == doctorID {
		return nil
	}
	return ErrForbidden
}
