package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hackgods/clinic-booking/internal/user"
)

func patient() Actor { return Actor{ID: uuid.New(), Role: user.RolePatient} }
func doctor() Actor  { return Actor{ID: uuid.New(), Role: user.RoleDoctor} }

func TestCanReadPatient(t *testing.T) {
	p := patient()
	other := patient()

	assert.NoError(t, CanReadPatient(p, p.ID))
	assert.ErrorIs(t, CanReadPatient(other, p.ID), ErrForbidden)
	assert.NoError(t, CanReadPatient(doctor(), p.ID))

	// A doctor's id used as a patient id does not turn them into a self-patient.
	d := doctor()
	assert.NoError(t, CanReadPatient(d, d.ID))
	assert.ErrorIs(t, CanReadPatient(Actor{ID: p.ID}, p.ID), ErrForbidden)
}

func TestCanCreateRecord(t *testing.T) {
	assert.NoError(t, CanCreateRecord(doctor()))
	assert.ErrorIs(t, CanCreateRecord(patient()), ErrForbidden)
}

func TestCanModifyRecord(t *testing.T) {
	owner := doctor()
	other := doctor()

	assert.NoError(t, CanModifyRecord(owner, &owner.ID))
	assert.ErrorIs(t, CanModifyRecord(other, &owner.ID), ErrForbidden)
	assert.ErrorIs(t, CanModifyRecord(owner, nil), ErrForbidden)

	p := patient()
	assert.ErrorIs(t, CanModifyRecord(p, &p.ID), ErrForbidden)
}

func TestCanViewRecord(t *testing.T) {
	p := patient()
	d := doctor()

	assert.NoError(t, CanViewRecord(p, p.ID, &d.ID))
	assert.NoError(t, CanViewRecord(d, p.ID, &d.ID))
	assert.ErrorIs(t, CanViewRecord(doctor(), p.ID, &d.ID), ErrForbidden)
	assert.ErrorIs(t, CanViewRecord(doctor(), p.ID, nil), ErrForbidden)
}

func TestCanAccessAppointment(t *testing.T) {
	p := patient()
	d := doctor()

	assert.NoError(t, CanAccessAppointment(p, p.ID, d.ID))
	assert.NoError(t, CanAccessAppointment(d, p.ID, d.ID))
	assert.ErrorIs(t, CanAccessAppointment(patient(), p.ID, d.ID), ErrForbidden)
	assert.ErrorIs(t, CanAccessAppointment(doctor(), p.ID, d.ID), ErrForbidden)
}

func TestCanBook(t *testing.T) {
	assert.NoError(t, CanBook(patient()))
	assert.ErrorIs(t, CanBook(doctor()), ErrForbidden)
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	a := doctor()
	got, ok := ActorFrom(WithActor(context.Background(), a))
	assert.True(t, ok)
	assert.Equal(t, a, got)
}
