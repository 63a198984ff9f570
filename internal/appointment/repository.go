package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)

	// UpdateAppointmentStatus only writes when the stored status is still
	// from; otherwise it returns ErrAppointmentNotFound.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from Status, upd StatusUpdate) (*Appointment, error)

	// Expiry worker
	FindStalePending(ctx context.Context, before time.Time) ([]Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
