package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound  = errors.New("medical record not found")
	ErrPatientNotFound = errors.New("patient not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	CreateRecord(ctx context.Context, r *MedicalRecord) error
	GetRecordByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)

	// ListRecords returns one page of matching records, newest first, and the
	// total number of matches.
	ListRecords(ctx context.Context, f Filter, limit, offset int) ([]MedicalRecord, int, error)

	UpdateRecord(ctx context.Context, r *MedicalRecord) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error

	// ListVitals returns up to limit records of patientID that carry a weight
	// reading, newest first.
	ListVitals(ctx context.Context, patientID uuid.UUID, limit int) ([]VitalsPoint, error)
}
