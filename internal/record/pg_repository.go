package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `id, patient_id, doctor_id, appointment_id, vitals,
	diagnosis, symptoms, prescription, treatment, follow_up,
	allergies, medical_history, notes, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var r MedicalRecord

	err := row.Scan(
		&r.ID,
		&r.PatientID,
		&r.DoctorID,
		&r.AppointmentID,
		&r.Vitals,
		&r.Diagnosis,
		&r.Symptoms,
		&r.Prescription,
		&r.Treatment,
		&r.FollowUp,
		&r.Allergies,
		&r.MedicalHistory,
		&r.Notes,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &r, nil
}

// nonNil keeps text[] columns NOT NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *PgRepository) CreateRecord(ctx context.Context, rec *MedicalRecord) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, appointment_id, vitals,
			diagnosis, symptoms, prescription, treatment, follow_up,
			allergies, medical_history, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING `+recordColumns,
		rec.ID, rec.PatientID, rec.DoctorID, rec.AppointmentID, rec.Vitals,
		rec.Diagnosis, nonNil(rec.Symptoms), rec.Prescription, rec.Treatment, rec.FollowUp,
		nonNil(rec.Allergies), nonNil(rec.MedicalHistory), rec.Notes,
	)

	created, err := scanRecord(row)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}

	*rec = *created
	return nil
}

func (r *PgRepository) GetRecordByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM medical_records WHERE id = $1`, id)
	return scanRecord(row)
}

func (r *PgRepository) ListRecords(ctx context.Context, f Filter, limit, offset int) ([]MedicalRecord, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		conds = append(conds, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		conds = append(conds, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM medical_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT `+recordColumns+`
		FROM medical_records
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *PgRepository) UpdateRecord(ctx context.Context, rec *MedicalRecord) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE medical_records
		SET vitals = $2,
		    diagnosis = $3,
		    symptoms = $4,
		    prescription = $5,
		    treatment = $6,
		    follow_up = $7,
		    allergies = $8,
		    medical_history = $9,
		    notes = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+recordColumns,
		rec.ID, rec.Vitals, rec.Diagnosis, nonNil(rec.Symptoms), rec.Prescription,
		rec.Treatment, rec.FollowUp, nonNil(rec.Allergies), nonNil(rec.MedicalHistory), rec.Notes,
	)

	updated, err := scanRecord(row)
	if err != nil {
		return err
	}

	*rec = *updated
	return nil
}

func (r *PgRepository) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PgRepository) ListVitals(ctx context.Context, patientID uuid.UUID, limit int) ([]VitalsPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vitals, created_at
		FROM medical_records
		WHERE patient_id = $1
		  AND vitals->'weight'->>'value' IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $2
	`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []VitalsPoint
	for rows.Next() {
		var p VitalsPoint
		if err := rows.Scan(&p.ID, &p.Vitals, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
