package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/access"
	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/user"
	"github.com/hackgods/clinic-booking/internal/validate"
)

// vitalsHistoryLimit caps how many points VitalsHistory returns.
const vitalsHistoryLimit = 20

type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type AppointmentLookup interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

type Service struct {
	repo         Repository
	users        UserLookup
	appointments AppointmentLookup
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, users UserLookup, appointments AppointmentLookup, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		users:        users,
		appointments: appointments,
		logger:       logger.With().Str("component", "record").Logger(),
		now:          time.Now,
	}
}

// Create stores a record authored by the calling doctor.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (*RecordDetail, error) {
	if err := access.CanCreateRecord(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	patientID := uuid.MustParse(in.PatientID)
	if _, err := s.patient(ctx, patientID); err != nil {
		return nil, err
	}

	var apptID *uuid.UUID
	if in.AppointmentID != nil {
		id := uuid.MustParse(*in.AppointmentID)
		if _, err := s.appointments.GetAppointmentByID(ctx, id); err != nil {
			return nil, fmt.Errorf("load appointment: %w", err)
		}
		apptID = &id
	}

	doctorID := actor.ID
	rec := &MedicalRecord{
		ID:             uuid.New(),
		PatientID:      patientID,
		DoctorID:       &doctorID,
		AppointmentID:  apptID,
		Vitals:         in.Vitals.stamp(s.now()),
		Diagnosis:      strings.TrimSpace(in.Diagnosis),
		Symptoms:       in.Symptoms,
		Prescription:   in.Prescription,
		Treatment:      strings.TrimSpace(in.Treatment),
		FollowUp:       followUp(in.FollowUp),
		Allergies:      in.Allergies,
		MedicalHistory: in.MedicalHistory,
		Notes:          strings.TrimSpace(in.Notes),
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create medical record: %w", err)
	}

	s.logger.Info().
		Str("record_id", rec.ID.String()).
		Str("patient_id", patientID.String()).
		Msg("medical record created")

	return s.populate(ctx, rec, nil)
}

// ListByPatient returns one page of a patient's records, newest first.
func (s *Service) ListByPatient(ctx context.Context, actor access.Actor, patientID uuid.UUID, q PageQuery) (*Page, error) {
	if err := access.CanReadPatient(actor, patientID); err != nil {
		return nil, err
	}
	return s.list(ctx, Filter{PatientID: &patientID}, q)
}

// ListMine returns the records a doctor authored or a patient owns.
func (s *Service) ListMine(ctx context.Context, actor access.Actor, q PageQuery) (*Page, error) {
	var f Filter
	switch actor.Role {
	case user.RoleDoctor:
		f.DoctorID = &actor.ID
	case user.RolePatient:
		f.PatientID = &actor.ID
	default:
		return nil, access.ErrForbidden
	}
	return s.list(ctx, f, q)
}

func (s *Service) list(ctx context.Context, f Filter, q PageQuery) (*Page, error) {
	q = q.normalize()

	recs, total, err := s.repo.ListRecords(ctx, f, q.Limit, q.offset())
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}

	cache := newLookupCache()
	page := &Page{
		MedicalRecords: make([]RecordDetail, 0, len(recs)),
		Pagination: Pagination{
			Current: q.Page,
			Pages:   (total + q.Limit - 1) / q.Limit,
			Total:   total,
		},
	}
	for i := range recs {
		d, err := s.populate(ctx, &recs[i], cache)
		if err != nil {
			return nil, err
		}
		page.MedicalRecords = append(page.MedicalRecords, *d)
	}
	return page, nil
}

// Get returns a record to its doctor or its patient.
func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*RecordDetail, error) {
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	if err := access.CanViewRecord(actor, rec.PatientID, rec.DoctorID); err != nil {
		return nil, err
	}
	return s.populate(ctx, rec, nil)
}

// Update overwrites the fields present in in. Only the record's doctor may
// update it.
func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, in UpdateInput) (*RecordDetail, error) {
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	if err := access.CanModifyRecord(actor, rec.DoctorID); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if !in.Vitals.empty() {
		rec.Vitals = in.Vitals.stamp(s.now())
	}
	if in.Diagnosis != nil {
		rec.Diagnosis = strings.TrimSpace(*in.Diagnosis)
	}
	if in.Symptoms != nil {
		rec.Symptoms = in.Symptoms
	}
	if in.Prescription != nil {
		rec.Prescription = in.Prescription
	}
	if in.Treatment != nil {
		rec.Treatment = strings.TrimSpace(*in.Treatment)
	}
	if in.FollowUp != nil {
		rec.FollowUp = followUp(in.FollowUp)
	}
	if in.Allergies != nil {
		rec.Allergies = in.Allergies
	}
	if in.MedicalHistory != nil {
		rec.MedicalHistory = in.MedicalHistory
	}
	if in.Notes != nil {
		rec.Notes = strings.TrimSpace(*in.Notes)
	}

	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("update medical record: %w", err)
	}
	return s.populate(ctx, rec, nil)
}

// Delete removes a record. Only the record's doctor may delete it.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get medical record: %w", err)
	}
	if err := access.CanModifyRecord(actor, rec.DoctorID); err != nil {
		return err
	}
	if err := s.repo.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}

	s.logger.Info().
		Str("record_id", id.String()).
		Str("actor_id", actor.ID.String()).
		Msg("medical record deleted")
	return nil
}

// RecordVitals appends a vitals-only record for the patient. Every call adds
// one point to the history; earlier readings are never rewritten.
func (s *Service) RecordVitals(ctx context.Context, actor access.Actor, patientID uuid.UUID, in VitalsInput) (*RecordDetail, error) {
	if err := access.CanWriteVitals(actor, patientID); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, validate.New("vitals", "at least one reading is required")
	}
	if _, err := s.patient(ctx, patientID); err != nil {
		return nil, err
	}

	rec := &MedicalRecord{
		ID:        uuid.New(),
		PatientID: patientID,
		Vitals:    in.stamp(s.now()),
	}
	if actor.IsDoctor() {
		doctorID := actor.ID
		rec.DoctorID = &doctorID
	}

	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("record vitals: %w", err)
	}
	return s.populate(ctx, rec, nil)
}

// VitalsHistory returns the patient's most recent vitals that include a
// weight reading, newest first.
func (s *Service) VitalsHistory(ctx context.Context, actor access.Actor, patientID uuid.UUID) ([]VitalsPoint, error) {
	if err := access.CanReadPatient(actor, patientID); err != nil {
		return nil, err
	}

	points, err := s.repo.ListVitals(ctx, patientID, vitalsHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list vitals: %w", err)
	}
	if points == nil {
		points = []VitalsPoint{}
	}
	return points, nil
}

func (s *Service) patient(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !u.IsPatient() {
		return nil, ErrPatientNotFound
	}
	return u, nil
}

func followUp(in *FollowUpInput) *FollowUp {
	if in == nil {
		return nil
	}
	f := &FollowUp{Required: in.Required, Notes: strings.TrimSpace(in.Notes)}
	if in.Date != nil {
		d, _ := validate.ParseDate(*in.Date)
		f.Date = &d
	}
	return f
}

type lookupCache struct {
	users        map[uuid.UUID]*user.Summary
	appointments map[uuid.UUID]*appointment.Summary
}

func newLookupCache() *lookupCache {
	return &lookupCache{
		users:        make(map[uuid.UUID]*user.Summary),
		appointments: make(map[uuid.UUID]*appointment.Summary),
	}
}

// populate attaches patient, doctor and appointment summaries. Missing
// referents are left nil. cache may be nil.
func (s *Service) populate(ctx context.Context, rec *MedicalRecord, cache *lookupCache) (*RecordDetail, error) {
	if cache == nil {
		cache = newLookupCache()
	}

	d := &RecordDetail{MedicalRecord: *rec}

	var err error
	if d.Patient, err = s.userSummary(ctx, rec.PatientID, cache); err != nil {
		return nil, err
	}
	if rec.DoctorID != nil {
		if d.Doctor, err = s.userSummary(ctx, *rec.DoctorID, cache); err != nil {
			return nil, err
		}
	}
	if rec.AppointmentID != nil {
		if d.Appointment, err = s.appointmentSummary(ctx, *rec.AppointmentID, cache); err != nil {
			return nil, err
		}
	}

	if d.Symptoms == nil {
		d.Symptoms = []string{}
	}
	if d.Allergies == nil {
		d.Allergies = []string{}
	}
	if d.MedicalHistory == nil {
		d.MedicalHistory = []string{}
	}
	return d, nil
}

func (s *Service) userSummary(ctx context.Context, id uuid.UUID, cache *lookupCache) (*user.Summary, error) {
	if sum, ok := cache.users[id]; ok {
		return sum, nil
	}
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			cache.users[id] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	cache.users[id] = u.Summary()
	return cache.users[id], nil
}

func (s *Service) appointmentSummary(ctx context.Context, id uuid.UUID, cache *lookupCache) (*appointment.Summary, error) {
	if sum, ok := cache.appointments[id]; ok {
		return sum, nil
	}
	a, err := s.appointments.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			cache.appointments[id] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("load appointment %s: %w", id, err)
	}
	cache.appointments[id] = a.Summary()
	return cache.appointments[id], nil
}
