package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/access"
	"github.com/hackgods/clinic-booking/internal/config"
	redisclient "github.com/hackgods/clinic-booking/internal/redis"
	"github.com/hackgods/clinic-booking/internal/user"
	"github.com/hackgods/clinic-booking/internal/validate"
)

const (
	EventAppointmentCreated       = "APPOINTMENT_CREATED"
	EventAppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentExpired       = "APPOINTMENT_EXPIRED"
)

const lockResource = "appointment"

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrAppointmentBusy = errors.New("appointment is being updated, please retry")
	ErrStatusRaceLost  = fmt.Errorf("%w: status changed concurrently", ErrInvalidStatusTransition)
)

// UserLookup resolves the parties of an appointment.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service struct {
	repo   Repository
	users  UserLookup
	locker redisclient.Locker
	cfg    config.Config
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, users UserLookup, locker redisclient.Locker, cfg config.Config, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		locker: locker,
		cfg:    cfg,
		logger: logger.With().Str("component", "appointment").Logger(),
		now:    time.Now,
	}
}

// Book creates a pending appointment for the calling patient. The same
// doctor/date/time may be booked any number of times.
func (s *Service) Book(ctx context.Context, actor access.Actor, in BookInput) (*AppointmentDetail, error) {
	if err := access.CanBook(actor); err != nil {
		return nil, err
	}

	in.Reason = strings.TrimSpace(in.Reason)
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if !slices.Contains(TimeSlots, in.Time) {
		return nil, validate.New("time", "must be one of the bookable slots")
	}

	date, _ := validate.ParseDate(in.Date)
	date = truncateDay(date)
	if date.Before(truncateDay(s.now())) {
		return nil, validate.New("date", "must not be in the past")
	}

	doctorID := uuid.MustParse(in.DoctorID)
	doctor, err := s.users.GetUserByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !doctor.IsDoctor() {
		return nil, ErrDoctorNotFound
	}

	appt := &Appointment{
		ID:        uuid.New(),
		PatientID: actor.ID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      in.Time,
		Reason:    in.Reason,
		Symptoms:  in.Symptoms,
		Status:    StatusPending,
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCreated, map[string]any{
		"patient_id": appt.PatientID.String(),
		"doctor_id":  appt.DoctorID.String(),
		"date":       appt.Date.Format(time.DateOnly),
		"time":       appt.Time,
	})

	return s.populate(ctx, appt, map[uuid.UUID]*user.Summary{doctor.ID: doctor.Summary()})
}

// List returns the actor's own appointments, newest date first.
func (s *Service) List(ctx context.Context, actor access.Actor) ([]AppointmentDetail, error) {
	var (
		appts []Appointment
		err   error
	)
	switch actor.Role {
	case user.RoleDoctor:
		appts, err = s.repo.ListAppointmentsByDoctor(ctx, actor.ID)
	case user.RolePatient:
		appts, err = s.repo.ListAppointmentsByPatient(ctx, actor.ID)
	default:
		return nil, access.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	cache := make(map[uuid.UUID]*user.Summary)
	result := make([]AppointmentDetail, 0, len(appts))
	for i := range appts {
		d, err := s.populate(ctx, &appts[i], cache)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, nil
}

// Get returns one appointment to either of its parties.
func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if err := access.CanAccessAppointment(actor, appt.PatientID, appt.DoctorID); err != nil {
		return nil, err
	}
	return s.populate(ctx, appt, nil)
}

// UpdateStatus moves an appointment along the transition table. Notes,
// prescription and follow-up date are written with whatever status results.
func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, in StatusInput) (*AppointmentDetail, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	upd := StatusUpdate{To: in.Status, Notes: in.Notes, Prescription: in.Prescription}
	if in.FollowUpDate != nil {
		d, _ := validate.ParseDate(*in.FollowUpDate)
		d = truncateDay(d)
		upd.FollowUpDate = &d
	}

	return s.transition(ctx, actor, id, upd)
}

// Cancel is a transition to cancelled. The row is kept.
func (s *Service) Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*AppointmentDetail, error) {
	return s.transition(ctx, actor, id, StatusUpdate{To: StatusCancelled})
}

func (s *Service) transition(ctx context.Context, actor access.Actor, id uuid.UUID, upd StatusUpdate) (*AppointmentDetail, error) {
	var updated *Appointment

	err := s.locker.WithLock(ctx, lockResource, id, func(lockCtx context.Context) error {
		appt, err := s.repo.GetAppointmentByID(lockCtx, id)
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}
		if err := access.CanAccessAppointment(actor, appt.PatientID, appt.DoctorID); err != nil {
			return err
		}
		if err := CheckTransition(appt.Status, upd.To, PartyOf(actor)); err != nil {
			return err
		}

		updated, err = s.repo.UpdateAppointmentStatus(lockCtx, id, appt.Status, upd)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				return ErrStatusRaceLost
			}
			return fmt.Errorf("update appointment status: %w", err)
		}

		s.logEvent(lockCtx, id, EventAppointmentStatusChanged, map[string]any{
			"from":     appt.Status,
			"to":       upd.To,
			"actor_id": actor.ID.String(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrAppointmentBusy
		}
		return nil, err
	}

	return s.populate(ctx, updated, nil)
}

// ExpirePendingAppointments cancels pending appointments whose date is more
// than StalePendingAfter in the past. It is called by the worker periodically.
func (s *Service) ExpirePendingAppointments(ctx context.Context) (int, error) {
	if err := CheckTransition(StatusPending, StatusCancelled, PartySystem); err != nil {
		return 0, err
	}

	cutoff := truncateDay(s.now().Add(-s.cfg.StalePendingAfter))
	stale, err := s.repo.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find stale pending appointments: %w", err)
	}

	expired := 0
	for _, appt := range stale {
		_, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusUpdate{To: StatusCancelled})
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				s.logger.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to expire appointment")
			}
			continue
		}
		expired++
		s.logEvent(ctx, appt.ID, EventAppointmentExpired, map[string]any{
			"reason": "worker",
			"date":   appt.Date.Format(time.DateOnly),
		})
	}

	return expired, nil
}

// populate attaches patient and doctor summaries. cache may be nil.
func (s *Service) populate(ctx context.Context, appt *Appointment, cache map[uuid.UUID]*user.Summary) (*AppointmentDetail, error) {
	if cache == nil {
		cache = make(map[uuid.UUID]*user.Summary)
	}

	patient, err := s.summary(ctx, appt.PatientID, cache)
	if err != nil {
		return nil, err
	}
	doctor, err := s.summary(ctx, appt.DoctorID, cache)
	if err != nil {
		return nil, err
	}

	return &AppointmentDetail{Appointment: *appt, Patient: patient, Doctor: doctor}, nil
}

func (s *Service) summary(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*user.Summary) (*user.Summary, error) {
	if sum, ok := cache[id]; ok {
		return sum, nil
	}
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			cache[id] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	cache[id] = u.Summary()
	return cache[id], nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Error().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
