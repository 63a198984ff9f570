package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-booking/internal/access"
	"github.com/hackgods/clinic-booking/internal/config"
	redisclient "github.com/hackgods/clinic-booking/internal/redis"
	"github.com/hackgods/clinic-booking/internal/user"
	"github.com/hackgods/clinic-booking/internal/validate"
)

// -- Mock Repositories --

type mockApptRepo struct {
	appts  map[uuid.UUID]*Appointment
	events []EventLog
}

var _ Repository = (*mockApptRepo)(nil)

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) CreateAppointment(_ context.Context, a *Appointment) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockApptRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockApptRepo) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockApptRepo) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockApptRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from Status, upd StatusUpdate) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = upd.To
	if upd.Notes != nil {
		a.Notes = *upd.Notes
	}
	if upd.Prescription != nil {
		a.Prescription = *upd.Prescription
	}
	if upd.FollowUpDate != nil {
		a.FollowUpDate = upd.FollowUpDate
	}
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (m *mockApptRepo) FindStalePending(_ context.Context, before time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.Status == StatusPending && a.Date.Before(before) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockApptRepo) InsertEvent(_ context.Context, ev EventLog) error {
	m.events = append(m.events, ev)
	return nil
}

type mockUsers map[uuid.UUID]*user.User

func (m mockUsers) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, uuid.UUID, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

// -- Fixtures --

type fixture struct {
	svc     *Service
	repo    *mockApptRepo
	patient access.Actor
	doctor  access.Actor
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	specialty := "Cardiology"
	pat := &user.User{ID: uuid.New(), Role: user.RolePatient, Name: "Pat"}
	doc := &user.User{ID: uuid.New(), Role: user.RoleDoctor, Name: "Doc", Specialization: &specialty}
	users := mockUsers{pat.ID: pat, doc.ID: doc}

	repo := newMockApptRepo()
	cfg := config.Config{StalePendingAfter: 24 * time.Hour}
	svc := NewService(repo, users, redisclient.NoopLocker{}, cfg, zerolog.Nop())

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:     svc,
		repo:    repo,
		patient: access.Actor{ID: pat.ID, Role: user.RolePatient},
		doctor:  access.Actor{ID: doc.ID, Role: user.RoleDoctor},
		now:     now,
	}
}

func (f *fixture) book(t *testing.T) *AppointmentDetail {
	t.Helper()
	d, err := f.svc.Book(context.Background(), f.patient, BookInput{
		DoctorID: f.doctor.ID.String(),
		Date:     "2025-06-12",
		Time:     "10:30",
		Reason:   "Chest pain",
	})
	require.NoError(t, err)
	return d
}

func strp(s string) *string { return &s }

// -- Tests --

func TestBook_CreatesPending(t *testing.T) {
	f := newFixture(t)

	d := f.book(t)

	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, f.patient.ID, d.PatientID)
	require.NotNil(t, d.Doctor)
	assert.Equal(t, "Doc", d.Doctor.Name)
	assert.Equal(t, "Cardiology", *d.Doctor.Specialization)
	require.NotNil(t, d.Patient)
	assert.Equal(t, "Pat", d.Patient.Name)
	require.Len(t, f.repo.events, 1)
	assert.Equal(t, EventAppointmentCreated, f.repo.events[0].EventType)
}

func TestBook_SameSlotTwiceAllowed(t *testing.T) {
	f := newFixture(t)

	first := f.book(t)
	second := f.book(t)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, f.repo.appts, 2)
}

func TestBook_DoctorCannotBook(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.doctor, BookInput{
		DoctorID: f.doctor.ID.String(), Date: "2025-06-12", Time: "10:30", Reason: "Check",
	})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestBook_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]BookInput{
		"time":     {DoctorID: f.doctor.ID.String(), Date: "2025-06-12", Time: "13:00", Reason: "Check"},
		"date":     {DoctorID: f.doctor.ID.String(), Date: "2025-06-01", Time: "10:30", Reason: "Check"},
		"doctorId": {DoctorID: "not-a-uuid", Date: "2025-06-12", Time: "10:30", Reason: "Check"},
		"reason":   {DoctorID: f.doctor.ID.String(), Date: "2025-06-12", Time: "10:30", Reason: "  "},
	}

	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.svc.Book(ctx, f.patient, in)
			var verrs validate.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, field, verrs[0].Field)
		})
	}
	assert.Empty(t, f.repo.appts)
}

func TestBook_UnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.patient, BookInput{
		DoctorID: uuid.NewString(), Date: "2025-06-12", Time: "10:30", Reason: "Check",
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	// A patient id is not a doctor.
	_, err = f.svc.Book(context.Background(), f.patient, BookInput{
		DoctorID: f.patient.ID.String(), Date: "2025-06-12", Time: "10:30", Reason: "Check",
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestUpdateStatus_DoctorAccepts(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)

	d, err := f.svc.UpdateStatus(context.Background(), f.doctor, booked.ID, StatusInput{
		Status:       StatusAccepted,
		Notes:        strp("Bring previous ECG"),
		Prescription: strp("Aspirin 75mg"),
		FollowUpDate: strp("2025-07-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, d.Status)
	assert.Equal(t, "Bring previous ECG", d.Notes)
	assert.Equal(t, "Aspirin 75mg", d.Prescription)
	require.NotNil(t, d.FollowUpDate)
	assert.Equal(t, "2025-07-01", d.FollowUpDate.Format(time.DateOnly))

	stored := f.repo.appts[booked.ID]
	assert.Equal(t, StatusAccepted, stored.Status)
	assert.Equal(t, "Aspirin 75mg", stored.Prescription)
	assert.Equal(t, EventAppointmentStatusChanged, f.repo.events[len(f.repo.events)-1].EventType)
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked := f.book(t)

	_, err := f.svc.UpdateStatus(ctx, f.doctor, booked.ID, StatusInput{Status: StatusAccepted})
	require.NoError(t, err)
	done, err := f.svc.UpdateStatus(ctx, f.doctor, booked.ID, StatusInput{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	_, err = f.svc.UpdateStatus(ctx, f.doctor, booked.ID, StatusInput{Status: StatusAccepted})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatus_PatientCannotAccept(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.patient, booked.ID, StatusInput{Status: StatusAccepted})
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Equal(t, StatusPending, f.repo.appts[booked.ID].Status)
}

func TestUpdateStatus_UnassignedDoctor(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)
	stranger := access.Actor{ID: uuid.New(), Role: user.RoleDoctor}

	_, err := f.svc.UpdateStatus(context.Background(), stranger, booked.ID, StatusInput{Status: StatusAccepted})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.doctor, uuid.New(), StatusInput{Status: StatusAccepted})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatus_InvalidStatusValue(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.doctor, booked.ID, StatusInput{Status: "confirmed"})
	var verrs validate.Errors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdateStatus_LockBusy(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t)
	f.svc.locker = busyLocker{}

	_, err := f.svc.UpdateStatus(context.Background(), f.doctor, booked.ID, StatusInput{Status: StatusAccepted})
	assert.ErrorIs(t, err, ErrAppointmentBusy)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("patient cancels pending", func(t *testing.T) {
		booked := f.book(t)
		d, err := f.svc.Cancel(ctx, f.patient, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, d.Status)
		assert.Contains(t, f.repo.appts, booked.ID)
	})

	t.Run("doctor cancels pending", func(t *testing.T) {
		booked := f.book(t)
		d, err := f.svc.Cancel(ctx, f.doctor, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, d.Status)
	})

	t.Run("unassigned doctor cannot cancel", func(t *testing.T) {
		booked := f.book(t)
		stranger := access.Actor{ID: uuid.New(), Role: user.RoleDoctor}
		_, err := f.svc.Cancel(ctx, stranger, booked.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("other patient cannot cancel", func(t *testing.T) {
		booked := f.book(t)
		other := access.Actor{ID: uuid.New(), Role: user.RolePatient}
		_, err := f.svc.Cancel(ctx, other, booked.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("patient cannot cancel accepted", func(t *testing.T) {
		booked := f.book(t)
		_, err := f.svc.UpdateStatus(ctx, f.doctor, booked.ID, StatusInput{Status: StatusAccepted})
		require.NoError(t, err)
		_, err = f.svc.Cancel(ctx, f.patient, booked.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)

		d, err := f.svc.Cancel(ctx, f.doctor, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, d.Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		booked := f.book(t)
		_, err := f.svc.Cancel(ctx, f.patient, booked.ID)
		require.NoError(t, err)
		_, err = f.svc.Cancel(ctx, f.patient, booked.ID)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked := f.book(t)

	mine, err := f.svc.List(ctx, f.patient)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Doc", mine[0].Doctor.Name)

	theirs, err := f.svc.List(ctx, f.doctor)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Pat", theirs[0].Patient.Name)

	other, err := f.svc.List(ctx, access.Actor{ID: uuid.New(), Role: user.RolePatient})
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.svc.Get(ctx, f.doctor, booked.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, access.Actor{ID: uuid.New(), Role: user.RoleDoctor}, booked.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestExpirePendingAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := &Appointment{ID: uuid.New(), PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Time: "09:00", Status: StatusPending}
	accepted := &Appointment{ID: uuid.New(), PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Time: "09:30", Status: StatusAccepted}
	yesterday := &Appointment{ID: uuid.New(), PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		Date: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), Time: "10:00", Status: StatusPending}
	for _, a := range []*Appointment{old, accepted, yesterday} {
		require.NoError(t, f.repo.CreateAppointment(ctx, a))
	}

	n, err := f.svc.ExpirePendingAppointments(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, StatusCancelled, f.repo.appts[old.ID].Status)
	assert.Equal(t, StatusAccepted, f.repo.appts[accepted.ID].Status)
	assert.Equal(t, StatusPending, f.repo.appts[yesterday.ID].Status)
	assert.Equal(t, EventAppointmentExpired, f.repo.events[len(f.repo.events)-1].EventType)
}

type failingEventRepo struct{ *mockApptRepo }

func (failingEventRepo) InsertEvent(context.Context, EventLog) error {
	return errors.New("event store down")
}

func TestEventLogFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.svc.repo = failingEventRepo{f.repo}

	d := f.book(t)
	assert.Equal(t, StatusPending, d.Status)
}
