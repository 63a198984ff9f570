package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/record"
	"github.com/hackgods/clinic-booking/internal/user"
)

// memStore backs all three repositories in memory for router tests.
type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]user.User
	appts   map[uuid.UUID]appointment.Appointment
	records map[uuid.UUID]record.MedicalRecord
	clock   time.Time
}

var (
	_ user.Repository        = (*memStore)(nil)
	_ appointment.Repository = (*memStore)(nil)
	_ record.Repository      = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]user.User),
		appts:   make(map[uuid.UUID]appointment.Appointment),
		records: make(map[uuid.UUID]record.MedicalRecord),
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// users

func (m *memStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memStore) UpdateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	u.UpdatedAt = m.tick()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) ListUsersByRole(_ context.Context, role user.Role) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// appointments

func (m *memStore) CreateAppointment(_ context.Context, a *appointment.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt = m.tick()
	a.UpdatedAt = a.CreatedAt
	m.appts[a.ID] = *a
	return nil
}

func (m *memStore) GetAppointmentByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *memStore) listAppointments(match func(appointment.Appointment) bool) []appointment.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []appointment.Appointment
	for _, a := range m.appts {
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID) ([]appointment.Appointment, error) {
	return m.listAppointments(func(a appointment.Appointment) bool { return a.PatientID == patientID }), nil
}

func (m *memStore) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]appointment.Appointment, error) {
	return m.listAppointments(func(a appointment.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (m *memStore) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from appointment.Status, upd appointment.StatusUpdate) (*appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok || a.Status != from {
		return nil, appointment.ErrAppointmentNotFound
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
	a.UpdatedAt = m.tick()
	m.appts[id] = a
	return &a, nil
}

func (m *memStore) FindStalePending(_ context.Context, before time.Time) ([]appointment.Appointment, error) {
	return m.listAppointments(func(a appointment.Appointment) bool {
		return a.Status == appointment.StatusPending && a.Date.Before(before)
	}), nil
}

func (m *memStore) InsertEvent(context.Context, appointment.EventLog) error { return nil }

// records

func (m *memStore) CreateRecord(_ context.Context, r *record.MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.CreatedAt = m.tick()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = *r
	return nil
}

func (m *memStore) GetRecordByID(_ context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, record.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memStore) sortedRecords(match func(record.MedicalRecord) bool) []record.MedicalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []record.MedicalRecord
	for _, r := range m.records {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListRecords(_ context.Context, f record.Filter, limit, offset int) ([]record.MedicalRecord, int, error) {
	all := m.sortedRecords(func(r record.MedicalRecord) bool {
		if f.PatientID != nil && r.PatientID != *f.PatientID {
			return false
		}
		if f.DoctorID != nil && (r.DoctorID == nil || *r.DoctorID != *f.DoctorID) {
			return false
		}
		return true
	})
	if offset >= len(all) {
		return nil, len(all), nil
	}
	return all[offset:min(offset+limit, len(all))], len(all), nil
}

func (m *memStore) UpdateRecord(_ context.Context, r *record.MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; !ok {
		return record.ErrRecordNotFound
	}
	r.UpdatedAt = m.tick()
	m.records[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRecord(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return record.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) ListVitals(_ context.Context, patientID uuid.UUID, limit int) ([]record.VitalsPoint, error) {
	all := m.sortedRecords(func(r record.MedicalRecord) bool {
		return r.PatientID == patientID && r.Vitals != nil && r.Vitals.Weight != nil
	})
	var out []record.VitalsPoint
	for i := 0; i < len(all) && i < limit; i++ {
		out = append(out, record.VitalsPoint{ID: all[i].ID, Vitals: *all[i].Vitals, CreatedAt: all[i].CreatedAt})
	}
	return out, nil
}
