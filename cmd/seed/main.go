package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/auth"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/logging"
	"github.com/hackgods/clinic-booking/internal/record"
	"github.com/hackgods/clinic-booking/internal/user"
)

const (
	doctorCount  = 20
	patientCount = 200

	// seedPassword is the login password of every seeded account.
	seedPassword = "password123"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var reasons = []string{
	"Annual checkup",
	"Persistent headache",
	"Chest pain",
	"Skin rash",
	"Follow-up visit",
	"Back pain",
	"Blood test results",
	"Allergy symptoms",
}

type seeder struct {
	users   *user.PgRepository
	appts   *appointment.PgRepository
	records *record.PgRepository
	hash    string
	logger  zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("seed", "prod", "info")
		bootLogger.Fatal().Err(err).Msg("config load error")
	}
	logger := logging.New("seed", cfg.Env, cfg.LogLevel)
	logger.Info().Msg("seed starting")

	ctx := context.Background()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.ConnectPostgres(connectCtx, cfg.PostgresDSN, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	s, err := newSeeder(pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init seeder")
	}

	doctors, err := s.seedUsers(ctx, user.RoleDoctor, doctorCount)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	patients, err := s.seedUsers(ctx, user.RolePatient, patientCount)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}
	if err := s.seedHistory(ctx, doctors, patients); err != nil {
		logger.Fatal().Err(err).Msg("seed appointments and records")
	}

	logger.Info().Str("password", seedPassword).Msg("seed complete")
}

func newSeeder(pool *pgxpool.Pool, logger zerolog.Logger) (*seeder, error) {
	hash, err := auth.BcryptHasher{}.Hash(seedPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &seeder{
		users:   user.NewPgRepository(pool),
		appts:   appointment.NewPgRepository(pool),
		records: record.NewPgRepository(pool),
		hash:    hash,
		logger:  logger,
	}, nil
}

func (s *seeder) seedUsers(ctx context.Context, role user.Role, count int) ([]*user.User, error) {
	s.logger.Info().Str("role", string(role)).Int("count", count).Msg("seeding users")

	created := make([]*user.User, 0, count)
	for i := 0; i < count; i++ {
		u := fakeUser(role, i)
		u.PasswordHash = s.hash
		if err := s.users.CreateUser(ctx, u); err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				// Already seeded on an earlier run.
				continue
			}
			return nil, err
		}
		created = append(created, u)
	}

	s.logger.Info().Str("role", string(role)).Int("created", len(created)).Msg("users seeded")
	return created, nil
}

func fakeUser(role user.Role, i int) *user.User {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	u := &user.User{
		ID:    uuid.New(),
		Role:  role,
		Email: fmt.Sprintf("%s.%s.%d@%s.example.com", strings.ToLower(first), strings.ToLower(last), i, role),
		Phone: gofakeit.Phone(),
	}

	switch role {
	case user.RoleDoctor:
		u.Name = "Dr. " + first + " " + last
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]
		license := fmt.Sprintf("LIC-%06d", gofakeit.Number(0, 999999))
		exp := gofakeit.Number(1, 35)
		u.Specialization, u.LicenseNumber, u.Experience = &specialty, &license, &exp
	case user.RolePatient:
		u.Name = first + " " + last
		age := gofakeit.Number(1, 95)
		gender := gofakeit.RandomString([]string{"male", "female", "other"})
		addr := gofakeit.Address().Address
		u.Age, u.Gender, u.Address = &age, &gender, &addr
		u.EmergencyContact = &user.EmergencyContact{
			Name:         gofakeit.Name(),
			Phone:        gofakeit.Phone(),
			Relationship: gofakeit.RandomString([]string{"spouse", "parent", "sibling", "friend"}),
		}
	}
	return u
}

// seedHistory books up to three appointments per patient. Past appointments
// end completed or cancelled and completed ones get a medical record.
func (s *seeder) seedHistory(ctx context.Context, doctors, patients []*user.User) error {
	if len(doctors) == 0 || len(patients) == 0 {
		s.logger.Warn().Msg("no new users, skipping appointments")
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var booked, records int

	for _, p := range patients {
		for range gofakeit.Number(0, 3) {
			d := doctors[gofakeit.Number(0, len(doctors)-1)]
			date := today.AddDate(0, 0, gofakeit.Number(-30, 30))

			appt := &appointment.Appointment{
				ID:        uuid.New(),
				PatientID: p.ID,
				DoctorID:  d.ID,
				Date:      date,
				Time:      appointment.TimeSlots[gofakeit.Number(0, len(appointment.TimeSlots)-1)],
				Reason:    reasons[gofakeit.Number(0, len(reasons)-1)],
				Symptoms:  gofakeit.Sentence(6),
				Status:    appointment.StatusPending,
			}
			if err := s.appts.CreateAppointment(ctx, appt); err != nil {
				return err
			}
			booked++

			final, err := s.advance(ctx, appt, date.Before(today))
			if err != nil {
				return err
			}
			if final != appointment.StatusCompleted {
				continue
			}

			if err := s.records.CreateRecord(ctx, fakeRecord(appt)); err != nil {
				return err
			}
			records++
		}
	}

	s.logger.Info().Int("appointments", booked).Int("records", records).Msg("history seeded")
	return nil
}

// advance walks a pending appointment through the transition table.
func (s *seeder) advance(ctx context.Context, appt *appointment.Appointment, past bool) (appointment.Status, error) {
	var path []appointment.Status
	switch roll := gofakeit.Number(0, 9); {
	case past && roll < 7:
		path = []appointment.Status{appointment.StatusAccepted, appointment.StatusCompleted}
	case past:
		path = []appointment.Status{appointment.StatusCancelled}
	case roll < 4:
		path = []appointment.Status{appointment.StatusAccepted}
	case roll < 5:
		path = []appointment.Status{appointment.StatusRejected}
	}

	from := appointment.StatusPending
	for _, to := range path {
		upd := appointment.StatusUpdate{To: to}
		if to == appointment.StatusCompleted {
			notes := gofakeit.Sentence(10)
			upd.Notes = &notes
		}
		if _, err := s.appts.UpdateAppointmentStatus(ctx, appt.ID, from, upd); err != nil {
			return from, err
		}
		from = to
	}
	return from, nil
}

func fakeRecord(appt *appointment.Appointment) *record.MedicalRecord {
	taken := appt.Date.Add(9 * time.Hour)
	doctorID, apptID := appt.DoctorID, appt.ID

	return &record.MedicalRecord{
		ID:            uuid.New(),
		PatientID:     appt.PatientID,
		DoctorID:      &doctorID,
		AppointmentID: &apptID,
		Vitals: &record.Vitals{
			Weight:      &record.Reading{Value: gofakeit.Float64Range(40, 120), Unit: record.UnitWeight, Date: taken},
			Height:      &record.Reading{Value: gofakeit.Float64Range(150, 200), Unit: record.UnitHeight, Date: taken},
			HeartRate:   &record.Reading{Value: float64(gofakeit.Number(55, 110)), Unit: record.UnitHeartRate, Date: taken},
			Temperature: &record.Reading{Value: gofakeit.Float64Range(36, 38.5), Unit: record.UnitTemperature, Date: taken},
			BloodPressure: &record.BloodPressure{
				Systolic:  gofakeit.Number(100, 160),
				Diastolic: gofakeit.Number(60, 100),
				Date:      taken,
			},
		},
		Diagnosis: gofakeit.Sentence(4),
		Symptoms:  []string{gofakeit.Word(), gofakeit.Word()},
		Prescription: &record.Prescription{
			Medications: []record.Medication{{
				Name:      gofakeit.Word(),
				Dosage:    fmt.Sprintf("%dmg", gofakeit.Number(5, 500)),
				Frequency: gofakeit.RandomString([]string{"once daily", "twice daily", "as needed"}),
				Duration:  fmt.Sprintf("%d days", gofakeit.Number(3, 30)),
			}},
		},
		Treatment: gofakeit.Sentence(8),
		Allergies: []string{},
		Notes:     gofakeit.Sentence(12),
	}
}
