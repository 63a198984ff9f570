package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/logging"
	"github.com/hackgods/clinic-booking/internal/user"
)

type SimConfig struct {
	APIBaseURL      string
	Duration        time.Duration
	Workers         int
	RefetchInterval time.Duration
	BookingRatio    float64
	StatusRatio     float64
	VitalsRatio     float64
	ReadRatio       float64
	UserLimit       int
	Password        string
	PostgresDSN     string
	Env             string
	LogLevel        string
}

type bookedAppointment struct {
	ID       uuid.UUID
	DoctorID uuid.UUID
}

type DataPool struct {
	Patients []session
	Doctors  []session
	doctorBy map[uuid.UUID]session

	mu           sync.RWMutex
	appointments []bookedAppointment
}

func (dp *DataPool) AddAppointment(a bookedAppointment) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, a)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (bookedAppointment, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return bookedAppointment{}, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *apiClient
	metrics Metrics
	logger  zerolog.Logger
}

func main() {
	cfg := loadConfig()
	logger := logging.New("simulate", cfg.Env, cfg.LogLevel)

	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Dur("refetch", cfg.RefetchInterval).
		Float64("booking", cfg.BookingRatio).
		Float64("status", cfg.StatusRatio).
		Float64("vitals", cfg.VitalsRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: newAPIClient(cfg.APIBaseURL),
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := sim.loadSessions(ctx); err != nil {
		logger.Fatal().Err(err).Msg("load sessions")
	}

	logger.Info().
		Int("patients", len(sim.pool.Patients)).
		Int("doctors", len(sim.pool.Doctors)).
		Msg("sessions ready")

	sim.Run()
	sim.PrintReport()
}

// loadConfig reads only what the simulator needs. It never signs tokens, so
// the server's JWT settings are not required here.
func loadConfig() SimConfig {
	_ = godotenv.Load()

	cfg := SimConfig{
		APIBaseURL:      getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:        getDuration("SIM_DURATION", 30*time.Second),
		Workers:         getInt("SIM_WORKERS", 10),
		RefetchInterval: getDuration("SIM_REFETCH_INTERVAL", 5*time.Second),
		BookingRatio:    getFloat("SIM_BOOKING_RATIO", 0.3),
		StatusRatio:     getFloat("SIM_STATUS_RATIO", 0.2),
		VitalsRatio:     getFloat("SIM_VITALS_RATIO", 0.2),
		ReadRatio:       getFloat("SIM_READ_RATIO", 0.3),
		UserLimit:       getInt("SIM_USER_LIMIT", 50),
		Password:        getEnv("SIM_PASSWORD", "password123"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		Env:             getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.StatusRatio + cfg.VitalsRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.StatusRatio /= total
		cfg.VitalsRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.RefetchInterval <= 0 {
		return fmt.Errorf("SIM_REFETCH_INTERVAL must be > 0")
	}
	return nil
}

// loadSessions reads seeded accounts from Postgres and logs each one in
// through the API.
func (s *Simulator) loadSessions(ctx context.Context) error {
	pgPool, err := db.ConnectPostgres(ctx, s.config.PostgresDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgPool.Close()

	users := user.NewPgRepository(pgPool)
	s.pool = &DataPool{doctorBy: make(map[uuid.UUID]session)}

	for _, role := range []user.Role{user.RolePatient, user.RoleDoctor} {
		accounts, err := users.ListUsersByRole(ctx, role)
		if err != nil {
			return fmt.Errorf("list %ss: %w", role, err)
		}

		for _, u := range accounts[:min(len(accounts), s.config.UserLimit)] {
			start := time.Now()
			sess, code, err := s.client.login(ctx, u.Email, s.config.Password)
			s.metrics.Login.Record(time.Since(start), err == nil && code == http.StatusOK, false)
			if err != nil || code != http.StatusOK {
				s.logger.Warn().Err(err).Int("status", code).Str("email", u.Email).Msg("login failed")
				continue
			}

			if role == user.RoleDoctor {
				s.pool.Doctors = append(s.pool.Doctors, sess)
				s.pool.doctorBy[sess.ID] = sess
			} else {
				s.pool.Patients = append(s.pool.Patients, sess)
			}
		}
	}

	if len(s.pool.Patients) == 0 {
		return fmt.Errorf("no patient sessions (run cmd/seed first)")
	}
	if len(s.pool.Doctors) == 0 {
		return fmt.Errorf("no doctor sessions (run cmd/seed first)")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.refetcher(ctx)
	}()

	wg.Wait()
	s.logger.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			// Select operation based on ratios
			r := rng.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, rng)
			case r < s.config.BookingRatio+s.config.StatusRatio:
				s.doStatusChange(ctx, rng)
			case r < s.config.BookingRatio+s.config.StatusRatio+s.config.VitalsRatio:
				s.doVitals(ctx, rng)
			default:
				s.doRead(ctx, rng)
			}
		}
	}
}

// refetcher re-reads every patient's appointment list on a fixed interval,
// the way an open dashboard polls.
func (s *Simulator) refetcher(ctx context.Context) {
	ticker := time.NewTicker(s.config.RefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range s.pool.Patients {
				if ctx.Err() != nil {
					return
				}
				s.timed(&s.metrics.Refetch, func() (int, error) {
					return s.client.do(ctx, http.MethodGet, "/api/appointments", p.Token, nil, nil)
				}, http.StatusOK)
			}
		}
	}
}

// timed runs call and records it against om. Status codes in conflicts count
// as conflicts rather than errors.
func (s *Simulator) timed(om *OperationMetrics, call func() (int, error), ok int, conflicts ...int) int {
	start := time.Now()
	code, err := call()
	latency := time.Since(start)

	conflict := false
	for _, c := range conflicts {
		if code == c {
			conflict = true
		}
	}
	om.Record(latency, err == nil && code == ok, conflict)
	return code
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	doctor := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]

	body := map[string]any{
		"doctorId": doctor.ID,
		"date":     time.Now().AddDate(0, 0, 1+rng.Intn(14)).Format(time.DateOnly),
		"time":     appointment.TimeSlots[rng.Intn(len(appointment.TimeSlots))],
		"reason":   "Simulated visit",
	}

	var out struct {
		Appointment struct {
			ID       uuid.UUID `json:"id"`
			DoctorID uuid.UUID `json:"doctorId"`
		} `json:"appointment"`
	}
	code := s.timed(&s.metrics.Booking, func() (int, error) {
		return s.client.do(ctx, http.MethodPost, "/api/appointments", patient.Token, body, &out)
	}, http.StatusCreated)

	if code == http.StatusCreated && out.Appointment.ID != uuid.Nil {
		s.pool.AddAppointment(bookedAppointment{ID: out.Appointment.ID, DoctorID: out.Appointment.DoctorID})
	}
}

var doctorMoves = []appointment.Status{
	appointment.StatusAccepted,
	appointment.StatusAccepted,
	appointment.StatusRejected,
	appointment.StatusCompleted,
}

func (s *Simulator) doStatusChange(ctx context.Context, rng *rand.Rand) {
	appt, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	doctor, ok := s.pool.doctorBy[appt.DoctorID]
	if !ok {
		return
	}

	body := map[string]any{"status": doctorMoves[rng.Intn(len(doctorMoves))]}
	path := fmt.Sprintf("/api/appointments/%s/status", appt.ID)

	// 409 is expected: the appointment may already have moved on.
	s.timed(&s.metrics.Status, func() (int, error) {
		return s.client.do(ctx, http.MethodPut, path, doctor.Token, body, nil)
	}, http.StatusOK, http.StatusConflict)
}

func (s *Simulator) doVitals(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	body := map[string]any{
		"weight":      50 + rng.Float64()*60,
		"heartRate":   55 + rng.Intn(60),
		"temperature": 36 + rng.Float64()*2,
		"bloodPressure": map[string]int{
			"systolic":  100 + rng.Intn(50),
			"diastolic": 60 + rng.Intn(35),
		},
	}
	path := fmt.Sprintf("/api/medical-records/vitals/%s", patient.ID)

	s.timed(&s.metrics.Vitals, func() (int, error) {
		return s.client.do(ctx, http.MethodPut, path, patient.Token, body, nil)
	}, http.StatusOK)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	var path, token string
	switch rng.Intn(3) {
	case 0:
		path, token = "/api/appointments", patient.Token
	case 1:
		path, token = fmt.Sprintf("/api/medical-records/vitals/%s", patient.ID), patient.Token
	default:
		doctor := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]
		path, token = fmt.Sprintf("/api/medical-records/patient/%s?page=1&limit=10", patient.ID), doctor.Token
	}

	s.timed(&s.metrics.Read, func() (int, error) {
		return s.client.do(ctx, http.MethodGet, path, token, nil, nil)
	}, http.StatusOK)
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
