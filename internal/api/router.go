package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/auth"
)

type RouterConfig struct {
	Users        UserService
	Appointments AppointmentService
	Records      RecordService
	Tokens       *auth.TokenManager
	Health       *HealthHandler
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware)

	// Health endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", registerHandler(cfg.Users, cfg.Tokens))
		r.Post("/auth/login", loginHandler(cfg.Users, cfg.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Tokens))

			r.Get("/auth/me", meHandler(cfg.Users))
			r.Put("/auth/profile", updateProfileHandler(cfg.Users))

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", listAppointmentsHandler(cfg.Appointments))
				r.Post("/", bookAppointmentHandler(cfg.Appointments))
				r.Get("/doctors", listDoctorsHandler(cfg.Users))
				r.Get("/slots", listSlotsHandler)
				r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
				r.Put("/{id}/status", updateAppointmentStatusHandler(cfg.Appointments))
				r.Delete("/{id}", cancelAppointmentHandler(cfg.Appointments))
			})

			r.Route("/medical-records", func(r chi.Router) {
				r.Get("/", listMyRecordsHandler(cfg.Records))
				r.Post("/", createRecordHandler(cfg.Records))
				r.Get("/patient/{patientId}", listPatientRecordsHandler(cfg.Records))
				r.Get("/vitals/{patientId}", vitalsHistoryHandler(cfg.Records))
				r.Put("/vitals/{patientId}", recordVitalsHandler(cfg.Records))
				r.Get("/{id}", getRecordHandler(cfg.Records))
				r.Put("/{id}", updateRecordHandler(cfg.Records))
				r.Delete("/{id}", deleteRecordHandler(cfg.Records))
			})
		})
	})

	return r
}
