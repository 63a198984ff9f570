package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/access"
	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/record"
	"github.com/hackgods/clinic-booking/internal/user"
	"github.com/hackgods/clinic-booking/internal/validate"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type errorsResponse struct {
	Errors validate.Errors `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a bare server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validate.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: verrs})

	case errors.Is(err, user.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")

	case errors.Is(err, access.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Access denied")

	case errors.Is(err, user.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeMessage(w, http.StatusNotFound, "Doctor not found")
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeMessage(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, record.ErrPatientNotFound):
		writeMessage(w, http.StatusNotFound, "Patient not found")
	case errors.Is(err, record.ErrRecordNotFound):
		writeMessage(w, http.StatusNotFound, "Medical record not found")

	case errors.Is(err, user.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, "User already exists")
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, appointment.ErrAppointmentBusy):
		writeMessage(w, http.StatusConflict, err.Error())

	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// decodeJSON reads the request body into v. A malformed body is reported as a
// validation failure on "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validate.New(typeErr.Field, "has an invalid type")
		}
		return validate.New("body", "could not parse JSON")
	}
	return nil
}

// pathID parses a uuid route parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, validate.New(name, "must be a valid id")
	}
	return id, nil
}

// actor returns the caller resolved by the auth middleware.
func actor(r *http.Request) access.Actor {
	a, _ := access.ActorFrom(r.Context())
	return a
}
