package api

import (
	"net/http"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/user"
)

type appointmentResponse struct {
	Message     string                         `json:"message"`
	Appointment *appointment.AppointmentDetail `json:"appointment"`
}

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.List(r.Context(), actor(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func listDoctorsHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := users.ListDoctors(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if doctors == nil {
			doctors = []user.User{}
		}
		writeJSON(w, http.StatusOK, doctors)
	}
}

func listSlotsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, appointment.TimeSlots)
}

func bookAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in appointment.BookInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		appt, err := svc.Book(r.Context(), actor(r), in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse{
			Message:     "Appointment booked successfully",
			Appointment: appt,
		})
	}
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		appt, err := svc.Get(r.Context(), actor(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func updateAppointmentStatusHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		var in appointment.StatusInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), actor(r), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse{
			Message:     "Appointment status updated successfully",
			Appointment: appt,
		})
	}
}

func cancelAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}

		appt, err := svc.Cancel(r.Context(), actor(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse{
			Message:     "Appointment cancelled successfully",
			Appointment: appt,
		})
	}
}
