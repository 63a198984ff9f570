package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/user"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// TimeSlots are the bookable slot labels. They are labels only; nothing checks
// a doctor's availability or whether a slot is already taken.
var TimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "14:00", "14:30", "15:00", "15:30",
	"16:00", "16:30", "17:00", "17:30",
}

type Appointment struct {
	ID           uuid.UUID  `json:"id"`
	PatientID    uuid.UUID  `json:"patientId"`
	DoctorID     uuid.UUID  `json:"doctorId"`
	Date         time.Time  `json:"date"`
	Time         string     `json:"time"`
	Reason       string     `json:"reason"`
	Symptoms     string     `json:"symptoms,omitempty"`
	Status       Status     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	Prescription string     `json:"prescription,omitempty"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Summary is the subset of an appointment inlined into medical records.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Date     time.Time `json:"date"`
	Time     string    `json:"time"`
	Reason   string    `json:"reason"`
	Symptoms string    `json:"symptoms,omitempty"`
}

func (a *Appointment) Summary() *Summary {
	if a == nil {
		return nil
	}
	return &Summary{ID: a.ID, Date: a.Date, Time: a.Time, Reason: a.Reason, Symptoms: a.Symptoms}
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// AppointmentDetail is an appointment with both parties attached for display.
type AppointmentDetail struct {
	Appointment
	Patient *user.Summary `json:"patient,omitempty"`
	Doctor  *user.Summary `json:"doctor,omitempty"`
}

// StatusUpdate is what gets written with a status change. Nil fields keep the
// stored value.
type StatusUpdate struct {
	To           Status
	Notes        *string
	Prescription *string
	FollowUpDate *time.Time
}

type BookInput struct {
	DoctorID string `json:"doctorId" validate:"required,uuid"`
	Date     string `json:"date" validate:"required,isodate"`
	Time     string `json:"time" validate:"required"`
	Reason   string `json:"reason" validate:"required,min=3,max=500"`
	Symptoms string `json:"symptoms" validate:"max=1000"`
}

type StatusInput struct {
	Status       Status  `json:"status" validate:"required,oneof=pending accepted completed cancelled rejected"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
	Prescription *string `json:"prescription" validate:"omitempty,max=2000"`
	FollowUpDate *string `json:"followUpDate" validate:"omitempty,isodate"`
}
