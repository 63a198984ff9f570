package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/user"
)

const (
	UnitWeight      = "kg"
	UnitHeight      = "cm"
	UnitHeartRate   = "bpm"
	UnitTemperature = "°C"
)

// Reading is one measured value stamped with when it was taken.
type Reading struct {
	Value float64   `json:"value"`
	Unit  string    `json:"unit"`
	Date  time.Time `json:"date"`
}

type BloodPressure struct {
	Systolic  int       `json:"systolic"`
	Diastolic int       `json:"diastolic"`
	Date      time.Time `json:"date"`
}

type Vitals struct {
	Weight        *Reading       `json:"weight,omitempty"`
	Height        *Reading       `json:"height,omitempty"`
	HeartRate     *Reading       `json:"heartRate,omitempty"`
	BloodPressure *BloodPressure `json:"bloodPressure,omitempty"`
	Temperature   *Reading       `json:"temperature,omitempty"`
}

type Medication struct {
	Name      string `json:"name" validate:"required,max=200"`
	Dosage    string `json:"dosage" validate:"max=200"`
	Frequency string `json:"frequency" validate:"max=200"`
	Duration  string `json:"duration" validate:"max=200"`
}

type Prescription struct {
	Notes       string       `json:"notes,omitempty" validate:"max=2000"`
	Medications []Medication `json:"medications" validate:"max=50,dive"`
}

type FollowUp struct {
	Required bool       `json:"required"`
	Date     *time.Time `json:"date,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

type MedicalRecord struct {
	ID             uuid.UUID     `json:"id"`
	PatientID      uuid.UUID     `json:"patientId"`
	DoctorID       *uuid.UUID    `json:"doctorId"`
	AppointmentID  *uuid.UUID    `json:"appointmentId,omitempty"`
	Vitals         *Vitals       `json:"vitals,omitempty"`
	Diagnosis      string        `json:"diagnosis,omitempty"`
	Symptoms       []string      `json:"symptoms"`
	Prescription   *Prescription `json:"prescription,omitempty"`
	Treatment      string        `json:"treatment,omitempty"`
	FollowUp       *FollowUp     `json:"followUp,omitempty"`
	Allergies      []string      `json:"allergies"`
	MedicalHistory []string      `json:"medicalHistory"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// RecordDetail is a record with its patient, doctor and appointment attached.
type RecordDetail struct {
	MedicalRecord
	Patient     *user.Summary        `json:"patient,omitempty"`
	Doctor      *user.Summary        `json:"doctor,omitempty"`
	Appointment *appointment.Summary `json:"appointment,omitempty"`
}

// VitalsPoint is one entry of a patient's vitals history.
type VitalsPoint struct {
	ID        uuid.UUID `json:"id"`
	Vitals    Vitals    `json:"vitals"`
	CreatedAt time.Time `json:"createdAt"`
}

type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type Page struct {
	MedicalRecords []RecordDetail `json:"medicalRecords"`
	Pagination     Pagination     `json:"pagination"`
}

// PageQuery is the raw page/limit pair from a request; zero values take the
// defaults.
type PageQuery struct {
	Page  int
	Limit int
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

func (q PageQuery) normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}

func (q PageQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

// Filter selects records by owner. Nil fields do not filter.
type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

type BloodPressureInput struct {
	Systolic  *int `json:"systolic" validate:"required,gte=70,lte=200"`
	Diastolic *int `json:"diastolic" validate:"required,gte=40,lte=130"`
}

// VitalsInput is a set of raw readings. Units and dates are filled in when the
// readings are stored.
type VitalsInput struct {
	Weight        *float64            `json:"weight" validate:"omitempty,gte=0"`
	Height        *float64            `json:"height" validate:"omitempty,gte=0"`
	HeartRate     *int                `json:"heartRate" validate:"omitempty,gte=30,lte=200"`
	BloodPressure *BloodPressureInput `json:"bloodPressure"`
	Temperature   *float64            `json:"temperature" validate:"omitempty,gte=35,lte=42"`
}

func (in *VitalsInput) empty() bool {
	return in == nil ||
		in.Weight == nil && in.Height == nil && in.HeartRate == nil &&
			in.BloodPressure == nil && in.Temperature == nil
}

// stamp turns the readings into Vitals taken at now.
func (in *VitalsInput) stamp(now time.Time) *Vitals {
	if in.empty() {
		return nil
	}

	reading := func(v float64, unit string) *Reading {
		return &Reading{Value: v, Unit: unit, Date: now}
	}

	var v Vitals
	if in.Weight != nil {
		v.Weight = reading(*in.Weight, UnitWeight)
	}
	if in.Height != nil {
		v.Height = reading(*in.Height, UnitHeight)
	}
	if in.HeartRate != nil {
		v.HeartRate = reading(float64(*in.HeartRate), UnitHeartRate)
	}
	if bp := in.BloodPressure; bp != nil {
		v.BloodPressure = &BloodPressure{Systolic: *bp.Systolic, Diastolic: *bp.Diastolic, Date: now}
	}
	if in.Temperature != nil {
		v.Temperature = reading(*in.Temperature, UnitTemperature)
	}
	return &v
}

type FollowUpInput struct {
	Required bool    `json:"required"`
	Date     *string `json:"date" validate:"omitempty,isodate"`
	Notes    string  `json:"notes" validate:"max=2000"`
}

type CreateInput struct {
	PatientID      string         `json:"patientId" validate:"required,uuid"`
	AppointmentID  *string        `json:"appointmentId" validate:"omitempty,uuid"`
	Vitals         *VitalsInput   `json:"vitals"`
	Diagnosis      string         `json:"diagnosis" validate:"max=2000"`
	Symptoms       []string       `json:"symptoms" validate:"max=50,dive,max=200"`
	Prescription   *Prescription  `json:"prescription"`
	Treatment      string         `json:"treatment" validate:"max=2000"`
	FollowUp       *FollowUpInput `json:"followUp"`
	Allergies      []string       `json:"allergies" validate:"max=50,dive,max=200"`
	MedicalHistory []string       `json:"medicalHistory" validate:"max=50,dive,max=200"`
	Notes          string         `json:"notes" validate:"max=5000"`
}

// UpdateInput overwrites only the fields that are present.
type UpdateInput struct {
	Vitals         *VitalsInput   `json:"vitals"`
	Diagnosis      *string        `json:"diagnosis" validate:"omitempty,max=2000"`
	Symptoms       []string       `json:"symptoms" validate:"omitempty,max=50,dive,max=200"`
	Prescription   *Prescription  `json:"prescription"`
	Treatment      *string        `json:"treatment" validate:"omitempty,max=2000"`
	FollowUp       *FollowUpInput `json:"followUp"`
	Allergies      []string       `json:"allergies" validate:"omitempty,max=50,dive,max=200"`
	MedicalHistory []string       `json:"medicalHistory" validate:"omitempty,max=50,dive,max=200"`
	Notes          *string        `json:"notes" validate:"omitempty,max=5000"`
}
