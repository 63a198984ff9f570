package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// User is either a patient or a doctor. Doctor-only and patient-only fields
// are nil for the other role.
type User struct {
	ID           uuid.UUID `json:"id"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`

	Specialization *string `json:"specialization,omitempty"`
	LicenseNumber  *string `json:"licenseNumber,omitempty"`
	Experience     *int    `json:"experience,omitempty"`

	Age              *int              `json:"age,omitempty"`
	Gender           *string           `json:"gender,omitempty"`
	Address          *string           `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsDoctor() bool  { return u.Role == RoleDoctor }
func (u *User) IsPatient() bool { return u.Role == RolePatient }

// Summary is the subset of a user inlined into appointments and records.
type Summary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	Age            *int      `json:"age,omitempty"`
	Gender         *string   `json:"gender,omitempty"`
	Address        *string   `json:"address,omitempty"`
}

func (u *User) Summary() *Summary {
	if u == nil {
		return nil
	}
	return &Summary{
		ID:             u.ID,
		Name:           u.Name,
		Phone:          u.Phone,
		Specialization: u.Specialization,
		Age:            u.Age,
		Gender:         u.Gender,
		Address:        u.Address,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     Role   `json:"role" validate:"required,oneof=patient doctor"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`

	Specialization string `json:"specialization" validate:"required_if=Role doctor,max=100"`
	LicenseNumber  string `json:"licenseNumber" validate:"required_if=Role doctor,max=50"`
	Experience     *int   `json:"experience" validate:"omitempty,gte=0,lte=80"`

	Age              *int              `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender           string            `json:"gender" validate:"omitempty,oneof=male female other"`
	Address          string            `json:"address" validate:"max=300"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput carries a partial profile update; nil fields are left as they are.
// Email and role cannot change.
type ProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`

	Specialization *string `json:"specialization" validate:"omitempty,min=1,max=100"`
	LicenseNumber  *string `json:"licenseNumber" validate:"omitempty,min=1,max=50"`
	Experience     *int    `json:"experience" validate:"omitempty,gte=0,lte=80"`

	Age              *int              `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender           *string           `json:"gender" validate:"omitempty,oneof=male female other"`
	Address          *string           `json:"address" validate:"omitempty,max=300"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
}
