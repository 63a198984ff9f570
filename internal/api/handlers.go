package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-booking/internal/access"
	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/record"
	"github.com/hackgods/clinic-booking/internal/user"
)

type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, error)
	Login(ctx context.Context, in user.LoginInput) (*user.User, error)
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in user.ProfileInput) (*user.User, error)
	ListDoctors(ctx context.Context) ([]user.User, error)
}

type AppointmentService interface {
	Book(ctx context.Context, actor access.Actor, in appointment.BookInput) (*appointment.AppointmentDetail, error)
	List(ctx context.Context, actor access.Actor) ([]appointment.AppointmentDetail, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*appointment.AppointmentDetail, error)
	UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, in appointment.StatusInput) (*appointment.AppointmentDetail, error)
	Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*appointment.AppointmentDetail, error)
}

type RecordService interface {
	Create(ctx context.Context, actor access.Actor, in record.CreateInput) (*record.RecordDetail, error)
	ListByPatient(ctx context.Context, actor access.Actor, patientID uuid.UUID, q record.PageQuery) (*record.Page, error)
	ListMine(ctx context.Context, actor access.Actor, q record.PageQuery) (*record.Page, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*record.RecordDetail, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, in record.UpdateInput) (*record.RecordDetail, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
	RecordVitals(ctx context.Context, actor access.Actor, patientID uuid.UUID, in record.VitalsInput) (*record.RecordDetail, error)
	VitalsHistory(ctx context.Context, actor access.Actor, patientID uuid.UUID) ([]record.VitalsPoint, error)
}

// TokenIssuer mints the bearer credential returned by register and login.
type TokenIssuer interface {
	Issue(userID uuid.UUID, role user.Role) (string, error)
}
