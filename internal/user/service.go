package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/validate"
)

// PasswordHasher hides the hashing scheme from the service.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger zerolog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger.With().Str("component", "user").Logger(),
	}
}

// Register creates a patient or doctor account. Fields belonging to the other
// role are dropped.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Role:         in.Role,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
	}

	switch in.Role {
	case RoleDoctor:
		u.Specialization = strPtr(in.Specialization)
		u.LicenseNumber = strPtr(in.LicenseNumber)
		u.Experience = in.Experience
	case RolePatient:
		u.Age = in.Age
		u.Gender = strPtr(in.Gender)
		u.Address = strPtr(in.Address)
		if in.EmergencyContact != nil && *in.EmergencyContact != (EmergencyContact{}) {
			ec := *in.EmergencyContact
			u.EmergencyContact = &ec
		}
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// Login returns the user whose email and password match. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of in. Role-specific fields are
// ignored when they do not apply to the user's role.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}

	switch u.Role {
	case RoleDoctor:
		if in.Specialization != nil {
			u.Specialization = strPtr(*in.Specialization)
		}
		if in.LicenseNumber != nil {
			u.LicenseNumber = strPtr(*in.LicenseNumber)
		}
		if in.Experience != nil {
			u.Experience = in.Experience
		}
	case RolePatient:
		if in.Age != nil {
			u.Age = in.Age
		}
		if in.Gender != nil {
			u.Gender = strPtr(*in.Gender)
		}
		if in.Address != nil {
			u.Address = strPtr(*in.Address)
		}
		if in.EmergencyContact != nil {
			ec := *in.EmergencyContact
			u.EmergencyContact = &ec
		}
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return u, nil
}

// ListDoctors is the directory patients pick from when booking.
func (s *Service) ListDoctors(ctx context.Context) ([]User, error) {
	doctors, err := s.repo.ListUsersByRole(ctx, RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
