package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-booking/internal/validate"
)

// -- Mock Repository --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

var _ Repository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) UpdateUser(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) ListUsersByRole(_ context.Context, role Role) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (plainHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, plainHasher{}, zerolog.Nop()), repo
}

func intp(n int) *int     { return &n }
func sp(s string) *string { return &s }

// -- Tests --

func TestRegister_Patient(t *testing.T) {
	svc, repo := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:             "Ada Patient",
		Email:            "  Ada@Example.com ",
		Password:         "secret1",
		Role:             RolePatient,
		Age:              intp(34),
		Gender:           "female",
		Specialization:   "ignored for patients",
		EmergencyContact: &EmergencyContact{Name: "Bob", Phone: "555", Relationship: "brother"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "hashed:secret1", u.PasswordHash)
	assert.Nil(t, u.Specialization)
	require.NotNil(t, u.EmergencyContact)
	assert.Equal(t, "Bob", u.EmergencyContact.Name)
	assert.Len(t, repo.users, 1)
}

func TestRegister_DoctorRequiresLicense(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:           "Dr Who",
		Email:          "who@example.com",
		Password:       "secret1",
		Role:           RoleDoctor,
		Specialization: "Cardiology",
	})

	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "licenseNumber", verrs[0].Field)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	in := RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1", Role: RolePatient}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "ANN@example.com"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "123", Role: RolePatient,
	})

	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "secret1", Role: RolePatient,
	})
	require.NoError(t, err)

	u, err := svc.Login(ctx, LoginInput{Email: "Ann@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_RoleSpecificFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Register(ctx, RegisterInput{
		Name: "Dr Grey", Email: "grey@example.com", Password: "secret1", Role: RoleDoctor,
		Specialization: "Surgery", LicenseNumber: "LIC-1",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, doc.ID, ProfileInput{
		Name:       sp("Dr Meredith Grey"),
		Experience: intp(12),
		Age:        intp(40),
	})
	require.NoError(t, err)

	assert.Equal(t, "Dr Meredith Grey", updated.Name)
	assert.Equal(t, 12, *updated.Experience)
	assert.Nil(t, updated.Age)
	assert.Equal(t, "grey@example.com", updated.Email)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), ProfileInput{Name: sp("Someone")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListDoctors(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Pat", Email: "p@example.com", Password: "secret1", Role: RolePatient})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{
		Name: "Doc", Email: "d@example.com", Password: "secret1", Role: RoleDoctor,
		Specialization: "ENT", LicenseNumber: "L-9",
	})
	require.NoError(t, err)

	doctors, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Doc", doctors[0].Name)
}
