package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const userColumns = `id, role, name, email, password_hash, phone,
	specialization, license_number, experience,
	age, gender, address, emergency_contact,
	created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Role,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Phone,
		&u.Specialization,
		&u.LicenseNumber,
		&u.Experience,
		&u.Age,
		&u.Gender,
		&u.Address,
		&u.EmergencyContact,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *PgRepository) CreateUser(ctx context.Context, u *User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, role, name, email, password_hash, phone,
			specialization, license_number, experience,
			age, gender, address, emergency_contact,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING `+userColumns,
		u.ID, u.Role, u.Name, u.Email, u.PasswordHash, u.Phone,
		u.Specialization, u.LicenseNumber, u.Experience,
		u.Age, u.Gender, u.Address, u.EmergencyContact,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	*u = *created
	return nil
}

func (r *PgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PgRepository) UpdateUser(ctx context.Context, u *User) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2,
		    phone = $3,
		    specialization = $4,
		    license_number = $5,
		    experience = $6,
		    age = $7,
		    gender = $8,
		    address = $9,
		    emergency_contact = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Name, u.Phone,
		u.Specialization, u.LicenseNumber, u.Experience,
		u.Age, u.Gender, u.Address, u.EmergencyContact,
	)

	updated, err := scanUser(row)
	if err != nil {
		return err
	}

	*u = *updated
	return nil
}

func (r *PgRepository) ListUsersByRole(ctx context.Context, role Role) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		ORDER BY name
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
