package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventify/internal/domain"
)

const userColumns = `id, email, password_hash, salt, name, role, department, created_at, updated_at`

func scanUser(s rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var role string
	var deptNull sql.NullString
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &role, &deptNull, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if deptNull.Valid {
		u.Department = &deptNull.String
	}
	return u, nil
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, name, role, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.Salt, u.Name, string(u.Role), u.Department, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) SwapAchievementCount(ctx context.Context, id string, n int) (*int, error) {
	query := `
		WITH prev AS (
			SELECT id, achievement_count FROM users WHERE id = $1 FOR UPDATE
		)
		UPDATE users SET achievement_count = $2
		FROM prev
		WHERE users.id = prev.id
		RETURNING prev.achievement_count
	`
	var prev sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, query, id, n).Scan(&prev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if !prev.Valid {
		return nil, nil
	}
	v := int(prev.Int64)
	return &v, nil
}
