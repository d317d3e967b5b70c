package postgres

import (
	"context"
	"database/sql"

	"conclusio/internal/model"
	"conclusio/internal/repository"
)

const userColumns = `id, email, name, picture, credits, created_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.Credits, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpsertByEmail inserts the user, or refreshes name and picture when the email is known.
// The id of an existing user never changes.
func (r *UserPostgres) UpsertByEmail(ctx context.Context, u *model.User) (*model.User, error) {
	query := `INSERT INTO users (id, email, name, picture, credits, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, picture = EXCLUDED.picture
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.Name, u.Picture, u.Credits, u.CreatedAt)
	return scanUser(row)
}
