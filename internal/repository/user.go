package repository

import (
	"context"

	"conclusio/internal/model"
)

// UserRepository defines data access for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	// UpsertByEmail creates the user or refreshes name and picture of an existing one.
	UpsertByEmail(ctx context.Context, u *model.User) (*model.User, error)
}
