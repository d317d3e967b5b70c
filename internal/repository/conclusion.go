package repository

import (
	"context"
	"time"

	"conclusio/internal/model"
)

// ConclusionRepository defines data access for conclusions, always scoped by owner.
type ConclusionRepository interface {
	Create(ctx context.Context, c *model.Conclusion) (*model.Conclusion, error)
	ListByUser(ctx context.Context, userID string) ([]model.Conclusion, error)
	FindForOwner(ctx context.Context, id, userID string) (*model.Conclusion, error)
	// Exists reports whether the conclusion exists and belongs to userID.
	Exists(ctx context.Context, id, userID string) (bool, error)
	Update(ctx context.Context, id, userID string, upd model.ConclusionUpdate, at time.Time) (*model.Conclusion, error)
	// Delete removes the conclusion; its pieces go with it through the foreign key.
	Delete(ctx context.Context, id, userID string) error
}
