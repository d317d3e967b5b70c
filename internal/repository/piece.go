package repository

import (
	"context"
	"time"

	"conclusio/internal/model"
)

// PieceRepository defines data access for pieces. Every query is filtered by the owner
// in addition to the conclusion, even when the caller already checked ownership.
type PieceRepository interface {
	// ListByConclusion returns the pieces of a conclusion ordered by numero.
	ListByConclusion(ctx context.Context, conclusionID, userID string) ([]model.Piece, error)

	// FindForOwner returns a piece by id for download, scoped by owner only.
	FindForOwner(ctx context.Context, pieceID, userID string) (*model.Piece, error)

	// Update applies a partial update and always refreshes updated_at.
	Update(ctx context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate, at time.Time) (*model.Piece, error)

	// StorageKeys returns the content references of every piece of a conclusion.
	StorageKeys(ctx context.Context, conclusionID, userID string) ([]string, error)

	// WithConclusionLock runs fn in a transaction that holds an exclusive lock on the
	// conclusion's numbering. A numbering conflict surfacing at commit is reported as ErrNumeroConflict.
	WithConclusionLock(ctx context.Context, conclusionID string, fn func(tx PieceTx) error) error
}

// PieceTx is the set of numbering-sensitive operations available under the conclusion lock.
type PieceTx interface {
	MaxNumero(ctx context.Context, conclusionID string) (int, error)
	Insert(ctx context.Context, p *model.Piece) (*model.Piece, error)
	List(ctx context.Context, conclusionID, userID string) ([]model.Piece, error)
	// Delete removes the piece matching all three keys and returns the removed row.
	Delete(ctx context.Context, conclusionID, pieceID, userID string) (*model.Piece, error)
	SetNumero(ctx context.Context, pieceID string, numero int, at time.Time) error
}
