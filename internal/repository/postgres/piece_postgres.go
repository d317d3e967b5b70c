package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"conclusio/internal/database"
	"conclusio/internal/model"
	"conclusio/internal/repository"
)

const (
	pieceColumns = `id, conclusion_id, user_id, numero, nom, description, filename, original_filename, file_size, mime_type, created_at, updated_at`

	// numeroConstraint is the deferred UNIQUE (conclusion_id, numero) constraint.
	numeroConstraint = "pieces_conclusion_numero_key"
	pieceLockScope   = "pieces"
)

// PiecePostgres is a PostgreSQL implementation of repository.PieceRepository.
type PiecePostgres struct {
	db *sql.DB
}

// NewPiecePostgres creates a new PiecePostgres repository.
func NewPiecePostgres(db *sql.DB) *PiecePostgres {
	return &PiecePostgres{db: db}
}

var _ repository.PieceRepository = (*PiecePostgres)(nil)

func scanPiece(s rowScanner) (*model.Piece, error) {
	var p model.Piece
	if err := s.Scan(
		&p.ID,
		&p.ConclusionID,
		&p.UserID,
		&p.Numero,
		&p.Nom,
		&p.Description,
		&p.Filename,
		&p.OriginalFilename,
		&p.FileSize,
		&p.MimeType,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func listPieces(ctx context.Context, q queryer, conclusionID, userID string) ([]model.Piece, error) {
	query := `SELECT ` + pieceColumns + `
		FROM pieces
		WHERE conclusion_id = $1 AND user_id = $2
		ORDER BY numero ASC, created_at ASC`
	rows, err := q.QueryContext(ctx, query, conclusionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Piece, 0)
	for rows.Next() {
		p, err := scanPiece(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByConclusion returns the pieces of a conclusion ordered by numero.
func (r *PiecePostgres) ListByConclusion(ctx context.Context, conclusionID, userID string) ([]model.Piece, error) {
	return listPieces(ctx, r.db, conclusionID, userID)
}

// FindForOwner fetches a single piece by id, scoped by owner.
func (r *PiecePostgres) FindForOwner(ctx context.Context, pieceID, userID string) (*model.Piece, error) {
	query := `SELECT ` + pieceColumns + ` FROM pieces WHERE id = $1 AND user_id = $2`
	return scanPiece(r.db.QueryRowContext(ctx, query, pieceID, userID))
}

// Update changes nom and/or description. Nil fields keep their value.
func (r *PiecePostgres) Update(ctx context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate, at time.Time) (*model.Piece, error) {
	query := `UPDATE pieces
		SET nom = COALESCE($4, nom),
		    description = COALESCE($5, description),
		    updated_at = $6
		WHERE id = $1 AND conclusion_id = $2 AND user_id = $3
		RETURNING ` + pieceColumns
	row := r.db.QueryRowContext(ctx, query,
		pieceID,
		conclusionID,
		userID,
		nullString(upd.Nom),
		nullString(upd.Description),
		at,
	)
	return scanPiece(row)
}

// StorageKeys returns the stored filenames of a conclusion's pieces.
func (r *PiecePostgres) StorageKeys(ctx context.Context, conclusionID, userID string) ([]string, error) {
	const q = `SELECT filename FROM pieces WHERE conclusion_id = $1 AND user_id = $2`
	rows, err := r.db.QueryContext(ctx, q, conclusionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// WithConclusionLock runs fn in a transaction holding pg_advisory_xact_lock for the conclusion.
// The lock is released by the database at commit or rollback.
func (r *PiecePostgres) WithConclusionLock(ctx context.Context, conclusionID string, fn func(tx repository.PieceTx) error) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(pieceLockScope, conclusionID)); err != nil {
			return fmt.Errorf("acquire conclusion lock: %w", err)
		}
		return fn(&pieceTx{tx: tx})
	})
	if database.IsUniqueViolation(err, numeroConstraint) {
		return fmt.Errorf("%w: %v", repository.ErrNumeroConflict, err)
	}
	return err
}

type pieceTx struct {
	tx *sql.Tx
}

// MaxNumero returns the highest numero of the conclusion, 0 when it has no pieces.
func (t *pieceTx) MaxNumero(ctx context.Context, conclusionID string) (int, error) {
	const q = `SELECT COALESCE(MAX(numero), 0) FROM pieces WHERE conclusion_id = $1`
	var n int
	if err := t.tx.QueryRowContext(ctx, q, conclusionID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Insert stores a new piece row and returns it as stored.
func (t *pieceTx) Insert(ctx context.Context, p *model.Piece) (*model.Piece, error) {
	query := `INSERT INTO pieces (` + pieceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + pieceColumns
	row := t.tx.QueryRowContext(ctx, query,
		p.ID,
		p.ConclusionID,
		p.UserID,
		p.Numero,
		p.Nom,
		p.Description,
		p.Filename,
		p.OriginalFilename,
		p.FileSize,
		p.MimeType,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return scanPiece(row)
}

func (t *pieceTx) List(ctx context.Context, conclusionID, userID string) ([]model.Piece, error) {
	return listPieces(ctx, t.tx, conclusionID, userID)
}

// Delete removes the piece matching all three keys. sql.ErrNoRows when none does.
func (t *pieceTx) Delete(ctx context.Context, conclusionID, pieceID, userID string) (*model.Piece, error) {
	query := `DELETE FROM pieces
		WHERE id = $1 AND conclusion_id = $2 AND user_id = $3
		RETURNING ` + pieceColumns
	return scanPiece(t.tx.QueryRowContext(ctx, query, pieceID, conclusionID, userID))
}

func (t *pieceTx) SetNumero(ctx context.Context, pieceID string, numero int, at time.Time) error {
	const q = `UPDATE pieces SET numero = $2, updated_at = $3 WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, pieceID, numero, at)
	return err
}
