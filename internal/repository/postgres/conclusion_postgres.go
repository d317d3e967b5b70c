package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"conclusio/internal/model"
	"conclusio/internal/repository"
)

const conclusionColumns = `id, user_id, type, parties, faits, demandes, conclusion_text, status, created_at, updated_at`

// ConclusionPostgres is a PostgreSQL implementation of repository.ConclusionRepository.
type ConclusionPostgres struct {
	db *sql.DB
}

// NewConclusionPostgres creates a new ConclusionPostgres repository.
func NewConclusionPostgres(db *sql.DB) *ConclusionPostgres {
	return &ConclusionPostgres{db: db}
}

var _ repository.ConclusionRepository = (*ConclusionPostgres)(nil)

func scanConclusion(s rowScanner) (*model.Conclusion, error) {
	var (
		c       model.Conclusion
		parties []byte
	)
	if err := s.Scan(
		&c.ID,
		&c.UserID,
		&c.Type,
		&parties,
		&c.Faits,
		&c.Demandes,
		&c.ConclusionText,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Parties = map[string]any{}
	if len(parties) > 0 {
		if err := json.Unmarshal(parties, &c.Parties); err != nil {
			return nil, fmt.Errorf("decode parties of conclusion %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

// Create inserts a new conclusion and returns it as stored.
func (r *ConclusionPostgres) Create(ctx context.Context, c *model.Conclusion) (*model.Conclusion, error) {
	parties := c.Parties
	if parties == nil {
		parties = map[string]any{}
	}
	rawParties, err := json.Marshal(parties)
	if err != nil {
		return nil, fmt.Errorf("encode parties: %w", err)
	}

	query := `INSERT INTO conclusions (` + conclusionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + conclusionColumns
	row := r.db.QueryRowContext(ctx, query,
		c.ID,
		c.UserID,
		c.Type,
		rawParties,
		c.Faits,
		c.Demandes,
		c.ConclusionText,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return scanConclusion(row)
}

// ListByUser returns the user's conclusions, newest first.
func (r *ConclusionPostgres) ListByUser(ctx context.Context, userID string) ([]model.Conclusion, error) {
	query := `SELECT ` + conclusionColumns + `
		FROM conclusions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Conclusion, 0)
	for rows.Next() {
		c, err := scanConclusion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ConclusionPostgres) FindForOwner(ctx context.Context, id, userID string) (*model.Conclusion, error) {
	query := `SELECT ` + conclusionColumns + ` FROM conclusions WHERE id = $1 AND user_id = $2`
	return scanConclusion(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *ConclusionPostgres) Exists(ctx context.Context, id, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM conclusions WHERE id = $1 AND user_id = $2)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Update sets conclusion_text and/or status. Nil fields keep their value.
func (r *ConclusionPostgres) Update(ctx context.Context, id, userID string, upd model.ConclusionUpdate, at time.Time) (*model.Conclusion, error) {
	query := `UPDATE conclusions
		SET conclusion_text = COALESCE($3, conclusion_text),
		    status = COALESCE($4, status),
		    updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + conclusionColumns
	row := r.db.QueryRowContext(ctx, query,
		id,
		userID,
		nullString(upd.ConclusionText),
		nullString(upd.Status),
		at,
	)
	return scanConclusion(row)
}

// Delete removes the conclusion. sql.ErrNoRows when nothing matched.
func (r *ConclusionPostgres) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conclusions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
