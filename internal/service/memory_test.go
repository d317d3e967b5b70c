package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"conclusio/internal/model"
	"conclusio/internal/repository"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// memPieceRepo is an in-memory repository.PieceRepository. WithConclusionLock works on a
// copy of the rows and swaps it in only when the callback succeeds, like a transaction.
type memPieceRepo struct {
	mu   sync.Mutex
	rows map[string]model.Piece
}

func newMemPieceRepo() *memPieceRepo {
	return &memPieceRepo{rows: map[string]model.Piece{}}
}

func sortedPieces(rows map[string]model.Piece, conclusionID, userID string) []model.Piece {
	items := make([]model.Piece, 0)
	for _, p := range rows {
		if p.ConclusionID == conclusionID && p.UserID == userID {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Numero < items[j].Numero })
	return items
}

func (r *memPieceRepo) ListByConclusion(_ context.Context, conclusionID, userID string) ([]model.Piece, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedPieces(r.rows, conclusionID, userID), nil
}

func (r *memPieceRepo) FindForOwner(_ context.Context, pieceID, userID string) (*model.Piece, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[pieceID]
	if !ok || p.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *memPieceRepo) Update(_ context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate, at time.Time) (*model.Piece, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[pieceID]
	if !ok || p.ConclusionID != conclusionID || p.UserID != userID {
		return nil, sql.ErrNoRows
	}
	if upd.Nom != nil {
		p.Nom = *upd.Nom
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	p.UpdatedAt = at
	r.rows[pieceID] = p
	return &p, nil
}

func (r *memPieceRepo) StorageKeys(_ context.Context, conclusionID, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := []string{}
	for _, p := range sortedPieces(r.rows, conclusionID, userID) {
		keys = append(keys, p.Filename)
	}
	return keys, nil
}

func (r *memPieceRepo) WithConclusionLock(_ context.Context, conclusionID string, fn func(tx repository.PieceTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memPieceTx{rows: make(map[string]model.Piece, len(r.rows))}
	for k, v := range r.rows {
		tx.rows[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}

	seen := map[int]bool{}
	for _, p := range tx.rows {
		if p.ConclusionID != conclusionID {
			continue
		}
		if seen[p.Numero] {
			return repository.ErrNumeroConflict
		}
		seen[p.Numero] = true
	}
	r.rows = tx.rows
	return nil
}

// numeros returns the numbering of a conclusion in list order.
func (r *memPieceRepo) numeros(conclusionID, userID string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int{}
	for _, p := range sortedPieces(r.rows, conclusionID, userID) {
		out = append(out, p.Numero)
	}
	return out
}

type memPieceTx struct {
	rows map[string]model.Piece
}

func (t *memPieceTx) MaxNumero(_ context.Context, conclusionID string) (int, error) {
	last := 0
	for _, p := range t.rows {
		if p.ConclusionID == conclusionID && p.Numero > last {
			last = p.Numero
		}
	}
	return last, nil
}

func (t *memPieceTx) Insert(_ context.Context, p *model.Piece) (*model.Piece, error) {
	t.rows[p.ID] = *p
	stored := *p
	return &stored, nil
}

func (t *memPieceTx) List(_ context.Context, conclusionID, userID string) ([]model.Piece, error) {
	return sortedPieces(t.rows, conclusionID, userID), nil
}

func (t *memPieceTx) Delete(_ context.Context, conclusionID, pieceID, userID string) (*model.Piece, error) {
	p, ok := t.rows[pieceID]
	if !ok || p.ConclusionID != conclusionID || p.UserID != userID {
		return nil, sql.ErrNoRows
	}
	delete(t.rows, pieceID)
	return &p, nil
}

func (t *memPieceTx) SetNumero(_ context.Context, pieceID string, numero int, at time.Time) error {
	p, ok := t.rows[pieceID]
	if !ok {
		return sql.ErrNoRows
	}
	p.Numero = numero
	p.UpdatedAt = at
	t.rows[pieceID] = p
	return nil
}

// ownerChecker is a ConclusionChecker over a fixed conclusion → owner table.
type ownerChecker map[string]string

func (o ownerChecker) EnsureOwned(_ context.Context, conclusionID, userID string) error {
	if owner, ok := o[conclusionID]; ok && owner == userID {
		return nil
	}
	return ErrNotFound
}
