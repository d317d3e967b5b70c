package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conclusio/internal/model"
)

var conclusionRowColumns = []string{
	"id", "user_id", "type", "parties", "faits", "demandes", "conclusion_text", "status", "created_at", "updated_at",
}

func TestConclusionPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConclusionPostgres(db)
	now := time.Now().UTC()
	c := &model.Conclusion{
		ID:        "c1",
		UserID:    "u1",
		Type:      model.ConclusionTypeJAF,
		Parties:   map[string]any{"demandeur": "Mme A"},
		Faits:     "faits",
		Demandes:  "demandes",
		Status:    model.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rows := sqlmock.NewRows(conclusionRowColumns).
		AddRow("c1", "u1", "jaf", []byte(`{"demandeur":"Mme A"}`), "faits", "demandes", "", "draft", now, now)
	mock.ExpectQuery("INSERT INTO conclusions").
		WithArgs("c1", "u1", "jaf", []byte(`{"demandeur":"Mme A"}`), "faits", "demandes", "", "draft", now, now).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "Mme A", got.Parties["demandeur"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConclusionPostgres_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConclusionPostgres(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(conclusionRowColumns).
		AddRow("c2", "u1", "penal", []byte(`{}`), "f", "d", "", "draft", now, now).
		AddRow("c1", "u1", "jaf", nil, "f", "d", "", "completed", now.Add(-time.Hour), now)
	mock.ExpectQuery("SELECT (.+) FROM conclusions WHERE user_id = (.+) ORDER BY created_at DESC").
		WithArgs("u1").
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c2", items[0].ID)
	assert.NotNil(t, items[1].Parties)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConclusionPostgres_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConclusionPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("c1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), "c1", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConclusionPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConclusionPostgres(db)
	now := time.Now().UTC()
	status := model.StatusCompleted

	mock.ExpectQuery("UPDATE conclusions").
		WithArgs("c1", "u1", nil, status, now).
		WillReturnRows(sqlmock.NewRows(conclusionRowColumns).
			AddRow("c1", "u1", "jaf", []byte(`{}`), "f", "d", "", status, now, now))

	got, err := repo.Update(context.Background(), "c1", "u1", model.ConclusionUpdate{Status: &status}, now)
	require.NoError(t, err)
	assert.Equal(t, status, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConclusionPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConclusionPostgres(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM conclusions").
			WithArgs("c1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), "c1", "u1"))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM conclusions").
			WithArgs("c1", "u2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), "c1", "u2"), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
