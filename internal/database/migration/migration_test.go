package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conclusio/internal/model"
)

const sentinelQuery = "SELECT to_regclass('public.pieces') IS NOT NULL"

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("skips when schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.NoError(t, EnsureMigrated(ctx, db, logger, "localhost"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs every step in order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, step := range steps {
			mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		assert.NoError(t, EnsureMigrated(ctx, db, logger, "localhost"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops at the failing step", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, logger, "localhost")
		assert.ErrorContains(t, err, "migration step "+steps[1].Name+" failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel check error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WillReturnError(errors.New("conn refused"))

		err = EnsureMigrated(ctx, db, logger, "localhost")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestLoadReferenceData(t *testing.T) {
	data, err := LoadReferenceData()
	require.NoError(t, err)

	assert.NotEmpty(t, data.Articles)
	assert.NotEmpty(t, data.Templates)

	categories := map[string]bool{}
	for _, a := range data.Articles {
		categories[a.Categorie] = true
	}
	assert.True(t, categories["famille"])
	assert.True(t, categories["penal"])

	for _, tpl := range data.Templates {
		assert.Contains(t, []string{"jaf", "penal"}, tpl.Type, tpl.ID)
		assert.NotEmpty(t, tpl.ArticlesPertinents, tpl.ID)
	}
}

func TestParseReferenceData(t *testing.T) {
	_, err := parseReferenceData([]byte("articles: [{titre: sans numero}]"))
	assert.Error(t, err)

	_, err = parseReferenceData([]byte("articles: {"))
	assert.ErrorContains(t, err, "parse reference data")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	data := &ReferenceData{
		Articles: []model.Article{{ID: "art-1", Numero: "1", Titre: "T", Contenu: "C", Categorie: "famille"}},
		Templates: []model.Template{{
			ID: "tpl-1", Name: "N", Type: "jaf", ArticlesPertinents: []string{"1"},
		}},
	}

	t.Run("inserts inside one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO code_civil_articles").
			WithArgs("art-1", "1", "T", "C", "famille").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO conclusion_templates").
			WithArgs("tpl-1", "N", "", "jaf", "", "", "", []byte(`["1"]`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, Seed(ctx, db, zap.NewNop(), data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on insert error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO code_civil_articles").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err = Seed(ctx, db, zap.NewNop(), data)
		assert.ErrorContains(t, err, "seed article art-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
