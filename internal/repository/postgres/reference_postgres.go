package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"conclusio/internal/model"
	"conclusio/internal/repository"
)

const (
	articleColumns  = `id, numero, titre, contenu, categorie`
	templateColumns = `id, name, description, type, category, faits_template, demandes_template, articles_pertinents`
)

// ReferencePostgres is a PostgreSQL implementation of repository.ReferenceRepository.
type ReferencePostgres struct {
	db *sql.DB
}

// NewReferencePostgres creates a new ReferencePostgres repository.
func NewReferencePostgres(db *sql.DB) *ReferencePostgres {
	return &ReferencePostgres{db: db}
}

var _ repository.ReferenceRepository = (*ReferencePostgres)(nil)

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	defer rows.Close()
	items := make([]model.Article, 0)
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Numero, &a.Titre, &a.Contenu, &a.Categorie); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanTemplate(s rowScanner) (*model.Template, error) {
	var (
		t        model.Template
		articles []byte
	)
	if err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Type,
		&t.Category,
		&t.FaitsTemplate,
		&t.DemandesTemplate,
		&articles,
	); err != nil {
		return nil, err
	}
	t.ArticlesPertinents = []string{}
	if len(articles) > 0 {
		if err := json.Unmarshal(articles, &t.ArticlesPertinents); err != nil {
			return nil, fmt.Errorf("decode articles of template %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

// escapeLike escapes the LIKE wildcards of a user supplied term.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchArticles matches q case-insensitively against numero, titre and contenu.
func (r *ReferencePostgres) SearchArticles(ctx context.Context, q string, limit int) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM code_civil_articles
		WHERE numero ILIKE $1 OR titre ILIKE $1 OR contenu ILIKE $1
		ORDER BY numero ASC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

// ListArticles returns every article, or only those of categorie when it is not empty.
func (r *ReferencePostgres) ListArticles(ctx context.Context, categorie string) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM code_civil_articles
		WHERE ($1 = '' OR categorie = $1)
		ORDER BY numero ASC`
	rows, err := r.db.QueryContext(ctx, query, categorie)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

// ListTemplates returns every template, or only those of typ when it is not empty.
func (r *ReferencePostgres) ListTemplates(ctx context.Context, typ string) ([]model.Template, error) {
	query := `SELECT ` + templateColumns + `
		FROM conclusion_templates
		WHERE ($1 = '' OR type = $1)
		ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, typ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReferencePostgres) FindTemplate(ctx context.Context, id string) (*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM conclusion_templates WHERE id = $1`
	return scanTemplate(r.db.QueryRowContext(ctx, query, id))
}
