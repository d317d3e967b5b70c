package migration

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"conclusio/internal/database"
	"conclusio/internal/model"
)

//go:embed seed/reference.yaml
var referenceYAML []byte

// ReferenceData is the embedded Code civil extract and the drafting templates.
type ReferenceData struct {
	Articles  []model.Article  `yaml:"articles"`
	Templates []model.Template `yaml:"templates"`
}

// LoadReferenceData parses the embedded seed file.
func LoadReferenceData() (*ReferenceData, error) {
	return parseReferenceData(referenceYAML)
}

func parseReferenceData(raw []byte) (*ReferenceData, error) {
	var data ReferenceData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}
	for i, a := range data.Articles {
		if a.ID == "" || a.Numero == "" {
			return nil, fmt.Errorf("reference data: article %d has no id or numero", i)
		}
	}
	for i, t := range data.Templates {
		if t.ID == "" || t.Type == "" {
			return nil, fmt.Errorf("reference data: template %d has no id or type", i)
		}
	}
	return &data, nil
}

const (
	insertArticleSQL = `
		INSERT INTO code_civil_articles (id, numero, titre, contenu, categorie)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	insertTemplateSQL = `
		INSERT INTO conclusion_templates (id, name, description, type, category, faits_template, demandes_template, articles_pertinents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
)

// Seed inserts the reference data. Rows that already exist are left untouched,
// so running it on every start is safe.
func Seed(ctx context.Context, db *sql.DB, logger *zap.Logger, data *ReferenceData) error {
	start := time.Now()
	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, a := range data.Articles {
			if _, err := tx.ExecContext(ctx, insertArticleSQL, a.ID, a.Numero, a.Titre, a.Contenu, a.Categorie); err != nil {
				return fmt.Errorf("seed article %s: %w", a.ID, err)
			}
		}
		for _, t := range data.Templates {
			articles := t.ArticlesPertinents
			if articles == nil {
				articles = []string{}
			}
			rawArticles, err := json.Marshal(articles)
			if err != nil {
				return fmt.Errorf("encode template %s articles: %w", t.ID, err)
			}
			if _, err := tx.ExecContext(ctx, insertTemplateSQL,
				t.ID, t.Name, t.Description, t.Type, t.Category, t.FaitsTemplate, t.DemandesTemplate, rawArticles,
			); err != nil {
				return fmt.Errorf("seed template %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("db_seed_failed", zap.String("component", "database"), zap.Error(err))
		return err
	}

	logger.Info("db_seed_success",
		zap.String("component", "database"),
		zap.Int("articles", len(data.Articles)),
		zap.Int("templates", len(data.Templates)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
