package repository

import (
	"context"

	"conclusio/internal/model"
)

// ReferenceRepository reads the Code civil extract and the templates.
type ReferenceRepository interface {
	SearchArticles(ctx context.Context, q string, limit int) ([]model.Article, error)
	ListArticles(ctx context.Context, categorie string) ([]model.Article, error)
	ListTemplates(ctx context.Context, typ string) ([]model.Template, error)
	FindTemplate(ctx context.Context, id string) (*model.Template, error)
}
