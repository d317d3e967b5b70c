package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"conclusio/internal/model"
	"conclusio/internal/repository"
)

// articleSearchLimit caps the number of articles returned by a search.
const articleSearchLimit = 20

// ReferenceService exposes the Code civil extract and the drafting templates.
type ReferenceService interface {
	SearchArticles(ctx context.Context, q string) ([]model.Article, error)
	ListArticles(ctx context.Context, categorie string) ([]model.Article, error)
	ListTemplates(ctx context.Context, typ string) ([]model.Template, error)
	GetTemplate(ctx context.Context, id string) (*model.Template, error)
}

type referenceService struct {
	repo repository.ReferenceRepository
}

// NewReferenceService constructs a ReferenceService.
func NewReferenceService(repo repository.ReferenceRepository) ReferenceService {
	return &referenceService{repo: repo}
}

func (s *referenceService) SearchArticles(ctx context.Context, q string) ([]model.Article, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, validationError("q is required")
	}
	return s.repo.SearchArticles(ctx, q, articleSearchLimit)
}

func (s *referenceService) ListArticles(ctx context.Context, categorie string) ([]model.Article, error) {
	return s.repo.ListArticles(ctx, strings.TrimSpace(categorie))
}

func (s *referenceService) ListTemplates(ctx context.Context, typ string) ([]model.Template, error) {
	typ = strings.TrimSpace(typ)
	if typ != "" && !validConclusionType(typ) {
		return nil, validationError("unknown template type %q", typ)
	}
	return s.repo.ListTemplates(ctx, typ)
}

func (s *referenceService) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	t, err := s.repo.FindTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}
