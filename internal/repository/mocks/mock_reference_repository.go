package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"conclusio/internal/model"
)

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) SearchArticles(ctx context.Context, q string, limit int) ([]model.Article, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockReferenceRepository) ListArticles(ctx context.Context, categorie string) ([]model.Article, error) {
	args := m.Called(ctx, categorie)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockReferenceRepository) ListTemplates(ctx context.Context, typ string) ([]model.Template, error) {
	args := m.Called(ctx, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Template), args.Error(1)
}

func (m *MockReferenceRepository) FindTemplate(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}
