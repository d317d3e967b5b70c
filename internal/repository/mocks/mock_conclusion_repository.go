package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"conclusio/internal/model"
)

type MockConclusionRepository struct {
	mock.Mock
}

func (m *MockConclusionRepository) Create(ctx context.Context, c *model.Conclusion) (*model.Conclusion, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conclusion), args.Error(1)
}

func (m *MockConclusionRepository) ListByUser(ctx context.Context, userID string) ([]model.Conclusion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Conclusion), args.Error(1)
}

func (m *MockConclusionRepository) FindForOwner(ctx context.Context, id, userID string) (*model.Conclusion, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conclusion), args.Error(1)
}

func (m *MockConclusionRepository) Exists(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConclusionRepository) Update(ctx context.Context, id, userID string, upd model.ConclusionUpdate, at time.Time) (*model.Conclusion, error) {
	args := m.Called(ctx, id, userID, upd, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conclusion), args.Error(1)
}

func (m *MockConclusionRepository) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
