package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"conclusio/internal/model"
	"conclusio/internal/repository"
)

type MockPieceRepository struct {
	mock.Mock
	// Tx is handed to the callback of WithConclusionLock.
	Tx *MockPieceTx
}

func (m *MockPieceRepository) ListByConclusion(ctx context.Context, conclusionID, userID string) ([]model.Piece, error) {
	args := m.Called(ctx, conclusionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Piece), args.Error(1)
}

func (m *MockPieceRepository) FindForOwner(ctx context.Context, pieceID, userID string) (*model.Piece, error) {
	args := m.Called(ctx, pieceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Piece), args.Error(1)
}

func (m *MockPieceRepository) Update(ctx context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate, at time.Time) (*model.Piece, error) {
	args := m.Called(ctx, conclusionID, pieceID, userID, upd, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Piece), args.Error(1)
}

func (m *MockPieceRepository) StorageKeys(ctx context.Context, conclusionID, userID string) ([]string, error) {
	args := m.Called(ctx, conclusionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// WithConclusionLock records the call, then runs fn against m.Tx unless an error is configured.
func (m *MockPieceRepository) WithConclusionLock(ctx context.Context, conclusionID string, fn func(tx repository.PieceTx) error) error {
	args := m.Called(ctx, conclusionID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}

type MockPieceTx struct {
	mock.Mock
}

func (m *MockPieceTx) MaxNumero(ctx context.Context, conclusionID string) (int, error) {
	args := m.Called(ctx, conclusionID)
	return args.Int(0), args.Error(1)
}

func (m *MockPieceTx) Insert(ctx context.Context, p *model.Piece) (*model.Piece, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Piece), args.Error(1)
}

func (m *MockPieceTx) List(ctx context.Context, conclusionID, userID string) ([]model.Piece, error) {
	args := m.Called(ctx, conclusionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Piece), args.Error(1)
}

func (m *MockPieceTx) Delete(ctx context.Context, conclusionID, pieceID, userID string) (*model.Piece, error) {
	args := m.Called(ctx, conclusionID, pieceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Piece), args.Error(1)
}

func (m *MockPieceTx) SetNumero(ctx context.Context, pieceID string, numero int, at time.Time) error {
	args := m.Called(ctx, pieceID, numero, at)
	return args.Error(0)
}
