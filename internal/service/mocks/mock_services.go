package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"conclusio/internal/model"
	"conclusio/internal/service"
	"conclusio/internal/session"
)

type MockPieceService struct {
	mock.Mock
}

func (m *MockPieceService) Attach(ctx context.Context, conclusionID, userID string, in service.AttachInput) (*model.Piece, error) {
	args := m.Called(ctx, conclusionID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Piece), args.Error(1)
}

func (m *MockPieceService) List(ctx context.Context, conclusionID, userID string) ([]model.Piece, error) {
	args := m.Called(ctx, conclusionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Piece), args.Error(1)
}

func (m *MockPieceService) Update(ctx context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate) (*model.Piece, error) {
	args := m.Called(ctx, conclusionID, pieceID, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Piece), args.Error(1)
}

func (m *MockPieceService) Remove(ctx context.Context, conclusionID, pieceID, userID string) error {
	args := m.Called(ctx, conclusionID, pieceID, userID)
	return args.Error(0)
}

func (m *MockPieceService) Reorder(ctx context.Context, conclusionID, userID string, pieceIDs []string) ([]model.Piece, error) {
	args := m.Called(ctx, conclusionID, userID, pieceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Piece), args.Error(1)
}

func (m *MockPieceService) Download(ctx context.Context, pieceID, userID string) (*model.Piece, io.ReadCloser, error) {
	args := m.Called(ctx, pieceID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Piece), args.Get(1).(io.ReadCloser), args.Error(2)
}

type MockConclusionService struct {
	mock.Mock
}

func (m *MockConclusionService) Create(ctx context.Context, userID string, in service.ConclusionInput) (*model.Conclusion, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conclusion), args.Error(1)
}

func (m *MockConclusionService) List(ctx context.Context, userID string) ([]model.Conclusion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Conclusion), args.Error(1)
}

func (m *MockConclusionService) Get(ctx context.Context, id, userID string) (*model.Conclusion, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conclusion), args.Error(1)
}

func (m *MockConclusionService) Update(ctx context.Context, id, userID string, upd model.ConclusionUpdate) (*model.Conclusion, error) {
	args := m.Called(ctx, id, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conclusion), args.Error(1)
}

func (m *MockConclusionService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockConclusionService) EnsureOwned(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, *session.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*session.Claims), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *session.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) Issue(ctx context.Context, email, name string) (string, *model.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockReferenceService struct {
	mock.Mock
}

func (m *MockReferenceService) SearchArticles(ctx context.Context, q string) ([]model.Article, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockReferenceService) ListArticles(ctx context.Context, categorie string) ([]model.Article, error) {
	args := m.Called(ctx, categorie)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockReferenceService) ListTemplates(ctx context.Context, typ string) ([]model.Template, error) {
	args := m.Called(ctx, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Template), args.Error(1)
}

func (m *MockReferenceService) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}
