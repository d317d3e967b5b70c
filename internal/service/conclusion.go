package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"conclusio/internal/events"
	"conclusio/internal/model"
	"conclusio/internal/repository"
	"conclusio/internal/storage"
)

// maxParallelContentDeletes bounds the concurrent object deletions of a conclusion delete.
const maxParallelContentDeletes = 8

// ConclusionInput is the payload of a conclusion creation.
type ConclusionInput struct {
	Type     string         `json:"type"`
	Parties  map[string]any `json:"parties"`
	Faits    string         `json:"faits"`
	Demandes string         `json:"demandes"`
}

// ConclusionService handles the drafts that own exhibits.
type ConclusionService interface {
	ConclusionChecker

	Create(ctx context.Context, userID string, in ConclusionInput) (*model.Conclusion, error)
	// List returns the user's conclusions, newest first.
	List(ctx context.Context, userID string) ([]model.Conclusion, error)
	Get(ctx context.Context, id, userID string) (*model.Conclusion, error)
	Update(ctx context.Context, id, userID string, upd model.ConclusionUpdate) (*model.Conclusion, error)
	// Delete removes the conclusion with its exhibits and their stored content.
	Delete(ctx context.Context, id, userID string) error
}

type conclusionService struct {
	repo      repository.ConclusionRepository
	pieces    repository.PieceRepository
	store     storage.Storage
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewConclusionService constructs a ConclusionService.
func NewConclusionService(
	repo repository.ConclusionRepository,
	pieces repository.PieceRepository,
	store storage.Storage,
	publisher events.Publisher,
	logger *zap.Logger,
) ConclusionService {
	return &conclusionService{
		repo:      repo,
		pieces:    pieces,
		store:     store,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "conclusions")),
		now:       time.Now,
	}
}

func validConclusionType(t string) bool {
	return t == model.ConclusionTypeJAF || t == model.ConclusionTypePenal
}

func validStatus(s string) bool {
	switch s {
	case model.StatusDraft, model.StatusInProgress, model.StatusCompleted:
		return true
	}
	return false
}

func (s *conclusionService) Create(ctx context.Context, userID string, in ConclusionInput) (*model.Conclusion, error) {
	if !validConclusionType(in.Type) {
		return nil, validationError("type must be %q or %q", model.ConclusionTypeJAF, model.ConclusionTypePenal)
	}
	faits := strings.TrimSpace(in.Faits)
	demandes := strings.TrimSpace(in.Demandes)
	if faits == "" || demandes == "" {
		return nil, validationError("faits and demandes are required")
	}
	parties := in.Parties
	if parties == nil {
		parties = map[string]any{}
	}

	now := s.now().UTC()
	c, err := s.repo.Create(ctx, &model.Conclusion{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      in.Type,
		Parties:   parties,
		Faits:     faits,
		Demandes:  demandes,
		Status:    model.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:         events.ConclusionCreated,
		ConclusionID: c.ID,
		UserID:       userID,
		Timestamp:    now,
	})
	return c, nil
}

func (s *conclusionService) List(ctx context.Context, userID string) ([]model.Conclusion, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Conclusion{}
	}
	return items, nil
}

func (s *conclusionService) Get(ctx context.Context, id, userID string) (*model.Conclusion, error) {
	c, err := s.repo.FindForOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *conclusionService) Update(ctx context.Context, id, userID string, upd model.ConclusionUpdate) (*model.Conclusion, error) {
	if upd.Status != nil && !validStatus(*upd.Status) {
		return nil, validationError("unknown status %q", *upd.Status)
	}
	c, err := s.repo.Update(ctx, id, userID, upd, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete collects the content keys first since the rows cascade away with the conclusion.
// Content deletion is best-effort: failures are logged and leave orphaned objects only.
func (s *conclusionService) Delete(ctx context.Context, id, userID string) error {
	keys, err := s.pieces.StorageKeys(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	cleanupCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(maxParallelContentDeletes)
	for _, key := range keys {
		g.Go(func() error {
			if err := s.store.Delete(cleanupCtx, key); err != nil {
				s.logger.Warn("piece_content_delete_failed",
					zap.String("conclusion_id", id),
					zap.String("filename", key),
					zap.Error(err),
				)
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("conclusion_content_cleanup_incomplete",
			zap.String("conclusion_id", id),
			zap.Int("objects", len(keys)),
		)
	}

	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:         events.ConclusionDeleted,
		ConclusionID: id,
		UserID:       userID,
		Timestamp:    s.now().UTC(),
	})
	return nil
}

func (s *conclusionService) EnsureOwned(ctx context.Context, id, userID string) error {
	ok, err := s.repo.Exists(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
