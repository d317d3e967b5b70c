package service

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conclusio/internal/events"
	"conclusio/internal/model"
	"conclusio/internal/repository"
	"conclusio/internal/storage"
)

const (
	defaultOriginalFilename = "fichier"
	defaultContentType      = "application/octet-stream"
	pieceKeyPrefix          = "pieces/"
	maxExtensionLength      = 10
	maxAttachAttempts       = 3
)

// AttachInput is the payload of an exhibit upload.
type AttachInput struct {
	Nom              string
	Description      string
	Content          io.Reader
	Size             int64
	OriginalFilename string
	ContentType      string
}

// ConclusionChecker confirms that a conclusion exists and belongs to a user.
type ConclusionChecker interface {
	EnsureOwned(ctx context.Context, conclusionID, userID string) error
}

// PieceService maintains the exhibits of a conclusion and their contiguous 1..N numbering.
type PieceService interface {
	// Attach stores the content, then appends the exhibit after the current last numero.
	// The stored object is deleted again if the metadata cannot be committed.
	Attach(ctx context.Context, conclusionID, userID string, in AttachInput) (*model.Piece, error)

	// List returns the exhibits ordered by numero. Never nil.
	List(ctx context.Context, conclusionID, userID string) ([]model.Piece, error)

	// Update renames or re-describes an exhibit. Numero never changes.
	Update(ctx context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate) (*model.Piece, error)

	// Remove deletes an exhibit, closes the numbering gap and then deletes the content.
	Remove(ctx context.Context, conclusionID, pieceID, userID string) error

	// Reorder renumbers the exhibits following pieceIDs. Ids that are not exhibits of this
	// conclusion are skipped; the rest must list every exhibit exactly once, otherwise nothing
	// changes and a validation error is returned.
	Reorder(ctx context.Context, conclusionID, userID string, pieceIDs []string) ([]model.Piece, error)

	// Download returns the exhibit and a reader over its content. The caller closes the reader.
	Download(ctx context.Context, pieceID, userID string) (*model.Piece, io.ReadCloser, error)
}

type pieceService struct {
	repo        repository.PieceRepository
	conclusions ConclusionChecker
	store       storage.Storage
	publisher   events.Publisher
	logger      *zap.Logger
	maxSize     int64
	now         func() time.Time
}

// NewPieceService constructs a PieceService. maxSize is the largest accepted content in bytes.
func NewPieceService(
	repo repository.PieceRepository,
	conclusions ConclusionChecker,
	store storage.Storage,
	publisher events.Publisher,
	logger *zap.Logger,
	maxSize int64,
) PieceService {
	return &pieceService{
		repo:        repo,
		conclusions: conclusions,
		store:       store,
		publisher:   publisher,
		logger:      logger.With(zap.String("component", "pieces")),
		maxSize:     maxSize,
		now:         time.Now,
	}
}

func (s *pieceService) Attach(ctx context.Context, conclusionID, userID string, in AttachInput) (*model.Piece, error) {
	if err := s.conclusions.EnsureOwned(ctx, conclusionID, userID); err != nil {
		return nil, err
	}
	if in.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d bytes limit", ErrPayloadTooLarge, in.Size, s.maxSize)
	}
	nom := strings.TrimSpace(in.Nom)
	if nom == "" {
		return nil, validationError("nom is required")
	}
	if in.Content == nil {
		return nil, validationError("file is required")
	}

	original := strings.TrimSpace(in.OriginalFilename)
	if original == "" {
		original = defaultOriginalFilename
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}
	key := newStorageKey(conclusionID, original)

	info, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": original,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	size := in.Size
	if info.Size > 0 {
		size = info.Size
	}
	if size > s.maxSize {
		s.deleteContent(ctx, key)
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d bytes limit", ErrPayloadTooLarge, size, s.maxSize)
	}

	now := s.now().UTC()
	piece := &model.Piece{
		ID:               uuid.NewString(),
		ConclusionID:     conclusionID,
		UserID:           userID,
		Nom:              nom,
		Description:      strings.TrimSpace(in.Description),
		Filename:         key,
		OriginalFilename: original,
		FileSize:         size,
		MimeType:         contentType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var stored *model.Piece
	for attempt := 1; ; attempt++ {
		err = s.repo.WithConclusionLock(ctx, conclusionID, func(tx repository.PieceTx) error {
			last, err := tx.MaxNumero(ctx, conclusionID)
			if err != nil {
				return err
			}
			piece.Numero = last + 1
			stored, err = tx.Insert(ctx, piece)
			return err
		})
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrNumeroConflict) && attempt < maxAttachAttempts {
			s.logger.Info("piece_attach_retry",
				zap.String("conclusion_id", conclusionID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		// Rollback: metadata must never reference missing content, and content must not outlive a failed attach.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:         events.PieceAttached,
		ConclusionID: conclusionID,
		PieceID:      stored.ID,
		UserID:       userID,
		Timestamp:    now,
	})
	return stored, nil
}

func (s *pieceService) List(ctx context.Context, conclusionID, userID string) ([]model.Piece, error) {
	if err := s.conclusions.EnsureOwned(ctx, conclusionID, userID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByConclusion(ctx, conclusionID, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Piece{}
	}
	return items, nil
}

func (s *pieceService) Update(ctx context.Context, conclusionID, pieceID, userID string, upd model.PieceUpdate) (*model.Piece, error) {
	if upd.Nom != nil {
		nom := strings.TrimSpace(*upd.Nom)
		if nom == "" {
			return nil, validationError("nom must not be blank")
		}
		upd.Nom = &nom
	}
	now := s.now().UTC()
	p, err := s.repo.Update(ctx, conclusionID, pieceID, userID, upd, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:         events.PieceUpdated,
		ConclusionID: conclusionID,
		PieceID:      pieceID,
		UserID:       userID,
		Timestamp:    now,
	})
	return p, nil
}

func (s *pieceService) Remove(ctx context.Context, conclusionID, pieceID, userID string) error {
	now := s.now().UTC()
	var removed *model.Piece
	err := s.repo.WithConclusionLock(ctx, conclusionID, func(tx repository.PieceTx) error {
		var err error
		removed, err = tx.Delete(ctx, conclusionID, pieceID, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		survivors, err := tx.List(ctx, conclusionID, userID)
		if err != nil {
			return err
		}
		_, err = renumber(ctx, tx, survivors, now)
		return err
	})
	if err != nil {
		return err
	}

	s.deleteContent(ctx, removed.Filename)
	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:         events.PieceRemoved,
		ConclusionID: conclusionID,
		PieceID:      pieceID,
		UserID:       userID,
		Timestamp:    now,
	})
	return nil
}

func (s *pieceService) Reorder(ctx context.Context, conclusionID, userID string, pieceIDs []string) ([]model.Piece, error) {
	if err := s.conclusions.EnsureOwned(ctx, conclusionID, userID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var result []model.Piece
	err := s.repo.WithConclusionLock(ctx, conclusionID, func(tx repository.PieceTx) error {
		current, err := tx.List(ctx, conclusionID, userID)
		if err != nil {
			return err
		}
		byID := make(map[string]model.Piece, len(current))
		for _, p := range current {
			byID[p.ID] = p
		}

		ordered := make([]model.Piece, 0, len(current))
		seen := make(map[string]bool, len(current))
		for _, id := range pieceIDs {
			p, ok := byID[id]
			if !ok {
				continue
			}
			if seen[id] {
				return validationError("piece %s is listed more than once", id)
			}
			seen[id] = true
			ordered = append(ordered, p)
		}
		if len(ordered) != len(current) {
			return validationError("piece_ids must list all %d pieces of the conclusion, got %d", len(current), len(ordered))
		}

		result, err = renumber(ctx, tx, ordered, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, s.logger, events.Event{
		Type:         events.PiecesReordered,
		ConclusionID: conclusionID,
		UserID:       userID,
		Timestamp:    now,
	})
	return result, nil
}

func (s *pieceService) Download(ctx context.Context, pieceID, userID string) (*model.Piece, io.ReadCloser, error) {
	p, err := s.repo.FindForOwner(ctx, pieceID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, p.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("piece_content_missing",
				zap.String("piece_id", p.ID),
				zap.String("filename", p.Filename),
			)
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read from storage: %w", err)
	}
	return p, rc, nil
}

// deleteContent removes a stored object, logging failures.
func (s *pieceService) deleteContent(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("piece_content_delete_failed",
			zap.String("filename", key),
			zap.Error(err),
		)
	}
}

// renumber gives ordered[i] numero i+1, writing only rows whose numero changes.
func renumber(ctx context.Context, tx repository.PieceTx, ordered []model.Piece, at time.Time) ([]model.Piece, error) {
	out := make([]model.Piece, len(ordered))
	for i, p := range ordered {
		want := i + 1
		if p.Numero != want {
			if err := tx.SetNumero(ctx, p.ID, want, at); err != nil {
				return nil, fmt.Errorf("renumber piece %s: %w", p.ID, err)
			}
			p.Numero = want
			p.UpdatedAt = at
		}
		out[i] = p
	}
	return out, nil
}

// newStorageKey builds pieces/<conclusion>_<8 hex><ext>. The user filename only contributes
// a sanitized extension.
func newStorageKey(conclusionID, originalFilename string) string {
	id := uuid.New()
	return pieceKeyPrefix + conclusionID + "_" + hex.EncodeToString(id[:4]) + sanitizeExtension(originalFilename)
}

func sanitizeExtension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxExtensionLength {
				break
			}
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "." + b.String()
}
