// Package services – HistoryService
//
// The history store is the append-only log of everything the assistant
// produced for a user. Records are created once, receive at most a one-shot
// answer update when a deferred AI call completes, and are otherwise
// immutable until the user clears the whole log.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/repo"
)

// HistoryService exposes the append-only history log and its aggregates.
type HistoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Location is the timezone used for "active day" bucketing. Defaults
	// to time.Local when nil.
	Location *time.Location
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(db *gorm.DB, loc *time.Location) *HistoryService {
	return &HistoryService{DB: db, Location: loc}
}

// Record appends a new history record. An empty aiAnswer marks the record as
// pending; it will be filled once by the deferred generation.
func (s *HistoryService) Record(ctx context.Context, userID string, feature domain.FeatureKind, imageURI, extractedText, aiAnswer string) (*domain.HistoryRecord, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("feature", string(feature)),
		),
	)
	defer span.End()

	if !feature.Valid() {
		return nil, ErrInvalidFeature
	}
	return repo.CreateHistory(ctx, s.DB, userID, feature, imageURI, extractedText, aiAnswer)
}

// Get returns a single record owned by userID, or ErrRecordNotFound.
func (s *HistoryService) Get(ctx context.Context, userID string, id uint) (*domain.HistoryRecord, error) {
	rec, err := repo.GetHistory(ctx, s.DB, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// SetAnswer overwrites the answer of an existing record. The overwrite is
// unconditional (last write wins); only ownership is checked.
func (s *HistoryService) SetAnswer(ctx context.Context, userID string, id uint, answer string) error {
	err := repo.UpdateAnswer(ctx, s.DB, userID, id, answer)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// fillScanResult attaches the extracted text and the answer to a pending
// scan record in a single update.
func (s *HistoryService) fillScanResult(ctx context.Context, userID string, id uint, extractedText, answer string) error {
	err := repo.FillScanResult(ctx, s.DB, userID, id, extractedText, answer)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// List returns a page of records for userID in chronological order, plus the
// total count for pagination. A nil kind returns every feature; limit <= 0
// falls back to a full listing.
func (s *HistoryService) List(ctx context.Context, userID string, kind *domain.FeatureKind, offset, limit int) ([]domain.HistoryRecord, int64, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if kind != nil && !kind.Valid() {
		return nil, 0, ErrInvalidFeature
	}

	total, err := repo.CountHistory(ctx, s.DB, userID, kind)
	if err != nil {
		return nil, 0, err
	}

	var recs []domain.HistoryRecord
	if limit <= 0 {
		recs, err = repo.ListHistory(ctx, s.DB, userID, kind)
	} else {
		if offset < 0 {
			offset = 0
		}
		recs, err = repo.ListHistoryPage(ctx, s.DB, userID, kind, offset, limit)
	}
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Clear irreversibly deletes the whole log for userID. Restartable: clearing
// an already-empty log succeeds.
func (s *HistoryService) Clear(ctx context.Context, userID string) error {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "Clear",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	return repo.ClearHistory(ctx, s.DB, userID)
}

// Stats computes the profile aggregates for userID on demand.
func (s *HistoryService) Stats(ctx context.Context, userID string) (repo.Stats, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "Stats",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return repo.AggregateStats(ctx, s.DB, userID, loc)
}
