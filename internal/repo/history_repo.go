// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// HistoryRecord model.
//
// All functions accept a *gorm.DB handle, making them safe for use within
// transactions or connection-scoped operations. They follow the "thin
// repository" approach: no business logic, only CRUD persistence and query
// composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateHistory inserts a new history record for userID. The AI answer may be
// empty for "pending" records; the auto-increment ID is populated on return.
func CreateHistory(ctx context.Context, db *gorm.DB, userID string, feature domain.FeatureKind, imageURI, extractedText, aiAnswer string) (*domain.HistoryRecord, error) {
	rec := &domain.HistoryRecord{
		UserID:        userID,
		Feature:       feature,
		ImageURI:      imageURI,
		ExtractedText: extractedText,
		AIAnswer:      aiAnswer,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// GetHistory fetches a single record by ID, enforcing user ownership.
// Returns ErrNotFound if the record does not exist or is not owned by userID.
func GetHistory(ctx context.Context, db *gorm.DB, userID string, id uint) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateAnswer overwrites the AI answer of a record unconditionally
// (last-write-wins; all writers are the same on-device session). If no rows
// are affected (record missing or not owned by userID), it returns ErrNotFound.
func UpdateAnswer(ctx context.Context, db *gorm.DB, userID string, id uint, answer string) error {
	res := db.WithContext(ctx).
		Model(&domain.HistoryRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("ai_answer", answer)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FillScanResult attaches both the extracted text and the deferred answer to
// a pending scan record in one update. Only these two columns are touched.
func FillScanResult(ctx context.Context, db *gorm.DB, userID string, id uint, extractedText, answer string) error {
	res := db.WithContext(ctx).
		Model(&domain.HistoryRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"extracted_text": extractedText, "ai_answer": answer})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListHistory returns all records for userID ordered deterministically
// (CreatedAt ASC, ID ASC), optionally narrowed to a single feature kind.
// Calling it twice with no mutations in between yields identical results.
func ListHistory(ctx context.Context, db *gorm.DB, userID string, kind *domain.FeatureKind) ([]domain.HistoryRecord, error) {
	var out []domain.HistoryRecord
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC")
	if kind != nil {
		q = q.Where("feature = ?", *kind)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListHistoryPage returns a paginated slice ordered (CreatedAt ASC, ID ASC).
func ListHistoryPage(ctx context.Context, db *gorm.DB, userID string, kind *domain.FeatureKind, offset, limit int) ([]domain.HistoryRecord, error) {
	var out []domain.HistoryRecord
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit)
	if kind != nil {
		q = q.Where("feature = ?", *kind)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountHistory returns the total number of records for userID, optionally
// narrowed by kind. Uses a raw COUNT so a missing table surfaces as an error.
func CountHistory(ctx context.Context, db *gorm.DB, userID string, kind *domain.FeatureKind) (int64, error) {
	var total int64
	if kind != nil {
		err := db.WithContext(ctx).
			Raw("SELECT COUNT(*) FROM history_records WHERE user_id = ? AND feature = ?", userID, *kind).
			Scan(&total).Error
		return total, err
	}
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM history_records WHERE user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

// ClearHistory irreversibly deletes every record owned by userID. The
// user-facing confirmation lives at the UI layer, not here.
func ClearHistory(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.HistoryRecord{}).Error
}
