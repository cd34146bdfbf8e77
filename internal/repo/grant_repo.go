// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the CreditGrant
// model used to implement safe-retry semantics for credit top-ups.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// ErrDuplicate indicates that a grant already exists for the given
// (user_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetGrant returns the grant recorded under (userID, key), or ErrNotFound.
func GetGrant(ctx context.Context, db *gorm.DB, userID, key string) (*domain.CreditGrant, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.CreditGrant
	err := db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateGrant inserts a grant row and returns ErrDuplicate on unique violation.
func CreateGrant(ctx context.Context, db *gorm.DB, userID, key, source string, amount int64) (*domain.CreditGrant, error) {
	rec := &domain.CreditGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Key:       key,
		Amount:    amount,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
