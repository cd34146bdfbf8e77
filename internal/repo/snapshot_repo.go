// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// EntitlementSnapshot model.
//
// A snapshot is only ever replaced wholesale: reconciliation writes the full
// row (including an empty entitlement set) so that stale entitlements absent
// from the provider's answer disappear rather than lingering in a merge.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// GetSnapshot returns the cached snapshot for userID, or ErrNotFound when the
// user has never been reconciled.
func GetSnapshot(ctx context.Context, db *gorm.DB, userID string) (*domain.EntitlementSnapshot, error) {
	var snap domain.EntitlementSnapshot
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

// ReplaceSnapshot upserts the full snapshot row for snap.UserID. All columns
// are overwritten; there is no partial merge.
func ReplaceSnapshot(ctx context.Context, db *gorm.DB, snap *domain.EntitlementSnapshot) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(snap).Error
}
