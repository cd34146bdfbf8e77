// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// CreditAccount model.
//
// Debits are expressed as conditional updates so that two spends issued
// back-to-back can never both succeed when only one unit remains: the
// WHERE clause carries the balance check and the row is only touched when
// it holds. No partial debit is ever visible.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// ErrInsufficient indicates a debit was rejected because the cached local
// balance is smaller than the requested amount. The balance is unchanged.
var ErrInsufficient = errors.New("insufficient credits")

// EnsureAccount returns the credit account for userID, creating it with the
// default grant on first touch. Safe to call repeatedly; the grant is seeded
// exactly once.
func EnsureAccount(ctx context.Context, db *gorm.DB, userID string, defaultGrant int64) (*domain.CreditAccount, error) {
	acc := &domain.CreditAccount{
		UserID:     userID,
		LocalCount: defaultGrant,
		CreatedAt:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(acc).Error
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccount fetches the credit account for userID, or ErrNotFound.
func GetAccount(ctx context.Context, db *gorm.DB, userID string) (*domain.CreditAccount, error) {
	var acc domain.CreditAccount
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// DebitLocal atomically subtracts amount from the local balance. The update
// only applies when the balance covers the amount; otherwise ErrInsufficient
// is returned and the row is untouched. A local mutation invalidates the
// remote sync marker so the surfaced total falls back to the local cache
// until the next successful reconciliation.
func DebitLocal(ctx context.Context, db *gorm.DB, userID string, amount int64) error {
	res := db.WithContext(ctx).
		Model(&domain.CreditAccount{}).
		Where("user_id = ? AND local_count >= ?", userID, amount).
		Updates(map[string]any{
			"local_count":      gorm.Expr("local_count - ?", amount),
			"remote_synced_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "no such account" from "not enough credits".
		if _, err := GetAccount(ctx, db, userID); err != nil {
			return err
		}
		return ErrInsufficient
	}
	return nil
}

// CreditLocal adds amount to the local balance. Like DebitLocal it clears the
// remote sync marker; the grant is local truth until reconciled.
func CreditLocal(ctx context.Context, db *gorm.DB, userID string, amount int64) error {
	res := db.WithContext(ctx).
		Model(&domain.CreditAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"local_count":      gorm.Expr("local_count + ?", amount),
			"remote_synced_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReconcileRemote replaces both counters with the authoritative remote
// balance and stamps the sync marker. Called after every successful provider
// fetch; the account row is refreshed, never destroyed.
func ReconcileRemote(ctx context.Context, db *gorm.DB, userID string, remote int64, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.CreditAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"local_count":      remote,
			"remote_count":     remote,
			"remote_synced_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
