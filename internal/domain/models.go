// Package domain defines the persistence models for the study assistant:
// history records of generated artifacts, the on-device credit ledger rows,
// idempotent credit grants, and the mirrored entitlement snapshot. These
// types are mapped with GORM and form the core data layer of the backend.
package domain

import (
	"time"
)

// FeatureKind is the closed catalog of producing features. Every history
// record is bucketed under exactly one kind, which also determines which
// aggregate statistic the record contributes to.
type FeatureKind string

// Feature kinds recognized by the history store and stats aggregation.
const (
	FeatureScan         FeatureKind = "ai-scan"
	FeatureNotes        FeatureKind = "notes"
	FeatureNotesUpdated FeatureKind = "notes-updated"
	FeatureQuiz         FeatureKind = "quiz"
	FeatureFlashcards   FeatureKind = "flashcards"
	FeatureMindMap      FeatureKind = "mind-map"
)

// AllFeatureKinds lists every valid kind, in a stable order. Used for
// boundary validation and exhaustive stats aggregation.
var AllFeatureKinds = []FeatureKind{
	FeatureScan,
	FeatureNotes,
	FeatureNotesUpdated,
	FeatureQuiz,
	FeatureFlashcards,
	FeatureMindMap,
}

// Valid reports whether k is one of the recognized feature kinds.
func (k FeatureKind) Valid() bool {
	for _, v := range AllFeatureKinds {
		if k == v {
			return true
		}
	}
	return false
}

// HistoryRecord is a persisted artifact of one feature invocation: the input
// (image reference and/or extracted text) plus the deferred AI answer.
//
// Fields:
//   - ID: monotonically increasing integer primary key, assigned at creation.
//   - UserID: identifier of the record owner; indexed for retrieval.
//   - Feature: which producing feature created the record (closed enum).
//   - ImageURI: opaque reference to a locally stored image; empty for
//     text-only records. The backend never interprets image bytes here.
//   - ExtractedText: raw input content (OCR output or pasted notes); may be empty.
//   - AIAnswer: generated output. Empty immediately after creation for
//     "pending" records and filled in by a later update. No field other than
//     AIAnswer mutates after creation.
//   - CreatedAt: set once at creation, immutable.
//   - UpdatedAt: bookkeeping timestamp managed by GORM.
type HistoryRecord struct {
	ID            uint        `json:"id"             gorm:"primaryKey;autoIncrement"`
	UserID        string      `json:"user_id"        gorm:"type:varchar(64);not null;index:idx_user_history,priority:1"`
	Feature       FeatureKind `json:"feature"        gorm:"type:varchar(24);not null;index"`
	ImageURI      string      `json:"image_uri,omitempty" gorm:"type:text"`
	ExtractedText string      `json:"extracted_text" gorm:"type:text"`
	AIAnswer      string      `json:"ai_answer"      gorm:"type:text"`
	CreatedAt     time.Time   `json:"created_at"     gorm:"index:idx_user_history,priority:2"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName returns the database table name for HistoryRecord.
func (HistoryRecord) TableName() string { return "history_records" }

// CreditAccount is the per-user credit ledger row.
//
// Fields:
//   - UserID: primary key; one account per user.
//   - LocalCount: locally cached spendable balance (never negative, enforced
//     by a DB check constraint and conditional updates).
//   - RemoteCount: the balance last reported by the billing provider.
//   - RemoteSyncedAt: when RemoteCount was last refreshed; nil if the remote
//     balance has never been fetched. The surfaced total is remote-derived
//     only while this is fresher than the last local mutation.
type CreditAccount struct {
	UserID         string     `json:"user_id"      gorm:"type:varchar(64);primaryKey"`
	LocalCount     int64      `json:"local_count"  gorm:"not null;default:0;check:local_count >= 0"`
	RemoteCount    int64      `json:"remote_count" gorm:"not null;default:0"`
	RemoteSyncedAt *time.Time `json:"remote_synced_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for CreditAccount.
func (CreditAccount) TableName() string { return "credit_accounts" }

// CreditGrant records a single credit top-up, keyed by an idempotency key so
// that a dropped-and-retried grant call can never double-credit a user. A
// replayed (user_id, key) pair returns the original grant without applying
// the amount again.
type CreditGrant struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_grant_user_key,priority:1"`
	Key       string    `json:"key"     gorm:"type:varchar(200);not null;uniqueIndex:ux_grant_user_key,priority:2"`
	Amount    int64     `json:"amount"  gorm:"not null;check:amount > 0"`
	Source    string    `json:"source"  gorm:"type:varchar(32);not null;default:'manual'"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for CreditGrant.
func (CreditGrant) TableName() string { return "credit_grants" }

// EntitlementSnapshot is a point-in-time mirror of the purchase provider's
// notion of a user's active entitlements. It is never independently mutated:
// every successful provider query replaces the row wholesale.
type EntitlementSnapshot struct {
	UserID         string     `json:"user_id"       gorm:"type:varchar(64);primaryKey"`
	IsSubscribed   bool       `json:"is_subscribed" gorm:"not null;default:false"`
	ActivePlan     string     `json:"active_plan,omitempty" gorm:"type:varchar(64)"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	EntitlementIDs []string   `json:"entitlement_ids" gorm:"serializer:json"`
	FetchedAt      time.Time  `json:"fetched_at"`
}

// TableName returns the database table name for EntitlementSnapshot.
func (EntitlementSnapshot) TableName() string { return "entitlement_snapshots" }
