// Package services defines the business logic for the credit ledger, the
// history store, the entitlement mirror, and the study feature orchestration.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Ledger-related errors.
var (
	// ErrInsufficientCredits is returned when a spend would drive the
	// balance below zero. The balance is untouched; the UI offers the
	// purchase flow.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrSyncFailed is returned when a remote debit or grant cannot be
	// confirmed and no safe local fallback exists. Never reported as a
	// silent success: the caller's follow-up AI call is gated on it.
	ErrSyncFailed = errors.New("credit sync failed")

	// ErrInvalidAmount is returned for zero or negative spend/grant amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// History-related errors.
var (
	// ErrRecordNotFound indicates that the requested history record does
	// not exist or is not accessible to the current user.
	ErrRecordNotFound = errors.New("history record not found")

	// ErrInvalidFeature is returned when a feature kind outside the closed
	// catalog reaches the service boundary.
	ErrInvalidFeature = errors.New("unknown feature kind")
)

// Study/content errors.
var (
	// ErrEmptyContent is returned when a generation request carries no input.
	ErrEmptyContent = errors.New("content is empty")

	// ErrTooLong is returned when the input exceeds the configured limit.
	ErrTooLong = errors.New("content too long")

	// ErrAnswerUnavailable is returned when the AI service declined or
	// failed. The pending history record keeps its empty answer; retry is a
	// user-initiated re-tap.
	ErrAnswerUnavailable = errors.New("answer unavailable")
)

// Entitlement-related errors.
var (
	// ErrNoProvider is returned for purchase/restore calls when the
	// deployment has no billing provider configured.
	ErrNoProvider = errors.New("no billing provider configured")

	// ErrPurchaseDeclined is returned when the provider refused a purchase
	// outright. Distinct from a pending purchase, which is not an error.
	ErrPurchaseDeclined = errors.New("purchase declined")
)
