// Package services – LedgerService
//
// This file implements the credit ledger: the spendable balance that gates
// every AI invocation. The ledger keeps a local cache row per user and
// reconciles it against the billing provider's authoritative count.
//
// Spend policy (deliberate, see the method comment on Spend): remote-first.
// Credits are a monetizable resource, so when a provider is configured the
// remote debit must confirm before a spend reports success; an unreachable
// provider yields ErrSyncFailed rather than an optimistic local debit.
// Deployments without a provider run the ledger purely locally, where the
// conditional-update debit is already atomic.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nkoutras/go-study-backend/internal/billing"
	"github.com/nkoutras/go-study-backend/internal/repo"
)

// Balance is the ledger view surfaced to the UI.
//
// Total is the value screens render: the remote count when Authoritative is
// true, the last-known local cache otherwise. Callers must not assume
// freshness when Authoritative is false.
type Balance struct {
	Local         int64 `json:"local"`
	Online        int64 `json:"online"`
	Total         int64 `json:"total"`
	Authoritative bool  `json:"authoritative"`
}

// LedgerService owns the per-user credit balance.
type LedgerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Provider is the billing backend; nil means local-only mode.
	Provider billing.Provider
	// DefaultGrant seeds a brand-new account (first app launch).
	DefaultGrant int64
	// FetchTimeout bounds every remote balance/debit call.
	FetchTimeout time.Duration
}

// NewLedgerService constructs a LedgerService with sane defaults.
func NewLedgerService(db *gorm.DB, provider billing.Provider, defaultGrant int64) *LedgerService {
	if defaultGrant < 0 {
		defaultGrant = 0
	}
	return &LedgerService{
		DB:           db,
		Provider:     provider,
		DefaultGrant: defaultGrant,
		FetchTimeout: 5 * time.Second,
	}
}

// remoteCtx derives a bounded context for provider calls.
func (s *LedgerService) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.FetchTimeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// CurrentCredits returns the balance for userID. On a successful remote
// fetch the local cache is reconciled and the result is authoritative; on
// failure it degrades to the last-known local cache without error.
func (s *LedgerService) CurrentCredits(ctx context.Context, userID string) (Balance, error) {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "CurrentCredits",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	acc, err := repo.EnsureAccount(ctx, s.DB, userID, s.DefaultGrant)
	if err != nil {
		return Balance{}, err
	}

	if s.Provider == nil {
		return Balance{Local: acc.LocalCount, Online: acc.RemoteCount, Total: acc.LocalCount, Authoritative: false}, nil
	}

	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	remote, err := s.Provider.Balance(rctx, userID)
	if err != nil {
		// Non-critical read: degrade to stale cache rather than failing.
		log.Warn().Err(err).Str("user_id", userID).Msg("remote balance fetch failed, serving cache")
		return Balance{Local: acc.LocalCount, Online: acc.RemoteCount, Total: acc.LocalCount, Authoritative: false}, nil
	}

	if err := repo.ReconcileRemote(ctx, s.DB, userID, remote, time.Now().UTC()); err != nil {
		return Balance{}, err
	}
	return Balance{Local: remote, Online: remote, Total: remote, Authoritative: true}, nil
}

// Spend debits amount credits atomically with respect to the same-device
// call sequence: two spends issued back-to-back never both succeed when only
// one unit remains.
//
// Policy: remote-first. With a provider configured the remote debit blocks
// on confirmation; the local cache is only updated from the provider's
// answer, and an unreachable provider returns ErrSyncFailed (never a silent
// success — the caller gates the AI call on this result). Without a provider
// the debit is a single conditional update on the local row.
func (s *LedgerService) Spend(ctx context.Context, userID string, amount int64) error {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "Spend",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int64("credits.amount", amount),
		),
	)
	defer span.End()

	if amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := repo.EnsureAccount(ctx, s.DB, userID, s.DefaultGrant); err != nil {
		return err
	}

	if s.Provider == nil {
		err := repo.DebitLocal(ctx, s.DB, userID, amount)
		if errors.Is(err, repo.ErrInsufficient) {
			return ErrInsufficientCredits
		}
		return err
	}

	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	remaining, err := s.Provider.Debit(rctx, userID, amount)
	switch {
	case errors.Is(err, billing.ErrInsufficient):
		return ErrInsufficientCredits
	case err != nil:
		log.Warn().Err(err).Str("user_id", userID).Msg("remote debit unconfirmed")
		return ErrSyncFailed
	}

	if err := repo.ReconcileRemote(ctx, s.DB, userID, remaining, time.Now().UTC()); err != nil {
		return err
	}
	return nil
}

// Add grants amount credits, deduplicated by key: a dropped-and-retried
// grant call with the same key credits the user exactly once and reports
// success on the replay. An empty key makes the call an independent grant
// (a fresh key is minted internally).
//
// The grant lands locally inside one transaction; with a provider configured
// it is then forwarded best-effort under the same key (the provider dedupes
// on its side) and the next reconciliation squares the two.
func (s *LedgerService) Add(ctx context.Context, userID string, amount int64, key, source string) error {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int64("credits.amount", amount),
		),
	)
	defer span.End()

	if amount <= 0 {
		return ErrInvalidAmount
	}
	if key == "" {
		key = uuid.NewString()
	}
	if source == "" {
		source = "manual"
	}
	if _, err := repo.EnsureAccount(ctx, s.DB, userID, s.DefaultGrant); err != nil {
		return err
	}

	replay := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.CreateGrant(ctx, tx, userID, key, source, amount); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				replay = true
				return nil // already credited under this key
			}
			return err
		}
		return repo.CreditLocal(ctx, tx, userID, amount)
	})
	if err != nil || replay {
		return err
	}

	if s.Provider != nil {
		rctx, cancel := s.remoteCtx(ctx)
		defer cancel()
		if _, err := s.Provider.Grant(rctx, userID, amount, key); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("key", key).Msg("remote grant deferred to next reconciliation")
		}
	}
	return nil
}
