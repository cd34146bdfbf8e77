// Package services – EntitlementService
//
// The entitlement mirror is a read-optimized local copy of the billing
// provider's subscription state. The provider is the single source of truth;
// the mirror only exists so that screens render instantly from cache while a
// background reconciliation refreshes it. Snapshots are replaced wholesale,
// never merged, so entitlements revoked upstream disappear locally too.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nkoutras/go-study-backend/internal/billing"
	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/repo"
)

// SubscriptionInfo is the subscription view surfaced to the UI.
type SubscriptionInfo struct {
	IsSubscribed   bool       `json:"is_subscribed"`
	ActivePlan     string     `json:"active_plan,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	EntitlementIDs []string   `json:"entitlement_ids,omitempty"`
	FetchedAt      time.Time  `json:"fetched_at"`
	Stale          bool       `json:"stale"`
}

// PurchaseOutcome reports the result of a completed (or pending) purchase.
type PurchaseOutcome struct {
	TransactionID  string            `json:"transaction_id"`
	Pending        bool              `json:"pending"`
	CreditsGranted int64             `json:"credits_granted"`
	Subscription   *SubscriptionInfo `json:"subscription,omitempty"`
}

// EntitlementService mirrors provider subscription state locally.
type EntitlementService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Provider is the billing backend; nil disables purchase and restore.
	Provider billing.Provider
	// Ledger receives credit grants attached to purchases.
	Ledger *LedgerService
	// FetchTimeout bounds every provider call.
	FetchTimeout time.Duration
	// StaleAfter marks a cached snapshot as stale once it is older than
	// this duration. Zero means one hour.
	StaleAfter time.Duration

	initOnce sync.Once
}

// NewEntitlementService constructs an EntitlementService.
func NewEntitlementService(db *gorm.DB, provider billing.Provider, ledger *LedgerService) *EntitlementService {
	return &EntitlementService{
		DB:           db,
		Provider:     provider,
		Ledger:       ledger,
		FetchTimeout: 5 * time.Second,
		StaleAfter:   time.Hour,
	}
}

func (s *EntitlementService) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.FetchTimeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (s *EntitlementService) staleAfter() time.Duration {
	if s.StaleAfter <= 0 {
		return time.Hour
	}
	return s.StaleAfter
}

// snapshotFrom builds a full replacement row from a provider answer.
func snapshotFrom(userID string, ent *billing.Entitlements, at time.Time) *domain.EntitlementSnapshot {
	return &domain.EntitlementSnapshot{
		UserID:         userID,
		IsSubscribed:   ent.IsSubscribed,
		ActivePlan:     ent.ActivePlan,
		ExpiresAt:      ent.ExpiresAt,
		EntitlementIDs: ent.EntitlementIDs,
		FetchedAt:      at,
	}
}

func infoFrom(snap *domain.EntitlementSnapshot, stale bool) *SubscriptionInfo {
	return &SubscriptionInfo{
		IsSubscribed:   snap.IsSubscribed,
		ActivePlan:     snap.ActivePlan,
		ExpiresAt:      snap.ExpiresAt,
		EntitlementIDs: snap.EntitlementIDs,
		FetchedAt:      snap.FetchedAt,
		Stale:          stale,
	}
}

// Initialize warms the mirror for userID once per process. Safe to call on
// every request; the underlying reconcile runs a single time and failures
// are logged, not surfaced, since the cache path still works.
func (s *EntitlementService) Initialize(ctx context.Context, userID string) {
	s.initOnce.Do(func() {
		if s.Provider == nil {
			return
		}
		if _, err := s.reconcile(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("initial entitlement reconciliation failed")
		}
	})
}

// reconcile fetches the provider's current entitlements and replaces the
// cached snapshot wholesale. It returns the fresh snapshot.
func (s *EntitlementService) reconcile(ctx context.Context, userID string) (*domain.EntitlementSnapshot, error) {
	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	ent, err := s.Provider.Entitlements(rctx, userID)
	if err != nil {
		return nil, err
	}
	snap := snapshotFrom(userID, ent, time.Now().UTC())
	if err := repo.ReplaceSnapshot(ctx, s.DB, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Subscription returns the subscription state for userID.
//
// Cache-first: a cached snapshot is returned immediately and, when older
// than StaleAfter, a background reconciliation refreshes it for the next
// read. Only a cold cache blocks on the provider; with no provider and no
// cache an unsubscribed default is returned.
func (s *EntitlementService) Subscription(ctx context.Context, userID string) (*SubscriptionInfo, error) {
	tr := otel.Tracer("services/EntitlementService")
	ctx, span := tr.Start(ctx, "Subscription",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	snap, err := repo.GetSnapshot(ctx, s.DB, userID)
	switch {
	case err == nil:
		stale := time.Since(snap.FetchedAt) > s.staleAfter()
		if stale && s.Provider != nil {
			go func() {
				bctx, cancel := context.WithTimeout(context.Background(), s.FetchTimeout+time.Second)
				defer cancel()
				if _, rerr := s.reconcile(bctx, userID); rerr != nil {
					log.Warn().Err(rerr).Str("user_id", userID).Msg("background entitlement refresh failed")
				}
			}()
		}
		return infoFrom(snap, stale), nil

	case errors.Is(err, repo.ErrNotFound):
		if s.Provider == nil {
			return &SubscriptionInfo{IsSubscribed: false, FetchedAt: time.Now().UTC()}, nil
		}
		fresh, rerr := s.reconcile(ctx, userID)
		if rerr != nil {
			// Cold cache and unreachable provider: the honest answer is
			// "unknown", rendered as an unsubscribed stale default.
			log.Warn().Err(rerr).Str("user_id", userID).Msg("cold entitlement fetch failed")
			return &SubscriptionInfo{IsSubscribed: false, FetchedAt: time.Now().UTC(), Stale: true}, nil
		}
		return infoFrom(fresh, false), nil

	default:
		return nil, err
	}
}

// Packages lists the purchasable offerings. Requires a provider.
func (s *EntitlementService) Packages(ctx context.Context) ([]billing.Package, error) {
	if s.Provider == nil {
		return nil, ErrNoProvider
	}
	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	return s.Provider.Packages(rctx)
}

// Purchase runs a purchase for packageID and applies its outcome.
//
// Three terminal states, never conflated:
//   - success: credits are granted (idempotently, keyed by transaction ID)
//     and the entitlement snapshot is replaced from the provider's answer;
//   - pending: nothing is granted yet, the outcome says so, and a later
//     reconciliation picks up the result;
//   - failure: ErrPurchaseDeclined (or ErrSyncFailed when unreachable) and
//     no local state changes.
func (s *EntitlementService) Purchase(ctx context.Context, userID, packageID string) (*PurchaseOutcome, error) {
	tr := otel.Tracer("services/EntitlementService")
	ctx, span := tr.Start(ctx, "Purchase",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("package.id", packageID),
		),
	)
	defer span.End()

	if s.Provider == nil {
		return nil, ErrNoProvider
	}

	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	res, err := s.Provider.Purchase(rctx, userID, packageID)
	switch {
	case errors.Is(err, billing.ErrDeclined):
		return nil, ErrPurchaseDeclined
	case err != nil:
		log.Warn().Err(err).Str("user_id", userID).Msg("purchase outcome unknown")
		return nil, ErrSyncFailed
	}

	out := &PurchaseOutcome{TransactionID: res.TransactionID, Pending: res.Pending}
	if res.Pending {
		return out, nil
	}

	if res.Credits > 0 {
		key := "purchase:" + res.TransactionID
		if err := s.Ledger.Add(ctx, userID, res.Credits, key, "purchase"); err != nil {
			return nil, err
		}
		out.CreditsGranted = res.Credits
	}
	if res.Entitlements != nil {
		snap := snapshotFrom(userID, res.Entitlements, time.Now().UTC())
		if err := repo.ReplaceSnapshot(ctx, s.DB, snap); err != nil {
			return nil, err
		}
		out.Subscription = infoFrom(snap, false)
	}
	return out, nil
}

// Restore re-fetches everything the user owns from the provider and replaces
// local state: the snapshot is overwritten wholesale and the credit balance
// is reconciled to the provider's count. Used after reinstalls.
func (s *EntitlementService) Restore(ctx context.Context, userID string) (*SubscriptionInfo, error) {
	tr := otel.Tracer("services/EntitlementService")
	ctx, span := tr.Start(ctx, "Restore",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if s.Provider == nil {
		return nil, ErrNoProvider
	}

	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	ent, err := s.Provider.Restore(rctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("restore failed")
		return nil, ErrSyncFailed
	}

	snap := snapshotFrom(userID, ent, time.Now().UTC())
	if err := repo.ReplaceSnapshot(ctx, s.DB, snap); err != nil {
		return nil, err
	}
	if _, err := repo.EnsureAccount(ctx, s.DB, userID, s.Ledger.DefaultGrant); err != nil {
		return nil, err
	}
	if err := repo.ReconcileRemote(ctx, s.DB, userID, ent.Credits, time.Now().UTC()); err != nil {
		return nil, err
	}
	return infoFrom(snap, false), nil
}
