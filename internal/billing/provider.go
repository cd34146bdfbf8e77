// Package billing talks to the purchase/entitlement provider: package
// listings, purchases, restores, entitlement queries, and the authoritative
// remote credit balance. The rest of the application consumes the Provider
// interface; the HTTP implementation in client.go is wired in at startup.
//
// The provider is optional. When no provider is configured the ledger runs in
// local-only mode and the entitlement mirror serves whatever snapshot was
// last persisted.
package billing

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors surfaced by Provider implementations. Callers branch on
// these; everything else is treated as an unexpected transport failure.
var (
	// ErrUnavailable indicates the provider could not be reached or answered
	// with a server-side failure. Callers fall back to cached state.
	ErrUnavailable = errors.New("billing provider unavailable")

	// ErrInsufficient indicates the provider rejected a debit because the
	// remote balance does not cover the amount.
	ErrInsufficient = errors.New("insufficient remote balance")

	// ErrDeclined indicates the provider refused a purchase outright
	// (payment failure, invalid package). Distinct from a pending purchase.
	ErrDeclined = errors.New("purchase declined")
)

// Package is a purchasable credit bundle or subscription plan.
type Package struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Credits  int64   `json:"credits"`
	Plan     string  `json:"plan,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// Entitlements is the provider's full answer about one user: active
// entitlement identifiers, subscription state, and the remote credit balance.
type Entitlements struct {
	IsSubscribed   bool       `json:"is_subscribed"`
	ActivePlan     string     `json:"active_plan,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	EntitlementIDs []string   `json:"entitlement_ids"`
	Credits        int64      `json:"credits"`
}

// PurchaseResult reports the outcome of a purchase call.
//
// Pending signals deferred payment approval (e.g. parental controls): the
// purchase is neither a success nor a failure yet, and callers must not grant
// anything until the provider reports completion on a later reconciliation.
type PurchaseResult struct {
	TransactionID string        `json:"transaction_id"`
	Pending       bool          `json:"pending"`
	Credits       int64         `json:"credits"`
	Entitlements  *Entitlements `json:"entitlements,omitempty"`
}

// Provider is the narrow contract the services layer needs from the
// purchase/entitlement provider. All calls are context-aware and must honor
// cancellation; implementations apply their own bounded timeouts on top.
type Provider interface {
	// Balance returns the authoritative remote credit balance.
	Balance(ctx context.Context, userID string) (int64, error)

	// Debit confirms a remote spend and returns the remaining balance.
	// Returns ErrInsufficient when the remote balance does not cover amount.
	Debit(ctx context.Context, userID string, amount int64) (int64, error)

	// Grant applies a credit top-up remotely, deduplicated by key on the
	// provider side, and returns the new balance.
	Grant(ctx context.Context, userID string, amount int64, key string) (int64, error)

	// Packages lists the currently offered credit bundles and plans.
	Packages(ctx context.Context) ([]Package, error)

	// Purchase executes a purchase of packageID on behalf of userID.
	Purchase(ctx context.Context, userID, packageID string) (*PurchaseResult, error)

	// Restore re-derives the user's entitlements from the provider's
	// purchase records (e.g. after app reinstall).
	Restore(ctx context.Context, userID string) (*Entitlements, error)

	// Entitlements queries the user's current entitlement state.
	Entitlements(ctx context.Context, userID string) (*Entitlements, error)
}
