// Billing and subscription HTTP handlers.
//
//   - GET  /subscription  (cached entitlement mirror, cache-first)
//   - GET  /packages      (purchasable offerings)
//   - POST /purchase      (buy a package; success, pending, and declined are distinct)
//   - POST /restore       (re-derive everything owned after a reinstall)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkoutras/go-study-backend/internal/services"
)

// PurchaseRequest is the JSON payload for POST /purchase.
type PurchaseRequest struct {
	PackageID string `json:"package_id" binding:"required" example:"credits_100"`
}

// failBilling translates billing-related service errors into HTTP responses.
func failBilling(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoProvider):
		fail(c, http.StatusServiceUnavailable, ErrCodeBillingDisabled, "billing is not configured")
	case errors.Is(err, services.ErrPurchaseDeclined):
		fail(c, http.StatusPaymentRequired, ErrCodePurchaseDeclined, "purchase declined")
	case errors.Is(err, services.ErrSyncFailed):
		fail(c, http.StatusBadGateway, ErrCodeSyncFailed, "billing provider unreachable, try again")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// GetSubscription godoc
// @ID          getSubscription
// @Summary     Subscription state
// @Description Returns the cached subscription mirror. A stale cache is served immediately and refreshed in the background.
// @Tags        Billing
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} services.SubscriptionInfo
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /subscription [get]
func (h *Handlers) GetSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	h.ent.Initialize(ctx, uid)

	info, err := h.ent.Subscription(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, info)
}

// ListPackages godoc
// @ID          listPackages
// @Summary     Purchasable packages
// @Tags        Billing
// @Produce     json
//
// @Success     200  {array}  billing.Package
// @Failure     503  {object} handlers.ErrorResponse "Billing disabled"
// @Router      /packages [get]
func (h *Handlers) ListPackages(c *gin.Context) {
	pkgs, err := h.ent.Packages(c.Request.Context())
	if err != nil {
		failBilling(c, err)
		return
	}
	ok(c, http.StatusOK, pkgs)
}

// Purchase godoc
// @ID          purchasePackage
// @Summary     Purchase a package
// @Description Executes a purchase. Success grants its credits exactly once per transaction; a pending outcome grants nothing yet; a decline changes nothing.
// @Tags        Billing
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.PurchaseRequest  true  "Package to buy"
//
// @Success     200  {object} services.PurchaseOutcome
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     402  {object} handlers.ErrorResponse "Purchase declined"
// @Failure     502  {object} handlers.ErrorResponse "Provider unreachable"
// @Failure     503  {object} handlers.ErrorResponse "Billing disabled"
// @Router      /purchase [post]
func (h *Handlers) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: package_id required")
		return
	}
	out, err := h.ent.Purchase(c.Request.Context(), userID(c), req.PackageID)
	if err != nil {
		failBilling(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Restore godoc
// @ID          restorePurchases
// @Summary     Restore purchases
// @Description Re-derives everything the user owns from the provider's records and replaces local state wholesale. Used after reinstalls.
// @Tags        Billing
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} services.SubscriptionInfo
// @Failure     502  {object} handlers.ErrorResponse "Provider unreachable"
// @Failure     503  {object} handlers.ErrorResponse "Billing disabled"
// @Router      /restore [post]
func (h *Handlers) Restore(c *gin.Context) {
	info, err := h.ent.Restore(c.Request.Context(), userID(c))
	if err != nil {
		failBilling(c, err)
		return
	}
	ok(c, http.StatusOK, info)
}
