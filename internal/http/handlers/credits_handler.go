// Credit ledger HTTP handlers.
//
//   - GET  /credits         (current balance, remote-reconciled when possible)
//   - POST /credits/grants  (idempotent top-up, keyed)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkoutras/go-study-backend/internal/http/middleware"
	"github.com/nkoutras/go-study-backend/internal/services"
)

// GrantRequest is the JSON payload for POST /credits/grants.
type GrantRequest struct {
	// Amount of credits to add; must be positive.
	Amount int64 `json:"amount" binding:"required" example:"25"`
	// Key deduplicates retried grants. Requests replaying an already-applied
	// key succeed without crediting again. Empty means a one-off grant.
	Key string `json:"key" example:"promo-sept-2026"`
	// Source labels where the grant came from (promo, support, referral).
	Source string `json:"source" example:"promo"`
}

// GetCredits godoc
// @ID          getCredits
// @Summary     Current credit balance
// @Description Returns the spendable balance. When the billing provider answers in time the result is authoritative; otherwise the last-known cache is served and flagged.
// @Tags        Credits
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} services.Balance
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /credits [get]
func (h *Handlers) GetCredits(c *gin.Context) {
	bal, err := h.ledger.CurrentCredits(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, bal)
}

// AddCredits godoc
// @ID          addCredits
// @Summary     Add credits (idempotent)
// @Description Grants credits to the user, deduplicated by key: replaying a key that was already applied succeeds without double-crediting.
// @Tags        Credits
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.GrantRequest  true  "Grant payload"
//
// @Success     200  {object} services.Balance
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /credits/grants [post]
func (h *Handlers) AddCredits(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: amount required")
		return
	}

	// The Idempotency-Key header (validated by middleware) doubles as the
	// grant key when the body does not carry one.
	key := req.Key
	if key == "" {
		if hk, okKey := middleware.GetIdempotencyKey(c); okKey {
			key = hk
		}
	}

	ctx := c.Request.Context()
	uid := userID(c)
	if err := h.ledger.Add(ctx, uid, req.Amount, key, req.Source); err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amount must be positive")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	bal, err := h.ledger.CurrentCredits(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, bal)
}
