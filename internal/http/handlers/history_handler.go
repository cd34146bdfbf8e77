// History HTTP handlers.
//
// This file exposes REST endpoints for the history log and its aggregates:
//   - GET    /history       (list, paginated, optional kind filter)
//   - GET    /history/{id}  (single record)
//   - DELETE /history       (clear everything, irreversible)
//   - GET    /stats         (profile aggregates, computed on demand)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/services"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListHistoryResponse wraps a page of history records and pagination info.
type ListHistoryResponse struct {
	Records    []domain.HistoryRecord `json:"records"`
	Pagination Pagination             `json:"pagination"`
}

// ListHistory godoc
// @ID          listHistory
// @Summary     List history records (paginated)
// @Description Returns a page of the user's history in chronological order. Optional ?kind= narrows to one feature.
// @Tags        History
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       kind       query   string  false "Feature kind filter"    Enums(ai-scan, notes, notes-updated, quiz, flashcards, mind-map)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListHistoryResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /history [get]
func (h *Handlers) ListHistory(c *gin.Context) {
	page, pageSize, offset := clampPagination(c)

	var kind *domain.FeatureKind
	if raw := c.Query("kind"); raw != "" {
		k := domain.FeatureKind(raw)
		if !k.Valid() {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown feature kind")
			return
		}
		kind = &k
	}

	recs, total, err := h.history.List(c.Request.Context(), userID(c), kind, offset, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListHistoryResponse{
		Records: recs,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetHistoryRecord godoc
// @ID          getHistoryRecord
// @Summary     Fetch a single history record
// @Tags        History
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "History record ID"
//
// @Success     200  {object} domain.HistoryRecord
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Router      /history/{id} [get]
func (h *Handlers) GetHistoryRecord(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	rec, err := h.history.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "record not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, rec)
}

// ClearHistory godoc
// @ID          clearHistory
// @Summary     Clear the whole history log
// @Description Irreversibly deletes every record. The confirmation prompt lives in the client; this endpoint does not ask twice.
// @Tags        History
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /history [delete]
func (h *Handlers) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context(), userID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// GetStats godoc
// @ID          getStats
// @Summary     Profile statistics
// @Description Aggregates the history log into the profile counters. Computed on demand, never stored.
// @Tags        History
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} repo.Stats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
