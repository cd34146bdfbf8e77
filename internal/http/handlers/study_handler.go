// Study feature HTTP handlers.
//
// This file exposes the AI-backed generation endpoints:
//   - POST /scan          (photographed problem -> extracted text + answer)
//   - POST /notes         (organized notes from raw content)
//   - PUT  /notes/{id}    (regenerate notes from revised content)
//   - POST /quiz          (quiz questions)
//   - POST /flashcards    (flashcards)
//   - POST /mindmap       (mind map tree)
//   - POST /history/{id}/retry (re-run a pending generation, free)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Every endpoint debits exactly one
// credit via the service layer; a failed generation keeps the pending history
// record and reports answer_failed with the record attached for retry.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nkoutras/go-study-backend/internal/billing"
	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/repo"
	"github.com/nkoutras/go-study-backend/internal/services"
	"github.com/nkoutras/go-study-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// StudyService defines the AI-backed generation operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type StudyService interface {
	Scan(ctx context.Context, userID string, image []byte, mediaType string) (*services.StudyResult, error)
	Notes(ctx context.Context, userID, content string) (*services.StudyResult, error)
	UpdateNotes(ctx context.Context, userID string, originalID uint, content string) (*services.StudyResult, error)
	Quiz(ctx context.Context, userID, content string) (*services.StudyResult, error)
	Flashcards(ctx context.Context, userID, content string) (*services.StudyResult, error)
	MindMap(ctx context.Context, userID, content, mode string) (*services.MindMapResult, error)
	Retry(ctx context.Context, userID string, id uint) (*services.StudyResult, error)
}

// HistoryService defines the history log operations consumed by HTTP handlers.
type HistoryService interface {
	Get(ctx context.Context, userID string, id uint) (*domain.HistoryRecord, error)
	List(ctx context.Context, userID string, kind *domain.FeatureKind, offset, limit int) ([]domain.HistoryRecord, int64, error)
	Clear(ctx context.Context, userID string) error
	Stats(ctx context.Context, userID string) (repo.Stats, error)
}

// LedgerService defines the credit operations consumed by HTTP handlers.
type LedgerService interface {
	CurrentCredits(ctx context.Context, userID string) (services.Balance, error)
	Add(ctx context.Context, userID string, amount int64, key, source string) error
}

// EntitlementService defines the subscription/purchase operations consumed by
// HTTP handlers.
type EntitlementService interface {
	Initialize(ctx context.Context, userID string)
	Subscription(ctx context.Context, userID string) (*services.SubscriptionInfo, error)
	Packages(ctx context.Context) ([]billing.Package, error)
	Purchase(ctx context.Context, userID, packageID string) (*services.PurchaseOutcome, error)
	Restore(ctx context.Context, userID string) (*services.SubscriptionInfo, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for study features, history, credits,
// and billing. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	study   StudyService
	history HistoryService
	ledger  LedgerService
	ent     EntitlementService
}

// New constructs a Handlers instance bound to the given services.
func New(study StudyService, history HistoryService, ledger LedgerService, ent EntitlementService) *Handlers {
	return &Handlers{study: study, history: history, ledger: ledger, ent: ent}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// auth middleware). If absent, it falls back to "X-User-ID" header (tests use
// it), and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// GenerateRequest is the JSON payload for the text-input generation endpoints.
type GenerateRequest struct {
	// Content is the raw study material to work from.
	Content string `json:"content" binding:"required" example:"photosynthesis light and dark reactions"`
}

// MindMapRequest is the JSON payload for POST /mindmap.
type MindMapRequest struct {
	Content string `json:"content" binding:"required" example:"the causes of World War I"`
	// Mode selects the output shape: "json" (default) or "outline".
	Mode string `json:"mode" example:"json"`
}

// StudyErrorResponse extends the error envelope with the pending record so
// clients can offer a retry without re-listing history.
type StudyErrorResponse struct {
	ErrorResponse
	Record *domain.HistoryRecord `json:"record,omitempty"`
}

//
// Helpers
//

// recordID parses the numeric :id path parameter.
func recordID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "record id must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

// failStudy translates service-layer errors from the generation endpoints
// into HTTP responses. rec, when non-nil, is the pending record attached to
// answer_failed responses.
func failStudy(c *gin.Context, err error, rec *domain.HistoryRecord) {
	switch {
	case errors.Is(err, services.ErrInsufficientCredits):
		fail(c, http.StatusPaymentRequired, ErrCodeInsufficientCredits, "not enough credits")
	case errors.Is(err, services.ErrSyncFailed):
		fail(c, http.StatusBadGateway, ErrCodeSyncFailed, "credit sync failed, try again")
	case errors.Is(err, services.ErrEmptyContent):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content is empty")
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too long")
	case errors.Is(err, services.ErrInvalidFeature):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "record has the wrong kind for this operation")
	case errors.Is(err, services.ErrRecordNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "record not found")
	case errors.Is(err, services.ErrAnswerUnavailable):
		resp := StudyErrorResponse{
			ErrorResponse: ErrorResponse{
				RequestID: c.Writer.Header().Get("X-Request-ID"),
				Code:      ErrCodeAnswerFailed,
				Message:   "answer unavailable, retry later",
			},
			Record: rec,
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, resp)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// bindGenerate reads a GenerateRequest or fails the request.
func bindGenerate(c *gin.Context) (string, bool) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: content required")
		return "", false
	}
	return req.Content, true
}

//
// Handlers
//

// Scan godoc
// @ID          scanProblem
// @Summary     Answer a photographed problem
// @Description Uploads an image of a problem, extracts the text, and returns a worked answer. Costs one credit.
// @Tags        Study
// @Accept      mpfd
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       image      formData file   true  "Problem photo (jpeg, png, or webp)"
//
// @Success     200  {object}  services.StudyResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse  "Insufficient credits"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /scan [post]
func (h *Handlers) Scan(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image file required")
		return
	}
	mediaType := file.Header.Get("Content-Type")
	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable image upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable image upload")
		return
	}

	res, err := h.study.Scan(c.Request.Context(), userID(c), data, mediaType)
	if err != nil {
		var rec *domain.HistoryRecord
		if res != nil {
			rec = res.Record
		}
		failStudy(c, err, rec)
		return
	}
	ok(c, http.StatusOK, res)
}

// Notes godoc
// @ID          createNotes
// @Summary     Generate study notes
// @Description Turns raw content into organized study notes. Costs one credit.
// @Tags        Study
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Source content"
//
// @Success     200  {object}  services.StudyResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse  "Insufficient credits"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /notes [post]
func (h *Handlers) Notes(c *gin.Context) {
	content, okReq := bindGenerate(c)
	if !okReq {
		return
	}
	res, err := h.study.Notes(c.Request.Context(), userID(c), content)
	if err != nil {
		failStudy(c, err, recordOf(res))
		return
	}
	ok(c, http.StatusOK, res)
}

// UpdateNotes godoc
// @ID          updateNotes
// @Summary     Regenerate notes from revised content
// @Description Re-runs note generation against an existing notes record. The original is kept; the revision is appended. Costs one credit.
// @Tags        Study
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "Original notes record ID"
// @Param       body       body    handlers.GenerateRequest  true  "Revised content"
//
// @Success     200  {object}  services.StudyResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse  "Insufficient credits"
// @Failure     404  {object}  handlers.ErrorResponse  "Record not found"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /notes/{id} [put]
func (h *Handlers) UpdateNotes(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	content, okReq := bindGenerate(c)
	if !okReq {
		return
	}
	res, err := h.study.UpdateNotes(c.Request.Context(), userID(c), id, content)
	if err != nil {
		failStudy(c, err, recordOf(res))
		return
	}
	ok(c, http.StatusOK, res)
}

// Quiz godoc
// @ID          createQuiz
// @Summary     Generate quiz questions
// @Description Turns study content into quiz questions with answers. Costs one credit.
// @Tags        Study
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Source content"
//
// @Success     200  {object}  services.StudyResult
// @Failure     402  {object}  handlers.ErrorResponse  "Insufficient credits"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /quiz [post]
func (h *Handlers) Quiz(c *gin.Context) {
	content, okReq := bindGenerate(c)
	if !okReq {
		return
	}
	res, err := h.study.Quiz(c.Request.Context(), userID(c), content)
	if err != nil {
		failStudy(c, err, recordOf(res))
		return
	}
	ok(c, http.StatusOK, res)
}

// Flashcards godoc
// @ID          createFlashcards
// @Summary     Generate flashcards
// @Description Turns study content into front/back flashcards. Costs one credit.
// @Tags        Study
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Source content"
//
// @Success     200  {object}  services.StudyResult
// @Failure     402  {object}  handlers.ErrorResponse  "Insufficient credits"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /flashcards [post]
func (h *Handlers) Flashcards(c *gin.Context) {
	content, okReq := bindGenerate(c)
	if !okReq {
		return
	}
	res, err := h.study.Flashcards(c.Request.Context(), userID(c), content)
	if err != nil {
		failStudy(c, err, recordOf(res))
		return
	}
	ok(c, http.StatusOK, res)
}

// MindMap godoc
// @ID          createMindMap
// @Summary     Generate a mind map
// @Description Turns study content into a hierarchical mind map tree. Costs one credit.
// @Tags        Study
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.MindMapRequest  true  "Source content and output mode"
//
// @Success     200  {object}  services.MindMapResult
// @Failure     402  {object}  handlers.ErrorResponse  "Insufficient credits"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /mindmap [post]
func (h *Handlers) MindMap(c *gin.Context) {
	var req MindMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: content required")
		return
	}
	res, err := h.study.MindMap(c.Request.Context(), userID(c), req.Content, req.Mode)
	if err != nil {
		var rec *domain.HistoryRecord
		if res != nil {
			rec = res.Record
		}
		failStudy(c, err, rec)
		return
	}
	ok(c, http.StatusOK, res)
}

// RetryAnswer godoc
// @ID          retryAnswer
// @Summary     Retry a pending generation
// @Description Re-runs the assistant for a record whose answer is still empty. Free; the credit was consumed by the original request.
// @Tags        Study
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "History record ID"
//
// @Success     200  {object}  services.StudyResult
// @Failure     404  {object}  handlers.ErrorResponse  "Record not found"
// @Failure     502  {object}  handlers.StudyErrorResponse "Answer unavailable"
// @Router      /history/{id}/retry [post]
func (h *Handlers) RetryAnswer(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	res, err := h.study.Retry(c.Request.Context(), userID(c), id)
	if err != nil {
		failStudy(c, err, recordOf(res))
		return
	}
	ok(c, http.StatusOK, res)
}

func recordOf(res *services.StudyResult) *domain.HistoryRecord {
	if res == nil {
		return nil
	}
	return res.Record
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize, offset).
func clampPagination(c *gin.Context) (page, pageSize, offset int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	return utils.PageWindow(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)
}
