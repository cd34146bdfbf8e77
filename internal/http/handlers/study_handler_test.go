package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nkoutras/go-study-backend/internal/billing"
	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/repo"
	"github.com/nkoutras/go-study-backend/internal/services"
)

//
// Fakes implementing the handler-facing service interfaces
//

type fakeStudy struct {
	res *services.StudyResult
	mm  *services.MindMapResult
	err error

	gotContent string
	gotMedia   string
	gotID      uint
}

func (f *fakeStudy) Scan(_ context.Context, _ string, image []byte, mediaType string) (*services.StudyResult, error) {
	f.gotContent = string(image)
	f.gotMedia = mediaType
	return f.res, f.err
}

func (f *fakeStudy) Notes(_ context.Context, _ string, content string) (*services.StudyResult, error) {
	f.gotContent = content
	return f.res, f.err
}

func (f *fakeStudy) UpdateNotes(_ context.Context, _ string, id uint, content string) (*services.StudyResult, error) {
	f.gotID = id
	f.gotContent = content
	return f.res, f.err
}

func (f *fakeStudy) Quiz(_ context.Context, _ string, content string) (*services.StudyResult, error) {
	f.gotContent = content
	return f.res, f.err
}

func (f *fakeStudy) Flashcards(_ context.Context, _ string, content string) (*services.StudyResult, error) {
	f.gotContent = content
	return f.res, f.err
}

func (f *fakeStudy) MindMap(_ context.Context, _ string, content, _ string) (*services.MindMapResult, error) {
	f.gotContent = content
	return f.mm, f.err
}

func (f *fakeStudy) Retry(_ context.Context, _ string, id uint) (*services.StudyResult, error) {
	f.gotID = id
	return f.res, f.err
}

type fakeHistory struct {
	recs  []domain.HistoryRecord
	stats repo.Stats
	err   error

	cleared bool
	gotKind *domain.FeatureKind
}

func (f *fakeHistory) Get(_ context.Context, _ string, id uint) (*domain.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.recs {
		if f.recs[i].ID == id {
			return &f.recs[i], nil
		}
	}
	return nil, services.ErrRecordNotFound
}

func (f *fakeHistory) List(_ context.Context, _ string, kind *domain.FeatureKind, _, _ int) ([]domain.HistoryRecord, int64, error) {
	f.gotKind = kind
	return f.recs, int64(len(f.recs)), f.err
}

func (f *fakeHistory) Clear(_ context.Context, _ string) error {
	f.cleared = true
	return f.err
}

func (f *fakeHistory) Stats(_ context.Context, _ string) (repo.Stats, error) {
	return f.stats, f.err
}

type fakeLedger struct {
	bal services.Balance
	err error

	gotAmount int64
	gotKey    string
}

func (f *fakeLedger) CurrentCredits(_ context.Context, _ string) (services.Balance, error) {
	return f.bal, f.err
}

func (f *fakeLedger) Add(_ context.Context, _ string, amount int64, key, _ string) error {
	f.gotAmount = amount
	f.gotKey = key
	return f.err
}

type fakeEnt struct {
	info *services.SubscriptionInfo
	out  *services.PurchaseOutcome
	pkgs []billing.Package
	err  error

	initialized bool
}

func (f *fakeEnt) Initialize(_ context.Context, _ string) { f.initialized = true }

func (f *fakeEnt) Subscription(_ context.Context, _ string) (*services.SubscriptionInfo, error) {
	return f.info, f.err
}

func (f *fakeEnt) Packages(_ context.Context) ([]billing.Package, error) {
	return f.pkgs, f.err
}

func (f *fakeEnt) Purchase(_ context.Context, _, _ string) (*services.PurchaseOutcome, error) {
	return f.out, f.err
}

func (f *fakeEnt) Restore(_ context.Context, _ string) (*services.SubscriptionInfo, error) {
	return f.info, f.err
}

//
// Harness
//

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/scan", h.Scan)
	r.POST("/notes", h.Notes)
	r.PUT("/notes/:id", h.UpdateNotes)
	r.POST("/quiz", h.Quiz)
	r.POST("/flashcards", h.Flashcards)
	r.POST("/mindmap", h.MindMap)
	r.GET("/history", h.ListHistory)
	r.GET("/history/:id", h.GetHistoryRecord)
	r.POST("/history/:id/retry", h.RetryAnswer)
	r.DELETE("/history", h.ClearHistory)
	r.GET("/stats", h.GetStats)
	r.GET("/credits", h.GetCredits)
	r.POST("/credits/grants", h.AddCredits)
	r.GET("/subscription", h.GetSubscription)
	r.GET("/packages", h.ListPackages)
	r.POST("/purchase", h.Purchase)
	r.POST("/restore", h.Restore)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("error envelope json: %v body=%s", err, w.Body.String())
	}
	return er.Code
}

//
// Study endpoints
//

func TestNotes_OK(t *testing.T) {
	study := &fakeStudy{res: &services.StudyResult{
		Record: &domain.HistoryRecord{ID: 7, Feature: domain.FeatureNotes},
		Answer: "generated notes",
	}}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodPost, "/notes", `{"content":"cells"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if study.gotContent != "cells" {
		t.Fatalf("content not forwarded: %q", study.gotContent)
	}
}

func TestNotes_BadJSON(t *testing.T) {
	r := newTestRouter(New(&fakeStudy{}, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))
	w := doJSON(r, http.MethodPost, "/notes", `{"nope":`)
	if w.Code != http.StatusBadRequest || errCode(t, w) != ErrCodeBadRequest {
		t.Fatalf("status=%d code=%s", w.Code, errCode(t, w))
	}
}

func TestNotes_InsufficientCredits402(t *testing.T) {
	study := &fakeStudy{err: services.ErrInsufficientCredits}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodPost, "/notes", `{"content":"x"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status=%d", w.Code)
	}
	if errCode(t, w) != ErrCodeInsufficientCredits {
		t.Fatalf("code=%s", errCode(t, w))
	}
}

func TestNotes_AnswerFailedCarriesRecord(t *testing.T) {
	rec := &domain.HistoryRecord{ID: 42, Feature: domain.FeatureNotes}
	study := &fakeStudy{res: &services.StudyResult{Record: rec}, err: services.ErrAnswerUnavailable}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodPost, "/notes", `{"content":"x"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", w.Code)
	}
	var resp StudyErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Code != ErrCodeAnswerFailed || resp.Record == nil || resp.Record.ID != 42 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestUpdateNotes_IDValidation(t *testing.T) {
	r := newTestRouter(New(&fakeStudy{}, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))
	for _, path := range []string{"/notes/abc", "/notes/0", "/notes/-3"} {
		w := doJSON(r, http.MethodPut, path, `{"content":"x"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("PUT %s status=%d", path, w.Code)
		}
	}
}

func TestUpdateNotes_ForwardsID(t *testing.T) {
	study := &fakeStudy{res: &services.StudyResult{Record: &domain.HistoryRecord{ID: 9}}}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodPut, "/notes/9", `{"content":"revised"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if study.gotID != 9 || study.gotContent != "revised" {
		t.Fatalf("args not forwarded: id=%d content=%q", study.gotID, study.gotContent)
	}
}

func TestScan_RequiresImage(t *testing.T) {
	r := newTestRouter(New(&fakeStudy{}, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))
	w := doJSON(r, http.MethodPost, "/scan", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestScan_MultipartUpload(t *testing.T) {
	study := &fakeStudy{res: &services.StudyResult{
		Record: &domain.HistoryRecord{ID: 1, Feature: domain.FeatureScan},
		Answer: "x = 2",
	}}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="image"; filename="problem.jpg"`}
	hdr["Content-Type"] = []string{"image/jpeg"}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}
	part.Write([]byte("jpeg-bytes"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scan", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if study.gotContent != "jpeg-bytes" || study.gotMedia != "image/jpeg" {
		t.Fatalf("upload not forwarded: %q %q", study.gotContent, study.gotMedia)
	}
}

func TestMindMap_OK(t *testing.T) {
	study := &fakeStudy{mm: &services.MindMapResult{
		Record: &domain.HistoryRecord{ID: 3, Feature: domain.FeatureMindMap},
	}}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodPost, "/mindmap", `{"content":"biology","mode":"json"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRetry_NotFound(t *testing.T) {
	study := &fakeStudy{err: services.ErrRecordNotFound}
	r := newTestRouter(New(study, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodPost, "/history/404/retry", "")
	if w.Code != http.StatusNotFound || errCode(t, w) != ErrCodeNotFound {
		t.Fatalf("status=%d code=%s", w.Code, errCode(t, w))
	}
}
