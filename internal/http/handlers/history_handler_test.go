package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/repo"
	"github.com/nkoutras/go-study-backend/internal/services"
)

func TestListHistory_KindFilterAndPagination(t *testing.T) {
	hist := &fakeHistory{recs: []domain.HistoryRecord{
		{ID: 1, Feature: domain.FeatureQuiz},
	}}
	r := newTestRouter(New(&fakeStudy{}, hist, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodGet, "/history?kind=quiz&page=1&page_size=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if hist.gotKind == nil || *hist.gotKind != domain.FeatureQuiz {
		t.Fatalf("kind filter not forwarded: %v", hist.gotKind)
	}

	var resp ListHistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Records) != 1 || resp.Pagination.Total != 1 || resp.Pagination.PageSize != 5 {
		t.Fatalf("unexpected page: %+v", resp.Pagination)
	}
	if resp.Pagination.HasNext {
		t.Fatalf("single page should not report has_next")
	}
}

func TestListHistory_UnknownKind400(t *testing.T) {
	r := newTestRouter(New(&fakeStudy{}, &fakeHistory{}, &fakeLedger{}, &fakeEnt{}))
	w := doJSON(r, http.MethodGet, "/history?kind=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGetHistoryRecord_FoundAndMissing(t *testing.T) {
	hist := &fakeHistory{recs: []domain.HistoryRecord{{ID: 3, Feature: domain.FeatureNotes, AIAnswer: "the answer"}}}
	r := newTestRouter(New(&fakeStudy{}, hist, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodGet, "/history/3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var rec domain.HistoryRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rec.ID != 3 || rec.AIAnswer != "the answer" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	w = doJSON(r, http.MethodGet, "/history/99", "")
	if w.Code != http.StatusNotFound || errCode(t, w) != ErrCodeNotFound {
		t.Fatalf("missing record: status=%d code=%s", w.Code, errCode(t, w))
	}
}

func TestClearHistory_NoContent(t *testing.T) {
	hist := &fakeHistory{}
	r := newTestRouter(New(&fakeStudy{}, hist, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodDelete, "/history", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if !hist.cleared {
		t.Fatalf("Clear not called")
	}
}

func TestGetStats_OK(t *testing.T) {
	hist := &fakeHistory{stats: repo.Stats{TotalScans: 2, ProblemsSolved: 2, DaysActive: 1}}
	r := newTestRouter(New(&fakeStudy{}, hist, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodGet, "/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var stats repo.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("json: %v", err)
	}
	if stats.TotalScans != 2 || stats.DaysActive != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestListHistory_ServiceError500(t *testing.T) {
	hist := &fakeHistory{err: services.ErrSyncFailed}
	r := newTestRouter(New(&fakeStudy{}, hist, &fakeLedger{}, &fakeEnt{}))

	w := doJSON(r, http.MethodGet, "/history", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}
