// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate/statistics queries behind
// the profile screen. Stats are computed on demand, never stored.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// Stats is the aggregate view over a user's history records.
//
// ProblemsSolved and TotalScans both count ai-scan records; the original
// product computed them identically and the redundancy is kept on purpose.
// NotesCreated sums plain notes and scanned-note updates, reconciled here at
// aggregation time rather than merged in storage.
type Stats struct {
	ProblemsSolved    int64 `json:"problems_solved"`
	DaysActive        int64 `json:"days_active"`
	NotesCreated      int64 `json:"notes_created"`
	TotalScans        int64 `json:"total_scans"`
	QuizzesCreated    int64 `json:"quizzes_created"`
	FlashCardsCreated int64 `json:"flash_cards_created"`
	MindMapsCreated   int64 `json:"mind_maps_created"`
}

// AggregateStats computes Stats for userID. DaysActive counts distinct
// calendar dates in loc across the CreatedAt of all records from all feature
// kinds combined; records sharing a date contribute to it only once. An empty
// store yields all zeros without error.
func AggregateStats(ctx context.Context, db *gorm.DB, userID string, loc *time.Location) (Stats, error) {
	var out Stats
	if loc == nil {
		loc = time.Local
	}

	// Per-feature counts in one grouped pass.
	var rows []struct {
		Feature domain.FeatureKind
		N       int64
	}
	err := db.WithContext(ctx).
		Model(&domain.HistoryRecord{}).
		Select("feature, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("feature").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, err
	}
	for _, r := range rows {
		switch r.Feature {
		case domain.FeatureScan:
			out.TotalScans = r.N
			out.ProblemsSolved = r.N
		case domain.FeatureNotes, domain.FeatureNotesUpdated:
			out.NotesCreated += r.N
		case domain.FeatureQuiz:
			out.QuizzesCreated = r.N
		case domain.FeatureFlashcards:
			out.FlashCardsCreated = r.N
		case domain.FeatureMindMap:
			out.MindMapsCreated = r.N
		}
	}

	// Distinct active dates are derived in Go: SQLite's date() works on UTC
	// strings and would miscount around midnight in the user's timezone.
	var created []time.Time
	err = db.WithContext(ctx).
		Model(&domain.HistoryRecord{}).
		Where("user_id = ?", userID).
		Pluck("created_at", &created).Error
	if err != nil {
		return Stats{}, err
	}
	days := make(map[string]struct{}, len(created))
	for _, ts := range created {
		days[ts.In(loc).Format("2006-01-02")] = struct{}{}
	}
	out.DaysActive = int64(len(days))

	return out, nil
}
