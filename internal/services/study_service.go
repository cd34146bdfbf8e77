// Package services – StudyService
//
// StudyService orchestrates every AI-backed study feature behind one
// sequence: debit a credit, append a history record, invoke the assistant,
// attach the answer. The ordering is load-bearing: a failed debit produces
// no record and no AI call, while a failed AI call leaves a pending record
// whose answer the user can retry without paying again.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nkoutras/go-study-backend/internal/assistant"
	"github.com/nkoutras/go-study-backend/internal/domain"
	"github.com/nkoutras/go-study-backend/internal/imagestore"
	"github.com/nkoutras/go-study-backend/internal/mindmap"
)

// DefaultMaxContentLen caps user-supplied content when the service is built
// without an explicit limit.
const DefaultMaxContentLen = 20000

// titleWordLimit bounds how many words of the source content make it into
// the derived display title.
const titleWordLimit = 6

// StudyResult is the outcome of a single study feature invocation.
type StudyResult struct {
	Record *domain.HistoryRecord `json:"record"`
	// Title is a short display heading derived from the input. Never
	// persisted; the history record is the durable artifact.
	Title  string `json:"title"`
	Answer string `json:"answer"`
}

// MindMapResult pairs the generated tree with the raw assistant output the
// history record stores.
type MindMapResult struct {
	Record *domain.HistoryRecord `json:"record"`
	Title  string                `json:"title"`
	Tree   *mindmap.Node         `json:"tree"`
}

// StudyService ties the ledger, the history log, and the assistant together.
type StudyService struct {
	DB        *gorm.DB
	Ledger    *LedgerService
	History   *HistoryService
	Assistant assistant.Service
	Images    *imagestore.Store
	// SpendPerCall is the credit price of one AI invocation.
	SpendPerCall int64
	// MaxContentLen caps user-supplied text in runes; zero means
	// DefaultMaxContentLen.
	MaxContentLen int
}

// NewStudyService constructs a StudyService with the one-credit-per-call
// pricing the product uses.
func NewStudyService(db *gorm.DB, ledger *LedgerService, history *HistoryService, ai assistant.Service, images *imagestore.Store) *StudyService {
	return &StudyService{
		DB:           db,
		Ledger:       ledger,
		History:      history,
		Assistant:    ai,
		Images:       images,
		SpendPerCall: 1,
	}
}

// titleCaser is shared; cases.Caser is not safe for concurrent use, so each
// call site takes a fresh one from here.
func titleCaser() cases.Caser { return cases.Title(language.English) }

// deriveTitle builds a short heading from the first words of content.
func deriveTitle(content string) string {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "Untitled"
	}
	if len(fields) > titleWordLimit {
		fields = fields[:titleWordLimit]
	}
	return titleCaser().String(strings.Join(fields, " "))
}

func (s *StudyService) validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	max := s.MaxContentLen
	if max <= 0 {
		max = DefaultMaxContentLen
	}
	if utf8.RuneCountInString(content) > max {
		return ErrTooLong
	}
	return nil
}

// generate runs the shared debit/record/invoke/attach sequence for the
// text-input features. The history record always exists by the time the
// assistant is called; on assistant failure it stays pending and is returned
// alongside ErrAnswerUnavailable so the caller can offer a retry.
func (s *StudyService) generate(ctx context.Context, userID, content string, feature domain.FeatureKind) (*StudyResult, error) {
	tr := otel.Tracer("services/StudyService")
	ctx, span := tr.Start(ctx, "generate",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("feature", string(feature)),
		),
	)
	defer span.End()

	if err := s.validateContent(content); err != nil {
		return nil, err
	}
	if err := s.Ledger.Spend(ctx, userID, s.SpendPerCall); err != nil {
		return nil, err
	}

	rec, err := s.History.Record(ctx, userID, feature, "", content, "")
	if err != nil {
		return nil, err
	}
	res := &StudyResult{Record: rec, Title: deriveTitle(content)}

	answer, err := s.Assistant.AnswerFromText(ctx, content, feature)
	if err != nil {
		return res, ErrAnswerUnavailable
	}
	if err := s.History.SetAnswer(ctx, userID, rec.ID, answer); err != nil {
		return res, err
	}
	rec.AIAnswer = answer
	res.Answer = answer
	return res, nil
}

// Notes generates organized study notes from raw content.
func (s *StudyService) Notes(ctx context.Context, userID, content string) (*StudyResult, error) {
	return s.generate(ctx, userID, content, domain.FeatureNotes)
}

// UpdateNotes regenerates notes from revised content. The original record is
// kept untouched; the revision lands as its own entry so the stats aggregate
// both under notes created.
func (s *StudyService) UpdateNotes(ctx context.Context, userID string, originalID uint, content string) (*StudyResult, error) {
	orig, err := s.History.Get(ctx, userID, originalID)
	if err != nil {
		return nil, err
	}
	if orig.Feature != domain.FeatureNotes && orig.Feature != domain.FeatureNotesUpdated {
		return nil, ErrInvalidFeature
	}
	return s.generate(ctx, userID, content, domain.FeatureNotesUpdated)
}

// Quiz generates quiz questions from the given content.
func (s *StudyService) Quiz(ctx context.Context, userID, content string) (*StudyResult, error) {
	return s.generate(ctx, userID, content, domain.FeatureQuiz)
}

// Flashcards generates flashcards from the given content.
func (s *StudyService) Flashcards(ctx context.Context, userID, content string) (*StudyResult, error) {
	return s.generate(ctx, userID, content, domain.FeatureFlashcards)
}

// Scan answers a photographed problem. The image is persisted first so the
// history record can reference it, then the assistant extracts the problem
// text and answers in one round trip. A failed extraction still leaves the
// pending record with its image for retry.
func (s *StudyService) Scan(ctx context.Context, userID string, image []byte, mediaType string) (*StudyResult, error) {
	tr := otel.Tracer("services/StudyService")
	ctx, span := tr.Start(ctx, "Scan",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if len(image) == 0 {
		return nil, ErrEmptyContent
	}
	if err := s.Ledger.Spend(ctx, userID, s.SpendPerCall); err != nil {
		return nil, err
	}

	uri, err := s.Images.Save(ctx, image, mediaType)
	if err != nil {
		return nil, err
	}
	rec, err := s.History.Record(ctx, userID, domain.FeatureScan, uri, "", "")
	if err != nil {
		return nil, err
	}
	res := &StudyResult{Record: rec}

	scan, err := s.Assistant.AnswerFromImage(ctx, uri)
	if err != nil {
		return res, ErrAnswerUnavailable
	}
	if err := s.fillScan(ctx, userID, rec, scan); err != nil {
		return res, err
	}
	res.Title = deriveTitle(scan.ExtractedText)
	res.Answer = scan.Answer
	return res, nil
}

func (s *StudyService) fillScan(ctx context.Context, userID string, rec *domain.HistoryRecord, scan *assistant.ScanResult) error {
	if err := s.History.fillScanResult(ctx, userID, rec.ID, scan.ExtractedText, scan.Answer); err != nil {
		return err
	}
	rec.ExtractedText = scan.ExtractedText
	rec.AIAnswer = scan.Answer
	return nil
}

// MindMap generates a mind map tree from content. mode selects the raw shape
// the assistant is asked for ("json" or "outline"); either way the parser
// yields a usable tree, falling back from structured JSON to outline text.
func (s *StudyService) MindMap(ctx context.Context, userID, content, mode string) (*MindMapResult, error) {
	tr := otel.Tracer("services/StudyService")
	ctx, span := tr.Start(ctx, "MindMap",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if err := s.validateContent(content); err != nil {
		return nil, err
	}
	if err := s.Ledger.Spend(ctx, userID, s.SpendPerCall); err != nil {
		return nil, err
	}

	rec, err := s.History.Record(ctx, userID, domain.FeatureMindMap, "", content, "")
	if err != nil {
		return nil, err
	}
	res := &MindMapResult{Record: rec, Title: deriveTitle(content)}

	raw, err := s.Assistant.MindMap(ctx, content, mode)
	if err != nil {
		return res, ErrAnswerUnavailable
	}
	if err := s.History.SetAnswer(ctx, userID, rec.ID, raw); err != nil {
		return res, err
	}
	rec.AIAnswer = raw
	res.Tree = mindmap.Parse(raw)
	return res, nil
}

// Retry re-runs the assistant for a pending record without a new debit. The
// credit was consumed when the record was created; retrying is free until an
// answer lands.
func (s *StudyService) Retry(ctx context.Context, userID string, id uint) (*StudyResult, error) {
	tr := otel.Tracer("services/StudyService")
	ctx, span := tr.Start(ctx, "Retry",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("record.id", int(id)),
		),
	)
	defer span.End()

	rec, err := s.History.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	res := &StudyResult{Record: rec}

	if rec.Feature == domain.FeatureScan {
		scan, aerr := s.Assistant.AnswerFromImage(ctx, rec.ImageURI)
		if aerr != nil {
			return res, ErrAnswerUnavailable
		}
		if err := s.fillScan(ctx, userID, rec, scan); err != nil {
			return res, err
		}
		res.Title = deriveTitle(scan.ExtractedText)
		res.Answer = scan.Answer
		return res, nil
	}

	answer, aerr := s.Assistant.AnswerFromText(ctx, rec.ExtractedText, rec.Feature)
	if aerr != nil {
		return res, ErrAnswerUnavailable
	}
	if err := s.History.SetAnswer(ctx, userID, rec.ID, answer); err != nil {
		return res, err
	}
	rec.AIAnswer = answer
	res.Title = deriveTitle(rec.ExtractedText)
	res.Answer = answer
	return res, nil
}
