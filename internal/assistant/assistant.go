// Package assistant produces the AI-generated study artifacts: scan answers,
// notes, quizzes, flashcards, and mind maps. The application consumes the
// Service interface; the Anthropic-backed implementation lives in
// anthropic.go. Both failure modes of the upstream model (network, model
// refusal) are normalized to ErrUnavailable so callers treat them uniformly
// as "answer unavailable" and never partially consume a response.
package assistant

import (
	"context"
	"errors"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// ErrUnavailable indicates the answer service could not produce a result.
// The caller's record keeps its empty answer; retry is user-initiated.
var ErrUnavailable = errors.New("answer unavailable")

// ScanResult is the two-part outcome of a photographed problem: the text the
// model read off the image, and the worked answer.
type ScanResult struct {
	ExtractedText string
	Answer        string
}

// Service is the contract for the generative answer backend.
type Service interface {
	// AnswerFromText generates an artifact of the given kind from pasted or
	// previously extracted text.
	AnswerFromText(ctx context.Context, text string, kind domain.FeatureKind) (string, error)

	// AnswerFromImage reads a photographed problem and returns both the
	// extracted text and the answer.
	AnswerFromImage(ctx context.Context, imageURI string) (*ScanResult, error)

	// MindMap generates a mind-map payload for content. Mode selects the
	// output shape ("json" for a structured tree, "outline" for an
	// indented outline).
	MindMap(ctx context.Context, content, mode string) (string, error)
}

// ImageResolver loads the bytes behind an opaque image URI. The assistant is
// the only component that ever looks inside an image; everything else treats
// the URI as an opaque reference.
type ImageResolver interface {
	Load(ctx context.Context, uri string) (data []byte, mediaType string, err error)
}
