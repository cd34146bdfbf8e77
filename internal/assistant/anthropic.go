package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// Config holds the knobs for the Anthropic-backed Service.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// anthropicService implements Service using the official anthropic-sdk-go.
type anthropicService struct {
	client sdk.Client
	model  string
	max    int64
	images ImageResolver
}

// NewAnthropic creates a Service backed by the Anthropic Messages API.
// images resolves opaque URIs for the vision path; it may be nil when the
// deployment never serves scans.
func NewAnthropic(cfg Config, images ImageResolver) Service {
	max := cfg.MaxTokens
	if max <= 0 {
		max = 2048
	}
	return &anthropicService{
		client: sdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
		max:    max,
		images: images,
	}
}

func (s *anthropicService) AnswerFromText(ctx context.Context, text string, kind domain.FeatureKind) (string, error) {
	system, err := systemPrompt(kind)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, system, []sdk.ContentBlockParamUnion{sdk.NewTextBlock(text)})
}

func (s *anthropicService) AnswerFromImage(ctx context.Context, imageURI string) (*ScanResult, error) {
	if s.images == nil {
		return nil, ErrUnavailable
	}
	data, mediaType, err := s.images.Load(ctx, imageURI)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(ctx, promptScan, []sdk.ContentBlockParamUnion{
		sdk.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(data)),
		sdk.NewTextBlock("Transcribe and solve."),
	})
	if err != nil {
		return nil, err
	}
	return parseScanPayload(raw), nil
}

func (s *anthropicService) MindMap(ctx context.Context, content, mode string) (string, error) {
	return s.complete(ctx, mindMapPrompt(mode), []sdk.ContentBlockParamUnion{sdk.NewTextBlock(content)})
}

// complete runs one Messages call and concatenates the text blocks of the
// reply. Any SDK or transport failure collapses into ErrUnavailable; the
// underlying cause is logged, not propagated, so callers see one taxonomy.
func (s *anthropicService) complete(ctx context.Context, system string, content []sdk.ContentBlockParamUnion) (string, error) {
	msg, err := s.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(s.model),
		MaxTokens: s.max,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(content...)},
	})
	if err != nil {
		log.Warn().Err(err).Str("model", s.model).Msg("model call failed")
		return "", ErrUnavailable
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrUnavailable
	}
	return out, nil
}

// scanPayload is the JSON shape promptScan asks the model for.
type scanPayload struct {
	ExtractedText string `json:"extracted_text"`
	Answer        string `json:"answer"`
}

// parseScanPayload decodes the model's scan reply. Models occasionally wrap
// JSON in a code fence or ignore the format entirely; in that case the whole
// reply becomes the answer and the transcription is left empty.
func parseScanPayload(raw string) *ScanResult {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var p scanPayload
	if err := json.Unmarshal([]byte(trimmed), &p); err == nil && p.Answer != "" {
		return &ScanResult{ExtractedText: p.ExtractedText, Answer: p.Answer}
	}
	return &ScanResult{Answer: raw}
}
