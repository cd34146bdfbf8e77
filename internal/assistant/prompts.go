package assistant

import (
	"fmt"

	"github.com/nkoutras/go-study-backend/internal/domain"
)

// System prompts per producing feature. Kept short on purpose: the mobile
// client renders plain text and the history store keeps whatever comes back.
const (
	promptNotes = "You are a study assistant. Turn the provided material into concise, well-structured study notes. " +
		"Use short headings and bullet points. Answer in the language of the material."

	promptNotesUpdate = "You are a study assistant. The user provides existing study notes followed by new material. " +
		"Merge them into one updated set of notes, keeping the original structure where possible."

	promptQuiz = "You are a study assistant. Create a practice quiz from the provided material: " +
		"5 to 10 questions, mixed multiple-choice and short-answer, with an answer key at the end."

	promptFlashcards = "You are a study assistant. Create flashcards from the provided material. " +
		"Output one card per line in the form 'Front :: Back'. Aim for 10 to 20 cards."

	promptScan = "You are a study assistant. The image shows a homework problem or study material. " +
		"First transcribe the text you can read, then solve or explain it. " +
		"Respond with JSON: {\"extracted_text\": \"...\", \"answer\": \"...\"} and nothing else."

	promptMindMapJSON = "You are a study assistant. Build a mind map of the provided material. " +
		"Respond with JSON only: {\"title\": \"...\", \"children\": [{\"title\": \"...\", \"children\": [...]}]}."

	promptMindMapOutline = "You are a study assistant. Build a mind map of the provided material as an indented " +
		"outline: one node per line, two spaces of indentation per level, no other formatting."
)

// systemPrompt selects the system prompt for a text-input feature kind.
func systemPrompt(kind domain.FeatureKind) (string, error) {
	switch kind {
	case domain.FeatureNotes:
		return promptNotes, nil
	case domain.FeatureNotesUpdated:
		return promptNotesUpdate, nil
	case domain.FeatureQuiz:
		return promptQuiz, nil
	case domain.FeatureFlashcards:
		return promptFlashcards, nil
	case domain.FeatureScan:
		// Scans go through AnswerFromImage; a text-only re-ask still works.
		return promptScan, nil
	case domain.FeatureMindMap:
		return promptMindMapJSON, nil
	default:
		return "", fmt.Errorf("no prompt for feature kind %q", kind)
	}
}

// mindMapPrompt selects the mind-map prompt for the requested output mode.
func mindMapPrompt(mode string) string {
	if mode == "outline" {
		return promptMindMapOutline
	}
	return promptMindMapJSON
}
