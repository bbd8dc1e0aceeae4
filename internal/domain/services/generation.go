package services

import (
	"context"

	"papergen/internal/domain/models"
)

// QuestionGenerator is the boundary to the content-generation
// collaborator. One call produces one ordered batch of questions for a
// single blueprint item.
type QuestionGenerator interface {
	// GenerateBatch produces exactly req.Count questions in order.
	// A payload that is empty, short, or fails to decode surfaces as
	// domain.ErrGeneration; the caller decides the rollback scope.
	GenerateBatch(ctx context.Context, req *BatchRequest) ([]GeneratedQuestion, error)
}

// BatchRequest describes one generation batch.
type BatchRequest struct {
	Class   string
	Subject string
	Topic   string
	Type    models.QuestionType
	Count   int
	Marks   float64
	Style   *models.StyleContext
}

// GeneratedQuestion is one record of the collaborator's response.
// Prompt and Answer are always present; Options and MatchPairs depend on
// the question type.
type GeneratedQuestion struct {
	Prompt     string             `json:"prompt"`
	Answer     string             `json:"answer"`
	Options    []string           `json:"options,omitempty"`
	MatchPairs []models.MatchPair `json:"match_pairs,omitempty"`
}

// ImageGenerator is the boundary to the image-generation collaborator.
// It never propagates failure: on any error the result is a fixed
// placeholder reference.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) models.ImageRef
}
