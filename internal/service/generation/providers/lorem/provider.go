// Package lorem is an offline content-generation collaborator that
// fabricates lorem ipsum questions. Used for development and tests
// without real API keys.
package lorem

import (
	"context"
	"fmt"

	loremgen "github.com/bozaro/golorem"

	"papergen/internal/domain/models"
	"papergen/internal/domain/services"
)

// Provider implements services.QuestionGenerator with fabricated text.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// GenerateBatch fabricates req.Count records matching the shape the
// real collaborator would return for the requested question type.
func (p *Provider) GenerateBatch(ctx context.Context, req *services.BatchRequest) ([]services.GeneratedQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]services.GeneratedQuestion, req.Count)
	for i := range records {
		records[i] = services.GeneratedQuestion{
			Prompt: fmt.Sprintf("%s: %s", req.Topic, p.generator.Sentence(6, 14)),
			Answer: p.generator.Sentence(4, 10),
		}

		switch req.Type {
		case models.QuestionMCQ, models.QuestionAssertionReason:
			options := make([]string, 4)
			for j := range options {
				options[j] = p.generator.Word(2, 6)
			}
			records[i].Options = options
			records[i].Answer = options[0]
		case models.QuestionTrueFalse:
			records[i].Options = []string{"True", "False"}
			records[i].Answer = "True"
		case models.QuestionMatch:
			pairs := make([]models.MatchPair, 4)
			for j := range pairs {
				pairs[j] = models.MatchPair{
					Left:  p.generator.Word(3, 8),
					Right: p.generator.Word(3, 8),
				}
			}
			records[i].MatchPairs = pairs
			records[i].Answer = "Pair each left entry with its right entry in order."
		}
	}

	return records, nil
}
