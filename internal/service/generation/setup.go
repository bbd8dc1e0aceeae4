// Package generation constructs the content- and image-generation
// collaborators from configuration.
package generation

import (
	"fmt"
	"log/slog"

	"papergen/internal/config"
	"papergen/internal/domain/services"
	"papergen/internal/service/generation/providers/anthropic"
	"papergen/internal/service/generation/providers/lorem"
)

// SetupGenerator selects and constructs the content-generation
// collaborator from configuration.
func SetupGenerator(cfg *config.Config, logger *slog.Logger) (services.QuestionGenerator, error) {
	switch cfg.GenerationProvider {
	case "anthropic":
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey, cfg.GenerationModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		logger.Info("generation provider ready", "name", "anthropic", "model", cfg.GenerationModel)
		return provider, nil

	case "lorem":
		logger.Warn("generation provider is lorem - fabricated content only")
		return lorem.NewProvider(), nil

	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.GenerationProvider)
	}
}
