package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"papergen/internal/config"
	"papergen/internal/domain/models"
	"papergen/internal/domain/services"
)

// PlaceholderImage is the fixed reference an image request degrades to.
// A 1x1 transparent PNG; the front end swaps in its own placeholder art.
const PlaceholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// ImageClient calls the image-generation collaborator over HTTP. Failure
// never propagates to the caller: any error resolves to the placeholder.
type ImageClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewImageClient creates an image client for the configured service URL.
// An empty URL is valid - every request then resolves to the placeholder.
func NewImageClient(cfg *config.Config, logger *slog.Logger) services.ImageGenerator {
	return &ImageClient{
		baseURL: cfg.ImageServiceURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	Source string `json:"source"`
}

// Generate requests one image for the prompt. On any failure it returns
// the placeholder reference at the default width.
func (c *ImageClient) Generate(ctx context.Context, prompt string) models.ImageRef {
	placeholder := models.ImageRef{Source: PlaceholderImage, WidthPct: config.DefaultImageWidthPct}

	if c.baseURL == "" {
		return placeholder
	}

	body, err := json.Marshal(imageRequest{Prompt: prompt})
	if err != nil {
		return placeholder
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images", bytes.NewReader(body))
	if err != nil {
		return placeholder
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("image generation failed, using placeholder", "error", err)
		return placeholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("image generation failed, using placeholder", "status", resp.StatusCode)
		return placeholder
	}

	var out imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Source == "" {
		c.logger.Warn("image payload unusable, using placeholder", "error", err)
		return placeholder
	}

	return models.ImageRef{Source: out.Source, WidthPct: config.DefaultImageWidthPct}
}
