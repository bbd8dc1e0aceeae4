// Package anthropic implements the content-generation collaborator on
// the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/domain/services"
	"papergen/internal/service/generation/batch"
)

// Provider implements services.QuestionGenerator against Claude models.
type Provider struct {
	client *anthropic.Client
	model  string
}

// NewProvider creates an Anthropic provider with the given API key and model.
func NewProvider(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// GenerateBatch issues one Messages call for one blueprint item and
// decodes the JSON payload into question records.
func (p *Provider) GenerateBatch(ctx context.Context, req *services.BatchRequest) ([]services.GeneratedQuestion, error) {
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(batch.BuildPrompt(req)),
	}

	// Up to two binary reference attachments ride along as image blocks.
	if req.Style != nil {
		attachments := req.Style.Attachments
		if len(attachments) > models.MaxStyleAttachments {
			attachments = attachments[:models.MaxStyleAttachments]
		}
		for _, data := range attachments {
			encoded := base64.StdEncoding.EncodeToString(data)
			blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", encoded))
		}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: batch.SystemPrompt()},
		},
	}

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, &domain.GenerationError{Message: fmt.Sprintf("anthropic API call failed: %v", err)}
	}

	// Concatenate the text blocks of the response; thinking and tool
	// blocks are not part of the payload contract.
	var raw string
	for _, content := range message.Content {
		if content.Type == "text" {
			raw += content.Text
		}
	}

	return batch.Decode(raw, req.Count)
}
