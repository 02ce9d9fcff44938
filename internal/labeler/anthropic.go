package labeler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
)

const defaultModel = "claude-sonnet-4-5"

const systemPromptTemplate = `You label app store reviews with exactly one category.
Valid categories: %s.
Respond with a single JSON object: {"category": "<one of the valid categories>", "reason": "<one short sentence>"}.
If no category fits, use an empty string for "category". Respond with JSON only, no prose.`

// Anthropic labels reviews with the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
	system string
	logger logger.Logger
}

// NewAnthropic creates an Anthropic-backed labeler.
func NewAnthropic(apiKey, model string, log logger.Logger) *Anthropic {
	if model == "" {
		model = defaultModel
	}
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		system: fmt.Sprintf(systemPromptTemplate, strings.Join(domain.Categories(), ", ")),
		logger: log,
	}
}

// Label asks the model for a category and reason. A response naming no
// category yields (nil, nil); the caller falls back to its own inference.
func (a *Anthropic) Label(ctx context.Context, title, text string) (*domain.ExternalLabel, error) {
	var prompt strings.Builder
	if title != "" {
		fmt.Fprintf(&prompt, "Title: %s\n", title)
	}
	fmt.Fprintf(&prompt, "Review: %s", text)

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: a.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.String())),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var raw string
	for _, block := range message.Content {
		if block.Type == "text" {
			raw = block.Text
			break
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("anthropic: no text content in response")
	}

	label, err := parseLabel(raw)
	if err != nil {
		return nil, err
	}
	if label != nil {
		a.logger.Debug("anthropic label",
			logger.String("category", label.Category),
			logger.Int64("input_tokens", message.Usage.InputTokens),
			logger.Int64("output_tokens", message.Usage.OutputTokens))
	}
	return label, nil
}

// parseLabel decodes the model's JSON reply, tolerating markdown fences.
func parseLabel(raw string) (*domain.ExternalLabel, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	var resp LabelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("anthropic: decode label: %w", err)
	}
	if resp.Category == "" {
		return nil, nil
	}
	return &domain.ExternalLabel{Category: resp.Category, Reason: resp.Reason}, nil
}
