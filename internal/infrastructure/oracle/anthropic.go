package oracle

import (
	"context"
	"encoding/json"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

const anthropicSystemPrompt = "You are a strict patent analysis expert. Respond with strict JSON only, no prose and no code fences."

// Messager is the slice of the Anthropic SDK the client needs.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicConfig configures the Anthropic client.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// AnthropicClient scores prompts with the Anthropic Messages API.
type AnthropicClient struct {
	messages  Messager
	model     string
	maxTokens int64
	logger    logging.Logger
}

// NewAnthropicClient creates a client from an API key.
func NewAnthropicClient(cfg AnthropicConfig, log logging.Logger) (*AnthropicClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.CodeValidation, "anthropic api key is required")
	}
	c := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return NewAnthropicClientWith(&c.Messages, cfg, log), nil
}

// NewAnthropicClientWith wraps an existing Messager.
func NewAnthropicClientWith(m Messager, cfg AnthropicConfig, log logging.Logger) *AnthropicClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{messages: m, model: cfg.Model, maxTokens: int64(maxTokens), logger: log}
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string { return c.model }

// Score sends prompt with the output schema appended and returns the JSON
// document from the text blocks of the reply.
func (c *AnthropicClient) Score(ctx context.Context, prompt string, shape analysis.OutputShape) (json.RawMessage, error) {
	text := prompt
	if len(shape.Schema) > 0 {
		text += "\n\nRespond with only valid JSON matching this schema:\n" + string(shape.Schema)
	}

	c.logger.Debug("calling anthropic", logging.String("model", c.model), logging.Int("prompt_chars", len(text)))
	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: anthropicSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(text))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeOracleUnavailable, "API request failed: "+err.Error())
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return extractDocument(sb.String())
}

//Personal.AI order the ending
