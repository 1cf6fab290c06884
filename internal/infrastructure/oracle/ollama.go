// Package oracle implements the scoring oracle against language-model
// backends: a local Ollama server or the Anthropic Messages API. A resilient
// decorator adds caching and a circuit breaker around either one.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Backend names.
const (
	BackendOllama    = "ollama"
	BackendAnthropic = "anthropic"
)

const maxResponseBytes = 8 << 20

// OllamaConfig configures the Ollama client.
type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// OllamaClient calls POST {host}/api/generate with a JSON schema as the
// requested output format.
type OllamaClient struct {
	endpoint string
	model    string
	http     *http.Client
	logger   logging.Logger
}

type generateRequest struct {
	Model  string          `json:"model"`
	Prompt string          `json:"prompt"`
	Stream bool            `json:"stream"`
	Format json.RawMessage `json:"format,omitempty"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// NewOllamaClient creates an Ollama-backed oracle. A nil httpClient gets a
// traced client bounded by cfg.Timeout.
func NewOllamaClient(cfg OllamaConfig, httpClient *http.Client, log logging.Logger) (*OllamaClient, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New(errors.CodeValidation, "ollama host is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New(errors.CodeValidation, "ollama model is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &OllamaClient{
		endpoint: strings.TrimRight(cfg.Host, "/") + "/api/generate",
		model:    cfg.Model,
		http:     httpClient,
		logger:   log,
	}, nil
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string { return c.model }

// Score sends prompt to Ollama and returns the JSON document it generated.
func (c *OllamaClient) Score(ctx context.Context, prompt string, shape analysis.OutputShape) (json.RawMessage, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Format: shape.Schema,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "Unexpected error: "+err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "Unexpected error: "+err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling ollama", logging.String("model", c.model), logging.Int("prompt_chars", len(prompt)))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeOracleUnavailable, "API request failed: "+err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeOracleUnavailable, "API request failed: "+err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(errors.CodeOracleUnavailable, "API request failed: %s: %s",
			resp.Status, strings.TrimSpace(string(data)))
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return nil, errors.Wrap(err, errors.CodeOracleBadResponse, "Failed to parse API response: "+err.Error())
	}
	if gr.Response == nil {
		return nil, errors.New(errors.CodeOracleBadResponse, "Failed to parse API response: missing response field")
	}
	return extractDocument(*gr.Response)
}

// extractDocument strips optional Markdown code fences and checks that what
// remains is a JSON document.
func extractDocument(text string) (json.RawMessage, error) {
	doc := stripCodeFences(text)
	if doc == "" {
		return nil, errors.New(errors.CodeOracleBadResponse, "Failed to parse API response: empty response")
	}
	if !json.Valid([]byte(doc)) {
		return nil, errors.New(errors.CodeOracleBadResponse,
			fmt.Sprintf("Failed to parse API response: response is not valid JSON: %.80q", doc))
	}
	return json.RawMessage(doc), nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

//Personal.AI order the ending
