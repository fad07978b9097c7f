package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/viant/kgflow/internal/logging"
	"github.com/viant/kgflow/tracing"
)

// DefaultTimeout bounds a single extraction call
const DefaultTimeout = 30 * time.Second

// Config represents OpenAI compatible chat completion settings
type Config struct {
	// URL is the API base URL, e.g. https://api.openai.com/v1
	URL          string  `json:"url" yaml:"url"`
	APIKey       string  `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	Model        string  `json:"model" yaml:"model"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	TopP         float64 `json:"topP" yaml:"topP"`
	TimeoutMs    int     `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	SystemPrompt string  `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	Intents      []*Term `json:"intents,omitempty" yaml:"intents,omitempty"`
	Entities     []*Term `json:"entities,omitempty" yaml:"entities,omitempty"`
}

// Timeout returns call timeout
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// DefaultConfig returns default extraction settings
func DefaultConfig() *Config {
	return &Config{
		Temperature:  0.3,
		TopP:         0.95,
		SystemPrompt: DefaultSystemPrompt,
		Intents:      DefaultIntents(),
		Entities:     DefaultEntities(),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string     `json:"model"`
	Messages    []*message `json:"messages"`
	Temperature float64    `json:"temperature"`
	TopP        float64    `json:"top_p"`
	Stream      bool       `json:"stream"`
}

// Client extracts intents with an OpenAI compatible chat completion API
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Extract calls the model; failures are logged and reported as Unknown
func (c *Client) Extract(ctx context.Context, prompt string) *Result {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout())
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "nlu.extract", tracing.KindClient)
	content, err := c.complete(ctx, span, BuildPrompt(c.config.Intents, c.config.Entities, prompt))
	tracing.EndSpan(span, err)
	if err != nil {
		logging.FromContext(ctx).Error("intent extraction failed", "error", err)
		return Unknown()
	}
	result, err := Parse(content)
	if err != nil {
		logging.FromContext(ctx).Error("intent extraction failed", "error", err, "content", content)
		return Unknown()
	}
	return result
}

func (c *Client) complete(ctx context.Context, span *tracing.Span, userPrompt string) (string, error) {
	body, err := json.Marshal(&request{
		Model: c.config.Model,
		Messages: []*message{
			{Role: "system", Content: c.config.SystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	URL := strings.TrimRight(c.config.URL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %v: %w", URL, err)
	}
	defer resp.Body.Close()
	span.SetStatusFromHTTPCode(resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data)
	}
	content := gjson.GetBytes(data, "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "", fmt.Errorf("empty model response")
	}
	return content.String(), nil
}

// Parse parses model output; the JSON document spans the first '{' to the last '}'
func Parse(content string) (*Result, error) {
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("invalid JSON response")
	}
	doc := gjson.Parse(content)
	result := Unknown()
	if intent := doc.Get("intent"); intent.Exists() && intent.String() != "" {
		result.Intent = intent.String()
	}
	result.Confidence = clamp(doc.Get("confidence").Float())
	doc.Get("entities").ForEach(func(key, value gjson.Result) bool {
		result.Entities[key.String()] = value.Value()
		return true
	})
	return result, nil
}

func clamp(confidence float64) float64 {
	switch {
	case confidence < 0:
		return 0
	case confidence > 1:
		return 1
	}
	return confidence
}

// NewClient creates chat completion client
func NewClient(config *Config, httpClient *http.Client) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if len(config.Intents) == 0 {
		config.Intents = DefaultIntents()
	}
	if len(config.Entities) == 0 {
		config.Entities = DefaultEntities()
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{config: config, httpClient: httpClient}
}
