// Package gemini is a minimal client for the Gemini generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shinji-kodama/codebase-guide/internal/cache"
	"github.com/shinji-kodama/codebase-guide/internal/config"
	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client sends one prompt per call and returns the model's answer text.
type Client struct {
	// BaseURL is scheme and host, e.g. "https://generativelanguage.googleapis.com".
	BaseURL string

	// APIKey is sent as the key query parameter. Empty makes Analyze fail
	// with a ConfigError before any request is made.
	APIKey string

	// Model is used when Analyze is called with an empty model.
	Model string

	// Timeout bounds the whole request including reading the body.
	Timeout time.Duration

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Cache memoizes successful answers by model and prompt. Optional.
	Cache *cache.Cache

	Log logger.Logger
}

// New creates a Client from configuration.
func New(cfg *config.Config, log logger.Logger) *Client {
	c := &Client{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.APITimeout,
		Log:     logger.Named(log, "gemini"),
	}
	if cfg.CacheTTL > 0 {
		c.Cache = cache.New(cfg.CacheTTL, nil)
	}
	return c
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// generateResponse uses pointers so that absent fields can be told apart
// from empty ones.
type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends prompt to the model and returns candidates[0].content.parts[0].text.
//
// Errors:
//   - no API key: ConfigError, no request is sent
//   - deadline exceeded: APIError{timeout}
//   - non-2xx status: APIError{http_error} with status and body
//   - other transport failure: APIError{network_error}
//   - answer text missing: APIError{unexpected_format}
func (c *Client) Analyze(ctx context.Context, prompt, modelID string) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", model.NewConfigError(config.APIKeyEnvVar+" environment variable not set.", nil).
			WithHints(
				"Please set your Gemini API key:",
				`  export GEMINI_API_KEY="your-api-key-here"`,
			)
	}

	if modelID == "" {
		modelID = c.Model
	}

	var key string
	if c.Cache != nil {
		key = cache.Key(modelID, prompt)
		if text, ok := c.Cache.Get(key); ok {
			c.Log.Debug().Str("model", modelID).Msg("analysis served from cache")
			return text, nil
		}
	}

	text, err := c.generate(ctx, prompt, modelID)
	if err != nil {
		return "", err
	}

	if c.Cache != nil {
		c.Cache.Set(key, text, 0)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt, modelID string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      0,
			ResponseMimeType: "text/plain",
		},
	})
	if err != nil {
		return "", model.NewAPIError(model.ReasonNetworkError, "Error: failed to encode request", err)
	}

	reqCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint(modelID), bytes.NewReader(body))
	if err != nil {
		return "", model.NewAPIError(model.ReasonNetworkError, "Error: "+err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.Log.Debug().
		Str("model", modelID).
		Int("prompt_bytes", len(prompt)).
		Dur("timeout", c.Timeout).
		Msg("sending analysis request")

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", c.transportError(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", c.transportError(ctx, reqCtx, err)
	}

	c.Log.Debug().
		Int("status", resp.StatusCode).
		Int("response_bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", model.NewHTTPError(resp.StatusCode, statusText(resp), prettyBody(raw))
	}

	return extractText(raw)
}

// transportError classifies a failed round trip. Only this client's own
// deadline is reported as a timeout.
func (c *Client) transportError(parent, reqCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return model.NewAPIError(model.ReasonTimeout, "Request timed out. The codebase might be too large.", err).
			WithHints(
				"Try using repomix with additional filters to reduce the size:",
				`  npx --yes repomix --ignore "**/*.log,tmp/,node_modules/" --stdout`,
				"Note: Images and binary files are already excluded by default.",
			)
	}

	// url.Error embeds the request URL, which carries the API key.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return model.NewAPIError(model.ReasonNetworkError, "Error: "+err.Error(), nil)
}

func (c *Client) endpoint(modelID string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = config.DefaultBaseURL
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		base, url.PathEscape(modelID), url.QueryEscape(c.APIKey))
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// extractText navigates candidates[0].content.parts[0].text.
func extractText(raw []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", unexpectedFormat(err)
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil {
		return "", unexpectedFormat(nil)
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil || *parts[0].Text == "" {
		return "", unexpectedFormat(nil)
	}
	return *parts[0].Text, nil
}

func unexpectedFormat(err error) error {
	return model.NewAPIError(model.ReasonUnexpectedFormat, "Unexpected response format from Gemini API", err)
}

// statusText returns the reason phrase sent by the server, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// prettyBody indents JSON bodies for display and returns anything else as-is.
func prettyBody(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err == nil {
		return buf.String()
	}
	return strings.TrimSpace(string(raw))
}
