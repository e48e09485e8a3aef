package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/codebase-guide/internal/cache"
	"github.com/shinji-kodama/codebase-guide/internal/config"
	"github.com/shinji-kodama/codebase-guide/internal/logger"
	"github.com/shinji-kodama/codebase-guide/internal/model"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"<goal>add dark mode</goal><analysis>...</analysis>"}]}}]}`

// newTestClient returns a client pointed at srv with a test key.
func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Model:      config.DefaultModel,
		Timeout:    5 * time.Second,
		HTTPClient: srv.Client(),
		Log:        logger.Nop(),
	}
}

// TestAnalyze_Success verifies the request wire format and extraction of
// the answer text.
func TestAnalyze_Success(t *testing.T) {
	var gotPath, gotKey, gotCT string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotCT = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	text, err := c.Analyze(context.Background(), "PROMPT", "")
	require.NoError(t, err)
	assert.Equal(t, "<goal>add dark mode</goal><analysis>...</analysis>", text)

	assert.Equal(t, "/v1beta/models/"+config.DefaultModel+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotCT)

	contents := gotBody["contents"].([]any)
	require.Len(t, contents, 1)
	first := contents[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "PROMPT", first["parts"].([]any)[0].(map[string]any)["text"])

	gen := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, float64(0), gen["temperature"])
	assert.Equal(t, "text/plain", gen["responseMimeType"])
}

// TestAnalyze_ModelOverride verifies that an explicit model replaces the
// configured one in the request path.
func TestAnalyze_ModelOverride(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Analyze(context.Background(), "p", "gemini-1.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
}

// TestAnalyze_MissingKey verifies that no request is sent without a key.
func TestAnalyze_MissingKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.APIKey = "  "

	_, err := c.Analyze(context.Background(), "p", "")
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConfig))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	cliErr, _ := model.AsCLIError(err)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
	assert.Equal(t, "GEMINI_API_KEY environment variable not set.", cliErr.Message)
	assert.Contains(t, cliErr.Hints, `  export GEMINI_API_KEY="your-api-key-here"`)
}

// TestAnalyze_HTTPError verifies status, status text and body are kept.
func TestAnalyze_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Analyze(context.Background(), "p", "")
	require.Error(t, err)

	cliErr, ok := model.AsCLIError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindAPI, cliErr.Kind)
	assert.Equal(t, model.ReasonHTTPError, cliErr.Reason)
	assert.Equal(t, model.ExitAPIError, cliErr.Code)
	assert.Equal(t, "API Error: 400 Bad Request", cliErr.Message)
	assert.Equal(t, http.StatusBadRequest, cliErr.Status)
	assert.Contains(t, cliErr.Body, `"message": "API key not valid"`)
}

// TestAnalyze_Timeout verifies that a slow server is reported as a timeout
// with size-reduction hints.
func TestAnalyze_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv)
	c.Timeout = 50 * time.Millisecond

	_, err := c.Analyze(context.Background(), "p", "")
	require.Error(t, err)
	assert.Equal(t, model.ReasonTimeout, model.ReasonOf(err))

	cliErr, _ := model.AsCLIError(err)
	assert.Equal(t, "Request timed out. The codebase might be too large.", cliErr.Message)
	assert.NotEmpty(t, cliErr.Hints)
}

// TestAnalyze_NetworkError verifies that a refused connection is a network
// error whose message does not leak the API key.
func TestAnalyze_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv)
	c.APIKey = "secret-key-value"
	srv.Close()

	_, err := c.Analyze(context.Background(), "p", "")
	require.Error(t, err)
	assert.Equal(t, model.ReasonNetworkError, model.ReasonOf(err))
	assert.Contains(t, err.Error(), "Error: ")
	assert.NotContains(t, err.Error(), "secret-key-value")
}

// TestAnalyze_UnexpectedFormat verifies every missing segment of the
// answer path is rejected.
func TestAnalyze_UnexpectedFormat(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"no candidates", `{}`},
		{"empty candidates", `{"candidates":[]}`},
		{"no content", `{"candidates":[{}]}`},
		{"no parts", `{"candidates":[{"content":{}}]}`},
		{"no text", `{"candidates":[{"content":{"parts":[{}]}}]}`},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).Analyze(context.Background(), "p", "")
			require.Error(t, err)
			assert.Equal(t, model.ReasonUnexpectedFormat, model.ReasonOf(err))
			assert.Contains(t, err.Error(), "Unexpected response format from Gemini API")
		})
	}
}

// TestAnalyze_Cache verifies that a repeated identical request is served
// from the cache while a different prompt goes to the network.
func TestAnalyze_Cache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.Cache = cache.New(time.Minute, nil)

	for i := 0; i < 3; i++ {
		_, err := c.Analyze(context.Background(), "same prompt", "")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err := c.Analyze(context.Background(), "other prompt", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestNew verifies wiring from configuration.
func TestNew(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = "k"

	c := New(cfg, logger.Nop())
	assert.Equal(t, config.DefaultBaseURL, c.BaseURL)
	assert.Equal(t, config.DefaultAPITimeout, c.Timeout)
	assert.NotNil(t, c.Cache)

	cfg.CacheTTL = 0
	assert.Nil(t, New(cfg, logger.Nop()).Cache)
}
