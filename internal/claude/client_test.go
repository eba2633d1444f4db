package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		model          string
		temperature    float64
		fallbackURL    string
		expectedModel  string
		expectedTemp   float64
		expectedConfig bool
		expectedChain  int
	}{
		{
			name:           "with all parameters",
			apiKey:         "test-api-key",
			model:          "claude-3-opus",
			temperature:    0.5,
			expectedModel:  "claude-3-opus",
			expectedTemp:   0.5,
			expectedConfig: true,
			expectedChain:  1,
		},
		{
			name:           "empty model uses default",
			apiKey:         "test-api-key",
			model:          "",
			temperature:    0.3,
			expectedModel:  defaultModel,
			expectedTemp:   0.3,
			expectedConfig: true,
			expectedChain:  1,
		},
		{
			name:           "zero temperature uses default",
			apiKey:         "test-api-key",
			model:          "claude-3-sonnet",
			temperature:    0,
			expectedModel:  "claude-3-sonnet",
			expectedTemp:   0.1,
			expectedConfig: true,
			expectedChain:  1,
		},
		{
			name:           "fallback endpoint extends the chain",
			apiKey:         "test-api-key",
			model:          "claude-3-sonnet",
			temperature:    0.2,
			fallbackURL:    "https://proxy.example.com/v1/messages",
			expectedModel:  "claude-3-sonnet",
			expectedTemp:   0.2,
			expectedConfig: true,
			expectedChain:  2,
		},
		{
			name:           "empty api key",
			apiKey:         "",
			model:          "some-model",
			temperature:    0.2,
			expectedModel:  "some-model",
			expectedTemp:   0.2,
			expectedConfig: false,
			expectedChain:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.apiKey, tt.model, tt.temperature, tt.fallbackURL)

			require.NotNil(t, client)
			assert.Equal(t, tt.expectedModel, client.model)
			assert.Equal(t, tt.expectedTemp, client.temperature)
			assert.Equal(t, tt.expectedConfig, client.IsConfigured())
			assert.Len(t, client.endpoints, tt.expectedChain)
		})
	}
}

func newAPIServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		resp := map[string]any{
			"id":      "msg_test",
			"type":    "message",
			"role":    "assistant",
			"content": []map[string]string{{"type": "text", "text": text}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestCompleteSuccess(t *testing.T) {
	srv := newAPIServer(t, "Hello there!")
	defer srv.Close()

	client := NewClient("test-key", "test-model", 0.1, "")
	client.endpoints = []string{srv.URL}

	text, err := client.Complete(context.Background(), "be brief", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", text)
}

func TestCompleteFallsBackToSecondTransport(t *testing.T) {
	var primaryHits atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryHits.Add(1)
		http.Error(w, `{"error":{"type":"overloaded_error","message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	fallback := newAPIServer(t, "from fallback")
	defer fallback.Close()

	client := NewClient("test-key", "test-model", 0.1, "")
	client.endpoints = []string{primary.URL, fallback.URL}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	text, err := client.Complete(ctx, "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	// Initial attempt plus one retry before moving on.
	assert.Equal(t, int32(2), primaryHits.Load())
}

func TestCompleteAllTransportsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-model", 0.1, "")
	client.endpoints = []string{srv.URL}

	_, err := client.Complete(context.Background(), "sys", "user")
	assert.ErrorContains(t, err, "all transports failed")
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "authentication_error", "message": "bad key"},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-model", 0.1, "")
	client.endpoints = []string{srv.URL}

	_, err := client.Complete(context.Background(), "sys", "user")
	assert.ErrorContains(t, err, "authentication_error")
}

func TestCompleteRespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-model", 0.1, "")
	client.endpoints = []string{srv.URL, srv.URL}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Complete(ctx, "sys", "user")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "deadline must bound the whole chain")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", `Sure! Here you go: {"a":{"b":2}} hope that helps`, `{"a":{"b":2}}`},
		{"nested braces", `{"x":{"y":{"z":3}}}`, `{"x":{"y":{"z":3}}}`},
		{"no json at all", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}
