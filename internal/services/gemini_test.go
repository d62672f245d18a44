package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"alfredoptarigan/cv-screening/internal/config"
)

type stubGenerator struct {
	text  string
	err   error
	block bool
	calls int
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

func TestIsPlaceholderKey(t *testing.T) {
	for _, key := range []string{"", "   ", "changeme", "YOUR_API_KEY", "your-gemini-key", "<gemini key>", "xxx"} {
		assert.True(t, IsPlaceholderKey(key), "key %q", key)
	}
	for _, key := range []string{"AIzaSyD-example-real-looking", "k-123"} {
		assert.False(t, IsPlaceholderKey(key), "key %q", key)
	}
}

func TestNewAIClientWithoutCredentialsUsesMock(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	client := NewAIClient(context.Background(), config.GeminiConfig{APIKey: "your_api_key", Model: "gemini-2.5-flash"},
		NewSeededMockAnalysisGenerator(1), zap.New(core))

	assert.False(t, client.Live())
	assert.Equal(t, 1, logs.FilterMessage("gemini api key not configured, using mock analysis").Len())

	analysis := ParseAnalysis(client.Analyze(context.Background(), "prompt"))
	assert.GreaterOrEqual(t, analysis.OverallScore, 60)
	assert.LessOrEqual(t, analysis.OverallScore, 95)
}

func TestAnalyzeFallsBackToMock(t *testing.T) {
	tests := []struct {
		name      string
		generator *stubGenerator
	}{
		{name: "provider error", generator: &stubGenerator{err: errors.New("quota exceeded")}},
		{name: "timeout", generator: &stubGenerator{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewSeededMockAnalysisGenerator(3)
			expected := NewSeededMockAnalysisGenerator(3).Generate()
			client := newAIClient(tt.generator, mock, 20*time.Millisecond, zap.NewNop())

			assert.True(t, client.Live())
			assert.Equal(t, expected, client.Analyze(context.Background(), "prompt"))
			assert.Equal(t, 1, tt.generator.calls)
		})
	}
}

func TestAnalyzeReturnsProviderText(t *testing.T) {
	gen := &stubGenerator{text: `{"OverallScore": 88}`}
	client := newAIClient(gen, nil, time.Second, zap.NewNop())

	assert.Equal(t, `{"OverallScore": 88}`, client.Analyze(context.Background(), "prompt"))
}

func TestAIClientCallsGeminiAPI(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"OverallScore\": 91, \"Summary\": \"Great\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	cfg := config.GeminiConfig{APIKey: "test-key", Model: "gemini-2.5-flash", Timeout: 5 * time.Second, Temperature: 0.3, MaxOutputTokens: 512}
	client := newAIClientWithHTTPOptions(context.Background(), cfg, genai.HTTPOptions{BaseURL: srv.URL + "/"}, nil, zap.NewNop())
	require.True(t, client.Live())

	analysis := ParseAnalysis(client.Analyze(context.Background(), "screen this"))

	assert.Equal(t, 91, analysis.OverallScore)
	assert.Equal(t, "Great", analysis.Summary)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-2.5-flash:generateContent"), gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestAIClientFallsBackOnGeminiAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	cfg := config.GeminiConfig{APIKey: "bad-key", Model: "gemini-2.5-flash", Timeout: 5 * time.Second}
	client := newAIClientWithHTTPOptions(context.Background(), cfg, genai.HTTPOptions{BaseURL: srv.URL + "/"},
		NewSeededMockAnalysisGenerator(9), zap.NewNop())

	assert.Equal(t, NewSeededMockAnalysisGenerator(9).Generate(), client.Analyze(context.Background(), "prompt"))
}
