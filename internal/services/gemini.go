package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/cv-screening/internal/config"
	"alfredoptarigan/cv-screening/internal/logger"
)

const providerGemini = "gemini"

// Analyzer turns a screening prompt into raw model output. Implementations
// never fail; unavailability is handled internally.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) string
}

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client          *genai.Client
	modelName       string
	temperature     float32
	maxOutputTokens int32
}

func newGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, httpOptions genai.HTTPOptions) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{
		client:          client,
		modelName:       cfg.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

func (g *geminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// AIClient calls Gemini and substitutes mock output whenever the provider is
// not configured or a call does not yield text.
type AIClient struct {
	generator textGenerator
	mock      *MockAnalysisGenerator
	timeout   time.Duration
	log       *zap.Logger
}

// NewAIClient never fails: without a usable key or client it runs in mock mode.
func NewAIClient(ctx context.Context, cfg config.GeminiConfig, mock *MockAnalysisGenerator, log *zap.Logger) *AIClient {
	return newAIClientWithHTTPOptions(ctx, cfg, genai.HTTPOptions{}, mock, log)
}

func newAIClientWithHTTPOptions(ctx context.Context, cfg config.GeminiConfig, httpOptions genai.HTTPOptions, mock *MockAnalysisGenerator, log *zap.Logger) *AIClient {
	log = logger.WithFields(log, logger.AIFields(providerGemini, cfg.Model)...)

	if IsPlaceholderKey(cfg.APIKey) {
		log.Warn("gemini api key not configured, using mock analysis")
		return newAIClient(nil, mock, cfg.Timeout, log)
	}

	generator, err := newGeminiGenerator(ctx, cfg, httpOptions)
	if err != nil {
		log.Warn("gemini client unavailable, using mock analysis", zap.Error(err))
		return newAIClient(nil, mock, cfg.Timeout, log)
	}

	log.Info("gemini client initialized")
	return newAIClient(generator, mock, cfg.Timeout, log)
}

func newAIClient(generator textGenerator, mock *MockAnalysisGenerator, timeout time.Duration, log *zap.Logger) *AIClient {
	if mock == nil {
		mock = NewMockAnalysisGenerator()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AIClient{
		generator: generator,
		mock:      mock,
		timeout:   timeout,
		log:       logger.WithFields(log),
	}
}

// Live reports whether calls go to the provider.
func (c *AIClient) Live() bool {
	return c.generator != nil
}

func (c *AIClient) Analyze(ctx context.Context, prompt string) string {
	if c.generator == nil {
		return c.mock.Generate()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generator.GenerateText(ctx, prompt)
	if err != nil {
		c.log.Warn("gemini call failed, using mock analysis",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return c.mock.Generate()
	}

	c.log.Debug("gemini response received",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.String("response_preview", logger.Truncate(text, 200)),
	)
	return text
}

var placeholderKeys = map[string]struct{}{
	"changeme":            {},
	"placeholder":         {},
	"your_api_key":        {},
	"your-api-key":        {},
	"your_gemini_api_key": {},
	"gemini_api_key":      {},
	"api_key":             {},
	"xxx":                 {},
}

// IsPlaceholderKey reports whether key is empty or an obvious template value.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	if _, ok := placeholderKeys[k]; ok {
		return true
	}
	return strings.HasPrefix(k, "your_") || strings.HasPrefix(k, "your-") || strings.HasPrefix(k, "<")
}
