package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/farsisub/domain/repositories"
)

const (
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultTemperature    = 0.2
	defaultMaxTokens      = 256
	defaultTimeoutSeconds = 10
	defaultMaxAttempts    = 3
)

// GeminiConfig holds the settings of the Gemini translator
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	SourceLanguage  string
	TargetLanguage  string
	Temperature     float32
	MaxOutputTokens int
	TimeoutSeconds  int
}

// GeminiTranslator implements Translator using Google's Gemini API
type GeminiTranslator struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
	systemPrompt    string
	maxAttempts     int
	backoff         time.Duration
}

var _ repositories.Translator = (*GeminiTranslator)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return errors.New("Google AI API key is required")
	}
	if config.TargetLanguage == "" {
		return errors.New("target language is required")
	}

	if config.Temperature < 0 || config.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}
	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}
	return nil
}

// NewGeminiTranslator creates a Gemini client and applies defaults for unset options
func NewGeminiTranslator(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiTranslator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = float32(defaultTemperature)
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
		logger.Info("Using default timeoutSeconds", zap.Int("timeoutSeconds", timeoutSeconds))
	}

	source := config.SourceLanguage
	if source == "" {
		source = "en"
	}

	return &GeminiTranslator{
		client:          client,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		timeout:         time.Duration(timeoutSeconds) * time.Second,
		systemPrompt:    systemPrompt(source, config.TargetLanguage),
		maxAttempts:     defaultMaxAttempts,
		backoff:         time.Second,
	}, nil
}

// retryable reports false for client errors such as a bad key or request,
// which fail the same way on every attempt. Timeouts and rate limits retry.
func retryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	switch {
	case apiErr.Code == http.StatusRequestTimeout, apiErr.Code == http.StatusTooManyRequests:
		return true
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return false
	default:
		return true
	}
}

// Translate sends the text to Gemini, retrying transient failures with linear backoff
func (g *GeminiTranslator) Translate(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   int32(g.maxOutputTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var (
		response *genai.GenerateContentResponse
		err      error
	)
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err == nil {
			break
		}
		if !retryable(err) {
			return "", fmt.Errorf("gemini translate: %w", err)
		}

		g.logger.Warn("Failed to generate translation, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < g.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("gemini translate: %w", ctx.Err())
			case <-time.After(time.Duration(attempt+1) * g.backoff):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("gemini translate: %w", err)
	}

	translated := strings.TrimSpace(responseText(response))
	if translated == "" {
		return "", errors.New("gemini translate: empty response")
	}
	return translated, nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
