package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/repositories"
)

const defaultChatModel = openai.GPT4oMini

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	SourceLanguage string
	TargetLanguage string
}

// OpenAITranslator implements Translator with chat completions
type OpenAITranslator struct {
	client       *openai.Client
	model        string
	systemPrompt string
	logger       *zap.Logger
}

var _ repositories.Translator = (*OpenAITranslator)(nil)

// NewOpenAITranslator creates a chat completion translator
func NewOpenAITranslator(config OpenAIConfig, logger *zap.Logger) (*OpenAITranslator, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, errors.New("OpenAI API key is required unless a custom base URL is set")
	}
	if config.TargetLanguage == "" {
		return nil, errors.New("target language is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultChatModel
		logger.Info("Using default model", zap.String("model", model))
	}

	source := config.SourceLanguage
	if source == "" {
		source = "en"
	}

	return &OpenAITranslator{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        model,
		systemPrompt: systemPrompt(source, config.TargetLanguage),
		logger:       logger,
	}, nil
}

// Translate implements repositories.Translator
func (o *OpenAITranslator) Translate(ctx context.Context, text string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", errors.New("chat completion: empty translation")
	}
	o.logger.Debug("Translated text",
		zap.String("model", o.model),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens))
	return translated, nil
}
