// Package config loads the translator configuration from a JSON file and the
// process environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultPath = "translation_config.json"

// Provider names
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
	ProviderGemini = "gemini"
)

// Config is the translator configuration. Durations are seconds, matching the
// on-disk format shared with the overlay tooling.
type Config struct {
	ASRProvider       string  `json:"asr_provider"`
	ASRModel          string  `json:"asr_model"`
	MTProvider        string  `json:"mt_provider"`
	MTModel           string  `json:"mt_model"`
	ChunkDuration     float64 `json:"chunk_duration"`
	BlockDuration     float64 `json:"block_duration"`
	SampleRate        int     `json:"sample_rate"`
	QueueSize         int     `json:"queue_size"`
	DeviceName        string  `json:"device_name"`
	SubtitleFile      string  `json:"subtitle_file"`
	EnableTranslation bool    `json:"enable_translation"`
	EnableSubtitles   bool    `json:"enable_subtitles"`
	SubtitleDuration  float64 `json:"subtitle_duration"`
	MinConfidence     float64 `json:"min_confidence"`
	MinTextLength     int     `json:"min_text_length"`
	Language          string  `json:"language"`
	TargetLanguage    string  `json:"target_language"`
	InferenceTimeout  float64 `json:"inference_timeout"`
	HTTPAddr          string  `json:"http_addr"`
	RetentionHours    int     `json:"transcript_retention_hours"`

	// Environment only
	OpenAIAPIKey     string `json:"-"`
	OpenAIBaseURL    string `json:"-"`
	GeminiAPIKey     string `json:"-"`
	MongoURI         string `json:"-"`
	MongoDatabase    string `json:"-"`
	OverlayJWTSecret string `json:"-"`

	ignored []IgnoredKey
}

// IgnoredKey is a setting from an older config file that no longer has an effect
type IgnoredKey struct {
	Key        string
	UseInstead string
}

// Keys written by the earlier local-Whisper translator, mapped to their replacements
var legacyKeys = []IgnoredKey{
	{Key: "whisper_model_size", UseInstead: "asr_model"},
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ASRProvider:       ProviderOpenAI,
		ASRModel:          "whisper-1",
		MTProvider:        ProviderGemini,
		MTModel:           "",
		ChunkDuration:     5.0,
		BlockDuration:     0.1,
		SampleRate:        16000,
		QueueSize:         3,
		DeviceName:        "CABLE Output",
		SubtitleFile:      "subtitle.txt",
		EnableTranslation: true,
		EnableSubtitles:   true,
		SubtitleDuration:  3.0,
		MinConfidence:     0.5,
		MinTextLength:     3,
		Language:          "en",
		TargetLanguage:    "fa",
		InferenceTimeout:  30,
		RetentionHours:    168,
		MongoDatabase:     "farsisub",
	}
}

// Load reads path on top of the defaults. A missing file is created with the
// defaults. Environment variables (and a .env file, when present) are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err == nil {
			for _, legacy := range legacyKeys {
				if _, ok := raw[legacy.Key]; ok {
					cfg.ignored = append(cfg.ignored, legacy)
				}
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the file-backed settings to path
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv() {
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.MongoURI, "MONGODB_URI")
	setString(&c.MongoDatabase, "MONGODB_DATABASE")
	setString(&c.OverlayJWTSecret, "OVERLAY_JWT_SECRET")
	setString(&c.SubtitleFile, "SUBTITLE_FILE")
	setString(&c.DeviceName, "AUDIO_DEVICE")
	setString(&c.ASRProvider, "ASR_PROVIDER")
	setString(&c.MTProvider, "MT_PROVIDER")

	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			c.HTTPAddr = ":" + port
		}
	}
	setString(&c.HTTPAddr, "HTTP_ADDR")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk_duration must be positive, got %v", c.ChunkDuration)
	}
	if c.BlockDuration <= 0 || c.BlockDuration > c.ChunkDuration {
		return fmt.Errorf("block_duration must be in (0, chunk_duration], got %v", c.BlockDuration)
	}
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000, got %d", c.SampleRate)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", c.QueueSize)
	}
	if c.SubtitleDuration <= 0 {
		return fmt.Errorf("subtitle_duration must be positive, got %v", c.SubtitleDuration)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %v", c.MinConfidence)
	}
	if c.InferenceTimeout <= 0 {
		return fmt.Errorf("inference_timeout must be positive, got %v", c.InferenceTimeout)
	}
	if c.RetentionHours < 1 {
		return fmt.Errorf("transcript_retention_hours must be at least 1, got %d", c.RetentionHours)
	}
	if c.SubtitleFile == "" {
		return errors.New("subtitle_file is required")
	}
	switch c.ASRProvider {
	case ProviderOpenAI, ProviderGoogle, ProviderMock:
	default:
		return fmt.Errorf("unknown asr_provider %q", c.ASRProvider)
	}
	switch c.MTProvider {
	case ProviderGemini, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("unknown mt_provider %q", c.MTProvider)
	}
	return nil
}

// IgnoredKeys lists settings found in the file that no longer have an effect
func (c *Config) IgnoredKeys() []IgnoredKey {
	return c.ignored
}

// ChunkSamples is the number of samples per inference chunk
func (c *Config) ChunkSamples() int {
	return int(float64(c.SampleRate) * c.ChunkDuration)
}

// BlockSamples is the number of frames per audio callback
func (c *Config) BlockSamples() int {
	return int(float64(c.SampleRate) * c.BlockDuration)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// SubtitleTTL is how long the overlay should display a subtitle
func (c *Config) SubtitleTTL() time.Duration {
	return seconds(c.SubtitleDuration)
}

// InferenceDeadline bounds ASR+MT for a single chunk
func (c *Config) InferenceDeadline() time.Duration {
	return seconds(c.InferenceTimeout)
}

// Retention is how long transcripts are kept
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// JSONSubtitlePath returns the JSON sibling of the subtitle text file
func (c *Config) JSONSubtitlePath() string {
	return JSONPathFor(c.SubtitleFile)
}

// JSONPathFor maps subtitle.txt to subtitle.json; other names get .json appended.
func JSONPathFor(txtPath string) string {
	if strings.HasSuffix(txtPath, ".txt") {
		return strings.TrimSuffix(txtPath, ".txt") + ".json"
	}
	return txtPath + ".json"
}
