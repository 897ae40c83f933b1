package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/farsisub/adapters/capture"
	"github.com/satriahrh/farsisub/adapters/mongo"
	"github.com/satriahrh/farsisub/adapters/stt"
	"github.com/satriahrh/farsisub/adapters/subtitle"
	"github.com/satriahrh/farsisub/adapters/translate"
	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/api"
	"github.com/satriahrh/farsisub/internal/audiobuf"
	"github.com/satriahrh/farsisub/internal/auth"
	"github.com/satriahrh/farsisub/internal/config"
	"github.com/satriahrh/farsisub/internal/websocket"
	"github.com/satriahrh/farsisub/usecase"
)

type runOptions struct {
	device        string
	chunkDuration float64
	asrModel      string
	httpAddr      string
	input         string
	paced         bool
}

func runPipeline(ctx context.Context, cfg *config.Config, opts runOptions, logger *zap.Logger) error {
	logger.Info("Starting translator",
		zap.String("asrProvider", cfg.ASRProvider),
		zap.String("mtProvider", cfg.MTProvider),
		zap.Float64("chunkDuration", cfg.ChunkDuration),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.String("subtitleFile", cfg.SubtitleFile))

	speechToText, closeSTT, err := newSpeechToText(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSTT()

	translator, err := newTranslator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	publishers := subtitle.MultiPublisher{hub}

	var latest api.LatestSubtitleProvider
	if cfg.EnableSubtitles {
		files, err := subtitle.NewFilePublisher(cfg.SubtitleFile, cfg.JSONSubtitlePath(), logger)
		if err != nil {
			return err
		}
		defer files.Close()
		publishers = append(subtitle.MultiPublisher{files}, publishers...)
		latest = files
	}

	var transcripts repositories.TranscriptRepository
	if cfg.MongoURI != "" {
		client, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return err
		}
		defer client.Close(context.Background())

		repo := mongo.NewTranscriptRepository(client.Database, logger)
		transcripts = repo

		cleanup := usecase.NewTranscriptCleanupService(repo, cfg.Retention(), logger)
		cleanup.Start()
		defer cleanup.Stop()
	}

	queue := audiobuf.NewQueue(cfg.QueueSize)
	chunker := audiobuf.NewChunker(cfg.SampleRate, cfg.ChunkSamples(), queue)
	translation := usecase.NewTranslationService(
		speechToText, translator, publishers, transcripts,
		usecase.TranslationOptionsFromConfig(cfg), logger)

	var source repositories.AudioSource
	if opts.input != "" {
		source = capture.NewWAVFileSource(opts.input, cfg.SampleRate, cfg.BlockSamples(), opts.paced, logger)
	} else {
		source = capture.NewPortAudioSource(cfg.DeviceName, cfg.SampleRate, cfg.BlockSamples(), logger)
	}

	streaming := usecase.NewStreamingService(source, queue, chunker, translation, cfg.InferenceDeadline(), logger)

	var tokens *auth.TokenIssuer
	if cfg.OverlayJWTSecret != "" {
		tokens, err = auth.NewTokenIssuer(cfg.OverlayJWTSecret)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if cfg.HTTPAddr != "" {
		e := newServer(api.Dependencies{
			Stats:       streaming,
			Latest:      latest,
			Transcripts: transcripts,
			Hub:         hub,
			Tokens:      tokens,
			Logger:      logger,
		})
		g.Go(func() error {
			logger.Info("Overlay server listening", zap.String("addr", cfg.HTTPAddr))
			if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		err := streaming.Run(gctx)
		if err != nil {
			return err
		}
		// A finished file replay ends the whole run
		if opts.input != "" {
			return errReplayFinished
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, errReplayFinished) {
		err = nil
	}

	stats := streaming.Stats()
	logger.Info("Translator stopped",
		zap.Int64("translations", stats.TranslationCount),
		zap.Uint64("captured", stats.ChunksCaptured),
		zap.Uint64("dropped", stats.ChunksDropped),
		zap.Uint64("failures", stats.Failures))
	return err
}

var errReplayFinished = errors.New("input replay finished")

func newServer(deps api.Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, deps)
	return e
}

func newSpeechToText(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.SpeechToText, func() error, error) {
	noop := func() error { return nil }

	switch cfg.ASRProvider {
	case config.ProviderOpenAI:
		w, err := stt.NewWhisperSpeechToText(stt.WhisperConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.ASRModel,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("whisper: %w", err)
		}
		return w, noop, nil
	case config.ProviderGoogle:
		model := cfg.ASRModel
		if strings.HasPrefix(model, "whisper") {
			logger.Info("Ignoring whisper model name for Google Speech", zap.String("model", model))
			model = ""
		}
		g, err := stt.NewGoogleSpeechToText(ctx, model, logger)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case config.ProviderMock:
		return stt.NewMockSpeechToText("", logger), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown asr_provider %q", cfg.ASRProvider)
	}
}

// newTranslator returns nil when translation is disabled
func newTranslator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Translator, error) {
	if !cfg.EnableTranslation {
		logger.Info("Translation disabled, publishing source text")
		return nil, nil
	}

	switch cfg.MTProvider {
	case config.ProviderGemini:
		g, err := translate.NewGeminiTranslator(ctx, translate.GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.MTModel,
			SourceLanguage: cfg.Language,
			TargetLanguage: cfg.TargetLanguage,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return g, nil
	case config.ProviderOpenAI:
		o, err := translate.NewOpenAITranslator(translate.OpenAIConfig{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			Model:          cfg.MTModel,
			SourceLanguage: cfg.Language,
			TargetLanguage: cfg.TargetLanguage,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		return o, nil
	case config.ProviderMock:
		return translate.NewMockTranslator(cfg.TargetLanguage), nil
	default:
		return nil, fmt.Errorf("unknown mt_provider %q", cfg.MTProvider)
	}
}
