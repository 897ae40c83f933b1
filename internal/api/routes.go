package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
	"github.com/satriahrh/farsisub/internal/auth"
	"github.com/satriahrh/farsisub/internal/websocket"
)

const (
	defaultTranscriptLimit = 50
	maxTranscriptLimit     = 500
)

// StatsProvider reports pipeline counters
type StatsProvider interface {
	Stats() entities.PipelineStats
}

// LatestSubtitleProvider returns the most recently published subtitle, or nil
type LatestSubtitleProvider interface {
	Latest() *entities.Subtitle
}

// Dependencies are the collaborators behind the HTTP surface.
// Latest, Transcripts and Tokens are optional.
type Dependencies struct {
	Stats       StatsProvider
	Latest      LatestSubtitleProvider
	Transcripts repositories.TranscriptRepository
	Hub         *websocket.Hub
	Tokens      *auth.TokenIssuer
	Logger      *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:    "ok",
			Service:   "farsisub",
			Recording: deps.Stats.Stats().IsRecording,
			Overlays:  deps.Hub.ClientCount(),
		})
	})

	v1 := e.Group("/api/v1")

	v1.GET("/stats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, deps.Stats.Stats())
	})

	v1.GET("/subtitle", func(c echo.Context) error {
		return getSubtitle(c, deps.Latest)
	})

	v1.GET("/transcripts", func(c echo.Context) error {
		return getTranscripts(c, deps.Transcripts, logger)
	})

	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(deps.Hub, deps.Tokens, c, logger)
	})
}

func getSubtitle(c echo.Context, latest LatestSubtitleProvider) error {
	if latest == nil {
		return c.NoContent(http.StatusNoContent)
	}
	sub := latest.Latest()
	if sub == nil {
		return c.NoContent(http.StatusNoContent)
	}

	expiresAt := sub.ExpiresAt()
	return c.JSON(http.StatusOK, SubtitleResponse{
		SubtitleDocument: sub.Document(),
		ExpiresAt:        expiresAt,
		Active:           time.Now().Before(expiresAt),
	})
}

func getTranscripts(c echo.Context, repo repositories.TranscriptRepository, logger *zap.Logger) error {
	if repo == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "history_disabled",
			Message: "Transcript history is not configured (set MONGODB_URI)",
		})
	}

	limit := defaultTranscriptLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTranscriptLimit {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be between 1 and " + strconv.Itoa(maxTranscriptLimit),
			})
		}
		limit = n
	}

	transcripts, err := repo.ListRecent(c.Request().Context(), limit)
	if err != nil {
		logger.Error("Failed to list transcripts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load transcripts",
		})
	}

	return c.JSON(http.StatusOK, TranscriptsResponse{
		Transcripts: transcripts,
		Count:       len(transcripts),
	})
}

// websocketWithAuth requires an overlay token when an issuer is configured.
// Browser sources cannot set headers, so the token may also come as ?token=.
func websocketWithAuth(hub *websocket.Hub, tokens *auth.TokenIssuer, c echo.Context, logger *zap.Logger) error {
	if tokens == nil {
		return websocket.HandleWebSocket(hub, c, logger)
	}

	token := bearerToken(c.Request().Header.Get("Authorization"))
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required in Authorization header or token query parameter",
		})
	}

	claims, err := tokens.ValidateOverlayToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("client", claims.ClientName),
		zap.String("role", claims.Role))

	return websocket.HandleWebSocket(hub, c, logger)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
