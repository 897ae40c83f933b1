package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/satriahrh/farsisub/adapters/subtitle"
	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/internal/auth"
	"github.com/satriahrh/farsisub/internal/config"
)

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug", true)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level enabled")
	}

	logger, err = newLogger("warn", false)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("Expected info level disabled")
	}

	if _, err := newLogger("loud", false); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestWarnIgnoredKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte(`{"whisper_model_size": "small"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	warnIgnoredKeys(cfg, zap.New(core))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["key"]; got != "whisper_model_size" {
		t.Errorf("Expected key whisper_model_size, got %v", got)
	}
}

func TestRootCommand_ListsSubcommands(t *testing.T) {
	out, _, err := executeCommand(t)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, name := range []string{"run", "devices", "monitor", "token"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected %q in help output", name)
		}
	}
}

func TestTokenCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "translation_config.json")
	t.Setenv("OVERLAY_JWT_SECRET", "test-secret")

	out, _, err := executeCommand(t, "token", "--config", configPath, "--name", "stream-pc")
	if err != nil {
		t.Fatalf("token command failed: %v", err)
	}

	issuer, _ := auth.NewTokenIssuer("test-secret")
	claims, err := issuer.ValidateOverlayToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("Issued token is invalid: %v", err)
	}
	if claims.ClientName != "stream-pc" {
		t.Errorf("Expected client name stream-pc, got %q", claims.ClientName)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("Expected default config to be written: %v", err)
	}
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "translation_config.json")
	t.Setenv("OVERLAY_JWT_SECRET", "")

	if _, _, err := executeCommand(t, "token", "--config", configPath); err == nil {
		t.Error("Expected error without OVERLAY_JWT_SECRET")
	}
}

func TestMonitorFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SubtitleFile = filepath.Join(dir, "subtitle.txt")

	pub, err := subtitle.NewFilePublisher(cfg.SubtitleFile, cfg.JSONSubtitlePath(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewFilePublisher failed: %v", err)
	}
	defer pub.Close()
	if err := pub.Publish(context.Background(), entities.NewSubtitle("سلام", "hello", 3*time.Second)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	if err := monitorFiles(ctx, cfg, 10*time.Millisecond, &out); err != nil && err != context.DeadlineExceeded {
		t.Fatalf("monitorFiles failed: %v", err)
	}
	if !strings.Contains(out.String(), "سلام") || !strings.Contains(out.String(), "hello") {
		t.Errorf("Expected subtitle in output, got %q", out.String())
	}
}

func TestRunPipeline_ReplaysWAVWithMockProviders(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ASRProvider = config.ProviderMock
	cfg.MTProvider = config.ProviderMock
	cfg.ChunkDuration = 0.5
	cfg.SubtitleFile = filepath.Join(dir, "subtitle.txt")

	wavPath := filepath.Join(dir, "input.wav")
	writeSilenceWAV(t, wavPath, cfg.SampleRate, cfg.SampleRate)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := runPipeline(ctx, cfg, runOptions{input: wavPath}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("runPipeline failed: %v", err)
	}

	data, err := os.ReadFile(cfg.SubtitleFile)
	if err != nil {
		t.Fatalf("Expected subtitle file: %v", err)
	}
	if !strings.HasPrefix(string(data), "[fa] ") {
		t.Errorf("Expected mock translation in subtitle file, got %q", data)
	}
	if _, err := os.Stat(cfg.SubtitleFile + ".lock"); !os.IsNotExist(err) {
		t.Error("Expected lock file to be removed on exit")
	}
}
