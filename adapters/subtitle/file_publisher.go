package subtitle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

// ErrPublisherLocked is returned when another process already owns the subtitle files.
var ErrPublisherLocked = errors.New("subtitle files are locked by another publisher")

// FilePublisher writes the latest subtitle to a text file (translated text only)
// and a JSON sibling (text, english, timestamp, duration) for overlays to poll.
type FilePublisher struct {
	txtPath  string
	jsonPath string
	lock     *flock.Flock
	logger   *zap.Logger

	mu     sync.Mutex
	latest *entities.Subtitle
}

var _ repositories.SubtitlePublisher = (*FilePublisher)(nil)

// NewFilePublisher takes an exclusive advisory lock on <txtPath>.lock and returns a
// publisher writing txtPath and jsonPath. Call Close to release the lock.
func NewFilePublisher(txtPath, jsonPath string, logger *zap.Logger) (*FilePublisher, error) {
	if dir := filepath.Dir(txtPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create subtitle directory: %w", err)
		}
	}

	lock := flock.New(txtPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock subtitle file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrPublisherLocked, txtPath)
	}

	logger.Info("Subtitle publisher ready",
		zap.String("txt", txtPath),
		zap.String("json", jsonPath))

	return &FilePublisher{
		txtPath:  txtPath,
		jsonPath: jsonPath,
		lock:     lock,
		logger:   logger,
	}, nil
}

// Publish overwrites both subtitle files. Each file is replaced atomically so
// a poller never reads a partial document.
func (p *FilePublisher) Publish(ctx context.Context, subtitle *entities.Subtitle) error {
	if err := subtitle.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := encodeDocument(subtitle.Document())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := writeAtomic(p.txtPath, []byte(subtitle.Text)); err != nil {
		return fmt.Errorf("write subtitle text: %w", err)
	}
	if err := writeAtomic(p.jsonPath, doc); err != nil {
		return fmt.Errorf("write subtitle json: %w", err)
	}
	p.latest = subtitle

	p.logger.Debug("Subtitle written",
		zap.String("id", subtitle.ID),
		zap.String("text", subtitle.Text))
	return nil
}

// Latest returns the last published subtitle, or nil
func (p *FilePublisher) Latest() *entities.Subtitle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Close releases the publisher lock
func (p *FilePublisher) Close() error {
	if err := p.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock subtitle file: %w", err)
	}
	_ = os.Remove(p.lock.Path())
	return nil
}

// encodeDocument renders the JSON document without escaping non-ASCII text.
func encodeDocument(doc entities.SubtitleDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode subtitle: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
