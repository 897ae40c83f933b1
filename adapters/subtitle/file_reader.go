package subtitle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/satriahrh/farsisub/domain/entities"
)

// Update is one change observed by a FileReader
type Update struct {
	Document entities.SubtitleDocument
	// TextOnly is set when the JSON file was missing or unreadable and the
	// text came from the plain subtitle file.
	TextOnly bool
}

// FileReader polls the subtitle files the way an overlay does
type FileReader struct {
	txtPath  string
	jsonPath string

	lastJSON []byte
	lastTxt  []byte
}

// NewFileReader creates a reader for the given subtitle files
func NewFileReader(txtPath, jsonPath string) *FileReader {
	return &FileReader{txtPath: txtPath, jsonPath: jsonPath}
}

// Read returns the current subtitle and whether it changed since the previous Read.
func (r *FileReader) Read() (*Update, bool, error) {
	jsonData, jsonErr := os.ReadFile(r.jsonPath)
	jsonData = bytes.TrimSpace(jsonData)
	if jsonErr == nil && len(jsonData) > 0 {
		var doc entities.SubtitleDocument
		if err := json.Unmarshal(jsonData, &doc); err == nil && doc.Text != "" {
			changed := !bytes.Equal(jsonData, r.lastJSON)
			r.lastJSON = jsonData
			r.lastTxt = []byte(doc.Text)
			return &Update{Document: doc}, changed, nil
		}
	} else if jsonErr != nil && !errors.Is(jsonErr, os.ErrNotExist) {
		return nil, false, jsonErr
	}

	txtData, err := os.ReadFile(r.txtPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	txtData = bytes.TrimSpace(txtData)
	if len(txtData) == 0 {
		return nil, false, nil
	}

	changed := !bytes.Equal(txtData, r.lastTxt)
	r.lastTxt = txtData
	return &Update{Document: entities.SubtitleDocument{Text: string(txtData)}, TextOnly: true}, changed, nil
}

// Poll calls fn for every change until ctx is done
func (r *FileReader) Poll(ctx context.Context, interval time.Duration, fn func(Update)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		update, changed, err := r.Read()
		if err == nil && changed && update != nil {
			fn(*update)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
