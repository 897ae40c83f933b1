package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MockTranslator prefixes the input with the target language tag
type MockTranslator struct {
	target string
	err    error
}

// NewMockTranslator creates a deterministic translator for tests and dry runs
func NewMockTranslator(target string) *MockTranslator {
	return &MockTranslator{target: target}
}

// FailWith makes every following call return err
func (m *MockTranslator) FailWith(err error) {
	m.err = err
}

// Translate implements repositories.Translator
func (m *MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("nothing to translate")
	}
	return fmt.Sprintf("[%s] %s", m.target, text), nil
}
