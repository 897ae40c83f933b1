package repositories

import "context"

// Translator abstracts machine translation services
type Translator interface {
	// Translate converts source text into the translator's target language
	Translate(ctx context.Context, text string) (string, error)
}
