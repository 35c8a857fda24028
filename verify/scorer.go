package verify

import "context"

// Scorer rates how acceptable a paragraph of extracted text looks, from 0
// (garbage) to 1 (clean prose)
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface
type ScorerFunc func(ctx context.Context, text string) (float64, error)

// Score calls f(ctx, text)
func (f ScorerFunc) Score(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}
