package scorer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tsawler/folio/verify"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is given
const DefaultGeminiModel = "gemini-1.5-flash"

// maxPromptRunes bounds the paragraph text sent to the model
const maxPromptRunes = 4000

const geminiInstruction = `You judge text extracted from a PDF page.
Rate how acceptable the text is as readable, correctly decoded natural language.
Garbled characters, broken encodings, random symbols and fragments score low.
Reply with a single number between 0 and 1 and nothing else.`

// ErrNoScore is returned when the model reply holds no number
var ErrNoScore = errors.New("no score in model reply")

// Gemini scores text by asking a Gemini model
type Gemini struct {
	client    *genai.Client
	modelName string
}

var _ verify.Scorer = (*Gemini)(nil)

// NewGemini creates a Gemini scorer. An empty modelName selects
// DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &Gemini{client: cl, modelName: modelName}, nil
}

// Close releases the client
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Score implements verify.Scorer
func (g *Gemini) Score(ctx context.Context, text string) (float64, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiInstruction)},
	}
	m.SetTemperature(0)

	resp, err := m.GenerateContent(ctx, genai.Text(truncateRunes(text, maxPromptRunes)))
	if err != nil {
		return 0, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return 0, ErrNoScore
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return ParseScore(b.String())
}

var scorePattern = regexp.MustCompile(`\d*\.?\d+`)

// ParseScore extracts the first number from a model reply and clamps it to
// [0, 1]
func ParseScore(reply string) (float64, error) {
	match := scorePattern.FindString(reply)
	if match == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, reply)
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, reply)
	}
	return clamp(v), nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
