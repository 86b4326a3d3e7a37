package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator talks to Google's Gemini API. One client is shared across
// requests; every Generate call opens a fresh chat session.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for apiKey. Extra client options are
// appended after the key, which lets tests point the client elsewhere.
func NewGemini(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: cl, model: strings.TrimSpace(model)}, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate sends message in a new session and returns the concatenated text
// parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, message string) (string, error) {
	session := g.client.GenerativeModel(g.model).StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	txt := responseText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
