// Package generate drafts new slide decks with a language model and
// validates the result before it ever reaches the user: a generated deck
// that does not pass the same checks the compiler applies is retried with
// the validation problems fed back into the prompt.
package generate

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Model produces one deck draft per call. Implementations must be safe for
// sequential reuse across retry attempts.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

type geminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Model backed by the Gemini API.
func NewGeminiModel(ctx context.Context, apiKey, model string) (Model, error) {
	if apiKey == "" {
		return nil, errors.New("generator API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create model client: %w", err)
	}
	return &geminiModel{client: client, model: model}, nil
}

func (m *geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned no content")
	}
	return text, nil
}

func (m *geminiModel) Name() string {
	return "gemini:" + m.model
}
